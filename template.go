/*
 * template.go, part of gorxd.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package rxd

import (
	"math"

	v3 "github.com/rmera/gorxd/v3"
)

// IfaceTemplate describes a binding interface of a molecule type.
type IfaceTemplate struct {
	Name string
	//Offset is the position of the interface relative to the molecule center,
	//in the molecule's own frame (nm).
	Offset [3]float64
	//States lists the allowed states. The first one is the initial state.
	//An empty list means a single, unnamed, state.
	States []string
}

// NStates returns the number of states the interface can be in.
func (I *IfaceTemplate) NStates() int {
	if len(I.States) == 0 {
		return 1
	}
	return len(I.States)
}

// StateName returns the name of the ith state.
func (I *IfaceTemplate) StateName(i int) string {
	if len(I.States) == 0 {
		return ""
	}
	return I.States[i]
}

// MolTemplate is the immutable description of a molecule type. All the molecules
// of a type share (and never modify) a pointer to it.
type MolTemplate struct {
	Index  int //position in the template list, set by ValidateTemplates
	Name   string
	Mass   float64
	D      [3]float64 //translational diffusion coefficients, nm^2/us
	Dr     float64    //rotational diffusion coefficient, rad^2/us
	Ifaces []IfaceTemplate
	Copies int //initial number of copies
}

// IfaceIndex returns the index of the interface with the given name, or -1.
func (T *MolTemplate) IfaceIndex(name string) int {
	for i, v := range T.Ifaces {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// StateIndex returns the index of the state name of the interface iface, or -1.
// The unnamed state "" matches the first state.
func (T *MolTemplate) StateIndex(iface int, state string) int {
	if iface < 0 || iface >= len(T.Ifaces) {
		return -1
	}
	if state == "" {
		return 0
	}
	for i, v := range T.Ifaces[iface].States {
		if v == state {
			return i
		}
	}
	return -1
}

// Radius returns the largest distance between the molecule center and one of its interfaces.
func (T *MolTemplate) Radius() float64 {
	r := 0.0
	for _, v := range T.Ifaces {
		r = math.Max(r, v.Offset[0]*v.Offset[0]+v.Offset[1]*v.Offset[1]+v.Offset[2]*v.Offset[2])
	}
	return math.Sqrt(r)
}

// BodyCoords returns a Matrix with the molecule center (the origin) in the first vector
// and the interface offsets in the following ones.
func (T *MolTemplate) BodyCoords() *v3.Matrix {
	c := v3.Zeros(len(T.Ifaces) + 1)
	for i, v := range T.Ifaces {
		c.SetRow(i+1, v.Offset[:])
	}
	return c
}

// Immobile returns true if the molecule type does not diffuse.
func (T *MolTemplate) Immobile() bool {
	return T.D[0] == 0 && T.D[1] == 0 && T.D[2] == 0 && T.Dr == 0
}

// NumSpecies returns the number of distinct (interface, state) pairs of the template.
func (T *MolTemplate) NumSpecies() int {
	n := 0
	for i := range T.Ifaces {
		n += T.Ifaces[i].NStates()
	}
	return n
}

// ValidateTemplates checks a template list and sets the Index field of each template.
func ValidateTemplates(ts []*MolTemplate) error {
	if len(ts) == 0 {
		return NewError(ConfigError, "ValidateTemplates", "no molecule templates given")
	}
	names := make(map[string]bool, len(ts))
	for i, t := range ts {
		if t == nil {
			return NewError(ConfigError, "ValidateTemplates", "template %d is nil", i)
		}
		if t.Name == "" {
			return NewError(ConfigError, "ValidateTemplates", "template %d has no name", i)
		}
		if names[t.Name] {
			return NewError(ConfigError, "ValidateTemplates", "duplicated molecule type %q", t.Name)
		}
		names[t.Name] = true
		t.Index = i
		if t.Mass < 0 || t.Dr < 0 || t.Copies < 0 {
			return NewError(ConfigError, "ValidateTemplates", "%s: negative mass, rotational diffusion or copy number", t.Name)
		}
		for k := 0; k < 3; k++ {
			if t.D[k] < 0 || math.IsNaN(t.D[k]) {
				return NewError(ConfigError, "ValidateTemplates", "%s: invalid diffusion coefficient %v", t.Name, t.D)
			}
		}
		inames := make(map[string]bool, len(t.Ifaces))
		for _, f := range t.Ifaces {
			if f.Name == "" || inames[f.Name] {
				return NewError(ConfigError, "ValidateTemplates", "%s: empty or duplicated interface name %q", t.Name, f.Name)
			}
			inames[f.Name] = true
			snames := make(map[string]bool, len(f.States))
			for _, s := range f.States {
				if s == "" || snames[s] {
					return NewError(ConfigError, "ValidateTemplates", "%s(%s): empty or duplicated state %q", t.Name, f.Name, s)
				}
				snames[s] = true
			}
		}
	}
	return nil
}
