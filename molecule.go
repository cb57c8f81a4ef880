/*
 * molecule.go, part of gorxd.
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
	"fmt"

	v3 "github.com/rmera/gorxd/v3"
)

// IfaceRef identifies one interface of one molecule.
type IfaceRef struct {
	Mol   int
	Iface int
}

// NoPartner is the partner of a free interface.
var NoPartner = IfaceRef{Mol: -1, Iface: -1}

func (R IfaceRef) String() string {
	return fmt.Sprintf("%d:%d", R.Mol, R.Iface)
}

// Less orders references by molecule and then by interface.
func (R IfaceRef) Less(O IfaceRef) bool {
	if R.Mol != O.Mol {
		return R.Mol < O.Mol
	}
	return R.Iface < O.Iface
}

// Iface is the runtime state of an interface.
type Iface struct {
	State   int      //index in the template's state list
	Partner IfaceRef //NoPartner if the interface is free
}

// Bound returns true if the interface is bound to a partner.
func (I Iface) Bound() bool {
	return I.Partner.Mol >= 0
}

// Molecule is a simulated particle. Its coordinates are owned by the simulation
// and change every step. The template is shared and must not be modified.
type Molecule struct {
	ID   int
	Type *MolTemplate
	//Coords contains the absolute position of the center in the first vector, and the
	//absolute position of each interface in the following ones.
	Coords  *v3.Matrix
	Orient  *v3.Matrix //3x3 orientation operator, applied to the template offsets.
	Ifaces  []Iface
	Complex int //ID of the complex the molecule belongs to.
}

// Center returns a view of the molecule center.
func (M *Molecule) Center() []float64 {
	return M.Coords.Row(0)
}

// Site returns a view of the position of the interface i.
func (M *Molecule) Site(i int) []float64 {
	return M.Coords.Row(i + 1)
}

// FreeIfaces returns the number of unbound interfaces.
func (M *Molecule) FreeIfaces() int {
	n := 0
	for _, v := range M.Ifaces {
		if !v.Bound() {
			n++
		}
	}
	return n
}

// NumBonds returns the number of bound interfaces.
func (M *Molecule) NumBonds() int {
	return len(M.Ifaces) - M.FreeIfaces()
}

// StateName returns the name of the current state of interface i.
func (M *Molecule) StateName(i int) string {
	return M.Type.Ifaces[i].StateName(M.Ifaces[i].State)
}

// place sets the absolute coordinates of the molecule from its template, an orientation and a center.
func (M *Molecule) place(center []float64, orient *v3.Matrix) {
	body := M.Type.BodyCoords()
	M.Orient.Copy(orient)
	M.Coords.Mul(body, orient)
	M.Coords.AddVec(M.Coords, v3.Vec(center[0], center[1], center[2]))
}

func newMolecule(id int, t *MolTemplate) *Molecule {
	M := &Molecule{
		ID:      id,
		Type:    t,
		Coords:  v3.Zeros(len(t.Ifaces) + 1),
		Orient:  v3.Eye(),
		Ifaces:  make([]Iface, len(t.Ifaces)),
		Complex: -1,
	}
	for i := range M.Ifaces {
		M.Ifaces[i] = Iface{State: 0, Partner: NoPartner}
	}
	return M
}
