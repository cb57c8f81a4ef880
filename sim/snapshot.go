/*
 * snapshot.go, part of gorxd.
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

package sim

import (
	rxd "github.com/rmera/gorxd"
	v3 "github.com/rmera/gorxd/v3"
)

// Counters are the number of committed events of each kind.
type Counters struct {
	Bind        int `json:"bind"`
	Loop        int `json:"loop"`
	Unbind      int `json:"unbind"`
	Split       int `json:"split"`
	StateChange int `json:"state"`
	Facilitated int `json:"facilitated"`
	Create      int `json:"create"`
	Destroy     int `json:"destroy"`
	//Rejected counts associations cancelled by overlaps or the box walls.
	Rejected int `json:"rejected"`
	//Conflicts counts fired events dropped because a molecule was already consumed.
	Conflicts int `json:"conflicts"`
}

// Add adds the counters of O to C.
func (C *Counters) Add(O Counters) {
	C.Bind += O.Bind
	C.Loop += O.Loop
	C.Unbind += O.Unbind
	C.Split += O.Split
	C.StateChange += O.StateChange
	C.Facilitated += O.Facilitated
	C.Create += O.Create
	C.Destroy += O.Destroy
	C.Rejected += O.Rejected
	C.Conflicts += O.Conflicts
}

// Sub subtracts the counters of O from C.
func (C *Counters) Sub(O Counters) {
	C.Bind -= O.Bind
	C.Loop -= O.Loop
	C.Unbind -= O.Unbind
	C.Split -= O.Split
	C.StateChange -= O.StateChange
	C.Facilitated -= O.Facilitated
	C.Create -= O.Create
	C.Destroy -= O.Destroy
	C.Rejected -= O.Rejected
	C.Conflicts -= O.Conflicts
}

// Committed returns the number of reaction events applied.
func (C Counters) Committed() int {
	return C.Bind + C.Loop + C.Unbind + C.StateChange + C.Facilitated + C.Create + C.Destroy
}

// MolState is the state of a molecule in a Snapshot.
type MolState struct {
	ID       int            `json:"id"`
	Type     string         `json:"type"`
	Center   [3]float64     `json:"center"`
	Orient   [9]float64     `json:"orient"`
	Sites    [][3]float64   `json:"sites,omitempty"`
	States   []string       `json:"states"`
	Partners []rxd.IfaceRef `json:"partners"`
}

// CplxState is the state of a complex in a Snapshot. Members are in the order the complex
// keeps them, and Body and BodyOrient hold, in that order, the flattened body coordinates
// and orientations of each member.
type CplxState struct {
	ID         int          `json:"id"`
	Members    []int        `json:"members"`
	COM        [3]float64   `json:"com"`
	Orient     [9]float64   `json:"orient"`
	Body       [][]float64  `json:"body,omitempty"`
	BodyOrient [][9]float64 `json:"body_orient,omitempty"`
}

// Snapshot is a read-only copy of the state of a simulation, handed to the observers.
// It shares no memory with the simulation.
type Snapshot struct {
	Step       int         `json:"step"`
	Time       float64     `json:"time"`
	Molecules  []MolState  `json:"molecules"`
	Complexes  []CplxState `json:"complexes"`
	BoundPairs int         `json:"bound_pairs"`
	//Events are the events of the last step, Total those since the beginning of the run.
	Events Counters   `json:"events"`
	Total  Counters   `json:"total"`
	Wall   PhaseTimes `json:"-"`
}

func flat(R *v3.Matrix) [9]float64 {
	var ret [9]float64
	for i := 0; i < 3; i++ {
		copy(ret[3*i:3*i+3], R.Row(i))
	}
	return ret
}

func rows(M *v3.Matrix) []float64 {
	ret := make([]float64, 0, 3*M.NVecs())
	for i := 0; i < M.NVecs(); i++ {
		ret = append(ret, M.Row(i)...)
	}
	return ret
}

// Take copies the state of S into a new Snapshot.
func Take(S *rxd.System, step int, t float64) *Snapshot {
	snap := &Snapshot{Step: step, Time: t, BoundPairs: S.BoundPairs()}
	snap.Molecules = make([]MolState, 0, S.NumMolecules())
	for _, m := range S.Mols {
		if m == nil {
			continue
		}
		ms := MolState{ID: m.ID, Type: m.Type.Name, Orient: flat(m.Orient)}
		copy(ms.Center[:], m.Center())
		ms.Sites = make([][3]float64, len(m.Ifaces))
		for i := range ms.Sites {
			copy(ms.Sites[i][:], m.Site(i))
		}
		ms.States = make([]string, len(m.Ifaces))
		ms.Partners = make([]rxd.IfaceRef, len(m.Ifaces))
		for i, f := range m.Ifaces {
			ms.States[i] = m.StateName(i)
			ms.Partners[i] = f.Partner
		}
		snap.Molecules = append(snap.Molecules, ms)
	}
	snap.Complexes = make([]CplxState, 0, S.NumComplexes())
	for _, c := range S.Complexes {
		if c == nil {
			continue
		}
		cs := CplxState{ID: c.ID, Members: append([]int(nil), c.Members...), Orient: flat(c.Frame)}
		copy(cs.COM[:], c.COM.Row(0))
		cs.Body = make([][]float64, len(c.Body))
		cs.BodyOrient = make([][9]float64, len(c.BodyOrient))
		for i, b := range c.Body {
			cs.Body[i] = rows(b)
			cs.BodyOrient[i] = flat(c.BodyOrient[i])
		}
		snap.Complexes = append(snap.Complexes, cs)
	}
	return snap
}

// ComplexSizes returns the number of members of each complex.
func (s *Snapshot) ComplexSizes() []float64 {
	ret := make([]float64, len(s.Complexes))
	for i, c := range s.Complexes {
		ret[i] = float64(len(c.Members))
	}
	return ret
}

// Species returns the number of copies of each molecule type and of each
// "type(iface~state)" species.
func (s *Snapshot) Species(T rxd.Templater) map[string]int {
	byName := make(map[string]*rxd.MolTemplate, T.NumTemplates())
	for i := 0; i < T.NumTemplates(); i++ {
		byName[T.Template(i).Name] = T.Template(i)
	}
	ret := make(map[string]int)
	for _, m := range s.Molecules {
		ret[m.Type]++
		t := byName[m.Type]
		if t == nil {
			continue
		}
		for j, f := range t.Ifaces {
			if len(f.States) > 0 {
				ret[t.Name+"("+f.Name+"~"+m.States[j]+")"]++
			}
		}
	}
	return ret
}

// Observer receives snapshots. Observers are called from the simulation goroutine, between steps.
// An error from an observer stops the run.
type Observer interface {
	Observe(s *Snapshot) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(s *Snapshot) error

func (f ObserverFunc) Observe(s *Snapshot) error { return f(s) }
