/*
 * populate.go, part of gorxd.
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
	"math/rand/v2"

	rxd "github.com/rmera/gorxd"
	"github.com/rmera/gorxd/rxn"
	v3 "github.com/rmera/gorxd/v3"
)

// maxTries is the number of random positions tried for each new molecule before giving up.
const maxTries = 1000

// randomPosition returns a uniform position in the box. With reflecting walls, the molecule
// (center and interfaces) is kept inside.
func randomPosition(P *rxd.Parameters, t *rxd.MolTemplate, r *rand.Rand) []float64 {
	pad := 0.0
	if P.Boundary == rxd.Reflect {
		pad = t.Radius()
	}
	ret := make([]float64, 3)
	for k := 0; k < 3; k++ {
		l := P.Box[k] - 2*pad
		if l < 0 {
			l, pad = P.Box[k], 0
		}
		ret[k] = pad + l*r.Float64()
	}
	return ret
}

// clashes returns true if pos is closer than lim to the center of any live molecule.
func clashes(S *rxd.System, pos []float64, lim float64) bool {
	if lim <= 0 {
		return false
	}
	box := S.Params.PeriodicBox()
	for _, m := range S.Mols {
		if m == nil {
			continue
		}
		d := v3.MinImage(pos, m.Center(), box)
		if v3.Norm(d[:]) < lim {
			return true
		}
	}
	return false
}

// Populate adds, for each template, Copies free monomers at random positions and orientations,
// not closer than OverlapSepLimit to the molecules already there. The placement only depends on the seed.
func Populate(S *rxd.System) error {
	P := &S.Params
	for _, t := range S.Templates {
		r := stream(P.Seed, 0, phasePopulate, t.Index)
		for i := 0; i < t.Copies; i++ {
			placed := false
			for try := 0; try < maxTries; try++ {
				pos := randomPosition(P, t, r)
				R := randomRotation(r)
				if clashes(S, pos, P.OverlapSepLimit) {
					continue
				}
				if _, err := S.AddMolecule(t, pos, R); err != nil {
					return rxd.ErrDecorate(err, "sim.Populate")
				}
				placed = true
				break
			}
			if !placed {
				return rxd.NewError(rxd.ConfigError, "sim.Populate", "could not place copy %d of %s after %d tries, the box is too crowded", i+1, t.Name, maxTries)
			}
		}
	}
	return nil
}

// create applies the zeroth order creation rules.
func (s *Simulation) create(cnt *Counters) error {
	S := s.Sys
	P := &S.Params
	for _, rule := range s.Rules.Creations() {
		src := source(P.Seed, s.Timer.Step, phaseCreate, rule.Index)
		r := rand.New(src)
		n := rxn.Poisson(rxn.CreationMean(rule, P), rxn.PCG{PCG: src})
		t := S.Templates[rule.Mol]
		for i := 0; i < n; i++ {
			if _, err := S.AddMolecule(t, randomPosition(P, t, r), randomRotation(r)); err != nil {
				return rxd.ErrDecorate(err, "Simulation.create")
			}
			cnt.Create++
		}
	}
	return nil
}

// Restore rebuilds a System from a snapshot, keeping the molecule IDs, positions, orientations,
// interface states, bonds and complexes. Complexes saved with their body are restored exactly,
// so a resumed run continues the saved trajectory. Otherwise (or when the snapshot lists no
// complexes, in which case they are rebuilt from the bonds) the frames are recomputed from the
// member positions. Complex IDs may change.
func Restore(snap *Snapshot, p rxd.Parameters, templates []*rxd.MolTemplate) (*rxd.System, error) {
	//singletons are merged as the complexes are read, so the complex limit is only checked at the end
	build := p
	build.MaxComplexes = 0
	S, err := rxd.NewSystem(build, templates)
	if err != nil {
		return nil, rxd.ErrDecorate(err, "sim.Restore")
	}
	saved := make(map[int]*MolState, len(snap.Molecules))
	for j, ms := range snap.Molecules {
		t := S.TemplateByName(ms.Type)
		if t == nil {
			return nil, rxd.NewError(rxd.ConfigError, "sim.Restore", "molecule %d has unknown type %q", ms.ID, ms.Type)
		}
		if len(ms.States) != len(t.Ifaces) || len(ms.Partners) != len(t.Ifaces) {
			return nil, rxd.NewError(rxd.ConfigError, "sim.Restore", "molecule %d does not match the interfaces of %s", ms.ID, t.Name)
		}
		if len(ms.Sites) != 0 && len(ms.Sites) != len(t.Ifaces) {
			return nil, rxd.NewError(rxd.ConfigError, "sim.Restore", "molecule %d has %d sites, %s has %d interfaces", ms.ID, len(ms.Sites), t.Name, len(t.Ifaces))
		}
		R, err := v3.NewMatrix(append([]float64(nil), ms.Orient[:]...))
		if err != nil {
			return nil, rxd.WrapError(rxd.ConfigError, "sim.Restore", err)
		}
		m, err := S.AddMoleculeAt(ms.ID, t, ms.Center[:], R)
		if err != nil {
			return nil, rxd.ErrDecorate(err, "sim.Restore")
		}
		for i, name := range ms.States {
			st := t.StateIndex(i, name)
			if st < 0 {
				return nil, rxd.NewError(rxd.ConfigError, "sim.Restore", "molecule %d: unknown state %q", ms.ID, name)
			}
			m.Ifaces[i].State = st
		}
		saved[ms.ID] = &snap.Molecules[j]
	}
	for _, ms := range snap.Molecules {
		for i, p := range ms.Partners {
			a := rxd.IfaceRef{Mol: ms.ID, Iface: i}
			if p.Mol < 0 || p.Less(a) {
				continue
			}
			m, o := S.Mol(ms.ID), S.Mol(p.Mol)
			if o == nil || p.Iface < 0 || p.Iface >= len(o.Ifaces) {
				return nil, rxd.NewError(rxd.ConfigError, "sim.Restore", "interface %s bound to missing %s", a, p)
			}
			if err := S.Bind(a, p, m.Ifaces[i].State, o.Ifaces[p.Iface].State); err != nil {
				return nil, rxd.ErrDecorate(err, "sim.Restore")
			}
		}
	}
	cplx := snap.Complexes
	if len(cplx) == 0 {
		cplx = bondGroups(S)
	}
	for _, cs := range cplx {
		if err := restoreComplex(S, cs, saved); err != nil {
			return nil, rxd.ErrDecorate(err, "sim.Restore")
		}
	}
	S.Params = p
	if p.MaxComplexes > 0 && S.NumComplexes() > p.MaxComplexes {
		return nil, rxd.NewCapacityError("sim.Restore", "complexes", S.NumComplexes(), p.MaxComplexes)
	}
	if err := S.Check(); err != nil {
		return nil, rxd.ErrDecorate(err, "sim.Restore")
	}
	return S, nil
}

// bondGroups returns the members of the bound components of S, which must hold only singletons.
func bondGroups(S *rxd.System) []CplxState {
	var ret []CplxState
	seen := make(map[int]bool)
	for _, m := range S.Mols {
		if m == nil || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		g := []int{m.ID}
		for i := 0; i < len(g); i++ {
			for _, f := range S.Mols[g[i]].Ifaces {
				if f.Bound() && !seen[f.Partner.Mol] {
					seen[f.Partner.Mol] = true
					g = append(g, f.Partner.Mol)
				}
			}
		}
		if len(g) > 1 {
			ret = append(ret, CplxState{ID: -1, Members: g})
		}
	}
	return ret
}

// restoreComplex merges the singletons of the members of cs, in order, into one complex.
// If cs carries the body of the complex, it is set as saved, and the members take the
// positions and orientations in saved. Otherwise, the members are first re-imaged next to
// each other, so the recomputed frame is not torn by a periodic boundary.
func restoreComplex(S *rxd.System, cs CplxState, saved map[int]*MolState) error {
	const caller = "sim.restoreComplex"
	if len(cs.Members) == 0 {
		return rxd.NewError(rxd.ConfigError, caller, "complex %d has no members", cs.ID)
	}
	for _, id := range cs.Members {
		m := S.Mol(id)
		if m == nil {
			return rxd.NewError(rxd.ConfigError, caller, "complex %d lists missing molecule %d", cs.ID, id)
		}
		if S.Cplx(m.Complex).Len() != 1 {
			return rxd.NewError(rxd.ConfigError, caller, "molecule %d is listed by more than one complex", id)
		}
	}
	exact := len(cs.Body) > 0
	if !exact {
		unwrap(S, cs.Members)
	}
	keep := S.Mol(cs.Members[0]).Complex
	for _, id := range cs.Members[1:] {
		if _, err := S.Merge(keep, S.Mol(id).Complex); err != nil {
			return rxd.ErrDecorate(err, caller)
		}
	}
	if !exact {
		return nil
	}
	if len(cs.Body) != len(cs.Members) || len(cs.BodyOrient) != len(cs.Members) {
		return rxd.NewError(rxd.ConfigError, caller, "complex %d has %d members and %d body blocks", cs.ID, len(cs.Members), len(cs.Body))
	}
	body := make([]*v3.Matrix, len(cs.Body))
	orient := make([]*v3.Matrix, len(cs.Body))
	var err error
	for i := range cs.Body {
		if body[i], err = v3.NewMatrix(append([]float64(nil), cs.Body[i]...)); err != nil {
			return rxd.WrapError(rxd.ConfigError, caller, err)
		}
		if orient[i], err = v3.NewMatrix(append([]float64(nil), cs.BodyOrient[i][:]...)); err != nil {
			return rxd.WrapError(rxd.ConfigError, caller, err)
		}
	}
	frame, err := v3.NewMatrix(append([]float64(nil), cs.Orient[:]...))
	if err != nil {
		return rxd.WrapError(rxd.ConfigError, caller, err)
	}
	if err := S.SetBody(S.Cplx(keep), cs.COM[:], frame, body, orient); err != nil {
		return rxd.ErrDecorate(err, caller)
	}
	//placing from the body can differ from the saved positions in the last bits
	for _, id := range cs.Members {
		ms := saved[id]
		if ms == nil || len(ms.Sites) == 0 {
			continue
		}
		m := S.Mol(id)
		m.Coords.SetRow(0, ms.Center[:])
		for i := range ms.Sites {
			m.Coords.SetRow(i+1, ms.Sites[i][:])
		}
		for i := 0; i < 3; i++ {
			m.Orient.SetRow(i, ms.Orient[3*i:3*i+3])
		}
	}
	return nil
}

// unwrap translates the members, all of them singletons, so that each lies at the
// minimum image of the bonded member it is reached from, starting at the first one.
// Members not reached through bonds are imaged next to the first one.
func unwrap(S *rxd.System, members []int) {
	box := S.Params.PeriodicBox()
	if box == nil || len(members) < 2 {
		return
	}
	in := make(map[int]bool, len(members))
	for _, id := range members {
		in[id] = true
	}
	reimage := func(ref, id int) {
		a, b := S.Mol(ref).Center(), S.Mol(id).Center()
		d := v3.MinImage(a, b, box)
		var shift [3]float64
		for k := 0; k < 3; k++ {
			shift[k] = a[k] + d[k] - b[k]
		}
		S.Translate(S.Cplx(S.Mol(id).Complex), shift[:])
	}
	seen := map[int]bool{members[0]: true}
	queue := []int{members[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, f := range S.Mol(cur).Ifaces {
			p := f.Partner.Mol
			if !f.Bound() || !in[p] || seen[p] {
				continue
			}
			seen[p] = true
			reimage(cur, p)
			queue = append(queue, p)
		}
	}
	for _, id := range members {
		if !seen[id] {
			reimage(members[0], id)
		}
	}
}
