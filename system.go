/*
 * system.go, part of gorxd.
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
	"sort"

	v3 "github.com/rmera/gorxd/v3"
)

// System holds every molecule and complex of a simulation. Molecules and complexes live in
// arenas indexed by their IDs, a retired entry is nil. Molecule IDs are never reused. Complex
// slots are recycled (last retired, first reused) so long runs don't grow the arena without bound.
//
// System is not safe for concurrent mutation. Readers may share it while nobody mutates it.
type System struct {
	Params    Parameters
	Templates []*MolTemplate
	Mols      []*Molecule
	Complexes []*Complex

	freeCplx []int
	nmols    int
	ncplx    int
}

// NewSystem validates the parameters and templates, and returns an empty System.
func NewSystem(p Parameters, templates []*MolTemplate) (*System, error) {
	if err := p.Validate(); err != nil {
		return nil, ErrDecorate(err, "NewSystem")
	}
	if err := ValidateTemplates(templates); err != nil {
		return nil, ErrDecorate(err, "NewSystem")
	}
	if p.MaxSpecies > 0 {
		n := 0
		for _, t := range templates {
			n += t.NumSpecies()
		}
		if n > p.MaxSpecies {
			return nil, NewCapacityError("NewSystem", "species", n, p.MaxSpecies)
		}
	}
	return &System{Params: p, Templates: templates}, nil
}

// Template returns the ith molecule template.
func (S *System) Template(i int) *MolTemplate {
	return S.Templates[i]
}

// NumTemplates returns the number of molecule templates.
func (S *System) NumTemplates() int {
	return len(S.Templates)
}

// TemplateByName returns the template with the given name, or nil.
func (S *System) TemplateByName(name string) *MolTemplate {
	for _, t := range S.Templates {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// NumMolecules returns the number of live molecules.
func (S *System) NumMolecules() int { return S.nmols }

// NumComplexes returns the number of live complexes.
func (S *System) NumComplexes() int { return S.ncplx }

// Mol returns the live molecule with the given ID, or nil.
func (S *System) Mol(id int) *Molecule {
	if id < 0 || id >= len(S.Mols) {
		return nil
	}
	return S.Mols[id]
}

// Cplx returns the live complex with the given ID, or nil.
func (S *System) Cplx(id int) *Complex {
	if id < 0 || id >= len(S.Complexes) {
		return nil
	}
	return S.Complexes[id]
}

// ComplexOf returns the complex the molecule id belongs to.
func (S *System) ComplexOf(id int) *Complex {
	return S.Complexes[S.Mols[id].Complex]
}

// LiveComplexes returns the IDs of the live complexes, in increasing order.
func (S *System) LiveComplexes() []int {
	ret := make([]int, 0, S.ncplx)
	for i, c := range S.Complexes {
		if c != nil {
			ret = append(ret, i)
		}
	}
	return ret
}

// LiveMolecules returns the IDs of the live molecules, in increasing order.
func (S *System) LiveMolecules() []int {
	ret := make([]int, 0, S.nmols)
	for i, m := range S.Mols {
		if m != nil {
			ret = append(ret, i)
		}
	}
	return ret
}

// AddMolecule creates a molecule of type t with its center at center and the orientation orient
// (identity if nil), as the only member of a new complex. It returns the new molecule.
func (S *System) AddMolecule(t *MolTemplate, center []float64, orient *v3.Matrix) (*Molecule, error) {
	return S.addMolecule(len(S.Mols), t, center, orient)
}

// AddMoleculeAt is like AddMolecule, but the new molecule gets the given ID, which can't be smaller
// than any ID used before. It is meant to rebuild a system from saved state.
func (S *System) AddMoleculeAt(id int, t *MolTemplate, center []float64, orient *v3.Matrix) (*Molecule, error) {
	if id < len(S.Mols) {
		return nil, NewError(ConsistencyError, "System.AddMoleculeAt", "molecule ID %d already used", id)
	}
	return S.addMolecule(id, t, center, orient)
}

func (S *System) addMolecule(id int, t *MolTemplate, center []float64, orient *v3.Matrix) (*Molecule, error) {
	if t == nil || t.Index < 0 || t.Index >= len(S.Templates) || S.Templates[t.Index] != t {
		return nil, NewError(ConfigError, "System.AddMolecule", "template not registered in the system")
	}
	if S.Params.MaxMolecules > 0 && S.nmols+1 > S.Params.MaxMolecules {
		return nil, NewCapacityError("System.AddMolecule", "molecules", S.nmols+1, S.Params.MaxMolecules)
	}
	if S.Params.MaxComplexes > 0 && S.ncplx+1 > S.Params.MaxComplexes {
		return nil, NewCapacityError("System.AddMolecule", "complexes", S.ncplx+1, S.Params.MaxComplexes)
	}
	if orient == nil {
		orient = v3.Eye()
	}
	m := newMolecule(id, t)
	m.place(center, orient)
	if !m.Coords.IsFinite() {
		return nil, NewError(NumericalError, "System.AddMolecule", "non-finite coordinates for new %s", t.Name)
	}
	for len(S.Mols) < id {
		S.Mols = append(S.Mols, nil)
	}
	S.Mols = append(S.Mols, m)
	S.nmols++
	S.newComplex([]int{m.ID})
	return m, nil
}

// RemoveMolecule destroys a free monomer. Molecules with bound interfaces can't be removed.
func (S *System) RemoveMolecule(id int) error {
	m := S.Mol(id)
	if m == nil {
		return NewError(ConsistencyError, "System.RemoveMolecule", "molecule %d is not alive", id)
	}
	if m.NumBonds() != 0 || S.Complexes[m.Complex].Len() != 1 {
		return NewError(ConsistencyError, "System.RemoveMolecule", "molecule %d is part of a complex", id)
	}
	S.retireComplex(m.Complex)
	S.Mols[id] = nil
	S.nmols--
	return nil
}

// newComplex creates a complex with the given members and computes its frame.
// The capacity check is the caller's job.
func (S *System) newComplex(members []int) *Complex {
	var id int
	if l := len(S.freeCplx); l > 0 {
		id = S.freeCplx[l-1]
		S.freeCplx = S.freeCplx[:l-1]
	} else {
		id = len(S.Complexes)
		S.Complexes = append(S.Complexes, nil)
	}
	C := &Complex{ID: id, Members: members}
	S.Complexes[id] = C
	S.ncplx++
	S.reframe(C)
	return C
}

func (S *System) retireComplex(id int) {
	S.Complexes[id] = nil
	S.freeCplx = append(S.freeCplx, id)
	S.ncplx--
}

func (S *System) checkRef(caller string, r IfaceRef) (*Molecule, error) {
	m := S.Mol(r.Mol)
	if m == nil {
		return nil, NewError(ConsistencyError, caller, "molecule %d is not alive", r.Mol)
	}
	if r.Iface < 0 || r.Iface >= len(m.Ifaces) {
		return nil, NewError(ConsistencyError, caller, "molecule %d has no interface %d", r.Mol, r.Iface)
	}
	return m, nil
}

func (S *System) checkState(caller string, m *Molecule, iface, state int) error {
	if state < 0 || state >= m.Type.Ifaces[iface].NStates() {
		return NewError(ConsistencyError, caller, "state %d out of range for %s(%s)", state, m.Type.Name, m.Type.Ifaces[iface].Name)
	}
	return nil
}

// Bind records a and b as bound to each other, and sets their states to sa and sb.
// Both interfaces must be free. Either both sides are updated or none is.
// Bind only changes interface records, complexes are merged with Merge.
func (S *System) Bind(a, b IfaceRef, sa, sb int) error {
	const caller = "System.Bind"
	if a == b {
		return NewError(ConsistencyError, caller, "interface %s can't bind itself", a)
	}
	ma, err := S.checkRef(caller, a)
	if err != nil {
		return err
	}
	mb, err := S.checkRef(caller, b)
	if err != nil {
		return err
	}
	if ma.Ifaces[a.Iface].Bound() || mb.Ifaces[b.Iface].Bound() {
		return NewError(ConsistencyError, caller, "interface %s or %s already bound", a, b)
	}
	if err := S.checkState(caller, ma, a.Iface, sa); err != nil {
		return err
	}
	if err := S.checkState(caller, mb, b.Iface, sb); err != nil {
		return err
	}
	ma.Ifaces[a.Iface] = Iface{State: sa, Partner: b}
	mb.Ifaces[b.Iface] = Iface{State: sb, Partner: a}
	return nil
}

// Unbind breaks the bond of interface a, and sets the states of a and its partner to sa and sb.
// It returns the partner. An asymmetric pair is a consistency error, and nothing is changed.
func (S *System) Unbind(a IfaceRef, sa, sb int) (IfaceRef, error) {
	const caller = "System.Unbind"
	ma, err := S.checkRef(caller, a)
	if err != nil {
		return NoPartner, err
	}
	if !ma.Ifaces[a.Iface].Bound() {
		return NoPartner, NewError(ConsistencyError, caller, "interface %s is not bound", a)
	}
	b := ma.Ifaces[a.Iface].Partner
	mb, err := S.checkRef(caller, b)
	if err != nil {
		return NoPartner, err
	}
	if mb.Ifaces[b.Iface].Partner != a {
		return NoPartner, NewError(ConsistencyError, caller, "asymmetric pair: %s->%s but %s->%s", a, b, b, mb.Ifaces[b.Iface].Partner)
	}
	if err := S.checkState(caller, ma, a.Iface, sa); err != nil {
		return NoPartner, err
	}
	if err := S.checkState(caller, mb, b.Iface, sb); err != nil {
		return NoPartner, err
	}
	ma.Ifaces[a.Iface] = Iface{State: sa, Partner: NoPartner}
	mb.Ifaces[b.Iface] = Iface{State: sb, Partner: NoPartner}
	return b, nil
}

// SetState changes the state of the interface r, bound or not.
func (S *System) SetState(r IfaceRef, state int) error {
	m, err := S.checkRef("System.SetState", r)
	if err != nil {
		return err
	}
	if err := S.checkState("System.SetState", m, r.Iface, state); err != nil {
		return err
	}
	m.Ifaces[r.Iface].State = state
	return nil
}

// Merge moves all the members of the complex lose into keep, retires lose and recomputes
// the frame of keep. The absolute coordinates of the members of both complexes must already be
// those of the merged body. It returns the merged complex.
func (S *System) Merge(keep, lose int) (*Complex, error) {
	K, L := S.Cplx(keep), S.Cplx(lose)
	if K == nil || L == nil {
		return nil, NewError(ConsistencyError, "System.Merge", "complex %d or %d is not alive", keep, lose)
	}
	if keep == lose {
		return nil, NewError(ConsistencyError, "System.Merge", "can't merge complex %d with itself", keep)
	}
	K.Members = append(K.Members, L.Members...)
	for _, id := range L.Members {
		S.Mols[id].Complex = keep
	}
	S.retireComplex(lose)
	S.reframe(K)
	return K, nil
}

// Split replaces the complex cid by one new complex for each group. The groups must
// partition the members of cid. When there is only one group nothing is done and the original
// complex is returned.
func (S *System) Split(cid int, groups [][]int) ([]*Complex, error) {
	const caller = "System.Split"
	C := S.Cplx(cid)
	if C == nil {
		return nil, NewError(ConsistencyError, caller, "complex %d is not alive", cid)
	}
	seen := make(map[int]bool, C.Len())
	n := 0
	for _, g := range groups {
		if len(g) == 0 {
			return nil, NewError(ConsistencyError, caller, "empty group splitting complex %d", cid)
		}
		for _, id := range g {
			m := S.Mol(id)
			if m == nil || m.Complex != cid || seen[id] {
				return nil, NewError(ConsistencyError, caller, "molecule %d is not a (unique) member of complex %d", id, cid)
			}
			seen[id] = true
			n++
		}
	}
	if n != C.Len() {
		return nil, NewError(ConsistencyError, caller, "groups cover %d of the %d members of complex %d", n, C.Len(), cid)
	}
	if len(groups) == 1 {
		return []*Complex{C}, nil
	}
	if max := S.Params.MaxComplexes; max > 0 && S.ncplx-1+len(groups) > max {
		return nil, NewCapacityError(caller, "complexes", S.ncplx-1+len(groups), max)
	}
	S.retireComplex(cid)
	ret := make([]*Complex, 0, len(groups))
	for _, g := range groups {
		members := append([]int(nil), g...)
		sort.Ints(members)
		ret = append(ret, S.newComplex(members))
	}
	return ret, nil
}

// Check verifies the bound pair symmetry and that the member lists of the live complexes
// partition the live molecules, with each molecule pointing to the complex that lists it.
// It returns a ConsistencyError describing the first problem found.
func (S *System) Check() error {
	const caller = "System.Check"
	owner := make(map[int]int, S.nmols)
	nc := 0
	for cid, C := range S.Complexes {
		if C == nil {
			continue
		}
		nc++
		if C.ID != cid {
			return NewError(ConsistencyError, caller, "complex in slot %d has ID %d", cid, C.ID)
		}
		if C.Len() == 0 {
			return NewError(ConsistencyError, caller, "complex %d has no members", cid)
		}
		for _, id := range C.Members {
			if prev, ok := owner[id]; ok {
				return NewError(ConsistencyError, caller, "molecule %d listed by complexes %d and %d", id, prev, cid)
			}
			owner[id] = cid
		}
	}
	if nc != S.ncplx {
		return NewError(ConsistencyError, caller, "%d live complexes, %d counted", nc, S.ncplx)
	}
	nm := 0
	for id, m := range S.Mols {
		if m == nil {
			if _, ok := owner[id]; ok {
				return NewError(ConsistencyError, caller, "dead molecule %d listed by complex %d", id, owner[id])
			}
			continue
		}
		nm++
		if m.ID != id {
			return NewError(ConsistencyError, caller, "molecule in slot %d has ID %d", id, m.ID)
		}
		cid, ok := owner[id]
		if !ok || cid != m.Complex {
			return NewError(ConsistencyError, caller, "molecule %d points to complex %d, listed by %d (listed: %v)", id, m.Complex, cid, ok)
		}
		for i, f := range m.Ifaces {
			if !f.Bound() {
				continue
			}
			p := S.Mol(f.Partner.Mol)
			if p == nil || f.Partner.Iface >= len(p.Ifaces) || p.Ifaces[f.Partner.Iface].Partner != (IfaceRef{id, i}) {
				return NewError(ConsistencyError, caller, "asymmetric bound pair %d:%d -> %s", id, i, f.Partner)
			}
			if p.Complex != m.Complex {
				return NewError(ConsistencyError, caller, "bound pair %d:%d -> %s crosses complexes", id, i, f.Partner)
			}
		}
	}
	if nm != S.nmols {
		return NewError(ConsistencyError, caller, "%d live molecules, %d counted", nm, S.nmols)
	}
	return nil
}

// CheckFinite returns a NumericalError if any live molecule has a NaN or infinite coordinate.
func (S *System) CheckFinite() error {
	for _, m := range S.Mols {
		if m != nil && !m.Coords.IsFinite() {
			return NewError(NumericalError, "System.CheckFinite", "non-finite coordinates in molecule %d (%s)", m.ID, m.Type.Name)
		}
	}
	return nil
}

// BoundPairs returns the number of bound interface pairs.
func (S *System) BoundPairs() int {
	n := 0
	for _, m := range S.Mols {
		if m != nil {
			n += m.NumBonds()
		}
	}
	return n / 2
}
