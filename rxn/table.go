/*
 * table.go, part of gorxd.
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

package rxn

import (
	"math"

	rxd "github.com/rmera/gorxd"
)

// Match is a rule found for an ordered pair of sites. If Swap is true, the first site of the query
// plays the role of the rule's B and the second one that of A.
type Match struct {
	Rule *Rule
	Swap bool
}

type pairKey [2]Site

// Table holds the resolved rules, indexed for the lookups done every step. A Table is
// immutable once built, and safe for concurrent use.
type Table struct {
	Rules    []*Rule
	Defs     []Def //the definitions the table was built from
	bind     map[pairKey][]Match
	unbind   map[pairKey][]Match
	facil    map[pairKey][]Match
	state    map[Site][]*Rule
	destroy  map[int][]*Rule
	create   []*Rule
	reactive [][]bool //[template][iface] takes part in a bimolecular rule as a free interface
	cutoff   float64
}

// NewTable resolves the definitions against the templates of T and builds the table.
// Every problem in the definitions is a configuration error, and having more rules than
// p.MaxRules (if set) is a capacity error.
func NewTable(defs []Def, T rxd.Templater, p rxd.Parameters) (*Table, error) {
	tab := &Table{
		bind:    make(map[pairKey][]Match),
		unbind:  make(map[pairKey][]Match),
		facil:   make(map[pairKey][]Match),
		state:   make(map[Site][]*Rule),
		destroy: make(map[int][]*Rule),
		Defs:    append([]Def(nil), defs...),
	}
	tab.reactive = make([][]bool, T.NumTemplates())
	for i := range tab.reactive {
		tab.reactive[i] = make([]bool, len(T.Template(i).Ifaces))
	}
	for _, d := range defs {
		rules, err := resolve(d, T)
		if err != nil {
			return nil, rxd.ErrDecorate(err, "rxn.NewTable")
		}
		for _, r := range rules {
			if err := tab.add(r, T); err != nil {
				return nil, rxd.ErrDecorate(err, "rxn.NewTable")
			}
		}
	}
	if p.MaxRules > 0 && len(tab.Rules) > p.MaxRules {
		return nil, rxd.NewCapacityError("rxn.NewTable", "reaction rules", len(tab.Rules), p.MaxRules)
	}
	return tab, nil
}

func (tab *Table) add(r *Rule, T rxd.Templater) error {
	r.Index = len(tab.Rules)
	dup := func() error {
		return rxd.NewError(rxd.ConfigError, "Table.add", "rule %s contradicts a previous %s rule on the same reactants", r, r.Kind)
	}
	switch r.Kind {
	case Bind, Unbind, Facilitated:
		m := tab.bind
		if r.Kind == Unbind {
			m = tab.unbind
		} else if r.Kind == Facilitated {
			m = tab.facil
		}
		k := pairKey{r.A, r.B}
		if len(m[k]) > 0 {
			return dup()
		}
		m[k] = append(m[k], Match{Rule: r})
		if r.A != r.B {
			rk := pairKey{r.B, r.A}
			m[rk] = append(m[rk], Match{Rule: r, Swap: true})
		}
		if r.Kind.Bimolecular() {
			tab.reactive[r.A.Mol][r.A.Iface] = true
			tab.reactive[r.B.Mol][r.B.Iface] = true
			c := r.Sigma + T.Template(r.A.Mol).Radius() + T.Template(r.B.Mol).Radius()
			tab.cutoff = math.Max(tab.cutoff, c)
		}
	case StateChange:
		if len(tab.state[r.A]) > 0 {
			for _, o := range tab.state[r.A] {
				if o.ProdA == r.ProdA {
					return dup()
				}
			}
		}
		tab.state[r.A] = append(tab.state[r.A], r)
	case Destroy:
		if len(tab.destroy[r.Mol]) > 0 {
			return dup()
		}
		tab.destroy[r.Mol] = append(tab.destroy[r.Mol], r)
	case Create:
		tab.create = append(tab.create, r)
	}
	tab.Rules = append(tab.Rules, r)
	return nil
}

// BindFor returns the binding rules for a free interface in site a meeting one in site b.
func (tab *Table) BindFor(a, b Site) []Match {
	return tab.bind[pairKey{a, b}]
}

// UnbindFor returns the dissociation rules for the bound pair (a, b).
func (tab *Table) UnbindFor(a, b Site) []Match {
	return tab.unbind[pairKey{a, b}]
}

// FacilitatedFor returns the facilitated state-change rules for the pair (a, b).
func (tab *Table) FacilitatedFor(a, b Site) []Match {
	return tab.facil[pairKey{a, b}]
}

// StateChangesFor returns the unimolecular state changes available to site s.
func (tab *Table) StateChangesFor(s Site) []*Rule {
	return tab.state[s]
}

// DestroyFor returns the destruction rules for the molecule type mol.
func (tab *Table) DestroyFor(mol int) []*Rule {
	return tab.destroy[mol]
}

// Creations returns the zeroth order creation rules.
func (tab *Table) Creations() []*Rule {
	return tab.create
}

// Reactive returns true if the interface iface of the template mol appears in any bimolecular rule.
func (tab *Table) Reactive(mol, iface int) bool {
	return tab.reactive[mol][iface]
}

// HasBimolecular returns true if there is at least one bind or facilitated rule.
func (tab *Table) HasBimolecular() bool {
	return tab.cutoff > 0
}

// Cutoff returns the largest molecule center-to-center distance at which a bimolecular rule
// can fire: sigma plus the radii of both templates, maximized over the rules.
func (tab *Table) Cutoff() float64 {
	return tab.cutoff
}

// SiteOf returns the Site of the interface iface of molecule m.
func SiteOf(m *rxd.Molecule, iface int) Site {
	return Site{Mol: m.Type.Index, Iface: iface, State: m.Ifaces[iface].State}
}
