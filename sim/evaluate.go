/*
 * evaluate.go, part of gorxd.
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
	"sort"

	rxd "github.com/rmera/gorxd"
	"github.com/rmera/gorxd/rxn"
	v3 "github.com/rmera/gorxd/v3"
	"golang.org/x/sync/errgroup"
)

// Event is a reaction that fired during Evaluate and waits to be committed.
// A and B follow the roles of the rule: A is the rule's A site, B its B site.
type Event struct {
	Rule     *rxn.Rule
	A, B     rxd.IfaceRef //B is NoPartner for unimolecular events. A.Iface is -1 for Destroy.
	Priority uint64
}

// Mols returns the molecules taking part in the event. The second one is -1 for unimolecular events.
func (E *Event) Mols() [2]int {
	return [2]int{E.A.Mol, E.B.Mol}
}

// less orders events by priority, and ties by molecule IDs and rule.
func (E *Event) less(O *Event) bool {
	if E.Priority != O.Priority {
		return E.Priority < O.Priority
	}
	if E.A != O.A {
		return E.A.Less(O.A)
	}
	if E.B != O.B {
		return E.B.Less(O.B)
	}
	return E.Rule.Index < O.Rule.Index
}

// fires draws a uniform number and compares it with p.
func fires(p float64, r *rand.Rand) bool {
	if p <= 0 {
		return false
	}
	return p >= 1 || r.Float64() < p
}

// evaluate finds the events that fire this step, sorted in commit order.
func (s *Simulation) evaluate() ([]*Event, error) {
	S := s.Sys
	ids := S.LiveMolecules()
	perMol := make([][]*Event, len(ids))
	var g errgroup.Group
	for _, c := range chunks(len(ids), s.workers) {
		c := c
		g.Go(func() error {
			var buf []int
			for i := c[0]; i < c[1]; i++ {
				perMol[i], buf = s.evaluateMol(ids[i], buf[:0])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var evs []*Event
	for _, v := range perMol {
		evs = append(evs, v...)
	}
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].less(evs[j]) })
	return evs, nil
}

// evaluateMol draws the events of the molecule id: its unimolecular events, the dissociation of the bound
// pairs where it holds the smaller interface, and the bimolecular events with the neighbors of larger ID.
// It only reads shared state.
func (s *Simulation) evaluateMol(id int, buf []int) ([]*Event, []int) {
	S := s.Sys
	P := &S.Params
	tab := s.Rules
	m := S.Mols[id]
	r := stream(P.Seed, s.Timer.Step, phaseEvaluate, id)
	var evs []*Event
	add := func(rule *rxn.Rule, a, b rxd.IfaceRef) {
		evs = append(evs, &Event{Rule: rule, A: a, B: b, Priority: r.Uint64()})
	}
	for i, f := range m.Ifaces {
		ra := rxd.IfaceRef{Mol: id, Iface: i}
		site := rxn.SiteOf(m, i)
		for _, rule := range tab.StateChangesFor(site) {
			if fires(rxn.Probability(rule, P), r) {
				add(rule, ra, rxd.NoPartner)
			}
		}
		if !f.Bound() || f.Partner.Less(ra) {
			continue
		}
		pm := S.Mols[f.Partner.Mol]
		for _, match := range tab.UnbindFor(site, rxn.SiteOf(pm, f.Partner.Iface)) {
			if fires(rxn.Probability(match.Rule, P), r) {
				a, b := ra, f.Partner
				if match.Swap {
					a, b = b, a
				}
				add(match.Rule, a, b)
			}
		}
	}
	if m.NumBonds() == 0 {
		for _, rule := range tab.DestroyFor(m.Type.Index) {
			if fires(rxn.Probability(rule, P), r) {
				add(rule, rxd.IfaceRef{Mol: id, Iface: -1}, rxd.NoPartner)
			}
		}
	}
	if s.Vol == nil {
		return evs, buf
	}
	buf = s.Vol.Neighbors(buf, id, id)
	box := P.PeriodicBox()
	for _, j := range buf {
		o := S.Mols[j]
		sameComplex := o.Complex == m.Complex
		for i, f := range m.Ifaces {
			if f.Bound() || !tab.Reactive(m.Type.Index, i) {
				continue
			}
			si := rxn.SiteOf(m, i)
			for k, g := range o.Ifaces {
				if g.Bound() || !tab.Reactive(o.Type.Index, k) {
					continue
				}
				sk := rxn.SiteOf(o, k)
				binds := tab.BindFor(si, sk)
				facil := tab.FacilitatedFor(si, sk)
				if len(binds) == 0 && len(facil) == 0 {
					continue
				}
				dv := v3.MinImage(m.Site(i), o.Site(k), box)
				dist := v3.Norm(dv[:])
				ri, rk := rxd.IfaceRef{Mol: id, Iface: i}, rxd.IfaceRef{Mol: j, Iface: k}
				for _, list := range [][]rxn.Match{binds, facil} {
					for _, match := range list {
						rule := match.Rule
						if dist > rule.Sigma {
							continue
						}
						if rule.Kind == rxn.Bind && sameComplex && !rule.Loop {
							continue
						}
						if fires(rxn.Probability(rule, P), r) {
							a, b := ri, rk
							if match.Swap {
								a, b = b, a
							}
							add(rule, a, b)
						}
					}
				}
			}
		}
	}
	return evs, buf
}
