/*
 * commit.go, part of gorxd.
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
	"github.com/rmera/gorxd/chemgraph"
	"github.com/rmera/gorxd/logging"
	"github.com/rmera/gorxd/rxn"
)

// commit applies the events in order. A molecule takes part in at most one event per step: events
// involving an already consumed molecule are dropped. A complex takes part in at most one
// association per step, since placing it a second time would use positions that are no longer valid.
// Creation rules are applied last, so new molecules don't react in the step they are created.
func (s *Simulation) commit(evs []*Event) (Counters, error) {
	var cnt Counters
	consumed := make(map[int]bool, 2*len(evs))
	moved := make(map[int]bool)
	for _, e := range evs {
		ids := e.Mols()
		if consumed[ids[0]] || (ids[1] >= 0 && consumed[ids[1]]) {
			cnt.Conflicts++
			continue
		}
		done, err := s.apply(e, moved, &cnt)
		if err != nil {
			return cnt, rxd.ErrDecorate(err, "Simulation.commit")
		}
		if !done {
			continue
		}
		consumed[ids[0]] = true
		if ids[1] >= 0 {
			consumed[ids[1]] = true
		}
	}
	if err := s.create(&cnt); err != nil {
		return cnt, rxd.ErrDecorate(err, "Simulation.commit")
	}
	if cnt.Committed() > 0 {
		if err := s.Sys.Check(); err != nil {
			return cnt, rxd.ErrDecorate(err, "Simulation.commit")
		}
	}
	return cnt, nil
}

// apply commits one event. It returns false if the event was cancelled.
func (s *Simulation) apply(e *Event, moved map[int]bool, cnt *Counters) (bool, error) {
	S := s.Sys
	r := e.Rule
	switch r.Kind {
	case rxn.StateChange:
		if err := S.SetState(e.A, r.ProdA); err != nil {
			return false, err
		}
		cnt.StateChange++
	case rxn.Facilitated:
		if err := S.SetState(e.A, r.ProdA); err != nil {
			return false, err
		}
		cnt.Facilitated++
	case rxn.Destroy:
		if err := S.RemoveMolecule(e.A.Mol); err != nil {
			return false, err
		}
		cnt.Destroy++
	case rxn.Unbind:
		if _, err := S.Unbind(e.A, r.ProdA, r.ProdB); err != nil {
			return false, err
		}
		cnt.Unbind++
		cid := S.Mols[e.A.Mol].Complex
		groups := chemgraph.SplitGroups(S, cid)
		if len(groups) > 1 {
			parts, err := S.Split(cid, groups)
			if err != nil {
				return false, err
			}
			cnt.Split++
			s.release(e.A, e.B, r.Release)
			if r.Release > 0 {
				for _, p := range parts {
					moved[p.ID] = true
				}
			}
			s.Log.Debug("split", logging.Int("step", s.Timer.Step), logging.Int("complex", cid), logging.Int("parts", len(parts)))
		}
	case rxn.Bind:
		return s.bind(e, moved, cnt)
	}
	return true, nil
}

func (s *Simulation) bind(e *Event, moved map[int]bool, cnt *Counters) (bool, error) {
	S := s.Sys
	r := e.Rule
	ca, cb := S.Mols[e.A.Mol].Complex, S.Mols[e.B.Mol].Complex
	if ca == cb {
		if !r.Loop {
			return false, nil
		}
		if err := S.Bind(e.A, e.B, r.ProdA, r.ProdB); err != nil {
			return false, err
		}
		cnt.Loop++
		return true, nil
	}
	if moved[ca] || moved[cb] {
		cnt.Conflicts++
		return false, nil
	}
	mob, fix, ok := s.associate(e.A, e.B)
	if !ok {
		cnt.Rejected++
		return false, nil
	}
	if err := S.Bind(e.A, e.B, r.ProdA, r.ProdB); err != nil {
		return false, err
	}
	C, err := S.Merge(fix.ID, mob.ID)
	if err != nil {
		return false, err
	}
	moved[C.ID] = true
	cnt.Bind++
	s.Log.Debug("merge", logging.Int("step", s.Timer.Step), logging.Int("complex", C.ID), logging.Int("size", C.Len()))
	return true, nil
}
