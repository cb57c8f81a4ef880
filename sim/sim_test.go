/*
 * sim_test.go, part of gorxd.
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
	"context"
	"math"
	"testing"

	rxd "github.com/rmera/gorxd"
	"github.com/rmera/gorxd/rxn"
	v3 "github.com/rmera/gorxd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abTemplates(D, Dr float64, copies int) []*rxd.MolTemplate {
	return []*rxd.MolTemplate{
		{Name: "A", Mass: 1, D: [3]float64{D, D, D}, Dr: Dr, Copies: copies,
			Ifaces: []rxd.IfaceTemplate{{Name: "b", Offset: [3]float64{1, 0, 0}, States: []string{"u", "p"}}}},
		{Name: "B", Mass: 1, D: [3]float64{D, D, D}, Dr: Dr, Copies: copies,
			Ifaces: []rxd.IfaceTemplate{{Name: "a", Offset: [3]float64{-1, 0, 0}}}},
	}
}

func abBind(ka, sigma, koff float64) rxn.Def {
	return rxn.Def{Name: "AB", Kind: "bind", A: rxn.SiteDef{Mol: "A", Iface: "b", State: "u"}, B: rxn.SiteDef{Mol: "B", Iface: "a"},
		Rate: ka, Sigma: sigma, Reverse: koff}
}

func newSim(Te *testing.T, p rxd.Parameters, ts []*rxd.MolTemplate, defs []rxn.Def, opts ...Option) *Simulation {
	S, err := rxd.NewSystem(p, ts)
	require.NoError(Te, err)
	tab, err := rxn.NewTable(defs, S, p)
	require.NoError(Te, err)
	require.NoError(Te, Populate(S))
	s, err := New(S, tab, opts...)
	require.NoError(Te, err)
	return s
}

func params(seed uint64) rxd.Parameters {
	p := rxd.DefaultParameters()
	p.Box = [3]float64{40, 40, 40}
	p.Boundary = rxd.Periodic
	p.Seed = seed
	p.TimeStep = 0.1
	p.Steps = 60
	p.LogInterval = 0
	p.SnapshotInterval = 10
	return p
}

func run(Te *testing.T, workers int) *Snapshot {
	p := params(7)
	p.Workers = workers
	var last *Snapshot
	obs := ObserverFunc(func(s *Snapshot) error { last = s; return nil })
	s := newSim(Te, p, abTemplates(1, 0.5, 150), []rxn.Def{abBind(50, 1.5, 0.5)}, WithObserver(obs, 0))
	require.NoError(Te, s.Run(context.Background()))
	require.NotNil(Te, last)
	return last
}

func TestDeterminism(Te *testing.T) {
	a := run(Te, 1)
	b := run(Te, 1)
	c := run(Te, 4)
	assert.Equal(Te, 60, a.Step)
	assert.Greater(Te, a.Total.Bind, 0, "the test system should react")
	assert.Equal(Te, a.Molecules, b.Molecules)
	assert.Equal(Te, a.Complexes, b.Complexes)
	assert.Equal(Te, a.Molecules, c.Molecules, "the trajectory must not depend on the number of workers")
	assert.Equal(Te, a.Total, c.Total)
}

func TestInvariants(Te *testing.T) {
	p := params(11)
	p.Workers = 3
	s := newSim(Te, p, abTemplates(2, 1, 100), []rxn.Def{abBind(80, 1.5, 2)})
	n := s.Sys.NumMolecules()
	for i := 0; i < 80; i++ {
		before := s.Sys.NumComplexes()
		require.NoError(Te, s.Step())
		require.NoError(Te, s.Sys.Check())
		assert.Equal(Te, n, s.Sys.NumMolecules(), "molecules are conserved")
		ev := s.Events()
		assert.Equal(Te, before-ev.Bind+ev.Split, s.Sys.NumComplexes(), "complexes change only by merges and splits")
		members := 0
		for _, c := range s.Sys.Complexes {
			if c == nil {
				continue
			}
			members += c.Len()
			com := c.COM.Row(0)
			for k := 0; k < 3; k++ {
				require.True(Te, com[k] >= 0 && com[k] < p.Box[k], "wrapped COM")
			}
		}
		assert.Equal(Te, n, members)
	}
	assert.Greater(Te, s.Total().Unbind, 0)
}

// Two touching molecules bind with the probability of the encounter model.
func TestBindingScenario(Te *testing.T) {
	const dt = 0.1
	const sigma = 1.0
	ka := math.Ln2 / dt * 4.0 / 3.0 * math.Pi * sigma * sigma * sigma //p = 0.5
	fired := 0
	const trials = 300
	for seed := 0; seed < trials; seed++ {
		p := params(uint64(seed))
		p.TimeStep = dt
		ts := abTemplates(1e-4, 0, 0)
		S, err := rxd.NewSystem(p, ts)
		require.NoError(Te, err)
		_, err = S.AddMolecule(ts[0], []float64{10, 10, 10}, nil)
		require.NoError(Te, err)
		_, err = S.AddMolecule(ts[1], []float64{12, 10, 10}, nil)
		require.NoError(Te, err)
		tab, err := rxn.NewTable([]rxn.Def{abBind(ka, sigma, 0)}, S, p)
		require.NoError(Te, err)
		s, err := New(S, tab)
		require.NoError(Te, err)
		require.NoError(Te, s.Step())
		if S.BoundPairs() == 0 {
			assert.Equal(Te, 2, S.NumComplexes())
			continue
		}
		fired++
		require.Equal(Te, 1, S.NumComplexes())
		C := S.ComplexOf(0)
		assert.Equal(Te, 2, C.Len())
		d := v3.Sub(S.Mols[0].Site(0), S.Mols[1].Site(0))
		assert.InDelta(Te, 0, v3.Norm(d[:]), 1e-9, "the bound interfaces coincide")
	}
	frac := float64(fired) / trials
	assert.InDelta(Te, 0.5, frac, 0.12)
}

func TestForceAssoc(Te *testing.T) {
	p := params(3)
	p.ForceAssoc = true
	ts := abTemplates(0.01, 0.01, 0)
	S, err := rxd.NewSystem(p, ts)
	require.NoError(Te, err)
	S.AddMolecule(ts[0], []float64{10, 10, 10}, nil)
	//B points the wrong way, it has to be turned around
	S.AddMolecule(ts[1], []float64{10, 11.5, 10}, v3.AxisAngle([]float64{0, 0, 1}, math.Pi/2))
	tab, err := rxn.NewTable([]rxn.Def{abBind(1e-9, 2.5, 0)}, S, p)
	require.NoError(Te, err)
	s, err := New(S, tab)
	require.NoError(Te, err)
	require.NoError(Te, s.Step())
	require.Equal(Te, 1, S.BoundPairs())
	a, b := S.Mols[0], S.Mols[1]
	d := v3.Sub(a.Site(0), b.Site(0))
	assert.InDelta(Te, 0, v3.Norm(d[:]), 1e-9)
	ua := v3.Sub(a.Site(0), a.Center())
	ub := v3.Sub(b.Site(0), b.Center())
	cos := (ua[0]*ub[0] + ua[1]*ub[1] + ua[2]*ub[2]) / (v3.Norm(ua[:]) * v3.Norm(ub[:]))
	assert.InDelta(Te, -1, cos, 1e-9, "the interfaces point against each other")
}

func TestOverlapRejection(Te *testing.T) {
	p := params(3)
	p.ForceAssoc = true
	p.OverlapSepLimit = 2.5
	ts := abTemplates(0.01, 0, 0)
	S, _ := rxd.NewSystem(p, ts)
	S.AddMolecule(ts[0], []float64{10, 10, 10}, nil)
	S.AddMolecule(ts[1], []float64{12, 10, 10}, nil)
	tab, err := rxn.NewTable([]rxn.Def{abBind(1, 1, 0)}, S, p)
	require.NoError(Te, err)
	s, err := New(S, tab)
	require.NoError(Te, err)
	require.NoError(Te, s.Step())
	assert.Equal(Te, 0, S.BoundPairs())
	assert.Equal(Te, 1, s.Events().Rejected)
}

// A molecule with two interfaces and two candidate partners takes part in a single event.
func TestExclusivity(Te *testing.T) {
	p := params(5)
	p.ForceAssoc = true
	ts := []*rxd.MolTemplate{
		{Name: "Hub", D: [3]float64{0.001, 0.001, 0.001},
			Ifaces: []rxd.IfaceTemplate{{Name: "x", Offset: [3]float64{1, 0, 0}}, {Name: "y", Offset: [3]float64{-1, 0, 0}}}},
		{Name: "L", D: [3]float64{0.001, 0.001, 0.001}, Ifaces: []rxd.IfaceTemplate{{Name: "h", Offset: [3]float64{0.5, 0, 0}}}},
	}
	S, _ := rxd.NewSystem(p, ts)
	S.AddMolecule(ts[0], []float64{20, 20, 20}, nil)
	S.AddMolecule(ts[1], []float64{21.5, 20, 20}, v3.AxisAngle([]float64{0, 0, 1}, math.Pi))
	S.AddMolecule(ts[1], []float64{18.5, 20, 20}, nil)
	defs := []rxn.Def{
		{Kind: "bind", A: rxn.SiteDef{Mol: "Hub", Iface: "x"}, B: rxn.SiteDef{Mol: "L", Iface: "h"}, Rate: 1, Sigma: 1},
		{Kind: "bind", A: rxn.SiteDef{Mol: "Hub", Iface: "y"}, B: rxn.SiteDef{Mol: "L", Iface: "h"}, Rate: 1, Sigma: 1},
	}
	tab, err := rxn.NewTable(defs, S, p)
	require.NoError(Te, err)
	s, err := New(S, tab)
	require.NoError(Te, err)
	require.NoError(Te, s.Step())
	assert.Equal(Te, 1, S.BoundPairs())
	assert.Equal(Te, 1, s.Events().Bind)
	assert.Equal(Te, 1, s.Events().Conflicts)
	require.NoError(Te, s.Step())
	assert.Equal(Te, 2, S.BoundPairs(), "the hub binds the second partner in the next step")
	assert.Equal(Te, 1, S.NumComplexes())
}

// A three-member linear complex splits in two when one of its bonds breaks.
func TestSplitScenario(Te *testing.T) {
	p := params(1)
	p.Boundary = rxd.Reflect
	p.ForceDissoc = true
	ts := []*rxd.MolTemplate{
		{Name: "X", Mass: 1, Ifaces: []rxd.IfaceTemplate{{Name: "r", Offset: [3]float64{0.5, 0, 0}}}},
		{Name: "Y", Mass: 1, Ifaces: []rxd.IfaceTemplate{{Name: "l", Offset: [3]float64{-0.5, 0, 0}}, {Name: "r", Offset: [3]float64{0.5, 0, 0}}}},
		{Name: "Z", Mass: 2, Ifaces: []rxd.IfaceTemplate{{Name: "l", Offset: [3]float64{-0.5, 0, 0}}}},
	}
	S, err := rxd.NewSystem(p, ts)
	require.NoError(Te, err)
	x, _ := S.AddMolecule(ts[0], []float64{10, 10, 10}, nil)
	y, _ := S.AddMolecule(ts[1], []float64{11, 10, 10}, nil)
	z, _ := S.AddMolecule(ts[2], []float64{12, 10, 10}, nil)
	require.NoError(Te, S.Bind(rxd.IfaceRef{Mol: x.ID, Iface: 0}, rxd.IfaceRef{Mol: y.ID, Iface: 0}, 0, 0))
	require.NoError(Te, S.Bind(rxd.IfaceRef{Mol: y.ID, Iface: 1}, rxd.IfaceRef{Mol: z.ID, Iface: 0}, 0, 0))
	C, _ := S.Merge(x.Complex, y.Complex)
	C, _ = S.Merge(C.ID, z.Complex)
	require.Equal(Te, 3, C.Len())
	defs := []rxn.Def{{Kind: "unbind", A: rxn.SiteDef{Mol: "Y", Iface: "r"}, B: rxn.SiteDef{Mol: "Z", Iface: "l"}, Rate: 1}}
	tab, err := rxn.NewTable(defs, S, p)
	require.NoError(Te, err)
	s, err := New(S, tab)
	require.NoError(Te, err)
	require.NoError(Te, s.Step())
	assert.Equal(Te, 1, s.Events().Split)
	require.Equal(Te, 2, S.NumComplexes())
	xy, zc := S.ComplexOf(x.ID), S.ComplexOf(z.ID)
	assert.Equal(Te, xy, S.ComplexOf(y.ID))
	assert.Equal(Te, 2, xy.Len())
	assert.Equal(Te, 1, zc.Len())
	assert.InDeltaSlice(Te, []float64{10.5, 10, 10}, xy.COM.Row(0), 1e-9)
	assert.InDeltaSlice(Te, []float64{12, 10, 10}, zc.COM.Row(0), 1e-9)
	assert.True(Te, x.Ifaces[0].Bound())
	assert.False(Te, z.Ifaces[0].Bound())
	require.NoError(Te, S.Check())
}

func TestReflectingWalls(Te *testing.T) {
	p := params(9)
	p.Boundary = rxd.Reflect
	p.Box = [3]float64{8, 8, 8}
	s := newSim(Te, p, abTemplates(5, 1, 20), nil)
	for i := 0; i < 50; i++ {
		require.NoError(Te, s.Step())
		for _, m := range s.Sys.Mols {
			c := m.Center()
			for k := 0; k < 3; k++ {
				require.True(Te, c[k] >= 0 && c[k] <= p.Box[k])
			}
		}
	}
}

func TestCreateDestroy(Te *testing.T) {
	p := params(2)
	defs := []rxn.Def{
		{Kind: "create", Mol: "A", Rate: 1e-3},
		{Kind: "destroy", Mol: "B", Rate: 1000},
	}
	s := newSim(Te, p, abTemplates(1, 1, 10), defs)
	require.NoError(Te, s.Step())
	ev := s.Events()
	assert.Equal(Te, 10, ev.Destroy, "every B is destroyed")
	assert.Greater(Te, ev.Create, 0)
	assert.Equal(Te, 10+ev.Create, s.Sys.NumMolecules())
	require.NoError(Te, s.Sys.Check())
}

func TestStateChange(Te *testing.T) {
	p := params(2)
	defs := []rxn.Def{
		{Kind: "state", A: rxn.SiteDef{Mol: "A", Iface: "b", State: "u"}, ProdA: "p", Rate: 1000},
	}
	s := newSim(Te, p, abTemplates(1, 1, 5), defs)
	require.NoError(Te, s.Step())
	assert.Equal(Te, 5, s.Events().StateChange)
	snap := Take(s.Sys, 1, 0.1)
	sp := snap.Species(s.Sys)
	assert.Equal(Te, 5, sp["A(b~p)"])
	assert.Equal(Te, 0, sp["A(b~u)"])
	assert.Equal(Te, 5, sp["B"])
}

// A facilitated change flips the state of one interface and leaves both molecules free.
func TestFacilitated(Te *testing.T) {
	p := params(3)
	ts := abTemplates(1e-4, 0, 0)
	S, err := rxd.NewSystem(p, ts)
	require.NoError(Te, err)
	_, err = S.AddMolecule(ts[0], []float64{10, 10, 10}, nil)
	require.NoError(Te, err)
	_, err = S.AddMolecule(ts[1], []float64{12, 10, 10}, nil)
	require.NoError(Te, err)
	defs := []rxn.Def{{Kind: "facilitated", A: rxn.SiteDef{Mol: "A", Iface: "b", State: "u"}, B: rxn.SiteDef{Mol: "B", Iface: "a"},
		ProdA: "p", Rate: 1e6, Sigma: 1}}
	tab, err := rxn.NewTable(defs, S, p)
	require.NoError(Te, err)
	s, err := New(S, tab)
	require.NoError(Te, err)
	require.NoError(Te, s.Step())
	assert.Equal(Te, 1, s.Events().Facilitated)
	require.NoError(Te, s.Step())
	assert.Equal(Te, 0, s.Events().Facilitated, "the product state doesn't react again")
	sp := Take(S, 2, 0.2).Species(S)
	assert.Equal(Te, 1, sp["A(b~p)"])
	assert.Equal(Te, 0, S.BoundPairs())
	assert.Equal(Te, 2, S.NumComplexes())
}

func TestCutoffTooLarge(Te *testing.T) {
	p := params(1)
	p.Box = [3]float64{5, 40, 40}
	S, err := rxd.NewSystem(p, abTemplates(1, 1, 0))
	require.NoError(Te, err)
	tab, err := rxn.NewTable([]rxn.Def{abBind(1, 1, 0)}, S, p)
	require.NoError(Te, err)
	_, err = New(S, tab)
	require.Error(Te, err)
	assert.True(Te, rxd.IsKind(err, rxd.ConfigError))
}

func TestRestore(Te *testing.T) {
	p := params(4)
	s := newSim(Te, p, abTemplates(1, 1, 60), []rxn.Def{abBind(300, 2, 0.1)})
	for i := 0; i < 20; i++ {
		require.NoError(Te, s.Step())
	}
	snap := Take(s.Sys, s.Timer.Step, s.Timer.Time)
	require.Greater(Te, snap.BoundPairs, 0)
	S2, err := Restore(snap, p, abTemplates(1, 1, 60))
	require.NoError(Te, err)
	snap2 := Take(S2, snap.Step, snap.Time)
	assert.Equal(Te, snap.BoundPairs, snap2.BoundPairs)
	assert.Equal(Te, len(snap.Complexes), len(snap2.Complexes))
	require.Equal(Te, len(snap.Molecules), len(snap2.Molecules))
	for i := range snap.Molecules {
		a, b := snap.Molecules[i], snap2.Molecules[i]
		assert.Equal(Te, a.ID, b.ID)
		assert.Equal(Te, a.States, b.States)
		assert.Equal(Te, a.Partners, b.Partners)
		assert.InDeltaSlice(Te, a.Center[:], b.Center[:], 1e-9)
	}
}

// An A-B dimer whose members lie on both sides of the periodic boundary must be restored
// in one piece, whether the snapshot carries the complex bodies or not.
func TestRestoreAcrossBoundary(Te *testing.T) {
	p := params(3)
	ts := abTemplates(1, 1, 0)
	S, err := rxd.NewSystem(p, ts)
	require.NoError(Te, err)
	a, err := S.AddMolecule(ts[0], []float64{39, 20, 20}, nil)
	require.NoError(Te, err)
	b, err := S.AddMolecule(ts[1], []float64{1, 20, 20}, nil)
	require.NoError(Te, err)
	S.Translate(S.Cplx(b.Complex), []float64{40, 0, 0})
	require.NoError(Te, S.Bind(rxd.IfaceRef{Mol: a.ID}, rxd.IfaceRef{Mol: b.ID}, 0, 0))
	_, err = S.Merge(a.Complex, b.Complex)
	require.NoError(Te, err)
	require.NoError(Te, S.Check())
	snap := Take(S, 0, 0)

	bare := *snap
	bare.Complexes = nil
	bare.Molecules = append([]MolState(nil), snap.Molecules...)
	for i := range bare.Molecules {
		bare.Molecules[i].Sites = nil
		//as saved by a run that wrapped every molecule on its own
		for k := 0; k < 3; k++ {
			bare.Molecules[i].Center[k] = v3.Wrap(bare.Molecules[i].Center[k], p.Box[k])
		}
	}
	for name, sn := range map[string]*Snapshot{"with bodies": snap, "without bodies": &bare} {
		S2, err := Restore(sn, p, abTemplates(1, 1, 0))
		require.NoError(Te, err, name)
		a2, b2 := S2.Mol(a.ID), S2.Mol(b.ID)
		require.Equal(Te, a2.Complex, b2.Complex, name)
		C := S2.Cplx(a2.Complex)
		d := v3.Sub(a2.Center(), b2.Center())
		assert.InDelta(Te, 2, v3.Norm(d[:]), 1e-9, name)
		d = v3.Sub(a2.Site(0), b2.Site(0))
		assert.InDelta(Te, 0, v3.Norm(d[:]), 1e-9, "%s: bound sites coincide", name)
		for i := range C.Members {
			assert.InDelta(Te, 1, v3.Norm(C.Body[i].Row(0)), 1e-9, "%s: member %d is 1 nm from the COM", name, i)
		}
		com := C.COM.Row(0)
		for k := 0; k < 3; k++ {
			assert.True(Te, com[k] >= 0 && com[k] < p.Box[k], "%s: wrapped COM", name)
		}
	}
}

// A run stopped, saved and resumed follows the same trajectory as an uninterrupted one.
func TestResumeContinuesTrajectory(Te *testing.T) {
	p := params(9)
	defs := []rxn.Def{abBind(200, 1.5, 0.3)}
	const half = 25
	whole := newSim(Te, p, abTemplates(1, 0.5, 80), defs)
	first := newSim(Te, p, abTemplates(1, 0.5, 80), defs)
	for i := 0; i < half; i++ {
		require.NoError(Te, whole.Step())
		require.NoError(Te, first.Step())
	}
	snap := Take(first.Sys, first.Timer.Step, first.Timer.Time)
	require.Greater(Te, snap.BoundPairs, 0)
	S, err := Restore(snap, p, abTemplates(1, 0.5, 80))
	require.NoError(Te, err)
	tab, err := rxn.NewTable(defs, S, p)
	require.NoError(Te, err)
	resumed, err := New(S, tab, WithStart(snap.Step, snap.Time))
	require.NoError(Te, err)
	for i := 0; i < half; i++ {
		require.NoError(Te, whole.Step())
		require.NoError(Te, resumed.Step())
	}
	want := Take(whole.Sys, whole.Timer.Step, whole.Timer.Time)
	got := Take(resumed.Sys, resumed.Timer.Step, resumed.Timer.Time)
	assert.Equal(Te, want.Step, got.Step)
	assert.Equal(Te, want.Molecules, got.Molecules)
	assert.Equal(Te, want.BoundPairs, got.BoundPairs)
	//complex IDs depend on how the slots were recycled, the rest must match
	byKey := func(s *Snapshot) map[int]CplxState {
		ret := make(map[int]CplxState, len(s.Complexes))
		for _, c := range s.Complexes {
			k := c.Members[0]
			for _, m := range c.Members {
				k = min(k, m)
			}
			c.ID = 0
			ret[k] = c
		}
		return ret
	}
	assert.Equal(Te, byKey(want), byKey(got))
	tot := whole.Total()
	tot.Sub(first.Total())
	assert.Equal(Te, tot, resumed.Total())
}

func TestRunCancel(Te *testing.T) {
	p := params(1)
	calls := 0
	obs := ObserverFunc(func(*Snapshot) error { calls++; return nil })
	s := newSim(Te, p, abTemplates(1, 1, 5), nil, WithObserver(obs, 20))
	require.NoError(Te, s.Run(context.Background()))
	assert.Equal(Te, 3, calls)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s = newSim(Te, p, abTemplates(1, 1, 5), nil)
	assert.ErrorIs(Te, s.Run(ctx), context.Canceled)
	assert.Equal(Te, 0, s.Timer.Step)
}

func TestTimer(Te *testing.T) {
	p := rxd.DefaultParameters()
	p.TimeStep = 0.1
	p.Steps = 100
	p.MaxTime = 0.5
	T := NewMDTimer(p)
	for !T.Done() {
		T.Advance()
	}
	assert.Equal(Te, 5, T.Step)
	assert.InDelta(Te, 0.5, T.Time, 1e-12)
	T.SetStart(10, 1.0)
	T.Advance()
	assert.InDelta(Te, 1.1, T.Time, 1e-12)
	assert.Equal(Te, "commit", Commit.String())
}

func TestStreamKeys(Te *testing.T) {
	seen := make(map[uint64][2]int)
	for _, step := range []int{0, 1, 2, 1 << 10} {
		for _, key := range []int{0, 1, 1 << 24, 1<<24 + 1, 2 << 24, 1 << 34} {
			x := stream(1, step, phaseEvaluate, key).Uint64()
			prev, ok := seen[x]
			require.False(Te, ok, "step %d key %d gets the stream of step %d key %d", step, key, prev[0], prev[1])
			seen[x] = [2]int{step, key}
		}
	}
	assert.NotEqual(Te, stream(1, 0, phaseEvaluate, 1<<24).Uint64(), stream(1, 1, phaseEvaluate, 0).Uint64())
	assert.NotEqual(Te, stream(1, 0, phaseEvaluate, 3).Uint64(), stream(1, 0, phasePropagate, 3).Uint64())
	assert.Equal(Te, stream(1, 3, phaseCreate, 2).Uint64(), stream(1, 3, phaseCreate, 2).Uint64())
}

func TestChunks(Te *testing.T) {
	assert.Equal(Te, [][2]int{{0, 4}, {4, 8}, {8, 10}}, chunks(10, 3))
	assert.Equal(Te, [][2]int{{0, 1}, {1, 2}}, chunks(2, 8))
	assert.Nil(Te, chunks(0, 4))
}
