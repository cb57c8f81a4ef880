/*
 * rst_test.go, part of gorxd.
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

package rst

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	rxd "github.com/rmera/gorxd"
	"github.com/rmera/gorxd/rxn"
	"github.com/rmera/gorxd/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templates() []*rxd.MolTemplate {
	return []*rxd.MolTemplate{
		{Name: "A", Mass: 1, D: [3]float64{1, 1, 1}, Dr: 1, Copies: 50,
			Ifaces: []rxd.IfaceTemplate{{Name: "b", Offset: [3]float64{1, 0, 0}, States: []string{"u", "p"}}}},
		{Name: "B", Mass: 2, D: [3]float64{1, 1, 1}, Dr: 1, Copies: 50,
			Ifaces: []rxd.IfaceTemplate{{Name: "a", Offset: [3]float64{-1, 0, 0}}}},
	}
}

func rules() []rxn.Def {
	return []rxn.Def{{Name: "AB", Kind: "bind", A: rxn.SiteDef{Mol: "A", Iface: "b", State: "u"}, B: rxn.SiteDef{Mol: "B", Iface: "a"},
		ProdA: "p", Rate: 300, Sigma: 2, Reverse: 0.1}}
}

func params(steps int) rxd.Parameters {
	p := rxd.DefaultParameters()
	p.Box = [3]float64{30, 30, 30}
	p.Boundary = rxd.Periodic
	p.Seed = 3
	p.Steps = steps
	p.LogInterval = 0
	p.RestartInterval = 10
	return p
}

// run simulates the test system and writes restart frames to w.
func run(Te *testing.T, p rxd.Parameters, w *Writer) *sim.Simulation {
	S, err := rxd.NewSystem(p, templates())
	require.NoError(Te, err)
	tab, err := rxn.NewTable(rules(), S, p)
	require.NoError(Te, err)
	require.NoError(Te, sim.Populate(S))
	s, err := sim.New(S, tab, sim.WithObserver(w, p.RestartInterval))
	require.NoError(Te, err)
	require.NoError(Te, s.Run(context.Background()))
	return s
}

func TestStream(Te *testing.T) {
	p := params(30)
	var buf bytes.Buffer
	h := NewHeader(p, templates(), rules())
	w, err := NewStreamWriter(&buf, h)
	require.NoError(Te, err)
	s := run(Te, p, w)
	assert.Equal(Te, 3, w.Frames())
	require.NoError(Te, w.Close())
	require.NoError(Te, w.Close())

	r, err := NewStreamReader(&buf)
	require.NoError(Te, err)
	assert.Equal(Te, h.Run, r.Header().Run)
	assert.Equal(Te, Format, r.Header().Format)
	assert.Equal(Te, p, r.Header().Params)
	assert.Equal(Te, "B", r.Header().Templates[1].Name)
	assert.Equal(Te, rules(), r.Header().Rules)
	var steps []int
	for {
		var snap sim.Snapshot
		err := r.Next(&snap)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(Te, err)
		steps = append(steps, snap.Step)
		if snap.Step == 30 {
			assert.Equal(Te, s.Sys.BoundPairs(), snap.BoundPairs)
			assert.Equal(Te, s.Sys.NumComplexes(), len(snap.Complexes))
			assert.Equal(Te, s.Total(), snap.Total)
		}
	}
	assert.Equal(Te, []int{10, 20, 30}, steps)
	assert.Error(Te, r.Next(nil), "the reader is closed after the last frame")
}

func TestBadStream(Te *testing.T) {
	_, err := NewStreamReader(bytes.NewReader([]byte("not a restart file")))
	assert.Error(Te, err)
	_, err = NewStreamWriter(io.Discard, nil)
	assert.Error(Te, err)

	var buf bytes.Buffer
	h := NewHeader(params(1), templates(), rules())
	h.Format = "something-else"
	w, err := NewStreamWriter(&buf, h)
	require.NoError(Te, err)
	require.NoError(Te, w.Close())
	_, err = NewStreamReader(&buf)
	assert.Error(Te, err)
	assert.Error(Te, w.Observe(&sim.Snapshot{}), "closed writer")
}

func TestResume(Te *testing.T) {
	for _, name := range []string{"run.rst", "run.rst.gz"} {
		name := filepath.Join(Te.TempDir(), name)
		p := params(20)
		w, err := NewWriter(name, NewHeader(p, templates(), rules()))
		require.NoError(Te, err)
		s := run(Te, p, w)
		require.NoError(Te, w.Close())
		want := sim.Take(s.Sys, s.Timer.Step, s.Timer.Time)
		require.Greater(Te, want.BoundPairs, 0, "the test system should react")

		p.Steps = 40
		S, tab, last, err := Resume(name, &p)
		require.NoError(Te, err, name)
		assert.Equal(Te, 20, last.Step)
		assert.Equal(Te, 40, S.Params.Steps)
		got := sim.Take(S, last.Step, last.Time)
		assert.Equal(Te, want.BoundPairs, got.BoundPairs)
		require.Equal(Te, len(want.Molecules), len(got.Molecules))
		for i := range want.Molecules {
			assert.Equal(Te, want.Molecules[i].States, got.Molecules[i].States)
			assert.Equal(Te, want.Molecules[i].Partners, got.Molecules[i].Partners)
			assert.InDeltaSlice(Te, want.Molecules[i].Center[:], got.Molecules[i].Center[:], 1e-9)
		}

		s2, err := sim.New(S, tab, sim.WithStart(last.Step, last.Time))
		require.NoError(Te, err)
		require.NoError(Te, s2.Run(context.Background()))
		assert.Equal(Te, 40, s2.Timer.Step)
		assert.InDelta(Te, 40*p.TimeStep, s2.Timer.Time, 1e-9)
	}
	_, _, _, err := Resume(filepath.Join(Te.TempDir(), "missing.rst"), nil)
	assert.Error(Te, err)
}
