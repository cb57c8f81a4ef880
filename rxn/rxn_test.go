/*
 * rxn_test.go, part of gorxd.
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
	"math/rand/v2"
	"testing"

	rxd "github.com/rmera/gorxd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func templates(Te *testing.T) *rxd.System {
	ts := []*rxd.MolTemplate{
		{Name: "A", D: [3]float64{1, 1, 1}, Dr: 1,
			Ifaces: []rxd.IfaceTemplate{{Name: "b", Offset: [3]float64{1, 0, 0}, States: []string{"u", "p"}}}},
		{Name: "B", D: [3]float64{1, 1, 1}, Dr: 1,
			Ifaces: []rxd.IfaceTemplate{{Name: "a", Offset: [3]float64{0, 2, 0}}}},
	}
	S, err := rxd.NewSystem(rxd.DefaultParameters(), ts)
	require.NoError(Te, err)
	return S
}

func bindDef() Def {
	return Def{Name: "AB", Kind: "bind", A: SiteDef{"A", "b", "u"}, B: SiteDef{"B", "a", ""}, ProdA: "p", Rate: 10, Sigma: 1, Reverse: 0.5}
}

func TestNewTable(Te *testing.T) {
	S := templates(Te)
	defs := []Def{
		bindDef(),
		{Kind: "state", A: SiteDef{"A", "b", "p"}, ProdA: "u", Rate: 2},
		{Kind: "destroy", Mol: "B", Rate: 0.1},
		{Kind: "create", Mol: "A", Rate: 1e-4},
	}
	tab, err := NewTable(defs, S, S.Params)
	require.NoError(Te, err)
	require.Len(Te, tab.Rules, 5, "the reversible bind adds an unbind rule")
	a := Site{Mol: 0, Iface: 0, State: 0}
	b := Site{Mol: 1, Iface: 0, State: 0}
	m := tab.BindFor(a, b)
	require.Len(Te, m, 1)
	assert.False(Te, m[0].Swap)
	m = tab.BindFor(b, a)
	require.Len(Te, m, 1)
	assert.True(Te, m[0].Swap)
	assert.Empty(Te, tab.BindFor(Site{0, 0, 1}, b), "state p does not bind")
	u := tab.UnbindFor(Site{0, 0, 1}, b)
	require.Len(Te, u, 1)
	assert.Equal(Te, 0, u[0].Rule.ProdA)
	assert.Equal(Te, 0.5, u[0].Rule.Rate)
	assert.Len(Te, tab.StateChangesFor(Site{0, 0, 1}), 1)
	assert.Len(Te, tab.DestroyFor(1), 1)
	assert.Len(Te, tab.Creations(), 1)
	assert.True(Te, tab.Reactive(0, 0))
	assert.InDelta(Te, 1+1+2, tab.Cutoff(), 1e-12)
}

func TestTableErrors(Te *testing.T) {
	S := templates(Te)
	cases := []struct {
		name string
		defs []Def
	}{
		{"unknown kind", []Def{{Kind: "explode"}}},
		{"unknown molecule", []Def{{Kind: "bind", A: SiteDef{"X", "b", ""}, B: SiteDef{"B", "a", ""}, Rate: 1, Sigma: 1}}},
		{"unknown interface", []Def{{Kind: "bind", A: SiteDef{"A", "z", ""}, B: SiteDef{"B", "a", ""}, Rate: 1, Sigma: 1}}},
		{"unknown state", []Def{{Kind: "bind", A: SiteDef{"A", "b", "q"}, B: SiteDef{"B", "a", ""}, Rate: 1, Sigma: 1}}},
		{"no sigma", []Def{{Kind: "bind", A: SiteDef{"A", "b", ""}, B: SiteDef{"B", "a", ""}, Rate: 1}}},
		{"negative rate", []Def{{Kind: "state", A: SiteDef{"A", "b", "u"}, ProdA: "p", Rate: -1}}},
		{"no-op state change", []Def{{Kind: "state", A: SiteDef{"A", "b", "u"}, ProdA: "u", Rate: 1}}},
		{"contradictory", []Def{bindDef(), {Kind: "bind", A: SiteDef{"B", "a", ""}, B: SiteDef{"A", "b", "u"}, Rate: 3, Sigma: 2}}},
	}
	for _, c := range cases {
		_, err := NewTable(c.defs, S, S.Params)
		require.Error(Te, err, c.name)
		assert.True(Te, rxd.IsKind(err, rxd.ConfigError), c.name)
	}
	p := S.Params
	p.MaxRules = 1
	_, err := NewTable([]Def{bindDef()}, S, p)
	assert.True(Te, rxd.IsKind(err, rxd.CapacityError))
}

func TestProbabilities(Te *testing.T) {
	r := &Rule{Kind: Bind, Rate: 4.0 / 3.0 * math.Pi, Sigma: 1}
	assert.InDelta(Te, 1.0, Lambda(r), 1e-12)
	p := rxd.DefaultParameters()
	p.TimeStep = 0.1
	assert.InDelta(Te, 1-math.Exp(-0.1), Probability(r, &p), 1e-12)
	p.Encounter = rxd.Linear
	assert.InDelta(Te, 0.1, Probability(r, &p), 1e-12)
	p.TimeStep = 20
	assert.Equal(Te, 1.0, Probability(r, &p))
	p.ForceAssoc = true
	p.TimeStep = 1e-6
	assert.Equal(Te, 1.0, Probability(r, &p))
	u := &Rule{Kind: Unbind, Rate: 2}
	assert.InDelta(Te, 1-math.Exp(-2e-6), Probability(u, &p), 1e-15)
	p.ForceDissoc = true
	assert.Equal(Te, 1.0, Probability(u, &p))
	assert.Equal(Te, 0.0, Probability(&Rule{Kind: Create, Rate: 1}, &p))
}

func TestPoisson(Te *testing.T) {
	rnd := PCG{rand.NewPCG(1, 2)}
	for _, mean := range []float64{0.3, 4, 75, 1e4} {
		x := make([]float64, 20000)
		for i := range x {
			x[i] = float64(Poisson(mean, rnd))
		}
		m, v := stat.MeanVariance(x, nil)
		assert.InDelta(Te, mean, m, 0.05*mean+0.02, "mean %g", mean)
		assert.InDelta(Te, mean, v, 0.1*mean+0.05, "variance %g", mean)
	}
	assert.Equal(Te, 0, Poisson(0, rnd))
	assert.Equal(Te, 0, Poisson(math.NaN(), rnd))
	a, b := PCG{rand.NewPCG(5, 6)}, PCG{rand.NewPCG(5, 6)}
	for i := 0; i < 50; i++ {
		require.Equal(Te, Poisson(12, a), Poisson(12, b), "same stream, same draws")
	}
}
