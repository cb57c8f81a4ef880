/*
 * system_test.go, part of gorxd.
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
	"testing"

	v3 "github.com/rmera/gorxd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplates() []*MolTemplate {
	return []*MolTemplate{
		{Name: "A", Mass: 1, D: [3]float64{1, 1, 1}, Dr: 0.5,
			Ifaces: []IfaceTemplate{{Name: "b", Offset: [3]float64{1, 0, 0}, States: []string{"u", "p"}}}},
		{Name: "B", Mass: 3, D: [3]float64{2, 2, 2}, Dr: 1,
			Ifaces: []IfaceTemplate{{Name: "a", Offset: [3]float64{-1, 0, 0}}, {Name: "c", Offset: [3]float64{1, 0, 0}}}},
	}
}

func testSystem(Te *testing.T, p Parameters) *System {
	S, err := NewSystem(p, testTemplates())
	require.NoError(Te, err)
	return S
}

func TestValidateTemplates(Te *testing.T) {
	ts := testTemplates()
	require.NoError(Te, ValidateTemplates(ts))
	assert.Equal(Te, 1, ts[1].Index)
	assert.Equal(Te, 1, ts[0].StateIndex(0, "p"))
	assert.Equal(Te, 0, ts[1].StateIndex(1, ""))
	assert.Equal(Te, -1, ts[0].StateIndex(0, "x"))
	assert.Equal(Te, 3, ts[1].NumSpecies())
	ts[1].Name = "A"
	err := ValidateTemplates(ts)
	require.Error(Te, err)
	assert.True(Te, IsKind(err, ConfigError))
}

func TestAddRemoveMolecule(Te *testing.T) {
	S := testSystem(Te, DefaultParameters())
	a, err := S.AddMolecule(S.Templates[0], []float64{5, 5, 5}, nil)
	require.NoError(Te, err)
	R := v3.AxisAngle([]float64{0, 0, 1}, 1.5707963267948966)
	b, err := S.AddMolecule(S.Templates[1], []float64{10, 5, 5}, R)
	require.NoError(Te, err)
	assert.Equal(Te, 2, S.NumMolecules())
	assert.Equal(Te, 2, S.NumComplexes())
	assert.InDeltaSlice(Te, []float64{6, 5, 5}, a.Site(0), 1e-12)
	assert.InDeltaSlice(Te, []float64{10, 4, 5}, b.Site(0), 1e-12)
	require.NoError(Te, S.Check())
	require.NoError(Te, S.RemoveMolecule(a.ID))
	assert.Nil(Te, S.Mol(a.ID))
	assert.Equal(Te, 1, S.NumComplexes())
	require.NoError(Te, S.Check())
	c, err := S.AddMolecule(S.Templates[0], []float64{1, 1, 1}, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 2, c.ID, "molecule IDs are not reused")
	assert.Equal(Te, a.Complex, c.Complex, "complex slots are reused")
}

func TestCapacity(Te *testing.T) {
	p := DefaultParameters()
	p.MaxMolecules = 1
	S := testSystem(Te, p)
	_, err := S.AddMolecule(S.Templates[0], []float64{5, 5, 5}, nil)
	require.NoError(Te, err)
	_, err = S.AddMolecule(S.Templates[0], []float64{6, 5, 5}, nil)
	require.Error(Te, err)
	assert.True(Te, IsKind(err, CapacityError))
	var ce *CError
	require.ErrorAs(Te, err, &ce)
	assert.Equal(Te, 2, ce.Count())
	p.MaxMolecules = 0
	p.MaxSpecies = 2
	_, err = NewSystem(p, testTemplates())
	assert.True(Te, IsKind(err, CapacityError))
}

func TestBindUnbindSymmetry(Te *testing.T) {
	S := testSystem(Te, DefaultParameters())
	a, _ := S.AddMolecule(S.Templates[0], []float64{5, 5, 5}, nil)
	b, _ := S.AddMolecule(S.Templates[1], []float64{7, 5, 5}, nil)
	ra, rb := IfaceRef{a.ID, 0}, IfaceRef{b.ID, 0}
	require.NoError(Te, S.Bind(ra, rb, 1, 0))
	assert.Equal(Te, rb, a.Ifaces[0].Partner)
	assert.Equal(Te, ra, b.Ifaces[0].Partner)
	assert.Equal(Te, "p", a.StateName(0))
	assert.Error(Te, S.Bind(ra, IfaceRef{b.ID, 1}, 0, 0), "already bound")
	assert.Error(Te, S.Check(), "bonds across complexes are inconsistent")
	_, err := S.Merge(a.Complex, b.Complex)
	require.NoError(Te, err)
	require.NoError(Te, S.Check())
	assert.Equal(Te, 1, S.BoundPairs())

	//break the symmetry by hand
	b.Ifaces[0].Partner = NoPartner
	_, err = S.Unbind(ra, 0, 0)
	require.Error(Te, err)
	assert.True(Te, IsKind(err, ConsistencyError))
	assert.Equal(Te, rb, a.Ifaces[0].Partner, "a failed unbind changes nothing")
	b.Ifaces[0].Partner = ra
	p, err := S.Unbind(ra, 0, 0)
	require.NoError(Te, err)
	assert.Equal(Te, rb, p)
	assert.False(Te, a.Ifaces[0].Bound())
	assert.False(Te, b.Ifaces[0].Bound())
}

func TestMergeSplit(Te *testing.T) {
	S := testSystem(Te, DefaultParameters())
	a, _ := S.AddMolecule(S.Templates[0], []float64{5, 5, 5}, nil)
	b, _ := S.AddMolecule(S.Templates[1], []float64{6, 5, 5}, nil)
	C, err := S.Merge(a.Complex, b.Complex)
	require.NoError(Te, err)
	assert.Equal(Te, 1, S.NumComplexes())
	assert.Equal(Te, 2, C.Len())
	//mass weighted: (1*5+3*6)/4
	assert.InDeltaSlice(Te, []float64{5.75, 5, 5}, C.COM.Row(0), 1e-12)
	assert.InDelta(Te, 2.0/3.0, C.D[0], 1e-12)
	assert.InDelta(Te, 1.0/3.0, C.Dr, 1e-12)
	_, err = S.Merge(C.ID, C.ID)
	assert.Error(Te, err)

	_, err = S.Split(C.ID, [][]int{{a.ID}})
	assert.Error(Te, err, "groups must cover every member")
	parts, err := S.Split(C.ID, [][]int{{a.ID}, {b.ID}})
	require.NoError(Te, err)
	require.Len(Te, parts, 2)
	assert.Equal(Te, 2, S.NumComplexes())
	assert.InDeltaSlice(Te, []float64{5, 5, 5}, parts[0].COM.Row(0), 1e-12)
	assert.InDeltaSlice(Te, []float64{6, 5, 5}, parts[1].COM.Row(0), 1e-12)
	require.NoError(Te, S.Check())
}

func TestRigidMotion(Te *testing.T) {
	S := testSystem(Te, DefaultParameters())
	a, _ := S.AddMolecule(S.Templates[0], []float64{5, 5, 5}, nil)
	b, _ := S.AddMolecule(S.Templates[1], []float64{7, 5, 5}, nil)
	C, _ := S.Merge(a.Complex, b.Complex)
	d := v3.Sub(a.Center(), b.Center())
	d0 := v3.Norm(d[:])
	S.RotateAbout(C, v3.AxisAngle([]float64{1, 1, 0}, 0.7), C.COM.Row(0))
	S.Translate(C, []float64{1, -2, 3})
	d = v3.Sub(a.Center(), b.Center())
	d1 := v3.Norm(d[:])
	assert.InDelta(Te, d0, d1, 1e-12)
	d = v3.Sub(a.Site(0), a.Center())
	site := v3.Norm(d[:])
	assert.InDelta(Te, 1.0, site, 1e-12)
	assert.NoError(Te, S.CheckFinite())
}

func TestPeriodicWrap(Te *testing.T) {
	p := DefaultParameters()
	p.Boundary = Periodic
	p.Box = [3]float64{10, 10, 10}
	S := testSystem(Te, p)
	a, _ := S.AddMolecule(S.Templates[0], []float64{-1, 5, 5}, nil)
	assert.InDeltaSlice(Te, []float64{9, 5, 5}, a.Center(), 1e-12)
	C := S.ComplexOf(a.ID)
	S.Translate(C, []float64{2, 0, 0})
	S.WrapComplex(C)
	assert.InDeltaSlice(Te, []float64{1, 5, 5}, C.COM.Row(0), 1e-12)
	assert.InDeltaSlice(Te, []float64{1, 5, 5}, a.Center(), 1e-12)
}
