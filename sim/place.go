/*
 * place.go, part of gorxd.
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

// complexState is enough to undo a rigid motion of a complex.
type complexState struct {
	com, frame *v3.Matrix
}

func saveState(C *rxd.Complex) complexState {
	return complexState{com: v3.Clone(C.COM), frame: v3.Clone(C.Frame)}
}

func (c complexState) restore(S *rxd.System, C *rxd.Complex) {
	C.COM.Copy(c.com)
	C.Frame.Copy(c.frame)
	S.Place(C)
}

// mobility orders complexes for association: the first one moves. Smaller complexes move,
// then the faster, then the one with the larger key.
func movesFirst(a, b *rxd.Complex) bool {
	if a.Immobile() != b.Immobile() {
		return b.Immobile()
	}
	if a.Len() != b.Len() {
		return a.Len() < b.Len()
	}
	da, db := a.D[0]+a.D[1]+a.D[2], b.D[0]+b.D[1]+b.D[2]
	if da != db {
		return da > db
	}
	return key(a) > key(b)
}

// associate puts the complexes of the interfaces a and b in the bound geometry: the mobile complex is
// rotated so its interface points against the other one, and translated so both interfaces coincide.
// It returns the mobile and the fixed complexes, and false if the association has to be cancelled
// because of an overlap or a wall, in which case nothing is changed.
func (s *Simulation) associate(a, b rxd.IfaceRef) (mobile, fixed *rxd.Complex, ok bool) {
	S := s.Sys
	P := &S.Params
	mob, fix := S.ComplexOf(a.Mol), S.ComplexOf(b.Mol)
	ma, fa := a, b
	if !movesFirst(mob, fix) {
		mob, fix = fix, mob
		ma, fa = b, a
	}
	if mob.Immobile() {
		return nil, nil, false
	}
	mm, fm := S.Mols[ma.Mol], S.Mols[fa.Mol]
	saved := saveState(mob)
	//bring the mobile complex to the image closest to the fixed interface
	d := v3.MinImage(fm.Site(fa.Iface), mm.Site(ma.Iface), P.PeriodicBox())
	target := [3]float64{fm.Site(fa.Iface)[0] + d[0], fm.Site(fa.Iface)[1] + d[1], fm.Site(fa.Iface)[2] + d[2]}
	shift := v3.Sub(target[:], mm.Site(ma.Iface))
	S.Translate(mob, shift[:])

	uf := v3.Sub(fm.Site(fa.Iface), fm.Center())
	um := v3.Sub(mm.Site(ma.Iface), mm.Center())
	if mob.Dr > 0 && v3.Norm(uf[:]) > 0 && v3.Norm(um[:]) > 0 {
		R := v3.RotatorToAlign(um[:], []float64{-uf[0], -uf[1], -uf[2]})
		pivot := append([]float64(nil), mm.Site(ma.Iface)...)
		S.RotateAbout(mob, R, pivot)
	}
	shift = v3.Sub(fm.Site(fa.Iface), mm.Site(ma.Iface))
	S.Translate(mob, shift[:])
	if !s.placementOK(mob, fix) {
		saved.restore(S, mob)
		return nil, nil, false
	}
	return mob, fix, true
}

// placementOK checks the walls and the minimum separation between the members of two complexes.
func (s *Simulation) placementOK(mob, fix *rxd.Complex) bool {
	S := s.Sys
	P := &S.Params
	if P.Boundary == rxd.Reflect && !inside(S, mob) {
		return false
	}
	if !mob.COM.IsFinite() {
		return false
	}
	lim := P.OverlapSepLimit
	if lim <= 0 {
		return true
	}
	box := P.PeriodicBox()
	for _, i := range mob.Members {
		for _, j := range fix.Members {
			d := v3.MinImage(S.Mols[i].Center(), S.Mols[j].Center(), box)
			if v3.Norm(d[:]) < lim {
				return false
			}
		}
	}
	return true
}

// release pushes the two products of a dissociation apart by dist, along the line joining the two interfaces.
// The move of each product is cancelled if it would push it through a wall.
func (s *Simulation) release(a, b rxd.IfaceRef, dist float64) {
	S := s.Sys
	P := &S.Params
	ca, cb := S.ComplexOf(a.Mol), S.ComplexOf(b.Mol)
	if ca == cb || dist <= 0 {
		return
	}
	ma, mb := S.Mols[a.Mol], S.Mols[b.Mol]
	u := v3.MinImage(ma.Center(), mb.Center(), P.PeriodicBox())
	n := v3.Norm(u[:])
	if n == 0 {
		return
	}
	wa, wb := 0.5, 0.5
	switch {
	case ca.Immobile() && cb.Immobile():
		return
	case ca.Immobile():
		wa, wb = 0, 1
	case cb.Immobile():
		wa, wb = 1, 0
	}
	for _, v := range []struct {
		C *rxd.Complex
		w float64
	}{{ca, -wa}, {cb, wb}} {
		if v.w == 0 {
			continue
		}
		saved := saveState(v.C)
		d := []float64{u[0] / n * dist * v.w, u[1] / n * dist * v.w, u[2] / n * dist * v.w}
		S.Translate(v.C, d)
		if P.Boundary == rxd.Periodic {
			S.WrapComplex(v.C)
		} else if !inside(S, v.C) {
			saved.restore(S, v.C)
		}
	}
}
