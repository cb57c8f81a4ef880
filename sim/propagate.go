/*
 * propagate.go, part of gorxd.
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
	"math"
	"math/rand/v2"

	rxd "github.com/rmera/gorxd"
	v3 "github.com/rmera/gorxd/v3"
	"golang.org/x/sync/errgroup"
)

// key returns the key of the random stream of a complex: its smallest member ID. Unlike the complex ID,
// it does not depend on how complex slots were recycled.
func key(C *rxd.Complex) int {
	k := C.Members[0]
	for _, v := range C.Members[1:] {
		if v < k {
			k = v
		}
	}
	return k
}

// propagate moves and rotates every mobile complex by a Brownian step.
func (s *Simulation) propagate() error {
	S := s.Sys
	ids := S.LiveComplexes()
	var g errgroup.Group
	for _, c := range chunks(len(ids), s.workers) {
		c := c
		g.Go(func() error {
			for _, id := range ids[c[0]:c[1]] {
				if err := s.move(S.Complexes[id]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// inside returns true if every member center of C is within the box.
func inside(S *rxd.System, C *rxd.Complex) bool {
	for _, id := range C.Members {
		c := S.Mols[id].Center()
		for k := 0; k < 3; k++ {
			if c[k] < 0 || c[k] > S.Params.Box[k] {
				return false
			}
		}
	}
	return true
}

// outside returns, per axis, whether any member center of C is out of the box.
func outside(S *rxd.System, C *rxd.Complex) [3]bool {
	var ret [3]bool
	for _, id := range C.Members {
		c := S.Mols[id].Center()
		for k := 0; k < 3; k++ {
			if c[k] < 0 || c[k] > S.Params.Box[k] {
				ret[k] = true
			}
		}
	}
	return ret
}

// move applies one Brownian step to the complex C. Only C and its members are modified,
// so different complexes can be moved concurrently.
func (s *Simulation) move(C *rxd.Complex) error {
	S := s.Sys
	P := &S.Params
	T := s.Timer
	if !C.Immobile() {
		r := stream(P.Seed, T.Step, phasePropagate, key(C))
		d, R := brownian(C, P.TimeStep, r)
		com0 := v3.Clone(C.COM)
		frame0 := v3.Clone(C.Frame)
		apply := func(d [3]float64) {
			if R != nil {
				C.Frame.Mul(C.Frame, R)
			}
			C.COM.AddVec(C.COM, v3.Vec(d[0], d[1], d[2]))
			S.Place(C)
		}
		undo := func() {
			C.COM.Copy(com0)
			C.Frame.Copy(frame0)
			S.Place(C)
		}
		apply(d)
		switch P.Boundary {
		case rxd.Periodic:
			S.WrapComplex(C)
		default:
			if out := outside(S, C); out[0] || out[1] || out[2] {
				//mirror the offending components of the displacement
				undo()
				for k := 0; k < 3; k++ {
					if out[k] {
						d[k] = -d[k]
					}
				}
				apply(d)
				if !inside(S, C) {
					undo()
				}
			}
		}
	}
	return s.checkFrame(C)
}

// brownian draws the translation and rotation of C for a step of length dt.
// The rotation is nil when C does not rotate.
func brownian(C *rxd.Complex, dt float64, r *rand.Rand) ([3]float64, *v3.Matrix) {
	var d [3]float64
	for k := 0; k < 3; k++ {
		d[k] = math.Sqrt(2*C.D[k]*dt) * r.NormFloat64()
	}
	if C.Dr == 0 {
		return d, nil
	}
	sd := math.Sqrt(2 * C.Dr * dt)
	w := []float64{sd * r.NormFloat64(), sd * r.NormFloat64(), sd * r.NormFloat64()}
	return d, v3.RotationVector(w)
}

// checkFrame re-orthonormalizes the frame of C when due, or when it drifted beyond the tolerance,
// and returns a NumericalError if the frame or the COM are not usable.
func (s *Simulation) checkFrame(C *rxd.Complex) error {
	P := &s.Sys.Params
	if !C.COM.IsFinite() || !C.Frame.IsFinite() {
		return rxd.NewError(rxd.NumericalError, "Simulation.checkFrame", "non-finite position or orientation in complex %d", C.ID)
	}
	drift := v3.OrthoDrift(C.Frame)
	if !every(s.Timer.Step+1, P.ReorthoInterval) && drift <= P.OrthoTol {
		return nil
	}
	if drift == 0 {
		return nil
	}
	if err := v3.Reorthonormalize(C.Frame); err != nil {
		return rxd.WrapError(rxd.NumericalError, "Simulation.checkFrame", err)
	}
	if d := v3.OrthoDrift(C.Frame); d > P.OrthoTol {
		return rxd.NewError(rxd.NumericalError, "Simulation.checkFrame", "frame of complex %d drifted %g from orthonormal, tolerance %g", C.ID, d, P.OrthoTol)
	}
	s.Sys.Place(C)
	return nil
}
