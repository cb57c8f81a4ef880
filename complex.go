/*
 * complex.go, part of gorxd.
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
	"math"

	v3 "github.com/rmera/gorxd/v3"
)

// Complex is a rigid aggregate of bound molecules. It moves as one body: the absolute
// coordinates of each member are Body*Frame+COM.
type Complex struct {
	ID      int
	Members []int //molecule IDs
	COM     *v3.Matrix
	Frame   *v3.Matrix //3x3 orientation operator
	//Body and BodyOrient hold, for each member (same order as Members), its coordinates relative to
	//the COM and its orientation, both in the complex frame.
	Body       []*v3.Matrix
	BodyOrient []*v3.Matrix
	D          [3]float64
	Dr         float64
}

// Len returns the number of members.
func (C *Complex) Len() int {
	return len(C.Members)
}

// Immobile returns true if the complex does not diffuse.
func (C *Complex) Immobile() bool {
	return C.D[0] == 0 && C.D[1] == 0 && C.D[2] == 0 && C.Dr == 0
}

// reframe recomputes the COM, diffusion coefficients and body coordinates of C from the
// current absolute coordinates of its members, which must be continuous (not wrapped across
// a periodic boundary). The frame is reset to the identity.
func (S *System) reframe(C *Complex) {
	var com [3]float64
	wsum := 0.0
	weighted := true
	for _, id := range C.Members {
		if S.Mols[id].Type.Mass <= 0 {
			weighted = false
			break
		}
	}
	var invD [3]float64
	invDr := 0.0
	stuck := [3]bool{}
	stuckRot := false
	for _, id := range C.Members {
		m := S.Mols[id]
		w := 1.0
		if weighted {
			w = m.Type.Mass
		}
		c := m.Center()
		for k := 0; k < 3; k++ {
			com[k] += w * c[k]
			if m.Type.D[k] == 0 {
				stuck[k] = true
			} else {
				invD[k] += 1 / m.Type.D[k]
			}
		}
		wsum += w
		if m.Type.Dr == 0 {
			stuckRot = true
		} else {
			invDr += 1 / m.Type.Dr
		}
	}
	for k := 0; k < 3; k++ {
		com[k] /= wsum
		C.D[k] = 0
		if !stuck[k] && invD[k] > 0 {
			C.D[k] = 1 / invD[k]
		}
	}
	C.Dr = 0
	if !stuckRot && invDr > 0 {
		C.Dr = 1 / invDr
	}
	if C.COM == nil {
		C.COM = v3.Zeros(1)
	}
	C.COM.SetRow(0, com[:])
	S.WrapComplex(C)
	C.Frame = v3.Eye()
	C.Body = make([]*v3.Matrix, len(C.Members))
	C.BodyOrient = make([]*v3.Matrix, len(C.Members))
	for i, id := range C.Members {
		m := S.Mols[id]
		b := v3.Clone(m.Coords)
		b.SubVec(b, C.COM)
		C.Body[i] = b
		C.BodyOrient[i] = v3.Clone(m.Orient)
		m.Complex = C.ID
	}
}

// WrapComplex translates C (COM and the absolute coordinates of the members)
// so the COM lies inside a periodic box. It does nothing for reflecting boundaries.
func (S *System) WrapComplex(C *Complex) {
	if S.Params.Boundary != Periodic {
		return
	}
	com := C.COM.Row(0)
	var shift [3]float64
	moved := false
	for k := 0; k < 3; k++ {
		w := v3.Wrap(com[k], S.Params.Box[k])
		shift[k] = w - com[k]
		if math.Abs(shift[k]) > 0 {
			moved = true
		}
	}
	if !moved {
		return
	}
	sh := v3.Vec(shift[0], shift[1], shift[2])
	C.COM.AddVec(C.COM, sh)
	for _, id := range C.Members {
		m := S.Mols[id]
		m.Coords.AddVec(m.Coords, sh)
	}
}

// Place recomputes the absolute coordinates and orientation of every member of C
// from its body coordinates, frame and COM.
func (S *System) Place(C *Complex) {
	for i, id := range C.Members {
		m := S.Mols[id]
		m.Coords.Mul(C.Body[i], C.Frame)
		m.Coords.AddVec(m.Coords, C.COM)
		m.Orient.Mul(C.BodyOrient[i], C.Frame)
	}
}

// SetBody replaces the COM, frame and body coordinates and orientations of C, the last two
// given in the order of C.Members, and places the members. It is meant to rebuild a complex
// from saved state, so nothing is wrapped. The diffusion coefficients are not changed.
func (S *System) SetBody(C *Complex, com []float64, frame *v3.Matrix, body, bodyOrient []*v3.Matrix) error {
	const caller = "System.SetBody"
	if len(body) != C.Len() || len(bodyOrient) != C.Len() {
		return NewError(ConsistencyError, caller, "complex %d has %d members, %d body and %d orientation blocks given", C.ID, C.Len(), len(body), len(bodyOrient))
	}
	for i, id := range C.Members {
		if body[i].NVecs() != S.Mols[id].Coords.NVecs() || bodyOrient[i].NVecs() != 3 {
			return NewError(ConsistencyError, caller, "body block %d of complex %d does not match molecule %d", i, C.ID, id)
		}
	}
	if frame.NVecs() != 3 || v3.OrthoDrift(frame) > 1e-6 {
		return NewError(NumericalError, caller, "frame of complex %d is not a rotation", C.ID)
	}
	C.COM.SetRow(0, com)
	C.Frame = v3.Clone(frame)
	C.Body = body
	C.BodyOrient = bodyOrient
	S.Place(C)
	return nil
}

// Translate moves C rigidly by d. The frame is not changed.
func (S *System) Translate(C *Complex, d []float64) {
	dv := v3.Vec(d[0], d[1], d[2])
	C.COM.AddVec(C.COM, dv)
	for _, id := range C.Members {
		m := S.Mols[id]
		m.Coords.AddVec(m.Coords, dv)
	}
}

// RotateAbout rotates C rigidly with the operator R around the point ref. Both
// the COM and the frame are updated, and the members are placed accordingly.
func (S *System) RotateAbout(C *Complex, R *v3.Matrix, ref []float64) {
	p := v3.Vec(ref[0], ref[1], ref[2])
	v3.Rotate(C.COM, C.COM, R, p)
	C.Frame.Mul(C.Frame, R)
	S.Place(C)
}
