/*
 * rotate.go, part of gorxd.
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

package v3

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

//Rotation operators are 3x3 Matrices applied from the right: x' = x*R.

// Eye returns the 3x3 identity operator.
func Eye() *Matrix {
	return &Matrix{mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})}
}

func isOperator(R *Matrix) {
	r, c := R.Dims()
	if r != 3 || c != 3 {
		panic(ErrNotOperator)
	}
}

// Rotate rotates the vectors of src around the point ref using the operator rot,
// and puts the result in dst. dst and src can be the same Matrix, but ref must
// not be a view of either. The norms of (x-ref) are preserved as long as rot is
// orthonormal.
func Rotate(dst, src, rot, ref *Matrix) {
	isOperator(rot)
	if ref == nil {
		dst.Mul(src, rot)
		return
	}
	dst.SubVec(src, ref)
	dst.Mul(dst, rot)
	dst.AddVec(dst, ref)
}

// RotateVec applies rot to the single vector v, returning the result.
func RotateVec(v []float64, rot *Matrix) [3]float64 {
	isOperator(rot)
	r := rot.RawMatrix()
	d := r.Data
	s := r.Stride
	return [3]float64{
		v[0]*d[0] + v[1]*d[s] + v[2]*d[2*s],
		v[0]*d[1] + v[1]*d[s+1] + v[2]*d[2*s+1],
		v[0]*d[2] + v[1]*d[s+2] + v[2]*d[2*s+2],
	}
}

// AxisAngle returns an operator that rotates by angle radians
// (counter-clockwise, right hand rule) around axis. axis does not need to be normalized.
// If axis is the zero vector, the identity is returned.
func AxisAngle(axis []float64, angle float64) *Matrix {
	n := Norm(axis)
	if n <= appzero || angle == 0 {
		return Eye()
	}
	kx, ky, kz := axis[0]/n, axis[1]/n, axis[2]/n
	c := math.Cos(angle)
	s := math.Sin(angle)
	t := 1 - c
	//This is the transpose of the usual (column vector) Rodrigues matrix, since
	//we apply operators from the right.
	operator := []float64{
		c + t*kx*kx, t*kx*ky + s*kz, t*kx*kz - s*ky,
		t*kx*ky - s*kz, c + t*ky*ky, t*ky*kz + s*kx,
		t*kx*kz + s*ky, t*ky*kz - s*kx, c + t*kz*kz,
	}
	return &Matrix{mat.NewDense(3, 3, operator)}
}

// RotationVector returns the operator for a rotation around w by |w| radians.
func RotationVector(w []float64) *Matrix {
	return AxisAngle(w, Norm(w))
}

// RotatorToAlign returns an operator that, applied to the direction u, aligns it with the
// direction v. Neither needs to be normalized. If u and v are antiparallel, the rotation is by
// pi around an arbitrary axis perpendicular to u.
func RotatorToAlign(u, v []float64) *Matrix {
	nu := Norm(u)
	nv := Norm(v)
	if nu <= appzero || nv <= appzero {
		return Eye()
	}
	cr := Cross(u, v)
	s := Norm(cr[:]) / (nu * nv)
	c := (u[0]*v[0] + u[1]*v[1] + u[2]*v[2]) / (nu * nv)
	if s > 1e-9 {
		return AxisAngle(cr[:], math.Atan2(s, c))
	}
	if c > 0 {
		return Eye()
	}
	//antiparallel. Pick the coordinate axis least aligned with u to build a perpendicular.
	ref := []float64{1, 0, 0}
	if math.Abs(u[0]) > math.Abs(u[1]) {
		ref = []float64{0, 1, 0}
	}
	if math.Abs(u[2]) < math.Abs(u[0]) && math.Abs(u[2]) < math.Abs(u[1]) {
		ref = []float64{0, 0, 1}
	}
	perp := Cross(u, ref)
	return AxisAngle(perp[:], math.Pi)
}

// OrthoDrift returns the largest absolute element of R^T*R - I, a measure of how far the
// operator R is from orthonormal.
func OrthoDrift(R *Matrix) float64 {
	isOperator(R)
	var p mat.Dense
	p.Mul(R.Dense.T(), R.Dense)
	m := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			e := p.At(i, j)
			if i == j {
				e -= 1
			}
			if a := math.Abs(e); a > m {
				m = a
			}
		}
	}
	return m
}

// Reorthonormalize replaces R with the closest proper rotation (the orthogonal polar factor U*V^T
// of its singular value decomposition, with the sign fixed so the determinant is +1).
func Reorthonormalize(R *Matrix) error {
	isOperator(R)
	var svd mat.SVD
	if ok := svd.Factorize(R.Dense, mat.SVDFull); !ok {
		return Error{"SVD factorization failed", []string{"Reorthonormalize"}, true}
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	R.Dense.Mul(&U, V.T())
	if det(R.Dense) < 0 {
		for i := 0; i < 3; i++ {
			U.Set(i, 2, -U.At(i, 2))
		}
		R.Dense.Mul(&U, V.T())
	}
	if !R.IsFinite() {
		return Error{"Non-finite rotation operator", []string{"Reorthonormalize"}, true}
	}
	return nil
}

// Det returns the determinant of the 3x3 operator R.
func Det(R *Matrix) float64 {
	return det(R.Dense)
}
