/*
 * gocoords.go, part of gorxd.
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
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

// AddVec adds a vector to each vector of A, putting the result on the receiver.
// F and A can be the same matrix. vec must not be a view of F.
func (F *Matrix) AddVec(A, vec *Matrix) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	vr, _ := vec.Dims()
	if vr != 1 || ar != fr {
		panic(ErrShape)
	}
	v := vec.Row(0)
	for i := 0; i < ar; i++ {
		floats.AddTo(F.Row(i), A.Row(i), v)
	}
}

// SubVec subtracts the vector vec from each vector of the matrix A, putting
// the result on the receiver. F and A can be the same matrix. vec must not be a view of F.
func (F *Matrix) SubVec(A, vec *Matrix) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	vr, _ := vec.Dims()
	if vr != 1 || ar != fr {
		panic(ErrShape)
	}
	v := vec.Row(0)
	for i := 0; i < ar; i++ {
		floats.SubTo(F.Row(i), A.Row(i), v)
	}
}

// Cross puts the cross product of the first vecs of a and b in the first vec of F. Panics if error.
func (F *Matrix) Cross(a, b *Matrix) {
	if a.NVecs() < 1 || b.NVecs() < 1 || F.NVecs() < 1 {
		panic(ErrNoCrossProduct)
	}
	c := Cross(a.Row(0), b.Row(0))
	F.SetRow(0, c[:])
}

// Dot returns the dot product between the first vectors of F and B.
func (F *Matrix) Dot(B *Matrix) float64 {
	return floats.Dot(F.Row(0), B.Row(0))
}

// Norm returns the euclidean norm of the first vector of F.
func (F *Matrix) Norm() float64 {
	return floats.Norm(F.Row(0), 2)
}

// Unit puts in the receiver the normalized first vector of A.
func (F *Matrix) Unit(A *Matrix) {
	if A.Dense != F.Dense {
		F.Copy(A)
	}
	norm := F.Norm()
	if norm <= appzero {
		return
	}
	floats.Scale(1/norm, F.Row(0))
}

// Centroid puts the geometric center of the vectors of A in the first vector of F.
func (F *Matrix) Centroid(A *Matrix) {
	n := A.NVecs()
	var c [3]float64
	for i := 0; i < n; i++ {
		floats.Add(c[:], A.Row(i))
	}
	floats.Scale(1/float64(n), c[:])
	F.SetRow(0, c[:])
}

// Returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r := F.NVecs()
	v := make([]string, 0, r)
	for i := 0; i < r; i++ {
		row := F.Row(i)
		v = append(v, fmt.Sprintf("%8.3f %8.3f %8.3f", row[0], row[1], row[2]))
	}
	return "\n[" + strings.Join(v, "\n ") + " ]"
}

//Functions on raw 3-element slices. They are used in the hot loops of the
//simulation, where allocating a Matrix per pair would be wasteful.

// Cross returns the cross product of the 3D vectors a and b.
func Cross(a, b []float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Sub returns a-b for 3D vectors.
func Sub(a, b []float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Norm returns the euclidean norm of a 3D vector.
func Norm(a []float64) float64 {
	return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
}

// MinImage returns the displacement b-a under the minimum image convention
// for an orthorhombic periodic box. If box is nil, the plain difference is returned.
func MinImage(a, b []float64, box []float64) [3]float64 {
	d := Sub(b, a)
	if box == nil {
		return d
	}
	for k := 0; k < 3; k++ {
		if box[k] <= 0 {
			continue
		}
		d[k] -= box[k] * math.Round(d[k]/box[k])
	}
	return d
}

// Wrap returns the image of coordinate x inside [0,l).
func Wrap(x, l float64) float64 {
	x = math.Mod(x, l)
	if x < 0 {
		x += l
	}
	if x >= l { //can happen for tiny negative x
		x = 0
	}
	return x
}
