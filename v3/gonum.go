/*
 * gonum.go, part of gorxd.
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

//gonum.go contains most of what is needed for handling the gonum/mat types.

package v3

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space.
// Within the package it is understood that a "vector" is a row vector, i.e. the
// cartesian coordinates of a point in 3D space.
type Matrix struct {
	*mat.Dense
}

func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

func Dense2Matrix(A *mat.Dense) *Matrix {
	return &Matrix{A}
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
// data is used as the backing slice, it is not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice lenght %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

// Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

// Vec returns a 1x3 matrix with the given coordinates.
func Vec(x, y, z float64) *Matrix {
	return &Matrix{mat.NewDense(1, 3, []float64{x, y, z})}
}

// Clone returns a deep copy of A.
func Clone(A *Matrix) *Matrix {
	r := Zeros(A.NVecs())
	r.Copy(A.Dense)
	return r
}

// NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// VecView returns a view of the given vector of the matrix.
// Changes in the view are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

// View returns a view of F starting from the vector i and spanning r vectors.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)
	return &Matrix{ret}
}

// Row returns the raw slice backing the ith vector of F. Writes to the slice
// modify F.
func (F *Matrix) Row(i int) []float64 {
	return F.Dense.RawRowView(i)
}

// SetRow sets the ith vector of F to the first 3 elements of v.
func (F *Matrix) SetRow(i int, v []float64) {
	if len(v) < 3 {
		panic(ErrNotEnoughElements)
	}
	copy(F.Dense.RawRowView(i), v[:3])
}

// Mul wraps mat.Dense.Mul to take care of the case when one of the
// arguments is also the receiver. The mat function would compare F (Matrix)
// with A (mat.Dense) and would not know that internally F.Dense==A.Dense, hence the need for this function.
func (F *Matrix) Mul(A, B mat.Matrix) {
	if a, ok := A.(*Matrix); ok {
		A = a.Dense
	}
	if b, ok := B.(*Matrix); ok {
		B = b.Dense
	}
	F.Dense.Mul(A, B)
}

// Copy wraps mat.Dense.Copy so a Matrix can be given directly.
func (F *Matrix) Copy(A mat.Matrix) {
	if a, ok := A.(*Matrix); ok {
		A = a.Dense
	}
	F.Dense.Copy(A)
}

// Equal returns true if F and A have the same dimensions and all
// their elements are within tol of each other.
func (F *Matrix) Equal(A *Matrix, tol float64) bool {
	return mat.EqualApprox(F.Dense, A.Dense, tol)
}

// IsFinite returns false if any element in F is NaN or infinite.
func (F *Matrix) IsFinite() bool {
	r := F.NVecs()
	for i := 0; i < r; i++ {
		row := F.Row(i)
		if floats.HasNaN(row) {
			return false
		}
		for _, v := range row {
			if v > maxfinite || v < -maxfinite {
				return false
			}
		}
	}
	return true
}

// det returns the determinant of a 3x3 matrix. Panics if the matrix is not 3x3.
func det(A mat.Matrix) float64 {
	r, c := A.Dims()
	if r != 3 || c != 3 {
		panic(ErrDeterminant)
	}
	return (A.At(0, 0)*(A.At(1, 1)*A.At(2, 2)-A.At(2, 1)*A.At(1, 2)) - A.At(1, 0)*(A.At(0, 1)*A.At(2, 2)-A.At(2, 1)*A.At(0, 2)) + A.At(2, 0)*(A.At(0, 1)*A.At(1, 2)-A.At(1, 1)*A.At(0, 2)))
}

//Errors

type errorInt interface {
	Error() string
	Critical() bool
	Decorate(string) []string
}

// Error is the error type returned by the v3 functions.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("gorxd/v3: A Matrix should have 3 columns")
	ErrNoCrossProduct    = PanicMsg("gorxd/v3: Invalid matrix for cross product")
	ErrNotEnoughElements = PanicMsg("gorxd/v3: not enough elements in Matrix")
	ErrDeterminant       = PanicMsg("gorxd/v3: Determinants are only available for 3x3 matrices")
	ErrShape             = PanicMsg("gorxd/v3: Dimension mismatch")
	ErrNotOperator       = PanicMsg("gorxd/v3: Rotation operators must be 3x3")
)

const maxfinite = 1e300
