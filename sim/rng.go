/*
 * rng.go, part of gorxd.
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

	v3 "github.com/rmera/gorxd/v3"
)

// Phases that draw random numbers. Each one gets its own family of streams.
const (
	phasePropagate uint64 = iota + 1
	phaseEvaluate
	phaseCreate
	phasePopulate
)

// splitmix64 finalizer, used to spread the stream keys over the whole PCG state.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// stream returns the random number generator of one unit of work. It depends only on the seed, the step,
// the phase and the key of the unit (a molecule ID, or the smallest member ID of a complex), so the
// draws don't depend on how the units are spread over goroutines.
func stream(seed uint64, step int, phase uint64, key int) *rand.Rand {
	return rand.New(source(seed, step, phase, key))
}

// source returns the generator behind stream. The step and the key are mixed separately,
// so large keys don't alias the streams of other steps.
func source(seed uint64, step int, phase uint64, key int) *rand.PCG {
	return rand.NewPCG(mix(seed^mix(phase)), mix(uint64(step))^mix(uint64(key)+mix(phase)))
}

// randomUnit returns a direction uniformly distributed over the sphere.
func randomUnit(r *rand.Rand) [3]float64 {
	for {
		v := [3]float64{r.NormFloat64(), r.NormFloat64(), r.NormFloat64()}
		n := v3.Norm(v[:])
		if n > 1e-8 {
			return [3]float64{v[0] / n, v[1] / n, v[2] / n}
		}
	}
}

// randomRotation returns a rotation operator uniformly distributed over SO(3), from a random unit quaternion.
func randomRotation(r *rand.Rand) *v3.Matrix {
	q := [4]float64{r.NormFloat64(), r.NormFloat64(), r.NormFloat64(), r.NormFloat64()}
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n < 1e-8 {
		return v3.Eye()
	}
	w := math.Max(-1, math.Min(1, q[0]/n))
	return v3.AxisAngle(q[1:], 2*math.Acos(w))
}
