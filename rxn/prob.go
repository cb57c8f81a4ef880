/*
 * prob.go, part of gorxd.
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

	rxd "github.com/rmera/gorxd"
	"gonum.org/v1/gonum/stat/distuv"
)

// Lambda returns the microscopic reaction rate (1/us) of a bimolecular rule in the volume
// reactivity model: the intrinsic rate spread evenly over the reactive sphere of radius sigma.
func Lambda(r *Rule) float64 {
	return r.Rate / (4.0 / 3.0 * math.Pi * r.Sigma * r.Sigma * r.Sigma)
}

// EncounterProbability returns the probability that a bimolecular rule fires during one step of length dt,
// for a pair whose interfaces are within sigma of each other.
//
// Doi: p = 1 - exp(-lambda*dt). Linear: p = min(1, lambda*dt).
func EncounterProbability(r *Rule, dt float64, model rxd.Encounter) float64 {
	l := Lambda(r) * dt
	if model == rxd.Linear {
		return math.Min(1, l)
	}
	return -math.Expm1(-l)
}

// FirstOrder returns the probability that a first order process with rate k (1/us)
// happens during a step of length dt: p = 1 - exp(-k*dt).
func FirstOrder(k, dt float64) float64 {
	return -math.Expm1(-k * dt)
}

// Probability returns the per-step firing probability of a rule, for pairs already within sigma
// in the case of bimolecular rules. Creation rules return 0, see CreationMean.
func Probability(r *Rule, p *rxd.Parameters) float64 {
	switch r.Kind {
	case Bind:
		if p.ForceAssoc {
			return 1
		}
		return EncounterProbability(r, p.TimeStep, p.Encounter)
	case Facilitated:
		return EncounterProbability(r, p.TimeStep, p.Encounter)
	case Unbind:
		if p.ForceDissoc {
			return 1
		}
		return FirstOrder(r.Rate, p.TimeStep)
	case StateChange, Destroy:
		return FirstOrder(r.Rate, p.TimeStep)
	}
	return 0
}

// CreationMean returns the expected number of molecules created by a zeroth order rule in one step.
func CreationMean(r *Rule, p *rxd.Parameters) float64 {
	return r.Rate * p.Volume() * p.TimeStep
}

// PCG adapts a math/rand/v2 PCG generator to the sources the gonum distributions draw from.
type PCG struct {
	*rand.PCG
}

// Seed reseeds the generator from a single word.
func (p PCG) Seed(seed uint64) {
	p.PCG.Seed(seed, ^seed)
}

// Poisson draws a Poisson-distributed integer with the given mean from src.
func Poisson(mean float64, src PCG) int {
	if !(mean > 0) {
		return 0
	}
	return int(distuv.Poisson{Lambda: mean, Src: src}.Rand())
}
