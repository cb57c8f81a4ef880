/*
 * params.go, part of gorxd.
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
	"fmt"
	"math"
	"strings"
)

// Boundary is the kind of boundary condition of the simulation box.
type Boundary int

const (
	Reflect Boundary = iota
	Periodic
)

func (B Boundary) String() string {
	if B == Periodic {
		return "periodic"
	}
	return "reflect"
}

// ParseBoundary returns the Boundary for the given name.
func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(s) {
	case "", "reflect", "reflective":
		return Reflect, nil
	case "periodic", "pbc":
		return Periodic, nil
	}
	return Reflect, NewError(ConfigError, "ParseBoundary", "unknown boundary %q", s)
}

// Encounter selects the model used to turn an intrinsic binding rate into a per-step probability.
type Encounter int

const (
	//Doi is the volume-reactivity model: p = 1 - exp(-lambda*dt), lambda = ka/(4/3*pi*sigma^3).
	Doi Encounter = iota
	//Linear is the first order truncation of Doi: p = min(1, lambda*dt).
	Linear
)

func (E Encounter) String() string {
	if E == Linear {
		return "linear"
	}
	return "doi"
}

// ParseEncounter returns the Encounter model for the given name.
func ParseEncounter(s string) (Encounter, error) {
	switch strings.ToLower(s) {
	case "", "doi":
		return Doi, nil
	case "linear":
		return Linear, nil
	}
	return Doi, NewError(ConfigError, "ParseEncounter", "unknown encounter model %q", s)
}

// Parameters are the simulation-wide constants. They are set up once and not
// changed during a run. A zero maximum means no limit.
type Parameters struct {
	Name     string
	TimeStep float64 //us
	Steps    int     //number of steps to run
	MaxTime  float64 //if >0, the run also stops when this simulated time is reached
	Box      [3]float64
	Boundary Boundary
	//CellSize is the edge of the spatial index cells. If 0, the largest reaction cutoff is used.
	CellSize float64
	Seed     uint64
	Workers  int

	MaxMolecules int
	MaxComplexes int
	MaxRules     int
	MaxSpecies   int

	LogInterval      int
	SnapshotInterval int
	RestartInterval  int

	//ReorthoInterval is how often (in steps) complex frames are re-orthonormalized.
	ReorthoInterval int
	//OrthoTol is the largest drift from orthonormality tolerated after re-orthonormalization.
	OrthoTol float64
	//OverlapSepLimit is the smallest separation between molecule centers from different
	//complexes allowed after an association.
	OverlapSepLimit float64
	Encounter       Encounter

	ForceAssoc  bool
	ForceDissoc bool
}

// DefaultParameters returns a set of parameters with the library defaults.
func DefaultParameters() Parameters {
	return Parameters{
		Name:             "gorxd",
		TimeStep:         0.1,
		Steps:            1000,
		Box:              [3]float64{100, 100, 100},
		Boundary:         Reflect,
		Seed:             1,
		Workers:          1,
		LogInterval:      100,
		SnapshotInterval: 100,
		RestartInterval:  1000,
		ReorthoInterval:  100,
		OrthoTol:         1e-9,
		Encounter:        Doi,
	}
}

// Validate checks the parameters for consistency.
func (P *Parameters) Validate() error {
	bad := func(format string, args ...interface{}) error {
		return NewError(ConfigError, "Parameters.Validate", format, args...)
	}
	if !(P.TimeStep > 0) || math.IsInf(P.TimeStep, 0) {
		return bad("time step must be positive, got %v", P.TimeStep)
	}
	if P.Steps < 0 || P.MaxTime < 0 {
		return bad("negative step count or maximum time")
	}
	for k := 0; k < 3; k++ {
		if !(P.Box[k] > 0) || math.IsInf(P.Box[k], 0) {
			return bad("box dimensions must be positive, got %v", P.Box)
		}
	}
	if P.CellSize < 0 || P.OverlapSepLimit < 0 || P.OrthoTol < 0 {
		return bad("negative cell size, overlap limit or orthonormality tolerance")
	}
	if P.MaxMolecules < 0 || P.MaxComplexes < 0 || P.MaxRules < 0 || P.MaxSpecies < 0 {
		return bad("negative maxima")
	}
	if P.Workers < 0 || P.LogInterval < 0 || P.SnapshotInterval < 0 || P.RestartInterval < 0 || P.ReorthoInterval < 0 {
		return bad("negative worker count or interval")
	}
	if P.Boundary != Reflect && P.Boundary != Periodic {
		return bad("unknown boundary %d", P.Boundary)
	}
	return nil
}

// PeriodicBox returns the box dimensions as a slice if the boundaries are periodic, nil otherwise.
// It is meant to be given to v3.MinImage.
func (P *Parameters) PeriodicBox() []float64 {
	if P.Boundary != Periodic {
		return nil
	}
	return P.Box[:]
}

// Volume returns the volume of the simulation box (nm^3).
func (P *Parameters) Volume() float64 {
	return P.Box[0] * P.Box[1] * P.Box[2]
}

// Summary returns a one line description of the parameters.
func (P *Parameters) Summary() string {
	return fmt.Sprintf("%s: dt=%g steps=%d box=%gx%gx%g %s seed=%d encounter=%s", P.Name, P.TimeStep, P.Steps,
		P.Box[0], P.Box[1], P.Box[2], P.Boundary, P.Seed, P.Encounter)
}
