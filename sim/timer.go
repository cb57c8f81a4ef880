/*
 * timer.go, part of gorxd.
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
	"time"

	rxd "github.com/rmera/gorxd"
)

// Phase is a stage of a simulation step.
type Phase int

const (
	Propagate Phase = iota
	Reindex
	Evaluate
	Commit
	Advance
	nPhases
)

var phaseNames = [nPhases]string{"propagate", "reindex", "evaluate", "commit", "advance"}

func (P Phase) String() string {
	if P < 0 || P >= nPhases {
		return "unknown"
	}
	return phaseNames[P]
}

// PhaseTimes is the wall time spent in each phase.
type PhaseTimes [nPhases]time.Duration

// MDTimer keeps the simulated time, and the wall time spent in each phase.
// The simulated time is computed from the step count, so it does not accumulate rounding errors.
type MDTimer struct {
	Step    int
	Time    float64 //us
	Dt      float64
	Steps   int     //the run ends when Step reaches Steps
	MaxTime float64 //if >0, the run also ends when Time reaches MaxTime

	step0 int
	time0 float64
	Wall  PhaseTimes
	begin time.Time
}

// NewMDTimer returns a timer at step 0 and time 0.
func NewMDTimer(p rxd.Parameters) *MDTimer {
	return &MDTimer{Dt: p.TimeStep, Steps: p.Steps, MaxTime: p.MaxTime}
}

// SetStart sets the current step and time, for runs continued from a restart.
func (T *MDTimer) SetStart(step int, t float64) {
	T.Step, T.step0 = step, step
	T.Time, T.time0 = t, t
}

// Advance increments the step counter and the simulated time.
func (T *MDTimer) Advance() {
	T.Step++
	T.Time = T.time0 + float64(T.Step-T.step0)*T.Dt
}

// Done returns true when the configured number of steps or simulated time has been reached.
func (T *MDTimer) Done() bool {
	if T.Step >= T.Steps {
		return true
	}
	return T.MaxTime > 0 && T.Time >= T.MaxTime-1e-9*T.Dt
}

// Start begins timing a phase.
func (T *MDTimer) Start() {
	T.begin = time.Now()
}

// Stop adds the wall time elapsed since the last Start to the phase p, and returns it.
func (T *MDTimer) Stop(p Phase) time.Duration {
	d := time.Since(T.begin)
	T.Wall[p] += d
	return d
}

// Total returns the wall time spent in all phases.
func (T *MDTimer) Total() time.Duration {
	var t time.Duration
	for _, v := range T.Wall {
		t += v
	}
	return t
}
