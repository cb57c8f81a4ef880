/*
 * sim.go, part of gorxd.
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

// Package sim advances a reaction-diffusion System in discrete time steps. Each step goes through
// the phases Propagate, Reindex, Evaluate, Commit and Advance. Propagate and Evaluate run over
// several goroutines, Commit is the only phase that changes the molecules and complexes, and
// it runs in a single goroutine. For a given seed the trajectory does not depend on the number of workers.
package sim

import (
	"context"
	"math"

	rxd "github.com/rmera/gorxd"
	"github.com/rmera/gorxd/logging"
	"github.com/rmera/gorxd/rxn"
	"github.com/rmera/gorxd/simvol"
)

type interval struct {
	every int
	obs   Observer
}

// Simulation drives a System. It owns the System, and the spatial index, for the duration of a run.
type Simulation struct {
	Sys   *rxd.System
	Rules *rxn.Table
	Vol   *simvol.SimulVolume //nil if there are no bimolecular rules
	Timer *MDTimer
	Log   logging.Logger

	observers []interval
	workers   int
	events    Counters //last step
	total     Counters
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger. The default is logging.Default().
func WithLogger(l logging.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.Log = l
		}
	}
}

// WithObserver registers o, to be called every `every` steps (and after the last step).
// every<=0 uses the SnapshotInterval parameter.
func WithObserver(o Observer, every int) Option {
	return func(s *Simulation) {
		s.observers = append(s.observers, interval{every: every, obs: o})
	}
}

// WithStart sets the initial step and time, for runs continued from a restart file.
func WithStart(step int, t float64) Option {
	return func(s *Simulation) {
		s.Timer.SetStart(step, t)
	}
}

// New prepares a simulation of S with the rules in tab. The spatial index is built here, so
// a reaction cutoff too large for the box is reported before any step is taken.
func New(S *rxd.System, tab *rxn.Table, opts ...Option) (*Simulation, error) {
	if S == nil || tab == nil {
		return nil, rxd.NewError(rxd.ConfigError, "sim.New", "nil system or rule table")
	}
	s := &Simulation{Sys: S, Rules: tab, Timer: NewMDTimer(S.Params), Log: logging.Default()}
	s.workers = S.Params.Workers
	if s.workers < 1 {
		s.workers = 1
	}
	for _, o := range opts {
		o(s)
	}
	for i, v := range s.observers {
		if v.every <= 0 {
			s.observers[i].every = S.Params.SnapshotInterval
		}
	}
	if tab.HasBimolecular() {
		var err error
		s.Vol, err = simvol.New(S.Params.Box, S.Params.Boundary == rxd.Periodic, tab.Cutoff(), S.Params.CellSize)
		if err != nil {
			return nil, rxd.ErrDecorate(err, "sim.New")
		}
	}
	if err := S.Check(); err != nil {
		return nil, rxd.ErrDecorate(err, "sim.New")
	}
	return s, nil
}

// Events returns the events committed in the last step.
func (s *Simulation) Events() Counters { return s.events }

// Total returns the events committed since the simulation was created.
func (s *Simulation) Total() Counters { return s.total }

// Step advances the simulation by one time step. Any error is fatal: the state of the System
// can't be trusted afterwards.
func (s *Simulation) Step() error {
	T := s.Timer
	T.Start()
	if err := s.propagate(); err != nil {
		return rxd.ErrDecorate(err, "Simulation.Step")
	}
	T.Stop(Propagate)
	T.Start()
	if s.Vol != nil {
		s.Vol.Update(s.Sys)
	}
	T.Stop(Reindex)
	T.Start()
	evs, err := s.evaluate()
	if err != nil {
		return rxd.ErrDecorate(err, "Simulation.Step")
	}
	T.Stop(Evaluate)
	T.Start()
	s.events, err = s.commit(evs)
	if err != nil {
		return rxd.ErrDecorate(err, "Simulation.Step")
	}
	s.total.Add(s.events)
	T.Stop(Commit)
	T.Start()
	T.Advance()
	err = s.report(T.Done())
	T.Stop(Advance)
	return rxd.ErrDecorate(err, "Simulation.Step")
}

func every(step, n int) bool {
	return n > 0 && step%n == 0
}

// report logs progress and calls the observers that are due.
func (s *Simulation) report(last bool) error {
	T := s.Timer
	if every(T.Step, s.Sys.Params.LogInterval) || last {
		s.Log.Info("progress",
			logging.Int("step", T.Step),
			logging.Float64("time_us", T.Time),
			logging.Int("molecules", s.Sys.NumMolecules()),
			logging.Int("complexes", s.Sys.NumComplexes()),
			logging.Int("bound_pairs", s.Sys.BoundPairs()),
			logging.Int("events", s.total.Committed()),
			logging.Duration("wall", T.Total()),
		)
	}
	var snap *Snapshot
	for _, v := range s.observers {
		if !every(T.Step, v.every) && !last {
			continue
		}
		if snap == nil {
			snap = Take(s.Sys, T.Step, T.Time)
			snap.Events = s.events
			snap.Total = s.total
			snap.Wall = T.Wall
		}
		if err := v.obs.Observe(snap); err != nil {
			return err
		}
	}
	return nil
}

// Run steps the simulation until the configured number of steps or time is reached, or ctx is done.
// The context is only checked between steps. A cancelled run returns ctx.Err().
func (s *Simulation) Run(ctx context.Context) error {
	s.Log.Info("starting run",
		logging.String("params", s.Sys.Params.Summary()),
		logging.Int("molecules", s.Sys.NumMolecules()),
		logging.Int("rules", len(s.Rules.Rules)),
		logging.Float64("cutoff", s.Rules.Cutoff()),
		logging.Int("workers", s.workers),
	)
	for !s.Timer.Done() {
		select {
		case <-ctx.Done():
			s.Log.Warn("run stopped", logging.Int("step", s.Timer.Step), logging.Err(ctx.Err()))
			return ctx.Err()
		default:
		}
		if err := s.Step(); err != nil {
			s.Log.Error("run failed", logging.Int("step", s.Timer.Step), logging.Err(err))
			return err
		}
	}
	w := s.Timer.Wall
	s.Log.Info("run finished",
		logging.Int("step", s.Timer.Step),
		logging.Float64("time_us", s.Timer.Time),
		logging.Int("events", s.total.Committed()),
		logging.Int("rejected", s.total.Rejected),
		logging.Duration("propagate", w[Propagate]),
		logging.Duration("reindex", w[Reindex]),
		logging.Duration("evaluate", w[Evaluate]),
		logging.Duration("commit", w[Commit]),
	)
	return nil
}

// chunks splits n units in at most w contiguous ranges.
func chunks(n, w int) [][2]int {
	if n == 0 {
		return nil
	}
	if w > n {
		w = n
	}
	size := int(math.Ceil(float64(n) / float64(w)))
	ret := make([][2]int, 0, w)
	for b := 0; b < n; b += size {
		e := b + size
		if e > n {
			e = n
		}
		ret = append(ret, [2]int{b, e})
	}
	return ret
}
