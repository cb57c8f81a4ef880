/*
 * run.go, part of gorxd.
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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	rxd "github.com/rmera/gorxd"
	"github.com/rmera/gorxd/config"
	"github.com/rmera/gorxd/histo"
	"github.com/rmera/gorxd/logging"
	"github.com/rmera/gorxd/metrics"
	"github.com/rmera/gorxd/rxn"
	"github.com/rmera/gorxd/sim"
	"github.com/rmera/gorxd/traj/rst"
	"github.com/spf13/cobra"
)

type runOptions struct {
	seed        uint64
	steps       int
	workers     int
	restartOut  string
	restartIn   string
	metricsAddr string
	maxSize     int
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("seed") {
				cfg.Run.Seed = opts.seed
			}
			if f.Changed("steps") {
				cfg.Run.Steps = opts.steps
			}
			if f.Changed("workers") {
				cfg.Run.Workers = opts.workers
			}
			if f.Changed("restart-out") {
				cfg.Restart.Out = opts.restartOut
			}
			if f.Changed("restart-in") {
				cfg.Restart.In = opts.restartIn
			}
			if f.Changed("metrics-addr") {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Addr = opts.metricsAddr
			}
			if root.logLevel != "" {
				cfg.Log.Level = root.logLevel
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSimulation(ctx, cmd, cfg, opts.maxSize)
		},
	}
	f := cmd.Flags()
	f.Uint64Var(&opts.seed, "seed", 0, "override run.seed")
	f.IntVar(&opts.steps, "steps", 0, "override run.steps (the step count is absolute, also when resuming)")
	f.IntVar(&opts.workers, "workers", 0, "override run.workers")
	f.StringVar(&opts.restartOut, "restart-out", "", "write restart frames to this file")
	f.StringVar(&opts.restartIn, "restart-in", "", "resume from the last frame of this restart file")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	f.IntVar(&opts.maxSize, "max-size", 32, "largest complex size in the final histogram")
	return cmd
}

func runSimulation(ctx context.Context, cmd *cobra.Command, cfg *config.Config, maxSize int) error {
	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()
	logging.SetDefault(log)

	setup, err := cfg.Build()
	if err != nil {
		return err
	}
	S, tab, start, err := initialState(setup, cfg.Restart.In, log)
	if err != nil {
		return err
	}
	var opts []sim.Option
	if start != nil {
		opts = append(opts, sim.WithStart(start.Step, start.Time))
	}
	header := rst.NewHeader(setup.Params, S.Templates, tab.Defs)
	if start != nil {
		header.Step = start.Step
	}
	log = log.With(logging.String("run", header.Run.String()))
	opts = append(opts, sim.WithLogger(log))
	log.Info("run set up", logging.Int("start", header.Step), logging.String("restart_out", cfg.Restart.Out))

	if cfg.Restart.Out != "" {
		w, err := rst.NewWriter(cfg.Restart.Out, header)
		if err != nil {
			return err
		}
		defer func() {
			if err := w.Close(); err != nil {
				log.Error("closing restart file", logging.Err(err))
			}
		}()
		opts = append(opts, sim.WithObserver(w, setup.Params.RestartInterval))
	}

	sizes := histo.NewSizes(maxSize)
	opts = append(opts, sim.WithObserver(sizes, 0))

	if cfg.Metrics.Enabled {
		col, err := metrics.NewCollector(cfg.Metrics.Namespace, true)
		if err != nil {
			return err
		}
		species := sim.ObserverFunc(func(s *sim.Snapshot) error {
			col.ObserveSpecies(s.Species(S))
			return nil
		})
		opts = append(opts, sim.WithObserver(col, cfg.Metrics.Every), sim.WithObserver(species, cfg.Metrics.Every))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: col.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", logging.Err(err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(sctx)
		}()
		log.Info("serving metrics", logging.String("addr", cfg.Metrics.Addr))
	}

	s, err := sim.New(S, tab, opts...)
	if err != nil {
		return err
	}
	if err := s.Run(ctx); err != nil {
		return err
	}
	h := sizes.Histogram()
	log.Info("complex sizes",
		logging.Int("frames", sizes.Frames()),
		logging.Float64("mean", h.Mean()),
		logging.Int("larger_than_max", h.Dropped()),
	)
	fmt.Fprintln(cmd.OutOrStdout(), h.String())
	return nil
}

// initialState returns the system to simulate, either new and populated, or rebuilt from the
// last frame of a restart file. In the latter case the frame is also returned, and the
// molecule types and rules are the ones stored in the file.
func initialState(setup *config.Setup, restartIn string, log logging.Logger) (*rxd.System, *rxn.Table, *sim.Snapshot, error) {
	if restartIn == "" {
		S, tab, err := setup.System()
		if err != nil {
			return nil, nil, nil, err
		}
		if err := sim.Populate(S); err != nil {
			return nil, nil, nil, err
		}
		return S, tab, nil, nil
	}
	S, tab, last, err := rst.Resume(restartIn, &setup.Params)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("resuming", logging.String("file", restartIn), logging.Int("step", last.Step), logging.Float64("time_us", last.Time))
	return S, tab, last, nil
}
