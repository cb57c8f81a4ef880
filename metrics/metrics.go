/*
 * metrics.go, part of gorxd.
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

// Package metrics exports the progress of a simulation as prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rmera/gorxd/sim"
	"gonum.org/v1/gonum/stat"
)

// Config holds the metrics settings of a run.
type Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
	//Every is the observation interval in steps. 0 uses the snapshot interval.
	Every int `mapstructure:"every"`
}

// Collector is a sim.Observer that keeps a set of prometheus metrics up to date.
type Collector struct {
	registry *prometheus.Registry
	mu       sync.Mutex
	last     sim.Counters
	lastWall sim.PhaseTimes

	events     *prometheus.CounterVec
	phase      *prometheus.CounterVec
	step       prometheus.Gauge
	time       prometheus.Gauge
	molecules  prometheus.Gauge
	complexes  prometheus.Gauge
	boundPairs prometheus.Gauge
	meanSize   prometheus.Gauge
	sizes      prometheus.Histogram
	species    *prometheus.GaugeVec
}

// NewCollector creates a Collector with its own registry. The Go and process collectors
// are added if runtime is true.
func NewCollector(namespace string, runtime bool) (*Collector, error) {
	if namespace == "" {
		return nil, fmt.Errorf("metrics: namespace is required")
	}
	reg := prometheus.NewRegistry()
	if runtime {
		reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}))
		reg.MustRegister(prometheus.NewGoCollector())
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Subsystem: "sim", Name: name, Help: help})
	}
	c := &Collector{
		registry: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sim", Name: "events_total",
			Help: "Committed events by kind, plus rejected associations and conflicts.",
		}, []string{"kind"}),
		phase: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sim", Name: "phase_seconds_total",
			Help: "Wall time spent in each phase of the step.",
		}, []string{"phase"}),
		step:       gauge("step", "Current step."),
		time:       gauge("time_microseconds", "Simulated time."),
		molecules:  gauge("molecules", "Live molecules."),
		complexes:  gauge("complexes", "Live complexes."),
		boundPairs: gauge("bound_pairs", "Bound interface pairs."),
		meanSize:   gauge("mean_complex_size", "Mean number of molecules per complex."),
		sizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "sim", Name: "complex_size",
			Help:    "Complex sizes at each observation.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		species: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "sim", Name: "species",
			Help: "Copy number of each molecule type and type(iface~state) species.",
		}, []string{"species"}),
	}
	err := register(reg, c.events, c.phase, c.step, c.time, c.molecules, c.complexes, c.boundPairs, c.meanSize, c.sizes, c.species)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func register(reg *prometheus.Registry, cs ...prometheus.Collector) error {
	for _, v := range cs {
		if err := reg.Register(v); err != nil {
			return fmt.Errorf("metrics: registering collector: %w", err)
		}
	}
	return nil
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an http.Handler serving the metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Observe updates the metrics from snap. The counters grow by the difference between
// the running totals of snap and those of the previous observation.
func (c *Collector) Observe(snap *sim.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := snap.Total
	d.Sub(c.last)
	c.last = snap.Total
	for _, v := range []struct {
		kind string
		n    int
	}{
		{"bind", d.Bind}, {"loop", d.Loop}, {"unbind", d.Unbind}, {"split", d.Split},
		{"state", d.StateChange}, {"facilitated", d.Facilitated}, {"create", d.Create},
		{"destroy", d.Destroy}, {"rejected", d.Rejected}, {"conflict", d.Conflicts},
	} {
		if v.n > 0 {
			c.events.WithLabelValues(v.kind).Add(float64(v.n))
		}
	}
	for p := sim.Propagate; p <= sim.Advance; p++ {
		if d := snap.Wall[p] - c.lastWall[p]; d > 0 {
			c.phase.WithLabelValues(p.String()).Add(d.Seconds())
		}
	}
	c.lastWall = snap.Wall
	c.step.Set(float64(snap.Step))
	c.time.Set(snap.Time)
	c.molecules.Set(float64(len(snap.Molecules)))
	c.complexes.Set(float64(len(snap.Complexes)))
	c.boundPairs.Set(float64(snap.BoundPairs))
	sizes := snap.ComplexSizes()
	mean := 0.0
	if len(sizes) > 0 {
		mean = stat.Mean(sizes, nil)
	}
	c.meanSize.Set(mean)
	for _, v := range sizes {
		c.sizes.Observe(v)
	}
	return nil
}

// ObserveSpecies sets the species gauges from the snapshot counts.
func (c *Collector) ObserveSpecies(counts map[string]int) {
	c.species.Reset()
	for k, v := range counts {
		c.species.WithLabelValues(k).Set(float64(v))
	}
}
