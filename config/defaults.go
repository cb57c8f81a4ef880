/*
 * defaults.go, part of gorxd.
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

package config

import (
	rxd "github.com/rmera/gorxd"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultMetricsNamespace = "gorxd"
	DefaultMetricsAddr      = ":9090"
)

// setDefaults registers the library defaults with v, so that keys missing from the file
// take them, and so that every key can be overridden from the environment.
func setDefaults(v *viper.Viper) {
	p := rxd.DefaultParameters()
	v.SetDefault("run.name", p.Name)
	v.SetDefault("run.dt", p.TimeStep)
	v.SetDefault("run.steps", p.Steps)
	v.SetDefault("run.max_time", 0.0)
	v.SetDefault("run.box", p.Box[:])
	v.SetDefault("run.boundary", p.Boundary.String())
	v.SetDefault("run.cell_size", 0.0)
	v.SetDefault("run.seed", p.Seed)
	v.SetDefault("run.workers", p.Workers)
	v.SetDefault("run.max_molecules", 0)
	v.SetDefault("run.max_complexes", 0)
	v.SetDefault("run.max_rules", 0)
	v.SetDefault("run.max_species", 0)
	v.SetDefault("run.log_interval", p.LogInterval)
	v.SetDefault("run.snapshot_interval", p.SnapshotInterval)
	v.SetDefault("run.restart_interval", p.RestartInterval)
	v.SetDefault("run.reortho_interval", p.ReorthoInterval)
	v.SetDefault("run.ortho_tol", p.OrthoTol)
	v.SetDefault("run.overlap_sep_limit", 0.0)
	v.SetDefault("run.encounter", p.Encounter.String())
	v.SetDefault("run.force_assoc", false)
	v.SetDefault("run.force_dissoc", false)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", DefaultMetricsAddr)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.every", 0)
	v.SetDefault("restart.out", "")
	v.SetDefault("restart.in", "")
}

// ApplyDefaults fills the zero-value fields of cfg for which zero is not a valid setting.
// Fields already set are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	p := rxd.DefaultParameters()
	r := &cfg.Run
	if r.Name == "" {
		r.Name = p.Name
	}
	if r.TimeStep == 0 {
		r.TimeStep = p.TimeStep
	}
	if len(r.Box) == 0 {
		r.Box = append([]float64(nil), p.Box[:]...)
	}
	if r.Boundary == "" {
		r.Boundary = p.Boundary.String()
	}
	if r.Encounter == "" {
		r.Encounter = p.Encounter.String()
	}
	if r.Workers == 0 {
		r.Workers = p.Workers
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = DefaultMetricsAddr
	}
}
