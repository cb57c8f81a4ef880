/*
 * config.go, part of gorxd.
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

// Package config reads the description of a gorxd run: simulation parameters, molecule types,
// reactions, logging and metrics.
package config

import (
	"fmt"
	"strings"

	rxd "github.com/rmera/gorxd"
	"github.com/rmera/gorxd/logging"
	"github.com/rmera/gorxd/metrics"
	"github.com/rmera/gorxd/rxn"
)

// Config is the whole run description, as read from YAML.
type Config struct {
	Run       RunConfig         `mapstructure:"run"`
	Molecules []MoleculeConfig  `mapstructure:"molecules"`
	Reactions []rxn.Def         `mapstructure:"reactions"`
	Log       logging.LogConfig `mapstructure:"log"`
	Metrics   metrics.Config    `mapstructure:"metrics"`
	Restart   RestartConfig     `mapstructure:"restart"`
}

// RunConfig holds the simulation parameters. Units are nm and us.
type RunConfig struct {
	Name     string    `mapstructure:"name"`
	TimeStep float64   `mapstructure:"dt"`
	Steps    int       `mapstructure:"steps"`
	MaxTime  float64   `mapstructure:"max_time"`
	Box      []float64 `mapstructure:"box"` //one value for a cubic box, or three
	Boundary string    `mapstructure:"boundary"`
	CellSize float64   `mapstructure:"cell_size"`
	Seed     uint64    `mapstructure:"seed"`
	Workers  int       `mapstructure:"workers"`

	MaxMolecules int `mapstructure:"max_molecules"`
	MaxComplexes int `mapstructure:"max_complexes"`
	MaxRules     int `mapstructure:"max_rules"`
	MaxSpecies   int `mapstructure:"max_species"`

	LogInterval      int `mapstructure:"log_interval"`
	SnapshotInterval int `mapstructure:"snapshot_interval"`
	RestartInterval  int `mapstructure:"restart_interval"`
	ReorthoInterval  int `mapstructure:"reortho_interval"`

	OrthoTol        float64 `mapstructure:"ortho_tol"`
	OverlapSepLimit float64 `mapstructure:"overlap_sep_limit"`
	Encounter       string  `mapstructure:"encounter"`
	ForceAssoc      bool    `mapstructure:"force_assoc"`
	ForceDissoc     bool    `mapstructure:"force_dissoc"`
}

// MoleculeConfig describes a molecule type.
type MoleculeConfig struct {
	Name   string        `mapstructure:"name"`
	Mass   float64       `mapstructure:"mass"`
	D      []float64     `mapstructure:"d"` //one value for isotropic diffusion, or three
	Dr     float64       `mapstructure:"dr"`
	Copies int           `mapstructure:"copies"`
	Ifaces []IfaceConfig `mapstructure:"ifaces"`
}

// IfaceConfig describes a binding interface.
type IfaceConfig struct {
	Name   string    `mapstructure:"name"`
	Offset []float64 `mapstructure:"offset"`
	States []string  `mapstructure:"states"`
}

// RestartConfig sets where restart frames are written, and where a run is resumed from.
type RestartConfig struct {
	Out string `mapstructure:"out"`
	In  string `mapstructure:"in"`
}

func vec3(what string, v []float64) ([3]float64, error) {
	switch len(v) {
	case 1:
		return [3]float64{v[0], v[0], v[0]}, nil
	case 3:
		return [3]float64{v[0], v[1], v[2]}, nil
	}
	return [3]float64{}, fmt.Errorf("config: %s needs 1 or 3 values, got %d", what, len(v))
}

// Parameters returns the simulation parameters.
func (c *Config) Parameters() (rxd.Parameters, error) {
	r := c.Run
	p := rxd.Parameters{
		Name:             r.Name,
		TimeStep:         r.TimeStep,
		Steps:            r.Steps,
		MaxTime:          r.MaxTime,
		CellSize:         r.CellSize,
		Seed:             r.Seed,
		Workers:          r.Workers,
		MaxMolecules:     r.MaxMolecules,
		MaxComplexes:     r.MaxComplexes,
		MaxRules:         r.MaxRules,
		MaxSpecies:       r.MaxSpecies,
		LogInterval:      r.LogInterval,
		SnapshotInterval: r.SnapshotInterval,
		RestartInterval:  r.RestartInterval,
		ReorthoInterval:  r.ReorthoInterval,
		OrthoTol:         r.OrthoTol,
		OverlapSepLimit:  r.OverlapSepLimit,
		ForceAssoc:       r.ForceAssoc,
		ForceDissoc:      r.ForceDissoc,
	}
	var err error
	if p.Box, err = vec3("run.box", r.Box); err != nil {
		return p, err
	}
	if p.Boundary, err = rxd.ParseBoundary(r.Boundary); err != nil {
		return p, err
	}
	if p.Encounter, err = rxd.ParseEncounter(r.Encounter); err != nil {
		return p, err
	}
	return p, nil
}

// Templates returns a new set of molecule templates.
func (c *Config) Templates() ([]*rxd.MolTemplate, error) {
	ret := make([]*rxd.MolTemplate, 0, len(c.Molecules))
	for _, m := range c.Molecules {
		t := &rxd.MolTemplate{Name: m.Name, Mass: m.Mass, Dr: m.Dr, Copies: m.Copies}
		if len(m.D) > 0 {
			d, err := vec3("molecule "+m.Name+" d", m.D)
			if err != nil {
				return nil, err
			}
			t.D = d
		}
		for _, f := range m.Ifaces {
			off, err := vec3(fmt.Sprintf("interface %s(%s) offset", m.Name, f.Name), f.Offset)
			if err != nil {
				return nil, err
			}
			t.Ifaces = append(t.Ifaces, rxd.IfaceTemplate{Name: f.Name, Offset: off, States: append([]string(nil), f.States...)})
		}
		ret = append(ret, t)
	}
	return ret, nil
}

// Setup is a run description turned into the objects the simulation uses.
type Setup struct {
	Params    rxd.Parameters
	Templates []*rxd.MolTemplate
	Rules     []rxn.Def
}

// Build turns c into a Setup.
func (c *Config) Build() (*Setup, error) {
	p, err := c.Parameters()
	if err != nil {
		return nil, err
	}
	ts, err := c.Templates()
	if err != nil {
		return nil, err
	}
	return &Setup{Params: p, Templates: ts, Rules: append([]rxn.Def(nil), c.Reactions...)}, nil
}

// System returns an empty System and the resolved rule table for the setup.
func (s *Setup) System() (*rxd.System, *rxn.Table, error) {
	S, err := rxd.NewSystem(s.Params, s.Templates)
	if err != nil {
		return nil, nil, err
	}
	tab, err := rxn.NewTable(s.Rules, S, s.Params)
	if err != nil {
		return nil, nil, err
	}
	return S, tab, nil
}

// Validate checks that the configuration describes a runnable simulation: the parameters,
// templates and reactions are consistent, and the log and metrics settings are usable.
func (c *Config) Validate() error {
	if len(c.Molecules) == 0 {
		return fmt.Errorf("config: at least one molecule type is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("config: metrics.addr is required when metrics are enabled")
	}
	if c.Metrics.Every < 0 {
		return fmt.Errorf("config: negative metrics.every")
	}
	s, err := c.Build()
	if err != nil {
		return err
	}
	if _, _, err := s.System(); err != nil {
		return err
	}
	return nil
}
