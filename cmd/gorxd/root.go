/*
 * root.go, part of gorxd.
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
	"fmt"

	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by all subcommands.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "gorxd",
		Short: "Particle-based reaction-diffusion of oriented molecular complexes",
		Long: "gorxd simulates rigid molecules that diffuse, rotate, bind through oriented interfaces\n" +
			"into complexes, dissociate and change state, with stochastic reaction rules.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "run.yaml", "run description (YAML)")
	pf.StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	cmd.AddCommand(newRunCommand(opts), newValidateCommand(opts))
	return cmd
}
