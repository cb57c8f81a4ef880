/*
 * gorxd_test.go, part of gorxd.
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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/gorxd/traj/rst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runYAML = `
run:
  dt: 0.1
  steps: 20
  box: [20]
  boundary: periodic
  seed: 5
  log_interval: 0
  snapshot_interval: 5
  restart_interval: 10
molecules:
  - name: A
    d: [1]
    dr: 1
    copies: 20
    ifaces:
      - name: b
        offset: [1, 0, 0]
  - name: B
    d: [1]
    dr: 1
    copies: 20
    ifaces:
      - name: a
        offset: [-1, 0, 0]
reactions:
  - name: AB
    kind: bind
    a: {mol: A, iface: b}
    b: {mol: B, iface: a}
    rate: 200
    sigma: 1.5
    reverse: 0.5
log:
  level: error
`

func execute(Te *testing.T, args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(Te *testing.T) {
	dir := Te.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(Te, os.WriteFile(path, []byte(runYAML), 0o644))
	out, err := execute(Te, "validate", "-c", path)
	require.NoError(Te, err)
	assert.Contains(Te, out, "2 molecule types, 2 rules")

	_, err = execute(Te, "validate", "-c", filepath.Join(dir, "missing.yaml"))
	assert.Error(Te, err)
}

func TestRunAndResume(Te *testing.T) {
	dir := Te.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(Te, os.WriteFile(path, []byte(runYAML), 0o644))
	first := filepath.Join(dir, "first.rst")
	_, err := execute(Te, "run", "-c", path, "--restart-out", first)
	require.NoError(Te, err)

	r, err := rst.Open(first)
	require.NoError(Te, err)
	assert.Equal(Te, uint64(5), r.Header().Params.Seed)
	last, err := r.Last()
	require.NoError(Te, err)
	assert.Equal(Te, 20, last.Step)
	assert.Len(Te, last.Molecules, 40)

	second := filepath.Join(dir, "second.rst.gz")
	_, err = execute(Te, "run", "-c", path, "--restart-in", first, "--restart-out", second, "--steps", "30", "--seed", "6")
	require.NoError(Te, err)
	r, err = rst.Open(second)
	require.NoError(Te, err)
	assert.Equal(Te, 20, r.Header().Step)
	assert.Equal(Te, 30, r.Header().Params.Steps)
	last, err = r.Last()
	require.NoError(Te, err)
	assert.Equal(Te, 30, last.Step)
	assert.Len(Te, last.Molecules, 40)
}
