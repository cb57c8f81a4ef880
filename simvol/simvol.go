/*
 * simvol.go, part of gorxd.
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

// Package simvol partitions the simulation box in a regular grid of SubVolumes, to find the molecules
// that may be within reaction range of each other without checking every pair.
package simvol

import (
	"math"
	"sort"

	rxd "github.com/rmera/gorxd"
)

// SubVolume is one cell of the grid.
type SubVolume struct {
	Index     int
	Members   []int //molecule IDs, in increasing order after each Update
	Neighbors []int //cell indexes, including the cell itself. Built once.
}

// SimulVolume is the grid. The neighbor table depends only on the geometry and never changes,
// the member lists are rebuilt by Update.
type SimulVolume struct {
	N        [3]int
	Cell     [3]float64
	Box      [3]float64
	Periodic bool
	Cutoff   float64
	Cells    []SubVolume
	where    []int //cell of each molecule ID, -1 for dead molecules
}

// New builds the grid for the given box. cutoff is the largest center-to-center distance at which two
// molecules can react. cellSize, if larger than cutoff, is used as the minimum cell edge.
// A cutoff larger than half of any box edge is a configuration error.
func New(box [3]float64, periodic bool, cutoff, cellSize float64) (*SimulVolume, error) {
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, rxd.NewError(rxd.ConfigError, "simvol.New", "invalid cutoff %v", cutoff)
	}
	edge := math.Max(cutoff, cellSize)
	V := &SimulVolume{Box: box, Periodic: periodic, Cutoff: cutoff}
	ncells := 1
	for k := 0; k < 3; k++ {
		if !(box[k] > 0) {
			return nil, rxd.NewError(rxd.ConfigError, "simvol.New", "invalid box %v", box)
		}
		if cutoff > box[k]/2 {
			return nil, rxd.NewError(rxd.ConfigError, "simvol.New", "reaction cutoff %g larger than half the box edge %g", cutoff, box[k])
		}
		n := int(math.Floor(box[k] / edge))
		if n < 1 {
			n = 1
		}
		V.N[k] = n
		V.Cell[k] = box[k] / float64(n)
		ncells *= n
	}
	V.Cells = make([]SubVolume, ncells)
	for i := range V.Cells {
		V.Cells[i].Index = i
		V.Cells[i].Neighbors = V.neighborCells(i)
	}
	return V, nil
}

func (V *SimulVolume) index(c [3]int) int {
	return (c[0]*V.N[1]+c[1])*V.N[2] + c[2]
}

func (V *SimulVolume) coords(i int) [3]int {
	z := i % V.N[2]
	i /= V.N[2]
	return [3]int{i / V.N[1], i % V.N[1], z}
}

// neighborCells returns the cell i itself and its adjacent cells, wrapped when periodic and clipped
// otherwise, without duplicates, in increasing order.
func (V *SimulVolume) neighborCells(i int) []int {
	c := V.coords(i)
	seen := make(map[int]bool, 27)
	ret := make([]int, 0, 27)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				n := [3]int{c[0] + dx, c[1] + dy, c[2] + dz}
				ok := true
				for k := 0; k < 3; k++ {
					if n[k] >= 0 && n[k] < V.N[k] {
						continue
					}
					if !V.Periodic {
						ok = false
						break
					}
					n[k] = (n[k] + V.N[k]) % V.N[k]
				}
				if !ok {
					continue
				}
				idx := V.index(n)
				if !seen[idx] {
					seen[idx] = true
					ret = append(ret, idx)
				}
			}
		}
	}
	sort.Ints(ret)
	return ret
}

// CellOf returns the index of the cell containing pos. Positions outside the box are
// wrapped when periodic and clamped to the border cells otherwise.
func (V *SimulVolume) CellOf(pos []float64) int {
	var c [3]int
	for k := 0; k < 3; k++ {
		x := pos[k]
		if V.Periodic {
			x = math.Mod(x, V.Box[k])
			if x < 0 {
				x += V.Box[k]
			}
		}
		n := int(math.Floor(x / V.Cell[k]))
		if n < 0 {
			n = 0
		} else if n >= V.N[k] {
			n = V.N[k] - 1
		}
		c[k] = n
	}
	return V.index(c)
}

// Update reassigns every live molecule of S to the cell of its center. It runs in time
// linear in the number of molecules.
func (V *SimulVolume) Update(S *rxd.System) {
	for i := range V.Cells {
		V.Cells[i].Members = V.Cells[i].Members[:0]
	}
	if cap(V.where) < len(S.Mols) {
		V.where = make([]int, len(S.Mols))
	}
	V.where = V.where[:len(S.Mols)]
	for id, m := range S.Mols {
		if m == nil {
			V.where[id] = -1
			continue
		}
		c := V.CellOf(m.Center())
		V.where[id] = c
		V.Cells[c].Members = append(V.Cells[c].Members, id)
	}
}

// Where returns the cell of the molecule id after the last Update, or -1.
func (V *SimulVolume) Where(id int) int {
	if id < 0 || id >= len(V.where) {
		return -1
	}
	return V.where[id]
}

// Neighbors appends to dst the IDs of the molecules in the cell of molecule id and in its
// neighbor cells, excluding id itself, and returns the result. Only molecules with an ID
// larger than min are included, so min=id lists each pair once.
func (V *SimulVolume) Neighbors(dst []int, id, min int) []int {
	c := V.Where(id)
	if c < 0 {
		return dst
	}
	for _, n := range V.Cells[c].Neighbors {
		for _, j := range V.Cells[n].Members {
			if j != id && j > min {
				dst = append(dst, j)
			}
		}
	}
	return dst
}

// Occupancy returns the number of non-empty cells and the largest number of molecules in a cell.
func (V *SimulVolume) Occupancy() (occupied, max int) {
	for _, c := range V.Cells {
		if l := len(c.Members); l > 0 {
			occupied++
			if l > max {
				max = l
			}
		}
	}
	return occupied, max
}
