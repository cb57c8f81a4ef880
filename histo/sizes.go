/*
 * sizes.go, part of gorxd.
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

package histo

import (
	"sync"

	"github.com/rmera/gorxd/sim"
	"gonum.org/v1/gonum/stat"
)

// Sizes accumulates the distribution of complex sizes over the snapshots it observes.
// Complexes larger than Max are counted as dropped.
type Sizes struct {
	mu     sync.Mutex
	Max    int
	hist   *Data
	means  []float64
	frames int
}

// NewSizes returns an observer for complexes of 1 to max members.
func NewSizes(max int) *Sizes {
	if max < 1 {
		max = 1
	}
	return &Sizes{Max: max, hist: NewData(IntDividers(1, max), nil)}
}

// Observe adds the complex sizes of s to the histogram.
func (S *Sizes) Observe(s *sim.Snapshot) error {
	sizes := s.ComplexSizes()
	S.mu.Lock()
	defer S.mu.Unlock()
	S.hist.AddData(sizes...)
	mean := 0.0
	if len(sizes) > 0 {
		mean = stat.Mean(sizes, nil)
	}
	S.means = append(S.means, mean)
	S.frames++
	return nil
}

// Histogram returns a copy of the accumulated histogram.
func (S *Sizes) Histogram() *Data {
	S.mu.Lock()
	defer S.mu.Unlock()
	ret := NewData(S.hist.dividers, nil)
	ret.Add(S.hist, ret)
	return ret
}

// MeanSize returns the mean complex size of each observed frame.
func (S *Sizes) MeanSize() []float64 {
	S.mu.Lock()
	defer S.mu.Unlock()
	return append([]float64(nil), S.means...)
}

// Frames returns the number of snapshots observed.
func (S *Sizes) Frames() int {
	S.mu.Lock()
	defer S.mu.Unlock()
	return S.frames
}
