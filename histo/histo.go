/*
 * histo.go, part of gorxd.
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
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Data is a histogram. Bin i counts the values v with dividers[i] <= v < dividers[i+1].
// Values outside the dividers are counted as dropped.
type Data struct {
	normalized bool
	total      int
	dropped    int
	dividers   []float64
	histo      []float64
}

// NewData returns a histogram with the given dividers, filled with rawdata, which can be nil.
// The dividers are copied, rawdata is not modified.
func NewData(dividers []float64, rawdata []float64) *Data {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		panic("histo.NewData: need at least 2 increasing dividers")
	}
	d := &Data{dividers: append([]float64(nil), dividers...)}
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(rawdata)
	}
	return d
}

// IntDividers returns the dividers for integer values from min to max, one bin per value.
func IntDividers(min, max int) []float64 {
	ret := make([]float64, 0, max-min+2)
	for i := min; i <= max+1; i++ {
		ret = append(ret, float64(i)-0.5)
	}
	return ret
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Normalized bool      `json:"normalized"`
		Total      int       `json:"total"`
		Dropped    int       `json:"dropped"`
		Dividers   []float64 `json:"dividers"`
		Histo      []float64 `json:"histo"`
	}{D.normalized, D.total, D.dropped, D.dividers, D.histo})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a struct {
		Normalized bool      `json:"normalized"`
		Total      int       `json:"total"`
		Dropped    int       `json:"dropped"`
		Dividers   []float64 `json:"dividers"`
		Histo      []float64 `json:"histo"`
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) != len(a.Histo)+1 {
		return fmt.Errorf("histo: %d dividers for %d bins", len(a.Dividers), len(a.Histo))
	}
	D.normalized, D.total, D.dropped, D.dividers, D.histo = a.Normalized, a.Total, a.Dropped, a.Dividers, a.Histo
	return nil
}

// String returns the histogram in 2 lines: the bin limits and the counts.
func (D *Data) String() string {
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.1f-%4.1f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

// bin returns the bin of v, or -1.
func (D *Data) bin(v float64) int {
	if v < D.dividers[0] || v >= D.dividers[len(D.dividers)-1] || math.IsNaN(v) {
		return -1
	}
	return sort.SearchFloat64s(D.dividers, math.Nextafter(v, math.Inf(1))) - 1
}

// AddData adds the given values to the histogram.
func (D *Data) AddData(point ...float64) {
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	for _, v := range point {
		if b := D.bin(v); b >= 0 {
			D.histo[b]++
			D.total++
		} else {
			D.dropped++
		}
	}
	if norma {
		D.Normalize()
	}
}

// Total returns the number of values in the histogram, Dropped the number of values that were out of range.
func (D *Data) Total() int   { return D.total }
func (D *Data) Dropped() int { return D.dropped }

// Normalized returns true if the histogram is normalized.
func (D *Data) Normalized() bool {
	return D.normalized
}

// Normalize scales the histogram so it sums to 1.
func (D *Data) Normalize() {
	if D.normalized || D.total <= 0 {
		return
	}
	floats.Scale(1/float64(D.total), D.histo)
	D.normalized = true
}

// UnNormalize goes back to counts.
func (D *Data) UnNormalize() {
	if !D.normalized {
		return
	}
	floats.Scale(float64(D.total), D.histo)
	D.normalized = false
}

// Dividers returns a copy of the dividers.
func (D *Data) Dividers() []float64 {
	return append([]float64(nil), D.dividers...)
}

// View returns the bins. Changes to the slice change the histogram.
func (D *Data) View() []float64 {
	return D.histo
}

// Add puts the sum of the histograms a and b, which must have the same dividers, in the receiver.
func (D *Data) Add(a, b *Data) {
	if !floats.Equal(a.dividers, b.dividers) {
		panic("histo.Data.Add: dividers must match")
	}
	D.dividers = append(D.dividers[:0], a.dividers...)
	D.histo = make([]float64, len(a.histo))
	floats.AddTo(D.histo, a.histo, b.histo)
	D.total = a.total + b.total
	D.dropped = a.dropped + b.dropped
	D.normalized = false
}

// Sum returns the sum of the bins.
func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

// Mean returns the mean of the histogram, taking each bin at its center.
func (D *Data) Mean() float64 {
	x := make([]float64, len(D.histo))
	for i := range x {
		x[i] = (D.dividers[i] + D.dividers[i+1]) / 2
	}
	if D.Sum() == 0 {
		return 0
	}
	return stat.Mean(x, D.histo)
}

// ReHisto replaces the content of the histogram with rawdata.
func (D *Data) ReHisto(rawdata []float64) {
	data := append([]float64(nil), rawdata...)
	sort.Float64s(data)
	//stat.Histogram panics on values out of range, so they are removed first.
	lo := sort.SearchFloat64s(data, D.dividers[0])
	hi := sort.SearchFloat64s(data, D.dividers[len(D.dividers)-1])
	D.dropped = len(data) - (hi - lo)
	data = data[lo:hi]
	D.total = len(data)
	D.normalized = false
	D.histo = stat.Histogram(nil, D.dividers, data, nil)
}
