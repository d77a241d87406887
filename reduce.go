/*
Copyright © 2025 the GridClim authors.
This file is part of GridClim.

GridClim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GridClim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GridClim.  If not, see <http://www.gnu.org/licenses/>.
*/

package gridclim

import (
	"math"
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"
)

// NaN values are treated as missing in all reductions: they are skipped,
// and cells with no valid samples come out NaN.

// Mean returns the arithmetic mean over the named axes, which are
// dropped from the result. With no axes given, all axes are reduced and
// the result has rank zero.
func (d *DataArray) Mean(dims ...string) (*DataArray, error) {
	r, err := d.newReduction(dims)
	if err != nil {
		return nil, err
	}
	sum := make([]float64, r.size())
	count := make([]int, r.size())
	r.each(func(out int, v float64) {
		sum[out] += v
		count[out]++
	})
	return r.finish(func(i int) float64 {
		if count[i] == 0 {
			return math.NaN()
		}
		return sum[i] / float64(count[i])
	})
}

// Sum returns the sum over the named axes, which are dropped from the
// result.
func (d *DataArray) Sum(dims ...string) (*DataArray, error) {
	r, err := d.newReduction(dims)
	if err != nil {
		return nil, err
	}
	sum := make([]float64, r.size())
	count := make([]int, r.size())
	r.each(func(out int, v float64) {
		sum[out] += v
		count[out]++
	})
	return r.finish(func(i int) float64 {
		if count[i] == 0 {
			return math.NaN()
		}
		return sum[i]
	})
}

// Min returns the minimum over the named axes, which are dropped from
// the result.
func (d *DataArray) Min(dims ...string) (*DataArray, error) {
	r, err := d.newReduction(dims)
	if err != nil {
		return nil, err
	}
	min := make([]float64, r.size())
	for i := range min {
		min[i] = math.Inf(1)
	}
	count := make([]int, r.size())
	r.each(func(out int, v float64) {
		if v < min[out] {
			min[out] = v
		}
		count[out]++
	})
	return r.finish(func(i int) float64 {
		if count[i] == 0 {
			return math.NaN()
		}
		return min[i]
	})
}

// Max returns the maximum over the named axes, which are dropped from
// the result.
func (d *DataArray) Max(dims ...string) (*DataArray, error) {
	r, err := d.newReduction(dims)
	if err != nil {
		return nil, err
	}
	max := make([]float64, r.size())
	for i := range max {
		max[i] = math.Inf(-1)
	}
	count := make([]int, r.size())
	r.each(func(out int, v float64) {
		if v > max[out] {
			max[out] = v
		}
		count[out]++
	})
	return r.finish(func(i int) float64 {
		if count[i] == 0 {
			return math.NaN()
		}
		return max[i]
	})
}

// Std returns the population standard deviation over the named axes,
// which are dropped from the result.
func (d *DataArray) Std(dims ...string) (*DataArray, error) {
	r, err := d.newReduction(dims)
	if err != nil {
		return nil, err
	}
	sum := make([]float64, r.size())
	sumsq := make([]float64, r.size())
	count := make([]int, r.size())
	r.each(func(out int, v float64) {
		sum[out] += v
		sumsq[out] += v * v
		count[out]++
	})
	return r.finish(func(i int) float64 {
		if count[i] == 0 {
			return math.NaN()
		}
		n := float64(count[i])
		mean := sum[i] / n
		variance := sumsq[i]/n - mean*mean
		if variance < 0 { // roundoff
			variance = 0
		}
		return math.Sqrt(variance)
	})
}

// Quantile returns the empirical q-quantile (0 <= q <= 1) over the
// named axes, which are dropped from the result.
func (d *DataArray) Quantile(q float64, dims ...string) (*DataArray, error) {
	r, err := d.newReduction(dims)
	if err != nil {
		return nil, err
	}
	samples := make([][]float64, r.size())
	r.each(func(out int, v float64) {
		samples[out] = append(samples[out], v)
	})
	return r.finish(func(i int) float64 {
		if len(samples[i]) == 0 {
			return math.NaN()
		}
		sort.Float64s(samples[i])
		return stat.Quantile(q, stat.Empirical, samples[i], nil)
	})
}

// reduction maps input elements onto the elements of a reduced output
// array.
type reduction struct {
	d       *DataArray
	outDims []string
	keep    []int // axis positions of the kept dims
	out     *sparse.DenseArray
}

func (d *DataArray) newReduction(dims []string) (*reduction, error) {
	if len(dims) == 0 {
		dims = d.Dims
	}
	reduce := make(map[string]struct{}, len(dims))
	for _, dim := range dims {
		if _, err := d.dimIndex(dim); err != nil {
			return nil, err
		}
		reduce[dim] = struct{}{}
	}
	r := &reduction{d: d}
	for ax, dim := range d.Dims {
		if _, ok := reduce[dim]; !ok {
			r.outDims = append(r.outDims, dim)
			r.keep = append(r.keep, ax)
		}
	}
	r.out = sparse.ZerosDense(d.shapeFor(r.outDims)...)
	return r, nil
}

func (r *reduction) size() int { return len(r.out.Elements) }

// each calls f for every valid (non-NaN) input element with the 1-d
// index of the output element it reduces into.
func (r *reduction) each(f func(out int, v float64)) {
	outIdx := make([]int, len(r.keep))
	for j, v := range r.d.Data.Elements {
		if math.IsNaN(v) {
			continue
		}
		idx := r.d.Data.IndexNd(j)
		for i, ax := range r.keep {
			outIdx[i] = idx[ax]
		}
		f(r.out.Index1d(outIdx...), v)
	}
}

// finish fills the output array using f and wraps it in a DataArray.
func (r *reduction) finish(f func(i int) float64) (*DataArray, error) {
	for i := range r.out.Elements {
		r.out.Elements[i] = f(i)
	}
	o, err := NewDataArray(r.d.Name, append([]string{}, r.outDims...), r.d.coordsFor(r.outDims), r.out)
	if err != nil {
		return nil, err
	}
	o.Attrs = copyAttrs(r.d.Attrs)
	return o, nil
}
