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
	"fmt"
	"math"
)

// RollingMean returns the centered rolling mean along the named axis.
// minPeriods is the minimum number of valid samples a window must
// contain to produce a value; windows with fewer come out NaN. If
// minPeriods is zero it defaults to the window length.
func (d *DataArray) RollingMean(dim string, window, minPeriods int) (*DataArray, error) {
	ax, err := d.dimIndex(dim)
	if err != nil {
		return nil, err
	}
	if window < 1 {
		return nil, fmt.Errorf("gridclim: rolling mean over %s: window must be positive; got %d", dim, window)
	}
	if minPeriods == 0 {
		minPeriods = window
	}
	n := d.Data.Shape[ax]
	out := d.Copy()
	idx := make([]int, len(d.Dims))
	for j := range out.Data.Elements {
		copy(idx, d.Data.IndexNd(j))
		i := idx[ax]
		lo := i - (window-1)/2
		var sum float64
		var count int
		for p := lo; p < lo+window; p++ {
			if p < 0 || p >= n {
				continue
			}
			idx[ax] = p
			v := d.Data.Get(idx...)
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		if count < minPeriods {
			out.Data.Elements[j] = math.NaN()
		} else {
			out.Data.Elements[j] = sum / float64(count)
		}
	}
	return out, nil
}

// Smooth121 applies the [1 2 1]/4 smoothing stencil along each of the
// named axes in turn, repeated passes times. Axes listed in periodic
// wrap around; the rest replicate their edge values. NaN values
// propagate through the stencil.
func (d *DataArray) Smooth121(dims []string, passes int, periodic []string) (*DataArray, error) {
	if passes < 1 {
		return nil, fmt.Errorf("gridclim: smoothing %s: passes must be positive; got %d", d.Name, passes)
	}
	isPeriodic := make(map[string]bool, len(periodic))
	for _, dim := range periodic {
		if _, err := d.dimIndex(dim); err != nil {
			return nil, err
		}
		isPeriodic[dim] = true
	}
	out := d.Copy()
	for pass := 0; pass < passes; pass++ {
		for _, dim := range dims {
			var err error
			out, err = out.smooth121(dim, isPeriodic[dim])
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// smooth121 applies one pass of the 1-2-1 stencil along one axis.
func (d *DataArray) smooth121(dim string, periodic bool) (*DataArray, error) {
	ax, err := d.dimIndex(dim)
	if err != nil {
		return nil, err
	}
	n := d.Data.Shape[ax]
	if n < 2 {
		return d.Copy(), nil
	}
	out := d.Copy()
	idx := make([]int, len(d.Dims))
	for j := range out.Data.Elements {
		copy(idx, d.Data.IndexNd(j))
		i := idx[ax]

		prev, next := i-1, i+1
		if periodic {
			prev, next = (i-1+n)%n, (i+1)%n
		} else {
			if prev < 0 {
				prev = 0
			}
			if next > n-1 {
				next = n - 1
			}
		}
		center := d.Data.Get(idx...)
		idx[ax] = prev
		left := d.Data.Get(idx...)
		idx[ax] = next
		right := d.Data.Get(idx...)
		out.Data.Elements[j] = 0.25*left + 0.5*center + 0.25*right
	}
	return out, nil
}
