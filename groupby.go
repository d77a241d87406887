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
	"sort"

	"github.com/ctessum/sparse"
)

// MonthDim is the axis name used for calendar-month climatologies.
const MonthDim = "month"

// CategoryDim is the axis name used for threshold-composite results.
const CategoryDim = "category"

// Climatology returns the per-calendar-month mean over the named time
// axis. The time axis is replaced by a 12-element month axis labeled
// 1 through 12; months with no samples come out NaN.
func (d *DataArray) Climatology(timeDim string) (*DataArray, error) {
	ax, err := d.dimIndex(timeDim)
	if err != nil {
		return nil, err
	}
	c := d.Coords[timeDim]
	if !c.IsTime() {
		return nil, fmt.Errorf("gridclim: coordinate %s is not a time coordinate", timeDim)
	}

	outDims := append([]string{}, d.Dims...)
	outDims[ax] = MonthDim
	outShape := append([]int{}, d.Data.Shape...)
	outShape[ax] = 12
	sum := sparse.ZerosDense(outShape...)
	count := make([]int, len(sum.Elements))

	outIdx := make([]int, len(d.Dims))
	for j, v := range d.Data.Elements {
		if math.IsNaN(v) {
			continue
		}
		idx := d.Data.IndexNd(j)
		copy(outIdx, idx)
		outIdx[ax] = int(c.Times[idx[ax]].Month()) - 1
		k := sum.Index1d(outIdx...)
		sum.Elements[k] += v
		count[k]++
	}
	for i, n := range count {
		if n == 0 {
			sum.Elements[i] = math.NaN()
		} else {
			sum.Elements[i] /= float64(n)
		}
	}

	coords := make([]*Coord, len(outDims))
	for i, dim := range outDims {
		if i == ax {
			coords[i] = monthCoord()
		} else {
			coords[i] = d.Coords[dim].Copy()
		}
	}
	o, err := NewDataArray(d.Name, outDims, coords, sum)
	if err != nil {
		return nil, err
	}
	o.Attrs = copyAttrs(d.Attrs)
	return o, nil
}

// Anomaly returns the deviation of each sample from its calendar-month
// baseline in clim. The baseline must have the same axes as d with the
// time axis replaced by a month axis, as produced by Climatology.
func (d *DataArray) Anomaly(clim *DataArray, timeDim string) (*DataArray, error) {
	ax, err := d.dimIndex(timeDim)
	if err != nil {
		return nil, err
	}
	c := d.Coords[timeDim]
	if !c.IsTime() {
		return nil, fmt.Errorf("gridclim: coordinate %s is not a time coordinate", timeDim)
	}
	climAx, err := clim.dimIndex(MonthDim)
	if err != nil {
		return nil, fmt.Errorf("gridclim: anomaly baseline for %s: %v", d.Name, err)
	}
	if clim.Rank() != d.Rank() {
		return nil, fmt.Errorf("gridclim: anomaly baseline for %s has rank %d; want %d", d.Name, clim.Rank(), d.Rank())
	}
	// climMap[inAxis] gives the matching axis of clim.
	climMap := make([]int, d.Rank())
	for i, dim := range d.Dims {
		if i == ax {
			climMap[i] = climAx
			continue
		}
		ca, err := clim.dimIndex(dim)
		if err != nil {
			return nil, fmt.Errorf("gridclim: anomaly baseline for %s: %v", d.Name, err)
		}
		if !clim.Coords[dim].equal(d.Coords[dim]) {
			return nil, fmt.Errorf("gridclim: anomaly baseline for %s: coordinates for dim %s are not aligned", d.Name, dim)
		}
		climMap[i] = ca
	}

	out := d.Copy()
	climIdx := make([]int, clim.Rank())
	for j := range out.Data.Elements {
		idx := out.Data.IndexNd(j)
		for i, ca := range climMap {
			if i == ax {
				climIdx[ca] = int(c.Times[idx[ax]].Month()) - 1
			} else {
				climIdx[ca] = idx[i]
			}
		}
		out.Data.Elements[j] -= clim.Data.Get(climIdx...)
	}
	return out, nil
}

// Categorize maps each element to an integer category using the given
// ascending thresholds: values below thresholds[0] get category 0,
// values in [thresholds[i-1], thresholds[i]) get category i, and values
// at or above the last threshold get category len(thresholds). NaN
// elements get category -1.
func (d *DataArray) Categorize(thresholds []float64) (*sparse.DenseArrayInt, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("gridclim: categorizing %s: no thresholds given", d.Name)
	}
	if !sort.Float64sAreSorted(thresholds) {
		return nil, fmt.Errorf("gridclim: categorizing %s: thresholds must be ascending", d.Name)
	}
	out := sparse.ZerosDenseInt(d.Data.Shape...)
	for i, v := range d.Data.Elements {
		if math.IsNaN(v) {
			out.Elements[i] = -1
			continue
		}
		out.Elements[i] = sort.SearchFloat64s(thresholds, v)
		if out.Elements[i] < len(thresholds) && v == thresholds[out.Elements[i]] {
			out.Elements[i]++ // thresholds are inclusive lower bounds
		}
	}
	return out, nil
}

// GroupMean returns the mean over positions along the named axis that
// share a label, producing a composite per group. labels must have one
// entry per position along the axis; positions labeled -1 are left out.
// The named axis is replaced by a category axis labeled with the sorted
// distinct labels.
func (d *DataArray) GroupMean(dim string, labels []int) (*DataArray, error) {
	ax, err := d.dimIndex(dim)
	if err != nil {
		return nil, err
	}
	if len(labels) != d.Data.Shape[ax] {
		return nil, fmt.Errorf("gridclim: grouping %s: %d labels for axis %s of length %d",
			d.Name, len(labels), dim, d.Data.Shape[ax])
	}

	// Sorted distinct labels, ignoring missing.
	groupOf := make(map[int]int)
	var groups []int
	for _, l := range labels {
		if l < 0 {
			continue
		}
		if _, ok := groupOf[l]; !ok {
			groupOf[l] = 0
			groups = append(groups, l)
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("gridclim: grouping %s: all labels are missing", d.Name)
	}
	sort.Ints(groups)
	for i, l := range groups {
		groupOf[l] = i
	}

	outDims := append([]string{}, d.Dims...)
	outDims[ax] = CategoryDim
	outShape := append([]int{}, d.Data.Shape...)
	outShape[ax] = len(groups)
	sum := sparse.ZerosDense(outShape...)
	count := make([]int, len(sum.Elements))

	outIdx := make([]int, len(d.Dims))
	for j, v := range d.Data.Elements {
		if math.IsNaN(v) {
			continue
		}
		idx := d.Data.IndexNd(j)
		l := labels[idx[ax]]
		if l < 0 {
			continue
		}
		copy(outIdx, idx)
		outIdx[ax] = groupOf[l]
		k := sum.Index1d(outIdx...)
		sum.Elements[k] += v
		count[k]++
	}
	for i, n := range count {
		if n == 0 {
			sum.Elements[i] = math.NaN()
		} else {
			sum.Elements[i] /= float64(n)
		}
	}

	groupLabels := make([]float64, len(groups))
	for i, l := range groups {
		groupLabels[i] = float64(l)
	}
	coords := make([]*Coord, len(outDims))
	for i, dim := range outDims {
		if i == ax {
			coords[i] = NewCoord(CategoryDim, groupLabels)
		} else {
			coords[i] = d.Coords[dim].Copy()
		}
	}
	o, err := NewDataArray(d.Name, outDims, coords, sum)
	if err != nil {
		return nil, err
	}
	o.Attrs = copyAttrs(d.Attrs)
	return o, nil
}

func monthCoord() *Coord {
	months := make([]float64, 12)
	for i := range months {
		months[i] = float64(i + 1)
	}
	return NewCoord(MonthDim, months)
}
