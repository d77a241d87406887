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
	"time"

	"github.com/ctessum/sparse"
)

// ISel selects the slab at position i along the named axis, dropping
// that axis from the result.
func (d *DataArray) ISel(dim string, i int) (*DataArray, error) {
	ax, err := d.dimIndex(dim)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= d.Data.Shape[ax] {
		return nil, fmt.Errorf("gridclim: index %d out of range for dim %s (length %d)", i, dim, d.Data.Shape[ax])
	}
	outDims := make([]string, 0, len(d.Dims)-1)
	for _, n := range d.Dims {
		if n != dim {
			outDims = append(outDims, n)
		}
	}
	out := sparse.ZerosDense(d.shapeFor(outDims)...)
	inIdx := make([]int, len(d.Dims))
	for j := range out.Elements {
		outIdx := out.IndexNd(j)
		for k := range inIdx {
			switch {
			case k < ax:
				inIdx[k] = outIdx[k]
			case k == ax:
				inIdx[k] = i
			default:
				inIdx[k] = outIdx[k-1]
			}
		}
		out.Elements[j] = d.Data.Get(inIdx...)
	}
	o, err := NewDataArray(d.Name, outDims, d.coordsFor(outDims), out)
	if err != nil {
		return nil, err
	}
	o.Attrs = copyAttrs(d.Attrs)
	return o, nil
}

// Slice restricts the named axis to positions start through end-1,
// keeping the axis in the result.
func (d *DataArray) Slice(dim string, start, end int) (*DataArray, error) {
	ax, err := d.dimIndex(dim)
	if err != nil {
		return nil, err
	}
	n := d.Data.Shape[ax]
	if start < 0 || end > n || start >= end {
		return nil, fmt.Errorf("gridclim: slice [%d,%d) out of range for dim %s (length %d)", start, end, dim, n)
	}
	outShape := append([]int{}, d.Data.Shape...)
	outShape[ax] = end - start
	out := sparse.ZerosDense(outShape...)
	inIdx := make([]int, len(d.Dims))
	for j := range out.Elements {
		outIdx := out.IndexNd(j)
		copy(inIdx, outIdx)
		inIdx[ax] = outIdx[ax] + start
		out.Elements[j] = d.Data.Get(inIdx...)
	}
	coords := make([]*Coord, len(d.Dims))
	for i, n := range d.Dims {
		if n == dim {
			coords[i] = d.Coords[n].subset(start, end-1)
		} else {
			coords[i] = d.Coords[n].Copy()
		}
	}
	o, err := NewDataArray(d.Name, append([]string{}, d.Dims...), coords, out)
	if err != nil {
		return nil, err
	}
	o.Attrs = copyAttrs(d.Attrs)
	return o, nil
}

// Sel selects the slab whose label along the named axis matches the
// given label, dropping that axis from the result.
func (d *DataArray) Sel(dim string, label float64) (*DataArray, error) {
	c, ok := d.Coords[dim]
	if !ok {
		_, err := d.dimIndex(dim)
		return nil, err
	}
	i, err := c.index(label)
	if err != nil {
		return nil, err
	}
	return d.ISel(dim, i)
}

// SelNearest selects the slab whose label along the named axis is
// closest to the given label.
func (d *DataArray) SelNearest(dim string, label float64) (*DataArray, error) {
	c, ok := d.Coords[dim]
	if !ok {
		_, err := d.dimIndex(dim)
		return nil, err
	}
	i, err := c.nearestIndex(label)
	if err != nil {
		return nil, err
	}
	return d.ISel(dim, i)
}

// SelTime selects the slab at the given time along the named time axis.
func (d *DataArray) SelTime(dim string, t time.Time) (*DataArray, error) {
	c, ok := d.Coords[dim]
	if !ok {
		_, err := d.dimIndex(dim)
		return nil, err
	}
	i, err := c.timeIndex(t)
	if err != nil {
		return nil, err
	}
	return d.ISel(dim, i)
}

// SelRange restricts the named axis to labels within [lo, hi],
// keeping the axis in the result. The coordinate must be monotonic for
// the result to be contiguous; non-contiguous matches are an error.
func (d *DataArray) SelRange(dim string, lo, hi float64) (*DataArray, error) {
	c, ok := d.Coords[dim]
	if !ok {
		_, err := d.dimIndex(dim)
		return nil, err
	}
	if c.IsTime() {
		return nil, fmt.Errorf("gridclim: coordinate %s is a time coordinate; use SelTimeRange", dim)
	}
	start, end, err := contiguousMatch(len(c.Values), func(i int) bool {
		return c.Values[i] >= lo && c.Values[i] <= hi
	})
	if err != nil {
		return nil, fmt.Errorf("gridclim: selecting range [%g,%g] on %s: %v", lo, hi, dim, err)
	}
	return d.Slice(dim, start, end)
}

// SelTimeRange restricts the named time axis to times within [t0, t1],
// keeping the axis in the result.
func (d *DataArray) SelTimeRange(dim string, t0, t1 time.Time) (*DataArray, error) {
	c, ok := d.Coords[dim]
	if !ok {
		_, err := d.dimIndex(dim)
		return nil, err
	}
	if !c.IsTime() {
		return nil, fmt.Errorf("gridclim: coordinate %s is not a time coordinate", dim)
	}
	start, end, err := contiguousMatch(len(c.Times), func(i int) bool {
		t := c.Times[i]
		return !t.Before(t0) && !t.After(t1)
	})
	if err != nil {
		return nil, fmt.Errorf("gridclim: selecting times [%v,%v] on %s: %v", t0, t1, dim, err)
	}
	return d.Slice(dim, start, end)
}

// contiguousMatch returns the half-open range of positions matching f,
// requiring the matches to be contiguous.
func contiguousMatch(n int, f func(int) bool) (start, end int, err error) {
	start, end = -1, -1
	for i := 0; i < n; i++ {
		if f(i) {
			if start == -1 {
				start = i
			} else if end != -1 {
				return 0, 0, fmt.Errorf("matching labels are not contiguous")
			}
		} else if start != -1 && end == -1 {
			end = i
		}
	}
	if start == -1 {
		return 0, 0, fmt.Errorf("no labels match")
	}
	if end == -1 {
		end = n
	}
	return start, end, nil
}

// Transpose reorders the axes to the given order, which must be a
// permutation of the existing dims.
func (d *DataArray) Transpose(dims ...string) (*DataArray, error) {
	if len(dims) != len(d.Dims) {
		return nil, fmt.Errorf("gridclim: transpose of %s: got %d dims; want %d", d.Name, len(dims), len(d.Dims))
	}
	perm := make([]int, len(dims)) // perm[outAxis] = inAxis
	for i, dim := range dims {
		ax, err := d.dimIndex(dim)
		if err != nil {
			return nil, err
		}
		perm[i] = ax
	}
	out := sparse.ZerosDense(d.shapeFor(dims)...)
	inIdx := make([]int, len(dims))
	for j := range out.Elements {
		outIdx := out.IndexNd(j)
		for i, ax := range perm {
			inIdx[ax] = outIdx[i]
		}
		out.Elements[j] = d.Data.Get(inIdx...)
	}
	o, err := NewDataArray(d.Name, append([]string{}, dims...), d.coordsFor(dims), out)
	if err != nil {
		return nil, err
	}
	o.Attrs = copyAttrs(d.Attrs)
	return o, nil
}

func copyAttrs(attrs map[string]string) map[string]string {
	o := make(map[string]string, len(attrs))
	for k, v := range attrs {
		o[k] = v
	}
	return o
}
