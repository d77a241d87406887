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

// Package gridclim provides labeled multidimensional arrays and
// climatological statistics (climatologies, anomalies, rolling means,
// threshold composites) for gridded earth-science data.
package gridclim

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
)

// DataArray is a multidimensional numeric array whose axes carry names
// and whose positions along each axis carry coordinate labels.
type DataArray struct {
	// Name identifies the variable this array holds.
	Name string

	// Dims gives the axis names, outermost first, matching the
	// shape of Data.
	Dims []string

	// Coords maps each axis name to its labels.
	Coords map[string]*Coord

	// Attrs holds free-form metadata such as units and description.
	Attrs map[string]string

	// Data holds the array values.
	Data *sparse.DenseArray
}

// NewDataArray creates a labeled array from the given values. The
// coordinates must be given in axis order and their names must match dims.
func NewDataArray(name string, dims []string, coords []*Coord, data *sparse.DenseArray) (*DataArray, error) {
	if len(coords) != len(dims) {
		return nil, fmt.Errorf("gridclim: variable %s has %d dims but %d coordinates", name, len(dims), len(coords))
	}
	d := &DataArray{
		Name:   name,
		Dims:   dims,
		Coords: make(map[string]*Coord, len(dims)),
		Attrs:  make(map[string]string),
		Data:   data,
	}
	for i, c := range coords {
		if c.Name != dims[i] {
			return nil, fmt.Errorf("gridclim: variable %s: coordinate %d is named %s; want %s", name, i, c.Name, dims[i])
		}
		d.Coords[c.Name] = c
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// validate checks the labeled-array invariants: axis names are unique,
// the number of axes matches the array rank, and each coordinate has one
// label per position along its axis.
func (d *DataArray) validate() error {
	if len(d.Dims) != len(d.Data.Shape) {
		return fmt.Errorf("gridclim: variable %s has %d dims but array rank is %d", d.Name, len(d.Dims), len(d.Data.Shape))
	}
	seen := make(map[string]struct{}, len(d.Dims))
	for i, dim := range d.Dims {
		if _, ok := seen[dim]; ok {
			return fmt.Errorf("gridclim: variable %s has duplicate dim %s", d.Name, dim)
		}
		seen[dim] = struct{}{}
		c, ok := d.Coords[dim]
		if !ok {
			return fmt.Errorf("gridclim: variable %s is missing a coordinate for dim %s", d.Name, dim)
		}
		if err := c.validate(); err != nil {
			return err
		}
		if c.Len() != d.Data.Shape[i] {
			return fmt.Errorf("gridclim: variable %s: coordinate %s has %d labels but axis length is %d",
				d.Name, dim, c.Len(), d.Data.Shape[i])
		}
	}
	return nil
}

// Rank returns the number of axes.
func (d *DataArray) Rank() int { return len(d.Dims) }

// Len returns the total number of elements.
func (d *DataArray) Len() int { return len(d.Data.Elements) }

// Copy returns a deep copy of d.
func (d *DataArray) Copy() *DataArray {
	o := &DataArray{
		Name:   d.Name,
		Dims:   append([]string{}, d.Dims...),
		Coords: make(map[string]*Coord, len(d.Coords)),
		Attrs:  make(map[string]string, len(d.Attrs)),
		Data:   d.Data.Copy(),
	}
	for n, c := range d.Coords {
		o.Coords[n] = c.Copy()
	}
	for k, v := range d.Attrs {
		o.Attrs[k] = v
	}
	return o
}

// dimIndex returns the axis position of the named dim.
func (d *DataArray) dimIndex(dim string) (int, error) {
	for i, n := range d.Dims {
		if n == dim {
			return i, nil
		}
	}
	return -1, fmt.Errorf("gridclim: variable %s has no dim %s; dims are [%s]",
		d.Name, dim, strings.Join(d.Dims, " "))
}

// Get returns the value at the given index, which must have one entry
// per axis.
func (d *DataArray) Get(index ...int) float64 { return d.Data.Get(index...) }

// Set sets the value at the given index. Unlike the underlying array
// type, zero values are stored.
func (d *DataArray) Set(val float64, index ...int) {
	d.Data.Elements[d.Data.Index1d(index...)] = val
}

// Units returns the units attribute, if any.
func (d *DataArray) Units() string { return d.Attrs["units"] }

// coordsFor returns the coordinates for the given dims, in order.
func (d *DataArray) coordsFor(dims []string) []*Coord {
	coords := make([]*Coord, len(dims))
	for i, dim := range dims {
		coords[i] = d.Coords[dim].Copy()
	}
	return coords
}

// shapeFor returns the axis lengths for the given dims, in order.
func (d *DataArray) shapeFor(dims []string) []int {
	shape := make([]int, len(dims))
	for i, dim := range dims {
		j, _ := d.dimIndex(dim)
		shape[i] = d.Data.Shape[j]
	}
	return shape
}
