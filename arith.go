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

import "fmt"

// Add returns d + o, broadcasting o across any axes it does not have.
func (d *DataArray) Add(o *DataArray) (*DataArray, error) {
	return d.binOp(o, "+", func(a, b float64) float64 { return a + b })
}

// Sub returns d - o, broadcasting o across any axes it does not have.
func (d *DataArray) Sub(o *DataArray) (*DataArray, error) {
	return d.binOp(o, "-", func(a, b float64) float64 { return a - b })
}

// Mul returns d * o element-wise, broadcasting o across any axes it
// does not have.
func (d *DataArray) Mul(o *DataArray) (*DataArray, error) {
	return d.binOp(o, "*", func(a, b float64) float64 { return a * b })
}

// Div returns d / o element-wise, broadcasting o across any axes it
// does not have.
func (d *DataArray) Div(o *DataArray) (*DataArray, error) {
	return d.binOp(o, "/", func(a, b float64) float64 { return a / b })
}

// binOp applies f element-wise to d and o. The axes of o must be a
// subset of the axes of d with matching coordinate labels; o is
// broadcast across the axes it does not have.
func (d *DataArray) binOp(o *DataArray, op string, f func(a, b float64) float64) (*DataArray, error) {
	// Positions of o's axes within d's axes.
	axes := make([]int, len(o.Dims))
	for i, dim := range o.Dims {
		ax, err := d.dimIndex(dim)
		if err != nil {
			return nil, fmt.Errorf("gridclim: %s %s %s: %v", d.Name, op, o.Name, err)
		}
		if !d.Coords[dim].equal(o.Coords[dim]) {
			return nil, fmt.Errorf("gridclim: %s %s %s: coordinates for dim %s are not aligned", d.Name, op, o.Name, dim)
		}
		axes[i] = ax
	}
	out := d.Copy()
	oIdx := make([]int, len(o.Dims))
	for j := range out.Data.Elements {
		idx := out.Data.IndexNd(j)
		for i, ax := range axes {
			oIdx[i] = idx[ax]
		}
		out.Data.Elements[j] = f(out.Data.Elements[j], o.Data.Get(oIdx...))
	}
	return out, nil
}

// AddScalar returns d + v.
func (d *DataArray) AddScalar(v float64) *DataArray {
	out := d.Copy()
	for i := range out.Data.Elements {
		out.Data.Elements[i] += v
	}
	return out
}

// Scale returns d scaled by v.
func (d *DataArray) Scale(v float64) *DataArray {
	out := d.Copy()
	out.Data.Scale(v)
	return out
}

// Apply returns a copy of d with f applied to every element.
func (d *DataArray) Apply(f func(v float64) float64) *DataArray {
	out := d.Copy()
	for i, v := range out.Data.Elements {
		out.Data.Elements[i] = f(v)
	}
	return out
}
