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
	"os"
	"sort"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// DataVersion is written into output files and checked when they are
// read back, so that files from incompatible versions of this library
// are rejected.
const DataVersion = "1"

// epoch1900 is the reference time for encoded time coordinates
// ("hours since 1900-01-01", the ERA5 convention).
var epoch1900 = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

const timeUnits = "hours since 1900-01-01 00:00:00"

// Dataset is a collection of labeled variables sharing coordinates,
// plus free-form global metadata.
type Dataset struct {
	// Attrs holds global metadata.
	Attrs map[string]string

	vars map[string]*DataArray
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Attrs: make(map[string]string),
		vars:  make(map[string]*DataArray),
	}
}

// AddVariable adds a variable to the dataset. Axes the variable shares
// with existing variables must carry the same coordinate labels.
func (d *Dataset) AddVariable(da *DataArray) error {
	if da.Name == "" {
		return fmt.Errorf("gridclim: dataset variable has no name")
	}
	if _, ok := d.vars[da.Name]; ok {
		return fmt.Errorf("gridclim: dataset already has a variable named %s", da.Name)
	}
	for _, other := range d.vars {
		for _, dim := range da.Dims {
			if oc, ok := other.Coords[dim]; ok {
				if !oc.equal(da.Coords[dim]) {
					return fmt.Errorf("gridclim: variable %s: coordinates for shared dim %s do not match variable %s",
						da.Name, dim, other.Name)
				}
			}
		}
	}
	d.vars[da.Name] = da
	return nil
}

// Variable returns the named variable.
func (d *Dataset) Variable(name string) (*DataArray, error) {
	v, ok := d.vars[name]
	if !ok {
		return nil, fmt.Errorf("gridclim: dataset has no variable named %s; variables are %v", name, d.VariableNames())
	}
	return v, nil
}

// VariableNames returns the names of all variables, sorted.
func (d *Dataset) VariableNames() []string {
	names := make([]string, 0, len(d.vars))
	for n := range d.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// dimensions returns the names and lengths of all axes used by the
// dataset's variables, sorted by name.
func (d *Dataset) dimensions() ([]string, []int, error) {
	lengths := make(map[string]int)
	for _, name := range d.VariableNames() {
		v := d.vars[name]
		for i, dim := range v.Dims {
			n := v.Data.Shape[i]
			if prev, ok := lengths[dim]; ok && prev != n {
				return nil, nil, fmt.Errorf("gridclim: dim %s has length %d in variable %s but %d elsewhere", dim, n, name, prev)
			}
			lengths[dim] = n
		}
	}
	dims := make([]string, 0, len(lengths))
	for dim := range lengths {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	ns := make([]int, len(dims))
	for i, dim := range dims {
		ns[i] = lengths[dim]
	}
	return dims, ns, nil
}

// coord returns the coordinate for the named axis from whichever
// variable carries it.
func (d *Dataset) coord(dim string) (*Coord, bool) {
	for _, name := range d.VariableNames() {
		if c, ok := d.vars[name].Coords[dim]; ok {
			return c, true
		}
	}
	return nil, false
}

// Write writes the dataset to w as a NetCDF classic file. Data
// variables are stored as float32; numeric coordinates as float64; time
// coordinates as int32 hours since 1900-01-01.
func (d *Dataset) Write(w *os.File) error {
	dims, lengths, err := d.dimensions()
	if err != nil {
		return err
	}
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "data_version", DataVersion)
	for _, k := range sortedKeys(d.Attrs) {
		h.AddAttribute("", k, d.Attrs[k])
	}

	for _, dim := range dims {
		c, ok := d.coord(dim)
		if !ok {
			continue
		}
		if c.IsTime() {
			h.AddVariable(dim, []string{dim}, []int32{0})
			h.AddAttribute(dim, "units", timeUnits)
		} else {
			h.AddVariable(dim, []string{dim}, []float64{0})
		}
	}
	names := d.VariableNames()
	for _, name := range names {
		v := d.vars[name]
		h.AddVariable(name, v.Dims, []float32{0})
		for _, k := range sortedKeys(v.Attrs) {
			h.AddAttribute(name, k, v.Attrs[k])
		}
	}
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return fmt.Errorf("gridclim: writing dataset: %v", errs[0])
	}

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("gridclim: writing dataset: %v", err)
	}
	for _, dim := range dims {
		c, ok := d.coord(dim)
		if !ok {
			continue
		}
		if err := writeCoordNCF(f, c); err != nil {
			return fmt.Errorf("gridclim: writing coordinate %s: %v", dim, err)
		}
	}
	for _, name := range names {
		if err := writeNCF(f, name, d.vars[name].Data); err != nil {
			return fmt.Errorf("gridclim: writing variable %s: %v", name, err)
		}
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return fmt.Errorf("gridclim: writing dataset: %v", err)
	}
	return nil
}

// writeNCF writes data to variable v of f as float32.
func writeNCF(f *cdf.File, v string, data *sparse.DenseArray) error {
	n := 1
	for _, s := range data.Shape {
		n *= s
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	w := f.Writer(v, start, end)
	_, err := w.Write(data32)
	return err
}

// writeCoordNCF writes the labels of c to the coordinate variable of
// the same name.
func writeCoordNCF(f *cdf.File, c *Coord) error {
	end := f.Header.Lengths(c.Name)
	start := make([]int, len(end))
	w := f.Writer(c.Name, start, end)
	var err error
	if c.IsTime() {
		buf := make([]int32, len(c.Times))
		for i, t := range c.Times {
			buf[i] = encodeTime1900(t)
		}
		_, err = w.Write(buf)
	} else {
		buf := make([]float64, len(c.Values))
		copy(buf, c.Values)
		_, err = w.Write(buf)
	}
	return err
}

// encodeTime1900 encodes t as whole hours since 1900-01-01.
func encodeTime1900(t time.Time) int32 {
	return int32(t.Sub(epoch1900) / time.Hour)
}

// decodeTime1900 decodes whole hours since 1900-01-01.
func decodeTime1900(hours int32) time.Time {
	return epoch1900.Add(time.Duration(hours) * time.Hour)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
