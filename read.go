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
	"reflect"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
)

// ReadDataset reads a NetCDF file (classic or NetCDF-4) into a Dataset.
// Variables whose only dimension is their own name become coordinates;
// everything else becomes a data variable. Packed variables
// (scale_factor/add_offset) are unpacked and fill values become NaN.
// Axes without a coordinate variable get a position-index coordinate.
func ReadDataset(path string) (*Dataset, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gridclim: opening %s: %v", path, err)
	}
	defer nc.Close()
	return readGroup(nc, path)
}

func readGroup(nc api.Group, path string) (*Dataset, error) {
	ds := NewDataset()
	for _, k := range nc.Attributes().Keys() {
		if v, ok := nc.Attributes().Get(k); ok {
			ds.Attrs[k] = attrString(v)
		}
	}
	if v, ok := ds.Attrs["data_version"]; ok && v != DataVersion {
		return nil, fmt.Errorf("gridclim: %s: data version %s is incompatible with the required version %s",
			path, v, DataVersion)
	}

	// First pass: coordinate variables.
	coords := make(map[string]*Coord)
	names := nc.ListVariables()
	for _, name := range names {
		v, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("gridclim: reading %s from %s: %v", name, path, err)
		}
		if len(v.Dimensions) != 1 || v.Dimensions[0] != name {
			continue
		}
		c, err := coordFromVariable(name, v)
		if err != nil {
			return nil, fmt.Errorf("gridclim: reading coordinate %s from %s: %v", name, path, err)
		}
		coords[name] = c
	}

	// Second pass: data variables.
	for _, name := range names {
		if _, ok := coords[name]; ok {
			continue
		}
		v, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("gridclim: reading %s from %s: %v", name, path, err)
		}
		elements, shape, err := flattenValues(v.Values)
		if err != nil {
			return nil, fmt.Errorf("gridclim: reading %s from %s: %v", name, path, err)
		}
		if len(shape) != len(v.Dimensions) {
			return nil, fmt.Errorf("gridclim: reading %s from %s: value rank %d does not match %d dimensions",
				name, path, len(shape), len(v.Dimensions))
		}
		unpack(elements, v.Attributes)

		data := sparse.ZerosDense(shape...)
		data.Elements = elements
		cs := make([]*Coord, len(v.Dimensions))
		for i, dim := range v.Dimensions {
			if c, ok := coords[dim]; ok {
				cs[i] = c.Copy()
			} else {
				cs[i] = indexCoord(dim, shape[i])
			}
		}
		da, err := NewDataArray(name, append([]string{}, v.Dimensions...), cs, data)
		if err != nil {
			return nil, err
		}
		for _, k := range v.Attributes.Keys() {
			switch k {
			case "scale_factor", "add_offset", "_FillValue", "missing_value":
				continue
			}
			if av, ok := v.Attributes.Get(k); ok {
				da.Attrs[k] = attrString(av)
			}
		}
		if err := ds.AddVariable(da); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// coordFromVariable builds a coordinate from a coordinate variable,
// decoding time axes from their "<unit> since <base>" units attribute.
func coordFromVariable(name string, v *api.Variable) (*Coord, error) {
	elements, shape, err := flattenValues(v.Values)
	if err != nil {
		return nil, err
	}
	if len(shape) != 1 {
		return nil, fmt.Errorf("coordinate rank is %d; want 1", len(shape))
	}
	if units, ok := v.Attributes.Get("units"); ok {
		if base, step, ok := parseTimeUnits(attrString(units)); ok {
			times := make([]time.Time, len(elements))
			for i, e := range elements {
				times[i] = base.Add(time.Duration(e * float64(step)))
			}
			return NewTimeCoord(name, times), nil
		}
	}
	return NewCoord(name, elements), nil
}

// parseTimeUnits parses CF-style time units such as
// "hours since 1900-01-01 00:00:00".
func parseTimeUnits(units string) (base time.Time, step time.Duration, ok bool) {
	fields := strings.Fields(units)
	if len(fields) < 3 || fields[1] != "since" {
		return time.Time{}, 0, false
	}
	switch fields[0] {
	case "seconds", "second":
		step = time.Second
	case "minutes", "minute":
		step = time.Minute
	case "hours", "hour":
		step = time.Hour
	case "days", "day":
		step = 24 * time.Hour
	default:
		return time.Time{}, 0, false
	}
	stamp := strings.Join(fields[2:], " ")
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05Z", "2006-01-02"} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t.UTC(), step, true
		}
	}
	return time.Time{}, 0, false
}

// unpack applies scale_factor/add_offset decoding in place and replaces
// fill values with NaN.
func unpack(elements []float64, attrs api.AttributeMap) {
	fill, hasFill := attrFloat(attrs, "_FillValue")
	if !hasFill {
		fill, hasFill = attrFloat(attrs, "missing_value")
	}
	scale, hasScale := attrFloat(attrs, "scale_factor")
	offset, hasOffset := attrFloat(attrs, "add_offset")
	if !hasScale {
		scale = 1
	}
	if !hasOffset {
		offset = 0
	}
	for i, e := range elements {
		if hasFill && e == fill {
			elements[i] = math.NaN()
			continue
		}
		if hasScale || hasOffset {
			elements[i] = e*scale + offset
		}
	}
}

// flattenValues converts the possibly nested slices returned by the
// NetCDF library into a flat float64 slice plus its shape.
func flattenValues(values interface{}) ([]float64, []int, error) {
	rv := reflect.ValueOf(values)
	var shape []int
	for v := rv; v.Kind() == reflect.Slice; v = v.Index(0) {
		shape = append(shape, v.Len())
		if v.Len() == 0 {
			break
		}
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	out := make([]float64, 0, n)
	var walk func(v reflect.Value, depth int) error
	walk = func(v reflect.Value, depth int) error {
		if depth == len(shape) {
			switch v.Kind() {
			case reflect.Float32, reflect.Float64:
				out = append(out, v.Float())
			case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
				out = append(out, float64(v.Int()))
			case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				out = append(out, float64(v.Uint()))
			default:
				return fmt.Errorf("unsupported element type %s", v.Kind())
			}
			return nil
		}
		if v.Kind() != reflect.Slice || v.Len() != shape[depth] {
			return fmt.Errorf("ragged array: want length %d at depth %d", shape[depth], depth)
		}
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(rv, 0); err != nil {
		return nil, nil, err
	}
	return out, shape, nil
}

// attrFloat returns the named attribute as a float64.
func attrFloat(attrs api.AttributeMap, name string) (float64, bool) {
	v, ok := attrs.Get(name)
	if !ok {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		if rv.Len() != 1 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return float64(rv.Int()), true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// attrString formats an attribute value for storage in Attrs,
// unwrapping single-element slices.
func attrString(v interface{}) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Len() == 1 && rv.Type().Elem().Kind() != reflect.Uint8 {
		return fmt.Sprintf("%v", rv.Index(0).Interface())
	}
	return fmt.Sprintf("%v", v)
}

// indexCoord returns a 0..n-1 position coordinate for axes that have no
// coordinate variable.
func indexCoord(name string, n int) *Coord {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i)
	}
	return NewCoord(name, vals)
}
