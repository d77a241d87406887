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
	"time"
)

// labelTolerance is the tolerance used when matching floating-point
// coordinate labels exactly.
const labelTolerance = 1.0e-10

// Coord holds the labels for one axis of a DataArray. A coordinate is
// either numeric (Values) or temporal (Times); exactly one of the two
// is non-nil.
type Coord struct {
	// Name is the name of the axis this coordinate labels.
	Name string

	// Values holds numeric labels, one per position along the axis.
	Values []float64

	// Times holds time labels, one per position along the axis.
	Times []time.Time
}

// NewCoord creates a numeric coordinate for the axis with the given name.
func NewCoord(name string, values []float64) *Coord {
	return &Coord{Name: name, Values: values}
}

// NewTimeCoord creates a time coordinate for the axis with the given name.
func NewTimeCoord(name string, times []time.Time) *Coord {
	return &Coord{Name: name, Times: times}
}

// Len returns the number of labels.
func (c *Coord) Len() int {
	if c.IsTime() {
		return len(c.Times)
	}
	return len(c.Values)
}

// IsTime reports whether this is a time coordinate.
func (c *Coord) IsTime() bool { return c.Times != nil }

// Copy returns a deep copy of c.
func (c *Coord) Copy() *Coord {
	o := &Coord{Name: c.Name}
	if c.Values != nil {
		o.Values = make([]float64, len(c.Values))
		copy(o.Values, c.Values)
	}
	if c.Times != nil {
		o.Times = make([]time.Time, len(c.Times))
		copy(o.Times, c.Times)
	}
	return o
}

// subset returns a copy of c containing labels start through end, inclusive.
func (c *Coord) subset(start, end int) *Coord {
	o := &Coord{Name: c.Name}
	if c.IsTime() {
		o.Times = append([]time.Time{}, c.Times[start:end+1]...)
	} else {
		o.Values = append([]float64{}, c.Values[start:end+1]...)
	}
	return o
}

func (c *Coord) validate() error {
	if c.Name == "" {
		return fmt.Errorf("gridclim: coordinate has no name")
	}
	if (c.Values == nil) == (c.Times == nil) {
		return fmt.Errorf("gridclim: coordinate %s must have either numeric or time labels", c.Name)
	}
	return nil
}

// index returns the position of the given numeric label, matched within
// labelTolerance.
func (c *Coord) index(label float64) (int, error) {
	if c.IsTime() {
		return -1, fmt.Errorf("gridclim: coordinate %s is a time coordinate; use a time label", c.Name)
	}
	for i, v := range c.Values {
		if math.Abs(v-label) <= labelTolerance {
			return i, nil
		}
	}
	return -1, fmt.Errorf("gridclim: label %g not found in coordinate %s", label, c.Name)
}

// nearestIndex returns the position of the numeric label closest to the
// given label.
func (c *Coord) nearestIndex(label float64) (int, error) {
	if c.IsTime() {
		return -1, fmt.Errorf("gridclim: coordinate %s is a time coordinate; use a time label", c.Name)
	}
	if len(c.Values) == 0 {
		return -1, fmt.Errorf("gridclim: coordinate %s is empty", c.Name)
	}
	best, bestDist := 0, math.Inf(1)
	for i, v := range c.Values {
		if d := math.Abs(v - label); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// timeIndex returns the position of the given time label.
func (c *Coord) timeIndex(t time.Time) (int, error) {
	if !c.IsTime() {
		return -1, fmt.Errorf("gridclim: coordinate %s is not a time coordinate", c.Name)
	}
	for i, v := range c.Times {
		if v.Equal(t) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("gridclim: time %v not found in coordinate %s", t, c.Name)
}

// equal reports whether c and o have the same name and labels.
func (c *Coord) equal(o *Coord) bool {
	if c.Name != o.Name || c.IsTime() != o.IsTime() || c.Len() != o.Len() {
		return false
	}
	if c.IsTime() {
		for i, t := range c.Times {
			if !t.Equal(o.Times[i]) {
				return false
			}
		}
		return true
	}
	for i, v := range c.Values {
		if math.Abs(v-o.Values[i]) > labelTolerance {
			return false
		}
	}
	return true
}
