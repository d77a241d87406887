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
	"sort"
	"testing"

	"github.com/ctessum/sparse"
)

func outputTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds := NewDataset()
	mk := func(name string, vals ...float64) {
		data := sparse.ZerosDense(len(vals))
		copy(data.Elements, vals)
		labels := make([]float64, len(vals))
		for i := range labels {
			labels[i] = float64(i)
		}
		da, err := NewDataArray(name, []string{"x"},
			[]*Coord{NewCoord("x", labels)}, data)
		if err != nil {
			t.Fatal(err)
		}
		if err := ds.AddVariable(da); err != nil {
			t.Fatal(err)
		}
	}
	mk("a", 1, 2)
	mk("b", 3, 4)
	return ds
}

func TestOutputter(t *testing.T) {
	ds := outputTestDataset(t)
	o, err := NewOutputter(map[string]string{
		"c": "a + b",
		"d": "c * 2",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	model := o.ModelVariables()
	sort.Strings(model)
	if len(model) != 2 || model[0] != "a" || model[1] != "b" {
		t.Fatalf("model variables: got %v; want [a b]", model)
	}

	out, err := o.Output(ds)
	if err != nil {
		t.Fatal(err)
	}
	c, err := out.Variable("c")
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{4, 6}, c, testTolerance)

	// d references c, which is replaced by its defining expression.
	d, err := out.Variable("d")
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{8, 12}, d, testTolerance)
}

func TestOutputterFunctions(t *testing.T) {
	ds := outputTestDataset(t)
	o, err := NewOutputter(map[string]string{"s": "sqrt(abs(a - b))"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := o.Output(ds)
	if err != nil {
		t.Fatal(err)
	}
	s, err := out.Variable("s")
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{1.4142135623730951, 1.4142135623730951}, s, 1.0e-12)
}

func TestOutputterUndefinedVariable(t *testing.T) {
	ds := outputTestDataset(t)
	o, err := NewOutputter(map[string]string{"bad": "nosuchvar + 1"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Output(ds); err == nil {
		t.Error("expected error for undefined variable")
	}
}

func TestOutputterParseError(t *testing.T) {
	if _, err := NewOutputter(map[string]string{"bad": "a +* b"}, nil); err == nil {
		t.Error("expected error for invalid expression")
	}
}
