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
	"testing"

	"github.com/ctessum/sparse"
)

func TestAddBroadcast(t *testing.T) {
	a := sparse.ZerosDense(2, 3)
	for i := range a.Elements {
		a.Elements[i] = float64(i)
	}
	da, err := NewDataArray("a", []string{"y", "x"},
		[]*Coord{NewCoord("y", []float64{0, 1}), NewCoord("x", []float64{0, 1, 2})}, a)
	if err != nil {
		t.Fatal(err)
	}

	b := sparse.ZerosDense(3)
	b.Elements = []float64{10, 20, 30}
	db, err := NewDataArray("b", []string{"x"},
		[]*Coord{NewCoord("x", []float64{0, 1, 2})}, b)
	if err != nil {
		t.Fatal(err)
	}

	got, err := da.Add(db)
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{10, 21, 32, 13, 24, 35}, got, testTolerance)
}

func TestSubMisaligned(t *testing.T) {
	a := sparse.ZerosDense(2)
	da, _ := NewDataArray("a", []string{"x"}, []*Coord{NewCoord("x", []float64{0, 1})}, a)
	b := sparse.ZerosDense(2)
	db, _ := NewDataArray("b", []string{"x"}, []*Coord{NewCoord("x", []float64{0, 5})}, b)
	if _, err := da.Sub(db); err == nil {
		t.Error("expected error for misaligned coordinates")
	}
}

func TestDiv(t *testing.T) {
	a := sparse.ZerosDense(2)
	a.Elements = []float64{6, 9}
	da, _ := NewDataArray("a", []string{"x"}, []*Coord{NewCoord("x", []float64{0, 1})}, a)
	b := sparse.ZerosDense(2)
	b.Elements = []float64{3, 0}
	db, _ := NewDataArray("b", []string{"x"}, []*Coord{NewCoord("x", []float64{0, 1})}, b)
	got, err := da.Div(db)
	if err != nil {
		t.Fatal(err)
	}
	if got.Data.Elements[0] != 2 {
		t.Errorf("got %g; want 2", got.Data.Elements[0])
	}
	if !math.IsInf(got.Data.Elements[1], 1) {
		t.Errorf("got %g; want +Inf", got.Data.Elements[1])
	}
}

func TestScalarOps(t *testing.T) {
	da := testField(t)
	got := da.AddScalar(1).Scale(2).Apply(math.Sqrt)
	want := math.Sqrt((da.Get(0, 0, 0) + 1) * 2)
	if got.Get(0, 0, 0) != want {
		t.Errorf("got %g; want %g", got.Get(0, 0, 0), want)
	}
	if da.Get(0, 0, 0) != 0 { // original unchanged
		t.Error("scalar ops modified the original")
	}
}
