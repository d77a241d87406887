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
	"time"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats/scalar"
)

const testTolerance = 1.0e-10

// testField returns a time × lat × lon array with 24 monthly time steps
// starting January 2000 and values t + 10*j + 100*i.
func testField(t *testing.T) *DataArray {
	t.Helper()
	times := make([]time.Time, 24)
	for i := range times {
		times[i] = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
	}
	data := sparse.ZerosDense(24, 2, 2)
	for ti := 0; ti < 24; ti++ {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				data.Set(float64(ti)+10*float64(j)+100*float64(i), ti, j, i)
			}
		}
	}
	da, err := NewDataArray("t2m", []string{"time", "lat", "lon"},
		[]*Coord{
			NewTimeCoord("time", times),
			NewCoord("lat", []float64{10, 20}),
			NewCoord("lon", []float64{30, 40}),
		}, data)
	if err != nil {
		t.Fatal(err)
	}
	da.Attrs["units"] = "K"
	return da
}

// compareValues checks that the elements of got match want within tol,
// treating NaN as equal to NaN.
func compareValues(t *testing.T, want []float64, got *DataArray, tol float64) {
	t.Helper()
	if len(want) != len(got.Data.Elements) {
		t.Fatalf("length: got %d; want %d", len(got.Data.Elements), len(want))
	}
	for i, w := range want {
		g := got.Data.Elements[i]
		if math.IsNaN(w) != math.IsNaN(g) {
			t.Errorf("element %d: got %g; want %g", i, g, w)
			continue
		}
		if !math.IsNaN(w) && !scalar.EqualWithinAbsOrRel(g, w, tol, tol) {
			t.Errorf("element %d: got %g; want %g", i, g, w)
		}
	}
}

func TestNewDataArrayInvariants(t *testing.T) {
	data := sparse.ZerosDense(2, 3)
	coords := []*Coord{
		NewCoord("y", []float64{0, 1}),
		NewCoord("x", []float64{0, 1, 2}),
	}
	if _, err := NewDataArray("v", []string{"y", "x"}, coords, data); err != nil {
		t.Fatal(err)
	}

	// Coordinate length must match axis length.
	badCoords := []*Coord{
		NewCoord("y", []float64{0, 1}),
		NewCoord("x", []float64{0, 1}),
	}
	if _, err := NewDataArray("v", []string{"y", "x"}, badCoords, data); err == nil {
		t.Error("expected error for mismatched coordinate length")
	}

	// Axis names must be unique.
	dupCoords := []*Coord{
		NewCoord("y", []float64{0, 1}),
		NewCoord("y", []float64{0, 1, 2}),
	}
	if _, err := NewDataArray("v", []string{"y", "y"}, dupCoords, data); err == nil {
		t.Error("expected error for duplicate axis names")
	}

	// Rank must match the number of dims.
	if _, err := NewDataArray("v", []string{"y"}, coords[:1], data); err == nil {
		t.Error("expected error for rank mismatch")
	}
}

func TestISel(t *testing.T) {
	da := testField(t)
	got, err := da.ISel("time", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Dims) != 2 || got.Dims[0] != "lat" || got.Dims[1] != "lon" {
		t.Fatalf("dims: got %v", got.Dims)
	}
	compareValues(t, []float64{3, 103, 13, 113}, got, testTolerance)
	if got.Attrs["units"] != "K" {
		t.Errorf("attrs not carried: %v", got.Attrs)
	}
}

func TestSel(t *testing.T) {
	da := testField(t)
	got, err := da.Sel("lat", 20)
	if err != nil {
		t.Fatal(err)
	}
	if got.Get(0, 0) != 10 || got.Get(0, 1) != 110 {
		t.Errorf("got %g, %g; want 10, 110", got.Get(0, 0), got.Get(0, 1))
	}
	if _, err := da.Sel("lat", 15); err == nil {
		t.Error("expected error for missing label")
	}
}

func TestSelNearest(t *testing.T) {
	da := testField(t)
	got, err := da.SelNearest("lon", 33)
	if err != nil {
		t.Fatal(err)
	}
	if got.Get(0, 0) != 0 { // nearest to 33 is lon=30, i=0
		t.Errorf("got %g; want 0", got.Get(0, 0))
	}
}

func TestSelTime(t *testing.T) {
	da := testField(t)
	got, err := da.SelTime("time", time.Date(2000, time.March, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{2, 102, 12, 112}, got, testTolerance)
}

func TestSelRange(t *testing.T) {
	da := testField(t)
	got, err := da.SelRange("lat", 15, 25)
	if err != nil {
		t.Fatal(err)
	}
	if got.Data.Shape[1] != 1 {
		t.Fatalf("lat length: got %d; want 1", got.Data.Shape[1])
	}
	if got.Coords["lat"].Values[0] != 20 {
		t.Errorf("lat label: got %g; want 20", got.Coords["lat"].Values[0])
	}
}

func TestSelTimeRange(t *testing.T) {
	da := testField(t)
	t0 := time.Date(2000, time.March, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2000, time.May, 1, 0, 0, 0, 0, time.UTC)
	got, err := da.SelTimeRange("time", t0, t1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Data.Shape[0] != 3 {
		t.Fatalf("time length: got %d; want 3", got.Data.Shape[0])
	}
	if !got.Coords["time"].Times[0].Equal(t0) {
		t.Errorf("first time: got %v; want %v", got.Coords["time"].Times[0], t0)
	}
}

func TestTranspose(t *testing.T) {
	da := testField(t)
	got, err := da.Transpose("lon", "lat", "time")
	if err != nil {
		t.Fatal(err)
	}
	if got.Get(1, 0, 5) != da.Get(5, 0, 1) {
		t.Errorf("transposed value mismatch")
	}
	if _, err := da.Transpose("lon", "lat"); err == nil {
		t.Error("expected error for incomplete dim list")
	}
}

func TestSetZero(t *testing.T) {
	data := sparse.ZerosDense(2)
	data.Elements[0] = 5
	da, err := NewDataArray("v", []string{"x"},
		[]*Coord{NewCoord("x", []float64{0, 1})}, data)
	if err != nil {
		t.Fatal(err)
	}
	da.Set(0, 0)
	if got := da.Get(0); got != 0 {
		t.Errorf("after Set(0, 0): got %g; want 0", got)
	}
	da.Set(-3, 1)
	if got := da.Get(1); got != -3 {
		t.Errorf("after Set(-3, 1): got %g; want -3", got)
	}
}

func TestCopyIsDeep(t *testing.T) {
	da := testField(t)
	cp := da.Copy()
	cp.Data.Elements[0] = -999
	cp.Coords["lat"].Values[0] = -999
	cp.Attrs["units"] = "degC"
	if da.Data.Elements[0] == -999 || da.Coords["lat"].Values[0] == -999 || da.Attrs["units"] != "K" {
		t.Error("copy shares state with original")
	}
}
