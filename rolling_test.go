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

func series(t *testing.T, vals ...float64) *DataArray {
	t.Helper()
	data := sparse.ZerosDense(len(vals))
	copy(data.Elements, vals)
	labels := make([]float64, len(vals))
	for i := range labels {
		labels[i] = float64(i)
	}
	da, err := NewDataArray("v", []string{"time"},
		[]*Coord{NewCoord("time", labels)}, data)
	if err != nil {
		t.Fatal(err)
	}
	return da
}

func TestRollingMean(t *testing.T) {
	da := series(t, 0, 1, 2, 3, 4, 5)

	// Full windows required: the edges come out NaN.
	got, err := da.RollingMean("time", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{math.NaN(), 1, 2, 3, 4, math.NaN()}, got, testTolerance)

	// minPeriods 1: partial windows at the edges.
	got, err = da.RollingMean("time", 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{0.5, 1, 2, 3, 4, 4.5}, got, testTolerance)
}

func TestRollingMeanSkipsNaN(t *testing.T) {
	da := series(t, 0, math.NaN(), 2)
	got, err := da.RollingMean("time", 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{0, 1, 2}, got, testTolerance)
}

func TestRollingMeanErrors(t *testing.T) {
	da := series(t, 1, 2)
	if _, err := da.RollingMean("height", 3, 0); err == nil {
		t.Error("expected error for unknown dim")
	}
	if _, err := da.RollingMean("time", 0, 0); err == nil {
		t.Error("expected error for non-positive window")
	}
}

func TestSmooth121(t *testing.T) {
	da := series(t, 0, 1, 2, 3)
	got, err := da.Smooth121([]string{"time"}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{0.25, 1, 2, 2.75}, got, testTolerance)
}

func TestSmooth121Periodic(t *testing.T) {
	da := series(t, 0, 1, 2, 3)
	got, err := da.Smooth121([]string{"time"}, 1, []string{"time"})
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{1, 1, 2, 2}, got, testTolerance)
}

func TestSmooth121MultiplePasses(t *testing.T) {
	da := series(t, 0, 0, 4, 0, 0)
	got, err := da.Smooth121([]string{"time"}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	// One pass gives [0 1 2 1 0]; the second smooths it again.
	compareValues(t, []float64{0.25, 1, 1.5, 1, 0.25}, got, testTolerance)
}

func TestSmooth121PreservesConstant(t *testing.T) {
	da := testField(t)
	constant := da.Apply(func(float64) float64 { return 7 })
	got, err := constant.Smooth121([]string{"lat", "lon"}, 3, []string{"lon"})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got.Data.Elements {
		if math.Abs(v-7) > testTolerance {
			t.Fatalf("element %d: got %g; want 7", i, v)
		}
	}
}

func TestSmooth121ShortAxis(t *testing.T) {
	da := series(t, 5)
	got, err := da.Smooth121([]string{"time"}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	compareValues(t, []float64{5}, got, testTolerance)
}
