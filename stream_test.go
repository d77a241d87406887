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
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

// sliceData returns a NextData iterator over a fixed sequence of
// 2-element arrays.
func sliceData(steps ...[]float64) NextData {
	var i int
	return func() (*sparse.DenseArray, error) {
		if i == len(steps) {
			return nil, io.EOF
		}
		data := sparse.ZerosDense(len(steps[i]))
		copy(data.Elements, steps[i])
		i++
		return data, nil
	}
}

func TestStreamMean(t *testing.T) {
	mean, err := StreamMean(sliceData(
		[]float64{1, 10},
		[]float64{2, 20},
		[]float64{3, 30},
	))
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 20}
	for i, w := range want {
		if mean.Elements[i] != w {
			t.Errorf("element %d: got %g; want %g", i, mean.Elements[i], w)
		}
	}
}

func TestStreamMeanNoData(t *testing.T) {
	if _, err := StreamMean(sliceData()); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestStreamMinMax(t *testing.T) {
	min, err := StreamMin(sliceData([]float64{1, 30}, []float64{3, 10}))
	if err != nil {
		t.Fatal(err)
	}
	max, err := StreamMax(sliceData([]float64{1, 30}, []float64{3, 10}))
	if err != nil {
		t.Fatal(err)
	}
	if min.Elements[0] != 1 || min.Elements[1] != 10 {
		t.Errorf("min: got %v; want [1 10]", min.Elements)
	}
	if max.Elements[0] != 3 || max.Elements[1] != 30 {
		t.Errorf("max: got %v; want [3 30]", max.Elements)
	}
}

func TestStreamStats(t *testing.T) {
	steps := [][]float64{{1, 30}, {3, 10}, {2, 20}}
	s, err := StreamStats(sliceData(steps...), sliceData(steps...), sliceData(steps...))
	if err != nil {
		t.Fatal(err)
	}
	if s.Mean.Elements[0] != 2 || s.Mean.Elements[1] != 20 {
		t.Errorf("mean: got %v; want [2 20]", s.Mean.Elements)
	}
	if s.Min.Elements[0] != 1 || s.Min.Elements[1] != 10 {
		t.Errorf("min: got %v; want [1 10]", s.Min.Elements)
	}
	if s.Max.Elements[0] != 3 || s.Max.Elements[1] != 30 {
		t.Errorf("max: got %v; want [3 30]", s.Max.Elements)
	}
}

func TestStreamStatsError(t *testing.T) {
	if _, err := StreamStats(sliceData(), sliceData(), sliceData()); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestStreamClimatology(t *testing.T) {
	// 14 records at 31-day spacing starting 2000-01-01 land in successive
	// calendar months, so January and February are each sampled twice.
	steps := make([][]float64, 14)
	for i := range steps {
		steps[i] = []float64{float64(i)}
	}
	start := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	clim, err := StreamClimatology(sliceData(steps...), start, 31*24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(clim.Shape) != 2 || clim.Shape[0] != 12 {
		t.Fatalf("shape: got %v; want [12 1]", clim.Shape)
	}
	// January holds records 0 and 12, February 1 and 13.
	if got := clim.Get(0, 0); got != 6 {
		t.Errorf("January: got %g; want 6", got)
	}
	if got := clim.Get(1, 0); got != 7 {
		t.Errorf("February: got %g; want 7", got)
	}
	for m := 2; m < 12; m++ {
		if got := clim.Get(m, 0); got != float64(m) {
			t.Errorf("month %d: got %g; want %d", m+1, got, m)
		}
	}
}

// writeStreamFile writes a file holding a t2m(time, lat) variable with
// one row of vals per time step.
func writeStreamFile(t *testing.T, path string, times []time.Time, vals [][]float64) {
	t.Helper()
	data := sparse.ZerosDense(len(times), 2)
	for i, row := range vals {
		copy(data.Elements[i*2:(i+1)*2], row)
	}
	da, err := NewDataArray("t2m", []string{"time", "lat"},
		[]*Coord{NewTimeCoord("time", times), NewCoord("lat", []float64{10, 20})}, data)
	if err != nil {
		t.Fatal(err)
	}
	ds := NewDataset()
	if err := ds.AddVariable(da); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.Write(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNextDataNCF(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "t2m_[DATE].nc")
	start := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	recordDelta := 12 * time.Hour
	fileDelta := 24 * time.Hour

	// Two daily files with two 12-hourly records each.
	for day := 0; day < 2; day++ {
		date := start.Add(time.Duration(day) * fileDelta)
		base := float64(day * 4)
		writeStreamFile(t,
			strings.Replace(template, "[DATE]", date.Format("20060102"), -1),
			[]time.Time{date, date.Add(recordDelta)},
			[][]float64{{base + 1, base + 2}, {base + 3, base + 4}})
	}

	msgChan := make(chan string, 2)
	next := NextDataNCF(template, "20060102", "t2m", start, start.Add(2*fileDelta),
		recordDelta, fileDelta, msgChan)

	want := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	for i, w := range want {
		data, err := next()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if len(data.Shape) != 1 || data.Shape[0] != 2 {
			t.Fatalf("record %d: shape %v; want [2]", i, data.Shape)
		}
		for j, v := range w {
			if data.Elements[j] != v {
				t.Errorf("record %d element %d: got %g; want %g", i, j, data.Elements[j], v)
			}
		}
	}
	if _, err := next(); err != io.EOF {
		t.Fatalf("after last record: got %v; want io.EOF", err)
	}

	// One progress message is sent per fully read file.
	if len(msgChan) != 2 {
		t.Fatalf("progress messages: got %d; want 2", len(msgChan))
	}
	msg := <-msgChan
	if !strings.Contains(msg, "t2m") || !strings.Contains(msg, "20000101") {
		t.Errorf("unexpected progress message %q", msg)
	}
}

func TestStreamClimatologyEmptyMonth(t *testing.T) {
	start := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	clim, err := StreamClimatology(sliceData([]float64{5}), start, 31*24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if got := clim.Get(0, 0); got != 5 {
		t.Errorf("January: got %g; want 5", got)
	}
	if got := clim.Get(1, 0); !math.IsNaN(got) {
		t.Errorf("February: got %g; want NaN", got)
	}
}
