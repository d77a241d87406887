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
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// NextData is a type of function that returns data for the next time
// step. If there are no more time steps, it should return the io.EOF
// error.
type NextData func() (*sparse.DenseArray, error)

// NextDataNCF returns a function that sequentially retrieves time
// series data for the specified variable from a series of NetCDF
// classic files with the given file name template between the given
// start and end times. recordDelta and fileDelta specify the length of
// time between each record within a file and between each file,
// respectively. dateFormat is the format in which dates appear in the
// file name, replacing the [DATE] wildcard. msgChan, if not nil,
// receives progress messages.
func NextDataNCF(fileTemplate, dateFormat, varName string, start, end time.Time, recordDelta, fileDelta time.Duration, msgChan chan string) NextData {
	recordsPerFile := int(fileDelta / recordDelta)
	var i int
	date := start
	return func() (*sparse.DenseArray, error) {
		if !date.Before(end) {
			return nil, io.EOF
		}
		f, ff, err := ncfFromTemplate(fileTemplate, dateFormat, date)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := readRecordNCF(varName, ff, i)
		if err != nil {
			return nil, err
		}
		i++
		if i == recordsPerFile {
			if msgChan != nil {
				fileName := strings.Replace(fileTemplate, "[DATE]", date.Format(dateFormat), -1)
				msgChan <- fmt.Sprintf("Read %d records of %s from %s", i, varName, fileName)
			}
			i = 0
			date = date.Add(fileDelta)
		}
		return data, nil
	}
}

// ncfFromTemplate opens a NetCDF file from the given template, where
// the [DATE] wildcard in the given fileTemplate is replaced by the
// given date, formatted as the given dateFormat.
func ncfFromTemplate(fileTemplate, dateFormat string, date time.Time) (*os.File, *cdf.File, error) {
	file := strings.Replace(fileTemplate, "[DATE]", date.Format(dateFormat), -1)
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	ff, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, ff, nil
}

// readRecordNCF reads variable v out of NetCDF file ff at the given
// record index, dropping the record dimension.
func readRecordNCF(v string, ff *cdf.File, record int) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("gridclim: variable %v not in file", v)
	}
	dims = dims[1:]
	nread := 1
	for _, dim := range dims {
		nread *= dim
	}
	start, end := make([]int, len(dims)+1), make([]int, len(dims)+1)
	start[0], end[0] = record, record+1
	r := ff.Reader(v, start, end)
	buf := r.Zero(nread)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("gridclim: reading netcdf variable %s: %v", v, err)
	}
	data := sparse.ZerosDense(dims...)
	switch b := buf.(type) {
	case []float32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []float64:
		copy(data.Elements, b)
	case []int16:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []int32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("gridclim: reading netcdf variable %s: unsupported type %T", v, buf)
	}
	return data, nil
}

// StreamMean calculates the arithmetic mean of a set of arrays.
func StreamMean(dataFunc NextData) (*sparse.DenseArray, error) {
	var avgdata *sparse.DenseArray
	firstData := true
	var n int
	for {
		data, err := dataFunc()
		if err != nil {
			if err == io.EOF {
				if avgdata == nil {
					return nil, fmt.Errorf("gridclim: streaming mean: no data")
				}
				return arrayAverage(avgdata, n), nil
			}
			return nil, err
		}
		if firstData {
			avgdata = sparse.ZerosDense(data.Shape...)
			firstData = false
		}
		avgdata.AddDense(data)
		n++
	}
}

// StreamMin calculates the element-wise minimum of a set of arrays.
func StreamMin(dataFunc NextData) (*sparse.DenseArray, error) {
	return streamExtreme(dataFunc, func(a, b float64) bool { return a < b })
}

// StreamMax calculates the element-wise maximum of a set of arrays.
func StreamMax(dataFunc NextData) (*sparse.DenseArray, error) {
	return streamExtreme(dataFunc, func(a, b float64) bool { return a > b })
}

func streamExtreme(dataFunc NextData, better func(a, b float64) bool) (*sparse.DenseArray, error) {
	var out *sparse.DenseArray
	for {
		data, err := dataFunc()
		if err != nil {
			if err == io.EOF {
				if out == nil {
					return nil, fmt.Errorf("gridclim: streaming extreme: no data")
				}
				return out, nil
			}
			return nil, err
		}
		if out == nil {
			out = data.Copy()
			continue
		}
		for i, v := range data.Elements {
			if better(v, out.Elements[i]) {
				out.Elements[i] = v
			}
		}
	}
}

// StreamClimatology calculates per-calendar-month means of a set of
// arrays, where the i'th array is valid at start + i*recordDelta. The
// result has a leading 12-element month axis; months with no samples
// come out NaN.
func StreamClimatology(dataFunc NextData, start time.Time, recordDelta time.Duration) (*sparse.DenseArray, error) {
	var sum *sparse.DenseArray
	var count [12]int
	date := start
	for {
		data, err := dataFunc()
		if err != nil {
			if err == io.EOF {
				if sum == nil {
					return nil, fmt.Errorf("gridclim: streaming climatology: no data")
				}
				per := len(sum.Elements) / 12
				for m := 0; m < 12; m++ {
					for i := m * per; i < (m+1)*per; i++ {
						if count[m] == 0 {
							sum.Elements[i] = math.NaN()
						} else {
							sum.Elements[i] /= float64(count[m])
						}
					}
				}
				return sum, nil
			}
			return nil, err
		}
		if sum == nil {
			sum = sparse.ZerosDense(append([]int{12}, data.Shape...)...)
		}
		m := int(date.Month()) - 1
		per := len(sum.Elements) / 12
		for i, v := range data.Elements {
			sum.Elements[m*per+i] += v
		}
		count[m]++
		date = date.Add(recordDelta)
	}
}

// SeriesStats holds one-pass statistics of a time-step series.
type SeriesStats struct {
	Mean *sparse.DenseArray
	Min  *sparse.DenseArray
	Max  *sparse.DenseArray
}

// StreamStats computes the mean, minimum, and maximum of a time-step
// series. The three iterators must produce the same series; they are
// consumed concurrently.
func StreamStats(meanData, minData, maxData NextData) (*SeriesStats, error) {
	s := new(SeriesStats)
	errChan := make(chan error)
	go func() {
		var err error
		s.Mean, err = StreamMean(meanData)
		errChan <- err
	}()
	go func() {
		var err error
		s.Min, err = StreamMin(minData)
		errChan <- err
	}()
	go func() {
		var err error
		s.Max, err = StreamMax(maxData)
		errChan <- err
	}()
	for i := 0; i < 3; i++ {
		if err := <-errChan; err != nil {
			return nil, err
		}
	}
	return s, nil
}

// arrayAverage divides s by numTsteps in place.
func arrayAverage(s *sparse.DenseArray, numTsteps int) *sparse.DenseArray {
	n := float64(numTsteps)
	for i, val := range s.Elements {
		s.Elements[i] = val / n
	}
	return s
}
