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

// MonthlyAnomaly computes the calendar-month climatology of d over the
// named time axis and the deviation of each sample from it.
func (d *DataArray) MonthlyAnomaly(timeDim string) (anom, clim *DataArray, err error) {
	clim, err = d.Climatology(timeDim)
	if err != nil {
		return nil, nil, err
	}
	anom, err = d.Anomaly(clim, timeDim)
	if err != nil {
		return nil, nil, err
	}
	return anom, clim, nil
}

// CompositeResult holds the stages of a threshold composite.
type CompositeResult struct {
	// Index is the smoothed index series the thresholds were applied
	// to: the mean over all axes but the time axis, passed through a
	// rolling mean.
	Index *DataArray

	// Labels gives the category of each time step, or -1 where the
	// index is missing.
	Labels []int

	// Groups is the composite: the input averaged over the time steps
	// in each category, with the time axis replaced by a category axis.
	Groups *DataArray
}

// Composite computes a threshold composite of d over the named time
// axis: d is averaged over all other axes to form an index series, the
// index is passed through a centered rolling mean of the given window
// (minPeriods as in RollingMean), each time step is categorized by
// applying the ascending thresholds to the smoothed index, and the full
// field is averaged over the time steps in each category.
func (d *DataArray) Composite(timeDim string, window, minPeriods int, thresholds []float64) (*CompositeResult, error) {
	if _, err := d.dimIndex(timeDim); err != nil {
		return nil, err
	}
	var spatialDims []string
	for _, dim := range d.Dims {
		if dim != timeDim {
			spatialDims = append(spatialDims, dim)
		}
	}
	index := d.Copy()
	var err error
	if len(spatialDims) > 0 {
		index, err = d.Mean(spatialDims...)
		if err != nil {
			return nil, err
		}
	}
	if window > 1 {
		index, err = index.RollingMean(timeDim, window, minPeriods)
		if err != nil {
			return nil, err
		}
	}
	labelArr, err := index.Categorize(thresholds)
	if err != nil {
		return nil, err
	}
	groups, err := d.GroupMean(timeDim, labelArr.Elements)
	if err != nil {
		return nil, fmt.Errorf("gridclim: compositing %s: %v", d.Name, err)
	}
	return &CompositeResult{
		Index:  index,
		Labels: labelArr.Elements,
		Groups: groups,
	}, nil
}
