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

package gridclimutil

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spatialmodel/gridclim"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot a variable's time series",
	Long: `plot averages the configured variable over all axes but the time
          axis and writes the resulting time series to the output file as
          an image (the format follows the file extension, e.g. .png or
          .pdf).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, da, err := inputVariable()
		if err != nil {
			return err
		}
		series, err := timeSeries(da, Config.TimeDim)
		if err != nil {
			return err
		}
		return plotTimeSeries(series, Config.TimeDim, Config.OutputFile)
	},
}

// timeSeries reduces da to a 1-d series over the named time axis.
func timeSeries(da *gridclim.DataArray, timeDim string) (*gridclim.DataArray, error) {
	var otherDims []string
	for _, dim := range da.Dims {
		if dim != timeDim {
			otherDims = append(otherDims, dim)
		}
	}
	if len(otherDims) == 0 {
		return da, nil
	}
	return da.Mean(otherDims...)
}

// plotTimeSeries writes a line plot of the 1-d series to fileName.
func plotTimeSeries(series *gridclim.DataArray, timeDim, fileName string) error {
	if series.Rank() != 1 {
		return fmt.Errorf("gridclim: plotting %s: series rank is %d; want 1", series.Name, series.Rank())
	}
	c := series.Coords[timeDim]
	if c == nil {
		return fmt.Errorf("gridclim: plotting %s: no coordinate for axis %s", series.Name, timeDim)
	}

	pts := make(plotter.XYs, series.Len())
	for i := range pts {
		if c.IsTime() {
			pts[i].X = float64(c.Times[i].Unix())
		} else {
			pts[i].X = c.Values[i]
		}
		pts[i].Y = series.Data.Elements[i]
	}

	p := plot.New()
	p.Title.Text = series.Name
	p.X.Label.Text = timeDim
	if u := series.Units(); u != "" {
		p.Y.Label.Text = fmt.Sprintf("%s [%s]", series.Name, u)
	} else {
		p.Y.Label.Text = series.Name
	}
	if c.IsTime() {
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	}
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("gridclim: plotting %s: %v", series.Name, err)
	}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, fileName); err != nil {
		return fmt.Errorf("gridclim: saving plot: %v", err)
	}
	return nil
}
