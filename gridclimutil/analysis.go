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
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/spatialmodel/gridclim"
)

var thresholdsFlag string

func init() {
	compositeCmd.Flags().StringVar(&thresholdsFlag, "thresholds", "",
		"comma-separated ascending category boundaries, overriding the configuration file")
}

// parseThresholds parses a comma-separated list of numbers.
func parseThresholds(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := cast.ToFloat64E(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var climatologyCmd = &cobra.Command{
	Use:   "climatology",
	Short: "Compute a monthly climatology",
	Long: `climatology computes the per-calendar-month mean of the configured
          variable over the time axis and writes it to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, da, err := inputVariable()
		if err != nil {
			return err
		}
		clim, err := da.Climatology(Config.TimeDim)
		if err != nil {
			return err
		}
		clim.Name = da.Name + "_clim"
		clim.Attrs["description"] = "monthly climatology of " + da.Name
		return writeOutput(clim)
	},
}

var anomalyCmd = &cobra.Command{
	Use:   "anomaly",
	Short: "Compute anomalies relative to a monthly climatology",
	Long: `anomaly computes the deviation of the configured variable from its
          per-calendar-month mean, optionally applies a centered rolling
          mean over the time axis (Rolling.Window), and writes the result
          along with the climatology to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, da, err := inputVariable()
		if err != nil {
			return err
		}
		anom, clim, err := da.MonthlyAnomaly(Config.TimeDim)
		if err != nil {
			return err
		}
		if Config.Rolling.Window > 1 {
			anom, err = anom.RollingMean(Config.TimeDim, Config.Rolling.Window, Config.Rolling.MinPeriods)
			if err != nil {
				return err
			}
			logrus.WithField("window", Config.Rolling.Window).Info("applied rolling mean")
		}
		anom.Name = da.Name + "_anom"
		anom.Attrs["description"] = "anomaly of " + da.Name + " relative to its monthly climatology"
		clim.Name = da.Name + "_clim"
		clim.Attrs["description"] = "monthly climatology of " + da.Name
		return writeOutput(anom, clim)
	},
}

var smoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Apply 1-2-1 stencil smoothing",
	Long: `smooth applies the [1 2 1]/4 smoothing stencil to the configured
          variable along the axes given by Smooth.Dims, Smooth.Passes
          times. Axes listed in Smooth.PeriodicDims wrap around.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, da, err := inputVariable()
		if err != nil {
			return err
		}
		if len(Config.Smooth.Dims) == 0 {
			return fmt.Errorf("you need to specify the axes to smooth over in the " +
				"Smooth.Dims configuration variable")
		}
		sm, err := da.Smooth121(Config.Smooth.Dims, Config.Smooth.Passes, Config.Smooth.PeriodicDims)
		if err != nil {
			return err
		}
		sm.Attrs["description"] = fmt.Sprintf("%s smoothed %d times over [%s]",
			da.Name, Config.Smooth.Passes, strings.Join(Config.Smooth.Dims, " "))
		return writeOutput(sm)
	},
}

var compositeCmd = &cobra.Command{
	Use:   "composite",
	Short: "Compute a threshold composite",
	Long: `composite averages the configured variable over all axes but the
          time axis to form an index series, smooths the index with a
          centered rolling mean (Rolling.Window), categorizes each time
          step against the ascending Composite.Thresholds, and averages
          the full field over the time steps in each category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, da, err := inputVariable()
		if err != nil {
			return err
		}
		thresholds := Config.Composite.Thresholds
		if thresholdsFlag != "" {
			thresholds, err = parseThresholds(thresholdsFlag)
			if err != nil {
				return fmt.Errorf("problem parsing the thresholds flag: %v", err)
			}
		}
		if len(thresholds) == 0 {
			return fmt.Errorf("you need to specify category boundaries in the " +
				"Composite.Thresholds configuration variable or the thresholds flag")
		}
		res, err := da.Composite(Config.TimeDim, Config.Rolling.Window, Config.Rolling.MinPeriods, thresholds)
		if err != nil {
			return err
		}
		counts := make(map[int]int)
		for _, l := range res.Labels {
			counts[l]++
		}
		logrus.WithField("categoryCounts", counts).Info("categorized time steps")

		res.Groups.Name = da.Name + "_comp"
		res.Groups.Attrs["description"] = "composite of " + da.Name + " per index category"
		res.Index.Name = da.Name + "_index"
		res.Index.Attrs["description"] = "index series used for categorization"
		return writeOutput(res.Groups, res.Index)
	},
}

var outputCmd = &cobra.Command{
	Use:   "output",
	Short: "Evaluate derived output variables",
	Long: `output evaluates the expressions in the OutputVariables
          configuration section over the variables of the input file and
          writes the derived variables to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(Config.OutputVariables) == 0 {
			return fmt.Errorf("there are no variables specified for output. Please fill in " +
				"the OutputVariables section of the configuration file and try again")
		}
		path, err := maybeDownload(Config.InputFile, Config.DownloadDir)
		if err != nil {
			return err
		}
		ds, err := gridclim.ReadDataset(path)
		if err != nil {
			return err
		}
		o, err := gridclim.NewOutputter(Config.OutputVariables, nil)
		if err != nil {
			return err
		}
		out, err := o.Output(ds)
		if err != nil {
			return err
		}
		return writeDataset(out)
	},
}
