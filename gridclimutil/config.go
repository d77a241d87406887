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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigData holds information about a GridClim configuration.
type ConfigData struct {
	// InputFile is the path to the NetCDF file holding the gridded
	// input data. It can be a local path or an http(s) URL, and can
	// include environment variables.
	InputFile string

	// OutputFile is the path to the desired output file location. It
	// can include environment variables.
	OutputFile string

	// Variable is the name of the variable within InputFile that the
	// analysis commands operate on.
	Variable string

	// TimeDim is the name of the time axis in the input data. The
	// default is "time".
	TimeDim string

	// DownloadDir is the directory that remote input files are
	// downloaded to. The default is the system temporary directory. It
	// can include environment variables.
	DownloadDir string

	// LogFile is the path to the desired logfile location. It can
	// include environment variables. If LogFile is left blank, the
	// logfile will be saved in the same location as the OutputFile.
	LogFile string

	// Rolling holds configuration for rolling-mean smoothing of
	// analysis results.
	Rolling struct {
		// Window is the rolling window length in time steps. A window
		// of 0 or 1 disables smoothing.
		Window int

		// MinPeriods is the minimum number of valid samples a window
		// must contain to produce a value. If 0, windows must be full.
		MinPeriods int
	}

	// Smooth holds configuration for the smooth command.
	Smooth struct {
		// Dims gives the axes to smooth over.
		Dims []string

		// Passes is the number of smoothing passes to apply. The
		// default is 1.
		Passes int

		// PeriodicDims lists the axes to be treated as periodic
		// boundaries, for example a global longitude axis.
		PeriodicDims []string
	}

	// Composite holds configuration for the composite command.
	Composite struct {
		// Thresholds are the ascending category boundaries applied to
		// the index series.
		Thresholds []float64
	}

	// OutputVariables maps the names of output variables to the
	// expressions that define them, for the output command; for
	// example t2m_anom = "t2m - t2m_clim".
	OutputVariables map[string]string
}

// ReadConfigFile reads and parses a TOML configuration file.
func ReadConfigFile(filename string) (config *ConfigData, err error) {
	var (
		file  *os.File
		bytes []byte
	)
	file, err = os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("the configuration file you have specified, %v, does not "+
			"appear to exist. Please check the file name and location and "+
			"try again", filename)
	}
	defer file.Close()
	reader := bufio.NewReader(file)
	bytes, err = io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("problem reading configuration file: %v", err)
	}

	config = new(ConfigData)
	if _, err = toml.Decode(string(bytes), config); err != nil {
		return nil, fmt.Errorf(
			"there has been an error parsing the configuration file: %v", err)
	}

	outputVars := make(map[string]string, len(config.OutputVariables))
	for k, v := range config.OutputVariables {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		outputVars[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	config.OutputVariables = outputVars

	config.InputFile = os.ExpandEnv(config.InputFile)
	config.OutputFile = os.ExpandEnv(config.OutputFile)
	config.DownloadDir = os.ExpandEnv(config.DownloadDir)
	config.LogFile = os.ExpandEnv(config.LogFile)

	if config.InputFile == "" {
		return nil, fmt.Errorf("you need to specify an input file in the " +
			"configuration file (for example: InputFile = \"data.nc\")")
	}
	if config.OutputFile == "" {
		return nil, fmt.Errorf("you need to specify an output file in the " +
			"configuration file (for example: OutputFile = \"out.nc\")")
	}
	if config.TimeDim == "" {
		config.TimeDim = "time"
	}
	if config.Rolling.Window < 0 {
		return nil, fmt.Errorf("the Rolling.Window configuration variable must not be negative")
	}
	if config.Smooth.Passes == 0 {
		config.Smooth.Passes = 1
	}
	if config.LogFile == "" {
		config.LogFile = strings.TrimSuffix(config.OutputFile, filepath.Ext(config.OutputFile)) + ".log"
	}

	outdir := filepath.Dir(config.OutputFile)
	if err = os.MkdirAll(outdir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("problem creating output directory: %v", err)
	}
	return config, nil
}
