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

// Package gridclimutil provides the command-line interface for
// GridClim.
package gridclimutil

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spatialmodel/gridclim"
)

var (
	configFile string

	// Config holds the global configuration data.
	Config *ConfigData

	logFile *os.File
)

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gridclim",
	Short: "A toolkit for gridded climate statistics.",
	Long: `A toolkit for computing climatologies, anomalies, rolling means,
          and threshold composites from gridded NetCDF data.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return Startup(configFile)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		Shutdown()
	},
}

// Startup reads the configuration file and sets up logging.
func Startup(configFile string) error {
	var err error
	Config, err = ReadConfigFile(configFile)
	if err != nil {
		return err
	}
	logFile, err = os.Create(Config.LogFile)
	if err != nil {
		return fmt.Errorf("problem creating log file: %v", err)
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, logFile))
	logrus.WithFields(logrus.Fields{
		"version": gridclim.Version,
		"input":   Config.InputFile,
		"output":  Config.OutputFile,
	}).Info("gridclim starting")
	return nil
}

// Shutdown closes the log file.
func Shutdown() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func init() {
	Root.PersistentFlags().StringVar(&configFile, "config", "./gridclim.toml", "configuration file location")
	Root.AddCommand(versionCmd)
	Root.AddCommand(infoCmd)
	Root.AddCommand(climatologyCmd)
	Root.AddCommand(anomalyCmd)
	Root.AddCommand(smoothCmd)
	Root.AddCommand(compositeCmd)
	Root.AddCommand(outputCmd)
	Root.AddCommand(plotCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of GridClim",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("GridClim v%s\n", gridclim.Version)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Summarize the contents of a NetCDF file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := gridclim.ReadDataset(args[0])
		if err != nil {
			return err
		}
		for _, name := range ds.VariableNames() {
			v, err := ds.Variable(name)
			if err != nil {
				return err
			}
			fmt.Printf("%s%v dims=%v", name, v.Data.Shape, v.Dims)
			if u := v.Units(); u != "" {
				fmt.Printf(" units=%q", u)
			}
			fmt.Println()
		}
		return nil
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
	},
}

// inputVariable downloads the configured input file if necessary,
// reads it, and returns the configured variable from it.
func inputVariable() (*gridclim.Dataset, *gridclim.DataArray, error) {
	path, err := maybeDownload(Config.InputFile, Config.DownloadDir)
	if err != nil {
		return nil, nil, err
	}
	ds, err := gridclim.ReadDataset(path)
	if err != nil {
		return nil, nil, err
	}
	name := Config.Variable
	if name == "" {
		names := ds.VariableNames()
		if len(names) != 1 {
			return nil, nil, fmt.Errorf("the input file holds %d variables; "+
				"specify which one to use with the Variable configuration variable", len(names))
		}
		name = names[0]
	}
	da, err := ds.Variable(name)
	if err != nil {
		return nil, nil, err
	}
	return ds, da, nil
}

// writeOutput writes the given variables to the configured output file.
func writeOutput(vars ...*gridclim.DataArray) error {
	ds := gridclim.NewDataset()
	ds.Attrs["source"] = "GridClim v" + gridclim.Version
	for _, v := range vars {
		if err := ds.AddVariable(v); err != nil {
			return err
		}
	}
	return writeDataset(ds)
}

func writeDataset(ds *gridclim.Dataset) error {
	f, err := os.Create(Config.OutputFile)
	if err != nil {
		return fmt.Errorf("problem creating output file: %v", err)
	}
	if err := ds.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logrus.WithField("file", Config.OutputFile).Info("wrote output")
	return nil
}
