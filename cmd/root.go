/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/motionlog/motiond/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var optVerbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "motiond",
	Short: "Transport mode detection for GPS fix streams",
	Long: `motiond ingests GPS fixes, cleans them, and classifies each
one as stationary, walking, cycling, car, train, or airplane.

Fixes arrive as NDJSON on stdin (populate) or over HTTP (webd).
Each trajectory gets its own pipeline, its own state.db, and its own
append-only fixes.geojson.gz under the data dir.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.motiond.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&optVerbose, "verbose", "v", false, "Debug-level logging")
	rootCmd.PersistentFlags().StringVar(&params.DatadirRoot, "datadir", params.DatadirRoot, "Root data directory")
	viper.BindPFlag("datadir", rootCmd.PersistentFlags().Lookup("datadir"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".motiond" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".motiond")
	}

	viper.SetEnvPrefix("motiond")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	if v := viper.GetString("datadir"); v != "" {
		params.DatadirRoot = v
	}
}

// setDefaultSlog tunes the default logger per the verbosity flag.
func setDefaultSlog(cmd *cobra.Command, args []string) {
	level := slog.LevelInfo
	if optVerbose {
		level = slog.LevelDebug
	}
	slog.SetLogLoggerLevel(level)
}
