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
	"context"
	"log"
	"log/slog"

	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/fixdb/flat"
	"github.com/motionlog/motiond/metrics/influxdb"
	"github.com/motionlog/motiond/state"
	"github.com/motionlog/motiond/stream"
	"github.com/motionlog/motiond/types/fix"
	"github.com/spf13/cobra"
)

var optExportBatchSize int

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [trajectory...]",
	Short: "Export stored fixes to InfluxDB",
	Long: `Reads each trajectory's classified fixes from its flat-file record
and posts them to the InfluxDB bucket named by the INFLUXDB_* environment
variables. Points are tagged by trajectory and mode, ready for Grafana.
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		if len(args) == 0 {
			cmd.Help()
			return
		}

		ctx := context.Background()
		for _, arg := range args {
			tid := conceptual.SanitizeTrajectoryID(arg)
			s, err := state.NewTrajectoryState(tid, "", true)
			if err != nil {
				log.Fatalln(err)
			}
			r, err := s.Flat.NamedGZReader(flat.FixesFileName)
			if err != nil {
				s.Close()
				log.Fatalln(err)
			}

			exported := 0
			fixes := stream.NDJSON[fix.Fix](ctx, r.Reader())
			for batch := range stream.Batch(ctx, optExportBatchSize, fixes) {
				if err := influxdb.ExportFixes(batch); err != nil {
					slog.Error("Failed to export batch", "trajectory", tid, "error", err)
				}
				exported += len(batch)
			}
			slog.Info("Exported fixes", "trajectory", tid, "count", exported)

			r.Close()
			s.Close()
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.PersistentFlags().IntVar(&optExportBatchSize, "batch-size", 5000, "Fixes per write batch")
}
