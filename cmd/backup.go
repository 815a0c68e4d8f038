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
	"log"

	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/state"
	"github.com/spf13/cobra"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot trajectory state databases to S3",
	Long: `Walks the data dir and uploads a point-in-time copy of each
trajectory's state.db to the bucket named by AWS_BUCKETNAME, keyed by
date and trajectory. Credentials come from the usual AWS environment.

Snapshots are taken through a read-only transaction, so a live daemon
can keep populating while the backup runs.
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		if err := state.BackupS3(params.DatadirRoot); err != nil {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
