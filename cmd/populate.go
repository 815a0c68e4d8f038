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
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/motionlog/motiond/api"
	"github.com/motionlog/motiond/common"
	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/rgeo"
	"github.com/motionlog/motiond/stream"
	"github.com/motionlog/motiond/types/fix"
	"github.com/spf13/cobra"
)

var optSortFixes bool
var optRgeo bool
var optWorkersN int
var optChannelCap int
var optStaleInterval int
var optMaxChannel int
var optTrajectories []string

// populateCmd represents the populate command
var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Populate fixes from stdin stream",
	Long: `

Fixes from mixed trajectories ARE supported, e.g. master.json.gz.

Fixes are decoded as JSON lines from stdin and fanned out to per-trajectory
channels before decoding into Fixes.
Graceful shutdown is MANDATORY for data integrity. Be patient.

Flags:

  --sort            Sort a sliding window of fixes by time before classifying.
                    Classification is stateful and order-sensitive; only turn
                    this off if the source is already strictly ordered. (Default is true.)
  --workers         Number of workers to run in parallel. But remember: populate calls
                    are blocking PER TRAJECTORY. For best results, use a value
                    approximately equivalent to the number of live trajectories.
  --channel-cap     Buffer size for each per-trajectory line channel.
  --stale-interval  A trajectory not seen in this many lines has its channel closed,
                    freeing a worker. Meeting it again later opens a fresh one.
  --max-channel     Recycle a trajectory channel after this many lines, bounding
                    how long a single mover can hog a worker.
  --trajectory      Only process these trajectories (repeatable). Default all.

Examples:

  zcat master.json.gz | motiond populate --workers 12 --sort true

A note on ordering and sorting:

MOST fixes are ordered defacto: they were recorded, pushed, and appended
chronologically per trajectory, give or take riffles at the edges from async
client recording and pushing. But some aren't, because of client bugs or
retrospective uploads of old rides.

Since classification is stateful per trajectory (the journey machine cares
deeply about what came before), each trajectory's fixes must be processed in
the order they arrive. The implementation uses the atomic package to ensure
incremental worker order: workers block until their increment is matched, but
once matched, different-trajectory workers will not block (on state).
Same-trajectory channel recycles therefore wait politely in line, while
different movers run in parallel.
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		initRgeoMaybe()

		ctx, ctxCanceler := context.WithCancel(context.Background())
		interrupt := common.Interrupted()
		defer func() {
			slog.Info("Populate done")
		}()

		// workersWG is used for clean up processing after the reader has finished.
		workersWG := new(sync.WaitGroup)
		workCh := make(chan workT, optWorkersN)

		// workingWorkN is used to ensure per-trajectory chronology.
		// It permits 2 trajectories to populate simultaneously,
		// but does not permit the same trajectory to Populate out of order
		// (Populate's state lock ensures serial trajectories).
		// It is incremented for each work package received.
		// Workers then block until their increment matches the latest package number.
		var workingWorkN int32 = 0

		workerFn := func(workerI int, w workT) {
			defer workersWG.Done()

			tj, err := api.NewTrajectory(w.tc.ID, nil, nil)
			if err != nil {
				slog.Error("Failed to init trajectory", "trajectory", w.tc.ID, "error", err)
				for range w.tc.Ch {
				}
				return
			}
			slog.Info("Populating",
				"worker", fmt.Sprintf("%d/%d", workerI, optWorkersN),
				"work-n", w.n, "trajectory", tj.ID)

			pipe := stream.Transform(ctx, func(data []byte) fix.Fix {
				f := fix.Fix{}
				if err := f.UnmarshalJSON(data); err != nil {
					slog.Error("Failed to unmarshal fix", "error", err)
					return fix.Fix{}
				}
				return f
			}, w.tc.Ch)

			// Ensure ordered fixes per trajectory.
			o := sync.Once{}
			for !atomic.CompareAndSwapInt32(&workingWorkN, w.n-1, w.n) {
				o.Do(func() {
					slog.Warn("Worker blocking", "worker", workerI, "trajectory", tj.ID, "work-n", w.n)
				})
			}

			// Populate is blocking. It holds a lock on the trajectory state.
			if err := tj.Populate(ctx, optSortFixes, pipe); err != nil {
				slog.Error("Failed to populate fixes", "trajectory", tj.ID, "error", err)
			} else {
				slog.Info("Populator worker done", "trajectory", tj.ID)
			}
		}

		// Spin up the workers.
		for i := 0; i < optWorkersN; i++ {
			workerI := i + 1
			go func() {
				workerI := workerI
				for w := range workCh {
					workerFn(workerI, w)
				}
			}()
		}

		// receivedWorkN indexes work packages; workers consume them likewise.
		// With a blocking per-trajectory Populate function, this means that
		// trajectories must (attempt/blocking) Populate in the order in which
		// work was received.
		var receivedWorkN atomic.Int32
		receivedWorkN.Store(0)

		whitelist := make([]conceptual.TrajectoryID, 0, len(optTrajectories))
		for _, raw := range optTrajectories {
			whitelist = append(whitelist, conceptual.SanitizeTrajectoryID(raw))
		}

		quit := make(chan struct{})
		trajChCh, errCh := stream.ScanLinesUnbatchedTrajectories(os.Stdin, quit,
			optWorkersN, optChannelCap, optStaleInterval, optMaxChannel, whitelist)

		go func() {
			for i := 0; i < 2; i++ {
				sig := <-interrupt
				slog.Warn("Received signal", "signal", sig, "i", i)
				if i == 0 {
					quit <- struct{}{}
				} else {
					log.Fatalln("Force exit")
				}
			}
		}()

		for tc := range trajChCh {
			workersWG.Add(1)
			receivedWorkN.Add(1)
			workCh <- workT{n: receivedWorkN.Load(), tc: tc}
		}

		for err := range errCh {
			if err != nil {
				slog.Error("Populate scan error", "error", err)
			}
		}

		slog.Info("Closing work chan")
		close(workCh)
		slog.Info("Waiting on workers")
		workersWG.Wait()
		slog.Info("Canceling context")
		ctxCanceler()
		slog.Info("Au revoir!")
	},
}

func init() {
	rootCmd.AddCommand(populateCmd)

	populateCmd.PersistentFlags().BoolVar(&optSortFixes, "sort", true, "Sort a sliding window of fixes by time")
	populateCmd.PersistentFlags().BoolVar(&optRgeo, "rgeo", false, "Load the offline reverse geocoder (heavy) to name journey places")
	populateCmd.PersistentFlags().IntVar(&optWorkersN, "workers", runtime.NumCPU(), "Number of workers to run parallel")
	populateCmd.PersistentFlags().IntVar(&params.DefaultBatchSize, "batch-size", params.DefaultBatchSize, "Sort window size")
	populateCmd.PersistentFlags().IntVar(&optChannelCap, "channel-cap", params.DefaultBatchSize, "Per-trajectory channel buffer size")
	populateCmd.PersistentFlags().IntVar(&optStaleInterval, "stale-interval", params.DefaultBufferSize, "Close a trajectory channel after this many lines of silence")
	populateCmd.PersistentFlags().IntVar(&optMaxChannel, "max-channel", 5*params.DefaultBufferSize, "Recycle a trajectory channel after this many lines")
	populateCmd.PersistentFlags().StringSliceVar(&optTrajectories, "trajectory", nil, "Only process these trajectories")
}

// workT is passed to concurrent workers.
// It represents the line channel for some (one) trajectory.
type workT struct {
	n  int32
	tc stream.TrajectoryCh
}

// initRgeoMaybe loads the offline geocoder datasets if --rgeo asked
// for them. Takes a while and a lot of memory.
func initRgeoMaybe() {
	if !optRgeo {
		return
	}
	slog.Info("Loading offline geocoder datasets...")
	if err := rgeo.Init(); err != nil {
		log.Fatalln(err)
	}
	slog.Info("Offline geocoder ready")
}
