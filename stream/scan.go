package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/types/fix"
	"github.com/tidwall/gjson"
)

const AttrTrajectory = "properties.Trajectory"
const AttrUnixTime = "properties.UnixTime"
const AttrTime = "properties.Time"

var ErrMissingAttribute = errors.New("missing attribute in read line")

type TrajectoryCh struct {
	ID conceptual.TrajectoryID
	Ch chan []byte
}

// lineTime pulls the fix time from a raw line, preferring UnixTime.
func lineTime(msg []byte) (time.Time, bool) {
	if t := gjson.GetBytes(msg, AttrUnixTime); t.Exists() {
		return time.Unix(t.Int(), 0), true
	}
	if t := gjson.GetBytes(msg, AttrTime); t.Exists() {
		return t.Time(), true
	}
	return time.Time{}, false
}

// ScanLinesUnbatchedTrajectories reads a stream of NDJSON fix lines from reader,
// and sends them to a channel of (raw bytes)/trajectory channels.
// The trajectory channels are buffered, and will be closed after staleInt lines of inactivity.
// The trajectory channels are sent to workersN workers, who will process the fixes.
// Each trajectory should have one worker; that is what keeps per-trajectory ordering.
// The quit channel should be used to interrupt the read loop.
func ScanLinesUnbatchedTrajectories(reader io.Reader, quit <-chan struct{},
	workersN, channelCap, staleInt, maxInt int, whitelist []conceptual.TrajectoryID) (chan TrajectoryCh, chan error) {

	// FIXME: What happens if there are more live trajectories than workersN?
	// Will the scanner ever free itself from the race?
	// The workaround is to use unbuffered channel cap, but that's not ideal with many trajectories.
	trajChCh := make(chan TrajectoryCh, workersN)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(trajChCh)
		dec := json.NewDecoder(reader)

		// A trajectory not seen in this many lines will have its channel closed.
		// Upon meeting it again later, a new channel will be opened.
		closeAfter := uint64(staleInt)
		// A map of trajectory:line_index, where line_index is the last line index it was seen on.
		lastMap := sync.Map{}
		// A map of trajectory:integer, where integer is the number of messages sent on its chan.
		sentMap := map[conceptual.TrajectoryID]int{}
		// A map of trajectory:channel.
		chMap := sync.Map{}
		defer chMap.Range(func(key, value interface{}) bool {
			close(value.(chan []byte))
			return true
		})

		met := newTickScanMeter(5 * time.Second)
		defer met.stop()

		trajCount := 0
		defer func() {
			total := met.countMeter.Snapshot().Count()
			slog.Info("Unbatcher done", "trajectories", trajCount,
				"lines", humanize.Comma(total), "running", time.Since(met.started).Round(time.Second))
		}()
		for {
			select {
			case <-quit:
				slog.Info("Unbatcher received quit")
				return
			default:
			}
			msg := json.RawMessage{}
			err := dec.Decode(&msg)
			if err != nil {
				if errors.Is(err, io.EOF) {
					slog.Info("Unbatcher EOF")
					break
				}
				sendErr(errs, fmt.Errorf("scanner(%w)", err))
				return
			}

			t, ok := lineTime(msg)
			if !ok {
				sendErr(errs, fmt.Errorf("%w: %s in line: %s", ErrMissingAttribute, AttrUnixTime, string(msg)))
				continue
			}

			raw := gjson.GetBytes(msg, AttrTrajectory).String()
			if raw == "" {
				sendErr(errs, fmt.Errorf("%w: %s in line: %s", ErrMissingAttribute, AttrTrajectory, string(msg)))
				continue
			}

			met.mark(t, msg)

			tid := conceptual.SanitizeTrajectoryID(raw)
			if len(whitelist) > 0 {
				hit := false
				for _, w := range whitelist {
					if w == tid {
						hit = true
						break
					}
				}
				if !hit {
					continue
				}
			}

			// Staleness check.
			// Every once in closeAfter, check to see if there are trajectories we haven't
			// seen fixes from since last. For these expired trajectories, close their chans
			// to free up resources, and make way for more.

			n := met.nn.Load()

			if n%closeAfter == 0 {
				// Collect any stale trajectories.
				expired := []conceptual.TrajectoryID{}
				lastMap.Range(func(tid, last interface{}) bool {
					if n-last.(uint64) > closeAfter {
						expired = append(expired, tid.(conceptual.TrajectoryID))
					}
					return true
				})
				for _, tid := range expired {
					slog.Warn(fmt.Sprintf("Unbatcher trajectory not seen in %d lines", closeAfter), "trajectory", tid)
					v, loaded := chMap.LoadAndDelete(tid)
					if !loaded {
						panic("where is trajectory")
					}
					close(v.(chan []byte))

					// This is the single most important line of code in the whole program.
					v = nil
					lastMap.Delete(tid)
					met.dropTrajectory(string(tid))
				}
			}

			// Store the last line index for this trajectory (freshen),
			// whether we already have a channel for it or not.
			lastMap.Store(tid, n)

			// Check the sent tally; if we've met the maxInt threshold, close the channel.
			if sentMap[tid] >= maxInt {
				slog.Warn(fmt.Sprintf("Unbatcher trajectory sent %d messages", maxInt), "trajectory", tid)
				v, loaded := chMap.LoadAndDelete(tid)
				if !loaded {
					panic("where is trajectory")
				}
				close(v.(chan []byte))

				v = nil
				delete(sentMap, tid)
				met.dropTrajectory(string(tid))
			}

			// Get or create a channel for this trajectory.
			v, loaded := chMap.LoadOrStore(tid, make(chan []byte, channelCap))
			if loaded {
				// If a channel exists, use it, and we're done here.
				select {
				case <-quit:
					slog.Info("Unbatcher received quit")
					return
				case v.(chan []byte) <- msg:
					sentMap[tid]++
				}
				continue
			}

			// Otherwise, a fresh trajectory.
			met.addTrajectory(string(tid))

			f := fix.Fix{}
			err = json.Unmarshal(msg, &f)
			if err != nil {
				sendErr(errs, fmt.Errorf("trajectory(%s) unmarshal error: %w", tid, err))
				return
			}

			slog.Info("Unbatcher fresh trajectory", "trajectory", tid, "fix", f.StringPretty())

			// Send the first fix.
			select {
			case <-quit:
				slog.Info("Unbatcher received quit")
				return
			case v.(chan []byte) <- msg:
				sentMap[tid]++
			}

			// Send the channel.
			// If trajChCh is buffered (workersN), this will block until a worker is available.
			// If trajChCh is unbuffered, this will block until a worker is available,
			// but it might stack lots of trajectories very high... if there are many.
			select {
			case <-quit:
				slog.Info("Unbatcher received quit")
				return
			case trajChCh <- TrajectoryCh{ID: tid, Ch: v.(chan []byte)}:
			}
			trajCount++
		}
	}()
	return trajChCh, errs
}

func sendErr(errs chan error, err error) {
	select {
	case errs <- err:
	default:
		log.Println("error channel full, dropping error", err)
	}
}
