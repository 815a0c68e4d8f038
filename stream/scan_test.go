package stream

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/types/fix"
	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

func ndjsonFixes(t *testing.T, n int, ids ...string) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	base := time.Unix(1724500000, 0)
	for i := 0; i < n; i++ {
		f := fix.NewFix(orb.Point{7.44 + float64(i)/1000, 46.95})
		f.Properties["Trajectory"] = ids[i%len(ids)]
		f.Properties["UnixTime"] = base.Add(time.Duration(i) * time.Second).Unix()
		f.Properties["Speed"] = 10.0
		if err := enc.Encode(f); err != nil {
			t.Fatal(err)
		}
	}
	return buf
}

func drainScan(t *testing.T, trajChs chan TrajectoryCh, errs chan error) map[conceptual.TrajectoryID]int {
	t.Helper()
	counts := map[conceptual.TrajectoryID]int{}
	mu := sync.Mutex{}
	wg := sync.WaitGroup{}
	for tc := range trajChs {
		wg.Add(1)
		go func(tc TrajectoryCh) {
			defer wg.Done()
			for line := range tc.Ch {
				if got := gjson.GetBytes(line, AttrTrajectory).String(); got != tc.ID.String() {
					t.Errorf("line for %q on channel %q", got, tc.ID)
				}
				mu.Lock()
				counts[tc.ID]++
				mu.Unlock()
			}
		}(tc)
	}
	for err := range errs {
		t.Error(err)
	}
	wg.Wait()
	return counts
}

func TestScanLinesUnbatchedTrajectories(t *testing.T) {
	buf := ndjsonFixes(t, 6, "alpha", "beta")
	quit := make(chan struct{})
	trajChs, errs := ScanLinesUnbatchedTrajectories(buf, quit, 2, 16, 100, 100, nil)

	counts := drainScan(t, trajChs, errs)
	if counts["alpha"] != 3 || counts["beta"] != 3 {
		t.Errorf("counts = %v", counts)
	}
}

func TestScanWhitelist(t *testing.T) {
	buf := ndjsonFixes(t, 6, "alpha", "beta")
	quit := make(chan struct{})
	trajChs, errs := ScanLinesUnbatchedTrajectories(buf, quit, 2, 16, 100, 100,
		[]conceptual.TrajectoryID{"beta"})

	counts := drainScan(t, trajChs, errs)
	if len(counts) != 1 || counts["beta"] != 3 {
		t.Errorf("counts = %v", counts)
	}
}

func TestScanMaxSentClosesChannel(t *testing.T) {
	buf := ndjsonFixes(t, 8, "alpha")
	quit := make(chan struct{})
	// maxInt 3: the channel recycles, so the scanner hands out
	// more than one channel for the same trajectory.
	trajChs, errs := ScanLinesUnbatchedTrajectories(buf, quit, 4, 16, 100, 3, nil)

	total := 0
	channels := 0
	wg := sync.WaitGroup{}
	mu := sync.Mutex{}
	for tc := range trajChs {
		channels++
		wg.Add(1)
		go func(tc TrajectoryCh) {
			defer wg.Done()
			n := 0
			for range tc.Ch {
				n++
			}
			mu.Lock()
			total += n
			mu.Unlock()
		}(tc)
	}
	for err := range errs {
		t.Error(err)
	}
	wg.Wait()
	if total != 8 {
		t.Errorf("total = %d, want 8", total)
	}
	if channels < 2 {
		t.Errorf("channels = %d, want at least 2", channels)
	}
}

func TestSanitizeTrajectoryID(t *testing.T) {
	cases := []struct {
		in   string
		want conceptual.TrajectoryID
	}{
		{"alpha", "alpha"},
		{"  alpha  ", "alpha"},
		{"rye/8", "rye_8"},
		{"café crème", "caf__cr_me"},
		{"device-01.A", "device-01.A"},
	}
	for _, c := range cases {
		if got := conceptual.SanitizeTrajectoryID(c.in); got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
