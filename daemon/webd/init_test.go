package webd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/fix"
	"github.com/paulmach/orb"
)

// newTestWebDaemon creates a WebDaemon rooted in a temp dir.
// Handlers are exercised directly; NewRouter registers on the default
// serve mux and cannot be called twice in one test process.
func newTestWebDaemon(t *testing.T) *WebDaemon {
	t.Helper()
	config := params.DefaultWebDaemonConfig()
	config.DataDir = t.TempDir()
	config.Address = "127.0.0.1:0"
	return NewWebDaemon(config)
}

// carRideNDJSON builds a northward drive at carish speeds, 10 seconds
// between fixes, point spacing consistent with the speeds.
func carRideNDJSON(t *testing.T, id string, n int) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	base := time.Unix(1724500000, 0)
	lat := 46.95
	for i := 0; i < n; i++ {
		speed := 50.0
		if i%2 == 1 {
			speed = 55.0
		}
		f := fix.NewFix(orb.Point{7.44, lat})
		f.Properties["Trajectory"] = id
		f.Properties["UnixTime"] = base.Add(time.Duration(i) * 10 * time.Second).Unix()
		f.Properties["Speed"] = speed
		if err := enc.Encode(f); err != nil {
			t.Fatal(err)
		}
		lat += (speed * (10.0 / 3600.0)) / 111.0
	}
	return buf
}
