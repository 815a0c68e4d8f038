package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/motionlog/motiond/state"
	"github.com/motionlog/motiond/types/fix"
	"github.com/motionlog/motiond/types/mode"
	"github.com/paulmach/orb"
)

// carRideNDJSON builds a northward drive at roughly carish speeds,
// 10 seconds between fixes, point spacing consistent with the speeds.
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
		// Advance the latitude by the distance the speed implies.
		lat += (speed * (10.0 / 3600.0)) / 111.0
	}
	return buf
}

func TestPopulateReaderEndToEnd(t *testing.T) {
	root := t.TempDir()
	tj, err := NewTrajectory("rye", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	tj.DatadirRoot = root

	if err := tj.PopulateReader(context.Background(), true, carRideNDJSON(t, "rye", 12)); err != nil {
		t.Fatal(err)
	}

	// The state lock is released; reopen and check what landed.
	s, err := state.NewTrajectoryState("rye", root, true)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	last, err := s.ReadLastFix()
	if err != nil {
		t.Fatal(err)
	}
	if got := mode.FromAny(last.Properties["Mode"]); got != mode.Car {
		t.Errorf("last mode = %v (%v)", got, last.Properties["ModeReason"])
	}
	if _, ok := last.Properties["ModeConfidence"]; !ok {
		t.Error("missing ModeConfidence")
	}

	r, err := s.Flat.NamedGZReader("fixes.geojson.gz")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	lines := 0
	sc := bufio.NewScanner(r.Reader())
	for sc.Scan() {
		lines++
	}
	if lines != 12 {
		t.Errorf("stored lines = %d, want 12", lines)
	}

	// The restored arena carries the mode history forward.
	arena, err := s.ReadArena(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if arena == nil {
		t.Fatal("nil arena")
	}
}

func TestPopulateReaderSkipsJunkLines(t *testing.T) {
	root := t.TempDir()
	tj, err := NewTrajectory("rye", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	tj.DatadirRoot = root

	// Splice garbage and blank lines into the middle of a good ride.
	// Bad lines get dropped; the reader must still terminate and the
	// good fixes must all land.
	ride := carRideNDJSON(t, "rye", 6)
	body := &bytes.Buffer{}
	sc := bufio.NewScanner(bytes.NewReader(ride.Bytes()))
	for i := 0; sc.Scan(); i++ {
		body.Write(sc.Bytes())
		body.WriteByte('\n')
		if i == 2 {
			body.WriteString("this is not json\n")
			body.WriteString("\n")
			body.WriteString("{\"truncated\": \n")
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- tj.PopulateReader(context.Background(), true, body)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("PopulateReader did not return on junk input")
	}

	s, err := state.NewTrajectoryState("rye", root, true)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	r, err := s.Flat.NamedGZReader("fixes.geojson.gz")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	lines := 0
	stored := bufio.NewScanner(r.Reader())
	for stored.Scan() {
		lines++
	}
	if lines != 6 {
		t.Errorf("stored lines = %d, want 6", lines)
	}
}

func TestPopulateRejectsMismatchedTrajectory(t *testing.T) {
	root := t.TempDir()
	tj, err := NewTrajectory("rye", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	tj.DatadirRoot = root

	// All fixes belong to somebody else; nothing should land.
	if err := tj.PopulateReader(context.Background(), false, carRideNDJSON(t, "notrye", 4)); err != nil {
		t.Fatal(err)
	}

	s, err := state.NewTrajectoryState("rye", root, true)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.ReadLastFix(); err == nil {
		t.Error("expected no last fix for mismatched populate")
	}
}

func TestPopulateDedupes(t *testing.T) {
	root := t.TempDir()
	tj, err := NewTrajectory("rye", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	tj.DatadirRoot = root

	ride := carRideNDJSON(t, "rye", 6)
	doubled := bytes.NewBuffer(append(append([]byte{}, ride.Bytes()...), ride.Bytes()...))

	if err := tj.PopulateReader(context.Background(), true, doubled); err != nil {
		t.Fatal(err)
	}

	s, err := state.NewTrajectoryState("rye", root, true)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	r, err := s.Flat.NamedGZReader("fixes.geojson.gz")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	lines := 0
	sc := bufio.NewScanner(r.Reader())
	for sc.Scan() {
		lines++
	}
	if lines != 6 {
		t.Errorf("stored lines = %d, want 6", lines)
	}
}
