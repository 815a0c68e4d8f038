package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/motionlog/motiond/geo/detect"
	"github.com/motionlog/motiond/geo/signal"
	"github.com/motionlog/motiond/types/fix"
	"github.com/motionlog/motiond/types/mode"
	"github.com/paulmach/orb"
	"go.etcd.io/bbolt"
)

func TestLastFixRoundtrip(t *testing.T) {
	s, err := NewTrajectoryState("rye", t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	f := fix.NewFix(orb.Point{7.44, 46.95})
	f.Properties["Trajectory"] = "rye"
	f.Properties["UnixTime"] = int64(1724500000)
	f.Properties["Speed"] = 88.0
	f.Properties["Mode"] = mode.Train.String()

	if err := s.StoreLastFix(f); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadLastFix()
	if err != nil {
		t.Fatal(err)
	}
	if got.TrajectoryID() != "rye" {
		t.Errorf("trajectory = %s", got.TrajectoryID())
	}
	if got.SpeedKmh() != 88.0 {
		t.Errorf("speed = %v", got.SpeedKmh())
	}
	if mode.FromAny(got.Properties["Mode"]) != mode.Train {
		t.Errorf("mode = %v", got.Properties["Mode"])
	}
}

func TestReadLastFixMissing(t *testing.T) {
	s, err := NewTrajectoryState("rye", t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.ReadLastFix(); err == nil {
		t.Error("expected error for missing last fix")
	}
}

func TestArenaRoundtrip(t *testing.T) {
	root := t.TempDir()
	s, err := NewTrajectoryState("rye", root, false)
	if err != nil {
		t.Fatal(err)
	}

	arena, err := s.ReadArena(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if arena == nil {
		t.Fatal("fresh arena is nil")
	}

	// Push some history through and persist it.
	base := time.Unix(1724500000, 0)
	for i := 0; i < 5; i++ {
		smp := signal.Sample{
			Point:    orb.Point{7.44, 46.95 + float64(i)/1000},
			Time:     base.Add(time.Duration(i) * 10 * time.Second),
			SpeedKmh: 90,
		}
		arena.Apply(smp, detect.GeoTags{}, detect.Result{
			Mode:       mode.Train,
			Confidence: 0.85,
			Reason:     mode.ReasonJourneyContinue,
		})
	}
	if err := s.StoreArena(arena); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen and restore.
	s2, err := NewTrajectoryState("rye", root, false)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	restored, err := s2.ReadArena(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := restored.Snapshot(signal.Sample{
		Point:    orb.Point{7.44, 46.955},
		Time:     base.Add(50 * time.Second),
		SpeedKmh: 90,
	}, detect.GeoTags{})
	if len(ctx.Modes) != 5 {
		t.Errorf("restored modes = %d, want 5", len(ctx.Modes))
	}
	last, ok := ctx.LastMode()
	if !ok || last.Mode != mode.Train {
		t.Errorf("restored last mode = %+v ok=%v", last, ok)
	}
}

func TestBBoltOpenBlocksSecondWriter(t *testing.T) {
	target := filepath.Join(t.TempDir(), "bbolt-test.db")
	db, err := bbolt.Open(target, 0600, nil)
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		t.Log("Sleeping 1...")
		time.Sleep(time.Second)
		db.Close()
	}()
	db2, err := bbolt.Open(target, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err == nil {
		t.Log("next db conn! open 2x is blocking, not erroring")
	} else {
		t.Errorf("next db conn: %v", err)
	}
	db2.Close()
	os.Remove(target)
}
