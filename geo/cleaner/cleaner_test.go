package cleaner

import (
	"context"
	"testing"
	"time"

	"github.com/motionlog/motiond/types/fix"
	"github.com/paulmach/orb"
)

var t0 = time.Unix(1724500000, 0)

func testFix(t time.Time, lng, lat, speedKmh float64) fix.Fix {
	f := fix.NewFix(orb.Point{lng, lat})
	f.Properties["Trajectory"] = "test"
	f.Properties["UnixTime"] = t.Unix()
	f.Properties["Speed"] = speedKmh
	return *f
}

func collect(ch <-chan fix.Fix) []fix.Fix {
	var out []fix.Fix
	for f := range ch {
		out = append(out, f)
	}
	return out
}

func feed(fixes []fix.Fix) chan fix.Fix {
	in := make(chan fix.Fix)
	go func() {
		defer close(in)
		for _, f := range fixes {
			in <- f
		}
	}()
	return in
}

func TestTeleportationFilterDropsJump(t *testing.T) {
	var fixes []fix.Fix
	for i := 0; i < 10; i++ {
		lat := 46.95 + float64(i)*0.001 // ~111m legs at 30s, ~13 km/h
		if i == 5 {
			lat += 0.05 // ~5.5km sideways for one fix
		}
		fixes = append(fixes, testFix(t0.Add(time.Duration(i)*30*time.Second), 7.44, lat, 15))
	}

	got := collect(TeleportationFilter(context.Background(), feed(fixes)))
	if len(got) != 9 {
		t.Fatalf("got %d fixes, want 9", len(got))
	}
	for _, f := range got {
		if f.Point().Lat() > 46.97 {
			t.Errorf("teleport fix survived: %v", f.Point())
		}
	}
}

func TestTeleportationFilterKeepsSignalLoss(t *testing.T) {
	fixes := []fix.Fix{
		testFix(t0, 7.44, 46.95, 15),
		// A 10 minute hole then 5km away: signal loss, not teleport.
		testFix(t0.Add(10*time.Minute), 7.44, 46.995, 15),
	}
	got := collect(TeleportationFilter(context.Background(), feed(fixes)))
	if len(got) != 2 {
		t.Errorf("got %d fixes, want 2", len(got))
	}
}

func TestTeleportationFilterDropsOutOfOrder(t *testing.T) {
	fixes := []fix.Fix{
		testFix(t0.Add(time.Minute), 7.44, 46.95, 15),
		testFix(t0, 7.44, 46.951, 15),
		testFix(t0.Add(time.Minute), 7.44, 46.95, 15),
	}
	got := collect(TeleportationFilter(context.Background(), feed(fixes)))
	if len(got) != 1 {
		t.Errorf("got %d fixes, want 1", len(got))
	}
}

func TestFilters(t *testing.T) {
	ok := testFix(t0, 7.44, 46.95, 15)
	if !FilterValid(&ok) || !FilterSpeed(&ok) || !FilterAccuracy(&ok) {
		t.Error("valid fix rejected")
	}

	fast := testFix(t0, 7.44, 46.95, 2000)
	if FilterSpeed(&fast) {
		t.Error("supersonic fix accepted")
	}

	blurry := testFix(t0, 7.44, 46.95, 15)
	blurry.Properties["Accuracy"] = 500.0
	if FilterAccuracy(&blurry) {
		t.Error("inaccurate fix accepted")
	}

	empty := fix.Fix{}
	if FilterValid(&empty) {
		t.Error("empty fix accepted")
	}
}

func TestWangUrbanCanyonDropsShiftPoint(t *testing.T) {
	var fixes []fix.Fix
	for i := 0; i < 12; i++ {
		lng := 7.44
		if i == 5 {
			lng += 0.005 // ~380m sideways, beyond the 200m threshold
		}
		fixes = append(fixes, testFix(t0.Add(time.Duration(i)*5*time.Second), lng, 46.95+float64(i)*0.0002, 15))
	}

	w := &WangUrbanCanyonFilter{}
	got := collect(w.Filter(context.Background(), feed(fixes)))
	if w.Filtered != 1 {
		t.Errorf("Filtered = %d, want 1", w.Filtered)
	}
	if len(got) != len(fixes)-1 {
		t.Errorf("got %d fixes, want %d", len(got), len(fixes)-1)
	}
	for _, f := range got {
		if f.Point().Lon() > 7.441 {
			t.Errorf("shift point survived: %v", f.Point())
		}
	}
}
