package journey

import (
	"testing"
	"time"

	"github.com/motionlog/motiond/params"
	"github.com/paulmach/orb"
)

var t0 = time.Unix(1724500000, 0)

// ride advances a journey north at speedKmh for dur, one observation
// per 30 seconds.
func ride(j *Journey, from time.Time, dur time.Duration, speedKmh float64) time.Time {
	policy := params.DefaultJourneyPolicy
	step := 30 * time.Second
	t := from
	for elapsed := time.Duration(0); elapsed < dur; elapsed += step {
		t = t.Add(step)
		// km traveled this step, converted to degrees of latitude.
		dLat := (speedKmh * step.Hours()) / 111
		j.Observe(orb.Point{7.44, j.LastPoint.Lat() + dLat}, t, speedKmh, policy)
	}
	return t
}

func TestJourneyAccumulates(t *testing.T) {
	j := Begin(KindTrain, t0, "Bern", orb.Point{7.44, 46.95})
	end := ride(j, t0, 10*time.Minute, 120)
	// 120 km/h for 10 minutes is 20 km.
	if j.TotalDistanceMeters < 18_000 || j.TotalDistanceMeters > 22_000 {
		t.Errorf("TotalDistanceMeters=%v", j.TotalDistanceMeters)
	}
	if j.AverageSpeedKmh < 100 || j.AverageSpeedKmh > 140 {
		t.Errorf("AverageSpeedKmh=%v", j.AverageSpeedKmh)
	}
	if !j.Confirmed(end, nil) {
		t.Error("20km journey unconfirmed")
	}
}

func TestUnrealisticSegmentFilter(t *testing.T) {
	j := Begin(KindTrain, t0, "", orb.Point{7.44, 46.95})
	end := ride(j, t0, 2*time.Minute, 100)
	if j.Confirmed(end, nil) {
		t.Errorf("short burst confirmed (dist=%v)", j.TotalDistanceMeters)
	}
}

func TestEndOnArrival(t *testing.T) {
	j := Begin(KindTrain, t0, "Bern", orb.Point{7.44, 46.95})
	end := ride(j, t0, 15*time.Minute, 120)
	// Rolling into a different station, slow.
	reason, over := j.EndCheck(end, 5, "Basel SBB", nil)
	if !over || reason != EndArrival {
		t.Fatalf("reason=%v over=%v", reason, over)
	}
	if j.EndPlace != "Basel SBB" {
		t.Errorf("EndPlace=%q", j.EndPlace)
	}
}

func TestNoEndAtStartStation(t *testing.T) {
	j := Begin(KindTrain, t0, "Bern", orb.Point{7.44, 46.95})
	if reason, over := j.EndCheck(t0.Add(time.Minute), 2, "Bern", nil); over {
		t.Errorf("ended at start station: %v", reason)
	}
}

func TestEndOnSlowdown(t *testing.T) {
	policy := params.DefaultJourneyPolicy
	j := Begin(KindTrain, t0, "Bern", orb.Point{7.44, 46.95})
	end := ride(j, t0, 10*time.Minute, 120)

	// A short dwell is tolerated.
	cursor := end
	for i := 0; i < 6; i++ { // 3 minutes at walking pace
		cursor = cursor.Add(30 * time.Second)
		j.Observe(orb.Point{7.44, j.LastPoint.Lat()}, cursor, 2, policy)
	}
	if reason, over := j.EndCheck(cursor, 2, "", policy); over {
		t.Fatalf("3min dwell ended journey: %v", reason)
	}

	// Past the tolerance it ends.
	for i := 0; i < 6; i++ {
		cursor = cursor.Add(30 * time.Second)
		j.Observe(orb.Point{7.44, j.LastPoint.Lat()}, cursor, 2, policy)
	}
	reason, over := j.EndCheck(cursor, 2, "", policy)
	if !over || reason != EndSlowdown {
		t.Errorf("reason=%v over=%v after 6min dwell", reason, over)
	}
}

func TestEndOnTimeout(t *testing.T) {
	j := Begin(KindTrain, t0, "Bern", orb.Point{7.44, 46.95})
	late := t0.Add(params.DefaultJourneyPolicy.TrainHardCap + time.Minute)
	reason, over := j.EndCheck(late, 100, "", nil)
	if !over || reason != EndTimeout {
		t.Errorf("reason=%v over=%v", reason, over)
	}
}

func TestContinues(t *testing.T) {
	j := Begin(KindTrain, t0, "Bern", orb.Point{7.44, 46.95})
	if !j.Continues(80, nil) {
		t.Error("train at 80 km/h does not continue")
	}
	if j.Continues(10, nil) {
		t.Error("train at 10 km/h continues")
	}

	a := Begin(KindAirplane, t0, "ZRH", orb.Point{8.56, 47.45})
	if !a.Continues(750, nil) {
		t.Error("airplane at 750 does not continue")
	}
	if a.Continues(90, nil) {
		t.Error("airplane at 90 continues")
	}
}
