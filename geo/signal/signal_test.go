package signal

import (
	"math"
	"testing"
	"time"

	"github.com/motionlog/motiond/params"
	"github.com/paulmach/orb"
)

func TestDistance(t *testing.T) {
	a := orb.Point{7.4474, 46.9480}
	b := orb.Point{7.4474, 46.9570}
	if d := Distance(a, a); d != 0 {
		t.Errorf("Distance(a,a)=%v", d)
	}
	dab, dba := Distance(a, b), Distance(b, a)
	if math.Abs(dab-dba) > 1e-9 {
		t.Errorf("asymmetric: %v vs %v", dab, dba)
	}
	// ~1km of latitude.
	if dab < 900 || dab > 1100 {
		t.Errorf("Distance=%v, want ~1000", dab)
	}
}

func TestBearingRange(t *testing.T) {
	a := orb.Point{7.0, 46.0}
	for _, b := range []orb.Point{
		{7.0, 47.0}, // north
		{8.0, 46.0}, // east
		{7.0, 45.0}, // south
		{6.0, 46.0}, // west
	} {
		deg := Bearing(a, b)
		if deg < 0 || deg >= 360 {
			t.Errorf("Bearing out of range: %v", deg)
		}
	}
	if north := Bearing(a, orb.Point{7.0, 47.0}); math.Abs(north) > 1 {
		t.Errorf("north bearing = %v", north)
	}
	if west := Bearing(a, orb.Point{6.0, 46.0}); math.Abs(west-270) > 2 {
		t.Errorf("west bearing = %v", west)
	}
}

// northLine returns n points marching due north, stepMeters apart.
func northLine(n int, stepMeters float64) []orb.Point {
	pts := make([]orb.Point, n)
	for i := range pts {
		pts[i] = orb.Point{7.44, 46.95 + float64(i)*stepMeters/111_000}
	}
	return pts
}

func TestBearingVariance(t *testing.T) {
	if v := BearingVariance(northLine(2, 100)); v != 0 {
		t.Errorf("under 3 points: %v, want 0", v)
	}
	straight := BearingVariance(northLine(10, 100))
	if straight > 1 {
		t.Errorf("straight line variance = %v", straight)
	}

	// Zigzag: alternate north and east legs.
	zig := make([]orb.Point, 10)
	lat, lng := 46.95, 7.44
	for i := range zig {
		zig[i] = orb.Point{lng, lat}
		if i%2 == 0 {
			lat += 0.001
		} else {
			lng += 0.001
		}
	}
	if v := BearingVariance(zig); v <= straight+10 {
		t.Errorf("zigzag variance %v not above straight %v", v, straight)
	}
}

func TestIsStraight(t *testing.T) {
	if IsStraight(northLine(4, 100), 10, 5) {
		t.Error("under min points counted straight")
	}
	if !IsStraight(northLine(8, 100), 10, 5) {
		t.Error("straight line not straight")
	}
}

func TestVariance(t *testing.T) {
	zero := Variance(nil)
	if zero.Mean != 0 || zero.CV != 0 {
		t.Errorf("empty: %+v", zero)
	}

	flat := Variance([]float64{100, 100, 100})
	if flat.CV != 0 || flat.Range != 0 {
		t.Errorf("flat: %+v", flat)
	}

	v := Variance([]float64{0, 50, 100})
	if v.Mean != 50 || v.Min != 0 || v.Max != 100 || v.Range != 100 {
		t.Errorf("stats: %+v", v)
	}
	if v.CV <= 0 {
		t.Errorf("CV=%v", v.CV)
	}

	stopped := Variance([]float64{0, 0, 0})
	if stopped.CV != 0 {
		t.Errorf("zero-mean CV=%v, want 0", stopped.CV)
	}
}

func samplesAt(interval time.Duration, n int) []Sample {
	t0 := time.Unix(1724500000, 0)
	out := make([]Sample, n)
	for i := range out {
		out[i] = Sample{
			Point: orb.Point{7.44, 46.95 + float64(i)*0.001},
			Time:  t0.Add(time.Duration(i) * interval),
		}
	}
	return out
}

func TestClassifySampling(t *testing.T) {
	policy := params.DefaultEnginePolicy.Sampling
	cases := []struct {
		interval time.Duration
		want     SamplingClass
	}{
		{2 * time.Second, SamplingActiveNavigation},
		{20 * time.Second, SamplingMixed},
		{60 * time.Second, SamplingBackground},
	}
	for _, c := range cases {
		if got := ClassifySampling(samplesAt(c.interval, 10), policy); got != c.want {
			t.Errorf("interval %v: got %v, want %v", c.interval, got, c.want)
		}
	}
	if got := ClassifySampling(samplesAt(time.Second, 1), policy); got != SamplingUnknown {
		t.Errorf("single sample: %v", got)
	}
}

func TestAnalyzeStopsTrainLike(t *testing.T) {
	policy := params.DefaultEnginePolicy.Stops
	t0 := time.Unix(1724500000, 0)
	var samples []Sample
	lat := 46.0
	cursor := t0
	// 10 km of cruising with a single 4-minute station dwell in the middle.
	addLeg := func(km float64, legDur time.Duration, steps int) {
		for i := 0; i < steps; i++ {
			samples = append(samples, Sample{
				Point: orb.Point{7.44, lat},
				Time:  cursor,
			})
			lat += (km / float64(steps)) / 111
			cursor = cursor.Add(legDur / time.Duration(steps))
		}
	}
	addLeg(5, 3*time.Minute, 30)
	// Dwell: same spot for 4 minutes.
	for i := 0; i < 8; i++ {
		samples = append(samples, Sample{Point: orb.Point{7.44, lat}, Time: cursor})
		cursor = cursor.Add(30 * time.Second)
	}
	addLeg(5, 3*time.Minute, 30)

	a := AnalyzeStops(samples, policy)
	if a.Stops != 1 {
		t.Fatalf("Stops=%d, want 1 (analysis: %+v)", a.Stops, a)
	}
	if a.StopsPerKm > policy.TrainLikeMaxPerKm {
		t.Errorf("StopsPerKm=%v", a.StopsPerKm)
	}
	if a.Pattern != PatternTrainLike {
		t.Errorf("Pattern=%v, want train_like", a.Pattern)
	}
}

func TestAnalyzeStopsWalking(t *testing.T) {
	policy := params.DefaultEnginePolicy.Stops
	t0 := time.Unix(1724500000, 0)
	var samples []Sample
	lat := 46.0
	cursor := t0
	// 1 km strolled with 7 long pauses.
	for stop := 0; stop < 7; stop++ {
		for i := 0; i < 4; i++ {
			samples = append(samples, Sample{Point: orb.Point{7.44, lat}, Time: cursor})
			lat += 0.00032 // ~36m legs
			cursor = cursor.Add(30 * time.Second)
		}
		for i := 0; i < 5; i++ {
			samples = append(samples, Sample{Point: orb.Point{7.44, lat}, Time: cursor})
			cursor = cursor.Add(30 * time.Second)
		}
	}
	a := AnalyzeStops(samples, policy)
	if a.Pattern != PatternWalking {
		t.Errorf("Pattern=%v (stops/km=%v, stops=%d)", a.Pattern, a.StopsPerKm, a.Stops)
	}
}

func TestSmoothness(t *testing.T) {
	policy := params.DefaultEnginePolicy.Smoothness

	smooth := Smoothness([]float64{100, 101, 102, 103, 102, 101}, policy)
	if smooth.Class != SmoothnessSmooth {
		t.Errorf("smooth: %+v", smooth)
	}

	erratic := Smoothness([]float64{20, 60, 10, 50, 0, 45}, policy)
	if erratic.Class != SmoothnessErratic {
		t.Errorf("erratic: %+v", erratic)
	}

	short := Smoothness([]float64{1, 2}, policy)
	if short.Class != SmoothnessNeutral {
		t.Errorf("short: %+v", short)
	}
}
