// Package signal holds the pure measurement functions the detection
// rules are built on: distances, bearings, circular statistics, speed
// variance, sampling-cadence inference, and stop-pattern analysis.
// Nothing in here keeps state.
package signal

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Sample is one timed observation, decoupled from the wire Fix type
// so the measurements stay pure and cheaply testable.
type Sample struct {
	Point    orb.Point
	Time     time.Time
	SpeedKmh float64
}

// Distance returns the great-circle distance between two points, meters.
func Distance(a, b orb.Point) float64 {
	return geo.Distance(a, b)
}

// PathDistance returns the summed leg distances along pts, meters.
func PathDistance(pts []orb.Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += geo.Distance(pts[i-1], pts[i])
	}
	return total
}

// Bearing returns the initial compass bearing from a to b in degrees [0,360).
func Bearing(a, b orb.Point) float64 {
	deg := geo.Bearing(a, b)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Points projects the coordinates out of a sample window.
func Points(samples []Sample) []orb.Point {
	pts := make([]orb.Point, len(samples))
	for i, s := range samples {
		pts[i] = s.Point
	}
	return pts
}

// Speeds projects the speeds out of a sample window.
func Speeds(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.SpeedKmh
	}
	return out
}
