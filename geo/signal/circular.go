package signal

import (
	"math"

	"github.com/paulmach/orb"
)

// MeanResultantLength calculates R for angles in degrees.
// R ranges from 0 (uniform directions) to 1 (all angles identical).
func MeanResultantLength(anglesDeg []float64) float64 {
	if len(anglesDeg) == 0 {
		return 0
	}
	var sumSin, sumCos float64
	for _, a := range anglesDeg {
		rad := a * math.Pi / 180
		sumSin += math.Sin(rad)
		sumCos += math.Cos(rad)
	}
	n := float64(len(anglesDeg))
	return math.Sqrt(sumSin*sumSin+sumCos*sumCos) / n
}

// CircularStdDevDeg is the circular standard deviation, degrees,
// of a set of angles in degrees: sqrt(-2 ln R).
func CircularStdDevDeg(anglesDeg []float64) float64 {
	r := MeanResultantLength(anglesDeg)
	if r <= 0 {
		// Degenerate; directions are as spread as they get.
		return 180
	}
	if r >= 1 {
		return 0
	}
	return math.Sqrt(-2*math.Log(r)) * 180 / math.Pi
}

// BearingVariance returns the circular standard deviation, in degrees,
// of the consecutive bearings along pts. Undefined below 3 points (returns 0).
func BearingVariance(pts []orb.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	bearings := make([]float64, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		if pts[i-1] == pts[i] {
			// A zero-length leg has no bearing.
			continue
		}
		bearings = append(bearings, Bearing(pts[i-1], pts[i]))
	}
	if len(bearings) < 2 {
		return 0
	}
	return CircularStdDevDeg(bearings)
}

// IsStraight reports whether the trajectory holds a near-constant
// bearing: variance under maxVarianceDeg across at least minPoints.
func IsStraight(pts []orb.Point, maxVarianceDeg float64, minPoints int) bool {
	if len(pts) < minPoints {
		return false
	}
	return BearingVariance(pts) < maxVarianceDeg
}
