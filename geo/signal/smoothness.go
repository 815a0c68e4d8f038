package signal

import (
	"math"

	"github.com/motionlog/motiond/params"
)

// SmoothnessClass reads acceleration texture: trains change speed
// gradually, cars in traffic don't.
type SmoothnessClass int

const (
	SmoothnessNeutral SmoothnessClass = iota
	SmoothnessSmooth
	SmoothnessErratic
)

func (c SmoothnessClass) String() string {
	switch c {
	case SmoothnessSmooth:
		return "smooth"
	case SmoothnessErratic:
		return "erratic"
	}
	return "neutral"
}

// SmoothnessResult reports the consecutive-sample speed deltas, km/h.
type SmoothnessResult struct {
	MeanDeltaKmh float64
	MaxDeltaKmh  float64
	Class        SmoothnessClass
}

// Smoothness measures the mean and max absolute speed change between
// consecutive samples. Needs at least 3 speeds to classify.
func Smoothness(speeds []float64, policy params.SmoothnessPolicy) SmoothnessResult {
	out := SmoothnessResult{Class: SmoothnessNeutral}
	if len(speeds) < 3 {
		return out
	}
	var sum, max float64
	n := 0
	for i := 1; i < len(speeds); i++ {
		d := math.Abs(speeds[i] - speeds[i-1])
		sum += d
		if d > max {
			max = d
		}
		n++
	}
	out.MeanDeltaKmh = sum / float64(n)
	out.MaxDeltaKmh = max

	switch {
	case out.MeanDeltaKmh < policy.SmoothMeanMaxKmh && out.MaxDeltaKmh < policy.SmoothPeakMaxKmh:
		out.Class = SmoothnessSmooth
	case out.MeanDeltaKmh > policy.ErraticMeanMinKmh || out.MaxDeltaKmh > policy.ErraticPeakMinKmh:
		out.Class = SmoothnessErratic
	}
	return out
}
