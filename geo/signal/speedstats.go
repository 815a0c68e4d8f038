package signal

import (
	"github.com/montanaflynn/stats"
)

// SpeedStats summarizes a speed window, km/h.
type SpeedStats struct {
	Mean   float64
	StdDev float64
	// CV is the coefficient of variation, stddev/mean; 0 when mean is 0.
	CV    float64
	Min   float64
	Max   float64
	Range float64
}

// Variance computes SpeedStats over a window of speeds.
// An empty window yields the zero value.
func Variance(speeds []float64) SpeedStats {
	if len(speeds) == 0 {
		return SpeedStats{}
	}
	data := stats.Float64Data(speeds)
	mean, _ := data.Mean()
	sd, _ := data.StandardDeviation()
	min, _ := data.Min()
	max, _ := data.Max()
	out := SpeedStats{
		Mean:   mean,
		StdDev: sd,
		Min:    min,
		Max:    max,
		Range:  max - min,
	}
	if mean > 0 {
		out.CV = sd / mean
	}
	return out
}
