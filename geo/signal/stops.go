package signal

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/motionlog/motiond/params"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// StopPattern classifies how a mover stops.
// Trains stop rarely and dwell long (stations); urban cars stop
// constantly and briefly (lights); walkers stop all the time.
type StopPattern int

const (
	PatternUnknown StopPattern = iota
	PatternTrainLike
	PatternUrbanCar
	PatternHighwayCar
	PatternWalking
)

func (p StopPattern) String() string {
	switch p {
	case PatternTrainLike:
		return "train_like"
	case PatternUrbanCar:
		return "urban_car"
	case PatternHighwayCar:
		return "highway_car"
	case PatternWalking:
		return "walking"
	}
	return "unknown"
}

// StopAnalysis summarizes the stop/move segmentation of a window.
type StopAnalysis struct {
	Stops       int
	PathMeters  float64
	StopsPerKm  float64
	MeanDwell   time.Duration
	DwellStdDev time.Duration
	Pattern     StopPattern
	Confidence  float64
}

// AnalyzeStops segments samples into moving and stopped runs.
// A stopped run accretes while points stay within ClusterDistance of
// the run centroid; it counts as a stop once its dwell reaches MinDwell.
func AnalyzeStops(samples []Sample, policy params.StopPolicy) StopAnalysis {
	out := StopAnalysis{Pattern: PatternUnknown}
	if len(samples) < 2 {
		return out
	}

	out.PathMeters = PathDistance(Points(samples))

	var dwells []float64 // seconds
	var run []orb.Point
	var runStart time.Time
	var runEnd time.Time

	flush := func() {
		if len(run) >= 2 {
			if dwell := runEnd.Sub(runStart); dwell >= policy.MinDwell {
				dwells = append(dwells, dwell.Seconds())
			}
		}
		run = run[:0]
	}

	for _, s := range samples {
		if len(run) == 0 {
			run = append(run, s.Point)
			runStart, runEnd = s.Time, s.Time
			continue
		}
		centroid, _ := planar.CentroidArea(orb.MultiPoint(run))
		if Distance(centroid, s.Point) <= policy.ClusterDistance {
			run = append(run, s.Point)
			runEnd = s.Time
			continue
		}
		flush()
		run = append(run, s.Point)
		runStart, runEnd = s.Time, s.Time
	}
	flush()

	out.Stops = len(dwells)
	if out.PathMeters > 0 {
		out.StopsPerKm = float64(out.Stops) / (out.PathMeters / 1000)
	}
	if len(dwells) > 0 {
		data := stats.Float64Data(dwells)
		mean, _ := data.Mean()
		sd, _ := data.StandardDeviation()
		out.MeanDwell = time.Duration(mean * float64(time.Second))
		out.DwellStdDev = time.Duration(sd * float64(time.Second))
	}

	out.Pattern, out.Confidence = classifyStops(out, policy)
	return out
}

func classifyStops(a StopAnalysis, policy params.StopPolicy) (StopPattern, float64) {
	// Too little path to mean anything.
	if a.PathMeters < 200 {
		return PatternUnknown, 0
	}
	switch {
	case a.StopsPerKm > policy.WalkingMinPerKm:
		return PatternWalking, 0.7
	case a.StopsPerKm > policy.UrbanCarMinPerKm:
		return PatternUrbanCar, 0.65
	case a.StopsPerKm < policy.TrainLikeMaxPerKm && a.Stops > 0 &&
		a.MeanDwell >= policy.TrainMinDwellLong:
		return PatternTrainLike, 0.7
	case a.StopsPerKm < policy.HighwayMaxPerKm &&
		a.MeanDwell < policy.HighwayMaxDwell:
		return PatternHighwayCar, 0.6
	}
	return PatternUnknown, 0
}
