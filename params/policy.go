package params

import "time"

// EnginePolicy collects every tunable threshold of the detection engine.
// The values are policy knobs, not protocol contracts; they are tuned
// and tested independently of control flow.
// Where upstream sources disagreed on a threshold (speed bracket
// boundaries, station rule priority), the canonical choice is recorded
// here and in DESIGN.md.
type EnginePolicy struct {
	// AcceptanceThreshold is the exclusive confidence floor for a rule
	// result to be taken as the engine's output.
	AcceptanceThreshold float64

	// HistoryWindow bounds the point/speed/mode histories (FIFO).
	HistoryWindow int

	// RollingSpeedWindow is the number of recent speeds smoothed into
	// the context's rolling-average speed.
	RollingSpeedWindow int

	SpeedBrackets SpeedBrackets

	// AmbiguousBandLowKmh..HighKmh is the speed band where single
	// signals are weak and the multi-signal combiner runs.
	AmbiguousBandLowKmh  float64
	AmbiguousBandHighKmh float64

	Sampling   SamplingPolicy
	Straight   StraightnessPolicy
	Stops      StopPolicy
	Smoothness SmoothnessPolicy
	Combiner   CombinerPolicy
	Hysteresis HysteresisPolicy
	Geographic GeographicPolicy
}

// SpeedBrackets are the plain fallback speed ranges, km/h.
// The car/train boundary is canonically 110 km/h.
type SpeedBrackets struct {
	StationaryMax float64
	WalkingMax    float64
	CyclingMax    float64
	CarMax        float64
	TrainMax      float64
}

type SamplingPolicy struct {
	// Mean inter-sample interval below ActiveNavigation means the
	// device is navigating (car-biased); above BackgroundTracking
	// means opportunistic background fixes (mode-agnostic).
	ActiveNavigation   time.Duration
	BackgroundTracking time.Duration
}

type StraightnessPolicy struct {
	// MaxBearingVarianceDeg is the circular stddev below which a
	// trajectory counts as straight.
	MaxBearingVarianceDeg float64
	MinPoints             int
}

type StopPolicy struct {
	// ClusterDistance is the max distance from the run centroid for a
	// point to join a stopped run.
	ClusterDistance float64
	// MinDwell is the minimum stopped-run duration to count as a stop.
	MinDwell time.Duration

	// Stops-per-km classification boundaries.
	TrainLikeMaxPerKm float64
	HighwayMaxPerKm   float64
	UrbanCarMinPerKm  float64
	WalkingMinPerKm   float64
	TrainMinDwellLong time.Duration
	HighwayMaxDwell   time.Duration
}

type SmoothnessPolicy struct {
	// Mean/max absolute speed delta between consecutive samples, km/h.
	SmoothMeanMaxKmh  float64
	SmoothPeakMaxKmh  float64
	ErraticMeanMinKmh float64
	ErraticPeakMinKmh float64
}

type CombinerPolicy struct {
	// MinSignalConfidence drops weak signals before voting.
	MinSignalConfidence float64
	// MinAgreeing is the quorum of independent signals.
	MinAgreeing int
	// BonusPerSignal accrues per agreeing signal, capped at BonusCap.
	BonusPerSignal float64
	BonusCap       float64
	// ResultCap bounds the combined confidence.
	ResultCap float64
	// MinCombined discards combined results below this floor.
	MinCombined float64
}

type HysteresisPolicy struct {
	// MovementGate releases the mode lock once the last MovementGatePoints
	// have covered at least MovementGateMeters.
	MovementGateMeters float64
	MovementGatePoints int
	// MinModeDuration suppresses a switch away from a mode younger than this.
	MinModeDuration time.Duration
}

type GeographicPolicy struct {
	// HighwayMinSpeedKmh gates the highway hard override.
	HighwayMinSpeedKmh float64
	// StationBoardingMaxKmh is the speed below which a station tag
	// reads as boarding/alighting.
	StationBoardingMaxKmh float64
	// StationTrainMinKmh confirms train when passing a station fast.
	StationTrainMinKmh float64
	// AirportAirborneMinKmh gates the airport airplane override.
	AirportAirborneMinKmh float64
}

var DefaultEnginePolicy = &EnginePolicy{
	AcceptanceThreshold: 0.5,
	HistoryWindow:       20,
	RollingSpeedWindow:  5,

	SpeedBrackets: SpeedBrackets{
		StationaryMax: 2,
		WalkingMax:    9,
		CyclingMax:    30,
		CarMax:        110,
		TrainMax:      300,
	},

	AmbiguousBandLowKmh:  40,
	AmbiguousBandHighKmh: 130,

	Sampling: SamplingPolicy{
		ActiveNavigation:   10 * time.Second,
		BackgroundTracking: 30 * time.Second,
	},
	Straight: StraightnessPolicy{
		MaxBearingVarianceDeg: 10,
		MinPoints:             5,
	},
	Stops: StopPolicy{
		ClusterDistance:   50,
		MinDwell:          2 * time.Minute,
		TrainLikeMaxPerKm: 0.5,
		HighwayMaxPerKm:   1,
		UrbanCarMinPerKm:  3,
		WalkingMinPerKm:   5,
		TrainMinDwellLong: 3 * time.Minute,
		HighwayMaxDwell:   3 * time.Minute,
	},
	Smoothness: SmoothnessPolicy{
		SmoothMeanMaxKmh:  4,
		SmoothPeakMaxKmh:  12,
		ErraticMeanMinKmh: 8,
		ErraticPeakMinKmh: 25,
	},
	Combiner: CombinerPolicy{
		MinSignalConfidence: 0.55,
		MinAgreeing:         2,
		BonusPerSignal:      0.05,
		BonusCap:            0.15,
		ResultCap:           0.95,
		MinCombined:         0.75,
	},
	Hysteresis: HysteresisPolicy{
		MovementGateMeters: 200,
		MovementGatePoints: 3,
		MinModeDuration:    90 * time.Second,
	},
	Geographic: GeographicPolicy{
		HighwayMinSpeedKmh:    30,
		StationBoardingMaxKmh: 15,
		StationTrainMinKmh:    60,
		AirportAirborneMinKmh: 200,
	},
}
