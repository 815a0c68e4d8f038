package detect

import (
	"log/slog"
	"math"
	"time"

	"github.com/motionlog/motiond/common"
	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/geo/journey"
	"github.com/motionlog/motiond/geo/signal"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/mode"
	rkalman "github.com/regnull/kalman"
)

// filterResetGap is the fix gap past which the Kalman filter restarts
// rather than interpolating across the hole.
const filterResetGap = 5 * time.Minute

func newGeoFilter(latitude, speedMs, acceleration float64) (*rkalman.GeoFilter, error) {
	return rkalman.NewGeoFilter(&rkalman.GeoProcessNoise{
		// Measurements happen near the same place, so the earth's
		// curvature is disregarded.
		BaseLat: latitude,
		// How much the mover moves, meters per second.
		DistancePerSecond: speedMs,
		// How much the speed changes, meters per second squared.
		SpeedPerSecond: acceleration,
	})
}

// Trajectory is the mutable per-mover arena: the bounded point and mode
// histories, the active journey, and the speed-smoothing filter.
// It is confined to a single worker per mover; the engine never writes
// it during rule evaluation, only through Apply.
type Trajectory struct {
	ID conceptual.TrajectoryID

	Policy        *params.EnginePolicy
	JourneyPolicy *params.JourneyPolicy

	window *common.RingBuffer[signal.Sample]
	modes  *common.RingBuffer[ModeEntry]

	journey  *journey.Journey
	filter   *rkalman.GeoFilter
	lastTime time.Time
}

func NewTrajectory(id conceptual.TrajectoryID, policy *params.EnginePolicy, jp *params.JourneyPolicy) *Trajectory {
	if policy == nil {
		policy = params.DefaultEnginePolicy
	}
	if jp == nil {
		jp = params.DefaultJourneyPolicy
	}
	return &Trajectory{
		ID:            id,
		Policy:        policy,
		JourneyPolicy: jp,
		window:        common.NewRingBuffer[signal.Sample](policy.HistoryWindow),
		modes:         common.NewRingBuffer[ModeEntry](policy.HistoryWindow),
	}
}

// ActiveJourney exposes the live journey, nil when none.
func (t *Trajectory) ActiveJourney() *journey.Journey {
	return t.journey
}

// Snapshot freezes the trajectory into an evaluation context for one
// incoming sample. The sample is not yet part of the histories; it
// becomes part of them in Apply.
func (t *Trajectory) Snapshot(current signal.Sample, tags GeoTags) *Context {
	hist := t.window.Get()
	window := append(hist, current)

	ctx := &Context{
		Policy:          t.Policy,
		JourneyPolicy:   t.JourneyPolicy,
		Current:         current,
		Window:          window,
		Modes:           t.modes.Get(),
		RollingSpeedKmh: t.rollingSpeed(current),
		Sampling:        signal.ClassifySampling(window, t.Policy.Sampling),
		Tags:            tags,
	}
	if len(hist) > 0 {
		ctx.Previous = hist[len(hist)-1]
		ctx.HasPrevious = true
		if span := current.Time.Sub(ctx.Previous.Time); span > 0 {
			ctx.ElapsedSeconds = span.Seconds()
		}
	}
	if t.journey != nil {
		cp := *t.journey
		ctx.Journey = &cp
	}
	return ctx
}

// rollingSpeed blends the windowed mean with the Kalman estimate,
// taking the lower of the two. GPS speed spikes high far more often
// than low, so the minimum is the conservative read.
func (t *Trajectory) rollingSpeed(current signal.Sample) float64 {
	speeds := make([]float64, 0, t.Policy.RollingSpeedWindow)
	for _, s := range t.window.Tail(t.Policy.RollingSpeedWindow - 1) {
		if s.SpeedKmh >= 0 {
			speeds = append(speeds, s.SpeedKmh)
		}
	}
	if current.SpeedKmh >= 0 {
		speeds = append(speeds, current.SpeedKmh)
	}

	rolling := -1.0
	if len(speeds) > 0 {
		sum := 0.0
		for _, s := range speeds {
			sum += s
		}
		rolling = sum / float64(len(speeds))
	}
	if t.filter != nil {
		if est := t.filter.Estimate(); est != nil {
			kmh := est.Speed * common.MsToKmh
			if rolling < 0 || kmh < rolling {
				rolling = kmh
			}
		}
	}
	return rolling
}

// Apply commits the engine's decision for a sample: advances the
// histories and the filter, and runs the journey transitions keyed on
// the result's reason code.
func (t *Trajectory) Apply(current signal.Sample, tags GeoTags, res Result) {
	t.observeFilter(current)
	t.window.Add(current)
	t.modes.Add(ModeEntry{
		Mode:       res.Mode,
		Confidence: res.Confidence,
		Reason:     res.Reason,
		Time:       current.Time,
		Point:      current.Point,
		SpeedKmh:   current.SpeedKmh,
	})
	t.transitionJourney(current, tags, res)
	t.lastTime = current.Time
}

func (t *Trajectory) observeFilter(current signal.Sample) {
	span := current.Time.Sub(t.lastTime)
	if t.filter == nil || span > filterResetGap || span <= 0 {
		t.resetFilter(current)
		return
	}
	err := t.filter.Observe(span.Seconds(), &rkalman.GeoObserved{
		Lat:                current.Point.Lat(),
		Lng:                current.Point.Lon(),
		Speed:              math.Max(0, current.SpeedKmh*common.KmhToMs),
		SpeedAccuracy:      0.2,
		HorizontalAccuracy: 10,
		VerticalAccuracy:   2,
	})
	if err != nil {
		slog.Error("Kalman.Observe failed", "error", err, "trajectory", t.ID)
	}
}

func (t *Trajectory) resetFilter(current signal.Sample) {
	f, err := newGeoFilter(current.Point.Lat(), math.Max(0, current.SpeedKmh*common.KmhToMs), 0.1)
	if err != nil {
		slog.Error("Kalman filter init failed", "error", err, "trajectory", t.ID)
		t.filter = nil
		return
	}
	t.filter = f
}

func journeyMode(k journey.Kind) mode.Mode {
	if k == journey.KindAirplane {
		return mode.Airplane
	}
	return mode.Train
}

func (t *Trajectory) transitionJourney(current signal.Sample, tags GeoTags, res Result) {
	switch res.Reason.Code() {
	case mode.ReasonJourneyArrival, mode.ReasonJourneySlowdown,
		mode.ReasonJourneyTimeout, mode.ReasonJourneyUnrealistic:
		t.journey = nil
		return

	case mode.ReasonStationBoarding, mode.ReasonStationTrainSpeed, mode.ReasonJourneyStart:
		if t.journey == nil {
			t.journey = journey.Begin(journey.KindTrain, current.Time, tags.StationName, current.Point)
			return
		}

	case mode.ReasonAirportDeparture:
		if t.journey == nil {
			t.journey = journey.Begin(journey.KindAirplane, current.Time, tags.AirportName, current.Point)
			return
		}

	case mode.ReasonJourneyRetroactive:
		if t.journey == nil {
			t.beginRetroactive(current)
			return
		}
	}

	if t.journey == nil {
		return
	}

	// A confident contradictory mode destroys the journey; a type
	// change is never an in-place mutation. Stationary is exempt, that
	// is what station dwells look like.
	jm := journeyMode(t.journey.Kind)
	if res.Mode.IsKnown() && res.Mode != jm && res.Mode != mode.Stationary && res.Confidence >= 0.9 {
		slog.Debug("Journey destroyed by contradiction",
			"trajectory", t.ID, "journey", t.journey.Kind, "mode", res.Mode, "reason", res.Reason.Code())
		t.journey = nil
		return
	}

	t.journey.Observe(current.Point, current.Time, current.SpeedKmh, t.JourneyPolicy)
}

// beginRetroactive backdates a train journey to the start of the
// buffered window and replays the buffered fixes into it, so the
// qualifying straight segment counts toward distance and duration.
func (t *Trajectory) beginRetroactive(current signal.Sample) {
	hist := t.window.Get() // current already added
	if len(hist) == 0 {
		return
	}
	first := hist[0]
	j := journey.Begin(journey.KindTrain, first.Time, "", first.Point)
	j.Retroactive = true
	for _, s := range hist[1:] {
		j.Observe(s.Point, s.Time, s.SpeedKmh, t.JourneyPolicy)
	}
	t.journey = j
}

// Reset drops all history, the journey, and the filter.
func (t *Trajectory) Reset() {
	t.window.Reset()
	t.modes.Reset()
	t.journey = nil
	t.filter = nil
	t.lastTime = time.Time{}
}
