package detect

import (
	"github.com/motionlog/motiond/geo/journey"
	"github.com/motionlog/motiond/geo/signal"
	"github.com/motionlog/motiond/types/mode"
)

// placeAt is the named place relevant to the journey's kind at the
// current fix, empty when none.
func placeAt(ctx *Context, k journey.Kind) string {
	if k == journey.KindAirplane {
		if ctx.Tags.AtAirport {
			return ctx.Tags.AirportName
		}
		return ""
	}
	if ctx.Tags.AtTrainStation {
		return ctx.Tags.StationName
	}
	return ""
}

// BothStationsRule is the strongest positive train evidence short of
// the geographic overrides: a journey that started at one named
// station is now passing a different one at train speed.
type BothStationsRule struct{}

func (r *BothStationsRule) Name() string  { return "both_stations" }
func (r *BothStationsRule) Priority() int { return PriorityBothStations }

func (r *BothStationsRule) CanApply(ctx *Context) bool {
	j := ctx.Journey
	return j != nil && j.Kind == journey.KindTrain && j.StartPlace != "" &&
		ctx.Tags.AtTrainStation && ctx.Tags.StationName != "" &&
		ctx.Tags.StationName != j.StartPlace &&
		ctx.Speed() >= 0
}

func (r *BothStationsRule) Detect(ctx *Context) *Result {
	if ctx.Speed() < ctx.JourneyPolicy.TrainSpeedFloorKmh {
		// Slow at the second station is an arrival, not a pass-through.
		return nil
	}
	return &Result{
		Mode:       mode.Train,
		Confidence: 0.95,
		Reason:     mode.ReasonBothStations.Detail("%s to %s", ctx.Journey.StartPlace, ctx.Tags.StationName),
	}
}

// JourneyManagementRule decides journey endings: arrivals, sustained
// slowdowns, hard time caps, and the reversion of journeys that never
// covered enough ground to be real.
type JourneyManagementRule struct{}

func (r *JourneyManagementRule) Name() string  { return "journey_management" }
func (r *JourneyManagementRule) Priority() int { return PriorityJourneyManagement }

func (r *JourneyManagementRule) CanApply(ctx *Context) bool {
	return ctx.Journey != nil
}

func (r *JourneyManagementRule) Detect(ctx *Context) *Result {
	j := ctx.Journey
	speed := ctx.Speed()
	now := ctx.Current.Time

	if !j.Confirmed(now, ctx.JourneyPolicy) && !j.Continues(speed, ctx.JourneyPolicy) {
		// The qualifying segment fizzled before it was long enough to
		// count. Whatever we called train was probably this instead.
		m, ok := ctx.LastNonJourneyMovingMode()
		if !ok {
			m = ctx.BracketMode()
		}
		if !m.IsKnown() {
			m = mode.Stationary
		}
		return &Result{Mode: m, Confidence: 0.7, Reason: mode.ReasonJourneyUnrealistic}
	}

	reason, over := j.EndCheck(now, speed, placeAt(ctx, j.Kind), ctx.JourneyPolicy)
	if !over {
		return nil
	}
	switch reason {
	case journey.EndArrival:
		return &Result{
			Mode:       mode.Stationary,
			Confidence: 0.9,
			Reason:     mode.ReasonJourneyArrival.Detail("arrived at %s", j.EndPlace),
		}
	case journey.EndSlowdown:
		return &Result{Mode: mode.Stationary, Confidence: 0.8, Reason: mode.ReasonJourneySlowdown}
	case journey.EndTimeout:
		m := ctx.BracketMode()
		if !m.IsKnown() {
			m = mode.Stationary
		}
		return &Result{Mode: m, Confidence: 0.6, Reason: mode.ReasonJourneyTimeout}
	}
	return nil
}

// JourneyContinuationRule keeps a live journey's mode sticky while the
// speed still fits. Below the floor it stays silent; short station
// dwells then fall through to hysteresis, which holds the mode, and
// long ones to the management rule, which ends the journey.
type JourneyContinuationRule struct{}

func (r *JourneyContinuationRule) Name() string  { return "journey_continuation" }
func (r *JourneyContinuationRule) Priority() int { return PriorityJourneyContinuation }

func (r *JourneyContinuationRule) CanApply(ctx *Context) bool {
	return ctx.Journey != nil
}

func (r *JourneyContinuationRule) Detect(ctx *Context) *Result {
	j := ctx.Journey
	if !j.Continues(ctx.Speed(), ctx.JourneyPolicy) {
		return nil
	}
	conf := 0.85
	if !j.Confirmed(ctx.Current.Time, ctx.JourneyPolicy) {
		conf = 0.75
	}
	return &Result{Mode: journeyMode(j.Kind), Confidence: conf, Reason: mode.ReasonJourneyContinue}
}

// RetroactiveJourneyRule starts a train journey without any station
// tag: a long, fast, straight, steady segment is a train even when the
// geocoder never saw the departure. Stricter gates apply without
// recent station context.
type RetroactiveJourneyRule struct{}

func (r *RetroactiveJourneyRule) Name() string  { return "retroactive_journey" }
func (r *RetroactiveJourneyRule) Priority() int { return PriorityRetroactiveJourney }

func (r *RetroactiveJourneyRule) CanApply(ctx *Context) bool {
	return ctx.Journey == nil && ctx.SpeedValid() &&
		len(ctx.Window) >= ctx.Policy.Straight.MinPoints &&
		ctx.Current.SpeedKmh >= ctx.JourneyPolicy.TrainConfirmSpeedKmh
}

func (r *RetroactiveJourneyRule) Detect(ctx *Context) *Result {
	jp := ctx.JourneyPolicy
	minDist, minDur, maxCV := jp.RetroMinDistance, jp.RetroMinDuration, jp.RetroMaxCV
	if !ctx.RecentStationContext() {
		minDist, minDur, maxCV = jp.RetroNoContextMinDistance, jp.RetroNoContextMinDuration, jp.RetroNoContextMaxCV
	}

	pts := signal.Points(ctx.Window)
	dist := signal.PathDistance(pts)
	if dist < minDist && ctx.WindowDuration() < minDur {
		return nil
	}

	speeds := make([]float64, 0, len(ctx.Window))
	for _, s := range ctx.Window {
		if s.SpeedKmh >= 0 {
			speeds = append(speeds, s.SpeedKmh)
		}
	}
	if stats := signal.Variance(speeds); stats.CV > maxCV {
		return nil
	}
	if !signal.IsStraight(pts, ctx.Policy.Straight.MaxBearingVarianceDeg, ctx.Policy.Straight.MinPoints) {
		return nil
	}

	return &Result{
		Mode:       mode.Train,
		Confidence: 0.8,
		Reason:     mode.ReasonJourneyRetroactive.Detail("%.1f km steady segment", dist/1000),
	}
}
