package detect

import (
	"github.com/motionlog/motiond/types/mode"
)

// HighwayRule is the strongest geographic override: sustained speed on
// a tagged highway is a car, whatever the history says.
type HighwayRule struct{}

func (r *HighwayRule) Name() string  { return "highway" }
func (r *HighwayRule) Priority() int { return PriorityHighwayOverride }

func (r *HighwayRule) CanApply(ctx *Context) bool {
	return ctx.Tags.OnHighway && ctx.Speed() >= 0
}

func (r *HighwayRule) Detect(ctx *Context) *Result {
	if ctx.Speed() < ctx.Policy.Geographic.HighwayMinSpeedKmh {
		// Stopped on or near a highway says nothing.
		return nil
	}
	return &Result{Mode: mode.Car, Confidence: 0.95, Reason: mode.ReasonHighwayDriving}
}

// TrainStationRule reads a station tag two ways: slow means boarding
// or alighting, fast means a train passing through. The dead band in
// between is left to the lower rules.
type TrainStationRule struct{}

func (r *TrainStationRule) Name() string  { return "train_station" }
func (r *TrainStationRule) Priority() int { return PriorityTrainStation }

func (r *TrainStationRule) CanApply(ctx *Context) bool {
	if !ctx.Tags.AtTrainStation || ctx.Speed() < 0 {
		return false
	}
	// Rolling slow into a different station than the journey started
	// at is an arrival; that belongs to the journey rules.
	if j := ctx.Journey; j != nil && ctx.Tags.StationName != "" &&
		ctx.Tags.StationName != j.StartPlace &&
		ctx.Speed() < ctx.JourneyPolicy.EndSlowdownMaxKmh {
		return false
	}
	return true
}

func (r *TrainStationRule) Detect(ctx *Context) *Result {
	speed := ctx.Speed()
	geo := ctx.Policy.Geographic
	switch {
	case speed <= geo.StationBoardingMaxKmh:
		reason := mode.ReasonStationBoarding
		if ctx.Tags.StationName != "" {
			reason = reason.Detail("%s", ctx.Tags.StationName)
		}
		return &Result{Mode: mode.Train, Confidence: 0.85, Reason: reason}
	case speed >= geo.StationTrainMinKmh:
		reason := mode.ReasonStationTrainSpeed
		if ctx.Tags.StationName != "" {
			reason = reason.Detail("%s", ctx.Tags.StationName)
		}
		return &Result{Mode: mode.Train, Confidence: 0.9, Reason: reason}
	}
	return nil
}

// AirportRule flags airborne speed near a tagged airport.
type AirportRule struct{}

func (r *AirportRule) Name() string  { return "airport" }
func (r *AirportRule) Priority() int { return PriorityAirport }

func (r *AirportRule) CanApply(ctx *Context) bool {
	return ctx.Tags.AtAirport && ctx.Speed() >= 0
}

func (r *AirportRule) Detect(ctx *Context) *Result {
	if ctx.Speed() < ctx.Policy.Geographic.AirportAirborneMinKmh {
		// Taxiing, parking lots, terminal dwell: not evidence of flight.
		return nil
	}
	reason := mode.ReasonAirportDeparture
	if ctx.Tags.AirportName != "" {
		reason = reason.Detail("%s", ctx.Tags.AirportName)
	}
	return &Result{Mode: mode.Airplane, Confidence: 0.9, Reason: reason}
}
