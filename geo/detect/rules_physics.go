package detect

import (
	"github.com/motionlog/motiond/geo/physics"
	"github.com/motionlog/motiond/types/mode"
)

var allModes = []mode.Mode{
	mode.Stationary, mode.Walking, mode.Cycling, mode.Car, mode.Train, mode.Airplane,
}

// ImpossibleSpeedRule is the safety net under the continuity rules: a
// speed the previous mode cannot physically produce forces a switch,
// with full confidence, before any "stay put" rule gets a say.
type ImpossibleSpeedRule struct{}

func (r *ImpossibleSpeedRule) Name() string  { return "impossible_speed" }
func (r *ImpossibleSpeedRule) Priority() int { return PriorityImpossibleSpeed }

func (r *ImpossibleSpeedRule) CanApply(ctx *Context) bool {
	last, ok := ctx.LastMode()
	if !ok || !last.Mode.IsKnown() || !ctx.SpeedValid() {
		return false
	}
	// A live journey legitimately passes through slow phases (station
	// dwells, taxiing); those belong to the journey rules.
	if ctx.Journey != nil && last.Mode == journeyMode(ctx.Journey.Kind) {
		return false
	}
	return !physics.IsPhysicallyPossible(last.Mode, ctx.Current.SpeedKmh)
}

func (r *ImpossibleSpeedRule) Detect(ctx *Context) *Result {
	last, _ := ctx.LastMode()
	speed := ctx.Current.SpeedKmh

	// A geographic tag picks the replacement when it can.
	override := mode.Unknown
	switch {
	case ctx.Tags.OnHighway && physics.IsPhysicallyPossible(mode.Car, speed):
		override = mode.Car
	case ctx.Tags.AtTrainStation && physics.IsPhysicallyPossible(mode.Train, speed):
		override = mode.Train
	case ctx.Tags.AtAirport && physics.IsPhysicallyPossible(mode.Airplane, speed):
		override = mode.Airplane
	}
	if !override.IsKnown() {
		override = ctx.BracketMode()
	}
	if !override.IsKnown() || override == last.Mode {
		return nil
	}
	return &Result{
		Mode:       override,
		Confidence: 1.0,
		Reason:     mode.ReasonImpossibleSpeed.Detail("%s cannot do %.0f km/h", last.Mode, speed),
	}
}

// AccelerationRule rejects mode continuity when the speed change since
// the previous fix exceeds what the held mode can physically manage.
type AccelerationRule struct{}

func (r *AccelerationRule) Name() string  { return "acceleration" }
func (r *AccelerationRule) Priority() int { return PriorityAcceleration }

func (r *AccelerationRule) CanApply(ctx *Context) bool {
	last, ok := ctx.LastMode()
	if !ok || !last.Mode.IsKnown() {
		return false
	}
	return ctx.HasPrevious && ctx.SpeedValid() &&
		ctx.Previous.SpeedKmh >= 0 && ctx.ElapsedSeconds > 0
}

func (r *AccelerationRule) Detect(ctx *Context) *Result {
	last, _ := ctx.LastMode()
	from, to := ctx.Previous.SpeedKmh, ctx.Current.SpeedKmh
	if physics.IsAccelerationPossible(last.Mode, from, to, ctx.ElapsedSeconds) {
		return nil
	}

	candidates := physics.FilterPossibleModes(to, allModes)
	filtered := candidates[:0]
	for _, m := range candidates {
		if physics.IsAccelerationPossible(m, from, to, ctx.ElapsedSeconds) {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	pick := filtered[0]
	for _, m := range filtered {
		if m == ctx.BracketMode() {
			pick = m
			break
		}
	}
	return &Result{
		Mode:       pick,
		Confidence: 0.75,
		Reason:     mode.ReasonAcceleration.Detail("%s cannot go %.0f to %.0f km/h in %.0fs", last.Mode, from, to, ctx.ElapsedSeconds),
	}
}
