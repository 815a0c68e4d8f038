package detect

import (
	"github.com/motionlog/motiond/geo/physics"
	"github.com/motionlog/motiond/types/mode"
)

// HysteresisRule dampens mode flapping: a switch the plain speed
// bracket suggests is suppressed while the held mode is still
// physically plausible and the mover has not put real distance behind
// it. Dropping to stationary is only suppressed while the mode is
// young, so red lights do not end a drive but parking does.
type HysteresisRule struct{}

func (r *HysteresisRule) Name() string  { return "hysteresis" }
func (r *HysteresisRule) Priority() int { return PriorityHysteresis }

func (r *HysteresisRule) CanApply(ctx *Context) bool {
	last, ok := ctx.LastMode()
	return ok && last.Mode.IsKnown() && ctx.Speed() >= 0
}

func (r *HysteresisRule) Detect(ctx *Context) *Result {
	last, _ := ctx.LastMode()
	implied := ctx.BracketMode()
	if implied == last.Mode || !implied.IsKnown() {
		return nil
	}
	if !physics.IsPhysicallyPossible(last.Mode, ctx.Speed()) {
		// Never lock onto an impossible mode.
		return nil
	}

	h := ctx.Policy.Hysteresis
	young := ctx.ModeAge() < h.MinModeDuration
	if implied == mode.Stationary {
		if young {
			return &Result{Mode: last.Mode, Confidence: 0.7, Reason: mode.ReasonModeHysteresis}
		}
		return nil
	}

	moved := ctx.RecentDistance(h.MovementGatePoints) >= h.MovementGateMeters
	if !moved || young {
		return &Result{Mode: last.Mode, Confidence: 0.7, Reason: mode.ReasonModeHysteresis}
	}
	return nil
}

// ImpossiblePairRule repairs history: when the last transition was a
// physically disallowed pair and the current speed still fits the
// older mode, the newer assignment was the mistake.
type ImpossiblePairRule struct{}

func (r *ImpossiblePairRule) Name() string  { return "impossible_pair" }
func (r *ImpossiblePairRule) Priority() int { return PriorityImpossiblePair }

func (r *ImpossiblePairRule) CanApply(ctx *Context) bool {
	_, ok := ctx.PrevMode()
	return ok && ctx.Speed() >= 0
}

func (r *ImpossiblePairRule) Detect(ctx *Context) *Result {
	last, _ := ctx.LastMode()
	prev, _ := ctx.PrevMode()
	if !mode.ImpossibleTransition(prev.Mode, last.Mode) {
		return nil
	}
	if !physics.IsPhysicallyPossible(prev.Mode, ctx.Speed()) {
		return nil
	}
	return &Result{
		Mode:       prev.Mode,
		Confidence: 0.8,
		Reason:     mode.ReasonImpossiblePair.Detail("%s to %s", prev.Mode, last.Mode),
	}
}

// SpeedBracketRule is the plain range lookup, the least informed
// opinion that still beats the fallbacks.
type SpeedBracketRule struct{}

func (r *SpeedBracketRule) Name() string  { return "speed_bracket" }
func (r *SpeedBracketRule) Priority() int { return PrioritySpeedBracket }

func (r *SpeedBracketRule) CanApply(ctx *Context) bool {
	return ctx.Speed() >= 0
}

func (r *SpeedBracketRule) Detect(ctx *Context) *Result {
	m := ctx.BracketMode()
	if !m.IsKnown() {
		return nil
	}
	return &Result{Mode: m, Confidence: 0.55, Reason: mode.ReasonSpeedBracket}
}

// ContinuityRule carries the previous mode through fixes with no
// usable speed at all. With a valid speed the bracket rule already
// fired, so this only ever sees speed-less fixes.
type ContinuityRule struct{}

func (r *ContinuityRule) Name() string  { return "continuity" }
func (r *ContinuityRule) Priority() int { return PriorityContinuity }

func (r *ContinuityRule) CanApply(ctx *Context) bool {
	last, ok := ctx.LastMode()
	return ok && last.Mode.IsKnown()
}

func (r *ContinuityRule) Detect(ctx *Context) *Result {
	last, _ := ctx.LastMode()
	if !physics.IsPhysicallyPossible(last.Mode, ctx.Speed()) {
		return nil
	}
	return &Result{Mode: last.Mode, Confidence: 0.55, Reason: mode.ReasonPreviousMode}
}
