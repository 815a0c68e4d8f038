// Package detect is the transport mode rule engine. Each GPS fix is
// evaluated against a priority-ordered list of detection rules; the
// first rule confident enough wins, and everything below it is never
// consulted. Rules read an immutable Context snapshot; all state
// mutation happens afterwards in the Trajectory arena.
package detect

import (
	"log/slog"
	"sort"

	"github.com/motionlog/motiond/common"
	"github.com/motionlog/motiond/geo/signal"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/mode"
)

// Fallback confidences, used when no rule clears the acceptance
// threshold. Low on purpose: downstream consumers can tell a reasoned
// detection from a shrug.
const (
	fallbackPreviousConfidence = 0.2
	fallbackUnknownConfidence  = 0.1
)

type Engine struct {
	Policy        *params.EnginePolicy
	JourneyPolicy *params.JourneyPolicy
	rules         []Rule
}

// NewEngine builds an engine over the given rule set, DefaultRules
// when none are given. Rules are ordered by descending priority once,
// here; ties keep their given order.
func NewEngine(policy *params.EnginePolicy, jp *params.JourneyPolicy, rules ...Rule) *Engine {
	if policy == nil {
		policy = params.DefaultEnginePolicy
	}
	if jp == nil {
		jp = params.DefaultJourneyPolicy
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Engine{
		Policy:        policy,
		JourneyPolicy: jp,
		rules:         sorted,
	}
}

// DefaultRules is the full production rule set.
func DefaultRules() []Rule {
	return []Rule{
		&HighwayRule{},
		&TrainStationRule{},
		&AirportRule{},
		&ImpossibleSpeedRule{},
		&BothStationsRule{},
		&JourneyManagementRule{},
		&JourneyContinuationRule{},
		&RetroactiveJourneyRule{},
		&AccelerationRule{},
		&ImpossiblePairRule{},
		&HysteresisRule{},
		&MultiSignalRule{},
		&StopPatternRule{},
		&SpeedBracketRule{},
		&ContinuityRule{},
	}
}

// Rules exposes the evaluation order, highest priority first.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Detect runs the greedy first-match evaluation over a context.
// Identical contexts always yield identical results: evaluation order
// is fixed and rules are pure.
func (e *Engine) Detect(ctx *Context) Result {
	for _, r := range e.rules {
		if !r.CanApply(ctx) {
			continue
		}
		res := r.Detect(ctx)
		if res == nil {
			continue
		}
		res.Confidence = common.Clamp01(res.Confidence)
		if res.Confidence > e.Policy.AcceptanceThreshold {
			slog.Debug("Mode detected", "rule", r.Name(),
				"mode", res.Mode, "confidence", res.Confidence, "reason", res.Reason.Code())
			return *res
		}
	}

	if last, ok := ctx.LastMode(); ok {
		return Result{Mode: last.Mode, Confidence: fallbackPreviousConfidence, Reason: mode.ReasonPreviousMode}
	}
	return Result{Mode: mode.Unknown, Confidence: fallbackUnknownConfidence, Reason: mode.ReasonNoHistory}
}

// Process is the one-call path for a live fix: snapshot the
// trajectory, detect, commit the decision back to the arena.
func (e *Engine) Process(t *Trajectory, current signal.Sample, tags GeoTags) Result {
	ctx := t.Snapshot(current, tags)
	res := e.Detect(ctx)
	t.Apply(current, tags, res)
	return res
}
