package detect

import (
	"github.com/motionlog/motiond/types/mode"
)

// Result is a rule's (or the engine's) verdict for one fix.
type Result struct {
	Mode       mode.Mode
	Confidence float64
	Reason     mode.Reason
}

// Rule is one detection opinion. Rules are pure with respect to the
// Context: any history or journey mutation happens outside evaluation,
// in the trajectory arena, keyed on the engine's chosen result.
// Detect returning nil means "no opinion"; rules never error.
type Rule interface {
	Name() string
	// Priority orders evaluation, higher first. Priorities are fixed at
	// rule-set construction; ties keep insertion order.
	Priority() int
	// CanApply is the cheap applicability predicate; Detect is not
	// called when it returns false. Malformed or insufficient input
	// must decline here, degrading to lower-priority rules.
	CanApply(*Context) bool
	Detect(*Context) *Result
}

// Rule priorities encode policy: from most certain and narrowest
// applicability down to least certain and broadest.
const (
	PriorityHighwayOverride     = 100
	PriorityTrainStation        = 97
	PriorityAirport             = 96
	PriorityImpossibleSpeed     = 95
	PriorityBothStations        = 93
	PriorityJourneyManagement   = 92
	PriorityJourneyContinuation = 90
	PriorityRetroactiveJourney  = 88
	PriorityAcceleration        = 80
	PriorityImpossiblePair      = 72
	PriorityHysteresis          = 70
	PriorityMultiSignal         = 60
	PriorityStopPattern         = 55
	PrioritySpeedBracket        = 40
	PriorityContinuity          = 10
)
