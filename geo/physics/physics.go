// Package physics is the static plausibility table: what speeds and
// accelerations each transport mode can physically produce.
// It is consulted both as a hard override and as a gate before the
// continuity rules, so an impossible-speed observation can never be
// suppressed by a "stay in previous mode" rule.
package physics

import (
	"github.com/motionlog/motiond/common"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/mode"
)

// Envelope bounds a mode: speeds in km/h, acceleration in km/h per second.
type Envelope struct {
	MinSpeedKmh       float64
	MaxSpeedKmh       float64
	MaxAccelKmhPerSec float64
}

var envelopes = map[mode.Mode]Envelope{
	mode.Stationary: {0, common.SpeedOfStationaryMaxKmh, 2},
	mode.Walking:    {0, common.SpeedOfWalkingMaxKmh, 4},
	mode.Cycling:    {common.SpeedOfCyclingMinKmh, common.SpeedOfCyclingMaxKmh, 6},
	mode.Car:        {common.SpeedOfDrivingMinKmh, common.SpeedOfDrivingMaxKmh, 12},
	mode.Train:      {common.SpeedOfTrainMinKmh, common.SpeedOfTrainMaxKmh, 5},
	mode.Airplane:   {common.SpeedOfFlyingMinKmh, common.SpeedOfFlyingMaxKmh, 20},
}

// EnvelopeFor looks up the bounds for a mode.
// Unknown has no envelope; everything is plausible.
func EnvelopeFor(m mode.Mode) (Envelope, bool) {
	e, ok := envelopes[m]
	return e, ok
}

// IsPhysicallyPossible is a pure range check of speed against the mode envelope.
// Unknown mode and negative (absent) speeds are always possible.
func IsPhysicallyPossible(m mode.Mode, speedKmh float64) bool {
	if speedKmh < 0 {
		return true
	}
	e, ok := envelopes[m]
	if !ok {
		return true
	}
	return speedKmh >= e.MinSpeedKmh && speedKmh <= e.MaxSpeedKmh
}

// FilterPossibleModes removes candidates whose envelope excludes the
// observed speed.
func FilterPossibleModes(speedKmh float64, candidates []mode.Mode) []mode.Mode {
	out := make([]mode.Mode, 0, len(candidates))
	for _, m := range candidates {
		if IsPhysicallyPossible(m, speedKmh) {
			out = append(out, m)
		}
	}
	return out
}

// IsAccelerationPossible checks the observed speed change against the
// mode's acceleration ceiling. Non-positive spans are indeterminate
// and pass.
func IsAccelerationPossible(m mode.Mode, fromKmh, toKmh, elapsedSec float64) bool {
	if elapsedSec <= 0 || fromKmh < 0 || toKmh < 0 {
		return true
	}
	e, ok := envelopes[m]
	if !ok {
		return true
	}
	accel := (toKmh - fromKmh) / elapsedSec
	if accel < 0 {
		// Braking can outpace acceleration; allow double.
		return -accel <= e.MaxAccelKmhPerSec*2
	}
	return accel <= e.MaxAccelKmhPerSec
}

// BracketForSpeed returns the plain speed-bracket mode for a speed.
// It is the least informed opinion in the engine.
func BracketForSpeed(speedKmh float64, brackets params.SpeedBrackets) mode.Mode {
	switch {
	case speedKmh < 0:
		return mode.Unknown
	case speedKmh <= brackets.StationaryMax:
		return mode.Stationary
	case speedKmh <= brackets.WalkingMax:
		return mode.Walking
	case speedKmh <= brackets.CyclingMax:
		return mode.Cycling
	case speedKmh <= brackets.CarMax:
		return mode.Car
	case speedKmh <= brackets.TrainMax:
		return mode.Train
	}
	return mode.Airplane
}
