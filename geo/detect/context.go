package detect

import (
	"time"

	"github.com/motionlog/motiond/geo/journey"
	"github.com/motionlog/motiond/geo/physics"
	"github.com/motionlog/motiond/geo/signal"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/mode"
	"github.com/paulmach/orb"
)

// GeoTags is the normalized reverse-geocode context for one fix.
// Names are display names when the geocoder knows them, empty otherwise.
type GeoTags struct {
	OnHighway      bool
	AtTrainStation bool
	AtAirport      bool
	StationName    string
	AirportName    string
}

func (g GeoTags) Empty() bool {
	return !g.OnHighway && !g.AtTrainStation && !g.AtAirport
}

// ModeEntry is one decided fix in a trajectory's mode history.
type ModeEntry struct {
	Mode       mode.Mode
	Confidence float64
	Reason     mode.Reason
	Time       time.Time
	Point      orb.Point
	SpeedKmh   float64
}

// Context is the snapshot handed to every rule for one fix.
// It is built once per fix by the trajectory arena and treated as
// read-only by the rules; slices are copies, and Journey is a copy of
// the arena's journey, so no rule can corrupt trajectory state.
type Context struct {
	Policy        *params.EnginePolicy
	JourneyPolicy *params.JourneyPolicy

	Current     signal.Sample
	Previous    signal.Sample
	HasPrevious bool
	// ElapsedSeconds between Previous and Current, 0 without a previous.
	ElapsedSeconds float64

	// Window is the bounded recent history, oldest first, with Current
	// as the final element. Modes holds the matching past decisions and
	// does not include the fix under evaluation.
	Window []signal.Sample
	Modes  []ModeEntry

	// RollingSpeedKmh is the smoothed recent speed, -1 when unknown.
	RollingSpeedKmh float64
	Sampling        signal.SamplingClass
	Tags            GeoTags

	// Journey is the active train/airplane journey, nil when none.
	Journey *journey.Journey
}

// SpeedValid reports whether the current fix carries a usable speed.
func (c *Context) SpeedValid() bool {
	return c.Current.SpeedKmh >= 0
}

// Speed is the working speed for rule checks: the reported speed when
// present, the rolling speed otherwise. May be -1 when neither exists.
func (c *Context) Speed() float64 {
	if c.SpeedValid() {
		return c.Current.SpeedKmh
	}
	return c.RollingSpeedKmh
}

// InAmbiguousBand reports whether the working speed falls in the band
// where cars and trains overlap and single signals are weak.
func (c *Context) InAmbiguousBand() bool {
	s := c.Speed()
	return s >= c.Policy.AmbiguousBandLowKmh && s <= c.Policy.AmbiguousBandHighKmh
}

// LastMode is the most recent decided entry.
func (c *Context) LastMode() (ModeEntry, bool) {
	if len(c.Modes) == 0 {
		return ModeEntry{}, false
	}
	return c.Modes[len(c.Modes)-1], true
}

// PrevMode is the entry before the last one.
func (c *Context) PrevMode() (ModeEntry, bool) {
	if len(c.Modes) < 2 {
		return ModeEntry{}, false
	}
	return c.Modes[len(c.Modes)-2], true
}

// ModeAge is how long the last decided mode has been held without
// interruption, measured to the current fix.
func (c *Context) ModeAge() time.Duration {
	last, ok := c.LastMode()
	if !ok {
		return 0
	}
	since := last.Time
	for i := len(c.Modes) - 2; i >= 0; i-- {
		if c.Modes[i].Mode != last.Mode {
			break
		}
		since = c.Modes[i].Time
	}
	return c.Current.Time.Sub(since)
}

// RecentDistance is the path distance over the last n window samples
// (current included), meters.
func (c *Context) RecentDistance(n int) float64 {
	if n > len(c.Window) {
		n = len(c.Window)
	}
	return signal.PathDistance(signal.Points(c.Window[len(c.Window)-n:]))
}

// WindowDuration spans the whole window, first sample to current.
func (c *Context) WindowDuration() time.Duration {
	if len(c.Window) < 2 {
		return 0
	}
	return c.Window[len(c.Window)-1].Time.Sub(c.Window[0].Time)
}

// LastNonJourneyMovingMode walks the history backwards for the most
// recent moving mode that is neither train nor airplane. This is the
// mode an unrealistic journey segment reverts to.
func (c *Context) LastNonJourneyMovingMode() (mode.Mode, bool) {
	for i := len(c.Modes) - 1; i >= 0; i-- {
		m := c.Modes[i].Mode
		if m.IsMoving() && !m.IsJourney() {
			return m, true
		}
	}
	return mode.Unknown, false
}

// stationContextLookback bounds how far back a station sighting still
// counts as context for a retroactive journey start.
const stationContextLookback = 10 * time.Minute

// RecentStationContext reports whether the trajectory saw a train
// station recently: a station tag now, or a station-reasoned decision
// within the lookback.
func (c *Context) RecentStationContext() bool {
	if c.Tags.AtTrainStation {
		return true
	}
	horizon := c.Current.Time.Add(-stationContextLookback)
	for i := len(c.Modes) - 1; i >= 0; i-- {
		e := c.Modes[i]
		if e.Time.Before(horizon) {
			break
		}
		switch e.Reason.Code() {
		case mode.ReasonStationBoarding, mode.ReasonStationTrainSpeed, mode.ReasonBothStations:
			return true
		}
	}
	return false
}

// BracketMode is the plain speed-bracket opinion for the working speed.
func (c *Context) BracketMode() mode.Mode {
	return physics.BracketForSpeed(c.Speed(), c.Policy.SpeedBrackets)
}
