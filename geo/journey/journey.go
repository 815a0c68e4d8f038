// Package journey tracks in-progress train and airplane journeys
// across successive engine invocations. A journey is a contiguous,
// stateful period of rail or air travel with explicit start, continue,
// and end transitions; the gates here keep brief highway bursts from
// registering as trains.
package journey

import (
	"encoding/json"
	"time"

	"github.com/motionlog/motiond/params"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

type Kind int

const (
	KindTrain Kind = iota
	KindAirplane
)

func (k Kind) String() string {
	if k == KindAirplane {
		return "airplane"
	}
	return "train"
}

// EndReason says why a journey terminated.
type EndReason int

const (
	EndNone EndReason = iota
	EndArrival
	EndSlowdown
	EndTimeout
)

func (r EndReason) String() string {
	switch r {
	case EndArrival:
		return "arrival"
	case EndSlowdown:
		return "slowdown"
	case EndTimeout:
		return "timeout"
	}
	return "none"
}

// Journey is one active train or airplane journey.
// Kind is immutable for the journey's lifetime: a type change always
// destroys and recreates the journey.
type Journey struct {
	Kind       Kind
	StartTime  time.Time
	StartPlace string // station or airport display name, may be empty
	EndPlace   string

	TotalDistanceMeters float64
	AverageSpeedKmh     float64

	LastPoint orb.Point
	LastTime  time.Time

	// Retroactive journeys started without a station tag.
	Retroactive bool

	slowSince time.Time
	observed  int
}

// Begin opens a journey at a point in time and space.
// place may be empty (retroactive starts).
func Begin(kind Kind, t time.Time, place string, pt orb.Point) *Journey {
	return &Journey{
		Kind:       kind,
		StartTime:  t,
		StartPlace: place,
		LastPoint:  pt,
		LastTime:   t,
	}
}

// Observe folds a new fix into the journey's running distance and
// average speed, and advances the slowdown gauge.
func (j *Journey) Observe(pt orb.Point, t time.Time, speedKmh float64, policy *params.JourneyPolicy) {
	if policy == nil {
		policy = params.DefaultJourneyPolicy
	}
	if !t.After(j.LastTime) {
		return
	}
	j.TotalDistanceMeters += geo.Distance(j.LastPoint, pt)
	j.LastPoint = pt
	j.LastTime = t
	j.observed++

	if elapsed := t.Sub(j.StartTime).Hours(); elapsed > 0 {
		j.AverageSpeedKmh = j.TotalDistanceMeters / 1000 / elapsed
	}

	if speedKmh >= 0 && speedKmh < j.slowdownFloor(policy) {
		if j.slowSince.IsZero() {
			j.slowSince = t
		}
	} else {
		j.slowSince = time.Time{}
	}
}

func (j *Journey) slowdownFloor(policy *params.JourneyPolicy) float64 {
	if j.Kind == KindAirplane {
		return policy.AirplaneSpeedFloorKmh
	}
	return policy.EndSlowdownMaxKmh
}

func (j *Journey) hardCap(policy *params.JourneyPolicy) time.Duration {
	if j.Kind == KindAirplane {
		return policy.AirplaneHardCap
	}
	return policy.TrainHardCap
}

// Elapsed is the journey's age at time t.
func (j *Journey) Elapsed(t time.Time) time.Duration {
	return t.Sub(j.StartTime)
}

// SlowFor is how long the mover has been continuously under the
// slowdown floor, zero if it isn't.
func (j *Journey) SlowFor(t time.Time) time.Duration {
	if j.slowSince.IsZero() {
		return 0
	}
	return t.Sub(j.slowSince)
}

// Confirmed applies the unrealistic-segment filter: a nascent journey
// only counts once it has covered enough ground or lasted long enough.
func (j *Journey) Confirmed(t time.Time, policy *params.JourneyPolicy) bool {
	if policy == nil {
		policy = params.DefaultJourneyPolicy
	}
	return j.TotalDistanceMeters >= policy.UnrealisticMinDistance ||
		j.Elapsed(t) >= policy.UnrealisticMinDuration
}

// EndCheck decides whether the journey is over.
// atPlace is the named station/airport at the current fix, empty when
// none. Arrival at a different named place ends the journey; so does a
// sustained slowdown or the hard time cap, whichever comes first.
func (j *Journey) EndCheck(t time.Time, speedKmh float64, atPlace string, policy *params.JourneyPolicy) (EndReason, bool) {
	if policy == nil {
		policy = params.DefaultJourneyPolicy
	}

	if atPlace != "" && atPlace != j.StartPlace && speedKmh >= 0 && speedKmh < j.slowdownFloor(policy) {
		j.EndPlace = atPlace
		return EndArrival, true
	}

	// Station dwells shorter than the tolerance do not end a train
	// journey; the slowdown window is that tolerance.
	if slow := j.SlowFor(t); slow > 0 {
		window := policy.EndSlowdownWindow
		if policy.DwellTolerance > window {
			window = policy.DwellTolerance
		}
		if slow >= window {
			return EndSlowdown, true
		}
	}

	if j.Elapsed(t) >= j.hardCap(policy) {
		return EndTimeout, true
	}

	return EndNone, false
}

// journeyAlias sidesteps the Marshal/Unmarshal methods.
type journeyAlias Journey

type journeyJSON struct {
	journeyAlias
	SlowSince time.Time
	Observed  int
}

// MarshalJSON includes the unexported gauges, so a restored journey
// resumes its slowdown countdown instead of restarting it.
func (j Journey) MarshalJSON() ([]byte, error) {
	return json.Marshal(journeyJSON{
		journeyAlias: journeyAlias(j),
		SlowSince:    j.slowSince,
		Observed:     j.observed,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (j *Journey) UnmarshalJSON(data []byte) error {
	jj := journeyJSON{}
	if err := json.Unmarshal(data, &jj); err != nil {
		return err
	}
	*j = Journey(jj.journeyAlias)
	j.slowSince = jj.SlowSince
	j.observed = jj.Observed
	return nil
}

// Continues reports whether the current speed keeps the journey alive
// without touching the end gauges.
func (j *Journey) Continues(speedKmh float64, policy *params.JourneyPolicy) bool {
	if policy == nil {
		policy = params.DefaultJourneyPolicy
	}
	if speedKmh < 0 {
		return true
	}
	if j.Kind == KindAirplane {
		return speedKmh >= policy.AirplaneSpeedFloorKmh
	}
	return speedKmh >= policy.TrainSpeedFloorKmh
}
