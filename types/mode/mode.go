package mode

import (
	"regexp"
)

// Mode is a transport mode assigned to a GPS fix.
type Mode int

const (
	Stationary Mode = iota
	Walking
	Cycling
	Car
	Train
	Airplane
	Unknown Mode = -1
)

var AllModeNames = []string{
	Unknown.String(),
	Stationary.String(),
	Walking.String(),
	Cycling.String(),
	Car.String(),
	Train.String(),
	Airplane.String(),
}

var (
	modeStationary = regexp.MustCompile(`(?i)stationary|still`)
	modeWalking    = regexp.MustCompile(`(?i)walk|foot`)
	modeCycling    = regexp.MustCompile(`(?i)cycle|cycling|bike|biking`)
	modeCar        = regexp.MustCompile(`(?i)^car|drive|driving|automotive`)
	modeTrain      = regexp.MustCompile(`(?i)train|rail`)
	modeAirplane   = regexp.MustCompile(`(?i)^fly|^air|plane`)
)

// IsMoving returns whether the mode implies motion.
func (m Mode) IsMoving() bool {
	return m > Stationary && m <= Airplane
}

// IsKnown returns true if the mode is not Unknown.
func (m Mode) IsKnown() bool {
	return m != Unknown
}

// IsJourney returns whether the mode is tracked by the journey state machine.
func (m Mode) IsJourney() bool {
	return m == Train || m == Airplane
}

// IsHumanPowered returns whether the mode is human-powered locomotion.
func (m Mode) IsHumanPowered() bool {
	return m == Walking || m == Cycling
}

// String implements the Stringer interface.
// The lowercase names are the wire vocabulary consumed downstream.
func (m Mode) String() string {
	switch m {
	case Stationary:
		return "stationary"
	case Walking:
		return "walking"
	case Cycling:
		return "cycling"
	case Car:
		return "car"
	case Train:
		return "train"
	case Airplane:
		return "airplane"
	}
	return "unknown"
}

// Emoji returns a single emoji representation of the mode.
func (m Mode) Emoji() string {
	switch m {
	case Stationary:
		return "📍"
	case Walking:
		return "🚶"
	case Cycling:
		return "🚴"
	case Car:
		return "🚗"
	case Train:
		return "🚆"
	case Airplane:
		return "✈️"
	}
	return "❓"
}

func FromAny(a any) Mode {
	if a == nil {
		return Unknown
	}
	s, ok := a.(string)
	if !ok {
		return Unknown
	}
	return FromString(s)
}

func FromString(str string) Mode {
	switch {
	case modeStationary.MatchString(str):
		return Stationary
	case modeWalking.MatchString(str):
		return Walking
	case modeCycling.MatchString(str):
		return Cycling
	case modeTrain.MatchString(str):
		return Train
	case modeCar.MatchString(str):
		return Car
	case modeAirplane.MatchString(str):
		return Airplane
	}
	return Unknown
}

// impossiblePairs are consecutive mode assignments that cannot happen
// in the physical world at fix granularity. Observing one means the
// later assignment was wrong; the engine reverts to the earlier mode.
var impossiblePairs = map[[2]Mode]bool{
	{Walking, Airplane}: true,
	{Airplane, Walking}: true,
	{Cycling, Airplane}: true,
	{Airplane, Cycling}: true,
	{Cycling, Train}:    true,
	{Train, Cycling}:    true,
}

// ImpossibleTransition reports whether going directly from a to b
// is a disallowed consecutive pair.
func ImpossibleTransition(a, b Mode) bool {
	if !a.IsKnown() || !b.IsKnown() {
		return false
	}
	return impossiblePairs[[2]Mode{a, b}]
}
