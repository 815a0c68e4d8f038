package mode

import "fmt"

// Reason is a closed-set code justifying a detection result.
// Downstream UIs map codes to localized labels; anything after
// a ": " separator is free detail (station names and the like).
type Reason string

const (
	ReasonHighwayDriving     Reason = "highway_driving"
	ReasonStationBoarding    Reason = "station_boarding"
	ReasonStationTrainSpeed  Reason = "station_train_speed"
	ReasonAirportDeparture   Reason = "airport_departure"
	ReasonImpossibleSpeed    Reason = "impossible_speed_override"
	ReasonBothStations       Reason = "both_stations_detected"
	ReasonJourneyStart       Reason = "journey_start"
	ReasonJourneyRetroactive Reason = "journey_retroactive_start"
	ReasonJourneyContinue    Reason = "journey_continue"
	ReasonJourneyArrival     Reason = "journey_arrival"
	ReasonJourneySlowdown    Reason = "journey_slowdown"
	ReasonJourneyTimeout     Reason = "journey_timeout"
	ReasonJourneyUnrealistic Reason = "journey_unrealistic_segment"
	ReasonAcceleration       Reason = "acceleration_check"
	ReasonModeHysteresis     Reason = "mode_hysteresis"
	ReasonImpossiblePair     Reason = "impossible_transition_reverted"
	ReasonMultiSignal        Reason = "multi_signal_agreement"
	ReasonStopPattern        Reason = "stop_pattern"
	ReasonSpeedBracket       Reason = "speed_bracket"
	ReasonPreviousMode       Reason = "fallback_previous_mode"
	ReasonNoHistory          Reason = "fallback_no_history"
)

// Detail appends free-text detail to a reason code.
func (r Reason) Detail(format string, args ...any) Reason {
	return Reason(string(r) + ": " + fmt.Sprintf(format, args...))
}

// Code strips any detail suffix back to the bare code.
func (r Reason) Code() Reason {
	for i := 0; i < len(r); i++ {
		if r[i] == ':' {
			return r[:i]
		}
	}
	return r
}

var reasonLabels = map[Reason]string{
	ReasonHighwayDriving:     "Driving on a highway",
	ReasonStationBoarding:    "At a train station",
	ReasonStationTrainSpeed:  "Passing a station at train speed",
	ReasonAirportDeparture:   "Airplane near an airport",
	ReasonImpossibleSpeed:    "Previous mode impossible at this speed",
	ReasonBothStations:       "Travel between two stations",
	ReasonJourneyStart:       "Journey started",
	ReasonJourneyRetroactive: "Journey recognized retroactively",
	ReasonJourneyContinue:    "Journey in progress",
	ReasonJourneyArrival:     "Journey ended on arrival",
	ReasonJourneySlowdown:    "Journey ended after slowdown",
	ReasonJourneyTimeout:     "Journey ended on timeout",
	ReasonJourneyUnrealistic: "Segment too short for a journey",
	ReasonAcceleration:       "Acceleration check",
	ReasonModeHysteresis:     "Keeping previous mode",
	ReasonImpossiblePair:     "Reverted impossible mode change",
	ReasonMultiSignal:        "Multiple signals agree",
	ReasonStopPattern:        "Stop pattern match",
	ReasonSpeedBracket:       "Speed range match",
	ReasonPreviousMode:       "No rule matched, keeping previous mode",
	ReasonNoHistory:          "No rule matched, no history",
}

// Label returns a human-readable English label for the reason code.
func (r Reason) Label() string {
	if l, ok := reasonLabels[r.Code()]; ok {
		return l
	}
	return string(r)
}
