package params

import "time"

// JourneyPolicy governs the train/airplane journey continuity machine.
type JourneyPolicy struct {
	// TrainSpeedFloorKmh keeps a train journey alive.
	TrainSpeedFloorKmh float64
	// TrainConfirmSpeedKmh is train-plausible cruise speed.
	TrainConfirmSpeedKmh float64

	// Retroactive start: a segment at least RetroMinDistance meters or
	// RetroMinDuration long, with speed CV under RetroMaxCV and a
	// straight trajectory, starts a train journey without a station tag.
	// Without recent station context the stricter NoContext gates apply.
	RetroMinDistance          float64
	RetroMinDuration          time.Duration
	RetroMaxCV                float64
	RetroNoContextMinDistance float64
	RetroNoContextMinDuration time.Duration
	RetroNoContextMaxCV       float64

	// UnrealisticMinDistance/Duration gate a nascent journey; shorter
	// qualifying segments revert to the last non-train moving mode.
	UnrealisticMinDistance float64
	UnrealisticMinDuration time.Duration

	// DwellTolerance is how long a station stop may last without
	// ending the journey.
	DwellTolerance time.Duration
	// EndSlowdownWindow of average speed under EndSlowdownMaxKmh ends it.
	EndSlowdownWindow time.Duration
	EndSlowdownMaxKmh float64
	// TrainHardCap ends any train journey outright.
	TrainHardCap time.Duration

	// Airplane analogues.
	AirplaneSpeedFloorKmh float64
	AirplaneHardCap       time.Duration
}

var DefaultJourneyPolicy = &JourneyPolicy{
	TrainSpeedFloorKmh:   25,
	TrainConfirmSpeedKmh: 60,

	RetroMinDistance:          3_000,
	RetroMinDuration:          5 * time.Minute,
	RetroMaxCV:                0.2,
	RetroNoContextMinDistance: 5_000,
	RetroNoContextMinDuration: 8 * time.Minute,
	RetroNoContextMaxCV:       0.15,

	UnrealisticMinDistance: 5_000,
	UnrealisticMinDuration: 10 * time.Minute,

	DwellTolerance:    5 * time.Minute,
	EndSlowdownWindow: 5 * time.Minute,
	EndSlowdownMaxKmh: 30,
	TrainHardCap:      2 * time.Hour,

	AirplaneSpeedFloorKmh: 200,
	AirplaneHardCap:       20 * time.Hour,
}
