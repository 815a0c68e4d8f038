package common

// All engine speeds are kilometers per hour.
// Trackers commonly report meters per second; convert at the edge.

const (
	MsToKmh = 3.6
	KmhToMs = 1.0 / 3.6
)

const SpeedOfWalkingMinKmh = 0.8
const SpeedOfWalkingMeanKmh = 4.3
const SpeedOfWalkingMaxKmh = 12.0

const SpeedOfCyclingMinKmh = 5.0
const SpeedOfCyclingMeanKmh = 19.0
const SpeedOfCyclingMaxKmh = 45.0

const SpeedOfDrivingMinKmh = 10.0
const SpeedOfDrivingCityKmh = 50.0
const SpeedOfDrivingHighwayKmh = 91.0
const SpeedOfDrivingMaxKmh = 180.0

const SpeedOfTrainMinKmh = 30.0
const SpeedOfTrainRegionalKmh = 120.0
const SpeedOfTrainMaxKmh = 350.0

const SpeedOfFlyingMinKmh = 150.0
const SpeedOfTakeoffKmh = 200.0
const SpeedOfCommercialFlightKmh = 900.0
const SpeedOfFlyingMaxKmh = 1000.0

const SpeedOfStationaryMaxKmh = 2.0
