package params

import "time"

// CleanConfig governs the pre-engine stream filters.
type CleanConfig struct {
	// TeleportInterval is the window within which an implausible jump
	// counts as teleportation rather than signal loss.
	TeleportInterval time.Duration
	// TeleportFactor drops a fix whose calculated speed exceeds its
	// reported speed by this factor.
	TeleportFactor float64
	// TeleportAbsoluteMaxKmh drops any fix implying a faster-than-flight jump.
	TeleportAbsoluteMaxKmh float64

	// AccuracyThreshold is the reported-accuracy ceiling, meters.
	AccuracyThreshold float64

	// WangUrbanCanyonDistance is the distance threshold to determine if
	// a point is a signal-shift point, per Wang.
	WangUrbanCanyonDistance float64
	// WangUrbanCanyonWindow is the window of points to consider for the
	// Wang urban canyon test.
	WangUrbanCanyonWindow time.Duration
}

var DefaultCleanConfig = CleanConfig{
	TeleportInterval:       60 * time.Second,
	TeleportFactor:         10,
	TeleportAbsoluteMaxKmh: 1200,

	AccuracyThreshold: 100,

	WangUrbanCanyonDistance: 200,
	WangUrbanCanyonWindow:   60 * time.Second,
}
