// Package cleaner holds the pre-engine stream filters: malformed
// fixes, implausible accuracy and speed values, teleportation jumps,
// and urban canyon signal shifts all get dropped before detection
// ever sees them.
package cleaner

import (
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/fix"
)

// FilterValid admits only structurally valid fixes: point geometry,
// finite coordinates, a trajectory, a parseable time.
func FilterValid(f *fix.Fix) bool {
	return f.IsValid()
}

func FilterAccuracy(f *fix.Fix) bool {
	v, ok := f.Properties["Accuracy"]
	if !ok {
		// Not all clients report accuracy.
		return true
	}
	accuracy, ok := v.(float64)
	if !ok {
		return false
	}
	return accuracy > 0 && accuracy < params.DefaultCleanConfig.AccuracyThreshold
}

// FilterSpeed drops fixes reporting speeds no transport mode reaches.
func FilterSpeed(f *fix.Fix) bool {
	return f.SpeedKmh() < params.DefaultCleanConfig.TeleportAbsoluteMaxKmh
}
