package conceptual

import (
	"regexp"
	"strings"
)

// TrajectoryID names one user/device fix stream.
// All fixes for one trajectory are processed in order, by one worker.
type TrajectoryID string

func (t TrajectoryID) String() string {
	return string(t)
}

func (t TrajectoryID) Empty() bool {
	return t == ""
}

var idSanitizePattern = regexp.MustCompile(`[^a-zA-Z0-9_.\-]`)

// SanitizeTrajectoryID normalizes a raw client-reported trajectory name
// into an ID safe for use as a directory name under the data dir.
func SanitizeTrajectoryID(raw string) TrajectoryID {
	return TrajectoryID(idSanitizePattern.ReplaceAllString(strings.TrimSpace(raw), "_"))
}
