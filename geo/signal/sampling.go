package signal

import (
	"time"

	"github.com/motionlog/motiond/params"
)

// SamplingClass is the inferred GPS recording cadence.
// Tight cadences come from turn-by-turn navigation (a car bias);
// sparse cadences from background tracking (no bias).
type SamplingClass int

const (
	SamplingUnknown SamplingClass = iota
	SamplingActiveNavigation
	SamplingMixed
	SamplingBackground
)

func (s SamplingClass) String() string {
	switch s {
	case SamplingActiveNavigation:
		return "active_navigation"
	case SamplingMixed:
		return "mixed"
	case SamplingBackground:
		return "background"
	}
	return "unknown"
}

// ClassifySampling infers the recording cadence from the mean
// inter-sample interval of a window. Needs at least 2 samples.
func ClassifySampling(samples []Sample, policy params.SamplingPolicy) SamplingClass {
	if len(samples) < 2 {
		return SamplingUnknown
	}
	var total time.Duration
	n := 0
	for i := 1; i < len(samples); i++ {
		d := samples[i].Time.Sub(samples[i-1].Time)
		if d <= 0 {
			continue
		}
		total += d
		n++
	}
	if n == 0 {
		return SamplingUnknown
	}
	mean := total / time.Duration(n)
	switch {
	case mean < policy.ActiveNavigation:
		return SamplingActiveNavigation
	case mean > policy.BackgroundTracking:
		return SamplingBackground
	}
	return SamplingMixed
}
