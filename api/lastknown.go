package api

import (
	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/fixdb/cache"
	"github.com/motionlog/motiond/state"
	"github.com/motionlog/motiond/types/fix"
)

// LastKnown returns the freshest classified fix for a trajectory,
// preferring the process cache over a read-only state hit.
// An empty root means params.DatadirRoot.
func LastKnown(tid conceptual.TrajectoryID, root string) (*fix.Fix, error) {
	if f := cache.LastKnown(tid); f != nil {
		return f, nil
	}
	s, err := state.NewTrajectoryState(tid, root, true)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.ReadLastFix()
}
