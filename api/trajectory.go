// Package api wires the classification pipeline together, one
// Trajectory at a time: clean, geo-tag, classify, store, publish.
// Per-trajectory processing is strictly sequential; trajectories are
// embarrassingly parallel.
package api

import (
	"log/slog"

	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/geo/detect"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/rgeo"
	"github.com/motionlog/motiond/state"
)

// Trajectory is the API representation of a mover's fix stream.
// It does not reflect trajectory state. (Well, it can _reflect_ it,
// but not ~be~ it.) Where trajectory data comes from, that is not the
// state of this app: a CLI flag, a URL parameter, a line attribute.
type Trajectory struct {
	ID conceptual.TrajectoryID

	Policy        *params.EnginePolicy
	JourneyPolicy *params.JourneyPolicy

	State *state.TrajectoryState

	engine   *detect.Engine
	arena    *detect.Trajectory
	resolver *rgeo.Resolver
	logger   *slog.Logger

	// DatadirRoot overrides params.DatadirRoot when set.
	// The web daemon threads its configured data dir through here.
	DatadirRoot string
}

func NewTrajectory(tid conceptual.TrajectoryID, policy *params.EnginePolicy, jp *params.JourneyPolicy) (*Trajectory, error) {
	if policy == nil {
		policy = params.DefaultEnginePolicy
	}
	if jp == nil {
		jp = params.DefaultJourneyPolicy
	}
	resolver, err := rgeo.NewResolver(nil)
	if err != nil {
		return nil, err
	}
	return &Trajectory{
		ID:            tid,
		Policy:        policy,
		JourneyPolicy: jp,
		engine:        detect.NewEngine(policy, jp, detect.DefaultRules()...),
		resolver:      resolver,
		logger:        slog.With("trajectory", tid),
	}, nil
}

// WithState opens (or returns) the trajectory's state connection and
// restores the persisted detection arena. Stateful. Blocking. Locking.
func (t *Trajectory) WithState(readOnly bool) (*state.TrajectoryState, error) {
	if t.State != nil {
		return t.State, nil
	}
	s, err := state.NewTrajectoryState(t.ID, t.DatadirRoot, readOnly)
	if err != nil {
		return nil, err
	}
	t.State = s

	arena, err := s.ReadArena(t.Policy, t.JourneyPolicy)
	if err != nil {
		t.logger.Error("Failed to restore arena, starting fresh", "error", err)
		arena = detect.NewTrajectory(t.ID, t.Policy, t.JourneyPolicy)
	}
	t.arena = arena
	return s, nil
}

// Close persists the arena and releases the state lock.
func (t *Trajectory) Close() error {
	if t.State == nil {
		return nil
	}
	if t.arena != nil {
		if err := t.State.StoreArena(t.arena); err != nil {
			t.logger.Error("Failed to store arena", "error", err)
		}
	}
	err := t.State.Close()
	t.State = nil
	return err
}
