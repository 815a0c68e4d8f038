package detect

import (
	"encoding/json"
	"time"

	"github.com/motionlog/motiond/common"
	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/geo/journey"
	"github.com/motionlog/motiond/geo/signal"
	"github.com/motionlog/motiond/params"
)

// trajectoryJSON is the persisted shape of a trajectory arena.
// Policies are not serialized; the process configuration owns them.
// The Kalman filter is not serializable and re-seeds on the next fix.
type trajectoryJSON struct {
	ID       conceptual.TrajectoryID `json:"id"`
	Window   []signal.Sample         `json:"window"`
	Modes    []ModeEntry             `json:"modes"`
	Journey  *journey.Journey        `json:"journey,omitempty"`
	LastTime time.Time               `json:"lastTime"`
}

// MarshalJSON implements the json.Marshaler interface.
func (t *Trajectory) MarshalJSON() ([]byte, error) {
	return json.Marshal(trajectoryJSON{
		ID:       t.ID,
		Window:   t.window.Get(),
		Modes:    t.modes.Get(),
		Journey:  t.journey,
		LastTime: t.lastTime,
	})
}

// UnmarshalJSON restores a persisted arena. It works on a zero
// Trajectory, defaulting the policies; an arena built with
// NewTrajectory keeps the policies it was given.
func (t *Trajectory) UnmarshalJSON(data []byte) error {
	tj := trajectoryJSON{}
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}
	if t.Policy == nil {
		t.Policy = params.DefaultEnginePolicy
	}
	if t.JourneyPolicy == nil {
		t.JourneyPolicy = params.DefaultJourneyPolicy
	}
	if t.window == nil {
		t.window = common.NewRingBuffer[signal.Sample](t.Policy.HistoryWindow)
	}
	if t.modes == nil {
		t.modes = common.NewRingBuffer[ModeEntry](t.Policy.HistoryWindow)
	}

	t.ID = tj.ID
	t.window.Reset()
	for _, s := range tj.Window {
		t.window.Add(s)
	}
	t.modes.Reset()
	for _, m := range tj.Modes {
		t.modes.Add(m)
	}
	t.journey = tj.Journey
	t.lastTime = tj.LastTime
	t.filter = nil
	return nil
}
