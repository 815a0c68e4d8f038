package webd

import (
	"encoding/json"
	"net/http"

	"github.com/motionlog/motiond/api"
	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/fixdb/cache"
	"github.com/motionlog/motiond/types/fix"
)

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// handleLastKnown returns the freshest classified fix per trajectory.
// With a ?trajectory= param it answers for that one mover; without,
// it dumps everything warm in the process cache.
func (s *WebDaemon) handleLastKnown(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("trajectory"); raw != "" {
		tid := conceptual.SanitizeTrajectoryID(raw)
		f, err := api.LastKnown(tid, s.Config.DataDir)
		if err != nil {
			s.logger.Warn("Failed to get last known", "trajectory", tid, "error", err)
			http.Error(w, "Failed to get last known", http.StatusInternalServerError)
			return
		}
		if err := json.NewEncoder(w).Encode([]*fix.Fix{f}); err != nil {
			s.logger.Warn("Failed to write response", "error", err)
		}
		return
	}

	out := []*fix.Fix{}
	for _, item := range cache.LastKnownTTLCache.Items() {
		out = append(out, item.Value())
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}
