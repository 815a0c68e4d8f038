package webd

import (
	"io"
	"math"
	"net/http"

	"github.com/motionlog/motiond/api"
	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/fixdb/cache"
	"github.com/motionlog/motiond/stream"
	"github.com/motionlog/motiond/types"
	"github.com/motionlog/motiond/types/fix"
)

// handlePopulate is where fixes get posted and classified for-ev-er.
// Due to legacy support requirements it tolerates a variety of input
// formats (GeoJSON FeatureCollection, feature array, NDJSON).
// A push may interleave fixes from several trajectories; each
// trajectory gets its own pipeline run, in push order.
func (s *WebDaemon) handlePopulate(w http.ResponseWriter, r *http.Request) {

	if r.Body == nil {
		s.logger.Error("No request body", "method", r.Method, "url", r.URL)
		http.Error(w, "Please send a request body", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("Failed to read request body", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.logger.Debug("Decoding push",
		"bytes", len(body),
		"head", string(body)[:int(math.Min(80, float64(len(body))))])

	features, err := types.DecodeFixesShotgun(body)
	if err != nil || len(features) == 0 {
		s.logger.Error("Failed to decode", "error", err)
		http.Error(w, "Failed to decode", http.StatusUnprocessableEntity)
		return
	}

	// Group the push per trajectory, preserving arrival order.
	groups := map[conceptual.TrajectoryID][]fix.Fix{}
	order := []conceptual.TrajectoryID{}
	for _, f := range features {
		tid := f.TrajectoryID()
		if _, seen := groups[tid]; !seen {
			order = append(order, tid)
		}
		groups[tid] = append(groups[tid], *f)
	}

	ctx := r.Context()
	for _, tid := range order {
		tj, err := api.NewTrajectory(tid, nil, nil)
		if err != nil {
			s.logger.Error("Failed to init trajectory", "trajectory", tid, "error", err)
			http.Error(w, "Failed to populate", http.StatusInternalServerError)
			return
		}
		tj.DatadirRoot = s.Config.DataDir

		ch := stream.Slice(ctx, groups[tid])
		if err := tj.Populate(ctx, true, ch); err != nil {
			s.logger.Error("Failed to populate", "trajectory", tid, "error", err)
			http.Error(w, "Failed to populate", http.StatusInternalServerError)
			return
		}

		push := make([]*fix.Fix, len(groups[tid]))
		for i := range groups[tid] {
			push[i] = &groups[tid][i]
		}
		cache.SetLastPushTTL(tid, push)
	}

	// This weirdness is to satisfy the legacy clients,
	// but it's not an API pattern I like.
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("[]")); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}

	s.feedPopulated.Send(features)
}
