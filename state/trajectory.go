// Package state persists per-trajectory classifier state: the bounded
// histories and any live journey survive a restart, so a mover does not
// lose its train mid-ride to a redeploy.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/motionlog/motiond/conceptual"
	"github.com/motionlog/motiond/fixdb/flat"
	"github.com/motionlog/motiond/geo/detect"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/fix"
	"go.etcd.io/bbolt"
)

var (
	keyLastFix = []byte("last")
	keyArena   = []byte("arena")
)

// TrajectoryState owns the data sources and encoding for one trajectory.
// It should be non-contentious. It must be blocking; it should not permit
// competing writes or reads to trajectory state. One trajectory, one state.
type TrajectoryState struct {
	ID conceptual.TrajectoryID
	DB *bbolt.DB

	Flat    *flat.Flat
	Waiting sync.WaitGroup
	rOnly   bool
}

// NewTrajectoryState opens the trajectory's state DB under root
// (params.DatadirRoot when empty). Opening a writable DB conn blocks
// all other writers and readers with essentially a flock.
func NewTrajectoryState(tid conceptual.TrajectoryID, root string, readOnly bool) (*TrajectoryState, error) {
	if root == "" {
		root = params.DatadirRoot
	}
	fl := flat.NewFlatWithRoot(root).ForTrajectory(tid)
	if err := fl.MkdirAll(); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(filepath.Join(fl.Path(), params.StateDBName),
		0600, &bbolt.Options{
			ReadOnly: readOnly,
		})
	if err != nil {
		return nil, err
	}

	return &TrajectoryState{
		ID:    tid,
		DB:    db,
		Flat:  fl,
		rOnly: readOnly,
	}, nil
}

func (s *TrajectoryState) Wait() {
	s.Waiting.Wait()
}

func (s *TrajectoryState) Close() error {
	return s.DB.Close()
}

// FixesGZWriter opens the trajectory's append-only classified-fix record.
func (s *TrajectoryState) FixesGZWriter() (*flat.GZFileWriter, error) {
	return s.Flat.NamedGZWriter(flat.FixesFileName, nil)
}

// WriteFix appends one classified fix to wr as NDJSON.
func (s *TrajectoryState) WriteFix(wr *flat.GZFileWriter, f *fix.Fix) error {
	return json.NewEncoder(wr.Writer()).Encode(f)
}

func (s *TrajectoryState) storeKV(key []byte, data []byte) error {
	if key == nil {
		return fmt.Errorf("storeKV: nil key")
	}
	if data == nil {
		return fmt.Errorf("storeKV: nil data")
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(params.StateBucket)
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}

func (s *TrajectoryState) readKV(key []byte) ([]byte, error) {
	buf := bytes.NewBuffer([]byte{})
	err := s.DB.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(params.StateBucket)
		if bucket == nil {
			return nil
		}

		// Gotcha! The value returned by Get is only valid in the scope of the transaction.
		got := bucket.Get(key)
		if got == nil {
			return nil
		}
		_, err := buf.Write(got)
		return err
	})
	return buf.Bytes(), err
}

func (s *TrajectoryState) WriteKV(key []byte, value []byte) error {
	return s.storeKV(key, value)
}

func (s *TrajectoryState) ReadKV(key []byte) ([]byte, error) {
	return s.readKV(key)
}

// StoreLastFix records the freshest classified fix.
func (s *TrajectoryState) StoreLastFix(f *fix.Fix) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	err = s.storeKV(keyLastFix, b)
	if err != nil {
		slog.Error("Failed to store last fix", "error", err, "trajectory", s.ID)
	} else {
		slog.Debug("Stored last fix", "trajectory", s.ID, "fix", string(b))
	}
	return err
}

// ReadLastFix returns the stored last fix, or an error when there is none.
func (s *TrajectoryState) ReadLastFix() (*fix.Fix, error) {
	got, err := s.readKV(keyLastFix)
	if err != nil {
		return nil, err
	}
	if len(got) == 0 {
		return nil, fmt.Errorf("no last fix")
	}
	f := &fix.Fix{}
	if err := f.UnmarshalJSON(got); err != nil {
		slog.Debug("Read last fix", "error", err, "trajectory", s.ID, "fix", string(got))
		return nil, fmt.Errorf("%w: %q", err, string(got))
	}
	slog.Debug("Read last fix", "trajectory", s.ID, "fix", f.StringPretty())
	return f, nil
}

// StoreArena persists the detection arena: histories, journey, clock.
func (s *TrajectoryState) StoreArena(t *detect.Trajectory) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.storeKV(keyArena, b)
}

// ReadArena restores the detection arena with the given policies.
// A missing arena is not an error; the caller gets a fresh one.
func (s *TrajectoryState) ReadArena(policy *params.EnginePolicy, jp *params.JourneyPolicy) (*detect.Trajectory, error) {
	t := detect.NewTrajectory(s.ID, policy, jp)
	got, err := s.readKV(keyArena)
	if err != nil {
		return nil, err
	}
	if len(got) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(got, t); err != nil {
		return nil, fmt.Errorf("arena decode: %w", err)
	}
	return t, nil
}
