package api

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/motionlog/motiond/events"
	"github.com/motionlog/motiond/fixdb/cache"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/stream"
	"github.com/motionlog/motiond/types/fix"
)

// PopulateReader decodes NDJSON fixes from in and populates them.
func (t *Trajectory) PopulateReader(ctx context.Context, sort bool, in io.Reader) (err error) {

	send := make(chan fix.Fix)
	errs := make(chan error, 2)

	go func() {
		defer close(send)
		// Line-wise scanning; a stream decoder cannot recover once it
		// hits a syntax error, but a bad line can just be dropped.
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			f := fix.Fix{}
			if err := f.UnmarshalJSON(line); err != nil {
				t.logger.Warn("Skipping unparseable line", "error", err)
				continue
			}
			send <- f
		}
		if err := scanner.Err(); err != nil {
			errs <- err
			return
		}
		errs <- io.EOF
	}()

	go func() {
		errs <- t.Populate(ctx, sort, send)
	}()

	for i := 0; i < 2; i++ {
		select {
		case err = <-errs:
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Populate runs the whole pipeline for one trajectory's incoming fixes:
// validate, dedupe, sanitize, sort, clean, classify, store, publish.
func (t *Trajectory) Populate(ctx context.Context, sort bool, in <-chan fix.Fix) (lastErr error) {

	// Blocking.
	t.logger.Info("Populate blocking on lock state")
	_, err := t.WithState(false)
	if err != nil {
		t.logger.Error("Failed to create trajectory state", "error", err)
		return err
	}
	t.logger.Info("Populate has the lock on state conn")
	started := time.Now()
	defer func() {
		if err := t.Close(); err != nil {
			t.logger.Error("Failed to close trajectory state", "error", err)
		} else {
			t.logger.Debug("Closed trajectory state")
		}
		t.logger.Info("Populate done",
			"elapsed", time.Since(started).Round(time.Millisecond))
	}()

	dedupePass := fix.NewDedupeLRUFunc(10_000)
	validated := stream.Filter(ctx, func(f fix.Fix) bool {
		if f.IsEmpty() {
			t.logger.Error("Invalid fix: fix is empty")
			return false
		}
		if err := f.Validate(); err != nil {
			t.logger.Error("Invalid fix", "error", err)
			return false
		}
		if got := f.TrajectoryID(); got != t.ID {
			t.logger.Error("Invalid fix, mismatched trajectory",
				"want", fmt.Sprintf("%q", t.ID), "got", fmt.Sprintf("%q", got))
			return false
		}
		if !dedupePass(f) {
			t.logger.Warn("Deduped fix", "fix", f.StringPretty())
			return false
		}
		return true
	}, in)

	sanitized := stream.Transform(ctx, fix.Sanitize, validated)

	// Sorting buffers a window; only worth it for out-of-order uploads.
	pipedLast := sanitized
	if sort {
		pipedLast = stream.RingSort(ctx, params.DefaultBatchSize,
			fix.SlicesSortFunc, sanitized)
	}

	cleaned := t.CleanFixes(ctx, pipedLast)
	classified := t.ClassifyFixes(ctx, cleaned)
	stored, storeErrs := t.StoreFixes(ctx, classified)

	// Fan stored fixes out to the last-known caches and the live feed.
	t.State.Waiting.Add(1)
	go func() {
		defer t.State.Waiting.Done()
		stream.Sink(ctx, func(f fix.Fix) {
			cp := f.Copy()
			cache.SetLastKnownTTL(t.ID, cp)
			if err := t.State.StoreLastFix(cp); err != nil {
				t.logger.Error("Failed to store last fix", "error", err)
			}
			events.NewClassifiedFixFeed.Send(cp)
		}, stored)
	}()

	// Block on any store errors, returning last.
	t.logger.Info("Blocking on store fixes gz")
	stream.Sink(ctx, func(e error) {
		lastErr = e
		t.logger.Error("Failed to populate fix", "error", lastErr)
	}, storeErrs)

	t.logger.Info("Blocking on trajectory pipelines")
	t.State.Waiting.Wait()
	return lastErr
}
