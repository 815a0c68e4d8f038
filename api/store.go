package api

import (
	"context"
	"encoding/json"

	"github.com/motionlog/motiond/stream"
	"github.com/motionlog/motiond/types/fix"
)

// StoreFixes appends incoming classified fixes to the trajectory's
// flat-file record. Stored fixes are forwarded; encode failures go to
// the error channel without breaking the stream.
func (t *Trajectory) StoreFixes(ctx context.Context, in <-chan fix.Fix) (stored <-chan fix.Fix, errs <-chan error) {
	storedCh, errCh := make(chan fix.Fix), make(chan error)

	t.logger.Info("Storing classified fixes gz")

	t.State.Waiting.Add(1)
	go func() {
		defer close(storedCh)
		defer close(errCh)
		defer t.State.Waiting.Done()

		storedN := int64(0)
		defer func() {
			t.logger.Info("Stored classified fixes gz", "count", storedN)
		}()

		wr, err := t.State.FixesGZWriter()
		if err != nil {
			t.logger.Error("Failed to create fix writer", "error", err)
			errCh <- err
			return
		}
		defer func() {
			if err := wr.Close(); err != nil {
				t.logger.Error("Failed to close fix writer", "error", err)
			}
		}()

		enc := json.NewEncoder(wr.Writer())

		storeResults := stream.Transform(ctx, func(f fix.Fix) any {
			if err := enc.Encode(f); err != nil {
				t.logger.Error("Failed to encode fix gz", "error", err)
				return err
			}
			storedN++
			return f
		}, in)

		// Block on sending stored results to respective channels,
		// but permitting context interruption.
		for result := range storeResults {
			select {
			case <-ctx.Done():
				return
			default:
			}

			switch v := result.(type) {
			case error:
				errCh <- v
			case fix.Fix:
				storedCh <- v
			default:
				panic("impossible")
			}
		}
	}()

	return storedCh, errCh
}
