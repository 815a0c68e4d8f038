package cleaner

import (
	"context"

	"github.com/motionlog/motiond/common"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/fix"
	"github.com/paulmach/orb/geo"
)

func TeleportationFilter(ctx context.Context, in <-chan fix.Fix) <-chan fix.Fix {
	out := make(chan fix.Fix)

	go func() {
		defer close(out)

		cfg := params.DefaultCleanConfig
		var last *fix.Fix

		for f := range in {
			f := f

			// The first fix is always sent.
			if last == nil {
				out <- f
				last = &f
				continue
			}

			interval := f.MustTime().Sub(last.MustTime())

			// Duplicates and out-of-order fixes are noise.
			if interval <= 0 {
				continue
			}

			// Signal loss is not teleportation.
			if interval > cfg.TeleportInterval {
				out <- f
				last = &f
				continue
			}

			dist := geo.Distance(last.Point(), f.Point())
			calculated := dist / interval.Seconds() * common.MsToKmh
			if calculated > cfg.TeleportAbsoluteMaxKmh {
				continue
			}

			// Compare the implied speed against the reported speed.
			// A jump the reported speed cannot explain is a teleport.
			if reported := f.SpeedKmh(); reported > 0 &&
				calculated > reported*cfg.TeleportFactor {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- f:
				last = &f
			}
		}
	}()
	return out
}
