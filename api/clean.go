package api

import (
	"context"

	"github.com/motionlog/motiond/geo/cleaner"
	"github.com/motionlog/motiond/stream"
	"github.com/motionlog/motiond/types/fix"
)

// CleanFixes runs the pre-engine filters, in order: structural
// validity, accuracy, absolute speed, urban canyon shifts, teleports.
func (t *Trajectory) CleanFixes(ctx context.Context, in <-chan fix.Fix) <-chan fix.Fix {
	valid := stream.Filter(ctx, func(f fix.Fix) bool {
		return cleaner.FilterValid(&f)
	}, in)
	accurate := stream.Filter(ctx, func(f fix.Fix) bool {
		return cleaner.FilterAccuracy(&f)
	}, valid)
	slow := stream.Filter(ctx, func(f fix.Fix) bool {
		return cleaner.FilterSpeed(&f)
	}, accurate)

	wang := &cleaner.WangUrbanCanyonFilter{}
	uncanyoned := wang.Filter(ctx, slow)
	return cleaner.TeleportationFilter(ctx, uncanyoned)
}
