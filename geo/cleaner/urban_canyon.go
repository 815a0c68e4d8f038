package cleaner

import (
	"context"

	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/fix"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

type WangUrbanCanyonFilter struct {
	Filtered int
}

// Filter drops spurious points which can occur in urban canyons.
// > Wang: Third, GPS points away from
// > the adjacent points due to the signal shift caused by
// > blocking or ‘‘urban canyon’’ effect are also deleted. As
// > is shown in Figure 2, GPS points away from both the
// > before and after 5 points center for more than 200 m
// > should be considered as shift points.
func (w *WangUrbanCanyonFilter) Filter(ctx context.Context, in <-chan fix.Fix) <-chan fix.Fix {
	out := make(chan fix.Fix)

	bufferFront, bufferBack := 5, 5
	bufferSize := bufferFront + 1 + bufferBack
	buffer := make([]*fix.Fix, 0, bufferSize)
	evaluated := false

	go func() {
		defer close(out)
		for f := range in {
			f := f

			buffer = append(buffer, &f)
			if len(buffer) < bufferSize {
				// The leading fixes flush unfiltered; there are no
				// head points to compare them against.
				if len(buffer) < bufferFront+1 {
					out <- f
				}
				continue
			}
			for len(buffer) > bufferSize {
				buffer = buffer[1:]
			}

			head := buffer[:bufferFront]
			target := buffer[bufferFront]
			tail := buffer[bufferFront+1:]
			evaluated = true

			// Signal loss is not eligible for filtering.
			if tail[len(tail)-1].MustTime().Sub(head[0].MustTime()) > params.DefaultCleanConfig.WangUrbanCanyonWindow {
				select {
				case <-ctx.Done():
					return
				case out <- *target:
				}
				continue
			}

			headCenter, _ := planar.CentroidArea(orb.MultiPoint{
				head[0].Point(), head[1].Point(), head[2].Point(), head[3].Point(), head[4].Point()})
			tailCenter, _ := planar.CentroidArea(orb.MultiPoint{
				tail[0].Point(), tail[1].Point(), tail[2].Point(), tail[3].Point(), tail[4].Point()})

			if geo.Distance(headCenter, target.Point()) > params.DefaultCleanConfig.WangUrbanCanyonDistance &&
				geo.Distance(tailCenter, target.Point()) > params.DefaultCleanConfig.WangUrbanCanyonDistance {
				w.Filtered++
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- *target:
			}
		}

		// Any and all tailing fixes get sent. The pivot slot was
		// already emitted if it ever came up for evaluation.
		start := bufferFront
		if evaluated {
			start = bufferFront + 1
		}
		if len(buffer) > start {
			for _, f := range buffer[start:] {
				select {
				case <-ctx.Done():
					return
				case out <- *f:
				}
			}
		}
	}()

	return out
}
