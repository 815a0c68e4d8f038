package api

import (
	"context"

	"github.com/motionlog/motiond/common"
	"github.com/motionlog/motiond/geo/detect"
	"github.com/motionlog/motiond/geo/signal"
	"github.com/motionlog/motiond/rgeo"
	"github.com/motionlog/motiond/stream"
	"github.com/motionlog/motiond/types/fix"
	"github.com/motionlog/motiond/types/mode"
)

// ClassifyFixes runs the detection engine over the stream and annotates
// each fix with its mode, confidence, and reason. Strictly in-order and
// one at a time; that is the engine's concurrency contract.
func (t *Trajectory) ClassifyFixes(ctx context.Context, in <-chan fix.Fix) <-chan fix.Fix {
	return stream.Transform(ctx, func(f fix.Fix) fix.Fix {
		smp := signal.Sample{
			Point:    f.Point(),
			Time:     f.MustTime(), // cleaned upstream
			SpeedKmh: f.SpeedKmh(),
		}
		tags := t.resolver.Tags(&f)
		res := t.engine.Process(t.arena, smp, tags)

		f.Properties["Mode"] = res.Mode.String()
		f.Properties["ModeConfidence"] = common.DecimalToFixed(res.Confidence, 3)
		f.Properties["ModeReason"] = string(res.Reason)
		t.namePlaces(&f, smp, res)
		return f
	}, in)
}

// namePlaces fills in place names from the offline geocoder, when it
// is loaded. A journey begun without a station or airport tag (eg. a
// retroactive one) gets its start named by region, and fixes ending a
// journey get a Place property for the arrival region.
func (t *Trajectory) namePlaces(f *fix.Fix, smp signal.Sample, res detect.Result) {
	if _, ok := rgeo.R(); !ok {
		return
	}
	if j := t.arena.ActiveJourney(); j != nil && j.StartPlace == "" {
		if place, ok := rgeo.RegionName(smp.Point); ok {
			j.StartPlace = place
		}
	}
	switch res.Reason.Code() {
	case mode.ReasonJourneyArrival, mode.ReasonJourneySlowdown, mode.ReasonJourneyTimeout:
		if place, ok := rgeo.RegionName(smp.Point); ok {
			f.Properties["Place"] = place
		}
	}
}
