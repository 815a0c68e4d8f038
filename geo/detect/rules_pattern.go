package detect

import (
	"github.com/motionlog/motiond/geo/physics"
	"github.com/motionlog/motiond/geo/signal"
	"github.com/motionlog/motiond/types/mode"
)

// Speed-variance vote thresholds. Trains cruise at near-constant
// speed; cars in traffic do not.
const (
	varianceTrainMaxCV = 0.15
	varianceCarMinCV   = 0.4
)

type voteSignal struct {
	mode mode.Mode
	conf float64
}

// MultiSignalRule handles the 40-130 km/h band where car and train
// overlap and no single measurement is trustworthy. It collects
// independent weak signals and only speaks when a quorum agrees; the
// combined confidence grows with the size of the quorum.
type MultiSignalRule struct{}

func (r *MultiSignalRule) Name() string  { return "multi_signal" }
func (r *MultiSignalRule) Priority() int { return PriorityMultiSignal }

func (r *MultiSignalRule) CanApply(ctx *Context) bool {
	return ctx.SpeedValid() && ctx.InAmbiguousBand() &&
		len(ctx.Window) >= ctx.Policy.Straight.MinPoints
}

func (r *MultiSignalRule) Detect(ctx *Context) *Result {
	signals := collectSignals(ctx)

	cfg := ctx.Policy.Combiner
	kept := signals[:0]
	for _, s := range signals {
		if s.conf >= cfg.MinSignalConfidence {
			kept = append(kept, s)
		}
	}

	// Deterministic winner: fixed candidate order breaks vote ties.
	var best mode.Mode
	bestCount, bestSum := 0, 0.0
	for _, m := range []mode.Mode{mode.Train, mode.Car, mode.Cycling, mode.Walking} {
		count, sum := 0, 0.0
		for _, s := range kept {
			if s.mode == m {
				count++
				sum += s.conf
			}
		}
		if count > bestCount || (count == bestCount && sum > bestSum) {
			best, bestCount, bestSum = m, count, sum
		}
	}
	if bestCount < cfg.MinAgreeing {
		return nil
	}

	bonus := cfg.BonusPerSignal * float64(bestCount)
	if bonus > cfg.BonusCap {
		bonus = cfg.BonusCap
	}
	combined := bestSum/float64(bestCount) + bonus
	if combined > cfg.ResultCap {
		combined = cfg.ResultCap
	}
	if combined < cfg.MinCombined {
		return nil
	}
	return &Result{
		Mode:       best,
		Confidence: combined,
		Reason:     mode.ReasonMultiSignal.Detail("%d signals agree", bestCount),
	}
}

func collectSignals(ctx *Context) []voteSignal {
	var out []voteSignal

	// Tight sampling cadence means turn-by-turn navigation.
	if ctx.Sampling == signal.SamplingActiveNavigation {
		out = append(out, voteSignal{mode.Car, 0.6})
	}

	speeds := make([]float64, 0, len(ctx.Window))
	for _, s := range ctx.Window {
		if s.SpeedKmh >= 0 {
			speeds = append(speeds, s.SpeedKmh)
		}
	}
	if len(speeds) >= 3 {
		stats := signal.Variance(speeds)
		switch {
		case stats.CV < varianceTrainMaxCV:
			out = append(out, voteSignal{mode.Train, 0.65})
		case stats.CV > varianceCarMinCV:
			out = append(out, voteSignal{mode.Car, 0.6})
		}

		switch signal.Smoothness(speeds, ctx.Policy.Smoothness).Class {
		case signal.SmoothnessSmooth:
			out = append(out, voteSignal{mode.Train, 0.6})
		case signal.SmoothnessErratic:
			out = append(out, voteSignal{mode.Car, 0.6})
		}
	}

	if a := signal.AnalyzeStops(ctx.Window, ctx.Policy.Stops); a.Pattern != signal.PatternUnknown {
		if m, ok := patternMode(a.Pattern); ok {
			out = append(out, voteSignal{m, a.Confidence})
		}
	}

	if m := ctx.BracketMode(); m.IsKnown() {
		out = append(out, voteSignal{m, 0.55})
	}
	return out
}

func patternMode(p signal.StopPattern) (mode.Mode, bool) {
	switch p {
	case signal.PatternTrainLike:
		return mode.Train, true
	case signal.PatternUrbanCar, signal.PatternHighwayCar:
		return mode.Car, true
	case signal.PatternWalking:
		return mode.Walking, true
	}
	return mode.Unknown, false
}

// StopPatternRule classifies by how the mover stops, outside the
// ambiguous band too. It needs a real stretch of path to say anything.
type StopPatternRule struct{}

func (r *StopPatternRule) Name() string  { return "stop_pattern" }
func (r *StopPatternRule) Priority() int { return PriorityStopPattern }

func (r *StopPatternRule) CanApply(ctx *Context) bool {
	return ctx.Speed() >= 0 && len(ctx.Window) >= ctx.Policy.Straight.MinPoints
}

func (r *StopPatternRule) Detect(ctx *Context) *Result {
	a := signal.AnalyzeStops(ctx.Window, ctx.Policy.Stops)
	if a.Pattern == signal.PatternUnknown || a.PathMeters < 500 {
		return nil
	}
	m, ok := patternMode(a.Pattern)
	if !ok || !physics.IsPhysicallyPossible(m, ctx.Speed()) {
		return nil
	}
	return &Result{
		Mode:       m,
		Confidence: a.Confidence,
		Reason:     mode.ReasonStopPattern.Detail("%s", a.Pattern),
	}
}
