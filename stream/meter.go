package stream

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/motionlog/motiond/common"
	"github.com/motionlog/motiond/params"
)

// tickScanMeter logs scan throughput on an interval while a reader runs.
type tickScanMeter struct {
	label        time.Time // any value, eg fix.time
	interval     time.Duration
	started      time.Time
	ticker       *time.Ticker
	nn           atomic.Uint64
	trajectories []string
	reg          metrics.Registry
	count        metrics.Counter
	size         metrics.Counter
	countMeter   metrics.Meter
	sizeMeter    metrics.Meter
}

func newTickScanMeter(interval time.Duration) *tickScanMeter {
	// The metrics package is a no-op without this global setting.
	metrics.Enabled = params.MetricsEnabled

	reg := metrics.NewRegistry()
	rl := &tickScanMeter{
		reg:          reg,
		interval:     interval,
		started:      time.Now(),
		nn:           atomic.Uint64{},
		trajectories: []string{},
		count:        metrics.NewCounter(),
		size:         metrics.NewCounter(),
		countMeter:   metrics.NewMeter(),
		sizeMeter:    metrics.NewMeter(),
	}

	if err := reg.Register("count.count", rl.count); err != nil {
		panic(err)
	}
	if err := reg.Register("size.count", rl.size); err != nil {
		panic(err)
	}
	if err := reg.Register("line.meter", rl.countMeter); err != nil {
		panic(err)
	}
	if err := reg.Register("size.meter", rl.sizeMeter); err != nil {
		panic(err)
	}
	rl.nn.Store(0)
	go rl.run()
	return rl
}

func (rl *tickScanMeter) mark(label time.Time, data []byte) {
	rl.label = label
	rl.nn.Add(1)
	rl.count.Inc(1)
	rl.size.Inc(int64(len(data)))
	rl.countMeter.Mark(1)
	rl.sizeMeter.Mark(int64(len(data)))
}

func (rl *tickScanMeter) addTrajectory(id string) {
	// safeguard against dupe adds
	for _, t := range rl.trajectories {
		if t == id {
			return
		}
	}
	rl.trajectories = append(rl.trajectories, id)
}

func (rl *tickScanMeter) dropTrajectory(id string) {
	for i, t := range rl.trajectories {
		if t == id {
			rl.trajectories = append(rl.trajectories[:i], rl.trajectories[i+1:]...)
			break
		}
	}
}

func (rl *tickScanMeter) run() {
	rl.ticker = time.NewTicker(rl.interval)
	for range rl.ticker.C {
		rl.log()
	}
}

func (rl *tickScanMeter) log() {

	countSnap := rl.countMeter.Snapshot()
	sizeSnap := rl.sizeMeter.Snapshot()

	slog.Info("Read fixes", "n", humanize.Comma(countSnap.Count()),
		"trajectories", strings.Join(rl.trajectories, ","),
		"read.last", rl.label.Format(time.DateTime),
		"fps", common.DecimalToFixed(countSnap.Rate1(), 0),
		"bps", humanize.Bytes(uint64(sizeSnap.Rate1())),
		"total.bytes", humanize.Bytes(uint64(sizeSnap.Count())),
		"running", time.Since(rl.started).Round(time.Second))
}

func (rl *tickScanMeter) stop() {
	if rl == nil || rl.ticker == nil {
		return
	}
	rl.ticker.Stop()
	rl.countMeter.Stop()
	rl.sizeMeter.Stop()
}
