// Package influxdb exports classified fixes to an InfluxDB v2 bucket,
// one point per fix, tagged by trajectory and mode. Good for Grafana
// panels of who was on a train when.
package influxdb

import (
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/fix"
)

// ExportFixes posts fixes to an InfluxDB Write API.
// Because it accepts a slice, use batches. The Write API will buffer and flush.
// The last error encountered is returned.
func ExportFixes(fixes []fix.Fix) error {
	opts := influxdb2.DefaultOptions()
	opts.SetPrecision(time.Second)
	client := influxdb2.NewClientWithOptions(params.INFLUXDB_URL, params.INFLUXDB_TOKEN, opts)
	writeAPI := client.WriteAPI(params.INFLUXDB_ORG, params.INFLUXDB_BUCKET)

	// Errors returns a channel for reading errors which occur during async writes.
	// Must be called before performing any writes for errors to be collected.
	// The chan is unbuffered and must be drained or the writer will block.
	// https://github.com/influxdata/influxdb-client-go?tab=readme-ov-file#reading-async-errors
	errorsCh := writeAPI.Errors()
	var err error
	wait := sync.WaitGroup{}
	wait.Add(1)
	go func() {
		defer wait.Done()
		for e := range errorsCh {
			if e != nil {
				err = e
			}
		}
	}()

	for i := range fixes {
		f := &fixes[i]
		p := influxdb2.NewPointWithMeasurement("fix").
			SetTime(f.MustTime()).
			AddTag("trajectory", f.TrajectoryID().String()).
			AddField("latitude", f.Point().Lat()).
			AddField("longitude", f.Point().Lon())

		if m, ok := f.Properties["Mode"].(string); ok {
			// Mode as tag for grouping, and as field for display.
			p.AddTag("mode", m)
			p.AddField("mode", m)
		}
		if v, ok := f.Properties["ModeConfidence"]; ok {
			p.AddField("mode_confidence", v)
		}
		if v, ok := f.Properties["ModeReason"]; ok {
			p.AddField("mode_reason", v)
		}
		if speed := f.SpeedKmh(); speed >= 0 {
			p.AddField("speed_kmh", speed)
		}
		if v, ok := f.Properties["Accuracy"]; ok {
			p.AddField("accuracy", v)
		}
		if v, ok := f.Properties["Elevation"]; ok {
			p.AddField("elevation", v)
		}
		if v, ok := f.Properties["Heading"]; ok {
			p.AddField("heading", v)
		}
		if v, ok := f.Properties["TimeOffset"]; ok {
			p.AddField("time_offset", v)
		}
		writeAPI.WritePoint(p)
	}
	writeAPI.Flush()
	client.Close()
	wait.Wait()
	return err
}
