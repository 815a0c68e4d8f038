package params

import (
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
)

const (
	TrajectoriesDir = "trajectories"

	StateDBName = "state.db"
)

var StateBucket = []byte("state")

var DatadirRoot = func() string {
	home, err := homedir.Dir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".motiond")
}()

var DefaultBatchSize = 10_000
var DefaultBufferSize = 100_000

// MetricsEnabled gates the go-ethereum metrics package, which is
// disabled globally unless something flips it on.
var MetricsEnabled = true

var (
	CacheLastPushTTL  = 1 * 24 * time.Hour
	CacheLastKnownTTL = 7 * 24 * time.Hour
)

// InfluxDB export configuration, from the environment.
var (
	INFLUXDB_URL    = os.Getenv("INFLUXDB_URL")
	INFLUXDB_TOKEN  = os.Getenv("INFLUXDB_TOKEN")
	INFLUXDB_ORG    = os.Getenv("INFLUXDB_ORG")
	INFLUXDB_BUCKET = os.Getenv("INFLUXDB_BUCKET")
)

// AWS_BUCKETNAME is the S3 bucket for state snapshot backups.
// Empty disables backups.
var AWS_BUCKETNAME = os.Getenv("AWS_BUCKETNAME")
