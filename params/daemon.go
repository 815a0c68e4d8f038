package params

import "time"

type ListenerConfig struct {
	Network string
	Address string
}

type WebDaemonConfig struct {
	ListenerConfig
	DataDir string
	// Token authenticates populate requests; empty disables auth.
	Token string
}

func DefaultWebDaemonConfig() *WebDaemonConfig {
	return &WebDaemonConfig{
		ListenerConfig: ListenerConfig{
			Network: "tcp",
			Address: ":3600",
		},
		DataDir: DatadirRoot,
	}
}

// RGeoConfig controls the reverse-geocode tag layer.
type RGeoConfig struct {
	// CellLevel is the s2 cell level keying the tag cache.
	// Level 16 cells are roughly 150m across; a station tag is valid
	// for anything in the same cell.
	CellLevel int
	CacheSize int
	CacheTTL  time.Duration
}

var DefaultRGeoConfig = &RGeoConfig{
	CellLevel: 16,
	CacheSize: 4096,
	CacheTTL:  6 * time.Hour,
}
