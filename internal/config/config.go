// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers an optional YAML file and HOUSECUP_* env vars on top.
// - Validation errors wrap ErrInvalidConfig; loading errors wrap ErrLoadConfig.
package config

// Store drivers accepted by StoreDriver.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the change notification queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many commit idempotency keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankingLimit caps GET /ranking?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// StrictPlacements makes commits reject placements missing from the schedule.
	StrictPlacements bool `koanf:"strict_placements"`

	// StoreDriver selects the repository backend: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`

	// NATSURL enables scoreboard fan-out over NATS when non-empty.
	NATSURL string `koanf:"nats_url"`

	// NATSSubject is the subject scoreboard updates are published on.
	NATSSubject string `koanf:"nats_subject"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        1024,
		WorkerCount:      2,
		DedupeSize:       10_000,
		MaxRankingLimit:  100,
		StrictPlacements: false,
		StoreDriver:      StoreMemory,
		SQLitePath:       "housecup.db",
		NATSURL:          "",
		NATSSubject:      "housecup.scoreboard",
	}
}
