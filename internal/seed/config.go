// Package seed drives a running scoreboard server with a generated
// competition and checks the served ranking against a local aggregation.
package seed

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL         string        // Base URL of the service
	Houses          int           // Number of houses to create
	Categories      int           // Number of categories to create
	PlayersPerHouse int           // Players created per house and category
	Events          int           // Number of events to schedule and complete
	GroupRatio      float64       // Share of events scored per house
	ReplayRatio     float64       // Share of commits resent with the same idempotency key
	Workers         int           // Concurrent HTTP requests
	Timeout         time.Duration // HTTP request timeout
	SettleTimeout   time.Duration // How long to wait for the board to catch up
	Seed            uint64        // Generator seed; equal seeds give equal competitions
	OutputFile      string        // Optional JSON dump of the generated competition
	Verbose         bool          // Log every standing after verification
}

// Stats holds run statistics.
type Stats struct {
	Houses          int
	Categories      int
	Players         int
	Events          int
	Commits         int
	Replays         int
	Failed          int
	RankingRevision uint64
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
