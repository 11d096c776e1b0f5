// Command seed fills a running housecup server with a generated competition
// and verifies the served ranking.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/housecup/internal/seed"
	"github.com/okian/housecup/pkg/logger"
)

// Default configuration constants.
const (
	defaultHouses          = 4
	defaultCategories      = 3
	defaultPlayersPerHouse = 5
	defaultEvents          = 200
	defaultGroupRatio      = 0.25
	defaultReplayRatio     = 0.1
	defaultWorkers         = 2 // multiplier for runtime.NumCPU()
	defaultTimeout         = 30 * time.Second
	defaultSettleTimeout   = 30 * time.Second
	defaultRunTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		houses      = flag.Int("houses", defaultHouses, "Number of houses")
		categories  = flag.Int("categories", defaultCategories, "Number of categories")
		players     = flag.Int("players", defaultPlayersPerHouse, "Players per house and category")
		events      = flag.Int("events", defaultEvents, "Number of events to schedule and complete")
		groupRatio  = flag.Float64("group-ratio", defaultGroupRatio, "Share of events scored per house")
		replayRatio = flag.Float64("replay-ratio", defaultReplayRatio, "Share of commits resent with the same idempotency key")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent requests")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle      = flag.Duration("settle", defaultSettleTimeout, "How long to wait for the ranking to converge")
		seedValue   = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Generator seed")
		outputFile  = flag.String("output", "", "Write the generated competition to this JSON file")
		verbose     = flag.Bool("verbose", false, "Log every standing after verification")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *houses < 1 || *categories < 1 || *events < 0 {
		os.Stderr.WriteString("houses and categories must be at least 1 and events not negative\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:         *baseURL,
		Houses:          *houses,
		Categories:      *categories,
		PlayersPerHouse: *players,
		Events:          *events,
		GroupRatio:      *groupRatio,
		ReplayRatio:     *replayRatio,
		Workers:         *workers,
		Timeout:         *timeout,
		SettleTimeout:   *settle,
		Seed:            *seedValue,
		OutputFile:      *outputFile,
		Verbose:         *verbose,
	}

	if _, err := seed.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "seeding failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
