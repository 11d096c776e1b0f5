package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/types"
	"github.com/okian/housecup/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

const settlePollInterval = 50 * time.Millisecond

type rankingResponse struct {
	Scope     string           `json:"scope"`
	Revision  uint64           `json:"revision"`
	Standings []types.Standing `json:"standings"`
}

type commitResponse struct {
	Event    model.Event `json:"event"`
	Replayed bool        `json:"replayed"`
}

// Run executes a complete seeding run and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("seed")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting seeding run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("houses", cfg.Houses),
		logger.Int("categories", cfg.Categories),
		logger.Int("events", cfg.Events),
		logger.Int("workers", cfg.Workers),
		logger.Uint64("seed", cfg.Seed),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if _, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil, http.StatusOK); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the competition
	comp := Generate(cfg)
	if cfg.OutputFile != "" {
		if err := save(cfg.OutputFile, comp); err != nil {
			log.Warn(ctx, "failed to save competition", logger.Error(err))
		}
	}

	// Step 3: Create the roster
	if err := createRoster(ctx, c, cfg.Workers, comp, stats); err != nil {
		return stats, fmt.Errorf("roster creation failed: %w", err)
	}

	// Step 4: Commit results concurrently
	if err := commitAll(ctx, c, cfg, comp, stats); err != nil {
		return stats, fmt.Errorf("result commits failed: %w", err)
	}

	// Step 5: Wait for the board and verify it
	want := expectedStandings(comp)
	got, err := awaitRanking(ctx, c, cfg.SettleTimeout, len(comp.Houses), want)
	if err != nil {
		return stats, err
	}
	stats.RankingRevision = got.Revision
	if err := verify(want, got.Standings); err != nil {
		return stats, fmt.Errorf("ranking verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	display(ctx, stats, got.Standings, cfg.Verbose)
	return stats, nil
}

func createRoster(ctx context.Context, c *client, workers int, comp Competition, stats *Stats) error {
	for _, h := range comp.Houses {
		if _, err := c.do(ctx, http.MethodPost, "/houses", h, nil, nil, http.StatusCreated); err != nil {
			return err
		}
		stats.Houses++
	}
	for _, cat := range comp.Categories {
		if _, err := c.do(ctx, http.MethodPost, "/categories", cat, nil, nil, http.StatusCreated); err != nil {
			return err
		}
		stats.Categories++
	}

	var players atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, p := range comp.Players {
		g.Go(func() error {
			if _, err := c.do(gctx, http.MethodPost, "/players", p, nil, nil, http.StatusCreated); err != nil {
				return err
			}
			players.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	stats.Players = int(players.Load())

	for _, e := range comp.Events {
		body := map[string]any{
			"id":          e.ID,
			"name":        e.Name,
			"type":        e.Type,
			"category_id": e.CategoryID,
			"schedule":    e.Schedule,
		}
		if _, err := c.do(ctx, http.MethodPost, "/events", body, nil, nil, http.StatusCreated); err != nil {
			return err
		}
		stats.Events++
	}
	return nil
}

func commitAll(ctx context.Context, c *client, cfg *Config, comp Competition, stats *Stats) error {
	var commits, replays, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for i, e := range comp.Events {
		key := uuid.NewString()
		resend := cfg.ReplayRatio > 0 && float64(i%100) < cfg.ReplayRatio*100
		g.Go(func() error {
			body := map[string]any{"results": comp.Results[e.ID]}
			headers := map[string]string{"Idempotency-Key": key}
			path := "/events/" + e.ID + "/results"

			if _, err := c.do(gctx, http.MethodPost, path, body, nil, headers, http.StatusCreated); err != nil {
				failed.Add(1)
				return err
			}
			commits.Add(1)
			if !resend {
				return nil
			}
			var resp commitResponse
			if _, err := c.do(gctx, http.MethodPost, path, body, &resp, headers, http.StatusOK); err != nil {
				failed.Add(1)
				return err
			}
			if !resp.Replayed {
				failed.Add(1)
				return fmt.Errorf("event %s: resend was not a replay", e.ID)
			}
			replays.Add(1)
			return nil
		})
	}
	err := g.Wait()
	stats.Commits = int(commits.Load())
	stats.Replays = int(replays.Load())
	stats.Failed = int(failed.Load())
	return err
}

// awaitRanking polls /ranking until it matches want or the timeout passes.
// The last ranking read is returned either way.
func awaitRanking(ctx context.Context, c *client, timeout time.Duration, houses int, want []types.Standing) (rankingResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	path := fmt.Sprintf("/ranking?scope=all&limit=%d", max(houses, 1))
	ticker := time.NewTicker(settlePollInterval)
	defer ticker.Stop()

	var last rankingResponse
	for {
		var got rankingResponse
		if _, err := c.do(ctx, http.MethodGet, path, nil, &got, nil, http.StatusOK); err == nil {
			last = got
			if verify(want, got.Standings) == nil {
				return got, nil
			}
		}
		select {
		case <-ctx.Done():
			return last, nil
		case <-ticker.C:
		}
	}
}

func save(filename string, comp Competition) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(comp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal competition: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}

func display(ctx context.Context, stats *Stats, standings []types.Standing, verbose bool) {
	log := logger.Get().Named("seed")
	log.Info(ctx, "final statistics",
		logger.Int("houses", stats.Houses),
		logger.Int("categories", stats.Categories),
		logger.Int("players", stats.Players),
		logger.Int("events", stats.Events),
		logger.Int("commits", stats.Commits),
		logger.Int("replays", stats.Replays),
		logger.Int("failed", stats.Failed),
		logger.Uint64("revision", stats.RankingRevision),
		logger.Duration("duration", stats.Duration),
	)
	if !verbose {
		return
	}
	for _, s := range standings {
		log.Info(ctx, "standing",
			logger.Int("rank", s.Rank),
			logger.String("house", s.Name),
			logger.Int64("score", s.Score),
		)
	}
}
