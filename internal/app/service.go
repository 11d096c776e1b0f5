// Package service wires the repository, the change pipeline and the scoring
// engine into the operations exposed by the HTTP API.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/housecup/internal/adapters/mq/queue"
	"github.com/okian/housecup/internal/adapters/mq/worker"
	"github.com/okian/housecup/internal/adapters/repository"
	"github.com/okian/housecup/internal/domain/dedupe"
	"github.com/okian/housecup/pkg/logger"
	"github.com/okian/housecup/pkg/metrics"
)

// Service implements the API dependencies for the house scoreboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	ownsStore  bool
	deduper    dedupe.Deduper
	changes    queue.Queue
	board      *worker.Board
	recomputer *worker.Recomputer
	workerPool *worker.Pool
	notifier   worker.Notifier

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	maxRankingLimit  int
	strictPlacements bool

	// State
	started bool

	// Counters reported by GetStats
	commits         atomic.Int64
	replays         atomic.Int64
	syncRecomputes  atomic.Int64
	droppedChanges  atomic.Int64
	rejectedCommits atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     2,
		queueSize:       1024,
		dedupeSize:      dedupe.DefaultMaxSize,
		maxRankingLimit: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting scoreboard service...")

	if s.store == nil || s.ownsStore {
		s.store = repository.NewMemoryStore(ctx)
		s.ownsStore = true
		s.logger.Info(ctx, "using in-memory store")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.changes = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.board = &worker.Board{}

	ropts := []worker.RecomputerOption{worker.WithRecomputerLogger(s.logger.Named("recomputer"))}
	if s.notifier != nil {
		ropts = append(ropts, worker.WithNotifier(s.notifier))
	}
	s.recomputer = worker.NewRecomputer(s.store, s.board, ropts...)

	// Publish the initial scoreboard so reads never start empty.
	if _, err := s.recomputer.Recompute(ctx); err != nil {
		s.logger.Warn(ctx, "initial recompute failed", logger.Error(err))
	}

	s.workerPool = worker.NewPool(s.workerCount, s.changes, s.recomputer)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "scoreboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Bool("strictPlacements", s.strictPlacements),
		logger.Uint64("revision", s.board.Revision()),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping scoreboard service...")

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	}
	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "store close", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "scoreboard service stopped")
}

// components holds the started components for one call.
type components struct {
	store      repository.Store
	deduper    dedupe.Deduper
	changes    queue.Queue
	board      *worker.Board
	recomputer *worker.Recomputer
}

func (s *Service) components() (components, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return components{}, ErrNotStarted
	}
	return components{
		store:      s.store,
		deduper:    s.deduper,
		changes:    s.changes,
		board:      s.board,
		recomputer: s.recomputer,
	}, nil
}

// changed announces a new store revision to the workers. When the queue
// refuses the change the scoreboard is rebuilt inline instead.
func (s *Service) changed(ctx context.Context, c components, kind queue.Kind, id string, revision uint64) {
	ok := c.changes.Enqueue(ctx, queue.Change{Kind: kind, ID: id, Revision: revision, At: time.Now()})
	if ok {
		return
	}
	s.droppedChanges.Add(1)
	s.logger.Warn(ctx, "change queue refused notification, recomputing inline",
		logger.String("kind", string(kind)),
		logger.String("id", id),
		logger.Uint64("revision", revision),
	)
	// A canceled request must not leave the board behind the store.
	if _, err := c.recomputer.Recompute(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error(ctx, "inline recompute failed", logger.Error(err))
		return
	}
	s.syncRecomputes.Add(1)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"dedupeSize":       s.dedupeSize,
		"strictPlacements": s.strictPlacements,
		"commits":          s.commits.Load(),
		"replayedCommits":  s.replays.Load(),
		"rejectedCommits":  s.rejectedCommits.Load(),
		"droppedChanges":   s.droppedChanges.Load(),
		"syncRecomputes":   s.syncRecomputes.Load(),
	}

	if s.started {
		queueLen := s.changes.Len(ctx)
		stats["queueLength"] = queueLen
		stats["storeRevision"] = s.store.Revision(ctx)
		stats["boardRevision"] = s.board.Revision()
		stats["idempotencyKeys"] = s.deduper.Size()
		if p := s.board.Load(); p != nil {
			stats["houses"] = len(p.Houses)
			stats["skippedEntries"] = len(p.Scoreboard.Skipped)
			stats["computedAt"] = p.ComputedAt.UTC().Format(time.RFC3339Nano)
		}
		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
