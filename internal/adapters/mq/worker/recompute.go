package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/scoring"
	"github.com/okian/housecup/internal/domain/types"
	"github.com/okian/housecup/pkg/logger"
	"github.com/okian/housecup/pkg/metrics"
)

// Snapshotter is the part of the repository the recomputer reads.
type Snapshotter interface {
	Snapshot(ctx context.Context) (model.Snapshot, error)
}

// Notifier receives every newly published scoreboard.
type Notifier interface {
	Notify(ctx context.Context, b types.Board) error
}

// Recomputer rebuilds the scoreboard from a store snapshot and publishes it.
// It is safe for concurrent use; the Board keeps the newest result.
type Recomputer struct {
	store    Snapshotter
	board    *Board
	notifier Notifier
	logger   logger.Logger

	notifyMu     sync.Mutex
	lastNotified uint64
}

// RecomputerOption configures a Recomputer.
type RecomputerOption func(*Recomputer)

// WithNotifier publishes every new scoreboard through n.
func WithNotifier(n Notifier) RecomputerOption {
	return func(r *Recomputer) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithRecomputerLogger sets a custom logger.
func WithRecomputerLogger(l logger.Logger) RecomputerOption {
	return func(r *Recomputer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecomputer creates a recomputer reading store and publishing into board.
func NewRecomputer(store Snapshotter, board *Board, opts ...RecomputerOption) *Recomputer {
	r := &Recomputer{
		store:  store,
		board:  board,
		logger: logger.Get().Named("recomputer"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Board returns the holder this recomputer publishes into.
func (r *Recomputer) Board() *Board {
	return r.board
}

// Recompute aggregates the current store state and publishes it when it is
// newer than the current scoreboard. It returns the scoreboard current after
// the call, which may be a newer one published concurrently.
func (r *Recomputer) Recompute(ctx context.Context) (*Published, error) {
	snap, err := r.store.Snapshot(ctx)
	if err != nil {
		metrics.RecordWorkerError("snapshot")
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if cur := r.board.Load(); cur != nil && cur.Revision >= snap.Revision {
		metrics.RecordRecomputeCoalesced()
		return cur, nil
	}

	start := time.Now()
	sb := scoring.FromSnapshot(snap)
	p := &Published{
		Revision:   snap.Revision,
		Houses:     snap.Houses,
		Scoreboard: sb,
		Board: types.Board{
			Revision:  snap.Revision,
			Totals:    sb.Totals,
			Breakdown: sb.Breakdown,
			Ranking:   sb.Standings(snap.Houses, scoring.ScopeAll),
		},
		ComputedAt: time.Now(),
	}
	elapsed := time.Since(start)

	if !r.board.Publish(p) {
		metrics.RecordRecomputeCoalesced()
		return r.board.Load(), nil
	}

	metrics.RecordRecompute(float64(elapsed.Microseconds())/1000, p.Revision)
	for reason, n := range sb.SkippedByReason() {
		metrics.RecordSkippedEntries(string(reason), n)
	}
	if len(sb.Skipped) > 0 {
		r.logger.Debug(ctx, "skipped unresolved result entries",
			logger.Uint64("revision", p.Revision),
			logger.Int("count", len(sb.Skipped)),
		)
	}
	r.notify(ctx, p)
	return p, nil
}

// notify forwards p unless a newer scoreboard was already sent.
func (r *Recomputer) notify(ctx context.Context, p *Published) {
	if r.notifier == nil {
		return
	}
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	if p.Revision <= r.lastNotified {
		return
	}
	if err := r.notifier.Notify(ctx, p.Board); err != nil {
		metrics.RecordNotificationError()
		r.logger.Warn(ctx, "scoreboard notification failed",
			logger.Uint64("revision", p.Revision),
			logger.Error(err),
		)
		return
	}
	r.lastNotified = p.Revision
	metrics.RecordNotification()
}
