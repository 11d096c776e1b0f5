package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/okian/housecup/internal/adapters/mq/worker"
	"github.com/okian/housecup/internal/adapters/repository"
	"github.com/okian/housecup/internal/domain/scoring"
	"github.com/okian/housecup/internal/domain/types"
)

// Scoreboard returns the published scoreboard. It is rebuilt inline when
// nothing was published yet, or when it lags the store while the change
// queue is saturated and the workers cannot be relied on to catch up.
func (s *Service) Scoreboard(ctx context.Context) (*worker.Published, error) {
	c, err := s.components()
	if err != nil {
		return nil, err
	}
	p := c.board.Load()
	if p == nil || (p.Revision < c.store.Revision(ctx) && c.changes.Len(ctx) >= c.changes.Cap()) {
		p, err = c.recomputer.Recompute(ctx)
		if err != nil {
			return nil, err
		}
		s.syncRecomputes.Add(1)
	}
	return p, nil
}

// Board returns the published scoreboard in its client shape.
func (s *Service) Board(ctx context.Context) (types.Board, error) {
	p, err := s.Scoreboard(ctx)
	if err != nil {
		return types.Board{}, err
	}
	return p.Board, nil
}

// Ranking returns houses ranked by their points in scope, which is
// scoring.ScopeAll or a category id. A limit of zero returns every house up
// to the configured maximum; larger limits are capped.
func (s *Service) Ranking(ctx context.Context, scope string, limit int) ([]types.Standing, uint64, error) {
	if limit < 0 {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = scoring.ScopeAll
	}
	if limit == 0 || limit > s.maxRankingLimit {
		limit = s.maxRankingLimit
	}

	p, err := s.Scoreboard(ctx)
	if err != nil {
		return nil, 0, err
	}
	var standings []types.Standing
	if scope == scoring.ScopeAll {
		// The published ranking is shared; hand out a copy.
		standings = slices.Clone(p.Board.Ranking)
	} else {
		standings = p.Scoreboard.Standings(p.Houses, scope)
	}
	if len(standings) > limit {
		standings = standings[:limit]
	}
	return standings, p.Revision, nil
}

// HouseBreakdown returns a house's total and per-category points.
func (s *Service) HouseBreakdown(ctx context.Context, houseID string) (types.HouseSummary, error) {
	p, err := s.Scoreboard(ctx)
	if err != nil {
		return types.HouseSummary{}, err
	}
	if summary, ok := summarize(p, houseID); ok {
		return summary, nil
	}

	// The house may be newer than the published board.
	c, err := s.components()
	if err != nil {
		return types.HouseSummary{}, err
	}
	if _, err := c.store.House(ctx, houseID); err != nil {
		return types.HouseSummary{}, err
	}
	if p, err = c.recomputer.Recompute(ctx); err != nil {
		return types.HouseSummary{}, err
	}
	s.syncRecomputes.Add(1)
	if summary, ok := summarize(p, houseID); ok {
		return summary, nil
	}
	return types.HouseSummary{}, fmt.Errorf("house %q: %w", houseID, repository.ErrNotFound)
}

func summarize(p *worker.Published, houseID string) (types.HouseSummary, bool) {
	for _, h := range p.Houses {
		if h.ID != houseID {
			continue
		}
		return types.HouseSummary{
			HouseID:   h.ID,
			Name:      h.Name,
			Color:     h.Color,
			Total:     p.Scoreboard.Totals[h.ID],
			Breakdown: maps.Clone(p.Scoreboard.Breakdown[h.ID]),
			Revision:  p.Revision,
		}, true
	}
	return types.HouseSummary{}, false
}
