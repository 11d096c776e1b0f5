package seed

import (
	"errors"
	"fmt"

	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/results"
	"github.com/okian/housecup/internal/domain/scoring"
	"github.com/okian/housecup/internal/domain/types"
)

// ErrMismatch is returned when the served ranking differs from the local one.
var ErrMismatch = errors.New("ranking mismatch")

// expectedStandings aggregates the competition locally, committing each
// event's results the way the server does.
func expectedStandings(comp Competition) []types.Standing {
	events := make([]model.Event, 0, len(comp.Events))
	for _, e := range comp.Events {
		committed, err := results.Validate(e.Schedule, comp.Results[e.ID])
		if err != nil {
			continue
		}
		e.Status = model.StatusCompleted
		e.Results = committed
		events = append(events, e)
	}
	board := scoring.Aggregate(comp.Houses, comp.Categories, comp.Players, events)
	return board.Standings(comp.Houses, scoring.ScopeAll)
}

// verify compares standings position by position.
func verify(want, got []types.Standing) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: want %d standings, got %d", ErrMismatch, len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if w.HouseID != g.HouseID || w.Score != g.Score || w.Rank != g.Rank {
			return fmt.Errorf("%w at position %d: want %s/%d/#%d, got %s/%d/#%d",
				ErrMismatch, i+1, w.HouseID, w.Score, w.Rank, g.HouseID, g.Score, g.Rank)
		}
	}
	return nil
}
