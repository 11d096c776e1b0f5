// Package scoring folds completed events into house totals and per-category
// breakdowns, and ranks houses from the result.
//
// Everything here is a pure function of its inputs: no shared state, no I/O,
// safe to call concurrently with different snapshots.
package scoring

import (
	"cmp"
	"slices"

	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ScopeAll ranks by total points instead of a single category.
const ScopeAll = "all"

// HouseScore maps a house id to its total points.
type HouseScore map[string]int64

// CategoryBreakdown maps a house id to its points per category id.
type CategoryBreakdown map[string]map[string]int64

// SkipReason explains why a committed entry contributed nothing.
type SkipReason string

const (
	SkipUnknownPlayer    SkipReason = "unknown_player"
	SkipUnknownHouse     SkipReason = "unknown_house"
	SkipUnknownPlacement SkipReason = "unknown_placement"
)

// Skip records a committed entry that did not resolve during aggregation.
type Skip struct {
	EventID       string
	Placement     int
	ParticipantID string
	Reason        SkipReason
}

// Scoreboard is the outcome of one aggregation.
type Scoreboard struct {
	Totals    HouseScore
	Breakdown CategoryBreakdown
	// Skipped lists tolerated data gaps, sorted by event, placement, participant.
	Skipped []Skip
}

// Aggregate recomputes every house's total and category breakdown from the
// full event history.
//
// Every house starts at zero in every known category. Only completed events
// with results contribute. Entries referencing unknown players, unknown
// houses or placements missing from the schedule are skipped and reported in
// Skipped; Aggregate never fails.
func Aggregate(houses []model.House, categories []model.Category, players []model.Player, events []model.Event) Scoreboard {
	board := Scoreboard{
		Totals:    make(HouseScore, len(houses)),
		Breakdown: make(CategoryBreakdown, len(houses)),
	}
	for _, h := range houses {
		board.Totals[h.ID] = 0
		perCategory := make(map[string]int64, len(categories))
		for _, c := range categories {
			perCategory[c.ID] = 0
		}
		board.Breakdown[h.ID] = perCategory
	}

	playerHouse := make(map[string]string, len(players))
	for _, p := range players {
		playerHouse[p.ID] = p.HouseID
	}

	for _, event := range events {
		if !event.Completed() || len(event.Results) == 0 {
			continue
		}
		for _, r := range event.Results {
			houseID, reason, ok := board.resolve(event.Type, r.ParticipantID, playerHouse)
			if !ok {
				board.skip(event.ID, r, reason)
				continue
			}
			points, ok := event.Schedule.Points(r.Placement)
			if !ok {
				board.skip(event.ID, r, SkipUnknownPlacement)
				continue
			}
			board.Totals[houseID] += points
			perCategory := board.Breakdown[houseID]
			perCategory[event.CategoryID] += points
		}
	}

	slices.SortFunc(board.Skipped, func(a, b Skip) int {
		return cmp.Or(
			cmp.Compare(a.EventID, b.EventID),
			cmp.Compare(a.Placement, b.Placement),
			cmp.Compare(a.ParticipantID, b.ParticipantID),
			cmp.Compare(a.Reason, b.Reason),
		)
	})
	return board
}

// FromSnapshot aggregates a repository snapshot.
func FromSnapshot(s model.Snapshot) Scoreboard {
	return Aggregate(s.Houses, s.Categories, s.Players, s.Events)
}

// resolve maps a participant to the house that receives its points.
func (b *Scoreboard) resolve(kind model.EventType, participantID string, playerHouse map[string]string) (string, SkipReason, bool) {
	houseID := participantID
	if kind != model.EventGroup {
		var ok bool
		houseID, ok = playerHouse[participantID]
		if !ok {
			return "", SkipUnknownPlayer, false
		}
	}
	if _, ok := b.Totals[houseID]; !ok {
		return "", SkipUnknownHouse, false
	}
	return houseID, "", true
}

func (b *Scoreboard) skip(eventID string, r model.EventResult, reason SkipReason) {
	b.Skipped = append(b.Skipped, Skip{
		EventID:       eventID,
		Placement:     r.Placement,
		ParticipantID: r.ParticipantID,
		Reason:        reason,
	})
}

// SkippedByReason counts skipped entries per reason.
func (b Scoreboard) SkippedByReason() map[SkipReason]int {
	out := make(map[SkipReason]int, 3)
	for _, s := range b.Skipped {
		out[s.Reason]++
	}
	return out
}

// Score returns a house's points in scope: the total for ScopeAll, the
// category subtotal otherwise. Missing keys read as zero.
func (b Scoreboard) Score(houseID, scope string) int64 {
	if scope == ScopeAll {
		return b.Totals[houseID]
	}
	return b.Breakdown[houseID][scope]
}

// Rank orders house ids by score in scope, highest first. Equal scores are
// ordered by display name under the default locale collation, then by id.
func Rank(houses []model.House, totals HouseScore, breakdown CategoryBreakdown, scope string) []string {
	board := Scoreboard{Totals: totals, Breakdown: breakdown}
	ranked := board.sorted(houses, scope)
	ids := make([]string, len(ranked))
	for i, h := range ranked {
		ids[i] = h.ID
	}
	return ids
}

// Rank orders house ids by score in scope. See the package-level Rank.
func (b Scoreboard) Rank(houses []model.House, scope string) []string {
	return Rank(houses, b.Totals, b.Breakdown, scope)
}

// Standings returns the ranked houses with their scores in scope. Houses with
// equal scores share a rank and the next distinct score takes the next rank.
func (b Scoreboard) Standings(houses []model.House, scope string) []types.Standing {
	ranked := b.sorted(houses, scope)
	out := make([]types.Standing, len(ranked))
	rank := 0
	for i, h := range ranked {
		score := b.Score(h.ID, scope)
		if i == 0 || score != out[i-1].Score {
			rank++
		}
		out[i] = types.Standing{
			Rank:    rank,
			HouseID: h.ID,
			Name:    h.Name,
			Color:   h.Color,
			Score:   score,
		}
	}
	return out
}

func (b Scoreboard) sorted(houses []model.House, scope string) []model.House {
	// A Collator keeps internal buffers, so each call gets its own.
	coll := collate.New(language.Und)
	ranked := slices.Clone(houses)
	slices.SortStableFunc(ranked, func(x, y model.House) int {
		return cmp.Or(
			cmp.Compare(b.Score(y.ID, scope), b.Score(x.ID, scope)),
			coll.CompareString(x.Name, y.Name),
			cmp.Compare(x.Name, y.Name),
			cmp.Compare(x.ID, y.ID),
		)
	})
	return ranked
}
