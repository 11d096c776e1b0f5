package scoring_test

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func twoHouseFixture() ([]model.House, []model.Category, []model.Player, []model.Event) {
	houses := []model.House{{ID: "A", Name: "A"}, {ID: "B", Name: "B"}}
	categories := []model.Category{{ID: "C", Label: "Juniors"}}
	players := []model.Player{
		{ID: "P1", Name: "Pat", HouseID: "A", CategoryID: "C"},
		{ID: "P2", Name: "Sam", HouseID: "B", CategoryID: "C"},
	}
	events := []model.Event{{
		ID:         "E",
		Type:       model.EventIndividual,
		CategoryID: "C",
		Schedule:   model.ScoringSchedule{1: 10, 2: 5},
		Status:     model.StatusCompleted,
		Results:    []model.EventResult{{Placement: 1, ParticipantID: "P2"}, {Placement: 2, ParticipantID: "P1"}},
	}}
	return houses, categories, players, events
}

func TestAggregate_EndToEnd(t *testing.T) {
	Convey("Given two houses with one player each in the same category", t, func() {
		houses, categories, players, events := twoHouseFixture()

		Convey("When an individual event is completed with P2 first and P1 second", func() {
			board := scoring.Aggregate(houses, categories, players, events)

			Convey("Then totals should follow the schedule", func() {
				So(board.Totals, ShouldResemble, scoring.HouseScore{"A": 5, "B": 10})
			})

			Convey("Then the category breakdown should match", func() {
				So(board.Breakdown, ShouldResemble, scoring.CategoryBreakdown{
					"A": {"C": 5},
					"B": {"C": 10},
				})
			})

			Convey("Then the overall ranking should put B first", func() {
				So(board.Rank(houses, scoring.ScopeAll), ShouldResemble, []string{"B", "A"})
			})

			Convey("Then nothing should be skipped", func() {
				So(board.Skipped, ShouldBeEmpty)
			})
		})
	})
}

func TestAggregate_ZeroDefault(t *testing.T) {
	Convey("Given a roster with no completed events", t, func() {
		houses := []model.House{{ID: "h1", Name: "Gryphon"}, {ID: "h2", Name: "Serpent"}}
		categories := []model.Category{{ID: "jr", Label: "Junior"}, {ID: "sr", Label: "Senior"}}
		events := []model.Event{{
			ID:         "scheduled",
			Type:       model.EventGroup,
			CategoryID: "jr",
			Schedule:   model.ScoringSchedule{1: 100},
			Status:     model.StatusScheduled,
			Results:    []model.EventResult{{Placement: 1, ParticipantID: "h1"}},
		}}

		board := scoring.Aggregate(houses, categories, nil, events)

		Convey("Then every house should have an explicit zero total", func() {
			So(board.Totals, ShouldResemble, scoring.HouseScore{"h1": 0, "h2": 0})
		})

		Convey("Then every house should have an explicit zero per category", func() {
			for _, h := range houses {
				for _, c := range categories {
					v, ok := board.Breakdown[h.ID][c.ID]
					So(ok, ShouldBeTrue)
					So(v, ShouldEqual, 0)
				}
			}
		})
	})

	Convey("Given nil inputs", t, func() {
		board := scoring.Aggregate(nil, nil, nil, nil)

		Convey("Then aggregation should return empty, non-nil maps", func() {
			So(board.Totals, ShouldNotBeNil)
			So(board.Breakdown, ShouldNotBeNil)
			So(len(board.Totals), ShouldEqual, 0)
		})
	})
}

func TestAggregate_GroupEvents(t *testing.T) {
	Convey("Given a group event scored per house", t, func() {
		houses := []model.House{{ID: "h1", Name: "Gryphon"}, {ID: "h2", Name: "Serpent"}}
		categories := []model.Category{{ID: "relay", Label: "Relay"}}
		events := []model.Event{{
			ID:         "relay-final",
			Type:       model.EventGroup,
			CategoryID: "relay",
			Schedule:   model.ScoringSchedule{1: 30, 2: 20},
			Status:     model.StatusCompleted,
			Results:    []model.EventResult{{Placement: 1, ParticipantID: "h2"}, {Placement: 2, ParticipantID: "h1"}},
		}}

		board := scoring.Aggregate(houses, categories, nil, events)

		Convey("Then the participant id should be treated as the house id", func() {
			So(board.Totals, ShouldResemble, scoring.HouseScore{"h1": 20, "h2": 30})
			So(board.Breakdown["h2"]["relay"], ShouldEqual, 30)
		})
	})
}

func TestAggregate_StaleReferences(t *testing.T) {
	Convey("Given committed results that reference deleted data", t, func() {
		houses := []model.House{{ID: "A", Name: "A"}}
		categories := []model.Category{{ID: "C", Label: "C"}}
		players := []model.Player{
			{ID: "P1", HouseID: "A", CategoryID: "C"},
			{ID: "orphan", HouseID: "deleted-house", CategoryID: "C"},
		}
		events := []model.Event{
			{
				ID: "ind", Type: model.EventIndividual, CategoryID: "C",
				Schedule: model.ScoringSchedule{1: 10, 2: 5, 3: 1},
				Status:   model.StatusCompleted,
				Results: []model.EventResult{
					{Placement: 1, ParticipantID: "deleted-player"},
					{Placement: 2, ParticipantID: "P1"},
					{Placement: 3, ParticipantID: "orphan"},
				},
			},
			{
				ID: "grp", Type: model.EventGroup, CategoryID: "C",
				Schedule: model.ScoringSchedule{1: 50},
				Status:   model.StatusCompleted,
				Results: []model.EventResult{
					{Placement: 1, ParticipantID: "deleted-house"},
					{Placement: 4, ParticipantID: "A"},
				},
			},
		}

		var board scoring.Scoreboard
		So(func() { board = scoring.Aggregate(houses, categories, players, events) }, ShouldNotPanic)

		Convey("Then resolvable entries should still count", func() {
			So(board.Totals["A"], ShouldEqual, 5)
			So(board.Breakdown["A"]["C"], ShouldEqual, 5)
		})

		Convey("Then unknown houses should never appear as keys", func() {
			_, ok := board.Totals["deleted-house"]
			So(ok, ShouldBeFalse)
		})

		Convey("Then every gap should be reported once, in a stable order", func() {
			So(board.Skipped, ShouldResemble, []scoring.Skip{
				{EventID: "grp", Placement: 1, ParticipantID: "deleted-house", Reason: scoring.SkipUnknownHouse},
				{EventID: "grp", Placement: 4, ParticipantID: "A", Reason: scoring.SkipUnknownPlacement},
				{EventID: "ind", Placement: 1, ParticipantID: "deleted-player", Reason: scoring.SkipUnknownPlayer},
				{EventID: "ind", Placement: 3, ParticipantID: "orphan", Reason: scoring.SkipUnknownHouse},
			})
			So(board.SkippedByReason(), ShouldResemble, map[scoring.SkipReason]int{
				scoring.SkipUnknownHouse:     2,
				scoring.SkipUnknownPlacement: 1,
				scoring.SkipUnknownPlayer:    1,
			})
		})
	})
}

func TestAggregate_UnrosteredCategory(t *testing.T) {
	Convey("Given an event whose category is not in the roster", t, func() {
		houses := []model.House{{ID: "A", Name: "A"}}
		events := []model.Event{{
			ID: "e", Type: model.EventGroup, CategoryID: "retired",
			Schedule: model.ScoringSchedule{1: 7},
			Status:   model.StatusCompleted,
			Results:  []model.EventResult{{Placement: 1, ParticipantID: "A"}},
		}}

		board := scoring.Aggregate(houses, nil, nil, events)

		Convey("Then the total should still equal the sum of the breakdown", func() {
			So(board.Totals["A"], ShouldEqual, 7)
			So(board.Breakdown["A"]["retired"], ShouldEqual, 7)
		})
	})
}

func TestAggregate_Commutativity(t *testing.T) {
	Convey("Given a larger competition", t, func() {
		houses, categories, players, events := generateCompetition(6, 3, 60, 40)
		reference := scoring.Aggregate(houses, categories, players, events)

		Convey("When events and entries are shuffled many times", func() {
			rng := rand.New(rand.NewPCG(7, 11))
			for i := 0; i < 25; i++ {
				shuffled := make([]model.Event, len(events))
				for j, e := range events {
					shuffled[j] = e.Clone()
					rng.Shuffle(len(shuffled[j].Results), func(a, b int) {
						shuffled[j].Results[a], shuffled[j].Results[b] = shuffled[j].Results[b], shuffled[j].Results[a]
					})
				}
				rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

				got := scoring.Aggregate(houses, categories, players, shuffled)

				So(got.Totals, ShouldResemble, reference.Totals)
				So(got.Breakdown, ShouldResemble, reference.Breakdown)
				So(got.Skipped, ShouldResemble, reference.Skipped)
			}
		})

		Convey("Then each total should equal the sum of its breakdown", func() {
			for id, total := range reference.Totals {
				var sum int64
				for _, v := range reference.Breakdown[id] {
					sum += v
				}
				So(sum, ShouldEqual, total)
			}
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given houses with no completed events", t, func() {
		houses := []model.House{{ID: "z", Name: "Zeta"}, {ID: "a", Name: "Alpha"}}
		board := scoring.Aggregate(houses, nil, nil, nil)

		Convey("Then the overall ranking should be alphabetical", func() {
			So(board.Rank(houses, scoring.ScopeAll), ShouldResemble, []string{"a", "z"})
		})

		Convey("Then a category ranking should also be alphabetical", func() {
			So(board.Rank(houses, "anything"), ShouldResemble, []string{"a", "z"})
		})
	})

	Convey("Given houses with different scores per category", t, func() {
		houses := []model.House{
			{ID: "h1", Name: "Gryphon"},
			{ID: "h2", Name: "Serpent"},
			{ID: "h3", Name: "Badger"},
		}
		totals := scoring.HouseScore{"h1": 30, "h2": 30, "h3": 40}
		breakdown := scoring.CategoryBreakdown{
			"h1": {"jr": 20, "sr": 10},
			"h2": {"jr": 5, "sr": 25},
			"h3": {"jr": 20, "sr": 20},
		}

		Convey("When ranking overall", func() {
			Convey("Then ties should fall back to the display name", func() {
				So(scoring.Rank(houses, totals, breakdown, scoring.ScopeAll), ShouldResemble, []string{"h3", "h1", "h2"})
			})
		})

		Convey("When ranking by category", func() {
			Convey("Then only that category's points should count", func() {
				So(scoring.Rank(houses, totals, breakdown, "sr"), ShouldResemble, []string{"h2", "h3", "h1"})
				So(scoring.Rank(houses, totals, breakdown, "jr"), ShouldResemble, []string{"h3", "h1", "h2"})
			})
		})

		Convey("When ranking by an unknown category", func() {
			Convey("Then every house should read zero and sort by name", func() {
				So(scoring.Rank(houses, totals, breakdown, "nope"), ShouldResemble, []string{"h3", "h1", "h2"})
			})
		})

		Convey("When the input order changes", func() {
			reversed := slices.Clone(houses)
			slices.Reverse(reversed)

			Convey("Then the ranking should not change", func() {
				So(scoring.Rank(reversed, totals, breakdown, scoring.ScopeAll), ShouldResemble, []string{"h3", "h1", "h2"})
			})
		})

		Convey("When the input slice is ranked", func() {
			_ = scoring.Rank(houses, totals, breakdown, scoring.ScopeAll)

			Convey("Then the caller's slice should not be reordered", func() {
				So(houses[0].ID, ShouldEqual, "h1")
			})
		})
	})

	Convey("Given names that differ only by case", t, func() {
		houses := []model.House{{ID: "1", Name: "beta"}, {ID: "2", Name: "Alpha"}, {ID: "3", Name: "Beta"}}
		board := scoring.Aggregate(houses, nil, nil, nil)

		Convey("Then collation should interleave cases alphabetically and stay total", func() {
			So(board.Rank(houses, scoring.ScopeAll), ShouldResemble, []string{"2", "1", "3"})
		})
	})

	Convey("Given two houses with identical names", t, func() {
		houses := []model.House{{ID: "y", Name: "Twin"}, {ID: "x", Name: "Twin"}}
		board := scoring.Aggregate(houses, nil, nil, nil)

		Convey("Then the id should break the tie", func() {
			So(board.Rank(houses, scoring.ScopeAll), ShouldResemble, []string{"x", "y"})
		})
	})
}

func TestStandings(t *testing.T) {
	Convey("Given a scoreboard with tied houses", t, func() {
		houses := []model.House{
			{ID: "h1", Name: "Gryphon", Color: "red"},
			{ID: "h2", Name: "Serpent", Color: "green"},
			{ID: "h3", Name: "Badger", Color: "yellow"},
		}
		board := scoring.Scoreboard{
			Totals:    scoring.HouseScore{"h1": 10, "h2": 10, "h3": 25},
			Breakdown: scoring.CategoryBreakdown{},
		}

		standings := board.Standings(houses, scoring.ScopeAll)

		Convey("Then equal scores should share a rank", func() {
			So(len(standings), ShouldEqual, 3)
			So(standings[0].HouseID, ShouldEqual, "h3")
			So(standings[0].Rank, ShouldEqual, 1)
			So(standings[1].HouseID, ShouldEqual, "h1")
			So(standings[1].Rank, ShouldEqual, 2)
			So(standings[2].HouseID, ShouldEqual, "h2")
			So(standings[2].Rank, ShouldEqual, 2)
		})

		Convey("Then names, colors and scores should be carried over", func() {
			So(standings[0].Name, ShouldEqual, "Badger")
			So(standings[0].Color, ShouldEqual, "yellow")
			So(standings[0].Score, ShouldEqual, 25)
		})
	})
}

func TestFromSnapshot(t *testing.T) {
	Convey("Given a snapshot", t, func() {
		houses, categories, players, events := twoHouseFixture()
		snap := model.Snapshot{Revision: 9, Houses: houses, Categories: categories, Players: players, Events: events}

		Convey("Then aggregating it should equal aggregating its parts", func() {
			So(scoring.FromSnapshot(snap), ShouldResemble, scoring.Aggregate(houses, categories, players, events))
		})
	})
}

// generateCompetition builds a deterministic roster with a mix of
// individual, group, scheduled and stale entries.
func generateCompetition(nHouses, nCategories, nPlayers, nEvents int) ([]model.House, []model.Category, []model.Player, []model.Event) {
	rng := rand.New(rand.NewPCG(1, 2))
	houses := make([]model.House, nHouses)
	for i := range houses {
		houses[i] = model.House{ID: fmt.Sprintf("h%d", i), Name: fmt.Sprintf("House %d", i)}
	}
	categories := make([]model.Category, nCategories)
	for i := range categories {
		categories[i] = model.Category{ID: fmt.Sprintf("c%d", i), Label: fmt.Sprintf("Cat %d", i)}
	}
	players := make([]model.Player, nPlayers)
	for i := range players {
		players[i] = model.Player{
			ID:         fmt.Sprintf("p%d", i),
			HouseID:    houses[rng.IntN(nHouses)].ID,
			CategoryID: categories[rng.IntN(nCategories)].ID,
		}
	}
	events := make([]model.Event, nEvents)
	for i := range events {
		e := model.Event{
			ID:         fmt.Sprintf("e%d", i),
			CategoryID: categories[rng.IntN(nCategories)].ID,
			Schedule:   model.ScoringSchedule{1: 10, 2: 7, 3: 5, 4: 3},
			Status:     model.StatusCompleted,
		}
		if i%5 == 0 {
			e.Status = model.StatusScheduled
		}
		if i%2 == 0 {
			e.Type = model.EventGroup
			for p, idx := range rng.Perm(nHouses)[:3] {
				e.Results = append(e.Results, model.EventResult{Placement: p + 1, ParticipantID: houses[idx].ID})
			}
		} else {
			e.Type = model.EventIndividual
			for p, idx := range rng.Perm(nPlayers)[:4] {
				e.Results = append(e.Results, model.EventResult{Placement: p + 1, ParticipantID: players[idx].ID})
			}
		}
		if i%7 == 0 {
			e.Results = append(e.Results, model.EventResult{Placement: 9, ParticipantID: "ghost"})
		}
		events[i] = e
	}
	return houses, categories, players, events
}
