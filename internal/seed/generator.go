package seed

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/okian/housecup/internal/domain/model"
)

// Competition is a generated roster with the results to commit per event.
type Competition struct {
	Houses     []model.House                  `json:"houses"`
	Categories []model.Category               `json:"categories"`
	Players    []model.Player                 `json:"players"`
	Events     []model.Event                  `json:"events"`
	Results    map[string][]model.EventResult `json:"results"`
}

var houseNames = []string{"Gryphon", "Serpent", "Badger", "Raven", "Stag", "Otter", "Falcon", "Wolf"}

var houseColors = []string{"scarlet", "emerald", "amber", "sapphire", "ivory", "teal", "crimson", "slate"}

// Generate builds a competition from cfg. Equal seeds produce the same
// structure; ids are fresh UUIDs on every call.
func Generate(cfg *Config) Competition {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	c := Competition{Results: make(map[string][]model.EventResult, cfg.Events)}

	for i := 0; i < cfg.Houses; i++ {
		name := houseNames[i%len(houseNames)]
		if i >= len(houseNames) {
			name = fmt.Sprintf("%s %d", name, i/len(houseNames)+1)
		}
		c.Houses = append(c.Houses, model.House{
			ID:    uuid.NewString(),
			Name:  name,
			Color: houseColors[i%len(houseColors)],
		})
	}
	for i := 0; i < cfg.Categories; i++ {
		c.Categories = append(c.Categories, model.Category{ID: uuid.NewString(), Label: fmt.Sprintf("Division %d", i+1)})
	}

	byCategory := make(map[string][]string, len(c.Categories))
	for _, h := range c.Houses {
		for _, cat := range c.Categories {
			for k := 0; k < cfg.PlayersPerHouse; k++ {
				p := model.Player{
					ID:         uuid.NewString(),
					Name:       fmt.Sprintf("%s %s #%d", h.Name, cat.Label, k+1),
					HouseID:    h.ID,
					CategoryID: cat.ID,
				}
				c.Players = append(c.Players, p)
				byCategory[cat.ID] = append(byCategory[cat.ID], p.ID)
			}
		}
	}

	houseIDs := make([]string, len(c.Houses))
	for i, h := range c.Houses {
		houseIDs[i] = h.ID
	}

	for i := 0; i < cfg.Events && len(c.Categories) > 0; i++ {
		cat := c.Categories[rng.IntN(len(c.Categories))]
		e := model.Event{
			ID:         uuid.NewString(),
			CategoryID: cat.ID,
			Status:     model.StatusScheduled,
		}
		pool := byCategory[cat.ID]
		if rng.Float64() < cfg.GroupRatio || len(pool) == 0 {
			e.Type = model.EventGroup
			e.Name = fmt.Sprintf("Relay %d", i+1)
			pool = houseIDs
		} else {
			e.Type = model.EventIndividual
			e.Name = fmt.Sprintf("Heat %d", i+1)
		}
		e.Schedule = schedule(rng)
		c.Events = append(c.Events, e)
		c.Results[e.ID] = placements(rng, e.Schedule, pool)
	}
	return c
}

// schedule returns 3 to 5 placements with strictly decreasing points.
func schedule(rng *rand.Rand) model.ScoringSchedule {
	n := 3 + rng.IntN(3)
	s := make(model.ScoringSchedule, n)
	points := int64(n * 2)
	for p := 1; p <= n; p++ {
		s[p] = points
		points -= 1 + int64(rng.IntN(2))
		if points < 0 {
			points = 0
		}
	}
	return s
}

// placements fills the schedule from a shuffled pool, leaving one slot
// unassigned now and then so the server has something to drop.
func placements(rng *rand.Rand, s model.ScoringSchedule, pool []string) []model.EventResult {
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	var out []model.EventResult
	next := 0
	for _, place := range s.Placements() {
		if next >= len(shuffled) {
			break
		}
		if place > 1 && rng.IntN(6) == 0 {
			out = append(out, model.EventResult{Placement: place})
			continue
		}
		out = append(out, model.EventResult{Placement: place, ParticipantID: shuffled[next]})
		next++
	}
	return out
}
