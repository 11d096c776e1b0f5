// Package model contains the competition entities shared between layers.
//
// Every type here is a plain value; the scoring engine reads them and the
// repository persists them. Nothing in this package performs I/O.
package model

import (
	"maps"
	"slices"
)

// EventType distinguishes events scored per player from events scored per house.
type EventType string

const (
	EventIndividual EventType = "individual"
	EventGroup      EventType = "group"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusScheduled EventStatus = "scheduled"
	StatusCompleted EventStatus = "completed"
)

// House is a team in the competition.
type House struct {
	ID    string `json:"id" validate:"required,max=64"`
	Name  string `json:"name" validate:"required,max=120"`
	Color string `json:"color" validate:"omitempty,max=32"`
}

// Category groups events and players for breakdowns and eligibility.
type Category struct {
	ID    string `json:"id" validate:"required,max=64"`
	Label string `json:"label" validate:"required,max=120"`
}

// Player belongs to exactly one house and one category.
type Player struct {
	ID         string `json:"id" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=200"`
	HouseID    string `json:"house_id" validate:"required"`
	CategoryID string `json:"category_id" validate:"required"`
}

// ScoringSchedule maps a placement (1 = best) to its point value.
type ScoringSchedule map[int]int64

// Points returns the value of placement and whether the schedule defines it.
func (s ScoringSchedule) Points(placement int) (int64, bool) {
	p, ok := s[placement]
	return p, ok
}

// Placements returns the defined placements in ascending order.
func (s ScoringSchedule) Placements() []int {
	return slices.Sorted(maps.Keys(s))
}

// EventResult assigns a participant to a placement. In provisional
// (pre-commit) results an empty ParticipantID means unassigned.
type EventResult struct {
	Placement     int    `json:"placement" validate:"min=1"`
	ParticipantID string `json:"participant_id"`
}

// Event is a scored contest within one category.
type Event struct {
	ID         string          `json:"id" validate:"required,max=64"`
	Name       string          `json:"name" validate:"required,max=200"`
	Type       EventType       `json:"type" validate:"required,oneof=individual group"`
	CategoryID string          `json:"category_id" validate:"required"`
	Schedule   ScoringSchedule `json:"schedule" validate:"required,min=1,dive,keys,min=1,endkeys,min=0"`
	Status     EventStatus     `json:"status"`
	Results    []EventResult   `json:"results,omitempty"`
}

// Completed reports whether the event carries a committed result set.
func (e Event) Completed() bool {
	return e.Status == StatusCompleted
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	e.Schedule = maps.Clone(e.Schedule)
	e.Results = slices.Clone(e.Results)
	return e
}

// Snapshot is a consistent copy of the roster and event history at Revision.
type Snapshot struct {
	Revision   uint64     `json:"revision"`
	Houses     []House    `json:"houses"`
	Categories []Category `json:"categories"`
	Players    []Player   `json:"players"`
	Events     []Event    `json:"events"`
}

// CompletedEvents returns the events with a committed result set.
func (s Snapshot) CompletedEvents() []Event {
	out := make([]Event, 0, len(s.Events))
	for _, e := range s.Events {
		if e.Completed() {
			out = append(out, e)
		}
	}
	return out
}
