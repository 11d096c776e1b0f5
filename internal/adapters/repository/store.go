// Package repository stores the competition roster and event history.
package repository

import (
	"context"

	"github.com/okian/housecup/internal/domain/model"
)

// Store provides read/write access to the competition state.
//
// Every successful mutation bumps the store revision and returns it, so
// callers can tell which scoreboard reflects their write. Reads return
// copies; callers may keep and modify them freely.
type Store interface {
	// Snapshot returns a consistent deep copy of all entities at the current revision.
	Snapshot(ctx context.Context) (model.Snapshot, error)
	// Revision returns the current revision without copying state.
	Revision(ctx context.Context) uint64

	House(ctx context.Context, id string) (model.House, error)
	Category(ctx context.Context, id string) (model.Category, error)
	Player(ctx context.Context, id string) (model.Player, error)
	Event(ctx context.Context, id string) (model.Event, error)

	// PutHouse creates or replaces a house. Display names are unique under
	// model.SameName; a collision returns ErrConflict.
	PutHouse(ctx context.Context, h model.House) (uint64, error)
	// CreateHouse is PutHouse that fails with ErrConflict when the id is taken.
	CreateHouse(ctx context.Context, h model.House) (uint64, error)
	// UpdateHouse is PutHouse that fails with ErrNotFound when the house is gone.
	UpdateHouse(ctx context.Context, h model.House) (uint64, error)
	// DeleteHouse removes a house. Returns ErrConflict while players still belong to it.
	DeleteHouse(ctx context.Context, id string) (uint64, error)

	PutCategory(ctx context.Context, c model.Category) (uint64, error)
	CreateCategory(ctx context.Context, c model.Category) (uint64, error)
	// DeleteCategory removes a category. Returns ErrConflict while players or
	// scheduled events still reference it.
	DeleteCategory(ctx context.Context, id string) (uint64, error)

	// PutPlayer creates or replaces a player. The house and category must exist.
	PutPlayer(ctx context.Context, p model.Player) (uint64, error)
	CreatePlayer(ctx context.Context, p model.Player) (uint64, error)
	DeletePlayer(ctx context.Context, id string) (uint64, error)

	// PutEvent creates or replaces a scheduled event. Completed events are
	// immutable and return ErrAlreadyCompleted.
	PutEvent(ctx context.Context, e model.Event) (uint64, error)
	// CreateEvent schedules a new event; an existing id returns ErrConflict.
	CreateEvent(ctx context.Context, e model.Event) (uint64, error)
	DeleteEvent(ctx context.Context, id string) (uint64, error)

	// CommitResults stores a validated result set and marks the event
	// completed. Every participant must name an existing house (group
	// events) or a player of the event's category (individual events).
	CommitResults(ctx context.Context, eventID string, results []model.EventResult) (model.Event, uint64, error)

	// Close releases background resources.
	Close() error
}
