package repository

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/pkg/metrics"
)

// state is the mutable content guarded by MemoryStore.mu.
type state struct {
	revision   uint64
	houses     map[string]model.House
	categories map[string]model.Category
	players    map[string]model.Player
	events     map[string]model.Event
}

func newState() state {
	return state{
		houses:     make(map[string]model.House),
		categories: make(map[string]model.Category),
		players:    make(map[string]model.Player),
		events:     make(map[string]model.Event),
	}
}

// snapshot copies the state into sorted slices.
func (st *state) snapshot() model.Snapshot {
	snap := model.Snapshot{
		Revision:   st.revision,
		Houses:     slices.Collect(maps.Values(st.houses)),
		Categories: slices.Collect(maps.Values(st.categories)),
		Players:    slices.Collect(maps.Values(st.players)),
		Events:     make([]model.Event, 0, len(st.events)),
	}
	for _, e := range st.events {
		snap.Events = append(snap.Events, e.Clone())
	}
	slices.SortFunc(snap.Houses, func(a, b model.House) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Categories, func(a, b model.Category) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Players, func(a, b model.Player) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Events, func(a, b model.Event) int { return cmp.Compare(a.ID, b.ID) })
	return snap
}

// restore replaces the state with snap.
func (st *state) restore(snap model.Snapshot) {
	*st = newState()
	st.revision = snap.Revision
	for _, h := range snap.Houses {
		st.houses[h.ID] = h
	}
	for _, c := range snap.Categories {
		st.categories[c.ID] = c
	}
	for _, p := range snap.Players {
		st.players[p.ID] = p
	}
	for _, e := range snap.Events {
		st.events[e.ID] = e.Clone()
	}
}

// MemoryStore is an in-memory Store guarded by a single RWMutex.
type MemoryStore struct {
	mu    sync.RWMutex
	state state

	// persist, when set, runs under the write lock after every mutation.
	// A failure rolls the mutation back.
	persist func(model.Snapshot) error

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store with configuration options.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		state:                 newState(),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Snapshot implements Store.Snapshot.
func (s *MemoryStore) Snapshot(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.snapshot(), nil
}

// Revision implements Store.Revision.
func (s *MemoryStore) Revision(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.revision
}

// House implements Store.House.
func (s *MemoryStore) House(_ context.Context, id string) (model.House, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.state.houses[id]
	if !ok {
		return model.House{}, fmt.Errorf("house %q: %w", id, ErrNotFound)
	}
	return h, nil
}

// Category implements Store.Category.
func (s *MemoryStore) Category(_ context.Context, id string) (model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.categories[id]
	if !ok {
		return model.Category{}, fmt.Errorf("category %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// Player implements Store.Player.
func (s *MemoryStore) Player(_ context.Context, id string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.players[id]
	if !ok {
		return model.Player{}, fmt.Errorf("player %q: %w", id, ErrNotFound)
	}
	return p, nil
}

// Event implements Store.Event.
func (s *MemoryStore) Event(_ context.Context, id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.events[id]
	if !ok {
		return model.Event{}, fmt.Errorf("event %q: %w", id, ErrNotFound)
	}
	return e.Clone(), nil
}

// PutHouse implements Store.PutHouse.
func (s *MemoryStore) PutHouse(ctx context.Context, h model.House) (uint64, error) {
	return s.mutate(ctx, "put_house", func(st *state) error {
		return st.putHouse(h)
	})
}

// CreateHouse implements Store.CreateHouse.
func (s *MemoryStore) CreateHouse(ctx context.Context, h model.House) (uint64, error) {
	return s.mutate(ctx, "create_house", func(st *state) error {
		if _, ok := st.houses[h.ID]; ok {
			return alreadyExists("house", h.ID)
		}
		return st.putHouse(h)
	})
}

// UpdateHouse implements Store.UpdateHouse.
func (s *MemoryStore) UpdateHouse(ctx context.Context, h model.House) (uint64, error) {
	return s.mutate(ctx, "update_house", func(st *state) error {
		if _, ok := st.houses[h.ID]; !ok {
			return fmt.Errorf("house %q: %w", h.ID, ErrNotFound)
		}
		return st.putHouse(h)
	})
}

func (st *state) putHouse(h model.House) error {
	for _, other := range st.houses {
		if other.ID != h.ID && model.SameName(other.Name, h.Name) {
			return fmt.Errorf("house name %q is taken by %q: %w", h.Name, other.ID, ErrConflict)
		}
	}
	st.houses[h.ID] = h
	return nil
}

func alreadyExists(kind, id string) error {
	return fmt.Errorf("%s %q already exists: %w", kind, id, ErrConflict)
}

// DeleteHouse implements Store.DeleteHouse.
func (s *MemoryStore) DeleteHouse(ctx context.Context, id string) (uint64, error) {
	return s.mutate(ctx, "delete_house", func(st *state) error {
		if _, ok := st.houses[id]; !ok {
			return fmt.Errorf("house %q: %w", id, ErrNotFound)
		}
		for _, p := range st.players {
			if p.HouseID == id {
				return fmt.Errorf("house %q still has player %q: %w", id, p.ID, ErrConflict)
			}
		}
		delete(st.houses, id)
		return nil
	})
}

// PutCategory implements Store.PutCategory.
func (s *MemoryStore) PutCategory(ctx context.Context, c model.Category) (uint64, error) {
	return s.mutate(ctx, "put_category", func(st *state) error {
		st.categories[c.ID] = c
		return nil
	})
}

// CreateCategory implements Store.CreateCategory.
func (s *MemoryStore) CreateCategory(ctx context.Context, c model.Category) (uint64, error) {
	return s.mutate(ctx, "create_category", func(st *state) error {
		if _, ok := st.categories[c.ID]; ok {
			return alreadyExists("category", c.ID)
		}
		st.categories[c.ID] = c
		return nil
	})
}

// DeleteCategory implements Store.DeleteCategory.
func (s *MemoryStore) DeleteCategory(ctx context.Context, id string) (uint64, error) {
	return s.mutate(ctx, "delete_category", func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return fmt.Errorf("category %q: %w", id, ErrNotFound)
		}
		for _, p := range st.players {
			if p.CategoryID == id {
				return fmt.Errorf("category %q still has player %q: %w", id, p.ID, ErrConflict)
			}
		}
		for _, e := range st.events {
			if e.CategoryID == id && !e.Completed() {
				return fmt.Errorf("category %q still has scheduled event %q: %w", id, e.ID, ErrConflict)
			}
		}
		delete(st.categories, id)
		return nil
	})
}

// PutPlayer implements Store.PutPlayer.
func (s *MemoryStore) PutPlayer(ctx context.Context, p model.Player) (uint64, error) {
	return s.mutate(ctx, "put_player", func(st *state) error {
		return st.putPlayer(p)
	})
}

// CreatePlayer implements Store.CreatePlayer.
func (s *MemoryStore) CreatePlayer(ctx context.Context, p model.Player) (uint64, error) {
	return s.mutate(ctx, "create_player", func(st *state) error {
		if _, ok := st.players[p.ID]; ok {
			return alreadyExists("player", p.ID)
		}
		return st.putPlayer(p)
	})
}

func (st *state) putPlayer(p model.Player) error {
	if _, ok := st.houses[p.HouseID]; !ok {
		return fmt.Errorf("player %q house %q: %w", p.ID, p.HouseID, ErrInvalidReference)
	}
	if _, ok := st.categories[p.CategoryID]; !ok {
		return fmt.Errorf("player %q category %q: %w", p.ID, p.CategoryID, ErrInvalidReference)
	}
	st.players[p.ID] = p
	return nil
}

// DeletePlayer implements Store.DeletePlayer.
func (s *MemoryStore) DeletePlayer(ctx context.Context, id string) (uint64, error) {
	return s.mutate(ctx, "delete_player", func(st *state) error {
		if _, ok := st.players[id]; !ok {
			return fmt.Errorf("player %q: %w", id, ErrNotFound)
		}
		delete(st.players, id)
		return nil
	})
}

// PutEvent implements Store.PutEvent.
func (s *MemoryStore) PutEvent(ctx context.Context, e model.Event) (uint64, error) {
	return s.mutate(ctx, "put_event", func(st *state) error {
		if existing, ok := st.events[e.ID]; ok && existing.Completed() {
			return fmt.Errorf("event %q: %w", e.ID, ErrAlreadyCompleted)
		}
		return st.putEvent(e)
	})
}

// CreateEvent implements Store.CreateEvent.
func (s *MemoryStore) CreateEvent(ctx context.Context, e model.Event) (uint64, error) {
	return s.mutate(ctx, "create_event", func(st *state) error {
		if _, ok := st.events[e.ID]; ok {
			return alreadyExists("event", e.ID)
		}
		return st.putEvent(e)
	})
}

func (st *state) putEvent(e model.Event) error {
	if _, ok := st.categories[e.CategoryID]; !ok {
		return fmt.Errorf("event %q category %q: %w", e.ID, e.CategoryID, ErrInvalidReference)
	}
	e = e.Clone()
	e.Status = model.StatusScheduled
	e.Results = nil
	st.events[e.ID] = e
	return nil
}

// DeleteEvent implements Store.DeleteEvent.
func (s *MemoryStore) DeleteEvent(ctx context.Context, id string) (uint64, error) {
	return s.mutate(ctx, "delete_event", func(st *state) error {
		if _, ok := st.events[id]; !ok {
			return fmt.Errorf("event %q: %w", id, ErrNotFound)
		}
		delete(st.events, id)
		return nil
	})
}

// CommitResults implements Store.CommitResults.
func (s *MemoryStore) CommitResults(ctx context.Context, eventID string, results []model.EventResult) (model.Event, uint64, error) {
	var committed model.Event
	rev, err := s.mutate(ctx, "commit_results", func(st *state) error {
		e, ok := st.events[eventID]
		if !ok {
			return fmt.Errorf("event %q: %w", eventID, ErrNotFound)
		}
		if e.Completed() {
			return fmt.Errorf("event %q: %w", eventID, ErrAlreadyCompleted)
		}
		for _, r := range results {
			if err := st.checkParticipant(e, r.ParticipantID); err != nil {
				return err
			}
		}
		e = e.Clone()
		e.Status = model.StatusCompleted
		e.Results = slices.Clone(results)
		st.events[eventID] = e
		committed = e.Clone()
		return nil
	})
	if err != nil {
		return model.Event{}, 0, err
	}
	return committed, rev, nil
}

// checkParticipant resolves id to a house for group events, or to a player
// of the event's category for individual events.
func (st *state) checkParticipant(e model.Event, id string) error {
	if e.Type == model.EventGroup {
		if _, ok := st.houses[id]; !ok {
			return fmt.Errorf("event %q house %q: %w", e.ID, id, ErrInvalidReference)
		}
		return nil
	}
	p, ok := st.players[id]
	if !ok {
		return fmt.Errorf("event %q player %q: %w", e.ID, id, ErrInvalidReference)
	}
	if p.CategoryID != e.CategoryID {
		return fmt.Errorf("event %q player %q is in category %q, not %q: %w",
			e.ID, id, p.CategoryID, e.CategoryID, ErrInvalidReference)
	}
	return nil
}

// mutate applies fn under the write lock, bumps the revision and persists.
func (s *MemoryStore) mutate(ctx context.Context, op string, fn func(*state) error) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	select {
	case <-s.stopChan:
		return 0, ErrClosed
	default:
	}

	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	var before model.Snapshot
	if s.persist != nil {
		before = s.state.snapshot()
	}

	// fn validates before it writes, so a failed fn leaves the state untouched.
	if err := fn(&s.state); err != nil {
		return 0, err
	}
	s.state.revision++

	if s.persist != nil {
		if err := s.persist(s.state.snapshot()); err != nil {
			s.state.restore(before)
			metrics.RecordStoreError(op)
			return 0, fmt.Errorf("persist %s: %w", op, err)
		}
	}
	return s.state.revision, nil
}

// startMetricsUpdater starts a background goroutine that updates roster metrics.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics updates the roster gauges.
func (s *MemoryStore) updateMetrics() {
	s.mu.RLock()
	houses, players := len(s.state.houses), len(s.state.players)
	completed := 0
	for _, e := range s.state.events {
		if e.Completed() {
			completed++
		}
	}
	scheduled := len(s.state.events) - completed
	s.mu.RUnlock()

	metrics.UpdateRoster(houses, players, completed, scheduled)
}
