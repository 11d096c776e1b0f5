package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/housecup/internal/adapters/mq/queue"
	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/pkg/logger"
)

// newID returns id trimmed, or a fresh UUID when id is blank.
func newID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

// CreateHouse adds a house. A blank id is replaced by a generated one.
func (s *Service) CreateHouse(ctx context.Context, h model.House) (model.House, error) {
	c, err := s.components()
	if err != nil {
		return model.House{}, err
	}
	h.ID = newID(h.ID)
	h.Name = strings.TrimSpace(h.Name)
	h.Color = strings.TrimSpace(h.Color)
	if err := model.Validate(h); err != nil {
		return model.House{}, err
	}
	rev, err := c.store.CreateHouse(ctx, h)
	if err != nil {
		return model.House{}, err
	}
	s.logger.Info(ctx, "house created", logger.String("house_id", h.ID), logger.String("name", h.Name))
	s.changed(ctx, c, queue.KindHouse, h.ID, rev)
	return h, nil
}

// UpdateHouse renames or recolors an existing house.
func (s *Service) UpdateHouse(ctx context.Context, h model.House) (model.House, error) {
	c, err := s.components()
	if err != nil {
		return model.House{}, err
	}
	h.Name = strings.TrimSpace(h.Name)
	h.Color = strings.TrimSpace(h.Color)
	if err := model.Validate(h); err != nil {
		return model.House{}, err
	}
	rev, err := c.store.UpdateHouse(ctx, h)
	if err != nil {
		return model.House{}, err
	}
	s.changed(ctx, c, queue.KindHouse, h.ID, rev)
	return h, nil
}

// DeleteHouse removes a house. Committed results that name it stay and are
// skipped by aggregation.
func (s *Service) DeleteHouse(ctx context.Context, id string) error {
	c, err := s.components()
	if err != nil {
		return err
	}
	rev, err := c.store.DeleteHouse(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "house deleted", logger.String("house_id", id))
	s.changed(ctx, c, queue.KindHouse, id, rev)
	return nil
}

// Houses lists every house ordered by id.
func (s *Service) Houses(ctx context.Context) ([]model.House, error) {
	snap, err := s.snapshot(ctx)
	return snap.Houses, err
}

// CreateCategory adds a category. A blank id is replaced by a generated one.
func (s *Service) CreateCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	c, err := s.components()
	if err != nil {
		return model.Category{}, err
	}
	cat.ID = newID(cat.ID)
	cat.Label = strings.TrimSpace(cat.Label)
	if err := model.Validate(cat); err != nil {
		return model.Category{}, err
	}
	rev, err := c.store.CreateCategory(ctx, cat)
	if err != nil {
		return model.Category{}, err
	}
	s.changed(ctx, c, queue.KindCategory, cat.ID, rev)
	return cat, nil
}

// DeleteCategory removes a category that no player or scheduled event uses.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	c, err := s.components()
	if err != nil {
		return err
	}
	rev, err := c.store.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	s.changed(ctx, c, queue.KindCategory, id, rev)
	return nil
}

// Categories lists every category ordered by id.
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	snap, err := s.snapshot(ctx)
	return snap.Categories, err
}

// CreatePlayer adds a player to an existing house and category.
func (s *Service) CreatePlayer(ctx context.Context, p model.Player) (model.Player, error) {
	c, err := s.components()
	if err != nil {
		return model.Player{}, err
	}
	p.ID = newID(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if err := model.Validate(p); err != nil {
		return model.Player{}, err
	}
	rev, err := c.store.CreatePlayer(ctx, p)
	if err != nil {
		return model.Player{}, err
	}
	s.changed(ctx, c, queue.KindPlayer, p.ID, rev)
	return p, nil
}

// DeletePlayer removes a player. Committed results that name the player stay
// and are skipped by aggregation.
func (s *Service) DeletePlayer(ctx context.Context, id string) error {
	c, err := s.components()
	if err != nil {
		return err
	}
	rev, err := c.store.DeletePlayer(ctx, id)
	if err != nil {
		return err
	}
	s.changed(ctx, c, queue.KindPlayer, id, rev)
	return nil
}

// Players lists every player ordered by id.
func (s *Service) Players(ctx context.Context) ([]model.Player, error) {
	snap, err := s.snapshot(ctx)
	return snap.Players, err
}

// CreateEvent schedules an event in an existing category.
func (s *Service) CreateEvent(ctx context.Context, e model.Event) (model.Event, error) {
	c, err := s.components()
	if err != nil {
		return model.Event{}, err
	}
	e.ID = newID(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.Status = model.StatusScheduled
	e.Results = nil
	if err := model.Validate(e); err != nil {
		return model.Event{}, err
	}
	rev, err := c.store.CreateEvent(ctx, e)
	if err != nil {
		return model.Event{}, err
	}
	s.changed(ctx, c, queue.KindEvent, e.ID, rev)
	return e, nil
}

// DeleteEvent removes an event together with its results.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	c, err := s.components()
	if err != nil {
		return err
	}
	rev, err := c.store.DeleteEvent(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "event deleted", logger.String("event_id", id))
	s.changed(ctx, c, queue.KindEvent, id, rev)
	return nil
}

// Event returns one event.
func (s *Service) Event(ctx context.Context, id string) (model.Event, error) {
	c, err := s.components()
	if err != nil {
		return model.Event{}, err
	}
	return c.store.Event(ctx, id)
}

// Events lists every event ordered by id.
func (s *Service) Events(ctx context.Context) ([]model.Event, error) {
	snap, err := s.snapshot(ctx)
	return snap.Events, err
}

func (s *Service) snapshot(ctx context.Context) (model.Snapshot, error) {
	c, err := s.components()
	if err != nil {
		return model.Snapshot{}, err
	}
	return c.store.Snapshot(ctx)
}
