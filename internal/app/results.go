package service

import (
	"context"
	"errors"

	"github.com/okian/housecup/internal/adapters/mq/queue"
	"github.com/okian/housecup/internal/domain/dedupe"
	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/results"
	"github.com/okian/housecup/pkg/logger"
	"github.com/okian/housecup/pkg/metrics"
)

// CompleteEvent validates provisional results and commits them, marking the
// event completed. When idempotencyKey is set and was already used for this
// event, the stored event is returned with replayed set instead of failing
// with an already-completed error.
func (s *Service) CompleteEvent(ctx context.Context, eventID string, provisional []model.EventResult, idempotencyKey string) (event model.Event, replayed bool, err error) {
	c, err := s.components()
	if err != nil {
		return model.Event{}, false, err
	}

	var key string
	if idempotencyKey != "" {
		key = dedupe.Key(eventID, idempotencyKey)
		if c.deduper.SeenAndRecord(ctx, key) {
			return s.replay(ctx, c, eventID)
		}
		defer func() {
			if err != nil {
				c.deduper.Unrecord(ctx, key)
			}
		}()
	}

	for _, r := range provisional {
		if err := model.Validate(r); err != nil {
			s.rejectCommit(ctx, eventID, err)
			return model.Event{}, false, err
		}
	}

	current, err := c.store.Event(ctx, eventID)
	if err != nil {
		s.rejectCommit(ctx, eventID, err)
		return model.Event{}, false, err
	}

	var opts []results.Option
	if s.strictPlacements {
		opts = append(opts, results.WithStrictPlacements())
	}
	committed, err := results.Validate(current.Schedule, provisional, opts...)
	if err != nil {
		s.rejectCommit(ctx, eventID, err)
		return model.Event{}, false, err
	}

	stored, rev, err := c.store.CommitResults(ctx, eventID, committed)
	if err != nil {
		s.rejectCommit(ctx, eventID, err)
		return model.Event{}, false, err
	}

	s.commits.Add(1)
	metrics.RecordCommit(metrics.OutcomeCommitted)
	s.logger.Info(ctx, "event completed",
		logger.String("event_id", eventID),
		logger.Int("entries", len(committed)),
		logger.Uint64("revision", rev),
	)
	s.changed(ctx, c, queue.KindResults, eventID, rev)
	return stored, false, nil
}

// replay answers a repeated commit with the stored event.
func (s *Service) replay(ctx context.Context, c components, eventID string) (model.Event, bool, error) {
	stored, err := c.store.Event(ctx, eventID)
	if err != nil {
		return model.Event{}, false, err
	}
	if !stored.Completed() {
		// The first request with this key has not finished yet.
		return model.Event{}, false, ErrCommitInProgress
	}
	s.replays.Add(1)
	metrics.RecordCommit(metrics.OutcomeReplayed)
	s.logger.Debug(ctx, "replayed commit acknowledged", logger.String("event_id", eventID))
	return stored, true, nil
}

func (s *Service) rejectCommit(ctx context.Context, eventID string, err error) {
	s.rejectedCommits.Add(1)
	metrics.RecordCommit(commitOutcome(err))
	s.logger.Debug(ctx, "commit rejected", logger.String("event_id", eventID), logger.Error(err))
}

func commitOutcome(err error) string {
	switch {
	case errors.Is(err, results.ErrEmptyAssignment):
		return metrics.OutcomeEmptyAssignment
	case errors.Is(err, results.ErrDuplicateParticipant):
		return metrics.OutcomeDuplicateParticipant
	case errors.Is(err, results.ErrUnknownPlacement):
		return metrics.OutcomeUnknownPlacement
	default:
		return metrics.OutcomeError
	}
}
