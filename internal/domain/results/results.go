// Package results validates provisional placement assignments before an
// event is committed as completed.
package results

import (
	"fmt"
	"strings"

	"github.com/okian/housecup/internal/domain/model"
)

// Option configures Validate.
type Option func(*validator)

// WithStrictPlacements rejects entries whose placement is absent from the
// scoring schedule instead of letting them through to score zero.
func WithStrictPlacements() Option {
	return func(v *validator) {
		v.strictPlacements = true
	}
}

type validator struct {
	strictPlacements bool
}

// Validate turns provisional results into the committed result set.
//
// Unassigned entries (blank participant) are dropped. The remaining entries
// must be non-empty and name each participant at most once. The returned
// slice is freshly allocated and keeps the input order. Participant
// eligibility is not checked here.
func Validate(schedule model.ScoringSchedule, provisional []model.EventResult, opts ...Option) ([]model.EventResult, error) {
	v := validator{}
	for _, opt := range opts {
		opt(&v)
	}

	committed := make([]model.EventResult, 0, len(provisional))
	for _, r := range provisional {
		id := strings.TrimSpace(r.ParticipantID)
		if id == "" {
			continue
		}
		committed = append(committed, model.EventResult{Placement: r.Placement, ParticipantID: id})
	}

	if len(committed) == 0 {
		return nil, ErrEmptyAssignment
	}

	seen := make(map[string]int, len(committed))
	for _, r := range committed {
		if first, dup := seen[r.ParticipantID]; dup {
			return nil, fmt.Errorf("%w: %s at placements %d and %d", ErrDuplicateParticipant, r.ParticipantID, first, r.Placement)
		}
		seen[r.ParticipantID] = r.Placement
	}

	if v.strictPlacements {
		for _, r := range committed {
			if _, ok := schedule.Points(r.Placement); !ok {
				return nil, fmt.Errorf("%w: %d", ErrUnknownPlacement, r.Placement)
			}
		}
	}

	return committed, nil
}
