package results

import "errors"

// Sentinel kinds returned by Validate. Callers match them with errors.Is.
var (
	// ErrEmptyAssignment means no placement was assigned a participant.
	ErrEmptyAssignment = errors.New("at least one placement must be assigned")
	// ErrDuplicateParticipant means a participant occupies two placements.
	ErrDuplicateParticipant = errors.New("participant assigned to more than one placement")
	// ErrUnknownPlacement means a placement is missing from the scoring schedule.
	// Only returned when WithStrictPlacements is set.
	ErrUnknownPlacement = errors.New("placement not in scoring schedule")
)
