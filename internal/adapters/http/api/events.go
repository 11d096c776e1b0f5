package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/housecup/internal/domain/model"
)

// IdempotencyKeyHeader carries the client's key for a results commit.
const IdempotencyKeyHeader = "Idempotency-Key"

// EventDependencies defines the interface for event and results operations.
type EventDependencies interface {
	CreateEvent(ctx context.Context, e model.Event) (model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	Event(ctx context.Context, id string) (model.Event, error)
	Events(ctx context.Context) ([]model.Event, error)
	CompleteEvent(ctx context.Context, eventID string, provisional []model.EventResult, idempotencyKey string) (model.Event, bool, error)
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest is the body of POST /events. Status and results are not
// accepted; events are always created scheduled.
type eventRequest struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Type       model.EventType       `json:"type"`
	CategoryID string                `json:"category_id"`
	Schedule   model.ScoringSchedule `json:"schedule"`
}

type resultsRequest struct {
	Results []model.EventResult `json:"results"`
}

type commitResponse struct {
	Event    model.Event `json:"event"`
	Replayed bool        `json:"replayed"`
}

// HandleEvents handles GET and POST /events.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.events"
	switch r.Method {
	case http.MethodGet:
		list(w, r, op, h.deps.Events)
	case http.MethodPost:
		var req eventRequest
		if err := decodeJSON(w, r, op, &req); err != nil {
			respondError(w, r, err)
			return
		}
		created, err := h.deps.CreateEvent(r.Context(), model.Event{
			ID:         req.ID,
			Name:       req.Name,
			Type:       req.Type,
			CategoryID: req.CategoryID,
			Schedule:   req.Schedule,
		})
		if err != nil {
			respondError(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, r, op, "GET, POST")
	}
}

// HandleEvent handles GET and DELETE /events/{id}.
func (h *EventsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.event"
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		e, err := h.deps.Event(r.Context(), id)
		if err != nil {
			respondError(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, e)
	case http.MethodDelete:
		remove(w, r, op, id, h.deps.DeleteEvent)
	default:
		methodNotAllowed(w, r, op, "GET, DELETE")
	}
}

// HandleCommitResults handles POST /events/{id}/results. A request repeating
// an Idempotency-Key of a completed commit is answered with the stored
// event and 200 instead of 201.
func (h *EventsHandler) HandleCommitResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.commit_results"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, op, "POST")
		return
	}
	var req resultsRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		respondError(w, r, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	e, replayed, err := h.deps.CompleteEvent(r.Context(), r.PathValue("id"), req.Results, key)
	if err != nil {
		respondError(w, r, Wrap(op, err))
		return
	}
	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, commitResponse{Event: e, Replayed: replayed})
}
