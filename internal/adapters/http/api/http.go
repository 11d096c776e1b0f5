// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/housecup/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RosterDependencies
	EventDependencies
	ScoreboardDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	rosterHandler     *RosterHandler
	eventsHandler     *EventsHandler
	scoreboardHandler *ScoreboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		rosterHandler:     NewRosterHandler(deps),
		eventsHandler:     NewEventsHandler(deps),
		scoreboardHandler: NewScoreboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/houses", MetricsMiddleware(s.rosterHandler.HandleHouses, "houses"))
	mux.HandleFunc("/houses/{id}", MetricsMiddleware(s.rosterHandler.HandleHouse, "house"))
	mux.HandleFunc("/categories", MetricsMiddleware(s.rosterHandler.HandleCategories, "categories"))
	mux.HandleFunc("/categories/{id}", MetricsMiddleware(s.rosterHandler.HandleCategory, "category"))
	mux.HandleFunc("/players", MetricsMiddleware(s.rosterHandler.HandlePlayers, "players"))
	mux.HandleFunc("/players/{id}", MetricsMiddleware(s.rosterHandler.HandlePlayer, "player"))

	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleEvents, "events"))
	mux.HandleFunc("/events/{id}", MetricsMiddleware(s.eventsHandler.HandleEvent, "event"))
	mux.HandleFunc("/events/{id}/results", MetricsMiddleware(s.eventsHandler.HandleCommitResults, "results"))

	mux.HandleFunc("/ranking", MetricsMiddleware(s.scoreboardHandler.HandleRanking, "ranking"))
	mux.HandleFunc("/scoreboard", MetricsMiddleware(s.scoreboardHandler.HandleScoreboard, "scoreboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	noteErrorCode(w, code)
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// respondError writes err with the status classify picks for it. Server
// faults are logged; their details are not echoed to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

// methodNotAllowed rejects r and advertises the allowed methods.
func methodNotAllowed(w http.ResponseWriter, r *http.Request, op, allow string) {
	w.Header().Set("Allow", allow)
	respondError(w, r, NewKind(op, ErrMethodNotAllowed))
}

// decodeJSON reads one JSON document from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return NewKind(op, ErrBadRequest)
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}
