package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/housecup/internal/adapters/mq/worker"
	"github.com/okian/housecup/internal/domain/scoring"
	"github.com/okian/housecup/internal/domain/types"
)

// ScoreboardDependencies defines the interface for scoreboard reads.
type ScoreboardDependencies interface {
	Scoreboard(ctx context.Context) (*worker.Published, error)
	Ranking(ctx context.Context, scope string, limit int) ([]types.Standing, uint64, error)
}

// ScoreboardHandler handles ranking and scoreboard requests.
type ScoreboardHandler struct {
	deps ScoreboardDependencies
}

// NewScoreboardHandler creates a new scoreboard handler.
func NewScoreboardHandler(deps ScoreboardDependencies) *ScoreboardHandler {
	return &ScoreboardHandler{deps: deps}
}

type rankingResponse struct {
	Scope     string           `json:"scope"`
	Revision  uint64           `json:"revision"`
	Standings []types.Standing `json:"standings"`
}

type skipResponse struct {
	EventID       string `json:"event_id"`
	Placement     int    `json:"placement"`
	ParticipantID string `json:"participant_id"`
	Reason        string `json:"reason"`
}

type scoreboardResponse struct {
	types.Board
	Skipped    []skipResponse `json:"skipped"`
	ComputedAt time.Time      `json:"computed_at"`
}

// HandleRanking handles GET /ranking?scope=S&limit=N requests.
func (h *ScoreboardHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	const op = "api.ranking"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, op, "GET")
		return
	}
	q := r.URL.Query()
	scope := q.Get("scope")
	if scope == "" {
		scope = scoring.ScopeAll
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, WrapKind(op, ErrBadRequest, err))
			return
		}
		limit = n
	}
	standings, rev, err := h.deps.Ranking(r.Context(), scope, limit)
	if err != nil {
		respondError(w, r, Wrap(op, err))
		return
	}
	if standings == nil {
		standings = []types.Standing{}
	}
	writeJSON(w, http.StatusOK, rankingResponse{Scope: scope, Revision: rev, Standings: standings})
}

// HandleScoreboard handles GET /scoreboard requests.
func (h *ScoreboardHandler) HandleScoreboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.scoreboard"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, op, "GET")
		return
	}
	p, err := h.deps.Scoreboard(r.Context())
	if err != nil {
		respondError(w, r, Wrap(op, err))
		return
	}
	skipped := make([]skipResponse, len(p.Scoreboard.Skipped))
	for i, s := range p.Scoreboard.Skipped {
		skipped[i] = skipResponse{
			EventID:       s.EventID,
			Placement:     s.Placement,
			ParticipantID: s.ParticipantID,
			Reason:        string(s.Reason),
		}
	}
	writeJSON(w, http.StatusOK, scoreboardResponse{Board: p.Board, Skipped: skipped, ComputedAt: p.ComputedAt})
}
