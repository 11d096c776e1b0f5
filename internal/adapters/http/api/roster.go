package api

import (
	"context"
	"net/http"

	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/types"
)

// RosterDependencies defines the house, category and player operations.
type RosterDependencies interface {
	CreateHouse(ctx context.Context, h model.House) (model.House, error)
	UpdateHouse(ctx context.Context, h model.House) (model.House, error)
	DeleteHouse(ctx context.Context, id string) error
	Houses(ctx context.Context) ([]model.House, error)
	HouseBreakdown(ctx context.Context, houseID string) (types.HouseSummary, error)

	CreateCategory(ctx context.Context, c model.Category) (model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]model.Category, error)

	CreatePlayer(ctx context.Context, p model.Player) (model.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	Players(ctx context.Context) ([]model.Player, error)
}

// RosterHandler handles house, category and player requests.
type RosterHandler struct {
	deps RosterDependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

// HandleHouses handles GET and POST /houses.
func (h *RosterHandler) HandleHouses(w http.ResponseWriter, r *http.Request) {
	const op = "api.houses"
	switch r.Method {
	case http.MethodGet:
		list(w, r, op, h.deps.Houses)
	case http.MethodPost:
		var req model.House
		if err := decodeJSON(w, r, op, &req); err != nil {
			respondError(w, r, err)
			return
		}
		created, err := h.deps.CreateHouse(r.Context(), req)
		if err != nil {
			respondError(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, r, op, "GET, POST")
	}
}

// HandleHouse handles GET, PUT and DELETE /houses/{id}. GET returns the
// house's total and per-category breakdown.
func (h *RosterHandler) HandleHouse(w http.ResponseWriter, r *http.Request) {
	const op = "api.house"
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		summary, err := h.deps.HouseBreakdown(r.Context(), id)
		if err != nil {
			respondError(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, summary)
	case http.MethodPut:
		var req model.House
		if err := decodeJSON(w, r, op, &req); err != nil {
			respondError(w, r, err)
			return
		}
		req.ID = id
		updated, err := h.deps.UpdateHouse(r.Context(), req)
		if err != nil {
			respondError(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		remove(w, r, op, id, h.deps.DeleteHouse)
	default:
		methodNotAllowed(w, r, op, "GET, PUT, DELETE")
	}
}

// HandleCategories handles GET and POST /categories.
func (h *RosterHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	const op = "api.categories"
	switch r.Method {
	case http.MethodGet:
		list(w, r, op, h.deps.Categories)
	case http.MethodPost:
		var req model.Category
		if err := decodeJSON(w, r, op, &req); err != nil {
			respondError(w, r, err)
			return
		}
		created, err := h.deps.CreateCategory(r.Context(), req)
		if err != nil {
			respondError(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, r, op, "GET, POST")
	}
}

// HandleCategory handles DELETE /categories/{id}.
func (h *RosterHandler) HandleCategory(w http.ResponseWriter, r *http.Request) {
	const op = "api.category"
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, op, "DELETE")
		return
	}
	remove(w, r, op, r.PathValue("id"), h.deps.DeleteCategory)
}

// HandlePlayers handles GET and POST /players.
func (h *RosterHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.players"
	switch r.Method {
	case http.MethodGet:
		list(w, r, op, h.deps.Players)
	case http.MethodPost:
		var req model.Player
		if err := decodeJSON(w, r, op, &req); err != nil {
			respondError(w, r, err)
			return
		}
		created, err := h.deps.CreatePlayer(r.Context(), req)
		if err != nil {
			respondError(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, r, op, "GET, POST")
	}
}

// HandlePlayer handles DELETE /players/{id}.
func (h *RosterHandler) HandlePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.player"
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, op, "DELETE")
		return
	}
	remove(w, r, op, r.PathValue("id"), h.deps.DeletePlayer)
}

func list[T any](w http.ResponseWriter, r *http.Request, op string, fetch func(context.Context) ([]T, error)) {
	items, err := fetch(r.Context())
	if err != nil {
		respondError(w, r, Wrap(op, err))
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func remove(w http.ResponseWriter, r *http.Request, op, id string, del func(context.Context, string) error) {
	if err := del(r.Context(), id); err != nil {
		respondError(w, r, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
