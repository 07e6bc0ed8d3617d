package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/turnoverhq/turnover/internal/adapters/auth"
	"github.com/turnoverhq/turnover/internal/adapters/repository"
	"github.com/turnoverhq/turnover/internal/domain/model"
	"github.com/turnoverhq/turnover/pkg/metrics"
)

// GraveyardDependencies defines the interface for retired-shoe operations.
type GraveyardDependencies interface {
	Graveyard(ctx context.Context, userID string, f repository.GraveyardFilter) ([]model.RetiredShoe, error)
	RetireShoe(ctx context.Context, userID, shoeID string, rating int, review *string, milesRun *float64) (model.RetiredShoe, error)
	UpdateRetiredShoe(ctx context.Context, userID, shoeID string, u repository.RetiredShoeUpdate) (model.RetiredShoe, error)
	DeleteFromGraveyard(ctx context.Context, userID, shoeID string) error
}

// GraveyardHandler handles the per-user graveyard of retired shoes. Every
// route here requires authentication.
type GraveyardHandler struct {
	deps     GraveyardDependencies
	verifier auth.Verifier
}

// NewGraveyardHandler creates a new graveyard handler.
func NewGraveyardHandler(deps GraveyardDependencies, verifier auth.Verifier) *GraveyardHandler {
	return &GraveyardHandler{deps: deps, verifier: verifier}
}

// HandleCollection handles GET and POST /api/graveyard.
func (h *GraveyardHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := authenticate(h.verifier, w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, user)
	case http.MethodPost:
		h.retire(w, r, user)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem handles PATCH and DELETE /api/graveyard/{shoe_id}.
func (h *GraveyardHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	user, ok := authenticate(h.verifier, w, r)
	if !ok {
		return
	}
	shoeID := strings.TrimPrefix(r.URL.Path, "/api/graveyard/")
	if shoeID == "" || strings.Contains(shoeID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		h.update(w, r, user, shoeID)
	case http.MethodDelete:
		h.delete(w, r, user, shoeID)
	default:
		http.NotFound(w, r)
	}
}

func (h *GraveyardHandler) list(w http.ResponseWriter, r *http.Request, user auth.User) {
	q := r.URL.Query()

	var f repository.GraveyardFilter
	if raw := q.Get("category"); raw != "" {
		c, err := model.ParseCategory(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		f.Category = c
	}
	f.MinRating, _ = strconv.Atoi(q.Get("min_rating"))
	f.SortBy = q.Get("sort_by")
	f.SortDesc = q.Get("sort_order") != "asc"

	shoes, err := h.deps.Graveyard(r.Context(), user.ID, f)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if shoes == nil {
		shoes = []model.RetiredShoe{}
	}
	writeData(w, http.StatusOK, shoes, "")
}

type retireShoeRequest struct {
	ShoeID   string   `json:"shoe_id" validate:"required"`
	Rating   int      `json:"rating" validate:"required,min=1,max=5"`
	Review   *string  `json:"review"`
	MilesRun *float64 `json:"miles_run" validate:"omitempty,gte=0"`
}

func (h *GraveyardHandler) retire(w http.ResponseWriter, r *http.Request, user auth.User) {
	var req retireShoeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	retired, err := h.deps.RetireShoe(r.Context(), user.ID, req.ShoeID, req.Rating, req.Review, req.MilesRun)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	metrics.RecordShoeRetired()
	writeData(w, http.StatusCreated, retired, "Shoe retired to graveyard")
}

type updateRetiredShoeRequest struct {
	Rating   *int     `json:"rating" validate:"omitempty,min=1,max=5"`
	Review   *string  `json:"review"`
	MilesRun *float64 `json:"miles_run" validate:"omitempty,gte=0"`
}

func (h *GraveyardHandler) update(w http.ResponseWriter, r *http.Request, user auth.User, shoeID string) {
	var req updateRetiredShoeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	retired, err := h.deps.UpdateRetiredShoe(r.Context(), user.ID, shoeID, repository.RetiredShoeUpdate{
		Rating:   req.Rating,
		Review:   req.Review,
		MilesRun: req.MilesRun,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, retired, "Retired shoe updated")
}

func (h *GraveyardHandler) delete(w http.ResponseWriter, r *http.Request, user auth.User, shoeID string) {
	if err := h.deps.DeleteFromGraveyard(r.Context(), user.ID, shoeID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
