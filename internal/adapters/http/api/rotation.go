package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/turnoverhq/turnover/internal/adapters/auth"
	"github.com/turnoverhq/turnover/internal/domain/model"
	"github.com/turnoverhq/turnover/pkg/metrics"
)

// RotationDependencies defines the interface for rotation operations.
type RotationDependencies interface {
	Rotation(ctx context.Context, userID string, category model.Category) ([]model.RotationShoe, error)
	AddToRotation(ctx context.Context, userID, shoeID string, start time.Time) (model.RotationShoe, error)
	RemoveFromRotation(ctx context.Context, userID, shoeID string) error
}

// RotationHandler handles the per-user active rotation. Every route here
// requires authentication.
type RotationHandler struct {
	deps     RotationDependencies
	verifier auth.Verifier
}

// NewRotationHandler creates a new rotation handler.
func NewRotationHandler(deps RotationDependencies, verifier auth.Verifier) *RotationHandler {
	return &RotationHandler{deps: deps, verifier: verifier}
}

// HandleCollection handles GET and POST /api/rotation.
func (h *RotationHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := authenticate(h.verifier, w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, user)
	case http.MethodPost:
		h.add(w, r, user)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem handles DELETE /api/rotation/{shoe_id}.
func (h *RotationHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	user, ok := authenticate(h.verifier, w, r)
	if !ok {
		return
	}
	shoeID := strings.TrimPrefix(r.URL.Path, "/api/rotation/")
	if shoeID == "" || strings.Contains(shoeID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.RemoveFromRotation(r.Context(), user.ID, shoeID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RotationHandler) list(w http.ResponseWriter, r *http.Request, user auth.User) {
	var category model.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, err := model.ParseCategory(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		category = c
	}

	shoes, err := h.deps.Rotation(r.Context(), user.ID, category)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if shoes == nil {
		shoes = []model.RotationShoe{}
	}
	writeData(w, http.StatusOK, shoes, "")
}

type addToRotationRequest struct {
	ShoeID    string `json:"shoe_id" validate:"required"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *RotationHandler) add(w http.ResponseWriter, r *http.Request, user auth.User) {
	var req addToRotationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	start := time.Now().UTC()
	if req.StartDate != "" {
		start, _ = time.Parse("2006-01-02", req.StartDate)
	}

	entry, err := h.deps.AddToRotation(r.Context(), user.ID, req.ShoeID, start)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	metrics.RecordRotationAdd()
	writeData(w, http.StatusCreated, entry, "Shoe added to rotation")
}
