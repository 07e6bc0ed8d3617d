package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/turnoverhq/turnover/internal/adapters/auth"
	"github.com/turnoverhq/turnover/internal/adapters/repository"
	"github.com/turnoverhq/turnover/internal/domain/model"
)

// ProfileDependencies defines the interface for profile operations.
type ProfileDependencies interface {
	Profile(ctx context.Context, user auth.User) (model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, u repository.ProfileUpdate) (model.Profile, error)
	UserShoeStats(ctx context.Context, userID string) (model.UserShoeStats, error)
}

// UsersHandler serves the authenticated user's own profile.
type UsersHandler struct {
	deps     ProfileDependencies
	verifier auth.Verifier
}

// NewUsersHandler creates a new profile handler.
func NewUsersHandler(deps ProfileDependencies, verifier auth.Verifier) *UsersHandler {
	return &UsersHandler{deps: deps, verifier: verifier}
}

// HandleMe handles GET and PATCH /api/users/me.
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := authenticate(h.verifier, w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, user)
	case http.MethodPatch:
		h.update(w, r, user)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem handles GET /api/users/{user_id}/stats. A user may only read
// their own statistics.
func (h *UsersHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	user, ok := authenticate(h.verifier, w, r)
	if !ok {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	userID, tail, found := strings.Cut(rest, "/")
	if !found || tail != "stats" || userID == "" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if userID != user.ID {
		writeError(w, http.StatusForbidden, "forbidden", ErrForbidden)
		return
	}

	stats, err := h.deps.UserShoeStats(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats, "")
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request, user auth.User) {
	profile, err := h.deps.Profile(r.Context(), user)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, profile, "")
}

type updateProfileRequest struct {
	FirstName           *string   `json:"first_name" validate:"omitempty,min=1"`
	LastName            *string   `json:"last_name" validate:"omitempty,min=1"`
	AvgMilesPerWeek     *float64  `json:"avg_miles_per_week" validate:"omitempty,gte=0"`
	PreferredCategories *[]string `json:"preferred_categories" validate:"omitempty,dive,oneof=daily workout race"`
}

func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request, user auth.User) {
	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	u := repository.ProfileUpdate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		AvgMilesPerWeek: req.AvgMilesPerWeek,
	}
	if req.PreferredCategories != nil {
		cats := make([]model.Category, 0, len(*req.PreferredCategories))
		for _, raw := range *req.PreferredCategories {
			cats = append(cats, model.Category(raw))
		}
		u.PreferredCategories = &cats
	}

	profile, err := h.deps.UpdateProfile(r.Context(), user.ID, u)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, profile, "Profile updated")
}
