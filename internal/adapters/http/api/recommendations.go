package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/turnoverhq/turnover/internal/adapters/auth"
	"github.com/turnoverhq/turnover/internal/domain/model"
	"github.com/turnoverhq/turnover/internal/domain/scoring"
	"github.com/turnoverhq/turnover/pkg/metrics"
)

// RecommendationDependencies defines the interface for the scoring surface.
type RecommendationDependencies interface {
	Recommendations(ctx context.Context, userID string, category model.Category, limit int) (model.RecommendationSet, error)
	SimilarShoes(ctx context.Context, userID, shoeID string, limit int) ([]model.Recommendation, error)
}

// RecommendationsHandler serves personalized picks and per-shoe similarity
// lookups. Both routes require authentication.
type RecommendationsHandler struct {
	deps     RecommendationDependencies
	verifier auth.Verifier
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationDependencies, verifier auth.Verifier) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps, verifier: verifier}
}

// HandleRecommendations handles GET /api/recommendations.
func (h *RecommendationsHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	user, ok := authenticate(h.verifier, w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var category model.Category
	if raw := q.Get("category"); raw != "" {
		c, err := model.ParseCategory(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		category = c
	}
	limit := parseLimit(q.Get("limit"), scoring.DefaultRecommendationLimit, scoring.MaxRecommendationLimit)

	set, err := h.deps.Recommendations(r.Context(), user.ID, category, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	metrics.RecordRecommendationsServed(len(set.Recommendations))
	writeData(w, http.StatusOK, set, "")
}

// HandleSimilar handles GET /api/recommendations/similar/{shoe_id}.
func (h *RecommendationsHandler) HandleSimilar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	user, ok := authenticate(h.verifier, w, r)
	if !ok {
		return
	}

	shoeID := strings.TrimPrefix(r.URL.Path, "/api/recommendations/similar/")
	if shoeID == "" || strings.Contains(shoeID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"), scoring.DefaultSimilarityLimit, scoring.MaxSimilarityLimit)

	recs, err := h.deps.SimilarShoes(r.Context(), user.ID, shoeID, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	metrics.RecordSimilarityQuery()
	writeData(w, http.StatusOK, recs, "")
}

// parseLimit reads a limit query parameter, clamping junk and out-of-range
// values to the route defaults.
func parseLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return scoring.ClampLimit(n, def, max)
}
