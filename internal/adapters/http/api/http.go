// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/turnoverhq/turnover/internal/adapters/auth"
	"github.com/turnoverhq/turnover/internal/adapters/repository"
	"github.com/turnoverhq/turnover/internal/domain/model"
	"github.com/turnoverhq/turnover/pkg/metrics"
)

// Dependencies bundles everything the HTTP handlers need from the service
// layer. Using an interface bundle keeps the handler layer loosely coupled
// to implementations in other packages.
type Dependencies interface {
	CatalogDependencies
	RotationDependencies
	GraveyardDependencies
	ProfileDependencies
	RecommendationDependencies
	HealthDependencies
}

// validate is shared by every request payload in this package.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Server wires HTTP routes for the business API.
type Server struct {
	shoesHandler          *ShoesHandler
	rotationHandler       *RotationHandler
	graveyardHandler      *GraveyardHandler
	usersHandler          *UsersHandler
	recommendationHandler *RecommendationsHandler
	healthHandler         *HealthHandler
	statsHandler          *StatsHandler
}

// NewServer creates a new API server with all handlers. The verifier
// guards the authenticated routes.
func NewServer(deps Dependencies, verifier auth.Verifier, statsProvider StatsProvider) *Server {
	return &Server{
		shoesHandler:          NewShoesHandler(deps, verifier),
		rotationHandler:       NewRotationHandler(deps, verifier),
		graveyardHandler:      NewGraveyardHandler(deps, verifier),
		usersHandler:          NewUsersHandler(deps, verifier),
		recommendationHandler: NewRecommendationsHandler(deps, verifier),
		healthHandler:         NewHealthHandler(deps),
		statsHandler:          NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific).
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", metricsHandler())

	mux.HandleFunc("/api/shoes", MetricsMiddleware(s.shoesHandler.HandleCollection, "shoes"))
	mux.HandleFunc("/api/shoes/", MetricsMiddleware(s.shoesHandler.HandleItem, "shoe"))
	mux.HandleFunc("/api/rotation", MetricsMiddleware(s.rotationHandler.HandleCollection, "rotation"))
	mux.HandleFunc("/api/rotation/", MetricsMiddleware(s.rotationHandler.HandleItem, "rotation_item"))
	mux.HandleFunc("/api/graveyard", MetricsMiddleware(s.graveyardHandler.HandleCollection, "graveyard"))
	mux.HandleFunc("/api/graveyard/", MetricsMiddleware(s.graveyardHandler.HandleItem, "graveyard_item"))
	mux.HandleFunc("/api/users/me", MetricsMiddleware(s.usersHandler.HandleMe, "users_me"))
	mux.HandleFunc("/api/users/", MetricsMiddleware(s.usersHandler.HandleItem, "user_stats"))
	mux.HandleFunc("/api/recommendations", MetricsMiddleware(s.recommendationHandler.HandleRecommendations, "recommendations"))
	mux.HandleFunc("/api/recommendations/similar/", MetricsMiddleware(s.recommendationHandler.HandleSimilar, "similar"))
}

// apiResponse is the success envelope shared by every endpoint.
type apiResponse struct {
	Data    any    `json:"data"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
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

// writeData wraps v in the success envelope.
func writeData(w http.ResponseWriter, status int, v any, message string) {
	writeJSON(w, status, apiResponse{Data: v, Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError translates store and domain sentinel errors into HTTP
// status codes, falling back to 500 for anything unexpected.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrShoeNotFound),
		errors.Is(err, repository.ErrNotInRotation),
		errors.Is(err, repository.ErrNotInGraveyard),
		errors.Is(err, repository.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrAlreadyInRotation),
		errors.Is(err, repository.ErrAlreadyRetired):
		writeError(w, http.StatusBadRequest, "duplicate", err)
	case errors.Is(err, repository.ErrNoFields),
		errors.Is(err, model.ErrInvalidShoe),
		errors.Is(err, model.ErrUnknownCategory),
		errors.Is(err, model.ErrUnknownTag):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		metrics.RecordStoreError()
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeBody decodes and validates a JSON request payload.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}
