// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turnoverhq/turnover/internal/adapters/auth"
	"github.com/turnoverhq/turnover/internal/adapters/repository"
	"github.com/turnoverhq/turnover/internal/domain/model"
	"github.com/turnoverhq/turnover/internal/domain/scoring"
	"github.com/turnoverhq/turnover/pkg/logger"
	"github.com/turnoverhq/turnover/pkg/metrics"
)

// Defaults for the top-rated window that feeds brand affinity scoring.
const (
	defaultTopRatedMinRating = 4
	defaultTopRatedLimit     = 5
)

// Service implements the API dependencies for the shoe rotation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	engine *scoring.Engine

	// Configuration
	dbPath            string
	weights           scoring.Weights
	allowRepeatRetire bool
	topRatedMinRating int
	topRatedLimit     int

	// State
	ownsStore bool
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDBPath sets the SQLite database path opened on Start.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithStore injects a pre-built store, mostly for tests. The service will
// not close an injected store on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithScoringWeights overrides the scoring weight table.
func WithScoringWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithRepeatRetirePolicy controls whether retiring an already retired shoe
// succeeds or fails.
func WithRepeatRetirePolicy(allow bool) Option {
	return func(s *Service) {
		s.allowRepeatRetire = allow
	}
}

// WithTopRatedWindow sets which graveyard shoes count as "top rated" for
// brand affinity: minimum rating and how many to consider.
func WithTopRatedWindow(minRating, limit int) Option {
	return func(s *Service) {
		if minRating >= 1 && minRating <= 5 {
			s.topRatedMinRating = minRating
		}
		if limit > 0 {
			s.topRatedLimit = limit
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:            "turnover.db",
		weights:           scoring.DefaultWeights(),
		topRatedMinRating: defaultTopRatedMinRating,
		topRatedLimit:     defaultTopRatedLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and builds the scoring engine.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting rotation service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.dbPath,
			repository.WithRepeatRetirePolicy(s.allowRepeatRetire),
		)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}
	s.engine = scoring.NewEngine(scoring.WithWeights(s.weights))

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "rotation service started",
		logger.String("dbPath", s.dbPath),
		logger.Int("topRatedMinRating", s.topRatedMinRating),
		logger.Int("topRatedLimit", s.topRatedLimit),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping rotation service...")

	if s.ownsStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "rotation service stopped")
}

// ListShoes returns a filtered page of the catalog.
func (s *Service) ListShoes(ctx context.Context, f repository.ShoeFilter) ([]model.Shoe, error) {
	return s.timedShoes(ctx, func() ([]model.Shoe, error) {
		return s.store.ListShoes(ctx, f)
	})
}

// GetShoe returns a single catalog entry.
func (s *Service) GetShoe(ctx context.Context, id string) (model.Shoe, error) {
	return s.store.GetShoe(ctx, id)
}

// CreateShoe validates and stores a new catalog entry.
func (s *Service) CreateShoe(ctx context.Context, sh model.Shoe) (model.Shoe, error) {
	if err := sh.Validate(); err != nil {
		return model.Shoe{}, err
	}
	created, err := s.store.CreateShoe(ctx, sh)
	if err != nil {
		return model.Shoe{}, err
	}
	s.refreshCatalogSize(ctx)
	return created, nil
}

// UpdateShoe applies a partial catalog update.
func (s *Service) UpdateShoe(ctx context.Context, id string, u repository.ShoeUpdate) (model.Shoe, error) {
	return s.store.UpdateShoe(ctx, id, u)
}

// DeleteShoe removes a catalog entry.
func (s *Service) DeleteShoe(ctx context.Context, id string) error {
	if err := s.store.DeleteShoe(ctx, id); err != nil {
		return err
	}
	s.refreshCatalogSize(ctx)
	return nil
}

// Rotation lists the user's active rotation, optionally narrowed to one
// category.
func (s *Service) Rotation(ctx context.Context, userID string, category model.Category) ([]model.RotationShoe, error) {
	return s.store.Rotation(ctx, userID, category)
}

// AddToRotation puts a catalog shoe into the user's rotation.
func (s *Service) AddToRotation(ctx context.Context, userID, shoeID string, start time.Time) (model.RotationShoe, error) {
	return s.store.AddToRotation(ctx, userID, shoeID, start)
}

// RemoveFromRotation takes a shoe out of the user's rotation without
// retiring it.
func (s *Service) RemoveFromRotation(ctx context.Context, userID, shoeID string) error {
	return s.store.RemoveFromRotation(ctx, userID, shoeID)
}

// Graveyard lists the user's retired shoes.
func (s *Service) Graveyard(ctx context.Context, userID string, f repository.GraveyardFilter) ([]model.RetiredShoe, error) {
	return s.store.Graveyard(ctx, userID, f)
}

// RetireShoe moves a shoe from the rotation to the graveyard.
func (s *Service) RetireShoe(ctx context.Context, userID, shoeID string, rating int, review *string, milesRun *float64) (model.RetiredShoe, error) {
	retired, err := s.store.RetireShoe(ctx, userID, shoeID, rating, review, milesRun)
	if err != nil {
		return model.RetiredShoe{}, err
	}
	s.logger.Info(ctx, "shoe retired",
		logger.String("userID", userID),
		logger.String("shoeID", shoeID),
		logger.Int("rating", rating),
	)
	return retired, nil
}

// UpdateRetiredShoe edits the rating, review, or mileage of a retired shoe.
func (s *Service) UpdateRetiredShoe(ctx context.Context, userID, shoeID string, u repository.RetiredShoeUpdate) (model.RetiredShoe, error) {
	return s.store.UpdateRetiredShoe(ctx, userID, shoeID, u)
}

// DeleteFromGraveyard removes a retired shoe record entirely.
func (s *Service) DeleteFromGraveyard(ctx context.Context, userID, shoeID string) error {
	return s.store.DeleteFromGraveyard(ctx, userID, shoeID)
}

// Profile returns the caller's profile, creating an empty one on first
// access so new accounts never see a 404 on their own record.
func (s *Service) Profile(ctx context.Context, user auth.User) (model.Profile, error) {
	profile, err := s.store.GetProfile(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrProfileNotFound) {
		return model.Profile{}, err
	}

	s.logger.Info(ctx, "creating profile on first access",
		logger.String("userID", user.ID),
	)
	return s.store.CreateProfile(ctx, model.Profile{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Email:  user.Email,
	})
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, u repository.ProfileUpdate) (model.Profile, error) {
	return s.store.UpdateProfile(ctx, userID, u)
}

// UserShoeStats summarizes the user's rotation and graveyard inventory.
func (s *Service) UserShoeStats(ctx context.Context, userID string) (model.UserShoeStats, error) {
	return s.store.UserShoeStats(ctx, userID)
}

// Recommendations scores every catalog shoe the user does not already own
// against their preferences and top-rated history, and returns the best
// matches above the recommendation cutoff.
func (s *Service) Recommendations(ctx context.Context, userID string, category model.Category, limit int) (model.RecommendationSet, error) {
	limit = scoring.ClampLimit(limit, scoring.DefaultRecommendationLimit, scoring.MaxRecommendationLimit)

	prefs, err := s.preferences(ctx, userID)
	if err != nil {
		return model.RecommendationSet{}, err
	}

	topRated, err := s.store.TopRatedShoes(ctx, userID, s.topRatedMinRating, s.topRatedLimit)
	if err != nil {
		return model.RecommendationSet{}, err
	}

	owned, err := s.store.OwnedShoeIDs(ctx, userID)
	if err != nil {
		return model.RecommendationSet{}, err
	}

	candidates, err := s.allShoes(ctx, category)
	if err != nil {
		return model.RecommendationSet{}, err
	}

	start := time.Now()
	scored := make([]model.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := owned[c.ID]; skip {
			continue
		}
		res := s.engine.Recommend(c, prefs, topRated)
		scored = append(scored, model.Recommendation{
			Shoe:        c,
			Score:       res.Score,
			Explanation: res.Explanation,
		})
	}
	metrics.RecordScoringDuration(float64(time.Since(start).Microseconds()) / 1000.0)

	basedOn := make([]string, 0, len(topRated))
	for _, sh := range topRated {
		basedOn = append(basedOn, sh.ID)
	}

	return model.RecommendationSet{
		Recommendations: scoring.Rank(scored, scoring.RecommendationCutoff, limit),
		BasedOnShoes:    basedOn,
	}, nil
}

// SimilarShoes ranks the catalog by similarity to one reference shoe.
func (s *Service) SimilarShoes(ctx context.Context, userID, shoeID string, limit int) ([]model.Recommendation, error) {
	limit = scoring.ClampLimit(limit, scoring.DefaultSimilarityLimit, scoring.MaxSimilarityLimit)

	reference, err := s.store.GetShoe(ctx, shoeID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.allShoes(ctx, "")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scored := make([]model.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == reference.ID {
			continue
		}
		res := s.engine.Similarity(reference, c)
		scored = append(scored, model.Recommendation{
			Shoe:        c,
			Score:       res.Score,
			Explanation: res.Explanation,
		})
	}
	metrics.RecordScoringDuration(float64(time.Since(start).Microseconds()) / 1000.0)

	return scoring.Rank(scored, scoring.SimilarityCutoff, limit), nil
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if pinger, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// CountShoes returns the catalog size.
func (s *Service) CountShoes(ctx context.Context) (int, error) {
	return s.store.CountShoes(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) (map[string]any, error) {
	count, err := s.store.CountShoes(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"catalog_size":         count,
		"started":              s.started,
		"uptime_seconds":       int64(time.Since(s.startedAt).Seconds()),
		"top_rated_min_rating": s.topRatedMinRating,
		"top_rated_limit":      s.topRatedLimit,
		"scoring_weights":      s.engine.Weights(),
	}, nil
}

// preferences loads the user's stated preferences, treating a missing
// profile as empty preferences rather than an error.
func (s *Service) preferences(ctx context.Context, userID string) (model.Preferences, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return model.Preferences{}, nil
	}
	if err != nil {
		return model.Preferences{}, err
	}
	return profile.Preferences(), nil
}

// allShoes pages through the whole catalog, optionally narrowed to one
// category. The catalog is small enough that paging in memory is fine.
func (s *Service) allShoes(ctx context.Context, category model.Category) ([]model.Shoe, error) {
	var all []model.Shoe
	for page := 1; ; page++ {
		batch, err := s.store.ListShoes(ctx, repository.ShoeFilter{
			Category: category,
			Page:     page,
			PageSize: repository.MaxPageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < repository.MaxPageSize {
			return all, nil
		}
	}
}

// timedShoes runs a store read and records its latency.
func (s *Service) timedShoes(ctx context.Context, fn func() ([]model.Shoe, error)) ([]model.Shoe, error) {
	start := time.Now()
	shoes, err := fn()
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return shoes, err
}

// refreshCatalogSize updates the catalog size gauge after a write; failures
// only cost a stale gauge.
func (s *Service) refreshCatalogSize(ctx context.Context) {
	if count, err := s.store.CountShoes(ctx); err == nil {
		metrics.UpdateCatalogSize(count)
	}
}
