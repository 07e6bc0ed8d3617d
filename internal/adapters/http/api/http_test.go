package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/turnoverhq/turnover/internal/adapters/auth"
	"github.com/turnoverhq/turnover/internal/adapters/http/api"
	"github.com/turnoverhq/turnover/internal/adapters/repository"
	"github.com/turnoverhq/turnover/internal/domain/model"
)

// stubVerifier authenticates any non-empty bearer token as a fixed user.
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (auth.User, error) {
	if token == "" {
		return auth.User{}, auth.ErrInvalidToken
	}
	return auth.User{ID: "user-1", Email: "runner@example.com"}, nil
}

// mockDeps implements api.Dependencies and api.StatsProvider with function fields so
// each test can override exactly what it needs.
type mockDeps struct {
	listShoes func(context.Context, repository.ShoeFilter) ([]model.Shoe, error)
	getShoe   func(context.Context, string) (model.Shoe, error)
	retire    func(context.Context, string, string, int, *string, *float64) (model.RetiredShoe, error)
	addToRot  func(context.Context, string, string, time.Time) (model.RotationShoe, error)
	recommend func(context.Context, string, model.Category, int) (model.RecommendationSet, error)
	similar   func(context.Context, string, string, int) ([]model.Recommendation, error)
	ping      func(context.Context) error
}

func (m *mockDeps) ListShoes(ctx context.Context, f repository.ShoeFilter) ([]model.Shoe, error) {
	if m.listShoes != nil {
		return m.listShoes(ctx, f)
	}
	return []model.Shoe{{ID: "shoe-1", Brand: "Hoka", Name: "Clifton 9", Category: model.CategoryDaily, Weight: 283}}, nil
}

func (m *mockDeps) GetShoe(ctx context.Context, id string) (model.Shoe, error) {
	if m.getShoe != nil {
		return m.getShoe(ctx, id)
	}
	return model.Shoe{ID: id, Brand: "Hoka", Name: "Clifton 9", Category: model.CategoryDaily, Weight: 283}, nil
}

func (m *mockDeps) CreateShoe(_ context.Context, sh model.Shoe) (model.Shoe, error) {
	sh.ID = "shoe-new"
	return sh, nil
}

func (m *mockDeps) UpdateShoe(_ context.Context, id string, _ repository.ShoeUpdate) (model.Shoe, error) {
	return model.Shoe{ID: id, Brand: "Hoka", Name: "Clifton 10", Category: model.CategoryDaily, Weight: 280}, nil
}

func (m *mockDeps) DeleteShoe(context.Context, string) error { return nil }

func (m *mockDeps) Rotation(context.Context, string, model.Category) ([]model.RotationShoe, error) {
	return nil, nil
}

func (m *mockDeps) AddToRotation(ctx context.Context, userID, shoeID string, start time.Time) (model.RotationShoe, error) {
	if m.addToRot != nil {
		return m.addToRot(ctx, userID, shoeID, start)
	}
	return model.RotationShoe{Shoe: model.Shoe{ID: shoeID}, UserID: userID, StartDate: start}, nil
}

func (m *mockDeps) RemoveFromRotation(context.Context, string, string) error { return nil }

func (m *mockDeps) Graveyard(context.Context, string, repository.GraveyardFilter) ([]model.RetiredShoe, error) {
	return nil, nil
}

func (m *mockDeps) RetireShoe(ctx context.Context, userID, shoeID string, rating int, review *string, milesRun *float64) (model.RetiredShoe, error) {
	if m.retire != nil {
		return m.retire(ctx, userID, shoeID, rating, review, milesRun)
	}
	return model.RetiredShoe{Shoe: model.Shoe{ID: shoeID}, UserID: userID, Rating: rating}, nil
}

func (m *mockDeps) UpdateRetiredShoe(_ context.Context, userID, shoeID string, _ repository.RetiredShoeUpdate) (model.RetiredShoe, error) {
	return model.RetiredShoe{Shoe: model.Shoe{ID: shoeID}, UserID: userID, Rating: 4}, nil
}

func (m *mockDeps) DeleteFromGraveyard(context.Context, string, string) error { return nil }

func (m *mockDeps) Profile(_ context.Context, user auth.User) (model.Profile, error) {
	return model.Profile{ID: "profile-1", UserID: user.ID, Email: user.Email}, nil
}

func (m *mockDeps) UpdateProfile(_ context.Context, userID string, _ repository.ProfileUpdate) (model.Profile, error) {
	return model.Profile{ID: "profile-1", UserID: userID}, nil
}

func (m *mockDeps) UserShoeStats(context.Context, string) (model.UserShoeStats, error) {
	return model.UserShoeStats{ActiveShoes: 2, RetiredShoes: 3, TotalShoes: 5, AvgRating: 4.3}, nil
}

func (m *mockDeps) Recommendations(ctx context.Context, userID string, category model.Category, limit int) (model.RecommendationSet, error) {
	if m.recommend != nil {
		return m.recommend(ctx, userID, category, limit)
	}
	return model.RecommendationSet{Recommendations: []model.Recommendation{}, BasedOnShoes: []string{}}, nil
}

func (m *mockDeps) SimilarShoes(ctx context.Context, userID, shoeID string, limit int) ([]model.Recommendation, error) {
	if m.similar != nil {
		return m.similar(ctx, userID, shoeID, limit)
	}
	return []model.Recommendation{}, nil
}

func (m *mockDeps) Ping(ctx context.Context) error {
	if m.ping != nil {
		return m.ping(ctx)
	}
	return nil
}

func (m *mockDeps) GetStats(context.Context) (map[string]any, error) {
	return map[string]any{"catalog_size": 1}, nil
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stubVerifier{}, deps).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		payload = bytes.NewBuffer(b)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestCatalogRoutes(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		convey.Convey("GET /api/shoes is public and returns the envelope", func() {
			w := do(mux, http.MethodGet, "/api/shoes?category=daily", "", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			var resp struct {
				Data    []model.Shoe `json:"data"`
				Success bool         `json:"success"`
			}
			convey.So(json.Unmarshal(w.Body.Bytes(), &resp), convey.ShouldBeNil)
			convey.So(resp.Success, convey.ShouldBeTrue)
			convey.So(resp.Data, convey.ShouldHaveLength, 1)
		})

		convey.Convey("GET /api/shoes with a bogus category is rejected", func() {
			w := do(mux, http.MethodGet, "/api/shoes?category=trail", "", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("POST /api/shoes without a token is unauthorized", func() {
			w := do(mux, http.MethodPost, "/api/shoes", "", map[string]any{})
			convey.So(w.Code, convey.ShouldEqual, http.StatusUnauthorized)
			convey.So(w.Header().Get("WWW-Authenticate"), convey.ShouldEqual, "Bearer")
		})

		convey.Convey("POST /api/shoes with a valid body creates", func() {
			w := do(mux, http.MethodPost, "/api/shoes", "token", map[string]any{
				"brand":    "Hoka",
				"name":     "Mach 6",
				"category": "workout",
				"tags":     []string{"responsive", "lightweight"},
				"weight":   232,
			})
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "shoe-new")
		})

		convey.Convey("POST /api/shoes with an invalid category fails validation", func() {
			w := do(mux, http.MethodPost, "/api/shoes", "token", map[string]any{
				"brand":    "Hoka",
				"name":     "Speedgoat",
				"category": "trail",
				"tags":     []string{"durable"},
				"weight":   290,
			})
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("GET /api/shoes/{id} maps missing records to 404", func() {
			deps.getShoe = func(context.Context, string) (model.Shoe, error) {
				return model.Shoe{}, repository.ErrShoeNotFound
			}
			w := do(mux, http.MethodGet, "/api/shoes/ghost", "", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)

			var resp struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			convey.So(json.Unmarshal(w.Body.Bytes(), &resp), convey.ShouldBeNil)
			convey.So(resp.Code, convey.ShouldEqual, "not_found")
		})

		convey.Convey("DELETE /api/shoes/{id} with a token returns no content", func() {
			w := do(mux, http.MethodDelete, "/api/shoes/shoe-1", "token", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNoContent)
		})
	})
}

func TestRotationRoutes(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		convey.Convey("GET /api/rotation requires a token", func() {
			w := do(mux, http.MethodGet, "/api/rotation", "", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("POST /api/rotation adds a shoe", func() {
			w := do(mux, http.MethodPost, "/api/rotation", "token", map[string]any{"shoe_id": "shoe-1"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
		})

		convey.Convey("POST /api/rotation without a shoe_id fails validation", func() {
			w := do(mux, http.MethodPost, "/api/rotation", "token", map[string]any{})
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("A duplicate add maps to 400", func() {
			deps.addToRot = func(context.Context, string, string, time.Time) (model.RotationShoe, error) {
				return model.RotationShoe{}, repository.ErrAlreadyInRotation
			}
			w := do(mux, http.MethodPost, "/api/rotation", "token", map[string]any{"shoe_id": "shoe-1"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)

			var resp struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			convey.So(json.Unmarshal(w.Body.Bytes(), &resp), convey.ShouldBeNil)
			convey.So(resp.Code, convey.ShouldEqual, "duplicate")
		})

		convey.Convey("DELETE /api/rotation/{shoe_id} removes it", func() {
			w := do(mux, http.MethodDelete, "/api/rotation/shoe-1", "token", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNoContent)
		})
	})
}

func TestGraveyardRoutes(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		convey.Convey("POST /api/graveyard retires a shoe", func() {
			w := do(mux, http.MethodPost, "/api/graveyard", "token", map[string]any{
				"shoe_id": "shoe-1",
				"rating":  4,
				"review":  "good trainer",
			})
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
		})

		convey.Convey("A rating outside 1..5 fails validation", func() {
			w := do(mux, http.MethodPost, "/api/graveyard", "token", map[string]any{
				"shoe_id": "shoe-1",
				"rating":  6,
			})
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("Retiring a shoe outside the rotation maps to 404", func() {
			deps.retire = func(context.Context, string, string, int, *string, *float64) (model.RetiredShoe, error) {
				return model.RetiredShoe{}, repository.ErrNotInRotation
			}
			w := do(mux, http.MethodPost, "/api/graveyard", "token", map[string]any{
				"shoe_id": "shoe-1",
				"rating":  4,
			})
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("PATCH /api/graveyard/{shoe_id} edits the record", func() {
			w := do(mux, http.MethodPatch, "/api/graveyard/shoe-1", "token", map[string]any{"rating": 5})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestProfileRoutes(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		mux := newTestMux(&mockDeps{})

		convey.Convey("GET /api/users/me returns the caller's profile", func() {
			w := do(mux, http.MethodGet, "/api/users/me", "token", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "user-1")
		})

		convey.Convey("PATCH /api/users/me with a bogus category fails validation", func() {
			w := do(mux, http.MethodPatch, "/api/users/me", "token", map[string]any{
				"preferred_categories": []string{"trail"},
			})
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("GET /api/users/{user_id}/stats returns the caller's counts", func() {
			w := do(mux, http.MethodGet, "/api/users/user-1/stats", "token", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			var resp struct {
				Data model.UserShoeStats `json:"data"`
			}
			convey.So(json.Unmarshal(w.Body.Bytes(), &resp), convey.ShouldBeNil)
			convey.So(resp.Data.ActiveShoes, convey.ShouldEqual, 2)
			convey.So(resp.Data.RetiredShoes, convey.ShouldEqual, 3)
			convey.So(resp.Data.TotalShoes, convey.ShouldEqual, 5)
			convey.So(resp.Data.AvgRating, convey.ShouldEqual, 4.3)
		})

		convey.Convey("GET another user's stats is forbidden", func() {
			w := do(mux, http.MethodGet, "/api/users/someone-else/stats", "token", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusForbidden)
		})

		convey.Convey("GET stats without a token is unauthorized", func() {
			w := do(mux, http.MethodGet, "/api/users/user-1/stats", "", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("An unknown users sub-path is not found", func() {
			w := do(mux, http.MethodGet, "/api/users/user-1/badges", "token", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRecommendationRoutes(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		convey.Convey("GET /api/recommendations clamps the limit", func() {
			var gotLimit int
			deps.recommend = func(_ context.Context, _ string, _ model.Category, limit int) (model.RecommendationSet, error) {
				gotLimit = limit
				return model.RecommendationSet{}, nil
			}

			w := do(mux, http.MethodGet, "/api/recommendations?limit=999", "token", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(gotLimit, convey.ShouldEqual, 20)
		})

		convey.Convey("A junk limit falls back to the default", func() {
			var gotLimit int
			deps.recommend = func(_ context.Context, _ string, _ model.Category, limit int) (model.RecommendationSet, error) {
				gotLimit = limit
				return model.RecommendationSet{}, nil
			}

			w := do(mux, http.MethodGet, "/api/recommendations?limit=banana", "token", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(gotLimit, convey.ShouldEqual, 5)
		})

		convey.Convey("GET /api/recommendations/similar/{shoe_id} passes the shoe through", func() {
			var gotShoe string
			deps.similar = func(_ context.Context, _ string, shoeID string, _ int) ([]model.Recommendation, error) {
				gotShoe = shoeID
				return []model.Recommendation{}, nil
			}

			w := do(mux, http.MethodGet, "/api/recommendations/similar/shoe-7", "token", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(gotShoe, convey.ShouldEqual, "shoe-7")
		})

		convey.Convey("Both routes require a token", func() {
			convey.So(do(mux, http.MethodGet, "/api/recommendations", "", nil).Code,
				convey.ShouldEqual, http.StatusUnauthorized)
			convey.So(do(mux, http.MethodGet, "/api/recommendations/similar/shoe-7", "", nil).Code,
				convey.ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestOpsRoutes(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		convey.Convey("GET /healthz reports ok while the store responds", func() {
			w := do(mux, http.MethodGet, "/healthz", "", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "ok")
		})

		convey.Convey("GET /healthz degrades when the store is down", func() {
			deps.ping = func(context.Context) error { return context.DeadlineExceeded }
			w := do(mux, http.MethodGet, "/healthz", "", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})

		convey.Convey("GET /stats returns the raw counter snapshot", func() {
			w := do(mux, http.MethodGet, "/stats", "", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "catalog_size")
		})

		convey.Convey("GET /metrics serves the Prometheus registry", func() {
			w := do(mux, http.MethodGet, "/metrics", "", nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}
