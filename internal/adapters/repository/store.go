// Package repository defines the persistence interface for the catalog,
// per-user rotation and graveyard, and user profiles.
package repository

import (
	"context"
	"time"

	"github.com/turnoverhq/turnover/internal/domain/model"
)

// Default pagination bounds for catalog listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ShoeFilter narrows catalog listings. Zero values mean "no filter".
type ShoeFilter struct {
	Category model.Category // exact category match
	Brand    string         // case-insensitive substring match
	Search   string         // case-insensitive substring match on name or brand
	Page     int            // 1-based
	PageSize int
}

// ShoeUpdate carries a partial catalog update. Nil fields stay untouched.
type ShoeUpdate struct {
	Brand               *string
	Name                *string
	Category            *model.Category
	Tags                *[]string
	Weight              *float64
	Drop                *float64
	StackHeightHeel     *float64
	StackHeightForefoot *float64
	ImageURL            *string
}

// GraveyardFilter narrows and orders graveyard listings.
type GraveyardFilter struct {
	Category  model.Category
	MinRating int    // 0 means no minimum
	SortBy    string // retired_at (default), rating, name, brand
	SortDesc  bool
}

// RetiredShoeUpdate carries a partial graveyard update. Nil fields stay
// untouched.
type RetiredShoeUpdate struct {
	Rating   *int
	Review   *string
	MilesRun *float64
}

// ProfileUpdate carries a partial profile update. Nil fields stay untouched.
type ProfileUpdate struct {
	FirstName           *string
	LastName            *string
	AvgMilesPerWeek     *float64
	PreferredCategories *[]model.Category
}

// Store provides read/write access to catalog, rotation, graveyard, and
// profile state.
type Store interface {
	// Catalog.
	ListShoes(ctx context.Context, f ShoeFilter) ([]model.Shoe, error)
	GetShoe(ctx context.Context, id string) (model.Shoe, error)
	CreateShoe(ctx context.Context, s model.Shoe) (model.Shoe, error)
	UpdateShoe(ctx context.Context, id string, u ShoeUpdate) (model.Shoe, error)
	DeleteShoe(ctx context.Context, id string) error
	CountShoes(ctx context.Context) (int, error)

	// Rotation. AddToRotation returns ErrShoeNotFound for unknown shoes and
	// ErrAlreadyInRotation when the user already runs the shoe.
	Rotation(ctx context.Context, userID string, category model.Category) ([]model.RotationShoe, error)
	AddToRotation(ctx context.Context, userID, shoeID string, start time.Time) (model.RotationShoe, error)
	RemoveFromRotation(ctx context.Context, userID, shoeID string) error

	// Graveyard. RetireShoe moves a shoe from the rotation to the graveyard
	// in one transaction; duplicate retirement is governed by the store's
	// repeat-retire policy.
	Graveyard(ctx context.Context, userID string, f GraveyardFilter) ([]model.RetiredShoe, error)
	RetireShoe(ctx context.Context, userID, shoeID string, rating int, review *string, milesRun *float64) (model.RetiredShoe, error)
	UpdateRetiredShoe(ctx context.Context, userID, shoeID string, u RetiredShoeUpdate) (model.RetiredShoe, error)
	DeleteFromGraveyard(ctx context.Context, userID, shoeID string) error

	// Scoring inputs. TopRatedShoes returns up to limit shoes the user rated
	// at least minRating, best first. OwnedShoeIDs returns the union of the
	// user's rotation and graveyard shoe IDs for candidate exclusion.
	TopRatedShoes(ctx context.Context, userID string, minRating, limit int) ([]model.Shoe, error)
	OwnedShoeIDs(ctx context.Context, userID string) (map[string]struct{}, error)

	// UserShoeStats aggregates the user's rotation and graveyard counts and
	// the average graveyard rating.
	UserShoeStats(ctx context.Context, userID string) (model.UserShoeStats, error)

	// Profiles.
	GetProfile(ctx context.Context, userID string) (model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (model.Profile, error)
	CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
}
