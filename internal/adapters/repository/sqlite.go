package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/turnoverhq/turnover/internal/domain/model"

	_ "modernc.org/sqlite" // pure-Go driver, no CGO
)

const schema = `
CREATE TABLE IF NOT EXISTS shoes (
	id TEXT PRIMARY KEY,
	brand TEXT NOT NULL,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	weight REAL NOT NULL,
	drop_mm REAL NOT NULL DEFAULT 0,
	stack_height_heel REAL NOT NULL DEFAULT 0,
	stack_height_forefoot REAL NOT NULL DEFAULT 0,
	image_url TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_shoes_category ON shoes(category);

CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	avg_miles_per_week REAL NOT NULL DEFAULT 0,
	preferred_categories TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rotation (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	shoe_id TEXT NOT NULL REFERENCES shoes(id) ON DELETE CASCADE,
	start_date TEXT NOT NULL,
	UNIQUE(user_id, shoe_id)
);
CREATE INDEX IF NOT EXISTS idx_rotation_user ON rotation(user_id);

CREATE TABLE IF NOT EXISTS graveyard (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	shoe_id TEXT NOT NULL REFERENCES shoes(id) ON DELETE CASCADE,
	retired_at TEXT NOT NULL,
	rating INTEGER NOT NULL,
	review TEXT,
	miles_run REAL
);
CREATE INDEX IF NOT EXISTS idx_graveyard_user ON graveyard(user_id);
CREATE INDEX IF NOT EXISTS idx_graveyard_rating ON graveyard(user_id, rating);
`

const shoeColumns = "id, brand, name, category, tags, weight, drop_mm, stack_height_heel, stack_height_forefoot, image_url, created_at, updated_at"

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	db                *sql.DB
	allowRepeatRetire bool
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral store in tests.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer avoids SQLITE_BUSY under concurrent request handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &SQLiteStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ping verifies store connectivity for health checks.
func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanShoe(sc scanner) (model.Shoe, error) {
	var (
		sh               model.Shoe
		tags             string
		created, updated string
	)
	err := sc.Scan(&sh.ID, &sh.Brand, &sh.Name, &sh.Category, &tags, &sh.Weight,
		&sh.Drop, &sh.StackHeightHeel, &sh.StackHeightForefoot, &sh.ImageURL,
		&created, &updated)
	if err != nil {
		return model.Shoe{}, err
	}
	sh.Tags = decodeStrings(tags)
	sh.CreatedAt = parseTime(created)
	sh.UpdatedAt = parseTime(updated)
	return sh, nil
}

// ListShoes returns catalog entries matching the filter, ordered by brand
// then name, paginated.
func (s *SQLiteStore) ListShoes(ctx context.Context, f ShoeFilter) ([]model.Shoe, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Brand != "" {
		where = append(where, "brand LIKE ? COLLATE NOCASE")
		args = append(args, "%"+f.Brand+"%")
	}
	if f.Search != "" {
		where = append(where, "(name LIKE ? COLLATE NOCASE OR brand LIKE ? COLLATE NOCASE)")
		args = append(args, "%"+f.Search+"%", "%"+f.Search+"%")
	}

	q := "SELECT " + shoeColumns + " FROM shoes"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY brand, name"

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	q += " LIMIT ? OFFSET ?"
	args = append(args, size, (page-1)*size)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list shoes: %w", err)
	}
	defer rows.Close()

	var out []model.Shoe
	for rows.Next() {
		sh, err := scanShoe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shoe: %w", err)
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// GetShoe returns a single catalog entry or ErrShoeNotFound.
func (s *SQLiteStore) GetShoe(ctx context.Context, id string) (model.Shoe, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+shoeColumns+" FROM shoes WHERE id = ?", id)
	sh, err := scanShoe(row)
	if err == sql.ErrNoRows {
		return model.Shoe{}, ErrShoeNotFound
	}
	if err != nil {
		return model.Shoe{}, fmt.Errorf("get shoe: %w", err)
	}
	return sh, nil
}

// CreateShoe inserts a catalog entry, minting an ID when none is supplied.
func (s *SQLiteStore) CreateShoe(ctx context.Context, sh model.Shoe) (model.Shoe, error) {
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sh.CreatedAt = now
	sh.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO shoes ("+shoeColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		sh.ID, sh.Brand, sh.Name, string(sh.Category), encodeStrings(sh.Tags), sh.Weight,
		sh.Drop, sh.StackHeightHeel, sh.StackHeightForefoot, sh.ImageURL,
		formatTime(now), formatTime(now))
	if err != nil {
		return model.Shoe{}, fmt.Errorf("create shoe: %w", err)
	}
	return sh, nil
}

// UpdateShoe applies a partial update and returns the refreshed record.
func (s *SQLiteStore) UpdateShoe(ctx context.Context, id string, u ShoeUpdate) (model.Shoe, error) {
	var (
		sets []string
		args []any
	)
	setField := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if u.Brand != nil {
		setField("brand", *u.Brand)
	}
	if u.Name != nil {
		setField("name", *u.Name)
	}
	if u.Category != nil {
		setField("category", string(*u.Category))
	}
	if u.Tags != nil {
		setField("tags", encodeStrings(*u.Tags))
	}
	if u.Weight != nil {
		setField("weight", *u.Weight)
	}
	if u.Drop != nil {
		setField("drop_mm", *u.Drop)
	}
	if u.StackHeightHeel != nil {
		setField("stack_height_heel", *u.StackHeightHeel)
	}
	if u.StackHeightForefoot != nil {
		setField("stack_height_forefoot", *u.StackHeightForefoot)
	}
	if u.ImageURL != nil {
		setField("image_url", *u.ImageURL)
	}
	if len(sets) == 0 {
		return model.Shoe{}, ErrNoFields
	}
	setField("updated_at", formatTime(time.Now().UTC()))
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE shoes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return model.Shoe{}, fmt.Errorf("update shoe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Shoe{}, ErrShoeNotFound
	}
	return s.GetShoe(ctx, id)
}

// DeleteShoe removes a catalog entry and, via cascade, any rotation and
// graveyard rows referencing it.
func (s *SQLiteStore) DeleteShoe(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM shoes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete shoe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShoeNotFound
	}
	return nil
}

// CountShoes returns the catalog size.
func (s *SQLiteStore) CountShoes(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM shoes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count shoes: %w", err)
	}
	return n, nil
}

// Rotation returns the user's active shoes joined with catalog details,
// newest first.
func (s *SQLiteStore) Rotation(ctx context.Context, userID string, category model.Category) ([]model.RotationShoe, error) {
	q := `SELECT s.id, s.brand, s.name, s.category, s.tags, s.weight, s.drop_mm,
		s.stack_height_heel, s.stack_height_forefoot, s.image_url, s.created_at, s.updated_at,
		r.user_id, r.start_date
		FROM rotation r JOIN shoes s ON s.id = r.shoe_id
		WHERE r.user_id = ?`
	args := []any{userID}
	if category != "" {
		q += " AND s.category = ?"
		args = append(args, string(category))
	}
	q += " ORDER BY r.start_date DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list rotation: %w", err)
	}
	defer rows.Close()

	var out []model.RotationShoe
	for rows.Next() {
		var (
			rs    model.RotationShoe
			tags  string
			times [3]string
		)
		if err := rows.Scan(&rs.ID, &rs.Brand, &rs.Name, &rs.Category, &tags, &rs.Weight,
			&rs.Drop, &rs.StackHeightHeel, &rs.StackHeightForefoot, &rs.ImageURL,
			&times[0], &times[1], &rs.UserID, &times[2]); err != nil {
			return nil, fmt.Errorf("scan rotation: %w", err)
		}
		rs.Tags = decodeStrings(tags)
		rs.CreatedAt = parseTime(times[0])
		rs.UpdatedAt = parseTime(times[1])
		rs.StartDate = parseTime(times[2])
		out = append(out, rs)
	}
	return out, rows.Err()
}

// AddToRotation puts a catalog shoe into the user's rotation.
func (s *SQLiteStore) AddToRotation(ctx context.Context, userID, shoeID string, start time.Time) (model.RotationShoe, error) {
	sh, err := s.GetShoe(ctx, shoeID)
	if err != nil {
		return model.RotationShoe{}, err
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT 1 FROM rotation WHERE user_id = ? AND shoe_id = ?", userID, shoeID).Scan(&exists)
	if err == nil {
		return model.RotationShoe{}, ErrAlreadyInRotation
	}
	if err != sql.ErrNoRows {
		return model.RotationShoe{}, fmt.Errorf("check rotation: %w", err)
	}

	if start.IsZero() {
		start = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO rotation (id, user_id, shoe_id, start_date) VALUES (?,?,?,?)",
		uuid.NewString(), userID, shoeID, formatTime(start))
	if err != nil {
		return model.RotationShoe{}, fmt.Errorf("add to rotation: %w", err)
	}
	return model.RotationShoe{Shoe: sh, UserID: userID, StartDate: start}, nil
}

// RemoveFromRotation drops a shoe from the rotation without retiring it.
func (s *SQLiteStore) RemoveFromRotation(ctx context.Context, userID, shoeID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM rotation WHERE user_id = ? AND shoe_id = ?", userID, shoeID)
	if err != nil {
		return fmt.Errorf("remove from rotation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotInRotation
	}
	return nil
}

// graveyardSortColumns whitelists user-supplied sort keys.
var graveyardSortColumns = map[string]string{
	"retired_at": "g.retired_at",
	"rating":     "g.rating",
	"name":       "s.name",
	"brand":      "s.brand",
}

// Graveyard returns the user's retired shoes joined with catalog details.
func (s *SQLiteStore) Graveyard(ctx context.Context, userID string, f GraveyardFilter) ([]model.RetiredShoe, error) {
	q := `SELECT s.id, s.brand, s.name, s.category, s.tags, s.weight, s.drop_mm,
		s.stack_height_heel, s.stack_height_forefoot, s.image_url, s.created_at, s.updated_at,
		g.user_id, g.retired_at, g.rating, g.review, g.miles_run
		FROM graveyard g JOIN shoes s ON s.id = g.shoe_id
		WHERE g.user_id = ?`
	args := []any{userID}
	if f.Category != "" {
		q += " AND s.category = ?"
		args = append(args, string(f.Category))
	}
	if f.MinRating > 0 {
		q += " AND g.rating >= ?"
		args = append(args, f.MinRating)
	}

	col, ok := graveyardSortColumns[f.SortBy]
	if !ok {
		col = "g.retired_at"
	}
	q += " ORDER BY " + col
	if f.SortDesc {
		q += " DESC"
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list graveyard: %w", err)
	}
	defer rows.Close()

	var out []model.RetiredShoe
	for rows.Next() {
		rs, err := scanRetired(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

func scanRetired(rows *sql.Rows) (model.RetiredShoe, error) {
	var (
		rs      model.RetiredShoe
		tags    string
		times   [3]string
		review  sql.NullString
		miles   sql.NullFloat64
		ratings int
	)
	if err := rows.Scan(&rs.ID, &rs.Brand, &rs.Name, &rs.Category, &tags, &rs.Weight,
		&rs.Drop, &rs.StackHeightHeel, &rs.StackHeightForefoot, &rs.ImageURL,
		&times[0], &times[1], &rs.UserID, &times[2], &ratings, &review, &miles); err != nil {
		return model.RetiredShoe{}, fmt.Errorf("scan graveyard: %w", err)
	}
	rs.Tags = decodeStrings(tags)
	rs.CreatedAt = parseTime(times[0])
	rs.UpdatedAt = parseTime(times[1])
	rs.RetiredAt = parseTime(times[2])
	rs.Rating = ratings
	if review.Valid {
		rs.Review = &review.String
	}
	if miles.Valid {
		rs.MilesRun = &miles.Float64
	}
	return rs, nil
}

// RetireShoe moves a shoe from the user's rotation into the graveyard with
// a rating, atomically. The shoe must currently be in the rotation.
func (s *SQLiteStore) RetireShoe(ctx context.Context, userID, shoeID string, rating int, review *string, milesRun *float64) (model.RetiredShoe, error) {
	sh, err := s.GetShoe(ctx, shoeID)
	if err != nil {
		return model.RetiredShoe{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.RetiredShoe{}, fmt.Errorf("begin retire: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM rotation WHERE user_id = ? AND shoe_id = ?", userID, shoeID).Scan(&exists)
	if err == sql.ErrNoRows {
		return model.RetiredShoe{}, ErrNotInRotation
	}
	if err != nil {
		return model.RetiredShoe{}, fmt.Errorf("check rotation: %w", err)
	}

	if !s.allowRepeatRetire {
		err = tx.QueryRowContext(ctx,
			"SELECT 1 FROM graveyard WHERE user_id = ? AND shoe_id = ?", userID, shoeID).Scan(&exists)
		if err == nil {
			return model.RetiredShoe{}, ErrAlreadyRetired
		}
		if err != sql.ErrNoRows {
			return model.RetiredShoe{}, fmt.Errorf("check graveyard: %w", err)
		}
	}

	retiredAt := time.Now().UTC()
	var (
		reviewArg any
		milesArg  any
	)
	if review != nil {
		reviewArg = *review
	}
	if milesRun != nil {
		milesArg = *milesRun
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO graveyard (id, user_id, shoe_id, retired_at, rating, review, miles_run) VALUES (?,?,?,?,?,?,?)",
		uuid.NewString(), userID, shoeID, formatTime(retiredAt), rating, reviewArg, milesArg); err != nil {
		return model.RetiredShoe{}, fmt.Errorf("insert graveyard: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM rotation WHERE user_id = ? AND shoe_id = ?", userID, shoeID); err != nil {
		return model.RetiredShoe{}, fmt.Errorf("clear rotation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.RetiredShoe{}, fmt.Errorf("commit retire: %w", err)
	}

	return model.RetiredShoe{
		Shoe:      sh,
		UserID:    userID,
		RetiredAt: retiredAt,
		Rating:    rating,
		Review:    review,
		MilesRun:  milesRun,
	}, nil
}

// UpdateRetiredShoe patches rating, review, or miles on a graveyard entry
// and returns the refreshed record.
func (s *SQLiteStore) UpdateRetiredShoe(ctx context.Context, userID, shoeID string, u RetiredShoeUpdate) (model.RetiredShoe, error) {
	var (
		sets []string
		args []any
	)
	if u.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *u.Rating)
	}
	if u.Review != nil {
		sets = append(sets, "review = ?")
		args = append(args, *u.Review)
	}
	if u.MilesRun != nil {
		sets = append(sets, "miles_run = ?")
		args = append(args, *u.MilesRun)
	}
	if len(sets) == 0 {
		return model.RetiredShoe{}, ErrNoFields
	}
	args = append(args, userID, shoeID)

	res, err := s.db.ExecContext(ctx,
		"UPDATE graveyard SET "+strings.Join(sets, ", ")+" WHERE user_id = ? AND shoe_id = ?", args...)
	if err != nil {
		return model.RetiredShoe{}, fmt.Errorf("update graveyard: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.RetiredShoe{}, ErrNotInGraveyard
	}

	rows, err := s.db.QueryContext(ctx, `SELECT s.id, s.brand, s.name, s.category, s.tags, s.weight, s.drop_mm,
		s.stack_height_heel, s.stack_height_forefoot, s.image_url, s.created_at, s.updated_at,
		g.user_id, g.retired_at, g.rating, g.review, g.miles_run
		FROM graveyard g JOIN shoes s ON s.id = g.shoe_id
		WHERE g.user_id = ? AND g.shoe_id = ?
		ORDER BY g.retired_at DESC LIMIT 1`, userID, shoeID)
	if err != nil {
		return model.RetiredShoe{}, fmt.Errorf("reload graveyard: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return model.RetiredShoe{}, ErrNotInGraveyard
	}
	return scanRetired(rows)
}

// DeleteFromGraveyard permanently removes the user's graveyard entries for
// a shoe.
func (s *SQLiteStore) DeleteFromGraveyard(ctx context.Context, userID, shoeID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM graveyard WHERE user_id = ? AND shoe_id = ?", userID, shoeID)
	if err != nil {
		return fmt.Errorf("delete from graveyard: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotInGraveyard
	}
	return nil
}

// TopRatedShoes returns up to limit catalog shoes the user rated at least
// minRating, best rating first.
func (s *SQLiteStore) TopRatedShoes(ctx context.Context, userID string, minRating, limit int) ([]model.Shoe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT s.id, s.brand, s.name, s.category, s.tags, s.weight, s.drop_mm,
		s.stack_height_heel, s.stack_height_forefoot, s.image_url, s.created_at, s.updated_at
		FROM graveyard g JOIN shoes s ON s.id = g.shoe_id
		WHERE g.user_id = ? AND g.rating >= ?
		ORDER BY g.rating DESC, g.retired_at DESC LIMIT ?`, userID, minRating, limit)
	if err != nil {
		return nil, fmt.Errorf("top rated shoes: %w", err)
	}
	defer rows.Close()

	var out []model.Shoe
	for rows.Next() {
		sh, err := scanShoe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan top rated: %w", err)
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// OwnedShoeIDs returns the union of the user's rotation and graveyard shoe
// IDs, used to exclude already-owned shoes from recommendations.
func (s *SQLiteStore) OwnedShoeIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT shoe_id FROM rotation WHERE user_id = ?
		UNION SELECT shoe_id FROM graveyard WHERE user_id = ?`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("owned shoe ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan shoe id: %w", err)
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// UserShoeStats aggregates the user's rotation and graveyard counts plus the
// average graveyard rating, rounded to one decimal.
func (s *SQLiteStore) UserShoeStats(ctx context.Context, userID string) (model.UserShoeStats, error) {
	var st model.UserShoeStats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rotation WHERE user_id = ?", userID).Scan(&st.ActiveShoes)
	if err != nil {
		return model.UserShoeStats{}, fmt.Errorf("rotation count: %w", err)
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), AVG(rating) FROM graveyard WHERE user_id = ?", userID).
		Scan(&st.RetiredShoes, &avg)
	if err != nil {
		return model.UserShoeStats{}, fmt.Errorf("graveyard stats: %w", err)
	}
	if avg.Valid {
		st.AvgRating = math.Round(avg.Float64*10) / 10
	}
	st.TotalShoes = st.ActiveShoes + st.RetiredShoes
	return st, nil
}

const profileColumns = "id, user_id, first_name, last_name, email, avg_miles_per_week, preferred_categories, created_at, updated_at"

func scanProfile(sc scanner) (model.Profile, error) {
	var (
		p                model.Profile
		cats             string
		created, updated string
	)
	err := sc.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Email,
		&p.AvgMilesPerWeek, &cats, &created, &updated)
	if err != nil {
		return model.Profile{}, err
	}
	p.PreferredCategories = decodeCategories(cats)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

// GetProfile returns the user's profile or ErrProfileNotFound.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = ?", userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return model.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// CreateProfile inserts a profile record, minting IDs when absent.
func (s *SQLiteStore) CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO profiles ("+profileColumns+") VALUES (?,?,?,?,?,?,?,?,?)",
		p.ID, p.UserID, p.FirstName, p.LastName, p.Email, p.AvgMilesPerWeek,
		encodeCategories(p.PreferredCategories), formatTime(now), formatTime(now))
	if err != nil {
		return model.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies a partial profile update and returns the refreshed
// record.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (model.Profile, error) {
	var (
		sets []string
		args []any
	)
	if u.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, *u.FirstName)
	}
	if u.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *u.LastName)
	}
	if u.AvgMilesPerWeek != nil {
		sets = append(sets, "avg_miles_per_week = ?")
		args = append(args, *u.AvgMilesPerWeek)
	}
	if u.PreferredCategories != nil {
		sets = append(sets, "preferred_categories = ?")
		args = append(args, encodeCategories(*u.PreferredCategories))
	}
	if len(sets) == 0 {
		return model.Profile{}, ErrNoFields
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now().UTC()), userID)

	res, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET "+strings.Join(sets, ", ")+" WHERE user_id = ?", args...)
	if err != nil {
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Profile{}, ErrProfileNotFound
	}
	return s.GetProfile(ctx, userID)
}

func encodeStrings(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeStrings(s string) []string {
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func encodeCategories(v []model.Category) string {
	if v == nil {
		v = []model.Category{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeCategories(s string) []model.Category {
	var out []model.Category
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
