package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/soundshelf/soundshelf/config"
	storageutil "github.com/soundshelf/soundshelf/storage/util"
)

type placeholderStyle int

const (
	placeholderQuestion placeholderStyle = iota
	placeholderDollar
)

// defaultUserID is the single logical tenant for settings.
const defaultUserID = "default"

const recordColumns = "id, title, description, category, image_ref, audio_ref, artist, album, is_liked, liked_at, created_at"

// SQLRecordStore persists media records, categories, settings, and users in
// PostgreSQL or MySQL.
type SQLRecordStore struct {
	cfg         *config.SQLRecordStrategy
	db          *sql.DB
	music       string
	categories  string
	settings    string
	users       string
	placeholder placeholderStyle
}

func NewSQLRecordStore(cfg *config.SQLRecordStrategy) (*SQLRecordStore, error) {
	store, err := newSQLRecordStoreWithDB(cfg, nil)
	if err != nil {
		return nil, err
	}

	driverName, err := resolveSQLDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, err
	}

	store.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func newSQLRecordStoreWithDB(cfg *config.SQLRecordStrategy, db *sql.DB) (*SQLRecordStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("record sql config is nil")
	}

	prefix := "soundshelf"
	if cfg.TablePrefix != nil {
		prefix = *cfg.TablePrefix
	}

	placeholder, err := detectPlaceholderStyle(cfg.Driver)
	if err != nil {
		return nil, err
	}

	return &SQLRecordStore{
		cfg:         cfg,
		db:          db,
		music:       storageutil.DeriveTableName(prefix, "music"),
		categories:  storageutil.DeriveTableName(prefix, "categories"),
		settings:    storageutil.DeriveTableName(prefix, "settings"),
		users:       storageutil.DeriveTableName(prefix, "users"),
		placeholder: placeholder,
	}, nil
}

func detectPlaceholderStyle(driver string) (placeholderStyle, error) {
	driverName, err := resolveSQLDriverName(driver)
	if err != nil {
		return placeholderQuestion, err
	}

	if driverName == "pgx" {
		return placeholderDollar, nil
	}

	return placeholderQuestion, nil
}

func resolveSQLDriverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "postgres":
		return "pgx", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func (rs *SQLRecordStore) initSchema(ctx context.Context) error {
	for _, query := range rs.schemaQueries() {
		if _, err := rs.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return rs.seedCategories(ctx)
}

func (rs *SQLRecordStore) schemaQueries() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
id VARCHAR(36) PRIMARY KEY,
title VARCHAR(100) NOT NULL,
description VARCHAR(500) NOT NULL,
category VARCHAR(16) NOT NULL,
image_ref TEXT NOT NULL,
audio_ref TEXT NOT NULL,
artist VARCHAR(255) NOT NULL,
album VARCHAR(255) NOT NULL,
is_liked BOOLEAN NOT NULL DEFAULT FALSE,
liked_at TIMESTAMP NULL,
created_at TIMESTAMP NOT NULL
)`, rs.music),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
id VARCHAR(16) PRIMARY KEY,
name VARCHAR(64) NOT NULL,
sort_order INT NOT NULL
)`, rs.categories),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
user_id VARCHAR(64) PRIMARY KEY,
theme VARCHAR(16) NOT NULL,
accent_color VARCHAR(16) NOT NULL,
show_categories BOOLEAN NOT NULL,
group_by_category BOOLEAN NOT NULL,
show_recently_played BOOLEAN NOT NULL,
autoplay BOOLEAN NOT NULL,
audio_quality VARCHAR(16) NOT NULL,
last_updated TIMESTAMP NOT NULL
)`, rs.settings),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
id VARCHAR(36) PRIMARY KEY,
name VARCHAR(100) NOT NULL,
email VARCHAR(255) NOT NULL UNIQUE,
password_hash VARCHAR(100) NOT NULL,
created_at TIMESTAMP NOT NULL
)`, rs.users),
	}
}

func (rs *SQLRecordStore) seedCategories(ctx context.Context) error {
	var count int
	row := rs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", rs.categories))
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}

	if count > 0 {
		return nil
	}

	for _, c := range SeedCategories {
		if _, err := rs.db.ExecContext(ctx, rs.categoryInsertQuery(), c.ID, c.Name, c.Order); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.ID, err)
		}
	}

	return nil
}

func (rs *SQLRecordStore) Create(ctx context.Context, draft Draft) (*Record, error) {
	if draft.Title == "" || draft.Category == "" || draft.ImageRef == "" || draft.AudioRef == "" {
		return nil, ErrInvalidDraft
	}

	rec := &Record{
		ID:          uuid.New().String(),
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		ImageRef:    draft.ImageRef,
		AudioRef:    draft.AudioRef,
		Artist:      draft.Artist,
		Album:       draft.Album,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := rs.db.ExecContext(ctx, rs.insertQuery(),
		rec.ID, rec.Title, rec.Description, rec.Category, rec.ImageRef, rec.AudioRef,
		rec.Artist, rec.Album, rec.IsLiked, nullableTime(rec.LikedAt), rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	return rec, nil
}

func (rs *SQLRecordStore) GetByID(ctx context.Context, id string) (*Record, error) {
	row := rs.db.QueryRowContext(ctx, rs.selectQuery(), id)
	return scanRecord(row)
}

func (rs *SQLRecordStore) List(ctx context.Context, filter Filter, sort Sort) ([]Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", recordColumns, rs.music)

	var args []any
	if filter.Category != "" {
		query += fmt.Sprintf(" WHERE category = %s", rs.placeholderFor(1))
		args = append(args, filter.Category)
	}

	query += " ORDER BY " + orderClause(sort)

	return rs.queryRecords(ctx, query, args...)
}

func (rs *SQLRecordStore) ListLiked(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE is_liked = TRUE ORDER BY liked_at DESC", recordColumns, rs.music)
	return rs.queryRecords(ctx, query)
}

func (rs *SQLRecordStore) Search(ctx context.Context, query string, field string, limit int) ([]Record, error) {
	if query == "" {
		return nil, nil
	}

	needle := "%" + strings.ToLower(query) + "%"

	var clauses []string
	var args []any
	next := func() string {
		return rs.placeholderFor(len(args))
	}

	switch field {
	case SearchTitle:
		args = append(args, needle)
		clauses = append(clauses, fmt.Sprintf("LOWER(title) LIKE %s", next()))
	case SearchDescription:
		args = append(args, needle)
		clauses = append(clauses, fmt.Sprintf("LOWER(description) LIKE %s", next()))
	case SearchCategory, SearchAll:
		if field == SearchAll {
			args = append(args, needle)
			clauses = append(clauses, fmt.Sprintf("LOWER(title) LIKE %s", next()))
			args = append(args, needle)
			clauses = append(clauses, fmt.Sprintf("LOWER(description) LIKE %s", next()))
		}

		// Category search matches display names, which live in the seed list
		codes := matchingCategoryCodes(query)
		if len(codes) > 0 {
			placeholders := make([]string, len(codes))
			for i, code := range codes {
				args = append(args, code)
				placeholders[i] = rs.placeholderFor(len(args))
			}
			clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ", ")))
		}
	default:
		return nil, fmt.Errorf("unsupported search field %q", field)
	}

	if len(clauses) == 0 {
		return nil, nil
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY created_at DESC",
		recordColumns, rs.music, strings.Join(clauses, " OR "))
	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}

	return rs.queryRecords(ctx, stmt, args...)
}

func (rs *SQLRecordStore) Update(ctx context.Context, id string, patch Patch) (*Record, error) {
	rec, err := rs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPatch(rec, patch)

	_, err = rs.db.ExecContext(ctx, rs.updateQuery(),
		rec.Title, rec.Description, rec.Category, rec.ImageRef, rec.AudioRef,
		rec.Artist, rec.Album, rec.IsLiked, nullableTime(rec.LikedAt), rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	return rec, nil
}

func (rs *SQLRecordStore) Delete(ctx context.Context, id string) error {
	res, err := rs.db.ExecContext(ctx, rs.deleteQuery(), id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (rs *SQLRecordStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := rs.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", rs.music))
	if err != nil {
		return 0, fmt.Errorf("failed to delete all records: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected, nil
}

func (rs *SQLRecordStore) MostLikedCategory(ctx context.Context) (string, int, error) {
	// Ties break lexicographically by category code for determinism
	query := fmt.Sprintf(
		"SELECT category, COUNT(*) AS likes FROM %s WHERE is_liked = TRUE GROUP BY category ORDER BY likes DESC, category ASC LIMIT 1",
		rs.music)

	var code string
	var count int
	if err := rs.db.QueryRowContext(ctx, query).Scan(&code, &count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, nil
		}
		return "", 0, fmt.Errorf("failed to aggregate likes: %w", err)
	}

	return code, count, nil
}

func (rs *SQLRecordStore) Categories(ctx context.Context) ([]Category, error) {
	query := fmt.Sprintf("SELECT id, name, sort_order FROM %s ORDER BY sort_order ASC", rs.categories)

	rows, err := rs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Order); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (rs *SQLRecordStore) GetSettings(ctx context.Context) (*Settings, error) {
	s, err := rs.selectSettings(ctx)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}

	// Created lazily on first read
	s = DefaultSettings(defaultUserID)
	s.LastUpdated = time.Now().UTC()

	_, err = rs.db.ExecContext(ctx, rs.settingsInsertQuery(),
		s.UserID, s.Theme, s.AccentColor, s.ShowCategoriesInLibrary, s.GroupByCategory,
		s.ShowRecentlyPlayed, s.Autoplay, s.AudioQuality, s.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}

	return s, nil
}

func (rs *SQLRecordStore) UpdateSettings(ctx context.Context, patch SettingsPatch) (*Settings, error) {
	s, err := rs.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	applySettingsPatch(s, patch)
	s.LastUpdated = time.Now().UTC()

	_, err = rs.db.ExecContext(ctx, rs.settingsUpdateQuery(),
		s.Theme, s.AccentColor, s.ShowCategoriesInLibrary, s.GroupByCategory,
		s.ShowRecentlyPlayed, s.Autoplay, s.AudioQuality, s.LastUpdated, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	return s, nil
}

func (rs *SQLRecordStore) CreateUser(ctx context.Context, name string, email string, passwordHash string) (*User, error) {
	if _, err := rs.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := rs.db.ExecContext(ctx, rs.userInsertQuery(), u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return u, nil
}

func (rs *SQLRecordStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := rs.db.QueryRowContext(ctx, rs.userSelectQuery(), email)

	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

func (rs *SQLRecordStore) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := rs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var likedAt sql.NullTime

	err := row.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Category, &rec.ImageRef,
		&rec.AudioRef, &rec.Artist, &rec.Album, &rec.IsLiked, &likedAt, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	if likedAt.Valid {
		t := likedAt.Time
		rec.LikedAt = &t
	}

	return &rec, nil
}

func applyPatch(rec *Record, patch Patch) {
	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
	}
	if patch.Category != nil {
		rec.Category = *patch.Category
	}
	if patch.ImageRef != nil {
		rec.ImageRef = *patch.ImageRef
	}
	if patch.AudioRef != nil {
		rec.AudioRef = *patch.AudioRef
	}
	if patch.Artist != nil {
		rec.Artist = *patch.Artist
	}
	if patch.Album != nil {
		rec.Album = *patch.Album
	}
	if patch.IsLiked != nil {
		rec.IsLiked = *patch.IsLiked
	}
	if patch.LikedAt != nil {
		t := *patch.LikedAt
		rec.LikedAt = &t
	}
	if patch.ClearLikedAt {
		rec.LikedAt = nil
	}
}

func applySettingsPatch(s *Settings, patch SettingsPatch) {
	if patch.Theme != nil {
		s.Theme = *patch.Theme
	}
	if patch.AccentColor != nil {
		s.AccentColor = *patch.AccentColor
	}
	if patch.ShowCategoriesInLibrary != nil {
		s.ShowCategoriesInLibrary = *patch.ShowCategoriesInLibrary
	}
	if patch.GroupByCategory != nil {
		s.GroupByCategory = *patch.GroupByCategory
	}
	if patch.ShowRecentlyPlayed != nil {
		s.ShowRecentlyPlayed = *patch.ShowRecentlyPlayed
	}
	if patch.Autoplay != nil {
		s.Autoplay = *patch.Autoplay
	}
	if patch.AudioQuality != nil {
		s.AudioQuality = *patch.AudioQuality
	}
}

func matchingCategoryCodes(query string) []string {
	needle := strings.ToLower(query)

	var codes []string
	for _, c := range SeedCategories {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			codes = append(codes, c.ID)
		}
	}

	return codes
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func orderClause(sort Sort) string {
	switch sort {
	case SortAlphabetical:
		return "title ASC"
	case SortCategory:
		return "category ASC"
	default:
		return "created_at DESC"
	}
}

func (rs *SQLRecordStore) selectSettings(ctx context.Context) (*Settings, error) {
	row := rs.db.QueryRowContext(ctx, rs.settingsSelectQuery(), defaultUserID)

	var s Settings
	err := row.Scan(&s.UserID, &s.Theme, &s.AccentColor, &s.ShowCategoriesInLibrary,
		&s.GroupByCategory, &s.ShowRecentlyPlayed, &s.Autoplay, &s.AudioQuality, &s.LastUpdated)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (rs *SQLRecordStore) insertQuery() string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		rs.music, recordColumns, rs.placeholders(11),
	)
}

func (rs *SQLRecordStore) updateQuery() string {
	return fmt.Sprintf(
		"UPDATE %s SET title = %s, description = %s, category = %s, image_ref = %s, audio_ref = %s, artist = %s, album = %s, is_liked = %s, liked_at = %s WHERE id = %s",
		rs.music,
		rs.placeholderFor(1), rs.placeholderFor(2), rs.placeholderFor(3),
		rs.placeholderFor(4), rs.placeholderFor(5), rs.placeholderFor(6),
		rs.placeholderFor(7), rs.placeholderFor(8), rs.placeholderFor(9),
		rs.placeholderFor(10),
	)
}

func (rs *SQLRecordStore) selectQuery() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", recordColumns, rs.music, rs.placeholderFor(1))
}

func (rs *SQLRecordStore) deleteQuery() string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = %s", rs.music, rs.placeholderFor(1))
}

func (rs *SQLRecordStore) categoryInsertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (id, name, sort_order) VALUES (%s)", rs.categories, rs.placeholders(3))
}

func (rs *SQLRecordStore) settingsSelectQuery() string {
	return fmt.Sprintf(
		"SELECT user_id, theme, accent_color, show_categories, group_by_category, show_recently_played, autoplay, audio_quality, last_updated FROM %s WHERE user_id = %s",
		rs.settings, rs.placeholderFor(1))
}

func (rs *SQLRecordStore) settingsInsertQuery() string {
	return fmt.Sprintf(
		"INSERT INTO %s (user_id, theme, accent_color, show_categories, group_by_category, show_recently_played, autoplay, audio_quality, last_updated) VALUES (%s)",
		rs.settings, rs.placeholders(9))
}

func (rs *SQLRecordStore) settingsUpdateQuery() string {
	return fmt.Sprintf(
		"UPDATE %s SET theme = %s, accent_color = %s, show_categories = %s, group_by_category = %s, show_recently_played = %s, autoplay = %s, audio_quality = %s, last_updated = %s WHERE user_id = %s",
		rs.settings,
		rs.placeholderFor(1), rs.placeholderFor(2), rs.placeholderFor(3),
		rs.placeholderFor(4), rs.placeholderFor(5), rs.placeholderFor(6),
		rs.placeholderFor(7), rs.placeholderFor(8), rs.placeholderFor(9),
	)
}

func (rs *SQLRecordStore) userInsertQuery() string {
	return fmt.Sprintf(
		"INSERT INTO %s (id, name, email, password_hash, created_at) VALUES (%s)",
		rs.users, rs.placeholders(5))
}

func (rs *SQLRecordStore) userSelectQuery() string {
	return fmt.Sprintf(
		"SELECT id, name, email, password_hash, created_at FROM %s WHERE email = %s",
		rs.users, rs.placeholderFor(1))
}

func (rs *SQLRecordStore) placeholders(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = rs.placeholderFor(i + 1)
	}
	return strings.Join(out, ", ")
}

func (rs *SQLRecordStore) placeholderFor(index int) string {
	if rs.placeholder == placeholderDollar {
		return fmt.Sprintf("$%d", index)
	}

	return "?"
}
