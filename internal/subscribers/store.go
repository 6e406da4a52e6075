package subscribers

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"vocamail/internal/database"
	"vocamail/internal/validation"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// timestampLayout matches the naive ISO timestamps written by earlier releases.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Store manages subscriber persistence backed by SQLite.
type Store struct {
	db        *sql.DB
	path      string
	validator *validation.Validator
	now       func() time.Time
}

// Open initializes or connects to the subscriber database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	if err := migrateLegacy(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := database.InitSchema(ctx, db, schemaSQL, schemaVersion); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path, validator: validation.New(), now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Add validates and inserts a subscriber.
func (s *Store) Add(ctx context.Context, in NewSubscriber) (*Subscriber, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Media = strings.TrimSpace(in.Media)
	if err := s.validator.Validate(in, ErrInvalidSubscriber); err != nil {
		return nil, err
	}

	subscribedAt := s.now()
	res, err := database.ExecWithRetry(ctx, s.db,
		`INSERT INTO subscribers (email, name, level, media, subscribed_at) VALUES (?, ?, ?, ?, ?)`,
		in.Email, in.Name, in.Level, database.NullableString(in.Media), subscribedAt.Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscriber: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("subscriber id: %w", err)
	}
	return &Subscriber{
		ID:           id,
		Email:        in.Email,
		Name:         in.Name,
		Level:        in.Level,
		Media:        in.Media,
		SubscribedAt: subscribedAt,
	}, nil
}

// List returns every subscriber ordered by id.
func (s *Store) List(ctx context.Context) ([]Subscriber, error) {
	return s.query(ctx, `SELECT id, email, name, level, media, subscribed_at FROM subscribers ORDER BY id`)
}

// ListByLevel returns the subscribers at level ordered by id.
func (s *Store) ListByLevel(ctx context.Context, level int) ([]Subscriber, error) {
	return s.query(ctx, `SELECT id, email, name, level, media, subscribed_at FROM subscribers WHERE level = ? ORDER BY id`, level)
}

// FindByEmail returns the subscribers whose email matches exactly.
func (s *Store) FindByEmail(ctx context.Context, email string) ([]Subscriber, error) {
	return s.query(ctx, `SELECT id, email, name, level, media, subscribed_at FROM subscribers WHERE email = ? ORDER BY id`, normalizeEmail(email))
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Subscriber, error) {
	ctx = database.EnsureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		var (
			sub          Subscriber
			media        sql.NullString
			subscribedAt sql.NullString
		)
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Name, &sub.Level, &media, &subscribedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		sub.Media = media.String
		sub.SubscribedAt = parseTimestamp(subscribedAt.String)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return subs, nil
}

// Update applies patch to every row whose email matches. It returns the
// number of rows changed; ErrNotFound is returned when none match.
func (s *Store) Update(ctx context.Context, email string, patch Patch) (int64, error) {
	if patch.Empty() {
		return 0, fmt.Errorf("%w: no fields to update", ErrInvalidPatch)
	}
	if patch.Email != nil {
		trimmed := normalizeEmail(*patch.Email)
		patch.Email = &trimmed
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := s.validator.Validate(patch, ErrInvalidPatch); err != nil {
		return 0, err
	}

	var (
		sets []string
		args []any
	)
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Level != nil {
		sets = append(sets, "level = ?")
		args = append(args, *patch.Level)
	}
	if patch.Media != nil {
		sets = append(sets, "media = ?")
		args = append(args, database.NullableString(*patch.Media))
	}
	args = append(args, normalizeEmail(email))

	res, err := database.ExecWithRetry(ctx, s.db,
		"UPDATE subscribers SET "+strings.Join(sets, ", ")+" WHERE email = ?", args...)
	if err != nil {
		return 0, fmt.Errorf("update subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update subscriber: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%s: %w", email, ErrNotFound)
	}
	return n, nil
}

// Delete removes every row whose email matches and returns the count removed.
func (s *Store) Delete(ctx context.Context, email string) (int64, error) {
	res, err := database.ExecWithRetry(ctx, s.db, `DELETE FROM subscribers WHERE email = ?`, normalizeEmail(email))
	if err != nil {
		return 0, fmt.Errorf("delete subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete subscriber: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%s: %w", email, ErrNotFound)
	}
	return n, nil
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts
		}
	}
	return time.Time{}
}
