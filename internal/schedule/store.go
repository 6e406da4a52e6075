package schedule

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"vocamail/internal/database"
	"vocamail/internal/validation"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

var (
	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = errors.New("schedule entry not found")
	// ErrInvalidEntry wraps validation failures for drafts.
	ErrInvalidEntry = errors.New("invalid schedule entry")
)

// Draft carries the user-editable fields of an entry.
type Draft struct {
	RunAt time.Time `json:"run_at"`
	URL   string    `json:"url" validate:"required,url"`
	Title string    `json:"title" validate:"max=200"`
	Memo  string    `json:"memo" validate:"max=2000"`
}

// Store persists schedule entries in SQLite. Timestamps are stored as ISO
// text in the store's location.
type Store struct {
	db        *sql.DB
	loc       *time.Location
	validator *validation.Validator
	now       func() time.Time
}

// Open initializes or connects to the schedule database at path.
func Open(ctx context.Context, path string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.Local
	}
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	if err := database.InitSchema(ctx, db, schemaSQL, schemaVersion); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, loc: loc, validator: validation.New(), now: time.Now}, nil
}

// WithClock overrides the clock used for created_at and played_at stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) format(ts time.Time) string {
	return ts.In(s.loc).Truncate(time.Microsecond).Format(time.RFC3339Nano)
}

func (s *Store) clean(d Draft) (Draft, error) {
	d.URL = strings.TrimSpace(d.URL)
	d.Title = strings.TrimSpace(d.Title)
	d.Memo = strings.TrimSpace(d.Memo)
	if d.RunAt.IsZero() {
		return d, &validation.Error{Kind: ErrInvalidEntry, Fields: map[string]string{"run_at": "is required"}}
	}
	if err := s.validator.Validate(d, ErrInvalidEntry); err != nil {
		return d, err
	}
	return d, nil
}

// Add inserts an unplayed entry and returns it.
func (s *Store) Add(ctx context.Context, d Draft) (*Entry, error) {
	d, err := s.clean(d)
	if err != nil {
		return nil, err
	}
	created := s.now()
	res, err := database.ExecWithRetry(ctx, s.db,
		`INSERT INTO schedules (run_at_iso, url, title, memo, created_at_iso, played) VALUES (?, ?, ?, ?, ?, 0)`,
		s.format(d.RunAt), d.URL, d.Title, d.Memo, s.format(created),
	)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("schedule id: %w", err)
	}
	return s.Get(ctx, id)
}

const selectColumns = `SELECT id, run_at_iso, url, title, memo, created_at_iso, played, played_at_iso FROM schedules`

// List returns every entry ordered by run time.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	ctx = database.EnsureContext(ctx)
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY run_at_iso ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := s.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	// Rows written with different offsets do not sort correctly as text.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].RunAt.Before(entries[j].RunAt) })
	return entries, nil
}

// Get returns the entry with id.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	ctx = database.EnsureContext(ctx)
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	e, err := s.scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update replaces the editable fields of entry id. The played state is kept.
func (s *Store) Update(ctx context.Context, id int64, d Draft) error {
	d, err := s.clean(d)
	if err != nil {
		return err
	}
	return s.execOne(ctx, id, "update schedule",
		`UPDATE schedules SET run_at_iso = ?, url = ?, title = ?, memo = ? WHERE id = ?`,
		s.format(d.RunAt), d.URL, d.Title, d.Memo, id,
	)
}

// Delete removes entry id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.execOne(ctx, id, "delete schedule", `DELETE FROM schedules WHERE id = ?`, id)
}

// MarkPlayed sets played and stamps played_at with the current time.
func (s *Store) MarkPlayed(ctx context.Context, id int64) error {
	return s.execOne(ctx, id, "mark schedule played",
		`UPDATE schedules SET played = 1, played_at_iso = ? WHERE id = ?`, s.format(s.now()), id)
}

// ResetPlayed reverts an entry to unplayed with no played_at.
func (s *Store) ResetPlayed(ctx context.Context, id int64) error {
	return s.execOne(ctx, id, "reset schedule",
		`UPDATE schedules SET played = 0, played_at_iso = NULL WHERE id = ?`, id)
}

// Due lists the entries FindDue selects for now and window.
func (s *Store) Due(ctx context.Context, now time.Time, window time.Duration) ([]Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return FindDue(entries, now, window), nil
}

func (s *Store) execOne(ctx context.Context, id int64, op, query string, args ...any) error {
	res, err := database.ExecWithRetry(ctx, s.db, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanEntry(row rowScanner) (Entry, error) {
	var (
		e         Entry
		runAt     string
		title     sql.NullString
		memo      sql.NullString
		createdAt string
		played    int
		playedAt  sql.NullString
	)
	if err := row.Scan(&e.ID, &runAt, &e.URL, &title, &memo, &createdAt, &played, &playedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan schedule: %w", err)
	}
	var err error
	if e.RunAt, err = s.parseTimestamp(runAt); err != nil {
		return Entry{}, fmt.Errorf("schedule %d run_at: %w", e.ID, err)
	}
	if e.CreatedAt, err = s.parseTimestamp(createdAt); err != nil {
		return Entry{}, fmt.Errorf("schedule %d created_at: %w", e.ID, err)
	}
	e.Title = title.String
	e.Memo = memo.String
	e.Played = played != 0
	if e.Played {
		if !playedAt.Valid || strings.TrimSpace(playedAt.String) == "" {
			return Entry{}, fmt.Errorf("schedule %d: played without played_at", e.ID)
		}
		ts, err := s.parseTimestamp(playedAt.String)
		if err != nil {
			return Entry{}, fmt.Errorf("schedule %d played_at: %w", e.ID, err)
		}
		e.PlayedAt = &ts
	}
	return e, nil
}

// parseTimestamp reads stored text. Values without an offset are taken in the
// store's location.
func (s *Store) parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999Z07:00", "2006-01-02 15:04:05.999999999"} {
		if ts, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
