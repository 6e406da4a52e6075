package subscribers

import (
	"context"
	"database/sql"
	"fmt"

	"vocamail/internal/database"
)

// migrateLegacy upgrades tables created before schema versioning: a missing
// level column is added with level 1, and a TEXT level column ("level2", "2")
// is rebuilt as INTEGER with unknown values mapped to 1.
func migrateLegacy(ctx context.Context, db *sql.DB) error {
	ctx = database.EnsureContext(ctx)
	columns, err := database.TableColumns(ctx, db, "subscribers")
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}

	levelType, hasLevel := columns["level"]
	switch {
	case !hasLevel:
		if _, err := database.ExecWithRetry(ctx, db, `ALTER TABLE subscribers ADD COLUMN level INTEGER NOT NULL DEFAULT 1`); err != nil {
			return fmt.Errorf("add level column: %w", err)
		}
		return nil
	case levelType == "TEXT":
		return rebuildLevelColumn(ctx, db)
	default:
		return nil
	}
}

func rebuildLevelColumn(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin level migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE subscribers_migrated (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL,
			name TEXT NOT NULL,
			level INTEGER NOT NULL DEFAULT 1,
			media TEXT,
			subscribed_at TEXT NOT NULL
		)`,
		`INSERT INTO subscribers_migrated (id, email, name, level, media, subscribed_at)
		SELECT id, email, name,
			CASE
				WHEN level IN ('1', 'level1') THEN 1
				WHEN level IN ('2', 'level2') THEN 2
				WHEN level IN ('3', 'level3') THEN 3
				ELSE 1
			END,
			media, subscribed_at
		FROM subscribers`,
		`DROP TABLE subscribers`,
		`ALTER TABLE subscribers_migrated RENAME TO subscribers`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate level column: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit level migration: %w", err)
	}
	return nil
}
