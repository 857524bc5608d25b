package migrate

import (
	"context"
	"database/sql"
	"expert-api/internal/logger"
)

// EnsureSchema creates the mirror tables on first run. Statements use
// IF NOT EXISTS so repeated runs against an existing database are no-ops.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _cms_items (
            collection  TEXT NOT NULL,
            id          TEXT NOT NULL,
            name        TEXT NOT NULL DEFAULT '',
            slug        TEXT NOT NULL DEFAULT '',
            field_data  JSONB NOT NULL DEFAULT '{}'::jsonb,
            is_archived BOOLEAN NOT NULL DEFAULT FALSE,
            is_draft    BOOLEAN NOT NULL DEFAULT FALSE,
            position    INT NOT NULL,
            updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (collection, id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_cms_items_position ON _cms_items(collection, position)`,
		`CREATE TABLE IF NOT EXISTS _cms_mirror_runs (
            id          SERIAL PRIMARY KEY,
            collection  TEXT NOT NULL,
            items       INT NOT NULL,
            finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
