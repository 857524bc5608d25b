// Package store mirrors content items into PostgreSQL and serves them back
// as an alternative content source.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"expert-api/internal/cms"
	"expert-api/internal/logger"
	"fmt"

	_ "github.com/lib/pq"
)

// Store wraps the connection pool.
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// FetchCollection reads a mirrored collection in upstream order and applies
// the same visibility filter as the live client.
func (s *Store) FetchCollection(ctx context.Context, c cms.Collection) ([]cms.Item, error) {
	items, err := s.FetchRaw(ctx, c)
	if err != nil {
		return nil, err
	}
	return cms.Filter(c, items), nil
}

// FetchRaw reads a mirrored collection without filtering.
func (s *Store) FetchRaw(ctx context.Context, c cms.Collection) ([]cms.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, slug, field_data, is_archived, is_draft
        FROM _cms_items
        WHERE collection=$1
        ORDER BY position`, string(c))
	if err != nil {
		return nil, &cms.FetchError{Collection: c, Err: err}
	}
	defer rows.Close()

	out := []cms.Item{}
	for rows.Next() {
		var (
			it  cms.Item
			raw []byte
		)
		if err := rows.Scan(&it.ID, &it.Name, &it.Slug, &raw, &it.IsArchived, &it.IsDraft); err != nil {
			return nil, &cms.FetchError{Collection: c, Err: err}
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &it.FieldData); err != nil {
				return nil, &cms.FetchError{Collection: c, Err: fmt.Errorf("decode field_data of %s: %w", it.ID, err)}
			}
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &cms.FetchError{Collection: c, Err: err}
	}
	logger.L().Debug("store_fetch_done", "collection", c, "items", len(out))
	return out, nil
}

// ReplaceCollection swaps the stored contents of one collection inside a
// single transaction, so readers see either the old or the new set.
func (s *Store) ReplaceCollection(ctx context.Context, c cms.Collection, items []cms.Item) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM _cms_items WHERE collection=$1", string(c)); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO _cms_items(collection,id,name,slug,field_data,is_archived,is_draft,position,updated_at)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,now())
        ON CONFLICT (collection,id) DO UPDATE SET name=EXCLUDED.name, slug=EXCLUDED.slug, field_data=EXCLUDED.field_data,
            is_archived=EXCLUDED.is_archived, is_draft=EXCLUDED.is_draft, position=EXCLUDED.position, updated_at=now()`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for i, it := range items {
		if it.ID == "" {
			continue
		}
		fd := it.FieldData
		if fd == nil {
			fd = map[string]any{}
		}
		raw, err := json.Marshal(fd)
		if err != nil {
			return 0, fmt.Errorf("encode field_data of %s: %w", it.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, string(c), it.ID, it.Name, it.Slug, raw, it.IsArchived, it.IsDraft, i); err != nil {
			return 0, err
		}
		n++
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO _cms_mirror_runs(collection, items) VALUES($1,$2)", string(c), n); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Debug("store_replace_done", "collection", c, "items", n)
	return n, nil
}

// Counts reports the number of mirrored items per collection.
func (s *Store) Counts(ctx context.Context) (map[cms.Collection]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT collection, COUNT(1) FROM _cms_items GROUP BY collection")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[cms.Collection]int64{}
	for rows.Next() {
		var (
			c string
			n int64
		)
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		out[cms.Collection(c)] = n
	}
	return out, rows.Err()
}
