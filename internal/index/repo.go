package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/annotator/internal/apperr"
	"github.com/starford/annotator/internal/models"
)

// UpsertDocument inserts or replaces the summary of one document.
func (db *DB) UpsertDocument(ctx context.Context, d models.DocumentSummary) error {
	names := d.Annotations
	if names == nil {
		names = []string{}
	}
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("index: encode names: %w", err)
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO documents (path, checksum, enabled, names, skipped, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			enabled    = excluded.enabled,
			names      = excluded.names,
			skipped    = excluded.skipped,
			updated_at = excluded.updated_at
	`, d.Path, d.Checksum, d.Enabled, string(namesJSON), d.Skipped, d.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document summary. Deleting a missing path is not an error.
func (db *DB) DeleteDocument(ctx context.Context, path string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return nil
}

// GetDocument returns one summary or apperr.ErrNotFound.
func (db *DB) GetDocument(ctx context.Context, path string) (*models.DocumentSummary, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT path, checksum, enabled, names, skipped, updated_at
		FROM documents WHERE path = ?`, path)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return d, nil
}

// ListDocuments returns summaries ordered by path.
func (db *DB) ListDocuments(ctx context.Context, enabledOnly bool) ([]models.DocumentSummary, error) {
	query := `SELECT path, checksum, enabled, names, skipped, updated_at FROM documents`
	if enabledOnly {
		query += ` WHERE enabled = 1`
	}
	query += ` ORDER BY path`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out := []models.DocumentSummary{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan document: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed document.
func (db *DB) AllChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.DocumentSummary, error) {
	var (
		d         models.DocumentSummary
		namesJSON string
	)
	if err := s.Scan(&d.Path, &d.Checksum, &d.Enabled, &namesJSON, &d.Skipped, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(namesJSON), &d.Annotations); err != nil {
		return nil, fmt.Errorf("decode names: %w", err)
	}
	if d.Annotations == nil {
		d.Annotations = []string{}
	}
	return &d, nil
}
