package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/annotator/internal/annotation"
)

const (
	settingTriggerPhrase = "trigger_phrase"
	settingSeparator     = "separator"
)

// LoadSettings returns the stored settings, filling keys never saved from
// defaults. A stored empty separator is kept as empty.
func (db *DB) LoadSettings(ctx context.Context, defaults annotation.Settings) (annotation.Settings, error) {
	s := defaults
	if v, ok, err := db.setting(ctx, settingTriggerPhrase); err != nil {
		return s, err
	} else if ok && v != "" {
		s.TriggerPhrase = v
	}
	if v, ok, err := db.setting(ctx, settingSeparator); err != nil {
		return s, err
	} else if ok {
		s.Separator = v
	}
	return s, nil
}

// SaveSettings validates and stores s.
func (db *DB) SaveSettings(ctx context.Context, s annotation.Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("index: invalid settings: %w", err)
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	const upsert = `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.ExecContext(ctx, upsert, settingTriggerPhrase, s.TriggerPhrase); err != nil {
		return fmt.Errorf("index: save trigger phrase: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, settingSeparator, s.Separator); err != nil {
		return fmt.Errorf("index: save separator: %w", err)
	}
	return tx.Commit()
}

func (db *DB) setting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := db.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("index: read setting %s: %w", key, err)
	}
	return v, true, nil
}
