// Package testutil provides shared test helpers for vaults, databases and
// annotated documents.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/index"
	"github.com/starford/annotator/internal/storage"
)

// TaskDoc is an annotated document with one item and one value annotation.
const TaskDoc = `---
dataviewAnnotation: true
annotations:
  - name: task
    type: item
  - name: due
    type: value
    defaultContent: today
---
# Groceries
`

// Today is the date FixedClock reports.
var Today = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

// FixedClock always returns Today.
func FixedClock() annotation.Clock {
	return annotation.ClockFunc(func() time.Time { return Today })
}

// QuietLogger discards all output.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "annotator-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteDoc writes content to rel inside the vault directory.
func WriteDoc(t *testing.T, vaultDir, rel, content string) {
	t.Helper()
	abs := filepath.Join(vaultDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
