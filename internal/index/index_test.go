package index

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/apperr"
	"github.com/starford/annotator/internal/models"
	"github.com/starford/annotator/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "annotator-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const todoDoc = `---
dataviewAnnotation: true
annotations:
  - name: task
    type: item
  - name: due
    type: value
    defaultContent: today
  - type: item
---
;;task
`

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM settings`).Scan(&count); err != nil {
		t.Fatalf("settings table missing: %v", err)
	}
}

func TestOpen_StaleVersionDropsDocumentsKeepsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = db.UpsertDocument(ctx, models.DocumentSummary{Path: "a.md", Checksum: "1"})
	_ = db.SaveSettings(ctx, annotation.Settings{TriggerPhrase: "@@", Separator: ":"})
	if _, err := db.conn.Exec(`PRAGMA user_version = 0`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	docs, _ := db.ListDocuments(ctx, false)
	if len(docs) != 0 {
		t.Errorf("docs = %+v, want none after migration", docs)
	}
	s, _ := db.LoadSettings(ctx, annotation.DefaultSettings())
	if s.TriggerPhrase != "@@" || s.Separator != ":" {
		t.Errorf("settings = %+v, want preserved", s)
	}

	var version int
	_ = db.conn.QueryRow(`PRAGMA user_version`).Scan(&version)
	if version != schemaVersion {
		t.Errorf("user_version = %d, want %d", version, schemaVersion)
	}
}

func TestUpsertAndGetDocument(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	d := models.DocumentSummary{
		Path:        "todo.md",
		Checksum:    "abc123",
		Enabled:     true,
		Annotations: []string{"task", "due"},
		Skipped:     1,
		UpdatedAt:   time.Now(),
	}
	if err := db.UpsertDocument(ctx, d); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	got, err := db.GetDocument(ctx, "todo.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Checksum != "abc123" || !got.Enabled || got.Skipped != 1 {
		t.Errorf("document = %+v", got)
	}
	if len(got.Annotations) != 2 || got.Annotations[0] != "task" {
		t.Errorf("annotations = %v", got.Annotations)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.UpsertDocument(ctx, models.DocumentSummary{Path: "a.md", Checksum: "1", Enabled: true})
	_ = db.UpsertDocument(ctx, models.DocumentSummary{Path: "a.md", Checksum: "2", Enabled: false})

	got, err := db.GetDocument(ctx, "a.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Checksum != "2" || got.Enabled {
		t.Errorf("document = %+v", got)
	}
	if got.Annotations == nil {
		t.Error("annotations should be an empty slice, not nil")
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetDocument(context.Background(), "missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListDocuments_EnabledOnly(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.UpsertDocument(ctx, models.DocumentSummary{Path: "b.md", Checksum: "1", Enabled: true})
	_ = db.UpsertDocument(ctx, models.DocumentSummary{Path: "a.md", Checksum: "2", Enabled: true})
	_ = db.UpsertDocument(ctx, models.DocumentSummary{Path: "c.md", Checksum: "3"})

	all, err := db.ListDocuments(ctx, false)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(all) != 3 || all[0].Path != "a.md" {
		t.Errorf("all = %+v", all)
	}
	enabled, _ := db.ListDocuments(ctx, true)
	if len(enabled) != 2 {
		t.Errorf("enabled = %d, want 2", len(enabled))
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.UpsertDocument(ctx, models.DocumentSummary{Path: "del.md", Checksum: "x"})
	if err := db.DeleteDocument(ctx, "del.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	sums, _ := db.AllChecksums(ctx)
	if _, ok := sums["del.md"]; ok {
		t.Error("deleted document still indexed")
	}
}

func TestSettings_DefaultsWhenAbsent(t *testing.T) {
	db := testDB(t)
	s, err := db.LoadSettings(context.Background(), annotation.DefaultSettings())
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.TriggerPhrase != ";;" || s.Separator != "." {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestSettings_SaveAndLoad(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.SaveSettings(ctx, annotation.Settings{TriggerPhrase: "@@", Separator: ""}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	s, err := db.LoadSettings(ctx, annotation.DefaultSettings())
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.TriggerPhrase != "@@" {
		t.Errorf("trigger phrase = %q", s.TriggerPhrase)
	}
	if s.Separator != "" {
		t.Errorf("separator = %q, want stored empty separator", s.Separator)
	}
}

func TestSettings_RejectsEmptyTrigger(t *testing.T) {
	db := testDB(t)
	if err := db.SaveSettings(context.Background(), annotation.Settings{TriggerPhrase: ""}); err == nil {
		t.Error("expected validation error")
	}
}

func TestSummarize(t *testing.T) {
	d := Summarize("todo.md", []byte(todoDoc))
	if !d.Enabled {
		t.Error("expected enabled")
	}
	if len(d.Annotations) != 2 || d.Annotations[1] != "due" {
		t.Errorf("annotations = %v", d.Annotations)
	}
	if d.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", d.Skipped)
	}
	if d.Checksum == "" {
		t.Error("missing checksum")
	}
}

func TestSync_AddsAndRemoves(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("todo.md", []byte(todoDoc))
	_ = db.UpsertDocument(ctx, models.DocumentSummary{Path: "gone.md", Checksum: "old"})

	if err := Sync(ctx, db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := db.GetDocument(ctx, "todo.md"); err != nil {
		t.Errorf("todo.md not indexed: %v", err)
	}
	if _, err := db.GetDocument(ctx, "gone.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("gone.md should be removed, err = %v", err)
	}

	_ = os.Remove(filepath.Join(dir, "todo.md"))
	_ = Sync(ctx, db, store, quietLogger())
	docs, _ := db.ListDocuments(ctx, false)
	if len(docs) != 0 {
		t.Errorf("docs = %+v, want none", docs)
	}
}
