package index

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/starford/annotator/internal/storage"
)

// recorder collects watcher callbacks as "kind:path".
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, path string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+path)
	r.mu.Unlock()
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.events, event)
}

type watchEnv struct {
	dir   string
	store storage.Provider
	db    *DB
	rec   *recorder
}

// startWatch syncs the vault, then runs Watch until the test ends.
func startWatch(t *testing.T, files map[string]string) *watchEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	env := &watchEnv{dir: dir, store: store, db: testDB(t), rec: &recorder{}}
	if err := Sync(context.Background(), env.db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, env.db, store, dir, quietLogger(), env.rec.record)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
	return env
}

// eventually polls fn until it returns true or the timeout elapses.
func eventually(t *testing.T, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error(msg)
}

func indexed(db *DB, path string) bool {
	sums, _ := db.AllChecksums(context.Background())
	_, ok := sums[path]
	return ok
}

func enabled(db *DB, path string) bool {
	d, err := db.GetDocument(context.Background(), path)
	return err == nil && d.Enabled
}

func TestWatcher_NewDocumentIndexed(t *testing.T) {
	env := startWatch(t, nil)

	_ = os.WriteFile(filepath.Join(env.dir, "new.md"), []byte(todoDoc), 0o644)

	eventually(t, func() bool { return enabled(env.db, "new.md") }, "new document not indexed as enabled")
	eventually(t, func() bool { return env.rec.has("created:new.md") }, "expected created:new.md callback")
}

func TestWatcher_HeaderEditEnablesDocument(t *testing.T) {
	env := startWatch(t, map[string]string{"list.md": "# no header yet\n"})
	if enabled(env.db, "list.md") {
		t.Fatal("precondition: document should start disabled")
	}

	// Atomic writes go through a hidden temp file and a rename.
	if err := env.store.Write("list.md", []byte(todoDoc)); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool { return enabled(env.db, "list.md") }, "header edit not picked up")
	sums, _ := env.db.AllChecksums(context.Background())
	for p := range sums {
		if p != "list.md" {
			t.Errorf("unexpected index entry %q", p)
		}
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	env := startWatch(t, nil)

	sub := filepath.Join(env.dir, "projects")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte(todoDoc), 0o644)

	eventually(t, func() bool { return indexed(env.db, "projects/deep.md") }, "document in new subdir not indexed")
}

func TestWatcher_HiddenIgnored(t *testing.T) {
	env := startWatch(t, nil)

	_ = os.WriteFile(filepath.Join(env.dir, ".draft.md"), []byte(todoDoc), 0o644)
	_ = os.MkdirAll(filepath.Join(env.dir, ".trash"), 0o755)
	_ = os.WriteFile(filepath.Join(env.dir, ".trash", "gone.md"), []byte(todoDoc), 0o644)
	_ = os.WriteFile(filepath.Join(env.dir, "seen.md"), []byte(todoDoc), 0o644)

	eventually(t, func() bool { return indexed(env.db, "seen.md") }, "visible document not indexed")
	if indexed(env.db, ".draft.md") || indexed(env.db, ".trash/gone.md") {
		t.Error("hidden documents were indexed")
	}
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	env := startWatch(t, map[string]string{"del.md": todoDoc})
	if !indexed(env.db, "del.md") {
		t.Fatal("precondition: document should be indexed")
	}

	_ = os.Remove(filepath.Join(env.dir, "del.md"))

	eventually(t, func() bool { return !indexed(env.db, "del.md") }, "deleted document still in index")
	eventually(t, func() bool { return env.rec.has("deleted:del.md") }, "expected deleted:del.md callback")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	env := startWatch(t, map[string]string{"old.md": todoDoc})

	_ = os.Rename(filepath.Join(env.dir, "old.md"), filepath.Join(env.dir, "renamed.md"))

	eventually(t, func() bool {
		return !indexed(env.db, "old.md") && indexed(env.db, "renamed.md")
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
