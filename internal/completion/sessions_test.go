package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/apperr"
	"github.com/starford/annotator/internal/testutil"
)

func TestSession_TypeAndSelect(t *testing.T) {
	f := newFixture(t)
	testutil.WriteDoc(t, f.dir, "list.md", testutil.TaskDoc)
	ctx := context.Background()

	info := f.svc.OpenSession("list.md")
	if info.ID == "" || info.State != "idle" {
		t.Fatalf("info = %+v", info)
	}

	typed := ";;task.buy milk"
	var upd *SessionUpdate
	for i := 1; i <= len(typed); i++ {
		var err error
		upd, err = f.svc.Keystroke(ctx, info.ID, KeystrokeRequest{
			Line:   typed[:i],
			Cursor: annotation.Position{Line: 10, Ch: i},
		})
		if err != nil {
			t.Fatal(err)
		}
		if i == 1 && upd.Span != nil {
			t.Fatal("single character must not trigger")
		}
	}
	if upd.State != "filtering" || upd.Span.Query != "task.buy milk" {
		t.Fatalf("update = %+v", upd)
	}
	if len(upd.Candidates) != 1 || upd.Candidates[0].InsertionText != "- task::buy milk" {
		t.Fatalf("candidates = %+v", upd.Candidates)
	}

	ins, err := f.svc.Select(info.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ins.Text != "- task::buy milk" || ins.Span.Start.Ch != 0 || ins.Span.End.Ch != len(typed) {
		t.Errorf("insertion = %+v", ins)
	}

	if _, err := f.svc.Select(info.ID, 0); !errors.Is(err, apperr.ErrNoCandidate) {
		t.Errorf("second select err = %v, want ErrNoCandidate", err)
	}
}

func TestSession_ContextLostGoesIdle(t *testing.T) {
	f := newFixture(t)
	testutil.WriteDoc(t, f.dir, "list.md", testutil.TaskDoc)
	ctx := context.Background()
	id := f.svc.OpenSession("list.md").ID

	for _, line := range []string{";;", ";;ta"} {
		upd, err := f.svc.Keystroke(ctx, id, KeystrokeRequest{Line: line, Cursor: annotation.Position{Ch: len(line)}})
		if err != nil {
			t.Fatal(err)
		}
		if upd.Span == nil {
			t.Fatalf("%q: expected active span", line)
		}
	}
	upd, err := f.svc.Keystroke(ctx, id, KeystrokeRequest{Line: "xxta", Cursor: annotation.Position{Ch: 4}})
	if err != nil {
		t.Fatal(err)
	}
	if upd.State != "idle" || upd.Span != nil || len(upd.Candidates) != 0 {
		t.Errorf("update = %+v", upd)
	}
}

func TestSession_UnknownID(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Keystroke(context.Background(), "nope", KeystrokeRequest{}); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Errorf("keystroke err = %v", err)
	}
	if _, err := f.svc.Select("nope", 0); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Errorf("select err = %v", err)
	}
	if err := f.svc.CloseSession("nope"); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Errorf("close err = %v", err)
	}
}

func TestSession_CloseAndPrune(t *testing.T) {
	f := newFixture(t)
	a := f.svc.OpenSession("a.md").ID
	f.svc.OpenSession("b.md")

	if err := f.svc.CloseSession(a); err != nil {
		t.Fatal(err)
	}
	if n := len(f.svc.Sessions()); n != 1 {
		t.Fatalf("open sessions = %d, want 1", n)
	}
	if n := f.svc.PruneSessions(time.Hour); n != 0 {
		t.Errorf("pruned %d fresh sessions", n)
	}
	time.Sleep(5 * time.Millisecond)
	if n := f.svc.PruneSessions(time.Millisecond); n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	if n := len(f.svc.Sessions()); n != 0 {
		t.Errorf("open sessions = %d, want 0", n)
	}
}
