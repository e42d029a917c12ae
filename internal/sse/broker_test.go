package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

// drain collects everything buffered on ch after a short settle delay.
func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublish_FrameFormat(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeDocumentCreated, Data: map[string]string{"path": "todo.md"}})
	b.Publish(Event{Type: TypeDocumentDeleted, Data: map[string]string{"path": "old.md"}})

	first, second := receive(t, ch), receive(t, ch)
	if want := "id: 1\nevent: document.created\ndata: {\"path\":\"todo.md\"}\n\n"; first != want {
		t.Errorf("first frame = %q, want %q", first, want)
	}
	if !strings.HasPrefix(second, "id: 2\n") {
		t.Errorf("second frame = %q, want id 2", second)
	}
}

func TestPublishDocumentEvent_ListThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Only the first change within the window emits documents.changed, and
	// unknown kinds are dropped.
	b.PublishDocumentEvent("created", "a.md")
	b.PublishDocumentEvent("updated", "b.md")
	b.PublishDocumentEvent("renamed", "c.md")

	var docs, lists int
	for _, s := range drain(ch) {
		if strings.Contains(s, TypeDocumentsChanged) {
			lists++
		} else {
			docs++
		}
	}
	if docs != 2 {
		t.Errorf("document events = %d, want 2", docs)
	}
	if lists != 1 {
		t.Errorf("documents.changed events = %d, want 1 (throttled)", lists)
	}
}

func TestPublishSettings_ReplayedToLateSubscribers(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	early := b.Subscribe()
	defer b.Unsubscribe(early)
	b.PublishSettings(map[string]string{"triggerPhrase": "@@", "separator": ""})
	live := receive(t, early)
	if !strings.Contains(live, "event: settings.updated") || !strings.Contains(live, `"triggerPhrase":"@@"`) {
		t.Fatalf("live frame = %q", live)
	}

	late := b.Subscribe()
	defer b.Unsubscribe(late)
	if replay := receive(t, late); replay != live {
		t.Errorf("replayed frame = %q, want %q", replay, live)
	}

	// Document events are not replayed.
	b.PublishDocumentEvent("updated", "x.md")
	_ = drain(early)
	third := b.Subscribe()
	defer b.Unsubscribe(third)
	if got := drain(third); len(got) != 1 || !strings.Contains(got[0], TypeSettingsUpdated) {
		t.Errorf("third subscriber got %q", got)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100*time.Millisecond, WithKeepAlive(20*time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeDocumentUpdated, Data: map[string]string{"path": "x.md"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: document.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if !strings.Contains(body, keepAliveComment) {
		t.Errorf("handler output missing keep-alive: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < clientBuffer+10; i++ {
		b.Publish(Event{Type: "test", Data: i})
	}
	if got := len(drain(ch)); got != clientBuffer {
		t.Errorf("buffered = %d, want %d", got, clientBuffer)
	}
}

func TestClose(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()

	b.Close()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}
	if _, ok := <-b.Subscribe(); ok {
		t.Error("subscribe after close should return a closed channel")
	}

	// Safe no-ops after close.
	b.Publish(Event{Type: TypeDocumentUpdated, Data: map[string]string{"path": "x.md"}})
	b.PublishDocumentEvent("updated", "x.md")
	b.PublishSettings(map[string]string{"triggerPhrase": ";;"})
	b.Unsubscribe(ch)
}
