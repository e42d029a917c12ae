// Package sse implements a Server-Sent Events broker that tells connected
// editor hosts when document schemas or settings change.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types emitted by the broker.
const (
	TypeDocumentCreated  = "document.created"
	TypeDocumentUpdated  = "document.updated"
	TypeDocumentDeleted  = "document.deleted"
	TypeDocumentsChanged = "documents.changed"
	TypeSettingsUpdated  = "settings.updated"
)

const (
	clientBuffer     = 64
	defaultKeepAlive = 15 * time.Second
	defaultThrottle  = 2 * time.Second
	keepAliveComment = ": ping\n\n"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type change struct {
	kind string
	path string
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often idle streams receive a comment line. Zero
// disables keep-alives.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// Broker fans events out to SSE clients.
//
// One goroutine owns the client set, the event sequence, the list throttle
// and the last settings frame; everything else reaches it over channels.
// Clients that subscribe after a settings change receive that frame first.
type Broker struct {
	listMin   time.Duration
	keepAlive time.Duration

	join    chan chan []byte
	leave   chan chan []byte
	events  chan Event
	changes chan change
	count   chan chan int

	quit    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits documents.changed at most once per
// listThrottle.
func NewBroker(listThrottle time.Duration, opts ...Option) *Broker {
	if listThrottle <= 0 {
		listThrottle = defaultThrottle
	}
	b := &Broker{
		listMin:   listThrottle,
		keepAlive: defaultKeepAlive,
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		events:    make(chan Event, 256),
		changes:   make(chan change, 256),
		count:     make(chan chan int),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

// frame encodes one event in the text/event-stream format.
func frame(id uint64, event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", id, event.Type, payload), nil
}

func (b *Broker) loop() {
	defer close(b.stopped)

	var (
		clients  = make(map[chan []byte]struct{})
		seq      uint64
		lastList time.Time
		settings []byte
	)

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// Slow client; drop rather than block the loop.
		}
	}
	broadcast := func(event Event) []byte {
		seq++
		raw, err := frame(seq, event)
		if err != nil {
			return nil
		}
		for ch := range clients {
			send(ch, raw)
		}
		return raw
	}

	for {
		select {
		case <-b.quit:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}
			if settings != nil {
				send(ch, settings)
			}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.events:
			raw := broadcast(event)
			if event.Type == TypeSettingsUpdated && raw != nil {
				settings = raw
			}

		case c := <-b.changes:
			typ, ok := changeType(c.kind)
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: map[string]string{"path": c.path}})
			if now := time.Now(); now.Sub(lastList) >= b.listMin {
				lastList = now
				broadcast(Event{Type: TypeDocumentsChanged, Data: map[string]string{}})
			}

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

func changeType(kind string) (string, bool) {
	switch kind {
	case "created":
		return TypeDocumentCreated, true
	case "updated":
		return TypeDocumentUpdated, true
	case "deleted":
		return TypeDocumentDeleted, true
	}
	return "", false
}

// Close stops the loop and closes all client channels. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. The channel is
// closed immediately if the broker has stopped.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- event:
	case <-b.stopped:
	}
}

// PublishDocumentEvent reports a document change (kind is created, updated
// or deleted) and a throttled documents.changed. Other kinds are ignored.
func (b *Broker) PublishDocumentEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changes <- change{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// PublishSettings reports new completion settings. The frame is also
// replayed to clients that connect later.
func (b *Broker) PublishSettings(settings any) {
	b.Publish(Event{Type: TypeSettingsUpdated, Data: settings})
}

// ServeHTTP is the SSE endpoint handler.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var ping <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping:
			_, _ = w.Write([]byte(keepAliveComment))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
