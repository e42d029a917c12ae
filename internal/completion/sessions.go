package completion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/apperr"
	"github.com/starford/annotator/internal/editor"
)

// SessionInfo describes an open session.
type SessionInfo struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}

// SessionUpdate is the state of a session after a keystroke.
type SessionUpdate struct {
	ID         string                 `json:"id"`
	State      string                 `json:"state"`
	Span       *annotation.Span       `json:"span,omitempty"`
	Candidates []annotation.Candidate `json:"candidates"`
}

// Insertion is the edit a host must perform after a selection.
type Insertion struct {
	Span annotation.Span `json:"span"`
	Text string          `json:"text"`
}

type session struct {
	mu         sync.Mutex
	id         string
	path       string
	core       *annotation.Session
	createdAt  time.Time
	lastActive time.Time
}

func (s *session) info() SessionInfo {
	return SessionInfo{
		ID:         s.id,
		Path:       s.path,
		State:      s.core.State().String(),
		CreatedAt:  s.createdAt,
		LastActive: s.lastActive,
	}
}

type registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*session)}
}

func (r *registry) get(id string) (*session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperr.ErrSessionNotFound
	}
	return s, nil
}

// OpenSession starts an idle suggestion session bound to path.
func (s *Service) OpenSession(path string) SessionInfo {
	now := time.Now()
	sess := &session{
		id:         uuid.NewString(),
		path:       path,
		core:       annotation.NewSession(s.suggester),
		createdAt:  now,
		lastActive: now,
	}
	s.sessions.mu.Lock()
	s.sessions.sessions[sess.id] = sess
	s.sessions.mu.Unlock()

	s.logger.Debug("session opened", slog.String("id", sess.id), slog.String("path", path))
	return sess.info()
}

// Sessions lists open sessions.
func (s *Service) Sessions() []SessionInfo {
	s.sessions.mu.RLock()
	defer s.sessions.mu.RUnlock()
	out := make([]SessionInfo, 0, len(s.sessions.sessions))
	for _, sess := range s.sessions.sessions {
		sess.mu.Lock()
		out = append(out, sess.info())
		sess.mu.Unlock()
	}
	return out
}

// KeystrokeRequest carries the cursor line after an input event.
type KeystrokeRequest struct {
	Line   string              `json:"line"`
	Cursor annotation.Position `json:"cursor"`
}

// Keystroke feeds one input event to the session. The document schema is
// re-read on every call so header edits apply to the next filtering pass.
func (s *Service) Keystroke(ctx context.Context, id string, req KeystrokeRequest) (*SessionUpdate, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()

	schema, err := s.Schema(ctx, sess.path)
	if err != nil {
		return nil, err
	}
	text := editor.Line{Index: req.Cursor.Line, Text: req.Line}
	span, ok := sess.core.OnTrigger(req.Cursor, text, schema.TriggerPhrase)
	if !ok {
		return &SessionUpdate{ID: id, State: sess.core.State().String(), Candidates: []annotation.Candidate{}}, nil
	}
	cands := nonNil(sess.core.Suggestions(schema))
	return &SessionUpdate{
		ID:         id,
		State:      sess.core.State().String(),
		Span:       &span,
		Candidates: cands,
	}, nil
}

// Select picks candidate i from the last keystroke and ends the session.
func (s *Service) Select(id string, i int) (*Insertion, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()

	cands := sess.core.Candidates()
	if i < 0 || i >= len(cands) {
		return nil, apperr.ErrNoCandidate
	}
	span, text, ok := sess.core.Select(cands[i])
	if !ok {
		return nil, apperr.ErrNoCandidate
	}
	s.logger.Debug("candidate selected", slog.String("id", id), slog.String("text", text))
	return &Insertion{Span: span, Text: text}, nil
}

// CloseSession discards a session.
func (s *Service) CloseSession(id string) error {
	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()
	if _, ok := s.sessions.sessions[id]; !ok {
		return apperr.ErrSessionNotFound
	}
	delete(s.sessions.sessions, id)
	return nil
}

// PruneSessions drops sessions idle for longer than ttl and returns how many
// were removed.
func (s *Service) PruneSessions(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()
	n := 0
	for id, sess := range s.sessions.sessions {
		sess.mu.Lock()
		idle := sess.lastActive.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Info("sessions pruned", slog.Int("count", n))
	}
	return n
}

// RunPruner prunes idle sessions every interval until ctx is done.
func (s *Service) RunPruner(ctx context.Context, ttl, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.PruneSessions(ttl)
		}
	}
}
