package annotation

// State is the phase of a suggestion session.
type State int

// Session states.
const (
	StateIdle State = iota
	StateTriggered
	StateFiltering
	StateInserted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTriggered:
		return "triggered"
	case StateFiltering:
		return "filtering"
	case StateInserted:
		return "inserted"
	default:
		return "unknown"
	}
}

// Session tracks one suggestion popup. Once triggered, the span start stays
// fixed so the query can grow without retyping the trigger phrase.
//
// A Session is not safe for concurrent use; hosts deliver input events one
// at a time.
type Session struct {
	suggester  *Suggester
	state      State
	span       Span
	candidates []Candidate
}

// NewSession returns an idle session rendering with s. A nil s uses the
// system clock.
func NewSession(s *Suggester) *Session {
	if s == nil {
		s = NewSuggester(nil)
	}
	return &Session{suggester: s}
}

// State returns the current phase.
func (s *Session) State() State { return s.state }

// Span returns the active trigger span, if any.
func (s *Session) Span() (Span, bool) {
	if s.state != StateTriggered && s.state != StateFiltering {
		return Span{}, false
	}
	return s.span, true
}

// OnTrigger processes a cursor move or keystroke. While a session is open the
// existing start is reused; when that context is lost the session goes idle
// and a fresh match is attempted at cursor.
func (s *Session) OnTrigger(cursor Position, text TextRange, phrase string) (Span, bool) {
	if s.state == StateTriggered || s.state == StateFiltering {
		if span, ok := Extend(s.span.Start, cursor, text, phrase); ok {
			s.span = span
			return span, true
		}
		s.Close()
	}
	span, ok := s.suggester.OnTrigger(cursor, text, phrase)
	if !ok {
		s.state = StateIdle
		return Span{}, false
	}
	s.state = StateTriggered
	s.span = span
	s.candidates = nil
	return span, true
}

// Suggestions filters and renders candidates for the active span against
// schema. It returns nil when no span is active.
func (s *Session) Suggestions(schema Schema) []Candidate {
	if s.state != StateTriggered && s.state != StateFiltering {
		return nil
	}
	s.state = StateFiltering
	s.candidates = s.suggester.GetSuggestions(Context{Span: s.span, Schema: schema})
	return s.candidates
}

// Candidates returns the list produced by the last Suggestions call.
func (s *Session) Candidates() []Candidate { return s.candidates }

// Select ends the session with candidate c. It returns the span the host
// must replace and the replacement text.
func (s *Session) Select(c Candidate) (Span, string, bool) {
	span, ok := s.Span()
	if !ok {
		return Span{}, "", false
	}
	s.state = StateInserted
	s.candidates = nil
	return span, s.suggester.Expand(c), true
}

// Close abandons the session.
func (s *Session) Close() {
	s.state = StateIdle
	s.span = Span{}
	s.candidates = nil
}
