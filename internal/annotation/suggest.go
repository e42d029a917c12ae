package annotation

// Context is the input of one suggestion pass.
type Context struct {
	Span   Span
	Schema Schema
}

// Suggester is the host-facing completion interface.
type Suggester struct {
	clock Clock
}

// NewSuggester returns a Suggester resolving dates with clock. A nil clock
// uses SystemClock.
func NewSuggester(clock Clock) *Suggester {
	if clock == nil {
		clock = SystemClock
	}
	return &Suggester{clock: clock}
}

// OnTrigger reports the trigger span ending at cursor, if any. The query is
// empty for a fresh match; Session extends it on later keystrokes.
func (s *Suggester) OnTrigger(cursor Position, text TextRange, phrase string) (Span, bool) {
	return Match(cursor, text, phrase)
}

// GetSuggestions returns the ordered candidates for ctx.
func (s *Suggester) GetSuggestions(ctx Context) []Candidate {
	q := ParseQuery(ctx.Span.Query, ctx.Schema.Separator)
	return s.Suggest(q, ctx.Schema)
}

// Suggest filters schema with q and renders every entry.
func (s *Suggester) Suggest(q Query, schema Schema) []Candidate {
	entries := Filter(q, schema)
	if len(entries) == 0 {
		return nil
	}
	out := make([]Candidate, len(entries))
	for i, e := range entries {
		out[i] = Render(e, q, s.clock)
	}
	return out
}

// Expand returns the literal insertion text of c.
func (s *Suggester) Expand(c Candidate) string {
	return c.InsertionText
}
