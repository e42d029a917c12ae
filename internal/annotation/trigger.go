package annotation

import (
	"strings"
	"unicode/utf8"
)

// Position addresses a character in a document. Ch counts runes from the
// start of the line.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// Before reports whether p sorts before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Ch < o.Ch
}

// TextRange returns the literal text between two positions of a document.
type TextRange interface {
	Range(from, to Position) string
}

// Span is an active trigger context: the text in [Start, End) is the trigger
// phrase followed by Query.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
	Query string   `json:"query"`
}

// Match reports whether the characters immediately before cursor are exactly
// phrase. There is no word-boundary check, so a phrase embedded in ordinary
// text triggers too.
func Match(cursor Position, text TextRange, phrase string) (Span, bool) {
	if phrase == "" || text == nil {
		return Span{}, false
	}
	start := Position{Line: cursor.Line, Ch: cursor.Ch - utf8.RuneCountInString(phrase)}
	if start.Ch < 0 {
		return Span{}, false
	}
	if text.Range(start, cursor) != phrase {
		return Span{}, false
	}
	return Span{Start: start, End: cursor}, true
}

// Extend re-reads an established span from start up to cursor. The range
// must be on one line and still begin with phrase.
func Extend(start, cursor Position, text TextRange, phrase string) (Span, bool) {
	if cursor.Line != start.Line || cursor.Ch-start.Ch < utf8.RuneCountInString(phrase) {
		return Span{}, false
	}
	got := text.Range(start, cursor)
	if !strings.HasPrefix(got, phrase) {
		return Span{}, false
	}
	return Span{Start: start, End: cursor, Query: got[len(phrase):]}, true
}
