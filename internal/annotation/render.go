package annotation

import "time"

// DateLayout formats the "today" default content.
const DateLayout = "2006-01-02"

// Clock provides the current time for default content.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Candidate is one suggestion shown to the user. Label and InsertionText are
// always identical.
type Candidate struct {
	Label         string `json:"label"`
	Kind          Kind   `json:"kind"`
	InsertionText string `json:"insertionText"`
}

// Render resolves the content of e and applies the template for its kind.
func Render(e Entry, q Query, clock Clock) Candidate {
	content := q.Value
	if e.Forced == DefaultToday {
		if clock == nil {
			clock = SystemClock
		}
		content = clock.Now().Format(DateLayout)
	}
	text := Format(e.Kind, e.Name, content)
	return Candidate{
		Label:         text,
		Kind:          e.Kind,
		InsertionText: text,
	}
}

// Format renders name and content with the template of kind:
// "- name::content" for items and "[name::content]" for values.
func Format(kind Kind, name, content string) string {
	if kind == KindItem {
		return "- " + name + "::" + content
	}
	return "[" + name + "::" + content + "]"
}
