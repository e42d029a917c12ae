package annotation

import "strings"

// Entry is a definition selected for rendering. Forced, when set, replaces
// the typed value with the resolved default content.
type Entry struct {
	Definition
	Forced DefaultContent `json:"forced,omitempty"`
}

// Filter selects the annotations whose name contains q.Key. When nothing
// matches, every annotation is offered instead. Each definition carrying a
// default-content directive contributes a second entry, appended after all
// base entries in schema order.
func Filter(q Query, schema Schema) []Entry {
	if !schema.Active() {
		return nil
	}

	matched := make([]Definition, 0, len(schema.Annotations))
	for _, def := range schema.Annotations {
		if strings.Contains(def.Name, q.Key) {
			matched = append(matched, def)
		}
	}
	if len(matched) == 0 {
		matched = schema.Annotations
	}

	entries := make([]Entry, 0, len(matched)+1)
	for _, def := range matched {
		entries = append(entries, Entry{Definition: def})
	}
	for _, def := range matched {
		if def.DefaultContent != DefaultNone {
			entries = append(entries, Entry{Definition: def, Forced: def.DefaultContent})
		}
	}
	return entries
}
