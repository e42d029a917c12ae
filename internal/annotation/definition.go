// Package annotation implements inline completion of annotation values:
// trigger detection, query parsing, schema filtering and rendering of the
// text inserted into the document.
package annotation

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind selects the formatting template of an annotation.
type Kind string

// Annotation kinds.
const (
	KindItem  Kind = "item"
	KindValue Kind = "value"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindItem || k == KindValue
}

// DefaultContent is a directive that pre-fills the value slot.
type DefaultContent string

// Default content directives.
const (
	DefaultNone  DefaultContent = ""
	DefaultToday DefaultContent = "today"
)

// Valid reports whether d is empty or a known directive.
func (d DefaultContent) Valid() bool {
	return d == DefaultNone || d == DefaultToday
}

// Definition is one named annotation declared in a document header.
type Definition struct {
	Name           string         `json:"name"`
	Kind           Kind           `json:"kind"`
	DefaultContent DefaultContent `json:"defaultContent,omitempty"`
}

// Default settings values.
const (
	DefaultTriggerPhrase = ";;"
	DefaultSeparator     = "."
)

// Settings are the user-level completion preferences.
type Settings struct {
	TriggerPhrase string `json:"triggerPhrase" yaml:"trigger_phrase"`
	Separator     string `json:"separator" yaml:"separator"`
}

// DefaultSettings returns the built-in preferences.
func DefaultSettings() Settings {
	return Settings{
		TriggerPhrase: DefaultTriggerPhrase,
		Separator:     DefaultSeparator,
	}
}

// Validate validates the settings. The separator may be empty.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.TriggerPhrase, validation.Required),
	)
}

// Schema is the snapshot of configuration a single filtering pass runs against.
type Schema struct {
	TriggerPhrase string       `json:"triggerPhrase"`
	Separator     string       `json:"separator"`
	Annotations   []Definition `json:"annotations"`
	Enabled       bool         `json:"enabled"`
}

// Active reports whether the schema can produce candidates at all.
func (s Schema) Active() bool {
	return s.Enabled && len(s.Annotations) > 0
}
