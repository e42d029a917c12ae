package annotation

import "strings"

// Query is the text typed after the trigger phrase, split into the part that
// filters annotation names and the part that fills the value slot.
type Query struct {
	Raw   string `json:"raw"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParseQuery splits raw once on the first occurrence of separator. With an
// empty separator both Key and Value are the whole query.
func ParseQuery(raw, separator string) Query {
	if separator == "" {
		return Query{Raw: raw, Key: raw, Value: raw}
	}
	key, value, _ := strings.Cut(raw, separator)
	return Query{Raw: raw, Key: key, Value: value}
}
