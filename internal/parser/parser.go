// Package parser splits Markdown documents into their YAML frontmatter header
// and body.
package parser

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

const delim = "---"

var bom = []byte("\ufeff")

// Result holds the output of parsing a Markdown document.
type Result struct {
	// Frontmatter is nil when the document has no usable header.
	Frontmatter map[string]any
	Body        string
}

// Parse extracts the frontmatter block from raw Markdown bytes.
// A missing closing delimiter or invalid YAML is not an error: the whole
// content is treated as body.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	return &Result{
		Frontmatter: fm,
		Body:        body,
	}, nil
}

// Frontmatter returns only the parsed header of data, or nil.
func Frontmatter(data []byte) map[string]any {
	fm, _ := splitFrontmatter(data)
	return fm
}

// splitFrontmatter separates a leading --- delimited YAML block from the body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	trimmed := bytes.TrimPrefix(data, bom)
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	// The closing delimiter ends at the next newline.
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = nil
	}

	var fm map[string]any
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, string(data)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, string(after)
}
