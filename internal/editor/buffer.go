// Package editor provides in-memory text accessors that resolve line/column
// positions against document content.
package editor

import (
	"strings"

	"github.com/starford/annotator/internal/annotation"
)

// Buffer is a document split into lines of runes.
type Buffer struct {
	lines [][]rune
}

// Compile-time check.
var _ annotation.TextRange = (*Buffer)(nil)

// NewBuffer splits text on "\n".
func NewBuffer(text string) *Buffer {
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return &Buffer{lines: lines}
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the text of line i, or "" when out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return string(b.lines[i])
}

// clamp moves p onto the nearest valid position.
func (b *Buffer) clamp(p annotation.Position) annotation.Position {
	if p.Line < 0 {
		return annotation.Position{}
	}
	if p.Line >= len(b.lines) {
		last := len(b.lines) - 1
		return annotation.Position{Line: last, Ch: len(b.lines[last])}
	}
	if p.Ch < 0 {
		p.Ch = 0
	}
	if n := len(b.lines[p.Line]); p.Ch > n {
		p.Ch = n
	}
	return p
}

// Range returns the text between from and to. Reversed positions are swapped.
func (b *Buffer) Range(from, to annotation.Position) string {
	from, to = b.clamp(from), b.clamp(to)
	if to.Before(from) {
		from, to = to, from
	}
	if from.Line == to.Line {
		return string(b.lines[from.Line][from.Ch:to.Ch])
	}
	var sb strings.Builder
	sb.WriteString(string(b.lines[from.Line][from.Ch:]))
	for i := from.Line + 1; i < to.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(string(b.lines[i]))
	}
	sb.WriteByte('\n')
	sb.WriteString(string(b.lines[to.Line][:to.Ch]))
	return sb.String()
}

// Replace substitutes text for the span [from, to).
func (b *Buffer) Replace(from, to annotation.Position, text string) {
	from, to = b.clamp(from), b.clamp(to)
	if to.Before(from) {
		from, to = to, from
	}
	head := string(b.lines[from.Line][:from.Ch])
	tail := string(b.lines[to.Line][to.Ch:])
	inserted := NewBuffer(head + text + tail).lines

	lines := make([][]rune, 0, len(b.lines)-(to.Line-from.Line)+len(inserted)-1)
	lines = append(lines, b.lines[:from.Line]...)
	lines = append(lines, inserted...)
	lines = append(lines, b.lines[to.Line+1:]...)
	b.lines = lines
}

// String joins the buffer back into document text.
func (b *Buffer) String() string {
	parts := make([]string, len(b.lines))
	for i, l := range b.lines {
		parts[i] = string(l)
	}
	return strings.Join(parts, "\n")
}
