package editor

import "github.com/starford/annotator/internal/annotation"

// Line exposes a single line of a document at its real line index. Hosts
// that only send the line under the cursor use it instead of a full Buffer.
// Ranges touching other lines are empty.
type Line struct {
	Index int
	Text  string
}

var _ annotation.TextRange = Line{}

// Range implements annotation.TextRange for positions on l.Index.
func (l Line) Range(from, to annotation.Position) string {
	if from.Line != l.Index || to.Line != l.Index {
		return ""
	}
	r := []rune(l.Text)
	lo, hi := clampCh(from.Ch, len(r)), clampCh(to.Ch, len(r))
	if hi < lo {
		lo, hi = hi, lo
	}
	return string(r[lo:hi])
}

func clampCh(ch, n int) int {
	if ch < 0 {
		return 0
	}
	if ch > n {
		return n
	}
	return ch
}
