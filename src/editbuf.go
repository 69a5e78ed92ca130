package src

import (
	"strings"

	"github.com/charmbracelet/bubbles/runeutil"
)

// editBuffer keeps the stored content of the open file in step with the
// editor textarea. The textarea expands tabs and drops control characters
// on input, so the stored text is never taken from it wholesale: only the
// span the user changed is spliced into raw.
type editBuffer struct {
	raw  string
	view string
}

// layout maps every rune of a raw text to what the editor shows for it.
type layout struct {
	at    []int    // byte offset of each rune in raw, plus len(raw)
	off   []int    // rune offset of each rune in the view, plus the view length
	shown [][]rune // view runes of each raw rune
}

var displaySanitizer = runeutil.NewSanitizer()

func layoutOf(raw string) layout {
	var l layout
	n := 0
	for i, r := range raw {
		var shown []rune
		if r != '\r' || !strings.HasPrefix(raw[i+1:], "\n") {
			shown = displaySanitizer.Sanitize([]rune{r})
		}
		l.at = append(l.at, i)
		l.off = append(l.off, n)
		l.shown = append(l.shown, shown)
		n += len(shown)
	}
	l.at = append(l.at, len(raw))
	l.off = append(l.off, n)
	return l
}

func (l layout) view() string {
	var b strings.Builder
	for _, s := range l.shown {
		b.WriteString(string(s))
	}
	return b.String()
}

func newEditBuffer(raw string) editBuffer {
	return editBuffer{raw: raw, view: layoutOf(raw).view()}
}

// apply records that the editor now shows after and returns the new raw
// content. Text outside the changed span keeps its original bytes.
func (b *editBuffer) apply(after string) string {
	before, next := []rune(b.view), []rune(after)

	p := 0
	for p < len(before) && p < len(next) && before[p] == next[p] {
		p++
	}
	s := 0
	for s < len(before)-p && s < len(next)-p && before[len(before)-1-s] == next[len(next)-1-s] {
		s++
	}
	q := len(before) - s

	l := layoutOf(b.raw)
	n := len(l.shown)

	// i is the first raw rune not wholly kept before the change. Hidden
	// runes at the boundary stay with the text that follows them.
	i := 0
	for i < n && l.off[i+1] <= p {
		i++
	}
	for i > 0 && l.off[i] == p && len(l.shown[i-1]) == 0 {
		i--
	}
	j := i
	for l.off[j] < q {
		j++
	}

	var out strings.Builder
	out.WriteString(b.raw[:l.at[i]])
	if l.off[i] < p {
		out.WriteString(string(l.shown[i][:p-l.off[i]]))
	}
	out.WriteString(string(next[p : len(next)-s]))
	if l.off[j] > q {
		out.WriteString(string(l.shown[j-1][q-l.off[j-1]:]))
	}
	out.WriteString(b.raw[l.at[j]:])

	b.raw, b.view = out.String(), after
	if layoutOf(b.raw).view() != after {
		// a lone CR next to the change merged into a CRLF
		b.raw = after
	}
	return b.raw
}
