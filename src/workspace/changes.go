package workspace

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

// ChangeTracker remembers the generated content of every file and diffs the
// current content against it.
type ChangeTracker struct {
	mu   sync.Mutex
	base map[string]string
	dmp  *diffmatchpatch.DiffMatchPatch
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{base: map[string]string{}, dmp: diffmatchpatch.New()}
}

// Baseline forgets previous snapshots and records files as generated.
func (t *ChangeTracker) Baseline(files []GeneratedFile) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.base = make(map[string]string, len(files))
	for _, f := range files {
		t.base[f.Path] = f.Content
	}
}

// Original returns the generated content of path.
func (t *ChangeTracker) Original(path string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.base[path]
	return s, ok
}

func (t *ChangeTracker) Changed(path, current string) bool {
	orig, ok := t.Original(path)
	return ok && orig != current
}

type diffLine struct {
	op    diffmatchpatch.Operation
	text  string
	noEOL bool
}

// lines runs a line-mode diff and flattens it to one entry per line.
func (t *ChangeTracker) lines(oldText, newText string) []diffLine {
	a, b, table := t.dmp.DiffLinesToChars(oldText, newText)
	diffs := t.dmp.DiffCharsToLines(t.dmp.DiffMain(a, b, false), table)

	var out []diffLine
	for _, d := range diffs {
		text, terminated := strings.CutSuffix(d.Text, "\n")
		parts := strings.Split(text, "\n")
		for i, l := range parts {
			out = append(out, diffLine{op: d.Type, text: l, noEOL: !terminated && i == len(parts)-1})
		}
	}
	return out
}

// Stats counts the lines added and removed in current relative to the
// generated content of path.
func (t *ChangeTracker) Stats(path, current string) (added, removed int) {
	orig, ok := t.Original(path)
	if !ok || orig == current {
		return 0, 0
	}
	for _, l := range t.lines(orig, current) {
		switch l.op {
		case diffmatchpatch.DiffInsert:
			added++
		case diffmatchpatch.DiffDelete:
			removed++
		}
	}
	return added, removed
}

// Diff renders a git-style unified diff of path. It is empty when nothing
// changed.
func (t *ChangeTracker) Diff(path, current string) string {
	orig, ok := t.Original(path)
	if !ok || orig == current {
		return ""
	}
	seq := t.lines(orig, current)

	var out strings.Builder
	fmt.Fprintf(&out, "--- a/%s\n+++ b/%s\n", path, path)

	// oldAt/newAt are the 0-based line numbers before seq[i].
	oldAt := make([]int, len(seq)+1)
	newAt := make([]int, len(seq)+1)
	for i, l := range seq {
		oldAt[i+1], newAt[i+1] = oldAt[i], newAt[i]
		if l.op != diffmatchpatch.DiffInsert {
			oldAt[i+1]++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newAt[i+1]++
		}
	}

	i := 0
	for i < len(seq) {
		if seq[i].op == diffmatchpatch.DiffEqual {
			i++
			continue
		}
		start := max(0, i-diffContext)
		end := i
		// extend while another change is within reach of the trailing context
		for end < len(seq) {
			if seq[end].op != diffmatchpatch.DiffEqual {
				end++
				continue
			}
			next := end
			for next < len(seq) && next-end <= 2*diffContext && seq[next].op == diffmatchpatch.DiffEqual {
				next++
			}
			if next < len(seq) && next-end <= 2*diffContext {
				end = next
				continue
			}
			end = min(len(seq), end+diffContext)
			break
		}

		fmt.Fprintf(&out, "@@ -%s +%s @@\n",
			hunkRange(oldAt[start], oldAt[end]-oldAt[start]),
			hunkRange(newAt[start], newAt[end]-newAt[start]))
		for _, l := range seq[start:end] {
			switch l.op {
			case diffmatchpatch.DiffInsert:
				out.WriteString("+")
			case diffmatchpatch.DiffDelete:
				out.WriteString("-")
			default:
				out.WriteString(" ")
			}
			out.WriteString(l.text)
			out.WriteString("\n")
			if l.noEOL {
				out.WriteString("\\ No newline at end of file\n")
			}
		}
		i = end
	}
	return out.String()
}

func hunkRange(start, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", start)
	}
	if count == 1 {
		return fmt.Sprintf("%d", start+1)
	}
	return fmt.Sprintf("%d,%d", start+1, count)
}
