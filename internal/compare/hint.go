package compare

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxHintLines bounds the line diff appended to a hint.
const maxHintLines = 12

// Difference locates the first line where received and approved diverge.
// Line is 1-based; Line is 0 when the contents are equal.
type Difference struct {
	Line     int
	Received string
	Approved string
}

// FirstDifference scans both contents line by line. A side that runs out of
// lines reports "<end of content>".
func FirstDifference(received, approved string) Difference {
	if received == approved {
		return Difference{}
	}
	rLines := strings.Split(received, "\n")
	aLines := strings.Split(approved, "\n")
	for i := 0; i < len(rLines) || i < len(aLines); i++ {
		r, rok := lineAt(rLines, i)
		a, aok := lineAt(aLines, i)
		if r != a || rok != aok {
			return Difference{Line: i + 1, Received: display(r, rok), Approved: display(a, aok)}
		}
	}
	return Difference{}
}

// Hint renders a short human-readable explanation of a mismatch: the first
// differing line followed by a bounded line diff ("-" approved, "+" received).
func Hint(received, approved string) string {
	diff := FirstDifference(received, approved)
	if diff.Line == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "first difference at line %d\n", diff.Line)
	fmt.Fprintf(&b, "  approved: %q\n", diff.Approved)
	fmt.Fprintf(&b, "  received: %q\n", diff.Received)
	if lines := LineDiff(received, approved); len(lines) > 0 {
		b.WriteString("diff:\n")
		for _, line := range lines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// LineDiff returns changed lines prefixed with "-" (approved only) or "+"
// (received only), truncated to a fixed number of entries.
func LineDiff(received, approved string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(approved, received)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			if len(out) == maxHintLines {
				return append(out, "...")
			}
			out = append(out, prefix+line)
		}
	}
	return out
}

func lineAt(lines []string, i int) (string, bool) {
	if i < len(lines) {
		return lines[i], true
	}
	return "", false
}

func display(line string, ok bool) string {
	if !ok {
		return "<end of content>"
	}
	return line
}
