package compare

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExact(t *testing.T) {
	if !Exact.Compare("a", "a") {
		t.Fatalf("identical strings must match")
	}
	if Exact.Compare("a", "a ") {
		t.Fatalf("trailing space must not match exactly")
	}
}

func TestIgnoreWhitespace(t *testing.T) {
	if !IgnoreWhitespace.Compare(" a\t b\n", "a b") {
		t.Fatalf("whitespace runs should be ignored")
	}
	if IgnoreWhitespace.Compare("ab", "a b") {
		t.Fatalf("missing separator must not match")
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault(nil) != Exact {
		t.Fatalf("nil comparer should default to Exact")
	}
	custom := Func(func(string, string) bool { return true })
	if !OrDefault(custom).Compare("x", "y") {
		t.Fatalf("custom comparer should be kept")
	}
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		name     string
		received string
		approved string
		want     Difference
	}{
		{name: "equal", received: "a\nb", approved: "a\nb", want: Difference{}},
		{name: "changed line", received: "a\nx\nc", approved: "a\nb\nc", want: Difference{Line: 2, Received: "x", Approved: "b"}},
		{name: "received longer", received: "a\nb", approved: "a", want: Difference{Line: 2, Received: "b", Approved: "<end of content>"}},
		{name: "approved empty", received: "Foo_Bar", approved: "", want: Difference{Line: 1, Received: "Foo_Bar", Approved: ""}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, FirstDifference(tc.received, tc.approved)); diff != "" {
				t.Fatalf("difference mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHintMentionsBothSides(t *testing.T) {
	hint := Hint("a\nreceived\nc", "a\napproved\nc")
	for _, want := range []string{"line 2", `"approved"`, `"received"`, "-approved", "+received"} {
		if !strings.Contains(hint, want) {
			t.Fatalf("hint missing %q:\n%s", want, hint)
		}
	}
}

func TestHintEmptyWhenEqual(t *testing.T) {
	if hint := Hint("same", "same"); hint != "" {
		t.Fatalf("expected empty hint, got %q", hint)
	}
}

func TestLineDiffTruncates(t *testing.T) {
	var received []string
	for i := 0; i < 40; i++ {
		received = append(received, "line")
	}
	lines := LineDiff(strings.Join(received, "\n"), "")
	if len(lines) != maxHintLines+1 || lines[len(lines)-1] != "..." {
		t.Fatalf("expected truncated diff, got %d lines", len(lines))
	}
}
