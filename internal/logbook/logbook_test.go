package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", FileName)
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := book.Record(ActionApprove, filepath.Join("testdata", "entry-"+string(rune('0'+i))+".received.txt"), ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestRecordFormat(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	if err := book.Record(ActionReject, "T.received.txt", "discarded from review"); err != nil {
		t.Fatalf("record: %v", err)
	}
	lines, _ := book.Tail(1)
	want := "2024-05-01T12:00:00Z REJECT  T.received.txt (discarded from review)"
	if len(lines) != 1 || lines[0] != want {
		t.Fatalf("got %q, want %q", lines, want)
	}
}

func TestTailMissingFile(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	if lines, total := book.Tail(10); lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v %d", lines, total)
	}
}
