// Package logbook keeps a plain-text audit trail of approval decisions made
// through the CLI. The verification engine never writes here: only a human
// approving or rejecting a received file does.
package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileName is the audit file inside the logs directory.
const FileName = "approvals.log"

// Action is the decision recorded for a file pair.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionError   Action = "ERROR"
)

// Logbook appends one line per decision to a text file.
type Logbook struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// New creates a logbook that writes to the provided path.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Logbook{path: path, now: time.Now}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Record writes a single entry. Errors are returned so the CLI can warn,
// but a failed audit write never undoes the decision itself.
func (l *Logbook) Record(action Action, path, note string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("%s %-7s %s", l.now().UTC().Format(time.RFC3339), string(action), strings.TrimSpace(path))
	if note = strings.TrimSpace(note); note != "" {
		line += " (" + note + ")"
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logbook: open %s: %w", l.path, err)
	}
	defer file.Close()
	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("logbook: write %s: %w", l.path, err)
	}
	return nil
}

// Tail returns up to maxLines of the most recent entries and the total
// number of entries in the file.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	total := len(lines)
	if total == 0 {
		return nil, 0
	}
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total
}
