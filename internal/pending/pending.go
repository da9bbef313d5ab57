// Package pending finds received files awaiting a human decision and
// applies that decision: approving promotes the received file to approved,
// rejecting discards it.
package pending

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kingrea/assent/internal/artifact"
	"github.com/kingrea/assent/internal/compare"
)

// DefaultConcurrency bounds ApproveAll.
const DefaultConcurrency = 4

var skippedDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
}

// Item is one received file and the approved file it would replace.
type Item struct {
	Received string
	Approved string
	// NewTest is set when the approved file does not exist yet.
	NewTest bool
}

// Name returns the received file name relative to root, or its base name
// when it is not under root.
func (it Item) Name(root string) string {
	if rel, err := filepath.Rel(root, it.Received); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return filepath.Base(it.Received)
}

// Scan walks root and returns every received file, sorted by path. Hidden
// directories, vendor and node_modules are skipped.
func Scan(root string) ([]Item, error) {
	var items []Item
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || skippedDirs[d.Name()]) {
				return fs.SkipDir
			}
			return nil
		}
		if !artifact.IsReceived(path) {
			return nil
		}
		item, err := ItemFor(path)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pending: scan %s: %w", root, err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Received < items[j].Received })
	return items, nil
}

// ItemFor pairs a received file with its approved counterpart.
func ItemFor(receivedPath string) (Item, error) {
	if !artifact.IsReceived(receivedPath) {
		return Item{}, fmt.Errorf("pending: %s is not a received file", receivedPath)
	}
	approved, _ := artifact.Counterpart(receivedPath)
	_, err := os.Stat(approved)
	switch {
	case err == nil:
		return Item{Received: receivedPath, Approved: approved}, nil
	case errors.Is(err, fs.ErrNotExist):
		return Item{Received: receivedPath, Approved: approved, NewTest: true}, nil
	default:
		return Item{}, fmt.Errorf("pending: stat %s: %w", approved, err)
	}
}

// Approve replaces the approved file with the received file.
func Approve(item Item) error {
	if err := os.Rename(item.Received, item.Approved); err != nil {
		return fmt.Errorf("pending: approve %s: %w", item.Received, err)
	}
	return nil
}

// Reject deletes the received file and leaves the approved file untouched.
func Reject(item Item) error {
	if err := os.Remove(item.Received); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("pending: reject %s: %w", item.Received, err)
	}
	return nil
}

// ApproveAll approves items concurrently, at most limit at a time (a
// non-positive limit uses DefaultConcurrency). onDone, when set, is called
// after each successful approval and must be safe for concurrent use. The
// first failure cancels approvals that have not started yet.
func ApproveAll(ctx context.Context, items []Item, limit int, onDone func(Item)) error {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := Approve(item); err != nil {
				return err
			}
			if onDone != nil {
				onDone(item)
			}
			return nil
		})
	}
	return g.Wait()
}

// Preview describes how the received file differs from the approved one.
func Preview(item Item) (string, error) {
	received, err := os.ReadFile(item.Received)
	if err != nil {
		return "", fmt.Errorf("pending: read %s: %w", item.Received, err)
	}
	approved, err := os.ReadFile(item.Approved)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("pending: read %s: %w", item.Approved, err)
	}
	if item.NewTest {
		return "new test, nothing approved yet\n\n" + string(received), nil
	}
	hint := compare.Hint(string(received), string(approved))
	if hint == "" {
		return "received matches approved", nil
	}
	return hint, nil
}
