package pending

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestScanFindsReceivedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "testdata", "TestA.approved.txt"), "old")
	writeFile(t, filepath.Join(root, "a", "testdata", "TestA.received.txt"), "new")
	writeFile(t, filepath.Join(root, "b", "testdata", "TestB.case.received.json"), "{}")
	writeFile(t, filepath.Join(root, ".git", "TestC.received.txt"), "hidden")
	writeFile(t, filepath.Join(root, "vendor", "x", "TestD.received.txt"), "vendored")
	writeFile(t, filepath.Join(root, "a", "testdata", "TestE.approved.txt"), "approved only")

	items, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, filepath.Join("a", "testdata", "TestA.received.txt"), items[0].Name(root))
	assert.Equal(t, filepath.Join(root, "a", "testdata", "TestA.approved.txt"), items[0].Approved)
	assert.False(t, items[0].NewTest)

	assert.Equal(t, filepath.Join(root, "b", "testdata", "TestB.case.approved.json"), items[1].Approved)
	assert.True(t, items[1].NewTest)
}

func TestScanMissingRoot(t *testing.T) {
	items, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemForRejectsApprovedFiles(t *testing.T) {
	_, err := ItemFor("testdata/TestA.approved.txt")
	assert.Error(t, err)
}

func TestApproveAndReject(t *testing.T) {
	root := t.TempDir()
	approved := filepath.Join(root, "TestA.approved.txt")
	received := filepath.Join(root, "TestA.received.txt")
	writeFile(t, approved, "old")
	writeFile(t, received, "new")

	item, err := ItemFor(received)
	require.NoError(t, err)
	require.NoError(t, Approve(item))
	assert.Equal(t, "new", readFile(t, approved))
	assert.NoFileExists(t, received)

	writeFile(t, received, "newer")
	require.NoError(t, Reject(item))
	assert.NoFileExists(t, received)
	assert.Equal(t, "new", readFile(t, approved))

	require.NoError(t, Reject(item), "rejecting twice is harmless")
	assert.Error(t, Approve(item), "approving a missing received file fails")
}

func TestApproveAll(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := t.TempDir()
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		writeFile(t, filepath.Join(root, "Test"+name+".received.txt"), name)
	}
	items, err := Scan(root)
	require.NoError(t, err)

	var mu sync.Mutex
	var done []string
	err = ApproveAll(context.Background(), items, 2, func(it Item) {
		mu.Lock()
		defer mu.Unlock()
		done = append(done, it.Approved)
	})
	require.NoError(t, err)
	assert.Len(t, done, len(items))
	for _, it := range items {
		assert.FileExists(t, it.Approved)
		assert.NoFileExists(t, it.Received)
	}
}

func TestApproveAllCancelled(t *testing.T) {
	root := t.TempDir()
	received := filepath.Join(root, "TestA.received.txt")
	writeFile(t, received, "x")
	item, err := ItemFor(received)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = ApproveAll(ctx, []Item{item}, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.FileExists(t, received)
}

func TestPreview(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "TestA.approved.txt"), "one\ntwo\n")
	writeFile(t, filepath.Join(root, "TestA.received.txt"), "one\nthree\n")
	writeFile(t, filepath.Join(root, "TestB.received.txt"), "brand new")

	items, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, items, 2)

	preview, err := Preview(items[0])
	require.NoError(t, err)
	assert.Contains(t, preview, "line 2")

	preview, err = Preview(items[1])
	require.NoError(t, err)
	assert.Contains(t, preview, "new test")
	assert.Contains(t, preview, "brand new")
}

func TestWatcherSignalsReceivedFiles(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "testdata"), 0o755))

	w, err := NewWatcher(root, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	writeFile(t, filepath.Join(root, "testdata", "TestA.received.txt"), "x")

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled for a new received file")
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	w.Stop()
	w.Stop()
}
