package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ReaderWriter is the file-system collaborator. Read reports found=false,
// with a nil error, when the path does not exist.
type ReaderWriter interface {
	Read(path string) (content string, found bool, err error)
	Write(path, content string) error
	Remove(path string) error
}

// OS reads and writes real files, creating parent directories on write.
type OS struct{}

// Read implements ReaderWriter.
func (OS) Read(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Write implements ReaderWriter.
func (OS) Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// Remove implements ReaderWriter. Removing a missing file is not an error.
func (OS) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Memory is an in-memory ReaderWriter keyed by path. The zero value is ready
// to use and safe for concurrent callers.
type Memory struct {
	mu    sync.RWMutex
	files map[string]string
	// Fail, when set, is consulted before every operation; a non-nil
	// return is reported as the operation's error.
	Fail func(op, path string) error
}

// NewMemory returns a Memory seeded with files.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: make(map[string]string, len(files))}
	for path, content := range files {
		m.files[filepath.Clean(path)] = content
	}
	return m
}

// Read implements ReaderWriter.
func (m *Memory) Read(path string) (string, bool, error) {
	if err := m.fail("read", path); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[filepath.Clean(path)]
	return content, ok, nil
}

// Write implements ReaderWriter.
func (m *Memory) Write(path, content string) error {
	if err := m.fail("write", path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string]string{}
	}
	m.files[filepath.Clean(path)] = content
	return nil
}

// Remove implements ReaderWriter.
func (m *Memory) Remove(path string) error {
	if err := m.fail("remove", path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filepath.Clean(path))
	return nil
}

// Set stores content at path, bypassing Fail.
func (m *Memory) Set(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string]string{}
	}
	m.files[filepath.Clean(path)] = content
}

// Get returns the content at path, bypassing Fail.
func (m *Memory) Get(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[filepath.Clean(path)]
	return content, ok
}

// Paths returns every stored path in sorted order.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (m *Memory) fail(op, path string) error {
	if m.Fail == nil {
		return nil
	}
	if err := m.Fail(op, path); err != nil {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
	return nil
}
