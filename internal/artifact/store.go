package artifact

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Store resolves approved/received paths and performs their IO.
type Store struct {
	dir       string
	extension string
	namer     Namer
	rw        ReaderWriter
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithDir overrides the approvals directory.
func WithDir(dir string) StoreOption {
	return func(s *Store) {
		if trimmed := strings.TrimSpace(dir); trimmed != "" {
			s.dir = filepath.Clean(trimmed)
		}
	}
}

// WithExtension overrides the content-type extension ("txt", "json", ...).
// A leading dot is accepted and dropped.
func WithExtension(ext string) StoreOption {
	return func(s *Store) {
		if trimmed := strings.TrimPrefix(strings.TrimSpace(ext), "."); trimmed != "" {
			s.extension = trimmed
		}
	}
}

// WithNamer overrides the naming strategy.
func WithNamer(namer Namer) StoreOption {
	return func(s *Store) {
		if namer != nil {
			s.namer = namer
		}
	}
}

// WithReaderWriter overrides the file-system collaborator.
func WithReaderWriter(rw ReaderWriter) StoreOption {
	return func(s *Store) {
		if rw != nil {
			s.rw = rw
		}
	}
}

// NewStore builds a store rooted at DefaultDir using the real file system.
func NewStore(opts ...StoreOption) *Store {
	store := &Store{
		dir:       DefaultDir,
		extension: DefaultExtension,
		namer:     DefaultNamer,
		rw:        OS{},
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Dir returns the approvals directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path resolves the file for one kind of artifact.
func (s *Store) Path(id TestIdentity, kind Kind) (string, error) {
	name := strings.TrimSpace(s.namer(id))
	if name == "" {
		return "", fmt.Errorf("artifact: identity %q resolves to an empty name", id.Key())
	}
	return filepath.Join(s.dir, name+"."+string(kind)+"."+s.extension), nil
}

// ApprovedPath resolves the approved file for id.
func (s *Store) ApprovedPath(id TestIdentity) (string, error) {
	return s.Path(id, KindApproved)
}

// ReceivedPath resolves the received file for id.
func (s *Store) ReceivedPath(id TestIdentity) (string, error) {
	return s.Path(id, KindReceived)
}

// ReadApproved returns the approved content. A missing file yields
// found=false and a nil error.
func (s *Store) ReadApproved(path string) (content string, found bool, err error) {
	content, found, err = s.rw.Read(path)
	if err != nil {
		return "", false, fmt.Errorf("artifact: read approved %s: %w", path, err)
	}
	return content, found, nil
}

// WriteReceived persists the latest mismatching output.
func (s *Store) WriteReceived(path, content string) error {
	if err := s.rw.Write(path, content); err != nil {
		return fmt.Errorf("artifact: write received %s: %w", path, err)
	}
	return nil
}

// RemoveReceived deletes a stale received file. A missing file is not an error.
func (s *Store) RemoveReceived(path string) error {
	if err := s.rw.Remove(path); err != nil {
		return fmt.Errorf("artifact: remove received %s: %w", path, err)
	}
	return nil
}

// Counterpart maps a received path to its approved path and vice versa.
// ok is false when path carries neither marker.
func Counterpart(path string) (string, bool) {
	dir, base := filepath.Split(path)
	for _, pair := range [][2]string{
		{"." + string(KindReceived) + ".", "." + string(KindApproved) + "."},
		{"." + string(KindApproved) + ".", "." + string(KindReceived) + "."},
	} {
		if idx := strings.LastIndex(base, pair[0]); idx >= 0 {
			return filepath.Join(dir, base[:idx]+pair[1]+base[idx+len(pair[0]):]), true
		}
	}
	return "", false
}

// IsReceived reports whether path names a received file.
func IsReceived(path string) bool {
	return strings.Contains(filepath.Base(path), "."+string(KindReceived)+".")
}
