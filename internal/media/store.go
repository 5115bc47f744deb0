package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/yargevad/filepathx"
)

var (
	ErrUnknownHandle = errors.New("unknown media handle")
	ErrInvalidHandle = errors.New("invalid media handle")
)

// Store keeps downloaded media as files in one directory. Every handle is
// reference counted: Put and Adopt hand out the first reference, Retain adds
// one, and the file is removed when the last reference is released.
type Store struct {
	dir  string
	mu   sync.Mutex
	refs map[string]int
}

func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("media directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &Store{dir: dir, refs: make(map[string]int)}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Put writes data to a new file and returns its handle with one reference.
func (s *Store) Put(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("media payload is empty")
	}
	handle := uuid.NewString() + extensionFor(data, mimeType)
	if err := os.WriteFile(filepath.Join(s.dir, handle), data, 0644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}

	s.mu.Lock()
	s.refs[handle] = 1
	s.mu.Unlock()
	return handle, nil
}

// Adopt registers a handle from a previous session whose file is still on disk.
func (s *Store) Adopt(handle string) error {
	if err := validateHandle(handle); err != nil {
		return err
	}
	info, err := os.Stat(filepath.Join(s.dir, handle))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrUnknownHandle
		}
		return err
	}
	if info.IsDir() {
		return ErrInvalidHandle
	}

	s.mu.Lock()
	s.refs[handle]++
	s.mu.Unlock()
	return nil
}

func (s *Store) Retain(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs[handle] == 0 {
		return ErrUnknownHandle
	}
	s.refs[handle]++
	return nil
}

// Release drops one reference and deletes the file when none are left.
func (s *Store) Release(handle string) error {
	s.mu.Lock()
	count := s.refs[handle]
	if count == 0 {
		s.mu.Unlock()
		return ErrUnknownHandle
	}
	if count > 1 {
		s.refs[handle] = count - 1
		s.mu.Unlock()
		return nil
	}
	delete(s.refs, handle)
	s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, handle)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

func (s *Store) RefCount(handle string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[handle]
}

func (s *Store) Path(handle string) (string, error) {
	if err := validateHandle(handle); err != nil {
		return "", err
	}
	if s.RefCount(handle) == 0 {
		return "", ErrUnknownHandle
	}
	return filepath.Join(s.dir, handle), nil
}

func (s *Store) Open(handle string) (io.ReadCloser, error) {
	path, err := s.Path(handle)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Sweep removes files in the media directory that hold no reference.
// It returns the number of files removed.
func (s *Store) Sweep() (int, error) {
	matches, err := filepathx.Glob(filepath.Join(s.dir, "**", "*"))
	if err != nil {
		return 0, fmt.Errorf("glob media directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, path := range matches {
		info, statErr := os.Stat(path)
		if statErr != nil || info.IsDir() {
			continue
		}
		rel, relErr := filepath.Rel(s.dir, path)
		if relErr != nil {
			continue
		}
		if s.refs[rel] > 0 {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove orphan %s: %w", rel, err)
		}
		removed++
	}
	return removed, nil
}

func validateHandle(handle string) error {
	if handle == "" || handle != filepath.Base(handle) || strings.HasPrefix(handle, ".") {
		return ErrInvalidHandle
	}
	return nil
}

func extensionFor(data []byte, mimeType string) string {
	if mimeType != "" {
		if m := mimetype.Lookup(strings.TrimSpace(strings.Split(mimeType, ";")[0])); m != nil && m.Extension() != "" {
			return m.Extension()
		}
	}
	return mimetype.Detect(data).Extension()
}
