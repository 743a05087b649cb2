package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store maps opaque session identifiers to directories of numbered frames.
// Mutating operations on one session are serialized by a per-session mutex;
// the filesystem layout alone cannot survive concurrent renumbering.
type Store struct {
	root   string
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(root string, logger *slog.Logger) *Store {
	return &Store{
		root:   root,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Root returns the uploads root directory.
func (s *Store) Root() string {
	return s.root
}

// Ensure returns a usable session id. A non-empty id is returned verbatim
// after validation, its directory created if absent; an empty id yields a
// fresh identifier. No collision detection is performed for caller-supplied
// ids: sharing an id is how callers append across requests.
func (s *Store) Ensure(id string) (string, error) {
	if id == "" {
		id = NewID()
	} else if err := ValidateID(id); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	return id, nil
}

// Dir resolves the directory for an existing session.
// Returns ErrNotFound when the session directory does not exist.
func (s *Store) Dir(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, id)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", ErrNotFound
	}
	return dir, nil
}

// FramePath resolves a single frame file inside a session after validating
// both path segments. The file itself may or may not exist.
func (s *Store) FramePath(id, name string) (string, error) {
	dir, err := s.Dir(id)
	if err != nil {
		return "", err
	}
	if err := ValidateFrameName(name); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ListFrames returns the session's canonical frame names in ascending order.
func (s *Store) ListFrames(id string) ([]string, error) {
	return s.list(id, IsFrameName)
}

// ListImages returns every recognized image file in the session, sorted.
// Extraction sessions may hold frames with non-canonical extensions.
func (s *Store) ListImages(id string) ([]string, error) {
	return s.list(id, IsImageFile)
}

func (s *Store) list(id string, keep func(string) bool) ([]string, error) {
	dir, err := s.Dir(id)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read session dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !keep(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	// Lexicographic equals numeric order under fixed-width zero padding.
	sort.Strings(names)
	return names, nil
}

// Lock acquires the session's mutation lock and returns its release func.
func (s *Store) Lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
