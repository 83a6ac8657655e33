// Package flashfs keeps the documents of the machine in a small filesystem
// on the flash chip and serves an ordered, cached listing of its root
// directory.
package flashfs

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// MaxNameBytes bounds the length of a stored name.
const MaxNameBytes = 10

var (
	ErrNotMounted  = errors.New("flashfs: not mounted")
	ErrNameTooLong = errors.New("flashfs: name too long")
	ErrBadName     = errors.New("flashfs: invalid name")
	ErrNotFound    = errors.New("flashfs: not found")
	ErrNeedsCgo    = errors.New("flashfs: flash-backed store requires cgo")
)

// Entry is one root directory entry.
type Entry struct {
	Name string
	Size int64
	Dir  bool
}

type backend interface {
	format() error
	mount() error
	unmount() error
	readDir() ([]Entry, error)
	create(name string) (io.WriteCloser, error)
	readFile(name string) ([]byte, error)
}

// Store is a mounted filesystem plus its cached root listing.
type Store struct {
	mu      sync.Mutex
	b       backend
	mounted bool
	entries []Entry
}

func newStore(b backend) *Store { return &Store{b: b} }

// MountOrFormat mounts the filesystem, formatting the device first when it
// holds none. It reports whether a format happened.
func (s *Store) MountOrFormat() (formatted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return false, nil
	}
	if err := s.b.mount(); err != nil {
		if ferr := s.b.format(); ferr != nil {
			return false, fmt.Errorf("flashfs: format after mount failure (%v): %w", err, ferr)
		}
		if err := s.b.mount(); err != nil {
			return true, fmt.Errorf("flashfs: mount: %w", err)
		}
		formatted = true
	}
	s.mounted = true
	return formatted, s.refreshLocked()
}

// Format erases the filesystem and leaves it mounted and empty.
func (s *Store) Format() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		_ = s.b.unmount()
		s.mounted = false
	}
	if err := s.b.format(); err != nil {
		return fmt.Errorf("flashfs: format: %w", err)
	}
	if err := s.b.mount(); err != nil {
		return fmt.Errorf("flashfs: mount: %w", err)
	}
	s.mounted = true
	return s.refreshLocked()
}

func (s *Store) Unmount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return ErrNotMounted
	}
	s.mounted = false
	s.entries = nil
	if err := s.b.unmount(); err != nil {
		return fmt.Errorf("flashfs: unmount: %w", err)
	}
	return nil
}

// List returns a copy of the cached listing, sorted by name.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Len is the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Name returns the i-th cached name, or "" when i is out of range.
func (s *Store) Name(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.entries) {
		return ""
	}
	return s.entries[i].Name
}

// Create truncates or creates name for writing. The listing is refreshed
// when the returned File is closed.
func (s *Store) Create(name string) (*File, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil, ErrNotMounted
	}
	w, err := s.b.create(name)
	if err != nil {
		return nil, fmt.Errorf("flashfs: create %q: %w", name, err)
	}
	return &File{s: s, name: name, w: w}, nil
}

// WriteFile stores data under name.
func (s *Store) WriteFile(name string, data []byte) error {
	f, err := s.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile returns the contents of name.
func (s *Store) ReadFile(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil, ErrNotMounted
	}
	data, err := s.b.readFile(name)
	if err != nil {
		return nil, fmt.Errorf("flashfs: read %q: %w", name, err)
	}
	return data, nil
}

func (s *Store) refreshLocked() error {
	entries, err := s.b.readDir()
	if err != nil {
		return fmt.Errorf("flashfs: list: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	s.entries = entries
	return nil
}

func checkName(name string) error {
	switch {
	case name == "" || name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrBadName, name)
	case strings.ContainsAny(name, "/\x00") || !utf8.ValidString(name):
		return fmt.Errorf("%w: %q", ErrBadName, name)
	case len(name) > MaxNameBytes:
		return fmt.Errorf("%w: %q is %d bytes, max %d", ErrNameTooLong, name, len(name), MaxNameBytes)
	}
	return nil
}

// File is an open file being written.
type File struct {
	s      *Store
	name   string
	w      io.WriteCloser
	closed bool
}

func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, fmt.Errorf("flashfs: write %q: %w", f.name, io.ErrClosedPipe)
	}
	f.s.mu.Lock()
	n, err := f.w.Write(p)
	f.s.mu.Unlock()
	if err != nil {
		return n, fmt.Errorf("flashfs: write %q: %w", f.name, err)
	}
	return n, nil
}

// Close flushes the file and refreshes the store's listing.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.w.Close(); err != nil {
		return fmt.Errorf("flashfs: close %q: %w", f.name, err)
	}
	if !f.s.mounted {
		return nil
	}
	return f.s.refreshLocked()
}
