//go:build !cgo

package flashfs

import (
	"bytes"
	"errors"
	"io"

	"quadterm/hal"
)

// Without cgo there is no LittleFS; NewMemory keeps files in a map.

type mapBackend struct {
	files   map[string][]byte
	mounted bool
}

func NewMemory(blocks int) *Store {
	return newStore(&mapBackend{})
}

func FromFlash(f hal.Flash) (*Store, error) {
	return nil, ErrNeedsCgo
}

func (b *mapBackend) format() error {
	b.files = make(map[string][]byte)
	return nil
}

func (b *mapBackend) mount() error {
	if b.files == nil {
		return errors.New("no filesystem")
	}
	b.mounted = true
	return nil
}

func (b *mapBackend) unmount() error {
	b.mounted = false
	return nil
}

func (b *mapBackend) readDir() ([]Entry, error) {
	entries := make([]Entry, 0, len(b.files))
	for name, data := range b.files {
		entries = append(entries, Entry{Name: name, Size: int64(len(data))})
	}
	return entries, nil
}

func (b *mapBackend) create(name string) (io.WriteCloser, error) {
	b.files[name] = nil
	return &mapFile{b: b, name: name}, nil
}

func (b *mapBackend) readFile(name string) ([]byte, error) {
	data, ok := b.files[name]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(data), nil
}

type mapFile struct {
	b    *mapBackend
	name string
	buf  bytes.Buffer
}

func (f *mapFile) Write(p []byte) (int, error) { return f.buf.Write(p) }

func (f *mapFile) Close() error {
	f.b.files[f.name] = f.buf.Bytes()
	return nil
}
