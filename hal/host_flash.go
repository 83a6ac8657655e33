package hal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	hostFlashDefaultSizeBytes = 1024 * 1024
	hostFlashEraseBlockBytes  = 4096
)

var ErrFlashWriteRequiresErase = errors.New("flash write requires erase")

// hostFlash emulates a NOR chip in a file: erased bytes read 0xFF and a write
// may only clear bits.
type hostFlash struct {
	mu     sync.Mutex
	f      *os.File
	size   uint32
	erased [hostFlashEraseBlockBytes]byte
}

// FlashFile is a flash chip emulated in a host file.
type FlashFile interface {
	Flash
	io.Closer
}

// CreateFlash replaces path with an erased image of size bytes. size must be
// a whole number of 4 KiB erase blocks.
func CreateFlash(path string, size uint32) (FlashFile, error) {
	if size == 0 || size%hostFlashEraseBlockBytes != 0 {
		return nil, fmt.Errorf("flash size %d is not a multiple of %d: %w", size, hostFlashEraseBlockBytes, os.ErrInvalid)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("replace flash %q: %w", path, err)
	}
	return openHostFlashSize(path, size)
}

func openHostFlash(path string) (*hostFlash, error) {
	return openHostFlashSize(path, hostFlashDefaultSizeBytes)
}

// openHostFlashSize opens or creates the backing file. A new file is sized to
// size and starts erased.
func openHostFlashSize(path string, size uint32) (*hostFlash, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open flash %q: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat flash %q: %w", path, err)
	}

	hf := &hostFlash{f: f, size: size}
	for i := range hf.erased {
		hf.erased[i] = 0xFF
	}

	switch {
	case st.Size() > int64(^uint32(0)):
		_ = f.Close()
		return nil, fmt.Errorf("flash %q: %d bytes: %w", path, st.Size(), os.ErrInvalid)
	case st.Size()%hostFlashEraseBlockBytes != 0:
		_ = f.Close()
		return nil, fmt.Errorf("flash %q: size %d is not a multiple of %d: %w", path, st.Size(), hostFlashEraseBlockBytes, os.ErrInvalid)
	case st.Size() > 0:
		hf.size = uint32(st.Size())
	default:
		for off := uint32(0); off < hf.size; off += hostFlashEraseBlockBytes {
			if _, err := f.WriteAt(hf.erased[:], int64(off)); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("init flash %q: %w", path, err)
			}
		}
	}
	return hf, nil
}

func (f *hostFlash) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}

func (f *hostFlash) SizeBytes() uint32 { return f.size }
func (f *hostFlash) EraseBlockBytes() uint32 {
	return hostFlashEraseBlockBytes
}

func (f *hostFlash) ReadAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return 0, ErrNotImplemented
	}
	if off >= f.size {
		return 0, fmt.Errorf("flash read at %d: %w", off, os.ErrInvalid)
	}
	maxN := int(f.size - off)
	if len(p) > maxN {
		p = p[:maxN]
	}
	return f.f.ReadAt(p, int64(off))
}

func (f *hostFlash) WriteAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return 0, ErrNotImplemented
	}
	if off >= f.size {
		return 0, fmt.Errorf("flash write at %d: %w", off, os.ErrInvalid)
	}
	maxN := int(f.size - off)
	if len(p) > maxN {
		p = p[:maxN]
	}

	buf := make([]byte, len(p))
	if _, err := f.f.ReadAt(buf, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("flash read before write at %d: %w", off, err)
	}
	for i := range p {
		if buf[i]&p[i] != p[i] {
			return 0, ErrFlashWriteRequiresErase
		}
	}
	return f.f.WriteAt(p, int64(off))
}

func (f *hostFlash) Erase(off, size uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return ErrNotImplemented
	}
	if size == 0 {
		return nil
	}
	if off%hostFlashEraseBlockBytes != 0 || size%hostFlashEraseBlockBytes != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	if off >= f.size || off+size > f.size {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}

	for size > 0 {
		if _, err := f.f.WriteAt(f.erased[:], int64(off)); err != nil {
			return fmt.Errorf("flash erase block at %d: %w", off, err)
		}
		off += hostFlashEraseBlockBytes
		size -= hostFlashEraseBlockBytes
	}
	return nil
}
