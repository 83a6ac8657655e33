//go:build cgo

package flashfs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"quadterm/hal"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

const (
	memPageSize  = 256
	memBlockSize = 4096
	progSize     = 256
)

var lfsConfig = littlefs.Config{
	CacheSize:     512,
	LookaheadSize: 512,
	BlockCycles:   100,
}

type lfsBackend struct {
	lfs *littlefs.LFS
}

// New returns an unmounted store on dev.
func New(dev tinyfs.BlockDevice) *Store {
	return newStore(&lfsBackend{lfs: littlefs.New(dev).Configure(&lfsConfig)})
}

// NewMemory returns an unmounted store on a RAM block device of blocks
// 4 KiB erase blocks.
func NewMemory(blocks int) *Store {
	return New(tinyfs.NewMemoryDevice(memPageSize, memBlockSize, blocks))
}

// FromFlash returns an unmounted store on a HAL flash chip.
func FromFlash(f hal.Flash) (*Store, error) {
	dev, err := newFlashDevice(f)
	if err != nil {
		return nil, err
	}
	return New(dev), nil
}

func (b *lfsBackend) format() error  { return b.lfs.Format() }
func (b *lfsBackend) mount() error   { return b.lfs.Mount() }
func (b *lfsBackend) unmount() error { return b.lfs.Unmount() }

func (b *lfsBackend) readDir() ([]Entry, error) {
	dir, err := b.lfs.Open("/")
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	infos, err := dir.Readdir(0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		if fi.Name() == "." || fi.Name() == ".." {
			continue
		}
		entries = append(entries, Entry{Name: fi.Name(), Size: fi.Size(), Dir: fi.IsDir()})
	}
	return entries, nil
}

func (b *lfsBackend) create(name string) (io.WriteCloser, error) {
	return b.lfs.OpenFile("/"+name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

func (b *lfsBackend) readFile(name string) ([]byte, error) {
	if _, err := b.lfs.Stat("/" + name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	f, err := b.lfs.Open("/" + name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// flashDevice presents a HAL flash chip as a tinyfs block device.
type flashDevice struct {
	f     hal.Flash
	erase int64
}

func newFlashDevice(f hal.Flash) (*flashDevice, error) {
	if f == nil {
		return nil, errors.New("flashfs: nil flash")
	}
	eb := int64(f.EraseBlockBytes())
	if eb == 0 || eb%progSize != 0 {
		return nil, fmt.Errorf("flashfs: erase block %d is not a multiple of %d", eb, progSize)
	}
	if int64(f.SizeBytes())%eb != 0 || f.SizeBytes() == 0 {
		return nil, fmt.Errorf("flashfs: flash size %d is not a multiple of erase block %d", f.SizeBytes(), eb)
	}
	return &flashDevice{f: f, erase: eb}, nil
}

func (d *flashDevice) ReadAt(buf []byte, off int64) (int, error) {
	return d.f.ReadAt(buf, uint32(off))
}

func (d *flashDevice) WriteAt(buf []byte, off int64) (int, error) {
	return d.f.WriteAt(buf, uint32(off))
}

func (d *flashDevice) Size() int64           { return int64(d.f.SizeBytes()) }
func (d *flashDevice) WriteBlockSize() int64 { return progSize }
func (d *flashDevice) EraseBlockSize() int64 { return d.erase }

// EraseBlocks erases length blocks starting at block index start.
func (d *flashDevice) EraseBlocks(start, length int64) error {
	return d.f.Erase(uint32(start*d.erase), uint32(length*d.erase))
}
