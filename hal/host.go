package hal

import (
	"fmt"
	"os"
	"sync"
)

// Options sizes the host machine.
type Options struct {
	// Width and Height are the framebuffer size in pixels.
	Width  int
	Height int

	// FlashPath is the backing file of the emulated flash chip. Empty means no flash.
	FlashPath string

	// LogPath, when set, appends log lines to a file instead of stdout.
	LogPath string

	// Bell enables the audible bell (window builds only).
	Bell bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 320
	}
	if o.Height <= 0 {
		o.Height = 320
	}
	return o
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
	flash  Flash
	bell   Bell

	closers []func() error
}

// New returns a host HAL implementation.
func New(opts Options) (HAL, error) {
	h, err := newHost(opts)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func newHost(opts Options) (*hostHAL, error) {
	opts = opts.withDefaults()
	logger := &hostLogger{w: os.Stdout}
	if opts.LogPath != "" {
		f, err := os.OpenFile(opts.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("hal: open log %q: %w", opts.LogPath, err)
		}
		logger.w = f
	}

	h := &hostHAL{
		logger: logger,
		fb:     newHostFramebuffer(opts.Width, opts.Height),
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
		bell:   nullBell{},
	}
	if opts.FlashPath != "" {
		f, err := openHostFlash(opts.FlashPath)
		if err != nil {
			if logger.w != os.Stdout {
				_ = logger.w.Close()
			}
			return nil, fmt.Errorf("hal: %w", err)
		}
		h.flash = f
		h.closers = append(h.closers, f.Close)
	}
	if opts.Bell {
		h.bell = newHostBell(logger)
	}
	if logger.w != os.Stdout {
		h.closers = append(h.closers, logger.w.Close)
	}
	return h, nil
}

// close releases the flash and log files. Log lines after close are dropped.
func (h *hostHAL) close() error {
	var first error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	h.closers = nil
	return first
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Bell() Bell       { return h.bell }

// Flash returns nil when the machine was built without a flash chip.
func (h *hostHAL) Flash() Flash { return h.flash }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type nullBell struct{}

func (nullBell) Ring() {}
