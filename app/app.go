// Package app assembles the machine: storage, console, editor and the
// interrupt wiring between the HAL and the CPU loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"quadterm/hal"
	"quadterm/quados/console"
	"quadterm/quados/editor"
	"quadterm/quados/fs/flashfs"
	"quadterm/quados/kernel"
	"quadterm/quados/keys"
)

// Console names accepted by Config.Console.
const (
	ConsoleFramebuffer = "framebuffer"
	ConsoleTermbox     = "termbox"
	ConsoleTcell       = "tcell"
)

// DefaultTickDivider gives a timer interrupt every 16 HAL milliseconds.
const DefaultTickDivider = 16

// memoryBlocks sizes the RAM store used when the HAL has no flash chip.
const memoryBlocks = 64

var ErrUnknownConsole = errors.New("app: unknown console")

type Config struct {
	// Console selects the display: framebuffer (default), termbox or tcell.
	Console string
	// TickDivider is the number of HAL ticks per timer interrupt.
	TickDivider uint64
	// Open names stored files to load into windows 1..4 at startup.
	Open []string
	// Bell rings on keys the editor ignores.
	Bell bool
	// HoldPanic keeps the runner alive after a CPU loop panic so the panic
	// screen stays up.
	HoldPanic bool
}

// terminal is a console that also owns the keyboard.
type terminal interface {
	console.Plotter
	hal.Keyboard
	Done() <-chan struct{}
	Close()
}

// System is a running machine. It implements hal.App.
type System struct {
	h     hal.HAL
	cfg   Config
	log   hal.Logger
	store *flashfs.Store
	out   console.Plotter
	term  terminal
	bell  hal.Bell

	mb     *kernel.Mailbox
	m      *kernel.Machine
	cancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// New returns the AppFunc host runners use to boot a System.
func New(cfg Config) hal.AppFunc {
	return func(ctx context.Context, h hal.HAL) (hal.App, error) {
		s, err := NewWithConfig(ctx, h, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// NewWithConfig opens the console, mounts and seeds the store, and starts
// the machine. Any storage failure aborts startup.
func NewWithConfig(ctx context.Context, h hal.HAL, cfg Config) (*System, error) {
	out, kbd, term, err := openConsole(h, cfg.Console)
	if err != nil {
		return nil, err
	}
	s, err := start(ctx, h, cfg, out, kbd, term)
	if err != nil && term != nil {
		term.Close()
	}
	return s, err
}

func openConsole(h hal.HAL, name string) (console.Plotter, hal.Keyboard, terminal, error) {
	switch name {
	case "", ConsoleFramebuffer:
		var fb hal.Framebuffer
		if d := h.Display(); d != nil {
			fb = d.Framebuffer()
		}
		c, err := console.NewFramebuffer(fb, console.DefaultFont)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("app: %w", err)
		}
		var kbd hal.Keyboard
		if in := h.Input(); in != nil {
			kbd = in.Keyboard()
		}
		return c, kbd, nil, nil
	case ConsoleTermbox:
		t, err := console.NewTermbox()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("app: termbox: %w", err)
		}
		return t, t, t, nil
	case ConsoleTcell:
		t, err := console.NewTcell()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("app: tcell: %w", err)
		}
		return t, t, t, nil
	}
	return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownConsole, name)
}

func start(ctx context.Context, h hal.HAL, cfg Config, out console.Plotter, kbd hal.Keyboard, term terminal) (_ *System, err error) {
	if cfg.TickDivider == 0 {
		cfg.TickDivider = DefaultTickDivider
	}
	s := &System{h: h, cfg: cfg, log: h.Logger(), out: out, term: term}
	if cfg.Bell {
		s.bell = h.Bell()
		if b, ok := term.(hal.Bell); ok {
			s.bell = b
		}
	}

	store, err := openStore(h)
	if err != nil {
		return nil, err
	}
	formatted, err := store.MountOrFormat()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	defer func() {
		if err != nil {
			_ = store.Unmount()
		}
	}()
	if formatted {
		s.logf("flashfs: formatted empty flash")
	}
	if err := Seed(store); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	s.store = store

	ed := editor.New(store, out)
	for i, name := range cfg.Open {
		if i >= editor.NumWindows {
			s.logf("app: -open: ignoring %q, only %d windows", name, editor.NumWindows)
			continue
		}
		data, err := store.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("app: open %q: %w", name, err)
		}
		ed.Load(i, string(data))
	}

	s.mb = kernel.NewMailbox()
	sess := session{ed: ed, bell: s.bell}
	s.m = kernel.NewMachine(kbd, h.Time(), cfg.TickDivider, kernel.Handlers{
		Startup:  func() { console.Clear(out, console.Black) },
		Keyboard: s.keyboardInterrupt,
		Timer:    s.mb.PostTick,
		CPULoop: func(ctx context.Context) error {
			return kernel.Loop(ctx, s.mb, sess)
		},
		Panic: s.panicScreen,
	})

	ctx, s.cancel = context.WithCancel(ctx)
	s.m.Start(ctx)
	s.logf("app: started: console=%s files=%d tick-divider=%d", consoleName(cfg.Console), store.Len(), cfg.TickDivider)
	return s, nil
}

// openStore mounts LittleFS on the HAL flash. Without a flash chip, or in a
// build without cgo, documents live in RAM.
func openStore(h hal.HAL) (*flashfs.Store, error) {
	f := h.Flash()
	if f == nil {
		return flashfs.NewMemory(memoryBlocks), nil
	}
	s, err := flashfs.FromFlash(f)
	if errors.Is(err, flashfs.ErrNeedsCgo) {
		if l := h.Logger(); l != nil {
			l.WriteLineString("flashfs: built without cgo, flash ignored, using a RAM store")
		}
		return flashfs.NewMemory(memoryBlocks), nil
	}
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return s, nil
}

func consoleName(name string) string {
	if name == "" {
		return ConsoleFramebuffer
	}
	return name
}

// keyboardInterrupt runs in interrupt context: decode and post, nothing else.
func (s *System) keyboardInterrupt(ev hal.KeyEvent) {
	if k, ok := keys.Decode(ev); ok {
		s.mb.PostKey(k)
	}
}

// Store returns the mounted file store.
func (s *System) Store() *flashfs.Store { return s.store }

// Done is closed once the machine has stopped.
func (s *System) Done() <-chan struct{} { return s.m.Done() }

// Step reports the machine state to the host runner: nil while running,
// hal.ErrStop after a clean stop or a quit request from the terminal, and
// the panic error after a CPU loop panic unless HoldPanic is set.
func (s *System) Step() error {
	if s.term != nil {
		select {
		case <-s.term.Done():
			return hal.ErrStop
		default:
		}
	}
	select {
	case <-s.m.Done():
	default:
		return nil
	}

	err := s.m.Err()
	switch {
	case errors.Is(err, kernel.ErrPanic):
		if s.cfg.HoldPanic {
			return nil
		}
		return err
	case err == nil || errors.Is(err, context.Canceled):
		return hal.ErrStop
	}
	return err
}

// Close stops the machine, restores the terminal and unmounts the store.
func (s *System) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.m.Done()
		if n := s.mb.Dropped(); n > 0 {
			s.logf("kernel: %d keys overwritten before the cpu loop took them", n)
		}
		if s.term != nil {
			s.term.Close()
		}
		if err := s.store.Unmount(); err != nil {
			s.closeErr = fmt.Errorf("app: %w", err)
		}
	})
	return s.closeErr
}

func (s *System) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.WriteLineString(fmt.Sprintf(format, args...))
}

// session feeds mailbox events to the editor and rings the bell on keys it
// does not understand.
type session struct {
	ed   *editor.Editor
	bell hal.Bell
}

func (s session) OnKey(k keys.Key) bool {
	if s.ed.OnKey(k) {
		return true
	}
	if s.bell != nil {
		s.bell.Ring()
	}
	return false
}

func (s session) OnTick() { s.ed.OnTick() }
