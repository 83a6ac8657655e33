package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quadterm/hal"
	"quadterm/quados/console"
	"quadterm/quados/fs/flashfs"
	"quadterm/quados/kernel"
)

type lineLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineLog) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *lineLog) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *lineLog) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

type countingBell struct{ n atomic.Int32 }

func (b *countingBell) Ring() { b.n.Add(1) }

type fakeKeyboard struct{ ch chan hal.KeyEvent }

func (k fakeKeyboard) Events() <-chan hal.KeyEvent { return k.ch }

type fakeClock struct {
	ch  chan uint64
	seq uint64
}

func (c *fakeClock) Ticks() <-chan uint64 { return c.ch }

// interrupt advances the clock by one timer period.
func (c *fakeClock) interrupt() {
	c.seq += DefaultTickDivider
	c.ch <- c.seq
}

type fakeHAL struct {
	log   *lineLog
	kbd   fakeKeyboard
	clock *fakeClock
	bell  *countingBell
	flash hal.Flash
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		log:   &lineLog{},
		kbd:   fakeKeyboard{ch: make(chan hal.KeyEvent, 8)},
		clock: &fakeClock{ch: make(chan uint64, 8)},
		bell:  &countingBell{},
	}
}

func (h *fakeHAL) Logger() hal.Logger   { return h.log }
func (h *fakeHAL) Display() hal.Display { return nil }
func (h *fakeHAL) Input() hal.Input     { return nil }
func (h *fakeHAL) Flash() hal.Flash     { return h.flash }
func (h *fakeHAL) Time() hal.Time       { return h.clock }
func (h *fakeHAL) Bell() hal.Bell       { return h.bell }

type frame [console.Rows]string

// frameRecorder publishes a copy of the screen on every Flush.
type frameRecorder struct {
	mu     sync.Mutex
	rec    *console.Recorder
	frames chan frame
}

func newFrameRecorder() *frameRecorder {
	return &frameRecorder{rec: console.NewRecorder(), frames: make(chan frame, 64)}
}

func (r *frameRecorder) Plot(ch rune, col, row int, st console.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec.Plot(ch, col, row, st)
}

func (r *frameRecorder) Flush() {
	r.mu.Lock()
	var f frame
	for row := range f {
		f[row] = r.rec.Line(row)
	}
	r.rec.Flush()
	r.mu.Unlock()
	select {
	case r.frames <- f:
	default:
	}
}

// waitFrame raises timer interrupts until a frame satisfies ok.
func waitFrame(t *testing.T, h *fakeHAL, out *frameRecorder, ok func(frame) bool) frame {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		h.clock.interrupt()
		select {
		case f := <-out.frames:
			if ok(f) {
				return f
			}
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no matching frame before deadline")
		}
	}
}

func startTest(t *testing.T, cfg Config) (*System, *fakeHAL, *frameRecorder) {
	t.Helper()
	h := newFakeHAL()
	out := newFrameRecorder()
	s, err := start(context.Background(), h, cfg, out, h.kbd, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, h, out
}

func TestStartSeedsFixtures(t *testing.T) {
	s, h, out := startTest(t, Config{})

	if got, want := s.Store().Len(), len(Fixtures); got != want {
		t.Fatalf("files = %d, want %d", got, want)
	}
	for _, fx := range Fixtures {
		data, err := s.Store().ReadFile(fx.Name)
		if err != nil {
			t.Fatalf("ReadFile(%q): %v", fx.Name, err)
		}
		if string(data) != fx.Text {
			t.Fatalf("ReadFile(%q) = %q, want %q", fx.Name, data, fx.Text)
		}
	}

	f := waitFrame(t, h, out, func(f frame) bool { return strings.Contains(f[1], "average hello nums pi") })
	if !strings.Contains(f[0], "F1") || !strings.Contains(f[0], "F2") {
		t.Fatalf("row 0 = %q, want window headers", f[0])
	}
	if !h.log.contains("app: started") {
		t.Fatalf("missing startup log line")
	}
}

func TestOpenLoadsWindows(t *testing.T) {
	_, h, out := startTest(t, Config{Open: []string{"nums", "average"}})

	waitFrame(t, h, out, func(f frame) bool {
		return strings.HasPrefix(f[2], ".print(257)") &&
			strings.Contains(f[2], "count := 0")
	})
}

func TestOpenMissingFileFails(t *testing.T) {
	h := newFakeHAL()
	_, err := start(context.Background(), h, Config{Open: []string{"nope"}}, newFrameRecorder(), h.kbd, nil)
	if !errors.Is(err, flashfs.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, flashfs.ErrNotFound)
	}
}

func TestTypingShowsInNextFrame(t *testing.T) {
	_, h, out := startTest(t, Config{})

	h.kbd.ch <- hal.KeyEvent{Code: hal.KeyEnter, Press: true}
	waitFrame(t, h, out, func(f frame) bool { return strings.HasPrefix(f[2], "._") })

	h.kbd.ch <- hal.KeyEvent{Press: true, Rune: 'h'}
	waitFrame(t, h, out, func(f frame) bool { return strings.HasPrefix(f[2], ".h_") })
}

func TestBellRingsOnIgnoredKey(t *testing.T) {
	_, h, _ := startTest(t, Config{Bell: true})

	h.kbd.ch <- hal.KeyEvent{Code: hal.KeyEscape, Press: true}
	deadline := time.Now().Add(5 * time.Second)
	for h.bell.n.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("bell never rang")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStepStopsAfterClose(t *testing.T) {
	s, _, _ := startTest(t, Config{})
	if err := s.Step(); err != nil {
		t.Fatalf("Step = %v, want nil", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Step(); !errors.Is(err, hal.ErrStop) {
		t.Fatalf("Step = %v, want %v", err, hal.ErrStop)
	}
}

func TestStepReportsPanic(t *testing.T) {
	for _, hold := range []bool{false, true} {
		s := &System{cfg: Config{HoldPanic: hold}}
		s.m = kernel.NewMachine(nil, nil, 1, kernel.Handlers{
			CPULoop: func(context.Context) error { panic("boom") },
		})
		s.m.Start(context.Background())
		<-s.m.Done()

		err := s.Step()
		if hold && err != nil {
			t.Fatalf("hold: Step = %v, want nil", err)
		}
		if !hold && !errors.Is(err, kernel.ErrPanic) {
			t.Fatalf("Step = %v, want %v", err, kernel.ErrPanic)
		}
	}
}

func TestUnknownConsole(t *testing.T) {
	_, _, _, err := openConsole(newFakeHAL(), "vt52")
	if !errors.Is(err, ErrUnknownConsole) {
		t.Fatalf("err = %v, want %v", err, ErrUnknownConsole)
	}
}

func TestFramebufferConsoleNeedsDisplay(t *testing.T) {
	_, _, _, err := openConsole(newFakeHAL(), ConsoleFramebuffer)
	if !errors.Is(err, console.ErrNoFramebuffer) {
		t.Fatalf("err = %v, want %v", err, console.ErrNoFramebuffer)
	}
}

// memFlash is an erased in-memory chip with 4 KiB erase blocks.
type memFlash struct{ mem []byte }

func newMemFlash(size int) *memFlash {
	f := &memFlash{mem: make([]byte, size)}
	for i := range f.mem {
		f.mem[i] = 0xFF
	}
	return f
}

func (f *memFlash) SizeBytes() uint32       { return uint32(len(f.mem)) }
func (f *memFlash) EraseBlockBytes() uint32 { return 4096 }

func (f *memFlash) ReadAt(p []byte, off uint32) (int, error) {
	return copy(p, f.mem[off:]), nil
}

func (f *memFlash) WriteAt(p []byte, off uint32) (int, error) {
	return copy(f.mem[off:], p), nil
}

func (f *memFlash) Erase(off, size uint32) error {
	for i := off; i < off+size; i++ {
		f.mem[i] = 0xFF
	}
	return nil
}

func TestStartWithFlashChip(t *testing.T) {
	h := newFakeHAL()
	h.flash = newMemFlash(256 * 1024)
	s, err := start(context.Background(), h, Config{}, newFrameRecorder(), h.kbd, nil)
	if err != nil {
		t.Fatalf("start with flash: %v", err)
	}
	defer s.Close()
	if got, want := s.Store().Len(), len(Fixtures); got != want {
		t.Fatalf("files = %d, want %d", got, want)
	}
}
