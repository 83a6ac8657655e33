package kernel

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"quadterm/hal"
)

// ErrPanic wraps the value of a panic recovered from the CPU loop.
var ErrPanic = errors.New("kernel: cpu loop panic")

// PanicInfo contains details about a recovered panic.
type PanicInfo struct {
	Value any
	Stack []byte
}

// Handlers is the machine's interrupt table.
//
// Keyboard and Timer run on their own goroutines and stand in for interrupt
// context: they must only post to a Mailbox. Panic runs on the CPU loop
// goroutine after a recovered panic and must not panic itself.
type Handlers struct {
	Startup  func()
	Keyboard func(ev hal.KeyEvent)
	Timer    func()
	CPULoop  func(ctx context.Context) error
	Panic    func(info PanicInfo)
}

// Machine dispatches HAL interrupt sources to a handler table.
type Machine struct {
	kbd     hal.Keyboard
	clock   hal.Time
	divider uint64
	h       Handlers

	started  atomic.Bool
	panicked atomic.Bool
	done     chan struct{}
	err      error
}

// NewMachine returns a machine that calls h.Timer once every divider HAL
// ticks. kbd and clock may be nil.
func NewMachine(kbd hal.Keyboard, clock hal.Time, divider uint64, h Handlers) *Machine {
	if divider == 0 {
		divider = 1
	}
	return &Machine{
		kbd:     kbd,
		clock:   clock,
		divider: divider,
		h:       h,
		done:    make(chan struct{}),
	}
}

// Start runs Startup on the calling goroutine, then starts the interrupt pumps
// and the CPU loop. The machine stops when ctx is done or the CPU loop returns.
// Start may be called once.
func (m *Machine) Start(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	if m.h.Startup != nil {
		m.h.Startup()
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if m.kbd != nil && m.h.Keyboard != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.keyboardPump(ctx)
		}()
	}
	if m.clock != nil && m.h.Timer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.timerPump(ctx)
		}()
	}

	go func() {
		err := m.runCPU(ctx)
		cancel()
		wg.Wait()
		m.err = err
		close(m.done)
	}()
}

// Done is closed once the CPU loop and both pumps have returned.
func (m *Machine) Done() <-chan struct{} { return m.done }

// Err reports why the machine stopped. It is valid once Done is closed.
func (m *Machine) Err() error {
	select {
	case <-m.done:
		return m.err
	default:
		return nil
	}
}

// InPanicMode reports whether the CPU loop died on a panic.
func (m *Machine) InPanicMode() bool { return m.panicked.Load() }

func (m *Machine) runCPU(ctx context.Context) (err error) {
	if m.h.CPULoop == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		m.panicked.Store(true)
		info := PanicInfo{Value: r, Stack: debug.Stack()}
		if m.h.Panic != nil {
			m.h.Panic(info)
		}
		err = fmt.Errorf("%w: %v", ErrPanic, r)
	}()
	return m.h.CPULoop(ctx)
}

func (m *Machine) keyboardPump(ctx context.Context) {
	events := m.kbd.Events()
	if events == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.h.Keyboard(ev)
		}
	}
}

// timerPump fires when the tick sequence crosses a divider boundary. Gaps in
// the sequence from ticks the source dropped do not shift the cadence.
func (m *Machine) timerPump(ctx context.Context) {
	ticks := m.clock.Ticks()
	if ticks == nil {
		return
	}
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case seq, ok := <-ticks:
			if !ok {
				return
			}
			if seq/m.divider != last/m.divider {
				m.h.Timer()
			}
			last = seq
		}
	}
}
