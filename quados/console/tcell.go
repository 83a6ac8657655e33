package console

import (
	"sync"

	"quadterm/hal"

	"github.com/gdamore/tcell/v2"
)

var tcellKeys = map[tcell.Key]hal.KeyCode{
	tcell.KeyUp:         hal.KeyUp,
	tcell.KeyDown:       hal.KeyDown,
	tcell.KeyLeft:       hal.KeyLeft,
	tcell.KeyRight:      hal.KeyRight,
	tcell.KeyEnter:      hal.KeyEnter,
	tcell.KeyEscape:     hal.KeyEscape,
	tcell.KeyBackspace:  hal.KeyBackspace,
	tcell.KeyBackspace2: hal.KeyBackspace,
	tcell.KeyTab:        hal.KeyTab,
	tcell.KeyDelete:     hal.KeyDelete,
	tcell.KeyHome:       hal.KeyHome,
	tcell.KeyEnd:        hal.KeyEnd,
	tcell.KeyF1:         hal.KeyF1,
	tcell.KeyF2:         hal.KeyF2,
	tcell.KeyF3:         hal.KeyF3,
	tcell.KeyF4:         hal.KeyF4,
}

func tcellKeyEvent(ev *tcell.EventKey) hal.KeyEvent {
	if ev.Key() == tcell.KeyRune {
		return hal.KeyEvent{Press: true, Rune: ev.Rune()}
	}
	if code, ok := tcellKeys[ev.Key()]; ok {
		return hal.KeyEvent{Code: code, Press: true}
	}
	return hal.KeyEvent{Press: true, Rune: rune(ev.Key())}
}

func tcellStyle(st Style) tcell.Style {
	fg := st.FG.RGBA()
	bg := st.BG.RGBA()
	return tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B))).
		Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
}

// Tcell is a Plotter, keyboard and bell on a tcell screen. Ctrl+Q closes Done.
type Tcell struct {
	s       tcell.Screen
	events  chan hal.KeyEvent
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewTcell opens the controlling terminal.
func NewTcell() (*Tcell, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTcellScreen(s)
}

// NewTcellScreen initialises s and starts reading its events.
func NewTcellScreen(s tcell.Screen) (*Tcell, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.HideCursor()
	s.Clear()
	t := &Tcell{
		s:       s,
		events:  make(chan hal.KeyEvent, 64),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go t.poll()
	return t, nil
}

// poll ends when Fini makes PollEvent return nil.
func (t *Tcell) poll() {
	defer close(t.stopped)
	for {
		ev := t.s.PollEvent()
		if ev == nil {
			t.quit()
			return
		}
		kev, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		if kev.Key() == tcell.KeyCtrlQ {
			t.quit()
			continue
		}
		select {
		case t.events <- tcellKeyEvent(kev):
		default:
		}
	}
}

func (t *Tcell) quit() { t.once.Do(func() { close(t.done) }) }

func (t *Tcell) Plot(r rune, col, row int, st Style) {
	if !onScreen(col, row) {
		return
	}
	t.s.SetContent(col, row, r, nil, tcellStyle(st))
}

func (t *Tcell) Flush() { t.s.Show() }

func (t *Tcell) Events() <-chan hal.KeyEvent { return t.events }

// Ring sounds the terminal bell.
func (t *Tcell) Ring() { _ = t.s.Beep() }

// Done is closed when the user asks to quit or the screen goes away.
func (t *Tcell) Done() <-chan struct{} { return t.done }

// Close restores the terminal.
func (t *Tcell) Close() {
	t.s.Fini()
	<-t.stopped
}
