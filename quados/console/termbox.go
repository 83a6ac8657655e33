package console

import (
	"sync"

	"quadterm/hal"

	"github.com/nsf/termbox-go"
)

var termboxColors = [16]termbox.Attribute{
	Black:      termbox.ColorBlack,
	Blue:       termbox.ColorBlue,
	Green:      termbox.ColorGreen,
	Cyan:       termbox.ColorCyan,
	Red:        termbox.ColorRed,
	Magenta:    termbox.ColorMagenta,
	Brown:      termbox.ColorYellow,
	LightGray:  termbox.ColorWhite,
	DarkGray:   termbox.ColorBlack | termbox.AttrBold,
	LightBlue:  termbox.ColorBlue | termbox.AttrBold,
	LightGreen: termbox.ColorGreen | termbox.AttrBold,
	LightCyan:  termbox.ColorCyan | termbox.AttrBold,
	LightRed:   termbox.ColorRed | termbox.AttrBold,
	Pink:       termbox.ColorMagenta | termbox.AttrBold,
	Yellow:     termbox.ColorYellow | termbox.AttrBold,
	White:      termbox.ColorWhite | termbox.AttrBold,
}

// termboxAttrs maps a style onto the 8-colour terminal. Bold brightens the
// foreground; backgrounds lose their bright bit.
func termboxAttrs(st Style) (fg, bg termbox.Attribute) {
	return termboxColors[st.FG&0x0F], termboxColors[st.BG&0x07]
}

var termboxKeys = map[termbox.Key]hal.KeyCode{
	termbox.KeyArrowUp:    hal.KeyUp,
	termbox.KeyArrowDown:  hal.KeyDown,
	termbox.KeyArrowLeft:  hal.KeyLeft,
	termbox.KeyArrowRight: hal.KeyRight,
	termbox.KeyEnter:      hal.KeyEnter,
	termbox.KeyEsc:        hal.KeyEscape,
	termbox.KeyBackspace:  hal.KeyBackspace,
	termbox.KeyBackspace2: hal.KeyBackspace,
	termbox.KeyTab:        hal.KeyTab,
	termbox.KeyDelete:     hal.KeyDelete,
	termbox.KeyHome:       hal.KeyHome,
	termbox.KeyEnd:        hal.KeyEnd,
	termbox.KeyF1:         hal.KeyF1,
	termbox.KeyF2:         hal.KeyF2,
	termbox.KeyF3:         hal.KeyF3,
	termbox.KeyF4:         hal.KeyF4,
}

// termboxKeyEvent translates a termbox key event. Terminals report no
// releases, so every event is a press.
func termboxKeyEvent(ev termbox.Event) (hal.KeyEvent, bool) {
	if ev.Type != termbox.EventKey {
		return hal.KeyEvent{}, false
	}
	if ev.Ch != 0 {
		return hal.KeyEvent{Press: true, Rune: ev.Ch}, true
	}
	if ev.Key == termbox.KeySpace {
		return hal.KeyEvent{Press: true, Rune: ' '}, true
	}
	if code, ok := termboxKeys[ev.Key]; ok {
		return hal.KeyEvent{Code: code, Press: true}, true
	}
	return hal.KeyEvent{Press: true, Rune: rune(ev.Key)}, true
}

// Termbox is a Plotter and keyboard on the controlling terminal. Ctrl+Q
// closes Done.
type Termbox struct {
	events  chan hal.KeyEvent
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewTermbox takes over the terminal until Close.
func NewTermbox() (*Termbox, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()
	t := &Termbox{
		events:  make(chan hal.KeyEvent, 64),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go t.poll()
	return t, nil
}

// poll runs until Close interrupts it, so Close never waits on a reader
// that has already gone.
func (t *Termbox) poll() {
	defer close(t.stopped)
	for {
		ev := termbox.PollEvent()
		switch {
		case ev.Type == termbox.EventInterrupt || ev.Type == termbox.EventError:
			t.quit()
			return
		case ev.Type == termbox.EventKey && ev.Key == termbox.KeyCtrlQ:
			t.quit()
			continue
		}
		if kev, ok := termboxKeyEvent(ev); ok {
			select {
			case t.events <- kev:
			default:
			}
		}
	}
}

func (t *Termbox) quit() { t.once.Do(func() { close(t.done) }) }

func (t *Termbox) Plot(r rune, col, row int, st Style) {
	if !onScreen(col, row) {
		return
	}
	fg, bg := termboxAttrs(st)
	termbox.SetCell(col, row, r, fg, bg)
}

func (t *Termbox) Flush() { _ = termbox.Flush() }

func (t *Termbox) Events() <-chan hal.KeyEvent { return t.events }

// Done is closed when the user asks to quit or input fails.
func (t *Termbox) Done() <-chan struct{} { return t.done }

// Close restores the terminal.
func (t *Termbox) Close() {
	select {
	case <-t.stopped:
	default:
		termbox.Interrupt()
		<-t.stopped
	}
	termbox.Close()
}
