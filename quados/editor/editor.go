// Package editor is the four-window document editor driven from the CPU
// loop: it applies decoded keys to the focused document and repaints the
// screen on every timer tick.
package editor

import (
	"quadterm/quados/console"
	"quadterm/quados/keys"
)

// Directory is the file listing shown in each window's selector strip.
type Directory interface {
	Len() int
	Name(i int) string
}

// Editor owns the four documents, the focused window, each window's
// highlighted directory entry and the last painted cursor cell. It is not
// safe for concurrent use.
type Editor struct {
	docs     [NumWindows]*Document
	active   int
	selected [NumWindows]int

	prevCursor Point
	painted    bool

	dir Directory
	out console.Plotter
}

// New returns an editor with blank documents and window 0 focused. dir may
// be nil.
func New(dir Directory, out console.Plotter) *Editor {
	e := &Editor{dir: dir, out: out}
	for i := range e.docs {
		e.docs[i] = NewDocument(DocWidth, VisibleRows, DocRows)
	}
	return e
}

func (e *Editor) Active() int { return e.active }

// Document returns window i's document, clamping i.
func (e *Editor) Document(i int) *Document { return e.docs[clamp(i, 0, NumWindows-1)] }

// Selected returns window i's stored selector index, clamping i.
func (e *Editor) Selected(i int) int { return e.selected[clamp(i, 0, NumWindows-1)] }

// Load replaces window i's document with text.
func (e *Editor) Load(i int, text string) { e.Document(i).Load(text) }

func (e *Editor) listLen() int {
	if e.dir == nil {
		return 0
	}
	return e.dir.Len()
}

// OnKey applies one key to the focused window and reports whether the key
// was understood. Window selection never touches a document.
func (e *Editor) OnKey(k keys.Key) bool {
	doc := e.docs[e.active]
	switch k.Kind {
	case keys.KindWindowSelect:
		if k.Window < 1 || k.Window > NumWindows {
			return false
		}
		e.active = k.Window - 1
	case keys.KindBackspace:
		doc.Backspace()
	case keys.KindUp:
		doc.Move(0, -1)
	case keys.KindDown:
		doc.Move(0, 1)
	case keys.KindLeft:
		e.horizontal(doc, -1)
	case keys.KindRight:
		e.horizontal(doc, 1)
	case keys.KindPrintable:
		doc.Insert(k.Rune)
	case keys.KindNewline:
		doc.Enter()
	default:
		return false
	}
	return true
}

// horizontal moves the cursor, except on row 0 where it cycles the window's
// selector through the listing instead.
func (e *Editor) horizontal(doc *Document, d int) {
	if doc.Cursor().Row != 0 {
		doc.Move(d, 0)
		return
	}
	n := e.listLen()
	if n == 0 {
		return
	}
	s := &e.selected[e.active]
	*s = ((*s+d)%n + n) % n
}

// OnTick repaints the screen.
func (e *Editor) OnTick() { e.Render() }
