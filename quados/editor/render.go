package editor

import "quadterm/quados/console"

var (
	borderActive   = console.Style{FG: console.Pink, BG: console.Black}
	borderInactive = console.Style{FG: console.White, BG: console.Black}
	headerStyle    = console.Style{FG: console.White, BG: console.Black}
	bodyStyle      = console.Style{FG: console.Cyan, BG: console.Black}
	selectedStyle  = console.Style{FG: console.Black, BG: console.White}
	cursorStyle    = console.Style{FG: console.Yellow, BG: console.Black}
	eraseStyle     = console.Style{FG: console.Black, BG: console.Black}
)

const (
	borderRune = '.'
	cursorRune = '_'
)

// Render paints every window and the cursor, then flushes the plotter.
func (e *Editor) Render() {
	if e.out == nil {
		return
	}
	if e.painted {
		e.out.Plot(' ', e.prevCursor.Col, e.prevCursor.Row, eraseStyle)
	}
	for i := range e.docs {
		e.renderWindow(i)
	}
	e.renderCursor()
	e.out.Flush()
}

func (e *Editor) renderWindow(i int) {
	r := WindowRect(i)
	st := borderInactive
	if i == e.active {
		st = borderActive
	}

	for col := r.Col; col < r.Col+r.Cols; col++ {
		e.out.Plot(borderRune, col, r.Row, st)
		e.out.Plot(borderRune, col, r.Row+r.Rows-1, st)
	}
	for row := r.Row + 1; row < r.Row+r.Rows-1; row++ {
		e.out.Plot(borderRune, r.Col, row, st)
		e.out.Plot(borderRune, r.Col+r.Cols-1, row, st)
	}

	hx := r.Col + r.Cols/2 - 1
	e.out.Plot('F', hx, r.Row, headerStyle)
	e.out.Plot(rune('1'+i), hx+1, r.Row, headerStyle)

	body := r.Body()
	doc := e.docs[i]
	for row := 0; row < body.Rows; row++ {
		line := doc.grid.Row(doc.scroll + row)
		for col := 0; col < body.Cols && col < len(line); col++ {
			e.out.Plot(line[col], body.Col+col, body.Row+row, bodyStyle)
		}
	}
	e.renderFiles(i, body)
}

// renderFiles draws the directory strip over the first body row whatever
// the window's scroll. A stored selector past the end of the listing
// highlights the last entry.
func (e *Editor) renderFiles(i int, body Rect) {
	line, lo, hi, ok := e.strip(i, body.Cols)
	if !ok {
		return
	}
	for col, ch := range line {
		st := bodyStyle
		if col >= lo && col < hi {
			st = selectedStyle
		}
		e.out.Plot(ch, body.Col+col, body.Row, st)
	}
}

// strip lays out window i's directory strip in cols cells: entries separated
// by one blank, shifted so the highlighted entry is in view. [lo, hi) is the
// highlighted range. ok is false for an empty listing.
func (e *Editor) strip(i, cols int) (line []rune, lo, hi int, ok bool) {
	n := e.listLen()
	if n == 0 {
		return nil, 0, 0, false
	}
	sel := min(e.selected[i], n-1)

	var all []rune
	for j := 0; j < n; j++ {
		if j > 0 {
			all = append(all, ' ')
		}
		if j == sel {
			lo = len(all)
		}
		all = append(all, []rune(e.dir.Name(j))...)
		if j == sel {
			hi = len(all)
		}
	}

	shift := 0
	if hi > cols {
		shift = hi - cols
		if hi-lo > cols {
			shift = lo
		}
	}

	line = make([]rune, cols)
	for col := range line {
		line[col] = ' '
		if p := col + shift; p < len(all) {
			line[col] = all[p]
		}
	}
	return line, lo - shift, hi - shift, true
}

// renderCursor paints the cursor in the active window. On the strip row it
// shows the strip glyph underneath instead of the document's.
func (e *Editor) renderCursor() {
	doc := e.docs[e.active]
	body := WindowRect(e.active).Body()
	c := doc.Cursor()
	pos := Point{Col: body.Col + c.Col, Row: body.Row + c.Row - doc.scroll}

	r := doc.grid.At(c.Col, c.Row)
	if pos.Row == body.Row {
		if line, _, _, ok := e.strip(e.active, body.Cols); ok {
			r = line[c.Col]
		}
	}
	if r == ' ' {
		r = cursorRune
	}
	e.out.Plot(r, pos.Col, pos.Row, cursorStyle)
	e.prevCursor = pos
	e.painted = true
}
