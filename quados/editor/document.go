package editor

import "strings"

// Document is one window's text grid, cursor and scroll offset.
//
// After every operation the cursor lies inside the grid and inside the
// visible band: Scroll() <= Cursor().Row < Scroll()+Visible().
type Document struct {
	grid    *Grid
	visible int
	cursor  Point
	scroll  int
}

// NewDocument returns a blank document width cells wide and rows tall that
// shows visible rows at a time.
func NewDocument(width, visible, rows int) *Document {
	g := NewGrid(width, rows)
	return &Document{grid: g, visible: clamp(visible, 1, g.Height())}
}

func (d *Document) Grid() *Grid    { return d.grid }
func (d *Document) Width() int     { return d.grid.Width() }
func (d *Document) Visible() int   { return d.visible }
func (d *Document) Cursor() Point  { return d.cursor }
func (d *Document) Scroll() int    { return d.scroll }
func (d *Document) maxRow() int    { return d.grid.Height() - 1 }
func (d *Document) maxCol() int    { return d.grid.Width() - 1 }
func (d *Document) maxScroll() int { return d.grid.Height() - d.visible }

// Insert overwrites the cell under the cursor and advances one column. At
// the last column the cursor stays put, so further typing overwrites it.
func (d *Document) Insert(r rune) {
	d.grid.Set(d.cursor.Col, d.cursor.Row, r)
	d.cursor.Col = min(d.cursor.Col+1, d.maxCol())
}

// Enter moves to the start of the next row, scrolling by one row when the
// cursor would leave the visible band.
func (d *Document) Enter() {
	d.cursor.Col = 0
	d.cursor.Row = min(d.cursor.Row+1, d.maxRow())
	d.follow()
}

// Backspace steps back one cell, wrapping to the end of the previous row
// from column 0, and blanks the cell it lands on. At (0,0) it only blanks.
func (d *Document) Backspace() {
	switch {
	case d.cursor.Col > 0:
		d.cursor.Col--
	case d.cursor.Row > 0:
		d.cursor.Row--
		d.cursor.Col = d.maxCol()
	}
	d.grid.Set(d.cursor.Col, d.cursor.Row, ' ')
	d.follow()
}

// Move shifts the cursor along one axis, clamped to the grid. A horizontal
// move never changes the row. When dx is non-zero dy is ignored.
func (d *Document) Move(dx, dy int) {
	if dx != 0 {
		d.cursor.Col = clamp(d.cursor.Col+dx, 0, d.maxCol())
		return
	}
	d.cursor.Row = clamp(d.cursor.Row+dy, 0, d.maxRow())
	d.follow()
}

// follow restores the visible band invariant with the smallest scroll change.
func (d *Document) follow() {
	switch {
	case d.cursor.Row < d.scroll:
		d.scroll = d.cursor.Row
	case d.cursor.Row >= d.scroll+d.visible:
		d.scroll = d.cursor.Row - d.visible + 1
	}
	d.scroll = clamp(d.scroll, 0, d.maxScroll())
}

// Load replaces the grid with text. Lines beyond the grid height and cells
// beyond its width are dropped; tabs become a blank. The cursor returns home.
func (d *Document) Load(text string) {
	d.grid.Clear()
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for row, line := range strings.Split(text, "\n") {
		if row > d.maxRow() {
			break
		}
		col := 0
		for _, r := range line {
			if col > d.maxCol() {
				break
			}
			if r == '\t' {
				r = ' '
			}
			d.grid.Set(col, row, r)
			col++
		}
	}
	d.cursor = Point{}
	d.scroll = 0
}

// Text returns the grid rows joined by newlines, without trailing blanks or
// trailing empty rows.
func (d *Document) Text() string {
	rows := make([]string, d.grid.Height())
	last := -1
	for i := range rows {
		rows[i] = strings.TrimRight(string(d.grid.Row(i)), " ")
		if rows[i] != "" {
			last = i
		}
	}
	return strings.Join(rows[:last+1], "\n")
}
