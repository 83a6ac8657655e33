package console

import "strings"

// Cell is one recorded screen cell.
type Cell struct {
	Rune  rune
	Style Style
}

// Recorder is an in-memory Plotter.
type Recorder struct {
	cells   [Rows][Cols]Cell
	plots   int
	misses  int
	flushes int
}

func NewRecorder() *Recorder {
	r := &Recorder{}
	for row := range r.cells {
		for col := range r.cells[row] {
			r.cells[row][col] = Cell{Rune: ' '}
		}
	}
	return r
}

func (r *Recorder) Plot(ch rune, col, row int, st Style) {
	r.plots++
	if !onScreen(col, row) {
		r.misses++
		return
	}
	r.cells[row][col] = Cell{Rune: ch, Style: st}
}

func (r *Recorder) Flush() { r.flushes++ }

// At returns the cell at (col,row), or a zero Cell off screen.
func (r *Recorder) At(col, row int) Cell {
	if !onScreen(col, row) {
		return Cell{}
	}
	return r.cells[row][col]
}

// Line returns screen row as a string.
func (r *Recorder) Line(row int) string {
	if row < 0 || row >= Rows {
		return ""
	}
	var b strings.Builder
	for _, c := range r.cells[row] {
		b.WriteRune(c.Rune)
	}
	return b.String()
}

// Plots counts every Plot call; OffScreen counts those outside the screen.
func (r *Recorder) Plots() int     { return r.plots }
func (r *Recorder) OffScreen() int { return r.misses }
func (r *Recorder) Flushes() int   { return r.flushes }

// Reset zeroes the counters and keeps the cells.
func (r *Recorder) Reset() {
	r.plots = 0
	r.misses = 0
	r.flushes = 0
}
