package editor

import "quadterm/quados/console"

// Screen geometry. The window region is the left part of the screen; the
// rightmost TaskStripCols columns are left blank.
const (
	ScreenCols    = console.Cols
	ScreenRows    = console.Rows
	NumWindows    = 4
	TaskStripCols = 10
	RegionCols    = ScreenCols - TaskStripCols
	WindowCols    = RegionCols / 2
	WindowRows    = 12
	DocWidth      = WindowCols - 2
	VisibleRows   = WindowRows - 2
	DocRows       = 4 * VisibleRows
)

// Point is a cell position.
type Point struct {
	Col, Row int
}

// Rect is a block of cells with its top-left corner at (Col,Row).
type Rect struct {
	Col, Row   int
	Cols, Rows int
}

// WindowRect returns the outer rectangle of window i. Windows tile 2x2:
// 0 top-left, 1 top-right, 2 bottom-left, 3 bottom-right. Out-of-range
// indices are clamped.
func WindowRect(i int) Rect {
	i = clamp(i, 0, NumWindows-1)
	return Rect{
		Col:  (i % 2) * WindowCols,
		Row:  (i / 2) * WindowRows,
		Cols: WindowCols,
		Rows: WindowRows,
	}
}

// Body is r without its one-cell border.
func (r Rect) Body() Rect {
	return Rect{Col: r.Col + 1, Row: r.Row + 1, Cols: r.Cols - 2, Rows: r.Rows - 2}
}

func (r Rect) Contains(p Point) bool {
	return p.Col >= r.Col && p.Col < r.Col+r.Cols && p.Row >= r.Row && p.Row < r.Row+r.Rows
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
