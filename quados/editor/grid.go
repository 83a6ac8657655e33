package editor

// Grid is a fixed-size rectangle of runes. Every accessor clamps its
// coordinates into the grid.
type Grid struct {
	w, h  int
	cells []rune
}

// NewGrid returns a blank grid. Dimensions below one are raised to one.
func NewGrid(w, h int) *Grid {
	w = max(w, 1)
	h = max(h, 1)
	g := &Grid{w: w, h: h, cells: make([]rune, w*h)}
	g.Clear()
	return g
}

func (g *Grid) Width() int  { return g.w }
func (g *Grid) Height() int { return g.h }

func (g *Grid) index(col, row int) int {
	return clamp(row, 0, g.h-1)*g.w + clamp(col, 0, g.w-1)
}

func (g *Grid) At(col, row int) rune { return g.cells[g.index(col, row)] }

func (g *Grid) Set(col, row int, r rune) { g.cells[g.index(col, row)] = r }

// Row returns row as a slice aliasing the grid.
func (g *Grid) Row(row int) []rune {
	start := clamp(row, 0, g.h-1) * g.w
	return g.cells[start : start+g.w : start+g.w]
}

// Clear blanks every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = ' '
	}
}
