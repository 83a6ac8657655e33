// Package console provides the character-cell plotters the editor renders
// through: an RGB565 framebuffer, termbox, tcell and an in-memory recorder.
package console

import "image/color"

// Cols and Rows are the text-mode screen size every backend exposes.
const (
	Cols = 80
	Rows = 25
)

// Color is an index into the 16-colour text-mode palette.
type Color uint8

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	Pink
	Yellow
	White
)

var palette = [16]color.RGBA{
	Black:      {0x00, 0x00, 0x00, 0xFF},
	Blue:       {0x00, 0x00, 0xAA, 0xFF},
	Green:      {0x00, 0xAA, 0x00, 0xFF},
	Cyan:       {0x00, 0xAA, 0xAA, 0xFF},
	Red:        {0xAA, 0x00, 0x00, 0xFF},
	Magenta:    {0xAA, 0x00, 0xAA, 0xFF},
	Brown:      {0xAA, 0x55, 0x00, 0xFF},
	LightGray:  {0xAA, 0xAA, 0xAA, 0xFF},
	DarkGray:   {0x55, 0x55, 0x55, 0xFF},
	LightBlue:  {0x55, 0x55, 0xFF, 0xFF},
	LightGreen: {0x55, 0xFF, 0x55, 0xFF},
	LightCyan:  {0x55, 0xFF, 0xFF, 0xFF},
	LightRed:   {0xFF, 0x55, 0x55, 0xFF},
	Pink:       {0xFF, 0x55, 0xFF, 0xFF},
	Yellow:     {0xFF, 0xFF, 0x55, 0xFF},
	White:      {0xFF, 0xFF, 0xFF, 0xFF},
}

// RGBA returns the palette entry for c.
func (c Color) RGBA() color.RGBA { return palette[c&0x0F] }

// Bright reports whether c is in the upper half of the palette.
func (c Color) Bright() bool { return c&0x08 != 0 }

// Style is a foreground/background pair.
type Style struct {
	FG, BG Color
}

// Plotter draws single characters at text-mode cell positions. Plots outside
// the screen are ignored. Nothing is guaranteed visible before Flush.
type Plotter interface {
	Plot(r rune, col, row int, st Style)
	Flush()
}

// Clear plots a blank in every cell and flushes.
func Clear(p Plotter, bg Color) { Fill(p, Style{FG: bg, BG: bg}) }

// Fill plots a blank in st in every cell and flushes.
func Fill(p Plotter, st Style) {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			p.Plot(' ', col, row, st)
		}
	}
	p.Flush()
}

func onScreen(col, row int) bool {
	return col >= 0 && col < Cols && row >= 0 && row < Rows
}
