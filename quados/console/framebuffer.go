package console

import (
	"errors"
	"fmt"
	"image/color"

	"quadterm/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	ErrNoFramebuffer     = errors.New("console: no framebuffer")
	ErrUnsupportedFormat = errors.New("console: unsupported pixel format")
	ErrFramebufferSmall  = errors.New("console: framebuffer too small")
	ErrBadFont           = errors.New("console: font has no printable glyphs")
)

// DefaultFont is the glyph set used by the framebuffer console.
var DefaultFont tinyfont.Fonter = &proggy.TinySZ8pt7b

// Metrics is the pixel size of one text cell and the baseline offset from
// the cell's top edge.
type Metrics struct {
	Width    int16
	Height   int16
	Baseline int16
}

// MeasureFont derives cell metrics from the printable ASCII glyph extents.
func MeasureFont(f tinyfont.Fonter) (Metrics, error) {
	if f == nil {
		return Metrics{}, ErrBadFont
	}
	var (
		top, bottom int
		advance     int
		first       = true
	)
	for r := rune(0x21); r < 0x7F; r++ {
		info := f.GetGlyph(r).Info()
		if info.Height == 0 {
			continue
		}
		y0 := int(info.YOffset)
		y1 := y0 + int(info.Height)
		if first || y0 < top {
			top = y0
		}
		if first || y1 > bottom {
			bottom = y1
		}
		first = false
		if a := int(info.XAdvance); a > advance {
			advance = a
		}
	}
	if first || advance == 0 {
		return Metrics{}, ErrBadFont
	}

	h := bottom - top
	if ya := int(f.GetYAdvance()); ya > h {
		h = ya
	}
	base := -top
	if base < 0 {
		base = 0
	}
	return Metrics{Width: int16(advance), Height: int16(h), Baseline: int16(base)}, nil
}

// FramebufferSize returns the pixel size of an 80x25 screen in font f.
func FramebufferSize(f tinyfont.Fonter) (width, height int, err error) {
	m, err := MeasureFont(f)
	if err != nil {
		return 0, 0, err
	}
	return Cols * int(m.Width), Rows * int(m.Height), nil
}

// Framebuffer plots text cells into an RGB565 HAL framebuffer.
type Framebuffer struct {
	fb   hal.Framebuffer
	font tinyfont.Fonter
	m    Metrics
}

var _ drivers.Displayer = (*Framebuffer)(nil)

// NewFramebuffer returns a console drawing glyphs from font into fb. The
// framebuffer must hold the whole 80x25 screen.
func NewFramebuffer(fb hal.Framebuffer, font tinyfont.Fonter) (*Framebuffer, error) {
	if fb == nil {
		return nil, ErrNoFramebuffer
	}
	if fb.Format() != hal.PixelFormatRGB565 {
		return nil, ErrUnsupportedFormat
	}
	m, err := MeasureFont(font)
	if err != nil {
		return nil, err
	}
	if w, h := Cols*int(m.Width), Rows*int(m.Height); fb.Width() < w || fb.Height() < h {
		return nil, fmt.Errorf("%w: %dx%d, need %dx%d", ErrFramebufferSmall, fb.Width(), fb.Height(), w, h)
	}
	return &Framebuffer{fb: fb, font: font, m: m}, nil
}

func (c *Framebuffer) Metrics() Metrics { return c.m }

func (c *Framebuffer) Plot(r rune, col, row int, st Style) {
	if !onScreen(col, row) {
		return
	}
	x := int16(col) * c.m.Width
	y := int16(row) * c.m.Height
	c.fillRect(x, y, c.m.Width, c.m.Height, st.BG.RGBA())
	if r != ' ' && st.FG != st.BG {
		tinyfont.DrawChar(c, c.font, x, y+c.m.Baseline, r, st.FG.RGBA())
	}
}

func (c *Framebuffer) Flush() { _ = c.fb.Present() }

func (c *Framebuffer) Size() (x, y int16) {
	return int16(c.fb.Width()), int16(c.fb.Height())
}

func (c *Framebuffer) SetPixel(x, y int16, col color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || iy < 0 || ix >= c.fb.Width() || iy >= c.fb.Height() {
		return
	}
	buf := c.fb.Buffer()
	off := iy*c.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	p := rgb565(col)
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}

// Display presents the framebuffer.
func (c *Framebuffer) Display() error { return c.fb.Present() }

func (c *Framebuffer) fillRect(x, y, w, h int16, col color.RGBA) {
	buf := c.fb.Buffer()
	stride := c.fb.StrideBytes()
	p := rgb565(col)
	lo, hi := byte(p), byte(p>>8)

	x0, y0 := int(x), int(y)
	x1 := min(x0+int(w), c.fb.Width())
	y1 := min(y0+int(h), c.fb.Height())
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				return
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

func rgb565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}
