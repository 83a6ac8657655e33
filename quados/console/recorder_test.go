package console

import (
	"strings"
	"testing"
)

func TestRecorderPlotAndCounters(t *testing.T) {
	r := NewRecorder()
	st := Style{FG: Yellow, BG: Black}
	r.Plot('a', 1, 0, st)
	r.Plot('b', Cols, 0, st)
	r.Flush()

	if got := r.At(1, 0); got.Rune != 'a' || got.Style != st {
		t.Fatalf("At(1,0) = %+v, want 'a' %+v", got, st)
	}
	if r.Plots() != 2 || r.OffScreen() != 1 || r.Flushes() != 1 {
		t.Fatalf("counters = %d/%d/%d, want 2/1/1", r.Plots(), r.OffScreen(), r.Flushes())
	}
	if got := r.Line(0); !strings.HasPrefix(got, " a ") || len([]rune(got)) != Cols {
		t.Fatalf("Line(0) = %q", got)
	}
}

func TestClearPaintsEveryCell(t *testing.T) {
	r := NewRecorder()
	r.Plot('z', 10, 10, Style{FG: White, BG: Red})
	r.Reset()
	Clear(r, Black)

	if r.Plots() != Cols*Rows {
		t.Fatalf("Plots() = %d, want %d", r.Plots(), Cols*Rows)
	}
	if got := r.At(10, 10); got.Rune != ' ' || got.Style.BG != Black {
		t.Fatalf("At(10,10) = %+v, want blank on black", got)
	}
	if r.Flushes() != 1 {
		t.Fatalf("Flushes() = %d, want 1", r.Flushes())
	}
}

func TestFillUsesStyle(t *testing.T) {
	r := NewRecorder()
	st := Style{FG: Black, BG: White}
	Fill(r, st)

	for _, pt := range [][2]int{{0, 0}, {Cols - 1, Rows - 1}} {
		if got := r.At(pt[0], pt[1]); got.Rune != ' ' || got.Style != st {
			t.Fatalf("At(%d,%d) = %+v, want blank in %+v", pt[0], pt[1], got, st)
		}
	}
}

func TestPaletteBrightHalf(t *testing.T) {
	if Blue.Bright() || !LightBlue.Bright() || !White.Bright() {
		t.Fatalf("Bright() misreports the upper palette half")
	}
	if got := Pink.RGBA(); got.R != 0xFF || got.G != 0x55 || got.B != 0xFF {
		t.Fatalf("Pink = %+v", got)
	}
}
