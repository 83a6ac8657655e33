package editor

import "testing"

func TestGeometry(t *testing.T) {
	if WindowCols != 35 || WindowRows != 12 || DocWidth != 33 || VisibleRows != 10 || DocRows != 40 {
		t.Fatalf("geometry = %dx%d window, %d wide, %d visible, %d rows",
			WindowCols, WindowRows, DocWidth, VisibleRows, DocRows)
	}
}

func TestWindowRectTiles(t *testing.T) {
	tests := []struct {
		i    int
		want Rect
	}{
		{0, Rect{Col: 0, Row: 0, Cols: 35, Rows: 12}},
		{1, Rect{Col: 35, Row: 0, Cols: 35, Rows: 12}},
		{2, Rect{Col: 0, Row: 12, Cols: 35, Rows: 12}},
		{3, Rect{Col: 35, Row: 12, Cols: 35, Rows: 12}},
		{-1, Rect{Col: 0, Row: 0, Cols: 35, Rows: 12}},
		{9, Rect{Col: 35, Row: 12, Cols: 35, Rows: 12}},
	}
	for _, tt := range tests {
		if got := WindowRect(tt.i); got != tt.want {
			t.Fatalf("WindowRect(%d) = %+v, want %+v", tt.i, got, tt.want)
		}
	}
}

func TestWindowsStayInRegion(t *testing.T) {
	for i := 0; i < NumWindows; i++ {
		r := WindowRect(i)
		if r.Col+r.Cols > RegionCols || r.Row+r.Rows > ScreenRows {
			t.Fatalf("window %d = %+v leaves the %dx%d region", i, r, RegionCols, ScreenRows)
		}
		b := r.Body()
		if b.Cols != DocWidth || b.Rows != VisibleRows {
			t.Fatalf("window %d body = %dx%d, want %dx%d", i, b.Cols, b.Rows, DocWidth, VisibleRows)
		}
		for j := i + 1; j < NumWindows; j++ {
			o := WindowRect(j)
			if r.Contains(Point{o.Col, o.Row}) {
				t.Fatalf("windows %d and %d overlap", i, j)
			}
		}
	}
}
