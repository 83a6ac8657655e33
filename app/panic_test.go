package app

import (
	"strings"
	"testing"

	"quadterm/quados/console"
	"quadterm/quados/kernel"
)

func TestPaintPanic(t *testing.T) {
	rec := console.NewRecorder()
	long := strings.Repeat("x", console.Cols+5)
	paintPanic(rec, kernel.PanicInfo{Value: "boom", Stack: []byte("main.go:1\n\n" + long + "\n")})

	want := []string{"quadterm panic:", "panic: boom", "stack:", "main.go:1", strings.Repeat("x", console.Cols), "xxxxx"}
	for row, w := range want {
		if got := strings.TrimRight(rec.Line(row), " "); got != w {
			t.Fatalf("row %d = %q, want %q", row, got, w)
		}
	}
	if c := rec.At(console.Cols-1, console.Rows-1); c.Style != panicStyle {
		t.Fatalf("corner style = %+v, want %+v", c.Style, panicStyle)
	}
	if rec.Flushes() < 1 {
		t.Fatalf("Flushes = %d, want >= 1", rec.Flushes())
	}
}

func TestPaintPanicStopsAtLastRow(t *testing.T) {
	rec := console.NewRecorder()
	stack := strings.Repeat("frame\n", console.Rows*2)
	paintPanic(rec, kernel.PanicInfo{Value: 1, Stack: []byte(stack)})
	if rec.OffScreen() != 0 {
		t.Fatalf("OffScreen = %d, want 0", rec.OffScreen())
	}
	if got := strings.TrimRight(rec.Line(console.Rows-1), " "); got != "frame" {
		t.Fatalf("last row = %q, want %q", got, "frame")
	}
}

func TestTakeRunes(t *testing.T) {
	tests := []struct {
		s          string
		n          int
		head, tail string
	}{
		{"abc", 5, "abc", ""},
		{"abcdef", 3, "abc", "def"},
		{"héllo", 2, "hé", "llo"},
		{"", 3, "", ""},
		{"abc", 0, "", "abc"},
	}
	for _, tt := range tests {
		head, tail := takeRunes(tt.s, tt.n)
		if head != tt.head || tail != tt.tail {
			t.Fatalf("takeRunes(%q, %d) = %q, %q, want %q, %q", tt.s, tt.n, head, tail, tt.head, tt.tail)
		}
	}
}
