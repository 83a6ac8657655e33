package editor

import (
	"testing"

	"quadterm/quados/console"
	"quadterm/quados/keys"
)

type listing []string

func (l listing) Len() int { return len(l) }

func (l listing) Name(i int) string {
	if i < 0 || i >= len(l) {
		return ""
	}
	return l[i]
}

func snapshot(e *Editor) [NumWindows]string {
	var out [NumWindows]string
	for i := range out {
		d := e.Document(i)
		c := d.Cursor()
		out[i] = d.Text() + "|" + string(rune('0'+c.Col)) + string(rune('0'+c.Row)) + string(rune('0'+d.Scroll()))
	}
	return out
}

func TestWindowSelectDoesNotTouchDocuments(t *testing.T) {
	e := New(nil, console.NewRecorder())
	e.OnKey(keys.Printable('a'))
	e.OnKey(keys.Newline())
	before := snapshot(e)

	for n := 1; n <= NumWindows; n++ {
		if !e.OnKey(keys.WindowSelect(n)) {
			t.Fatalf("OnKey(F%d) = false, want true", n)
		}
		if e.Active() != n-1 {
			t.Fatalf("Active() after F%d = %d, want %d", n, e.Active(), n-1)
		}
		if got := snapshot(e); got != before {
			t.Fatalf("F%d changed documents: %v, want %v", n, got, before)
		}
	}
}

func TestKeysGoToActiveDocumentOnly(t *testing.T) {
	e := New(nil, nil)
	e.OnKey(keys.WindowSelect(3))
	e.OnKey(keys.Printable('h'))
	e.OnKey(keys.Printable('i'))

	if got := e.Document(2).Text(); got != "hi" {
		t.Fatalf("window 3 text = %q, want %q", got, "hi")
	}
	for _, i := range []int{0, 1, 3} {
		if got := e.Document(i).Text(); got != "" {
			t.Fatalf("window %d text = %q, want empty", i+1, got)
		}
	}
}

func TestSelectorCyclesOnRowZero(t *testing.T) {
	e := New(listing{"average", "hello", "nums"}, nil)

	var got []int
	for i := 0; i < 3; i++ {
		e.OnKey(keys.Arrow(keys.KindLeft))
		got = append(got, e.Selected(0))
	}
	if got[0] != 2 || got[1] != 1 || got[2] != 0 {
		t.Fatalf("Left sequence = %v, want [2 1 0]", got)
	}

	got = got[:0]
	for i := 0; i < 3; i++ {
		e.OnKey(keys.Arrow(keys.KindRight))
		got = append(got, e.Selected(0))
	}
	if got[0] != 1 || got[1] != 2 || got[2] != 0 {
		t.Fatalf("Right sequence = %v, want [1 2 0]", got)
	}
	if c := e.Document(0).Cursor(); c != (Point{}) {
		t.Fatalf("selector navigation moved the cursor to %+v", c)
	}
}

func TestSelectorEmptyListingStays(t *testing.T) {
	e := New(listing{}, nil)
	e.OnKey(keys.Arrow(keys.KindRight))
	e.OnKey(keys.Arrow(keys.KindLeft))
	if e.Selected(0) != 0 {
		t.Fatalf("Selected(0) = %d, want 0", e.Selected(0))
	}
}

func TestSelectorIsPerWindow(t *testing.T) {
	e := New(listing{"a", "b", "c"}, nil)
	e.OnKey(keys.Arrow(keys.KindRight))
	e.OnKey(keys.WindowSelect(2))
	if e.Selected(1) != 0 {
		t.Fatalf("Selected(1) = %d, want 0", e.Selected(1))
	}
	e.OnKey(keys.WindowSelect(1))
	if e.Selected(0) != 1 {
		t.Fatalf("Selected(0) after refocus = %d, want 1", e.Selected(0))
	}
}

func TestHorizontalOffRowZeroMovesCursor(t *testing.T) {
	e := New(listing{"a", "b"}, nil)
	e.OnKey(keys.Arrow(keys.KindDown))
	e.OnKey(keys.Arrow(keys.KindRight))
	if c := e.Document(0).Cursor(); c.Col != 1 || c.Row != 1 {
		t.Fatalf("cursor = %+v, want {1 1}", c)
	}
	if e.Selected(0) != 0 {
		t.Fatalf("Selected(0) = %d, want 0", e.Selected(0))
	}
}

func TestUnhandledKeys(t *testing.T) {
	e := New(nil, nil)
	if e.OnKey(keys.Other(0)) {
		t.Fatalf("OnKey(Other) = true, want false")
	}
	if e.OnKey(keys.WindowSelect(5)) {
		t.Fatalf("OnKey(F5) = true, want false")
	}
	if e.Active() != 0 {
		t.Fatalf("Active() = %d, want 0", e.Active())
	}
}
