// Package keys defines the closed set of keys the editor understands and the
// decoder from raw HAL keyboard events.
package keys

import (
	"fmt"
	"unicode"

	"quadterm/hal"

	"github.com/mattn/go-runewidth"
)

// Kind tags a Key.
type Kind uint8

const (
	KindOther Kind = iota
	KindWindowSelect
	KindBackspace
	KindUp
	KindDown
	KindLeft
	KindRight
	KindPrintable
	KindNewline
)

var kindNames = [...]string{
	KindOther:        "Other",
	KindWindowSelect: "WindowSelect",
	KindBackspace:    "Backspace",
	KindUp:           "Up",
	KindDown:         "Down",
	KindLeft:         "Left",
	KindRight:        "Right",
	KindPrintable:    "Printable",
	KindNewline:      "Newline",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Key is a decoded key press.
//
// Window is set only for KindWindowSelect (1..4). Rune is set for
// KindPrintable, and for KindOther when the press carried a character.
type Key struct {
	Kind   Kind
	Window int
	Rune   rune
}

func WindowSelect(n int) Key    { return Key{Kind: KindWindowSelect, Window: n} }
func Printable(r rune) Key      { return Key{Kind: KindPrintable, Rune: r} }
func Other(r rune) Key          { return Key{Kind: KindOther, Rune: r} }
func Backspace() Key            { return Key{Kind: KindBackspace} }
func Newline() Key              { return Key{Kind: KindNewline} }
func Arrow(kind Kind) Key       { return Key{Kind: kind} }
func (k Key) IsPrintable() bool { return k.Kind == KindPrintable }

func (k Key) String() string {
	switch k.Kind {
	case KindWindowSelect:
		return fmt.Sprintf("F%d", k.Window)
	case KindPrintable:
		return fmt.Sprintf("%q", k.Rune)
	case KindOther:
		if k.Rune != 0 {
			return fmt.Sprintf("Other(%U)", k.Rune)
		}
	}
	return k.Kind.String()
}

// IsPrintableRune reports whether r fits one text cell.
func IsPrintableRune(r rune) bool {
	return unicode.IsPrint(r) && runewidth.RuneWidth(r) == 1
}

// Decode maps a HAL keyboard event to a Key. Releases report false.
func Decode(ev hal.KeyEvent) (Key, bool) {
	if !ev.Press {
		return Key{}, false
	}
	switch ev.Code {
	case hal.KeyF1:
		return WindowSelect(1), true
	case hal.KeyF2:
		return WindowSelect(2), true
	case hal.KeyF3:
		return WindowSelect(3), true
	case hal.KeyF4:
		return WindowSelect(4), true
	case hal.KeyUp:
		return Arrow(KindUp), true
	case hal.KeyDown:
		return Arrow(KindDown), true
	case hal.KeyLeft:
		return Arrow(KindLeft), true
	case hal.KeyRight:
		return Arrow(KindRight), true
	case hal.KeyBackspace:
		return Backspace(), true
	case hal.KeyEnter:
		return Newline(), true
	case hal.KeyUnknown:
	default:
		return Other(0), true
	}

	switch r := ev.Rune; {
	case r == '\n' || r == '\r':
		return Newline(), true
	case r == '\b' || r == 0x7F:
		return Backspace(), true
	case IsPrintableRune(r):
		return Printable(r), true
	default:
		return Other(r), true
	}
}

const (
	packPresent   = uint64(1) << 63
	packKindShift = 40
	packWinShift  = 32
	packRuneMask  = uint64(0xFFFFFFFF)
	packByteMask  = uint64(0xFF)
)

// Pack encodes k into one machine word so it can be stored atomically.
// Zero is never a valid packing.
func (k Key) Pack() uint64 {
	return packPresent |
		uint64(k.Kind)<<packKindShift |
		(uint64(uint8(k.Window)) << packWinShift) |
		uint64(uint32(k.Rune))
}

// Unpack reverses Pack. It reports false for the empty word.
func Unpack(w uint64) (Key, bool) {
	if w&packPresent == 0 {
		return Key{}, false
	}
	return Key{
		Kind:   Kind((w >> packKindShift) & packByteMask),
		Window: int((w >> packWinShift) & packByteMask),
		Rune:   rune(int32(uint32(w & packRuneMask))),
	}, true
}
