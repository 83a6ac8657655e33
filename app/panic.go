package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"quadterm/hal"
	"quadterm/quados/console"
	"quadterm/quados/kernel"
)

var panicStyle = console.Style{FG: console.Black, BG: console.White}

func (s *System) panicScreen(info kernel.PanicInfo) {
	logPanic(s.log, info)
	paintPanic(s.out, info)
}

func logPanic(l hal.Logger, info kernel.PanicInfo) {
	if l == nil {
		return
	}
	l.WriteLineString(fmt.Sprintf("quadterm panic: %v", info.Value))
	for _, line := range stackLines(info.Stack) {
		l.WriteLineString(line)
	}
}

// paintPanic replaces the whole screen with the panic value and as much of
// the stack as fits, wrapping long lines at the screen width.
func paintPanic(p console.Plotter, info kernel.PanicInfo) {
	if p == nil {
		return
	}
	console.Fill(p, panicStyle)

	lines := []string{
		"quadterm panic:",
		fmt.Sprintf("panic: %v", info.Value),
	}
	if st := stackLines(info.Stack); len(st) > 0 {
		lines = append(lines, "stack:")
		lines = append(lines, st...)
	} else {
		lines = append(lines, "stack: unavailable")
	}

	row := 0
	for _, line := range lines {
		for len(line) > 0 {
			if row >= console.Rows {
				p.Flush()
				return
			}
			chunk, rest := takeRunes(line, console.Cols)
			col := 0
			for _, r := range chunk {
				if r == '\t' {
					r = ' '
				}
				p.Plot(r, col, row, panicStyle)
				col++
			}
			row++
			line = strings.TrimLeft(rest, " \t")
		}
	}
	p.Flush()
}

func stackLines(stack []byte) []string {
	var out []string
	for _, line := range strings.Split(string(stack), "\n") {
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
