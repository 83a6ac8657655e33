package kernel

import (
	"context"

	"quadterm/quados/keys"
)

// Core consumes mailbox events on the CPU loop.
type Core interface {
	OnKey(k keys.Key) bool
	OnTick()
}

// Step applies at most one key and then at most one tick, so a keystroke
// shows in the frame drawn by the same iteration. It reports whether anything
// was taken.
func Step(mb *Mailbox, c Core) bool {
	worked := false
	if k, ok := mb.TakeKey(); ok {
		c.OnKey(k)
		worked = true
	}
	if mb.TakeTick() {
		c.OnTick()
		worked = true
	}
	return worked
}

// Loop runs Step until ctx is done, halting whenever the mailbox was empty.
func Loop(ctx context.Context, mb *Mailbox, c Core) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !Step(mb, c) {
			mb.Halt(ctx)
		}
	}
}
