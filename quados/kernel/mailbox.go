// Package kernel hands interrupt-context events to the single CPU loop.
package kernel

import (
	"context"
	"runtime"
	"sync/atomic"

	"quadterm/quados/keys"
)

// Mailbox holds at most one pending key and one pending tick.
//
// Posting never blocks, allocates or retries, so it is safe from interrupt
// context. A post that lands before the previous value was taken overwrites it:
// the latest key wins and ticks coalesce.
type Mailbox struct {
	_       [0]func() // prevent accidental copying.
	key     atomic.Uint64
	tick    atomic.Bool
	dropped atomic.Uint64
	wake    chan struct{}
}

// NewMailbox returns a mailbox whose Halt sleeps until the next post.
func NewMailbox() *Mailbox {
	return &Mailbox{wake: make(chan struct{}, 1)}
}

// PostKey publishes k, replacing any key not yet taken.
func (mb *Mailbox) PostKey(k keys.Key) {
	if mb.key.Swap(k.Pack()) != 0 {
		mb.dropped.Add(1)
	}
	mb.signal()
}

// PostTick marks a timer interrupt as pending.
func (mb *Mailbox) PostTick() {
	mb.tick.Store(true)
	mb.signal()
}

// TakeKey returns the pending key and clears the slot.
func (mb *Mailbox) TakeKey() (keys.Key, bool) {
	return keys.Unpack(mb.key.Swap(0))
}

// TakeTick reports whether a tick was pending and clears it.
func (mb *Mailbox) TakeTick() bool {
	return mb.tick.CompareAndSwap(true, false)
}

// Dropped counts keys overwritten before they were taken.
func (mb *Mailbox) Dropped() uint64 { return mb.dropped.Load() }

func (mb *Mailbox) signal() {
	if mb.wake == nil {
		return
	}
	select {
	case mb.wake <- struct{}{}:
	default:
	}
}

// Halt sleeps until something is posted or ctx is done, like hlt waiting for
// the next interrupt. A zero Mailbox has no wake channel and only yields.
func (mb *Mailbox) Halt(ctx context.Context) {
	if mb.wake == nil {
		runtime.Gosched()
		return
	}
	select {
	case <-mb.wake:
	case <-ctx.Done():
	}
}
