package hal

import "time"

const hostTickPeriod = time.Millisecond

// hostTime converts wall-clock progress into a 1 kHz tick stream. Ticks that
// find the channel full are lost, like a timer interrupt nobody serviced.
type hostTime struct {
	ch  chan uint64
	seq uint64

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// advance emits one tick per elapsed millisecond since the previous call.
// The first call emits a single tick.
func (t *hostTime) advance(now time.Time) {
	if t.last.IsZero() {
		t.last = now
		t.emit(1)
		return
	}
	t.acc += now.Sub(t.last)
	t.last = now

	n := uint64(t.acc / hostTickPeriod)
	if n == 0 {
		return
	}
	t.acc %= hostTickPeriod
	t.emit(n)
}

func (t *hostTime) emit(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
