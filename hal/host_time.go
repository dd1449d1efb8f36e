package hal

import "time"

// hostClock turns wall time into clock ticks at a fixed rate.
type hostClock struct {
	ch   chan uint64
	seq  uint64
	tick time.Duration

	last time.Time
	acc  time.Duration
}

func newHostClock(hz int) *hostClock {
	if hz <= 0 {
		hz = 100
	}
	return &hostClock{ch: make(chan uint64, 1024), tick: time.Second / time.Duration(hz)}
}

func (t *hostClock) Ticks() <-chan uint64 { return t.ch }

// step emits the ticks elapsed since the previous call.
func (t *hostClock) step() {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / t.tick)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % t.tick
	t.stepN(ticks)
}

func (t *hostClock) stepN(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
