package kernel

import (
	"math"

	"minikernel/minios/proto"
)

// sleep blocks the current process for secs seconds of clock ticks.
func (k *Kernel) sleep(secs int64) error {
	if secs < 0 || secs > math.MaxInt64/int64(k.cfg.TickHz) {
		return proto.ErrInvalidArgument
	}
	if secs == 0 {
		return nil
	}
	defer k.mask()()

	p := k.cur
	p.sleep = secs * int64(k.cfg.TickHz)
	k.block(&k.sleeping, "sleep")
	return nil
}

// tickSleeping counts one tick off every sleeper and readies those that are
// done, in queue order.
func (k *Kernel) tickSleeping() {
	for id := k.sleeping.head; id != NoPID; {
		p := &k.procs[id]
		id = p.next
		p.sleep--
		if p.sleep <= 0 {
			p.sleep = 0
			k.wake(&k.sleeping, p)
		}
	}
}
