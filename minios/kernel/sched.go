package kernel

import "minikernel/hal"

// pickNext returns the head of the ready queue without removing it, idling
// until an interrupt makes some process ready. The caller holds the mask.
func (k *Kernel) pickNext() *proc {
	for k.ready.Len() == 0 {
		if k.cfg.PowerOffWhenIdle && k.alive() == 0 {
			k.printf("no processes left, powering off")
			k.hal.PowerOff()
		}
		k.waitInterrupt()
	}
	return k.ready.first()
}

// waitInterrupt halts with every device interrupt enabled.
func (k *Kernel) waitInterrupt() {
	k.printf("no ready process, waiting for interrupt")
	prev := k.hal.SetLevel(hal.LevelSoftware)
	k.hal.Halt()
	k.hal.SetLevel(prev)
}

// dispatch runs the process picked by the scheduler, suspending the current
// one. It returns when the current process runs again.
func (k *Kernel) dispatch(reason string) {
	prev := k.cur
	next := k.pickNext()
	k.cur = next
	next.state = StateRunning
	if next == prev {
		return
	}
	k.printf("switch %d -> %d (%s)", prev.id, next.id, reason)
	k.hal.Swap(prev.ctx, next.ctx)
}

// block moves the current process from the ready queue to q and switches away.
func (k *Kernel) block(q *queue, reason string) {
	p := k.cur
	k.ready.remove(p)
	p.state = StateBlocked
	q.push(p)
	k.dispatch(reason)
}

// wake moves a blocked process from q to the tail of the ready queue.
func (k *Kernel) wake(q *queue, p *proc) {
	q.remove(p)
	p.state = StateReady
	k.ready.push(p)
}

// tickQuantum charges the running process one tick and requests a
// reschedule once its slice is used up.
func (k *Kernel) tickQuantum() {
	p := k.cur
	if p == nil || p.state != StateRunning {
		return
	}
	if p.quantum > 0 {
		p.quantum--
	}
	if k.cfg.Verbose {
		k.printf("pid %d: %d ticks left", p.id, p.quantum)
	}
	if p.quantum == 0 {
		k.hal.RaiseSoftware()
	}
}

// preempt rotates the running process to the tail of the ready queue once its
// slice is used up. A request that no longer applies is ignored.
func (k *Kernel) preempt() {
	defer k.mask()()

	p := k.cur
	if p == nil || p.state != StateRunning || p.quantum > 0 {
		return
	}
	if k.ready.Len() <= 1 {
		p.quantum = k.cfg.Quantum
		return
	}
	k.ready.remove(p)
	p.state = StateReady
	p.quantum = k.cfg.Quantum
	k.ready.push(p)
	k.ready.first().quantum = k.cfg.Quantum
	k.dispatch("preemption")
}
