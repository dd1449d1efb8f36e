package kernel

import (
	"minikernel/hal"
	"minikernel/internal/tracing"
)

func (k *Kernel) install() {
	k.hal.Install(hal.TrapArithmetic, k.exception(hal.TrapArithmetic))
	k.hal.Install(hal.TrapMemory, k.exception(hal.TrapMemory))
	k.hal.Install(hal.TrapClock, k.clockInterrupt)
	k.hal.Install(hal.TrapTerminal, k.terminalInterrupt)
	k.hal.Install(hal.TrapSyscall, k.syscall)
	k.hal.Install(hal.TrapSoftware, k.preempt)
}

// exception terminates a faulting process. A fault in kernel mode halts the
// machine.
func (k *Kernel) exception(t hal.Trap) func() {
	return func() {
		if !k.hal.FromUser() {
			k.hal.Panic(t.String() + " inside the kernel")
		}
		p := k.cur
		_, span := tracing.StartSpan(k.ctx, "trap."+t.String())
		span.WithAttributes(map[string]string{"program": p.name}).WithInt("pid", int64(p.id))
		span.OnDone()

		k.printf("pid %d (%s): %s, terminating", p.id, p.name, t)
		k.terminateCurrent()
	}
}

func (k *Kernel) clockInterrupt() {
	defer k.mask()()

	k.ticks++
	if k.cfg.Verbose {
		k.printf("clock tick %d", k.ticks)
	}
	k.tickSleeping()
	k.tickQuantum()
}

func (k *Kernel) terminalInterrupt() {
	c := k.hal.ReadPort(hal.PortTerminal)
	k.printf("terminal: %q", c)
}
