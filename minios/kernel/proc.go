package kernel

import (
	"minikernel/hal"
	"minikernel/minios/proto"
)

// PID is a process identifier, equal to its process table slot.
type PID int

const NoPID PID = -1

// State is the scheduling state of a process record.
type State uint8

const (
	StateUnused State = iota
	StateReady
	StateRunning
	StateBlocked
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUnused:
		return "unused"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// descriptor maps a process-local mutex handle to a mutex slot. gen is the
// slot generation at bind time; a freed and reused slot no longer resolves.
type descriptor struct {
	slot int
	gen  uint32
}

type proc struct {
	id    PID
	name  string
	state State

	ctx   *hal.Context
	stack *hal.Stack
	image hal.Image

	sleep   int64
	quantum int
	desc    []descriptor

	next  PID
	queue *queue
}

func (p *proc) clearDescriptors() {
	for i := range p.desc {
		p.desc[i] = descriptor{slot: -1}
	}
}

func (p *proc) freeDescriptor() int {
	for i, d := range p.desc {
		if d.slot < 0 {
			return i
		}
	}
	return -1
}

func (p *proc) openDescriptors() int {
	n := 0
	for _, d := range p.desc {
		if d.slot >= 0 {
			n++
		}
	}
	return n
}

func (k *Kernel) allocProc() *proc {
	for i := range k.procs {
		if k.procs[i].state == StateUnused {
			return &k.procs[i]
		}
	}
	return nil
}

func (k *Kernel) alive() int {
	n := 0
	for i := range k.procs {
		switch k.procs[i].state {
		case StateReady, StateRunning, StateBlocked:
			n++
		}
	}
	return n
}

// createProcess loads a program into the lowest free slot and makes it ready.
func (k *Kernel) createProcess(name string) (PID, error) {
	defer k.mask()()

	p := k.allocProc()
	if p == nil {
		k.printf("create %q: process table full", name)
		return NoPID, proto.ErrNoFreeSlots
	}
	img, entry, err := k.loader.Load(name)
	if err != nil {
		k.printf("create %q: %v", name, err)
		return NoPID, proto.ErrImageLoad
	}

	p.name = name
	p.image = img
	p.stack = k.hal.NewStack(k.cfg.StackSize)
	p.ctx = k.hal.NewContext(img, p.stack, entry)
	p.sleep = 0
	p.quantum = k.cfg.Quantum
	p.clearDescriptors()
	p.state = StateReady
	k.ready.push(p)
	return p.id, nil
}

// terminateCurrent tears down the running process and switches to the next
// one. It does not return.
func (k *Kernel) terminateCurrent() {
	k.hal.SetLevel(hal.LevelClock)

	p := k.cur
	for d := range p.desc {
		if p.desc[d].slot >= 0 {
			k.closeDescriptor(p, d)
		}
	}
	k.loader.Release(p.image)
	p.image = nil
	p.state = StateTerminated
	k.ready.remove(p)
	k.printf("pid %d (%s) terminated", p.id, p.name)

	k.hal.FreeStack(p.stack)
	p.stack = nil
	p.ctx = nil
	p.state = StateUnused
	k.cur = nil

	next := k.pickNext()
	k.cur = next
	next.state = StateRunning
	k.printf("switch %d -> %d (exit)", p.id, next.id)
	k.hal.Swap(nil, next.ctx)
}
