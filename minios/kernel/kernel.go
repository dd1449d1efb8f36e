// Package kernel is the process and synchronization core: process table,
// ready and blocked queues, a FIFO scheduler with round robin time slicing,
// timed sleep, named mutexes and the trap table that drives them.
//
// All kernel code runs on the machine's contexts. State is only touched with
// interrupts masked (see mask) and the only suspension point is hal.Swap.
package kernel

import (
	"context"
	"fmt"

	"minikernel/hal"
)

// Loader produces and releases program images.
type Loader interface {
	Load(name string) (hal.Image, hal.Entry, error)
	Release(img hal.Image)
}

// Kernel owns every kernel table.
type Kernel struct {
	cfg    Config
	hal    hal.HAL
	loader Loader
	ctx    context.Context
	bootID string

	procs   []proc
	mutexes []mutex

	ready    queue
	sleeping queue
	slotWait queue

	cur   *proc
	ticks uint64
}

// Option customises a Kernel.
type Option func(k *Kernel)

// WithBootID sets the identifier printed in the boot banner.
func WithBootID(id string) Option {
	return func(k *Kernel) { k.bootID = id }
}

// WithContext sets the parent context of trace spans.
func WithContext(ctx context.Context) Option {
	return func(k *Kernel) { k.ctx = ctx }
}

// New allocates the kernel tables. Nothing runs until Boot.
func New(h hal.HAL, l Loader, cfg Config, opts ...Option) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kernel config: %w", err)
	}
	k := &Kernel{
		cfg:     cfg,
		hal:     h,
		loader:  l,
		ctx:     context.Background(),
		procs:   make([]proc, cfg.MaxProc),
		mutexes: make([]mutex, cfg.NumMutex),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.reset()
	return k, nil
}

func (k *Kernel) reset() {
	for i := range k.procs {
		k.procs[i] = proc{
			id:    PID(i),
			state: StateUnused,
			next:  NoPID,
			desc:  make([]descriptor, k.cfg.NumMutexPerProc),
		}
		k.procs[i].clearDescriptors()
	}
	for i := range k.mutexes {
		k.mutexes[i] = mutex{owner: NoPID, waiters: newQueue(fmt.Sprintf("mutex%d", i), k.procs)}
	}
	k.ready = newQueue("ready", k.procs)
	k.sleeping = newQueue("sleeping", k.procs)
	k.slotWait = newQueue("mutex slot", k.procs)
	k.cur = nil
	k.ticks = 0
}

// mask excludes every interrupt and returns the function restoring the
// previous level.
func (k *Kernel) mask() func() {
	prev := k.hal.SetLevel(hal.LevelClock)
	return func() { k.hal.SetLevel(prev) }
}

func (k *Kernel) printf(format string, args ...any) {
	k.hal.Logger().WriteLineString(fmt.Sprintf(format, args...))
}
