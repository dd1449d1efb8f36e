package kernel

import "minikernel/minios/proto"

type mutex struct {
	name      string
	allocated bool
	kind      proto.MutexKind
	locked    bool
	owner     PID
	holds     int
	waiters   queue
	gen       uint32
}

func (k *Kernel) findMutex(name string) int {
	for i := range k.mutexes {
		if k.mutexes[i].allocated && k.mutexes[i].name == name {
			return i
		}
	}
	return -1
}

func (k *Kernel) freeMutexSlot() int {
	for i := range k.mutexes {
		if !k.mutexes[i].allocated {
			return i
		}
	}
	return -1
}

// resolve maps a descriptor of p to its mutex.
func (k *Kernel) resolve(p *proc, d int64) (*mutex, error) {
	if d < 0 || d >= int64(len(p.desc)) {
		return nil, proto.ErrInvalidDescriptor
	}
	ds := p.desc[d]
	if ds.slot < 0 {
		return nil, proto.ErrInvalidDescriptor
	}
	m := &k.mutexes[ds.slot]
	if !m.allocated || m.gen != ds.gen {
		return nil, proto.ErrInvalidDescriptor
	}
	return m, nil
}

func (k *Kernel) bind(p *proc, d, slot int) {
	p.desc[d] = descriptor{slot: slot, gen: k.mutexes[slot].gen}
}

// createMutex allocates a named mutex and opens it for the caller. When the
// mutex table is full the caller waits for a slot to be freed.
func (k *Kernel) createMutex(name string, kind proto.MutexKind) (int, error) {
	defer k.mask()()

	p := k.cur
	if len(name) > k.cfg.MaxMutexName {
		return -1, proto.ErrNameTooLong
	}
	if k.findMutex(name) >= 0 {
		return -1, proto.ErrDuplicateName
	}
	d := p.freeDescriptor()
	if d < 0 {
		return -1, proto.ErrNoDescriptor
	}
	if !kind.Valid() {
		return -1, proto.ErrInvalidArgument
	}

	slot := k.freeMutexSlot()
	for slot < 0 {
		k.printf("pid %d: mutex table full, waiting", p.id)
		k.block(&k.slotWait, "mutex table full")
		if k.findMutex(name) >= 0 {
			return -1, proto.ErrDuplicateName
		}
		slot = k.freeMutexSlot()
	}

	m := &k.mutexes[slot]
	// Processes still queued from the slot's previous mutex wake here, in
	// order, and fail their lock with ErrInvalidDescriptor.
	for w := m.waiters.first(); w != nil; w = m.waiters.first() {
		k.wake(&m.waiters, w)
	}
	m.name = name
	m.allocated = true
	m.kind = kind
	m.locked = false
	m.owner = NoPID
	m.holds = 0
	m.gen++
	k.bind(p, d, slot)
	k.printf("pid %d: mutex %q created (%s)", p.id, name, kind)
	return d, nil
}

// openMutex gives the caller a descriptor to an existing mutex.
func (k *Kernel) openMutex(name string) (int, error) {
	defer k.mask()()

	p := k.cur
	if len(name) > k.cfg.MaxMutexName {
		return -1, proto.ErrNameTooLong
	}
	slot := k.findMutex(name)
	if slot < 0 {
		return -1, proto.ErrNotFound
	}
	d := p.freeDescriptor()
	if d < 0 {
		return -1, proto.ErrNoDescriptor
	}
	k.bind(p, d, slot)
	return d, nil
}

// lock acquires a mutex, waiting while another process owns it.
func (k *Kernel) lock(d int64) (int64, error) {
	defer k.mask()()

	p := k.cur
	for {
		m, err := k.resolve(p, d)
		if err != nil {
			return -1, err
		}
		switch {
		case !m.locked:
			m.locked = true
			m.owner = p.id
			m.holds = 1
			return d, nil
		case m.owner == p.id:
			if m.kind != proto.Recursive {
				return -1, proto.ErrAlreadyLocked
			}
			m.holds++
			return d, nil
		}
		k.block(&m.waiters, "lock "+m.name)
	}
}

// unlock releases one hold of a mutex.
func (k *Kernel) unlock(d int64) (int64, error) {
	defer k.mask()()

	m, err := k.resolve(k.cur, d)
	if err != nil {
		return -1, err
	}
	if !m.locked {
		return -1, proto.ErrNotLocked
	}
	k.release(m)
	return d, nil
}

// release drops one hold and, when the last one goes, wakes the longest
// waiting process so it can retry.
func (k *Kernel) release(m *mutex) {
	m.holds--
	if m.holds > 0 {
		return
	}
	m.holds = 0
	m.locked = false
	m.owner = NoPID
	if w := m.waiters.first(); w != nil {
		k.wake(&m.waiters, w)
	}
}

// closeMutex closes a descriptor of the current process.
func (k *Kernel) closeMutex(d int64) error {
	defer k.mask()()

	p := k.cur
	if _, err := k.resolve(p, d); err != nil {
		if d >= 0 && d < int64(len(p.desc)) {
			// The slot was freed through another descriptor.
			p.desc[d] = descriptor{slot: -1}
		}
		return err
	}
	k.closeDescriptor(p, int(d))
	return nil
}

// closeDescriptor releases a lock p holds through d, frees the mutex and
// clears d. A descriptor whose slot was already freed is just cleared.
//
// The slot is freed even if other processes still have it open. Their
// descriptors go stale. Processes still queued on it stay there until the
// slot is claimed by createMutex, which wakes them before the new mutex can
// be locked.
func (k *Kernel) closeDescriptor(p *proc, d int) {
	m, err := k.resolve(p, int64(d))
	p.desc[d] = descriptor{slot: -1}
	if err != nil {
		return
	}

	if m.locked && m.owner == p.id {
		for m.holds > 0 {
			k.release(m)
		}
	}
	k.printf("pid %d: mutex %q closed", p.id, m.name)
	m.allocated = false
	m.name = ""
	m.locked = false
	m.owner = NoPID
	m.holds = 0

	if w := k.slotWait.first(); w != nil {
		k.wake(&k.slotWait, w)
	}
}
