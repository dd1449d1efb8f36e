package kernel

import (
	"fmt"
	"io"
	"text/tabwriter"

	"minikernel/minios/proto"
)

// ProcInfo describes one process table slot.
type ProcInfo struct {
	PID         PID
	Name        string
	State       State
	SleepTicks  int64
	Quantum     int
	Descriptors int
}

// MutexInfo describes one allocated mutex.
type MutexInfo struct {
	Slot    int
	Name    string
	Kind    proto.MutexKind
	Locked  bool
	Owner   PID
	Holds   int
	Waiters []PID
}

// Snapshot is a copy of the kernel tables.
type Snapshot struct {
	Ticks    uint64
	Current  PID
	Procs    []ProcInfo
	Ready    []PID
	Sleeping []PID
	SlotWait []PID
	Mutexes  []MutexInfo
}

// Snapshot copies the kernel tables. Processes in the Unused state and free
// mutexes are left out.
func (k *Kernel) Snapshot() Snapshot {
	s := Snapshot{
		Ticks:    k.ticks,
		Current:  NoPID,
		Ready:    k.ready.pids(),
		Sleeping: k.sleeping.pids(),
		SlotWait: k.slotWait.pids(),
	}
	if k.cur != nil {
		s.Current = k.cur.id
	}
	for i := range k.procs {
		p := &k.procs[i]
		if p.state == StateUnused {
			continue
		}
		s.Procs = append(s.Procs, ProcInfo{
			PID:         p.id,
			Name:        p.name,
			State:       p.state,
			SleepTicks:  p.sleep,
			Quantum:     p.quantum,
			Descriptors: p.openDescriptors(),
		})
	}
	for i := range k.mutexes {
		m := &k.mutexes[i]
		if !m.allocated {
			continue
		}
		s.Mutexes = append(s.Mutexes, MutexInfo{
			Slot:    i,
			Name:    m.name,
			Kind:    m.kind,
			Locked:  m.locked,
			Owner:   m.owner,
			Holds:   m.holds,
			Waiters: m.waiters.pids(),
		})
	}
	return s
}

// Proc returns the entry of pid, if it is in use.
func (s Snapshot) Proc(pid PID) (ProcInfo, bool) {
	for _, p := range s.Procs {
		if p.PID == pid {
			return p, true
		}
	}
	return ProcInfo{}, false
}

// Mutex returns the allocated mutex called name.
func (s Snapshot) Mutex(name string) (MutexInfo, bool) {
	for _, m := range s.Mutexes {
		if m.Name == name {
			return m, true
		}
	}
	return MutexInfo{}, false
}

// WriteTo prints the snapshot as tables.
func (s Snapshot) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ticks %d, current pid %d\n", s.Ticks, s.Current)
	fmt.Fprintln(tw, "PID\tNAME\tSTATE\tSLEEP\tQUANTUM\tMUTEXES")
	for _, p := range s.Procs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n", p.PID, p.Name, p.State, p.SleepTicks, p.Quantum, p.Descriptors)
	}
	fmt.Fprintf(tw, "ready %v  sleeping %v  waiting for mutex slot %v\n", s.Ready, s.Sleeping, s.SlotWait)
	if len(s.Mutexes) > 0 {
		fmt.Fprintln(tw, "SLOT\tMUTEX\tKIND\tOWNER\tHOLDS\tWAITERS")
		for _, m := range s.Mutexes {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%v\n", m.Slot, m.Name, m.Kind, m.Owner, m.Holds, m.Waiters)
		}
	}
	err := tw.Flush()
	return cw.n, err
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
