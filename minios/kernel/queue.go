package kernel

import "fmt"

// queue is a FIFO of process records threaded through proc.next.
//
// A record is on at most one queue at a time; proc.queue names it. Pushing a
// record that is already queued is a kernel bug and panics.
type queue struct {
	name string
	tab  []proc
	head PID
	tail PID
	n    int
}

func newQueue(name string, tab []proc) queue {
	return queue{name: name, tab: tab, head: NoPID, tail: NoPID}
}

func (q *queue) Len() int { return q.n }

func (q *queue) first() *proc {
	if q.head == NoPID {
		return nil
	}
	return &q.tab[q.head]
}

// push appends p at the tail.
func (q *queue) push(p *proc) {
	if p.queue != nil {
		panic(fmt.Sprintf("kernel: pid %d pushed on %s queue while on %s queue", p.id, q.name, p.queue.name))
	}
	p.next = NoPID
	p.queue = q
	if q.tail == NoPID {
		q.head = p.id
	} else {
		q.tab[q.tail].next = p.id
	}
	q.tail = p.id
	q.n++
}

// pop removes and returns the head, or nil.
func (q *queue) pop() *proc {
	p := q.first()
	if p != nil {
		q.remove(p)
	}
	return p
}

// remove unlinks p, wherever it is. It reports false when p is not on q.
func (q *queue) remove(p *proc) bool {
	if p.queue != q {
		return false
	}
	prev := NoPID
	for id := q.head; id != NoPID; id = q.tab[id].next {
		if id != p.id {
			prev = id
			continue
		}
		if prev == NoPID {
			q.head = p.next
		} else {
			q.tab[prev].next = p.next
		}
		if q.tail == p.id {
			q.tail = prev
		}
		p.next = NoPID
		p.queue = nil
		q.n--
		return true
	}
	panic(fmt.Sprintf("kernel: pid %d missing from %s queue", p.id, q.name))
}

// pids lists the members from head to tail.
func (q *queue) pids() []PID {
	out := make([]PID, 0, q.n)
	for id := q.head; id != NoPID; id = q.tab[id].next {
		out = append(out, id)
	}
	return out
}
