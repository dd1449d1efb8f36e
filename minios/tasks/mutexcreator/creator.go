// Package mutexcreator creates a batch of non-recursive mutexes and holds them
// for a second, which makes other creators wait once the table is full.
package mutexcreator

import (
	"fmt"

	"minikernel/hal"
	"minikernel/minios/client/sys"
	"minikernel/minios/proto"
)

func New(first, count, secs int) hal.Entry {
	return sys.Main(func(e *sys.Env) {
		e.Printf("mutex_creator %d: start\n", e.GetPID())
		for i := first; i < first+count; i++ {
			name := fmt.Sprintf("m_%d", i)
			if _, err := e.CreateMutex(name, proto.NonRecursive); err != nil {
				e.Printf("mutex_creator: %s: %v\n", name, err)
				continue
			}
			e.Printf("mutex_creator: %s ok\n", name)
		}
		e.Printf("mutex_creator: sleeping %ds\n", secs)
		_ = e.Sleep(secs)
		e.Printf("mutex_creator: done\n")
	})
}
