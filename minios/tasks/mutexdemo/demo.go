// Package mutexdemo shows recursive locking and a contended lock handed over
// on the final unlock.
package mutexdemo

import (
	"minikernel/hal"
	"minikernel/minios/client/sys"
	"minikernel/minios/proto"
)

const (
	Name       = "mutex_demo"
	WorkerName = "mutex_worker"
	MutexName  = "shared"
)

// Demo takes the shared mutex depth times, starts a worker that contends for
// it and releases it after spinning.
func Demo(depth int) hal.Entry {
	return sys.Main(func(e *sys.Env) {
		d, err := e.CreateMutex(MutexName, proto.Recursive)
		if err != nil {
			e.Printf("mutex_demo: create: %v\n", err)
			return
		}
		for i := 0; i < depth; i++ {
			if err := e.Lock(d); err != nil {
				e.Printf("mutex_demo: lock: %v\n", err)
				return
			}
		}
		e.Printf("mutex_demo: locked %d times\n", depth)
		if _, err := e.CreateProcess(WorkerName); err != nil {
			e.Printf("mutex_demo: worker: %v\n", err)
		}
		_ = e.Sleep(1)
		for i := 0; i < depth; i++ {
			_ = e.Unlock(d)
		}
		e.Printf("mutex_demo: released\n")
		_ = e.Sleep(1)
		_ = e.CloseMutex(d)
	})
}

// Worker opens the shared mutex and waits for it.
func Worker() hal.Entry {
	return sys.Main(func(e *sys.Env) {
		d, err := e.OpenMutex(MutexName)
		if err != nil {
			e.Printf("mutex_worker: open: %v\n", err)
			return
		}
		e.Printf("mutex_worker: waiting\n")
		if err := e.Lock(d); err != nil {
			e.Printf("mutex_worker: lock: %v\n", err)
			return
		}
		e.Printf("mutex_worker: got the lock\n")
		_ = e.Unlock(d)
		_ = e.CloseMutex(d)
	})
}
