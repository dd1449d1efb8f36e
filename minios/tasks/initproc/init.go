// Package initproc is the first user program. It starts the configured
// children and exits.
package initproc

import (
	"minikernel/hal"
	"minikernel/minios/client/sys"
)

func New(children []string) hal.Entry {
	return sys.Main(func(e *sys.Env) {
		e.Printf("init: pid %d\n", e.GetPID())
		for _, name := range children {
			pid, err := e.CreateProcess(name)
			if err != nil {
				e.Printf("init: cannot start %s: %v\n", name, err)
				continue
			}
			e.Printf("init: started %s as pid %d\n", name, pid)
		}
	})
}
