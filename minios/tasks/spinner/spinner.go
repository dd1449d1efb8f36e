// Package spinner is a CPU-bound program that makes round robin visible.
package spinner

import (
	"minikernel/hal"
	"minikernel/minios/client/sys"
)

func New(rounds, steps int) hal.Entry {
	return sys.Main(func(e *sys.Env) {
		pid := e.GetPID()
		for i := 0; i < rounds; i++ {
			e.Spin(steps)
			e.Printf("spinner %d: round %d\n", pid, i)
		}
	})
}
