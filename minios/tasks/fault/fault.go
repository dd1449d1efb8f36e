// Package fault holds programs that die on a CPU exception.
package fault

import (
	"minikernel/hal"
	"minikernel/minios/client/sys"
)

// Arithmetic divides by zero.
func Arithmetic() hal.Entry {
	return sys.Main(func(e *sys.Env) {
		e.Printf("fault_arith: dividing by zero\n")
		zero := e.CPU().Register(5) * 0
		e.CPU().SetRegister(5, 1/zero)
		e.Printf("fault_arith: still alive\n")
	})
}

// Memory dereferences a nil pointer.
func Memory() hal.Entry {
	return sys.Main(func(e *sys.Env) {
		e.Printf("fault_mem: dereferencing nil\n")
		var p *int
		e.CPU().SetRegister(5, int64(*p))
		e.Printf("fault_mem: still alive\n")
	})
}
