// Package sys is the user-side system call library. Programs receive an Env
// wrapping the CPU they run on; every method loads the call registers, copies
// string and buffer arguments into the process image and traps.
package sys

import (
	"fmt"

	"minikernel/hal"
	"minikernel/minios/proto"
)

// scratch is the image address arguments are staged at.
const scratch = 0

// chunk bounds the bytes staged per write call.
const chunk = 256

// Env is the system call interface of one process.
type Env struct {
	cpu hal.CPU
}

func New(cpu hal.CPU) *Env { return &Env{cpu: cpu} }

// Main adapts a program body to an entry point. The process exits when main
// returns.
func Main(main func(e *Env)) hal.Entry {
	return func(cpu hal.CPU) {
		e := New(cpu)
		main(e)
		e.Exit()
	}
}

func (e *Env) CPU() hal.CPU { return e.cpu }

// Syscall traps with raw registers and returns the raw result.
func (e *Env) Syscall(call proto.Call, arg1, arg2 int64) int64 {
	e.cpu.SetRegister(proto.RegCall, int64(call))
	e.cpu.SetRegister(proto.RegArg1, arg1)
	e.cpu.SetRegister(proto.RegArg2, arg2)
	e.cpu.Syscall()
	return e.cpu.Register(proto.RegResult)
}

func (e *Env) stage(b []byte) error {
	if _, err := e.cpu.Image().WriteAt(b, scratch); err != nil {
		return proto.ErrInvalidArgument
	}
	return nil
}

func (e *Env) stageString(s string) error {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return e.stage(b)
}

// CreateProcess starts the program called name and returns its pid.
func (e *Env) CreateProcess(name string) (int, error) {
	if err := e.stageString(name); err != nil {
		return -1, err
	}
	v, err := proto.Result(e.Syscall(proto.CallCreateProcess, scratch, 0))
	return int(v), err
}

// Exit terminates the process.
func (e *Env) Exit() {
	e.Syscall(proto.CallExit, 0, 0)
	panic("exit returned")
}

// Write prints p on the console.
func (e *Env) Write(p []byte) (int, error) {
	for off := 0; off < len(p); off += chunk {
		b := p[off:min(off+chunk, len(p))]
		if err := e.stage(b); err != nil {
			return off, err
		}
		if _, err := proto.Result(e.Syscall(proto.CallWrite, scratch, int64(len(b)))); err != nil {
			return off, err
		}
	}
	return len(p), nil
}

// Printf formats to the console.
func (e *Env) Printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}

// GetPID returns the caller's pid.
func (e *Env) GetPID() int {
	return int(e.Syscall(proto.CallGetPID, 0, 0))
}

// Sleep blocks for secs seconds.
func (e *Env) Sleep(secs int) error {
	_, err := proto.Result(e.Syscall(proto.CallSleep, int64(secs), 0))
	return err
}

// CreateMutex creates a mutex and returns a descriptor to it.
func (e *Env) CreateMutex(name string, kind proto.MutexKind) (int, error) {
	if err := e.stageString(name); err != nil {
		return -1, err
	}
	v, err := proto.Result(e.Syscall(proto.CallCreateMutex, scratch, int64(kind)))
	return int(v), err
}

// OpenMutex returns a descriptor to an existing mutex.
func (e *Env) OpenMutex(name string) (int, error) {
	if err := e.stageString(name); err != nil {
		return -1, err
	}
	v, err := proto.Result(e.Syscall(proto.CallOpenMutex, scratch, 0))
	return int(v), err
}

func (e *Env) Lock(d int) error {
	_, err := proto.Result(e.Syscall(proto.CallLock, int64(d), 0))
	return err
}

func (e *Env) Unlock(d int) error {
	_, err := proto.Result(e.Syscall(proto.CallUnlock, int64(d), 0))
	return err
}

func (e *Env) CloseMutex(d int) error {
	_, err := proto.Result(e.Syscall(proto.CallCloseMutex, int64(d), 0))
	return err
}

// Spin burns n instructions.
func (e *Env) Spin(n int) {
	for i := 0; i < n; i++ {
		e.cpu.Step()
	}
}
