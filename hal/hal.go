package hal

import (
	"errors"
	"io"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotImplemented = errors.New("not implemented")
	ErrTickLimit      = errors.New("tick limit reached")
)

// Trap identifies an entry of the trap table.
type Trap uint8

const (
	TrapArithmetic Trap = iota
	TrapMemory
	TrapClock
	TrapTerminal
	TrapSyscall
	TrapSoftware

	NumTraps
)

func (t Trap) String() string {
	switch t {
	case TrapArithmetic:
		return "arithmetic exception"
	case TrapMemory:
		return "memory exception"
	case TrapClock:
		return "clock interrupt"
	case TrapTerminal:
		return "terminal interrupt"
	case TrapSyscall:
		return "system call"
	case TrapSoftware:
		return "software interrupt"
	default:
		return "unknown trap"
	}
}

// Level is an interrupt priority level.
//
// Running at level L masks every interrupt whose own level is <= L.
type Level uint8

const (
	LevelUser Level = iota
	LevelSoftware
	LevelTerminal
	LevelClock
)

// Level returns the level a trap handler runs at.
//
// System calls and exceptions run at LevelSoftware so a reschedule request raised
// while they run is taken on the way back to user mode.
func (t Trap) Level() Level {
	switch t {
	case TrapClock:
		return LevelClock
	case TrapTerminal:
		return LevelTerminal
	default:
		return LevelSoftware
	}
}

// NumRegisters is the number of general purpose registers of a context.
const NumRegisters = 6

// Port identifies a device register readable with ReadPort.
type Port uint8

const (
	PortTerminal Port = iota

	numPorts
)

// Image is a process address space produced by the loader.
//
// The HAL never interprets it; it is only handed to the user CPU of the context
// built on top of it.
type Image interface {
	io.ReaderAt
	io.WriterAt
}

// CPU is the user-mode view of the processor, handed to an Entry.
type CPU interface {
	// Register reads a register of the running context.
	Register(n int) int64
	// SetRegister writes a register of the running context.
	SetRegister(n int, v int64)
	// Syscall executes the trap instruction.
	Syscall()
	// Step executes one ordinary instruction.
	Step()
	// Image returns the address space of the running context.
	Image() Image
}

// Entry is the initial program counter of a context.
type Entry func(cpu CPU)

// HAL is the kernel's only contact point with the machine.
type HAL interface {
	Logger() Logger
	Console() io.Writer

	Install(t Trap, h func())
	Register(n int) int64
	SetRegister(n int, v int64)

	Level() Level
	SetLevel(l Level) Level
	RaiseSoftware()
	FromUser() bool
	Halt()

	NewStack(size int) *Stack
	FreeStack(s *Stack)
	NewContext(img Image, stack *Stack, entry Entry) *Context
	Swap(old, next *Context)

	ReadPort(p Port) byte
	Ticks() uint64

	Panic(msg string)
	PowerOff()
}
