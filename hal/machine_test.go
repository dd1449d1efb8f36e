package hal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func newTestMachine(cfg Config) *Machine {
	return New(cfg, WithLogger(NewLogger(io.Discard)), WithConsole(io.Discard))
}

func TestRunPowerOff(t *testing.T) {
	m := newTestMachine(Config{})
	if err := m.Run(context.Background(), func() { m.PowerOff() }); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if err := m.Run(context.Background(), func() {}); !errors.Is(err, ErrMachineUsed) {
		t.Fatalf("second Run() = %v, want %v", err, ErrMachineUsed)
	}
}

func TestPanicStopsMachine(t *testing.T) {
	var log bytes.Buffer
	m := New(Config{}, WithLogger(NewLogger(&log)), WithConsole(io.Discard))
	err := m.Run(context.Background(), func() { m.Panic("boom") })

	var perr *PanicError
	if !errors.As(err, &perr) {
		t.Fatalf("Run() = %v, want *PanicError", err)
	}
	if perr.Message != "boom" {
		t.Fatalf("Message = %q, want %q", perr.Message, "boom")
	}
	if log.String() != "PANIC: boom\n" {
		t.Fatalf("log = %q", log.String())
	}
}

func TestBootReturnIsFatal(t *testing.T) {
	m := newTestMachine(Config{})
	err := m.Run(context.Background(), func() {})
	var perr *PanicError
	if !errors.As(err, &perr) {
		t.Fatalf("Run() = %v, want *PanicError", err)
	}
}

func TestClockInterruptsUserCode(t *testing.T) {
	m := newTestMachine(Config{CyclesPerTick: 10})
	var ticks int
	var steps int
	err := m.Run(context.Background(), func() {
		m.Install(TrapClock, func() {
			if m.Level() != LevelClock {
				t.Errorf("clock handler level = %d, want %d", m.Level(), LevelClock)
			}
			if !m.FromUser() {
				t.Error("clock interrupt should come from user mode")
			}
			ticks++
			if ticks == 3 {
				m.PowerOff()
			}
		})
		c := m.NewContext(nil, m.NewStack(64), func(cpu CPU) {
			for {
				steps++
				cpu.Step()
			}
		})
		m.Swap(nil, c)
	})
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if ticks != 3 || m.Ticks() != 3 {
		t.Fatalf("ticks = %d (machine %d), want 3", ticks, m.Ticks())
	}
	if steps != 30 {
		t.Fatalf("steps = %d, want 30", steps)
	}
}

func TestSyscallUsesCallerRegisters(t *testing.T) {
	m := newTestMachine(Config{CyclesPerTick: 1000})
	var got []int64
	err := m.Run(context.Background(), func() {
		m.Install(TrapSyscall, func() {
			n := m.Register(0)
			if n < 0 {
				m.PowerOff()
			}
			if m.Level() != LevelSoftware {
				t.Errorf("syscall level = %d, want %d", m.Level(), LevelSoftware)
			}
			got = append(got, n)
			m.SetRegister(0, n*2)
		})
		c := m.NewContext(nil, m.NewStack(64), func(cpu CPU) {
			cpu.SetRegister(0, 21)
			cpu.Syscall()
			if cpu.Register(0) != 42 {
				t.Errorf("Register(0) = %d, want 42", cpu.Register(0))
			}
			if lvl := m.Level(); lvl != LevelUser {
				t.Errorf("level after syscall = %d, want %d", lvl, LevelUser)
			}
			cpu.SetRegister(0, -1)
			cpu.Syscall()
		})
		m.Swap(nil, c)
	})
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if len(got) != 1 || got[0] != 21 {
		t.Fatalf("syscalls = %v, want [21]", got)
	}
}

func TestSwapKeepsContextsApart(t *testing.T) {
	m := newTestMachine(Config{CyclesPerTick: 1000})
	var trace []int64
	var ctxs [2]*Context
	cur := 0
	err := m.Run(context.Background(), func() {
		m.Install(TrapSyscall, func() {
			trace = append(trace, m.Register(0))
			if len(trace) == 6 {
				m.PowerOff()
			}
			old := cur
			cur ^= 1
			m.Swap(ctxs[old], ctxs[cur])
		})
		loop := func(base int64) Entry {
			return func(cpu CPU) {
				for i := int64(0); ; i++ {
					cpu.SetRegister(0, base+i)
					cpu.Syscall()
				}
			}
		}
		ctxs[0] = m.NewContext(nil, m.NewStack(64), loop(10))
		ctxs[1] = m.NewContext(nil, m.NewStack(64), loop(20))
		m.Swap(nil, ctxs[0])
	})
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	want := []int64{10, 20, 11, 21, 12, 22}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestUserDivideByZeroRaisesArithmeticException(t *testing.T) {
	m := newTestMachine(Config{})
	fromUser := false
	err := m.Run(context.Background(), func() {
		m.Install(TrapArithmetic, func() {
			fromUser = m.FromUser()
			m.PowerOff()
		})
		c := m.NewContext(nil, m.NewStack(64), func(cpu CPU) {
			zero := cpu.Register(1)
			cpu.SetRegister(2, 1/zero)
		})
		m.Swap(nil, c)
	})
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if !fromUser {
		t.Fatal("expected the exception to come from user mode")
	}
}

func TestKernelFaultRaisesMemoryException(t *testing.T) {
	m := newTestMachine(Config{})
	err := m.Run(context.Background(), func() {
		m.Install(TrapMemory, func() {
			if m.FromUser() {
				m.PowerOff()
			}
			m.Panic("memory exception inside the kernel")
		})
		var table map[string]int
		table["x"] = 1
	})
	var perr *PanicError
	if !errors.As(err, &perr) || perr.Message != "memory exception inside the kernel" {
		t.Fatalf("Run() = %v, want kernel memory exception panic", err)
	}
}

func TestMissingHandlerIsFatal(t *testing.T) {
	m := newTestMachine(Config{CyclesPerTick: 1})
	err := m.Run(context.Background(), func() {
		c := m.NewContext(nil, m.NewStack(64), func(cpu CPU) {
			for {
				cpu.Step()
			}
		})
		m.Swap(nil, c)
	})
	var perr *PanicError
	if !errors.As(err, &perr) {
		t.Fatalf("Run() = %v, want *PanicError", err)
	}
}

func TestHaltWaitsForNextTick(t *testing.T) {
	m := newTestMachine(Config{CyclesPerTick: 7})
	ticks := 0
	err := m.Run(context.Background(), func() {
		m.Install(TrapClock, func() {
			ticks++
			if ticks == 2 {
				m.PowerOff()
			}
		})
		m.SetLevel(LevelSoftware)
		for {
			m.Halt()
		}
	})
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if m.Ticks() != 2 {
		t.Fatalf("Ticks() = %d, want 2", m.Ticks())
	}
}

func TestMaskedClockIsDeferred(t *testing.T) {
	m := newTestMachine(Config{CyclesPerTick: 1000})
	var order []string
	err := m.Run(context.Background(), func() {
		m.Install(TrapClock, func() {
			order = append(order, "clock")
			m.PowerOff()
		})
		m.Install(TrapSyscall, func() {
			prev := m.SetLevel(LevelClock)
			m.Halt()
			order = append(order, "masked")
			m.SetLevel(prev)
		})
		c := m.NewContext(nil, m.NewStack(64), func(cpu CPU) {
			cpu.Syscall()
		})
		m.Swap(nil, c)
	})
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if len(order) != 2 || order[0] != "masked" || order[1] != "clock" {
		t.Fatalf("order = %v, want [masked clock]", order)
	}
}

func TestTickLimit(t *testing.T) {
	m := newTestMachine(Config{CyclesPerTick: 2, MaxTicks: 5})
	err := m.Run(context.Background(), func() {
		m.Install(TrapClock, func() {})
		c := m.NewContext(nil, m.NewStack(64), func(cpu CPU) {
			for {
				cpu.Step()
			}
		})
		m.Swap(nil, c)
	})
	if !errors.Is(err, ErrTickLimit) {
		t.Fatalf("Run() = %v, want %v", err, ErrTickLimit)
	}
}

func TestTerminalInterruptLatchesPort(t *testing.T) {
	keys := make(chan byte, 1)
	keys <- 'x'
	m := New(Config{CyclesPerTick: 1000}, WithLogger(NewLogger(io.Discard)), WithKeyboard(keys))
	var got byte
	err := m.Run(context.Background(), func() {
		m.Install(TrapTerminal, func() {
			got = m.ReadPort(PortTerminal)
			m.PowerOff()
		})
		c := m.NewContext(nil, m.NewStack(64), func(cpu CPU) {
			for {
				cpu.Step()
			}
		})
		m.Swap(nil, c)
	})
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if got != 'x' {
		t.Fatalf("ReadPort() = %q, want %q", got, 'x')
	}
}

func TestStackAccounting(t *testing.T) {
	m := newTestMachine(Config{})
	err := m.Run(context.Background(), func() {
		a := m.NewStack(128)
		b := m.NewStack(256)
		if m.Stacks() != 2 || a.Size() != 128 || b.Size() != 256 {
			t.Errorf("Stacks() = %d", m.Stacks())
		}
		m.FreeStack(a)
		if m.Stacks() != 1 {
			t.Errorf("Stacks() = %d, want 1", m.Stacks())
		}
		m.FreeStack(a)
	})
	var perr *PanicError
	if !errors.As(err, &perr) || perr.Message != "stack released twice" {
		t.Fatalf("Run() = %v, want double free panic", err)
	}
}
