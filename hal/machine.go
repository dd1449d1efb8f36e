package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

var ErrMachineUsed = errors.New("machine already ran")

// Config controls the host machine.
type Config struct {
	// CyclesPerTick is the number of instructions between two clock interrupts
	// in virtual time. It is ignored when a real-time clock is attached.
	CyclesPerTick int `yaml:"cyclesPerTick"`
	// MaxTicks stops the machine with ErrTickLimit once exceeded (0 = never).
	MaxTicks uint64 `yaml:"maxTicks"`
}

// DefaultConfig returns the virtual-time defaults.
func DefaultConfig() Config {
	return Config{CyclesPerTick: 50}
}

// Option customises a Machine.
type Option func(m *Machine)

// WithLogger sets the diagnostic line sink.
func WithLogger(l Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithConsole sets the writer behind Console.
func WithConsole(w io.Writer) Option {
	return func(m *Machine) { m.console = w }
}

// WithClock attaches a real-time tick source; every value received is one clock tick.
func WithClock(ticks <-chan uint64) Option {
	return func(m *Machine) { m.clock = ticks }
}

// WithKeyboard attaches a terminal input source.
func WithKeyboard(keys <-chan byte) Option {
	return func(m *Machine) { m.keys = keys }
}

// PanicError is returned by Run when the machine halted fatally.
type PanicError struct {
	Message string
}

func (e *PanicError) Error() string {
	return "panic: " + e.Message
}

type eventKind uint8

const (
	evStep eventKind = iota
	evHalt
	evSwitch
	evPanic
	evPowerOff
)

type event struct {
	kind eventKind
	to   *Context
	msg  string
}

// Machine is a single simulated CPU with an interrupt controller, a clock and a
// terminal port.
//
// Every register context runs on its own goroutine and exactly one of them holds
// the CPU at any time. A context gives the CPU back to Run on every instruction,
// halt and switch; Run advances time and resumes whichever context is current.
// A Machine runs once.
type Machine struct {
	cfg     Config
	log     Logger
	console io.Writer
	clock   <-chan uint64
	keys    <-chan byte

	handlers [NumTraps]func()
	level    Level
	pending  uint8
	ports    [numPorts]byte

	cur     *Context
	events  chan event
	done    chan struct{}
	started bool

	cycles    uint64
	ticks     uint64
	stacks    int
	nextStack uint32
}

var _ HAL = (*Machine)(nil)

// New creates a machine. Interrupts are masked until the boot code lowers the level.
func New(cfg Config, opts ...Option) *Machine {
	if cfg.CyclesPerTick <= 0 {
		cfg.CyclesPerTick = DefaultConfig().CyclesPerTick
	}
	m := &Machine{
		cfg:    cfg,
		level:  LevelClock,
		events: make(chan event),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = NewLogger(os.Stdout)
	}
	if m.console == nil {
		m.console = &hostConsole{w: os.Stdout}
	}
	return m
}

// Run boots the machine on a kernel-mode context running boot and drives it until
// it powers off, panics, exceeds MaxTicks or ctx is done.
func (m *Machine) Run(ctx context.Context, boot func()) error {
	if m.started {
		return ErrMachineUsed
	}
	m.started = true
	defer close(m.done)

	c := &Context{level: LevelClock, kernel: true, boot: boot, resume: make(chan struct{})}
	go m.start(c)
	m.cur = c

	for {
		select {
		case m.cur.resume <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}

		var ev event
		select {
		case ev = <-m.events:
		case <-ctx.Done():
			return ctx.Err()
		}

		var err error
		switch ev.kind {
		case evStep:
			err = m.advance()
		case evHalt:
			err = m.idle(ctx)
		case evSwitch:
			m.cur = ev.to
		case evPanic:
			return &PanicError{Message: ev.msg}
		case evPowerOff:
			return nil
		}
		if err != nil {
			return err
		}
		m.pollKeyboard()
	}
}

func (m *Machine) advance() error {
	m.cycles++
	if m.clock != nil {
		select {
		case <-m.clock:
			return m.tick()
		default:
			return nil
		}
	}
	if m.cycles%uint64(m.cfg.CyclesPerTick) == 0 {
		return m.tick()
	}
	return nil
}

func (m *Machine) idle(ctx context.Context) error {
	if _, ok := m.deliverable(); ok {
		return nil
	}
	if m.clock == nil {
		cpt := uint64(m.cfg.CyclesPerTick)
		m.cycles += cpt - m.cycles%cpt
		return m.tick()
	}
	select {
	case <-m.clock:
		return m.tick()
	case b := <-m.keys:
		m.latch(b)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Machine) tick() error {
	m.ticks++
	m.pending |= 1 << TrapClock
	if m.cfg.MaxTicks > 0 && m.ticks > m.cfg.MaxTicks {
		return ErrTickLimit
	}
	return nil
}

func (m *Machine) pollKeyboard() {
	if m.keys == nil {
		return
	}
	select {
	case b := <-m.keys:
		m.latch(b)
	default:
	}
}

func (m *Machine) latch(b byte) {
	m.ports[PortTerminal] = b
	m.pending |= 1 << TrapTerminal
}

func (m *Machine) start(c *Context) {
	defer m.finish(c)
	m.wait(c)
	m.level = c.level
	if c.boot != nil {
		m.exec(c, c.boot)
		m.Panic("boot context returned")
	}
	m.exec(c, func() { c.entry(userCPU{m: m, c: c}) })
	m.Panic("context returned from its entry point")
}

func (m *Machine) finish(c *Context) {
	if r := recover(); r != nil {
		msg := fmt.Sprint(r)
		m.log.WriteLineString("PANIC: " + msg)
		c.exiting = true
		c.exit = event{kind: evPanic, msg: msg}
	}
	if !c.exiting {
		return
	}
	select {
	case m.events <- c.exit:
	case <-m.done:
	}
}

func (m *Machine) wait(c *Context) {
	select {
	case <-c.resume:
	case <-m.done:
		runtime.Goexit()
	}
}

func (m *Machine) yield(c *Context, ev event) {
	select {
	case m.events <- ev:
	case <-m.done:
		runtime.Goexit()
	}
	m.wait(c)
}

// exitWith ends the current context; ev is handed to Run once its deferred calls
// have finished.
func (m *Machine) exitWith(ev event) {
	c := m.cur
	c.exiting = true
	c.exit = ev
	runtime.Goexit()
}

func (m *Machine) exec(c *Context, fn func()) {
	t, origin, fault := m.protect(c, fn)
	if !fault {
		return
	}
	m.dispatch(t, origin)
}

func (m *Machine) protect(c *Context, fn func()) (t Trap, origin Mode, fault bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		origin = c.mode()
		c.frames = c.frames[:0]
		t = classify(r)
		fault = true
	}()
	fn()
	return
}

// classify maps a recovered Go panic to the exception a real CPU would raise.
func classify(r any) Trap {
	if err, ok := r.(runtime.Error); ok && strings.Contains(err.Error(), "divide by zero") {
		return TrapArithmetic
	}
	return TrapMemory
}

func (m *Machine) step(c *Context) {
	m.yield(c, event{kind: evStep})
	m.deliver()
}

func (m *Machine) dispatch(t Trap, origin Mode) {
	c := m.cur
	h := m.handlers[t]
	if h == nil {
		m.Panic(fmt.Sprintf("no handler installed for %s", t))
	}
	c.frames = append(c.frames, origin)
	prev := m.level
	if l := t.Level(); l > prev {
		m.level = l
	}
	h()
	c.frames = c.frames[:len(c.frames)-1]
	m.SetLevel(prev)
}

func (m *Machine) deliver() {
	for {
		c := m.cur
		if c == nil || c.exiting {
			return
		}
		t, ok := m.deliverable()
		if !ok {
			return
		}
		m.pending &^= 1 << t
		m.dispatch(t, c.mode())
	}
}

func (m *Machine) deliverable() (Trap, bool) {
	for _, t := range [...]Trap{TrapClock, TrapTerminal, TrapSoftware} {
		if m.pending&(1<<t) != 0 && t.Level() > m.level {
			return t, true
		}
	}
	return 0, false
}

// Install sets the handler of a trap.
func (m *Machine) Install(t Trap, h func()) {
	if t >= NumTraps {
		return
	}
	m.handlers[t] = h
}

// Register reads a register of the current context.
func (m *Machine) Register(n int) int64 { return m.cur.regs[n] }

// SetRegister writes a register of the current context.
func (m *Machine) SetRegister(n int, v int64) { m.cur.regs[n] = v }

// Level returns the current interrupt level.
func (m *Machine) Level() Level { return m.level }

// SetLevel sets the interrupt level and returns the previous one. Interrupts that
// become unmasked are taken before it returns.
func (m *Machine) SetLevel(l Level) Level {
	prev := m.level
	if m.cur != nil && m.cur.exiting {
		return prev
	}
	m.level = l
	if l < prev {
		m.deliver()
	}
	return prev
}

// RaiseSoftware requests a software interrupt.
func (m *Machine) RaiseSoftware() {
	m.pending |= 1 << TrapSoftware
}

// FromUser reports whether the trap being handled interrupted user mode.
func (m *Machine) FromUser() bool {
	f := m.cur.frames
	return len(f) > 0 && f[len(f)-1] == ModeUser
}

// Halt stops the CPU until an interrupt unmasked at the current level arrives,
// and takes it.
func (m *Machine) Halt() {
	m.yield(m.cur, event{kind: evHalt})
	m.deliver()
}

// ReadPort reads a device register.
func (m *Machine) ReadPort(p Port) byte {
	if p >= numPorts {
		return 0
	}
	return m.ports[p]
}

// Ticks returns the number of clock ticks so far.
func (m *Machine) Ticks() uint64 { return m.ticks }

// Stacks returns the number of stacks currently allocated.
func (m *Machine) Stacks() int { return m.stacks }

func (m *Machine) Logger() Logger     { return m.log }
func (m *Machine) Console() io.Writer { return m.console }

// Panic halts the machine with a diagnostic. It does not return.
func (m *Machine) Panic(msg string) {
	m.log.WriteLineString("PANIC: " + msg)
	m.exitWith(event{kind: evPanic, msg: msg})
}

// PowerOff stops the machine; Run returns nil. It does not return.
func (m *Machine) PowerOff() {
	m.exitWith(event{kind: evPowerOff})
}
