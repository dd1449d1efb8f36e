package hal

// Mode is the privilege mode a context was executing in.
type Mode uint8

const (
	ModeUser Mode = iota
	ModeKernel
)

// Stack is a kernel stack handle. The host machine keeps Go stacks for its
// contexts, so a Stack only carries accounting.
type Stack struct {
	id    uint32
	size  int
	freed bool
}

func (s *Stack) Size() int { return s.size }

// Context is a saved register context.
type Context struct {
	regs  [NumRegisters]int64
	level Level

	kernel bool
	frames []Mode

	image Image
	stack *Stack
	entry Entry
	boot  func()

	resume  chan struct{}
	exiting bool
	exit    event
}

func (c *Context) mode() Mode {
	if c.kernel || len(c.frames) > 0 {
		return ModeKernel
	}
	return ModeUser
}

// NewStack allocates a kernel stack.
func (m *Machine) NewStack(size int) *Stack {
	m.nextStack++
	m.stacks++
	return &Stack{id: m.nextStack, size: size}
}

// FreeStack releases a kernel stack. Releasing a stack twice is fatal.
func (m *Machine) FreeStack(s *Stack) {
	if s == nil || s.freed {
		m.Panic("stack released twice")
	}
	s.freed = true
	m.stacks--
}

// NewContext builds a context that starts executing entry in user mode, with
// interrupts enabled, the first time it is switched to.
func (m *Machine) NewContext(img Image, stack *Stack, entry Entry) *Context {
	c := &Context{
		level:  LevelUser,
		image:  img,
		stack:  stack,
		entry:  entry,
		resume: make(chan struct{}),
	}
	go m.start(c)
	return c
}

// Swap saves the running state into old and resumes next. Swap returns when old
// is switched to again. A nil old discards the running context: Swap never
// returns and deferred calls of the discarded context run without effect on the
// interrupt level.
func (m *Machine) Swap(old, next *Context) {
	if next == nil {
		m.Panic("switch to a nil context")
	}
	if old == nil {
		m.exitWith(event{kind: evSwitch, to: next})
	}
	if old == next {
		return
	}
	if old != m.cur {
		m.Panic("switch from a context that is not running")
	}
	old.level = m.level
	m.yield(old, event{kind: evSwitch, to: next})
	m.level = old.level
}

type userCPU struct {
	m *Machine
	c *Context
}

func (u userCPU) Register(n int) int64       { return u.c.regs[n] }
func (u userCPU) SetRegister(n int, v int64) { u.c.regs[n] = v }
func (u userCPU) Image() Image               { return u.c.image }

func (u userCPU) Step() {
	u.m.step(u.c)
}

func (u userCPU) Syscall() {
	u.m.step(u.c)
	u.m.dispatch(TrapSyscall, ModeUser)
}
