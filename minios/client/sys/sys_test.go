package sys

import (
	"testing"

	"minikernel/hal"
	"minikernel/minios/loader"
	"minikernel/minios/proto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCPU answers each trap with a canned result and records the call.
type fakeCPU struct {
	regs  [hal.NumRegisters]int64
	img   hal.Image
	calls []proto.Call
	names []string
	steps int
	reply func(c proto.Call) int64
}

func (c *fakeCPU) Register(n int) int64       { return c.regs[n] }
func (c *fakeCPU) SetRegister(n int, v int64) { c.regs[n] = v }
func (c *fakeCPU) Image() hal.Image           { return c.img }
func (c *fakeCPU) Step()                      { c.steps++ }

func (c *fakeCPU) Syscall() {
	call := proto.Call(c.regs[proto.RegCall])
	c.calls = append(c.calls, call)
	buf := make([]byte, 16)
	n, _ := c.img.ReadAt(buf, c.regs[proto.RegArg1])
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			c.names = append(c.names, string(buf[:i]))
			break
		}
	}
	c.regs[proto.RegResult] = c.reply(call)
}

func newFake(t *testing.T, size int, reply func(proto.Call) int64) *fakeCPU {
	r := loader.New(size)
	r.MustRegister("p", func(hal.CPU) {})
	img, _, err := r.Load("p")
	require.NoError(t, err)
	return &fakeCPU{img: img, reply: reply}
}

func TestCreateMutexStagesName(t *testing.T) {
	cpu := newFake(t, 64, func(proto.Call) int64 { return 2 })
	e := New(cpu)

	d, err := e.CreateMutex("m_18", proto.Recursive)
	require.NoError(t, err)
	assert.Equal(t, 2, d)
	assert.Equal(t, []proto.Call{proto.CallCreateMutex}, cpu.calls)
	assert.Equal(t, []string{"m_18"}, cpu.names)
	assert.Equal(t, int64(proto.Recursive), cpu.regs[proto.RegArg2])
}

func TestErrorResults(t *testing.T) {
	cpu := newFake(t, 64, func(proto.Call) int64 { return int64(proto.ErrAlreadyLocked) })
	e := New(cpu)
	require.ErrorIs(t, e.Lock(0), proto.ErrAlreadyLocked)
	_, err := e.OpenMutex("x")
	require.ErrorIs(t, err, proto.ErrAlreadyLocked)
}

func TestWriteChunks(t *testing.T) {
	var sizes []int64
	var cpu *fakeCPU
	cpu = newFake(t, chunk, func(proto.Call) int64 {
		sizes = append(sizes, cpu.regs[proto.RegArg2])
		return 0
	})
	e := New(cpu)
	n, err := e.Write(make([]byte, chunk*2+10))
	require.NoError(t, err)
	assert.Equal(t, chunk*2+10, n)
	assert.Equal(t, []int64{chunk, chunk, 10}, sizes)
}

func TestStageTooLarge(t *testing.T) {
	cpu := newFake(t, 4, func(proto.Call) int64 { return 0 })
	_, err := New(cpu).CreateProcess("much too long")
	require.ErrorIs(t, err, proto.ErrInvalidArgument)
	assert.Empty(t, cpu.calls)
}

func TestSpin(t *testing.T) {
	cpu := newFake(t, 4, nil)
	New(cpu).Spin(5)
	assert.Equal(t, 5, cpu.steps)
}
