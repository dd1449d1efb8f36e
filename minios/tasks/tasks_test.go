package tasks_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minikernel/hal"
	"minikernel/minios/kernel"
	"minikernel/minios/loader"
	"minikernel/minios/tasks"
)

func boot(t *testing.T, children ...string) (console, log string) {
	t.Helper()
	reg := loader.New(0)
	require.NoError(t, tasks.Register(reg, children))

	var out, diag bytes.Buffer
	m := hal.New(hal.Config{CyclesPerTick: 10, MaxTicks: 20000},
		hal.WithLogger(hal.NewLogger(&diag)), hal.WithConsole(&out))
	cfg := kernel.DefaultConfig()
	cfg.PowerOffWhenIdle = true
	k, err := kernel.New(m, reg, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, m.Run(ctx, k.Boot))
	assert.Equal(t, 0, reg.Live())
	return out.String(), diag.String()
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := loader.New(0)
	require.NoError(t, tasks.Register(reg, nil))
	assert.ErrorIs(t, tasks.Register(reg, nil), loader.ErrDuplicate)
	assert.Contains(t, reg.Names(), "init")
	assert.Contains(t, reg.Names(), "mutex_worker")
}

func TestSleepTest(t *testing.T) {
	out, _ := boot(t, "sleep_test")
	assert.Contains(t, out, "init: started sleep_test as pid 1\n")
	assert.Contains(t, out, "sleeper 2: sleeping 1s\n")
	assert.Contains(t, out, "sleeper 2: awake\n")
	assert.Contains(t, out, "sleeper 3: awake\n")
}

func TestMutexDemo(t *testing.T) {
	out, _ := boot(t, "mutex_demo")
	assert.Contains(t, out, "mutex_demo: locked 3 times\n")
	assert.Contains(t, out, "mutex_worker: waiting\n")
	released := strings.Index(out, "mutex_demo: released")
	got := strings.Index(out, "mutex_worker: got the lock")
	require.GreaterOrEqual(t, released, 0)
	assert.Less(t, released, got)
}

func TestFaults(t *testing.T) {
	out, log := boot(t, "fault_arith", "fault_mem")
	assert.Contains(t, out, "fault_arith: dividing by zero\n")
	assert.Contains(t, out, "fault_mem: dereferencing nil\n")
	assert.NotContains(t, out, "still alive")
	assert.Contains(t, log, "arithmetic exception, terminating")
	assert.Contains(t, log, "memory exception, terminating")
}

func TestSpinnersShareCPU(t *testing.T) {
	out, log := boot(t, "spinner", "spinner")
	assert.Contains(t, out, "spinner 1: round 4\n")
	assert.Contains(t, out, "spinner 2: round 4\n")
	assert.Contains(t, log, "(preemption)")
}

func TestMutexCreator(t *testing.T) {
	out, _ := boot(t, "mutex_creator")
	for _, name := range []string{"m_18", "m_19", "m_20", "m_21"} {
		assert.Contains(t, out, "mutex_creator: "+name+" ok\n")
	}
	assert.Contains(t, out, "mutex_creator: done\n")
}

func TestUnknownChild(t *testing.T) {
	out, _ := boot(t, "nope")
	assert.Contains(t, out, "init: cannot start nope: minios: image_load\n")
}
