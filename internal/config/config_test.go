package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16, cfg.Kernel.MaxProc)
	assert.Equal(t, 10, cfg.Kernel.Quantum)
	assert.Equal(t, "init", cfg.Kernel.Init)
	assert.Equal(t, 50, cfg.Machine.CyclesPerTick)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
kernel:
  quantum: 3
  verbose: true
machine:
  maxTicks: 500
boot:
  children: [spinner]
`))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Kernel.Quantum)
	assert.True(t, cfg.Kernel.Verbose)
	assert.Equal(t, uint64(500), cfg.Machine.MaxTicks)
	assert.Equal(t, []string{"spinner"}, cfg.Boot.Children)
	assert.Equal(t, 16, cfg.Kernel.NumMutex)
	assert.Equal(t, 50, cfg.Machine.CyclesPerTick)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseRejects(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "unknown field", yaml: "kernel:\n  quantums: 3\n"},
		{name: "zero quantum", yaml: "kernel:\n  quantum: 0\n"},
		{name: "no init", yaml: "kernel:\n  init: \"\"\n"},
		{name: "zero hz", yaml: "host:\n  hz: 0\n"},
		{name: "empty child", yaml: "boot:\n  children: [\"\"]\n"},
		{name: "bad yaml", yaml: "kernel: [\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kernel.Quantum = 4
	cfg.Trace.Enabled = true
	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "quantum: 4")

	path := filepath.Join(t.TempDir(), "minikernel.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitList(t *testing.T) {
	testCases := []struct {
		in   string
		want []string
	}{
		{in: "spinner", want: []string{"spinner"}},
		{in: "spinner, sleep_test", want: []string{"spinner", "sleep_test"}},
		{in: " a ,, b ,", want: []string{"a", "b"}},
		{in: " , "},
		{in: ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, SplitList(tc.in), tc.in)
	}
}
