// Package app wires a configured kernel and the bundled programs onto a host
// machine.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"minikernel/hal"
	"minikernel/internal/buildinfo"
	"minikernel/internal/config"
	"minikernel/internal/tracing"
	"minikernel/minios/kernel"
	"minikernel/minios/loader"
	"minikernel/minios/tasks"
)

// System is one boot of the kernel.
type System struct {
	cfg    *config.Config
	reg    *loader.Registry
	kernel *kernel.Kernel
	ctx    context.Context

	stderr io.Writer
}

// Option customises a System.
type Option func(s *System)

// WithStderr sets where crash reports go.
func WithStderr(w io.Writer) Option {
	return func(s *System) { s.stderr = w }
}

// WithRegistry replaces the bundled programs.
func WithRegistry(r *loader.Registry) Option {
	return func(s *System) { s.reg = r }
}

// New validates cfg and registers the bundled programs.
func New(cfg *config.Config, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	s := &System{cfg: cfg, ctx: context.Background(), stderr: os.Stderr}
	for _, opt := range opts {
		opt(s)
	}
	if s.reg == nil {
		s.reg = loader.New(cfg.Boot.ImageSize)
		if err := tasks.Register(s.reg, cfg.Boot.Children); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Boot builds the kernel for h and returns the code for its boot context.
func (s *System) Boot(h hal.HAL) func() {
	k, err := kernel.New(h, s.reg, s.cfg.Kernel, kernel.WithContext(s.ctx))
	if err != nil {
		return func() { h.Panic(err.Error()) }
	}
	s.kernel = k
	return k.Boot
}

// Run boots the system on the host runner selected by the config and returns
// how the machine stopped. A fatal halt is also reported on stderr.
func (s *System) Run(ctx context.Context) error {
	if s.cfg.Trace.Enabled {
		if err := tracing.Init("minikernel", buildinfo.Short(), s.cfg.Trace.Output); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer tracing.Shutdown(context.Background())
	}
	s.ctx = ctx

	var err error
	if s.cfg.Host.Headless {
		err = hal.RunHeadless(ctx, hal.HeadlessConfig{
			Machine:  s.cfg.Machine,
			Realtime: s.cfg.Host.Realtime,
			Hz:       s.cfg.Host.Hz,
			Stdin:    s.cfg.Host.Stdin,
		}, s.Boot)
	} else {
		err = hal.RunWindow(hal.WindowConfig{
			Machine: s.cfg.Machine,
			Hz:      s.cfg.Host.Hz,
			Width:   s.cfg.Host.Width,
			Height:  s.cfg.Host.Height,
		}, s.Boot)
	}

	var perr *hal.PanicError
	if errors.As(err, &perr) {
		writeCrashReport(s.stderr, perr, s.kernel, crashColumns)
	}
	return err
}

// Snapshot returns the kernel tables once the system has booted.
func (s *System) Snapshot() (kernel.Snapshot, bool) {
	if s.kernel == nil {
		return kernel.Snapshot{}, false
	}
	return s.kernel.Snapshot(), true
}

// Programs lists the programs init can start.
func (s *System) Programs() []string { return s.reg.Names() }
