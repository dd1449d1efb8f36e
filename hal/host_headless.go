package hal

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Machine Config
	// Realtime drives the clock from wall time at Hz instead of counting cycles.
	Realtime bool
	Hz       int
	// Stdin forwards standard input to the terminal port.
	Stdin bool
}

// RunHeadless runs a machine without opening a window. newBoot receives the
// machine and returns the code run on its boot context.
func RunHeadless(ctx context.Context, cfg HeadlessConfig, newBoot func(HAL) func()) error {
	var opts []Option
	if cfg.Realtime {
		if cfg.Hz <= 0 {
			return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
		}
		clock := newHostClock(cfg.Hz)
		opts = append(opts, WithClock(clock.Ticks()))

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go runClock(ctx, clock)
	}
	if cfg.Stdin {
		opts = append(opts, WithKeyboard(readKeys(os.Stdin)))
	}

	m := New(cfg.Machine, opts...)
	return m.Run(ctx, newBoot(m))
}

func runClock(ctx context.Context, clock *hostClock) {
	t := time.NewTicker(clock.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			clock.step()
		}
	}
}

func readKeys(f *os.File) <-chan byte {
	ch := make(chan byte, 64)
	go func() {
		r := bufio.NewReader(f)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			select {
			case ch <- b:
			default:
			}
		}
	}()
	return ch
}
