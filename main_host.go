package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"minikernel/app"
	"minikernel/hal"
	"minikernel/internal/buildinfo"
	"minikernel/internal/config"
)

func main() {
	var configPath, initProg, children, tracePath string
	var headless, realtime, verbose, dump, version bool
	var hz int
	var ticks uint64
	flag.StringVar(&configPath, "config", "", "YAML config file (defaults apply to missing fields).")
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.BoolVar(&realtime, "realtime", false, "Tick from wall time in headless mode instead of counting instructions.")
	flag.IntVar(&hz, "hz", 0, "Clock interrupts per second of wall time (0 = config).")
	flag.Uint64Var(&ticks, "ticks", 0, "Stop after N clock ticks (0 = config).")
	flag.StringVar(&initProg, "init", "", "Program started at boot (empty = config).")
	flag.StringVar(&children, "children", "", "Comma separated programs init starts (empty = config).")
	flag.BoolVar(&verbose, "verbose", false, "Log every clock tick.")
	flag.StringVar(&tracePath, "trace", "", "Write OpenTelemetry spans to this file ('-' for stdout).")
	flag.BoolVar(&dump, "dump", false, "Print the kernel tables when the machine stops.")
	flag.BoolVar(&version, "version", false, "Print the build and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.String())
		return
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if headless {
		cfg.Host.Headless = true
		cfg.Host.Stdin = true
	}
	if realtime {
		cfg.Host.Realtime = true
	}
	if hz > 0 {
		cfg.Host.Hz = hz
	}
	if ticks > 0 {
		cfg.Machine.MaxTicks = ticks
	}
	if initProg != "" {
		cfg.Kernel.Init = initProg
	}
	if children != "" {
		cfg.Boot.Children = config.SplitList(children)
	}
	if verbose {
		cfg.Kernel.Verbose = true
	}
	if tracePath != "" {
		cfg.Trace.Enabled = true
		if tracePath != "-" {
			cfg.Trace.Output = tracePath
		}
	}

	sys, err := app.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = sys.Run(ctx)
	if dump {
		if snap, ok := sys.Snapshot(); ok {
			_, _ = snap.WriteTo(os.Stdout)
		}
	}
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.Is(err, hal.ErrTickLimit):
		fmt.Fprintln(os.Stderr, err)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
