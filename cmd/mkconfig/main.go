// Command mkconfig writes a minikernel configuration file holding the defaults,
// optionally with the init children replaced.
package main

import (
	"flag"
	"fmt"
	"os"

	"minikernel/internal/config"
)

const defaultConfigPath = "minikernel.yaml"

func main() {
	var outPath string
	var children string
	var quantum int
	var force bool
	flag.StringVar(&outPath, "out", defaultConfigPath, "Output config path ('-' for stdout).")
	flag.StringVar(&children, "children", "", "Comma separated programs init starts (default: the built-in list).")
	flag.IntVar(&quantum, "quantum", 0, "Round robin slice in ticks (0 = default).")
	flag.BoolVar(&force, "force", false, "Overwrite an existing file.")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "error: -out is required")
		os.Exit(2)
	}

	if err := run(outPath, children, quantum, force); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(outPath, children string, quantum int, force bool) error {
	cfg := config.DefaultConfig()
	if children != "" {
		cfg.Boot.Children = config.SplitList(children)
	}
	if quantum != 0 {
		cfg.Kernel.Quantum = quantum
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if outPath == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(outPath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open config file %q: %w", outPath, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config file %q: %w", outPath, err)
	}
	return f.Close()
}
