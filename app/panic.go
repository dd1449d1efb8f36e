package app

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"minikernel/hal"
	"minikernel/internal/idgen"
	"minikernel/minios/kernel"
)

// crashColumns is the width crash reports are wrapped to, one terminal line.
const crashColumns = 80

// writeCrashReport prints why the machine halted followed by the kernel tables
// as they were at the halt.
func writeCrashReport(w io.Writer, perr *hal.PanicError, k *kernel.Kernel, cols int) {
	lines := []string{
		"minikernel panic:",
		"panic: " + perr.Message,
	}
	if k != nil {
		lines = append(lines, "boot: "+idgen.Short(k.BootID()))
		var tables bytes.Buffer
		if _, err := k.Snapshot().WriteTo(&tables); err == nil {
			for _, line := range strings.Split(tables.String(), "\n") {
				if line != "" {
					lines = append(lines, line)
				}
			}
		}
	} else {
		lines = append(lines, "kernel: not booted")
	}

	for _, line := range lines {
		for {
			chunk, rest := takeRunes(line, cols)
			fmt.Fprintln(w, chunk)
			line = strings.TrimLeft(rest, " ")
			if line == "" {
				break
			}
		}
	}
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return s, ""
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
