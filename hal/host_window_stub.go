//go:build !cgo

package hal

import "errors"

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Machine Config
	Hz      int
	Width   int
	Height  int
}

func RunWindow(_ WindowConfig, _ func(HAL) func()) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
