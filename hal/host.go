package hal

import (
	"fmt"
	"io"
	"sync"
)

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogger returns a Logger writing one line per call to w. It is safe for
// concurrent use.
func NewLogger(w io.Writer) Logger {
	return &hostLogger{w: w}
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostConsole struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *hostConsole) Write(p []byte) (int, error) {
	if c.w == nil {
		return 0, ErrNotImplemented
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Write(p)
}
