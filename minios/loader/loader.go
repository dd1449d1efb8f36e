// Package loader supplies program images to the kernel.
//
// Programs are Go functions registered under a name. Loading one produces a
// fixed-size memory image, which user code uses as its address space for
// system call buffers, and the entry point the machine starts it at.
package loader

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"minikernel/hal"
)

var (
	ErrUnknownProgram = errors.New("unknown program")
	ErrDuplicate      = errors.New("program already registered")
	ErrOutOfRange     = errors.New("address out of range")
)

// DefaultImageSize is the size of an image's memory when none is configured.
const DefaultImageSize = 4096

// Registry maps program names to entry points.
type Registry struct {
	mu    sync.Mutex
	progs map[string]hal.Entry
	size  int
	live  int
}

// New creates an empty registry producing images of imageSize bytes.
func New(imageSize int) *Registry {
	if imageSize <= 0 {
		imageSize = DefaultImageSize
	}
	return &Registry{progs: make(map[string]hal.Entry), size: imageSize}
}

// Register adds a program.
func (r *Registry) Register(name string, entry hal.Entry) error {
	if name == "" || entry == nil {
		return fmt.Errorf("register %q: invalid program", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.progs[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrDuplicate)
	}
	r.progs[name] = entry
	return nil
}

// MustRegister is Register for static program tables.
func (r *Registry) MustRegister(name string, entry hal.Entry) {
	if err := r.Register(name, entry); err != nil {
		panic(err)
	}
}

// Names returns the registered program names in order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.progs))
	for name := range r.progs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load produces a fresh image of a program and its entry point.
func (r *Registry) Load(name string) (hal.Image, hal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.progs[name]
	if !ok {
		return nil, nil, fmt.Errorf("load %q: %w", name, ErrUnknownProgram)
	}
	r.live++
	return &Image{name: name, mem: make([]byte, r.size)}, entry, nil
}

// Release returns an image produced by Load. Releasing an image twice is a
// kernel bug and panics.
func (r *Registry) Release(img hal.Image) {
	im, ok := img.(*Image)
	if !ok || im == nil {
		panic("loader: release of a foreign image")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if im.released {
		panic("loader: image " + im.name + " released twice")
	}
	im.released = true
	im.mem = nil
	r.live--
}

// Live returns the number of loaded images not yet released.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Image is the address space of one process.
type Image struct {
	name     string
	mem      []byte
	released bool
}

func (im *Image) Name() string { return im.name }
func (im *Image) Size() int    { return len(im.mem) }

func (im *Image) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(im.mem)) {
		return 0, ErrOutOfRange
	}
	n := copy(p, im.mem[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (im *Image) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(im.mem)) {
		return 0, ErrOutOfRange
	}
	n := copy(im.mem[off:], p)
	if n < len(p) {
		return n, ErrOutOfRange
	}
	return n, nil
}
