//go:build cgo

package hal

import (
	"context"
	"errors"
	"image"
	"io"
	"os"

	"minikernel/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Machine Config
	Hz      int
	Width   int
	Height  int
}

// RunWindow runs a machine whose console and logger are rendered in a desktop
// window, with the clock driven by wall time and typed characters delivered to
// the terminal port. It blocks until the window closes and returns how the
// machine stopped.
func RunWindow(cfg WindowConfig, newBoot func(HAL) func()) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 480, 320
	}
	fb := newHostFramebuffer(cfg.Width, cfg.Height)
	out := io.MultiWriter(os.Stdout, newTermConsole(fb))
	clock := newHostClock(cfg.Hz)
	kbd := newHostKeyboard()

	m := New(cfg.Machine,
		WithClock(clock.Ticks()),
		WithKeyboard(kbd.Keys()),
		WithLogger(NewLogger(out)),
		WithConsole(&hostConsole{w: out}),
	)
	boot := newBoot(m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, boot) }()

	g := &hostGame{fb: fb, clock: clock, kbd: kbd, done: done}
	ebiten.SetWindowTitle("minikernel (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(fb.width*2, fb.height*2)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return g.result
}

type hostGame struct {
	fb    *hostFramebuffer
	clock *hostClock
	kbd   *hostKeyboard
	done  <-chan error

	stopped bool
	result  error

	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *hostGame) Update() error {
	if g.stopped {
		return nil
	}
	select {
	case err := <-g.done:
		// Keep the window open on the final console contents.
		g.stopped = true
		g.result = err
		ebiten.SetWindowTitle("minikernel (stopped)")
		return nil
	default:
	}
	g.kbd.poll()
	g.clock.step()
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}
	fb.toRGBA(g.img.Pix)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.width, g.fb.height
}
