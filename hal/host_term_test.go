package hal

import (
	"image/color"
	"testing"
)

var colorWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func litPixels(fb *hostFramebuffer) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := 0
	for i := 0; i+1 < len(fb.buf); i += 2 {
		if fb.buf[i] != 0 || fb.buf[i+1] != 0 {
			n++
		}
	}
	return n
}

func TestTermConsoleDrawsText(t *testing.T) {
	fb := newHostFramebuffer(160, 40)
	c := newTermConsole(fb)
	if n := litPixels(fb); n != 0 {
		t.Fatalf("lit pixels after reset = %d, want 0", n)
	}
	if _, err := c.Write([]byte("minikernel\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if litPixels(fb) == 0 {
		t.Fatal("expected text to be drawn")
	}
}

func TestTermConsoleScrolls(t *testing.T) {
	fb := newHostFramebuffer(160, 40)
	c := newTermConsole(fb)
	for i := 0; i < 20; i++ {
		if _, err := c.Write([]byte("line\n")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if litPixels(fb) == 0 {
		t.Fatal("expected scrolled text to stay visible")
	}
}

func TestFillRectangleClips(t *testing.T) {
	fb := newHostFramebuffer(4, 4)
	d := fbDisplay{fb: fb}
	if err := d.FillRectangle(-2, -2, 3, 3, colorWhite); err != nil {
		t.Fatalf("FillRectangle() error = %v", err)
	}
	if n := litPixels(fb); n != 1 {
		t.Fatalf("lit pixels = %d, want 1", n)
	}
}

func TestFramebufferToRGBA(t *testing.T) {
	fb := newHostFramebuffer(2, 1)
	fb.fill(colorWhite)
	fbDisplay{fb: fb}.SetPixel(1, 0, color.RGBA{R: 255, A: 255})

	dst := make([]byte, 2*4)
	fb.toRGBA(dst)
	want := []byte{255, 255, 255, 255, 255, 0, 0, 255}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("toRGBA() = %v, want %v", dst, want)
		}
	}
}
