package hal

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// fbDisplay adapts a hostFramebuffer to tinyterm. Callers hold fb.mu.
type fbDisplay struct {
	fb *hostFramebuffer
}

func (d fbDisplay) Size() (x, y int16) {
	return int16(d.fb.width), int16(d.fb.height)
}

func (d fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.width || iy < 0 || iy >= d.fb.height {
		return
	}
	pixel := pack565(c)
	off := iy*d.fb.stride + ix*2
	if off < 0 || off+1 >= len(d.fb.buf) {
		return
	}
	d.fb.buf[off] = byte(pixel)
	d.fb.buf[off+1] = byte(pixel >> 8)
}

func (d fbDisplay) Display() error { return nil }

func (d fbDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	if lines <= 0 {
		return nil
	}
	w, h := d.fb.width, d.fb.height
	n := int(lines)
	if n >= h {
		return d.FillRectangle(0, 0, int16(w), int16(h), bg)
	}
	copy(d.fb.buf, d.fb.buf[n*d.fb.stride:h*d.fb.stride])
	return d.FillRectangle(0, int16(h-n), int16(w), int16(n), bg)
}

func (d fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clampInt(int(x), 0, d.fb.width)
	y0 := clampInt(int(y), 0, d.fb.height)
	x1 := clampInt(int(x)+int(width), 0, d.fb.width)
	y1 := clampInt(int(y)+int(height), 0, d.fb.height)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := pack565(c)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for py := y0; py < y1; py++ {
		row := py * d.fb.stride
		for px := x0; px < x1; px++ {
			d.fb.buf[row+px*2] = lo
			d.fb.buf[row+px*2+1] = hi
		}
	}
	return nil
}

func (d fbDisplay) SetScroll(line int16) {}

func (d fbDisplay) SetRotation(rotation drivers.Rotation) error { return nil }

// termConsole renders console output on a framebuffer with a VT100 terminal.
type termConsole struct {
	fb *hostFramebuffer
	t  *tinyterm.Terminal
}

func newTermConsole(fb *hostFramebuffer) *termConsole {
	c := &termConsole{fb: fb, t: tinyterm.NewTerminal(fbDisplay{fb: fb})}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.fill(color.RGBA{A: 0xFF})
	c.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	return c
}

func (c *termConsole) Write(p []byte) (int, error) {
	c.fb.mu.Lock()
	defer c.fb.mu.Unlock()
	return c.t.Write(p)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
