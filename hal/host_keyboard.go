//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hostKeyboard turns window key presses into terminal bytes.
type hostKeyboard struct {
	ch chan byte
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan byte, 64)}
}

func (k *hostKeyboard) Keys() <-chan byte { return k.ch }

func (k *hostKeyboard) emit(b byte) {
	select {
	case k.ch <- b:
	default:
	}
}

func (k *hostKeyboard) poll() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if ctrl {
		for key, b := range map[ebiten.Key]byte{ebiten.KeyC: 0x03, ebiten.KeyD: 0x04, ebiten.KeyU: 0x15} {
			if inpututil.IsKeyJustPressed(key) {
				k.emit(b)
			}
		}
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 0x80 {
			k.emit(byte(r))
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		k.emit('\n')
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		k.emit(0x08)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		k.emit('\t')
	}
}
