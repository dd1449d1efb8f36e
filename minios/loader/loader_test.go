package loader

import (
	"io"
	"testing"

	"minikernel/hal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nop(hal.CPU) {}

func TestRegistryLoadRelease(t *testing.T) {
	r := New(64)
	require.NoError(t, r.Register("b", nop))
	require.NoError(t, r.Register("a", nop))
	require.ErrorIs(t, r.Register("a", nop), ErrDuplicate)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	img, entry, err := r.Load("a")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1, r.Live())
	assert.Equal(t, "a", img.(*Image).Name())
	assert.Equal(t, 64, img.(*Image).Size())

	r.Release(img)
	assert.Equal(t, 0, r.Live())
	assert.Panics(t, func() { r.Release(img) })
}

func TestLoadUnknown(t *testing.T) {
	r := New(0)
	_, _, err := r.Load("missing")
	require.ErrorIs(t, err, ErrUnknownProgram)
	assert.Equal(t, 0, r.Live())
}

func TestImageBounds(t *testing.T) {
	r := New(8)
	r.MustRegister("p", nop)
	img, _, err := r.Load("p")
	require.NoError(t, err)

	n, err := img.WriteAt([]byte("hello"), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	_, err = img.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	n, err = img.ReadAt(buf, 6)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)

	_, err = img.WriteAt([]byte("overflow"), 4)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = img.ReadAt(buf, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
