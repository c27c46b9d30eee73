package io

import (
	"bytes"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestLoadFont(t *testing.T) {
	assert := assert.New(t)

	mem := make([]byte, 4096)
	LoadFont(mem)

	assert.Equal([]byte{0xf0, 0x90, 0x90, 0x90, 0xf0}, mem[0:5])
	assert.Equal([]byte{0xf0, 0x80, 0xf0, 0x80, 0x80}, mem[0xf*GLYPH_HEIGHT:0x10*GLYPH_HEIGHT])
	assert.Equal(byte(0), mem[len(Font)])
}

func TestLoadImage(t *testing.T) {
	assert := assert.New(t)

	mem := make([]byte, 4096)
	image := []byte{0x00, 0xe0, 0x12, 0x00}

	size, err := LoadImage(mem, 0x200, bytes.NewReader(image))
	assert.NoError(err)
	assert.Equal(len(image), size)
	assert.Equal(image, mem[0x200:0x204])
}

func TestLoadImage_ShortReads(t *testing.T) {
	assert := assert.New(t)

	mem := make([]byte, 4096)
	image := bytes.Repeat([]byte{1, 2, 3}, 100)

	size, err := LoadImage(mem, 0x200, iotest.OneByteReader(bytes.NewReader(image)))
	assert.NoError(err)
	assert.Equal(len(image), size)
	assert.Equal(image, mem[0x200:0x200+len(image)])
}

func TestLoadImage_Exact(t *testing.T) {
	assert := assert.New(t)

	mem := make([]byte, 4096)
	image := bytes.Repeat([]byte{0xa5}, 4096-0x200)

	size, err := LoadImage(mem, 0x200, bytes.NewReader(image))
	assert.NoError(err)
	assert.Equal(len(image), size)
}

func TestLoadImage_TooLarge(t *testing.T) {
	assert := assert.New(t)

	mem := make([]byte, 4096)
	image := bytes.Repeat([]byte{0xa5}, 4096-0x200+1)

	_, err := LoadImage(mem, 0x200, bytes.NewReader(image))
	assert.ErrorIs(err, ErrImageTooLarge)

	_, err = LoadImage(mem, 4097, bytes.NewReader(nil))
	assert.ErrorIs(err, ErrImageTooLarge)
}

func TestLoadImage_ReadError(t *testing.T) {
	assert := assert.New(t)

	mem := make([]byte, 4096)

	_, err := LoadImage(mem, 0x200, iotest.ErrReader(iotest.ErrTimeout))
	assert.ErrorIs(err, iotest.ErrTimeout)
}
