package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay_Draw(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	sprite := []byte{0xf0, 0x90}

	assert.False(d.Draw(0, 0, sprite))
	assert.True(d.Changed)
	assert.True(d.Pixel(0, 0))
	assert.True(d.Pixel(3, 0))
	assert.False(d.Pixel(4, 0))
	assert.True(d.Pixel(0, 1))
	assert.False(d.Pixel(1, 1))
	assert.True(d.Pixel(3, 1))

	// Drawing the same sprite again erases it.
	assert.True(d.Draw(0, 0, sprite))
	for y := range DISPLAY_HEIGHT {
		assert.Equal(uint64(0), d.Rows[y])
	}
}

func TestDisplay_Wrap(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}

	assert.False(d.Draw(62, 31, []byte{0xff, 0x81}))

	// Row 31: columns 62, 63, 0..5
	for _, x := range []int{62, 63, 0, 1, 2, 3, 4, 5} {
		assert.True(d.Pixel(x, 31), "x=%d", x)
	}
	assert.False(d.Pixel(6, 31))
	assert.False(d.Pixel(61, 31))

	// Row 0: columns 62 and 5
	assert.True(d.Pixel(62, 0))
	assert.True(d.Pixel(5, 0))
	assert.False(d.Pixel(63, 0))
	assert.False(d.Pixel(0, 0))

	// Coordinates past the edge are reduced.
	assert.True(d.Pixel(62+DISPLAY_WIDTH, 0+DISPLAY_HEIGHT))
	assert.True(d.Pixel(-2, -1))
}

func TestDisplay_Collision(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}

	assert.False(d.Draw(10, 10, []byte{0x80}))
	assert.False(d.Draw(11, 10, []byte{0x80}))
	assert.True(d.Draw(4, 10, []byte{0x02}))
	assert.False(d.Pixel(10, 10))
	assert.True(d.Pixel(11, 10))
}

func TestDisplay_ZeroSprite(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}

	assert.False(d.Draw(0, 0, []byte{0x00, 0x00}))
	assert.False(d.Draw(0, 0, nil))
	assert.False(d.Changed)
}

func TestDisplay_Clear(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	d.Draw(0, 0, []byte{0xff})
	d.Changed = false

	d.Clear()
	assert.True(d.Changed)
	assert.False(d.Pixel(0, 0))
}

func TestDisplay_Bitmap(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	d.Draw(8, 1, []byte{0xa5})

	bitmap := d.Bitmap()
	assert.Equal(DISPLAY_WIDTH*DISPLAY_HEIGHT/8, len(bitmap))
	assert.Equal(byte(0xa5), bitmap[1*8+1])

	text := d.String()
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	assert.Equal(DISPLAY_HEIGHT, len(lines))
	assert.Equal("........#.#..#.#", lines[1][:16])
}
