package cpu

import (
	"encoding/binary"
	"math/bits"
	"strings"
)

const (
	DISPLAY_WIDTH  = 64 // Pixels per row.
	DISPLAY_HEIGHT = 32 // Rows.

	SPRITE_WIDTH = 8 // Pixels per sprite row.
)

// Display is the monochrome framebuffer, one bit per pixel.
// Bit 63 of each row is the leftmost pixel.
type Display struct {
	Rows    [DISPLAY_HEIGHT]uint64
	Changed bool // Set whenever the framebuffer is modified.
}

// Clear sets every pixel to off.
func (d *Display) Clear() {
	clear(d.Rows[:])
	d.Changed = true
}

// Pixel returns the pixel at (x, y); coordinates wrap.
func (d *Display) Pixel(x, y int) bool {
	x = wrap(x, DISPLAY_WIDTH)
	y = wrap(y, DISPLAY_HEIGHT)
	return (d.Rows[y]>>(DISPLAY_WIDTH-1-x))&1 != 0
}

// Draw XORs a sprite, one byte per row MSB first, onto the framebuffer with
// its top left corner at (x, y). Pixels falling off an edge wrap around to
// the opposite edge. Returns true if any lit pixel was turned off.
func (d *Display) Draw(x, y int, sprite []byte) (collision bool) {
	x = wrap(x, DISPLAY_WIDTH)
	y = wrap(y, DISPLAY_HEIGHT)

	for n, line := range sprite {
		row := (y + n) % DISPLAY_HEIGHT
		mask := bits.RotateLeft64(uint64(line)<<(DISPLAY_WIDTH-SPRITE_WIDTH), -x)
		if d.Rows[row]&mask != 0 {
			collision = true
		}
		if mask != 0 {
			d.Rows[row] ^= mask
			d.Changed = true
		}
	}

	return
}

// Bitmap returns a row-major, MSB first snapshot of the framebuffer.
func (d *Display) Bitmap() (bitmap []byte) {
	bitmap = make([]byte, DISPLAY_WIDTH*DISPLAY_HEIGHT/8)
	for y, row := range d.Rows {
		binary.BigEndian.PutUint64(bitmap[y*8:], row)
	}
	return
}

// String renders the framebuffer as text, '#' for lit pixels.
func (d *Display) String() string {
	var sb strings.Builder
	for _, row := range d.Rows {
		for x := range DISPLAY_WIDTH {
			if (row>>(DISPLAY_WIDTH-1-x))&1 != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// wrap reduces a coordinate into [0, size).
func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}
