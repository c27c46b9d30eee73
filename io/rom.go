package io

import (
	"errors"
	"io"
)

const (
	FONT_ADDR    = 0x000 // Address of the built-in font.
	FONT_GLYPHS  = 16    // Glyphs in the built-in font, 0..F.
	GLYPH_HEIGHT = 5     // Rows per glyph.
)

// Font is the built-in hexadecimal font, one 4x5 glyph per digit.
var Font = [FONT_GLYPHS * GLYPH_HEIGHT]byte{
	0xf0, 0x90, 0x90, 0x90, 0xf0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xf0, 0x10, 0xf0, 0x80, 0xf0, // 2
	0xf0, 0x10, 0xf0, 0x10, 0xf0, // 3
	0x90, 0x90, 0xf0, 0x10, 0x10, // 4
	0xf0, 0x80, 0xf0, 0x10, 0xf0, // 5
	0xf0, 0x80, 0xf0, 0x90, 0xf0, // 6
	0xf0, 0x10, 0x20, 0x40, 0x40, // 7
	0xf0, 0x90, 0xf0, 0x90, 0xf0, // 8
	0xf0, 0x90, 0xf0, 0x10, 0xf0, // 9
	0xf0, 0x90, 0xf0, 0x90, 0x90, // A
	0xe0, 0x90, 0xe0, 0x90, 0xe0, // B
	0xf0, 0x80, 0x80, 0x80, 0xf0, // C
	0xe0, 0x90, 0x90, 0x90, 0xe0, // D
	0xf0, 0x80, 0xf0, 0x80, 0xf0, // E
	0xf0, 0x80, 0xf0, 0x80, 0x80, // F
}

// LoadFont installs the built-in font at FONT_ADDR.
func LoadFont(mem []byte) {
	copy(mem[FONT_ADDR:], Font[:])
}

// LoadImage reads an image into mem starting at origin, until the reader
// is exhausted. Returns the number of bytes loaded, and ErrImageTooLarge
// if the image does not fit.
func LoadImage(mem []byte, origin int, r io.Reader) (size int, err error) {
	if origin < 0 || origin > len(mem) {
		err = ErrImageTooLarge
		return
	}

	for {
		var n int
		n, err = r.Read(mem[origin+size:])
		size += n
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}
		if origin+size == len(mem) {
			break
		}
	}

	// Memory is full; the image must be too.
	var extra [1]byte
	n, _ := io.ReadFull(r, extra[:])
	if n > 0 {
		err = ErrImageTooLarge
	}

	return
}
