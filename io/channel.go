// Package io provides the devices attached to the CHIP-8 machine: the
// built-in font and image loader, a keypad fed from a byte stream, a
// terminal screen, and tone outputs for the sound timer.
package io

// Keypad reports the state of the sixteen key pad.
type Keypad interface {
	// Keys returns the current key state, true while held.
	Keys() [16]bool
}

// Beeper is driven by the sound timer.
type Beeper interface {
	// SetTone is called once per timer tick with the tone state.
	SetTone(on bool)
}

// Screen presents the framebuffer.
type Screen interface {
	// Show renders a row-major, MSB first, 64x32 bitmap.
	Show(bitmap []byte) error
}

// Beepers fans a tone out to several beepers.
type Beepers []Beeper

var _ Beeper = (Beepers)(nil)

func (bs Beepers) SetTone(on bool) {
	for _, b := range bs {
		b.SetTone(on)
	}
}
