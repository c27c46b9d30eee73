package io

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	SCREEN_WIDTH  = 64 // Pixels per row.
	SCREEN_HEIGHT = 32 // Pixel rows.

	ansiHome = "\033[H"
	ansiHide = "\033[?25l"
	ansiShow = "\033[?25h"
	ansiCls  = "\033[2J"
)

// Half block glyphs, indexed by (top << 1 | bottom).
var halfBlock = [4]string{" ", "▄", "▀", "█"}

// TermScreen draws the framebuffer with ANSI escapes, two pixel rows per
// character row.
type TermScreen struct {
	Output io.Writer
	Border bool // Frame the picture.

	started bool
}

var _ Screen = (*TermScreen)(nil)

// CheckSize verifies that a terminal output is large enough for the picture.
func (ts *TermScreen) CheckSize() (err error) {
	file, ok := ts.Output.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return
	}

	width, height, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return
	}

	need_w, need_h := SCREEN_WIDTH, SCREEN_HEIGHT/2
	if ts.Border {
		need_w += 2
		need_h += 2
	}
	if width < need_w || height < need_h {
		err = fmt.Errorf("%w: %dx%d < %dx%d", ErrTerminalSize, width, height, need_w, need_h)
	}

	return
}

// Render returns the text image of a bitmap.
func Render(bitmap []byte, border bool) string {
	var sb strings.Builder

	pixel := func(x, y int) int {
		if bitmap[y*SCREEN_WIDTH/8+x/8]&(0x80>>(x%8)) != 0 {
			return 1
		}
		return 0
	}

	if border {
		sb.WriteString("┌" + strings.Repeat("─", SCREEN_WIDTH) + "┐\n")
	}
	for y := 0; y < SCREEN_HEIGHT; y += 2 {
		if border {
			sb.WriteString("│")
		}
		for x := range SCREEN_WIDTH {
			sb.WriteString(halfBlock[pixel(x, y)<<1|pixel(x, y+1)])
		}
		if border {
			sb.WriteString("│")
		}
		sb.WriteString("\n")
	}
	if border {
		sb.WriteString("└" + strings.Repeat("─", SCREEN_WIDTH) + "┘\n")
	}

	return sb.String()
}

// Show redraws the screen from the top left corner.
func (ts *TermScreen) Show(bitmap []byte) (err error) {
	prefix := ansiHome
	if !ts.started {
		prefix = ansiCls + ansiHide + ansiHome
		ts.started = true
	}

	_, err = io.WriteString(ts.Output, prefix+Render(bitmap, ts.Border))
	return
}

// Close restores the cursor.
func (ts *TermScreen) Close() (err error) {
	if ts.started {
		_, err = io.WriteString(ts.Output, ansiShow)
	}
	return
}
