package io

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal holds a tty in cbreak mode: keystrokes are delivered one at a
// time without echo, while signals still work.
type Terminal struct {
	In *os.File

	saved unix.Termios
}

// OpenTerminal switches 'in' into cbreak mode.
func OpenTerminal(in *os.File) (t *Terminal, err error) {
	if !term.IsTerminal(int(in.Fd())) {
		err = ErrNotTerminal
		return
	}

	t = &Terminal{In: in}
	err = termios.Tcgetattr(in.Fd(), &t.saved)
	if err != nil {
		t = nil
		return
	}

	attr := t.saved
	attr.Lflag &^= unix.ICANON | unix.ECHO
	attr.Cc[unix.VMIN] = 1
	attr.Cc[unix.VTIME] = 0

	err = termios.Tcsetattr(in.Fd(), termios.TCSANOW, &attr)
	if err != nil {
		t = nil
		return
	}

	return
}

// Restore returns the tty to the mode it was opened in.
func (t *Terminal) Restore() error {
	return termios.Tcsetattr(t.In.Fd(), termios.TCSANOW, &t.saved)
}
