package io

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Loader errors
	ErrImageTooLarge = errors.New(f("image too large"))

	// Terminal errors
	ErrNotTerminal  = errors.New(f("not a terminal"))
	ErrTerminalSize = errors.New(f("terminal too small"))
)
