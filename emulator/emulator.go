// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	stdio "io"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	DEFAULT_HZ = 700 // Default instructions per second.
	FRAME_HZ   = 60  // Screen refresh rate.
)

var _emulator_defines = map[string]string{
	"TIMER_HZ":   fmt.Sprintf("%v", cpu.TIMER_HZ),
	"DEFAULT_HZ": fmt.Sprintf("%v", DEFAULT_HZ),
	"FONT_ADDR":  fmt.Sprintf("%#x", io.FONT_ADDR),
}

// Emulator state. CPU + attached devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the loaded program, for line numbers.

	Keypad io.Keypad // Key source, sampled before every instruction.
	Beeper io.Beeper // Tone output, updated every timer tick.
	Screen io.Screen // Framebuffer output, updated every frame.
	Hz     int       // Instructions per second, DEFAULT_HZ if zero.

	Frames int // Frames presented since reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Reset()

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the machine, and install the font.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	io.LoadFont(emu.Cpu.Memory[:])
	emu.Frames = 0
}

// Load resets the machine and loads images. The first image is loaded at
// the program start, any others at address zero.
func (emu *Emulator) Load(images ...stdio.Reader) (err error) {
	emu.Reset()
	emu.Program = &cpu.Program{}

	for n, image := range images {
		origin := 0
		if n == 0 {
			origin = cpu.PROGRAM_START
		}
		var size int
		size, err = io.LoadImage(emu.Cpu.Memory[:], origin, image)
		if err != nil {
			return
		}
		if emu.Verbose {
			log.Printf("emulator: loaded %d bytes at 0x%03x", size, origin)
		}
	}

	return
}

// LoadProgram resets the machine and loads an assembled program.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	image, err := prog.Binary()
	if err != nil {
		return
	}

	emu.Reset()
	copy(emu.Cpu.Memory[cpu.PROGRAM_START:], image)
	emu.Program = prog

	if emu.Verbose {
		for addr, op := range prog.Codes() {
			log.Printf("emulator: 0x%03x: %v", uint16(addr), op)
		}
	}

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns current program counter.
func (emu *Emulator) Pc() cpu.Address {
	return emu.Cpu.Pc
}

// Operation returns the instruction at the program counter.
func (emu *Emulator) Operation() (op cpu.Operation, err error) {
	word, err := emu.Cpu.Fetch()
	if err != nil {
		return
	}

	op, err = cpu.Decode(word)
	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction cycle of the emulator. A jump to
// itself is the conventional end of a program: it still executes, and
// Tick reports the program as parked in done.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	if emu.Keypad != nil {
		emu.Cpu.Keys = emu.Keypad.Keys()
	}

	op, err := emu.Operation()
	if err != nil {
		return
	}

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = op.Op == cpu.OP_GOTO && op.Addr == pc

	return
}

// TimerTick advances the delay and sound timers by one 60Hz period, and
// drives the beeper for that period.
func (emu *Emulator) TimerTick() {
	tone := emu.Cpu.SoundActive()

	emu.Cpu.TimerTick()

	if emu.Beeper != nil {
		emu.Beeper.SetTone(tone)
	}
}

// Frame presents the framebuffer, if it changed since the last frame.
func (emu *Emulator) Frame() (err error) {
	if emu.Screen == nil || !emu.Cpu.Display.Changed {
		return
	}

	err = emu.Screen.Show(emu.Cpu.Display.Bitmap())
	if err != nil {
		return
	}

	emu.Cpu.Display.Changed = false
	emu.Frames++

	return
}

func (emu *Emulator) hz() int {
	if emu.Hz <= 0 {
		return DEFAULT_HZ
	}
	return emu.Hz
}

// Step runs up to 'cycles' instructions without pacing, interleaving a
// timer tick and frame every Hz/60 instructions. Step stops early once the
// program is parked and both timers have expired.
func (emu *Emulator) Step(cycles int) (done bool, err error) {
	per_timer := max(emu.hz()/cpu.TIMER_HZ, 1)

	for range cycles {
		done, err = emu.Tick()
		if err != nil {
			return
		}
		if emu.Cpu.Ticks%per_timer == 0 {
			emu.TimerTick()
			err = emu.Frame()
			if err != nil {
				return
			}
		}
		if done && emu.Cpu.Delay == 0 && emu.Cpu.Sound == 0 {
			break
		}
	}

	err = emu.Frame()

	return
}

// Run executes the program in real time, with the instruction rate set by
// Hz and the timers and screen at 60Hz, until an error occurs or the
// context is done. A parked program keeps its timers and screen running.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	cycle := time.NewTicker(time.Second / time.Duration(emu.hz()))
	defer cycle.Stop()

	timer := time.NewTicker(time.Second / cpu.TIMER_HZ)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-cycle.C:
			_, err = emu.Tick()
			if err != nil {
				return
			}
		case <-timer.C:
			emu.TimerTick()
			err = emu.Frame()
			if err != nil {
				return
			}
		}
	}
}
