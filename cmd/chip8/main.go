// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdio "io"
	"log"
	"math/rand"
	"os"
	"os/signal"

	"github.com/bradleyjkemp/memviz"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/translate"
)

func main() {
	var compile string
	var output string
	var disasm bool
	var verbose bool
	var hz int
	var shiftVy bool
	var wavFile string
	var seed int64
	var stats string
	var memvizFile string
	var cycles int
	var border bool
	var defines bool
	var lang string

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&output, "o", "", "Write the assembled image, do not execute")
	flag.BoolVar(&disasm, "d", false, "Disassemble, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.IntVar(&hz, "hz", emulator.DEFAULT_HZ, "Instructions per second")
	flag.BoolVar(&shiftVy, "shift-vy", false, "Shifts read vy, as the original interpreter")
	flag.StringVar(&wavFile, "wav", "", "Record the tone to a .wav file")
	flag.Int64Var(&seed, "seed", 0, "Random seed, if non-zero")
	flag.StringVar(&stats, "statsview", "", "Serve runtime statistics on this address")
	flag.StringVar(&memvizFile, "memviz", "", "Write a graphviz dump of the machine at exit")
	flag.IntVar(&cycles, "cycles", 0, "Run headless for this many instructions")
	flag.BoolVar(&border, "border", true, "Draw a border around the screen")
	flag.BoolVar(&defines, "defines", false, "List the assembler predefines")
	flag.StringVar(&lang, "lang", "", "Language tag for messages, if not the host locale")

	flag.Parse()

	if len(lang) != 0 {
		err := translate.Use(lang)
		if err != nil {
			log.Fatalf("%v: -lang %v: %v", os.Args[0], lang, err)
		}
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Hz = hz
	emu.Cpu.Quirks.ShiftUsesVy = shiftVy
	if seed != 0 {
		emu.Cpu.Rand = rand.New(rand.NewSource(seed))
	}

	if defines {
		for key, value := range internal.Sorted2(emu.Defines()) {
			fmt.Printf(".equ %v %v\n", key, value)
		}
		return
	}

	var prog *cpu.Program

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		if len(output) != 0 {
			image, err := prog.Binary()
			if err != nil {
				log.Fatalf("%v: %v", compile, err)
			}
			err = os.WriteFile(output, image, 0o644)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
			return
		}
	}

	if prog == nil && flag.NArg() == 0 {
		log.Fatalf("%v: No program image given", os.Args[0])
	}

	// Load the images, or the assembled program.
	if prog != nil {
		if flag.NArg() != 0 {
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
		}
		err := emu.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	} else {
		var images []stdio.Reader
		for _, path := range flag.Args() {
			inf, err := os.Open(path)
			if err != nil {
				log.Fatalf("%v: %v", path, err)
			}
			defer inf.Close()
			images = append(images, inf)
		}
		err := emu.Load(images...)
		if err != nil {
			log.Fatalf("%v: %v", flag.Arg(0), err)
		}
	}

	if disasm {
		if prog == nil {
			image := emu.Cpu.Memory[cpu.PROGRAM_START:]
			size := len(image)
			for size > 0 && image[size-1] == 0 {
				size--
			}
			prog = cpu.Disassemble(image[:size], cpu.PROGRAM_START)
		}
		for line := range prog.Listing() {
			fmt.Println(line)
		}
		return
	}

	if len(stats) != 0 {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(stats))
			mgr := statsview.New()
			mgr.Start()
		}()
		log.Printf("stats server available at http://%s/debug/statsview", stats)
	}

	var beepers io.Beepers
	if len(wavFile) != 0 {
		ouf, err := os.Create(wavFile)
		if err != nil {
			log.Fatalf("%v: %v", wavFile, err)
		}
		defer ouf.Close()
		wr := io.NewWavRecorder(ouf, io.WAV_RATE)
		defer func() {
			err := wr.Close()
			if err != nil {
				log.Printf("%v: %v", wavFile, err)
			}
		}()
		beepers = append(beepers, wr)
	}

	var err error
	if cycles > 0 {
		emu.Beeper = beepers
		_, err = emu.Step(cycles)
		fmt.Print(emu.Cpu.Display.String())
		fmt.Print(emu.Cpu.String())
	} else {
		err = runInteractive(emu, beepers, border)
	}

	if len(memvizFile) != 0 {
		ouf, ferr := os.Create(memvizFile)
		if ferr != nil {
			log.Fatalf("%v: %v", memvizFile, ferr)
		}
		memviz.Map(ouf, emu.Cpu)
		ouf.Close()
	}

	if err != nil {
		log.Printf("%v", emu.Cpu.String())
		log.Fatal(err)
	}
}

// runInteractive runs the emulator on the terminal until an error occurs,
// escape is pressed, or an interrupt arrives.
func runInteractive(emu *emulator.Emulator, beepers io.Beepers, border bool) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tty, err := io.OpenTerminal(os.Stdin)
	if err != nil {
		return
	}
	defer tty.Restore()

	screen := &io.TermScreen{Output: os.Stdout, Border: border}
	err = screen.CheckSize()
	if err != nil {
		return
	}
	defer screen.Close()

	keypad := &io.StreamKeypad{Verbose: emu.Verbose, Input: os.Stdin, Quit: cancel}
	keypad.Start()

	emu.Keypad = keypad
	emu.Screen = screen
	emu.Beeper = append(beepers, &io.Bell{Output: os.Stdout})

	err = emu.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	return
}
