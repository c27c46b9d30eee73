package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Opcode is a single assembled line: an instruction or a block of data.
type Opcode struct {
	LineNo    int      // Source line number.
	Addr      Address  // Address of the first byte.
	Words     []string // Source words, after equate expansion.
	Bytes     []byte   // Assembled bytes.
	LinkLabel string   // Label to be linked into the final word.
	Data      bool     // Set for .byte and .word directives.
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode that covers addr, if any.
func (prog *Program) Debug(addr Address) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Addr && addr < op.Addr+Address(len(op.Bytes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr - op.Addr),
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program, starting at PROGRAM_START.
func (prog *Program) Binary() (image []byte, err error) {
	for _, op := range prog.Opcodes {
		start := int(op.Addr) - PROGRAM_START
		end := start + len(op.Bytes)
		if start < 0 || end > MEMORY_SIZE-PROGRAM_START {
			err = ErrProgramTooLarge
			return
		}
		if end > len(image) {
			image = append(image, make([]byte, end-len(image))...)
		}
		copy(image[start:end], op.Bytes)
	}

	return
}

// Codes iterates over the instructions of the program.
func (prog *Program) Codes() iter.Seq2[Address, Operation] {
	return func(yield func(addr Address, op Operation) bool) {
		for _, opcode := range prog.Opcodes {
			if opcode.Data || len(opcode.Bytes) != OPCODE_SIZE {
				continue
			}
			op, err := Decode(uint16(opcode.Bytes[0])<<8 | uint16(opcode.Bytes[1]))
			if err != nil {
				continue
			}
			if !yield(opcode.Addr, op) {
				return
			}
		}
	}
}

// Disassemble converts a memory image loaded at 'origin' into a program.
// Words that do not decode are emitted as .word data, and a trailing odd
// byte as .byte data.
func Disassemble(image []byte, origin Address) (prog *Program) {
	prog = &Program{}

	for n := 0; n < len(image); n += OPCODE_SIZE {
		addr := origin + Address(n)
		opcode := Opcode{
			LineNo: len(prog.Opcodes) + 1,
			Addr:   addr,
		}
		if n+1 >= len(image) {
			opcode.Bytes = []byte{image[n]}
			opcode.Words = []string{".byte", fmt.Sprintf("0x%02x", image[n])}
			opcode.Data = true
			prog.Opcodes = append(prog.Opcodes, opcode)
			break
		}

		opcode.Bytes = []byte{image[n], image[n+1]}
		word := uint16(image[n])<<8 | uint16(image[n+1])
		op, err := Decode(word)
		if err != nil {
			opcode.Words = []string{".word", fmt.Sprintf("0x%04x", word)}
			opcode.Data = true
		} else {
			opcode.Words = []string{op.String()}
		}
		prog.Opcodes = append(prog.Opcodes, opcode)
	}

	return
}

// Listing iterates over the lines of an assembly listing of the program.
func (prog *Program) Listing() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, opcode := range prog.Opcodes {
			line := fmt.Sprintf("%03x: %-24s ; % x", uint16(opcode.Addr), strings.Join(opcode.Words, " "), opcode.Bytes)
			if !yield(line) {
				return
			}
		}
	}
}
