package cpu

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Words: []string{"ld", "v0", "0x10"}, Bytes: []byte{0x60, 0x10}},
			{LineNo: 2, Addr: 0x202, Words: []string{"ld", "v1", "0x20"}, Bytes: []byte{0x61, 0x20}},
			{LineNo: 3, Addr: 0x204, Words: []string{"add", "v0", "v1"}, Bytes: []byte{0x80, 0x14}},
		},
	}

	dbg := prog.Debug(0x200)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x203)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(0x204)
	assert.NotNil(dbg.Opcode)
	assert.Equal(3, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Bytes: []byte{0x00, 0xe0}},
		},
	}

	dbg := prog.Debug(0x202)
	assert.Nil(dbg.Opcode)

	dbg = prog.Debug(0x1fe)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{}
	image, err := prog.Binary()
	assert.NoError(err)
	assert.Equal(0, len(image))

	prog.Opcodes = []Opcode{
		{Addr: 0x1fe, Bytes: []byte{0x00, 0xe0}},
	}
	_, err = prog.Binary()
	assert.ErrorIs(err, ErrProgramTooLarge)
}

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	image := []byte{
		0x60, 0x05, // ld v0, 0x05
		0xf0, 0x29, // ld f, v0
		0x51, 0x21, // (invalid)
		0x12, 0x00, // jp 0x200
		0xab, // odd byte
	}

	prog := Disassemble(image, PROGRAM_START)
	assert.Equal(5, len(prog.Opcodes))

	var lines []string
	for _, opcode := range prog.Opcodes {
		lines = append(lines, strings.Join(opcode.Words, " "))
	}
	assert.Equal([]string{
		"ld v0, 0x05",
		"ld f, v0",
		".word 0x5121",
		"jp 0x200",
		".byte 0xab",
	}, lines)

	var addrs []Address
	for addr := range prog.Codes() {
		addrs = append(addrs, addr)
	}
	assert.Equal([]Address{0x200, 0x202, 0x206}, addrs)

	out, err := prog.Binary()
	assert.NoError(err)
	assert.Equal(image, out)

	listing := slices.Collect(prog.Listing())
	assert.Equal(5, len(listing))
	assert.True(strings.HasPrefix(listing[0], "200: ld v0, 0x05"))
	assert.True(strings.HasSuffix(listing[0], "; 60 05"))
}

func TestDisassemble_Reassemble(t *testing.T) {
	assert := assert.New(t)

	source := []string{
		"  cls",
		"  ld i, 0x20a",
		"  drw v1, v2, 3",
		"  add v1, 8",
		"  jp 0x202",
		".byte 0x80 0xc0 0xe0",
	}

	image := assemble(t, source...)

	var lines []string
	for line := range Disassemble(image, PROGRAM_START).Listing() {
		code, _, _ := strings.Cut(line[5:], ";")
		lines = append(lines, code)
	}

	again := assemble(t, lines...)
	assert.Equal(image, again)
}
