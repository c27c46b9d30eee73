package cpu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	table := [](struct {
		word uint16
		op   Operation
		text string
	}){
		{0x0123, Operation{Op: OP_RCA_CALL, Addr: 0x123}, "sys 0x123"},
		{0x00e0, Operation{Op: OP_CLEAR_DISPLAY}, "cls"},
		{0x00ee, Operation{Op: OP_RETURN}, "ret"},
		{0x1abc, Operation{Op: OP_GOTO, Addr: 0xabc}, "jp 0xabc"},
		{0x2abc, Operation{Op: OP_CALL, Addr: 0xabc}, "call 0xabc"},
		{0x3a12, Operation{Op: OP_SKIP_EQ_IMM, X: VA, Imm: 0x12}, "se va, 0x12"},
		{0x4a12, Operation{Op: OP_SKIP_NEQ_IMM, X: VA, Imm: 0x12}, "sne va, 0x12"},
		{0x5ab0, Operation{Op: OP_SKIP_EQ_REG, X: VA, Y: VB}, "se va, vb"},
		{0x6a12, Operation{Op: OP_SET_IMM, X: VA, Imm: 0x12}, "ld va, 0x12"},
		{0x7a12, Operation{Op: OP_ADD_IMM, X: VA, Imm: 0x12}, "add va, 0x12"},
		{0x8ab0, Operation{Op: OP_SET_REG, X: VA, Y: VB}, "ld va, vb"},
		{0x8ab1, Operation{Op: OP_OR_REG, X: VA, Y: VB}, "or va, vb"},
		{0x8ab2, Operation{Op: OP_AND_REG, X: VA, Y: VB}, "and va, vb"},
		{0x8ab3, Operation{Op: OP_XOR_REG, X: VA, Y: VB}, "xor va, vb"},
		{0x8ab4, Operation{Op: OP_ADD_REG, X: VA, Y: VB}, "add va, vb"},
		{0x8ab5, Operation{Op: OP_SUB_REG, X: VA, Y: VB}, "sub va, vb"},
		{0x8ab6, Operation{Op: OP_RSHIFT_REG, X: VA, Y: VB}, "shr va, vb"},
		{0x8ab7, Operation{Op: OP_REVSUB_REG, X: VA, Y: VB}, "subn va, vb"},
		{0x8abe, Operation{Op: OP_LSHIFT_REG, X: VA, Y: VB}, "shl va, vb"},
		{0x9ab0, Operation{Op: OP_SKIP_NEQ_REG, X: VA, Y: VB}, "sne va, vb"},
		{0xaabc, Operation{Op: OP_SET_ADDR, Addr: 0xabc}, "ld i, 0xabc"},
		{0xbabc, Operation{Op: OP_INDEXED_JUMP, Addr: 0xabc}, "jp v0, 0xabc"},
		{0xca12, Operation{Op: OP_RAND, X: VA, Imm: 0x12}, "rnd va, 0x12"},
		{0xdab5, Operation{Op: OP_DRAW, X: VA, Y: VB, Imm: 5}, "drw va, vb, 5"},
		{0xea9e, Operation{Op: OP_SKIP_PRESSED, X: VA}, "skp va"},
		{0xeaa1, Operation{Op: OP_SKIP_UNPRESSED, X: VA}, "sknp va"},
		{0xfa07, Operation{Op: OP_GET_TIMER, X: VA}, "ld va, dt"},
		{0xfa0a, Operation{Op: OP_WAIT_PRESS, X: VA}, "ld va, k"},
		{0xfa15, Operation{Op: OP_SET_TIMER, X: VA}, "ld dt, va"},
		{0xfa18, Operation{Op: OP_SET_SOUND_TIMER, X: VA}, "ld st, va"},
		{0xfa1e, Operation{Op: OP_ADD_ADDR, X: VA}, "add i, va"},
		{0xfa29, Operation{Op: OP_SPRITE_ADDR, X: VA}, "ld f, va"},
		{0xfa33, Operation{Op: OP_BCD, X: VA}, "ld b, va"},
		{0xfa55, Operation{Op: OP_REG_DUMP, X: VA}, "ld [i], va"},
		{0xfa65, Operation{Op: OP_REG_LOAD, X: VA}, "ld va, [i]"},
	}

	seen := map[Op]bool{}
	for _, entry := range table {
		t.Run(fmt.Sprintf("0x%04x", entry.word), func(t *testing.T) {
			assert := assert.New(t)

			op, err := Decode(entry.word)
			assert.NoError(err)
			assert.Equal(entry.op, op)
			assert.Equal(entry.text, op.String())
			assert.Equal(entry.word, op.Word())
		})
		seen[entry.op.Op] = true
	}

	assert.Equal(t, OP_COUNT, len(seen))
}

func TestDecode_Invalid(t *testing.T) {
	table := []uint16{
		0x5121, 0x512f,
		0x8008, 0x8009, 0x800a, 0x800b, 0x800c, 0x800d, 0x800f,
		0x9121, 0x912f,
		0xe000, 0xe19f, 0xe1a0, 0xe1ff,
		0xf000, 0xf108, 0xf1ff, 0xf166,
	}

	for _, word := range table {
		t.Run(fmt.Sprintf("0x%04x", word), func(t *testing.T) {
			assert := assert.New(t)

			op, err := Decode(word)
			assert.ErrorIs(err, ErrDecode)
			assert.ErrorIs(err, ErrOpcode(word))
			assert.Equal(Operation{}, op)
		})
	}
}

func TestDecode_Exhaustive(t *testing.T) {
	assert := assert.New(t)

	valid := 0
	for word := range 0x10000 {
		op, err := Decode(uint16(word))
		if err != nil {
			continue
		}
		valid++
		assert.Equal(uint16(word), op.Word(), "0x%04x", word)
	}

	// 0NNN 1NNN 2NNN 3XNN 4XNN 6XNN 7XNN ANNN BNNN CXNN DXYN: 11 * 4096
	// 5XY0 9XY0: 2 * 256
	// 8XYN: 9 * 256
	// EX9E EXA1: 2 * 16
	// FXNN: 9 * 16
	assert.Equal(11*4096+2*256+9*256+2*16+9*16, valid)
}

func TestOp_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("RcaCall", OP_RCA_CALL.String())
	assert.Equal("RegLoad", OP_REG_LOAD.String())
	assert.Equal("Op(35)", Op(OP_COUNT).String())
	assert.Equal("Op(-1)", Op(-1).String())
	assert.Equal("vf", VF.String())

	names := map[string]bool{}
	for op := range Op(OP_COUNT) {
		name := op.String()
		assert.NotContains(name, "Op(", "%d", int(op))
		assert.False(names[name], name)
		names[name] = true
	}
}
