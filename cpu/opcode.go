package cpu

import (
	"errors"
	"fmt"
)

// Address is a memory address. Only the low 12 bits are significant when
// used as a memory index.
type Address uint16

const ADDRESS_MASK = Address(0xfff) // Mask of the significant address bits.

// Register is one of the sixteen general purpose registers.
type Register uint8

const (
	V0 = Register(0x0)
	V1 = Register(0x1)
	V2 = Register(0x2)
	V3 = Register(0x3)
	V4 = Register(0x4)
	V5 = Register(0x5)
	V6 = Register(0x6)
	V7 = Register(0x7)
	V8 = Register(0x8)
	V9 = Register(0x9)
	VA = Register(0xa)
	VB = Register(0xb)
	VC = Register(0xc)
	VD = Register(0xd)
	VE = Register(0xe)
	VF = Register(0xf) // Flag register.
)

func (reg Register) String() string {
	return fmt.Sprintf("v%x", uint8(reg)&0xf)
}

// Op is the operation family of a decoded instruction.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_RCA_CALL        = Op(0)  // RcaCall
	OP_CLEAR_DISPLAY   = Op(1)  // ClearDisplay
	OP_RETURN          = Op(2)  // Return
	OP_GOTO            = Op(3)  // Goto
	OP_CALL            = Op(4)  // Call
	OP_SKIP_EQ_IMM     = Op(5)  // SkipEqImm
	OP_SKIP_NEQ_IMM    = Op(6)  // SkipNeqImm
	OP_SKIP_EQ_REG     = Op(7)  // SkipEqReg
	OP_SET_IMM         = Op(8)  // SetImm
	OP_ADD_IMM         = Op(9)  // AddImm
	OP_SET_REG         = Op(10) // SetReg
	OP_OR_REG          = Op(11) // OrReg
	OP_AND_REG         = Op(12) // AndReg
	OP_XOR_REG         = Op(13) // XorReg
	OP_ADD_REG         = Op(14) // AddReg
	OP_SUB_REG         = Op(15) // SubReg
	OP_RSHIFT_REG      = Op(16) // RShiftReg
	OP_REVSUB_REG      = Op(17) // RevSubReg
	OP_LSHIFT_REG      = Op(18) // LShiftReg
	OP_SKIP_NEQ_REG    = Op(19) // SkipNeqReg
	OP_SET_ADDR        = Op(20) // SetAddr
	OP_INDEXED_JUMP    = Op(21) // IndexedJump
	OP_RAND            = Op(22) // Rand
	OP_DRAW            = Op(23) // Draw
	OP_SKIP_PRESSED    = Op(24) // SkipPressed
	OP_SKIP_UNPRESSED  = Op(25) // SkipUnpressed
	OP_GET_TIMER       = Op(26) // GetTimer
	OP_WAIT_PRESS      = Op(27) // WaitPress
	OP_SET_TIMER       = Op(28) // SetTimer
	OP_SET_SOUND_TIMER = Op(29) // SetSoundTimer
	OP_ADD_ADDR        = Op(30) // AddAddr
	OP_SPRITE_ADDR     = Op(31) // SpriteAddr
	OP_BCD             = Op(32) // BCD
	OP_REG_DUMP        = Op(33) // RegDump
	OP_REG_LOAD        = Op(34) // RegLoad
)

// OP_COUNT is the number of operation families.
const OP_COUNT = 35

// aluOp maps the low nibble of an 8XYN word.
var aluOp = map[uint16]Op{
	0x0: OP_SET_REG,
	0x1: OP_OR_REG,
	0x2: OP_AND_REG,
	0x3: OP_XOR_REG,
	0x4: OP_ADD_REG,
	0x5: OP_SUB_REG,
	0x6: OP_RSHIFT_REG,
	0x7: OP_REVSUB_REG,
	0xe: OP_LSHIFT_REG,
}

// miscOp maps the low byte of an FXNN word.
var miscOp = map[uint16]Op{
	0x07: OP_GET_TIMER,
	0x0a: OP_WAIT_PRESS,
	0x15: OP_SET_TIMER,
	0x18: OP_SET_SOUND_TIMER,
	0x1e: OP_ADD_ADDR,
	0x29: OP_SPRITE_ADDR,
	0x33: OP_BCD,
	0x55: OP_REG_DUMP,
	0x65: OP_REG_LOAD,
}

// Operation is a decoded instruction. Only the operands used by its Op
// family are meaningful; the rest are zero.
type Operation struct {
	Op   Op
	X    Register // First register operand.
	Y    Register // Second register operand.
	Imm  uint8    // Immediate byte, random mask, or sprite height.
	Addr Address  // Target address.
}

// MakeOp creates an operation without operands.
func MakeOp(op Op) Operation {
	return Operation{Op: op}
}

// MakeOpAddr creates an operation taking a 12-bit address.
func MakeOpAddr(op Op, addr Address) Operation {
	return Operation{Op: op, Addr: addr & ADDRESS_MASK}
}

// MakeOpX creates an operation taking a single register.
func MakeOpX(op Op, x Register) Operation {
	return Operation{Op: op, X: x & 0xf}
}

// MakeOpXImm creates an operation taking a register and an immediate byte.
func MakeOpXImm(op Op, x Register, imm uint8) Operation {
	return Operation{Op: op, X: x & 0xf, Imm: imm}
}

// MakeOpXY creates an operation taking two registers.
func MakeOpXY(op Op, x, y Register) Operation {
	return Operation{Op: op, X: x & 0xf, Y: y & 0xf}
}

// MakeOpDraw creates a draw of a sprite 'height' rows tall.
func MakeOpDraw(x, y Register, height uint8) Operation {
	return Operation{Op: OP_DRAW, X: x & 0xf, Y: y & 0xf, Imm: height & 0xf}
}

// Decode decodes a big-endian instruction word.
func Decode(word uint16) (op Operation, err error) {
	n1 := (word >> 12) & 0xf
	x := Register((word >> 8) & 0xf)
	y := Register((word >> 4) & 0xf)
	n4 := word & 0xf
	nn := uint8(word & 0xff)
	nnn := Address(word & 0xfff)

	switch n1 {
	case 0x0:
		switch nnn {
		case 0x0e0:
			op = MakeOp(OP_CLEAR_DISPLAY)
		case 0x0ee:
			op = MakeOp(OP_RETURN)
		default:
			op = MakeOpAddr(OP_RCA_CALL, nnn)
		}
	case 0x1:
		op = MakeOpAddr(OP_GOTO, nnn)
	case 0x2:
		op = MakeOpAddr(OP_CALL, nnn)
	case 0x3:
		op = MakeOpXImm(OP_SKIP_EQ_IMM, x, nn)
	case 0x4:
		op = MakeOpXImm(OP_SKIP_NEQ_IMM, x, nn)
	case 0x5, 0x9:
		if n4 != 0 {
			err = ErrDecode
			break
		}
		if n1 == 0x5 {
			op = MakeOpXY(OP_SKIP_EQ_REG, x, y)
		} else {
			op = MakeOpXY(OP_SKIP_NEQ_REG, x, y)
		}
	case 0x6:
		op = MakeOpXImm(OP_SET_IMM, x, nn)
	case 0x7:
		op = MakeOpXImm(OP_ADD_IMM, x, nn)
	case 0x8:
		alu, ok := aluOp[n4]
		if !ok {
			err = ErrDecode
			break
		}
		op = MakeOpXY(alu, x, y)
	case 0xa:
		op = MakeOpAddr(OP_SET_ADDR, nnn)
	case 0xb:
		op = MakeOpAddr(OP_INDEXED_JUMP, nnn)
	case 0xc:
		op = MakeOpXImm(OP_RAND, x, nn)
	case 0xd:
		op = MakeOpDraw(x, y, uint8(n4))
	case 0xe:
		switch nn {
		case 0x9e:
			op = MakeOpX(OP_SKIP_PRESSED, x)
		case 0xa1:
			op = MakeOpX(OP_SKIP_UNPRESSED, x)
		default:
			err = ErrDecode
		}
	case 0xf:
		misc, ok := miscOp[uint16(nn)]
		if !ok {
			err = ErrDecode
			break
		}
		op = MakeOpX(misc, x)
	}

	if err != nil {
		err = errors.Join(ErrOpcode(word), ErrDecode)
		op = Operation{}
	}

	return
}

// Word encodes the operation back into its instruction word.
func (op Operation) Word() (word uint16) {
	x := uint16(op.X&0xf) << 8
	y := uint16(op.Y&0xf) << 4
	nn := uint16(op.Imm)
	nnn := uint16(op.Addr & ADDRESS_MASK)

	switch op.Op {
	case OP_RCA_CALL:
		word = 0x0000 | nnn
	case OP_CLEAR_DISPLAY:
		word = 0x00e0
	case OP_RETURN:
		word = 0x00ee
	case OP_GOTO:
		word = 0x1000 | nnn
	case OP_CALL:
		word = 0x2000 | nnn
	case OP_SKIP_EQ_IMM:
		word = 0x3000 | x | nn
	case OP_SKIP_NEQ_IMM:
		word = 0x4000 | x | nn
	case OP_SKIP_EQ_REG:
		word = 0x5000 | x | y
	case OP_SET_IMM:
		word = 0x6000 | x | nn
	case OP_ADD_IMM:
		word = 0x7000 | x | nn
	case OP_SET_REG, OP_OR_REG, OP_AND_REG, OP_XOR_REG, OP_ADD_REG,
		OP_SUB_REG, OP_RSHIFT_REG, OP_REVSUB_REG, OP_LSHIFT_REG:
		for n4, alu := range aluOp {
			if alu == op.Op {
				word = 0x8000 | x | y | n4
			}
		}
	case OP_SKIP_NEQ_REG:
		word = 0x9000 | x | y
	case OP_SET_ADDR:
		word = 0xa000 | nnn
	case OP_INDEXED_JUMP:
		word = 0xb000 | nnn
	case OP_RAND:
		word = 0xc000 | x | nn
	case OP_DRAW:
		word = 0xd000 | x | y | (nn & 0xf)
	case OP_SKIP_PRESSED:
		word = 0xe09e | x
	case OP_SKIP_UNPRESSED:
		word = 0xe0a1 | x
	default:
		for low, misc := range miscOp {
			if misc == op.Op {
				word = 0xf000 | x | low
			}
		}
	}

	return
}

// String returns the assembly language representation of this operation.
func (op Operation) String() (out string) {
	switch op.Op {
	case OP_RCA_CALL:
		out = fmt.Sprintf("sys 0x%03x", uint16(op.Addr))
	case OP_CLEAR_DISPLAY:
		out = "cls"
	case OP_RETURN:
		out = "ret"
	case OP_GOTO:
		out = fmt.Sprintf("jp 0x%03x", uint16(op.Addr))
	case OP_CALL:
		out = fmt.Sprintf("call 0x%03x", uint16(op.Addr))
	case OP_SKIP_EQ_IMM:
		out = fmt.Sprintf("se %v, 0x%02x", op.X, op.Imm)
	case OP_SKIP_NEQ_IMM:
		out = fmt.Sprintf("sne %v, 0x%02x", op.X, op.Imm)
	case OP_SKIP_EQ_REG:
		out = fmt.Sprintf("se %v, %v", op.X, op.Y)
	case OP_SET_IMM:
		out = fmt.Sprintf("ld %v, 0x%02x", op.X, op.Imm)
	case OP_ADD_IMM:
		out = fmt.Sprintf("add %v, 0x%02x", op.X, op.Imm)
	case OP_SET_REG:
		out = fmt.Sprintf("ld %v, %v", op.X, op.Y)
	case OP_OR_REG:
		out = fmt.Sprintf("or %v, %v", op.X, op.Y)
	case OP_AND_REG:
		out = fmt.Sprintf("and %v, %v", op.X, op.Y)
	case OP_XOR_REG:
		out = fmt.Sprintf("xor %v, %v", op.X, op.Y)
	case OP_ADD_REG:
		out = fmt.Sprintf("add %v, %v", op.X, op.Y)
	case OP_SUB_REG:
		out = fmt.Sprintf("sub %v, %v", op.X, op.Y)
	case OP_RSHIFT_REG:
		out = fmt.Sprintf("shr %v, %v", op.X, op.Y)
	case OP_REVSUB_REG:
		out = fmt.Sprintf("subn %v, %v", op.X, op.Y)
	case OP_LSHIFT_REG:
		out = fmt.Sprintf("shl %v, %v", op.X, op.Y)
	case OP_SKIP_NEQ_REG:
		out = fmt.Sprintf("sne %v, %v", op.X, op.Y)
	case OP_SET_ADDR:
		out = fmt.Sprintf("ld i, 0x%03x", uint16(op.Addr))
	case OP_INDEXED_JUMP:
		out = fmt.Sprintf("jp v0, 0x%03x", uint16(op.Addr))
	case OP_RAND:
		out = fmt.Sprintf("rnd %v, 0x%02x", op.X, op.Imm)
	case OP_DRAW:
		out = fmt.Sprintf("drw %v, %v, %d", op.X, op.Y, op.Imm)
	case OP_SKIP_PRESSED:
		out = fmt.Sprintf("skp %v", op.X)
	case OP_SKIP_UNPRESSED:
		out = fmt.Sprintf("sknp %v", op.X)
	case OP_GET_TIMER:
		out = fmt.Sprintf("ld %v, dt", op.X)
	case OP_WAIT_PRESS:
		out = fmt.Sprintf("ld %v, k", op.X)
	case OP_SET_TIMER:
		out = fmt.Sprintf("ld dt, %v", op.X)
	case OP_SET_SOUND_TIMER:
		out = fmt.Sprintf("ld st, %v", op.X)
	case OP_ADD_ADDR:
		out = fmt.Sprintf("add i, %v", op.X)
	case OP_SPRITE_ADDR:
		out = fmt.Sprintf("ld f, %v", op.X)
	case OP_BCD:
		out = fmt.Sprintf("ld b, %v", op.X)
	case OP_REG_DUMP:
		out = fmt.Sprintf("ld [i], %v", op.X)
	case OP_REG_LOAD:
		out = fmt.Sprintf("ld %v, [i]", op.X)
	default:
		out = op.Op.String()
	}

	return
}
