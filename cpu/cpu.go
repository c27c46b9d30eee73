package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand"
	"strings"
	"time"
)

const (
	MEMORY_SIZE     = 4096  // Bytes of addressable memory.
	PROGRAM_START   = 0x200 // Load address of program images.
	REGISTER_COUNT  = 16    // General purpose registers.
	KEY_COUNT       = 16    // Keys on the input pad.
	OPCODE_SIZE     = 2     // Bytes per instruction word.
	FONT_GLYPH_SIZE = 5     // Bytes per built-in font glyph.
	TIMER_HZ        = 60    // Rate at which TimerTick is to be called.
	FLAG            = VF    // Register receiving carry, borrow and collision flags.
	PC_RESET        = Address(PROGRAM_START)
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":     fmt.Sprintf("%#x", MEMORY_SIZE),
	"PROGRAM_START":   fmt.Sprintf("%#x", PROGRAM_START),
	"DISPLAY_WIDTH":   fmt.Sprintf("%v", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT":  fmt.Sprintf("%v", DISPLAY_HEIGHT),
	"FONT_GLYPH_SIZE": fmt.Sprintf("%v", FONT_GLYPH_SIZE),
	"KEY_COUNT":       fmt.Sprintf("%v", KEY_COUNT),
}

// Quirks selects between behaviours that historic interpreters disagree on.
type Quirks struct {
	// ShiftUsesVy makes 8XY6/8XYE shift vy into vx, as the original
	// interpreter did. When false, vx is shifted in place and vy is ignored.
	ShiftUsesVy bool
}

// Cpu is the simulation context for the CHIP-8 machine.
type Cpu struct {
	Verbose bool   // Set to enable verbose logging.
	Quirks  Quirks // Behaviour variation points.

	Memory  [MEMORY_SIZE]byte     // Main memory.
	V       [REGISTER_COUNT]uint8 // Register bank.
	I       Address               // Index register.
	Pc      Address               // Program counter.
	Stack   Stack                 // Call stack.
	Delay   uint8                 // Delay timer.
	Sound   uint8                 // Sound timer.
	Display Display               // Framebuffer.
	Keys    [KEY_COUNT]bool       // Key pad state, true while held.
	Rand    *rand.Rand            // Source for the rnd instruction.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU in its power-on state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears memory, registers, timers, keys and the framebuffer.
// - Empties the call stack.
// - Sets the program counter to the program load address.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	clear(cpu.V[:])
	clear(cpu.Keys[:])
	cpu.I = 0
	cpu.Pc = PC_RESET
	cpu.Stack.Reset()
	cpu.Delay = 0
	cpu.Sound = 0
	cpu.Display.Clear()
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%5s: %03X\n", "pc", uint16(cpu.Pc))
	fmt.Fprintf(&sb, "%5s: %03X\n", "i", uint16(cpu.I))
	for n, val := range cpu.V {
		fmt.Fprintf(&sb, "%5s: %02X\n", Register(n).String(), val)
	}
	strval := "---"
	if top, ok := cpu.Stack.Peek(); ok {
		strval = fmt.Sprintf("%03X", uint16(top))
	}
	fmt.Fprintf(&sb, "%5s: %v (%d)\n", "stack", strval, cpu.Stack.Depth())
	fmt.Fprintf(&sb, "%5s: %02X\n", "dt", cpu.Delay)
	fmt.Fprintf(&sb, "%5s: %02X\n", "st", cpu.Sound)

	var keys []string
	for n, held := range cpu.Keys {
		if held {
			keys = append(keys, fmt.Sprintf("%X", n))
		}
	}
	fmt.Fprintf(&sb, "%5s: %v\n", "keys", strings.Join(keys, ","))

	return sb.String()
}

// read returns the memory byte at addr, wrapping at the end of memory.
func (cpu *Cpu) read(addr Address) byte {
	return cpu.Memory[addr&ADDRESS_MASK]
}

// write stores a byte at addr, wrapping at the end of memory.
func (cpu *Cpu) write(addr Address, value byte) {
	cpu.Memory[addr&ADDRESS_MASK] = value
}

// Fetch reads the instruction word at the program counter.
func (cpu *Cpu) Fetch() (word uint16, err error) {
	if int(cpu.Pc)+1 >= MEMORY_SIZE {
		err = ErrPcRange
		return
	}

	word = uint16(cpu.Memory[cpu.Pc])<<8 | uint16(cpu.Memory[cpu.Pc+1])
	return
}

// Tick executes a single fetch, decode and execute cycle.
func (cpu *Cpu) Tick() (err error) {
	word, err := cpu.Fetch()
	if err != nil {
		return
	}

	op, err := Decode(word)
	if err != nil {
		return
	}

	err = cpu.Execute(op)
	if err != nil {
		return
	}

	cpu.Ticks += 1

	return
}

// TimerTick decrements the delay and sound timers, stopping at zero.
func (cpu *Cpu) TimerTick() {
	if cpu.Delay > 0 {
		cpu.Delay--
	}
	if cpu.Sound > 0 {
		cpu.Sound--
	}
}

// SoundActive is true while the sound timer is running.
func (cpu *Cpu) SoundActive() bool {
	return cpu.Sound != 0
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(op Operation) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(op.Word()), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03x: %v", uint16(cpu.Pc), op)
	}

	this_pc := cpu.Pc
	cpu.Pc += OPCODE_SIZE

	v := &cpu.V
	x := op.X & 0xf
	y := op.Y & 0xf

	skip := func(cond bool) {
		if cond {
			cpu.Pc += OPCODE_SIZE
		}
	}

	switch op.Op {
	case OP_RCA_CALL:
		err = ErrRcaCall
	case OP_CLEAR_DISPLAY:
		cpu.Display.Clear()
	case OP_RETURN:
		ret, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		cpu.Pc = ret
	case OP_GOTO:
		cpu.Pc = op.Addr & ADDRESS_MASK
	case OP_CALL:
		cpu.Stack.Push(cpu.Pc)
		cpu.Pc = op.Addr & ADDRESS_MASK
	case OP_SKIP_EQ_IMM:
		skip(v[x] == op.Imm)
	case OP_SKIP_NEQ_IMM:
		skip(v[x] != op.Imm)
	case OP_SKIP_EQ_REG:
		skip(v[x] == v[y])
	case OP_SKIP_NEQ_REG:
		skip(v[x] != v[y])
	case OP_SET_IMM:
		v[x] = op.Imm
	case OP_ADD_IMM:
		v[x], v[FLAG] = add(v[x], op.Imm)
	case OP_SET_REG:
		v[x] = v[y]
	case OP_OR_REG:
		v[x] |= v[y]
	case OP_AND_REG:
		v[x] &= v[y]
	case OP_XOR_REG:
		v[x] ^= v[y]
	case OP_ADD_REG:
		v[x], v[FLAG] = add(v[x], v[y])
	case OP_SUB_REG:
		v[x], v[FLAG] = sub(v[x], v[y])
	case OP_REVSUB_REG:
		v[x], v[FLAG] = sub(v[y], v[x])
	case OP_RSHIFT_REG:
		src := cpu.shiftSource(x, y)
		v[x] = src >> 1
		v[FLAG] = src & 1
	case OP_LSHIFT_REG:
		src := cpu.shiftSource(x, y)
		v[x] = src << 1
		v[FLAG] = src >> 7
	case OP_SET_ADDR:
		cpu.I = op.Addr & ADDRESS_MASK
	case OP_INDEXED_JUMP:
		cpu.Pc = (op.Addr + Address(v[V0])) & ADDRESS_MASK
	case OP_RAND:
		v[x] = uint8(cpu.Rand.Intn(256)) & op.Imm
	case OP_DRAW:
		sprite := make([]byte, op.Imm&0xf)
		for n := range sprite {
			sprite[n] = cpu.read(cpu.I + Address(n))
		}
		collision := cpu.Display.Draw(int(v[x]), int(v[y]), sprite)
		v[FLAG] = 0
		if collision {
			v[FLAG] = 1
		}
	case OP_SKIP_PRESSED, OP_SKIP_UNPRESSED:
		key := int(v[x])
		if key >= KEY_COUNT {
			err = ErrKeyInvalid
			return
		}
		skip(cpu.Keys[key] == (op.Op == OP_SKIP_PRESSED))
	case OP_GET_TIMER:
		v[x] = cpu.Delay
	case OP_WAIT_PRESS:
		for key, held := range cpu.Keys {
			if held {
				v[x] = uint8(key)
				return
			}
		}
		// Nothing held, execute this instruction again next cycle.
		cpu.Pc = this_pc
	case OP_SET_TIMER:
		cpu.Delay = v[x]
	case OP_SET_SOUND_TIMER:
		cpu.Sound = v[x]
	case OP_ADD_ADDR:
		cpu.I = (cpu.I + Address(v[x])) & ADDRESS_MASK
	case OP_SPRITE_ADDR:
		if v[x] > 0xf {
			err = ErrFontInvalid
			return
		}
		cpu.I = Address(v[x]) * FONT_GLYPH_SIZE
	case OP_BCD:
		value := v[x]
		cpu.write(cpu.I+0, value/100)
		cpu.write(cpu.I+1, (value/10)%10)
		cpu.write(cpu.I+2, value%10)
	case OP_REG_DUMP:
		for n := range x + 1 {
			cpu.write(cpu.I+Address(n), v[n])
		}
	case OP_REG_LOAD:
		for n := range x + 1 {
			v[n] = cpu.read(cpu.I + Address(n))
		}
	default:
		err = ErrDecode
	}

	return
}

// shiftSource returns the register value a shift operates on.
func (cpu *Cpu) shiftSource(x, y Register) uint8 {
	if cpu.Quirks.ShiftUsesVy {
		return cpu.V[y]
	}
	return cpu.V[x]
}

// add returns a+b and the carry out.
func add(a, b uint8) (sum uint8, carry uint8) {
	total := uint16(a) + uint16(b)
	sum = uint8(total)
	carry = uint8(total >> 8)
	return
}

// sub returns a-b and 1 if no borrow occurred.
func sub(a, b uint8) (diff uint8, noborrow uint8) {
	diff = a - b
	if a >= b {
		noborrow = 1
	}
	return
}
