// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// sysEquate returns the predefined system equates.
func sysEquate() (equ map[string]string) {
	equ = maps.Clone(_cpu_defines)
	equ["LINENO"] = "0"
	return
}

// Assembler is a single pass macro assembler for the CHIP-8 system.
//
// Instructions use the conventional mnemonics, with operands separated by
// spaces or commas:
//
//	cls                 ret                 sys ADDR
//	jp ADDR             jp v0, ADDR         call ADDR
//	se vx, BYTE|vy      sne vx, BYTE|vy     ld vx, BYTE|vy
//	add vx, BYTE|vy     add i, vx           or/and/xor vx, vy
//	sub vx, vy          subn vx, vy         shr/shl vx [, vy]
//	ld i, ADDR          rnd vx, BYTE        drw vx, vy, NIBBLE
//	skp vx              sknp vx             ld vx, dt
//	ld vx, k            ld dt, vx           ld st, vx
//	ld f, vx            ld b, vx            ld [i], vx
//	ld vx, [i]
//
// Directives are .equ NAME VALUE, .macro NAME ARGS... / .endm, .org ADDR,
// .byte VALUE... and .word VALUE... . ADDR operands may name a label.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]Address  // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	next Address // Address of the next emitted opcode.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 <= 0xffffffff && v64 >= -int64(0x80000000) {
		if v64 < 0 {
			value = uint32(0xffffffff + (v64 + 1))
		} else {
			value = uint32(v64)
		}
	}

	if invert {
		value = ^value
	}

	return
}

// fit checks that value is representable in 'width' bits, either unsigned
// or as a negative two's complement number, and truncates it.
func fit(value uint32, width int) (out uint32, err error) {
	limit := uint32(1) << width
	neg := ^uint32(0) << (width - 1)
	if value >= limit && value < neg {
		err = ErrValueRange
		return
	}
	out = value & (limit - 1)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}
	err = nil
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")
	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]Address, 16)
		}
		asm.Label[label] = asm.next
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// Local labels are unique to each expansion.
		local := fmt.Sprintf("%v_%v_", name, lineno)
		for n, line := range macro.Lines {
			mline := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, mline)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: mline, Err: err}
				err = &ErrSyntax{LineNo: mline, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: mline, Err: err}
				err = &ErrSyntax{LineNo: mline, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.next = PROGRAM_START
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = sysEquate()
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if len(op.Bytes) < 2 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
		linked := op.Bytes[len(op.Bytes)-2:]
		linked[0] |= byte((addr >> 8) & 0xf)
		linked[1] |= byte(addr & 0xff)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// Operand kinds.
type argKind int

const (
	ARG_REG   = argKind(0) // v0..vf
	ARG_VALUE = argKind(1) // number
	ARG_LABEL = argKind(2) // label, resolved at link time
	ARG_I     = argKind(3) // i
	ARG_MEM_I = argKind(4) // [i]
	ARG_DT    = argKind(5) // dt
	ARG_ST    = argKind(6) // st
	ARG_K     = argKind(7) // k
	ARG_F     = argKind(8) // f
	ARG_B     = argKind(9) // b
)

// specialMap maps the non-register operand names.
var specialMap = map[string]argKind{
	"i":   ARG_I,
	"[i]": ARG_MEM_I,
	"dt":  ARG_DT,
	"st":  ARG_ST,
	"k":   ARG_K,
	"f":   ARG_F,
	"b":   ARG_B,
}

// arg is a parsed operand.
type arg struct {
	kind  argKind
	reg   Register
	value uint32
	label string
}

// parseArg classifies a single operand word.
func (asm *Assembler) parseArg(word string) (a arg, err error) {
	lower := strings.ToLower(word)

	if kind, ok := specialMap[lower]; ok {
		a.kind = kind
		return
	}

	if len(lower) == 2 && lower[0] == 'v' {
		reg, perr := strconv.ParseUint(lower[1:], 16, 4)
		if perr == nil {
			a.kind = ARG_REG
			a.reg = Register(reg)
			return
		}
	}

	a.value, err = asm.valueOf(word)
	if err == nil {
		a.kind = ARG_VALUE
		return
	}

	if reLabel.MatchString(word) {
		err = nil
		a.kind = ARG_LABEL
		a.label = word
		return
	}

	return
}

// address resolves an address operand, noting labels for linking.
func (a arg) address() (addr Address, label string, err error) {
	switch a.kind {
	case ARG_LABEL:
		label = a.label
	case ARG_VALUE:
		var value uint32
		value, err = fit(a.value, 12)
		addr = Address(value)
	default:
		err = ErrOpcodeInvalid
	}
	return
}

// immediate resolves an operand that must be a number of 'width' bits.
func (a arg) immediate(width int) (value uint8, err error) {
	if a.kind != ARG_VALUE {
		err = ErrOpcodeInvalid
		return
	}
	v, err := fit(a.value, width)
	value = uint8(v)
	return
}

// shape tests the operand kinds.
func shape(args []arg, kinds ...argKind) bool {
	if len(args) != len(kinds) {
		return false
	}
	for n, kind := range kinds {
		if args[n].kind != kind {
			return false
		}
	}
	return true
}

// regImmOrReg maps "OP vx, BYTE" and "OP vx, vy" forms.
var regImmOrReg = map[string][2]Op{
	"se":  {OP_SKIP_EQ_IMM, OP_SKIP_EQ_REG},
	"sne": {OP_SKIP_NEQ_IMM, OP_SKIP_NEQ_REG},
	"add": {OP_ADD_IMM, OP_ADD_REG},
	"ld":  {OP_SET_IMM, OP_SET_REG},
}

// regReg maps "OP vx, vy" forms.
var regReg = map[string]Op{
	"or":   OP_OR_REG,
	"and":  OP_AND_REG,
	"xor":  OP_XOR_REG,
	"sub":  OP_SUB_REG,
	"subn": OP_REVSUB_REG,
	"shr":  OP_RSHIFT_REG,
	"shl":  OP_LSHIFT_REG,
}

// regOnly maps "OP vx" forms.
var regOnly = map[string]Op{
	"skp":  OP_SKIP_PRESSED,
	"sknp": OP_SKIP_UNPRESSED,
}

// ldSpecial maps the "ld" forms involving a special operand.
var ldSpecial = map[[2]argKind]Op{
	{ARG_REG, ARG_DT}:    OP_GET_TIMER,
	{ARG_REG, ARG_K}:     OP_WAIT_PRESS,
	{ARG_DT, ARG_REG}:    OP_SET_TIMER,
	{ARG_ST, ARG_REG}:    OP_SET_SOUND_TIMER,
	{ARG_F, ARG_REG}:     OP_SPRITE_ADDR,
	{ARG_B, ARG_REG}:     OP_BCD,
	{ARG_MEM_I, ARG_REG}: OP_REG_DUMP,
	{ARG_REG, ARG_MEM_I}: OP_REG_LOAD,
}

// emit appends an opcode at the current address.
func (asm *Assembler) emit(lineno int, words []string, data []byte, label string, isData bool) (err error) {
	if int(asm.next)+len(data) > MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}
	opcode := Opcode{LineNo: lineno, Addr: asm.next, Words: words, Bytes: data, LinkLabel: label, Data: isData}
	asm.Opcode = append(asm.Opcode, opcode)
	asm.next += Address(len(data))
	return
}

// parseData handles the .byte and .word directives.
func (asm *Assembler) parseData(words []string, lineno int) (err error) {
	width := 8
	if words[0] == ".word" {
		width = 16
	}
	if len(words) < 2 {
		err = ErrOpcodeMissing
		return
	}

	var data []byte
	var label string
	for _, word := range words[1:] {
		var a arg
		a, err = asm.parseArg(word)
		if err != nil {
			return
		}
		switch a.kind {
		case ARG_VALUE:
			var value uint32
			value, err = fit(a.value, width)
			if err != nil {
				return
			}
			if width == 16 {
				data = append(data, byte(value>>8))
			}
			data = append(data, byte(value))
		case ARG_LABEL:
			// A label may only be the sole operand of .word, as only
			// the final word of an opcode is linked.
			if width != 16 || len(words) != 2 {
				err = ErrOpcodeInvalid
				return
			}
			label = a.label
			data = append(data, 0, 0)
		default:
			err = ErrOpcodeInvalid
			return
		}
	}

	err = asm.emit(lineno, words, data, label, true)
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	mnemonic := strings.ToLower(words[0])

	switch mnemonic {
	case ".byte", ".word":
		words[0] = mnemonic
		return asm.parseData(words, lineno)
	case ".org":
		if len(words) != 2 {
			err = ErrOrgInvalid
			return
		}
		var value uint32
		value, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if value < PROGRAM_START || value >= MEMORY_SIZE {
			err = ErrOrgInvalid
			return
		}
		asm.next = Address(value)
		return
	}

	args := make([]arg, 0, len(words)-1)
	for _, word := range words[1:] {
		var a arg
		a, err = asm.parseArg(word)
		if err != nil {
			return
		}
		args = append(args, a)
	}

	var op Operation
	var label string

	switch {
	case mnemonic == "cls" || mnemonic == "ret":
		if len(args) != 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		op = MakeOp(OP_CLEAR_DISPLAY)
		if mnemonic == "ret" {
			op = MakeOp(OP_RETURN)
		}
	case mnemonic == "sys" || mnemonic == "call" || mnemonic == "jp":
		kind := map[string]Op{"sys": OP_RCA_CALL, "call": OP_CALL, "jp": OP_GOTO}[mnemonic]
		if mnemonic == "jp" && len(args) == 2 {
			if args[0].kind != ARG_REG || args[0].reg != V0 {
				err = ErrRegisterInvalid
				return
			}
			kind = OP_INDEXED_JUMP
			args = args[1:]
		}
		if len(args) == 0 {
			err = ErrOpcodeMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		var addr Address
		addr, label, err = args[0].address()
		if err != nil {
			return
		}
		op = MakeOpAddr(kind, addr)
	case mnemonic == "ld" && shape(args, ARG_I, ARG_VALUE), mnemonic == "ld" && shape(args, ARG_I, ARG_LABEL):
		var addr Address
		addr, label, err = args[1].address()
		if err != nil {
			return
		}
		op = MakeOpAddr(OP_SET_ADDR, addr)
	case mnemonic == "ld" && len(args) == 2 && ldSpecial[[2]argKind{args[0].kind, args[1].kind}] != 0:
		kind := ldSpecial[[2]argKind{args[0].kind, args[1].kind}]
		reg := args[0].reg
		if args[1].kind == ARG_REG {
			reg = args[1].reg
		}
		op = MakeOpX(kind, reg)
	case mnemonic == "add" && shape(args, ARG_I, ARG_REG):
		op = MakeOpX(OP_ADD_ADDR, args[1].reg)
	case regImmOrReg[mnemonic] != [2]Op{}:
		forms := regImmOrReg[mnemonic]
		switch {
		case shape(args, ARG_REG, ARG_REG):
			op = MakeOpXY(forms[1], args[0].reg, args[1].reg)
		case shape(args, ARG_REG, ARG_VALUE):
			var imm uint8
			imm, err = args[1].immediate(8)
			if err != nil {
				return
			}
			op = MakeOpXImm(forms[0], args[0].reg, imm)
		case len(args) < 2:
			err = ErrOpcodeMissing
			return
		case len(args) > 2:
			err = ErrOpcodeExtraArgs
			return
		default:
			err = ErrOpcodeInvalid
			return
		}
	case regReg[mnemonic] != 0:
		kind := regReg[mnemonic]
		// shr/shl vx is shorthand for shr/shl vx, vx
		if (kind == OP_RSHIFT_REG || kind == OP_LSHIFT_REG) && shape(args, ARG_REG) {
			args = append(args, args[0])
		}
		switch {
		case len(args) < 2:
			err = ErrOpcodeMissing
			return
		case len(args) > 2:
			err = ErrOpcodeExtraArgs
			return
		case !shape(args, ARG_REG, ARG_REG):
			err = ErrRegisterInvalid
			return
		}
		op = MakeOpXY(kind, args[0].reg, args[1].reg)
	case regOnly[mnemonic] != 0:
		if len(args) != 1 {
			err = ErrOpcodeMissing
			return
		}
		if args[0].kind != ARG_REG {
			err = ErrRegisterInvalid
			return
		}
		op = MakeOpX(regOnly[mnemonic], args[0].reg)
	case mnemonic == "rnd":
		if !shape(args, ARG_REG, ARG_VALUE) {
			err = ErrOpcodeInvalid
			return
		}
		var imm uint8
		imm, err = args[1].immediate(8)
		if err != nil {
			return
		}
		op = MakeOpXImm(OP_RAND, args[0].reg, imm)
	case mnemonic == "drw":
		if !shape(args, ARG_REG, ARG_REG, ARG_VALUE) {
			err = ErrOpcodeInvalid
			return
		}
		var height uint8
		height, err = args[2].immediate(4)
		if err != nil {
			return
		}
		op = MakeOpDraw(args[0].reg, args[1].reg, height)
	default:
		err = ErrInstructionInvalid
		return
	}

	word := op.Word()
	err = asm.emit(lineno, words, []byte{byte(word >> 8), byte(word)}, label, false)
	return
}
