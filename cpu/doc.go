// Package cpu implements the processor and assembler for the CHIP-8 system.
//
// The CPU consists of a 4KB byte-addressed memory, sixteen 8-bit registers
// (v0-vf, with vf doubling as the carry, borrow and collision flag), a 12-bit
// index register, a program counter, an unbounded call stack, the delay and
// sound timers, a 64x32 monochrome framebuffer and a 16 key input vector.
//
// Instructions are 16-bit big-endian words. Decode turns a word into an
// Operation, and Cpu.Execute applies an Operation to the machine state.
// The timers are advanced by Cpu.TimerTick, which the caller is expected
// to invoke at 60Hz independent of the instruction rate.
//
// The assembler provides a conventional CHIP-8 assembly language, supporting
// macros, labels, equates, data directives and compile-time expression
// evaluation.
package cpu
