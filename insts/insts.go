// Package insts decodes MIPS32 machine words into structured instructions.
//
// The instruction set implemented is the integer subset exercised by the
// pipeline: register-register ALU ops, immediate ALU ops, loads and stores,
// and SYSCALL. Branches, jumps, floating point, and coprocessor instructions
// are not decoded.
//
// Usage:
//
//	d := insts.NewDecoder()
//	inst := d.Decode(0x00221820) // ADD $3, $1, $2
package insts
