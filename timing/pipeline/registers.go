// Package pipeline implements the cycle-accurate 5-stage in-order MIPS32
// pipeline: Fetch, Decode, Execute, Memory, Writeback, with hazard
// detection and data forwarding between them.
package pipeline

import "mipssim/insts"

// A bubble is represented as a latch whose IR, PC, and Syscall are all
// zero, rather than as a separate tagged state. Since MEM_TEXT_BEGIN is
// never zero, a zero PC can only mean "nothing was ever latched here".

// IFIDLatch holds what Fetch hands to Decode.
type IFIDLatch struct {
	IR      uint32
	PC      uint32
	Syscall bool
}

// IsBubble reports whether this latch carries no instruction.
func (l IFIDLatch) IsBubble() bool { return l.IR == 0 && l.PC == 0 && !l.Syscall }

// Clear turns the latch into a bubble.
func (l *IFIDLatch) Clear() { *l = IFIDLatch{} }

// IDEXLatch holds what Decode hands to Execute.
type IDEXLatch struct {
	IR        uint32
	PC        uint32
	Inst      insts.Instruction
	A, B      uint32 // register values read at decode time; EX may forward over them
	HI, LO    uint32 // HI/LO snapshot, for MFHI/MFLO
	Syscall   bool
	SyscallR2 uint32
}

// IsBubble reports whether this latch carries no instruction.
func (l IDEXLatch) IsBubble() bool { return l.IR == 0 && l.PC == 0 && !l.Syscall }

// Clear turns the latch into a bubble.
func (l *IDEXLatch) Clear() { *l = IDEXLatch{} }

// EXMEMLatch holds what Execute hands to Memory.
type EXMEMLatch struct {
	IR         uint32
	PC         uint32
	Inst       insts.Instruction
	ALUOutput  uint32
	ALUOutput2 uint32
	B          uint32 // store data
	Syscall    bool
	SyscallR2  uint32
}

// IsBubble reports whether this latch carries no instruction.
func (l EXMEMLatch) IsBubble() bool { return l.IR == 0 && l.PC == 0 && !l.Syscall }

// Clear turns the latch into a bubble.
func (l *EXMEMLatch) Clear() { *l = EXMEMLatch{} }

// MEMWBLatch holds what Memory hands to Writeback.
type MEMWBLatch struct {
	IR         uint32
	PC         uint32
	Inst       insts.Instruction
	ALUOutput  uint32
	ALUOutput2 uint32
	LMD        uint32
	Syscall    bool
	SyscallR2  uint32
}

// IsBubble reports whether this latch carries no instruction.
func (l MEMWBLatch) IsBubble() bool { return l.IR == 0 && l.PC == 0 && !l.Syscall }

// Clear turns the latch into a bubble.
func (l *MEMWBLatch) Clear() { *l = MEMWBLatch{} }
