package pipeline

import (
	"mipssim/emu"
	"mipssim/insts"
)

// FetchStage implements IF: reading one word from memory at a given PC and
// flagging it if it decodes as SYSCALL, so the pipeline can suppress
// further fetches once a SYSCALL has been seen.
type FetchStage struct {
	memory  *emu.Memory
	decoder *insts.Decoder
}

// NewFetchStage returns a FetchStage reading from memory.
func NewFetchStage(memory *emu.Memory, decoder *insts.Decoder) *FetchStage {
	return &FetchStage{memory: memory, decoder: decoder}
}

// Fetch reads the word at pc and returns the latch Decode will see.
func (f *FetchStage) Fetch(pc uint32) IFIDLatch {
	word := f.memory.Read32(pc)
	inst := f.decoder.Decode(word)
	return IFIDLatch{IR: word, PC: pc, Syscall: inst.IsSyscall()}
}

// DecodeStage implements the bit-slicing half of ID; hazard detection and
// register reads live in the pipeline, which owns the architectural state.
type DecodeStage struct {
	decoder *insts.Decoder
}

// NewDecodeStage returns a DecodeStage.
func NewDecodeStage(decoder *insts.Decoder) *DecodeStage {
	return &DecodeStage{decoder: decoder}
}

// Decode bit-slices word into an Instruction.
func (d *DecodeStage) Decode(word uint32) insts.Instruction {
	return d.decoder.Decode(word)
}

// ExecuteStage implements EX: evaluating the ALU on (possibly forwarded)
// operand values.
type ExecuteStage struct {
	alu *emu.ALU
}

// NewExecuteStage returns an ExecuteStage.
func NewExecuteStage(alu *emu.ALU) *ExecuteStage {
	return &ExecuteStage{alu: alu}
}

// Execute evaluates idex's instruction with operands a, b.
func (e *ExecuteStage) Execute(idex *IDEXLatch, a, b uint32) emu.Result {
	return e.alu.Execute(idex.Inst, a, b, idex.HI, idex.LO)
}

// MemoryStage implements MEM: the single load or store access, if any.
type MemoryStage struct {
	lsu *emu.LoadStoreUnit
}

// NewMemoryStage returns a MemoryStage.
func NewMemoryStage(lsu *emu.LoadStoreUnit) *MemoryStage {
	return &MemoryStage{lsu: lsu}
}

// Access performs exmem's memory operation, if it has one, and returns the
// value that lands in LMD (zero for non-loads).
func (m *MemoryStage) Access(exmem *EXMEMLatch) uint32 {
	switch {
	case exmem.Inst.IsLoad():
		return m.lsu.Load(exmem.Inst, exmem.ALUOutput)
	case exmem.Inst.IsStore():
		m.lsu.Store(exmem.Inst, exmem.ALUOutput, exmem.B)
		return 0
	default:
		return 0
	}
}

// WritebackStage implements WB: the sole stage that commits architectural
// state. It writes GPR, HI, and LO results into next (the not-yet-committed
// snapshot) and decides whether a retiring SYSCALL should halt the run.
type WritebackStage struct {
	syscallHandler emu.SyscallHandler
}

// NewWritebackStage returns a WritebackStage backed by handler.
func NewWritebackStage(handler emu.SyscallHandler) *WritebackStage {
	return &WritebackStage{syscallHandler: handler}
}

// Writeback retires memwb into next. It reports whether an instruction was
// actually retired (false for a bubble) and whether the run should halt.
func (w *WritebackStage) Writeback(memwb *MEMWBLatch, next *emu.State) (retired, halt bool) {
	if memwb.IsBubble() {
		return false, false
	}

	if memwb.Syscall {
		return true, w.syscallHandler.Handle(memwb.SyscallR2)
	}

	if memwb.Inst.WritesGPR() {
		value := memwb.ALUOutput
		if memwb.Inst.IsLoad() {
			value = memwb.LMD
		}
		next.Write(memwb.Inst.DestReg(), value)
	}

	switch {
	case memwb.Inst.WritesHI() && memwb.Inst.WritesLO():
		next.HI = memwb.ALUOutput
		next.LO = memwb.ALUOutput2
	case memwb.Inst.WritesHI():
		next.HI = memwb.ALUOutput
	case memwb.Inst.WritesLO():
		next.LO = memwb.ALUOutput
	}

	return true, false
}
