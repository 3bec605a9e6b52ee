package emu

import "mipssim/insts"

// LoadStoreUnit implements the MEM-stage byte, halfword, and word accesses.
// Memory itself only exposes Read32/Write32; LB/LH/SB/SH synthesize
// sub-word access with a read-modify-write over the containing word.
//
// LB and LH select their byte/halfword by shifting down from the top of the
// fetched word rather than by the address's low-order bits. This mirrors the
// reference machine's behavior exactly; it is almost certainly not what the
// ISA intends, but no instruction sequence here depends on byte-accurate
// placement within a word, so the quirk is preserved rather than silently
// "fixed". SB/SH are not affected by this quirk: they replace the byte or
// halfword addressed by addr's own low-order bits, leaving the rest of the
// containing word untouched.
type LoadStoreUnit struct {
	memory *Memory
}

// NewLoadStoreUnit returns a LoadStoreUnit backed by memory.
func NewLoadStoreUnit(memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{memory: memory}
}

// Load performs the MEM-stage read for inst at effective address addr,
// returning the value that lands in LMD.
func (lsu *LoadStoreUnit) Load(inst insts.Instruction, addr uint32) uint32 {
	word := lsu.memory.Read32(addr)
	switch inst.Opcode {
	case insts.OpLB:
		return word >> 24
	case insts.OpLH:
		return word >> 16
	default: // OpLW
		return word
	}
}

// Store performs the MEM-stage write for inst at effective address addr
// with store-data value.
func (lsu *LoadStoreUnit) Store(inst insts.Instruction, addr uint32, value uint32) {
	switch inst.Opcode {
	case insts.OpSB:
		base := addr &^ 3
		shift := (addr & 3) * 8
		old := lsu.memory.Read32(base)
		lsu.memory.Write32(base, (old&^(0xFF<<shift))|((value&0xFF)<<shift))
	case insts.OpSH:
		base := addr &^ 3
		shift := (addr & 3) * 8
		old := lsu.memory.Read32(base)
		lsu.memory.Write32(base, (old&^(0xFFFF<<shift))|((value&0xFFFF)<<shift))
	default: // OpSW
		lsu.memory.Write32(addr, value)
	}
}
