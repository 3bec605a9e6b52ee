package pipeline

import "mipssim/insts"

// HazardUnit detects data hazards and, when forwarding is enabled, selects
// the forwarding path that resolves them.
type HazardUnit struct {
	ForwardingEnabled bool
}

// NewHazardUnit returns a HazardUnit configured with the given forwarding
// mode.
func NewHazardUnit(forwardingEnabled bool) *HazardUnit {
	return &HazardUnit{ForwardingEnabled: forwardingEnabled}
}

// ForwardSource identifies where a forwarded operand comes from.
type ForwardSource uint8

const (
	ForwardNone ForwardSource = iota
	ForwardFromEXMEM
	ForwardFromMEMWB
)

// Forwarding holds the forwarding source chosen for each of EX's two
// source operands.
type Forwarding struct {
	Rs ForwardSource
	Rt ForwardSource
}

// DetectForwarding selects, for the instruction sitting in idex (about to
// execute), a forwarding source for each source register: EX/MEM wins over
// MEM/WB when both would otherwise apply, since it holds the more recent
// producer. Register 0 is never forwarded.
func (h *HazardUnit) DetectForwarding(idex *IDEXLatch, exmem *EXMEMLatch, memwb *MEMWBLatch) Forwarding {
	var fw Forwarding
	if !h.ForwardingEnabled || idex.IsBubble() {
		return fw
	}
	fw.Rs = forwardFor(idex.Inst.Rs, exmem, memwb)
	fw.Rt = forwardFor(idex.Inst.Rt, exmem, memwb)
	return fw
}

func forwardFor(src uint8, exmem *EXMEMLatch, memwb *MEMWBLatch) ForwardSource {
	if src == 0 {
		return ForwardNone
	}
	if !exmem.IsBubble() && exmem.Inst.WritesGPR() && exmem.Inst.DestReg() == src {
		return ForwardFromEXMEM
	}
	if !memwb.IsBubble() && memwb.Inst.WritesGPR() && memwb.Inst.DestReg() == src {
		return ForwardFromMEMWB
	}
	return ForwardNone
}

// Resolve returns the operand value to use given a forwarding decision: the
// original (register-file or latched) value when there is no forwarding
// producer, otherwise the producer's result.
func Resolve(src ForwardSource, original uint32, exmem *EXMEMLatch, memwb *MEMWBLatch) uint32 {
	switch src {
	case ForwardFromEXMEM:
		return exmem.ALUOutput
	case ForwardFromMEMWB:
		if memwb.Inst.IsLoad() {
			return memwb.LMD
		}
		return memwb.ALUOutput
	default:
		return original
	}
}

// DetectLoadUseHazard reports whether the load currently occupying ID/EX
// (about to execute EX this cycle) produces a value the instruction being
// decoded from IF/ID needs. This stall is required even when forwarding is
// enabled, since the loaded value is not available until after MEM.
func (h *HazardUnit) DetectLoadUseHazard(idex *IDEXLatch, decoded insts.Instruction) bool {
	if idex.IsBubble() || !idex.Inst.IsLoad() {
		return false
	}
	dst := idex.Inst.Rt
	if dst == 0 {
		return false
	}
	return dst == decoded.Rs || dst == decoded.Rt
}

// DetectRAWHazard implements the forwarding-disabled stall rule: any
// matching RAW dependency of the instruction being decoded against a
// producer still in ID/EX or EX/MEM forces a bubble. A dependency against a
// producer already in MEM/WB does not need an explicit stall here, because
// Decode reads register operands from the next-cycle register snapshot,
// which already reflects this same cycle's Writeback (Writeback runs before
// Decode within a single Cycle).
func (h *HazardUnit) DetectRAWHazard(decoded insts.Instruction, idex *IDEXLatch, exmem *EXMEMLatch) bool {
	if h.ForwardingEnabled {
		return false
	}
	return producesHazard(decoded, idex.Inst, !idex.IsBubble()) ||
		producesHazard(decoded, exmem.Inst, !exmem.IsBubble())
}

func producesHazard(consumer, producer insts.Instruction, producerValid bool) bool {
	if !producerValid || !producer.WritesGPR() {
		return false
	}
	dst := producer.DestReg()
	if dst == 0 {
		return false
	}
	return dst == consumer.Rs || dst == consumer.Rt
}
