package emu

import "mipssim/insts"

// ALU implements the EX-stage arithmetic and logic operations. It is a
// pure function of its arguments: the pipeline, not the ALU, is responsible
// for resolving forwarding and supplying the right operand values.
type ALU struct{}

// NewALU returns a stateless ALU.
func NewALU() *ALU { return &ALU{} }

// Result bundles everything EX can produce for one instruction.
type Result struct {
	Out  uint32 // ALUOutput: effective address for loads/stores, result for arithmetic.
	Out2 uint32 // ALUOutput2: only meaningful for MULT/MULTU/DIV/DIVU.
}

// Execute evaluates inst given its (possibly forwarded) operand values a
// (from Rs) and b (from Rt), and the HI/LO snapshot captured at decode time.
func (alu *ALU) Execute(inst insts.Instruction, a, b, hi, lo uint32) Result {
	if inst.IsRType() {
		return alu.executeR(inst, a, b, hi, lo)
	}
	return alu.executeI(inst, a)
}

func (alu *ALU) executeR(inst insts.Instruction, a, b, hi, lo uint32) Result {
	switch inst.Function {
	case insts.FuncSLL:
		return Result{Out: b << inst.Shamt}
	case insts.FuncSRL:
		return Result{Out: b >> inst.Shamt}
	case insts.FuncSRA:
		return Result{Out: uint32(int32(b) >> inst.Shamt)}
	case insts.FuncADD, insts.FuncADDU:
		return Result{Out: a + b}
	case insts.FuncSUB, insts.FuncSUBU:
		return Result{Out: a - b}
	case insts.FuncAND:
		return Result{Out: a & b}
	case insts.FuncOR:
		return Result{Out: a | b}
	case insts.FuncXOR:
		return Result{Out: a ^ b}
	case insts.FuncNOR:
		return Result{Out: ^(a | b)}
	case insts.FuncSLT:
		if int32(a) < int32(b) {
			return Result{Out: 1}
		}
		return Result{Out: 0}
	case insts.FuncMFHI:
		return Result{Out: hi}
	case insts.FuncMFLO:
		return Result{Out: lo}
	case insts.FuncMTHI, insts.FuncMTLO:
		// WB routes Out to HI or LO depending on which of these it was.
		return Result{Out: a}
	case insts.FuncMULT:
		p := uint64(int64(int32(a)) * int64(int32(b)))
		return Result{Out: uint32(p >> 32), Out2: uint32(p)}
	case insts.FuncMULTU:
		p := uint64(a) * uint64(b)
		return Result{Out: uint32(p >> 32), Out2: uint32(p)}
	case insts.FuncDIV:
		if b == 0 {
			// Division by zero is a no-op: HI/LO pass through unchanged
			// rather than retiring a zero result.
			return Result{Out: hi, Out2: lo}
		}
		if a == 0x80000000 && b == 0xFFFFFFFF {
			// MinInt32 / -1 overflows; the quotient wraps to MinInt32 with
			// zero remainder, which is also what a native divider yields.
			return Result{Out: 0, Out2: a}
		}
		// WB routes Out to HI, Out2 to LO: HI=remainder, LO=quotient.
		return Result{Out: uint32(int32(a) % int32(b)), Out2: uint32(int32(a) / int32(b))}
	case insts.FuncDIVU:
		if b == 0 {
			return Result{Out: hi, Out2: lo}
		}
		return Result{Out: a % b, Out2: a / b}
	default:
		// SYSCALL and anything else: no ALU effect.
		return Result{}
	}
}

func (alu *ALU) executeI(inst insts.Instruction, a uint32) Result {
	switch inst.Opcode {
	case insts.OpADDI, insts.OpADDIU:
		return Result{Out: a + inst.ImmSext}
	case insts.OpSLTI:
		if int32(a) < int32(inst.ImmSext) {
			return Result{Out: 1}
		}
		return Result{Out: 0}
	case insts.OpANDI:
		return Result{Out: a & inst.Imm16}
	case insts.OpORI:
		return Result{Out: a | inst.Imm16}
	case insts.OpXORI:
		return Result{Out: a ^ inst.Imm16}
	case insts.OpLUI:
		return Result{Out: inst.Imm16 << 16}
	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpSB, insts.OpSH, insts.OpSW:
		return Result{Out: a + inst.ImmSext}
	default:
		return Result{}
	}
}
