// Package disasm formats decoded MIPS32 instructions as assembler text, for
// the REPL's "p" command.
package disasm

import (
	"fmt"

	"mipssim/insts"
)

// Format renders inst in the operand order the reference disassembler uses:
// R-type ALU ops as "mnemonic $rd, $rs, $rt", shifts as "mnemonic $rd, $rt,
// shamt", I-type arithmetic as "mnemonic $rt, $rs, imm", loads/stores as
// "mnemonic $rt, imm($rs)", and SYSCALL with no operands.
func Format(inst insts.Instruction) string {
	if inst.IsRType() {
		return formatR(inst)
	}
	return formatI(inst)
}

func formatR(inst insts.Instruction) string {
	m := inst.Mnemonic()
	switch inst.Function {
	case insts.FuncSLL, insts.FuncSRL, insts.FuncSRA:
		if inst.Word == 0 {
			return "nop"
		}
		return fmt.Sprintf("%s $%d, $%d, 0x%x", m, inst.Rd, inst.Rt, inst.Shamt)
	case insts.FuncSYSCALL:
		return "syscall"
	case insts.FuncMFHI, insts.FuncMFLO:
		return fmt.Sprintf("%s $%d", m, inst.Rd)
	case insts.FuncMTHI, insts.FuncMTLO:
		return fmt.Sprintf("%s $%d", m, inst.Rs)
	case insts.FuncMULT, insts.FuncMULTU, insts.FuncDIV, insts.FuncDIVU:
		return fmt.Sprintf("%s $%d, $%d", m, inst.Rs, inst.Rt)
	case insts.FuncADD, insts.FuncADDU, insts.FuncSUB, insts.FuncSUBU,
		insts.FuncAND, insts.FuncOR, insts.FuncXOR, insts.FuncNOR, insts.FuncSLT:
		return fmt.Sprintf("%s $%d, $%d, $%d", m, inst.Rd, inst.Rs, inst.Rt)
	default:
		return "unknown"
	}
}

func formatI(inst insts.Instruction) string {
	m := inst.Mnemonic()
	switch inst.Opcode {
	case insts.OpLUI:
		return fmt.Sprintf("%s $%d, 0x%x", m, inst.Rt, inst.Imm16)
	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpSB, insts.OpSH, insts.OpSW:
		return fmt.Sprintf("%s $%d, 0x%x($%d)", m, inst.Rt, inst.Imm16, inst.Rs)
	case insts.OpADDI, insts.OpADDIU, insts.OpSLTI, insts.OpANDI, insts.OpORI, insts.OpXORI:
		return fmt.Sprintf("%s $%d, $%d, 0x%x", m, inst.Rt, inst.Rs, inst.Imm16)
	default:
		return "unknown"
	}
}
