package pipeline

import (
	"mipssim/emu"
	"mipssim/insts"
)

// Pipeline owns the architectural state, the four inter-stage latches, and
// the five stage engines. One call to Cycle is one cycle of the simulated
// machine: every stage runs in reverse pipeline order (WB, MEM, EX, ID, IF)
// against the latches as they stood at the start of the cycle, then the
// next-state snapshot and the next latches are committed atomically.
type Pipeline struct {
	memory *emu.Memory

	fetch   *FetchStage
	decode  *DecodeStage
	execute *ExecuteStage
	mem     *MemoryStage
	wb      *WritebackStage

	hazard *HazardUnit

	current emu.State
	next    emu.State

	ifid  IFIDLatch
	idex  IDEXLatch
	exmem EXMEMLatch
	memwb MEMWBLatch

	// fetchStopped latches once IF has fetched a SYSCALL and stays set until
	// Reset; it is
	// not part of architectural state (nothing ever reads it back out) so it
	// is mutated directly rather than through the current/next commit dance.
	fetchStopped bool

	running          bool
	cycleCount       uint64
	instructionCount uint64
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithForwarding sets the initial forwarding mode. Forwarding is enabled by
// default; callers needing the no-forwarding behavior pass WithForwarding(false).
func WithForwarding(enabled bool) Option {
	return func(p *Pipeline) { p.hazard.ForwardingEnabled = enabled }
}

// WithSyscallHandler overrides the default exit-on-SYSCALL-10 handler.
func WithSyscallHandler(h emu.SyscallHandler) Option {
	return func(p *Pipeline) { p.wb = NewWritebackStage(h) }
}

// NewPipeline builds a Pipeline backed by memory, with forwarding enabled
// and the default SYSCALL handler unless overridden by opts.
func NewPipeline(memory *emu.Memory, opts ...Option) *Pipeline {
	decoder := insts.NewDecoder()
	alu := emu.NewALU()
	lsu := emu.NewLoadStoreUnit(memory)

	p := &Pipeline{
		memory:  memory,
		fetch:   NewFetchStage(memory, decoder),
		decode:  NewDecodeStage(decoder),
		execute: NewExecuteStage(alu),
		mem:     NewMemoryStage(lsu),
		wb:      NewWritebackStage(emu.NewDefaultSyscallHandler()),
		hazard:  NewHazardUnit(true),
		running: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reset clears architectural state, the four latches, and the cycle and
// instruction counters, and re-arms the run flag. It does not touch memory;
// callers that want a clean memory image too should reset the Memory
// separately and reload the program, mirroring the REPL's "re" command.
func (p *Pipeline) Reset() {
	p.current = emu.State{}
	p.next = emu.State{}
	p.ifid = IFIDLatch{}
	p.idex = IDEXLatch{}
	p.exmem = EXMEMLatch{}
	p.memwb = MEMWBLatch{}
	p.fetchStopped = false
	p.running = true
	p.cycleCount = 0
	p.instructionCount = 0
}

// SetForwarding toggles the hazard unit's forwarding mode.
func (p *Pipeline) SetForwarding(enabled bool) { p.hazard.ForwardingEnabled = enabled }

// ForwardingEnabled reports the current forwarding mode.
func (p *Pipeline) ForwardingEnabled() bool { return p.hazard.ForwardingEnabled }

// Running reports whether the run flag is still set (SYSCALL 10 has not yet
// retired).
func (p *Pipeline) Running() bool { return p.running }

// CycleCount returns the number of cycles simulated since the last Reset.
func (p *Pipeline) CycleCount() uint64 { return p.cycleCount }

// InstructionCount returns the number of non-bubble instructions retired
// through Writeback since the last Reset.
func (p *Pipeline) InstructionCount() uint64 { return p.instructionCount }

// State returns the committed architectural state snapshot.
func (p *Pipeline) State() emu.State { return p.current }

// SetPC overrides the program counter, e.g. before running a freshly loaded
// program.
func (p *Pipeline) SetPC(pc uint32) { p.current.PC = pc }

// SetReg overrides GPR r, for the REPL's "i" command.
func (p *Pipeline) SetReg(r uint8, v uint32) { p.current.Write(r, v) }

// SetHI overrides HI, for the REPL's "h" command.
func (p *Pipeline) SetHI(v uint32) { p.current.HI = v }

// SetLO overrides LO, for the REPL's "l" command.
func (p *Pipeline) SetLO(v uint32) { p.current.LO = v }

// Memory returns the memory backing this pipeline.
func (p *Pipeline) Memory() *emu.Memory { return p.memory }

// Latches bundles a snapshot of all four inter-stage latches, for the
// REPL's "sh" command.
type Latches struct {
	IFID  IFIDLatch
	IDEX  IDEXLatch
	EXMEM EXMEMLatch
	MEMWB MEMWBLatch
}

// Latches returns the current contents of the four pipeline latches.
func (p *Pipeline) Latches() Latches {
	return Latches{IFID: p.ifid, IDEX: p.idex, EXMEM: p.exmem, MEMWB: p.memwb}
}

// Run simulates cycles until the run flag clears.
func (p *Pipeline) Run() {
	for p.running {
		p.Cycle()
	}
}

// RunCycles simulates up to n cycles, stopping early if the run flag clears.
func (p *Pipeline) RunCycles(n uint64) {
	for i := uint64(0); i < n && p.running; i++ {
		p.Cycle()
	}
}

// Cycle advances the pipeline by exactly one cycle: every stage reads the
// latches as committed at the end of the previous cycle, then the new
// latches and the new architectural state are committed together.
func (p *Pipeline) Cycle() {
	if !p.running {
		return
	}

	p.next = p.current

	retired, halt := p.wb.Writeback(&p.memwb, &p.next)
	if retired {
		p.instructionCount++
	}

	nextMemwb := p.stepMemory()
	nextExmem := p.stepExecute()
	nextIdex, ifStall := p.stepDecode()
	nextIfid := p.stepFetch(ifStall)

	p.ifid = nextIfid
	p.idex = nextIdex
	p.exmem = nextExmem
	p.memwb = nextMemwb
	p.current = p.next
	p.cycleCount++

	if halt {
		p.running = false
	}
}

// stepMemory runs MEM against the committed EX/MEM latch, producing the new
// MEM/WB latch.
func (p *Pipeline) stepMemory() MEMWBLatch {
	if p.exmem.IsBubble() {
		return MEMWBLatch{}
	}
	lmd := p.mem.Access(&p.exmem)
	return MEMWBLatch{
		IR:         p.exmem.IR,
		PC:         p.exmem.PC,
		Inst:       p.exmem.Inst,
		ALUOutput:  p.exmem.ALUOutput,
		ALUOutput2: p.exmem.ALUOutput2,
		LMD:        lmd,
		Syscall:    p.exmem.Syscall,
		SyscallR2:  p.exmem.SyscallR2,
	}
}

// stepExecute runs EX against the committed ID/EX latch, resolving
// forwarded operands from the committed EX/MEM and MEM/WB latches, and
// produces the new EX/MEM latch.
func (p *Pipeline) stepExecute() EXMEMLatch {
	if p.idex.IsBubble() {
		return EXMEMLatch{}
	}

	fw := p.hazard.DetectForwarding(&p.idex, &p.exmem, &p.memwb)
	a := Resolve(fw.Rs, p.idex.A, &p.exmem, &p.memwb)
	b := Resolve(fw.Rt, p.idex.B, &p.exmem, &p.memwb)

	result := p.execute.Execute(&p.idex, a, b)

	return EXMEMLatch{
		IR:         p.idex.IR,
		PC:         p.idex.PC,
		Inst:       p.idex.Inst,
		ALUOutput:  result.Out,
		ALUOutput2: result.Out2,
		B:          b,
		Syscall:    p.idex.Syscall,
		SyscallR2:  p.idex.SyscallR2,
	}
}

// stepDecode runs ID against the committed IF/ID latch: it decodes, reads
// register operands, consults the hazard unit, and either produces the new
// ID/EX latch or, on an unresolvable hazard, a bubble plus a stall request
// for IF.
func (p *Pipeline) stepDecode() (IDEXLatch, bool) {
	if p.ifid.IsBubble() {
		return IDEXLatch{}, false
	}

	inst := p.decode.Decode(p.ifid.IR)

	if p.hazard.DetectLoadUseHazard(&p.idex, inst) || p.hazard.DetectRAWHazard(inst, &p.idex, &p.exmem) {
		return IDEXLatch{}, true
	}

	// GPR reads observe this same cycle's Writeback, which ran first in
	// Cycle: the register file is conceptually written in the first half
	// of the cycle and read in the second half, so a producer retiring
	// this cycle needs no separate forwarding path for its consumer's
	// decode. HI/LO do not get this bypass (the hazard unit tracks no
	// HI/LO dependencies): they read the snapshot committed at the *start*
	// of the cycle, so MFHI/MFLO observes a MULT/DIV result only when at
	// least three other instructions separate the two.
	idex := IDEXLatch{
		IR:      p.ifid.IR,
		PC:      p.ifid.PC,
		Inst:    inst,
		A:       p.next.Read(inst.Rs),
		B:       p.next.Read(inst.Rt),
		HI:      p.current.HI,
		LO:      p.current.LO,
		Syscall: inst.IsSyscall(),
	}
	if idex.Syscall {
		idex.SyscallR2 = p.next.Read(2)
	}
	return idex, false
}

// stepFetch runs IF against the committed PC: it fetches and decodes one
// word, advances next.PC, and produces the new IF/ID latch, unless ID
// raised a stall or a SYSCALL has already been fetched in a prior cycle.
func (p *Pipeline) stepFetch(stall bool) IFIDLatch {
	if stall {
		return p.ifid
	}
	if p.fetchStopped {
		return IFIDLatch{}
	}

	latch := p.fetch.Fetch(p.current.PC)
	p.next.PC = p.current.PC + 4
	if latch.Syscall {
		p.fetchStopped = true
	}
	return latch
}
