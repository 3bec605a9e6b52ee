package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mipssim/insts"
	"mipssim/timing/pipeline"
)

func decodeWord(word uint32) insts.Instruction {
	return insts.NewDecoder().Decode(word)
}

var _ = Describe("HazardUnit", func() {
	var addR1R2R3 insts.Instruction // ADD R3, R1, R2
	var addiR1 insts.Instruction    // ADDI R1, R0, imm
	var lwR1 insts.Instruction      // LW R1, 0(R0)

	BeforeEach(func() {
		addR1R2R3 = decodeWord(encodeR(1, 2, 3, 0, insts.FuncADD))
		addiR1 = decodeWord(encodeI(insts.OpADDI, 0, 1, 7))
		lwR1 = decodeWord(encodeI(insts.OpLW, 0, 1, 0))
	})

	Describe("DetectForwarding", func() {
		It("prefers EX/MEM over MEM/WB when both produce the same register", func() {
			h := pipeline.NewHazardUnit(true)
			idex := &pipeline.IDEXLatch{IR: 1, Inst: addR1R2R3}
			exmem := &pipeline.EXMEMLatch{IR: 1, Inst: addiR1, ALUOutput: 11}
			memwb := &pipeline.MEMWBLatch{IR: 1, Inst: addiR1, ALUOutput: 22}

			fw := h.DetectForwarding(idex, exmem, memwb)

			Expect(fw.Rs).To(Equal(pipeline.ForwardFromEXMEM))
			Expect(pipeline.Resolve(fw.Rs, 0, exmem, memwb)).To(Equal(uint32(11)))
		})

		It("falls back to MEM/WB when EX/MEM holds no matching producer", func() {
			h := pipeline.NewHazardUnit(true)
			idex := &pipeline.IDEXLatch{IR: 1, Inst: addR1R2R3}
			exmem := &pipeline.EXMEMLatch{} // bubble
			memwb := &pipeline.MEMWBLatch{IR: 1, Inst: addiR1, ALUOutput: 22}

			fw := h.DetectForwarding(idex, exmem, memwb)

			Expect(fw.Rs).To(Equal(pipeline.ForwardFromMEMWB))
			Expect(pipeline.Resolve(fw.Rs, 0, exmem, memwb)).To(Equal(uint32(22)))
		})

		It("takes the loaded value (LMD), not ALUOutput, when MEM/WB holds a load", func() {
			h := pipeline.NewHazardUnit(true)
			idex := &pipeline.IDEXLatch{IR: 1, Inst: addR1R2R3}
			exmem := &pipeline.EXMEMLatch{}
			memwb := &pipeline.MEMWBLatch{IR: 1, Inst: lwR1, ALUOutput: 0xDEAD, LMD: 0xBEEF}

			fw := h.DetectForwarding(idex, exmem, memwb)

			Expect(fw.Rs).To(Equal(pipeline.ForwardFromMEMWB))
			Expect(pipeline.Resolve(fw.Rs, 0, exmem, memwb)).To(Equal(uint32(0xBEEF)))
		})

		It("never forwards into register 0", func() {
			h := pipeline.NewHazardUnit(true)
			zeroSrc := decodeWord(encodeR(0, 2, 3, 0, insts.FuncADD)) // rs = R0
			addiR0 := decodeWord(encodeI(insts.OpADDI, 0, 0, 7))      // writes R0
			idex := &pipeline.IDEXLatch{IR: 1, Inst: zeroSrc}
			exmem := &pipeline.EXMEMLatch{IR: 1, Inst: addiR0, ALUOutput: 99}
			memwb := &pipeline.MEMWBLatch{}

			fw := h.DetectForwarding(idex, exmem, memwb)

			Expect(fw.Rs).To(Equal(pipeline.ForwardNone))
		})

		It("forwards nothing when disabled", func() {
			h := pipeline.NewHazardUnit(false)
			idex := &pipeline.IDEXLatch{IR: 1, Inst: addR1R2R3}
			exmem := &pipeline.EXMEMLatch{IR: 1, Inst: addiR1, ALUOutput: 11}
			memwb := &pipeline.MEMWBLatch{}

			fw := h.DetectForwarding(idex, exmem, memwb)

			Expect(fw.Rs).To(Equal(pipeline.ForwardNone))
		})

		It("reports no forwarding when idex itself is a bubble", func() {
			h := pipeline.NewHazardUnit(true)
			idex := &pipeline.IDEXLatch{}
			exmem := &pipeline.EXMEMLatch{IR: 1, Inst: addiR1, ALUOutput: 11}
			memwb := &pipeline.MEMWBLatch{}

			fw := h.DetectForwarding(idex, exmem, memwb)

			Expect(fw.Rs).To(Equal(pipeline.ForwardNone))
			Expect(fw.Rt).To(Equal(pipeline.ForwardNone))
		})
	})

	Describe("DetectLoadUseHazard", func() {
		It("flags a consumer whose rs matches the load's destination", func() {
			h := pipeline.NewHazardUnit(true)
			idex := &pipeline.IDEXLatch{IR: 1, Inst: lwR1} // loads into R1

			Expect(h.DetectLoadUseHazard(idex, addR1R2R3)).To(BeTrue())
		})

		It("does not flag a non-load producer", func() {
			h := pipeline.NewHazardUnit(true)
			idex := &pipeline.IDEXLatch{IR: 1, Inst: addiR1}

			Expect(h.DetectLoadUseHazard(idex, addR1R2R3)).To(BeFalse())
		})

		It("does not flag when idex is a bubble", func() {
			h := pipeline.NewHazardUnit(true)
			idex := &pipeline.IDEXLatch{}

			Expect(h.DetectLoadUseHazard(idex, addR1R2R3)).To(BeFalse())
		})

		It("does not flag an unrelated consumer", func() {
			h := pipeline.NewHazardUnit(true)
			lwR4 := decodeWord(encodeI(insts.OpLW, 0, 4, 0))
			idex := &pipeline.IDEXLatch{IR: 1, Inst: lwR4}

			Expect(h.DetectLoadUseHazard(idex, addR1R2R3)).To(BeFalse())
		})
	})

	Describe("DetectRAWHazard", func() {
		It("is always false when forwarding is enabled", func() {
			h := pipeline.NewHazardUnit(true)
			idex := &pipeline.IDEXLatch{IR: 1, Inst: addiR1}
			exmem := &pipeline.EXMEMLatch{}

			Expect(h.DetectRAWHazard(addR1R2R3, idex, exmem)).To(BeFalse())
		})

		It("flags a dependency against the producer in ID/EX when forwarding is disabled", func() {
			h := pipeline.NewHazardUnit(false)
			idex := &pipeline.IDEXLatch{IR: 1, Inst: addiR1} // writes R1
			exmem := &pipeline.EXMEMLatch{}

			Expect(h.DetectRAWHazard(addR1R2R3, idex, exmem)).To(BeTrue())
		})

		It("flags a dependency against the producer in EX/MEM when forwarding is disabled", func() {
			h := pipeline.NewHazardUnit(false)
			idex := &pipeline.IDEXLatch{}
			exmem := &pipeline.EXMEMLatch{IR: 1, Inst: addiR1}

			Expect(h.DetectRAWHazard(addR1R2R3, idex, exmem)).To(BeTrue())
		})

		It("does not flag an instruction with no matching producer", func() {
			h := pipeline.NewHazardUnit(false)
			idex := &pipeline.IDEXLatch{}
			exmem := &pipeline.EXMEMLatch{}

			Expect(h.DetectRAWHazard(addR1R2R3, idex, exmem)).To(BeFalse())
		})
	})
})
