package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mipssim/emu"
	"mipssim/insts"
)

var _ = Describe("LoadStoreUnit", func() {
	var (
		memory  *emu.Memory
		lsu     *emu.LoadStoreUnit
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		memory = emu.NewDefaultMemory()
		lsu = emu.NewLoadStoreUnit(memory)
		decoder = insts.NewDecoder()
	})

	It("loads a full word with LW", func() {
		memory.Write32(emu.MemDataBegin, 0x0000_0007)
		inst := decoder.Decode(encodeI(insts.OpLW, 0, 1, 0))
		Expect(lsu.Load(inst, emu.MemDataBegin)).To(Equal(uint32(0x00000007)))
	})

	It("stores a full word with SW, leaving neighboring words untouched", func() {
		memory.Write32(emu.MemDataBegin+4, 0xFFFFFFFF)
		inst := decoder.Decode(encodeI(insts.OpSW, 0, 1, 0))
		lsu.Store(inst, emu.MemDataBegin, 0x11223344)

		Expect(memory.Read32(emu.MemDataBegin)).To(Equal(uint32(0x11223344)))
		Expect(memory.Read32(emu.MemDataBegin + 4)).To(Equal(uint32(0xFFFFFFFF)))
	})

	It("replaces only the low byte on SB, preserving the high three bytes", func() {
		memory.Write32(emu.MemDataBegin, 0xAABBCCDD)
		inst := decoder.Decode(encodeI(insts.OpSB, 0, 1, 0))

		lsu.Store(inst, emu.MemDataBegin, 0x11)

		Expect(memory.Read32(emu.MemDataBegin)).To(Equal(uint32(0xAABBCC11)))
	})

	It("replaces only the low halfword on SH, preserving the high halfword", func() {
		memory.Write32(emu.MemDataBegin, 0xAABBCCDD)
		inst := decoder.Decode(encodeI(insts.OpSH, 0, 1, 0))

		lsu.Store(inst, emu.MemDataBegin, 0x1122)

		Expect(memory.Read32(emu.MemDataBegin)).To(Equal(uint32(0xAABB1122)))
	})

	It("addresses the SB sub-lane by addr's low bits", func() {
		memory.Write32(emu.MemDataBegin, 0xAABBCCDD)
		inst := decoder.Decode(encodeI(insts.OpSB, 0, 1, 0))

		lsu.Store(inst, emu.MemDataBegin+1, 0x11)

		Expect(memory.Read32(emu.MemDataBegin)).To(Equal(uint32(0xAABB11DD)))
	})

	It("selects LB's byte from the top of the fetched word, not addr&0x3", func() {
		memory.Write32(emu.MemDataBegin, 0x12345678)
		inst := decoder.Decode(encodeI(insts.OpLB, 0, 1, 0))

		Expect(lsu.Load(inst, emu.MemDataBegin)).To(Equal(uint32(0x12)))
	})
})
