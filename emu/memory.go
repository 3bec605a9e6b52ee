package emu

// Default region layout. The simulator only ever exercises small
// hand-assembled test programs, so the regions are sized generously rather
// than to the full 32-bit span a real memory map would reserve.
const (
	MemTextBegin uint32 = 0x00400000
	MemTextEnd   uint32 = 0x004FFFFF
	MemDataBegin uint32 = 0x10000000
	MemDataEnd   uint32 = 0x100FFFFF
)

// RegionSpec names the bounds of one memory region. Begin and End are both
// inclusive byte addresses.
type RegionSpec struct {
	Begin uint32
	End   uint32
}

type region struct {
	RegionSpec
	data []byte
}

func (r *region) contains(addr uint32) bool {
	return addr >= r.Begin && addr <= r.End
}

// Memory is an ordered list of disjoint, zero-initialized byte regions
// presented as a little-endian, word-addressable 32-bit address space.
// Addresses outside every region read as zero; writes to them are dropped.
type Memory struct {
	regions []*region
}

// NewMemory builds a Memory from the given region bounds. Overlapping specs
// are the caller's mistake; the first matching region wins on lookup.
func NewMemory(specs ...RegionSpec) *Memory {
	m := &Memory{}
	for _, s := range specs {
		size := uint64(s.End) - uint64(s.Begin) + 1
		m.regions = append(m.regions, &region{RegionSpec: s, data: make([]byte, size)})
	}
	return m
}

// DefaultRegions returns the text and data regions the REPL and loader use
// when no custom memory map is supplied.
func DefaultRegions() []RegionSpec {
	return []RegionSpec{
		{Begin: MemTextBegin, End: MemTextEnd},
		{Begin: MemDataBegin, End: MemDataEnd},
	}
}

// NewDefaultMemory builds a Memory with the text and data regions.
func NewDefaultMemory() *Memory {
	return NewMemory(DefaultRegions()...)
}

func (m *Memory) find(addr uint32) *region {
	for _, r := range m.regions {
		if r.contains(addr) {
			return r
		}
	}
	return nil
}

// Read32 loads a little-endian word at addr. An address outside every
// region, or one that would overrun its region's end, reads as zero.
func (m *Memory) Read32(addr uint32) uint32 {
	r := m.find(addr)
	if r == nil {
		return 0
	}
	off := addr - r.Begin
	if uint64(off)+4 > uint64(len(r.data)) {
		return 0
	}
	return uint32(r.data[off]) |
		uint32(r.data[off+1])<<8 |
		uint32(r.data[off+2])<<16 |
		uint32(r.data[off+3])<<24
}

// Write32 stores a little-endian word at addr. A write outside every
// region, or one that would overrun its region's end, is silently dropped.
func (m *Memory) Write32(addr uint32, v uint32) {
	r := m.find(addr)
	if r == nil {
		return
	}
	off := addr - r.Begin
	if uint64(off)+4 > uint64(len(r.data)) {
		return
	}
	r.data[off] = byte(v)
	r.data[off+1] = byte(v >> 8)
	r.data[off+2] = byte(v >> 16)
	r.data[off+3] = byte(v >> 24)
}

// Reset zeros every region's backing storage in place.
func (m *Memory) Reset() {
	for _, r := range m.regions {
		for i := range r.data {
			r.data[i] = 0
		}
	}
}

// Regions reports the configured region bounds, in order.
func (m *Memory) Regions() []RegionSpec {
	specs := make([]RegionSpec, len(m.regions))
	for i, r := range m.regions {
		specs[i] = r.RegionSpec
	}
	return specs
}
