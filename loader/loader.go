// Package loader reads a MIPS32 program image from its text representation:
// one 32-bit instruction per line, written in hexadecimal.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mipssim/emu"
)

// Program is a sequence of 32-bit words to be placed in memory starting at
// emu.MemTextBegin, one word per 4-byte slot, in file order.
type Program struct {
	Words []uint32
}

// Size returns the number of words loaded, mirroring the reference
// machine's PROGRAM_SIZE.
func (p *Program) Size() int { return len(p.Words) }

// Load reads a program image from path. Each non-blank line must parse as a
// hexadecimal 32-bit word (an optional "0x"/"0X" prefix is accepted, though
// the reference format omits it).
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a program image from r, in the same line-oriented hex format
// as Load.
func Read(r io.Reader) (*Program, error) {
	prog := &Program{}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")

		word, err := strconv.ParseUint(text, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("loader: line %d: invalid hex word %q: %w", line, text, err)
		}
		prog.Words = append(prog.Words, uint32(word))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	return prog, nil
}

// LoadInto places prog's words into memory starting at emu.MemTextBegin,
// sequentially in 4-byte slots, exactly as the reference loader does.
func LoadInto(memory *emu.Memory, prog *Program) {
	addr := emu.MemTextBegin
	for _, word := range prog.Words {
		memory.Write32(addr, word)
		addr += 4
	}
}
