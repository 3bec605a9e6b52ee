// Package main provides the entry point for mipssim, an interactive
// cycle-accurate simulator for a MIPS32 integer subset running on a
// classic five-stage in-order pipeline.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mipssim/disasm"
	"mipssim/emu"
	"mipssim/insts"
	"mipssim/loader"
	"mipssim/timing/pipeline"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mipssim <program>",
		Short: "Cycle-accurate MIPS32 pipeline simulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(args[0])
		},
		SilenceUsage: true,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const helpText = `mipssim commands:
  s              simulate to completion
  sh             show the four pipeline latches
  r <n>          simulate n cycles
  rd             dump registers, PC, and counters
  re             reset state and reload the program
  m <lo> <hi>    dump memory from lo to hi (hex, inclusive)
  i <reg> <val>  set GPR reg to val
  h <val>        set HI
  l <val>        set LO
  p              disassemble the loaded program
  f <0|1>        disable/enable forwarding
  ?              this help
  q              quit
`

// session bundles everything the REPL needs to reload a program on "re"
// without re-parsing the command line.
type session struct {
	path string
	prog *loader.Program
	mem  *emu.Memory
	pipe *pipeline.Pipeline
}

func newSession(path string) (*session, error) {
	prog, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	s := &session{path: path, prog: prog}
	s.load()
	return s, nil
}

// load (re)builds memory and the pipeline from the session's program,
// mirroring what the reference REPL's "re" command does.
func (s *session) load() {
	s.mem = emu.NewDefaultMemory()
	loader.LoadInto(s.mem, s.prog)
	s.pipe = pipeline.NewPipeline(s.mem)
	s.pipe.SetPC(emu.MemTextBegin)
}

func runREPL(path string) error {
	sess, err := newSession(path)
	if err != nil {
		return fmt.Errorf("mipssim: %w", err)
	}

	fmt.Printf("Loaded %d words from %s\n\n", sess.prog.Size(), path)
	fmt.Print(helpText)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("mipssim> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if dispatch(sess, fields) {
			return nil
		}
	}
}

// dispatch runs one REPL command and reports whether the REPL should exit.
func dispatch(sess *session, fields []string) bool {
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch {
	case cmd == "q" || cmd == "quit":
		return true
	case cmd == "?" || cmd == "help":
		fmt.Print(helpText)
	case cmd == "s":
		sess.pipe.Run()
		fmt.Println("Simulation finished.")
	case strings.HasPrefix(cmd, "sh"):
		showPipeline(sess.pipe)
	case strings.HasPrefix(cmd, "rd"):
		dumpRegisters(sess.pipe)
	case strings.HasPrefix(cmd, "re"):
		sess.load()
		fmt.Println("State reset and program reloaded.")
	case cmd == "r":
		runCycles(sess.pipe, args)
	case cmd == "m":
		dumpMemory(sess.mem, args)
	case cmd == "i":
		setRegister(sess.pipe, args)
	case cmd == "h":
		setHILO(sess.pipe.SetHI, args)
	case cmd == "l":
		setHILO(sess.pipe.SetLO, args)
	case cmd == "p":
		disassembleProgram(sess)
	case cmd == "f":
		setForwarding(sess.pipe, args)
	default:
		fmt.Println("Invalid Command")
	}
	return false
}

func parseUint32(s string) (uint32, bool) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"), 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func runCycles(p *pipeline.Pipeline, args []string) {
	if len(args) != 1 {
		fmt.Println("Invalid Command")
		return
	}
	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Println("Invalid Command")
		return
	}
	p.RunCycles(n)
	fmt.Println("Simulation stopped.")
}

func setRegister(p *pipeline.Pipeline, args []string) {
	if len(args) != 2 {
		fmt.Println("Invalid Command")
		return
	}
	reg, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil || reg > 31 {
		fmt.Println("Invalid Command")
		return
	}
	val, ok := parseUint32(args[1])
	if !ok {
		fmt.Println("Invalid Command")
		return
	}
	p.SetReg(uint8(reg), val)
}

func setHILO(set func(uint32), args []string) {
	if len(args) != 1 {
		fmt.Println("Invalid Command")
		return
	}
	val, ok := parseUint32(args[0])
	if !ok {
		fmt.Println("Invalid Command")
		return
	}
	set(val)
}

func setForwarding(p *pipeline.Pipeline, args []string) {
	if len(args) != 1 {
		fmt.Println("Invalid Command")
		return
	}
	switch args[0] {
	case "0":
		p.SetForwarding(false)
	case "1":
		p.SetForwarding(true)
	default:
		fmt.Println("Invalid Command")
	}
}

func dumpMemory(mem *emu.Memory, args []string) {
	if len(args) != 2 {
		fmt.Println("Invalid Command")
		return
	}
	lo, ok1 := parseUint32(args[0])
	hi, ok2 := parseUint32(args[1])
	if !ok1 || !ok2 || hi < lo {
		fmt.Println("Invalid Command")
		return
	}
	fmt.Println("Memory content:")
	fmt.Println("[Address in Hex] - [Contents in Hex]")
	for addr := lo; addr <= hi; addr += 4 {
		fmt.Printf("0x%08x : 0x%08x\n", addr, mem.Read32(addr))
		if addr+4 < addr { // overflow guard
			break
		}
	}
}

func dumpRegisters(p *pipeline.Pipeline) {
	st := p.State()
	fmt.Println("Current register values:")
	fmt.Println("------------------------------------")
	fmt.Printf("PC: 0x%08x\n", st.PC)
	fmt.Println("Registers:")
	for r := 0; r < emu.RegisterCount; r++ {
		fmt.Printf("R%-2d: 0x%08x\n", r, st.Read(uint8(r)))
	}
	fmt.Printf("HI: 0x%08x\n", st.HI)
	fmt.Printf("LO: 0x%08x\n", st.LO)
	fmt.Printf("# Cycles Executed : %d\n", p.CycleCount())
	fmt.Printf("# Instructions Retired : %d\n", p.InstructionCount())
}

func showPipeline(p *pipeline.Pipeline) {
	l := p.Latches()
	fmt.Println("Current pipeline state:")
	fmt.Printf("IF/ID.IR  : 0x%08x\n", l.IFID.IR)
	fmt.Printf("ID/EX.IR  : 0x%08x\n", l.IDEX.IR)
	fmt.Printf("EX/MEM.IR : 0x%08x\n", l.EXMEM.IR)
	fmt.Printf("MEM/WB.IR : 0x%08x\n", l.MEMWB.IR)
}

func disassembleProgram(sess *session) {
	decoder := insts.NewDecoder()
	addr := emu.MemTextBegin
	for range sess.prog.Words {
		word := sess.mem.Read32(addr)
		fmt.Printf("0x%08x : %s\n", addr, disasm.Format(decoder.Decode(word)))
		addr += 4
	}
}
