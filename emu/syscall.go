package emu

// ExitSyscallCode is the value of $v0 (register 2) that SYSCALL must carry
// for the simulator to stop. Every other SYSCALL is a silent no-op.
const ExitSyscallCode uint32 = 10

// SyscallHandler decides whether a retiring SYSCALL halts the simulation.
type SyscallHandler interface {
	// Handle reports whether the SYSCALL carrying r2 should stop the run.
	Handle(r2 uint32) bool
}

// DefaultSyscallHandler implements the reference machine's single
// supported syscall: exit, selected by $v0 == 10.
type DefaultSyscallHandler struct{}

// NewDefaultSyscallHandler returns the default handler.
func NewDefaultSyscallHandler() *DefaultSyscallHandler {
	return &DefaultSyscallHandler{}
}

// Handle reports true only when r2 is the exit code.
func (h *DefaultSyscallHandler) Handle(r2 uint32) bool {
	return r2 == ExitSyscallCode
}
