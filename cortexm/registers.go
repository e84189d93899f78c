// Package cortexm models the register and stack state of a Cortex-M style
// core at word granularity. The kernel's context-switch engine operates on
// this model; the frame layout mirrors the hardware exception entry/exit
// convention bit for bit.
package cortexm

// Reg identifies a core register. R13 (the stack pointer) is deliberately
// absent: a suspended thread's stack pointer lives in its control block,
// and the running thread's stack pointer is owned by its Stack.
type Reg uint8

const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	LR // R14
	PC // R15
)

// GeneralRegs lists every register a thread program can observe across a
// suspend/resume cycle.
var GeneralRegs = [...]Reg{R0, R1, R2, R3, R4, R5, R6, R7, R8, R9, R10, R11, R12, LR}

// EPSRThumb is the execution state bit of the xPSR. The core family only
// executes Thumb instructions; restoring a frame with this bit clear is a
// usage fault.
const EPSRThumb uint32 = 1 << 24

// RegisterFile holds the register state of the thread currently executing
// on the core. All other threads keep their state in the frames saved on
// their own stacks.
type RegisterFile struct {
	r   [13]uint32 // R0..R12
	lr  uint32
	pc  uint32
	psr uint32
}

// Get returns the value of register r.
func (f *RegisterFile) Get(r Reg) uint32 {
	switch {
	case r <= R12:
		return f.r[r]
	case r == LR:
		return f.lr
	default:
		return f.pc
	}
}

// Set writes register r.
func (f *RegisterFile) Set(r Reg, v uint32) {
	switch {
	case r <= R12:
		f.r[r] = v
	case r == LR:
		f.lr = v
	default:
		f.pc = v
	}
}

// PC returns the program counter.
func (f *RegisterFile) PC() uint32 { return f.pc }

// PSR returns the program status register.
func (f *RegisterFile) PSR() uint32 { return f.psr }

// SetPSR writes the program status register.
func (f *RegisterFile) SetPSR(v uint32) { f.psr = v }

func (r Reg) String() string {
	switch r {
	case LR:
		return "LR"
	case PC:
		return "PC"
	default:
		return "R" + itoa(uint8(r))
	}
}

func itoa(n uint8) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
