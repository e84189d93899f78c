package kernel

import "github.com/klabuguen/LunaRTOS/cortexm"

// registerSentinel fills every general-purpose slot of a hand-built frame.
// Not zero on purpose: a thread that reads a register before its first
// write sees this pattern, which makes the mistake diagnosable.
const registerSentinel uint32 = 0xAAAAAAAA

// initStackFrame hand-builds the saved context the switch engine will
// "return" through the first time thread id runs. The layout is the one
// the engine itself produces on every later suspension, so first runs and
// resumptions are indistinguishable to the restore path.
func (k *Kernel) initStackFrame(id ThreadID) {
	s := k.stacks[id]
	top := uint32(s.Capacity())

	// Hardware-restorable frame at the high end of the stack.
	s.SetAt(top-1, cortexm.EPSRThumb)  // xPSR: Thumb execution state
	s.SetAt(top-2, k.entryAddress(id)) // PC: thread entry point
	s.SetAt(top-3, registerSentinel)   // LR
	s.SetAt(top-4, registerSentinel)   // R12
	s.SetAt(top-5, registerSentinel)   // R3
	s.SetAt(top-6, registerSentinel)   // R2
	s.SetAt(top-7, registerSentinel)   // R1
	s.SetAt(top-8, registerSentinel)   // R0

	// Software-restorable frame directly below: R4..R11.
	for i := top - cortexm.FrameWords; i < top-cortexm.HardwareFrameWords; i++ {
		s.SetAt(i, registerSentinel)
	}

	// The stack pointer a thread has immediately after a restore.
	s.SetSP(top - cortexm.FrameWords)
	k.tcbs[id].sp = s.SP()
}
