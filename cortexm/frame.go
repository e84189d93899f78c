package cortexm

// Saved-context layout, ascending from the saved stack pointer:
//
//	sp+0  .. sp+7   software-restorable frame  R4 R5 R6 R7 R8 R9 R10 R11
//	sp+8  .. sp+15  hardware-restorable frame  R0 R1 R2 R3 R12 LR PC xPSR
//
// The hardware frame is the portion a Cortex-M pushes and pops by itself on
// exception entry and exit; the software frame is the kernel's to save and
// restore. The field order must not change.
const (
	HardwareFrameWords = 8
	SoftwareFrameWords = 8

	// FrameWords is the size of a complete saved context.
	FrameWords = HardwareFrameWords + SoftwareFrameWords
)

// PushHardwareFrame saves the hardware-restorable registers onto s, exactly
// as exception entry would.
func PushHardwareFrame(s *Stack, f *RegisterFile) error {
	if !s.room(HardwareFrameWords) {
		return ErrStackOverflow
	}
	s.push(f.psr)
	s.push(f.pc)
	s.push(f.lr)
	s.push(f.r[12])
	s.push(f.r[3])
	s.push(f.r[2])
	s.push(f.r[1])
	s.push(f.r[0])
	return nil
}

// PopHardwareFrame restores the hardware-restorable registers from s,
// exactly as exception return would. Execution resumes at the restored PC.
func PopHardwareFrame(s *Stack, f *RegisterFile) error {
	if s.sp+HardwareFrameWords > uint32(len(s.words)) {
		return ErrStackUnderflow
	}
	f.r[0] = s.pop()
	f.r[1] = s.pop()
	f.r[2] = s.pop()
	f.r[3] = s.pop()
	f.r[12] = s.pop()
	f.lr = s.pop()
	f.pc = s.pop()
	f.psr = s.pop()
	return nil
}

// PushSoftwareFrame saves R4..R11 onto s, directly below a hardware frame.
func PushSoftwareFrame(s *Stack, f *RegisterFile) error {
	if !s.room(SoftwareFrameWords) {
		return ErrStackOverflow
	}
	for r := R11; r >= R4; r-- {
		s.push(f.r[r])
	}
	return nil
}

// PopSoftwareFrame restores R4..R11 from s.
func PopSoftwareFrame(s *Stack, f *RegisterFile) error {
	if s.sp+SoftwareFrameWords > uint32(len(s.words)) {
		return ErrStackUnderflow
	}
	for r := R4; r <= R11; r++ {
		f.r[r] = s.pop()
	}
	return nil
}
