package cortexm

import "errors"

// CanaryWord guards the low end of every thread stack. A switch that finds
// it overwritten reports unrecoverable stack corruption.
const CanaryWord uint32 = 0xDEADBEEF

var (
	ErrStackOverflow  = errors.New("cortexm: stack overflow")
	ErrStackUnderflow = errors.New("cortexm: stack underflow")
)

// Stack is a fixed-capacity, word-addressed, full-descending stack owned by
// exactly one thread. The stack pointer is a word index; the stack grows
// toward index 0 and word 0 holds the canary, so the usable region is
// [1, capacity).
type Stack struct {
	words []uint32
	sp    uint32
}

// NewStack returns an empty stack with the given capacity in 32-bit words.
func NewStack(capacity int) *Stack {
	s := &Stack{
		words: make([]uint32, capacity),
		sp:    uint32(capacity),
	}
	s.words[0] = CanaryWord
	return s
}

// Capacity returns the stack size in words.
func (s *Stack) Capacity() int { return len(s.words) }

// SP returns the current stack pointer as a word index.
func (s *Stack) SP() uint32 { return s.sp }

// SetSP repositions the stack pointer.
func (s *Stack) SetSP(sp uint32) { s.sp = sp }

// At returns the word at index i.
func (s *Stack) At(i uint32) uint32 { return s.words[i] }

// SetAt writes the word at index i.
func (s *Stack) SetAt(i uint32, v uint32) { s.words[i] = v }

// CheckCanary reports whether the guard word is still intact.
func (s *Stack) CheckCanary() bool { return s.words[0] == CanaryWord }

// room reports whether n more words fit without touching the canary.
func (s *Stack) room(n uint32) bool { return s.sp > n }

func (s *Stack) push(v uint32) {
	s.sp--
	s.words[s.sp] = v
}

func (s *Stack) pop() uint32 {
	v := s.words[s.sp]
	s.sp++
	return v
}
