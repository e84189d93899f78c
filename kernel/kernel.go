// Package kernel is a fixed-count, preemptive round-robin thread scheduler.
//
// Threads are parameterless, never-returning bodies hosted on the simulated
// core in package cortexm. Exactly one thread runs at a time; the
// context-switch engine moves the full register state between them on
// quantum expiry or voluntary yield.
package kernel

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/klabuguen/LunaRTOS/cortexm"
	"github.com/klabuguen/LunaRTOS/hal"
)

// Compile-time configuration.
const (
	// MaxThreads is the compiled-in thread limit.
	MaxThreads = 8
	// StackWords is the per-thread stack capacity in 32-bit words.
	StackWords = 100
)

// entryBase is a synthetic flash window holding one vector word per
// thread. The stack frame initializer stores these addresses in the saved
// PC slots, so a never-yet-run thread's frame points at its entry.
const entryBase uint32 = 0x0800_0000

// ThreadID names a thread by its index in the control block table.
type ThreadID uint8

// ThreadFunc is a thread body: parameterless and never returning.
type ThreadFunc func()

// tcb is a thread control block. sp is the saved stack pointer while the
// thread is suspended; next links the created threads into a single
// circular list and is fixed at creation time.
type tcb struct {
	sp      uint32
	next    ThreadID
	entry   ThreadFunc
	started bool
}

// Kernel owns all scheduler state: the TCB table, the per-thread stacks,
// and the register file of the simulated core. One Kernel value stands for
// one core; there are no package-level globals.
type Kernel struct {
	board hal.Board

	tcbs   [MaxThreads]tcb
	stacks [MaxThreads]*cortexm.Stack
	regs   cortexm.RegisterFile

	count   ThreadID
	current ThreadID

	msPrescaler uint32
	initialized bool
	launched    atomic.Bool

	// pendSwitch is the switch exception's pend bit: set by the tick
	// handler or by Yield, consumed exactly once by the engine.
	pendSwitch atomic.Bool
	yielded    atomic.Bool
	ticks      atomic.Uint64
	runningObs atomic.Uint32

	resume [MaxThreads]chan struct{}

	haltOnce    sync.Once
	haltActive  atomic.Bool
	haltCh      chan error
	haltHandler atomic.Value // func(HaltInfo)
	switchHook  atomic.Value // func(SwitchEvent)
}

// New returns a kernel bound to a board. Call Init, CreateThreads, then
// Launch.
func New(board hal.Board) *Kernel {
	k := &Kernel{
		board:  board,
		haltCh: make(chan error, 1),
	}
	for i := range k.resume {
		k.resume[i] = make(chan struct{}, 1)
	}
	return k
}

// Init derives the millisecond timing base from the board clock. It must
// precede CreateThreads.
func (k *Kernel) Init() error {
	hz := k.board.ClockHz()
	if hz < 1000 {
		return fmt.Errorf("kernel: clock rate %d Hz is below the 1 kHz timing base", hz)
	}
	k.msPrescaler = hz / 1000
	k.initialized = true
	return nil
}

// CreateResult reports the outcome of CreateThreads.
type CreateResult uint8

const (
	CreateOK CreateResult = iota
	CreateErrNotInitialized
	CreateErrNoThreads
	CreateErrTooManyThreads
	CreateErrNilEntry
	CreateErrAlreadyLaunched
)

func (r CreateResult) String() string {
	switch r {
	case CreateOK:
		return "ok"
	case CreateErrNotInitialized:
		return "kernel not initialized"
	case CreateErrNoThreads:
		return "no thread entries"
	case CreateErrTooManyThreads:
		return "thread count exceeds compiled-in maximum"
	case CreateErrNilEntry:
		return "nil thread entry"
	case CreateErrAlreadyLaunched:
		return "kernel already launched"
	default:
		return "unknown"
	}
}

// CreateThreads registers the thread bodies and builds their initial
// execution contexts. All validation happens before any state is touched,
// and the table is built under the interrupt mask, so a failure leaves no
// partially initialized TCB reachable and a switch can never observe a
// half-linked list.
func (k *Kernel) CreateThreads(entries ...ThreadFunc) CreateResult {
	if !k.initialized {
		return CreateErrNotInitialized
	}
	if k.launched.Load() {
		return CreateErrAlreadyLaunched
	}
	if len(entries) == 0 {
		return CreateErrNoThreads
	}
	if len(entries) > MaxThreads {
		return CreateErrTooManyThreads
	}
	for _, e := range entries {
		if e == nil {
			return CreateErrNilEntry
		}
	}

	irq := k.board.IRQ()
	prev := irq.DisableInterrupts()
	defer irq.EnableInterrupts(prev)

	n := ThreadID(len(entries))
	k.count = n
	for i := ThreadID(0); i < n; i++ {
		k.tcbs[i] = tcb{next: (i + 1) % n, entry: entries[i]}
		k.stacks[i] = cortexm.NewStack(StackWords)
		k.initStackFrame(i)
	}
	k.current = 0
	k.runningObs.Store(0)
	return CreateOK
}

// ThreadCount returns the number of created threads.
func (k *Kernel) ThreadCount() int { return int(k.count) }

// Running returns the thread presently executing (or about to resume).
func (k *Kernel) Running() ThreadID { return ThreadID(k.runningObs.Load()) }

// Ticks returns the number of quantum timer expirations since launch.
func (k *Kernel) Ticks() uint64 { return k.ticks.Load() }

// Register reads a general-purpose register of the running thread. The
// access is an instruction boundary: a pended switch is serviced first, so
// the read happens in the calling thread's own context.
func (k *Kernel) Register(r cortexm.Reg) uint32 {
	k.boundary()
	return k.regs.Get(r)
}

// SetRegister writes a general-purpose register of the running thread.
// Like Register, the access is an instruction boundary.
func (k *Kernel) SetRegister(r cortexm.Reg, v uint32) {
	k.boundary()
	k.regs.Set(r, v)
}

// entryAddress returns the synthetic flash address standing in for thread
// id's entry point.
func (k *Kernel) entryAddress(id ThreadID) uint32 {
	return entryBase + 4*uint32(id)
}
