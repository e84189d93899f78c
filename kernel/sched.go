package kernel

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/klabuguen/LunaRTOS/cortexm"
	"github.com/klabuguen/LunaRTOS/hal"
)

var (
	ErrNoThreads       = errors.New("kernel: no threads created")
	ErrBadQuantum      = errors.New("kernel: zero quantum")
	ErrAlreadyLaunched = errors.New("kernel: already launched")
	ErrNotThumb        = errors.New("kernel: restored xPSR without Thumb state")
)

// SwitchCause records which event pended a context switch. Both causes
// funnel into the same engine and have identical scheduling effect.
type SwitchCause uint8

const (
	CauseTimer SwitchCause = iota
	CauseYield
)

func (c SwitchCause) String() string {
	if c == CauseYield {
		return "yield"
	}
	return "timer"
}

// SwitchEvent describes one completed context switch.
type SwitchEvent struct {
	From  ThreadID
	To    ThreadID
	Cause SwitchCause
	Tick  uint64
}

// SetSwitchHook installs an observer invoked after every context switch,
// on the switch path itself. The hook must not block.
func (k *Kernel) SetSwitchHook(fn func(SwitchEvent)) {
	k.switchHook.Store(fn)
}

// Launch arms the quantum timer, sets the interrupt priorities (tick above
// switch, switch at the lowest level in the system), and hands the core to
// thread 0. It does not return while the kernel runs; it returns the halt
// diagnostic if a fatal fault stops the kernel.
func (k *Kernel) Launch(quantaMs uint32) error {
	if !k.initialized || k.count == 0 {
		return ErrNoThreads
	}
	if quantaMs == 0 {
		return ErrBadQuantum
	}
	if !k.launched.CompareAndSwap(false, true) {
		return ErrAlreadyLaunched
	}

	// The tick must be recorded promptly, so it sits above the switch;
	// the switch exception must never preempt anything, so it sits at the
	// bottom of the system.
	irq := k.board.IRQ()
	irq.SetPriority(hal.IRQSwitch, hal.PriorityLowest)
	irq.SetPriority(hal.IRQTick, hal.PriorityLowest-1)

	// One timer expiry per quantum: the counter runs at the core clock
	// and rolls over after reload+1 counts.
	st := k.board.SysTick()
	reload := quantaMs*k.msPrescaler - 1
	if err := st.Configure(reload); err != nil {
		return fmt.Errorf("kernel: tick source configuration: %w", err)
	}
	if err := st.Start(); err != nil {
		return fmt.Errorf("kernel: tick source start: %w", err)
	}
	go k.tickLoop(st.Ticks())

	// First hand-off: restore thread 0's hand-built frame and let its
	// entry run. Launch stays parked as the kernel's idle context.
	if err := k.restore(k.current); err != nil {
		k.fault(k.current, err)
	} else {
		k.dispatch(k.current)
	}

	return <-k.haltCh
}

// tickLoop is the timer interrupt handler. Its only job is to count the
// tick and pend the switch exception; the save/restore itself always runs
// at a fully-returned exception boundary, never nested in here.
func (k *Kernel) tickLoop(ticks <-chan uint64) {
	for range ticks {
		k.ticks.Add(1)
		k.pendSwitch.Store(true)
	}
}

// Yield ends the calling thread's quantum early. The next thread scheduled
// is the same one a timer preemption would have picked. Yield may only be
// called from a running thread body after Launch; before launch it has no
// effect.
func (k *Kernel) Yield() {
	if !k.launched.Load() {
		return
	}
	k.yielded.Store(true)
	k.pendSwitch.Store(true)
	k.boundary()
}

// Halt stops the kernel with a diagnostic. Threads stop at their next
// instruction boundary; Launch returns reason. On hardware there is no
// analogue short of power loss; the simulation uses it for fatal faults
// and for tooling that must wind the kernel down.
func (k *Kernel) Halt(reason error) {
	k.fault(k.Running(), reason)
}

// boundary models an instruction boundary of the simulated core: the
// point where a pended switch exception may be taken. The exception runs
// only when interrupts are unmasked; its lowest-priority configuration is
// what makes the switch sequence atomic, because nothing it could race
// with is ever pending when it runs.
func (k *Kernel) boundary() {
	if k.haltActive.Load() {
		// Core stopped: the thread never resumes.
		runtime.Goexit()
	}
	if !k.launched.Load() {
		return
	}
	if !k.board.IRQ().Enabled() {
		return
	}
	if !k.pendSwitch.CompareAndSwap(true, false) {
		return
	}
	cause := CauseTimer
	if k.yielded.CompareAndSwap(true, false) {
		cause = CauseYield
	}
	k.contextSwitch(cause)
}

// contextSwitch is the switch exception body. It runs on the suspending
// thread's goroutine while every other thread is parked, which serializes
// all switches against each other by construction.
func (k *Kernel) contextSwitch(cause SwitchCause) {
	from := k.current
	if err := k.suspend(from); err != nil {
		k.fault(from, err)
		runtime.Goexit()
	}

	// Round robin: the successor in the circular list.
	to := k.tcbs[from].next
	k.current = to

	if err := k.restore(to); err != nil {
		k.fault(to, err)
		runtime.Goexit()
	}
	k.notifySwitch(SwitchEvent{From: from, To: to, Cause: cause, Tick: k.ticks.Load()})

	if to == from {
		// Single created thread: the engine ran its full save/restore,
		// but there is no baton to pass.
		return
	}
	k.dispatch(to)
	k.park(from)
}

// suspend saves the running thread's full context onto its own stack and
// records the resulting stack pointer in its TCB. The hardware frame goes
// first, exactly as exception entry pushes it, then the software frame.
func (k *Kernel) suspend(id ThreadID) error {
	s := k.stacks[id]
	if err := cortexm.PushHardwareFrame(s, &k.regs); err != nil {
		return fmt.Errorf("kernel: thread %d: %w", id, err)
	}
	if err := cortexm.PushSoftwareFrame(s, &k.regs); err != nil {
		return fmt.Errorf("kernel: thread %d: %w", id, err)
	}
	if !s.CheckCanary() {
		return fmt.Errorf("kernel: thread %d stack canary destroyed", id)
	}
	k.tcbs[id].sp = s.SP()
	return nil
}

// restore loads the stack pointer saved in thread id's TCB and rebuilds
// the register file from the frames on its stack. When it returns, the
// core state is exactly what thread id last saw.
func (k *Kernel) restore(id ThreadID) error {
	s := k.stacks[id]
	s.SetSP(k.tcbs[id].sp)
	if err := cortexm.PopSoftwareFrame(s, &k.regs); err != nil {
		return fmt.Errorf("kernel: thread %d: %w", id, err)
	}
	if err := cortexm.PopHardwareFrame(s, &k.regs); err != nil {
		return fmt.Errorf("kernel: thread %d: %w", id, err)
	}
	if k.regs.PSR()&cortexm.EPSRThumb == 0 {
		return fmt.Errorf("kernel: thread %d: %w", id, ErrNotThumb)
	}
	k.runningObs.Store(uint32(id))
	return nil
}

// dispatch resumes thread id: first runs start the entry goroutine, later
// runs pass the baton through the resume channel.
func (k *Kernel) dispatch(id ThreadID) {
	t := &k.tcbs[id]
	if !t.started {
		t.started = true
		go k.threadMain(id, t.entry)
		return
	}
	k.resume[id] <- struct{}{}
}

// park blocks the suspended thread's goroutine until it is dispatched
// again. By the time park returns, restore has already rebuilt this
// thread's register state.
func (k *Kernel) park(id ThreadID) {
	<-k.resume[id]
}

func (k *Kernel) threadMain(id ThreadID, entry ThreadFunc) {
	defer func() {
		if r := recover(); r != nil {
			k.fault(id, fmt.Errorf("kernel: thread %d panicked: %v", id, r))
		}
	}()
	entry()
	// Thread bodies never return; reaching this point is fatal.
	k.fault(id, fmt.Errorf("kernel: thread %d returned", id))
}

func (k *Kernel) notifySwitch(e SwitchEvent) {
	if v := k.switchHook.Load(); v != nil {
		if fn, ok := v.(func(SwitchEvent)); ok && fn != nil {
			fn(e)
		}
	}
}
