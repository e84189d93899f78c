package kernel

import (
	"strings"
	"testing"

	"github.com/klabuguen/LunaRTOS/cortexm"
	"github.com/klabuguen/LunaRTOS/hal"
)

func spin() { select {} }

func TestCreateValidation(t *testing.T) {
	b := newTestBoard()
	k := New(b)

	if res := k.CreateThreads(spin); res != CreateErrNotInitialized {
		t.Fatalf("before Init: %s, want %s", res, CreateErrNotInitialized)
	}

	if err := k.Init(); err != nil {
		t.Fatal(err)
	}

	if res := k.CreateThreads(); res != CreateErrNoThreads {
		t.Fatalf("no entries: %s, want %s", res, CreateErrNoThreads)
	}

	tooMany := make([]ThreadFunc, MaxThreads+1)
	for i := range tooMany {
		tooMany[i] = spin
	}
	if res := k.CreateThreads(tooMany...); res != CreateErrTooManyThreads {
		t.Fatalf("over maximum: %s, want %s", res, CreateErrTooManyThreads)
	}
	if k.ThreadCount() != 0 {
		t.Fatalf("failed creation left %d threads reachable", k.ThreadCount())
	}

	if res := k.CreateThreads(spin, nil, spin); res != CreateErrNilEntry {
		t.Fatalf("nil entry: %s, want %s", res, CreateErrNilEntry)
	}
	if k.ThreadCount() != 0 {
		t.Fatalf("failed creation left %d threads reachable", k.ThreadCount())
	}

	if res := k.CreateThreads(spin, spin, spin); res != CreateOK {
		t.Fatalf("valid creation: %s", res)
	}
	if k.ThreadCount() != 3 {
		t.Fatalf("ThreadCount = %d, want 3", k.ThreadCount())
	}

	// The successor relation is a single cycle over all three threads.
	want := []ThreadID{1, 2, 0}
	for i, w := range want {
		if got := k.tcbs[i].next; got != w {
			t.Fatalf("tcbs[%d].next = %d, want %d", i, got, w)
		}
	}
}

func TestInitRejectsSlowClock(t *testing.T) {
	b := newTestBoard()
	b.clockHz = 999
	if err := New(b).Init(); err == nil {
		t.Fatal("expected error for sub-kHz clock")
	}
}

func TestInitialStackFrame(t *testing.T) {
	b := newTestBoard()
	k := New(b)
	if err := k.Init(); err != nil {
		t.Fatal(err)
	}
	if res := k.CreateThreads(spin, spin); res != CreateOK {
		t.Fatal(res)
	}

	const top = StackWords
	for id := ThreadID(0); id < 2; id++ {
		s := k.stacks[id]
		if got, want := k.tcbs[id].sp, uint32(top-cortexm.FrameWords); got != want {
			t.Fatalf("thread %d sp = %d, want %d", id, got, want)
		}
		if got := s.At(top - 1); got&cortexm.EPSRThumb == 0 {
			t.Fatalf("thread %d xPSR = %#x, Thumb bit clear", id, got)
		}
		if got, want := s.At(top-2), k.entryAddress(id); got != want {
			t.Fatalf("thread %d PC slot = %#x, want %#x", id, got, want)
		}
		for i := uint32(top - cortexm.FrameWords); i <= top-3; i++ {
			if got := s.At(i); got != registerSentinel {
				t.Fatalf("thread %d slot %d = %#x, want sentinel %#x", id, i, got, registerSentinel)
			}
		}
	}
}

func TestLaunchReloadAndPriorities(t *testing.T) {
	b := newTestBoard()
	k := New(b)
	if err := k.Init(); err != nil {
		t.Fatal(err)
	}
	res := k.CreateThreads(func() {
		k.Halt(errTestDone)
	})
	if res != CreateOK {
		t.Fatal(res)
	}

	// 16 MHz clock, 10 ms quantum: one expiry every 160000 counts.
	done := launchAsync(t, k, 10)
	if err := <-done; err != errTestDone {
		t.Fatalf("Launch returned %v, want %v", err, errTestDone)
	}

	if got := b.systick.reload; got != 159999 {
		t.Fatalf("reload = %d, want 159999", got)
	}
	if !b.systick.started {
		t.Fatal("systick not started")
	}
	if got := b.irq.Priority(hal.IRQSwitch); got != hal.PriorityLowest {
		t.Fatalf("switch priority = %d, want %d", got, hal.PriorityLowest)
	}
	if got := b.irq.Priority(hal.IRQTick); got != hal.PriorityLowest-1 {
		t.Fatalf("tick priority = %d, want %d", got, hal.PriorityLowest-1)
	}
}

func TestLaunchValidation(t *testing.T) {
	b := newTestBoard()
	k := New(b)
	if err := k.Launch(10); err != ErrNoThreads {
		t.Fatalf("Launch without threads: %v, want %v", err, ErrNoThreads)
	}

	if err := k.Init(); err != nil {
		t.Fatal(err)
	}
	if res := k.CreateThreads(spin); res != CreateOK {
		t.Fatal(res)
	}
	if err := k.Launch(0); err != ErrBadQuantum {
		t.Fatalf("Launch with zero quantum: %v, want %v", err, ErrBadQuantum)
	}
}

func TestCreateAfterLaunchRejected(t *testing.T) {
	b := newTestBoard()
	k := New(b)
	if err := k.Init(); err != nil {
		t.Fatal(err)
	}

	resCh := make(chan CreateResult, 1)
	res := k.CreateThreads(func() {
		resCh <- k.CreateThreads(spin)
		k.Halt(errTestDone)
	})
	if res != CreateOK {
		t.Fatal(res)
	}

	done := launchAsync(t, k, 10)
	if err := <-done; err != errTestDone {
		t.Fatal(err)
	}
	if got := <-resCh; got != CreateErrAlreadyLaunched {
		t.Fatalf("create after launch: %s, want %s", got, CreateErrAlreadyLaunched)
	}
}

func TestYieldBeforeLaunchIsNoOp(t *testing.T) {
	b := newTestBoard()
	k := New(b)
	k.Yield() // must not block or fault
	if k.Halted() {
		t.Fatal("yield before launch halted the kernel")
	}
}

func TestThreadReturnFaults(t *testing.T) {
	b := newTestBoard()
	k := New(b)
	if err := k.Init(); err != nil {
		t.Fatal(err)
	}
	if res := k.CreateThreads(func() {}); res != CreateOK {
		t.Fatal(res)
	}

	done := launchAsync(t, k, 10)
	err := <-done
	if err == nil || !strings.Contains(err.Error(), "returned") {
		t.Fatalf("Launch returned %v, want thread-return fault", err)
	}
	if !k.Halted() {
		t.Fatal("kernel not halted")
	}
}

func TestThreadPanicFaults(t *testing.T) {
	b := newTestBoard()
	k := New(b)
	if err := k.Init(); err != nil {
		t.Fatal(err)
	}
	if res := k.CreateThreads(func() { panic("boom") }); res != CreateOK {
		t.Fatal(res)
	}

	var info HaltInfo
	infoCh := make(chan HaltInfo, 1)
	k.SetHaltHandler(func(h HaltInfo) { infoCh <- h })

	done := launchAsync(t, k, 10)
	err := <-done
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("Launch returned %v, want panic fault", err)
	}
	info = <-infoCh
	if info.Thread != 0 {
		t.Fatalf("fault thread = %d, want 0", info.Thread)
	}
	if len(info.Stack) == 0 {
		t.Fatal("halt info has no stack capture")
	}
}
