package kernel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/klabuguen/LunaRTOS/hal"
)

// testBoard is a hand-driven board: the test fires ticks itself and the
// logger is discarded.
type testBoard struct {
	clockHz uint32
	systick *testSysTick
	irq     *testIRQ
}

func newTestBoard() *testBoard {
	irq := &testIRQ{}
	irq.enabled.Store(true)
	return &testBoard{
		clockHz: 16_000_000,
		systick: &testSysTick{ch: make(chan uint64, 64)},
		irq:     irq,
	}
}

func (b *testBoard) ClockHz() uint32      { return b.clockHz }
func (b *testBoard) SysTick() hal.SysTick { return b.systick }
func (b *testBoard) IRQ() hal.IRQControl  { return b.irq }
func (b *testBoard) Logger() hal.Logger   { return nopLogger{} }
func (b *testBoard) Display() hal.Display { return nil }

type nopLogger struct{}

func (nopLogger) WriteLineString(string) {}
func (nopLogger) WriteLineBytes([]byte)  {}

type testSysTick struct {
	mu      sync.Mutex
	reload  uint32
	started bool
	seq     uint64
	ch      chan uint64
}

func (t *testSysTick) Configure(reload uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if reload == 0 {
		return errors.New("zero reload")
	}
	t.reload = reload
	return nil
}

func (t *testSysTick) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = true
	return nil
}

func (t *testSysTick) Stop() {}

func (t *testSysTick) Ticks() <-chan uint64 { return t.ch }

// fire delivers one timer expiry.
func (t *testSysTick) fire() {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.mu.Unlock()
	t.ch <- seq
}

type testIRQ struct {
	mu      sync.Mutex
	prio    [2]hal.Priority
	enabled atomic.Bool
}

func (c *testIRQ) SetPriority(irq hal.IRQ, p hal.Priority) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prio[irq] = p
}

func (c *testIRQ) Priority(irq hal.IRQ) hal.Priority {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prio[irq]
}

func (c *testIRQ) DisableInterrupts() bool    { return c.enabled.Swap(false) }
func (c *testIRQ) EnableInterrupts(prev bool) { c.enabled.Store(prev) }
func (c *testIRQ) Enabled() bool              { return c.enabled.Load() }

// launchAsync runs Launch on its own goroutine and returns the channel
// that yields its result.
func launchAsync(t *testing.T, k *Kernel, quanta uint32) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- k.Launch(quanta) }()
	return done
}

var errTestDone = errors.New("test done")
