//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// defaultClockHz matches the 16 MHz HSI clock the reference board runs at.
const defaultClockHz = 16_000_000

type hostBoard struct {
	clockHz uint32
	logger  *hostLogger
	systick *hostSysTick
	irq     *hostIRQ
	fb      *hostFramebuffer
}

// New returns a host board simulation with a 16 MHz core clock.
func New() Board {
	return NewWithClock(defaultClockHz)
}

// NewWithClock returns a host board simulation at the given core clock.
func NewWithClock(clockHz uint32) Board {
	return &hostBoard{
		clockHz: clockHz,
		logger:  &hostLogger{w: os.Stdout},
		systick: newHostSysTick(clockHz),
		irq:     newHostIRQ(),
		fb:      newHostFramebuffer(320, 320),
	}
}

func (b *hostBoard) ClockHz() uint32  { return b.clockHz }
func (b *hostBoard) SysTick() SysTick { return b.systick }
func (b *hostBoard) IRQ() IRQControl  { return b.irq }
func (b *hostBoard) Logger() Logger   { return b.logger }
func (b *hostBoard) Display() Display { return hostDisplay{fb: b.fb} }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostIRQ models the priority-levels service. Priorities are bookkeeping
// on the host; the mask bit is what the kernel consults at exception
// boundaries.
type hostIRQ struct {
	mu      sync.Mutex
	prio    [numIRQs]Priority
	enabled atomic.Bool
}

func newHostIRQ() *hostIRQ {
	irq := &hostIRQ{}
	irq.enabled.Store(true)
	return irq
}

func (c *hostIRQ) SetPriority(irq IRQ, p Priority) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if irq < numIRQs {
		c.prio[irq] = p
	}
}

func (c *hostIRQ) Priority(irq IRQ) Priority {
	c.mu.Lock()
	defer c.mu.Unlock()
	if irq < numIRQs {
		return c.prio[irq]
	}
	return 0
}

func (c *hostIRQ) DisableInterrupts() bool {
	return c.enabled.Swap(false)
}

func (c *hostIRQ) EnableInterrupts(prev bool) {
	c.enabled.Store(prev)
}

func (c *hostIRQ) Enabled() bool { return c.enabled.Load() }
