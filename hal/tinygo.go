//go:build tinygo && baremetal

package hal

import (
	"errors"
	"machine"
	"sync"
	"sync/atomic"
	"time"
)

type tinyGoBoard struct {
	clockHz uint32
	logger  *uartLogger
	systick *tinyGoSysTick
	irq     *tinyGoIRQ
}

// New returns a bare-metal board implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1. The tick source is a
// timer goroutine: on TinyGo the hardware SysTick belongs to the runtime,
// so the quantum timer is derived from the runtime clock instead.
func New() Board {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	clockHz := uint32(machine.CPUFrequency())
	irq := &tinyGoIRQ{}
	irq.enabled.Store(true)
	return &tinyGoBoard{
		clockHz: clockHz,
		logger:  &uartLogger{uart: uart},
		systick: &tinyGoSysTick{clockHz: clockHz, ch: make(chan uint64, 16)},
		irq:     irq,
	}
}

func (b *tinyGoBoard) ClockHz() uint32  { return b.clockHz }
func (b *tinyGoBoard) SysTick() SysTick { return b.systick }
func (b *tinyGoBoard) IRQ() IRQControl  { return b.irq }
func (b *tinyGoBoard) Logger() Logger   { return b.logger }
func (b *tinyGoBoard) Display() Display { return nil }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type tinyGoSysTick struct {
	clockHz uint32

	mu      sync.Mutex
	reload  uint32
	running bool
	stop    chan struct{}
	ch      chan uint64
}

func (t *tinyGoSysTick) Configure(reload uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return errors.New("hal: systick already running")
	}
	if reload == 0 {
		return errors.New("hal: zero systick reload")
	}
	t.reload = reload
	return nil
}

func (t *tinyGoSysTick) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return errors.New("hal: systick already running")
	}
	if t.reload == 0 {
		return errors.New("hal: systick not configured")
	}
	t.running = true
	t.stop = make(chan struct{})

	period := time.Duration((uint64(t.reload) + 1) * uint64(time.Second) / uint64(t.clockHz))
	go func(stop chan struct{}) {
		defer close(t.ch)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		var seq uint64
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				seq++
				select {
				case t.ch <- seq:
				default:
				}
			}
		}
	}(t.stop)
	return nil
}

func (t *tinyGoSysTick) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stop)
}

func (t *tinyGoSysTick) Ticks() <-chan uint64 { return t.ch }

// tinyGoIRQ tracks priority levels and the mask bit. Masking is
// bookkeeping only: the TinyGo runtime owns the real PRIMASK, and the
// kernel only needs the mask state it set itself.
type tinyGoIRQ struct {
	mu      sync.Mutex
	prio    [numIRQs]Priority
	enabled atomic.Bool
}

func (c *tinyGoIRQ) SetPriority(irq IRQ, p Priority) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if irq < numIRQs {
		c.prio[irq] = p
	}
}

func (c *tinyGoIRQ) Priority(irq IRQ) Priority {
	c.mu.Lock()
	defer c.mu.Unlock()
	if irq < numIRQs {
		return c.prio[irq]
	}
	return 0
}

func (c *tinyGoIRQ) DisableInterrupts() bool { return c.enabled.Swap(false) }

func (c *tinyGoIRQ) EnableInterrupts(prev bool) { c.enabled.Store(prev) }

func (c *tinyGoIRQ) Enabled() bool { return c.enabled.Load() }
