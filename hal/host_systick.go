//go:build !tinygo

package hal

import (
	"errors"
	"sync"
	"time"
)

// hostSysTick maps reload counts at the configured core clock onto a
// wall-clock ticker. Ticks are delivered on a buffered channel with
// non-blocking sends, so a slow consumer drops ticks instead of stalling
// the timer.
type hostSysTick struct {
	clockHz uint32

	mu      sync.Mutex
	reload  uint32
	running bool
	stopped bool
	stop    chan struct{}
	ch      chan uint64
}

func newHostSysTick(clockHz uint32) *hostSysTick {
	return &hostSysTick{
		clockHz: clockHz,
		ch:      make(chan uint64, 64),
	}
}

func (t *hostSysTick) Configure(reload uint32) error {
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

func (t *hostSysTick) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return errors.New("hal: systick stopped")
	}
	if t.running {
		return errors.New("hal: systick already running")
	}
	if t.reload == 0 {
		return errors.New("hal: systick not configured")
	}
	t.running = true
	t.stop = make(chan struct{})
	go t.run(tickPeriod(t.reload, t.clockHz), t.stop)
	return nil
}

func (t *hostSysTick) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	t.stopped = true
	close(t.stop)
}

func (t *hostSysTick) Ticks() <-chan uint64 { return t.ch }

func (t *hostSysTick) run(period time.Duration, stop chan struct{}) {
	defer close(t.ch)
	tk := time.NewTicker(period)
	defer tk.Stop()

	var seq uint64
	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			seq++
			select {
			case t.ch <- seq:
			default:
			}
		}
	}
}

// tickPeriod converts a reload value into wall time: the counter expires
// every reload+1 cycles of the core clock.
func tickPeriod(reload, clockHz uint32) time.Duration {
	ns := (uint64(reload) + 1) * uint64(time.Second) / uint64(clockHz)
	if ns == 0 {
		ns = 1
	}
	return time.Duration(ns)
}
