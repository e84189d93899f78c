// Package monitor renders live scheduler state into a terminal drawn on
// the board framebuffer.
package monitor

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"github.com/klabuguen/LunaRTOS/hal"
	"github.com/klabuguen/LunaRTOS/kernel"
)

// Snapshot returns the demo's per-thread work counters.
type Snapshot func() []uint64

// Monitor periodically prints the running thread, tick count, and thread
// work counters.
type Monitor struct {
	k    *kernel.Kernel
	fb   hal.Framebuffer
	snap Snapshot
	term *tinyterm.Terminal
}

// New builds a monitor on the board display. It fails when the platform
// has no framebuffer.
func New(k *kernel.Kernel, disp hal.Display, snap Snapshot) (*Monitor, error) {
	if disp == nil {
		return nil, errors.New("monitor: no display")
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return nil, errors.New("monitor: no framebuffer")
	}

	m := &Monitor{k: k, fb: fb, snap: snap}
	m.term = tinyterm.NewTerminal(newFBDisplay(fb))
	m.term.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	fb.ClearRGB(0, 0, 0)
	_ = fb.Present()
	fmt.Fprintf(m.term, "LunaRTOS: %d threads\n", k.ThreadCount())
	m.term.Display()
	return m, nil
}

// Run appends a status line every interval until the kernel halts. It is
// meant to run on its own goroutine, outside the scheduled threads.
func (m *Monitor) Run(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for range t.C {
		if m.k.Halted() {
			fmt.Fprint(m.term, "\nhalted")
			m.term.Display()
			return
		}
		m.step()
	}
}

func (m *Monitor) step() {
	fmt.Fprintf(m.term, "\nrun=%d ticks=%d", m.k.Running(), m.k.Ticks())
	for i, c := range m.snap() {
		fmt.Fprintf(m.term, " t%d=%d", i, c)
	}
	m.term.Display()
}
