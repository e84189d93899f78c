// Package app wires the kernel bring-up used by the demo binaries: three
// threads incrementing per-thread work counters and yielding, scheduled
// round robin at a 10 ms quantum.
package app

import (
	"fmt"
	"sync/atomic"

	"github.com/klabuguen/LunaRTOS/hal"
	"github.com/klabuguen/LunaRTOS/kernel"
)

// QuantaMs is the round-robin time quantum of the demo.
const QuantaMs = 10

// Profilers counts the work each demo thread has done.
type Profilers [3]atomic.Uint64

// Snapshot returns the current counter values.
func (p *Profilers) Snapshot() []uint64 {
	out := make([]uint64, len(p))
	for i := range p {
		out[i] = p[i].Load()
	}
	return out
}

// New builds a kernel on the board with the three demo threads created.
// Call Launch(QuantaMs) on the returned kernel to start scheduling.
func New(b hal.Board) (*kernel.Kernel, *Profilers, error) {
	k := kernel.New(b)
	if err := k.Init(); err != nil {
		return nil, nil, err
	}

	p := &Profilers{}
	res := k.CreateThreads(
		func() {
			for {
				p[0].Add(1)
				k.Yield()
			}
		},
		func() {
			for {
				p[1].Add(1)
				k.Yield()
			}
		},
		func() {
			for {
				p[2].Add(1)
				k.Yield()
			}
		},
	)
	if res != kernel.CreateOK {
		return nil, nil, fmt.Errorf("app: create threads: %s", res)
	}
	return k, p, nil
}
