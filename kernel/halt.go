package kernel

// HaltInfo describes the fatal fault that stopped the kernel.
type HaltInfo struct {
	Thread ThreadID
	Reason error
	Stack  []byte
}

// Halted reports whether the kernel has stopped on a fatal fault.
func (k *Kernel) Halted() bool {
	return k.haltActive.Load()
}

// SetHaltHandler installs a halt handler.
//
// The handler is invoked at most once (on the first fault). It must not
// panic and must not call back into the kernel.
func (k *Kernel) SetHaltHandler(fn func(HaltInfo)) {
	k.haltHandler.Store(fn)
}

// fault latches the first fatal fault, notifies the handler, stops the
// tick source, and releases Launch with the diagnostic. Later faults are
// ignored.
func (k *Kernel) fault(id ThreadID, reason error) {
	k.haltOnce.Do(func() {
		k.haltActive.Store(true)

		info := HaltInfo{Thread: id, Reason: reason, Stack: captureStack()}
		if v := k.haltHandler.Load(); v != nil {
			if fn, ok := v.(func(HaltInfo)); ok && fn != nil {
				fn(info)
			}
		}
		if l := k.board.Logger(); l != nil && reason != nil {
			l.WriteLineString("kernel: halt: " + reason.Error())
		}

		k.board.SysTick().Stop()
		k.haltCh <- reason
	})
}
