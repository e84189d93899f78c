package hal

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// IRQ identifies one of the two interrupt lines the kernel configures.
type IRQ uint8

const (
	// IRQTick is the periodic timer interrupt.
	IRQTick IRQ = iota
	// IRQSwitch is the software-pended context-switch exception.
	IRQSwitch

	numIRQs
)

// Priority is an interrupt priority level. Lower values preempt higher
// ones, as on the target core family.
type Priority uint8

// PriorityLowest is the lowest level in the system. The switch exception
// runs here so it can never preempt another handler.
const PriorityLowest Priority = 15

// IRQControl is the interrupt-priority-levels service.
type IRQControl interface {
	SetPriority(irq IRQ, p Priority)
	Priority(irq IRQ) Priority

	// DisableInterrupts masks all interrupts and returns the previous
	// mask state, PRIMASK style. EnableInterrupts restores it.
	DisableInterrupts() bool
	EnableInterrupts(prev bool)

	// Enabled reports whether interrupts are currently unmasked.
	Enabled() bool
}

// SysTick is the periodic tick source. Configure takes the raw reload
// value in core clock counts; the tick period is reload+1 cycles.
type SysTick interface {
	Configure(reload uint32) error
	Start() error
	Stop()

	// Ticks delivers one value per elapsed period. The channel is closed
	// when the timer is stopped.
	Ticks() <-chan uint64
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Board is the only contact point between the kernel and the hardware, or
// its host simulation.
type Board interface {
	// ClockHz is the core clock rate the tick source counts at.
	ClockHz() uint32
	SysTick() SysTick
	IRQ() IRQControl
	Logger() Logger

	// Display returns nil on platforms without one.
	Display() Display
}
