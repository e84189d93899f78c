//go:build tinygo

package kernel

// Stack traces are not available on bare metal.
func captureStack() []byte {
	return nil
}
