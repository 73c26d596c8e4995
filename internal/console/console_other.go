//go:build !windows

package console

// Attached always reports true outside Windows.
func Attached() bool {
	return true
}

// HandleInterrupt is a no-op outside Windows; os/signal works there.
func HandleInterrupt(stop func()) func() {
	return func() {}
}
