//go:build headless

package hal

// RunWindow is unavailable without a display stack; use RunHeadless.
func RunWindow(_ Options, _ func(HAL) (func() error, error), _ WindowConfig) error {
	return ErrNoWindow
}
