//go:build !linux

package progress

// NewNetCounter returns a counter that is always unavailable; speed stays unknown.
func NewNetCounter() NetCounter {
	return unavailableCounter{}
}
