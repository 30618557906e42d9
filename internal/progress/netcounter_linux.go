//go:build linux

package progress

import (
	"fmt"
	"os"
)

type procNetDev struct {
	path string
}

// NewNetCounter returns a counter backed by /proc/net/dev.
func NewNetCounter() NetCounter {
	return procNetDev{path: "/proc/net/dev"}
}

func (p procNetDev) InboundBytes() (uint64, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCounterUnavailable, err)
	}
	defer f.Close()
	return parseProcNetDev(f)
}
