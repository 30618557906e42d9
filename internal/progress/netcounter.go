package progress

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrCounterUnavailable is returned on platforms without a host byte counter.
var ErrCounterUnavailable = errors.New("network counter unavailable")

// NetCounter reports the cumulative inbound byte count of the host.
type NetCounter interface {
	InboundBytes() (uint64, error)
}

// unavailableCounter always reports ErrCounterUnavailable.
type unavailableCounter struct{}

func (unavailableCounter) InboundBytes() (uint64, error) {
	return 0, ErrCounterUnavailable
}

// parseProcNetDev sums the receive-bytes column of every non-loopback
// interface in /proc/net/dev format.
func parseProcNetDev(r io.Reader) (uint64, error) {
	var total uint64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if line <= 2 {
			continue
		}
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(name) == "lo" {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse rx bytes for %s: %w", strings.TrimSpace(name), err)
		}
		total += n
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return total, nil
}
