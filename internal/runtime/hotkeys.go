package runtime

import "io"

// Hotkey bytes accepted while a download is attached to a terminal.
const (
	keyCtrlC = 0x03
)

// ReadKeys forwards single keystrokes from r to keys until r fails, then
// closes keys. Reads block, so callers should not wait for it to return.
func ReadKeys(r io.Reader, keys chan<- byte) {
	defer close(keys)
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			keys <- buf[0]
		}
		if err != nil {
			return
		}
	}
}

// IsCancelKey reports whether b asks to cancel the download.
func IsCancelKey(b byte) bool {
	return b == 'c' || b == 'C' || b == keyCtrlC
}

// IsAcceptKey reports whether b answers yes to a prompt.
func IsAcceptKey(b byte) bool {
	return b == 'y' || b == 'Y'
}
