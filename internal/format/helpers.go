package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Bytes formats a byte count with an SI suffix, e.g. "146 kB".
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Duration formats d as "1m 5s", "3.2s" or "120ms".
func Duration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		s := int(d.Seconds())
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// Mark returns "✓" for true and "✗" for false.
func Mark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
