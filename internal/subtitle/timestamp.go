package subtitle

import (
	"fmt"
	"math"
)

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
// The seconds value is converted to whole milliseconds with round-half-up,
// so a half-millisecond boundary carries upward into the seconds field.
func FormatTimestamp(seconds float64) string {
	totalMS := int64(math.Floor(seconds*1000.0 + 0.5))
	if totalMS < 0 {
		totalMS = 0
	}
	hours := totalMS / 3600000
	remainder := totalMS % 3600000
	minutes := remainder / 60000
	remainder %= 60000
	secs := remainder / 1000
	millis := remainder % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
