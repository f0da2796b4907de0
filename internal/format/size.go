package format

import (
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// ErrNegativeSize is returned by FileSize for a negative byte count.
var ErrNegativeSize = errors.New("byte count cannot be negative")

var (
	fileSizeUnits = []string{"B", "KB", "MB", "GB", "TB"}
	byteUnits     = []string{"bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}
)

// FileSize formats bytes with 1024-based units and two decimals, e.g. "1.50 KB".
// Sizes beyond TB stay in TB.
func FileSize(bytes int64) (string, error) {
	if bytes < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeSize, bytes)
	}

	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(fileSizeUnits)-1 {
		size /= 1024
		unit++
	}

	return fmt.Sprintf("%.2f %s", size, fileSizeUnits[unit]), nil
}

// Bytes formats bytes with at most decimals fraction digits and trailing
// zeros removed, e.g. "1.5 KB". Zero is "0 bytes".
func Bytes(bytes int64, decimals int) string {
	if bytes == 0 {
		return "0 bytes"
	}
	if decimals < 0 {
		decimals = 0
	}

	size := math.Abs(float64(bytes))
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size /= 1024
		unit++
	}

	sign := ""
	if bytes < 0 {
		sign = "-"
	}
	return sign + trimmedFloat(size, decimals) + " " + byteUnits[unit]
}

// Count abbreviates large counts ("12.3k") and adds thousands separators to
// the rest ("9,999").
func Count(n float64) string {
	abs := math.Abs(n)
	if abs > 9999 {
		sign := ""
		if n < 0 {
			sign = "-"
		}
		return sign + trimmedFloat(abs/1000, 1) + "k"
	}
	return humanize.Comma(int64(math.Round(n)))
}

// trimmedFloat rounds to digits decimals before trimming, FtoaWithDigits alone truncates.
func trimmedFloat(v float64, digits int) string {
	scale := math.Pow10(digits)
	return humanize.FtoaWithDigits(math.Round(v*scale)/scale, digits)
}
