// Package format renders the strings the dashboard shows next to media items:
// episode ranges, file sizes, durations and relative times.
package format

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultEpisodeSeparator joins range tokens in episode lists.
const DefaultEpisodeSeparator = "、"

// EpisodeFormatter compresses episode numbers into range strings such as
// "1-3、5、7-9". The zero value uses DefaultEpisodeSeparator.
type EpisodeFormatter struct {
	Separator string
}

// Episodes formats nums with the default separator.
func Episodes(nums []int) string {
	return EpisodeFormatter{}.Format(nums)
}

// Format sorts a copy of nums, drops duplicates and emits one token per run
// of consecutive numbers. Runs of two or more become "start-end".
func (f EpisodeFormatter) Format(nums []int) string {
	if len(nums) == 0 {
		return ""
	}
	if len(nums) == 1 {
		return strconv.Itoa(nums[0])
	}

	sorted := make([]int, len(nums))
	copy(sorted, nums)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	sep := f.Separator
	if sep == "" {
		sep = DefaultEpisodeSeparator
	}

	var b strings.Builder
	start, end := sorted[0], sorted[0]
	for _, n := range sorted[1:] {
		if n == end+1 {
			end = n
			continue
		}
		writeRange(&b, start, end, sep)
		start, end = n, n
	}
	writeRange(&b, start, end, sep)

	return b.String()
}

func writeRange(b *strings.Builder, start, end int, sep string) {
	if b.Len() > 0 {
		b.WriteString(sep)
	}
	b.WriteString(strconv.Itoa(start))
	if start != end {
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(end))
	}
}
