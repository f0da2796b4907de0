package format

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// MaxExpandedEpisodes caps how many numbers ParseEpisodes will produce.
const MaxExpandedEpisodes = 100000

var (
	// ErrInvalidEpisode is returned for a token that is not an integer or range.
	ErrInvalidEpisode = errors.New("invalid episode number")
	// ErrInvalidRange is returned for a range whose start is after its end.
	ErrInvalidRange = errors.New("invalid episode range")
	// ErrRangeTooLarge is returned when expansion would exceed MaxExpandedEpisodes.
	ErrRangeTooLarge = errors.New("episode range too large")
)

// ParseEpisodes expands a range string back into episode numbers.
//
// Supported formats:
//   - Single episode: "5"
//   - Range: "1-5"
//   - Multiple: "1-5、7、9-12", "1-5,7,9-12" or "1-5 7 9-12"
//   - Negative bounds: "-3--1"
//
// The result is sorted and free of duplicates.
func ParseEpisodes(s string) ([]int, error) {
	parts := strings.FieldsFunc(s, isEpisodeSeparator)
	result := make([]int, 0, len(parts))

	for _, part := range parts {
		start, end, err := parseToken(part)
		if err != nil {
			return nil, err
		}

		span := uint64(end) - uint64(start)
		if span >= uint64(MaxExpandedEpisodes-len(result)) {
			return nil, fmt.Errorf("%w: %s", ErrRangeTooLarge, part)
		}
		for i := 0; i <= int(span); i++ {
			result = append(result, start+i)
		}
	}

	slices.Sort(result)
	return slices.Compact(result), nil
}

func isEpisodeSeparator(r rune) bool {
	switch r {
	case '、', ',', '，':
		return true
	}
	return unicode.IsSpace(r)
}

// parseToken splits "N" or "A-B". A leading minus belongs to the start number.
func parseToken(tok string) (int, int, error) {
	idx := -1
	if len(tok) > 1 {
		if i := strings.IndexByte(tok[1:], '-'); i >= 0 {
			idx = i + 1
		}
	}

	if idx < 0 {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidEpisode, tok)
		}
		return n, n, nil
	}

	start, err := strconv.Atoi(tok[:idx])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid start in %q", ErrInvalidEpisode, tok)
	}
	end, err := strconv.Atoi(tok[idx+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid end in %q", ErrInvalidEpisode, tok)
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, tok)
	}
	return start, end, nil
}
