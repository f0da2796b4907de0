package format

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpisodes(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected string
	}{
		{"empty", []int{}, ""},
		{"nil", nil, ""},
		{"single", []int{5}, "5"},
		{"single zero", []int{0}, "0"},
		{"single negative", []int{-4}, "-4"},
		{"consecutive run", []int{1, 2, 3}, "1-3"},
		{"isolated values", []int{1, 3, 5}, "1、3、5"},
		{"mixed runs", []int{1, 2, 3, 5, 7, 8, 9}, "1-3、5、7-9"},
		{"unsorted", []int{3, 1, 2}, "1-3"},
		{"duplicate inside run", []int{2, 2, 3}, "2-3"},
		{"duplicates only", []int{5, 5}, "5"},
		{"duplicates everywhere", []int{1, 1, 2, 2, 3, 3, 7, 7}, "1-3、7"},
		{"run of two", []int{10, 11}, "10-11"},
		{"negative run", []int{-1, -3, -2, 1}, "-3--1、1"},
		{"crosses zero", []int{1, -1, 0}, "-1-1"},
		{"trailing isolated", []int{1, 2, 9}, "1-2、9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Episodes(tt.input))
		})
	}
}

func TestEpisodes_DoesNotMutateInput(t *testing.T) {
	input := []int{9, 3, 3, 1, 2}
	Episodes(input)
	assert.Equal(t, []int{9, 3, 3, 1, 2}, input)
}

func TestEpisodeFormatter_Separator(t *testing.T) {
	f := EpisodeFormatter{Separator: ","}
	assert.Equal(t, "1-2,4,6-8", f.Format([]int{8, 7, 6, 4, 2, 1}))

	f = EpisodeFormatter{Separator: " / "}
	assert.Equal(t, "1 / 3", f.Format([]int{3, 1}))
}

func TestEpisodes_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := rng.Intn(40)
		input := make([]int, n)
		for j := range input {
			input[j] = rng.Intn(60) - 10
		}

		formatted := Episodes(input)
		expanded, err := ParseEpisodes(formatted)
		require.NoError(t, err, "input %v formatted %q", input, formatted)
		assert.Equal(t, formatted, Episodes(expanded), "input %v", input)
	}
}

func TestEpisodes_EveryValueCoveredOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		input := make([]int, 1+rng.Intn(30))
		for j := range input {
			input[j] = rng.Intn(50)
		}

		tokens := strings.Split(Episodes(input), DefaultEpisodeSeparator)
		for _, v := range input {
			hits := 0
			for _, tok := range tokens {
				start, end, err := parseToken(tok)
				require.NoError(t, err)
				if v >= start && v <= end {
					hits++
				}
			}
			assert.Equal(t, 1, hits, "value %d in %v", v, tokens)
		}
	}
}

func TestParseEpisodes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{"single", "5", []int{5}},
		{"range", "1-3", []int{1, 2, 3}},
		{"formatter output", "1-3、5、7-9", []int{1, 2, 3, 5, 7, 8, 9}},
		{"commas and spaces", "1-2, 4 ,6", []int{1, 2, 4, 6}},
		{"full-width comma", "1，3", []int{1, 3}},
		{"whitespace separated", "7 1-2", []int{1, 2, 7}},
		{"negative range", "-3--1", []int{-3, -2, -1}},
		{"negative to positive", "-1-1", []int{-1, 0, 1}},
		{"overlapping", "1-3,2-4", []int{1, 2, 3, 4}},
		{"single element range", "4-4", []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseEpisodes(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseEpisodes_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "、,"} {
		result, err := ParseEpisodes(input)
		require.NoError(t, err)
		assert.Empty(t, result)
	}
}

func TestParseEpisodes_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not a number", "abc", ErrInvalidEpisode},
		{"lone dash", "-", ErrInvalidEpisode},
		{"open range", "1-", ErrInvalidEpisode},
		{"bad end", "1-x", ErrInvalidEpisode},
		{"decimal", "1.5", ErrInvalidEpisode},
		{"reversed", "5-3", ErrInvalidRange},
		{"too large", "1-200000", ErrRangeTooLarge},
		{"too large in total", "1-60000,70000-130000", ErrRangeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEpisodes(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
