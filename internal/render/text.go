package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// Width returns the number of terminal cells s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Pad right-pads s with spaces to width cells. Longer strings are returned as is.
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Truncate shortens s to fit within maxWidth cells, ending it with "..."
// when anything was cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}

	width := 0
	for i, r := range s {
		width += runewidth.RuneWidth(r)
		if width > maxWidth-len(ellipsis) {
			return s[:i] + ellipsis
		}
	}
	return s
}

// WrapTokens packs sep-joined tokens into lines of at most maxWidth cells.
// A line always holds at least one token; tokens are never split, and the
// separator stays at the end of the line it follows.
func WrapTokens(text, sep string, maxWidth int) []string {
	if text == "" {
		return nil
	}
	if sep == "" || maxWidth <= 0 {
		return []string{text}
	}

	tokens := strings.Split(text, sep)

	var lines []string
	var line strings.Builder
	lineWidth := 0

	for i, tok := range tokens {
		piece := tok
		if i < len(tokens)-1 {
			piece += sep
		}
		w := runewidth.StringWidth(tok)

		// the trailing separator may hang past the limit
		if lineWidth > 0 && lineWidth+w > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		line.WriteString(piece)
		lineWidth += runewidth.StringWidth(piece)
	}

	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
