package render

import "github.com/charmbracelet/lipgloss"

// Oxocarbon palette, trimmed to what the CLI output uses.
var (
	colorMuted  = lipgloss.Color("#767676")
	colorFg     = lipgloss.Color("#f2f4f8")
	colorTeal   = lipgloss.Color("#3ddbd9")
	colorBlue   = lipgloss.Color("#78a9ff")
	colorPink   = lipgloss.Color("#ee5396")
	colorRed    = lipgloss.Color("#ff5252")
	colorGreen  = lipgloss.Color("#42be65")
	colorPurple = lipgloss.Color("#be95ff")
	colorMauve  = lipgloss.Color("#d1aaff")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorMauve).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	missingStyle = lipgloss.NewStyle().
			Foreground(colorPink)

	completeStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	matchStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	idStyle = lipgloss.NewStyle().
		Foreground(colorTeal)
)

// State labels come from subscription cards.
var stateStyles = map[string]lipgloss.Style{
	"订阅中": lipgloss.NewStyle().Foreground(colorGreen),
	"新建":  lipgloss.NewStyle().Foreground(colorBlue),
	"待定":  lipgloss.NewStyle().Foreground(colorPurple),
	"暂停":  lipgloss.NewStyle().Foreground(colorPink),
}
