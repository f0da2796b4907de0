// Package render writes subscription and episode data to the terminal.
package render

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mpdash/mpctl/internal/api"
	"github.com/mpdash/mpctl/internal/format"
	"github.com/mpdash/mpctl/internal/subscription"
)

const (
	columnGap       = "  "
	maxTitleWidth   = 36
	maxMissingWidth = 40
	detailLabel     = 10
	defaultWidth    = 80
)

// Options configures a Printer.
type Options struct {
	Color     bool
	Separator string // episode separator used in card Missing fields
	Width     int    // terminal width for wrapping; zero means 80
}

// Printer renders CLI output to a writer.
type Printer struct {
	w    io.Writer
	opts Options
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	if opts.Separator == "" {
		opts.Separator = format.DefaultEpisodeSeparator
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	return &Printer{w: w, opts: opts}
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.opts.Color || text == "" {
		return text
	}
	return s.Render(text)
}

func (p *Printer) flush(b *strings.Builder) error {
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Line writes a single plain line.
func (p *Printer) Line(text string) error {
	_, err := fmt.Fprintln(p.w, text)
	return err
}

// Error writes err highlighted.
func (p *Printer) Error(err error) error {
	_, werr := fmt.Fprintln(p.w, p.style(errorStyle, "error:"), err)
	return werr
}

type column struct {
	header string
	cell   func(subscription.Card) string
	style  func(subscription.Card) lipgloss.Style
}

func plain(subscription.Card) lipgloss.Style { return lipgloss.NewStyle() }

var cardColumns = []column{
	{header: "ID", cell: func(c subscription.Card) string { return c.ID }, style: func(subscription.Card) lipgloss.Style { return idStyle }},
	{header: "#", cell: func(c subscription.Card) string { return strconv.Itoa(c.RemoteID) }, style: plain},
	{header: "TITLE", cell: func(c subscription.Card) string { return Truncate(c.Title, maxTitleWidth) }, style: func(subscription.Card) lipgloss.Style { return titleStyle }},
	{header: "SEASON", cell: func(c subscription.Card) string { return dash(c.Season) }, style: plain},
	{header: "PROGRESS", cell: func(c subscription.Card) string { return dash(c.Progress) }, style: progressStyle},
	{header: "MISSING", cell: func(c subscription.Card) string { return dash(Truncate(c.Missing, maxMissingWidth)) }, style: func(subscription.Card) lipgloss.Style { return missingStyle }},
	{header: "STATE", cell: func(c subscription.Card) string { return c.State }, style: stateStyle},
	{header: "UPDATED", cell: func(c subscription.Card) string { return c.Updated }, style: func(subscription.Card) lipgloss.Style { return mutedStyle }},
}

func progressStyle(c subscription.Card) lipgloss.Style {
	if c.Progress != "" && c.MissingCount == 0 {
		return completeStyle
	}
	return lipgloss.NewStyle()
}

func stateStyle(c subscription.Card) lipgloss.Style {
	if s, ok := stateStyles[c.State]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Table writes cards as aligned columns with a header row.
func (p *Printer) Table(cards []subscription.Card) error {
	if len(cards) == 0 {
		return p.Line(p.style(mutedStyle, "no subscriptions cached, run `mpctl sub sync`"))
	}

	cells := make([][]string, len(cards))
	widths := make([]int, len(cardColumns))
	for i, col := range cardColumns {
		widths[i] = Width(col.header)
	}
	for r, card := range cards {
		cells[r] = make([]string, len(cardColumns))
		for i, col := range cardColumns {
			cells[r][i] = col.cell(card)
			widths[i] = max(widths[i], Width(cells[r][i]))
		}
	}

	var b strings.Builder
	headers := make([]string, len(cardColumns))
	for i, col := range cardColumns {
		headers[i] = p.style(headerStyle, p.padCell(col.header, i, widths))
	}
	writeRow(&b, headers)

	for r, card := range cards {
		row := make([]string, len(cardColumns))
		for i, col := range cardColumns {
			row[i] = p.style(col.style(card), p.padCell(cells[r][i], i, widths))
		}
		writeRow(&b, row)
	}
	return p.flush(&b)
}

func (p *Printer) padCell(text string, col int, widths []int) string {
	if col == len(widths)-1 {
		return text
	}
	return Pad(text, widths[col])
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString(strings.TrimRight(strings.Join(cells, columnGap), " "))
	b.WriteByte('\n')
}

// Detail writes one card as labelled fields, wrapping the missing list.
func (p *Printer) Detail(card subscription.Card) error {
	var b strings.Builder
	b.WriteString(p.style(titleStyle, card.Title))
	b.WriteByte('\n')

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString("  ")
		b.WriteString(p.style(labelStyle, Pad(label, detailLabel)))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	field("id", fmt.Sprintf("%s  (#%d)", p.style(idStyle, card.ID), card.RemoteID))
	field("season", card.Season)
	field("state", p.style(stateStyle(card), card.State))
	field("progress", card.Progress)
	field("updated", card.Updated)

	if card.Missing != "" {
		indent := strings.Repeat(" ", 2+detailLabel)
		lines := WrapTokens(card.Missing, p.opts.Separator, p.opts.Width-len(indent))
		for i, line := range lines {
			if i == 0 {
				field("missing", p.style(missingStyle, line))
				continue
			}
			b.WriteString(indent)
			b.WriteString(p.style(missingStyle, line))
			b.WriteByte('\n')
		}
	}
	return p.flush(&b)
}

// Matches writes fuzzy search results, highlighting the matched characters.
func (p *Printer) Matches(matches []subscription.Match) error {
	if len(matches) == 0 {
		return p.Line(p.style(mutedStyle, "no matches"))
	}

	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			p.style(idStyle, shortID(m.Subscription.ID)),
			Pad("#"+strconv.Itoa(m.Subscription.RemoteID), 5),
			p.highlight(m.Subscription.Name, m.MatchedIndexes))
	}
	return p.flush(&b)
}

// highlight styles the bytes of name at the given rune-start offsets.
func (p *Printer) highlight(name string, indexes []int) string {
	if !p.opts.Color || len(indexes) == 0 {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		if slices.Contains(indexes, i) {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Missing writes a per-season report of episodes the media server lacks.
func (p *Printer) Missing(title string, infos []api.NotExistMediaInfo, f format.EpisodeFormatter) error {
	var b strings.Builder
	if title != "" {
		b.WriteString(p.style(titleStyle, title))
		b.WriteByte('\n')
	}

	seasons := slices.Clone(infos)
	slices.SortFunc(seasons, func(x, y api.NotExistMediaInfo) int { return x.Season - y.Season })

	reported := 0
	for _, info := range seasons {
		if len(info.Episodes) == 0 {
			continue
		}
		reported++

		count := fmt.Sprintf("%d missing", len(info.Episodes))
		if info.TotalEpisode > 0 {
			count = fmt.Sprintf("%d/%d missing", len(info.Episodes), info.TotalEpisode)
		}
		fmt.Fprintf(&b, "%s  %s  %s\n",
			format.Season(strconv.Itoa(info.Season)),
			p.style(mutedStyle, Pad(count, 12)),
			p.style(missingStyle, f.Format(info.Episodes)))
	}

	if reported == 0 {
		b.WriteString(p.style(completeStyle, "nothing missing"))
		b.WriteByte('\n')
	}
	return p.flush(&b)
}

// SyncSummary writes the outcome of a sync.
func (p *Printer) SyncSummary(res subscription.SyncResult) error {
	line := fmt.Sprintf("synced: %d added, %d updated, %d removed", res.Added, res.Updated, res.Removed)
	if res.Failed > 0 {
		line += p.style(errorStyle, fmt.Sprintf(" (%d missing-episode lookups failed)", res.Failed))
	}
	return p.Line(line)
}
