package subscription

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mpdash/mpctl/internal/database"
	"github.com/mpdash/mpctl/internal/format"
)

// Card is the display form of a cached subscription.
type Card struct {
	ID           string // short uuid
	RemoteID     int
	Title        string // name plus year
	Season       string // S01, empty for movies
	Missing      string // compact episode ranges
	MissingCount int
	Progress     string // have/total, empty when the total is unknown
	State        string
	Updated      string // relative to now
}

var stateLabels = map[string]string{
	"N": "新建",
	"R": "订阅中",
	"P": "待定",
	"S": "暂停",
}

// NewCard renders sub with the given episode formatter.
func NewCard(sub database.Subscription, f format.EpisodeFormatter, now time.Time) Card {
	card := Card{
		ID:           shortID(sub.ID),
		RemoteID:     sub.RemoteID,
		Title:        sub.Name,
		Missing:      f.Format(sub.Missing),
		MissingCount: len(sub.Missing),
		State:        sub.State,
	}

	if sub.Year != "" {
		card.Title = fmt.Sprintf("%s (%s)", sub.Name, sub.Year)
	}
	if sub.Season > 0 {
		card.Season = format.Season(strconv.Itoa(sub.Season))
	}
	if label, ok := stateLabels[sub.State]; ok {
		card.State = label
	}
	if sub.TotalEpisode > 0 {
		have := max(sub.TotalEpisode-len(sub.Missing), 0)
		card.Progress = fmt.Sprintf("%d/%d", have, sub.TotalEpisode)
	}
	if ts, err := format.ParseTimestamp(sub.LastUpdate); err == nil {
		card.Updated = format.RelativeTime(ts, now)
	}

	return card
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
