package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mpdash/mpctl/internal/format"
)

// episodeColumnFormat stores episode lists in the compact "1-3,5" form.
var episodeColumnFormat = format.EpisodeFormatter{Separator: ","}

// EpisodeList is a set of episode numbers persisted as a range string.
type EpisodeList []int

// Value implements driver.Valuer
func (l EpisodeList) Value() (driver.Value, error) {
	return episodeColumnFormat.Format(l), nil
}

// Scan implements sql.Scanner
func (l *EpisodeList) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into EpisodeList", src)
	}

	eps, err := format.ParseEpisodes(raw)
	if err != nil {
		return fmt.Errorf("failed to decode episode list %q: %w", raw, err)
	}
	*l = eps
	return nil
}

// Subscription is a locally cached dashboard subscription
type Subscription struct {
	ID           string      `gorm:"primaryKey"` // uuid
	RemoteID     int         `gorm:"not null;uniqueIndex"`
	Name         string      `gorm:"not null"`
	Year         string      `gorm:""`
	Type         string      `gorm:"not null;index"` // 电影 or 电视剧
	Season       int         `gorm:"default:0"`
	TMDBID       int         `gorm:"column:tmdb_id;index"`
	TotalEpisode int         `gorm:"default:0"`
	StartEpisode int         `gorm:"default:0"`
	LackEpisode  int         `gorm:"default:0"`
	State        string      `gorm:""` // N new, R running, P pending, S stopped
	LastUpdate   string      `gorm:""` // as reported by the dashboard
	Missing      EpisodeList `gorm:"type:text;default:''"`
	SyncedAt     time.Time   `gorm:"index;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the table name
func (Subscription) TableName() string {
	return "subscriptions"
}

// Setting represents a key-value store for application settings
type Setting struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// TableName overrides the table name
func (Setting) TableName() string {
	return "settings"
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Subscription{},
		&Setting{},
	)
}
