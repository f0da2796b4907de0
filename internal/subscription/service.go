// Package subscription keeps a local cache of dashboard subscriptions and
// the episodes each one is still missing.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"gorm.io/gorm"

	"github.com/mpdash/mpctl/internal/api"
	"github.com/mpdash/mpctl/internal/database"
)

var (
	// ErrNotFound is returned when no cached subscription matches an id.
	ErrNotFound = errors.New("subscription not found")
	// ErrAmbiguous is returned when an id prefix matches several subscriptions.
	ErrAmbiguous = errors.New("subscription id is ambiguous")
)

// Source supplies subscriptions and their missing episodes.
// *api.Dashboard implements it.
type Source interface {
	Subscriptions(ctx context.Context) ([]api.Subscription, error)
	NotExists(ctx context.Context, q api.MediaQuery) ([]api.NotExistMediaInfo, error)
}

// SortOrder defines the sorting order for listed subscriptions
type SortOrder string

const (
	SortNameAsc      SortOrder = "name"
	SortRecentFirst  SortOrder = "recent"
	SortMissingFirst SortOrder = "missing"
)

// FilterOptions defines filtering options for List
type FilterOptions struct {
	Type        string // 电影, 电视剧, or empty for all
	State       string // N, R, P, S or empty for all
	MissingOnly bool   // only subscriptions with missing episodes
	Limit       int    // 0 = no limit
	SortBy      SortOrder
}

// SyncResult summarizes a Sync run.
type SyncResult struct {
	Added   int
	Updated int
	Removed int
	Failed  int // subscriptions whose missing episodes could not be fetched
}

// Match is a fuzzy search hit.
type Match struct {
	Subscription   database.Subscription
	Score          int
	MatchedIndexes []int
}

// Service provides subscription cache operations
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new subscription service
func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, logger: logger, now: time.Now}
}

// Sync replaces the cache with the subscriptions src currently reports.
// Missing episodes are fetched for TV subscriptions; when that lookup fails
// the previously cached list is kept.
func (s *Service) Sync(ctx context.Context, src Source) (SyncResult, error) {
	var result SyncResult
	if s.db == nil {
		return result, fmt.Errorf("database connection is nil")
	}

	remote, err := src.Subscriptions(ctx)
	if err != nil {
		return result, err
	}

	missing := make(map[int][]int, len(remote))
	for _, sub := range remote {
		if !sub.IsTV() {
			continue
		}

		eps, err := s.fetchMissing(ctx, src, sub)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			s.logger.Warn("failed to fetch missing episodes", "subscription", sub.Name, "error", err)
			result.Failed++
			continue
		}
		missing[sub.ID] = eps
	}

	now := s.now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		seen := make([]int, 0, len(remote))
		for _, sub := range remote {
			seen = append(seen, sub.ID)

			var row database.Subscription
			err := tx.Where("remote_id = ?", sub.ID).First(&row).Error
			isNew := errors.Is(err, gorm.ErrRecordNotFound)
			if err != nil && !isNew {
				return err
			}
			if isNew {
				row.ID = uuid.NewString()
			}

			applyRemote(&row, sub)
			if eps, ok := missing[sub.ID]; ok {
				row.Missing = eps
			}
			row.SyncedAt = now

			if isNew {
				err = tx.Create(&row).Error
				result.Added++
			} else {
				err = tx.Save(&row).Error
				result.Updated++
			}
			if err != nil {
				return fmt.Errorf("failed to save %q: %w", sub.Name, err)
			}
		}

		stale := tx.Model(&database.Subscription{})
		if len(seen) > 0 {
			stale = stale.Where("remote_id NOT IN ?", seen)
		} else {
			stale = stale.Where("1 = 1")
		}
		res := stale.Delete(&database.Subscription{})
		if res.Error != nil {
			return fmt.Errorf("failed to prune subscriptions: %w", res.Error)
		}
		result.Removed = int(res.RowsAffected)

		return database.SaveSetting(tx, database.SettingLastSync, now.UTC().Format(time.RFC3339))
	})
	if err != nil {
		return result, fmt.Errorf("sync failed: %w", err)
	}

	s.logger.Info("subscriptions synced",
		"added", result.Added, "updated", result.Updated,
		"removed", result.Removed, "failed", result.Failed)
	return result, nil
}

func (s *Service) fetchMissing(ctx context.Context, src Source, sub api.Subscription) ([]int, error) {
	infos, err := src.NotExists(ctx, api.MediaQuery{
		TMDBID:   sub.TMDBID,
		DoubanID: sub.DoubanID,
		Type:     sub.Type,
		Title:    sub.Name,
		Year:     sub.Year,
		Season:   sub.Season,
	})
	if err != nil {
		return nil, err
	}

	var eps []int
	for _, info := range infos {
		if sub.Season == 0 || info.Season == sub.Season {
			eps = append(eps, info.Episodes...)
		}
	}
	slices.Sort(eps)
	return slices.Compact(eps), nil
}

func applyRemote(row *database.Subscription, sub api.Subscription) {
	row.RemoteID = sub.ID
	row.Name = sub.Name
	row.Year = sub.Year
	row.Type = sub.Type
	row.Season = sub.Season
	row.TMDBID = sub.TMDBID
	row.TotalEpisode = sub.TotalEpisode
	row.StartEpisode = sub.StartEpisode
	row.LackEpisode = sub.LackEpisode
	row.State = sub.State
	row.LastUpdate = sub.LastUpdate
}

// List returns cached subscriptions matching filter
func (s *Service) List(filter FilterOptions) ([]database.Subscription, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := s.db.Model(&database.Subscription{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.MissingOnly {
		query = query.Where("missing <> ''")
	}

	switch filter.SortBy {
	case SortRecentFirst:
		query = query.Order("last_update DESC")
	case SortMissingFirst:
		query = query.Order("lack_episode DESC").Order("name ASC")
	default:
		query = query.Order("name COLLATE NOCASE ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var subs []database.Subscription
	if err := query.Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// Get resolves id as a dashboard id, a full uuid or a unique uuid prefix.
func (s *Service) Get(id string) (*database.Subscription, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	var subs []database.Subscription
	if remoteID, err := strconv.Atoi(id); err == nil {
		if err := s.db.Where("remote_id = ?", remoteID).Limit(1).Find(&subs).Error; err != nil {
			return nil, err
		}
		if len(subs) == 1 {
			return &subs[0], nil
		}
	}

	if err := s.db.Where(`id LIKE ? ESCAPE '\'`, likePrefix.Replace(id)+"%").Limit(2).Find(&subs).Error; err != nil {
		return nil, err
	}
	switch len(subs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return &subs[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// likePrefix escapes LIKE wildcards so an id prefix only matches literally.
var likePrefix = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Find fuzzy-matches query against subscription names, best match first.
func (s *Service) Find(query string) ([]Match, error) {
	subs, err := s.List(FilterOptions{})
	if err != nil {
		return nil, err
	}

	names := make([]string, len(subs))
	for i, sub := range subs {
		names[i] = sub.Name
	}

	found := fuzzy.Find(query, names)
	matches := make([]Match, len(found))
	for i, m := range found {
		matches[i] = Match{
			Subscription:   subs[m.Index],
			Score:          m.Score,
			MatchedIndexes: m.MatchedIndexes,
		}
	}
	return matches, nil
}

// MarkDownloaded removes episodes from a subscription's missing list.
func (s *Service) MarkDownloaded(id string, episodes []int) (*database.Subscription, error) {
	sub, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	remaining := slices.DeleteFunc(slices.Clone(sub.Missing), func(ep int) bool {
		return slices.Contains(episodes, ep)
	})
	sub.Missing = remaining
	sub.LackEpisode = len(remaining)

	err = s.db.Model(sub).Updates(map[string]any{
		"missing":      sub.Missing,
		"lack_episode": sub.LackEpisode,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update %q: %w", sub.Name, err)
	}

	s.logger.Debug("marked episodes downloaded", "subscription", sub.Name, "episodes", episodes)
	return sub, nil
}

// LastSync returns when Sync last completed, or the zero time.
func (s *Service) LastSync() (time.Time, error) {
	if s.db == nil {
		return time.Time{}, fmt.Errorf("database connection is nil")
	}

	v, err := database.GetSetting(s.db, database.SettingLastSync)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
