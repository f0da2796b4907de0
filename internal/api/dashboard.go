// Package api talks to the media dashboard backend.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mpdash/mpctl/internal/config"
)

const (
	subscribePath = "/api/v1/subscribe/"
	notExistsPath = "/api/v1/mediaserver/notexists"
)

// Dashboard is a typed client for the dashboard endpoints mpctl needs.
type Dashboard struct {
	http   *Client
	logger *slog.Logger
}

// NewDashboard creates a dashboard client from the API section of cfg.
func NewDashboard(cfg *config.Config, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dashboard{
		http: NewClient(ClientConfig{
			BaseURL: cfg.API.BaseURL,
			Token:   cfg.API.Token,
			Timeout: cfg.API.Timeout,
			Debug:   cfg.Advanced.Debug,
			Logger:  logger,
		}),
		logger: logger,
	}
}

// Subscriptions lists every subscription of the current user.
func (d *Dashboard) Subscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	if _, err := d.http.Get(ctx, subscribePath, nil, &subs); err != nil {
		return nil, fmt.Errorf("list subscriptions failed: %w", err)
	}

	d.logger.Debug("fetched subscriptions", "count", len(subs))
	return subs, nil
}

// Subscription fetches a single subscription by its dashboard id.
func (d *Dashboard) Subscription(ctx context.Context, id int) (*Subscription, error) {
	var sub Subscription
	if _, err := d.http.Get(ctx, subscribePath+strconv.Itoa(id), nil, &sub); err != nil {
		return nil, fmt.Errorf("get subscription %d failed: %w", id, err)
	}
	return &sub, nil
}

// NotExists returns, per season, the episodes the media server is missing.
func (d *Dashboard) NotExists(ctx context.Context, q MediaQuery) ([]NotExistMediaInfo, error) {
	if q.Type == "" {
		q.Type = MediaTypeTV
	}

	var infos []NotExistMediaInfo
	if _, err := d.http.Post(ctx, notExistsPath, q, &infos); err != nil {
		return nil, fmt.Errorf("missing episode lookup failed: %w", err)
	}

	d.logger.Debug("fetched missing episodes", "tmdbid", q.TMDBID, "seasons", len(infos))
	return infos, nil
}
