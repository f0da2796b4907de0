package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpdash/mpctl/internal/api"
	"github.com/mpdash/mpctl/internal/format"
	"github.com/mpdash/mpctl/internal/subscription"
)

func (a *app) missingCmd() *cobra.Command {
	var (
		tmdbID    int
		season    int
		mediaType string
		title     string
	)

	cmd := &cobra.Command{
		Use:     "missing",
		Short:   "Ask the media server which episodes are missing",
		Example: "  mpctl missing --tmdbid 209867 --season 1",
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard := api.NewDashboard(a.cfg, a.logger)

			infos, err := dashboard.NotExists(cmd.Context(), api.MediaQuery{
				TMDBID: tmdbID,
				Type:   mediaType,
				Title:  title,
				Season: season,
			})
			if err != nil {
				return fmt.Errorf("failed to query missing episodes: %w", err)
			}

			// the server may report every season; keep the requested one
			if season > 0 {
				filtered := infos[:0]
				for _, info := range infos {
					if info.Season == season {
						filtered = append(filtered, info)
					}
				}
				infos = filtered
			}

			heading := title
			if heading == "" {
				heading = fmt.Sprintf("TMDB %d", tmdbID)
			}
			return a.printer(cmd).Missing(heading, infos, a.formatter())
		},
	}

	cmd.Flags().IntVar(&tmdbID, "tmdbid", 0, "TMDB id of the media")
	cmd.Flags().IntVar(&season, "season", 0, "season number (0 for all)")
	cmd.Flags().StringVar(&mediaType, "type", api.MediaTypeTV, "media type ("+api.MediaTypeTV+" or "+api.MediaTypeMovie+")")
	cmd.Flags().StringVar(&title, "title", "", "title shown above the report")
	_ = cmd.MarkFlagRequired("tmdbid")
	return cmd
}

func (a *app) subCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sub",
		Aliases: []string{"subs", "subscriptions"},
		Short:   "Manage the local subscription cache",
	}

	cmd.AddCommand(
		a.subSyncCmd(),
		a.subListCmd(),
		a.subFindCmd(),
		a.subShowCmd(),
		a.subMarkCmd(),
	)
	return cmd
}

func (a *app) subSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch subscriptions and their missing episodes from the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard := api.NewDashboard(a.cfg, a.logger)

			return a.withSubscriptions(func(svc *subscription.Service) error {
				result, err := svc.Sync(cmd.Context(), dashboard)
				if err != nil {
					return err
				}
				return a.printer(cmd).SyncSummary(result)
			})
		},
	}
}

func (a *app) subListCmd() *cobra.Command {
	var (
		mediaType   string
		state       string
		missingOnly bool
		limit       int
		sortBy      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order := subscription.SortOrder(sortBy)
			switch order {
			case subscription.SortNameAsc, subscription.SortRecentFirst, subscription.SortMissingFirst:
			default:
				return fmt.Errorf("invalid sort order %q (name, recent, missing)", sortBy)
			}

			return a.withSubscriptions(func(svc *subscription.Service) error {
				subs, err := svc.List(subscription.FilterOptions{
					Type:        mediaType,
					State:       strings.ToUpper(state),
					MissingOnly: missingOnly,
					Limit:       limit,
					SortBy:      order,
				})
				if err != nil {
					return err
				}

				now := time.Now()
				cards := make([]subscription.Card, len(subs))
				for i, sub := range subs {
					cards[i] = subscription.NewCard(sub, a.formatter(), now)
				}

				p := a.printer(cmd)
				if err := p.Table(cards); err != nil {
					return err
				}

				last, err := svc.LastSync()
				if err != nil {
					return err
				}
				if !last.IsZero() {
					fmt.Fprintf(cmd.ErrOrStderr(), "last sync %s\n", format.RelativeTime(last, now))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", "", "filter by media type ("+api.MediaTypeTV+" or "+api.MediaTypeMovie+")")
	cmd.Flags().StringVar(&state, "state", "", "filter by state (N, R, P, S)")
	cmd.Flags().BoolVarP(&missingOnly, "missing", "m", false, "only subscriptions with missing episodes")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum rows (0 for all)")
	cmd.Flags().StringVar(&sortBy, "sort", string(subscription.SortNameAsc), "sort order: name, recent, missing")
	return cmd
}

func (a *app) subFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy search cached subscriptions by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSubscriptions(func(svc *subscription.Service) error {
				matches, err := svc.Find(strings.Join(args, " "))
				if err != nil {
					return err
				}
				return a.printer(cmd).Matches(matches)
			})
		},
	}
}

func (a *app) subShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one subscription (remote id, uuid or uuid prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSubscriptions(func(svc *subscription.Service) error {
				sub, err := svc.Get(args[0])
				if err != nil {
					return err
				}
				return a.printer(cmd).Detail(subscription.NewCard(*sub, a.formatter(), time.Now()))
			})
		},
	}
}

func (a *app) subMarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "mark <id> <episodes>",
		Short:   "Mark episodes as downloaded in the local cache",
		Example: "  mpctl sub mark 12 1-3、5",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			episodes, err := format.ParseEpisodes(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				return fmt.Errorf("no episodes given")
			}

			return a.withSubscriptions(func(svc *subscription.Service) error {
				sub, err := svc.MarkDownloaded(args[0], episodes)
				if err != nil {
					return err
				}
				a.logger.Info("marked episodes", "subscription", sub.Name, "episodes", a.formatter().Format(episodes))
				return a.printer(cmd).Detail(subscription.NewCard(*sub, a.formatter(), time.Now()))
			})
		},
	}
}
