package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpdash/mpctl/internal/clipboard"
	"github.com/mpdash/mpctl/internal/format"
)

func (a *app) episodesCmd() *cobra.Command {
	var (
		parse     bool
		copyOut   bool
		separator string
	)

	cmd := &cobra.Command{
		Use:   "episodes [n...]",
		Short: "Compress episode numbers into ranges",
		Long: `Compress episode numbers into ranges such as "1-3、5、7-9".
Numbers and ranges are read from the arguments, or from stdin when none are given.
Use -- before negative numbers.`,
		Example: `  mpctl episodes 1 2 3 5 7 8 9
  mpctl episodes --parse "1-3、5"
  seq 1 12 | mpctl episodes --separator ,`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.input(args)
			if err != nil {
				return err
			}

			nums, err := format.ParseEpisodes(text)
			if err != nil {
				return err
			}

			var out string
			if parse {
				out = joinInts(nums, " ")
			} else {
				f := a.formatter()
				if cmd.Flags().Changed("separator") {
					f.Separator = separator
				}
				out = f.Format(nums)
			}
			a.logger.Debug("formatted episodes", "count", len(nums), "parse", parse)

			if err := a.printer(cmd).Line(out); err != nil {
				return err
			}

			if copyOut {
				if err := clipboard.NewService(&a.cfg.Advanced.Clipboard, a.logger).Write(cmd.Context(), out); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "copied to clipboard")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&parse, "parse", "p", false, "expand a range string into episode numbers")
	cmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "copy the result to the clipboard")
	cmd.Flags().StringVarP(&separator, "separator", "s", format.DefaultEpisodeSeparator, "separator between ranges (overrides config)")
	return cmd
}

func joinInts(nums []int, sep string) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}

func (a *app) sizeCmd() *cobra.Command {
	var (
		binary   bool
		decimals int
	)

	cmd := &cobra.Command{
		Use:   "size <bytes>",
		Short: "Format a byte count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(strings.ReplaceAll(args[0], ",", ""), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid byte count %q", args[0])
			}

			if binary {
				out, err := format.FileSize(n)
				if err != nil {
					return err
				}
				return a.printer(cmd).Line(out)
			}

			if !cmd.Flags().Changed("decimals") {
				decimals = a.cfg.Display.ByteDecimals
			}
			return a.printer(cmd).Line(format.Bytes(n, decimals))
		},
	}

	cmd.Flags().BoolVarP(&binary, "binary", "b", false, "fixed two decimals, B to TB")
	cmd.Flags().IntVarP(&decimals, "decimals", "d", 2, "maximum fraction digits (overrides config)")
	return cmd
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <n>",
		Short: "Format a count, abbreviating large values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", args[0])
			}
			return a.printer(cmd).Line(format.Count(n))
		},
	}
}

func (a *app) durationCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "duration <seconds>",
		Short:   "Format a duration in hours, minutes and seconds",
		Example: "  mpctl duration 3725\n  mpctl duration 1h30m",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[0])
			if err != nil {
				d, derr := time.ParseDuration(args[0])
				if derr != nil {
					return fmt.Errorf("invalid duration %q", args[0])
				}
				seconds = int(d.Seconds())
			}
			return a.printer(cmd).Line(format.Seconds(seconds))
		},
	}
}

func (a *app) agoCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:     "ago <time>",
		Short:   "Show how long ago a timestamp was",
		Example: "  mpctl ago 2024-01-05 10:30:00\n  mpctl ago --short 2024-01-05T10:30:00Z",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := format.ParseTimestamp(strings.Join(args, " "))
			if err != nil {
				return err
			}

			now := time.Now()
			if short {
				return a.printer(cmd).Line(format.TimeDifference(t, now))
			}
			return a.printer(cmd).Line(format.RelativeTime(t, now))
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "compact form, e.g. 3天前")
	return cmd
}

func (a *app) dateCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:     "date <time>",
		Short:   "Format a timestamp as a short date",
		Example: "  mpctl date 2024-01-05 10:30:00\n  mpctl date --short 2024-01-05T10:30:00Z",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := format.ParseTimestamp(strings.Join(args, " "))
			if err != nil {
				return err
			}

			if short {
				return a.printer(cmd).Line(format.MonthShort(t, time.Now(), true))
			}
			return a.printer(cmd).Line(format.Date(t))
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "month and day, or the time of day for today")
	return cmd
}
