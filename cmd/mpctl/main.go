package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mpdash/mpctl/internal/config"
	"github.com/mpdash/mpctl/internal/database"
	"github.com/mpdash/mpctl/internal/format"
	"github.com/mpdash/mpctl/internal/render"
	"github.com/mpdash/mpctl/internal/subscription"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(os.Stdin).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app carries global flags and the state loaded before each command runs.
type app struct {
	cfgFile  string
	logLevel string
	noColor  bool
	debug    bool

	stdin  io.Reader
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	a := &app{stdin: stdin}

	root := &cobra.Command{
		Use:   "mpctl",
		Short: "Command-line companion for the media dashboard",
		Long: `mpctl formats episode lists the way the media dashboard shows them,
queries the dashboard for missing episodes, and keeps a local cache of
subscriptions for quick lookups.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/mpctl/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug mode (verbose HTTP logging)")

	root.AddCommand(
		a.versionCmd(),
		a.configCmd(),
		a.episodesCmd(),
		a.sizeCmd(),
		a.countCmd(),
		a.durationCmd(),
		a.agoCmd(),
		a.dateCmd(),
		a.missingCmd(),
		a.subCmd(),
	)
	return root
}

// setup loads configuration and the logger for every command except config init.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
		return nil
	}

	if err := config.InitializeDirs(); err != nil {
		return fmt.Errorf("failed to initialize directories: %w", err)
	}

	cfg, _, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if a.debug {
		cfg.Advanced.Debug = true
		if a.logLevel == "" {
			cfg.Logging.Level = "debug"
		}
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.noColor {
		cfg.Logging.Color = false
		cfg.Display.Color = false
	}

	logger, err := config.InitLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	logger.Debug("configuration loaded", "command", cmd.CommandPath(), "api", cfg.API.BaseURL)
	return nil
}

func (a *app) printer(cmd *cobra.Command) *render.Printer {
	return render.NewPrinter(cmd.OutOrStdout(), render.Options{
		Color:     a.cfg.Display.Color,
		Separator: a.cfg.Display.EpisodeSeparator,
		Width:     a.cfg.Display.Width,
	})
}

func (a *app) formatter() format.EpisodeFormatter {
	return format.EpisodeFormatter{Separator: a.cfg.Display.EpisodeSeparator}
}

// withSubscriptions opens the cache for the duration of fn.
func (a *app) withSubscriptions(fn func(svc *subscription.Service) error) error {
	db, err := database.Open(&a.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func(db *gorm.DB) {
		if err := database.Close(db); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}(db)

	return fn(subscription.NewService(db, a.logger))
}

// input joins args, or reads stdin when there are none.
func (a *app) input(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if a.stdin == nil {
		return "", nil
	}

	var b strings.Builder
	scanner := bufio.NewScanner(a.stdin)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return b.String(), nil
}
