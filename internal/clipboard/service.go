package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/mpdash/mpctl/internal/config"
)

// ErrNoClipboard is returned when no clipboard mechanism is available.
var ErrNoClipboard = errors.New("no clipboard tool found (install wl-clipboard, xclip or xsel)")

// Service copies text to the system clipboard.
//
// It tries the native clipboard first, then the configured command, then the
// platform's usual tools.
type Service struct {
	command string
	logger  *slog.Logger

	native   bool
	goos     string
	writeAll func(string) error
	lookPath func(string) (string, error)
	run      func(ctx context.Context, argv []string, stdin string) error
	isWSL    func() bool
}

// NewService creates a clipboard service. cfg may be nil.
func NewService(cfg *config.ClipboardConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		logger:   logger,
		native:   !clipboard.Unsupported,
		goos:     runtime.GOOS,
		writeAll: clipboard.WriteAll,
		lookPath: exec.LookPath,
		run:      runCommand,
		isWSL:    isWSL,
	}
	if cfg != nil {
		s.command = strings.TrimSpace(cfg.Command)
	}
	return s
}

// Write copies text to the clipboard.
func (s *Service) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.native {
		err := s.writeAll(text)
		if err == nil {
			s.logger.Debug("copied to clipboard", "method", "native", "text_length", len(text))
			return nil
		}
		s.logger.Warn("native clipboard failed, trying fallback", "error", err)
	}

	if s.command != "" {
		argv := parseCommand(s.command)
		if len(argv) == 0 {
			return fmt.Errorf("invalid clipboard command in config: %q", s.command)
		}
		if err := s.run(ctx, argv, text); err != nil {
			return fmt.Errorf("clipboard command %q failed: %w", argv[0], err)
		}
		s.logger.Debug("copied to clipboard", "method", "command", "command", argv[0])
		return nil
	}

	argv, err := s.platformCommand()
	if err != nil {
		return err
	}
	if err := s.run(ctx, argv, text); err != nil {
		return fmt.Errorf("failed to copy with %s: %w", argv[0], err)
	}
	s.logger.Debug("copied to clipboard", "method", "platform", "command", argv[0])
	return nil
}

// platformCommand picks the copy tool for the current OS.
func (s *Service) platformCommand() ([]string, error) {
	switch s.goos {
	case "windows":
		return []string{"clip.exe"}, nil
	case "darwin":
		return []string{"pbcopy"}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		if s.goos == "linux" && s.isWSL() {
			return []string{"clip.exe"}, nil
		}
		candidates := [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
		for _, argv := range candidates {
			if _, err := s.lookPath(argv[0]); err == nil {
				return argv, nil
			}
		}
		return nil, ErrNoClipboard
	default:
		return nil, fmt.Errorf("%w: unsupported OS %s", ErrNoClipboard, s.goos)
	}
}

func runCommand(ctx context.Context, argv []string, stdin string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(stdin)

	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// parseCommand splits a command line into arguments, respecting quotes.
func parseCommand(command string) []string {
	var parts []string
	var current strings.Builder
	var quote rune
	inArg := false

	for _, char := range command {
		switch {
		case quote != 0:
			if char == quote {
				quote = 0
			} else {
				current.WriteRune(char)
			}
		case char == '\'' || char == '"':
			quote = char
			inArg = true
		case char == ' ' || char == '\t':
			if inArg {
				parts = append(parts, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(char)
			inArg = true
		}
	}

	if inArg {
		parts = append(parts, current.String())
	}
	return parts
}

// isWSL reports whether we run under Windows Subsystem for Linux.
func isWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}
