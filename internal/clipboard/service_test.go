package clipboard

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpdash/mpctl/internal/config"
)

type recorder struct {
	argv  []string
	stdin string
	err   error
}

func (r *recorder) run(ctx context.Context, argv []string, stdin string) error {
	r.argv = argv
	r.stdin = stdin
	return r.err
}

func newTestService(command string, rec *recorder) *Service {
	s := NewService(&config.ClipboardConfig{Command: command}, nil)
	s.native = true
	s.writeAll = func(string) error { return errors.New("no display") }
	s.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	s.isWSL = func() bool { return false }
	s.run = rec.run
	return s
}

func TestService_Write_Native(t *testing.T) {
	rec := &recorder{}
	s := newTestService("", rec)

	var copied string
	s.writeAll = func(text string) error {
		copied = text
		return nil
	}

	require.NoError(t, s.Write(context.Background(), "1-3、5"))
	assert.Equal(t, "1-3、5", copied)
	assert.Nil(t, rec.argv, "fallbacks are not tried")
}

func TestService_Write_ConfiguredCommand(t *testing.T) {
	rec := &recorder{}
	s := newTestService(`xclip -selection "clipboard"`, rec)

	require.NoError(t, s.Write(context.Background(), "20、25-28"))
	assert.Equal(t, []string{"xclip", "-selection", "clipboard"}, rec.argv)
	assert.Equal(t, "20、25-28", rec.stdin)

	rec.err = errors.New("exit status 1")
	err := s.Write(context.Background(), "x")
	assert.ErrorContains(t, err, "xclip")
}

func TestService_Write_Platform(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		wsl      bool
		tools    []string
		expected []string
	}{
		{"macos", "darwin", false, nil, []string{"pbcopy"}},
		{"windows", "windows", false, nil, []string{"clip.exe"}},
		{"wsl", "linux", true, []string{"xclip"}, []string{"clip.exe"}},
		{"wayland preferred", "linux", false, []string{"xclip", "wl-copy"}, []string{"wl-copy"}},
		{"xsel last", "linux", false, []string{"xsel"}, []string{"xsel", "--clipboard", "--input"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			s := newTestService("", rec)
			s.goos = tt.goos
			s.isWSL = func() bool { return tt.wsl }
			s.lookPath = func(name string) (string, error) {
				for _, tool := range tt.tools {
					if tool == name {
						return "/usr/bin/" + name, nil
					}
				}
				return "", exec.ErrNotFound
			}

			require.NoError(t, s.Write(context.Background(), "1"))
			assert.Equal(t, tt.expected, rec.argv)
		})
	}
}

func TestService_Write_NoTool(t *testing.T) {
	s := newTestService("", &recorder{})
	s.goos = "linux"
	assert.ErrorIs(t, s.Write(context.Background(), "1"), ErrNoClipboard)

	s.goos = "plan9"
	assert.ErrorIs(t, s.Write(context.Background(), "1"), ErrNoClipboard)
}

func TestService_Write_CancelledContext(t *testing.T) {
	s := newTestService("", &recorder{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Write(ctx, "1"), context.Canceled)
}

func TestRunCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out := filepath.Join(t.TempDir(), "clip.txt")
	argv := parseCommand(`sh -c "cat > ` + out + `"`)
	require.NoError(t, runCommand(context.Background(), argv, "1-3、5"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "1-3、5", string(data))

	err = runCommand(context.Background(), []string{"sh", "-c", "echo nope >&2; exit 3"}, "")
	assert.ErrorContains(t, err, "nope")
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"pbcopy", []string{"pbcopy"}},
		{"xclip -selection clipboard", []string{"xclip", "-selection", "clipboard"}},
		{`sh -c "cat > /tmp/a b"`, []string{"sh", "-c", "cat > /tmp/a b"}},
		{`tool 'it''s'`, []string{"tool", "its"}},
		{`tool ""`, []string{"tool", ""}},
		{"  spaced\targs  ", []string{"spaced", "args"}},
		{"", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseCommand(tt.input), tt.input)
	}
}
