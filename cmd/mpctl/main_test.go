package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpdash/mpctl/internal/api"
	"github.com/mpdash/mpctl/internal/format"
)

// testConfig isolates XDG directories and writes a config pointing at baseURL.
func testConfig(t *testing.T, baseURL string) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	if baseURL == "" {
		baseURL = "http://127.0.0.1:1"
	}
	content := "api:\n" +
		"  base_url: " + baseURL + "\n" +
		"  token: secret\n" +
		"  timeout: 5s\n" +
		"database:\n" +
		"  path: " + filepath.Join(dir, "cache.db") + "\n" +
		"logging:\n" +
		"  file: " + filepath.Join(dir, "mpctl.log") + "\n" +
		"display:\n" +
		"  color: false\n"

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd(strings.NewReader(stdin))
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestEpisodesCommand(t *testing.T) {
	cfg := testConfig(t, "")

	tests := []struct {
		name     string
		stdin    string
		args     []string
		expected string
	}{
		{"args", "", []string{"episodes", "3", "1", "2", "7", "8", "9", "5"}, "1-3、5、7-9\n"},
		{"ranges in args", "", []string{"episodes", "1-3", "4", "9"}, "1-4、9\n"},
		{"stdin", "1\n2\n3\n10\n", []string{"episodes", "--separator", ","}, "1-3,10\n"},
		{"negative", "", []string{"episodes", "--", "-2", "-1", "0", "5"}, "-2-0、5\n"},
		{"parse", "", []string{"episodes", "--parse", "1-3、5"}, "1 2 3 5\n"},
		{"empty", "", []string{"episodes"}, "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.stdin, append([]string{"--config", cfg}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}

	t.Run("invalid input", func(t *testing.T) {
		_, _, err := run(t, "", "--config", cfg, "episodes", "1-x")
		assert.ErrorIs(t, err, format.ErrInvalidEpisode)
	})
}

func TestValueCommands(t *testing.T) {
	cfg := testConfig(t, "")
	threeHoursAgo := time.Now().Add(-3*time.Hour - time.Minute).Format("2006-01-02 15:04:05")

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"size", []string{"size", "1536"}, "1.5 KB\n"},
		{"size binary", []string{"size", "--binary", "1536"}, "1.50 KB\n"},
		{"size decimals", []string{"size", "-d", "0", "1536"}, "2 KB\n"},
		{"count", []string{"count", "12345"}, "12.3k\n"},
		{"duration seconds", []string{"duration", "3725"}, "1小时2分\n"},
		{"duration go syntax", []string{"duration", "45s"}, "45秒\n"},
		{"ago", append([]string{"ago"}, strings.Fields(threeHoursAgo)...), "3 小时前\n"},
		{"ago short", []string{"ago", "--short", threeHoursAgo}, "3小时\n"},
		{"date", []string{"date", "2024-01-05", "10:30:00"}, "Jan 5, 2024\n"},
		{"date short", []string{"date", "--short", "2024-01-05 10:30:00"}, "Jan 5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, "", append([]string{"--config", cfg}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}

	t.Run("negative size", func(t *testing.T) {
		_, _, err := run(t, "", "--config", cfg, "size", "--binary", "--", "-5")
		assert.ErrorIs(t, err, format.ErrNegativeSize)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		_, _, err := run(t, "", "--config", cfg, "ago", "yesterday")
		assert.Error(t, err)
	})
}

func TestConfigInit(t *testing.T) {
	testConfig(t, "")
	path := filepath.Join(t.TempDir(), "mpctl.yaml")

	out, _, err := run(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, _, err = run(t, "", "config", "init", path)
	assert.Error(t, err)

	_, _, err = run(t, "", "config", "init", "--force", path)
	assert.NoError(t, err)

	out, _, err = run(t, "", "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "episode_separator: 、")
}

func newDashboardServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/subscribe/":
			_, _ = w.Write([]byte(`[
				{"id": 1, "name": "Frieren", "year": "2023", "type": "电视剧", "tmdbid": 100,
				 "season": 1, "total_episode": 28, "state": "R"},
				{"id": 2, "name": "Dune", "year": "2021", "type": "电影", "tmdbid": 200, "state": "N"}
			]`))
		case "/api/v1/mediaserver/notexists":
			_, _ = w.Write([]byte(`[
				{"season": 1, "episodes": [28, 27, 26, 25, 20], "total_episode": 28},
				{"season": 2, "episodes": [1, 2, 3]}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestMissingCommand(t *testing.T) {
	cfg := testConfig(t, newDashboardServer(t).URL)

	out, _, err := run(t, "", "--config", cfg, "missing", "--tmdbid", "100", "--season", "1", "--title", "Frieren")
	require.NoError(t, err)
	assert.Equal(t, "Frieren\nS01  5/28 missing  20、25-28\n", out)

	out, _, err = run(t, "", "--config", cfg, "missing", "--tmdbid", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "TMDB 100")
	assert.Contains(t, out, "S02  3 missing     1-3")

	_, _, err = run(t, "", "--config", cfg, "missing")
	assert.Error(t, err, "tmdbid is required")
}

func TestSubCommands(t *testing.T) {
	cfg := testConfig(t, newDashboardServer(t).URL)

	out, _, err := run(t, "", "--config", cfg, "sub", "sync")
	require.NoError(t, err)
	assert.Equal(t, "synced: 2 added, 0 updated, 0 removed\n", out)

	out, errOut, err := run(t, "", "--config", cfg, "sub", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Frieren (2023)")
	assert.Contains(t, out, "Dune (2021)")
	assert.Contains(t, out, "20、25-28")
	assert.Contains(t, errOut, "last sync")

	out, _, err = run(t, "", "--config", cfg, "sub", "list", "--missing")
	require.NoError(t, err)
	assert.NotContains(t, out, "Dune")

	_, _, err = run(t, "", "--config", cfg, "sub", "list", "--sort", "random")
	assert.Error(t, err)

	out, _, err = run(t, "", "--config", cfg, "sub", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Frieren (2023)")
	assert.Contains(t, out, "missing   20、25-28")

	out, _, err = run(t, "", "--config", cfg, "sub", "mark", "1", "25-26")
	require.NoError(t, err)
	assert.Contains(t, out, "missing   20、27-28")
	assert.Contains(t, out, "progress  25/28")

	out, _, err = run(t, "", "--config", cfg, "sub", "find", "frn")
	require.NoError(t, err)
	assert.Contains(t, out, "Frieren")

	_, _, err = run(t, "", "--config", cfg, "sub", "show", "99999")
	assert.Error(t, err)
}

func TestSubSync_Unauthorized(t *testing.T) {
	cfg := testConfig(t, newDashboardServer(t).URL)

	_, _, err := run(t, "", "--config", cfg, "sub", "sync")
	require.NoError(t, err)

	t.Setenv("MPCTL_API_TOKEN", "wrong")
	_, _, err = run(t, "", "--config", cfg, "sub", "sync")
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestVersionCommand(t *testing.T) {
	testConfig(t, "")

	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mpctl version dev")
}
