package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/leighmacdonald/hltv-live/internal/config"
	"github.com/leighmacdonald/hltv-live/internal/scrape"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	return root
}

func TestDefaults(t *testing.T) {
	isolate(t)
	t.Chdir(t.TempDir())

	conf, err := config.NewLoader(nil).Read()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, conf.UpdateInterval())
	require.Equal(t, config.DefaultScoreboardEvery, conf.ScoreboardEvery)
	require.Equal(t, scrape.DefaultBaseURL, conf.BaseURL)
	require.Equal(t, scrape.DefaultUserAgent, conf.UserAgent)
	require.Equal(t, config.DefaultSource, conf.Source)
	require.True(t, conf.Headless)
	require.Equal(t, 30*time.Second, conf.NavigationTimeout())
	require.Equal(t, 15*time.Second, conf.HTTPTimeout())
	require.Empty(t, conf.MetricsAddress)
	require.Equal(t, time.TimeOnly, conf.TimeFormat)

	opts := conf.ScrapeOptions()
	require.True(t, opts.Headless)
	require.Equal(t, 30*time.Second, opts.NavigationTimeout)
	require.Equal(t, scrape.DefaultBaseURL, opts.BaseURL)
}

func TestReadFileAndEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Chdir(dir)

	body := []byte("update_freq_ms: 1500\nsource: http\nmatch_id: \"2382614\"\ndebug: true\ntime_format: \"15:04\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigName+".yaml"), body, 0o600))
	t.Setenv("HLTVLIVE_SCOREBOARD_EVERY", "2")

	loader := config.NewLoader(nil)
	conf, err := loader.Read()
	require.NoError(t, err)
	require.Equal(t, 1500*time.Millisecond, conf.UpdateInterval())
	require.Equal(t, "http", conf.Source)
	require.Equal(t, "2382614", conf.MatchID)
	require.Equal(t, 2, conf.ScoreboardEvery)
	require.True(t, conf.Debug)
	require.Equal(t, "15:04", conf.TimeFormat)
	require.Equal(t, filepath.Join(dir, config.DefaultConfigName+".yaml"), loader.Path())
}

func TestReadInvalid(t *testing.T) {
	isolate(t)
	t.Chdir(t.TempDir())
	t.Setenv("HLTVLIVE_UPDATE_FREQ_MS", "0")

	_, err := config.NewLoader(nil).Read()
	require.Error(t, err)
}

func TestLoggerInit(t *testing.T) {
	root := isolate(t)
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	closer, err := config.LoggerInit(config.DefaultLogName, config.Config{Debug: true}.LogLevel())
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	require.FileExists(t, filepath.Join(root, config.ConfigDirName, config.DefaultLogName))
}

func TestWrite(t *testing.T) {
	isolate(t)
	t.Chdir(t.TempDir())

	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	conf := config.Config{
		UpdateFreqMs:    1000,
		ScoreboardEvery: 3,
		Source:          "http",
		BrowserBin:      "/usr/bin/chromium",
		MatchID:         "2382614",
	}
	require.NoError(t, config.NewLoader(nil).Write(conf, configPath))

	loader := config.NewLoader(nil)
	loader.SetConfigFile(configPath)
	read, err := loader.Read()
	require.NoError(t, err)
	require.Equal(t, time.Second, read.UpdateInterval())
	require.Equal(t, 3, read.ScoreboardEvery)
	require.Equal(t, "http", read.Source)
	require.Equal(t, "2382614", read.MatchID)
	require.Equal(t, "/usr/bin/chromium", read.ScrapeOptions().BrowserBin)
}

func TestWriteMissingDir(t *testing.T) {
	isolate(t)

	err := config.NewLoader(nil).Write(config.Config{UpdateFreqMs: 1000}, filepath.Join(t.TempDir(), "missing", "hltv-live.yaml"))
	require.Error(t, err)
}
