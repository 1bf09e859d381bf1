package config

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/adrg/xdg"
	"github.com/leighmacdonald/hltv-live/internal/scrape"
)

var (
	errConfigWrite = errors.New("failed to write config file")
	errConfigRead  = errors.New("failed to read config file")
	errLoggerInit  = errors.New("failed to initialize logger")
	errConfigValue = errors.New("invalid config value")
)

const (
	ConfigDirName     = "hltv-live"
	DefaultConfigName = "hltv-live"
	DefaultLogName    = "hltv-live.log"
	EnvPrefix         = "hltvlive"
)

type Config struct {
	// UpdateFreqMs is the poll interval.
	UpdateFreqMs int `mapstructure:"update_freq_ms"`
	// ScoreboardEvery is how many incremental updates pass between scoreboard redraws. 0 disables them.
	ScoreboardEvery int    `mapstructure:"scoreboard_every"`
	BaseURL         string `mapstructure:"base_url"`
	// Source selects how match pages are fetched: browser, http or file.
	Source string `mapstructure:"source"`
	// BrowserRemoteURL attaches to an already running browser over its devtools websocket instead of
	// launching a new one.
	BrowserRemoteURL string `mapstructure:"browser_remote_url"`
	// BrowserBin overrides the chrome binary, otherwise one is looked up or downloaded.
	BrowserBin          string `mapstructure:"browser_bin"`
	Headless            bool   `mapstructure:"headless"`
	UserAgent           string `mapstructure:"user_agent"`
	NavigationTimeoutMs int    `mapstructure:"navigation_timeout_ms"`
	HTTPTimeoutMs       int    `mapstructure:"http_timeout_ms"`
	// FilePath is the saved match page used by the file source.
	FilePath       string `mapstructure:"file_path"`
	MetricsAddress string `mapstructure:"metrics_address"`
	// TimeFormat is the go time layout used to stamp output lines.
	TimeFormat string `mapstructure:"time_format"`
	// MatchID is started automatically when set and no match is given on the command line.
	MatchID string `mapstructure:"match_id"`
	Debug   bool   `mapstructure:"debug"`
}

func (c Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateFreqMs) * time.Millisecond
}

func (c Config) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMs) * time.Millisecond
}

// ScrapeOptions maps the source settings onto the options for scrape.NewOpener.
func (c Config) ScrapeOptions() scrape.Options {
	return scrape.Options{
		BaseURL:           c.BaseURL,
		UserAgent:         c.UserAgent,
		RemoteURL:         c.BrowserRemoteURL,
		BrowserBin:        c.BrowserBin,
		Headless:          c.Headless,
		NavigationTimeout: c.NavigationTimeout(),
		HTTPTimeout:       c.HTTPTimeout(),
		FilePath:          c.FilePath,
	}
}

func (c Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}

func (c Config) validate() error {
	if c.UpdateFreqMs <= 0 {
		return errors.Join(errConfigValue, errors.New("update_freq_ms must be positive"))
	}

	if c.ScoreboardEvery < 0 {
		return errors.Join(errConfigValue, errors.New("scoreboard_every must not be negative"))
	}

	return nil
}

// Path generates a path pointing to the filename under this apps defined $XDG_CONFIG_HOME.
func Path(name string) string {
	fullPath, errFullPath := xdg.ConfigFile(path.Join(ConfigDirName, name))
	if errFullPath != nil {
		panic(errFullPath)
	}

	return fullPath
}

// LoggerInit sets up the slog global handler to use a log file as we cant print to the console.
func LoggerInit(logPath string, level slog.Level) (io.Closer, error) {
	logFile, errLogFile := os.Create(Path(logPath))
	if errLogFile != nil {
		return nil, errors.Join(errLogFile, errLoggerInit)
	}

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		AddSource: false,
		Level:     level,
	}))

	slog.SetDefault(logger)

	return logFile, nil
}
