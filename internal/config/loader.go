package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leighmacdonald/hltv-live/internal/scrape"
	"github.com/spf13/viper"
)

const (
	DefaultUpdateFreqMs        = 3000
	DefaultScoreboardEvery     = 5
	DefaultSource              = "browser"
	DefaultNavigationTimeoutMs = 30000
	DefaultHTTPTimeoutMs       = 15000
	DefaultTimeFormat          = time.TimeOnly
)

// Loader handles setting up viper, loading configuration from files, and broadcasting configuration changes.
type Loader struct {
	*viper.Viper
	changes chan<- Config
}

// NewLoader creates a loader searching the xdg config dir and the working directory. Changes to
// the config file are reloaded and sent on changes, which may be nil to ignore them.
func NewLoader(changes chan<- Config) *Loader {
	loader := Loader{changes: changes, Viper: viper.New()}
	loader.SetDefault("update_freq_ms", DefaultUpdateFreqMs)
	loader.SetDefault("scoreboard_every", DefaultScoreboardEvery)
	loader.SetDefault("base_url", scrape.DefaultBaseURL)
	loader.SetDefault("source", DefaultSource)
	loader.SetDefault("browser_remote_url", "")
	loader.SetDefault("browser_bin", "")
	loader.SetDefault("headless", true)
	loader.SetDefault("user_agent", scrape.DefaultUserAgent)
	loader.SetDefault("navigation_timeout_ms", DefaultNavigationTimeoutMs)
	loader.SetDefault("http_timeout_ms", DefaultHTTPTimeoutMs)
	loader.SetDefault("file_path", "")
	loader.SetDefault("metrics_address", "")
	loader.SetDefault("time_format", DefaultTimeFormat)
	loader.SetDefault("match_id", "")
	loader.SetDefault("debug", false)
	loader.SetConfigName(DefaultConfigName)
	loader.SetConfigType("yaml")
	loader.SetEnvPrefix(EnvPrefix)
	loader.AddConfigPath(Path(""))
	loader.AddConfigPath(".")
	loader.AutomaticEnv()

	return &loader
}

func (cl *Loader) Path() string {
	return cl.ConfigFileUsed()
}

// Watch starts watching the config file in use for changes.
func (cl *Loader) Watch() {
	cl.OnConfigChange(cl.onConfigChange)
	cl.WatchConfig()
}

func (cl *Loader) onConfigChange(in fsnotify.Event) {
	if !in.Has(fsnotify.Write) && !in.Has(fsnotify.Rename) {
		return
	}

	slog.Debug("External config reload triggered", slog.String("file", in.Name))
	config, err := cl.Read()
	if err != nil {
		slog.Error("Error reading config", slog.String("error", err.Error()))

		return
	}

	if cl.changes != nil {
		cl.changes <- config
	}
}

// Write stores config as yaml at path, replacing any existing file.
func (cl *Loader) Write(config Config, path string) error {
	cl.Set("update_freq_ms", config.UpdateFreqMs)
	cl.Set("scoreboard_every", config.ScoreboardEvery)
	cl.Set("base_url", config.BaseURL)
	cl.Set("source", config.Source)
	cl.Set("browser_remote_url", config.BrowserRemoteURL)
	cl.Set("browser_bin", config.BrowserBin)
	cl.Set("headless", config.Headless)
	cl.Set("user_agent", config.UserAgent)
	cl.Set("navigation_timeout_ms", config.NavigationTimeoutMs)
	cl.Set("http_timeout_ms", config.HTTPTimeoutMs)
	cl.Set("file_path", config.FilePath)
	cl.Set("metrics_address", config.MetricsAddress)
	cl.Set("time_format", config.TimeFormat)
	cl.Set("match_id", config.MatchID)
	cl.Set("debug", config.Debug)

	if err := cl.WriteConfigAs(path); err != nil {
		return errors.Join(err, errConfigWrite)
	}

	return nil
}

// Read loads the config file if there is one. A missing file is not an error, the defaults and
// environment are used instead.
func (cl *Loader) Read() (Config, error) {
	if err := cl.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return Config{}, errors.Join(err, errConfigRead)
		}
	}

	var config Config
	if err := cl.Unmarshal(&config); err != nil {
		return Config{}, errors.Join(err, errConfigRead)
	}

	if err := config.validate(); err != nil {
		return Config{}, errors.Join(err, errConfigRead)
	}

	return config, nil
}
