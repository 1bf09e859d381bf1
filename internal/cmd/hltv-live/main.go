package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"runtime"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/fang"
	_ "github.com/joho/godotenv/autoload"
	"github.com/leighmacdonald/hltv-live/internal/config"
	"github.com/spf13/cobra"
)

var (
	BuildVersion   = "master"
	BuildCommit    = "00000000"
	BuildDate      = time.Now().Format("2006-01-02T15:04:05Z")
	BuildGoVersion = runtime.Version()
	cfgFile        string
	plainOutput    bool
	rootCmd        = &cobra.Command{
		Use:   "hltv-live [match-id-or-url]",
		Short: "HLTV live match console",
		Long:  `hltv-live - Follow a live CS2 match from HLTV in your terminal`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}

	snapshotCmd = &cobra.Command{
		Use:               "snapshot <match-id-or-url>",
		Short:             "Print the current state of a match and exit",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              snapshot,
	}

	initCmd = &cobra.Command{
		Use:               "init",
		Short:             "Write a config file with the default settings",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              initConfig,
	}

	versionCmd = &cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		Long:              "Print detailed version information about hltv-live",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		Run:               version,
	}
)

var (
	errApp          = errors.New("application error")
	errMissingMatch = errors.New("a match id or url is required in plain mode")
	errConfigExists = errors.New("config file already exists")
)

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path")
	rootCmd.Flags().BoolVar(&plainOutput, "plain", false, "Write plain lines to stdout instead of the interactive UI")
	rootCmd.AddCommand(snapshotCmd, initCmd, versionCmd)

	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		slog.Error("Exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func version(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "hltv-live - HLTV Live Match Console\n\n") //nolint:errcheck
	fmt.Fprintf(out, "  Version: %s\n", BuildVersion)           //nolint:errcheck
	fmt.Fprintf(out, "  Commit:  %s\n", BuildCommit)            //nolint:errcheck
	fmt.Fprintf(out, "  Built:   %s\n", BuildDate)              //nolint:errcheck
	fmt.Fprintf(out, "  Runtime: %s\n\n", BuildGoVersion)       //nolint:errcheck
}

// setup loads the config and installs the file logger. The returned closer must be closed on exit.
func setup(configUpdates chan<- config.Config) (*config.Loader, config.Config, io.Closer, error) {
	// Make sure our config & data home exists.
	if err := os.MkdirAll(path.Join(xdg.ConfigHome, config.ConfigDirName), 0o750); err != nil {
		return nil, config.Config{}, nil, errors.Join(err, errApp)
	}

	configLoader := config.NewLoader(configUpdates)
	if cfgFile != "" {
		configLoader.SetConfigFile(cfgFile)
	}

	userConfig, errConfig := configLoader.Read()
	if errConfig != nil {
		return nil, config.Config{}, nil, errors.Join(errConfig, errApp)
	}

	// Setup file based logger. This is very useful for us as our console is taken over by the ui.
	logFile, errLogger := config.LoggerInit(config.DefaultLogName, userConfig.LogLevel())
	if errLogger != nil {
		return nil, config.Config{}, nil, errors.Join(errLogger, errApp)
	}

	slog.Info("Starting hltv-live", slog.String("version", BuildVersion),
		slog.String("commit", BuildCommit), slog.String("date", BuildDate),
		slog.String("go", runtime.Version()), slog.String("config", configLoader.Path()))

	return configLoader, userConfig, logFile, nil
}

func closeLog(closer io.Closer) {
	if err := closer.Close(); err != nil {
		slog.Error("Failed to close log file", slog.String("error", err.Error()))
	}
}

// run is the main entry point of hltv-live.
func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configUpdates := make(chan config.Config)
	configLoader, userConfig, logFile, errSetup := setup(configUpdates)
	if errSetup != nil {
		return errSetup
	}
	defer closeLog(logFile)

	if configLoader.Path() != "" {
		configLoader.Watch()
	}

	initialMatch := userConfig.MatchID
	if len(args) > 0 {
		initialMatch = args[0]
	}

	app, errNew := NewApp(userConfig, configUpdates)
	if errNew != nil {
		return errNew
	}

	if plainOutput {
		if initialMatch == "" {
			return errMissingMatch
		}

		return app.RunPlain(ctx, initialMatch, cmd.OutOrStdout())
	}

	return app.RunUI(ctx, BuildVersion, initialMatch)
}

// snapshot performs a single extraction and prints the full render.
func snapshot(cmd *cobra.Command, args []string) error {
	_, userConfig, logFile, errSetup := setup(nil)
	if errSetup != nil {
		return errSetup
	}
	defer closeLog(logFile)

	app, errNew := NewApp(userConfig, nil)
	if errNew != nil {
		return errNew
	}

	return app.Snapshot(cmd.Context(), args[0], cmd.OutOrStdout())
}

// initConfig writes the defaults to --config, or the xdg config dir, without touching an existing file.
func initConfig(cmd *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = config.Path(config.DefaultConfigName + ".yaml")
	}

	written, err := writeDefaultConfig(configPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", written) //nolint:errcheck

	return nil
}

func writeDefaultConfig(configPath string) (string, error) {
	if _, errStat := os.Stat(configPath); errStat == nil {
		return "", fmt.Errorf("%w: %s", errConfigExists, configPath)
	}

	// Only defaults and the environment, an existing config elsewhere is not copied.
	configLoader := config.NewLoader(nil)

	var defaults config.Config
	if errDecode := configLoader.Unmarshal(&defaults); errDecode != nil {
		return "", errors.Join(errDecode, errApp)
	}

	if err := configLoader.Write(defaults, configPath); err != nil {
		return "", errors.Join(err, errApp)
	}

	return configPath, nil
}
