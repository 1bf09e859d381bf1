package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/leighmacdonald/hltv-live/internal/config"
	"github.com/leighmacdonald/hltv-live/internal/match"
	"github.com/leighmacdonald/hltv-live/internal/metrics"
	"github.com/leighmacdonald/hltv-live/internal/poller"
	"github.com/leighmacdonald/hltv-live/internal/render"
	"github.com/leighmacdonald/hltv-live/internal/scrape"
	"github.com/leighmacdonald/hltv-live/internal/ui"
	"golang.org/x/sync/errgroup"
)

// App is the main application container. Very little logic is contained within this struct. Its mostly
// responsible for wiring the config, the match source and the output together.
type App struct {
	mu            sync.RWMutex
	config        config.Config
	opener        scrape.Opener
	configUpdates <-chan config.Config
}

// NewApp returns a new application instance. configUpdates may be nil when the config is not
// being watched.
func NewApp(conf config.Config, configUpdates <-chan config.Config) (*App, error) {
	opener, errOpener := scrape.NewOpener(scrape.Kind(conf.Source), conf.ScrapeOptions())
	if errOpener != nil {
		return nil, errors.Join(errOpener, errApp)
	}

	return &App{config: conf, opener: opener, configUpdates: configUpdates}, nil
}

// Open opens a source using the opener for the current config, so reloaded source settings take
// effect with the next match that is started.
func (app *App) Open(ctx context.Context, matchID string) (scrape.Source, error) {
	app.mu.RLock()
	opener := app.opener
	app.mu.RUnlock()

	return opener.Open(ctx, matchID)
}

func (app *App) Config() config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()

	return app.config
}

func (app *App) newLoop(sink poller.Sink) *poller.Loop {
	conf := app.Config()

	return poller.New(app, sink,
		poller.WithInterval(conf.UpdateInterval()),
		poller.WithScoreboardEvery(conf.ScoreboardEvery),
		poller.WithRenderer(render.New(render.WithTimeFormat(conf.TimeFormat))))
}

// RunUI runs the interactive terminal UI until the user quits.
func (app *App) RunUI(ctx context.Context, buildVersion string, initialMatch string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	app.startBackground(groupCtx, group)

	userInterface := ui.New(groupCtx, buildVersion, initialMatch)
	loop := app.newLoop(userInterface)

	group.Go(func() error {
		// Stop everything else once the ui exits.
		defer cancel()

		errRun := userInterface.Run(loop)
		if errStop := loop.Stop(); errStop != nil {
			slog.Error("Failed to stop live match", slog.String("error", errStop.Error()))
		}

		return errRun
	})

	return group.Wait()
}

// RunPlain polls initialMatch writing plain lines to out until the context is cancelled.
func (app *App) RunPlain(ctx context.Context, initialMatch string, out io.Writer) error {
	group, groupCtx := errgroup.WithContext(ctx)
	app.startBackground(groupCtx, group)

	loop := app.newLoop(poller.NewWriterSink(out))

	group.Go(func() error {
		if err := loop.Start(groupCtx, initialMatch); err != nil {
			return err
		}

		<-groupCtx.Done()

		return loop.Stop()
	})

	return group.Wait()
}

// Snapshot extracts the match once and writes a full render to out.
func (app *App) Snapshot(ctx context.Context, input string, out io.Writer) error {
	matchID, errID := match.ParseMatchID(input)
	if errID != nil {
		return errID
	}

	source, errOpen := app.Open(ctx, matchID)
	if errOpen != nil {
		return errOpen
	}

	defer func() {
		if err := source.Close(); err != nil {
			slog.Error("Failed to close match source", slog.String("error", err.Error()))
		}
	}()

	snapshot, errExtract := source.Extract(ctx)
	if errExtract != nil {
		return errExtract
	}

	renderer := render.New(render.WithTimeFormat(app.Config().TimeFormat))
	sink := poller.NewWriterSink(out)
	if !snapshot.HasLiveSource {
		sink.WriteLines(renderer.Info("No live scorebot found on the match page"))
	}

	decision := match.NewDiffer(app.Config().ScoreboardEvery).Diff(nil, snapshot, 0)
	sink.WriteLines(renderer.Decision(decision)...)

	return nil
}

func (app *App) startBackground(ctx context.Context, group *errgroup.Group) {
	if address := app.Config().MetricsAddress; address != "" {
		group.Go(func() error {
			return metrics.Serve(ctx, address)
		})
	}

	if app.configUpdates != nil {
		group.Go(func() error {
			app.watchConfig(ctx)

			return nil
		})
	}
}

func (app *App) watchConfig(ctx context.Context) {
	for {
		select {
		case conf := <-app.configUpdates:
			app.applyConfig(conf)
		case <-ctx.Done():
			return
		}
	}
}

func (app *App) applyConfig(conf config.Config) {
	opener, errOpener := scrape.NewOpener(scrape.Kind(conf.Source), conf.ScrapeOptions())
	if errOpener != nil {
		slog.Error("Ignoring invalid config update", slog.String("error", errOpener.Error()))

		return
	}

	app.mu.Lock()
	app.config = conf
	app.opener = opener
	app.mu.Unlock()

	slog.Info("Config reloaded, source changes apply to the next match started",
		slog.String("source", conf.Source))
}
