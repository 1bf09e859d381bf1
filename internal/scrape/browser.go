package scrape

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/leighmacdonald/hltv-live/internal/match"
)

// BrowserOpener drives a headless Chrome instance, either launched locally or attached to over its
// remote control url. The page is loaded once and re-read on every Extract, the live widget keeps
// it up to date on its own.
type BrowserOpener struct {
	opts Options
}

func NewBrowserOpener(opts Options) *BrowserOpener {
	opts.defaults()

	return &BrowserOpener{opts: opts}
}

func (o *BrowserOpener) Open(ctx context.Context, matchID string) (Source, error) {
	source := &BrowserSource{now: o.opts.Now, remote: o.opts.RemoteURL != ""}

	controlURL := o.opts.RemoteURL
	if !source.remote {
		browserLauncher := launcher.New().
			Headless(o.opts.Headless).
			NoSandbox(true).
			Set("disable-blink-features", "AutomationControlled")
		if o.opts.BrowserBin != "" {
			browserLauncher = browserLauncher.Bin(o.opts.BrowserBin)
		}

		launchedURL, errLaunch := browserLauncher.Context(ctx).Launch()
		if errLaunch != nil {
			return nil, errors.Join(errLaunch, ErrOpen)
		}
		source.launcher = browserLauncher
		controlURL = launchedURL
	}

	source.browser = rod.New().ControlURL(controlURL)
	if errConnect := source.browser.Connect(); errConnect != nil {
		source.browser = nil
		source.release()

		return nil, errors.Join(errConnect, ErrOpen)
	}

	page, errPage := stealth.Page(source.browser)
	if errPage != nil {
		source.release()

		return nil, errors.Join(errPage, ErrOpen)
	}
	source.page = page

	if errUA := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: o.opts.UserAgent}); errUA != nil {
		slog.Warn("Failed to set user agent", slog.String("error", errUA.Error()))
	}

	navCtx, cancel := context.WithTimeout(ctx, o.opts.NavigationTimeout)
	defer cancel()

	pageURL := MatchURL(o.opts.BaseURL, matchID)
	if errNav := page.Context(navCtx).Navigate(pageURL); errNav != nil {
		source.release()

		return nil, errors.Join(errNav, ErrOpen)
	}

	if errLoad := page.Context(navCtx).WaitLoad(); errLoad != nil {
		slog.Warn("Timed out waiting for page load", slog.String("url", pageURL), slog.String("error", errLoad.Error()))
	}

	slog.Info("Match page loaded", slog.String("url", pageURL))

	return source, nil
}

// BrowserSource reads the live DOM of an open match page.
type BrowserSource struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	// remote browsers are shared, only our page is closed.
	remote   bool
	now      func() time.Time
}

func (s *BrowserSource) Extract(ctx context.Context) (match.Snapshot, error) {
	result, errEval := s.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if errEval != nil {
		return match.Snapshot{}, errors.Join(errEval, ErrExtraction)
	}

	snapshot, errParse := Parse(strings.NewReader(result.Value.Str()), s.now())
	if errParse != nil {
		return match.Snapshot{}, errors.Join(errParse, ErrExtraction)
	}

	return snapshot, nil
}

func (s *BrowserSource) Close() error {
	if err := s.release(); err != nil {
		return errors.Join(err, ErrClose)
	}

	return nil
}

// release tears down whatever part of the browser stack was acquired.
func (s *BrowserSource) release() error {
	var errs []error

	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
		s.page = nil
	}

	closed := false
	if s.browser != nil && !s.remote {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		} else {
			closed = true
		}
		s.browser = nil
	}

	if s.launcher != nil {
		// Cleanup blocks until the process exits.
		if !closed {
			s.launcher.Kill()
		}
		s.launcher.Cleanup()
		s.launcher = nil
	}

	return errors.Join(errs...)
}
