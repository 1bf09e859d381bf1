// Package scrape implements the snapshot extractors. Every source fetches the match page html in its
// own way and hands it to the same goquery based parser.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leighmacdonald/hltv-live/internal/match"
)

const (
	DefaultBaseURL           = "https://www.hltv.org"
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultNavigationTimeout = 30 * time.Second
	DefaultHTTPTimeout       = 15 * time.Second
)

var (
	ErrOpen          = errors.New("failed to open match source")
	ErrExtraction    = errors.New("failed to extract match snapshot")
	ErrParse         = errors.New("failed to parse match page")
	ErrClose         = errors.New("failed to close match source")
	ErrUnknownSource = errors.New("unknown source kind")
)

// Source produces a fresh snapshot of a single match each time Extract is called.
type Source interface {
	Extract(ctx context.Context) (match.Snapshot, error)
	Close() error
}

// Opener acquires a Source for a match id.
type Opener interface {
	Open(ctx context.Context, matchID string) (Source, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, matchID string) (Source, error)

func (f OpenerFunc) Open(ctx context.Context, matchID string) (Source, error) {
	return f(ctx, matchID)
}

type Kind string

const (
	KindBrowser Kind = "browser"
	KindHTTP    Kind = "http"
	KindFile    Kind = "file"
)

// Options configures all source kinds. Fields not relevant to a kind are ignored.
type Options struct {
	BaseURL           string
	UserAgent         string
	RemoteURL         string
	BrowserBin        string
	Headless          bool
	NavigationTimeout time.Duration
	HTTPTimeout       time.Duration
	FilePath          string
	Now               func() time.Time
}

func (o *Options) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = DefaultHTTPTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// NewOpener returns the Opener for the configured source kind.
func NewOpener(kind Kind, opts Options) (Opener, error) {
	opts.defaults()

	switch kind {
	case KindBrowser, "":
		return NewBrowserOpener(opts), nil
	case KindHTTP:
		return NewHTTPOpener(opts), nil
	case KindFile:
		return NewFileOpener(opts), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, kind)
	}
}

// MatchURL builds the match page url. The trailing slug is ignored by the site, so any value works.
func MatchURL(baseURL string, matchID string) string {
	return strings.TrimRight(baseURL, "/") + "/matches/" + matchID + "/_"
}
