package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/leighmacdonald/hltv-live/internal/match"
)

var errHTTPStatus = errors.New("unexpected http status")

// HTTPOpener fetches the match page over plain http on every extraction. It is far lighter than a
// browser but only sees the server rendered markup.
type HTTPOpener struct {
	opts Options
}

func NewHTTPOpener(opts Options) *HTTPOpener {
	opts.defaults()

	return &HTTPOpener{opts: opts}
}

func (o *HTTPOpener) Open(ctx context.Context, matchID string) (Source, error) {
	client := resty.New()
	client.SetHeader("user-agent", o.opts.UserAgent)
	client.SetTimeout(o.opts.HTTPTimeout)

	source := &HTTPSource{client: client, pageURL: MatchURL(o.opts.BaseURL, matchID), now: o.opts.Now}

	// Fetch once up front so a bad id or unreachable site fails the start rather than every tick.
	if _, err := source.fetch(ctx); err != nil {
		return nil, errors.Join(err, ErrOpen)
	}

	return source, nil
}

type HTTPSource struct {
	client  *resty.Client
	pageURL string
	now     func() time.Time
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	resp, errGet := s.client.R().SetContext(ctx).Get(s.pageURL)
	if errGet != nil {
		return nil, errGet
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d", errHTTPStatus, resp.StatusCode())
	}

	return resp.Body(), nil
}

func (s *HTTPSource) Extract(ctx context.Context) (match.Snapshot, error) {
	body, errFetch := s.fetch(ctx)
	if errFetch != nil {
		return match.Snapshot{}, errors.Join(errFetch, ErrExtraction)
	}

	snapshot, errParse := Parse(bytes.NewReader(body), s.now())
	if errParse != nil {
		return match.Snapshot{}, errors.Join(errParse, ErrExtraction)
	}

	return snapshot, nil
}

func (s *HTTPSource) Close() error {
	s.client.GetClient().CloseIdleConnections()

	return nil
}
