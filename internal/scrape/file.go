package scrape

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/leighmacdonald/hltv-live/internal/match"
)

// FileOpener replays a saved match page from disk. The file is re-read on each extraction so it can
// be edited while running. Useful for debugging the renderer without hitting the site.
type FileOpener struct {
	opts Options
}

func NewFileOpener(opts Options) *FileOpener {
	opts.defaults()

	return &FileOpener{opts: opts}
}

func (o *FileOpener) Open(_ context.Context, _ string) (Source, error) {
	if _, err := os.Stat(o.opts.FilePath); err != nil {
		return nil, errors.Join(err, ErrOpen)
	}

	return &FileSource{filePath: o.opts.FilePath, now: o.opts.Now}, nil
}

type FileSource struct {
	filePath string
	now      func() time.Time
}

func (s *FileSource) Extract(ctx context.Context) (match.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return match.Snapshot{}, errors.Join(err, ErrExtraction)
	}

	file, errOpen := os.Open(s.filePath)
	if errOpen != nil {
		return match.Snapshot{}, errors.Join(errOpen, ErrExtraction)
	}

	defer func(closer io.Closer) {
		if err := closer.Close(); err != nil {
			slog.Error("Failed to close match file", slog.String("error", err.Error()))
		}
	}(file)

	snapshot, errParse := Parse(file, s.now())
	if errParse != nil {
		return match.Snapshot{}, errors.Join(errParse, ErrExtraction)
	}

	return snapshot, nil
}

func (s *FileSource) Close() error {
	return nil
}
