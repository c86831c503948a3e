package images

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikitree/internal/fetch"
	"github.com/nao1215/wikitree/internal/model"
)

// DefaultWorkers is the default number of concurrent downloads.
const DefaultWorkers = 4

// Fetcher downloads portrait images on a bounded worker pool.
type Fetcher struct {
	// fetcher retrieves the image bytes.
	fetcher fetch.Fetcher

	// workers is the maximum number of downloads in flight.
	workers int

	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithWorkers sets the maximum number of concurrent downloads.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates an image Fetcher on top of fetcher.
func NewFetcher(fetcher fetch.Fetcher, opts ...Option) *Fetcher {
	f := &Fetcher{
		fetcher: fetcher,
		workers: DefaultWorkers,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// FetchAll downloads every task and returns one result per task, in task
// order. Tasks sharing a destination path are downloaded once and share the
// outcome. A failure is recorded in its result and does not stop the others.
func (f *Fetcher) FetchAll(ctx context.Context, tasks []model.ImageTask) []model.ImageResult {
	results := make([]model.ImageResult, len(tasks))
	owner := make(map[string]int, len(tasks))
	duplicates := make(map[int]int)

	g := new(errgroup.Group)
	g.SetLimit(f.workers)

	for i, task := range tasks {
		results[i].ImageTask = task
		if j, ok := owner[task.Path]; ok {
			duplicates[i] = j
			continue
		}
		owner[task.Path] = i

		g.Go(func() error {
			n, attr, err := f.fetchOne(ctx, task)
			results[i].Bytes = n
			results[i].Attribution = attr
			if err != nil {
				results[i].Err = err
				results[i].ErrorMessage = err.Error()
				f.logger.Warn("image download failed",
					"url", task.URL,
					"path", task.Path,
					"error", err,
				)
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers record errors in results

	for i, j := range duplicates {
		results[i].Bytes = results[j].Bytes
		results[i].Attribution = results[j].Attribution
		results[i].Err = results[j].Err
		results[i].ErrorMessage = results[j].ErrorMessage
	}

	return results
}

// fetchOne downloads a single image, writes it to task.Path and reads its
// EXIF attribution.
func (f *Fetcher) fetchOne(ctx context.Context, task model.ImageTask) (int64, map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	body, err := f.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		return 0, nil, err
	}

	if err := writeFile(task.Path, body); err != nil {
		return 0, nil, err
	}

	f.logger.Debug("image written", "path", task.Path, "bytes", len(body))
	return int64(len(body)), ReadAttribution(body), nil
}

// writeFile writes data to a temporary file next to path and renames it into
// place.
func writeFile(path string, data []byte) error {
	if path == "" {
		return &ImageWriteError{Path: path, Err: fmt.Errorf("empty destination path")}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &ImageWriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".wikitree-*.tmp")
	if err != nil {
		return &ImageWriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()        //nolint:errcheck
		_ = os.Remove(tmpName) //nolint:errcheck
		return &ImageWriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck
		return &ImageWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck
		return &ImageWriteError{Path: path, Err: err}
	}

	return nil
}
