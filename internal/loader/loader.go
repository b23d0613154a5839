// Package loader reads geocoding progress files into raw entries.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poi-sync/internal/model"
)

var (
	// ErrInvalidEncoding is returned for files that are not valid UTF-8.
	ErrInvalidEncoding = eris.New("loader: invalid UTF-8 encoding")
	// ErrMalformed is returned for files that are not a JSON array of entries.
	ErrMalformed = eris.New("loader: malformed JSON")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipFunc is called for every file the loader skips.
type SkipFunc func(file string, err error)

// Option configures Stream.
type Option func(*options)

type options struct {
	onSkip SkipFunc
}

// WithSkipHandler registers a callback for skipped files.
func WithSkipHandler(fn SkipFunc) Option {
	return func(o *options) { o.onSkip = fn }
}

// ReadFile parses one progress file. The whole file is rejected when any
// part of it fails to decode.
func ReadFile(path string) ([]model.RawEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read %s", path)
	}
	return Parse(path, data)
}

// Parse decodes the contents of a progress file and stamps each entry with
// its source.
func Parse(source string, data []byte) ([]model.RawEntry, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, eris.Wrapf(ErrInvalidEncoding, "loader: %s", source)
	}

	var entries []model.RawEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(ErrMalformed, "loader: %s: %v", source, err)
	}
	for i := range entries {
		entries[i].Source = source
	}
	return entries, nil
}

// Stream reads paths in order and yields one batch per readable file.
// Missing, unreadable and malformed files are skipped with a warning. The
// channel is closed after the last file or when ctx is cancelled.
func Stream(ctx context.Context, paths []string, opts ...Option) <-chan model.SourceBatch {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	out := make(chan model.SourceBatch)
	go func() {
		defer close(out)
		log := zap.L().With(zap.String("component", "loader"))

		for _, path := range paths {
			if ctx.Err() != nil {
				return
			}

			entries, err := ReadFile(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					log.Warn("source file missing, skipping", zap.String("file", path))
				} else {
					log.Error("source file unreadable, skipping", zap.String("file", path), zap.Error(err))
				}
				if o.onSkip != nil {
					o.onSkip(path, err)
				}
				continue
			}

			log.Debug("source file loaded", zap.String("file", path), zap.Int("entries", len(entries)))

			select {
			case out <- model.SourceBatch{File: path, Entries: entries}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// LoadAll drains Stream into a slice, preserving file order.
func LoadAll(ctx context.Context, paths []string, opts ...Option) []model.SourceBatch {
	var batches []model.SourceBatch
	for b := range Stream(ctx, paths, opts...) {
		batches = append(batches, b)
	}
	return batches
}
