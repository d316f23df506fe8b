package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/rbozan/lsp-translations/internal/config"
	"github.com/rbozan/lsp-translations/internal/index"
	"github.com/rbozan/lsp-translations/internal/parser"
)

// Report summarises a reindex.
type Report struct {
	Files       int
	Definitions int
	// Failed holds the files that were skipped or yielded no definitions
	// because of an error.
	Failed map[string]error
	// Published is false when a newer reindex had already published.
	Published bool
}

// Reindex parses files with cfg and replaces the whole index with the
// result. Errors of single files are collected in the report. The index is
// left untouched when ctx is cancelled.
func (e *Engine) Reindex(ctx context.Context, files []string, cfg config.Config) (Report, error) {
	generation := e.index.NextGeneration()
	opts := cfg.ParserOptions()

	results := make([]*index.File, len(files))
	failures := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			defs, err := e.indexFile(gctx, path, opts)
			switch {
			case gctx.Err() != nil:
				return gctx.Err()
			case errors.Is(err, parser.ErrUnsupportedFileType):
				failures[i] = err
				return nil
			case err != nil:
				// the file stays tracked so that a later change is picked up
				failures[i] = err
			}
			results[i] = &index.File{Path: path, Definitions: defs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report := Report{Failed: make(map[string]error)}
	published := make([]index.File, 0, len(files))
	for i, r := range results {
		if failures[i] != nil {
			report.Failed[files[i]] = failures[i]
			log.Warningf("skipping %s: %v", files[i], failures[i])
		}
		if r == nil {
			continue
		}
		if failures[i] == nil {
			log.Infof("loaded %d definitions from %s", len(r.Definitions), r.Path)
		}
		published = append(published, *r)
		report.Files++
		report.Definitions += len(r.Definitions)
	}

	report.Published = e.index.Publish(generation, published, func() {
		e.cfg.Store(&cfg)
	})
	if !report.Published {
		log.Debugf("reindex %d was superseded", generation)
	}
	return report, nil
}

// ReindexFile parses one file again with the current configuration. A file
// that no longer exists is dropped from the index.
func (e *Engine) ReindexFile(ctx context.Context, path string) error {
	cfg := e.Config()
	defs, err := e.indexFile(ctx, path, cfg.ParserOptions())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Infof("removing %s", path)
		e.index.RemoveFile(path)
		return nil
	case errors.Is(err, parser.ErrMalformedTranslationFile):
		e.index.ReplaceForFile(path, nil)
		return err
	case err != nil:
		return err
	}
	log.Infof("reloaded %d definitions from %s", len(defs), path)
	e.index.ReplaceForFile(path, defs)
	return nil
}

// RemoveFile drops one file from the index.
func (e *Engine) RemoveFile(path string) {
	e.index.RemoveFile(path)
}

func (e *Engine) indexFile(ctx context.Context, path string, opts parser.Options) ([]parser.Definition, error) {
	if !e.indexer.Supports(path) {
		return nil, fmt.Errorf("%w: %s", parser.ErrUnsupportedFileType, path)
	}
	source, err := readFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.indexer.Index(ctx, path, source, opts)
}

// readFile retries briefly when the file is missing, since editors often
// save by replacing the file.
func readFile(ctx context.Context, path string) ([]byte, error) {
	var source []byte
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxElapsedTime = 250 * time.Millisecond

	err := backoff.Retry(func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return backoff.Permanent(err)
		}
		source = data
		return nil
	}, backoff.WithContext(policy, ctx))
	return source, err
}
