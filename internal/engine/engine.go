// Package engine ties open documents, the key locator and the definition
// index together behind the operations the language server needs.
package engine

import (
	"sync/atomic"

	"github.com/tliron/commonlog"

	"github.com/rbozan/lsp-translations/internal/config"
	"github.com/rbozan/lsp-translations/internal/document"
	"github.com/rbozan/lsp-translations/internal/flag"
	"github.com/rbozan/lsp-translations/internal/index"
	"github.com/rbozan/lsp-translations/internal/locator"
	"github.com/rbozan/lsp-translations/internal/parser"
)

var log = commonlog.GetLogger("lsp-translations.engine")

// Engine is safe for concurrent use.
type Engine struct {
	documents *document.Store
	index     *index.Index
	indexer   *parser.Indexer
	locator   *locator.Locator
	flags     index.FlagFunc

	// configuration of the last published reindex
	cfg atomic.Pointer[config.Config]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocator replaces the default key locator.
func WithLocator(l *locator.Locator) Option {
	return func(e *Engine) { e.locator = l }
}

// WithFlags replaces the language to flag mapping.
func WithFlags(f index.FlagFunc) Option {
	return func(e *Engine) { e.flags = f }
}

// New creates an Engine that parses translation files with indexer.
func New(indexer *parser.Indexer, opts ...Option) *Engine {
	e := &Engine{
		documents: document.NewStore(),
		index:     index.New(),
		indexer:   indexer,
		locator:   locator.Default(),
		flags:     flag.Resolve,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg.Store(&config.Config{})
	return e
}

// Snapshot returns the current definition index.
func (e *Engine) Snapshot() *index.Snapshot {
	return e.index.Snapshot()
}

// Config returns the configuration of the last published reindex.
func (e *Engine) Config() config.Config {
	return *e.cfg.Load()
}

// Tracks reports whether path is part of the current index.
func (e *Engine) Tracks(path string) bool {
	_, ok := e.index.Snapshot().File(path)
	return ok
}

// ListCompletionIdentifiers returns every distinct identifier.
func (e *Engine) ListCompletionIdentifiers() []string {
	return e.index.Snapshot().Identifiers()
}

// Detail renders the hover and documentation markdown for identifier.
func (e *Engine) Detail(identifier string) (string, bool) {
	return e.index.Snapshot().RenderDetail(identifier, e.flags)
}
