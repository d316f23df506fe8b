// Package parser extracts translation definitions from translation files
// with tree-sitter grammars and queries.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/tliron/commonlog"
)

var (
	ErrUnsupportedFileType      = errors.New("parser: unsupported file type")
	ErrMalformedTranslationFile = errors.New("parser: malformed translation file")
)

var log = commonlog.GetLogger("lsp-translations.parser")

// pool holds ready parsers for one grammar together with its compiled query.
type pool struct {
	grammar *Grammar
	query   *sitter.Query
	parsers chan *sitter.Parser
}

func newPool(n int, g *Grammar) (*pool, error) {
	q, err := sitter.NewQuery(g.Query, g.Language)
	if err != nil {
		return nil, fmt.Errorf("parser: compile %s query: %w", g.Name, err)
	}
	pp := &pool{
		grammar: g,
		query:   q,
		parsers: make(chan *sitter.Parser, n),
	}
	for i := 0; i < n; i++ {
		p := sitter.NewParser()
		p.SetLanguage(g.Language)
		pp.parsers <- p
	}
	return pp, nil
}

func (pp *pool) parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	var p *sitter.Parser
	select {
	case p = <-pp.parsers:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { pp.parsers <- p }()

	return p.ParseCtx(ctx, nil, source)
}

func (pp *pool) close() {
	close(pp.parsers)
	for p := range pp.parsers {
		p.Close()
	}
	pp.query.Close()
}

// Indexer turns translation files into definitions. It is safe for
// concurrent use; at most size files per grammar are parsed at once.
type Indexer struct {
	pools map[string]*pool // by extension
	all   []*pool
}

// NewIndexer creates an Indexer for grammars, or for Builtin grammars when
// none are given.
func NewIndexer(size int, grammars ...*Grammar) (*Indexer, error) {
	if size < 1 {
		size = 1
	}
	if len(grammars) == 0 {
		grammars = Builtin()
	}
	idx := &Indexer{pools: make(map[string]*pool)}
	for _, g := range grammars {
		pp, err := newPool(size, g)
		if err != nil {
			idx.Close()
			return nil, err
		}
		idx.all = append(idx.all, pp)
		for _, ext := range g.Extensions {
			idx.pools[ext] = pp
		}
	}
	return idx, nil
}

// Supports reports whether path has an extension with a grammar.
func (idx *Indexer) Supports(path string) bool {
	_, ok := idx.pools[extension(path)]
	return ok
}

// Index extracts every definition in source, which is the content of path.
// A file with any syntax error, or matching an error capture, yields no
// definitions and ErrMalformedTranslationFile.
func (idx *Indexer) Index(ctx context.Context, path string, source []byte, opts Options) ([]Definition, error) {
	pp, ok := idx.pools[extension(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, path)
	}

	tree, err := pp.parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parser: parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s: syntax error", ErrMalformedTranslationFile, path)
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(pp.query, root)

	g := pp.grammar
	fileName := filepath.Base(path)
	var definitions []Definition

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		m = cursor.FilterPredicates(m, source)

		var key, value *sitter.Node
		grouped := false
		for _, c := range m.Captures {
			switch pp.query.CaptureNameForId(c.Index) {
			case CaptureError:
				p := c.Node.StartPoint()
				return nil, fmt.Errorf("%w: %s:%d:%d", ErrMalformedTranslationFile, path, p.Row+1, p.Column+1)
			case CaptureKey:
				key = c.Node
			case CaptureValue:
				value = c.Node
			case CaptureGroup:
				grouped = true
			}
		}
		if value == nil {
			continue
		}

		var keyPath string
		switch {
		case grouped:
			keyPath = g.pathFor(value, source)
		case key != nil:
			keyPath = g.keyText(key, source)
		default:
			continue
		}

		definitions = append(definitions, Definition{
			Key:        keyPath,
			CleanedKey: opts.cleanedKey(keyPath),
			Value:      g.unquote(value.Content(source)),
			Source:     path,
			ExtraData:  opts.extraData(keyPath, fileName),
		})
	}

	log.Debugf("indexed %s: %d definitions", path, len(definitions))
	return definitions, nil
}

// Close releases all parsers.
func (idx *Indexer) Close() {
	for _, pp := range idx.all {
		pp.close()
	}
	idx.all = nil
	idx.pools = nil
}
