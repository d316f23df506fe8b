package engine

import (
	"github.com/rbozan/lsp-translations/internal/document"
)

// Hover is the rendered detail of the key under the cursor.
type Hover struct {
	Key    string
	Detail string
	// Range covers the key without its quotes.
	Range document.Range
}

func (e *Engine) OpenDocument(uri string, languageID string, version int32, text string) {
	e.documents.Open(uri, languageID, version, text)
}

func (e *Engine) ApplyEdit(uri string, changes []document.Change, version int32) error {
	return e.documents.Apply(uri, changes, version)
}

func (e *Engine) CloseDocument(uri string) error {
	return e.documents.Close(uri)
}

// FindHoverKey returns the detail of the key at pos, or nil when there is no
// key at pos or the key has no definitions. It fails with document.ErrBusy
// instead of waiting for an edit to the document.
func (e *Engine) FindHoverKey(uri string, pos document.Position) (*Hover, error) {
	var key string
	var rng document.Range
	found := false

	err := e.documents.View(uri, func(doc *document.Document) error {
		m, ok := e.locator.FindKeyAt(doc.Text(), doc.OffsetAt(pos))
		if !ok {
			return nil
		}
		key = m.Key
		rng = document.Range{Start: doc.PositionAt(m.Span.Start), End: doc.PositionAt(m.Span.End)}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, err
	}

	detail, ok := e.Detail(key)
	if !ok {
		return nil, nil
	}
	return &Hover{Key: key, Detail: detail, Range: rng}, nil
}

// FindCompletionRange returns the range of the key being typed at pos, or
// nil when pos is not inside a key.
func (e *Engine) FindCompletionRange(uri string, pos document.Position) (*document.Range, error) {
	var rng *document.Range
	err := e.documents.View(uri, func(doc *document.Document) error {
		span, ok := e.locator.FindEditingRange(doc.Text(), doc.OffsetAt(pos))
		if ok {
			rng = &document.Range{Start: doc.PositionAt(span.Start), End: doc.PositionAt(span.End)}
		}
		return nil
	})
	return rng, err
}
