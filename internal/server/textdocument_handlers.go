package server

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rbozan/lsp-translations/internal/document"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	doc := params.TextDocument
	s.engine.OpenDocument(doc.URI, doc.LanguageID, doc.Version, doc.Text)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	changes, err := contentChanges(params.ContentChanges)
	if err != nil {
		return err
	}
	return s.engine.ApplyEdit(params.TextDocument.URI, changes, params.TextDocument.Version)
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	return s.engine.CloseDocument(params.TextDocument.URI)
}

func (s *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	rng, err := s.engine.FindCompletionRange(params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	if rng == nil {
		return nil, nil
	}
	return completionItems(s.engine.ListCompletionIdentifiers(), *rng), nil
}

func (s *Server) completionItemResolve(
	context *glsp.Context,
	item *protocol.CompletionItem,
) (*protocol.CompletionItem, error) {
	if detail, ok := s.engine.Detail(item.Label); ok {
		item.Documentation = protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: detail,
		}
	}
	return item, nil
}

func (s *Server) textDocumentHover(
	context *glsp.Context,
	params *protocol.HoverParams,
) (*protocol.Hover, error) {
	hover, err := s.engine.FindHoverKey(params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, fmt.Errorf("hover: %w", err)
	}
	if hover == nil {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: hover.Detail,
		},
		Range: &hover.Range,
	}, nil
}

func completionItems(identifiers []string, rng document.Range) []protocol.CompletionItem {
	kind := protocol.CompletionItemKindText
	items := make([]protocol.CompletionItem, 0, len(identifiers))
	for _, id := range identifiers {
		items = append(items, protocol.CompletionItem{
			Label: id,
			Kind:  &kind,
			TextEdit: protocol.TextEdit{
				Range:   rng,
				NewText: id,
			},
		})
	}
	return items
}

func contentChanges(raw []any) ([]document.Change, error) {
	changes := make([]document.Change, 0, len(raw))
	for _, c := range raw {
		switch change := c.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, document.Change{Range: change.Range, Text: change.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, document.Change{Text: change.Text})
		default:
			return nil, fmt.Errorf("unexpected change event type %T", c)
		}
	}
	return changes, nil
}
