package document

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound     = errors.New("document: not open")
	ErrStaleVersion = errors.New("document: version did not increase")
	// ErrBusy is returned by View while the document is being edited.
	// It is transient; the caller may retry.
	ErrBusy = errors.New("document: busy")
)

type entry struct {
	mu  sync.Mutex
	doc *Document
}

// Store holds the open documents. Edits to one document are applied one at
// a time; different documents do not contend.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]*entry),
	}
}

// Open starts tracking a document, replacing any document with the same URI.
func (s *Store) Open(uri string, languageID string, version int32, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &entry{doc: New(uri, languageID, version, text)}
}

// Apply applies changes to an open document. The version must be greater
// than the current one.
func (s *Store) Apply(uri string, changes []Change, version int32) error {
	e, err := s.lookup(uri)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if version <= e.doc.Version {
		return fmt.Errorf("%w: %s has version %d, got %d", ErrStaleVersion, uri, e.doc.Version, version)
	}
	e.doc.Update(changes, version)
	return nil
}

// Close stops tracking a document.
func (s *Store) Close(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[uri]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	delete(s.docs, uri)
	return nil
}

// View runs fn with the document while holding its lock. It does not wait
// for an edit in progress and returns ErrBusy instead.
func (s *Store) View(uri string, fn func(doc *Document) error) error {
	e, err := s.lookup(uri)
	if err != nil {
		return err
	}
	if !e.mu.TryLock() {
		return fmt.Errorf("%w: %s", ErrBusy, uri)
	}
	defer e.mu.Unlock()
	return fn(e.doc)
}

func (s *Store) lookup(uri string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return e, nil
}
