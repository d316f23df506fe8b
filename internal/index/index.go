// Package index aggregates the definitions of all translation files into an
// immutable snapshot that readers load without locking.
package index

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rbozan/lsp-translations/internal/parser"
)

// File is the definition set of one translation file.
type File struct {
	Path        string
	Definitions []parser.Definition
}

// Snapshot is a read-only view of the index. A file's definitions in a
// snapshot always come from a single parse.
type Snapshot struct {
	files map[string][]parser.Definition
	order []string
}

var empty = &Snapshot{files: map[string][]parser.Definition{}}

// Index holds the current snapshot. Writers build a new snapshot off to the
// side and swap it in.
type Index struct {
	mu        sync.Mutex // serialises writers
	published uint64
	next      atomic.Uint64
	current   atomic.Pointer[Snapshot]
}

// New creates an empty Index.
func New() *Index {
	idx := &Index{}
	idx.current.Store(empty)
	return idx
}

// Snapshot returns the current snapshot.
func (idx *Index) Snapshot() *Snapshot {
	return idx.current.Load()
}

// NextGeneration reserves a generation for a full rebuild.
func (idx *Index) NextGeneration() uint64 {
	return idx.next.Add(1)
}

// Publish replaces the whole index with files. It is a no-op returning false
// when a rebuild with a later generation was already published. commit, when
// not nil, runs after the swap while other writers are still held off.
func (idx *Index) Publish(generation uint64, files []File, commit func()) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if generation < idx.published {
		return false
	}
	s := &Snapshot{
		files: make(map[string][]parser.Definition, len(files)),
		order: make([]string, 0, len(files)),
	}
	for _, f := range files {
		if _, ok := s.files[f.Path]; !ok {
			s.order = append(s.order, f.Path)
		}
		s.files[f.Path] = slices.Clone(f.Definitions)
	}
	idx.published = generation
	idx.current.Store(s)
	if commit != nil {
		commit()
	}
	return true
}

// ReplaceForFile swaps the definitions of one file.
func (idx *Index) ReplaceForFile(path string, definitions []parser.Definition) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	old := idx.current.Load()
	s := old.clone()
	if _, ok := s.files[path]; !ok {
		s.order = append(s.order, path)
	}
	s.files[path] = slices.Clone(definitions)
	idx.current.Store(s)
}

// RemoveFile drops a file and its definitions.
func (idx *Index) RemoveFile(path string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	old := idx.current.Load()
	if _, ok := old.files[path]; !ok {
		return
	}
	s := old.clone()
	delete(s.files, path)
	s.order = slices.DeleteFunc(s.order, func(p string) bool { return p == path })
	idx.current.Store(s)
}

func (s *Snapshot) clone() *Snapshot {
	c := &Snapshot{
		files: make(map[string][]parser.Definition, len(s.files)+1),
		order: slices.Clone(s.order),
	}
	// slices are never mutated once stored, so they are shared
	for k, v := range s.files {
		c.files[k] = v
	}
	return c
}

// Files returns the indexed file paths in the order they were added.
func (s *Snapshot) Files() []string {
	return slices.Clone(s.order)
}

// File returns the definitions of one file.
func (s *Snapshot) File(path string) ([]parser.Definition, bool) {
	defs, ok := s.files[path]
	return slices.Clone(defs), ok
}

// Len returns the total number of definitions.
func (s *Snapshot) Len() int {
	n := 0
	for _, defs := range s.files {
		n += len(defs)
	}
	return n
}

func (s *Snapshot) each(fn func(d *parser.Definition)) {
	for _, path := range s.order {
		defs := s.files[path]
		for i := range defs {
			fn(&defs[i])
		}
	}
}

// LookupExact returns every definition whose identifier is key.
func (s *Snapshot) LookupExact(key string) []parser.Definition {
	var result []parser.Definition
	s.each(func(d *parser.Definition) {
		if d.Identifier() == key {
			result = append(result, *d)
		}
	})
	return result
}

// Identifiers returns the distinct identifiers in encounter order.
func (s *Snapshot) Identifiers() []string {
	seen := make(map[string]struct{})
	var result []string
	s.each(func(d *parser.Definition) {
		id := d.Identifier()
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		result = append(result, id)
	})
	return result
}
