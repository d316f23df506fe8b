package parser

import (
	"embed"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/yaml"
	tree_sitter_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
)

//go:embed queries/*.scm
var queries embed.FS

// Capture names understood by the indexer.
const (
	CaptureKey   = "translation_key"
	CaptureValue = "translation_value"
	CaptureGroup = "translation_group"
	CaptureError = "translation_error"
)

// OrdinalMode decides how the index of a sequence item is counted.
type OrdinalMode int

const (
	// CountValues counts named siblings that are not extras such as comments.
	CountValues OrdinalMode = iota
	// CountAllChildren counts every sibling, punctuation included.
	CountAllChildren
)

// Grammar is everything the indexer needs to know about one file format.
// The walker itself never looks at node kinds other than the ones named here.
type Grammar struct {
	Name       string
	Extensions []string
	Language   *sitter.Language
	Query      []byte

	// EntryKinds are mapping entries that contribute a key segment.
	EntryKinds []string
	// KeyField names the key child of an entry. When empty the first named
	// child is the key, but only for entries with at least two named children.
	KeyField string
	// SequenceKinds are containers whose children are addressed by index.
	SequenceKinds []string
	// StringKinds are searched for, depth first, inside a key node to find
	// the node holding the key text.
	StringKinds []string
	Ordinal     OrdinalMode

	// Unquote turns the text of a string node into its value. Double quotes
	// are decoded with Go escapes when nil.
	Unquote func(literal string) string
}

func mustQuery(name string) []byte {
	b, err := queries.ReadFile("queries/" + name)
	if err != nil {
		panic(fmt.Sprintf("parser: missing query %s: %v", name, err))
	}
	return b
}

// JSON returns the grammar for .json files.
func JSON() *Grammar {
	return &Grammar{
		Name:          "json",
		Extensions:    []string{"json"},
		Language:      sitter.NewLanguage(tree_sitter_json.Language()),
		Query:         mustQuery("json.scm"),
		EntryKinds:    []string{"pair"},
		KeyField:      "key",
		SequenceKinds: []string{"array"},
		StringKinds:   []string{"string", "number"},
		Unquote:       unquoteJSON,
	}
}

// YAML returns the grammar for .yaml and .yml files.
func YAML() *Grammar {
	return &Grammar{
		Name:          "yaml",
		Extensions:    []string{"yaml", "yml"},
		Language:      yaml.GetLanguage(),
		Query:         mustQuery("yaml.scm"),
		EntryKinds:    []string{"block_mapping_pair", "flow_pair"},
		KeyField:      "key",
		SequenceKinds: []string{"block_sequence", "flow_sequence"},
		StringKinds:   []string{"string_scalar", "single_quote_scalar", "double_quote_scalar", "integer_scalar", "plain_scalar"},
		Unquote:       unquoteYAML,
	}
}

// PHP returns the grammar for PHP files returning an array.
func PHP() *Grammar {
	return &Grammar{
		Name:          "php",
		Extensions:    []string{"php"},
		Language:      php.GetLanguage(),
		Query:         mustQuery("php.scm"),
		EntryKinds:    []string{"array_element_initializer"},
		SequenceKinds: []string{"array_creation_expression"},
		StringKinds:   []string{"string", "encapsed_string", "integer"},
		Unquote:       unquotePHP,
	}
}

// Builtin returns every grammar shipped with the indexer.
func Builtin() []*Grammar {
	return []*Grammar{JSON(), YAML(), PHP()}
}

// extension returns the lower-cased extension of path without the dot.
func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func (g *Grammar) isEntry(n *sitter.Node) bool {
	return slices.Contains(g.EntryKinds, n.Type())
}

func (g *Grammar) isSequence(n *sitter.Node) bool {
	return slices.Contains(g.SequenceKinds, n.Type())
}

func (g *Grammar) isString(n *sitter.Node) bool {
	return slices.Contains(g.StringKinds, n.Type())
}

func (g *Grammar) unquote(literal string) string {
	if g.Unquote != nil {
		return g.Unquote(literal)
	}
	return unquote(literal)
}
