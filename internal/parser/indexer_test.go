package parser_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/rbozan/lsp-translations/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv struct {
	Key   string
	Value string
}

func pairs(defs []parser.Definition) []kv {
	out := make([]kv, len(defs))
	for i, d := range defs {
		out[i] = kv{Key: d.Key, Value: d.Value}
	}
	return out
}

func newIndexer(t *testing.T, grammars ...*parser.Grammar) *parser.Indexer {
	t.Helper()
	idx, err := parser.NewIndexer(2, grammars...)
	require.NoError(t, err)
	t.Cleanup(idx.Close)
	return idx
}

func TestIndexJSON(t *testing.T) {
	idx := newIndexer(t)
	ctx := context.Background()

	t.Run("Language details", func(t *testing.T) {
		opts := parser.Options{
			Details: regexp.MustCompile(`^.+\.(?P<language>.+?)$`),
		}
		defs, err := idx.Index(ctx, "translations.json", []byte(`{"a": {"en": "Hello", "nl": "Hallo"}}`), opts)
		require.NoError(t, err)
		require.Len(t, defs, 2)

		assert.Equal(t, "a.en", defs[0].Key)
		assert.Equal(t, "Hello", defs[0].Value)
		assert.Equal(t, map[string]string{"language": "en"}, defs[0].ExtraData)
		assert.Equal(t, "en", defs[0].Language())
		assert.Equal(t, "translations.json", defs[0].Source)

		assert.Equal(t, "a.nl", defs[1].Key)
		assert.Equal(t, "Hallo", defs[1].Value)
		assert.Equal(t, map[string]string{"language": "nl"}, defs[1].ExtraData)
	})

	t.Run("Nested objects and arrays", func(t *testing.T) {
		src := `{
			"main": {
				"header": {"title": "This title will appear in the header."},
				"list": ["first", "second", {"deep": "third"}]
			},
			"escaped": "line\nbreak \"quoted\""
		}`
		defs, err := idx.Index(ctx, "en.json", []byte(src), parser.Options{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []kv{
			{Key: "main.header.title", Value: "This title will appear in the header."},
			{Key: "main.list[0]", Value: "first"},
			{Key: "main.list[1]", Value: "second"},
			{Key: "main.list[2].deep", Value: "third"},
			{Key: "escaped", Value: "line\nbreak \"quoted\""},
		}, pairs(defs))
	})

	t.Run("Root array", func(t *testing.T) {
		defs, err := idx.Index(ctx, "list.json", []byte(`["a", ["b"]]`), parser.Options{})
		require.NoError(t, err)
		assert.Equal(t, []kv{{Key: "[0]", Value: "a"}, {Key: "[1][0]", Value: "b"}}, pairs(defs))
	})

	t.Run("Non string values are skipped", func(t *testing.T) {
		defs, err := idx.Index(ctx, "en.json", []byte(`{"count": 3, "on": true, "name": "x"}`), parser.Options{})
		require.NoError(t, err)
		assert.Equal(t, []kv{{Key: "name", Value: "x"}}, pairs(defs))
	})

	t.Run("Syntax error voids the file", func(t *testing.T) {
		defs, err := idx.Index(ctx, "en.json", []byte(`{"ok": "fine", "broken": }`), parser.Options{})
		assert.ErrorIs(t, err, parser.ErrMalformedTranslationFile)
		assert.Empty(t, defs)
	})

	t.Run("Scalar document is malformed", func(t *testing.T) {
		_, err := idx.Index(ctx, "en.json", []byte(`"just a string"`), parser.Options{})
		assert.ErrorIs(t, err, parser.ErrMalformedTranslationFile)
	})
}

func TestIndexOptions(t *testing.T) {
	idx := newIndexer(t)
	ctx := context.Background()
	src := []byte(`{"app": {"greeting": {"en": "Hi", "nl": "Hoi"}}}`)

	t.Run("Filter selects the cleaned key", func(t *testing.T) {
		opts := parser.Options{
			Filter:  regexp.MustCompile(`^app\.(.+)\.[a-z]+$`),
			Details: regexp.MustCompile(`\.(?P<language>[a-z]+)$`),
		}
		defs, err := idx.Index(ctx, "all.json", src, opts)
		require.NoError(t, err)
		require.Len(t, defs, 2)
		for _, d := range defs {
			assert.Equal(t, "greeting", d.CleanedKey)
			assert.Equal(t, "greeting", d.Identifier())
		}
		assert.Equal(t, "en", defs[0].Language())
		assert.Equal(t, "nl", defs[1].Language())
	})

	t.Run("Unmatched filter falls back to the key", func(t *testing.T) {
		opts := parser.Options{Filter: regexp.MustCompile(`^other\.(.+)$`)}
		defs, err := idx.Index(ctx, "all.json", src, opts)
		require.NoError(t, err)
		assert.Empty(t, defs[0].CleanedKey)
		assert.Equal(t, "app.greeting.en", defs[0].Identifier())
	})

	t.Run("File details merge under key details", func(t *testing.T) {
		opts := parser.Options{
			FileDetails: regexp.MustCompile(`^(?P<language>.+?)\.(?P<format>.+)$`),
			Details:     regexp.MustCompile(`\.(?P<format>[a-z]+)$`),
		}
		defs, err := idx.Index(ctx, "/tmp/locales/nl.json", []byte(`{"hello": {"short": "Hoi"}}`), opts)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, map[string]string{"language": "nl", "format": "short"}, defs[0].ExtraData)
	})
}

func TestIndexYAML(t *testing.T) {
	idx := newIndexer(t)
	src := `main:
  header:
    title: This title will appear in the header.
  quoted: "with \"escapes\""
  single: 'single'
  list:
    - first
    - name: second
  inline: [one, two]
`
	defs, err := idx.Index(context.Background(), "en.yml", []byte(src), parser.Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []kv{
		{Key: "main.header.title", Value: "This title will appear in the header."},
		{Key: "main.quoted", Value: `with "escapes"`},
		{Key: "main.single", Value: "single"},
		{Key: "main.list[0]", Value: "first"},
		{Key: "main.list[1].name", Value: "second"},
		{Key: "main.inline[0]", Value: "one"},
		{Key: "main.inline[1]", Value: "two"},
	}, pairs(defs))

	assert.True(t, idx.Supports("nl.yaml"))
	assert.True(t, idx.Supports("NL.YML"))
}

func TestIndexPHP(t *testing.T) {
	idx := newIndexer(t)
	src := `<?php

return [
    'title' => 'Hello',
    "subtitle" => "World",
    'menu' => [
        'home' => 'Home',
        'items' => ['One', 'Two'],
    ],
];
`
	defs, err := idx.Index(context.Background(), "lang/en/messages.php", []byte(src), parser.Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []kv{
		{Key: "title", Value: "Hello"},
		{Key: "subtitle", Value: "World"},
		{Key: "menu.home", Value: "Home"},
		{Key: "menu.items[0]", Value: "One"},
		{Key: "menu.items[1]", Value: "Two"},
	}, pairs(defs))
}

func TestIndexPHPList(t *testing.T) {
	idx := newIndexer(t)
	src := `<?php

return ['First', "Second"];
`
	defs, err := idx.Index(context.Background(), "en.php", []byte(src), parser.Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []kv{
		{Key: "[0]", Value: "First"},
		{Key: "[1]", Value: "Second"},
	}, pairs(defs))
}

func TestIndexEscapes(t *testing.T) {
	idx := newIndexer(t)

	tests := []struct {
		name string
		path string
		src  string
		want []kv
	}{
		{
			name: "JSON",
			path: "en.json",
			src:  `{"path": "d\/e", "quote": "say \"hi\"", "accent": "caf\u00e9"}`,
			want: []kv{
				{Key: "path", Value: "d/e"},
				{Key: "quote", Value: `say "hi"`},
				{Key: "accent", Value: "café"},
			},
		},
		{
			name: "YAML",
			path: "en.yml",
			src:  "single: 'it''s'\ndouble: \"tab\\there\"\nplain: yes\n",
			want: []kv{
				{Key: "single", Value: "it's"},
				{Key: "double", Value: "tab\there"},
				{Key: "plain", Value: "yes"},
			},
		},
		{
			name: "PHP",
			path: "en.php",
			src:  `<?php return ['single' => 'it\'s', 'slash' => 'a\\b', 'double' => "line\n"];`,
			want: []kv{
				{Key: "single", Value: "it's"},
				{Key: "slash", Value: `a\b`},
				{Key: "double", Value: "line\n"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := idx.Index(context.Background(), tt.path, []byte(tt.src), parser.Options{})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, pairs(defs))
		})
	}
}

func TestOrdinalMode(t *testing.T) {
	src := []byte(`{"list": ["a", "b", "c"]}`)

	t.Run("Values", func(t *testing.T) {
		idx := newIndexer(t, parser.JSON())
		defs, err := idx.Index(context.Background(), "en.json", src, parser.Options{})
		require.NoError(t, err)
		assert.Equal(t, []kv{
			{Key: "list[0]", Value: "a"},
			{Key: "list[1]", Value: "b"},
			{Key: "list[2]", Value: "c"},
		}, pairs(defs))
	})

	t.Run("All children", func(t *testing.T) {
		g := parser.JSON()
		g.Ordinal = parser.CountAllChildren
		idx := newIndexer(t, g)
		defs, err := idx.Index(context.Background(), "en.json", src, parser.Options{})
		require.NoError(t, err)
		// "[" and "," are counted
		assert.Equal(t, []kv{
			{Key: "list[1]", Value: "a"},
			{Key: "list[3]", Value: "b"},
			{Key: "list[5]", Value: "c"},
		}, pairs(defs))
	})
}

func TestIndexErrors(t *testing.T) {
	idx := newIndexer(t)

	_, err := idx.Index(context.Background(), "notes.txt", []byte("hello"), parser.Options{})
	assert.ErrorIs(t, err, parser.ErrUnsupportedFileType)
	assert.False(t, idx.Supports("notes.txt"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.Index(ctx, "en.json", []byte(`{"a": "b"}`), parser.Options{})
	assert.Error(t, err)
}
