package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rbozan/lsp-translations/internal/config"
	"github.com/rbozan/lsp-translations/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "fixtures", "en.json"))
	touch(t, filepath.Join(root, "fixtures", "nl.json"))
	touch(t, filepath.Join(root, "fixtures", "ignored.json"))
	touch(t, filepath.Join(root, "fixtures", "nested", "de.json"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "fixtures", "dir.json"), 0o755))

	other := t.TempDir()
	touch(t, filepath.Join(other, "fixtures", "fr.json"))

	t.Run("Include and exclude", func(t *testing.T) {
		files := scanner.Discover([]string{root}, config.Files{
			Include: []string{"./fixtures/*.json"},
			Exclude: []string{"./fixtures/ignored.json"},
		})
		assert.ElementsMatch(t, []string{
			filepath.Join(root, "fixtures", "en.json"),
			filepath.Join(root, "fixtures", "nl.json"),
		}, files)
	})

	t.Run("Double star and duplicates", func(t *testing.T) {
		files := scanner.Discover([]string{root}, config.Files{
			Include: []string{"fixtures/**/*.json", "fixtures/en.json"},
		})
		assert.Len(t, files, 4)
		assert.Contains(t, files, filepath.Join(root, "fixtures", "nested", "de.json"))
	})

	t.Run("Every folder", func(t *testing.T) {
		files := scanner.Discover([]string{root, other}, config.Files{Include: []string{"fixtures/fr.json", "fixtures/en.json"}})
		assert.ElementsMatch(t, []string{
			filepath.Join(root, "fixtures", "en.json"),
			filepath.Join(other, "fixtures", "fr.json"),
		}, files)
	})

	t.Run("No patterns", func(t *testing.T) {
		assert.Empty(t, scanner.Discover([]string{root}, config.Files{}))
	})
}

func TestWatchPatterns(t *testing.T) {
	patterns := scanner.WatchPatterns([]string{"/work/a", "/work/b"}, config.Files{Include: []string{"./fixtures/*.json", "lang/**/*.php"}})
	assert.Equal(t, []string{
		"/work/a/fixtures/*.json",
		"/work/a/lang/**/*.php",
		"/work/b/fixtures/*.json",
		"/work/b/lang/**/*.php",
	}, patterns)
}

func TestMatches(t *testing.T) {
	files := config.Files{Include: []string{"fixtures/**/*.yml"}, Exclude: []string{"fixtures/draft/*.yml"}}
	folders := []string{"/work"}

	assert.True(t, scanner.Matches(folders, files, "/work/fixtures/en.yml"))
	assert.True(t, scanner.Matches(folders, files, "/work/fixtures/a/b/nl.yml"))
	assert.False(t, scanner.Matches(folders, files, "/work/fixtures/draft/en.yml"))
	assert.False(t, scanner.Matches(folders, files, "/work/other/en.yml"))
}

func TestURIs(t *testing.T) {
	path, err := scanner.PathFromURI("file:///work/my%20project/en.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/work/my project/en.json"), path)

	assert.Equal(t, "file:///work/my%20project/en.json", scanner.URIFromPath("/work/my project/en.json"))

	_, err = scanner.PathFromURI("untitled:Untitled-1")
	assert.Error(t, err)
}
