package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbozan/lsp-translations/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Object form", func(t *testing.T) {
		var settings any
		require.NoError(t, json.Unmarshal([]byte(`{
			"translationFiles": {"include": ["./fixtures/*.json"], "exclude": ["./fixtures/ignored.json"]},
			"fileName": {"details": "^(?P<language>.+?)\\."},
			"key": {"filter": "^.+?\\.(.+)$", "details": ".+\\.(?P<language>.+?)$"}
		}`), &settings))

		cfg, err := config.Load(settings)
		require.NoError(t, err)
		assert.Equal(t, []string{"./fixtures/*.json"}, cfg.TranslationFiles.Include)
		assert.Equal(t, []string{"./fixtures/ignored.json"}, cfg.TranslationFiles.Exclude)
		require.True(t, cfg.FileName.Details.Set())
		assert.Equal(t, []string{"", "language"}, cfg.FileName.Details.SubexpNames())

		opts := cfg.ParserOptions()
		assert.Equal(t, "^.+?\\.(.+)$", opts.Filter.String())
		assert.NotNil(t, opts.Details)
		assert.NotNil(t, opts.FileDetails)
	})

	t.Run("List form", func(t *testing.T) {
		cfg, err := config.Load(map[string]any{
			"translationFiles": []any{"./fixtures/en.yml"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"./fixtures/en.yml"}, cfg.TranslationFiles.Include)
		assert.Empty(t, cfg.TranslationFiles.Exclude)
	})

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := config.Load(nil)
		require.NoError(t, err)
		assert.Empty(t, cfg.TranslationFiles.Include)
		assert.False(t, cfg.Key.Filter.Set())

		cfg, err = config.Load(map[string]any{"key": map[string]any{"filter": ""}})
		require.NoError(t, err)
		assert.False(t, cfg.Key.Filter.Set())
		assert.Nil(t, cfg.ParserOptions().Filter)
	})

	t.Run("Invalid patterns", func(t *testing.T) {
		tests := []struct {
			name     string
			settings map[string]any
		}{
			{name: "broken regex", settings: map[string]any{"key": map[string]any{"details": "(?P<language"}}},
			{name: "filter without group", settings: map[string]any{"key": map[string]any{"filter": "^abc$"}}},
			{name: "broken file name regex", settings: map[string]any{"fileName": map[string]any{"details": "[a-"}}},
			{name: "broken glob", settings: map[string]any{"translationFiles": []any{"fixtures/[a-.json"}}},
			{name: "empty glob", settings: map[string]any{"translationFiles": []any{" "}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := config.Load(tt.settings)
				assert.ErrorIs(t, err, config.ErrInvalidPattern)
			})
		}
	})
}

func TestLoadFromTOML(t *testing.T) {
	cfg, err := config.LoadFromTOML(strings.NewReader(`
translationFiles = ["locales/**/*.json"]

[fileName]
details = '^(?P<language>.+?)\.'

[key]
filter = '^messages\.(.+)$'
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"locales/**/*.json"}, cfg.TranslationFiles.Include)
	assert.True(t, cfg.FileName.Details.Set())
	assert.Equal(t, `^messages\.(.+)$`, cfg.Key.Filter.String())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "lsp-translations.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[translationFiles]\ninclude = [\"*.yml\"]\nexclude = [\"draft.yml\"]\n"), 0o644))
	cfg, err := config.LoadFile(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.yml"}, cfg.TranslationFiles.Include)
	assert.Equal(t, []string{"draft.yml"}, cfg.TranslationFiles.Exclude)

	jsonPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"translationFiles": ["*.json"], "key": {"filter": "no group"}}`), 0o644))
	_, err = config.LoadFile(jsonPath)
	assert.ErrorIs(t, err, config.ErrInvalidPattern)

	_, err = config.LoadFile(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
