package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/rbozan/lsp-translations/internal/parser"
)

// Section is the name of the client settings section.
const Section = "lsp-translations"

var ErrInvalidPattern = errors.New("config: invalid pattern")

type Config struct {
	TranslationFiles Files    `json:"translationFiles"`
	FileName         FileName `json:"fileName"`
	Key              Key      `json:"key"`
}

// Files selects the translation files of each workspace folder with glob
// patterns relative to the folder.
type Files struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude,omitempty"`
}

// UnmarshalJSON accepts both {"include": [...], "exclude": [...]} and a
// plain list of include patterns.
func (f *Files) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var include []string
		if err := json.Unmarshal(data, &include); err != nil {
			return err
		}
		*f = Files{Include: include}
		return nil
	}
	type plain Files
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = Files(p)
	return nil
}

type FileName struct {
	// Details extracts named groups, usually "language", from the base name
	// of each file.
	Details Pattern `json:"details"`
}

type Key struct {
	// Details extracts named groups from each key.
	Details Pattern `json:"details"`
	// Filter selects the visible identifier with its first group.
	Filter Pattern `json:"filter"`
}

// Pattern is a regular expression decoded from a string. The zero value and
// the empty string mean unset.
type Pattern struct {
	*regexp.Regexp
}

func (p *Pattern) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		p.Regexp = nil
		return nil
	}
	re, err := regexp.Compile(string(text))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, text, err)
	}
	p.Regexp = re
	return nil
}

func (p Pattern) MarshalText() ([]byte, error) {
	if p.Regexp == nil {
		return []byte{}, nil
	}
	return []byte(p.String()), nil
}

// Set reports whether the pattern is configured.
func (p Pattern) Set() bool {
	return p.Regexp != nil
}

func defaultConfig() Config {
	return Config{}
}

// Load decodes settings as received from the client, such as the result of
// a workspace/configuration request, over the defaults.
func Load(v any) (Config, error) {
	cfg := defaultConfig()
	if v == nil {
		return cfg, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}

	// only fields present in src will overwrite.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromJSON reads JSON from r into a Config.
func LoadFromJSON(r io.Reader) (Config, error) {
	cfg := defaultConfig()

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromTOML reads TOML from r into a Config.
func LoadFromTOML(r io.Reader) (Config, error) {
	var raw map[string]any
	if err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("failed to decode toml: %w", err)
	}
	return Load(raw)
}

// LoadFile reads a .toml or .json config file.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadFromJSON(f)
	default:
		return LoadFromTOML(f)
	}
}

// Validate checks constraints the decoder cannot express.
func (c Config) Validate() error {
	if c.Key.Filter.Set() && c.Key.Filter.NumSubexp() < 1 {
		return fmt.Errorf("%w: key.filter %q needs a capture group", ErrInvalidPattern, c.Key.Filter.String())
	}
	for _, p := range append(append([]string{}, c.TranslationFiles.Include...), c.TranslationFiles.Exclude...) {
		if strings.TrimSpace(p) == "" || !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return fmt.Errorf("%w: translationFiles pattern %q", ErrInvalidPattern, p)
		}
	}
	return nil
}

// ParserOptions returns the key post-processing options.
func (c Config) ParserOptions() parser.Options {
	return parser.Options{
		Filter:      c.Key.Filter.Regexp,
		Details:     c.Key.Details.Regexp,
		FileDetails: c.FileName.Details.Regexp,
	}
}
