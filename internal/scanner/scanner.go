// Package scanner finds the translation files of the workspace folders.
package scanner

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tliron/commonlog"

	"github.com/rbozan/lsp-translations/internal/config"
)

var log = commonlog.GetLogger("lsp-translations.scanner")

// Discover returns the regular files under folders that match an include
// pattern and no exclude pattern. Patterns are relative to each folder. The
// result has no duplicates and keeps the order in which files were found.
func Discover(folders []string, files config.Files) []string {
	excluded := make(map[string]struct{})
	for _, path := range glob(folders, files.Exclude) {
		excluded[path] = struct{}{}
	}

	var result []string
	for _, path := range glob(folders, files.Include) {
		if _, ok := excluded[path]; ok {
			log.Debugf("excluded %q", path)
			continue
		}
		result = append(result, path)
	}
	return result
}

func glob(folders []string, patterns []string) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, folder := range folders {
		for _, pattern := range patterns {
			full := filepath.Join(folder, filepath.FromSlash(pattern))
			matches, err := doublestar.FilepathGlob(full)
			if err != nil {
				log.Warningf("invalid pattern %q: %v", full, err)
				continue
			}
			for _, path := range matches {
				path = filepath.Clean(path)
				if _, ok := seen[path]; ok {
					continue
				}
				info, err := os.Stat(path)
				if err != nil || !info.Mode().IsRegular() {
					continue
				}
				seen[path] = struct{}{}
				result = append(result, path)
			}
		}
	}
	return result
}

// WatchPatterns returns one absolute glob per folder and include pattern,
// in the slash separated form file watchers expect.
func WatchPatterns(folders []string, files config.Files) []string {
	var result []string
	for _, folder := range folders {
		for _, pattern := range files.Include {
			full := filepath.Join(folder, filepath.FromSlash(pattern))
			result = append(result, filepath.ToSlash(full))
		}
	}
	return result
}

// Matches reports whether path would be discovered.
func Matches(folders []string, files config.Files, path string) bool {
	path = filepath.ToSlash(filepath.Clean(path))
	match := func(patterns []string) bool {
		for _, folder := range folders {
			for _, pattern := range patterns {
				full := filepath.ToSlash(filepath.Join(folder, filepath.FromSlash(pattern)))
				if ok, _ := doublestar.Match(full, path); ok {
					return true
				}
			}
		}
		return false
	}
	return match(files.Include) && !match(files.Exclude)
}
