package parser

import (
	"regexp"
	"strings"
)

// Definition is one translated value found in a translation file.
type Definition struct {
	// Key is the full path of the value, e.g. "main.header.title" or "list[1]".
	Key string
	// CleanedKey is the part of Key selected by the key filter. Empty when no
	// filter is configured or it did not match.
	CleanedKey string
	Value      string
	// Source is the path of the translation file.
	Source    string
	ExtraData map[string]string
}

// Identifier is the key shown to users.
func (d Definition) Identifier() string {
	if d.CleanedKey != "" {
		return d.CleanedKey
	}
	return d.Key
}

// Language returns the "language" detail, if any.
func (d Definition) Language() string {
	return d.ExtraData["language"]
}

// Options controls how keys are post-processed.
type Options struct {
	// Filter selects the cleaned key with its first capture group. It is
	// matched against the key with line breaks removed.
	Filter *regexp.Regexp
	// Details extracts named groups from the key into ExtraData.
	Details *regexp.Regexp
	// FileDetails extracts named groups from the base name of the file.
	// Groups from Details take precedence.
	FileDetails *regexp.Regexp
}

func (o Options) cleanedKey(key string) string {
	if o.Filter == nil {
		return ""
	}
	key = strings.ReplaceAll(key, "\n", "")
	m := o.Filter.FindStringSubmatchIndex(key)
	if len(m) < 4 || m[2] < 0 {
		return ""
	}
	return key[m[2]:m[3]]
}

func namedGroups(re *regexp.Regexp, s string, into map[string]string) {
	if re == nil {
		return
	}
	m := re.FindStringSubmatchIndex(s)
	if m == nil {
		return
	}
	for i, name := range re.SubexpNames() {
		if name == "" || m[2*i] < 0 {
			continue
		}
		into[name] = s[m[2*i]:m[2*i+1]]
	}
}

func (o Options) extraData(key string, fileName string) map[string]string {
	data := make(map[string]string)
	namedGroups(o.FileDetails, fileName, data)
	namedGroups(o.Details, key, data)
	if len(data) == 0 {
		return nil
	}
	return data
}
