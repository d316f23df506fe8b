// Package locator finds translation keys in source text by scanning for
// quoted literals that follow a known call prefix.
package locator

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPrefixes are the call prefixes that open a translation key.
var DefaultPrefixes = []string{
	"translate('",
	"translate(\"",
	"translate(`",
	" t('",
	" t(\"",
	"(t('",
	"(t(\"",
}

// DefaultTerminators close a translation key.
var DefaultTerminators = []string{"'", "\"", "`"}

// KeyDivider separates the segments of a nested key.
const KeyDivider = "."

// Span is a half-open byte range.
type Span struct {
	Start int
	End   int
}

// Match is a key found in the text.
type Match struct {
	Key  string
	Span Span
}

// Locator scans the whole text, not a single line.
type Locator struct {
	key     *regexp.Regexp
	editing *regexp.Regexp
}

var defaultLocator = mustNew(DefaultPrefixes, DefaultTerminators)

// Default returns a Locator for DefaultPrefixes and DefaultTerminators.
func Default() *Locator {
	return defaultLocator
}

// New builds a Locator from literal prefixes and terminators.
func New(prefixes []string, terminators []string) (*Locator, error) {
	if len(prefixes) == 0 || len(terminators) == 0 {
		return nil, fmt.Errorf("locator: prefixes and terminators must not be empty")
	}
	begin := "(?:" + alternation(prefixes) + ")"
	end := alternation(terminators)

	// keys never span a line break, whichever of \n, \r\n or \r it is
	key, err := regexp.Compile(begin + "([^\r\n]+?)(?:" + end + ")")
	if err != nil {
		return nil, fmt.Errorf("locator: %w", err)
	}
	// An unterminated key runs to the end of its line.
	editing, err := regexp.Compile(begin + "([^\r\n]*?)(?:" + end + "|\r|\n|$)")
	if err != nil {
		return nil, fmt.Errorf("locator: %w", err)
	}
	return &Locator{key: key, editing: editing}, nil
}

func mustNew(prefixes []string, terminators []string) *Locator {
	l, err := New(prefixes, terminators)
	if err != nil {
		panic(err)
	}
	return l
}

func alternation(literals []string) string {
	quoted := make([]string, len(literals))
	for i, l := range literals {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return strings.Join(quoted, "|")
}

// FindKeyAt returns the first complete key whose span contains offset.
func (l *Locator) FindKeyAt(text string, offset int) (Match, bool) {
	for _, m := range l.key.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		if start <= offset && offset < end {
			return Match{Key: text[start:end], Span: Span{Start: start, End: end}}, true
		}
	}
	return Match{}, false
}

// FindEditingRange returns the span of the key being typed at offset. The
// span may be empty and offset may sit on either of its edges, so
// completion works right after the opening quote.
func (l *Locator) FindEditingRange(text string, offset int) (Span, bool) {
	for _, m := range l.editing.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		if start <= offset && offset <= end {
			return Span{Start: start, End: end}, true
		}
	}
	return Span{}, false
}

// TriggerCharacters are the characters after which a client should ask
// for completions.
func TriggerCharacters(terminators []string) []string {
	chars := make([]string, 0, len(terminators)+1)
	chars = append(chars, terminators...)
	return append(chars, KeyDivider)
}
