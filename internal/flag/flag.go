// Package flag maps language tags to country flag emoji.
package flag

import (
	"strings"

	"golang.org/x/text/language"
)

// Resolve returns the flag for a language tag such as "nl", "en" or
// "en-us". The most specific part of the tag wins; a bare "en" maps to the
// United States.
func Resolve(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", false
	}
	upper := strings.ToUpper(tag)

	candidates := strings.Split(upper, "-")
	candidates = append(candidates, upper)
	if upper == "EN" {
		candidates = append(candidates, "US")
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		if f, ok := forRegion(candidates[i]); ok {
			return f, true
		}
	}

	// fall back to the region the language is most likely spoken in
	t, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	region, confidence := t.Region()
	if confidence == language.No {
		return "", false
	}
	return forRegion(region.String())
}

func forRegion(code string) (string, bool) {
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", false
	}
	code = region.String()
	if len(code) != 2 {
		return "", false
	}
	var b strings.Builder
	for _, c := range code {
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String(), true
}
