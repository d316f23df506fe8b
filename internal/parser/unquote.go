package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// unquoteJSON decodes a JSON string literal. Anything else, such as a
// number, is returned as written.
func unquoteJSON(s string) string {
	if !strings.HasPrefix(s, `"`) {
		return s
	}
	var v string
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return trimQuotes(s)
	}
	return v
}

// unquoteYAML decodes single and double quoted scalars. Plain scalars are
// returned as written, so "yes" or "~" keep their text.
func unquoteYAML(s string) string {
	if !strings.HasPrefix(s, `"`) && !strings.HasPrefix(s, "'") {
		return s
	}
	var v string
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return trimQuotes(s)
	}
	return v
}

var phpSingleQuoted = strings.NewReplacer(`\\`, `\`, `\'`, `'`)

// unquotePHP decodes a single quoted literal, where only \' and \\ are
// escapes, and the escapes of a double quoted one.
func unquotePHP(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return phpSingleQuoted.Replace(s[1 : len(s)-1])
	}
	return unquote(s)
}

// unquote decodes a double quoted literal and strips the delimiters of any
// other quoted literal.
func unquote(s string) string {
	if strings.HasPrefix(s, `"`) {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return trimQuotes(s)
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
