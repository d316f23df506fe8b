package index

import (
	"slices"
	"strings"

	"github.com/rbozan/lsp-translations/internal/parser"
)

// PlaceholderFlag is shown for a definition without a known flag.
const PlaceholderFlag = "\U0001F3F4\U000E0062\U000E0073\U000E0062\U000E0070\U000E007F"

// FlagFunc maps a language tag to a flag emoji.
type FlagFunc func(language string) (string, bool)

var printable = strings.NewReplacer(
	"\\", "\\\\",
	"\n", "\\n",
	"\r", "\\r",
	"\t", "\\t",
	"|", "\\|",
)

// Printable escapes a value for a single markdown table cell.
func Printable(value string) string {
	return printable.Replace(value)
}

// RenderDetail renders the definitions of key as a markdown table. It
// returns false when key has no definitions. flags may be nil.
func (s *Snapshot) RenderDetail(key string, flags FlagFunc) (string, bool) {
	defs := s.LookupExact(key)
	if len(defs) == 0 {
		return "", false
	}

	flagOf := func(d parser.Definition) (string, bool) {
		if flags == nil || d.Language() == "" {
			return "", false
		}
		return flags(d.Language())
	}

	// flags derive from the language, so a language is enough
	detailed := slices.ContainsFunc(defs, func(d parser.Definition) bool {
		return d.Language() != ""
	})

	rows := make([]string, 0, len(defs)+1)
	if detailed {
		rows = append(rows, "flag|language|translation\n-|-|-")
	} else {
		rows = append(rows, "|translation|\n|-")
	}
	for _, d := range defs {
		if !detailed {
			rows = append(rows, "|"+Printable(d.Value))
			continue
		}
		flag, ok := flagOf(d)
		if !ok {
			flag = PlaceholderFlag
		}
		rows = append(rows, flag+"|**"+d.Language()+"**|"+Printable(d.Value))
	}
	return strings.Join(rows, "\n"), true
}
