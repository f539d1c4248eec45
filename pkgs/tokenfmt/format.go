package tokenfmt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Format names an output encoding for a token stream
type Format string

const (
	FormatText Format = "text" // one token per line, aligned columns
	FormatJSON Format = "json" // Document as indented JSON
	FormatYAML Format = "yaml" // Document as YAML
	FormatCBOR Format = "cbor" // Document as binary CBOR
	FormatLSP  Format = "lsp"  // LSP semantic tokens array as JSON
)

// Formats lists every supported format in display order
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatCBOR, FormatLSP}

// ParseFormat resolves a format name case-insensitively
//
// Unknown names produce an error that suggests the closest known format.
func ParseFormat(name string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, f := range Formats {
		if string(f) == normalized {
			return f, nil
		}
	}

	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}

	if suggestion := closest(normalized, names); suggestion != "" {
		return "", fmt.Errorf("unknown format %q (did you mean %q?)", name, suggestion)
	}
	return "", fmt.Errorf("unknown format %q (supported: %s)", name, strings.Join(names, ", "))
}

// closest returns the best fuzzy match for name, or "" when nothing matches
func closest(name string, candidates []string) string {
	if name == "" {
		return ""
	}

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
