package common

import (
	"strings"
	"unicode"
)

// Corporate suffixes stripped before fuzzy symbol/name comparison.
var corporateSuffixes = []string{"LIMITED", "LTD", "INCORPORATED", "INC"}

// NormalizeSymbol uppercases and trims a user-supplied symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Slugify converts a name to a URL slug: lowercase, spaces to hyphens,
// everything else non-alphanumeric stripped.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	// Collapse runs of hyphens left by stripped punctuation
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// StripCorporateSuffixes removes trailing LTD/LIMITED/INC/INCORPORATED
// tokens from a company name for comparison. Whole tokens only, so a
// symbol like LINC keeps its trailing INC.
func StripCorporateSuffixes(name string) string {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(name)))
	for len(fields) > 0 {
		if !isCorporateSuffix(strings.Trim(fields[len(fields)-1], ".,")) {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

func isCorporateSuffix(token string) bool {
	for _, suffix := range corporateSuffixes {
		if token == suffix {
			return true
		}
	}
	return false
}

// InferExchange guesses the listing exchange from a resource identifier.
// Numeric identifiers are BSE scrip codes; everything else trades on NSE.
func InferExchange(resourceID string) string {
	id := resourceID
	if i := strings.IndexByte(id, '/'); i >= 0 {
		id = id[:i]
	}
	if id == "" {
		return "NSE"
	}
	for _, r := range id {
		if !unicode.IsDigit(r) {
			return "NSE"
		}
	}
	return "BSE"
}
