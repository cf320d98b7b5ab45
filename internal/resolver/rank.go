package resolver

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ternarybob/pretium/internal/common"
)

// companyPathPrefix is the known URL prefix for company resources.
// Everything after it, variant suffix included, is the resource id.
const companyPathPrefix = "/company/"

// candidate is one search result from the source, with every field
// best-effort: the endpoint has changed shape before and will again.
type candidate struct {
	symbol string
	name   string
	slug   string
	url    string
}

// parseCandidates reads search results from either a bare JSON array
// or an array nested under a wrapper key.
func parseCandidates(parsed gjson.Result) []candidate {
	items := parsed
	if !items.IsArray() {
		for _, key := range []string{"results", "companies", "data"} {
			if arr := parsed.Get(key); arr.IsArray() {
				items = arr
				break
			}
		}
	}
	if !items.IsArray() {
		return nil
	}

	var candidates []candidate
	items.ForEach(func(_, item gjson.Result) bool {
		c := candidate{
			symbol: firstString(item, "symbol", "code", "ticker"),
			name:   firstString(item, "name", "company_name", "title"),
			slug:   firstString(item, "slug"),
			url:    firstString(item, "url", "path", "link"),
		}
		if c.symbol == "" {
			c.symbol = pathSegment(c.url)
		}
		if c.symbol != "" || c.name != "" || c.url != "" {
			candidates = append(candidates, c)
		}
		return true
	})

	return candidates
}

// firstString returns the first non-empty string among the named
// fields of item.
func firstString(item gjson.Result, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(item.Get(key).String()); value != "" {
			return value
		}
	}
	return ""
}

// pathSegment extracts the first path segment after the company
// prefix, without any variant suffix. Used for display symbols.
func pathSegment(rawURL string) string {
	idx := strings.Index(rawURL, companyPathPrefix)
	if idx < 0 {
		return ""
	}
	rest := strings.Trim(rawURL[idx+len(companyPathPrefix):], "/")
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return strings.ToUpper(rest)
}

// rankCandidates picks the best match for the input symbol. Tiers, in
// order: exact symbol match, exact name match, containment either
// direction after corporate suffixes are stripped, then whatever the
// source ranked first.
func rankCandidates(input string, candidates []candidate) (candidate, bool) {
	if len(candidates) == 0 {
		return candidate{}, false
	}

	for _, c := range candidates {
		if strings.EqualFold(c.symbol, input) {
			return c, true
		}
	}

	for _, c := range candidates {
		if strings.EqualFold(c.name, input) {
			return c, true
		}
	}

	stripped := common.StripCorporateSuffixes(input)
	for _, c := range candidates {
		if containsEitherWay(stripped, common.StripCorporateSuffixes(c.symbol)) ||
			containsEitherWay(stripped, common.StripCorporateSuffixes(c.name)) {
			return c, true
		}
	}

	return candidates[0], true
}

func containsEitherWay(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	a = strings.ToUpper(a)
	b = strings.ToUpper(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// resourceID derives the source resource identifier from a candidate.
// The URL path wins because it alone preserves a variant suffix like
// "RELIANCE/consolidated"; then an explicit slug; then the slugified
// name.
func resourceID(c candidate) string {
	if id := resourceIDFromURL(c.url); id != "" {
		return id
	}
	if c.slug != "" {
		return strings.Trim(c.slug, "/")
	}
	return common.Slugify(c.name)
}

func resourceIDFromURL(rawURL string) string {
	idx := strings.Index(rawURL, companyPathPrefix)
	if idx < 0 {
		return ""
	}
	return strings.Trim(rawURL[idx+len(companyPathPrefix):], "/")
}
