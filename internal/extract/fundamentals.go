package extract

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/ternarybob/pretium/internal/models"
	"github.com/ternarybob/pretium/internal/transport"
)

// fundamentals fills the map from three sources in order: the page's
// two-span ratio list, the meta description, and the authenticated
// quick-ratios endpoint. Later sources only add keys the earlier ones
// missed, never overwrite.
func (e *Extractor) fundamentals(ctx context.Context, page []byte, out map[string]string) {
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page)); err == nil {
		scanListItems(doc, out)
		fillFromMetaDescription(doc, out)
	}
	e.fillFromQuickRatios(ctx, page, out)
}

// scanListItems collects label/value pairs from list items carrying
// exactly two direct spans, the structure the source uses for its
// ratio blocks. Values keep their display form; nested markup is
// flattened and whitespace collapsed.
func scanListItems(doc *goquery.Document, out map[string]string) {
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		spans := li.ChildrenFiltered("span")
		if spans.Length() != 2 {
			return
		}

		label := strings.TrimSuffix(collapseWhitespace(spans.Eq(0).Text()), ":")
		value := collapseWhitespace(spans.Eq(1).Text())
		if label == "" || value == "" {
			return
		}

		if _, exists := out[label]; !exists {
			out[label] = value
		}
	})
}

// The meta description spells out a few ratios in prose. These
// patterns recover them when the ratio list did not carry the key.
var metaRatioPatterns = []struct {
	key     string
	pattern *regexp.Regexp
}{
	{models.FundamentalPromoterHolding, regexp.MustCompile(`(?i)promoter\s+holding[^0-9]{0,30}([0-9.]+\s*%)`)},
	{models.FundamentalROCE, regexp.MustCompile(`(?i)\bROCE\b[^0-9]{0,30}([0-9.]+\s*%)`)},
	{models.FundamentalROE, regexp.MustCompile(`(?i)\bROE\b[^0-9]{0,30}([0-9.]+\s*%)`)},
	{models.FundamentalDividendYield, regexp.MustCompile(`(?i)dividend\s+yield[^0-9]{0,30}([0-9.]+\s*%)`)},
}

func fillFromMetaDescription(doc *goquery.Document, out map[string]string) {
	content, ok := doc.Find(`meta[name="description"]`).Attr("content")
	if !ok || content == "" {
		return
	}

	for _, mp := range metaRatioPatterns {
		if _, exists := out[mp.key]; exists {
			continue
		}
		if m := mp.pattern.FindStringSubmatch(content); m != nil {
			out[mp.key] = collapseWhitespace(m[1])
		}
	}
}

// fillFromQuickRatios asks the authenticated ratios endpoint for keys
// the page scan missed. It needs a non-empty session cookie and the
// embedded numeric company id; lacking either it silently does
// nothing, matching the rest of quote extraction's degradation.
func (e *Extractor) fillFromQuickRatios(ctx context.Context, page []byte, out map[string]string) {
	if e.client == nil || e.session == nil {
		return
	}
	if e.session.Cookie(ctx) == "" {
		return
	}

	id, ok := findNumericID(page)
	if !ok {
		return
	}

	ratiosURL := fmt.Sprintf("%s/api/company/%s/quick_ratios/", e.baseURL, id)
	resp, err := e.client.Get(ctx, ratiosURL, transport.ForOperation("quick_ratios"))
	if err != nil {
		if e.logger != nil {
			e.logger.Debug().Err(err).Str("company_id", id).Msg("Quick ratios fetch failed")
		}
		return
	}

	parsed, jsonOK := resp.JSON()
	if !jsonOK {
		return
	}

	mergeRatios(parsed, out)
}

// mergeRatios adds ratio entries into out without overwriting. The
// endpoint has served both a flat object and a list of name/value
// items, sometimes under a wrapper key.
func mergeRatios(parsed gjson.Result, out map[string]string) {
	ratios := parsed
	for _, key := range []string{"ratios", "data"} {
		if nested := parsed.Get(key); nested.Exists() {
			ratios = nested
			break
		}
	}

	add := func(key, value string) {
		key = strings.TrimSuffix(collapseWhitespace(key), ":")
		value = collapseWhitespace(value)
		if key == "" || value == "" {
			return
		}
		if _, exists := out[key]; !exists {
			out[key] = value
		}
	}

	switch {
	case ratios.IsObject():
		ratios.ForEach(func(key, value gjson.Result) bool {
			add(key.String(), value.String())
			return true
		})
	case ratios.IsArray():
		ratios.ForEach(func(_, item gjson.Result) bool {
			add(item.Get("name").String(), item.Get("value").String())
			return true
		})
	}
}
