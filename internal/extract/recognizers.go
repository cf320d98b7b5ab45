package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// priceInfo carries independently resolved price fields. Each flag
// records whether its field was actually found rather than defaulted,
// which matters when deriving percent change.
type priceInfo struct {
	price            float64
	previousClose    float64
	changePercent    float64
	volume           int64
	hasPrice         bool
	hasPreviousClose bool
	hasChangePercent bool
	hasVolume        bool
}

// priceRecognizer tries to pull price fields out of a page. The chain
// uses the first recognizer that matches; later ones are not tried.
type priceRecognizer func(page []byte) (priceInfo, bool)

// Trial order: embedded JSON first, raw-HTML regex as the fallback.
var priceRecognizers = []priceRecognizer{
	recognizeEmbeddedJSON,
	recognizeCurrencyFigure,
}

func recognizePrice(page []byte) priceInfo {
	for _, recognize := range priceRecognizers {
		if info, ok := recognize(page); ok {
			return info
		}
	}
	return priceInfo{}
}

// The source has shipped quote JSON as a bare API body, assigned to a
// handful of script variables, and inside id-tagged script tags. All
// three shapes are tried in that order.
var (
	scriptVarRe = regexp.MustCompile(`(?s)(?:var|let|const|window\.)\s*(?:stockData|companyData|quoteData|__INITIAL_STATE__)\s*=\s*(\{.*?\})\s*[;<]`)
	scriptTagRe = regexp.MustCompile(`(?s)<script[^>]+id=["'](?:company-data|stock-data|quote-data)["'][^>]*>(.*?)</script>`)
)

func recognizeEmbeddedJSON(page []byte) (priceInfo, bool) {
	if gjson.ValidBytes(page) {
		if info, ok := fieldsFromJSON(gjson.ParseBytes(page)); ok {
			return info, true
		}
	}

	for _, re := range []*regexp.Regexp{scriptTagRe, scriptVarRe} {
		for _, match := range re.FindAllSubmatch(page, -1) {
			blob := strings.TrimSpace(string(match[1]))
			if !gjson.Valid(blob) {
				continue
			}
			if info, ok := fieldsFromJSON(gjson.Parse(blob)); ok {
				return info, true
			}
		}
	}

	return priceInfo{}, false
}

// Field name sets tried per value. The source has renamed these across
// page versions; order reflects newest first.
var (
	priceFields         = []string{"current_price", "currentPrice", "price", "last_price", "lastPrice", "ltp", "quote.price", "data.current_price"}
	previousCloseFields = []string{"previous_close", "previousClose", "prev_close", "prevClose", "quote.previous_close", "data.previous_close"}
	changePercentFields = []string{"change_percent", "changePercent", "percent_change", "percentChange", "p_change", "pChange"}
	volumeFields        = []string{"volume", "total_volume", "totalVolume", "traded_volume", "quote.volume"}
	marketCapFields     = []string{"market_cap", "marketCap", "market_capitalization"}
	sharesFields        = []string{"shares_outstanding", "sharesOutstanding", "number_of_shares", "numberOfShares"}
)

// fieldsFromJSON resolves each price field independently from whichever
// of its known names is present. The recognizer counts as matched only
// when a price was found, directly or via market cap over shares.
func fieldsFromJSON(doc gjson.Result) (priceInfo, bool) {
	var info priceInfo

	if v, ok := numberField(doc, priceFields); ok {
		info.price, info.hasPrice = v, true
	} else if mc, ok := numberField(doc, marketCapFields); ok {
		if sh, ok := numberField(doc, sharesFields); ok && sh > 0 {
			info.price, info.hasPrice = mc/sh, true
		}
	}

	if v, ok := numberField(doc, previousCloseFields); ok {
		info.previousClose, info.hasPreviousClose = v, true
	}
	if v, ok := numberField(doc, changePercentFields); ok {
		info.changePercent, info.hasChangePercent = v, true
	}
	if v, ok := numberField(doc, volumeFields); ok {
		info.volume, info.hasVolume = int64(v), true
	}

	return info, info.hasPrice
}

func numberField(doc gjson.Result, paths []string) (float64, bool) {
	for _, path := range paths {
		value := doc.Get(path)
		if !value.Exists() {
			continue
		}
		switch value.Type {
		case gjson.Number:
			return value.Float(), true
		case gjson.String:
			if v, ok := cleanNumber(value.String()); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// Regex fallback: the first figure next to a currency mark (₹ or Rs.),
// else one anchored to a Current/Last/Market Price label.
var (
	currencyFigureRe = regexp.MustCompile(`(?:₹|\bRs\.?)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	labeledPriceRe   = regexp.MustCompile(`(?i)(?:current|last|market)\s+price[^0-9₹%]{0,40}(?:₹|Rs\.?)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
)

func recognizeCurrencyFigure(page []byte) (priceInfo, bool) {
	text := string(page)
	for _, re := range []*regexp.Regexp{currencyFigureRe, labeledPriceRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, ok := cleanNumber(m[1]); ok {
				return priceInfo{price: v, hasPrice: true}, true
			}
		}
	}
	return priceInfo{}, false
}

// cleanNumber parses a display number, tolerating thousand separators
// and stray currency or percent marks.
func cleanNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// collapseWhitespace trims and squashes runs of whitespace, including
// the newlines goquery leaves behind when flattening nested markup.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
