package extract

import (
	"testing"
)

func TestRecognizeEmbeddedJSONBareBody(t *testing.T) {
	body := []byte(`{"current_price": 2856.15, "previous_close": 2840.00, "volume": 4521000}`)

	info := recognizePrice(body)
	if !info.hasPrice || info.price != 2856.15 {
		t.Errorf("price = %v (found=%v), want 2856.15", info.price, info.hasPrice)
	}
	if !info.hasPreviousClose || info.previousClose != 2840.00 {
		t.Errorf("previousClose = %v (found=%v), want 2840.00", info.previousClose, info.hasPreviousClose)
	}
	if !info.hasVolume || info.volume != 4521000 {
		t.Errorf("volume = %v (found=%v), want 4521000", info.volume, info.hasVolume)
	}
}

func TestRecognizeEmbeddedJSONScriptTag(t *testing.T) {
	page := []byte(`<html><head>
		<script id="company-data" type="application/json">{"price": 1543.2, "prev_close": 1550.0}</script>
	</head><body></body></html>`)

	info := recognizePrice(page)
	if !info.hasPrice || info.price != 1543.2 {
		t.Errorf("price = %v (found=%v), want 1543.2", info.price, info.hasPrice)
	}
	if !info.hasPreviousClose || info.previousClose != 1550.0 {
		t.Errorf("previousClose = %v (found=%v), want 1550.0", info.previousClose, info.hasPreviousClose)
	}
}

func TestRecognizeEmbeddedJSONScriptVariable(t *testing.T) {
	page := []byte(`<html><body>
		<script>
		var stockData = {"currentPrice": 412.55, "changePercent": -1.2};
		</script>
	</body></html>`)

	info := recognizePrice(page)
	if !info.hasPrice || info.price != 412.55 {
		t.Errorf("price = %v (found=%v), want 412.55", info.price, info.hasPrice)
	}
	if !info.hasChangePercent || info.changePercent != -1.2 {
		t.Errorf("changePercent = %v (found=%v), want -1.2", info.changePercent, info.hasChangePercent)
	}
}

func TestRecognizePriceComputedFromMarketCap(t *testing.T) {
	body := []byte(`{"market_cap": 19325000000, "shares_outstanding": 6765000}`)

	info := recognizePrice(body)
	if !info.hasPrice {
		t.Fatal("price not found, want market-cap derived price")
	}
	want := 19325000000.0 / 6765000.0
	if info.price != want {
		t.Errorf("price = %v, want %v", info.price, want)
	}
}

func TestRecognizeCurrencyFigureFallback(t *testing.T) {
	page := []byte(`<html><body><div class="price-block"><span>₹ 2,856.15</span></div></body></html>`)

	info := recognizePrice(page)
	if !info.hasPrice || info.price != 2856.15 {
		t.Errorf("price = %v (found=%v), want 2856.15 from currency figure", info.price, info.hasPrice)
	}
}

func TestRecognizeCurrencyFigureRsPrefix(t *testing.T) {
	page := []byte(`<html><body><span>Rs. 1,120.50</span></body></html>`)

	info := recognizePrice(page)
	if !info.hasPrice || info.price != 1120.50 {
		t.Errorf("price = %v (found=%v), want 1120.50 from Rs. figure", info.price, info.hasPrice)
	}
}

func TestRecognizeLabeledPriceFallback(t *testing.T) {
	page := []byte(`<html><body><p>Current Price: 987.40</p></body></html>`)

	info := recognizePrice(page)
	if !info.hasPrice || info.price != 987.40 {
		t.Errorf("price = %v (found=%v), want 987.40 from labeled anchor", info.price, info.hasPrice)
	}
}

func TestRecognizerChainPrefersJSON(t *testing.T) {
	// Page carries both an embedded JSON price and a rupee figure; the
	// JSON path wins and the regex is never consulted.
	page := []byte(`<html><body>
		<script id="company-data" type="application/json">{"current_price": 100.0}</script>
		<span>₹ 999.99</span>
	</body></html>`)

	info := recognizePrice(page)
	if info.price != 100.0 {
		t.Errorf("price = %v, want 100.0 from JSON path", info.price)
	}
}

func TestRecognizePriceNothingMatches(t *testing.T) {
	page := []byte(`<html><body><p>No prices here at all.</p></body></html>`)

	info := recognizePrice(page)
	if info.hasPrice {
		t.Errorf("hasPrice = true for empty page, price = %v", info.price)
	}
}

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"2,856.15", 2856.15, true},
		{"₹ 1,234", 1234, true},
		{"52.3 %", 52.3, true},
		{"-1.25", -1.25, true},
		{"1,23,456.78", 123456.78, true}, // Indian digit grouping
		{"", 0, false},
		{"N/A", 0, false},
		{"--", 0, false},
	}

	for _, tt := range tests {
		got, ok := cleanNumber(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("cleanNumber(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
