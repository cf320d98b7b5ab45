package extract

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/pretium/internal/models"
	"github.com/ternarybob/pretium/internal/transport"
)

const companyPage = `<html>
<head>
	<meta name="description" content="Reliance Industries is India's largest private company. Promoter holding is 50.3% and the stock's dividend yield is 0.35%.">
	<script id="company-data" type="application/json">{"current_price": 2856.15, "previous_close": 2840.00, "volume": 4521000}</script>
</head>
<body data-warehouse-id="2726">
	<ul id="top-ratios">
		<li><span class="name">Market Cap</span><span class="value">₹ 19,32,500 Cr.</span></li>
		<li><span class="name">Stock P/E</span><span class="value">27.8</span></li>
		<li><span class="name">ROCE</span><span class="value">9.61 %</span></li>
		<li><span>High / Low</span><span>₹ 3,024 / 2,221</span></li>
		<li><span class="name">Empty Value</span><span></span></li>
		<li><span>only one span</span></li>
	</ul>
</body>
</html>`

type fixedSession struct {
	cookie string
}

func (s *fixedSession) Cookie(ctx context.Context) string { return s.cookie }
func (s *fixedSession) Invalidate()                       {}

func fastTransport() *transport.Client {
	return transport.New(
		transport.WithRateLimit(1000),
		transport.WithRetryPolicy(transport.RetryPolicy{
			MaxAttempts:       1,
			Delay:             time.Millisecond,
			PerAttemptTimeout: time.Second,
		}),
	)
}

func TestQuoteFromCompanyPage(t *testing.T) {
	e := New(nil, nil, "", nil)

	quote := e.Quote(context.Background(), "RELIANCE", []byte(companyPage))

	if quote.Price != 2856.15 {
		t.Errorf("Price = %v, want 2856.15", quote.Price)
	}
	if quote.PreviousClose != 2840.00 {
		t.Errorf("PreviousClose = %v, want 2840.00", quote.PreviousClose)
	}
	if quote.Volume != 4521000 {
		t.Errorf("Volume = %v, want 4521000", quote.Volume)
	}

	// Not supplied by the page, so derived from previous close.
	wantChange := (2856.15 - 2840.00) / 2840.00 * 100
	if math.Abs(quote.ChangePercent-wantChange) > 1e-9 {
		t.Errorf("ChangePercent = %v, want %v", quote.ChangePercent, wantChange)
	}
}

func TestQuoteFundamentalsFromListItems(t *testing.T) {
	e := New(nil, nil, "", nil)

	quote := e.Quote(context.Background(), "RELIANCE", []byte(companyPage))

	tests := []struct {
		key  string
		want string
	}{
		{models.FundamentalMarketCap, "₹ 19,32,500 Cr."},
		{models.FundamentalStockPE, "27.8"},
		{models.FundamentalROCE, "9.61 %"},
		{models.FundamentalHighLow, "₹ 3,024 / 2,221"},
	}
	for _, tt := range tests {
		if got := quote.Fundamental(tt.key); got != tt.want {
			t.Errorf("Fundamental(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}

	if _, exists := quote.Fundamentals["Empty Value"]; exists {
		t.Error("empty-valued list item should not produce a fundamental")
	}
}

func TestQuoteMetaDescriptionFillsMissingOnly(t *testing.T) {
	e := New(nil, nil, "", nil)

	quote := e.Quote(context.Background(), "RELIANCE", []byte(companyPage))

	// Promoter holding only exists in the meta description.
	if got := quote.Fundamental(models.FundamentalPromoterHolding); got != "50.3%" {
		t.Errorf("Fundamental(promoter holding) = %q, want 50.3%%", got)
	}
	// ROCE exists in the ratio list; the meta description's phrasing
	// must not replace it.
	if got := quote.Fundamental(models.FundamentalROCE); got != "9.61 %" {
		t.Errorf("Fundamental(ROCE) = %q, want list value 9.61 %%", got)
	}
}

func TestQuoteMalformedPageDegradesToZeroValues(t *testing.T) {
	e := New(nil, nil, "", nil)

	quote := e.Quote(context.Background(), "JUNK", []byte(`<<<not really html>>>`))

	if quote.Symbol != "JUNK" {
		t.Errorf("Symbol = %q, want JUNK", quote.Symbol)
	}
	if quote.Price != 0 || quote.ChangePercent != 0 || quote.Volume != 0 {
		t.Errorf("expected zero-valued quote, got price=%v change=%v volume=%v",
			quote.Price, quote.ChangePercent, quote.Volume)
	}
	if len(quote.Fundamentals) != 0 {
		t.Errorf("Fundamentals = %v, want empty", quote.Fundamentals)
	}
	if quote.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestQuickRatiosFillRequiresSession(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Debt to equity": "0.44", "ROCE": "99.9 %"}`))
	}))
	defer server.Close()

	e := New(fastTransport(), &fixedSession{cookie: ""}, server.URL, nil)
	quote := e.Quote(context.Background(), "RELIANCE", []byte(companyPage))

	if got := atomic.LoadInt32(&hits); got != 0 {
		t.Errorf("quick ratios hits = %d, want 0 without a session cookie", got)
	}
	if _, exists := quote.Fundamentals[models.FundamentalDebtToEquity]; exists {
		t.Error("Debt to equity filled without an authenticated session")
	}
}

func TestQuickRatiosFillAddsWithoutOverwriting(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Debt to equity": "0.44", "ROCE": "99.9 %"}`))
	}))
	defer server.Close()

	e := New(fastTransport(), &fixedSession{cookie: "sessionid=abc"}, server.URL, nil)
	quote := e.Quote(context.Background(), "RELIANCE", []byte(companyPage))

	if gotPath != "/api/company/2726/quick_ratios/" {
		t.Errorf("quick ratios path = %q, want /api/company/2726/quick_ratios/", gotPath)
	}
	if got := quote.Fundamental(models.FundamentalDebtToEquity); got != "0.44" {
		t.Errorf("Fundamental(debt to equity) = %q, want 0.44", got)
	}
	// ROCE came from the page scan and must survive.
	if got := quote.Fundamental(models.FundamentalROCE); got != "9.61 %" {
		t.Errorf("Fundamental(ROCE) = %q, want scanned 9.61 %%", got)
	}
}

func TestQuickRatiosFailureIsSilent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	e := New(fastTransport(), &fixedSession{cookie: "sessionid=abc"}, server.URL, nil)
	quote := e.Quote(context.Background(), "RELIANCE", []byte(companyPage))

	if quote.Price != 2856.15 {
		t.Errorf("Price = %v, want page extraction unaffected by ratios failure", quote.Price)
	}
}
