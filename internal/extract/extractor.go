package extract

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pretium/internal/models"
	"github.com/ternarybob/pretium/internal/transport"
)

// Extractor recovers structured data from the source's company pages.
// Quote extraction is best-effort and never fails: fields the page
// does not yield stay at their zero values. Chart extraction is the
// opposite: without a located company id and a fetched series there is
// nothing useful to return, so it reports errors.
type Extractor struct {
	client  *transport.Client
	session transport.SessionProvider
	baseURL string
	logger  arbor.ILogger
}

// New creates an extractor. The transport and session are used for the
// secondary calls (quick ratios, chart series); pure page parsing
// works with both set to nil.
func New(client *transport.Client, session transport.SessionProvider, baseURL string, logger arbor.ILogger) *Extractor {
	return &Extractor{
		client:  client,
		session: session,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Quote extracts a quote from a company page. The recognizer chain
// resolves the price block, percent change is derived from previous
// close when the page does not supply it, and fundamentals are filled
// from every pattern the page matches.
func (e *Extractor) Quote(ctx context.Context, symbol string, page []byte) *models.Quote {
	quote := models.NewQuote(symbol)

	info := recognizePrice(page)
	quote.Price = info.price
	quote.PreviousClose = info.previousClose
	quote.Volume = info.volume

	switch {
	case info.hasChangePercent:
		quote.ChangePercent = info.changePercent
	case info.hasPrice && info.hasPreviousClose && info.previousClose != 0:
		quote.ChangePercent = (info.price - info.previousClose) / info.previousClose * 100
	}

	e.fundamentals(ctx, page, quote.Fundamentals)

	if e.logger != nil {
		e.logger.Debug().
			Str("symbol", symbol).
			Float64("price", quote.Price).
			Int("fundamentals", len(quote.Fundamentals)).
			Msg("Quote extracted")
	}

	return quote
}
