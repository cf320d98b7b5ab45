package news

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pretium/internal/models"
	"github.com/ternarybob/pretium/internal/transport"
)

const (
	// DefaultBaseURL is the public news search host.
	DefaultBaseURL = "https://news.google.com"

	// DefaultMaxItems caps how many headlines a fetch returns.
	DefaultMaxItems = 10

	defaultTimeout = 15 * time.Second
)

// Options configures a Provider.
type Options struct {
	// BaseURL is the news search host. Zero means DefaultBaseURL.
	BaseURL string

	// MaxItems caps returned headlines. Zero means DefaultMaxItems.
	MaxItems int

	// Timeout bounds one search fetch. Zero means 15s.
	Timeout time.Duration

	UserAgent string
}

// Provider scrapes headlines for a symbol from a public news search
// page. It is independent of the primary market data source and runs
// on its own HTTP client: headline fetches are best-effort and must
// not consume the rate budget of the quote transport.
type Provider struct {
	client   *resty.Client
	baseURL  string
	maxItems int
	logger   arbor.ILogger
}

// NewProvider creates a headline provider.
func NewProvider(opts Options, logger arbor.ILogger) *Provider {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = transport.DefaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgent)

	return &Provider{
		client:   client,
		baseURL:  baseURL,
		maxItems: maxItems,
		logger:   logger,
	}
}

// Fetch returns recent headlines for a company. The query prefers the
// resolved company name over the raw ticker; tickers alone surface too
// much unrelated noise.
func (p *Provider) Fetch(ctx context.Context, symbol, companyName string) ([]models.NewsItem, error) {
	query := strings.TrimSpace(companyName)
	if query == "" {
		query = strings.TrimSpace(symbol)
	}
	if query == "" {
		return []models.NewsItem{}, nil
	}

	resp, err := p.client.R().SetContext(ctx).Get(p.searchURL(query + " stock"))
	if err != nil {
		return nil, fmt.Errorf("news fetch for %q: %w", query, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("news fetch for %q: status %d", query, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("news fetch for %q: parse: %w", query, err)
	}

	items := p.parseArticles(doc)
	if p.logger != nil {
		p.logger.Debug().
			Str("symbol", symbol).
			Int("items", len(items)).
			Msg("Headlines fetched")
	}
	return items, nil
}

func (p *Provider) searchURL(query string) string {
	return fmt.Sprintf("%s/search?q=%s&hl=en-IN&gl=IN&ceid=IN:en", p.baseURL, url.QueryEscape(query))
}

func (p *Provider) parseArticles(doc *goquery.Document) []models.NewsItem {
	items := []models.NewsItem{}

	doc.Find("article").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find("h3").First().Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").First().Text())
		}
		if title == "" {
			title = strings.TrimSpace(s.Find("a.JtKRv").First().Text())
		}
		if title == "" {
			return true
		}

		href, ok := s.Find("a[href]").First().Attr("href")
		if !ok {
			return true
		}

		source := strings.TrimSpace(s.Find("div[data-n-tid]").First().Text())

		publishedAt := time.Now().Add(-time.Hour)
		timeEl := s.Find("time").First()
		if dt, ok := timeEl.Attr("datetime"); ok {
			if t, err := time.Parse(time.RFC3339, dt); err == nil {
				publishedAt = t
			}
		} else if text := strings.TrimSpace(timeEl.Text()); text != "" {
			publishedAt = parseRelativeTime(text, time.Now())
		}

		items = append(items, models.NewsItem{
			Title:       title,
			URL:         p.resolveLink(href),
			Source:      source,
			PublishedAt: publishedAt,
		})
		return len(items) < p.maxItems
	})

	return items
}

// resolveLink unwraps the search page's redirect hrefs. Relative links
// point back at the news host; "url=" wrappers carry the target.
func (p *Provider) resolveLink(href string) string {
	if i := strings.Index(href, "url="); i >= 0 {
		if target, err := url.QueryUnescape(href[i+len("url="):]); err == nil && target != "" {
			return target
		}
	}
	if strings.HasPrefix(href, "./") {
		return p.baseURL + href[1:]
	}
	if strings.HasPrefix(href, "/") {
		return p.baseURL + href
	}
	return href
}

var relativeTimeRe = regexp.MustCompile(`(?i)^(\d+)\s*(minute|hour|day|week|month)s?\s+ago$`)

// parseRelativeTime converts the page's relative timestamps ("2 hours
// ago") into absolute times. Unparseable text is treated as an hour
// old rather than dropped; headline ordering matters more than
// precision here.
func parseRelativeTime(text string, now time.Time) time.Time {
	text = strings.ToLower(strings.TrimSpace(text))

	switch text {
	case "just now", "now":
		return now
	case "yesterday":
		return now.Add(-24 * time.Hour)
	}

	if m := relativeTimeRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 0 {
			return now.Add(-time.Hour)
		}
		switch m[2] {
		case "minute":
			return now.Add(-time.Duration(n) * time.Minute)
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour)
		case "day":
			return now.Add(-time.Duration(n) * 24 * time.Hour)
		case "week":
			return now.Add(-time.Duration(n) * 7 * 24 * time.Hour)
		case "month":
			return now.Add(-time.Duration(n) * 30 * 24 * time.Hour)
		}
	}

	return now.Add(-time.Hour)
}
