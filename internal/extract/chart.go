package extract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ternarybob/pretium/internal/models"
	"github.com/ternarybob/pretium/internal/transport"
)

// ErrChartIDNotFound means no known pattern located the numeric
// company id in the page. There is no degraded chart, so unlike quote
// extraction this surfaces to the caller.
var ErrChartIDNotFound = errors.New("no numeric company id found in page")

// chartDays is the fixed history window requested from the series
// endpoint.
const chartDays = 365

// The numeric id has lived in data attributes, API URLs, and inline
// script variables across page versions. Patterns are tried in order.
var numericIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`data-warehouse-id=["'](\d+)["']`),
	regexp.MustCompile(`data-company-id=["'](\d+)["']`),
	regexp.MustCompile(`/api/company/(\d+)/`),
	regexp.MustCompile(`(?:warehouse_id|warehouseId|company_id|companyId)["']?\s*[:=]\s*["']?(\d+)`),
}

// findNumericID locates the source-internal numeric company id in a
// company page. The same id addresses the chart and quick-ratios
// endpoints.
func findNumericID(page []byte) (string, bool) {
	for _, re := range numericIDPatterns {
		if m := re.FindSubmatch(page); m != nil {
			return string(m[1]), true
		}
	}
	return "", false
}

// Chart locates the numeric company id in a company page and fetches
// the 365-day price series for it, ascending by date.
func (e *Extractor) Chart(ctx context.Context, symbol string, page []byte) (models.ChartSeries, error) {
	id, ok := findNumericID(page)
	if !ok {
		return nil, fmt.Errorf("chart for %s: %w", symbol, ErrChartIDNotFound)
	}

	chartURL := fmt.Sprintf("%s/api/company/%s/chart/?q=Price-DMA50-DMA200-Volume&days=%d", e.baseURL, id, chartDays)
	resp, err := e.client.Get(ctx, chartURL, transport.ForOperation("chart"))
	if err != nil {
		return nil, fmt.Errorf("chart for %s: %w", symbol, err)
	}

	parsed, jsonOK := resp.JSON()
	if !jsonOK {
		return nil, fmt.Errorf("chart for %s: series endpoint returned non-JSON body", symbol)
	}

	series := parsePricePoints(parsed)
	if len(series) == 0 {
		return nil, fmt.Errorf("chart for %s: no price points in series response", symbol)
	}

	series.SortAscending()

	if e.logger != nil {
		e.logger.Debug().
			Str("symbol", symbol).
			Str("company_id", id).
			Int("points", len(series)).
			Msg("Chart series fetched")
	}

	return series, nil
}

// parsePricePoints pulls the price dataset out of whichever response
// shape the endpoint served and converts its points.
func parsePricePoints(parsed gjson.Result) models.ChartSeries {
	values := priceDataset(parsed)

	var series models.ChartSeries
	values.ForEach(func(_, point gjson.Result) bool {
		if date, price, ok := chartPoint(point); ok {
			series = append(series, models.ChartPoint{Date: date, Price: price})
		}
		return true
	})

	return series
}

// priceDataset prefers the dataset whose metric is "Price", falls back
// to the first dataset with values, then to bare-array shapes.
func priceDataset(parsed gjson.Result) gjson.Result {
	if datasets := parsed.Get("datasets"); datasets.IsArray() {
		var first gjson.Result
		var price gjson.Result
		datasets.ForEach(func(_, ds gjson.Result) bool {
			values := ds.Get("values")
			if !values.IsArray() {
				return true
			}
			if strings.EqualFold(ds.Get("metric").String(), "Price") {
				price = values
				return false
			}
			if !first.Exists() {
				first = values
			}
			return true
		})
		if price.Exists() {
			return price
		}
		return first
	}

	for _, key := range []string{"chart", "points", "data"} {
		if arr := parsed.Get(key); arr.IsArray() {
			return arr
		}
	}
	if parsed.IsArray() {
		return parsed
	}
	return gjson.Result{}
}

// chartPoint reads one point as either a [date, value] pair or a
// {date, value} object. Values arrive as strings as often as numbers.
func chartPoint(point gjson.Result) (string, float64, bool) {
	if point.IsArray() {
		pair := point.Array()
		if len(pair) < 2 {
			return "", 0, false
		}
		date := strings.TrimSpace(pair[0].String())
		price, ok := cleanNumber(pair[1].String())
		if date == "" || !ok {
			return "", 0, false
		}
		return date, price, true
	}

	date := strings.TrimSpace(point.Get("date").String())
	value := point.Get("value")
	if !value.Exists() {
		value = point.Get("price")
	}
	price, ok := cleanNumber(value.String())
	if date == "" || !ok {
		return "", 0, false
	}
	return date, price, true
}
