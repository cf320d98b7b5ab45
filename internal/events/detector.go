package events

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pretium/internal/indicators"
	"github.com/ternarybob/pretium/internal/metrics"
	"github.com/ternarybob/pretium/internal/models"
)

// minSeriesPoints gates detection: below this the long moving average
// does not exist and nothing here is meaningful.
const minSeriesPoints = 200

// RSI zone boundaries. Only exits from a zone are events.
const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0
)

// Detector derives technical events from a chart series.
type Detector struct {
	logger  arbor.ILogger
	metrics *metrics.Metrics
}

// NewDetector creates a detector.
func NewDetector(logger arbor.ILogger, m *metrics.Metrics) *Detector {
	return &Detector{logger: logger, metrics: m}
}

// Detect computes the standard indicator set over the series and scans
// for crossings and zone exits. Series shorter than 200 points yield
// no events, not an error. The result is ascending by date, majors
// always kept, minors capped.
func (d *Detector) Detect(dates []string, prices []float64) []models.TechnicalEvent {
	if len(dates) != len(prices) || len(prices) < minSeriesPoints {
		return []models.TechnicalEvent{}
	}

	result := indicators.Compute(prices)

	var events []models.TechnicalEvent
	events = append(events, smaCrossEvents(dates, prices, result)...)
	events = append(events, macdCrossEvents(dates, prices, result.MACD)...)
	events = append(events, rsiExitEvents(dates, prices, result.RSI14)...)
	events = append(events, bollingerEvents(dates, prices, result.Bollinger)...)
	events = append(events, priceSMAEvents(dates, prices, result.SMA20)...)

	events = applyRetention(events)

	for _, e := range events {
		d.metrics.RecordEvent(string(e.Type))
	}
	if d.logger != nil {
		d.logger.Debug().
			Int("points", len(prices)).
			Int("events", len(events)).
			Msg("Technical events detected")
	}

	return events
}

// aligned maps a trimmed indicator series back onto global price
// indexes. series[i-offset] belongs to prices[i].
type aligned struct {
	values []float64
	offset int
}

func alignTo(total int, values []float64) aligned {
	return aligned{values: values, offset: total - len(values)}
}

func (a aligned) at(i int) float64 { return a.values[i-a.offset] }

// firstIndex is the lowest global index where every given series has
// both a current and a previous value.
func firstIndex(series ...aligned) int {
	start := 1
	for _, s := range series {
		if s.offset+1 > start {
			start = s.offset + 1
		}
	}
	return start
}

// crossesAbove reports a strict upward crossing: at or below before,
// strictly above now. Touching without crossing is not an event.
func crossesAbove(prevA, prevB, curA, curB float64) bool {
	return prevA <= prevB && curA > curB
}

func crossesBelow(prevA, prevB, curA, curB float64) bool {
	return prevA >= prevB && curA < curB
}

func smaCrossEvents(dates []string, prices []float64, result indicators.Result) []models.TechnicalEvent {
	if len(result.SMA50) == 0 || len(result.SMA200) == 0 {
		return nil
	}
	sma50 := alignTo(len(prices), result.SMA50)
	sma200 := alignTo(len(prices), result.SMA200)

	var events []models.TechnicalEvent
	for i := firstIndex(sma50, sma200); i < len(prices); i++ {
		prev50, cur50 := sma50.at(i-1), sma50.at(i)
		prev200, cur200 := sma200.at(i-1), sma200.at(i)

		switch {
		case crossesAbove(prev50, prev200, cur50, cur200):
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventGoldenCross,
				Name:        "Golden Cross",
				Description: fmt.Sprintf("SMA50 %.2f crossed above SMA200 %.2f", cur50, cur200),
				Signal:      models.Bullish(),
				Price:       prices[i],
			})
		case crossesBelow(prev50, prev200, cur50, cur200):
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventDeathCross,
				Name:        "Death Cross",
				Description: fmt.Sprintf("SMA50 %.2f crossed below SMA200 %.2f", cur50, cur200),
				Signal:      models.Bearish(),
				Price:       prices[i],
			})
		}
	}
	return events
}

func macdCrossEvents(dates []string, prices []float64, macd indicators.MACDResult) []models.TechnicalEvent {
	if len(macd.Line) == 0 || len(macd.Signal) == 0 {
		return nil
	}
	line := alignTo(len(prices), macd.Line)
	signal := alignTo(len(prices), macd.Signal)

	var events []models.TechnicalEvent
	for i := firstIndex(line, signal); i < len(prices); i++ {
		prevLine, curLine := line.at(i-1), line.at(i)
		prevSig, curSig := signal.at(i-1), signal.at(i)

		switch {
		case crossesAbove(prevLine, prevSig, curLine, curSig):
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventMACDBullish,
				Name:        "MACD Bullish Crossover",
				Description: "MACD line crossed above its signal line",
				Signal:      models.Bullish(),
				Price:       prices[i],
			})
		case crossesBelow(prevLine, prevSig, curLine, curSig):
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventMACDBearish,
				Name:        "MACD Bearish Crossover",
				Description: "MACD line crossed below its signal line",
				Signal:      models.Bearish(),
				Price:       prices[i],
			})
		}
	}
	return events
}

func rsiExitEvents(dates []string, prices []float64, rsi14 []float64) []models.TechnicalEvent {
	if len(rsi14) == 0 {
		return nil
	}
	rsi := alignTo(len(prices), rsi14)

	var events []models.TechnicalEvent
	for i := firstIndex(rsi); i < len(prices); i++ {
		prev, cur := rsi.at(i-1), rsi.at(i)

		switch {
		case prev >= rsiOverbought && cur < rsiOverbought:
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventRSIOverboughtExit,
				Name:        "RSI Overbought Exit",
				Description: fmt.Sprintf("RSI left overbought at %.1f", cur),
				Signal:      models.Bearish(),
				Price:       prices[i],
			})
		case prev <= rsiOversold && cur > rsiOversold:
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventRSIOversoldExit,
				Name:        "RSI Oversold Exit",
				Description: fmt.Sprintf("RSI left oversold at %.1f", cur),
				Signal:      models.Bullish(),
				Price:       prices[i],
			})
		}
	}
	return events
}

func bollingerEvents(dates []string, prices []float64, bands indicators.BollingerResult) []models.TechnicalEvent {
	if len(bands.Upper) == 0 {
		return nil
	}
	upper := alignTo(len(prices), bands.Upper)
	lower := alignTo(len(prices), bands.Lower)

	var events []models.TechnicalEvent
	for i := firstIndex(upper, lower); i < len(prices); i++ {
		switch {
		case crossesAbove(prices[i-1], upper.at(i-1), prices[i], upper.at(i)):
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventBollingerBreakoutUp,
				Name:        "Bollinger Breakout",
				Description: "Price broke above the upper band",
				Signal:      models.Bullish(),
				Price:       prices[i],
			})
		case crossesBelow(prices[i-1], lower.at(i-1), prices[i], lower.at(i)):
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventBollingerBreakoutDown,
				Name:        "Bollinger Breakdown",
				Description: "Price broke below the lower band",
				Signal:      models.Bearish(),
				Price:       prices[i],
			})
		}
	}
	return events
}

func priceSMAEvents(dates []string, prices []float64, sma20Series []float64) []models.TechnicalEvent {
	if len(sma20Series) == 0 {
		return nil
	}
	sma20 := alignTo(len(prices), sma20Series)

	var events []models.TechnicalEvent
	for i := firstIndex(sma20); i < len(prices); i++ {
		switch {
		case crossesAbove(prices[i-1], sma20.at(i-1), prices[i], sma20.at(i)):
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventPriceCrossSMA20Up,
				Name:        "Price Above SMA20",
				Description: "Price crossed above the 20-day moving average",
				Signal:      models.Bullish(),
				Price:       prices[i],
			})
		case crossesBelow(prices[i-1], sma20.at(i-1), prices[i], sma20.at(i)):
			events = append(events, models.TechnicalEvent{
				Date:        dates[i],
				Type:        models.EventPriceCrossSMA20Down,
				Name:        "Price Below SMA20",
				Description: "Price crossed below the 20-day moving average",
				Signal:      models.Bearish(),
				Price:       prices[i],
			})
		}
	}
	return events
}
