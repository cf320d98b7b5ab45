package models

// EventType names a technical signal event.
type EventType string

const (
	EventGoldenCross            EventType = "golden_cross"
	EventDeathCross             EventType = "death_cross"
	EventMACDBullish            EventType = "macd_bullish"
	EventMACDBearish            EventType = "macd_bearish"
	EventRSIOverboughtExit      EventType = "rsi_overbought_exit"
	EventRSIOversoldExit        EventType = "rsi_oversold_exit"
	EventBollingerBreakoutUp    EventType = "bollinger_breakout_up"
	EventBollingerBreakoutDown  EventType = "bollinger_breakout_down"
	EventPriceCrossSMA20Up      EventType = "price_cross_sma20_up"
	EventPriceCrossSMA20Down    EventType = "price_cross_sma20_down"
)

// IsMajor reports whether the event type is a major structural signal.
// Major events are never dropped by the retention cap; everything else is
// short-term noise and subject to truncation.
func (t EventType) IsMajor() bool {
	switch t {
	case EventGoldenCross, EventDeathCross, EventRSIOverboughtExit, EventRSIOversoldExit:
		return true
	}
	return false
}

// Signal carries the polarity of an event. Exactly one side is set.
type Signal struct {
	Bullish bool `json:"bullish"`
	Bearish bool `json:"bearish"`
}

// Bullish returns a bullish signal value.
func Bullish() Signal { return Signal{Bullish: true} }

// Bearish returns a bearish signal value.
func Bearish() Signal { return Signal{Bearish: true} }

// TechnicalEvent is one detected signal on a chart series. Date is always a
// date present in the series the event was derived from, and Price is the
// series value at that date.
type TechnicalEvent struct {
	Date        string    `json:"date"`
	Type        EventType `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Signal      Signal    `json:"signal"`
	Price       float64   `json:"price"`
}
