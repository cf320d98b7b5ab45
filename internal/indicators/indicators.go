package indicators

// Standard parameter set used across the analysis pipeline.
const (
	SMAShortPeriod  = 20
	SMAMediumPeriod = 50
	SMALongPeriod   = 200
	EMAFastPeriod   = 12
	EMASlowPeriod   = 26
	MACDSignal      = 9
	RSIPeriod       = 14
	BollingerPeriod = 20
	BollingerWidth  = 2.0
)

// Result holds every indicator series for one price array. Each series
// is shorter than the input: a series of length L computed from N
// prices aligns so that series[i] belongs to prices[i+N-L]. Callers
// re-align by that offset.
type Result struct {
	SMA20     []float64
	SMA50     []float64
	SMA200    []float64
	EMA12     []float64
	EMA26     []float64
	RSI14     []float64
	MACD      MACDResult
	Bollinger BollingerResult
}

// MACDResult is the MACD line with its signal line and histogram. The
// signal line is an EMA of the line and therefore starts later.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// BollingerResult is the middle moving average with bands a fixed
// number of standard deviations away. All three are the same length.
type BollingerResult struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Compute runs the full standard indicator set over a price series.
// Pure and deterministic; series the input is too short for come back
// empty rather than erroring.
func Compute(prices []float64) Result {
	return Result{
		SMA20:     SMA(prices, SMAShortPeriod),
		SMA50:     SMA(prices, SMAMediumPeriod),
		SMA200:    SMA(prices, SMALongPeriod),
		EMA12:     EMA(prices, EMAFastPeriod),
		EMA26:     EMA(prices, EMASlowPeriod),
		RSI14:     RSI(prices, RSIPeriod),
		MACD:      MACD(prices, EMAFastPeriod, EMASlowPeriod, MACDSignal),
		Bollinger: Bollinger(prices, BollingerPeriod, BollingerWidth),
	}
}

// SMA computes a simple moving average. The output has
// len(prices)-period+1 values, the first covering prices[0:period].
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}

	out := make([]float64, 0, len(prices)-period+1)
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// EMA computes an exponential moving average seeded with the SMA of
// the first window, multiplier 2/(period+1). Same output length as
// SMA for the same period.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}

	multiplier := 2.0 / float64(period+1)

	var sum float64
	for _, p := range prices[:period] {
		sum += p
	}
	current := sum / float64(period)

	out := make([]float64, 0, len(prices)-period+1)
	out = append(out, current)
	for _, p := range prices[period:] {
		current = (p * multiplier) + (current * (1 - multiplier))
		out = append(out, current)
	}
	return out
}

// RSI computes the Relative Strength Index with Wilder's smoothing,
// seeded by a simple average of the first period's gains and losses.
// Needs period deltas, so the output has len(prices)-period values.
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) <= period {
		return nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, 0, len(prices)-period)
	out = append(out, rsiValue(avgGain, avgLoss))

	p := float64(period)
	for i := period + 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACD computes the fast-minus-slow EMA line, its EMA signal line, and
// their histogram. Histogram values align with the signal line.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) MACDResult {
	fast := EMA(prices, fastPeriod)
	slow := EMA(prices, slowPeriod)
	if len(slow) == 0 || len(fast) < len(slow) {
		return MACDResult{}
	}

	line := make([]float64, len(slow))
	offset := len(fast) - len(slow)
	for i := range slow {
		line[i] = fast[i+offset] - slow[i]
	}

	signal := EMA(line, signalPeriod)
	var histogram []float64
	if len(signal) > 0 {
		histogram = make([]float64, len(signal))
		off := len(line) - len(signal)
		for i := range signal {
			histogram[i] = line[i+off] - signal[i]
		}
	}

	return MACDResult{Line: line, Signal: signal, Histogram: histogram}
}

// Bollinger computes the middle SMA and bands width standard
// deviations away, population deviation over each window.
func Bollinger(prices []float64, period int, width float64) BollingerResult {
	middle := SMA(prices, period)
	if len(middle) == 0 {
		return BollingerResult{}
	}

	upper := make([]float64, len(middle))
	lower := make([]float64, len(middle))
	for i := range middle {
		sd := stddev(prices[i:i+period], middle[i])
		upper[i] = middle[i] + width*sd
		lower[i] = middle[i] - width*sd
	}

	return BollingerResult{Middle: middle, Upper: upper, Lower: lower}
}
