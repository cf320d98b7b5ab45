package indicators

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func risingPrices(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	return prices
}

func TestSMAKnownValues(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{2, 3, 4}

	if len(got) != len(want) {
		t.Fatalf("SMA length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("SMA[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEMASeededBySMA(t *testing.T) {
	// Seed is the SMA of the first window; multiplier 2/(period+1).
	got := EMA([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{2, 3, 4} // k=0.5: 2, 4*.5+2*.5, 5*.5+3*.5

	if len(got) != len(want) {
		t.Fatalf("EMA length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("EMA[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMovingAverageTrimmedLength(t *testing.T) {
	// Every moving-average family series is len(input)-(period-1) long
	// for any input at least period wide.
	tests := []struct {
		n      int
		period int
	}{
		{5, 5},
		{10, 3},
		{200, 200},
		{365, 20},
		{365, 50},
		{365, 200},
		{1000, 12},
	}

	for _, tt := range tests {
		prices := risingPrices(tt.n)
		wantLen := tt.n - (tt.period - 1)

		if got := len(SMA(prices, tt.period)); got != wantLen {
			t.Errorf("len(SMA(%d,%d)) = %d, want %d", tt.n, tt.period, got, wantLen)
		}
		if got := len(EMA(prices, tt.period)); got != wantLen {
			t.Errorf("len(EMA(%d,%d)) = %d, want %d", tt.n, tt.period, got, wantLen)
		}
		bands := Bollinger(prices, tt.period, 2)
		if got := len(bands.Middle); got != wantLen {
			t.Errorf("len(Bollinger(%d,%d).Middle) = %d, want %d", tt.n, tt.period, got, wantLen)
		}
	}
}

func TestTooShortInputYieldsEmpty(t *testing.T) {
	prices := risingPrices(10)

	if got := SMA(prices, 11); got != nil {
		t.Errorf("SMA over short input = %v, want nil", got)
	}
	if got := EMA(prices, 11); got != nil {
		t.Errorf("EMA over short input = %v, want nil", got)
	}
	if got := RSI(prices, 10); got != nil {
		t.Errorf("RSI needs period+1 prices, got %v, want nil", got)
	}
	if got := Bollinger(prices, 11, 2); got.Middle != nil {
		t.Errorf("Bollinger over short input = %v, want empty", got)
	}
}

func TestRSIExtremes(t *testing.T) {
	rising := RSI(risingPrices(40), 14)
	if len(rising) != 40-14 {
		t.Fatalf("RSI length = %d, want %d", len(rising), 40-14)
	}
	for i, v := range rising {
		if !almostEqual(v, 100) {
			t.Errorf("RSI[%d] = %v for monotonic rise, want 100", i, v)
		}
	}

	falling := make([]float64, 40)
	for i := range falling {
		falling[i] = 200 - float64(i)
	}
	for i, v := range RSI(falling, 14) {
		if !almostEqual(v, 0) {
			t.Errorf("RSI[%d] = %v for monotonic fall, want 0", i, v)
		}
	}
}

func TestRSIBounded(t *testing.T) {
	prices := make([]float64, 120)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)/5) + float64(i%7)
	}

	for i, v := range RSI(prices, 14) {
		if v < 0 || v > 100 {
			t.Errorf("RSI[%d] = %v outside [0,100]", i, v)
		}
	}
}

func TestMACDLengthsAndAlignment(t *testing.T) {
	n := 120
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + 5*math.Sin(float64(i)/8)
	}

	macd := MACD(prices, 12, 26, 9)

	if got, want := len(macd.Line), n-25; got != want {
		t.Errorf("len(Line) = %d, want %d", got, want)
	}
	if got, want := len(macd.Signal), n-33; got != want {
		t.Errorf("len(Signal) = %d, want %d", got, want)
	}
	if got, want := len(macd.Histogram), n-33; got != want {
		t.Errorf("len(Histogram) = %d, want %d", got, want)
	}

	// Line is fast minus slow at the aligned tail index.
	fast := EMA(prices, 12)
	slow := EMA(prices, 26)
	last := len(macd.Line) - 1
	wantLast := fast[len(fast)-1] - slow[len(slow)-1]
	if !almostEqual(macd.Line[last], wantLast) {
		t.Errorf("Line[last] = %v, want %v", macd.Line[last], wantLast)
	}
}

func TestMACDFlatSeriesIsZero(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 250
	}

	macd := MACD(prices, 12, 26, 9)
	for i, v := range macd.Line {
		if !almostEqual(v, 0) {
			t.Errorf("Line[%d] = %v for flat series, want 0", i, v)
		}
	}
	for i, v := range macd.Histogram {
		if !almostEqual(v, 0) {
			t.Errorf("Histogram[%d] = %v for flat series, want 0", i, v)
		}
	}
}

func TestBollingerBands(t *testing.T) {
	got := Bollinger([]float64{1, 2, 3}, 3, 2)

	if len(got.Middle) != 1 {
		t.Fatalf("Middle length = %d, want 1", len(got.Middle))
	}
	sd := math.Sqrt(2.0 / 3.0) // population deviation of {1,2,3}
	if !almostEqual(got.Middle[0], 2) {
		t.Errorf("Middle[0] = %v, want 2", got.Middle[0])
	}
	if !almostEqual(got.Upper[0], 2+2*sd) {
		t.Errorf("Upper[0] = %v, want %v", got.Upper[0], 2+2*sd)
	}
	if !almostEqual(got.Lower[0], 2-2*sd) {
		t.Errorf("Lower[0] = %v, want %v", got.Lower[0], 2-2*sd)
	}
}

func TestBollingerFlatSeriesCollapses(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 80
	}

	bands := Bollinger(prices, 20, 2)
	for i := range bands.Middle {
		if !almostEqual(bands.Upper[i], bands.Middle[i]) || !almostEqual(bands.Lower[i], bands.Middle[i]) {
			t.Errorf("bands[%d] = (%v, %v, %v), want all equal for flat series",
				i, bands.Lower[i], bands.Middle[i], bands.Upper[i])
		}
	}
}

func TestComputeSeriesLengths(t *testing.T) {
	n := 300
	result := Compute(risingPrices(n))

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"SMA20", len(result.SMA20), n - 19},
		{"SMA50", len(result.SMA50), n - 49},
		{"SMA200", len(result.SMA200), n - 199},
		{"EMA12", len(result.EMA12), n - 11},
		{"EMA26", len(result.EMA26), n - 25},
		{"RSI14", len(result.RSI14), n - 14},
		{"MACD line", len(result.MACD.Line), n - 25},
		{"MACD signal", len(result.MACD.Signal), n - 33},
		{"Bollinger", len(result.Bollinger.Middle), n - 19},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("len(%s) = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestComputeShortInput(t *testing.T) {
	result := Compute(risingPrices(100))

	if len(result.SMA200) != 0 {
		t.Errorf("SMA200 over 100 points = %d values, want 0", len(result.SMA200))
	}
	if len(result.SMA50) != 51 {
		t.Errorf("SMA50 over 100 points = %d values, want 51", len(result.SMA50))
	}
}
