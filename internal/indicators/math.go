package indicators

import "math"

// stddev calculates the population standard deviation of a window
// around a known mean.
func stddev(window []float64, mean float64) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, v := range window {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(window)))
}
