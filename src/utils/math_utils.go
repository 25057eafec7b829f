package utils

import "math"

// MinInt returns the smaller of two integers.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RoundFloat rounds a float64 to a specified number of decimal places.
// Keeps accumulated float noise out of aggregated quantities and PnL.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
