// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/captaleads/funnelcast/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// CeilDiv divides n by divisor rounding up. Negative or zero n yields 0;
// divisor must be positive.
func CeilDiv(n, divisor int) int {
	if n <= 0 {
		return 0
	}
	return (n + divisor - 1) / divisor
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}
