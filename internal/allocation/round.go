package allocation

import "github.com/shopspring/decimal"

// Round2 rounds v to two decimal places, half away from zero.
// The value goes through its shortest decimal representation first, so 2.675 rounds to
// 2.68 rather than to the 2.67 that binary float arithmetic would give.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
