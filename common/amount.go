package common

import (
	"math"
)

// TokensToUILamports converts a human amount to the raw integer amount
// carried on chain, given the mint's decimal count.
// Example:
// - TokensToUILamports(1.234, 4) = 12340
func TokensToUILamports(amount float64, decimals uint8) uint64 {
	return uint64(math.Round(amount * math.Pow10(int(decimals))))
}

// UILamportsToTokens is the inverse of TokensToUILamports.
func UILamportsToTokens(amount uint64, decimals uint8) float64 {
	return float64(amount) / math.Pow10(int(decimals))
}

// SaturatingSub returns a-b, clamped at zero.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
