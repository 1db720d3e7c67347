package token

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"opencure/internal/domain"
)

// DefaultDecimals matches USDC.
const DefaultDecimals = 6

// ParseUnits converts a human amount such as "12.5" into base units. Values
// with more fractional digits than decimals are rejected rather than rounded.
func ParseUnits(s string, decimals int32) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, domain.ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", domain.ErrInvalidAmount, s, decimals)
	}
	if scaled.GreaterThan(fromUint64(math.MaxUint64)) {
		return 0, domain.ErrAmountOverflow
	}
	return scaled.BigInt().Uint64(), nil
}

// FormatUnits renders base units as a fixed-point string with decimals
// fractional digits.
func FormatUnits(amount uint64, decimals int32) string {
	return fromUint64(amount).Shift(-decimals).StringFixed(decimals)
}

func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
