package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormattedAmount is a raw token amount together with its decimal-adjusted value.
type FormattedAmount struct {
	Amount    uint64  `json:"amount"`
	Formatted float64 `json:"formatted"`
}

// NewFormattedAmount builds a FormattedAmount with Formatted = raw / 10^decimals.
func NewFormattedAmount(raw uint64, decimals uint8) FormattedAmount {
	value := decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
	return FormattedAmount{
		Amount:    raw,
		Formatted: value.InexactFloat64(),
	}
}

// IsZero reports whether the decimal-adjusted value is exactly zero.
func (a FormattedAmount) IsZero() bool {
	return a.Formatted == 0.0
}
