package service

import (
	"math"

	"wallet_history/internal/entity"
	"wallet_history/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

const tickBase = 1.0001

// TickToSqrtPrice returns sqrt(1.0001^tick).
func TickToSqrtPrice(tick int32) float64 {
	return math.Sqrt(math.Pow(tickBase, float64(tick)))
}

// LiquidityAmounts returns the raw token amounts backing liquidity over [sqrtLower, sqrtUpper] at
// the current square root price sqrtP, before rounding.
func LiquidityAmounts(liquidity, sqrtP, sqrtLower, sqrtUpper float64) (amountA, amountB float64) {
	switch {
	case sqrtP <= sqrtLower:
		amountA = liquidity * (1/sqrtLower - 1/sqrtUpper)
	case sqrtP < sqrtUpper:
		amountA = liquidity * (1/sqrtP - 1/sqrtUpper)
		amountB = liquidity * (sqrtP - sqrtLower)
	default:
		amountB = liquidity * (sqrtUpper - sqrtLower)
	}
	return amountA, amountB
}

// ValuePosition computes the token amounts of position in pool and their USD value. A nil price
// leaves that leg out of the total; with no price at all the total is nil.
func ValuePosition(position *entity.Position, pool *entity.Pool, priceA, priceB *float64) entity.ValuedPosition {
	sqrtP := utils.Q64ToFloat64(pool.SqrtPriceX64)
	sqrtLower := TickToSqrtPrice(position.TickLower)
	sqrtUpper := TickToSqrtPrice(position.TickUpper)
	liquidity := utils.BigIntToFloat64(position.Liquidity)

	rawA, rawB := LiquidityAmounts(liquidity, sqrtP, sqrtLower, sqrtUpper)
	amountA := entity.NewFormattedAmount(roundAmount(rawA), pool.MintDecimalsA)
	amountB := entity.NewFormattedAmount(roundAmount(rawB), pool.MintDecimalsB)

	var total *float64
	switch {
	case priceA != nil && priceB != nil:
		v := amountA.Formatted*(*priceA) + amountB.Formatted*(*priceB)
		total = &v
	case priceA != nil:
		v := amountA.Formatted * *priceA
		total = &v
	case priceB != nil:
		v := amountB.Formatted * *priceB
		total = &v
	}

	return entity.ValuedPosition{
		TokenA:        entity.TokenLeg{Mint: pool.MintA.String(), Amount: amountA, Price: priceA},
		TokenB:        entity.TokenLeg{Mint: pool.MintB.String(), Amount: amountB, Price: priceB},
		TotalValueUSD: total,
	}
}

func roundAmount(v float64) uint64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(math.Round(v))
}

// FormatFeeTier renders a trade fee rate in hundredths of a basis point as a percentage, e.g.
// 2500 -> "0.25%".
func FormatFeeTier(tradeFeeRate uint32) string {
	return decimal.New(int64(tradeFeeRate), -4).String() + "%"
}
