package entity

// BalanceChange is the pre/post balance of one mint within one transaction.
type BalanceChange struct {
	Pre  FormattedAmount `json:"pre"`
	Post FormattedAmount `json:"post"`
}

// ParsedTransaction is a transaction reduced to the signer's balance changes.
type ParsedTransaction struct {
	BlockTime          int64                    `json:"blockTime"`
	Signatures         []string                 `json:"signatures"`
	Logs               []string                 `json:"logs"`
	Balances           map[string]BalanceChange `json:"balances"`
	ParsedInstructions []string                 `json:"parsedInstructions"`
}

// ChartState is the cumulative set of balances held at Timestamp.
// A mint missing from Balances has a zero balance.
type ChartState struct {
	Timestamp int64                      `json:"timestamp"`
	Balances  map[string]FormattedAmount `json:"balances"`
}

// PricedAmount is a balance with the USD price used to value it.
type PricedAmount struct {
	Amount FormattedAmount `json:"amount"`
	Price  float64         `json:"price"`
}

// PricedBucket is one point of the valued balance history.
type PricedBucket struct {
	Timestamp int64                   `json:"timestamp"`
	Balances  map[string]PricedAmount `json:"balances"`
	USDValue  float64                 `json:"usdValue"`
}

// ChartPoint is the minimal chart representation.
type ChartPoint struct {
	Timestamp int64   `json:"timestamp"`
	USDValue  float64 `json:"usdValue"`
}

// ToChartPoints drops the per-mint breakdown of buckets.
func ToChartPoints(buckets []PricedBucket) []ChartPoint {
	points := make([]ChartPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, ChartPoint{Timestamp: b.Timestamp, USDValue: b.USDValue})
	}
	return points
}
