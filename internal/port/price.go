package port

import (
	"context"

	"wallet_history/internal/entity"
)

// HistoricalPriceSource returns a mint's USD price series over [from, to] (unix seconds).
type HistoricalPriceSource interface {
	PriceSeries(ctx context.Context, mint string, from, to int64) ([]entity.PricePoint, error)
}

// LiveQuoteSource returns the current USD price of one whole unit of a mint.
type LiveQuoteSource interface {
	LivePrice(ctx context.Context, mint string) (float64, error)
}

// MarketChartClient is the time-series market data feed, keyed by the feed's own coin id.
type MarketChartClient interface {
	GetMarketChartRange(ctx context.Context, coinID string, from, to int64) ([]entity.PricePoint, error)
}

// QuoteClient is the on-chain swap quote oracle.
type QuoteClient interface {
	// QuotePrice returns how many whole quote-mint units amount (in inputMint's smallest unit) swaps for.
	QuotePrice(ctx context.Context, inputMint string, amount uint64) (float64, error)
}

// TokenMetadata resolves static token metadata.
type TokenMetadata interface {
	Token(mint string) (entity.TokenInfo, bool)
	Decimals(ctx context.Context, mint string) (uint8, error)
}
