package service

import (
	"context"
	"fmt"

	"wallet_history/internal/entity"
	"wallet_history/internal/port"

	"go.uber.org/zap"
)

// historicalPriceFeedImpl implements port.HistoricalPriceSource with the market chart feed, which
// is keyed by its own coin ids rather than mints.
type historicalPriceFeedImpl struct {
	client   port.MarketChartClient
	metadata port.TokenMetadata
	logger   *zap.Logger
}

// NewHistoricalPriceFeed creates a new instance of historicalPriceFeedImpl.
func NewHistoricalPriceFeed(client port.MarketChartClient, metadata port.TokenMetadata, logger *zap.Logger) port.HistoricalPriceSource {
	return &historicalPriceFeedImpl{
		client:   client,
		metadata: metadata,
		logger:   logger.Named("HistoricalPriceFeed"),
	}
}

// PriceSeries implements the port.HistoricalPriceSource interface.
func (f *historicalPriceFeedImpl) PriceSeries(ctx context.Context, mint string, from, to int64) ([]entity.PricePoint, error) {
	coinID := f.coinID(mint)
	if coinID == "" {
		return nil, fmt.Errorf("no market chart id for mint %s: %w", mint, entity.ErrNotFound)
	}

	points, err := f.client.GetMarketChartRange(ctx, coinID, from, to)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Fetched price series", zap.String("mint", mint), zap.String("coinID", coinID), zap.Int("points", len(points)))
	return points, nil
}

func (f *historicalPriceFeedImpl) coinID(mint string) string {
	if info, ok := f.metadata.Token(mint); ok && info.CoingeckoID != "" {
		return info.CoingeckoID
	}
	if mint == entity.NativeMint {
		return entity.NativeCoingeckoID
	}
	return ""
}
