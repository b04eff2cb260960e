package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"wallet_history/internal/config"
	"wallet_history/internal/entity"
	"wallet_history/internal/port"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// maxQuoteDecimals keeps 10^decimals within uint64.
const maxQuoteDecimals = 19

// tokenPriceServiceImpl implements the port.LiveQuoteSource interface on top of swap quotes.
type tokenPriceServiceImpl struct {
	logger      *zap.Logger
	quotes      port.QuoteClient
	metadata    port.TokenMetadata
	quoteMint   string
	pricesCache *cache.Cache // mint -> price (float64)
}

// NewTokenPriceService creates a new instance of tokenPriceServiceImpl.
func NewTokenPriceService(
	logger *zap.Logger,
	cfg *config.Config,
	quotes port.QuoteClient,
	metadata port.TokenMetadata,
) port.LiveQuoteSource {
	return &tokenPriceServiceImpl{
		logger:    logger.Named("TokenPriceService"),
		quotes:    quotes,
		metadata:  metadata,
		quoteMint: cfg.Jupiter.QuoteMint,
		pricesCache: cache.New(
			time.Duration(cfg.TokenPriceSvc.CacheTTLMinutes)*time.Minute,
			time.Duration(cfg.TokenPriceSvc.CleanupIntervalMinutes)*time.Minute,
		),
	}
}

// LivePrice implements the port.LiveQuoteSource interface. The price is what one whole token
// swaps for in the quote mint, which is pegged to the dollar.
func (s *tokenPriceServiceImpl) LivePrice(ctx context.Context, mint string) (float64, error) {
	if mint == s.quoteMint {
		return 1.0, nil
	}

	if price, found := s.pricesCache.Get(mint); found {
		if p, ok := price.(float64); ok {
			return p, nil
		}
		s.logger.Warn("Price found in cache but not a float64", zap.String("mint", mint), zap.Any("value", price))
	}

	decimals, err := s.metadata.Decimals(ctx, mint)
	if err != nil {
		return 0, err
	}
	if decimals > maxQuoteDecimals {
		return 0, fmt.Errorf("mint %s has %d decimals: %w", mint, decimals, entity.ErrParse)
	}
	amount := uint64(math.Pow10(int(decimals)))

	price, err := s.quotes.QuotePrice(ctx, mint, amount)
	if err != nil {
		s.logger.Debug("Failed to quote token", zap.String("mint", mint), zap.Error(err))
		return 0, err
	}

	s.pricesCache.Set(mint, price, cache.DefaultExpiration)
	s.logger.Debug("Cached price for token", zap.String("mint", mint), zap.Float64("price", price))
	return price, nil
}
