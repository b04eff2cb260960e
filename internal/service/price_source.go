package service

import (
	"context"

	"wallet_history/internal/entity"
	"wallet_history/internal/pkg/metrics"
	"wallet_history/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PriceSourceKind names a PriceSource variant.
type PriceSourceKind string

const (
	PriceSourceLive       PriceSourceKind = "live"
	PriceSourceHistorical PriceSourceKind = "historical"
)

// PriceSource prices a set of mints at one point in time. A mint that cannot be priced gets 0.
type PriceSource interface {
	Kind() PriceSourceKind
	Prices(ctx context.Context, mints []string, timestamp int64) []float64
}

// LivePriceSource prices mints with the live quote, ignoring the timestamp.
type LivePriceSource struct {
	quotes         port.LiveQuoteSource
	maxConcurrency int
	logger         *zap.Logger
}

func NewLivePriceSource(quotes port.LiveQuoteSource, maxConcurrency int, logger *zap.Logger) *LivePriceSource {
	return &LivePriceSource{quotes: quotes, maxConcurrency: maxConcurrency, logger: logger}
}

func (s *LivePriceSource) Kind() PriceSourceKind { return PriceSourceLive }

// Prices quotes every mint concurrently.
func (s *LivePriceSource) Prices(ctx context.Context, mints []string, _ int64) []float64 {
	prices := make([]float64, len(mints))

	g, gCtx := errgroup.WithContext(ctx)
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}
	for i, mint := range mints {
		g.Go(func() error {
			price, err := s.quotes.LivePrice(gCtx, mint)
			if err != nil {
				metrics.PriceFallbacks.WithLabelValues(string(PriceSourceLive)).Inc()
				s.logger.Warn("Live price unavailable, valuing at zero", zap.String("mint", mint), zap.Error(err))
				return nil
			}
			prices[i] = price
			return nil
		})
	}
	_ = g.Wait()

	return prices
}

// HistoricalPriceSource looks prices up in prefetched series. Point i of a series is the price at
// from + i*step.
type HistoricalPriceSource struct {
	series map[string][]entity.PricePoint
	from   int64
	step   int64
}

func NewHistoricalPriceSource(series map[string][]entity.PricePoint, from, step int64) *HistoricalPriceSource {
	return &HistoricalPriceSource{series: series, from: from, step: step}
}

func (s *HistoricalPriceSource) Kind() PriceSourceKind { return PriceSourceHistorical }

func (s *HistoricalPriceSource) Prices(_ context.Context, mints []string, timestamp int64) []float64 {
	prices := make([]float64, len(mints))
	for i, mint := range mints {
		prices[i] = s.price(mint, timestamp)
	}
	return prices
}

func (s *HistoricalPriceSource) price(mint string, timestamp int64) float64 {
	if s.step <= 0 || timestamp < s.from {
		return 0
	}
	points := s.series[mint]
	index := (timestamp - s.from) / s.step
	if index >= int64(len(points)) {
		return 0
	}
	return points[index].Price
}
