package service

import (
	"context"
	"fmt"

	"wallet_history/internal/entity"
	"wallet_history/internal/pkg/metrics"
	"wallet_history/internal/pkg/utils"
	"wallet_history/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	hourStep = int64(entity.Hour)
	dayStep  = int64(entity.Day)
	// the market chart feed switches to daily points past this span
	hourlySeriesSpan = 90 * dayStep
)

// PriceAligner values bucketed balances in USD.
type PriceAligner struct {
	historical     port.HistoricalPriceSource
	live           port.LiveQuoteSource
	maxConcurrency int
	logger         *zap.Logger
}

// NewPriceAligner creates a PriceAligner. maxConcurrency bounds the per-mint fetch fan-out.
func NewPriceAligner(historical port.HistoricalPriceSource, live port.LiveQuoteSource, maxConcurrency int, logger *zap.Logger) *PriceAligner {
	return &PriceAligner{
		historical:     historical,
		live:           live,
		maxConcurrency: maxConcurrency,
		logger:         logger.Named("PriceAligner"),
	}
}

// SeriesStep returns the spacing of historical price points for a [from, to] query.
func SeriesStep(from, to int64) int64 {
	if to-from > hourlySeriesSpan {
		return dayStep
	}
	return hourStep
}

// Align attaches a price to every mint of every bucket. Past buckets use the historical series,
// the last bucket uses live quotes. Price failures value the mint at zero; only cancellation of
// ctx is returned as an error, classified as entity.ErrFetch.
func (a *PriceAligner) Align(ctx context.Context, buckets []entity.ChartState) ([]entity.PricedBucket, error) {
	if len(buckets) == 0 {
		return []entity.PricedBucket{}, nil
	}

	balances := make([]map[string]entity.FormattedAmount, len(buckets))
	for i, b := range buckets {
		balances[i] = b.Balances
	}
	mints := utils.SortedKeys(balances...)

	from, to := buckets[0].Timestamp, buckets[len(buckets)-1].Timestamp
	step := SeriesStep(from, to)

	var historical PriceSource
	if from != to {
		historical = NewHistoricalPriceSource(a.fetchSeries(ctx, mints, from, to), from, step)
	}
	live := NewLivePriceSource(a.live, a.maxConcurrency, a.logger)

	out := make([]entity.PricedBucket, len(buckets))
	for i, bucket := range buckets {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pricing bucket %d: %w: %w", i, err, entity.ErrFetch)
		}

		src := sourceFor(i, len(buckets), historical, live)
		held := utils.SortedKeys(bucket.Balances)
		prices := src.Prices(ctx, held, bucket.Timestamp)

		priced := entity.PricedBucket{
			Timestamp: bucket.Timestamp,
			Balances:  make(map[string]entity.PricedAmount, len(held)),
		}
		for j, mint := range held {
			amount := bucket.Balances[mint]
			priced.Balances[mint] = entity.PricedAmount{Amount: amount, Price: prices[j]}
			priced.USDValue += amount.Formatted * prices[j]
		}
		out[i] = priced
	}

	return out, nil
}

// sourceFor selects the price source of bucket i out of n. The last bucket is priced live, and
// so is every bucket when there is no historical range to query.
func sourceFor(i, n int, historical, live PriceSource) PriceSource {
	if historical == nil || i == n-1 {
		return live
	}
	return historical
}

// fetchSeries loads the historical series of every mint concurrently. A mint whose series cannot
// be fetched is left out.
func (a *PriceAligner) fetchSeries(ctx context.Context, mints []string, from, to int64) map[string][]entity.PricePoint {
	results := make([][]entity.PricePoint, len(mints))

	g, gCtx := errgroup.WithContext(ctx)
	if a.maxConcurrency > 0 {
		g.SetLimit(a.maxConcurrency)
	}
	for i, mint := range mints {
		g.Go(func() error {
			points, err := a.historical.PriceSeries(gCtx, mint, from, to)
			if err != nil {
				metrics.PriceFallbacks.WithLabelValues(string(PriceSourceHistorical)).Inc()
				a.logger.Warn("Historical prices unavailable, valuing at zero",
					zap.String("mint", mint),
					zap.Int64("from", from),
					zap.Int64("to", to),
					zap.Error(err))
				return nil
			}
			results[i] = points
			return nil
		})
	}
	_ = g.Wait()

	series := make(map[string][]entity.PricePoint, len(mints))
	for i, mint := range mints {
		if results[i] != nil {
			series[mint] = results[i]
		}
	}
	return series
}
