package service

import (
	"context"
	"fmt"
	"slices"

	"wallet_history/internal/config"
	"wallet_history/internal/entity"
	"wallet_history/internal/pkg/utils"
	"wallet_history/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// TransactionFetcher walks a wallet's signature history and loads its transactions in
// concurrent, rate limited batches.
type TransactionFetcher struct {
	rpc                  port.TransactionFetcher
	pageLimit            int
	batchSize            int
	maxConcurrentBatches int
	limiter              *rate.Limiter
	logger               *zap.Logger
}

// NewTransactionFetcher creates a TransactionFetcher.
func NewTransactionFetcher(rpc port.TransactionFetcher, cfg config.SolanaConfig, logger *zap.Logger) *TransactionFetcher {
	return &TransactionFetcher{
		rpc:                  rpc,
		pageLimit:            cfg.SignaturePageLimit,
		batchSize:            cfg.TransactionBatchSize,
		maxConcurrentBatches: cfg.MaxConcurrentBatches,
		limiter:              rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.BurstLimit, 1)),
		logger:               logger.Named("TransactionFetcher"),
	}
}

// FetchSignatures returns every signature of address, newest first. Pages are requested one after
// another since each cursor is the last signature of the previous page.
func (f *TransactionFetcher) FetchSignatures(ctx context.Context, address string) ([]string, error) {
	var (
		signatures []string
		before     string
	)

	for {
		page, err := f.rpc.GetSignaturesForAddress(ctx, address, before, f.pageLimit)
		if err != nil {
			f.logger.Error("Failed to fetch signatures", zap.String("address", address), zap.String("before", before), zap.Error(err))
			return nil, fmt.Errorf("signatures of %s: %w", address, err)
		}

		for _, s := range page {
			signatures = append(signatures, s.Signature)
		}
		if len(page) < f.pageLimit || len(page) == 0 {
			break
		}
		before = page[len(page)-1].Signature
	}

	f.logger.Debug("Fetched signatures", zap.String("address", address), zap.Int("count", len(signatures)))
	return signatures, nil
}

// FetchTransactions loads the transactions of signatures. Any batch failing after its retries
// fails the whole fetch. Transactions unknown to the node come back as nil entries.
func (f *TransactionFetcher) FetchTransactions(ctx context.Context, signatures []string) ([]*entity.RawTransaction, error) {
	batches := utils.Batch(signatures, f.batchSize)
	results := make([][]*entity.RawTransaction, len(batches))

	g, gCtx := errgroup.WithContext(ctx)
	if f.maxConcurrentBatches > 0 {
		g.SetLimit(f.maxConcurrentBatches)
	}

	for i, batch := range batches {
		g.Go(func() error {
			if err := f.limiter.Wait(gCtx); err != nil {
				return fmt.Errorf("transaction batch %d: waiting for rate limiter: %w: %w", i, err, entity.ErrFetch)
			}

			txs, err := f.rpc.GetTransactions(gCtx, batch)
			if err != nil {
				f.logger.Error("Failed to fetch transaction batch",
					zap.Int("batch", i),
					zap.Int("size", len(batch)),
					zap.Error(err))
				return fmt.Errorf("transaction batch %d: %w", i, err)
			}
			results[i] = txs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logger.Debug("Fetched transactions", zap.Int("signatures", len(signatures)), zap.Int("batches", len(batches)))
	return slices.Concat(results...), nil
}
