package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"wallet_history/internal/config"
	"wallet_history/internal/entity"
	"wallet_history/internal/port"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// historyServiceImpl implements the port.HistoryService interface.
type historyServiceImpl struct {
	fetcher *TransactionFetcher
	aligner *PriceAligner
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewHistoryService creates a new instance of historyServiceImpl. now is the clock charts end at.
func NewHistoryService(
	cfg config.ChartConfig,
	fetcher *TransactionFetcher,
	aligner *PriceAligner,
	now func() time.Time,
	logger *zap.Logger,
) port.HistoryService {
	return &historyServiceImpl{
		fetcher: fetcher,
		aligner: aligner,
		timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		now:     now,
		logger:  logger.Named("HistoryService"),
	}
}

// GetChart implements the port.HistoryService interface.
func (s *historyServiceImpl) GetChart(ctx context.Context, address string, timeframe entity.Timeframe, rng uint8) ([]entity.PricedBucket, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	if timeframe != entity.Hour && timeframe != entity.Day {
		return nil, fmt.Errorf("timeframe of %d seconds: %w", timeframe.Seconds(), entity.ErrInvalidTimeframe)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("Building chart", zap.String("address", address), zap.String("timeframe", timeframe.String()), zap.Uint8("range", rng))

	signatures, err := s.fetcher.FetchSignatures(ctx, address)
	if err != nil {
		return nil, err
	}
	txs, err := s.history(ctx, address, signatures)
	if err != nil {
		return nil, err
	}

	states := BuildBalanceStates(txs)
	buckets := ResampleStates(states, timeframe.Seconds(), rng, s.now().Unix())

	priced, err := s.aligner.Align(ctx, buckets)
	if err != nil {
		return nil, fmt.Errorf("align prices: %w", err)
	}

	s.logger.Info("Chart built",
		zap.String("address", address),
		zap.Int("transactions", len(txs)),
		zap.Int("states", len(states)),
		zap.Int("buckets", len(priced)))
	return priced, nil
}

// GetTransactions implements the port.HistoryService interface.
func (s *historyServiceImpl) GetTransactions(ctx context.Context, address string, page entity.Page) ([]entity.ParsedTransaction, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	signatures, err := s.fetcher.FetchSignatures(ctx, address)
	if err != nil {
		return nil, err
	}
	start, end := page.Bounds(len(signatures))

	return s.history(ctx, address, signatures[start:end])
}

// history fetches and parses the transactions of signatures, sorted ascending by block time.
func (s *historyServiceImpl) history(ctx context.Context, address string, signatures []string) ([]entity.ParsedTransaction, error) {
	raw, err := s.fetcher.FetchTransactions(ctx, signatures)
	if err != nil {
		return nil, err
	}

	txs, report := ParseTransactions(raw, address, s.logger)
	if dropped := report.DroppedTotal(); dropped > 0 {
		s.logger.Warn("Transactions dropped from history",
			zap.String("address", address),
			zap.Int("parsed", report.Parsed),
			zap.Int("dropped", dropped),
			zap.Any("reasons", report.Dropped))
	}

	// signatures come newest first; reversing keeps same-second transactions in chain order
	slices.Reverse(txs)
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].BlockTime < txs[j].BlockTime })
	return txs, nil
}

func validateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("address %q: %v: %w", address, err, entity.ErrInvalidAddress)
	}
	return nil
}
