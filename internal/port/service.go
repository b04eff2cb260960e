package port

import (
	"context"

	"wallet_history/internal/entity"
)

// HistoryService reconstructs and values a wallet's balance history.
type HistoryService interface {
	GetChart(ctx context.Context, address string, timeframe entity.Timeframe, rng uint8) ([]entity.PricedBucket, error)
	GetTransactions(ctx context.Context, address string, page entity.Page) ([]entity.ParsedTransaction, error)
}

// AccountService reports a wallet's current holdings.
type AccountService interface {
	GetAccounts(ctx context.Context, owner string) ([]entity.ParsedAccount, error)
	GetBalances(ctx context.Context, owner string, includePositions bool) (*entity.BalancesResponse, error)
}

// PositionService values concentrated liquidity positions.
type PositionService interface {
	GetPosition(ctx context.Context, pool, position string) (*entity.ParsedPosition, error)
	GetPositionByNFT(ctx context.Context, nftMint string) (*entity.ParsedPosition, error)
}
