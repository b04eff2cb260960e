package port

import (
	"context"

	"wallet_history/internal/entity"
)

// TransactionFetcher pages through a wallet's signatures and fetches transactions in batches.
type TransactionFetcher interface {
	// GetSignaturesForAddress returns one page of signatures, newest first, strictly older than before
	// when before is not empty.
	GetSignaturesForAddress(ctx context.Context, address, before string, limit int) ([]entity.SignatureInfo, error)
	// GetTransactions fetches transactions in one batched call. The result is index-aligned with
	// signatures; entries the node does not know are nil. Rate limiting surfaces as entity.ErrRateLimited.
	GetTransactions(ctx context.Context, signatures []string) ([]*entity.RawTransaction, error)
}

// AccountFetcher reads current account state.
type AccountFetcher interface {
	// GetAccountInfo returns the raw account data. Missing accounts yield entity.ErrNotFound.
	GetAccountInfo(ctx context.Context, pubkey string) ([]byte, error)
	GetBalance(ctx context.Context, pubkey string) (uint64, error)
	GetTokenAccountsByOwner(ctx context.Context, owner string) ([]entity.TokenAccount, error)
	GetTokenDecimals(ctx context.Context, mint string) (uint8, error)
}

// SolanaRPC is the full Solana JSON-RPC surface this service uses.
type SolanaRPC interface {
	TransactionFetcher
	AccountFetcher
}
