package service

import (
	"context"
	"fmt"
	"testing"

	"wallet_history/internal/config"
	"wallet_history/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSolanaConfig() config.SolanaConfig {
	return config.SolanaConfig{
		SignaturePageLimit:   3,
		TransactionBatchSize: 2,
		MaxConcurrentBatches: 2,
		RateLimit:            1000,
		BurstLimit:           10,
	}
}

func signaturePage(names ...string) []entity.SignatureInfo {
	page := make([]entity.SignatureInfo, len(names))
	for i, n := range names {
		page[i] = entity.SignatureInfo{Signature: n}
	}
	return page
}

func TestTransactionFetcher_FetchSignaturesPaginates(t *testing.T) {
	rpc := new(mockTransactionRPC)
	rpc.On("GetSignaturesForAddress", mock.Anything, testSigner, "", 3).Return(signaturePage("s1", "s2", "s3"), nil).Once()
	rpc.On("GetSignaturesForAddress", mock.Anything, testSigner, "s3", 3).Return(signaturePage("s4", "s5", "s6"), nil).Once()
	rpc.On("GetSignaturesForAddress", mock.Anything, testSigner, "s6", 3).Return(signaturePage("s7"), nil).Once()

	f := NewTransactionFetcher(rpc, testSolanaConfig(), zap.NewNop())
	sigs, err := f.FetchSignatures(context.Background(), testSigner)
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"}, sigs)
	rpc.AssertExpectations(t)
}

func TestTransactionFetcher_FetchSignaturesStopsOnEmptyPage(t *testing.T) {
	rpc := new(mockTransactionRPC)
	rpc.On("GetSignaturesForAddress", mock.Anything, testSigner, "", 3).Return(signaturePage("s1", "s2", "s3"), nil).Once()
	rpc.On("GetSignaturesForAddress", mock.Anything, testSigner, "s3", 3).Return([]entity.SignatureInfo{}, nil).Once()

	f := NewTransactionFetcher(rpc, testSolanaConfig(), zap.NewNop())
	sigs, err := f.FetchSignatures(context.Background(), testSigner)
	require.NoError(t, err)
	assert.Len(t, sigs, 3)
	rpc.AssertExpectations(t)
}

func TestTransactionFetcher_FetchTransactionsBatches(t *testing.T) {
	rpc := new(mockTransactionRPC)
	for _, batch := range [][]string{{"a", "b"}, {"c", "d"}, {"e"}} {
		txs := make([]*entity.RawTransaction, len(batch))
		for i, sig := range batch {
			txs[i] = rawTx(sig, 1, []string{testSigner}, []uint64{1}, []uint64{2})
		}
		rpc.On("GetTransactions", mock.Anything, batch).Return(txs, nil).Once()
	}

	f := NewTransactionFetcher(rpc, testSolanaConfig(), zap.NewNop())
	txs, err := f.FetchTransactions(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	require.Len(t, txs, 5)
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, want, txs[i].Transaction.Signatures[0])
	}
	rpc.AssertNumberOfCalls(t, "GetTransactions", 3)
}

func TestTransactionFetcher_BatchFailurePropagates(t *testing.T) {
	rpc := new(mockTransactionRPC)
	rpc.On("GetTransactions", mock.Anything, []string{"a", "b"}).Return([]*entity.RawTransaction{nil, nil}, nil).Maybe()
	rpc.On("GetTransactions", mock.Anything, []string{"c"}).Return(nil, fmt.Errorf("batch: %w", entity.ErrRateLimited))

	f := NewTransactionFetcher(rpc, testSolanaConfig(), zap.NewNop())
	_, err := f.FetchTransactions(context.Background(), []string{"a", "b", "c"})
	assert.ErrorIs(t, err, entity.ErrRateLimited)
}

func TestTransactionFetcher_CancelledWhileWaitingForLimiter(t *testing.T) {
	rpc := new(mockTransactionRPC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewTransactionFetcher(rpc, testSolanaConfig(), zap.NewNop())
	_, err := f.FetchTransactions(ctx, []string{"a", "b", "c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, entity.ErrFetch)
	assert.Equal(t, "FetchError", entity.ErrorKind(err))
	rpc.AssertNotCalled(t, "GetTransactions", mock.Anything, mock.Anything)
}
