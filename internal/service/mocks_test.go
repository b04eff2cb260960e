package service

import (
	"context"

	"wallet_history/internal/entity"

	"github.com/stretchr/testify/mock"
)

type mockTransactionRPC struct {
	mock.Mock
}

func (m *mockTransactionRPC) GetSignaturesForAddress(ctx context.Context, address, before string, limit int) ([]entity.SignatureInfo, error) {
	args := m.Called(ctx, address, before, limit)
	sigs, _ := args.Get(0).([]entity.SignatureInfo)
	return sigs, args.Error(1)
}

func (m *mockTransactionRPC) GetTransactions(ctx context.Context, signatures []string) ([]*entity.RawTransaction, error) {
	args := m.Called(ctx, signatures)
	txs, _ := args.Get(0).([]*entity.RawTransaction)
	return txs, args.Error(1)
}

type mockAccountFetcher struct {
	mock.Mock
}

func (m *mockAccountFetcher) GetAccountInfo(ctx context.Context, pubkey string) ([]byte, error) {
	args := m.Called(ctx, pubkey)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockAccountFetcher) GetBalance(ctx context.Context, pubkey string) (uint64, error) {
	args := m.Called(ctx, pubkey)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockAccountFetcher) GetTokenAccountsByOwner(ctx context.Context, owner string) ([]entity.TokenAccount, error) {
	args := m.Called(ctx, owner)
	accounts, _ := args.Get(0).([]entity.TokenAccount)
	return accounts, args.Error(1)
}

func (m *mockAccountFetcher) GetTokenDecimals(ctx context.Context, mint string) (uint8, error) {
	args := m.Called(ctx, mint)
	return args.Get(0).(uint8), args.Error(1)
}

type mockHistoricalSource struct {
	mock.Mock
}

func (m *mockHistoricalSource) PriceSeries(ctx context.Context, mint string, from, to int64) ([]entity.PricePoint, error) {
	args := m.Called(ctx, mint, from, to)
	points, _ := args.Get(0).([]entity.PricePoint)
	return points, args.Error(1)
}

type mockLiveSource struct {
	mock.Mock
}

func (m *mockLiveSource) LivePrice(ctx context.Context, mint string) (float64, error) {
	args := m.Called(ctx, mint)
	return args.Get(0).(float64), args.Error(1)
}

type mockQuoteClient struct {
	mock.Mock
}

func (m *mockQuoteClient) QuotePrice(ctx context.Context, inputMint string, amount uint64) (float64, error) {
	args := m.Called(ctx, inputMint, amount)
	return args.Get(0).(float64), args.Error(1)
}

type mockMarketChartClient struct {
	mock.Mock
}

func (m *mockMarketChartClient) GetMarketChartRange(ctx context.Context, coinID string, from, to int64) ([]entity.PricePoint, error) {
	args := m.Called(ctx, coinID, from, to)
	points, _ := args.Get(0).([]entity.PricePoint)
	return points, args.Error(1)
}

type mockPositionService struct {
	mock.Mock
}

func (m *mockPositionService) GetPosition(ctx context.Context, pool, position string) (*entity.ParsedPosition, error) {
	args := m.Called(ctx, pool, position)
	p, _ := args.Get(0).(*entity.ParsedPosition)
	return p, args.Error(1)
}

func (m *mockPositionService) GetPositionByNFT(ctx context.Context, nftMint string) (*entity.ParsedPosition, error) {
	args := m.Called(ctx, nftMint)
	p, _ := args.Get(0).(*entity.ParsedPosition)
	return p, args.Error(1)
}

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }
