package service

import (
	"context"
	"testing"

	"wallet_history/internal/config"
	"wallet_history/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPriceConfig() *config.Config {
	return &config.Config{
		Jupiter:       config.JupiterConfig{QuoteMint: entity.USDCMint, QuoteDecimals: 6},
		TokenPriceSvc: config.TokenPriceServiceConfig{CacheTTLMinutes: 5, CleanupIntervalMinutes: 10},
	}
}

func TestTokenPriceService_QuoteMintIsPegged(t *testing.T) {
	quotes := new(mockQuoteClient)
	svc := NewTokenPriceService(zap.NewNop(), testPriceConfig(), quotes, testMetadata(new(mockAccountFetcher)))

	price, err := svc.LivePrice(context.Background(), entity.USDCMint)
	require.NoError(t, err)
	assert.Equal(t, 1.0, price)
	quotes.AssertNotCalled(t, "QuotePrice", mock.Anything, mock.Anything, mock.Anything)
}

func TestTokenPriceService_QuotesOneWholeTokenAndCaches(t *testing.T) {
	quotes := new(mockQuoteClient)
	quotes.On("QuotePrice", mock.Anything, entity.NativeMint, uint64(1_000_000_000)).Return(151.25, nil).Once()
	svc := NewTokenPriceService(zap.NewNop(), testPriceConfig(), quotes, testMetadata(new(mockAccountFetcher)))

	for i := 0; i < 3; i++ {
		price, err := svc.LivePrice(context.Background(), entity.NativeMint)
		require.NoError(t, err)
		assert.Equal(t, 151.25, price)
	}
	quotes.AssertNumberOfCalls(t, "QuotePrice", 1)
}

func TestTokenPriceService_Failures(t *testing.T) {
	quotes := new(mockQuoteClient)
	quotes.On("QuotePrice", mock.Anything, testOther, uint64(1)).Return(0.0, entity.ErrFetch)
	metadata := testMetadata(new(mockAccountFetcher))
	metadata.AddDecimals(testOther, 0)
	metadata.AddDecimals(testSigner, 20)
	svc := NewTokenPriceService(zap.NewNop(), testPriceConfig(), quotes, metadata)

	_, err := svc.LivePrice(context.Background(), testOther)
	assert.ErrorIs(t, err, entity.ErrFetch)
	_, err = svc.LivePrice(context.Background(), testOther)
	assert.ErrorIs(t, err, entity.ErrFetch)
	quotes.AssertNumberOfCalls(t, "QuotePrice", 2)

	_, err = svc.LivePrice(context.Background(), testSigner)
	assert.ErrorIs(t, err, entity.ErrParse)
}

func TestHistoricalPriceFeed_CoinIDs(t *testing.T) {
	points := []entity.PricePoint{{Timestamp: 100, Price: 1}}

	client := new(mockMarketChartClient)
	client.On("GetMarketChartRange", mock.Anything, "usd-coin", int64(100), int64(200)).Return(points, nil)
	client.On("GetMarketChartRange", mock.Anything, entity.NativeCoingeckoID, int64(100), int64(200)).Return(points, nil)
	feed := NewHistoricalPriceFeed(client, testMetadata(new(mockAccountFetcher)), zap.NewNop())

	got, err := feed.PriceSeries(context.Background(), entity.USDCMint, 100, 200)
	require.NoError(t, err)
	assert.Equal(t, points, got)

	_, err = feed.PriceSeries(context.Background(), entity.NativeMint, 100, 200)
	require.NoError(t, err)

	_, err = feed.PriceSeries(context.Background(), testOther, 100, 200)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	client.AssertNumberOfCalls(t, "GetMarketChartRange", 2)
}
