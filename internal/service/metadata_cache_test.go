package service

import (
	"context"
	"errors"
	"testing"

	"wallet_history/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetadataCache_Token(t *testing.T) {
	c := testMetadata(new(mockAccountFetcher))

	info, ok := c.Token(entity.USDCMint)
	require.True(t, ok)
	assert.Equal(t, entity.USDCMint, info.Mint)
	assert.Equal(t, "usd-coin", info.CoingeckoID)

	_, ok = c.Token(testOther)
	assert.False(t, ok)
}

func TestMetadataCache_AddKeepsFirst(t *testing.T) {
	c := testMetadata(new(mockAccountFetcher))

	assert.False(t, c.Add(entity.USDCMint, entity.TokenInfo{Symbol: "FAKE"}))
	info, _ := c.Token(entity.USDCMint)
	assert.Equal(t, "USDC", info.Symbol)

	assert.True(t, c.Add(testOther, entity.TokenInfo{Symbol: "NEW"}))
	info, ok := c.Token(testOther)
	require.True(t, ok)
	assert.Equal(t, "NEW", info.Symbol)
}

func TestMetadataCache_Decimals(t *testing.T) {
	accounts := new(mockAccountFetcher)
	accounts.On("GetTokenDecimals", mock.Anything, entity.USDCMint).Return(uint8(6), nil).Once()
	accounts.On("GetTokenDecimals", mock.Anything, testOther).Return(uint8(0), entity.ErrNotFound)
	c := testMetadata(accounts)

	d, err := c.Decimals(context.Background(), entity.NativeMint)
	require.NoError(t, err)
	assert.Equal(t, entity.NativeDecimals, d)

	for i := 0; i < 2; i++ {
		d, err = c.Decimals(context.Background(), entity.USDCMint)
		require.NoError(t, err)
		assert.Equal(t, uint8(6), d)
	}
	accounts.AssertNumberOfCalls(t, "GetTokenDecimals", 1)

	_, err = c.Decimals(context.Background(), testOther)
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestMetadataCache_NewWithoutRegistry(t *testing.T) {
	c := NewMetadataCache(nil, new(mockAccountFetcher), zap.NewNop())
	_, ok := c.Token(entity.USDCMint)
	assert.False(t, ok)
}
