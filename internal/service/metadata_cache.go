package service

import (
	"context"
	"fmt"

	"wallet_history/internal/entity"
	"wallet_history/internal/port"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// MetadataCache is a process-scoped mint metadata cache. Entries never expire and are only
// inserted when absent, so the first value stored for a mint wins.
type MetadataCache struct {
	tokens   *cache.Cache
	decimals *cache.Cache
	accounts port.AccountFetcher
	logger   *zap.Logger
}

// NewMetadataCache creates a cache seeded with registry. accounts resolves decimals of mints the
// cache has not seen yet.
func NewMetadataCache(registry map[string]entity.TokenInfo, accounts port.AccountFetcher, logger *zap.Logger) *MetadataCache {
	c := &MetadataCache{
		tokens:   cache.New(cache.NoExpiration, 0),
		decimals: cache.New(cache.NoExpiration, 0),
		accounts: accounts,
		logger:   logger.Named("MetadataCache"),
	}

	for mint, info := range registry {
		info.Mint = mint
		c.Add(mint, info)
	}
	c.decimals.Set(entity.NativeMint, entity.NativeDecimals, cache.NoExpiration)
	c.logger.Info("Metadata cache seeded", zap.Int("tokens", c.tokens.ItemCount()))
	return c
}

// Add stores info for mint unless the mint is already known. It reports whether info was stored.
func (c *MetadataCache) Add(mint string, info entity.TokenInfo) bool {
	return c.tokens.Add(mint, info, cache.NoExpiration) == nil
}

// Token implements the port.TokenMetadata interface.
func (c *MetadataCache) Token(mint string) (entity.TokenInfo, bool) {
	v, found := c.tokens.Get(mint)
	if !found {
		return entity.TokenInfo{}, false
	}
	info, ok := v.(entity.TokenInfo)
	return info, ok
}

// AddDecimals records the decimals of mint unless they are already known.
func (c *MetadataCache) AddDecimals(mint string, decimals uint8) {
	_ = c.decimals.Add(mint, decimals, cache.NoExpiration)
}

// Decimals implements the port.TokenMetadata interface.
func (c *MetadataCache) Decimals(ctx context.Context, mint string) (uint8, error) {
	if v, found := c.decimals.Get(mint); found {
		if d, ok := v.(uint8); ok {
			return d, nil
		}
	}

	d, err := c.accounts.GetTokenDecimals(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("decimals of %s: %w", mint, err)
	}
	c.AddDecimals(mint, d)
	c.logger.Debug("Resolved mint decimals", zap.String("mint", mint), zap.Uint8("decimals", d))
	return d, nil
}
