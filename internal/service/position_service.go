package service

import (
	"context"
	"fmt"

	"wallet_history/internal/entity"
	"wallet_history/internal/port"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// positionServiceImpl implements the port.PositionService interface for Raydium CLMM positions.
type positionServiceImpl struct {
	accounts port.AccountFetcher
	prices   port.LiveQuoteSource
	metadata port.TokenMetadata
	logger   *zap.Logger
}

// NewPositionService creates a new instance of positionServiceImpl.
func NewPositionService(accounts port.AccountFetcher, prices port.LiveQuoteSource, metadata port.TokenMetadata, logger *zap.Logger) port.PositionService {
	return &positionServiceImpl{
		accounts: accounts,
		prices:   prices,
		metadata: metadata,
		logger:   logger.Named("PositionService"),
	}
}

// GetPosition implements the port.PositionService interface.
func (s *positionServiceImpl) GetPosition(ctx context.Context, pool, position string) (*entity.ParsedPosition, error) {
	poolKey, err := parsePublicKey(pool)
	if err != nil {
		return nil, err
	}
	positionKey, err := parsePublicKey(position)
	if err != nil {
		return nil, err
	}

	var poolData, positionData []byte
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		poolData, err = s.accounts.GetAccountInfo(gCtx, poolKey.String())
		return err
	})
	g.Go(func() error {
		var err error
		positionData, err = s.accounts.GetAccountInfo(gCtx, positionKey.String())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	poolState, err := DecodePool(poolData)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", pool, err)
	}
	pos, err := DecodePosition(positionData)
	if err != nil {
		return nil, fmt.Errorf("position %s: %w", position, err)
	}
	if !pos.PoolID.Equals(poolKey) {
		return nil, fmt.Errorf("position %s belongs to pool %s, not %s: %w", position, pos.PoolID, pool, entity.ErrInvalidAddress)
	}

	return s.value(ctx, positionKey, pos, poolState), nil
}

// GetPositionByNFT implements the port.PositionService interface.
func (s *positionServiceImpl) GetPositionByNFT(ctx context.Context, nftMint string) (*entity.ParsedPosition, error) {
	mint, err := parsePublicKey(nftMint)
	if err != nil {
		return nil, err
	}
	positionKey, err := DerivePositionAddress(mint)
	if err != nil {
		return nil, err
	}

	positionData, err := s.accounts.GetAccountInfo(ctx, positionKey.String())
	if err != nil {
		return nil, err
	}
	pos, err := DecodePosition(positionData)
	if err != nil {
		return nil, fmt.Errorf("position %s: %w", positionKey, err)
	}

	poolData, err := s.accounts.GetAccountInfo(ctx, pos.PoolID.String())
	if err != nil {
		return nil, err
	}
	poolState, err := DecodePool(poolData)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", pos.PoolID, err)
	}

	return s.value(ctx, positionKey, pos, poolState), nil
}

func (s *positionServiceImpl) value(ctx context.Context, positionKey solana.PublicKey, pos *entity.Position, pool *entity.Pool) *entity.ParsedPosition {
	var (
		priceA, priceB *float64
		feeTier        string
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		priceA = s.livePrice(gCtx, pool.MintA.String())
		return nil
	})
	g.Go(func() error {
		priceB = s.livePrice(gCtx, pool.MintB.String())
		return nil
	})
	g.Go(func() error {
		feeTier = s.feeTier(gCtx, pool.AmmConfig)
		return nil
	})
	_ = g.Wait()

	valued := ValuePosition(pos, pool, priceA, priceB)
	s.describe(&valued.TokenA)
	s.describe(&valued.TokenB)

	return &entity.ParsedPosition{
		TotalValueUSD: valued.TotalValueUSD,
		Protocol: entity.ProtocolInfo{
			Name:            entity.RaydiumCLMMName,
			ProgramID:       entity.RaydiumCLMMProgramID,
			PositionAddress: positionKey.String(),
			NFTMint:         pos.NFTMint.String(),
		},
		TokenA:  valued.TokenA,
		TokenB:  valued.TokenB,
		FeeTier: feeTier,
	}
}

func (s *positionServiceImpl) livePrice(ctx context.Context, mint string) *float64 {
	price, err := s.prices.LivePrice(ctx, mint)
	if err != nil {
		s.logger.Warn("Position leg has no price", zap.String("mint", mint), zap.Error(err))
		return nil
	}
	return &price
}

func (s *positionServiceImpl) feeTier(ctx context.Context, ammConfig solana.PublicKey) string {
	data, err := s.accounts.GetAccountInfo(ctx, ammConfig.String())
	if err != nil {
		s.logger.Debug("AMM config unavailable", zap.String("ammConfig", ammConfig.String()), zap.Error(err))
		return ""
	}
	cfg, err := DecodeAmmConfig(data)
	if err != nil {
		s.logger.Debug("AMM config undecodable", zap.String("ammConfig", ammConfig.String()), zap.Error(err))
		return ""
	}
	return FormatFeeTier(cfg.TradeFeeRate)
}

func (s *positionServiceImpl) describe(leg *entity.TokenLeg) {
	if info, ok := s.metadata.Token(leg.Mint); ok {
		leg.Name = info.Name
		leg.Symbol = info.Symbol
	}
}

func parsePublicKey(s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("address %q: %v: %w", s, err, entity.ErrInvalidAddress)
	}
	return key, nil
}
