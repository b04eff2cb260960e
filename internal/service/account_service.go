package service

import (
	"context"
	"fmt"

	"wallet_history/internal/entity"
	"wallet_history/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// accountServiceImpl implements the port.AccountService interface.
type accountServiceImpl struct {
	accounts       port.AccountFetcher
	prices         port.LiveQuoteSource
	metadata       port.TokenMetadata
	positions      port.PositionService
	maxConcurrency int
	logger         *zap.Logger
}

// NewAccountService creates a new instance of accountServiceImpl. maxConcurrency bounds the price
// and position lookups issued per request.
func NewAccountService(
	accounts port.AccountFetcher,
	prices port.LiveQuoteSource,
	metadata port.TokenMetadata,
	positions port.PositionService,
	maxConcurrency int,
	logger *zap.Logger,
) port.AccountService {
	return &accountServiceImpl{
		accounts:       accounts,
		prices:         prices,
		metadata:       metadata,
		positions:      positions,
		maxConcurrency: maxConcurrency,
		logger:         logger.Named("AccountService"),
	}
}

// GetAccounts implements the port.AccountService interface. The native SOL balance comes first,
// followed by the owner's SPL token accounts.
func (s *accountServiceImpl) GetAccounts(ctx context.Context, owner string) ([]entity.ParsedAccount, error) {
	if err := validateAddress(owner); err != nil {
		return nil, err
	}

	var (
		lamports      uint64
		tokenAccounts []entity.TokenAccount
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lamports, err = s.accounts.GetBalance(gCtx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		tokenAccounts, err = s.accounts.GetTokenAccountsByOwner(gCtx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to fetch accounts", zap.String("owner", owner), zap.Error(err))
		return nil, fmt.Errorf("accounts of %s: %w", owner, err)
	}

	nativeID := entity.NativeCoingeckoID
	accounts := make([]entity.ParsedAccount, 0, len(tokenAccounts)+1)
	accounts = append(accounts, entity.ParsedAccount{
		Mint:        entity.NativeMint,
		ATA:         owner,
		CoingeckoID: &nativeID,
		Decimals:    entity.NativeDecimals,
		Name:        entity.NativeName,
		Symbol:      entity.NativeSymbol,
		Balance:     entity.NewFormattedAmount(lamports, entity.NativeDecimals),
	})
	for _, ta := range tokenAccounts {
		accounts = append(accounts, s.describe(ta))
	}

	s.attachPrices(ctx, accounts)

	s.logger.Debug("Fetched accounts", zap.String("owner", owner), zap.Int("count", len(accounts)))
	return accounts, nil
}

// GetBalances implements the port.AccountService interface. Position NFTs are never reported as
// fungible balances; with includePositions they are resolved and valued instead.
func (s *accountServiceImpl) GetBalances(ctx context.Context, owner string, includePositions bool) (*entity.BalancesResponse, error) {
	accounts, err := s.GetAccounts(ctx, owner)
	if err != nil {
		return nil, err
	}

	fungible := make([]entity.ParsedAccount, 0, len(accounts))
	var candidates []string
	for _, acc := range accounts {
		if acc.IsPositionCandidate() {
			candidates = append(candidates, acc.Mint)
			continue
		}
		fungible = append(fungible, acc)
	}

	response := &entity.BalancesResponse{Accounts: fungible}
	if includePositions && len(candidates) > 0 {
		response.Positions = s.resolvePositions(ctx, candidates)
	}
	return response, nil
}

func (s *accountServiceImpl) describe(ta entity.TokenAccount) entity.ParsedAccount {
	acc := entity.ParsedAccount{
		Mint:     ta.Mint,
		ATA:      ta.Address,
		Decimals: ta.Decimals,
		Balance:  entity.NewFormattedAmount(ta.Amount, ta.Decimals),
	}
	if info, ok := s.metadata.Token(ta.Mint); ok {
		acc.Name = info.Name
		acc.Symbol = info.Symbol
		if info.CoingeckoID != "" {
			id := info.CoingeckoID
			acc.CoingeckoID = &id
		}
	}
	return acc
}

// attachPrices sets the live price of every fungible account. Accounts that cannot be priced keep
// a nil price.
func (s *accountServiceImpl) attachPrices(ctx context.Context, accounts []entity.ParsedAccount) {
	g, gCtx := errgroup.WithContext(ctx)
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}

	for i := range accounts {
		if accounts[i].IsPositionCandidate() {
			continue
		}
		g.Go(func() error {
			price, err := s.prices.LivePrice(gCtx, accounts[i].Mint)
			if err != nil {
				s.logger.Debug("No live price for account", zap.String("mint", accounts[i].Mint), zap.Error(err))
				return nil
			}
			accounts[i].Price = &price
			return nil
		})
	}
	_ = g.Wait()
}

// resolvePositions values the position behind each NFT mint. NFTs that are not positions are
// skipped.
func (s *accountServiceImpl) resolvePositions(ctx context.Context, nftMints []string) []entity.ParsedPosition {
	results := make([]*entity.ParsedPosition, len(nftMints))

	g, gCtx := errgroup.WithContext(ctx)
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}
	for i, mint := range nftMints {
		g.Go(func() error {
			pos, err := s.positions.GetPositionByNFT(gCtx, mint)
			if err != nil {
				s.logger.Warn("NFT is not a resolvable position, skipping", zap.String("mint", mint), zap.Error(err))
				return nil
			}
			results[i] = pos
			return nil
		})
	}
	_ = g.Wait()

	positions := make([]entity.ParsedPosition, 0, len(results))
	for _, p := range results {
		if p != nil {
			positions = append(positions, *p)
		}
	}
	return positions
}
