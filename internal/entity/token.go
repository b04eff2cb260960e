package entity

// TokenInfo is the static metadata known about a mint.
type TokenInfo struct {
	Mint        string `json:"-"`
	CoingeckoID string `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
}

// ParsedAccount is a token balance held by a wallet, valued at the live price.
type ParsedAccount struct {
	Mint        string          `json:"mint"`
	ATA         string          `json:"ata"`
	CoingeckoID *string         `json:"coingeckoId"`
	Decimals    uint8           `json:"decimals"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Price       *float64        `json:"price"`
	Balance     FormattedAmount `json:"balance"`
}

// IsPositionCandidate reports whether the account looks like a position NFT (a single indivisible unit).
func (a ParsedAccount) IsPositionCandidate() bool {
	return a.Balance.Amount == 1 && a.Decimals == 0
}

// BalancesResponse is the wallet's fungible balances and, when requested, its liquidity positions.
type BalancesResponse struct {
	Accounts  []ParsedAccount  `json:"accounts"`
	Positions []ParsedPosition `json:"positions,omitempty"`
}
