package entity

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// Position is a Raydium CLMM personal position account.
type Position struct {
	Discriminator           [8]byte
	Bump                    uint8
	NFTMint                 solana.PublicKey
	PoolID                  solana.PublicKey
	TickLower               int32
	TickUpper               int32
	Liquidity               *big.Int
	FeeGrowthInsideLastX64A *big.Int
	FeeGrowthInsideLastX64B *big.Int
	TokenFeesOwedA          uint64
	TokenFeesOwedB          uint64
	RewardInfos             [3]PositionRewardInfo
}

type PositionRewardInfo struct {
	GrowthInsideLastX64 *big.Int
	RewardAmountOwed    uint64
}

// Pool is a Raydium CLMM pool state account. Only the fields this service reads are kept.
type Pool struct {
	Discriminator       [8]byte
	Bump                uint8
	AmmConfig           solana.PublicKey
	Creator             solana.PublicKey
	MintA               solana.PublicKey
	MintB               solana.PublicKey
	VaultA              solana.PublicKey
	VaultB              solana.PublicKey
	ObservationID       solana.PublicKey
	MintDecimalsA       uint8
	MintDecimalsB       uint8
	TickSpacing         uint16
	Liquidity           *big.Int
	SqrtPriceX64        *big.Int
	TickCurrent         int32
	FeeGrowthGlobalX64A *big.Int
	FeeGrowthGlobalX64B *big.Int
	ProtocolFeesTokenA  uint64
	ProtocolFeesTokenB  uint64
	Status              uint8
	RewardMints         [3]solana.PublicKey
	TotalFeesTokenA     uint64
	TotalFeesTokenB     uint64
	TotalFeesClaimedA   uint64
	TotalFeesClaimedB   uint64
	StartTime           uint64
}

// AmmConfig is the fee configuration shared by pools.
type AmmConfig struct {
	Bump            uint8
	Index           uint16
	Owner           solana.PublicKey
	ProtocolFeeRate uint32
	TradeFeeRate    uint32
	TickSpacing     uint16
	FundFeeRate     uint32
}

// TokenLeg is one side of a liquidity position.
type TokenLeg struct {
	Mint   string          `json:"mint"`
	Name   string          `json:"name,omitempty"`
	Symbol string          `json:"symbol,omitempty"`
	Amount FormattedAmount `json:"amount"`
	Price  *float64        `json:"price"`
}

// ValuedPosition holds the underlying amounts of a position and their USD value.
// TotalValueUSD is nil when neither leg has a price.
type ValuedPosition struct {
	TokenA        TokenLeg
	TokenB        TokenLeg
	TotalValueUSD *float64
}

type ProtocolInfo struct {
	Name            string `json:"name"`
	ProgramID       string `json:"programId"`
	PositionAddress string `json:"positionAddress"`
	NFTMint         string `json:"nftMint"`
}

// ParsedPosition is a valued liquidity position as returned by the API.
type ParsedPosition struct {
	TotalValueUSD *float64     `json:"totalValueUsd"`
	Protocol      ProtocolInfo `json:"protocol"`
	TokenA        TokenLeg     `json:"tokenA"`
	TokenB        TokenLeg     `json:"tokenB"`
	FeeTier       string       `json:"feeTier"`
}
