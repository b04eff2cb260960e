package service

import (
	"fmt"

	"wallet_history/internal/entity"
	"wallet_history/internal/pkg/layout"

	"github.com/gagliardetto/solana-go"
)

const positionSeed = "position"

var raydiumCLMMProgram = solana.MustPublicKeyFromBase58(entity.RaydiumCLMMProgramID)

var positionLayout = layout.NewSchema("raydium_position",
	layout.FixedBytes("discriminator", 8),
	layout.Uint8("bump"),
	layout.PublicKey("nft_mint"),
	layout.PublicKey("pool_id"),
	layout.Int32("tick_lower"),
	layout.Int32("tick_upper"),
	layout.Uint128("liquidity"),
	layout.Uint128("fee_growth_inside_last_x64_a"),
	layout.Uint128("fee_growth_inside_last_x64_b"),
	layout.Uint64("token_fees_owed_a"),
	layout.Uint64("token_fees_owed_b"),
	layout.Array("reward_infos", 3, layout.Struct("",
		layout.Uint128("growth_inside_last_x64"),
		layout.Uint64("reward_amount_owed"),
	)),
	layout.Array("padding", 8, layout.Uint64("")),
)

var poolLayout = layout.NewSchema("raydium_pool",
	layout.FixedBytes("discriminator", 8),
	layout.Uint8("bump"),
	layout.PublicKey("amm_config"),
	layout.PublicKey("creator"),
	layout.PublicKey("mint_a"),
	layout.PublicKey("mint_b"),
	layout.PublicKey("vault_a"),
	layout.PublicKey("vault_b"),
	layout.PublicKey("observation_id"),
	layout.Uint8("mint_decimals_a"),
	layout.Uint8("mint_decimals_b"),
	layout.Uint16("tick_spacing"),
	layout.Uint128("liquidity"),
	layout.Uint128("sqrt_price_x64"),
	layout.Int32("tick_current"),
	layout.Uint16("observation_index"),
	layout.Uint16("observation_update_duration"),
	layout.Uint128("fee_growth_global_x64_a"),
	layout.Uint128("fee_growth_global_x64_b"),
	layout.Uint64("protocol_fees_token_a"),
	layout.Uint64("protocol_fees_token_b"),
	layout.Uint128("swap_in_amount_token_a"),
	layout.Uint128("swap_out_amount_token_b"),
	layout.Uint128("swap_in_amount_token_b"),
	layout.Uint128("swap_out_amount_token_a"),
	layout.Uint8("status"),
	layout.FixedBytes("reserved", 7),
	layout.Array("reward_infos", 3, layout.Struct("",
		layout.Uint8("reward_state"),
		layout.Uint64("open_time"),
		layout.Uint64("end_time"),
		layout.Uint64("last_update_time"),
		layout.Uint128("emissions_per_second_x64"),
		layout.Uint64("reward_total_emissioned"),
		layout.Uint64("reward_claimed"),
		layout.PublicKey("token_mint"),
		layout.PublicKey("token_vault"),
		layout.PublicKey("creator"),
		layout.Uint128("reward_growth_global_x64"),
	)),
	layout.Array("tick_array_bitmap", 16, layout.Uint64("")),
	layout.Uint64("total_fees_token_a"),
	layout.Uint64("total_fees_claimed_token_a"),
	layout.Uint64("total_fees_token_b"),
	layout.Uint64("total_fees_claimed_token_b"),
	layout.Uint64("fund_fees_token_a"),
	layout.Uint64("fund_fees_token_b"),
	layout.Uint64("start_time"),
	layout.Array("padding", 8, layout.Uint64("")),
)

var ammConfigLayout = layout.NewSchema("raydium_amm_config",
	layout.FixedBytes("discriminator", 8),
	layout.Uint8("bump"),
	layout.Uint16("index"),
	layout.PublicKey("owner"),
	layout.Uint32("protocol_fee_rate"),
	layout.Uint32("trade_fee_rate"),
	layout.Uint16("tick_spacing"),
	layout.Uint32("fund_fee_rate"),
	layout.Uint32("padding_u32"),
	layout.PublicKey("fund_owner"),
	layout.Array("padding", 3, layout.Uint64("")),
)

// DecodePosition decodes a Raydium CLMM personal position account.
func DecodePosition(data []byte) (*entity.Position, error) {
	rec, err := positionLayout.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, entity.ErrParse)
	}

	p := &entity.Position{
		Bump:                    rec.Uint8("bump"),
		NFTMint:                 rec.PublicKey("nft_mint"),
		PoolID:                  rec.PublicKey("pool_id"),
		TickLower:               rec.Int32("tick_lower"),
		TickUpper:               rec.Int32("tick_upper"),
		Liquidity:               rec.Uint128("liquidity"),
		FeeGrowthInsideLastX64A: rec.Uint128("fee_growth_inside_last_x64_a"),
		FeeGrowthInsideLastX64B: rec.Uint128("fee_growth_inside_last_x64_b"),
		TokenFeesOwedA:          rec.Uint64("token_fees_owed_a"),
		TokenFeesOwedB:          rec.Uint64("token_fees_owed_b"),
	}
	copy(p.Discriminator[:], rec.Bytes("discriminator"))
	for i := range p.RewardInfos {
		prefix := fmt.Sprintf("reward_infos[%d].", i)
		p.RewardInfos[i] = entity.PositionRewardInfo{
			GrowthInsideLastX64: rec.Uint128(prefix + "growth_inside_last_x64"),
			RewardAmountOwed:    rec.Uint64(prefix + "reward_amount_owed"),
		}
	}

	if err := rec.Err(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, entity.ErrParse)
	}
	return p, nil
}

// DecodePool decodes a Raydium CLMM pool state account.
func DecodePool(data []byte) (*entity.Pool, error) {
	rec, err := poolLayout.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, entity.ErrParse)
	}

	p := &entity.Pool{
		Bump:                rec.Uint8("bump"),
		AmmConfig:           rec.PublicKey("amm_config"),
		Creator:             rec.PublicKey("creator"),
		MintA:               rec.PublicKey("mint_a"),
		MintB:               rec.PublicKey("mint_b"),
		VaultA:              rec.PublicKey("vault_a"),
		VaultB:              rec.PublicKey("vault_b"),
		ObservationID:       rec.PublicKey("observation_id"),
		MintDecimalsA:       rec.Uint8("mint_decimals_a"),
		MintDecimalsB:       rec.Uint8("mint_decimals_b"),
		TickSpacing:         rec.Uint16("tick_spacing"),
		Liquidity:           rec.Uint128("liquidity"),
		SqrtPriceX64:        rec.Uint128("sqrt_price_x64"),
		TickCurrent:         rec.Int32("tick_current"),
		FeeGrowthGlobalX64A: rec.Uint128("fee_growth_global_x64_a"),
		FeeGrowthGlobalX64B: rec.Uint128("fee_growth_global_x64_b"),
		ProtocolFeesTokenA:  rec.Uint64("protocol_fees_token_a"),
		ProtocolFeesTokenB:  rec.Uint64("protocol_fees_token_b"),
		Status:              rec.Uint8("status"),
		TotalFeesTokenA:     rec.Uint64("total_fees_token_a"),
		TotalFeesTokenB:     rec.Uint64("total_fees_token_b"),
		TotalFeesClaimedA:   rec.Uint64("total_fees_claimed_token_a"),
		TotalFeesClaimedB:   rec.Uint64("total_fees_claimed_token_b"),
		StartTime:           rec.Uint64("start_time"),
	}
	copy(p.Discriminator[:], rec.Bytes("discriminator"))
	for i := range p.RewardMints {
		p.RewardMints[i] = rec.PublicKey(fmt.Sprintf("reward_infos[%d].token_mint", i))
	}

	if err := rec.Err(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, entity.ErrParse)
	}
	return p, nil
}

// DecodeAmmConfig decodes a Raydium CLMM AMM config account.
func DecodeAmmConfig(data []byte) (*entity.AmmConfig, error) {
	rec, err := ammConfigLayout.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, entity.ErrParse)
	}

	c := &entity.AmmConfig{
		Bump:            rec.Uint8("bump"),
		Index:           rec.Uint16("index"),
		Owner:           rec.PublicKey("owner"),
		ProtocolFeeRate: rec.Uint32("protocol_fee_rate"),
		TradeFeeRate:    rec.Uint32("trade_fee_rate"),
		TickSpacing:     rec.Uint16("tick_spacing"),
		FundFeeRate:     rec.Uint32("fund_fee_rate"),
	}
	if err := rec.Err(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, entity.ErrParse)
	}
	return c, nil
}

// DerivePositionAddress returns the personal position account of a position NFT.
func DerivePositionAddress(nftMint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(positionSeed), nftMint[:]}, raydiumCLMMProgram)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive position address for %s: %w", nftMint, err)
	}
	return addr, nil
}
