package entity

const (
	// NativeMint is the mint under which native SOL balances are reported.
	NativeMint = "So11111111111111111111111111111111111111112"
	// WrappedSOLKey is the balance key of SOL held in wrapped SOL token accounts, which share the
	// mint of native SOL. Balance states fold it back into NativeMint.
	WrappedSOLKey = NativeMint + ":wrapped"
	// USDCMint is the quote mint for live prices.
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

	NativeDecimals uint8  = 9
	LamportsPerSOL uint64 = 1_000_000_000

	NativeCoingeckoID = "wrapped-solana"
	NativeName        = "Solana"
	NativeSymbol      = "SOL"

	// RaydiumCLMMProgramID owns Raydium concentrated liquidity pools and positions.
	RaydiumCLMMProgramID = "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"
	RaydiumCLMMName      = "Raydium Concentrated Liquidity"

	// SPLTokenProgramID is the classic SPL token program.
	SPLTokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

	DefaultRPCURL = "https://api.mainnet-beta.solana.com"
)
