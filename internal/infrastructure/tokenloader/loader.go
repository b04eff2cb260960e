package tokenloader

import (
	"fmt"

	"wallet_history/internal/entity"
	"wallet_history/internal/pkg/utils"
	"wallet_history/internal/port"

	"github.com/gagliardetto/solana-go"
)

const defaultRegistryPath = "data/tokens/solana.json"

// TokenFileLoader implements the port.TokenRegistry interface over a JSON file of the form
// {"<mint>": {"name": ..., "id": <coingecko id>, "symbol": ...}}.
type TokenFileLoader struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewTokenLoader creates a new TokenFileLoader. An empty path falls back to the bundled registry.
func NewTokenLoader(filePath string, loggerInfo func(msg string, args ...any), loggerWarn func(msg string, args ...any)) port.TokenRegistry {
	if filePath == "" {
		filePath = defaultRegistryPath
	}
	return &TokenFileLoader{
		filePath:   filePath,
		loggerInfo: loggerInfo,
		loggerWarn: loggerWarn,
	}
}

// LoadTokens reads the registry file. Entries whose key is not a valid mint address are skipped.
func (l *TokenFileLoader) LoadTokens() (map[string]entity.TokenInfo, error) {
	raw, err := utils.LoadJSONFile[map[string]entity.TokenInfo](l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load token registry: %w", err)
	}

	tokens := make(map[string]entity.TokenInfo, len(raw))
	for mint, info := range raw {
		if _, err := solana.PublicKeyFromBase58(mint); err != nil {
			if l.loggerWarn != nil {
				l.loggerWarn("Token registry entry has an invalid mint, skipping.", "file", l.filePath, "mint", mint, "error", err)
			}
			continue
		}
		info.Mint = mint
		tokens[mint] = info
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Loaded token registry", "file", l.filePath, "count", len(tokens), "skipped", len(raw)-len(tokens))
	}
	return tokens, nil
}
