package port

import "wallet_history/internal/entity"

// TokenRegistry loads the static mint registry, keyed by mint.
type TokenRegistry interface {
	LoadTokens() (map[string]entity.TokenInfo, error)
}
