package service

import (
	"maps"

	"wallet_history/internal/entity"
)

// BuildBalanceStates folds transactions, sorted ascending by block time, into one cumulative
// snapshot per transaction. A mint whose post balance is zero is removed from the snapshot.
// Lamports and wrapped SOL are tracked separately and reported together under NativeMint.
func BuildBalanceStates(txs []entity.ParsedTransaction) []entity.ChartState {
	states := make([]entity.ChartState, 0, len(txs))
	holdings := make(map[string]entity.FormattedAmount)

	for _, tx := range txs {
		for key, change := range tx.Balances {
			if change.Post.IsZero() {
				delete(holdings, key)
				continue
			}
			holdings[key] = change.Post
		}

		states = append(states, entity.ChartState{Timestamp: tx.BlockTime, Balances: snapshot(holdings)})
	}

	return states
}

// snapshot copies holdings, merging wrapped SOL into the native SOL balance.
func snapshot(holdings map[string]entity.FormattedAmount) map[string]entity.FormattedAmount {
	out := maps.Clone(holdings)
	wrapped, ok := out[entity.WrappedSOLKey]
	if !ok {
		return out
	}

	delete(out, entity.WrappedSOLKey)
	native := out[entity.NativeMint]
	out[entity.NativeMint] = entity.NewFormattedAmount(native.Amount+wrapped.Amount, entity.NativeDecimals)
	return out
}
