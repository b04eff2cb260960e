package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"wallet_history/internal/entity"
	"wallet_history/internal/pkg/metrics"

	"go.uber.org/zap"
)

const instructionLogPrefix = "Program log: Instruction: "

// Reasons a transaction is left out of a balance history.
const (
	DropMissingTransaction = "missing_transaction"
	DropSignerAbsent       = "signer_absent"
	DropMalformed          = "malformed"
)

// ParseReport records how many transactions were parsed and why the rest were dropped.
type ParseReport struct {
	Parsed  int
	Dropped map[string]int
}

// DroppedTotal is the number of transactions that did not make it into the history.
func (r ParseReport) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// ParseTransaction reduces tx to the balance changes of signer.
func ParseTransaction(tx *entity.RawTransaction, signer string) (entity.ParsedTransaction, error) {
	if tx == nil {
		return entity.ParsedTransaction{}, fmt.Errorf("transaction is nil: %w", entity.ErrParse)
	}
	if tx.Meta == nil {
		return entity.ParsedTransaction{}, fmt.Errorf("transaction %s has no meta: %w", firstSignature(tx), entity.ErrParse)
	}
	if tx.BlockTime == nil {
		return entity.ParsedTransaction{}, fmt.Errorf("transaction %s has no block time: %w", firstSignature(tx), entity.ErrParse)
	}

	signerIndex := -1
	for i, key := range tx.AccountKeys() {
		if key == signer {
			signerIndex = i
			break
		}
	}
	if signerIndex < 0 {
		return entity.ParsedTransaction{}, fmt.Errorf("signer %s not in transaction %s: %w", signer, firstSignature(tx), entity.ErrInvalidAddress)
	}

	meta := tx.Meta
	balances := make(map[string]entity.BalanceChange)

	if signerIndex < len(meta.PreBalances) && signerIndex < len(meta.PostBalances) {
		pre, post := meta.PreBalances[signerIndex], meta.PostBalances[signerIndex]
		if pre != post {
			balances[entity.NativeMint] = entity.BalanceChange{
				Pre:  entity.NewFormattedAmount(pre, entity.NativeDecimals),
				Post: entity.NewFormattedAmount(post, entity.NativeDecimals),
			}
		}
	}

	pre, err := ownedTokenBalances(meta.PreTokenBalances, signer)
	if err != nil {
		return entity.ParsedTransaction{}, fmt.Errorf("transaction %s pre token balances: %w", firstSignature(tx), err)
	}
	post, err := ownedTokenBalances(meta.PostTokenBalances, signer)
	if err != nil {
		return entity.ParsedTransaction{}, fmt.Errorf("transaction %s post token balances: %w", firstSignature(tx), err)
	}

	for mint, before := range pre {
		after, ok := post[mint]
		if !ok {
			after = tokenAmount{decimals: before.decimals}
		}
		balances[tokenKey(mint)] = before.change(after)
	}
	for mint, after := range post {
		if _, ok := pre[mint]; ok {
			continue
		}
		balances[tokenKey(mint)] = tokenAmount{decimals: after.decimals}.change(after)
	}

	return entity.ParsedTransaction{
		BlockTime:          *tx.BlockTime,
		Signatures:         tx.Transaction.Signatures,
		Logs:               meta.LogMessages,
		Balances:           balances,
		ParsedInstructions: instructionNames(meta.LogMessages),
	}, nil
}

type tokenAmount struct {
	raw      uint64
	decimals uint8
}

func (a tokenAmount) change(after tokenAmount) entity.BalanceChange {
	return entity.BalanceChange{
		Pre:  entity.NewFormattedAmount(a.raw, a.decimals),
		Post: entity.NewFormattedAmount(after.raw, after.decimals),
	}
}

// tokenKey keeps wrapped SOL apart from the lamport balance reported under the same mint.
func tokenKey(mint string) string {
	if mint == entity.NativeMint {
		return entity.WrappedSOLKey
	}
	return mint
}

// ownedTokenBalances sums the token balances owned by owner per mint.
func ownedTokenBalances(list []entity.TokenBalance, owner string) (map[string]tokenAmount, error) {
	out := make(map[string]tokenAmount)
	for _, tb := range list {
		if tb.Owner != owner {
			continue
		}
		raw, err := strconv.ParseUint(tb.UITokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("mint %s amount %q: %w", tb.Mint, tb.UITokenAmount.Amount, entity.ErrParse)
		}
		acc := out[tb.Mint]
		acc.raw += raw
		acc.decimals = tb.UITokenAmount.Decimals
		out[tb.Mint] = acc
	}
	return out, nil
}

func instructionNames(logs []string) []string {
	names := make([]string, 0)
	for _, line := range logs {
		if name, ok := strings.CutPrefix(line, instructionLogPrefix); ok {
			names = append(names, name)
		}
	}
	return names
}

func firstSignature(tx *entity.RawTransaction) string {
	if len(tx.Transaction.Signatures) == 0 {
		return "<unsigned>"
	}
	return tx.Transaction.Signatures[0]
}

// ParseTransactions parses every transaction for signer. Transactions that cannot be parsed are
// dropped, logged, and counted in the returned report.
func ParseTransactions(txs []*entity.RawTransaction, signer string, logger *zap.Logger) ([]entity.ParsedTransaction, ParseReport) {
	report := ParseReport{Dropped: make(map[string]int)}
	parsed := make([]entity.ParsedTransaction, 0, len(txs))

	for _, tx := range txs {
		if tx == nil {
			report.drop(DropMissingTransaction)
			continue
		}

		ptx, err := ParseTransaction(tx, signer)
		if err != nil {
			reason := DropMalformed
			if errors.Is(err, entity.ErrInvalidAddress) {
				reason = DropSignerAbsent
			}
			logger.Warn("Dropping transaction from history",
				zap.String("signature", firstSignature(tx)),
				zap.String("reason", reason),
				zap.Error(err))
			report.drop(reason)
			continue
		}
		parsed = append(parsed, ptx)
	}

	report.Parsed = len(parsed)
	return parsed, report
}

func (r *ParseReport) drop(reason string) {
	r.Dropped[reason]++
	metrics.DroppedTransactions.WithLabelValues(reason).Inc()
}
