package entity

import "encoding/json"

// RPCRequest is a single JSON-RPC 2.0 call. Batches are sent as a JSON array of these.
type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCResponse is a JSON-RPC 2.0 response with an undecoded result.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// SignatureInfo is one entry returned by getSignaturesForAddress.
type SignatureInfo struct {
	Signature          string  `json:"signature"`
	Slot               uint64  `json:"slot"`
	BlockTime          *int64  `json:"blockTime"`
	Err                any     `json:"err"`
	Memo               *string `json:"memo"`
	ConfirmationStatus string  `json:"confirmationStatus"`
}

// RawTransaction is the "json" encoded result of getTransaction.
type RawTransaction struct {
	Slot        uint64              `json:"slot"`
	BlockTime   *int64              `json:"blockTime"`
	Meta        *TransactionMeta    `json:"meta"`
	Transaction TransactionEnvelope `json:"transaction"`
	Version     any                 `json:"version,omitempty"`
}

// TransactionEnvelope holds the signatures and message of a transaction.
type TransactionEnvelope struct {
	Signatures []string           `json:"signatures"`
	Message    TransactionMessage `json:"message"`
}

// TransactionMessage is the compiled transaction message.
type TransactionMessage struct {
	AccountKeys     []string              `json:"accountKeys"`
	Header          MessageHeader         `json:"header"`
	RecentBlockhash string                `json:"recentBlockhash"`
	Instructions    []CompiledInstruction `json:"instructions"`
}

type MessageHeader struct {
	NumRequiredSignatures       int `json:"numRequiredSignatures"`
	NumReadonlySignedAccounts   int `json:"numReadonlySignedAccounts"`
	NumReadonlyUnsignedAccounts int `json:"numReadonlyUnsignedAccounts"`
}

type CompiledInstruction struct {
	ProgramIDIndex int    `json:"programIdIndex"`
	Accounts       []int  `json:"accounts"`
	Data           string `json:"data"`
}

// TransactionMeta is the execution status of a transaction.
type TransactionMeta struct {
	Err               any              `json:"err"`
	Fee               uint64           `json:"fee"`
	PreBalances       []uint64         `json:"preBalances"`
	PostBalances      []uint64         `json:"postBalances"`
	PreTokenBalances  []TokenBalance   `json:"preTokenBalances"`
	PostTokenBalances []TokenBalance   `json:"postTokenBalances"`
	LogMessages       []string         `json:"logMessages"`
	LoadedAddresses   *LoadedAddresses `json:"loadedAddresses,omitempty"`
}

// LoadedAddresses are the accounts a versioned transaction loads from lookup tables.
type LoadedAddresses struct {
	Writable []string `json:"writable"`
	Readonly []string `json:"readonly"`
}

// TokenBalance is a token account balance snapshot inside a transaction.
type TokenBalance struct {
	AccountIndex  int           `json:"accountIndex"`
	Mint          string        `json:"mint"`
	Owner         string        `json:"owner"`
	ProgramID     string        `json:"programId"`
	UITokenAmount UITokenAmount `json:"uiTokenAmount"`
}

type UITokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       uint8    `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}

// AccountKeys returns the static account keys followed by the keys loaded from lookup tables,
// which is the order balance arrays are indexed in.
func (tx *RawTransaction) AccountKeys() []string {
	keys := tx.Transaction.Message.AccountKeys
	if tx.Meta == nil || tx.Meta.LoadedAddresses == nil {
		return keys
	}
	loaded := tx.Meta.LoadedAddresses
	all := make([]string, 0, len(keys)+len(loaded.Writable)+len(loaded.Readonly))
	all = append(all, keys...)
	all = append(all, loaded.Writable...)
	all = append(all, loaded.Readonly...)
	return all
}

// TokenAccount is an SPL token account held by an owner.
type TokenAccount struct {
	Address  string
	Mint     string
	Owner    string
	Amount   uint64
	Decimals uint8
}
