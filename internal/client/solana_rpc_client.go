package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wallet_history/internal/config"
	"wallet_history/internal/entity"
	"wallet_history/internal/pkg/metrics"
	"wallet_history/internal/pkg/retrier"
	"wallet_history/internal/port"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	commitmentConfirmed = "confirmed"

	methodGetSignaturesForAddress = "getSignaturesForAddress"
	methodGetTransaction          = "getTransaction"
	methodGetAccountInfo          = "getAccountInfo"
	methodGetBalance              = "getBalance"
	methodGetTokenAccountsByOwner = "getTokenAccountsByOwner"
	methodGetTokenSupply          = "getTokenSupply"
)

// solanaRPCClientImpl talks JSON-RPC 2.0 to a Solana node over fasthttp.
type solanaRPCClientImpl struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	retrier *retrier.Retrier
	logger  *zap.Logger
}

// NewSolanaRPCClient creates a Solana JSON-RPC client. Transaction batches are retried on rate limiting
// up to cfg.MaxRetries attempts in total.
func NewSolanaRPCClient(cfg config.SolanaConfig, logger *zap.Logger) port.SolanaRPC {
	log := logger.Named("SolanaRPCClient")
	return &solanaRPCClientImpl{
		client: &fasthttp.Client{
			Name:                "wallet_history",
			MaxConnsPerHost:     cfg.MaxIdleConnsPerHost,
			MaxIdleConnDuration: 30 * time.Second,
		},
		url:     cfg.RPCURL,
		timeout: time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		retrier: retrier.New(
			retrier.WithMaxAttempts(cfg.MaxRetries),
			retrier.WithInitialInterval(time.Duration(cfg.RetryDelayMs)*time.Millisecond),
			retrier.WithRetryIf(IsRateLimited),
			retrier.WithOnRetry(func(attempt int, err error) {
				metrics.RateLimitRetries.Inc()
				log.Warn("Rate limited by RPC, retrying", zap.Int("attempt", attempt), zap.Error(err))
			}),
		),
		logger: log,
	}
}

// IsRateLimited reports whether err signals upstream rate limiting.
func IsRateLimited(err error) bool {
	return err != nil && errors.Is(err, entity.ErrRateLimited)
}

type signaturesConfig struct {
	Limit      int    `json:"limit,omitempty"`
	Before     string `json:"before,omitempty"`
	Commitment string `json:"commitment"`
}

type transactionConfig struct {
	Encoding                       string `json:"encoding"`
	MaxSupportedTransactionVersion int    `json:"maxSupportedTransactionVersion"`
	Commitment                     string `json:"commitment"`
}

type accountConfig struct {
	Encoding   string `json:"encoding,omitempty"`
	Commitment string `json:"commitment"`
}

type programFilter struct {
	ProgramID string `json:"programId"`
}

type contextValue[T any] struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value T `json:"value"`
}

type accountInfo struct {
	Data       []string `json:"data"`
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Executable bool     `json:"executable"`
}

type parsedTokenAccount struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Data struct {
			Parsed struct {
				Info struct {
					Mint        string               `json:"mint"`
					Owner       string               `json:"owner"`
					TokenAmount entity.UITokenAmount `json:"tokenAmount"`
				} `json:"info"`
				Type string `json:"type"`
			} `json:"parsed"`
			Program string `json:"program"`
		} `json:"data"`
	} `json:"account"`
}

// GetSignaturesForAddress implements the port.TransactionFetcher interface.
func (c *solanaRPCClientImpl) GetSignaturesForAddress(ctx context.Context, address, before string, limit int) ([]entity.SignatureInfo, error) {
	params := []any{address, signaturesConfig{Limit: limit, Before: before, Commitment: commitmentConfirmed}}

	var out []entity.SignatureInfo
	if err := c.call(ctx, methodGetSignaturesForAddress, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransactions implements the port.TransactionFetcher interface. Items the node answers with
// an error other than rate limiting come back as nil entries.
func (c *solanaRPCClientImpl) GetTransactions(ctx context.Context, signatures []string) ([]*entity.RawTransaction, error) {
	if len(signatures) == 0 {
		return []*entity.RawTransaction{}, nil
	}

	cfg := transactionConfig{Encoding: "json", MaxSupportedTransactionVersion: 0, Commitment: commitmentConfirmed}
	params := make([][]any, len(signatures))
	for i, sig := range signatures {
		params[i] = []any{sig, cfg}
	}

	responses, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) ([]entity.RPCResponse, error) {
		return c.batch(ctx, methodGetTransaction, params)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("%s batch: %w: %w", methodGetTransaction, err, entity.ErrFetch)
		}
		return nil, err
	}

	txs := make([]*entity.RawTransaction, len(responses))
	for i, resp := range responses {
		if isNullResult(resp.Result) {
			continue
		}
		var tx entity.RawTransaction
		if err := json.Unmarshal(resp.Result, &tx); err != nil {
			c.logger.Error("Failed to decode transaction", zap.String("signature", signatures[i]), zap.Error(err))
			return nil, fmt.Errorf("decode transaction %s: %v: %w", signatures[i], err, entity.ErrParse)
		}
		txs[i] = &tx
	}
	return txs, nil
}

// GetAccountInfo implements the port.AccountFetcher interface.
func (c *solanaRPCClientImpl) GetAccountInfo(ctx context.Context, pubkey string) ([]byte, error) {
	params := []any{pubkey, accountConfig{Encoding: "base64", Commitment: commitmentConfirmed}}

	var out contextValue[*accountInfo]
	if err := c.call(ctx, methodGetAccountInfo, params, &out); err != nil {
		return nil, err
	}
	if out.Value == nil {
		return nil, fmt.Errorf("account %s: %w", pubkey, entity.ErrNotFound)
	}
	if len(out.Value.Data) == 0 {
		return nil, fmt.Errorf("account %s has no data field: %w", pubkey, entity.ErrParse)
	}

	data, err := base64.StdEncoding.DecodeString(out.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("account %s data: %v: %w", pubkey, err, entity.ErrParse)
	}
	return data, nil
}

// GetBalance implements the port.AccountFetcher interface.
func (c *solanaRPCClientImpl) GetBalance(ctx context.Context, pubkey string) (uint64, error) {
	params := []any{pubkey, accountConfig{Commitment: commitmentConfirmed}}

	var out contextValue[uint64]
	if err := c.call(ctx, methodGetBalance, params, &out); err != nil {
		return 0, err
	}
	return out.Value, nil
}

// GetTokenAccountsByOwner implements the port.AccountFetcher interface.
func (c *solanaRPCClientImpl) GetTokenAccountsByOwner(ctx context.Context, owner string) ([]entity.TokenAccount, error) {
	params := []any{
		owner,
		programFilter{ProgramID: entity.SPLTokenProgramID},
		accountConfig{Encoding: "jsonParsed", Commitment: commitmentConfirmed},
	}

	var out contextValue[[]parsedTokenAccount]
	if err := c.call(ctx, methodGetTokenAccountsByOwner, params, &out); err != nil {
		return nil, err
	}

	accounts := make([]entity.TokenAccount, 0, len(out.Value))
	for _, acc := range out.Value {
		info := acc.Account.Data.Parsed.Info
		amount, err := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("token account %s amount %q: %w", acc.Pubkey, info.TokenAmount.Amount, entity.ErrParse)
		}
		accounts = append(accounts, entity.TokenAccount{
			Address:  acc.Pubkey,
			Mint:     info.Mint,
			Owner:    info.Owner,
			Amount:   amount,
			Decimals: info.TokenAmount.Decimals,
		})
	}
	return accounts, nil
}

// GetTokenDecimals implements the port.AccountFetcher interface.
func (c *solanaRPCClientImpl) GetTokenDecimals(ctx context.Context, mint string) (uint8, error) {
	params := []any{mint, accountConfig{Commitment: commitmentConfirmed}}

	var out contextValue[entity.UITokenAmount]
	if err := c.call(ctx, methodGetTokenSupply, params, &out); err != nil {
		return 0, err
	}
	return out.Value.Decimals, nil
}

// call performs a single JSON-RPC request and decodes its result into out.
func (c *solanaRPCClientImpl) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(entity.RPCRequest{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	respBody, err := c.post(ctx, method, body)
	if err != nil {
		return err
	}

	var resp entity.RPCResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		metrics.RPCRequests.WithLabelValues(method, "parse_error").Inc()
		return fmt.Errorf("decode %s response: %v: %w", method, err, entity.ErrParse)
	}
	if resp.Error != nil {
		return c.rpcError(method, resp.Error)
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		metrics.RPCRequests.WithLabelValues(method, "parse_error").Inc()
		return fmt.Errorf("decode %s result: %v: %w", method, err, entity.ErrParse)
	}

	metrics.RPCRequests.WithLabelValues(method, "ok").Inc()
	return nil
}

// batch sends one JSON-RPC batch and returns the responses in request order.
func (c *solanaRPCClientImpl) batch(ctx context.Context, method string, params [][]any) ([]entity.RPCResponse, error) {
	requests := make([]entity.RPCRequest, len(params))
	index := make(map[string]int, len(params))
	for i, p := range params {
		id := uuid.NewString()
		requests[i] = entity.RPCRequest{JSONRPC: "2.0", ID: id, Method: method, Params: p}
		index[id] = i
	}

	body, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("encode %s batch: %w", method, err)
	}

	respBody, err := c.post(ctx, method, body)
	if err != nil {
		return nil, err
	}

	var responses []entity.RPCResponse
	if err := json.Unmarshal(respBody, &responses); err != nil {
		// some nodes answer a throttled batch with a single error object
		var single entity.RPCResponse
		if json.Unmarshal(respBody, &single) == nil && single.Error != nil {
			return nil, c.rpcError(method, single.Error)
		}
		metrics.RPCRequests.WithLabelValues(method, "parse_error").Inc()
		return nil, fmt.Errorf("decode %s batch response: %v: %w", method, err, entity.ErrParse)
	}

	ordered := make([]entity.RPCResponse, len(params))
	seen := 0
	for _, resp := range responses {
		if resp.Error != nil && isRateLimitRPCError(resp.Error) {
			return nil, c.rpcError(method, resp.Error)
		}
		i, ok := index[resp.ID]
		if !ok {
			continue
		}
		if resp.Error != nil {
			// the item is reported without a result; the rest of the batch stays usable
			metrics.RPCRequests.WithLabelValues(method, "item_error").Inc()
			c.logger.Warn("RPC batch item failed",
				zap.String("method", method),
				zap.Int("index", i),
				zap.Int("code", resp.Error.Code),
				zap.String("message", resp.Error.Message))
			resp.Result = nil
		}
		ordered[i] = resp
		seen++
	}
	if seen != len(params) {
		metrics.RPCRequests.WithLabelValues(method, "parse_error").Inc()
		return nil, fmt.Errorf("%s batch returned %d of %d responses: %w", method, seen, len(params), entity.ErrParse)
	}

	metrics.RPCRequests.WithLabelValues(method, "ok").Inc()
	return ordered, nil
}

func (c *solanaRPCClientImpl) post(ctx context.Context, method string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBodyRaw(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := doRequest(ctx, c.client, req, resp, c.timeout); err != nil {
		metrics.RPCRequests.WithLabelValues(method, "error").Inc()
		c.logger.Error("Failed to execute RPC request", zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("%s request: %v: %w", method, err, entity.ErrFetch)
	}

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusTooManyRequests:
		metrics.RPCRequests.WithLabelValues(method, "rate_limited").Inc()
		return nil, fmt.Errorf("%s: http 429: %w", method, entity.ErrRateLimited)
	case status != fasthttp.StatusOK:
		metrics.RPCRequests.WithLabelValues(method, "error").Inc()
		c.logger.Error("RPC request failed",
			zap.String("method", method),
			zap.Int("statusCode", status),
			zap.String("responseBody", truncateBody(resp.Body())),
		)
		return nil, fmt.Errorf("%s: http %d: %w", method, status, entity.ErrFetch)
	}

	return append([]byte(nil), resp.Body()...), nil
}

func (c *solanaRPCClientImpl) rpcError(method string, rpcErr *entity.RPCError) error {
	if isRateLimitRPCError(rpcErr) {
		metrics.RPCRequests.WithLabelValues(method, "rate_limited").Inc()
		return fmt.Errorf("%s: rpc error %d %s: %w", method, rpcErr.Code, rpcErr.Message, entity.ErrRateLimited)
	}
	metrics.RPCRequests.WithLabelValues(method, "error").Inc()
	c.logger.Warn("RPC returned an error", zap.String("method", method), zap.Int("code", rpcErr.Code), zap.String("message", rpcErr.Message))
	return fmt.Errorf("%s: rpc error %d %s: %w", method, rpcErr.Code, rpcErr.Message, entity.ErrFetch)
}

func isRateLimitRPCError(rpcErr *entity.RPCError) bool {
	if rpcErr.Code == 429 || rpcErr.Code == -32429 {
		return true
	}
	msg := strings.ToLower(rpcErr.Message)
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests")
}

func isNullResult(raw []byte) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
