package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wallet_history/internal/config"
	"wallet_history/internal/entity"
	"wallet_history/internal/pkg/metrics"
	"wallet_history/internal/port"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const methodQuote = "jupiter_quote"

// jupiterClientImpl is the implementation of port.QuoteClient backed by the Jupiter quote API.
type jupiterClientImpl struct {
	client        *fasthttp.Client
	baseURL       string
	quoteMint     string
	quoteDecimals uint8
	slippageBps   int
	timeout       time.Duration
	logger        *zap.Logger
}

// NewJupiterClient creates a new instance of jupiterClientImpl.
func NewJupiterClient(cfg config.JupiterConfig, logger *zap.Logger) port.QuoteClient {
	return &jupiterClientImpl{
		client:        &fasthttp.Client{Name: "wallet_history"},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		quoteMint:     cfg.QuoteMint,
		quoteDecimals: cfg.QuoteDecimals,
		slippageBps:   cfg.SlippageBps,
		timeout:       time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		logger:        logger.Named("JupiterClient"),
	}
}

// QuotePrice implements the port.QuoteClient interface.
func (c *jupiterClientImpl) QuotePrice(ctx context.Context, inputMint string, amount uint64) (float64, error) {
	requestURL := c.baseURL + "/quote"

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	args := req.URI().QueryArgs()
	args.Add("inputMint", inputMint)
	args.Add("outputMint", c.quoteMint)
	args.Add("amount", strconv.FormatUint(amount, 10))
	args.Add("slippageBps", strconv.Itoa(c.slippageBps))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := doRequest(ctx, c.client, req, resp, c.timeout); err != nil {
		metrics.RPCRequests.WithLabelValues(methodQuote, "error").Inc()
		c.logger.Error("Failed to execute request to Jupiter", zap.String("inputMint", inputMint), zap.Error(err))
		return 0, fmt.Errorf("quote %s: %v: %w", inputMint, err, entity.ErrFetch)
	}

	rawBody := resp.Body()
	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusTooManyRequests:
		metrics.RPCRequests.WithLabelValues(methodQuote, "rate_limited").Inc()
		return 0, fmt.Errorf("quote %s: %w", inputMint, entity.ErrRateLimited)
	case status != fasthttp.StatusOK:
		metrics.RPCRequests.WithLabelValues(methodQuote, "error").Inc()
		var apiErr entity.QuoteErrorResponse
		_ = json.Unmarshal(rawBody, &apiErr)
		c.logger.Debug("Jupiter quote failed",
			zap.String("inputMint", inputMint),
			zap.Int("statusCode", status),
			zap.String("error", apiErr.Error),
			zap.String("errorCode", apiErr.ErrorCode),
		)
		return 0, fmt.Errorf("quote %s: http %d %s: %w", inputMint, status, apiErr.ErrorCode, entity.ErrFetch)
	}

	var quote entity.QuoteResponse
	if err := json.Unmarshal(rawBody, &quote); err != nil {
		metrics.RPCRequests.WithLabelValues(methodQuote, "parse_error").Inc()
		return 0, fmt.Errorf("decode quote %s: %v: %w", inputMint, err, entity.ErrParse)
	}

	out, err := decimal.NewFromString(quote.OutAmount)
	if err != nil {
		metrics.RPCRequests.WithLabelValues(methodQuote, "parse_error").Inc()
		return 0, fmt.Errorf("quote %s outAmount %q: %w", inputMint, quote.OutAmount, entity.ErrParse)
	}

	metrics.RPCRequests.WithLabelValues(methodQuote, "ok").Inc()
	return out.Shift(-int32(c.quoteDecimals)).InexactFloat64(), nil
}
