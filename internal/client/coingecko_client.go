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

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const methodMarketChartRange = "coingecko_market_chart_range"

// coinGeckoClientImpl is the implementation of port.MarketChartClient.
type coinGeckoClientImpl struct {
	client     *fasthttp.Client
	baseURL    string
	apiKey     string
	vsCurrency string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewCoinGeckoClient creates a new instance of coinGeckoClientImpl.
func NewCoinGeckoClient(cfg config.CoinGeckoConfig, logger *zap.Logger) port.MarketChartClient {
	return &coinGeckoClientImpl{
		client:     &fasthttp.Client{Name: "wallet_history"},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.ApiKey,
		vsCurrency: cfg.VsCurrency,
		timeout:    time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		logger:     logger.Named("CoinGeckoClient"),
	}
}

// GetMarketChartRange implements the port.MarketChartClient interface. Timestamps are returned in unix seconds.
func (c *coinGeckoClientImpl) GetMarketChartRange(ctx context.Context, coinID string, from, to int64) ([]entity.PricePoint, error) {
	if coinID == "" {
		return nil, fmt.Errorf("coin id cannot be empty: %w", entity.ErrInvalidAddress)
	}

	requestURL := fmt.Sprintf("%s/coins/%s/market_chart/range", c.baseURL, coinID)
	c.logger.Debug("Requesting market chart from CoinGecko", zap.String("url", requestURL), zap.Int64("from", from), zap.Int64("to", to))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	args := req.URI().QueryArgs()
	args.Add("vs_currency", c.vsCurrency)
	args.Add("from", strconv.FormatInt(from, 10))
	args.Add("to", strconv.FormatInt(to, 10))
	if c.apiKey != "" {
		args.Add("x_cg_demo_api_key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := doRequest(ctx, c.client, req, resp, c.timeout); err != nil {
		metrics.RPCRequests.WithLabelValues(methodMarketChartRange, "error").Inc()
		c.logger.Error("Failed to execute request to CoinGecko", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("request %s: %v: %w", requestURL, err, entity.ErrFetch)
	}

	rawBody := resp.Body()
	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusTooManyRequests:
		metrics.RPCRequests.WithLabelValues(methodMarketChartRange, "rate_limited").Inc()
		return nil, fmt.Errorf("coingecko %s: %w", coinID, entity.ErrRateLimited)
	case status == fasthttp.StatusNotFound:
		metrics.RPCRequests.WithLabelValues(methodMarketChartRange, "error").Inc()
		return nil, fmt.Errorf("coingecko coin %s: %w", coinID, entity.ErrNotFound)
	case status != fasthttp.StatusOK:
		metrics.RPCRequests.WithLabelValues(methodMarketChartRange, "error").Inc()
		var apiErr entity.CoingeckoErrorResponse
		_ = json.Unmarshal(rawBody, &apiErr)
		c.logger.Error("CoinGecko API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.String("error", apiErr.Error),
			zap.String("responseBody", truncateBody(rawBody)),
		)
		return nil, fmt.Errorf("coingecko %s: http %d: %w", coinID, status, entity.ErrFetch)
	}

	var chart entity.MarketChartResponse
	if err := json.Unmarshal(rawBody, &chart); err != nil {
		metrics.RPCRequests.WithLabelValues(methodMarketChartRange, "parse_error").Inc()
		return nil, fmt.Errorf("decode coingecko %s: %v: %w", coinID, err, entity.ErrParse)
	}

	points := make([]entity.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, entity.PricePoint{
			Timestamp: int64(p[0]) / 1000,
			Price:     p[1],
		})
	}

	metrics.RPCRequests.WithLabelValues(methodMarketChartRange, "ok").Inc()
	c.logger.Debug("Received market chart", zap.String("coinID", coinID), zap.Int("points", len(points)))
	return points, nil
}
