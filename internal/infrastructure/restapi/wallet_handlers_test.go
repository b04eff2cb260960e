package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet_history/internal/config"
	"wallet_history/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAddress = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

type mockHistoryService struct {
	mock.Mock
}

func (m *mockHistoryService) GetChart(ctx context.Context, address string, timeframe entity.Timeframe, rng uint8) ([]entity.PricedBucket, error) {
	args := m.Called(ctx, address, timeframe, rng)
	buckets, _ := args.Get(0).([]entity.PricedBucket)
	return buckets, args.Error(1)
}

func (m *mockHistoryService) GetTransactions(ctx context.Context, address string, page entity.Page) ([]entity.ParsedTransaction, error) {
	args := m.Called(ctx, address, page)
	txs, _ := args.Get(0).([]entity.ParsedTransaction)
	return txs, args.Error(1)
}

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) GetAccounts(ctx context.Context, owner string) ([]entity.ParsedAccount, error) {
	args := m.Called(ctx, owner)
	accounts, _ := args.Get(0).([]entity.ParsedAccount)
	return accounts, args.Error(1)
}

func (m *mockAccountService) GetBalances(ctx context.Context, owner string, includePositions bool) (*entity.BalancesResponse, error) {
	args := m.Called(ctx, owner, includePositions)
	resp, _ := args.Get(0).(*entity.BalancesResponse)
	return resp, args.Error(1)
}

type mockPositionService struct {
	mock.Mock
}

func (m *mockPositionService) GetPosition(ctx context.Context, pool, position string) (*entity.ParsedPosition, error) {
	args := m.Called(ctx, pool, position)
	p, _ := args.Get(0).(*entity.ParsedPosition)
	return p, args.Error(1)
}

func (m *mockPositionService) GetPositionByNFT(ctx context.Context, nftMint string) (*entity.ParsedPosition, error) {
	args := m.Called(ctx, nftMint)
	p, _ := args.Get(0).(*entity.ParsedPosition)
	return p, args.Error(1)
}

type testServer struct {
	router    *gin.Engine
	history   *mockHistoryService
	accounts  *mockAccountService
	positions *mockPositionService
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		history:   new(mockHistoryService),
		accounts:  new(mockAccountService),
		positions: new(mockPositionService),
	}
	handler := NewWalletHandler(s.history, s.accounts, s.positions, config.ChartConfig{MaxHourlyRange: 48}, zap.NewNop())
	s.router = SetupRouter(handler, nil, zap.NewNop())
	return s
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func testBuckets() []entity.PricedBucket {
	return []entity.PricedBucket{
		{Timestamp: 100, USDValue: 10, Balances: map[string]entity.PricedAmount{
			entity.NativeMint: {Amount: entity.NewFormattedAmount(100_000_000, 9), Price: 100},
		}},
		{Timestamp: 200, USDValue: 12, Balances: map[string]entity.PricedAmount{
			entity.NativeMint: {Amount: entity.NewFormattedAmount(100_000_000, 9), Price: 120},
		}},
	}
}

func TestGetChartHandler(t *testing.T) {
	s := newTestServer()
	s.history.On("GetChart", mock.Anything, testAddress, entity.Day, uint8(7)).Return(testBuckets(), nil)

	w := s.get(t, "/api/v1/chart/"+testAddress+"/7d")
	require.Equal(t, http.StatusOK, w.Code)
	var points []entity.ChartPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	assert.Equal(t, []entity.ChartPoint{{Timestamp: 100, USDValue: 10}, {Timestamp: 200, USDValue: 12}}, points)

	w = s.get(t, "/api/v1/chart/"+testAddress+"/7d?detailed=true")
	require.Equal(t, http.StatusOK, w.Code)
	var buckets []entity.PricedBucket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &buckets))
	require.Len(t, buckets, 2)
	assert.Equal(t, 120.0, buckets[1].Balances[entity.NativeMint].Price)
}

func TestGetChartHandler_InvalidTimeframe(t *testing.T) {
	tests := []struct {
		name      string
		timeframe string
	}{
		{name: "unknown unit", timeframe: "7w"},
		{name: "range overflows uint8", timeframe: "300d"},
		{name: "hourly range above limit", timeframe: "72h"},
		{name: "missing range", timeframe: "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			w := s.get(t, "/api/v1/chart/"+testAddress+"/"+tt.timeframe)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "InvalidTimeframe", body.Error)
			s.history.AssertNotCalled(t, "GetChart", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{name: "invalid address", err: entity.ErrInvalidAddress, wantStatus: http.StatusBadRequest, wantKind: "InvalidAddress"},
		{name: "not found", err: entity.ErrNotFound, wantStatus: http.StatusNotFound, wantKind: "NotFound"},
		{name: "rate limited", err: entity.ErrRateLimited, wantStatus: http.StatusTooManyRequests, wantKind: "RateLimited"},
		{name: "fetch", err: entity.ErrFetch, wantStatus: http.StatusBadGateway, wantKind: "FetchError"},
		{name: "parse", err: entity.ErrParse, wantStatus: http.StatusInternalServerError, wantKind: "ParseError"},
		{name: "unclassified", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantKind: "Internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.accounts.On("GetAccounts", mock.Anything, testAddress).Return(nil, fmt.Errorf("accounts: %w", tt.err))

			w := s.get(t, "/api/v1/accounts/"+testAddress)
			assert.Equal(t, tt.wantStatus, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Error)
			assert.Contains(t, body.Message, "accounts")
		})
	}
}

func TestGetBalancesHandler_PositionsFlag(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "default", query: "", want: true},
		{name: "explicit false", query: "?positions=false", want: false},
		{name: "explicit true", query: "?positions=true", want: true},
		{name: "garbage falls back to default", query: "?positions=maybe", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.accounts.On("GetBalances", mock.Anything, testAddress, tt.want).Return(&entity.BalancesResponse{Accounts: []entity.ParsedAccount{}}, nil)

			w := s.get(t, "/api/v1/balances/"+testAddress+tt.query)
			assert.Equal(t, http.StatusOK, w.Code)
			s.accounts.AssertExpectations(t)
		})
	}
}

func TestGetPositionHandler(t *testing.T) {
	s := newTestServer()
	s.positions.On("GetPosition", mock.Anything, "pool1", "pos1").Return(&entity.ParsedPosition{FeeTier: "0.05%"}, nil)

	w := s.get(t, "/api/v1/positions/pool1/pos1")
	require.Equal(t, http.StatusOK, w.Code)
	var got entity.ParsedPosition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "0.05%", got.FeeTier)
	assert.Nil(t, got.TotalValueUSD)
}

func TestGetTransactionsHandler(t *testing.T) {
	s := newTestServer()
	s.history.On("GetTransactions", mock.Anything, testAddress, entity.Page{Start: 0, End: 50}).
		Return([]entity.ParsedTransaction{{BlockTime: 1, Signatures: []string{"a"}}}, nil)
	s.history.On("GetTransactions", mock.Anything, testAddress, entity.Page{Start: 10, End: 20}).
		Return([]entity.ParsedTransaction{}, nil)

	w := s.get(t, "/api/v1/transactions/"+testAddress)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"signatures":["a"]`)

	w = s.get(t, "/api/v1/transactions/"+testAddress+"?page=10-20")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.get(t, "/api/v1/transactions/"+testAddress+"?page=20-10")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidPage")
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	w := s.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
