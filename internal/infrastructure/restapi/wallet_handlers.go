package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"wallet_history/internal/config"
	"wallet_history/internal/entity"
	"wallet_history/internal/port"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultPage = "0-50"

// APIError is the body of every failed request.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WalletHandler serves wallet history, holdings and position requests.
type WalletHandler struct {
	history   port.HistoryService
	accounts  port.AccountService
	positions port.PositionService
	cfg       config.ChartConfig
	logger    *zap.Logger
}

// NewWalletHandler creates a new instance of WalletHandler.
func NewWalletHandler(
	history port.HistoryService,
	accounts port.AccountService,
	positions port.PositionService,
	cfg config.ChartConfig,
	logger *zap.Logger,
) *WalletHandler {
	return &WalletHandler{
		history:   history,
		accounts:  accounts,
		positions: positions,
		cfg:       cfg,
		logger:    logger.Named("WalletHandler"),
	}
}

// GetChartHandler returns the valued balance history of an address. Without ?detailed=true only
// the timestamp and USD value of each bucket are returned.
func (h *WalletHandler) GetChartHandler(c *gin.Context) {
	address := c.Param("address")
	timeframe, rng, err := entity.ParseTimeframe(c.Param("timeframe"), h.cfg.MaxHourlyRange)
	if err != nil {
		h.fail(c, err)
		return
	}

	buckets, err := h.history.GetChart(c.Request.Context(), address, timeframe, rng)
	if err != nil {
		h.fail(c, err)
		return
	}

	if detailed, _ := strconv.ParseBool(c.Query("detailed")); detailed {
		c.JSON(http.StatusOK, buckets)
		return
	}
	c.JSON(http.StatusOK, entity.ToChartPoints(buckets))
}

// GetAccountsHandler returns the native and token accounts of an address.
func (h *WalletHandler) GetAccountsHandler(c *gin.Context) {
	accounts, err := h.accounts.GetAccounts(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// GetBalancesHandler returns the fungible balances of an address and, unless ?positions=false,
// its valued liquidity positions.
func (h *WalletHandler) GetBalancesHandler(c *gin.Context) {
	includePositions := true
	if v, err := strconv.ParseBool(c.DefaultQuery("positions", "true")); err == nil {
		includePositions = v
	}

	balances, err := h.accounts.GetBalances(c.Request.Context(), c.Param("address"), includePositions)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// GetPositionHandler values one position of a pool.
func (h *WalletHandler) GetPositionHandler(c *gin.Context) {
	position, err := h.positions.GetPosition(c.Request.Context(), c.Param("pool"), c.Param("position"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, position)
}

// GetTransactionsHandler returns one page of parsed transactions, oldest first.
func (h *WalletHandler) GetTransactionsHandler(c *gin.Context) {
	page, err := entity.ParsePage(c.DefaultQuery("page", defaultPage))
	if err != nil {
		h.fail(c, err)
		return
	}

	txs, err := h.history.GetTransactions(c.Request.Context(), c.Param("address"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *WalletHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, APIError{Error: entity.ErrorKind(err), Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidAddress),
		errors.Is(err, entity.ErrInvalidTimeframe),
		errors.Is(err, entity.ErrInvalidPage):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, entity.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
