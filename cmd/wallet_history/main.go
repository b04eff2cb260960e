package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet_history/internal/client"
	"wallet_history/internal/config"
	"wallet_history/internal/entity"
	"wallet_history/internal/infrastructure/restapi"
	"wallet_history/internal/infrastructure/tokenloader"
	"wallet_history/internal/pkg/logger"
	"wallet_history/internal/pkg/metrics"
	"wallet_history/internal/pkg/utils"
	"wallet_history/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck
	logger.SetSlogDefault(zapLogger)

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath), zap.String("rpc", cfg.Solana.RPCURL))

	metrics.MustRegisterMetrics()

	rpcClient := client.NewSolanaRPCClient(cfg.Solana, zapLogger)

	registry, err := tokenloader.NewTokenLoader(cfg.Tokens.RegistryFile, slog.Info, slog.Warn).LoadTokens()
	if err != nil {
		zapLogger.Warn("Token registry unavailable, continuing with native SOL only", zap.Error(err))
		registry = map[string]entity.TokenInfo{}
	}
	metadata := service.NewMetadataCache(registry, rpcClient, zapLogger)

	jupiterClient := client.NewJupiterClient(cfg.Jupiter, zapLogger)
	tokenPriceService := service.NewTokenPriceService(zapLogger, cfg, jupiterClient, metadata)
	zapLogger.Info("TokenPriceService initialized", zap.String("quoteMint", cfg.Jupiter.QuoteMint))

	coinGeckoClient := client.NewCoinGeckoClient(cfg.CoinGecko, zapLogger)
	historicalFeed := service.NewHistoricalPriceFeed(coinGeckoClient, metadata, zapLogger)

	aligner := service.NewPriceAligner(historicalFeed, tokenPriceService, cfg.CoinGecko.MaxConcurrentRequests, zapLogger)
	fetcher := service.NewTransactionFetcher(rpcClient, cfg.Solana, zapLogger)

	historySvc := service.NewHistoryService(cfg.Chart, fetcher, aligner, time.Now, zapLogger)
	positionSvc := service.NewPositionService(rpcClient, tokenPriceService, metadata, zapLogger)
	accountSvc := service.NewAccountService(rpcClient, tokenPriceService, metadata, positionSvc, cfg.Solana.MaxConcurrentBatches, zapLogger)

	gin.SetMode(gin.ReleaseMode)
	handler := restapi.NewWalletHandler(historySvc, accountSvc, positionSvc, cfg.Chart, zapLogger)
	router := restapi.SetupRouter(handler, cfg.Server.AllowOrigins, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
