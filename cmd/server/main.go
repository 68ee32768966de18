package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omnimood-oracle/internal/bot"
	"omnimood-oracle/internal/cache"
	"omnimood-oracle/internal/config"
	"omnimood-oracle/internal/domain"
	"omnimood-oracle/internal/handler"
	"omnimood-oracle/internal/job"
	"omnimood-oracle/internal/oracle"
	"omnimood-oracle/internal/provider"
	"omnimood-oracle/internal/sentiment"
	"omnimood-oracle/internal/service"
	"omnimood-oracle/pkg/tracing"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "omnimood-oracle/docs"
)

// settlementClient is what the settlement chain RPC must provide for both
// publishing and reading the oracle.
type settlementClient interface {
	oracle.SettlementBackend
	oracle.ContractCaller
}

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newTransferFetcherFunc = func(ctx context.Context, tracer trace.Tracer, registry *domain.ChainRegistry) service.TransferFetcher {
		return provider.NewTransferFetcher(ctx, tracer, registry)
	}
	newOpenAIClientFunc = sentiment.NewOpenAIClient
	dialSettlementFunc  = func(ctx context.Context, rpcURL string) (settlementClient, error) {
		return ethclient.DialContext(ctx, rpcURL)
	}
	startJobFunc           = func(j *job.OracleJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           OmniMood Oracle API
// @version         1.0
// @description     Cross-chain transfer sentiment oracle with AI scoring.

// @host      localhost:3000
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	registry := domain.NewChainRegistry(cfg.Chains())

	// Settlement chain: publisher and read-only score access share one client.
	var settlement settlementClient
	if cfg.SettlementRPCURL != "" {
		settlement, err = dialSettlementFunc(ctx, cfg.SettlementRPCURL)
		if err != nil {
			log.Printf("failed to dial settlement chain: %v", err)
			settlement = nil
		}
	}
	var sender oracle.UniversalSender
	if settlement != nil {
		evmSender, err := oracle.NewEVMSender(settlement, cfg.PrivateKey, big.NewInt(cfg.SettlementChainID))
		if err != nil {
			log.Printf("settlement signer unavailable: %v", err)
		} else {
			log.Printf("Publishing oracle updates from %s", evmSender.From().Hex())
			sender = evmSender
		}
	}

	fetcher := newTransferFetcherFunc(ctx, tracer, registry)
	analyzer := sentiment.NewAnalyzer(tracer, newOpenAIClientFunc(cfg.GaiaAPIKey, cfg.GaiaEndpoint), cfg.LLMModel)
	publisher := oracle.NewPublisher(tracer, sender, cfg.OracleContractAddress)

	var scoreCache service.RedisClient
	if cache.Client != nil {
		scoreCache = cache.Client
	}
	var caller oracle.ContractCaller
	if settlement != nil {
		caller = settlement
	}
	scoreService := service.NewScoreService(
		tracer,
		oracle.NewReader(tracer, caller, cfg.OracleContractAddress),
		scoreCache,
		time.Duration(cfg.ScoreCacheSecs)*time.Second,
	)

	oracleService := service.NewOracleService(tracer, registry, fetcher, analyzer, publisher, service.NewStateStore())
	oracleService.SetScoreInvalidator(scoreService)

	if cfg.AutoUpdateSecs > 0 {
		refs := registry.Refs(autoUpdateChainIDs(cfg, registry))
		if err := registry.Validate(refs); err != nil {
			log.Printf("Oracle job disabled: %v", err)
		} else {
			startJobFunc(job.NewOracleJob(tracer, oracleService, refs, time.Duration(cfg.AutoUpdateSecs)*time.Second), ctx)
		}
	}

	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	os.Setenv("TELEGRAM_RUN_CHAT_IDS", cfg.TelegramRunChatIDs)
	startTelegramBotFunc(oracleService, scoreService)

	h := handler.New(tracer, oracleService, scoreService, cfg.TriggerAPIKey)

	r := newRouterFunc()
	r.Use(cors.Default())
	r.Use(otelgin.Middleware("omnimood-oracle"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	mountStatic(r, cfg.StaticDir)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	startHTTPServer := startHTTPServerFunc
	go func() {
		if err := startHTTPServer(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	log.Printf("OmniMood Oracle is live at http://localhost:%d", cfg.Port)

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	if err := oracleService.Wait(shutdownCtx); err != nil {
		log.Printf("in-flight oracle cycle abandoned: %v", err)
	}

	log.Println("Server exiting")
}

// autoUpdateChainIDs defaults to the first registry chains up to the selection limit.
func autoUpdateChainIDs(cfg *config.Config, registry *domain.ChainRegistry) []int64 {
	if len(cfg.AutoUpdateChainIDs) > 0 {
		return cfg.AutoUpdateChainIDs
	}
	var ids []int64
	for _, c := range registry.Chains() {
		if len(ids) == domain.MaxSelectedChains {
			break
		}
		ids = append(ids, c.ChainID)
	}
	return ids
}

// mountStatic serves the frontend bundle for unmatched routes when dir exists.
func mountStatic(r *gin.Engine, dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Printf("static dir %q not found, frontend disabled", dir)
		return
	}
	r.NoRoute(gin.WrapH(http.FileServer(http.Dir(dir))))
}
