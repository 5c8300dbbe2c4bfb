package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	listingapp "github.com/crosslist/backend/internal/application/listing"
	"github.com/crosslist/backend/internal/application/pricing"
	"github.com/crosslist/backend/internal/application/reconciliation"
	settlementapp "github.com/crosslist/backend/internal/application/settlement"
	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/infrastructure/cache"
	"github.com/crosslist/backend/internal/infrastructure/config"
	"github.com/crosslist/backend/internal/infrastructure/event"
	"github.com/crosslist/backend/internal/infrastructure/logger"
	marketplaceinfra "github.com/crosslist/backend/internal/infrastructure/marketplace"
	"github.com/crosslist/backend/internal/infrastructure/notification"
	"github.com/crosslist/backend/internal/infrastructure/persistence"
	"github.com/crosslist/backend/internal/infrastructure/scheduler"
	"github.com/crosslist/backend/internal/interfaces/http/handler"
	"github.com/crosslist/backend/internal/interfaces/http/middleware"
	"github.com/crosslist/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Crosslist Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	listingRepo := persistence.NewGormListingRepository(db.DB)
	priceHistoryRepo := persistence.NewGormPriceHistoryRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	payoutRepo := persistence.NewGormPayoutRepository(db.DB)
	settler := persistence.NewGormSettler(db.DB)

	// Build channel adapters from config
	registry, err := marketplaceinfra.BuildRegistry(cfg, log)
	if err != nil {
		log.Fatal("Failed to build marketplace registry", zap.Error(err))
	}
	channelCodes := make([]string, 0, len(registry.List()))
	for _, ch := range registry.List() {
		channelCodes = append(channelCodes, ch.Code().String())
	}
	log.Info("Marketplace channels registered", zap.Strings("channels", channelCodes))

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Notification handlers are wrapped with an idempotency guard so a
	// redelivered event never notifies the seller twice
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	notifier := notification.NewLogNotifier(log)
	eventBus.Subscribe(event.NewIdempotentHandler(notification.NewPriceDropHandler(notifier, log), idempotencyStore, log))
	eventBus.Subscribe(event.NewIdempotentHandler(notification.NewSaleHandler(notifier, log), idempotencyStore, log))
	eventBus.Subscribe(event.NewIdempotentHandler(notification.NewPayoutHandler(notifier, log), idempotencyStore, log))

	// Initialize application services
	listingService := listingapp.NewListingService(listingRepo, priceHistoryRepo, registry, eventBus, log)

	decayService := pricing.NewDecayService(listingRepo, registry, eventBus, pricing.DecayConfig{
		Factor:      decimal.NewFromFloat(cfg.Decay.Factor),
		Gate:        cfg.Decay.GateDuration(),
		BatchSize:   cfg.Decay.BatchSize,
		MaxParallel: cfg.Decay.MaxParallel,
	}, log)

	reconcileService := reconciliation.NewReconcileService(listingRepo, settler, registry, eventBus, reconciliation.ReconcileConfig{
		BatchSize:   cfg.Reconcile.BatchSize,
		MaxParallel: cfg.Reconcile.MaxParallel,
		FeeRates:    channelFeeRates(&cfg.Marketplaces),
	}, log)

	minimumPayout := decimal.NewFromFloat(cfg.Payout.MinimumAmount)
	ledger := settlement.NewLedgerService(settlementRepo, payoutRepo, minimumPayout)
	payoutReserver := persistence.NewGormPayoutReserver(db.DB, minimumPayout)
	payoutService := settlementapp.NewPayoutService(settlementRepo, payoutRepo, payoutReserver, ledger, eventBus, log)

	// Initialize engine schedulers
	decayScheduler, err := scheduler.NewDecayScheduler(scheduler.DecaySchedulerConfig{
		Enabled:    cfg.Decay.Enabled,
		RunHour:    cfg.Decay.RunHour,
		JobTimeout: cfg.Decay.JobTimeout,
	}, decayService, log)
	if err != nil {
		log.Fatal("Invalid decay scheduler configuration", zap.Error(err))
	}

	reconcileScheduler, err := scheduler.NewReconcileScheduler(scheduler.ReconcileSchedulerConfig{
		Enabled:    cfg.Reconcile.Enabled,
		Interval:   cfg.Reconcile.Interval,
		JobTimeout: cfg.Reconcile.JobTimeout,
	}, reconcileService, log)
	if err != nil {
		log.Fatal("Invalid reconcile scheduler configuration", zap.Error(err))
	}

	if cfg.Decay.Enabled {
		if err := decayScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start decay scheduler", zap.Error(err))
		}
		defer func() {
			if err := decayScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping decay scheduler", zap.Error(err))
			}
		}()
	}

	if cfg.Reconcile.Enabled {
		if err := reconcileScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start reconcile scheduler", zap.Error(err))
		}
		defer func() {
			if err := reconcileScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping reconcile scheduler", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	listingHandler := handler.NewListingHandler(listingService)
	settlementHandler := handler.NewSettlementHandler(payoutService)
	systemHandler := handler.NewSystemHandler(db, decayScheduler, reconcileScheduler)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Middleware stack: request ID first so recovery and request logs
	// carry it, then panic recovery, then request logging
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS())

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(listingHandler).
		Register(settlementHandler).
		Register(systemHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// channelFeeRates maps each configured marketplace to the fraction of the
// sale price it keeps, used when recording settlements
func channelFeeRates(mcs *config.MarketplacesConfig) map[marketplace.ChannelCode]decimal.Decimal {
	rates := make(map[marketplace.ChannelCode]decimal.Decimal, 4)
	for code, mc := range map[marketplace.ChannelCode]config.MarketplaceConfig{
		marketplace.ChannelCodeEbay:    mcs.Ebay,
		marketplace.ChannelCodeEtsy:    mcs.Etsy,
		marketplace.ChannelCodeDepop:   mcs.Depop,
		marketplace.ChannelCodeMercari: mcs.Mercari,
	} {
		if mc.FeeRate > 0 {
			rates[code] = decimal.NewFromFloat(mc.FeeRate)
		}
	}
	return rates
}
