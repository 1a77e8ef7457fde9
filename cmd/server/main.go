package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dashboardapp "github.com/pms/backend/internal/application/dashboard"
	inventoryapp "github.com/pms/backend/internal/application/inventory"
	operationsapp "github.com/pms/backend/internal/application/operations"
	pricingapp "github.com/pms/backend/internal/application/pricing"
	propertyapp "github.com/pms/backend/internal/application/property"
	reservationapp "github.com/pms/backend/internal/application/reservation"
	settlementapp "github.com/pms/backend/internal/application/settlement"
	"github.com/pms/backend/internal/domain/pricing"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/infrastructure/config"
	"github.com/pms/backend/internal/infrastructure/event"
	"github.com/pms/backend/internal/infrastructure/lock"
	"github.com/pms/backend/internal/infrastructure/logger"
	"github.com/pms/backend/internal/infrastructure/notify"
	"github.com/pms/backend/internal/infrastructure/persistence"
	"github.com/pms/backend/internal/infrastructure/scheduler"
	"github.com/pms/backend/internal/interfaces/http/handler"
	"github.com/pms/backend/internal/interfaces/http/middleware"
	"github.com/pms/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting PMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Settlement recalculation lock: Redis when configured, in-process
	// otherwise
	var locker lock.Locker
	if cfg.Redis.Host != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		locker = lock.NewRedisLocker(redisClient, "pms:lock:", log)
		log.Info("Redis locker enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		locker = lock.NewMemoryLocker()
		log.Info("In-memory locker enabled")
	}

	// Initialize repositories
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	ownerRepo := persistence.NewGormOwnerRepository(db.DB)
	guestRepo := persistence.NewGormGuestRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	unitTypeRepo := persistence.NewGormUnitTypeRepository(db.DB)
	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	ratePlanRepo := persistence.NewGormRatePlanRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	taskRepo := persistence.NewGormHousekeepingTaskRepository(db.DB)
	maintenanceRepo := persistence.NewGormMaintenanceRequestRepository(db.DB)

	// Accounting adapters
	invoiceService := persistence.NewGormInvoiceService(db.DB)
	ledgerService := persistence.NewGormLedgerService(db.DB)
	paymentService := persistence.NewGormPaymentService(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Domain services
	weekendDays, err := cfg.WeekendWeekdays()
	if err != nil {
		log.Fatal("Invalid weekend day configuration", zap.Error(err))
	}
	availability := reservation.NewAvailabilityService(reservationRepo)
	rateResolver := pricing.NewResolver(ratePlanRepo, unitTypeRepo, weekendDays)

	defaultCommissionRate, err := decimal.NewFromString(cfg.Accounting.DefaultCommissionRate)
	if err != nil {
		log.Fatal("Invalid default commission rate", zap.Error(err))
	}

	// Initialize application services
	propertyService := propertyapp.NewPropertyService(propertyRepo, ownerRepo, guestRepo, defaultCommissionRate)
	inventoryService := inventoryapp.NewInventoryService(unitRepo, unitTypeRepo, propertyRepo, ownerRepo, log)
	pricingService := pricingapp.NewPricingService(ratePlanRepo, rateResolver)
	reservationService := reservationapp.NewReservationService(
		reservationRepo,
		unitRepo,
		guestRepo,
		propertyRepo,
		availability,
		rateResolver,
		invoiceService,
		eventBus,
		log,
		cfg.Booking.MaxStayNights,
	)
	operationsService := operationsapp.NewOperationsService(taskRepo, maintenanceRepo, unitRepo, log)
	settlementService := settlementapp.NewSettlementService(
		settlementRepo,
		ownerRepo,
		unitRepo,
		reservationRepo,
		maintenanceRepo,
		ledgerService,
		paymentService,
		notify.NewLogNotifier(log),
		locker,
		eventBus,
		log,
		settlementapp.AccountingConfig{
			PayableAccount: cfg.Accounting.OwnerPayableAccount,
		},
	)
	generationService := settlementapp.NewMonthlyGenerationService(settlementService, settlementRepo, ownerRepo, unitRepo, log)
	dashboardService := dashboardapp.NewDashboardService(
		unitRepo,
		reservationRepo,
		taskRepo,
		maintenanceRepo,
		settlementRepo,
		reservationRepo,
		log,
	)

	// Register event handlers for cross-context reactions
	cleaningHandler := operationsapp.NewCheckoutCleaningHandler(taskRepo, unitRepo, log)
	eventBus.Subscribe(cleaningHandler)

	guestStatsHandler := propertyapp.NewGuestStatsHandler(guestRepo, log)
	eventBus.Subscribe(guestStatsHandler)

	log.Info("Event handlers registered",
		zap.Strings("checkout_cleaning_events", cleaningHandler.EventTypes()),
		zap.Strings("guest_stats_events", guestStatsHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Monthly settlement scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		settlementScheduler, err := scheduler.New(generationService, cfg.Scheduler.MonthlySettlementDay, log)
		if err != nil {
			log.Fatal("Failed to create settlement scheduler", zap.Error(err))
		}
		settlementScheduler.Start()
		defer func() {
			if err := settlementScheduler.Stop(); err != nil {
				log.Error("Error stopping settlement scheduler", zap.Error(err))
			}
		}()
		log.Info("Monthly settlement scheduler started",
			zap.Int("day_of_month", cfg.Scheduler.MonthlySettlementDay),
		)
	}

	// Initialize HTTP handlers
	if err := handler.RegisterValidations(); err != nil {
		log.Fatal("Failed to register binding validations", zap.Error(err))
	}
	propertyHandler := handler.NewPropertyHandler(propertyService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	ratePlanHandler := handler.NewRatePlanHandler(pricingService)
	reservationHandler := handler.NewReservationHandler(reservationService)
	settlementHandler := handler.NewSettlementHandler(settlementService, generationService)
	operationsHandler := handler.NewOperationsHandler(operationsService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(cfg.HTTP.CORSAllowOrigins))

	router.NewRouter(engine).
		Register(propertyHandler).
		Register(inventoryHandler).
		Register(ratePlanHandler).
		Register(reservationHandler).
		Register(settlementHandler).
		Register(operationsHandler).
		Register(dashboardHandler).
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
