package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/pawdesk/petshop-service/config"
	"github.com/pawdesk/petshop-service/pkg/broker"
	"github.com/pawdesk/petshop-service/pkg/cache"
	"github.com/pawdesk/petshop-service/pkg/database/postgres"
	"github.com/pawdesk/petshop-service/pkg/logger"

	"github.com/pawdesk/petshop-service/internal/httputil"
	"github.com/pawdesk/petshop-service/internal/middleware"
	"github.com/pawdesk/petshop-service/internal/migrations"
	"github.com/pawdesk/petshop-service/internal/model"

	apptH "github.com/pawdesk/petshop-service/internal/appointment/handler"
	apptRepoPkg "github.com/pawdesk/petshop-service/internal/appointment/repository"
	apptUCPkg "github.com/pawdesk/petshop-service/internal/appointment/usecase"

	catH "github.com/pawdesk/petshop-service/internal/catalog/handler"
	catRepoPkg "github.com/pawdesk/petshop-service/internal/catalog/repository"
	catUCPkg "github.com/pawdesk/petshop-service/internal/catalog/usecase"

	custH "github.com/pawdesk/petshop-service/internal/customer/handler"
	custRepoPkg "github.com/pawdesk/petshop-service/internal/customer/repository"
	custUCPkg "github.com/pawdesk/petshop-service/internal/customer/usecase"

	invH "github.com/pawdesk/petshop-service/internal/inventory/handler"
	invListenerPkg "github.com/pawdesk/petshop-service/internal/inventory/listener"
	invRepoPkg "github.com/pawdesk/petshop-service/internal/inventory/repository"
	invSweeperPkg "github.com/pawdesk/petshop-service/internal/inventory/sweeper"
	invUCPkg "github.com/pawdesk/petshop-service/internal/inventory/usecase"

	prodH "github.com/pawdesk/petshop-service/internal/product/handler"
	prodRepoPkg "github.com/pawdesk/petshop-service/internal/product/repository"
	prodUCPkg "github.com/pawdesk/petshop-service/internal/product/usecase"

	txH "github.com/pawdesk/petshop-service/internal/transaction/handler"
	txRepoPkg "github.com/pawdesk/petshop-service/internal/transaction/repository"
	txUCPkg "github.com/pawdesk/petshop-service/internal/transaction/usecase"

	userH "github.com/pawdesk/petshop-service/internal/user/handler"
	userRepoPkg "github.com/pawdesk/petshop-service/internal/user/repository"
	userUCPkg "github.com/pawdesk/petshop-service/internal/user/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if err := migrations.Apply(context.Background(), db); err != nil {
		appLogger.Fatal("Could not apply migrations", zap.Error(err))
	}

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Initialize Kafka
	movementProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.MovementsTopic,
	})
	defer movementProducer.Close()

	receiptConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.ReceiptsTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer receiptConsumer.Close()
	appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers))

	// 6. Repositories
	invRepo := invRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	custRepo := custRepoPkg.NewPGRepository(db)
	userRepo := userRepoPkg.NewPGRepository(db)
	apptRepo := apptRepoPkg.NewPGRepository(db)
	txRepo := txRepoPkg.NewPGRepository(db)

	// 7. Use cases
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, movementProducer, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, invUC, redisClient, appLogger)
	catUC := catUCPkg.NewCatalogUseCase(catRepo, prodRepo, appLogger)
	custUC := custUCPkg.NewCustomerUseCase(custRepo, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo, cfg.JWT.SecretKey,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour, appLogger)
	apptUC := apptUCPkg.NewAppointmentUseCase(apptRepo, invUC, catUC, custUC, userUC, appLogger)
	txUC := txUCPkg.NewTransactionUseCase(txRepo, invUC, prodRepo, catUC, custUC, appLogger)

	// 8. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := invSweeperPkg.New(invUC, cfg.Sweeper.Schedule, appLogger)
	if err := sweeper.Start(ctx); err != nil {
		appLogger.Fatal("Could not start reservation sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	listener := invListenerPkg.NewReceiptListener(receiptConsumer, invUC, appLogger)
	go listener.Start(ctx)

	// 9. HTTP server
	invHandler := invH.NewInventoryHandler(invUC, appLogger)
	prodHandler := prodH.NewProductHandler(prodUC, appLogger)
	catHandler := catH.NewCatalogHandler(catUC, appLogger)
	custHandler := custH.NewCustomerHandler(custUC, appLogger)
	userHandler := userH.NewUserHandler(userUC, appLogger)
	apptHandler := apptH.NewAppointmentHandler(apptUC, appLogger)
	txHandler := txH.NewTransactionHandler(txUC, appLogger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		userHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.SecretKey))

			userHandler.RegisterRoutes(r)
			invHandler.RegisterRoutes(r)
			custHandler.RegisterRoutes(r)
			apptHandler.RegisterRoutes(r)
			txHandler.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
				prodHandler.RegisterRoutes(r)
				catHandler.RegisterRoutes(r)
			})
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server listening", zap.String("addr", cfg.Server.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}
