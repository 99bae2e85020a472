package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/comanda-pos/comanda/internal/app"
	"github.com/comanda-pos/comanda/internal/auth"
	"github.com/comanda-pos/comanda/internal/bills"
	"github.com/comanda-pos/comanda/internal/cashregister"
	"github.com/comanda-pos/comanda/internal/catalog/categories"
	"github.com/comanda-pos/comanda/internal/catalog/products"
	"github.com/comanda-pos/comanda/internal/expenses"
	"github.com/comanda-pos/comanda/internal/observability"
	"github.com/comanda-pos/comanda/internal/orders"
	"github.com/comanda-pos/comanda/internal/payments"
	"github.com/comanda-pos/comanda/internal/platform/db"
	"github.com/comanda-pos/comanda/internal/profiles"
	"github.com/comanda-pos/comanda/internal/reports"
	"github.com/comanda-pos/comanda/internal/settlement"
	"github.com/comanda-pos/comanda/internal/shared"
	"github.com/comanda-pos/comanda/internal/stock"
	"github.com/comanda-pos/comanda/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(pool)
	location := cfg.Location()

	profileRepo := profiles.NewRepository(pool)
	profileService := profiles.NewService(profileRepo)
	profileHandler := profiles.NewHandler(logger, profileService)

	authService := auth.NewService(profileRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	expenseRepo := expenses.NewRepository(pool)
	expenseService := expenses.NewService(expenseRepo)
	expenseHandler := expenses.NewHandler(logger, expenseService)

	categoryRepo := categories.NewRepository(pool)
	categoryService := categories.NewService(categoryRepo)
	categoryHandler := categories.NewHandler(logger, categoryService)

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo)
	productHandler := products.NewHandler(logger, productService)

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo, auditLogger)
	stockHandler := stock.NewHandler(logger, stockService)

	registerRepo := cashregister.NewRepository(pool)
	registerService := cashregister.NewService(registerRepo, auditLogger, location)
	registerHandler := cashregister.NewHandler(logger, registerService)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, auditLogger)

	paymentRepo := payments.NewRepository(pool)
	paymentService := payments.NewService(paymentRepo, auditLogger)
	paymentHandler := payments.NewHandler(logger, paymentService)

	closer := settlement.NewOrchestrator(settlement.NewPgUnitOfWork(pool), registerService, stockService, auditLogger)
	orderHandler := orders.NewHandler(logger, orderService, closer)

	billRepo := bills.NewRepository(pool)
	billService := bills.NewService(billRepo, auditLogger, location)
	billHandler := bills.NewHandler(logger, billService)

	reportRepo := reports.NewRepository(pool)
	reportService := reports.NewService(logger, reportRepo, redisClient, 5*time.Minute)
	reportHandler := reports.NewHandler(logger, reportService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		Metrics:           metrics,
		AuthHandler:       authHandler,
		ProfilesHandler:   profileHandler,
		OrdersHandler:     orderHandler,
		PaymentsHandler:   paymentHandler,
		ProductsHandler:   productHandler,
		CategoriesHandler: categoryHandler,
		ExpensesHandler:   expenseHandler,
		StockHandler:      stockHandler,
		RegisterHandler:   registerHandler,
		BillsHandler:      billHandler,
		ReportsHandler:    reportHandler,
		JobHandler:        jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
