package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/sav-suite/reclamation-service/internal/api/http"
	"github.com/sav-suite/reclamation-service/internal/api/http/handlers"
	"github.com/sav-suite/reclamation-service/internal/auth"
	"github.com/sav-suite/reclamation-service/internal/cache"
	"github.com/sav-suite/reclamation-service/internal/config"
	"github.com/sav-suite/reclamation-service/internal/events"
	"github.com/sav-suite/reclamation-service/internal/observability"
	"github.com/sav-suite/reclamation-service/internal/persistence"
	"github.com/sav-suite/reclamation-service/internal/repository"
	"github.com/sav-suite/reclamation-service/internal/service"
	"github.com/sav-suite/reclamation-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	db := repository.NewDB(pool)
	txManager := persistence.NewTxManager(pool)

	userRepo := repository.NewUserRepository(db)
	reclamationRepo := repository.NewReclamationRepository(db)
	interventionRepo := repository.NewInterventionRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	historyRepo := repository.NewReclamationHistoryRepository(db)
	allocator := repository.NewSequenceAllocator(db)

	dispatcher := events.NewInMemoryDispatcher(logger)
	snapshots := cache.NewReclamationCache(redis.Client, cfg.Workflow.SnapshotTTL(), logger)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	reclamationService := service.NewReclamationService(service.ReclamationDependencies{
		ReclamationRepo: reclamationRepo,
		HistoryRepo:     historyRepo,
		Allocator:       allocator,
		TxManager:       txManager,
		Dispatcher:      dispatcher,
		Snapshots:       snapshots,
	})
	workflowEngine := service.NewWorkflowEngine(service.WorkflowDependencies{
		ReclamationRepo:  reclamationRepo,
		InterventionRepo: interventionRepo,
		WorkOrderRepo:    workOrderRepo,
		UserRepo:         userRepo,
		HistoryRepo:      historyRepo,
		Allocator:        allocator,
		TxManager:        txManager,
		Dispatcher:       dispatcher,
		Snapshots:        snapshots,
		Logger:           logger,
		Config:           cfg.Workflow,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Reclamations:   handlers.NewReclamationsHandler(reclamationService, workflowEngine),
		WorkOrders:     handlers.NewWorkOrdersHandler(workflowEngine, interventionRepo, workOrderRepo),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
