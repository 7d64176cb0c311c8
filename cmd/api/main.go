package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ars-claims-service/internal/api/http"
	"github.com/spec-kit/ars-claims-service/internal/api/http/handlers"
	"github.com/spec-kit/ars-claims-service/internal/auth"
	"github.com/spec-kit/ars-claims-service/internal/config"
	"github.com/spec-kit/ars-claims-service/internal/events"
	"github.com/spec-kit/ars-claims-service/internal/observability"
	"github.com/spec-kit/ars-claims-service/internal/persistence"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	"github.com/spec-kit/ars-claims-service/internal/service"
	"github.com/spec-kit/ars-claims-service/internal/worker"
	"github.com/spec-kit/ars-claims-service/internal/workflow"
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

	redisConn := persistence.NewRedis(cfg.Redis, logger)
	defer redisConn.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	contractRepo := repository.NewContractRepository(pool)
	bordereauRepo := repository.NewBordereauRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)
	reclamationRepo := repository.NewReclamationRepository(pool)
	virementRepo := repository.NewVirementRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	profiles := workflow.DefaultProfiles()
	for role, profile := range profiles {
		if profile.DefaultCapacity == 0 {
			profile.DefaultCapacity = cfg.Workflow.DefaultCapacity
			profiles[role] = profile
		}
	}
	workflowOpts := workflow.Options{CriticalMultiplier: cfg.Workflow.CriticalMultiplier}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	userService := service.NewUserService(*cfg, userRepo)
	clientService := service.NewClientService(clientRepo, contractRepo)
	bordereauService := service.NewBordereauService(service.BordereauDependencies{
		BordereauRepo:  bordereauRepo,
		DocumentRepo:   documentRepo,
		ClientRepo:     clientRepo,
		ContractRepo:   contractRepo,
		HistoryRepo:    historyRepo,
		Dispatcher:     dispatcher,
		DefaultSLADays: cfg.Workflow.DefaultSLADays,
	})
	documentService := service.NewDocumentService(service.DocumentDependencies{
		DocumentRepo:  documentRepo,
		BordereauRepo: bordereauRepo,
		Dispatcher:    dispatcher,
	})
	corbeilleService := service.NewCorbeilleService(service.CorbeilleDependencies{
		BordereauRepo: bordereauRepo,
		DocumentRepo:  documentRepo,
		UserRepo:      userRepo,
		ClientRepo:    clientRepo,
		ContractRepo:  contractRepo,
		Profiles:      profiles,
		Cache:         redisConn.Client,
		CacheTTL:      cfg.Workflow.StatsCacheTTL(),
		Options:       workflowOpts,
		Logger:        logger,
	})
	capacityService := service.NewCapacityService(service.CapacityDependencies{
		UserRepo:      userRepo,
		BordereauRepo: bordereauRepo,
		DocumentRepo:  documentRepo,
		AlertRepo:     alertRepo,
		Profiles:      profiles,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
	})
	reclamationService := service.NewReclamationService(service.ReclamationDependencies{
		ReclamationRepo: reclamationRepo,
		ClientRepo:      clientRepo,
		BordereauRepo:   bordereauRepo,
		Dispatcher:      dispatcher,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		UserRepo:        userRepo,
		ReclamationRepo: reclamationRepo,
		AlertRepo:       alertRepo,
		Corbeilles:      corbeilleService,
		Profiles:        profiles,
		Logger:          logger,
	})
	virementService := service.NewVirementService(service.VirementDependencies{
		VirementRepo:  virementRepo,
		BordereauRepo: bordereauRepo,
		HistoryRepo:   historyRepo,
		Dispatcher:    dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	capacityWorker := worker.NewCapacityWorker(capacityService, redisConn.Client, cfg.Workflow.CapacityCheckInterval(), workflowOpts, logger)
	go capacityWorker.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisConn),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Clients:        handlers.NewClientsHandler(clientService),
		Bordereaux:     handlers.NewBordereauxHandler(bordereauService, corbeilleService, userService),
		Documents:      handlers.NewDocumentsHandler(documentService),
		Corbeille:      handlers.NewCorbeilleHandler(corbeilleService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Alerts:         handlers.NewAlertsHandler(capacityService),
		Reclamations:   handlers.NewReclamationsHandler(reclamationService),
		Virements:      handlers.NewVirementsHandler(virementService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
