package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/yashitanamdeo/janmat-sub001/internal/api/http"
	"github.com/yashitanamdeo/janmat-sub001/internal/api/http/handlers"
	"github.com/yashitanamdeo/janmat-sub001/internal/assignment"
	"github.com/yashitanamdeo/janmat-sub001/internal/auth"
	"github.com/yashitanamdeo/janmat-sub001/internal/config"
	"github.com/yashitanamdeo/janmat-sub001/internal/events"
	"github.com/yashitanamdeo/janmat-sub001/internal/observability"
	"github.com/yashitanamdeo/janmat-sub001/internal/persistence"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository/memory"
	"github.com/yashitanamdeo/janmat-sub001/internal/service"
	"github.com/yashitanamdeo/janmat-sub001/internal/worker"
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

	var store repository.Store
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pool)
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store = memory.NewStore()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	locker := redis.Locker(ctx, cfg.QuickActions.LockKeyPrefix, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	repos := store.Repos()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     repos.Users,
		TokenManager: tokens,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	feedbackService := service.NewFeedbackService(service.FeedbackDependencies{
		Store:  store,
		Logger: logger,
	})
	quickActions := service.NewQuickActionService(service.QuickActionDependencies{
		Store:      store,
		Locker:     locker,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		Thresholds: assignment.Thresholds{
			EscalateAfter: cfg.QuickActions.EscalateAfter(),
			ArchiveAfter:  cfg.QuickActions.ArchiveAfter(),
		},
		LockTTL: cfg.QuickActions.LockTTL(),
	})
	notificationService := service.NewNotificationService(repos.Notifications, dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Admin:          handlers.NewAdminHandler(adminService),
		QuickActions:   handlers.NewQuickActionsHandler(quickActions),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Feedback:       handlers.NewFeedbackHandler(feedbackService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.Users),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
