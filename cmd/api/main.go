package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/embed-service/internal/api/http"
	"github.com/spec-kit/embed-service/internal/api/http/handlers"
	"github.com/spec-kit/embed-service/internal/auth"
	"github.com/spec-kit/embed-service/internal/config"
	"github.com/spec-kit/embed-service/internal/events"
	"github.com/spec-kit/embed-service/internal/observability"
	"github.com/spec-kit/embed-service/internal/persistence"
	"github.com/spec-kit/embed-service/internal/repository"
	"github.com/spec-kit/embed-service/internal/service"
	"github.com/spec-kit/embed-service/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	collaboratorRepo := repository.NewCollaboratorRepository(pool)
	embedConfigRepo := repository.NewEmbedConfigRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	embedCache := service.NewEmbedSnapshotCache(redis, cfg.Embed.CacheTTL(), logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	projectService := service.NewProjectService(service.ProjectDependencies{
		ProjectRepo:      projectRepo,
		CollaboratorRepo: collaboratorRepo,
		ConfigRepo:       embedConfigRepo,
		ActivityRepo:     activityRepo,
		Cache:            embedCache,
		Dispatcher:       dispatcher,
	})
	collaboratorService := service.NewCollaboratorService(service.CollaboratorDependencies{
		ProjectRepo:      projectRepo,
		CollaboratorRepo: collaboratorRepo,
		UserRepo:         userRepo,
		ActivityRepo:     activityRepo,
		Dispatcher:       dispatcher,
	})
	embedService := service.NewEmbedService(service.EmbedDependencies{
		ProjectRepo:      projectRepo,
		CollaboratorRepo: collaboratorRepo,
		ConfigRepo:       embedConfigRepo,
		ActivityRepo:     activityRepo,
		Cache:            embedCache,
		Dispatcher:       dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Projects:       handlers.NewProjectsHandler(projectService),
		Collaborators:  handlers.NewCollaboratorsHandler(collaboratorService),
		Embed:          handlers.NewEmbedHandler(embedService, metrics),
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
