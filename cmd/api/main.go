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

	httptransport "github.com/partyplanning/console/internal/api/http"
	"github.com/partyplanning/console/internal/api/http/handlers"
	"github.com/partyplanning/console/internal/auth"
	"github.com/partyplanning/console/internal/config"
	"github.com/partyplanning/console/internal/credentials"
	"github.com/partyplanning/console/internal/events"
	"github.com/partyplanning/console/internal/observability"
	"github.com/partyplanning/console/internal/persistence"
	"github.com/partyplanning/console/internal/service"
	"github.com/partyplanning/console/internal/session"
	"github.com/partyplanning/console/internal/sidechannel"
	"github.com/partyplanning/console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redis *persistence.Redis
	if cfg.Session.Backend == config.BackendRedis {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
	}

	verifier, err := buildVerifier(ctx, cfg, pg, logger)
	if err != nil {
		logger.Fatal("failed to build credential verifier", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, cfg.Audit))

	// The side channel must be ready before Restore runs.
	store := session.NewStore(session.Options{
		Verifier:      verifier,
		SideChannel:   buildSideChannel(cfg, pg, redis),
		Tokens:        auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTLMinutes),
		Keys:          sidechannel.DefaultKeys(cfg.Session.KeyPrefix),
		VerifyTimeout: cfg.Auth.VerifyTimeout(),
		Logger:        logger.Named("session"),
		Events:        dispatcher,
		Metrics:       metrics,
	})
	defer store.Close()

	restored := store.Restore(ctx)
	logger.Info("session initialized", zap.String("status", string(restored.Status)))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	deps := map[string]handlers.Pinger{}
	if pg.Enabled() {
		deps["postgres"] = pg
	}
	if redis != nil {
		deps["redis"] = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Auth:     handlers.NewAuthHandler(store, handlers.NewRequestValidator()),
		Views:    handlers.NewViewsHandler(),
		Sessions: store,
		Metrics:  metrics,
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

func buildVerifier(ctx context.Context, cfg *config.Config, pg *persistence.Postgres, logger *zap.Logger) (credentials.Verifier, error) {
	var seed []credentials.Account
	if cfg.Auth.SeedDemoAccounts {
		accounts, err := credentials.DemoAccounts(cfg.Auth.BcryptCost)
		if err != nil {
			return nil, err
		}
		seed = accounts
	}

	if cfg.Auth.AccountsBackend != config.BackendPostgres {
		return credentials.NewDirectory(cfg.Auth.MockLatency(), seed...), nil
	}

	repo := credentials.NewAccountRepository(pg.PoolHandle())
	created, err := credentials.Seed(ctx, repo, seed)
	if err != nil {
		return nil, err
	}
	logger.Info("account directory ready", zap.Int("seeded", created))
	return credentials.NewRepositoryVerifier(repo), nil
}

func buildSideChannel(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis) sidechannel.Store {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		return sidechannel.NewRedis(redis.Client, time.Duration(cfg.Auth.SessionTTLMinutes)*time.Minute)
	case config.BackendPostgres:
		return sidechannel.NewPostgres(pg.PoolHandle())
	default:
		return sidechannel.NewMemory()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
