package main

import (
	"context"
	"log/slog"
	"os"

	"piquante/config"
	"piquante/internal/delivery"
	"piquante/internal/delivery/http"
	"piquante/internal/delivery/http/middleware"
	"piquante/internal/delivery/http/router/handler"
	"piquante/internal/domain/service"
	"piquante/internal/infra/auth"
	logs "piquante/internal/infra/log"
	"piquante/internal/infra/persistence/memory"
	"piquante/internal/infra/persistence/postgres"
	"piquante/internal/infra/ratelimit"
	"piquante/internal/infra/storage"
	"piquante/internal/usecase/impl"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", slog.Any("error", err))
	}

	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		injectInfra(),
		injectRepo(cfg),
		injectService(cfg),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		logs.New,
		context.Background,
		storage.New,
	)
}

// injectRepo binds the repositories of the configured storage driver.
func injectRepo(cfg *config.Config) fx.Option {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		return fx.Provide(
			memory.NewStore,
			memory.NewUserRepository,
			memory.NewSauceRepository,
			memory.NewTransactionManager,
		)
	}

	return fx.Provide(
		postgres.New,
		postgres.NewUserRepository,
		postgres.NewSauceRepository,
		postgres.NewTransactionManager,
	)
}

func injectService(cfg *config.Config) fx.Option {
	options := []fx.Option{
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			auth.NewHMACPseudonymizer,
			newImageStore,
			newImageOpener,
		),
	}

	if cfg.LoginLimit.Backend == config.LimiterBackendRedis {
		options = append(options, fx.Provide(
			ratelimit.NewRedisClient,
			fx.Annotate(ratelimit.NewRedisLimiter, fx.As(new(service.LoginLimiter))),
		))
	} else {
		options = append(options, fx.Provide(
			fx.Annotate(ratelimit.NewMemoryLimiter, fx.As(new(service.LoginLimiter))),
		))
	}

	return fx.Options(options...)
}

func newImageStore(s *storage.BlobImageStore) service.ImageStore { return s }

func newImageOpener(s *storage.BlobImageStore) handler.ImageOpener { return s }

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUserService,
			impl.NewSauceService,
			impl.NewVoteService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewLoginLimitMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewUserHandler,
			handler.NewSauceHandler,
			handler.NewImageHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
