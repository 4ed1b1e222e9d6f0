package main

import (
	"context"
	"log/slog"
	"os"

	"refugis/config"
	"refugis/internal/delivery"
	"refugis/internal/delivery/api"
	"refugis/internal/delivery/api/middleware"
	"refugis/internal/delivery/api/router/handler"
	"refugis/internal/domain/constants"
	"refugis/internal/infra/auth"
	"refugis/internal/infra/cache"
	"refugis/internal/infra/firebase"
	logs "refugis/internal/infra/log"
	"refugis/internal/infra/persistence/firestore"
	"refugis/internal/infra/persistence/memory"
	"refugis/internal/infra/pubsub"
	"refugis/internal/infra/storage"
	"refugis/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	// Backends are chosen before the graph is built, so config is loaded up front.
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		injectInfra(cfg),
		injectRepo(cfg),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra(cfg *config.Config) fx.Option {
	opts := []fx.Option{
		fx.Provide(
			logs.New,
			context.Background,
		),
	}

	if needsFirebase(cfg) {
		opts = append(opts, fx.Provide(firebase.NewApp))
	}

	return fx.Options(opts...)
}

// needsFirebase reports whether any configured backend talks to Firebase.
func needsFirebase(cfg *config.Config) bool {
	if cfg.Database == nil || cfg.Database.Provider != constants.DatabaseProviderMemory {
		return true
	}

	return cfg.Auth == nil || cfg.Auth.Provider != constants.AuthProviderJWT
}

func injectRepo(cfg *config.Config) fx.Option {
	if cfg.Database != nil && cfg.Database.Provider == constants.DatabaseProviderMemory {
		return fx.Options(
			fx.Provide(
				memory.NewStore,
				memory.NewShelterRepository,
				memory.NewProposalRepository,
				memory.NewCoordinateIndexRepository,
				memory.NewDoubtRepository,
				memory.NewExperienceRepository,
				memory.NewRenovationRepository,
			),
		)
	}

	return fx.Options(
		fx.Provide(
			firestore.New,
			firestore.NewShelterRepository,
			firestore.NewProposalRepository,
			firestore.NewCoordinateIndexRepository,
			firestore.NewDoubtRepository,
			firestore.NewExperienceRepository,
			firestore.NewRenovationRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			storage.NewMediaStorage,
			cache.NewCache,
			pubsub.NewEventPublisher,
			auth.NewIdentityVerifier,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewModerationService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewProposalHandler,
			handler.NewAdminHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
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

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
