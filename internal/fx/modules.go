package fx

import (
	"gizmo/internal/api"
	"gizmo/internal/config"
	"gizmo/internal/database"
	"gizmo/internal/logger"
	"gizmo/internal/repository"
	"gizmo/internal/server"
	"gizmo/internal/service"

	"go.uber.org/fx"
)

// ClientsModule provides the upstream clients bound to the interfaces the
// services consume.
var ClientsModule = fx.Options(
	fx.Provide(
		fx.Annotate(api.NewBallchasingClient, fx.As(new(service.ReplayGateway))),
	),
	fx.Provide(
		api.NewSteamClient,
		func(c *api.SteamClient) service.VanityResolver { return c },
		func(c *api.SteamClient) service.SteamProfiles { return c },
	),
)

// ServicesModule is everything needed to answer a search, minus the audit log.
var ServicesModule = fx.Options(
	logger.Module,
	config.Module,
	ClientsModule,
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewSnapshotService),
	fx.Provide(service.NewHistoryService),
	fx.Provide(service.NewSearchService),
)

// StorageModule backs the audit log with sqlite.
var StorageModule = fx.Options(
	fx.Provide(database.New),
	fx.Provide(
		fx.Annotate(repository.NewSearchLogRepository, fx.As(new(service.SearchRecorder))),
	),
)

var Module = fx.Options(
	ServicesModule,
	StorageModule,
	// server
	fx.Provide(server.NewGizmoServer),
)
