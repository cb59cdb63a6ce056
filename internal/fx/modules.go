package fx

import (
	"showdown-vote/internal/config"
	"showdown-vote/internal/database"
	"showdown-vote/internal/logger"
	"showdown-vote/internal/metrics"
	"showdown-vote/internal/repository"
	"showdown-vote/internal/server"
	"showdown-vote/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	metrics.Module,
	// repos
	fx.Provide(repository.NewContestRepository),
	fx.Provide(repository.NewShowdownRepository),
	fx.Provide(repository.NewCoupleRepository),
	fx.Provide(repository.NewDancerRepository),
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewVoteRepository),
	fx.Provide(repository.NewAppStateRepository),
	fx.Provide(repository.NewSnapshotRepository),
	// svc
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewViewService),
	fx.Provide(service.NewVoteService),
	fx.Provide(service.NewUserService),
	// server
	fx.Provide(server.NewServer),
)
