package fx

import (
	"matchbot/internal/balance"
	"matchbot/internal/config"
	"matchbot/internal/database"
	"matchbot/internal/draft"
	"matchbot/internal/lifecycle"
	"matchbot/internal/logger"
	"matchbot/internal/metrics"
	"matchbot/internal/notify"
	"matchbot/internal/presentation"
	"matchbot/internal/queue"
	"matchbot/internal/rcon"
	"matchbot/internal/repository"
	"matchbot/internal/server"
	"matchbot/internal/serverpool"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvidePresenter(d *presentation.Discord) presentation.Presenter {
	return d
}

func ProvideServerPool(servers *repository.ServerRepository, registry *rcon.Registry, logger zerolog.Logger) *serverpool.Pool {
	return serverpool.New(servers, registry, logger)
}

func ProvideQueue(cfg *config.Config, users *repository.UserRepository, matches *repository.MatchRepository, mgr *lifecycle.Manager, m *metrics.Metrics, logger zerolog.Logger) *queue.Queue {
	return queue.New(cfg, users, matches, mgr, m, logger)
}

func ProvideAdminServer(mgr *lifecycle.Manager, matches *repository.MatchRepository, pool *serverpool.Pool, q *queue.Queue, m *metrics.Metrics, logger zerolog.Logger) *server.AdminServer {
	return server.NewAdminServer(mgr, matches, pool, q, m, logger)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(repository.ProvideQueries),
	fx.Provide(metrics.New),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewVoteRepository),
	fx.Provide(repository.NewServerRepository),
	fx.Provide(repository.NewStatsRepository),
	// game servers
	fx.Provide(rcon.NewRegistry),
	fx.Provide(ProvideServerPool),
	// match engines
	fx.Provide(balance.NewRandom),
	fx.Provide(draft.NewRandom),
	// chat
	fx.Provide(presentation.NewDiscord),
	fx.Provide(ProvidePresenter),
	fx.Provide(notify.NewResultsWebhook),
	// orchestration
	fx.Provide(lifecycle.NewManager),
	fx.Provide(ProvideQueue),
	// admin api
	fx.Provide(ProvideAdminServer),
)
