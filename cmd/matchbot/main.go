package main

import (
	"context"
	"database/sql"
	"fmt"
	"matchbot/internal/config"
	"matchbot/internal/constants"
	fxmodules "matchbot/internal/fx"
	"matchbot/internal/lifecycle"
	"matchbot/internal/presentation"
	"matchbot/internal/queue"
	"matchbot/internal/rcon"
	"matchbot/internal/repository"
	"matchbot/internal/server"
	"matchbot/internal/serverpool"
	"net/http"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runAdminServer),
		fx.Invoke(runBot),
	).Run()
}

func runBot(
	lc fx.Lifecycle,
	cfg *config.Config,
	discord *presentation.Discord,
	mgr *lifecycle.Manager,
	q *queue.Queue,
	users *repository.UserRepository,
	pool *serverpool.Pool,
	registry *rcon.Registry,
	logger zerolog.Logger,
) {
	discord.Route(presentation.Routes{
		Matches:  mgr,
		Queue:    q,
		Profiles: users,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			n, err := pool.Sync(ctx, cfg.ServersFile)
			if err != nil {
				return fmt.Errorf("failed to sync servers: %w", err)
			}
			logger.Info().Int("servers", n).Str("file", cfg.ServersFile).Msg("server pool synced")

			if err := discord.Open(); err != nil {
				return err
			}
			return mgr.Resume(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("stopping match lifecycles")
			if err := mgr.Stop(ctx); err != nil {
				logger.Warn().Err(err).Msg("lifecycles did not stop in time")
			}
			registry.Close()
			if err := discord.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing discord session")
			}
			return nil
		},
	})
}

func runAdminServer(
	lc fx.Lifecycle,
	admin *server.AdminServer,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.AdminPort),
		Handler: admin.Handler(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("admin server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("admin server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down admin server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("admin server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("admin server stopped gracefully")
			return nil
		},
	})
}
