package repository

import (
	"context"
	"database/sql"
	"fmt"
	"matchbot/internal/db"
	"matchbot/internal/domain"

	"github.com/rs/zerolog"
)

type ServerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewServerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ServerRepository {
	return &ServerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *ServerRepository) UpsertBatch(ctx context.Context, servers []domain.RconServer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for _, s := range servers {
		if err := qtx.UpsertServer(ctx, db.UpsertServerParams{
			Name:     s.Name,
			Host:     s.Host,
			Port:     int64(s.Port),
			Password: s.Password,
			Region:   s.Region,
		}); err != nil {
			return fmt.Errorf("failed to upsert server %s: %w", s.Name, err)
		}
	}

	return tx.Commit()
}

func (r *ServerRepository) Get(ctx context.Context, serverID int64) (*domain.RconServer, error) {
	s, err := r.queries.GetServer(ctx, serverID)
	if err != nil {
		return nil, notFound(err)
	}
	server := toDomainServer(s)
	return &server, nil
}

func (r *ServerRepository) List(ctx context.Context) ([]domain.RconServer, error) {
	rows, err := r.queries.ListServers(ctx)
	if err != nil {
		return nil, err
	}
	return toDomainServers(rows), nil
}

func (r *ServerRepository) ListFree(ctx context.Context) ([]domain.RconServer, error) {
	rows, err := r.queries.ListFreeServers(ctx)
	if err != nil {
		return nil, err
	}
	return toDomainServers(rows), nil
}

// Reserve claims the server for the match with a single conditional update.
// It reports false if another match holds it.
func (r *ServerRepository) Reserve(ctx context.Context, serverID int64, matchID string) (bool, error) {
	n, err := r.queries.ReserveServer(ctx, db.ReserveServerParams{
		MatchID:  &matchID,
		ServerID: serverID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to reserve server %d: %w", serverID, err)
	}
	return n == 1, nil
}

// ReleaseFor frees the server only while the match still holds it. It
// reports false if the server is free or held by another match.
func (r *ServerRepository) ReleaseFor(ctx context.Context, serverID int64, matchID string) (bool, error) {
	n, err := r.queries.ReleaseServerForMatch(ctx, db.ReleaseServerForMatchParams{
		ServerID: serverID,
		MatchID:  &matchID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to release server %d: %w", serverID, err)
	}
	return n == 1, nil
}

func (r *ServerRepository) Release(ctx context.Context, serverID int64) error {
	if err := r.queries.ReleaseServer(ctx, serverID); err != nil {
		return fmt.Errorf("failed to release server %d: %w", serverID, err)
	}
	return nil
}

func toDomainServers(rows []db.RconServer) []domain.RconServer {
	servers := make([]domain.RconServer, len(rows))
	for i, s := range rows {
		servers[i] = toDomainServer(s)
	}
	return servers
}

func toDomainServer(s db.RconServer) domain.RconServer {
	server := domain.RconServer{
		ServerID:  s.ServerID,
		Name:      s.Name,
		Host:      s.Host,
		Port:      int(s.Port),
		Password:  s.Password,
		Region:    s.Region,
		BeingUsed: s.BeingUsed,
	}
	if s.MatchID != nil {
		server.MatchID = *s.MatchID
	}
	return server
}
