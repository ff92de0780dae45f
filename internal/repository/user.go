package repository

import (
	"context"
	"database/sql"
	"fmt"
	"matchbot/internal/db"
	"matchbot/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

type UserRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewUserRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *UserRepository {
	return &UserRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Ensure creates the user with the starting rating if they do not exist yet.
func (r *UserRepository) Ensure(ctx context.Context, userID string, mmr int) error {
	now := time.Now()
	return r.queries.EnsureUser(ctx, db.EnsureUserParams{
		UserID:    userID,
		Mmr:       int64(mmr),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (r *UserRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := r.queries.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &domain.User{
		UserID:    u.UserID,
		MMR:       int(u.Mmr),
		Region:    u.Region,
		Wins:      int(u.Wins),
		Losses:    int(u.Losses),
		Abandons:  int(u.Abandons),
		Games:     int(u.Games),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func (r *UserRepository) SetRegion(ctx context.Context, userID, region string) error {
	return r.queries.SetUserRegion(ctx, db.SetUserRegionParams{
		Region:    region,
		UpdatedAt: time.Now(),
		UserID:    userID,
	})
}

func (r *UserRepository) LinkPlatform(ctx context.Context, userID, platformID string) error {
	if err := r.queries.LinkPlatformAccount(ctx, db.LinkPlatformAccountParams{
		PlatformID: platformID,
		UserID:     userID,
	}); err != nil {
		return fmt.Errorf("failed to link platform account %s: %w", platformID, err)
	}
	r.logger.Debug().Str("user_id", userID).Str("platform_id", platformID).Msg("platform account linked")
	return nil
}

func (r *UserRepository) UserIDForPlatform(ctx context.Context, platformID string) (string, error) {
	userID, err := r.queries.GetUserIDByPlatformID(ctx, platformID)
	if err != nil {
		return "", notFound(err)
	}
	return userID, nil
}

// MatchPlatformAccounts maps every platform id linked to a player of the match to its user id.
func (r *UserRepository) MatchPlatformAccounts(ctx context.Context, matchID string) (map[string]string, error) {
	rows, err := r.queries.ListMatchPlatformAccounts(ctx, matchID)
	if err != nil {
		return nil, err
	}
	accounts := make(map[string]string, len(rows))
	for _, row := range rows {
		accounts[row.PlatformID] = row.UserID
	}
	return accounts, nil
}
