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

type StatsRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewStatsRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Settlement is the final outcome recorded for one player.
type Settlement struct {
	MMRChange    int
	Win          bool
	Abandoned    bool
	RoundsPlayed int
}

// Ensure creates the stats row on first sighting; existing rows are untouched.
func (r *StatsRepository) Ensure(ctx context.Context, matchID, userID string, mmrBefore int, ctStart bool) error {
	return r.queries.CreateStats(ctx, db.CreateStatsParams{
		MatchID:   matchID,
		UserID:    userID,
		MmrBefore: int64(mmrBefore),
		CtStart:   ctStart,
		UpdatedAt: time.Now(),
	})
}

func (r *StatsRepository) List(ctx context.Context, matchID string) ([]domain.MatchPlayerStats, error) {
	rows, err := r.queries.ListStats(ctx, matchID)
	if err != nil {
		return nil, err
	}
	stats := make([]domain.MatchPlayerStats, len(rows))
	for i, s := range rows {
		stats[i] = domain.MatchPlayerStats{
			MatchID:      s.MatchID,
			UserID:       s.UserID,
			Kills:        int(s.Kills),
			Deaths:       int(s.Deaths),
			Assists:      int(s.Assists),
			Score:        int(s.Score),
			MMRBefore:    int(s.MmrBefore),
			CTStart:      s.CtStart,
			Win:          s.Win,
			Abandoned:    s.Abandoned,
			RoundsPlayed: int(s.RoundsPlayed),
			UpdatedAt:    s.UpdatedAt,
		}
		if s.MmrChange != nil {
			change := int(*s.MmrChange)
			stats[i].MMRChange = &change
		}
	}
	return stats, nil
}

func (r *StatsRepository) UpdateLive(ctx context.Context, s *domain.MatchPlayerStats) error {
	return r.queries.UpdateLiveStats(ctx, db.UpdateLiveStatsParams{
		Kills:        int64(s.Kills),
		Deaths:       int64(s.Deaths),
		Assists:      int64(s.Assists),
		Score:        int64(s.Score),
		RoundsPlayed: int64(s.RoundsPlayed),
		UpdatedAt:    time.Now(),
		MatchID:      s.MatchID,
		UserID:       s.UserID,
	})
}

// Settle records the rating change and applies it to the user in one
// transaction. A player already settled for the match is left alone and
// Settle reports false.
func (r *StatsRepository) Settle(ctx context.Context, matchID, userID string, s Settlement) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	now := time.Now()
	change := int64(s.MMRChange)
	n, err := qtx.SettleStats(ctx, db.SettleStatsParams{
		MmrChange:    &change,
		Win:          s.Win,
		Abandoned:    s.Abandoned,
		RoundsPlayed: int64(s.RoundsPlayed),
		UpdatedAt:    now,
		MatchID:      matchID,
		UserID:       userID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to settle stats for %s: %w", userID, err)
	}
	if n == 0 {
		r.logger.Debug().Str("match_id", matchID).Str("user_id", userID).Msg("player already settled")
		return false, nil
	}

	result := db.ApplyUserResultParams{
		MmrChange: change,
		UpdatedAt: now,
		UserID:    userID,
	}
	switch {
	case s.Abandoned:
		result.Abandons = 1
		result.Losses = 1
	case s.Win:
		result.Wins = 1
	default:
		result.Losses = 1
	}
	if err := qtx.ApplyUserResult(ctx, result); err != nil {
		return false, fmt.Errorf("failed to apply result for %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
