package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"matchbot/internal/db"
	"matchbot/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Create inserts the match and its roster in one transaction.
func (r *MatchRepository) Create(ctx context.Context, matchID string, userIDs []string) (*domain.Match, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	now := time.Now()
	if err := qtx.CreateMatch(ctx, db.CreateMatchParams{
		MatchID:   matchID,
		State:     int64(domain.StateNotStarted),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to create match %s: %w", matchID, err)
	}

	for _, userID := range userIDs {
		if err := qtx.AddMatchPlayer(ctx, db.AddMatchPlayerParams{
			MatchID: matchID,
			UserID:  userID,
		}); err != nil {
			return nil, fmt.Errorf("failed to add player %s to match %s: %w", userID, matchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info().Str("match_id", matchID).Int("players", len(userIDs)).Msg("match created")
	return &domain.Match{
		MatchID:   matchID,
		State:     domain.StateNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *MatchRepository) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	m, err := r.queries.GetMatch(ctx, matchID)
	if err != nil {
		return nil, notFound(err)
	}
	return toDomainMatch(m), nil
}

// ActiveMatch returns the incomplete match the user plays in, or "" if none.
func (r *MatchRepository) ActiveMatch(ctx context.Context, userID string) (string, error) {
	matchID, err := r.queries.ActiveMatchForUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find active match for %s: %w", userID, err)
	}
	return matchID, nil
}

func (r *MatchRepository) ListIncomplete(ctx context.Context) ([]*domain.Match, error) {
	rows, err := r.queries.ListIncompleteMatches(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]*domain.Match, len(rows))
	for i, m := range rows {
		matches[i] = toDomainMatch(m)
	}
	return matches, nil
}

func (r *MatchRepository) SetState(ctx context.Context, matchID string, state domain.MatchState) error {
	err := r.queries.UpdateMatchState(ctx, db.UpdateMatchStateParams{
		State:     int64(state),
		UpdatedAt: time.Now(),
		MatchID:   matchID,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("match_id", matchID).Str("state", state.String()).Msg("failed to persist match state")
		return fmt.Errorf("failed to set state %s: %w", state, err)
	}
	return nil
}

// Save writes every mutable match field except state.
func (r *MatchRepository) Save(ctx context.Context, m *domain.Match) error {
	m.UpdatedAt = time.Now()
	return r.queries.UpdateMatch(ctx, toUpdateParams(m))
}

func (r *MatchRepository) Players(ctx context.Context, matchID string) ([]domain.Player, error) {
	rows, err := r.queries.ListMatchPlayers(ctx, matchID)
	if err != nil {
		return nil, err
	}
	players := make([]domain.Player, len(rows))
	for i, p := range rows {
		players[i] = domain.Player{
			MatchID:  p.MatchID,
			UserID:   p.UserID,
			Team:     domain.Team(p.Team),
			Accepted: p.Accepted,
			MMR:      int(p.Mmr),
			Region:   p.Region,
		}
	}
	return players, nil
}

// Accept marks the player accepted. It reports false when the player was
// already accepted or is not part of the match.
func (r *MatchRepository) Accept(ctx context.Context, matchID, userID string) (bool, error) {
	n, err := r.queries.SetPlayerAccepted(ctx, db.SetPlayerAcceptedParams{
		MatchID: matchID,
		UserID:  userID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to accept player %s: %w", userID, err)
	}
	return n == 1, nil
}

// AssignTeams persists the split and both team averages together.
func (r *MatchRepository) AssignTeams(ctx context.Context, m *domain.Match, teams map[string]domain.Team, aMMR, bMMR float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for userID, team := range teams {
		if err := qtx.SetPlayerTeam(ctx, db.SetPlayerTeamParams{
			Team:    string(team),
			MatchID: m.MatchID,
			UserID:  userID,
		}); err != nil {
			return fmt.Errorf("failed to set team for %s: %w", userID, err)
		}
	}

	m.AMMR, m.BMMR = aMMR, bMMR
	m.UpdatedAt = time.Now()
	if err := qtx.UpdateMatch(ctx, toUpdateParams(m)); err != nil {
		return fmt.Errorf("failed to store team ratings: %w", err)
	}

	return tx.Commit()
}

func toUpdateParams(m *domain.Match) db.UpdateMatchParams {
	return db.UpdateMatchParams{
		AMmr:            m.AMMR,
		BMmr:            m.BMMR,
		Map:             m.Map,
		ABans:           joinList(m.ABans),
		BBans:           joinList(m.BBans),
		BSide:           string(m.BSide),
		ServerID:        m.ServerID,
		Pin:             m.Pin,
		ThreadID:        m.ThreadID,
		AcceptMessageID: m.AcceptMessageID,
		AVcID:           m.AVoiceID,
		BVcID:           m.BVoiceID,
		AThreadID:       m.AThreadID,
		BThreadID:       m.BThreadID,
		AScore:          int64(m.AScore),
		BScore:          int64(m.BScore),
		Complete:        m.Complete,
		Abandoned:       m.Abandoned,
		UpdatedAt:       m.UpdatedAt,
		MatchID:         m.MatchID,
	}
}

func toDomainMatch(m db.Match) *domain.Match {
	return &domain.Match{
		MatchID:         m.MatchID,
		State:           domain.MatchState(m.State),
		AMMR:            m.AMmr,
		BMMR:            m.BMmr,
		Map:             m.Map,
		ABans:           splitList(m.ABans),
		BBans:           splitList(m.BBans),
		BSide:           domain.Side(m.BSide),
		ServerID:        m.ServerID,
		Pin:             m.Pin,
		ThreadID:        m.ThreadID,
		AcceptMessageID: m.AcceptMessageID,
		AVoiceID:        m.AVcID,
		BVoiceID:        m.BVcID,
		AThreadID:       m.AThreadID,
		BThreadID:       m.BThreadID,
		AScore:          int(m.AScore),
		BScore:          int(m.BScore),
		Complete:        m.Complete,
		Abandoned:       m.Abandoned,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
