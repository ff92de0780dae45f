package repository

import (
	"context"
	"database/sql"
	"fmt"
	"matchbot/internal/db"
	"matchbot/internal/domain"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type VoteRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewVoteRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *VoteRepository {
	return &VoteRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Cast stores the vote, replacing any earlier vote by the same user in the phase.
func (r *VoteRepository) Cast(ctx context.Context, vote domain.Vote) error {
	id := vote.VoteID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}
	createdAt := vote.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if err := r.queries.UpsertVote(ctx, db.UpsertVoteParams{
		VoteID:    id,
		MatchID:   vote.MatchID,
		UserID:    vote.UserID,
		Phase:     string(vote.Phase),
		Choice:    vote.Choice,
		CreatedAt: createdAt,
	}); err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

func (r *VoteRepository) Choices(ctx context.Context, matchID string, phase domain.VotePhase) ([]string, error) {
	return r.queries.ListVoteChoices(ctx, db.ListVoteChoicesParams{
		MatchID: matchID,
		Phase:   string(phase),
	})
}
