// Package queue collects players until a full roster is available and hands
// it to the match lifecycle.
package queue

import (
	"context"
	"errors"
	"fmt"
	"matchbot/internal/config"
	"matchbot/internal/domain"
	"matchbot/internal/metrics"
	"slices"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const matchIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	ErrAlreadyQueued = errors.New("already queued")
	ErrNotQueued     = errors.New("not queued")
	ErrInMatch       = errors.New("already in a match")
)

type Entry struct {
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

type Users interface {
	Ensure(ctx context.Context, userID string, mmr int) error
}

type Matches interface {
	Create(ctx context.Context, matchID string, userIDs []string) (*domain.Match, error)
	ActiveMatch(ctx context.Context, userID string) (string, error)
}

// Starter runs the lifecycle of a newly created match.
type Starter interface {
	Start(ctx context.Context, matchID string) error
}

type Queue struct {
	cfg     *config.Config
	users   Users
	matches Matches
	starter Starter
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu      sync.Mutex
	entries []Entry
}

func New(cfg *config.Config, users Users, matches Matches, starter Starter, m *metrics.Metrics, logger zerolog.Logger) *Queue {
	return &Queue{
		cfg:     cfg,
		users:   users,
		matches: matches,
		starter: starter,
		metrics: m,
		logger:  logger,
	}
}

// Join adds the user to the queue. When the queue holds a full roster the
// longest-waiting players are popped into a new match, whose id is returned.
// Players of an unfinished match cannot queue.
func (q *Queue) Join(ctx context.Context, userID string) (string, error) {
	active, err := q.matches.ActiveMatch(ctx, userID)
	if err != nil {
		return "", err
	}
	if active != "" {
		return "", fmt.Errorf("%w %s", ErrInMatch, active)
	}
	if err := q.users.Ensure(ctx, userID, q.cfg.DefaultMMR); err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	q.mu.Lock()
	if lo.ContainsBy(q.entries, func(e Entry) bool { return e.UserID == userID }) {
		q.mu.Unlock()
		return "", ErrAlreadyQueued
	}
	q.entries = append(q.entries, Entry{UserID: userID, JoinedAt: time.Now()})
	q.logger.Info().Str("user_id", userID).Int("size", len(q.entries)).Msg("player joined queue")

	var roster []Entry
	if len(q.entries) >= q.cfg.RosterSize() {
		roster = slices.Clone(q.entries[:q.cfg.RosterSize()])
		q.entries = slices.Delete(q.entries, 0, q.cfg.RosterSize())
	}
	q.metrics.QueueSize(len(q.entries))
	q.mu.Unlock()

	if roster == nil {
		return "", nil
	}
	return q.pop(ctx, roster)
}

// pop creates the match for the roster. On failure the players go back to
// the front of the queue.
func (q *Queue) pop(ctx context.Context, roster []Entry) (string, error) {
	userIDs := lo.Map(roster, func(e Entry, _ int) string { return e.UserID })

	matchID, err := gonanoid.Generate(matchIDAlphabet, 8)
	if err != nil {
		q.requeue(roster)
		return "", fmt.Errorf("failed to generate match id: %w", err)
	}
	if _, err := q.matches.Create(ctx, matchID, userIDs); err != nil {
		q.requeue(roster)
		return "", fmt.Errorf("failed to create match: %w", err)
	}
	q.logger.Info().Str("match_id", matchID).Strs("players", userIDs).Msg("queue popped")

	if err := q.starter.Start(ctx, matchID); err != nil {
		return matchID, fmt.Errorf("failed to start match %s: %w", matchID, err)
	}
	return matchID, nil
}

func (q *Queue) requeue(roster []Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	fresh := lo.Filter(q.entries, func(e Entry, _ int) bool {
		return !lo.ContainsBy(roster, func(r Entry) bool { return r.UserID == e.UserID })
	})
	q.entries = append(slices.Clone(roster), fresh...)
	q.metrics.QueueSize(len(q.entries))
}

func (q *Queue) Leave(ctx context.Context, userID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := slices.IndexFunc(q.entries, func(e Entry) bool { return e.UserID == userID })
	if idx < 0 {
		return ErrNotQueued
	}
	q.entries = slices.Delete(q.entries, idx, idx+1)
	q.metrics.QueueSize(len(q.entries))
	q.logger.Info().Str("user_id", userID).Int("size", len(q.entries)).Msg("player left queue")
	return nil
}

// Snapshot returns the queue in join order.
func (q *Queue) Snapshot() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.entries)
}
