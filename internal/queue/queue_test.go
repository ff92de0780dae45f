package queue

import (
	"context"
	"errors"
	"fmt"
	"matchbot/internal/config"
	"matchbot/internal/database"
	"matchbot/internal/db"
	"matchbot/internal/domain"
	"matchbot/internal/metrics"
	"matchbot/internal/repository"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStarter struct {
	mu      sync.Mutex
	started []string
	err     error
}

func (s *fakeStarter) Start(ctx context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, matchID)
	return s.err
}

type failingMatches struct{}

func (failingMatches) Create(ctx context.Context, matchID string, userIDs []string) (*domain.Match, error) {
	return nil, errors.New("disk full")
}

func (failingMatches) ActiveMatch(ctx context.Context, userID string) (string, error) {
	return "", nil
}

// slowUsers holds registration of one user until released.
type slowUsers struct {
	Users
	slow    string
	entered chan struct{}
	release chan struct{}
}

func (u *slowUsers) Ensure(ctx context.Context, userID string, mmr int) error {
	if userID == u.slow {
		close(u.entered)
		<-u.release
	}
	return u.Users.Ensure(ctx, userID, mmr)
}

type env struct {
	queue   *Queue
	users   *repository.UserRepository
	matches *repository.MatchRepository
	starter *fakeStarter
}

func newEnv(t *testing.T, teamSize int) *env {
	t.Helper()
	logger := zerolog.Nop()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "queue.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	q := db.New(sqlDB)
	e := &env{
		users:   repository.NewUserRepository(sqlDB, q, logger),
		matches: repository.NewMatchRepository(sqlDB, q, logger),
		starter: &fakeStarter{},
	}
	cfg := &config.Config{TeamSize: teamSize, DefaultMMR: 1000}
	e.queue = New(cfg, e.users, e.matches, e.starter, metrics.New(), logger)
	return e
}

func TestJoinPopsFullRoster(t *testing.T) {
	e := newEnv(t, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		matchID, err := e.queue.Join(ctx, fmt.Sprintf("p%d", i))
		require.NoError(t, err)
		assert.Empty(t, matchID)
	}
	assert.Len(t, e.queue.Snapshot(), 3)

	matchID, err := e.queue.Join(ctx, "p3")
	require.NoError(t, err)
	require.NotEmpty(t, matchID)

	assert.Empty(t, e.queue.Snapshot())
	assert.Equal(t, []string{matchID}, e.starter.started)

	players, err := e.matches.Players(ctx, matchID)
	require.NoError(t, err)
	require.Len(t, players, 4)
	for _, p := range players {
		assert.Equal(t, 1000, p.MMR)
		assert.False(t, p.Accepted)
	}
}

func TestJoinKeepsOverflowQueued(t *testing.T) {
	e := newEnv(t, 1)
	ctx := context.Background()

	_, err := e.queue.Join(ctx, "a")
	require.NoError(t, err)
	first, err := e.queue.Join(ctx, "b")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	_, err = e.queue.Join(ctx, "c")
	require.NoError(t, err)
	snapshot := e.queue.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "c", snapshot[0].UserID)
}

func TestJoinTwice(t *testing.T) {
	e := newEnv(t, 5)
	ctx := context.Background()

	_, err := e.queue.Join(ctx, "a")
	require.NoError(t, err)
	_, err = e.queue.Join(ctx, "a")
	assert.ErrorIs(t, err, ErrAlreadyQueued)
	assert.Len(t, e.queue.Snapshot(), 1)
}

func TestLeave(t *testing.T) {
	e := newEnv(t, 5)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := e.queue.Join(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, e.queue.Leave(ctx, "b"))
	assert.ErrorIs(t, e.queue.Leave(ctx, "b"), ErrNotQueued)

	snapshot := e.queue.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "a", snapshot[0].UserID)
	assert.Equal(t, "c", snapshot[1].UserID)
}

func TestFailedPopRequeues(t *testing.T) {
	e := newEnv(t, 1)
	ctx := context.Background()
	e.queue.matches = failingMatches{}

	_, err := e.queue.Join(ctx, "a")
	require.NoError(t, err)
	_, err = e.queue.Join(ctx, "b")
	require.Error(t, err)

	snapshot := e.queue.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "a", snapshot[0].UserID)
	assert.Equal(t, "b", snapshot[1].UserID)
	assert.Empty(t, e.starter.started)
}

func TestJoinRejectsPlayersInMatch(t *testing.T) {
	e := newEnv(t, 1)
	ctx := context.Background()

	_, err := e.queue.Join(ctx, "a")
	require.NoError(t, err)
	matchID, err := e.queue.Join(ctx, "b")
	require.NoError(t, err)
	require.NotEmpty(t, matchID)

	_, err = e.queue.Join(ctx, "a")
	assert.ErrorIs(t, err, ErrInMatch)
	assert.Contains(t, err.Error(), matchID)
	assert.Empty(t, e.queue.Snapshot())

	m, err := e.matches.Get(ctx, matchID)
	require.NoError(t, err)
	m.Complete = true
	require.NoError(t, e.matches.Save(ctx, m))

	_, err = e.queue.Join(ctx, "a")
	require.NoError(t, err, "finished match no longer blocks")
	assert.Len(t, e.queue.Snapshot(), 1)
}

func TestJoinRegistersOutsideLock(t *testing.T) {
	e := newEnv(t, 5)
	ctx := context.Background()
	users := &slowUsers{Users: e.users, slow: "slow", entered: make(chan struct{}), release: make(chan struct{})}
	e.queue.users = users

	done := make(chan error, 1)
	go func() {
		_, err := e.queue.Join(ctx, "slow")
		done <- err
	}()
	<-users.entered

	// the queue stays usable while a registration is in flight
	_, err := e.queue.Join(ctx, "fast")
	require.NoError(t, err)
	assert.NoError(t, e.queue.Leave(ctx, "fast"))

	close(users.release)
	require.NoError(t, <-done)
	snapshot := e.queue.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "slow", snapshot[0].UserID)
}
