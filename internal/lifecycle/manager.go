package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"matchbot/internal/balance"
	"matchbot/internal/config"
	"matchbot/internal/domain"
	"matchbot/internal/draft"
	"matchbot/internal/metrics"
	"matchbot/internal/notify"
	"matchbot/internal/presentation"
	"matchbot/internal/rcon"
	"matchbot/internal/repository"
	"matchbot/internal/serverpool"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config    *config.Config
	Matches   *repository.MatchRepository
	Users     *repository.UserRepository
	Votes     *repository.VoteRepository
	Stats     *repository.StatsRepository
	Pool      *serverpool.Pool
	Rcon      *rcon.Registry
	Balancer  *balance.Balancer
	Draft     *draft.Engine
	Presenter presentation.Presenter
	Results   *notify.ResultsWebhook
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
}

// Manager owns the running lifecycles. Tasks run on a context that ends at
// Stop, so shutdown leaves matches at their persisted state for Resume.
type Manager struct {
	p      Params
	ctx    context.Context
	stop   context.CancelFunc
	logger zerolog.Logger

	mu    sync.Mutex
	tasks map[string]*Lifecycle
	wg    sync.WaitGroup
}

func NewManager(p Params) *Manager {
	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		p:      p,
		ctx:    ctx,
		stop:   stop,
		logger: p.Logger,
		tasks:  make(map[string]*Lifecycle),
	}
}

// Start runs the match from its persisted state. Starting a running match
// is a no-op.
func (mgr *Manager) Start(ctx context.Context, matchID string) error {
	if _, err := mgr.p.Matches.Get(ctx, matchID); err != nil {
		return fmt.Errorf("failed to load match %s: %w", matchID, err)
	}

	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if mgr.ctx.Err() != nil {
		return errors.New("manager stopped")
	}
	if _, ok := mgr.tasks[matchID]; ok {
		return nil
	}

	lc := newLifecycle(&mgr.p, matchID, mgr.ctx)
	taskCtx := lc.round()
	mgr.tasks[matchID] = lc
	mgr.wg.Add(1)
	mgr.p.Metrics.MatchStarted()

	go func() {
		defer func() {
			mgr.mu.Lock()
			delete(mgr.tasks, matchID)
			mgr.mu.Unlock()
			mgr.p.Metrics.MatchStopped()
			mgr.wg.Done()
		}()
		lc.Run(taskCtx)
	}()

	mgr.logger.Info().Str("match_id", matchID).Msg("lifecycle started")
	return nil
}

// Resume starts every incomplete match found in storage.
func (mgr *Manager) Resume(ctx context.Context) error {
	matches, err := mgr.p.Matches.ListIncomplete(ctx)
	if err != nil {
		return fmt.Errorf("failed to list incomplete matches: %w", err)
	}
	for _, m := range matches {
		if err := mgr.Start(ctx, m.MatchID); err != nil {
			return err
		}
		mgr.logger.Info().Str("match_id", m.MatchID).Str("state", m.State.String()).Msg("match resumed")
	}
	return nil
}

func (mgr *Manager) running(matchID string) (*Lifecycle, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	lc, ok := mgr.tasks[matchID]
	return lc, ok
}

// Accept records the player's acceptance. It reports whether this call
// changed anything.
func (mgr *Manager) Accept(ctx context.Context, matchID, userID string) (bool, error) {
	m, err := mgr.p.Matches.Get(ctx, matchID)
	if err != nil {
		return false, err
	}
	if m.State != domain.StateAcceptPlayers {
		return false, ErrNotAccepting
	}

	changed, err := mgr.p.Matches.Accept(ctx, matchID, userID)
	if err != nil {
		return false, err
	}
	if !changed {
		players, err := mgr.p.Matches.Players(ctx, matchID)
		if err != nil {
			return false, err
		}
		if !slices.ContainsFunc(players, func(p domain.Player) bool { return p.UserID == userID }) {
			return false, ErrNotInMatch
		}
		return false, nil
	}

	if lc, ok := mgr.running(matchID); ok {
		lc.signalAccepted()
	}
	return true, nil
}

// CastVote stores the user's vote for the window currently open in the
// match. Only the team the window belongs to may vote.
func (mgr *Manager) CastVote(ctx context.Context, matchID, userID, choice string) error {
	lc, ok := mgr.running(matchID)
	if !ok {
		return ErrNotRunning
	}
	m, err := mgr.p.Matches.Get(ctx, matchID)
	if err != nil {
		return err
	}
	phase, ok := m.State.VotePhase()
	if !ok {
		return ErrVoteClosed
	}
	options, ok := lc.voteOpen(phase)
	if !ok {
		return ErrVoteClosed
	}

	players, err := mgr.p.Matches.Players(ctx, matchID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(players, func(p domain.Player) bool { return p.UserID == userID })
	if idx < 0 {
		return ErrNotInMatch
	}
	if players[idx].Team != phase.Team() {
		return ErrVoteClosed
	}
	if !slices.Contains(options, choice) {
		return ErrInvalidChoice
	}

	return mgr.p.Votes.Cast(ctx, domain.Vote{
		MatchID: matchID,
		UserID:  userID,
		Phase:   phase,
		Choice:  choice,
	})
}

// Cancel interrupts the match wherever it is and sends it to cleanup.
func (mgr *Manager) Cancel(matchID string, reason CancelReason) error {
	lc, ok := mgr.running(matchID)
	if !ok {
		return ErrNotRunning
	}
	mgr.logger.Info().Str("match_id", matchID).Str("reason", reason.Reason).Msg("cancelling match")
	lc.cancel(reason)
	return nil
}

// Active lists the ids of running matches.
func (mgr *Manager) Active() []string {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return slices.Sorted(maps.Keys(mgr.tasks))
}

// Stop ends every task without running cleanup and waits for them.
func (mgr *Manager) Stop(ctx context.Context) error {
	mgr.mu.Lock()
	mgr.stop()
	mgr.mu.Unlock()

	done := make(chan struct{})
	go func() {
		mgr.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		mgr.logger.Info().Msg("all lifecycles stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lifecycles still running: %w", ctx.Err())
	}
}
