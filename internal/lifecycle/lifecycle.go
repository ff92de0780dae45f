// Package lifecycle drives a match from roster to teardown as a persisted,
// resumable state machine, and keeps the registry of running matches.
package lifecycle

import (
	"context"
	"fmt"
	"matchbot/internal/constants"
	"matchbot/internal/domain"
	"matchbot/internal/presentation"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type phaseFunc func(ctx context.Context, m *domain.Match) error

// Lifecycle runs one match. Every phase ends by persisting the next state
// (advance) or a later one (skipTo) before the loop reloads the match.
type Lifecycle struct {
	p       *Params
	matchID string
	parent  context.Context
	logger  zerolog.Logger

	accepted chan struct{}

	roundMu     sync.Mutex
	roundCancel context.CancelCauseFunc

	mu       sync.Mutex
	openVote domain.VotePhase
	options  []string
}

func newLifecycle(p *Params, matchID string, parent context.Context) *Lifecycle {
	return &Lifecycle{
		p:        p,
		matchID:  matchID,
		parent:   parent,
		logger:   p.Logger.With().Str("match_id", matchID).Logger(),
		accepted: make(chan struct{}, 1),
	}
}

func (l *Lifecycle) phases() map[domain.MatchState]phaseFunc {
	return map[domain.MatchState]phaseFunc{
		domain.StateNotStarted:          l.notStarted,
		domain.StateCreateMatchThread:   l.createMatchThread,
		domain.StateAcceptPlayers:       l.acceptPlayers,
		domain.StateMakeTeams:           l.makeTeams,
		domain.StateMakeTeamVCA:         l.makeTeamVoice(domain.TeamA),
		domain.StateMakeTeamVCB:         l.makeTeamVoice(domain.TeamB),
		domain.StateMakeTeamThreadA:     l.makeTeamThread(domain.TeamA),
		domain.StateMakeTeamThreadB:     l.makeTeamThread(domain.TeamB),
		domain.StateBanningStart:        l.announce(presentation.NoticeBanningStart),
		domain.StateABans:               l.bans(domain.TeamA),
		domain.StateBanSwap:             l.announce(presentation.NoticeBanSwap),
		domain.StateBBans:               l.bans(domain.TeamB),
		domain.StatePickingStart:        l.announce(presentation.NoticePickingStart),
		domain.StateAPick:               l.pickMap,
		domain.StatePickSwap:            l.announce(presentation.NoticePickSwap),
		domain.StateBPick:               l.pickSide,
		domain.StateMatchStarting:       l.announce(presentation.NoticeMatchStarting),
		domain.StateMatchFindServer:     l.findServer,
		domain.StateMatchWaitForPlayers: l.waitForPlayers,
		domain.StateMatchStartSND:       l.startSND,
		domain.StateMatchWaitForEnd:     l.waitForEnd,
		domain.StateMatchCleanup:        l.matchCleanup,
		domain.StateCleanup:             l.cleanup,
	}
}

// round starts a new cancellable context on the parent. Each recovery from a
// cancel runs on its own round so a later cancel still reaches it.
func (l *Lifecycle) round() context.Context {
	ctx, cancel := context.WithCancelCause(l.parent)
	l.roundMu.Lock()
	defer l.roundMu.Unlock()
	if l.roundCancel != nil {
		l.roundCancel(nil)
	}
	l.roundCancel = cancel
	return ctx
}

// cancel interrupts the current round with the reason.
func (l *Lifecycle) cancel(reason CancelReason) {
	l.endRound(&cancelError{reason: reason})
}

func (l *Lifecycle) endRound(cause error) {
	l.roundMu.Lock()
	defer l.roundMu.Unlock()
	if l.roundCancel != nil {
		l.roundCancel(cause)
	}
}

// Run drives the match until it finishes, the process shuts down, or it is
// frozen. A forced cancel reroutes to cleanup, including for a frozen match
// or one frozen again during cleanup.
func (l *Lifecycle) Run(ctx context.Context) {
	defer l.endRound(nil)

	for {
		err := l.runPhases(ctx)
		if err == nil {
			return
		}

		for {
			if ctx.Err() == nil {
				l.freeze(ctx, err)
				<-ctx.Done()
			}

			reason, ok := cancelReason(ctx)
			if !ok {
				l.logger.Info().Msg("lifecycle stopped")
				return
			}

			ctx = l.round()
			if err = l.applyCancel(ctx, reason); err == nil {
				break
			}
		}
	}
}

func (l *Lifecycle) runPhases(ctx context.Context) error {
	phases := l.phases()
	for {
		m, err := l.p.Matches.Get(ctx, l.matchID)
		if err != nil {
			return fmt.Errorf("failed to load match: %w", err)
		}
		if m.State >= domain.StateFinished {
			l.logger.Info().Msg("match finished")
			return nil
		}

		phase, ok := phases[m.State]
		if !ok {
			return fmt.Errorf("no phase for state %d", m.State)
		}

		l.logger.Debug().Str("state", m.State.String()).Msg("entering phase")
		l.p.Metrics.PhaseEntered(m.State.String())

		if err := l.safe(ctx, m, phase); err != nil {
			return fmt.Errorf("phase %s: %w", m.State, err)
		}
	}
}

func (l *Lifecycle) safe(ctx context.Context, m *domain.Match, phase phaseFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Str("stack", string(debug.Stack())).Msgf("panic: %v", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return phase(ctx, m)
}

// advance persists the next state.
func (l *Lifecycle) advance(ctx context.Context, m *domain.Match) error {
	return l.skipTo(ctx, m, m.State.Next())
}

func (l *Lifecycle) skipTo(ctx context.Context, m *domain.Match, state domain.MatchState) error {
	if err := l.p.Matches.SetState(ctx, m.MatchID, state); err != nil {
		return err
	}
	l.logger.Debug().Str("from", m.State.String()).Str("to", state.String()).Msg("state persisted")
	m.State = state
	return nil
}

func (l *Lifecycle) freeze(ctx context.Context, err error) {
	l.logger.Error().Err(err).Msg("match frozen")
	l.p.Metrics.MatchFrozen()

	m, getErr := l.p.Matches.Get(ctx, l.matchID)
	if getErr != nil {
		l.logger.Error().Err(getErr).Msg("failed to load frozen match")
		return
	}
	l.notify(ctx, m, presentation.Notice{
		Kind:   presentation.NoticeMatchFrozen,
		Reason: err.Error(),
	})
}

// applyCancel settles forced abandons and moves the match to cleanup.
func (l *Lifecycle) applyCancel(ctx context.Context, reason CancelReason) error {
	m, err := l.p.Matches.Get(ctx, l.matchID)
	if err != nil {
		return fmt.Errorf("failed to load match: %w", err)
	}
	l.logger.Info().Str("reason", reason.Reason).Strs("abandoned", reason.Abandoned).Str("state", m.State.String()).Msg("match cancelled")

	if m.State >= domain.StateMatchCleanup {
		return nil
	}

	if len(reason.Abandoned) > 0 {
		players, err := l.p.Matches.Players(ctx, m.MatchID)
		if err != nil {
			return fmt.Errorf("failed to load players: %w", err)
		}
		if err := l.settleAbandons(ctx, m, players, reason.Abandoned); err != nil {
			return err
		}
		m.Abandoned = true
		if err := l.p.Matches.Save(ctx, m); err != nil {
			return fmt.Errorf("failed to save match: %w", err)
		}
	}

	l.notify(ctx, m, presentation.Notice{
		Kind:   presentation.NoticeMatchCancelled,
		Reason: reason.Reason,
		Users:  reason.Abandoned,
	})

	target := domain.StateCleanup
	if m.ServerID != nil {
		target = domain.StateMatchCleanup
	}
	return l.skipTo(ctx, m, target)
}

// announce is the body of the states that only post a notice.
func (l *Lifecycle) announce(kind presentation.NoticeKind) phaseFunc {
	return func(ctx context.Context, m *domain.Match) error {
		l.notify(ctx, m, presentation.Notice{Kind: kind})
		return l.advance(ctx, m)
	}
}

// notify posts a notice. Failures are logged and do not stop the match.
func (l *Lifecycle) notify(ctx context.Context, m *domain.Match, n presentation.Notice) {
	ctx, cancel := context.WithTimeout(ctx, constants.DiscordTimeout)
	defer cancel()

	if err := l.p.Presenter.Notify(ctx, m, n); err != nil {
		l.logger.Warn().Err(err).Str("notice", n.Kind.String()).Msg("failed to post notice")
	}
}

func (l *Lifecycle) signalAccepted() {
	select {
	case l.accepted <- struct{}{}:
	default:
	}
}

func (l *Lifecycle) setVote(phase domain.VotePhase, options []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.openVote = phase
	l.options = options
}

// voteOpen reports whether phase is the open window and choice one of its options.
func (l *Lifecycle) voteOpen(phase domain.VotePhase) ([]string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.openVote == "" || l.openVote != phase {
		return nil, false
	}
	return l.options, true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
