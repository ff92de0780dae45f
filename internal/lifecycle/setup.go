package lifecycle

import (
	"context"
	"fmt"
	"matchbot/internal/balance"
	"matchbot/internal/domain"
	"matchbot/internal/presentation"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

func (l *Lifecycle) notStarted(ctx context.Context, m *domain.Match) error {
	return l.advance(ctx, m)
}

func (l *Lifecycle) createMatchThread(ctx context.Context, m *domain.Match) error {
	if m.ThreadID == "" {
		players, err := l.p.Matches.Players(ctx, m.MatchID)
		if err != nil {
			return fmt.Errorf("failed to load players: %w", err)
		}
		id, err := l.p.Presenter.CreateMatchThread(ctx, m, players)
		if err != nil {
			return fmt.Errorf("failed to create match thread: %w", err)
		}
		m.ThreadID = id
		if err := l.p.Matches.Save(ctx, m); err != nil {
			return fmt.Errorf("failed to save match thread: %w", err)
		}
	}
	return l.advance(ctx, m)
}

func pending(players []domain.Player) []string {
	return lo.FilterMap(players, func(p domain.Player, _ int) (string, bool) {
		return p.UserID, !p.Accepted
	})
}

// acceptPlayers waits for every player to accept within the window. A
// resumed match gets a fresh window.
func (l *Lifecycle) acceptPlayers(ctx context.Context, m *domain.Match) error {
	players, err := l.p.Matches.Players(ctx, m.MatchID)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}
	if len(pending(players)) == 0 {
		return l.advance(ctx, m)
	}

	period := l.p.Config.AcceptPeriod
	deadline := time.Now().Add(period)

	if m.AcceptMessageID == "" {
		id, err := l.p.Presenter.PostAcceptPrompt(ctx, m, players, deadline)
		if err != nil {
			return fmt.Errorf("failed to post accept prompt: %w", err)
		}
		m.AcceptMessageID = id
		if err := l.p.Matches.Save(ctx, m); err != nil {
			return fmt.Errorf("failed to save accept prompt: %w", err)
		}
		l.directMessage(ctx, pending(players), presentation.AcceptDMText(m, period))
	}

	reminderCtx, stopReminders := context.WithCancel(ctx)
	reminders := l.scheduleReminders(reminderCtx, m, period)
	defer func() {
		stopReminders()
		reminders.Wait()
	}()

	window := time.NewTimer(period)
	defer window.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-window.C:
			players, err := l.p.Matches.Players(ctx, m.MatchID)
			if err != nil {
				return fmt.Errorf("failed to load players: %w", err)
			}
			missing := pending(players)
			if len(missing) == 0 {
				return l.advance(ctx, m)
			}
			l.logger.Info().Strs("missing", missing).Msg("accept window expired")
			l.notify(ctx, m, presentation.Notice{Kind: presentation.NoticeAcceptTimeout, Users: missing})
			return l.skipTo(ctx, m, domain.StateCleanup)
		case <-l.accepted:
			players, err := l.p.Matches.Players(ctx, m.MatchID)
			if err != nil {
				return fmt.Errorf("failed to load players: %w", err)
			}
			if len(pending(players)) == 0 {
				l.logger.Info().Msg("all players accepted")
				return l.advance(ctx, m)
			}
		}
	}
}

// scheduleReminders pings players who have not accepted yet at each reminder
// offset. The returned group ends once ctx is cancelled or all reminders ran.
func (l *Lifecycle) scheduleReminders(ctx context.Context, m *domain.Match, period time.Duration) *errgroup.Group {
	var g errgroup.Group
	for _, offset := range l.p.Config.ReminderOffsets {
		if offset >= period {
			continue
		}
		g.Go(func() error {
			if sleep(ctx, offset) != nil {
				return nil
			}
			players, err := l.p.Matches.Players(ctx, m.MatchID)
			if err != nil {
				l.logger.Warn().Err(err).Msg("failed to load players for reminder")
				return nil
			}
			if missing := pending(players); len(missing) > 0 {
				l.notify(ctx, m, presentation.Notice{
					Kind:      presentation.NoticeAcceptReminder,
					Users:     missing,
					Remaining: period - offset,
				})
				l.directMessage(ctx, missing, presentation.AcceptDMText(m, period-offset))
			}
			return nil
		})
	}
	return &g
}

// directMessage pings each user privately. Players with closed DMs are
// only logged.
func (l *Lifecycle) directMessage(ctx context.Context, userIDs []string, text string) {
	for _, userID := range userIDs {
		if err := l.p.Presenter.DirectMessage(ctx, userID, text); err != nil {
			l.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to send direct message")
		}
	}
}

func (l *Lifecycle) makeTeams(ctx context.Context, m *domain.Match) error {
	players, err := l.p.Matches.Players(ctx, m.MatchID)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}

	if !lo.EveryBy(players, func(p domain.Player) bool { return p.Team != "" }) {
		split, err := l.p.Balancer.Split(lo.Map(players, func(p domain.Player, _ int) balance.Candidate {
			return balance.Candidate{UserID: p.UserID, MMR: p.MMR}
		}))
		if err != nil {
			return fmt.Errorf("failed to balance teams: %w", err)
		}

		teams := make(map[string]domain.Team, len(players))
		for _, c := range split.TeamA {
			teams[c.UserID] = domain.TeamA
		}
		for _, c := range split.TeamB {
			teams[c.UserID] = domain.TeamB
		}
		if err := l.p.Matches.AssignTeams(ctx, m, teams, split.AvgA, split.AvgB); err != nil {
			return fmt.Errorf("failed to assign teams: %w", err)
		}
		l.logger.Info().Float64("a_mmr", split.AvgA).Float64("b_mmr", split.AvgB).Msg("teams formed")

		if players, err = l.p.Matches.Players(ctx, m.MatchID); err != nil {
			return fmt.Errorf("failed to load players: %w", err)
		}
	}

	l.notify(ctx, m, presentation.Notice{
		Kind:  presentation.NoticeTeamsFormed,
		TeamA: teamOf(players, domain.TeamA),
		TeamB: teamOf(players, domain.TeamB),
	})
	return l.advance(ctx, m)
}

func teamOf(players []domain.Player, team domain.Team) []domain.Player {
	return lo.Filter(players, func(p domain.Player, _ int) bool { return p.Team == team })
}

func (l *Lifecycle) makeTeamVoice(team domain.Team) phaseFunc {
	return func(ctx context.Context, m *domain.Match) error {
		if m.VoiceChannel(team) == "" {
			players, err := l.p.Matches.Players(ctx, m.MatchID)
			if err != nil {
				return fmt.Errorf("failed to load players: %w", err)
			}
			id, err := l.p.Presenter.CreateTeamVoice(ctx, m, team, teamOf(players, team))
			if err != nil {
				return fmt.Errorf("failed to create voice channel for team %s: %w", team, err)
			}
			if team == domain.TeamA {
				m.AVoiceID = id
			} else {
				m.BVoiceID = id
			}
			if err := l.p.Matches.Save(ctx, m); err != nil {
				return fmt.Errorf("failed to save voice channel: %w", err)
			}
		}
		return l.advance(ctx, m)
	}
}

func (l *Lifecycle) makeTeamThread(team domain.Team) phaseFunc {
	return func(ctx context.Context, m *domain.Match) error {
		if m.TeamThread(team) == "" {
			players, err := l.p.Matches.Players(ctx, m.MatchID)
			if err != nil {
				return fmt.Errorf("failed to load players: %w", err)
			}
			id, err := l.p.Presenter.CreateTeamThread(ctx, m, team, teamOf(players, team))
			if err != nil {
				return fmt.Errorf("failed to create thread for team %s: %w", team, err)
			}
			if team == domain.TeamA {
				m.AThreadID = id
			} else {
				m.BThreadID = id
			}
			if err := l.p.Matches.Save(ctx, m); err != nil {
				return fmt.Errorf("failed to save team thread: %w", err)
			}
		}
		return l.advance(ctx, m)
	}
}
