package lifecycle

import (
	"context"
	"fmt"
	"matchbot/internal/constants"
	"matchbot/internal/domain"

	"golang.org/x/sync/errgroup"
)

// matchCleanup returns the server to its idle configuration and releases it.
func (l *Lifecycle) matchCleanup(ctx context.Context, m *domain.Match) error {
	if m.ServerID != nil {
		c, err := l.client(ctx, m)
		if err != nil {
			l.logger.Warn().Err(err).Msg("failed to reach server for reset")
		} else {
			c.SetPin(ctx, "")
			c.EnableCompMode(ctx, false)
			c.SetMaxPlayers(ctx, constants.IdleMaxPlayers)
			c.UpdateServerName(ctx, constants.IdleServerName)
		}

		if err := l.p.Pool.Release(ctx, *m.ServerID, m.MatchID); err != nil {
			return fmt.Errorf("failed to release server: %w", err)
		}
		l.logger.Info().Int64("server_id", *m.ServerID).Msg("server released")
	}
	return l.advance(ctx, m)
}

// cleanup tears down the per-match channels. Every step is independent and
// failures are only logged.
func (l *Lifecycle) cleanup(ctx context.Context, m *domain.Match) error {
	voice := nonEmpty(m.AVoiceID, m.BVoiceID)
	if len(voice) > 0 && l.p.Config.GeneralVoiceChannelID != "" {
		if err := l.p.Presenter.MoveVoiceMembers(ctx, voice, l.p.Config.GeneralVoiceChannelID); err != nil {
			l.logger.Warn().Err(err).Msg("failed to move voice members")
		}
	}

	var g errgroup.Group
	for _, id := range nonEmpty(m.AVoiceID, m.BVoiceID, m.AThreadID, m.BThreadID) {
		g.Go(func() error {
			if err := l.p.Presenter.DeleteChannel(ctx, id); err != nil {
				l.logger.Warn().Err(err).Str("channel_id", id).Msg("failed to delete channel")
			}
			return nil
		})
	}
	g.Wait()

	m.Complete = true
	if err := l.p.Matches.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to mark match complete: %w", err)
	}
	l.p.Metrics.MatchFinished(outcome(m))
	return l.advance(ctx, m)
}

func outcome(m *domain.Match) string {
	switch {
	case m.Abandoned:
		return "abandoned"
	case m.AScore >= constants.WinScore || m.BScore >= constants.WinScore:
		return "complete"
	}
	return "aborted"
}

func nonEmpty(ids ...string) []string {
	var out []string
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
