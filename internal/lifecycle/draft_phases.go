package lifecycle

import (
	"context"
	"fmt"
	"matchbot/internal/constants"
	"matchbot/internal/domain"
	"matchbot/internal/draft"
	"matchbot/internal/presentation"
	"slices"
	"time"
)

// voteWindow opens the vote, waits out the window and returns the votes cast.
// Votes arriving after the window closed are not counted.
func (l *Lifecycle) voteWindow(ctx context.Context, m *domain.Match, phase domain.VotePhase, options []string, period time.Duration) ([]string, error) {
	l.setVote(phase, options)
	defer l.setVote("", nil)

	if err := l.p.Presenter.OpenVote(ctx, m, phase, options, time.Now().Add(period)); err != nil {
		return nil, fmt.Errorf("failed to open %s vote: %w", phase, err)
	}
	if err := sleep(ctx, period); err != nil {
		return nil, err
	}
	l.setVote("", nil)

	choices, err := l.p.Votes.Choices(ctx, m.MatchID, phase)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s votes: %w", phase, err)
	}
	l.logger.Debug().Str("phase", string(phase)).Int("votes", len(choices)).Msg("vote window closed")
	return choices, nil
}

func (l *Lifecycle) bans(team domain.Team) phaseFunc {
	return func(ctx context.Context, m *domain.Match) error {
		phase := domain.VoteBanA
		done := len(m.ABans) > 0
		options := l.p.Config.MapPool
		if team == domain.TeamB {
			phase = domain.VoteBanB
			done = len(m.BBans) > 0
			options = draft.RemainingMaps(l.p.Config.MapPool, m.ABans)
		}
		if done {
			return l.advance(ctx, m)
		}

		choices, err := l.voteWindow(ctx, m, phase, options, l.p.Config.BanPeriod)
		if err != nil {
			return err
		}

		bans := l.p.Draft.PreferredBans(options, choices, constants.TotalBans)
		if team == domain.TeamA {
			m.ABans = bans
		} else {
			m.BBans = bans
		}
		if err := l.p.Matches.Save(ctx, m); err != nil {
			return fmt.Errorf("failed to save bans: %w", err)
		}
		l.logger.Info().Str("team", string(team)).Strs("bans", bans).Msg("bans chosen")

		l.notify(ctx, m, presentation.Notice{Kind: presentation.NoticeBansChosen, Team: team, Maps: bans})
		return l.advance(ctx, m)
	}
}

func (l *Lifecycle) pickMap(ctx context.Context, m *domain.Match) error {
	if m.Map != "" {
		return l.advance(ctx, m)
	}

	options := draft.RemainingMaps(l.p.Config.MapPool, m.ABans, m.BBans)
	choices, err := l.voteWindow(ctx, m, domain.VoteMap, options, l.p.Config.PickPeriod)
	if err != nil {
		return err
	}

	picked, err := l.p.Draft.PreferredMap(l.p.Config.MapPool, slices.Concat(m.ABans, m.BBans), choices)
	if err != nil {
		return fmt.Errorf("failed to pick map: %w", err)
	}
	m.Map = picked
	if err := l.p.Matches.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to save map: %w", err)
	}
	l.logger.Info().Str("map", picked).Msg("map chosen")

	l.notify(ctx, m, presentation.Notice{Kind: presentation.NoticeMapChosen, Team: domain.TeamA, Map: picked})
	return l.advance(ctx, m)
}

func (l *Lifecycle) pickSide(ctx context.Context, m *domain.Match) error {
	if m.BSide != "" {
		return l.advance(ctx, m)
	}

	choices, err := l.voteWindow(ctx, m, domain.VoteSide, draft.Sides, l.p.Config.PickPeriod)
	if err != nil {
		return err
	}

	m.BSide = l.p.Draft.PreferredSide(choices)
	if err := l.p.Matches.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to save side: %w", err)
	}
	l.logger.Info().Str("b_side", string(m.BSide)).Msg("side chosen")

	l.notify(ctx, m, presentation.Notice{Kind: presentation.NoticeSideChosen, Team: domain.TeamB, Side: m.BSide})
	return l.advance(ctx, m)
}
