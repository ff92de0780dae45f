package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"matchbot/internal/domain"
	"matchbot/internal/presentation"
	"matchbot/internal/rcon"
	"matchbot/internal/serverpool"
	"math/rand/v2"

	"github.com/samber/lo"
)

const gameMode = "SND"

func newPin() string {
	return fmt.Sprintf("%04d", rand.IntN(10000))
}

func (l *Lifecycle) findServer(ctx context.Context, m *domain.Match) error {
	if m.ServerID != nil {
		return l.advance(ctx, m)
	}

	// a crash between reserving and saving leaves the server held by this match
	server, err := l.p.Pool.HeldBy(ctx, m.MatchID)
	if err != nil {
		return err
	}

	if server == nil {
		players, err := l.p.Matches.Players(ctx, m.MatchID)
		if err != nil {
			return fmt.Errorf("failed to load players: %w", err)
		}
		regions := lo.Map(players, func(p domain.Player, _ int) string { return p.Region })

		server, err = l.p.Pool.Reserve(ctx, m.MatchID, regions)
		if errors.Is(err, serverpool.ErrNoServer) {
			l.logger.Warn().Msg("no server available")
			l.notify(ctx, m, presentation.Notice{Kind: presentation.NoticeNoServer})
			return l.skipTo(ctx, m, domain.StateCleanup)
		}
		if err != nil {
			return fmt.Errorf("failed to reserve server: %w", err)
		}
	}

	m.ServerID = &server.ServerID
	if m.Pin == "" {
		m.Pin = newPin()
	}
	if err := l.p.Matches.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to save server: %w", err)
	}

	l.notify(ctx, m, presentation.Notice{Kind: presentation.NoticeServerFound, Server: server, Pin: m.Pin})
	return l.advance(ctx, m)
}

func (l *Lifecycle) client(ctx context.Context, m *domain.Match) (*rcon.Client, error) {
	if m.ServerID == nil {
		return nil, errors.New("match holds no server")
	}
	server, err := l.p.Pool.Get(ctx, *m.ServerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load server %d: %w", *m.ServerID, err)
	}
	return l.p.Rcon.For(*server), nil
}

// roster maps platform ids to user ids and user ids to their team.
type roster struct {
	players  []domain.Player
	accounts map[string]string
	team     map[string]domain.Team
}

func (l *Lifecycle) loadRoster(ctx context.Context, m *domain.Match) (*roster, error) {
	players, err := l.p.Matches.Players(ctx, m.MatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	accounts, err := l.p.Users.MatchPlatformAccounts(ctx, m.MatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform accounts: %w", err)
	}
	return &roster{
		players:  players,
		accounts: accounts,
		team: lo.SliceToMap(players, func(p domain.Player) (string, domain.Team) {
			return p.UserID, p.Team
		}),
	}, nil
}

func (l *Lifecycle) configureServer(ctx context.Context, m *domain.Match, c *rcon.Client) {
	steps := []struct {
		name string
		ok   func() bool
	}{
		{"clear bans", func() bool { return c.ClearBans(ctx) }},
		{"enable comp mode", func() bool { return c.EnableCompMode(ctx, true) }},
		{"set max players", func() bool { return c.SetMaxPlayers(ctx, l.p.Config.RosterSize()) }},
		{"set pin", func() bool { return c.SetPin(ctx, m.Pin) }},
		{"set name", func() bool { return c.UpdateServerName(ctx, fmt.Sprintf("Pug %s", m.MatchID)) }},
		{"switch map", func() bool { return c.SwitchMap(ctx, m.Map, gameMode) }},
	}
	for _, s := range steps {
		if !s.ok() {
			l.logger.Warn().Str("step", s.name).Str("server", c.Addr()).Msg("server configuration step failed")
		}
	}
}

// waitForPlayers configures the server, then polls until every player is
// connected. Unknown accounts are kicked and players on the wrong side moved.
func (l *Lifecycle) waitForPlayers(ctx context.Context, m *domain.Match) error {
	c, err := l.client(ctx, m)
	if err != nil {
		return err
	}
	r, err := l.loadRoster(ctx, m)
	if err != nil {
		return err
	}

	l.configureServer(ctx, m, c)

	for {
		if stats, ok := c.InspectAll(ctx); ok {
			present := map[string]bool{}
			for _, s := range stats {
				userID, known := r.accounts[s.UniqueID]
				if !known {
					l.logger.Info().Str("platform_id", s.UniqueID).Msg("kicking unknown player")
					c.Kick(ctx, s.UniqueID)
					continue
				}
				present[userID] = true
				if want := m.SideOf(r.team[userID]).GameTeamID(); s.TeamID != want {
					l.logger.Debug().Str("user_id", userID).Int("team_id", want).Msg("moving player to their side")
					c.SwitchTeam(ctx, s.UniqueID, want)
				}
			}

			if len(present) >= len(r.players) {
				l.logger.Info().Int("players", len(present)).Msg("all players connected")
				return l.advance(ctx, m)
			}
		}

		if err := sleep(ctx, l.p.Config.PollInterval); err != nil {
			return err
		}
	}
}

func (l *Lifecycle) startSND(ctx context.Context, m *domain.Match) error {
	c, err := l.client(ctx, m)
	if err != nil {
		return err
	}
	if !c.ResetSND(ctx) {
		l.logger.Warn().Msg("failed to reset round state")
	}
	l.notify(ctx, m, presentation.Notice{Kind: presentation.NoticeMatchLive, Map: m.Map})
	return l.advance(ctx, m)
}
