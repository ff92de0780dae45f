package lifecycle

import (
	"context"
	"fmt"
	"matchbot/internal/constants"
	"matchbot/internal/domain"
	"matchbot/internal/presentation"
	"matchbot/internal/rating"
	"matchbot/internal/rcon"
	"matchbot/internal/repository"

	"github.com/samber/lo"
)

// absenceTracker counts consecutive processed rounds a player was missing.
type absenceTracker struct {
	threshold int
	missed    map[string]int
}

func newAbsenceTracker(threshold int) *absenceTracker {
	return &absenceTracker{threshold: threshold, missed: map[string]int{}}
}

// round records one processed round and returns the players that reached
// the threshold.
func (t *absenceTracker) round(expected []string, present map[string]bool) []string {
	var abandoned []string
	for _, userID := range expected {
		if present[userID] {
			t.missed[userID] = 0
			continue
		}
		t.missed[userID]++
		if t.missed[userID] >= t.threshold {
			abandoned = append(abandoned, userID)
		}
	}
	return abandoned
}

// gameTeamOf returns the game team most of the team's connected players are
// on, falling back to the team's starting side.
func gameTeamOf(m *domain.Match, team domain.Team, teams map[string]domain.Team, seen map[string]rcon.PlayerStats) int {
	counts := [2]int{}
	for userID, s := range seen {
		if teams[userID] == team && (s.TeamID == 0 || s.TeamID == 1) {
			counts[s.TeamID]++
		}
	}
	switch {
	case counts[0] > counts[1]:
		return 0
	case counts[1] > counts[0]:
		return 1
	}
	return m.SideOf(team).GameTeamID()
}

// waitForEnd follows the live match until a team reaches the win score or a
// player abandons, then settles ratings.
func (l *Lifecycle) waitForEnd(ctx context.Context, m *domain.Match) error {
	r, err := l.loadRoster(ctx, m)
	if err != nil {
		return err
	}
	stored, err := l.p.Stats.List(ctx, m.MatchID)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	live := lo.KeyBy(stored, func(s domain.MatchPlayerStats) string { return s.UserID })

	// settlement already started before a restart
	if m.Abandoned || lo.SomeBy(stored, func(s domain.MatchPlayerStats) bool { return s.Abandoned }) {
		l.logger.Info().Msg("abandon already settled, skipping to cleanup")
		return l.advance(ctx, m)
	}
	if m.AScore >= constants.WinScore || m.BScore >= constants.WinScore {
		return l.finish(ctx, m, r)
	}

	c, err := l.client(ctx, m)
	if err != nil {
		return err
	}

	expected := lo.Map(r.players, func(p domain.Player, _ int) string { return p.UserID })
	absence := newAbsenceTracker(constants.AbandonThreshold)
	lastRound := -1

	for {
		if err := sleep(ctx, l.p.Config.PollInterval); err != nil {
			return err
		}

		info, ok := c.ServerInfo(ctx)
		if !ok {
			continue
		}
		scoreboard, ok := c.InspectAll(ctx)
		if !ok {
			continue
		}

		seen := map[string]rcon.PlayerStats{}
		for _, s := range scoreboard {
			if userID, known := r.accounts[s.UniqueID]; known {
				if _, dup := seen[userID]; !dup {
					seen[userID] = s
				}
			}
		}

		var abandoned []string
		newRound := lastRound >= 0 && info.Round > lastRound
		if newRound {
			present := lo.MapValues(seen, func(_ rcon.PlayerStats, _ string) bool { return true })
			abandoned = absence.round(expected, present)
		}
		if lastRound < 0 || newRound {
			lastRound = info.Round
		}

		if err := l.recordLive(ctx, m, r, live, seen, newRound); err != nil {
			return err
		}

		aTeam := gameTeamOf(m, domain.TeamA, r.team, seen)
		aScore, bScore := info.Score(aTeam), info.Score(1-aTeam)
		if aScore != m.AScore || bScore != m.BScore {
			m.AScore, m.BScore = aScore, bScore
			if err := l.p.Matches.Save(ctx, m); err != nil {
				return fmt.Errorf("failed to save score: %w", err)
			}
			l.logger.Debug().Int("round", info.Round).Int("a_score", aScore).Int("b_score", bScore).Msg("score updated")
		}

		if len(abandoned) > 0 {
			l.logger.Warn().Strs("users", abandoned).Msg("players abandoned")
			if err := l.settleAbandons(ctx, m, r.players, abandoned); err != nil {
				return err
			}
			m.Abandoned = true
			if err := l.p.Matches.Save(ctx, m); err != nil {
				return fmt.Errorf("failed to save match: %w", err)
			}
			l.notify(ctx, m, presentation.Notice{Kind: presentation.NoticePlayerAbandoned, Users: abandoned})
			if stats, err := l.p.Stats.List(ctx, m.MatchID); err == nil {
				l.p.Results.PostResult(ctx, m, r.players, stats)
			}
			return l.advance(ctx, m)
		}

		if aScore >= constants.WinScore || bScore >= constants.WinScore {
			return l.finish(ctx, m, r)
		}
	}
}

// recordLive writes the scoreboard of every seen player whose counters changed.
func (l *Lifecycle) recordLive(ctx context.Context, m *domain.Match, r *roster, live map[string]domain.MatchPlayerStats, seen map[string]rcon.PlayerStats, newRound bool) error {
	for userID, s := range seen {
		current, ok := live[userID]
		if !ok {
			if err := l.ensureStats(ctx, m, r, userID); err != nil {
				return err
			}
			current = domain.MatchPlayerStats{MatchID: m.MatchID, UserID: userID}
		}

		next := current
		next.Kills, next.Deaths, next.Assists, next.Score = s.Kills, s.Deaths, s.Assists, s.Score
		if newRound {
			next.RoundsPlayed++
		}
		if ok && next.SameLive(&current) {
			continue
		}
		if err := l.p.Stats.UpdateLive(ctx, &next); err != nil {
			return fmt.Errorf("failed to update stats for %s: %w", userID, err)
		}
		live[userID] = next
	}
	return nil
}

func (l *Lifecycle) ensureStats(ctx context.Context, m *domain.Match, r *roster, userID string) error {
	mmr := 0
	if p, ok := lo.Find(r.players, func(p domain.Player) bool { return p.UserID == userID }); ok {
		mmr = p.MMR
	}
	ctStart := m.SideOf(r.team[userID]) == domain.SideCT
	if err := l.p.Stats.Ensure(ctx, m.MatchID, userID, mmr, ctStart); err != nil {
		return fmt.Errorf("failed to create stats for %s: %w", userID, err)
	}
	return nil
}

func (l *Lifecycle) finish(ctx context.Context, m *domain.Match, r *roster) error {
	winner := domain.TeamA
	if m.BScore > m.AScore {
		winner = domain.TeamB
	}
	if err := l.settleAll(ctx, m, r, winner); err != nil {
		return err
	}

	stats, err := l.p.Stats.List(ctx, m.MatchID)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	l.logger.Info().Str("winner", string(winner)).Int("a_score", m.AScore).Int("b_score", m.BScore).Msg("match ended")

	l.notify(ctx, m, presentation.Notice{Kind: presentation.NoticeMatchEnded, Team: winner, AScore: m.AScore, BScore: m.BScore})
	l.p.Results.PostResult(ctx, m, r.players, stats)
	return l.advance(ctx, m)
}

func teamView(m *domain.Match, team domain.Team) (own, opp float64, ownScore, oppScore int) {
	if team == domain.TeamB {
		return m.BMMR, m.AMMR, m.BScore, m.AScore
	}
	return m.AMMR, m.BMMR, m.AScore, m.BScore
}

func (l *Lifecycle) settleAll(ctx context.Context, m *domain.Match, r *roster, winner domain.Team) error {
	for _, p := range r.players {
		outcome := rating.Loss
		if p.Team == winner {
			outcome = rating.Win
		}
		if err := l.settle(ctx, m, p, outcome); err != nil {
			return err
		}
	}
	return nil
}

// settleAbandons applies the abandon penalty to the listed players only.
func (l *Lifecycle) settleAbandons(ctx context.Context, m *domain.Match, players []domain.Player, userIDs []string) error {
	for _, p := range players {
		if !lo.Contains(userIDs, p.UserID) {
			continue
		}
		if err := l.settle(ctx, m, p, rating.Abandon); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lifecycle) settle(ctx context.Context, m *domain.Match, p domain.Player, outcome rating.Outcome) error {
	ctStart := m.SideOf(p.Team) == domain.SideCT
	if err := l.p.Stats.Ensure(ctx, m.MatchID, p.UserID, p.MMR, ctStart); err != nil {
		return fmt.Errorf("failed to create stats for %s: %w", p.UserID, err)
	}
	stats, err := l.p.Stats.List(ctx, m.MatchID)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	s, _ := lo.Find(stats, func(s domain.MatchPlayerStats) bool { return s.UserID == p.UserID })
	if s.Settled() {
		return nil
	}

	own, opp, ownScore, oppScore := teamView(m, p.Team)
	change := rating.Apply(rating.Input{
		Kills:    s.Kills,
		Deaths:   s.Deaths,
		Assists:  s.Assists,
		Outcome:  outcome,
		OwnAvg:   own,
		OppAvg:   opp,
		OwnScore: ownScore,
		OppScore: oppScore,
	})

	settled, err := l.p.Stats.Settle(ctx, m.MatchID, p.UserID, repository.Settlement{
		MMRChange:    change,
		Win:          outcome == rating.Win,
		Abandoned:    outcome == rating.Abandon,
		RoundsPlayed: s.RoundsPlayed,
	})
	if err != nil {
		return err
	}
	if settled {
		l.p.Metrics.MMRChange(change)
		l.logger.Info().Str("user_id", p.UserID).Str("outcome", outcome.String()).Int("mmr_change", change).Msg("player settled")
	}
	return nil
}
