package lifecycle

import (
	"context"
	"fmt"
	"matchbot/internal/balance"
	"matchbot/internal/config"
	"matchbot/internal/database"
	"matchbot/internal/db"
	"matchbot/internal/domain"
	"matchbot/internal/draft"
	"matchbot/internal/metrics"
	"matchbot/internal/notify"
	"matchbot/internal/presentation"
	"matchbot/internal/rcon"
	"matchbot/internal/repository"
	"matchbot/internal/serverpool"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t         *testing.T
	params    Params
	servers   *repository.ServerRepository
	game      *fakeGame
	presenter *fakePresenter
	mgr       *Manager
}

func testConfig() *config.Config {
	return &config.Config{
		GeneralVoiceChannelID: "general",
		AcceptPeriod:          5 * time.Second,
		BanPeriod:             30 * time.Millisecond,
		PickPeriod:            30 * time.Millisecond,
		PollInterval:          2 * time.Millisecond,
		ReminderOffsets:       []time.Duration{time.Second},
		RconAttempts:          2,
		RconBackoff:           time.Millisecond,
		MapPool:               config.DefaultMapPool,
		TeamSize:              5,
		DefaultMMR:            1000,
	}
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	logger := zerolog.Nop()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "lifecycle.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	q := db.New(sqlDB)
	servers := repository.NewServerRepository(sqlDB, q, logger)
	require.NoError(t, servers.UpsertBatch(context.Background(), []domain.RconServer{
		{Name: "eu-1", Host: "game.local", Port: 7777, Password: "pw", Region: "eu-west"},
	}))

	game := newFakeGame()
	registry := rcon.NewRegistryWithDialer(game, cfg.RconAttempts, cfg.RconBackoff, logger)
	rng := rand.New(rand.NewPCG(1, 2))

	h := &harness{
		t:         t,
		servers:   servers,
		game:      game,
		presenter: &fakePresenter{},
	}
	h.params = Params{
		Config:    cfg,
		Matches:   repository.NewMatchRepository(sqlDB, q, logger),
		Users:     repository.NewUserRepository(sqlDB, q, logger),
		Votes:     repository.NewVoteRepository(sqlDB, q, logger),
		Stats:     repository.NewStatsRepository(sqlDB, q, logger),
		Pool:      serverpool.New(servers, registry, logger),
		Rcon:      registry,
		Balancer:  balance.New(rng),
		Draft:     draft.New(rng),
		Presenter: h.presenter,
		Results:   notify.NewResultsWebhook(cfg, logger),
		Metrics:   metrics.New(),
		Logger:    logger,
	}
	h.mgr = NewManager(h.params)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.mgr.Stop(ctx)
	})
	return h
}

func platformID(userID string) string {
	return "steam-" + userID
}

// seedMatch creates ten users with linked platform accounts and a match
// holding them.
func (h *harness) seedMatch(matchID string) []string {
	h.t.Helper()
	ctx := context.Background()
	var ids []string
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("u%d", i)
		require.NoError(h.t, h.params.Users.Ensure(ctx, id, 1000+i*50))
		require.NoError(h.t, h.params.Users.SetRegion(ctx, id, "eu-west"))
		require.NoError(h.t, h.params.Users.LinkPlatform(ctx, id, platformID(id)))
		ids = append(ids, id)
	}
	_, err := h.params.Matches.Create(ctx, matchID, ids)
	require.NoError(h.t, err)
	return ids
}

func (h *harness) match(matchID string) *domain.Match {
	h.t.Helper()
	m, err := h.params.Matches.Get(context.Background(), matchID)
	require.NoError(h.t, err)
	return m
}

func (h *harness) waitDone(matchID string) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		return !slices.Contains(h.mgr.Active(), matchID)
	}, 10*time.Second, 5*time.Millisecond, "lifecycle did not finish")
}

func (h *harness) acceptAll(matchID string) {
	h.presenter.onAcceptPrompt = func(m *domain.Match, players []domain.Player) {
		for _, p := range players {
			_, err := h.mgr.Accept(context.Background(), matchID, p.UserID)
			assert.NoError(h.t, err)
		}
	}
}

func (h *harness) voteAs(matchID string, team domain.Team, choices ...string) {
	h.t.Helper()
	players, err := h.params.Matches.Players(context.Background(), matchID)
	require.NoError(h.t, err)
	i := 0
	for _, p := range players {
		if p.Team != team || i >= len(choices) {
			continue
		}
		assert.NoError(h.t, h.mgr.CastVote(context.Background(), matchID, p.UserID, choices[i]))
		i++
	}
}

func TestFullMatch(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	ids := h.seedMatch("m1")

	for _, id := range ids {
		h.game.players[platformID(id)] = 0
	}
	h.game.players["intruder"] = 1

	h.acceptAll("m1")
	var wrongTeamErr, badChoiceErr error
	h.presenter.onVote = func(m *domain.Match, phase domain.VotePhase, options []string) {
		switch phase {
		case domain.VoteBanA:
			h.voteAs("m1", domain.TeamA, "sand", "sand", "sand", "bridge", "bridge")
			players, _ := h.params.Matches.Players(ctx, "m1")
			for _, p := range players {
				if p.Team == domain.TeamB {
					wrongTeamErr = h.mgr.CastVote(ctx, "m1", p.UserID, "prodigy")
					break
				}
			}
		case domain.VoteBanB:
			h.voteAs("m1", domain.TeamB, "rooftops", "rooftops", "rooftops", "stalingrad", "stalingrad")
			players, _ := h.params.Matches.Players(ctx, "m1")
			for _, p := range players {
				if p.Team == domain.TeamB {
					badChoiceErr = h.mgr.CastVote(ctx, "m1", p.UserID, "sand")
					break
				}
			}
		case domain.VoteMap:
			h.voteAs("m1", domain.TeamA, "prodigy", "prodigy", "datacenter")
		case domain.VoteSide:
			h.voteAs("m1", domain.TeamB, "T", "T", "CT")
		}
	}

	require.NoError(t, h.mgr.Start(ctx, "m1"))
	h.waitDone("m1")

	m := h.match("m1")
	assert.Equal(t, domain.StateFinished, m.State)
	assert.True(t, m.Complete)
	assert.False(t, m.Abandoned)
	assert.Equal(t, []string{"sand", "bridge"}, m.ABans)
	assert.Equal(t, []string{"rooftops", "stalingrad"}, m.BBans)
	assert.Equal(t, "prodigy", m.Map)
	assert.Equal(t, domain.SideT, m.BSide)
	assert.Equal(t, 10, m.AScore)
	assert.Equal(t, 0, m.BScore)
	assert.Len(t, m.Pin, 4)
	require.NotNil(t, m.ServerID)

	assert.ErrorIs(t, wrongTeamErr, ErrVoteClosed)
	assert.ErrorIs(t, badChoiceErr, ErrInvalidChoice)

	players, err := h.params.Matches.Players(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, teamOf(players, domain.TeamA), 5)
	assert.Len(t, teamOf(players, domain.TeamB), 5)

	stats, err := h.params.Stats.List(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, stats, 10)
	for _, s := range stats {
		require.True(t, s.Settled(), s.UserID)
		user, err := h.params.Users.Get(ctx, s.UserID)
		require.NoError(t, err)
		assert.Equal(t, s.MMRBefore+*s.MMRChange, user.MMR)

		p := players[indexOf(players, s.UserID)]
		if p.Team == domain.TeamA {
			assert.Positive(t, *s.MMRChange)
			assert.True(t, s.Win)
			assert.True(t, s.CTStart)
			assert.Equal(t, 1, user.Wins)
		} else {
			assert.Negative(t, *s.MMRChange)
			assert.False(t, s.Win)
			assert.Equal(t, 1, user.Losses)
		}
	}

	free, err := h.servers.ListFree(ctx)
	require.NoError(t, err)
	assert.Len(t, free, 1, "server released")

	assert.Equal(t, []string{"Kick intruder"}, h.game.sent("Kick"))
	assert.Contains(t, h.game.sent("SetPin"), "SetPin "+m.Pin)
	assert.Contains(t, h.game.sent("SwitchMap"), "SwitchMap prodigy SND")
	assert.Len(t, h.game.sent("SwitchTeam"), 5)

	assert.ElementsMatch(t, []string{"voice-A", "voice-B", "team-thread-A", "team-thread-B"}, h.presenter.deleted)
	assert.ElementsMatch(t, []string{"voice-A", "voice-B"}, h.presenter.moved)
	assert.Equal(t, "general", h.presenter.movedTo)

	ended, ok := h.presenter.notice(presentation.NoticeMatchEnded)
	require.True(t, ok)
	assert.Equal(t, domain.TeamA, ended.Team)
	_, ok = h.presenter.notice(presentation.NoticeTeamsFormed)
	assert.True(t, ok)
}

func indexOf(players []domain.Player, userID string) int {
	for i, p := range players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

func TestResumeSkipsCompletedSideEffects(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	h.seedMatch("m1")

	m := h.match("m1")
	m.ThreadID = "existing-thread"
	require.NoError(t, h.params.Matches.Save(ctx, m))
	require.NoError(t, h.params.Matches.SetState(ctx, "m1", domain.StateCreateMatchThread))

	require.NoError(t, h.mgr.Resume(ctx))
	require.Eventually(t, func() bool {
		return h.presenter.count(&h.presenter.prompts) == 1
	}, 5*time.Second, 5*time.Millisecond)

	assert.Zero(t, h.presenter.count(&h.presenter.threads))
	require.Eventually(t, func() bool {
		return h.match("m1").AcceptMessageID == "prompt-1"
	}, 5*time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, h.mgr.Stop(stopCtx))

	m = h.match("m1")
	assert.Equal(t, domain.StateAcceptPlayers, m.State, "shutdown keeps the persisted state")
	assert.Equal(t, "existing-thread", m.ThreadID)
	assert.False(t, m.Complete)

	// a new process picks the match up at the same phase
	presenter := &fakePresenter{}
	params := h.params
	params.Presenter = presenter
	mgr := NewManager(params)
	defer mgr.Stop(stopCtx)

	require.NoError(t, mgr.Resume(ctx))
	assert.Equal(t, []string{"m1"}, mgr.Active())
	for i := 0; i < 10; i++ {
		_, err := mgr.Accept(ctx, "m1", fmt.Sprintf("u%d", i))
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool {
		return h.match("m1").State > domain.StateAcceptPlayers
	}, 5*time.Second, 5*time.Millisecond)

	assert.Zero(t, presenter.count(&presenter.threads))
	assert.Zero(t, presenter.count(&presenter.prompts), "accept prompt is not posted twice")
	assert.Equal(t, []string{"m1"}, mgr.Active())
}

func TestAcceptTimeoutAbortsMatch(t *testing.T) {
	cfg := testConfig()
	cfg.AcceptPeriod = 80 * time.Millisecond
	cfg.ReminderOffsets = []time.Duration{20 * time.Millisecond}
	h := newHarness(t, cfg)
	ctx := context.Background()
	h.seedMatch("m1")

	h.presenter.onAcceptPrompt = func(m *domain.Match, players []domain.Player) {
		_, err := h.mgr.Accept(ctx, "m1", "u3")
		assert.NoError(t, err)
	}

	require.NoError(t, h.mgr.Start(ctx, "m1"))
	h.waitDone("m1")

	m := h.match("m1")
	assert.Equal(t, domain.StateFinished, m.State)
	assert.True(t, m.Complete)
	assert.Nil(t, m.ServerID)

	reminder, ok := h.presenter.notice(presentation.NoticeAcceptReminder)
	require.True(t, ok)
	assert.Len(t, reminder.Users, 9)
	assert.NotContains(t, reminder.Users, "u3")

	timeout, ok := h.presenter.notice(presentation.NoticeAcceptTimeout)
	require.True(t, ok)
	assert.Len(t, timeout.Users, 9)

	// prompt and reminder both reach the missing players privately
	assert.Len(t, h.presenter.dmsTo("u0"), 2)
	assert.Len(t, h.presenter.dmsTo("u3"), 1, "accepted player gets no reminder dm")

	assert.Zero(t, h.presenter.count(&h.presenter.voices))
	free, err := h.servers.ListFree(ctx)
	require.NoError(t, err)
	assert.Len(t, free, 1)

	_, err = h.mgr.Accept(ctx, "m1", "u0")
	assert.ErrorIs(t, err, ErrNotAccepting)
}

func TestRemindersStopOnceEveryoneAccepted(t *testing.T) {
	cfg := testConfig()
	cfg.AcceptPeriod = 300 * time.Millisecond
	cfg.ReminderOffsets = []time.Duration{20 * time.Millisecond, 40 * time.Millisecond}
	h := newHarness(t, cfg)
	ctx := context.Background()
	h.seedMatch("m1")
	h.acceptAll("m1")

	start := time.Now()
	require.NoError(t, h.mgr.Start(ctx, "m1"))
	require.Eventually(t, func() bool {
		return h.match("m1").State > domain.StateAcceptPlayers
	}, 5*time.Second, 2*time.Millisecond)
	require.Less(t, time.Since(start), 300*time.Millisecond, "roster completed inside the window")

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, h.presenter.noticeCount(presentation.NoticeAcceptReminder))
	for i := 0; i < 10; i++ {
		assert.Len(t, h.presenter.dmsTo(fmt.Sprintf("u%d", i)), 1, "only the prompt dm")
	}
}

func TestCancelSettlesAbandons(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	h.seedMatch("m1")

	prompted := make(chan struct{})
	h.presenter.onAcceptPrompt = func(m *domain.Match, players []domain.Player) {
		close(prompted)
	}

	require.NoError(t, h.mgr.Start(ctx, "m1"))
	<-prompted
	require.NoError(t, h.mgr.Cancel("m1", CancelReason{Reason: "no show", Abandoned: []string{"u0"}}))
	h.waitDone("m1")

	m := h.match("m1")
	assert.Equal(t, domain.StateFinished, m.State)
	assert.True(t, m.Abandoned)
	assert.True(t, m.Complete)

	cancelled, ok := h.presenter.notice(presentation.NoticeMatchCancelled)
	require.True(t, ok)
	assert.Equal(t, "no show", cancelled.Reason)

	// abandon doubles the loss: -64 * 0.5 * 4/9, no K/D
	user, err := h.params.Users.Get(ctx, "u0")
	require.NoError(t, err)
	assert.Equal(t, 1000-14, user.MMR)
	assert.Equal(t, 1, user.Abandons)

	other, err := h.params.Users.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1050, other.MMR)

	assert.ErrorIs(t, h.mgr.Cancel("m1", CancelReason{}), ErrNotRunning)
}

func TestFailureFreezesUntilCancelled(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	h.seedMatch("m1")
	h.presenter.failThread = true

	require.NoError(t, h.mgr.Start(ctx, "m1"))
	require.Eventually(t, func() bool {
		_, ok := h.presenter.notice(presentation.NoticeMatchFrozen)
		return ok
	}, 5*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"m1"}, h.mgr.Active(), "frozen match stays parked")
	assert.Equal(t, domain.StateCreateMatchThread, h.match("m1").State)

	require.NoError(t, h.mgr.Cancel("m1", CancelReason{Reason: "operator"}))
	h.waitDone("m1")

	m := h.match("m1")
	assert.Equal(t, domain.StateFinished, m.State)
	assert.True(t, m.Complete)
}

func TestCancelReachesMatchFrozenInCleanup(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	h.seedMatch("m1")
	m := h.match("m1")
	m.AVoiceID = "voice-A"
	require.NoError(t, h.params.Matches.Save(ctx, m))
	h.presenter.failThread = true
	h.presenter.panicMoves = 1

	require.NoError(t, h.mgr.Start(ctx, "m1"))
	require.Eventually(t, func() bool {
		return h.presenter.noticeCount(presentation.NoticeMatchFrozen) == 1
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, h.mgr.Cancel("m1", CancelReason{Reason: "operator"}))
	require.Eventually(t, func() bool {
		return h.presenter.noticeCount(presentation.NoticeMatchFrozen) == 2
	}, 5*time.Second, 5*time.Millisecond, "cleanup freezes")
	assert.Equal(t, []string{"m1"}, h.mgr.Active())
	assert.Equal(t, domain.StateCleanup, h.match("m1").State)

	require.NoError(t, h.mgr.Cancel("m1", CancelReason{Reason: "operator again"}))
	h.waitDone("m1")

	m = h.match("m1")
	assert.Equal(t, domain.StateFinished, m.State)
	assert.True(t, m.Complete)
	assert.Equal(t, 1, h.presenter.noticeCount(presentation.NoticeMatchCancelled), "cancel notice is not repeated from cleanup")
	assert.Contains(t, h.presenter.deleted, "voice-A")
}

// seedLiveMatch puts a drafted match with a reserved server straight into
// the live phase.
func (h *harness) seedLiveMatch(matchID string) {
	h.t.Helper()
	ctx := context.Background()
	ids := h.seedMatch(matchID)

	teams := map[string]domain.Team{}
	for i, id := range ids {
		require.NoError(h.t, mustAccept(h, matchID, id))
		team := domain.TeamA
		if i >= 5 {
			team = domain.TeamB
		}
		teams[id] = team
		h.game.players[platformID(id)] = domain.SideT.GameTeamID()
		if team == domain.TeamA {
			h.game.players[platformID(id)] = domain.SideCT.GameTeamID()
		}
	}

	m := h.match(matchID)
	require.NoError(h.t, h.params.Matches.AssignTeams(ctx, m, teams, 1100, 1350))

	server, err := h.params.Pool.Reserve(ctx, matchID, nil)
	require.NoError(h.t, err)
	m.ServerID = &server.ServerID
	m.Map = "prodigy"
	m.BSide = domain.SideT
	m.Pin = "1234"
	require.NoError(h.t, h.params.Matches.Save(ctx, m))
	require.NoError(h.t, h.params.Matches.SetState(ctx, matchID, domain.StateMatchWaitForEnd))

	h.game.live = true
}

func mustAccept(h *harness, matchID, userID string) error {
	_, err := h.params.Matches.Accept(context.Background(), matchID, userID)
	return err
}

func TestAbandonSettlesOnlyAbandoner(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	h.seedLiveMatch("m1")
	h.game.hidden[platformID("u9")] = true

	require.NoError(t, h.mgr.Start(ctx, "m1"))
	h.waitDone("m1")

	m := h.match("m1")
	assert.Equal(t, domain.StateFinished, m.State)
	assert.True(t, m.Abandoned)
	assert.Less(t, m.AScore, 10)

	abandoned, ok := h.presenter.notice(presentation.NoticePlayerAbandoned)
	require.True(t, ok)
	assert.Equal(t, []string{"u9"}, abandoned.Users)

	stats, err := h.params.Stats.List(ctx, "m1")
	require.NoError(t, err)
	for _, s := range stats {
		if s.UserID == "u9" {
			require.True(t, s.Settled())
			assert.True(t, s.Abandoned)
			assert.Negative(t, *s.MMRChange)
			continue
		}
		assert.False(t, s.Settled(), s.UserID)
	}

	free, err := h.servers.ListFree(ctx)
	require.NoError(t, err)
	assert.Len(t, free, 1)
	assert.Contains(t, h.game.sent("UpdateServerName"), "UpdateServerName Pug Server - Idle")
}

func TestResumeAfterAbandonSettlesNoOneElse(t *testing.T) {
	for _, tc := range []struct {
		name          string
		flagPersisted bool
	}{
		{name: "abandon flag saved", flagPersisted: true},
		{name: "only abandoner settled", flagPersisted: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, testConfig())
			ctx := context.Background()
			h.seedLiveMatch("m1")

			// restart lands after the abandon penalty, before the state moved on
			require.NoError(t, h.params.Stats.Ensure(ctx, "m1", "u9", 1450, false))
			settled, err := h.params.Stats.Settle(ctx, "m1", "u9", repository.Settlement{MMRChange: -14, Abandoned: true})
			require.NoError(t, err)
			require.True(t, settled)
			if tc.flagPersisted {
				m := h.match("m1")
				m.Abandoned = true
				require.NoError(t, h.params.Matches.Save(ctx, m))
			}

			require.NoError(t, h.mgr.Resume(ctx))
			h.waitDone("m1")

			m := h.match("m1")
			assert.Equal(t, domain.StateFinished, m.State)
			assert.True(t, m.Complete)
			assert.Zero(t, m.AScore)
			assert.Zero(t, m.BScore)

			stats, err := h.params.Stats.List(ctx, "m1")
			require.NoError(t, err)
			for _, s := range stats {
				if s.UserID == "u9" {
					assert.True(t, s.Abandoned)
					continue
				}
				assert.False(t, s.Settled(), s.UserID)
			}

			_, ended := h.presenter.notice(presentation.NoticeMatchEnded)
			assert.False(t, ended, "no winner is invented")

			free, err := h.servers.ListFree(ctx)
			require.NoError(t, err)
			assert.Len(t, free, 1)
		})
	}
}

func TestResumeAfterWinFinishesSettlement(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	h.seedLiveMatch("m1")

	m := h.match("m1")
	m.AScore, m.BScore = 7, 10
	require.NoError(t, h.params.Matches.Save(ctx, m))
	require.NoError(t, h.params.Stats.Ensure(ctx, "m1", "u9", 1450, false))
	_, err := h.params.Stats.Settle(ctx, "m1", "u9", repository.Settlement{MMRChange: 20, Win: true})
	require.NoError(t, err)

	require.NoError(t, h.mgr.Resume(ctx))
	h.waitDone("m1")

	stats, err := h.params.Stats.List(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, stats, 10)
	for _, s := range stats {
		require.True(t, s.Settled(), s.UserID)
		if s.UserID == "u9" {
			assert.Equal(t, 20, *s.MMRChange, "settled player is not settled twice")
		}
	}

	ended, ok := h.presenter.notice(presentation.NoticeMatchEnded)
	require.True(t, ok)
	assert.Equal(t, domain.TeamB, ended.Team)
}

func TestAbsenceTracker(t *testing.T) {
	expected := []string{"a", "b"}
	everyone := map[string]bool{"a": true, "b": true}
	withoutB := map[string]bool{"a": true}

	t.Run("five missed rounds abandon", func(t *testing.T) {
		tr := newAbsenceTracker(5)
		for i := 0; i < 4; i++ {
			assert.Empty(t, tr.round(expected, withoutB))
		}
		assert.Equal(t, []string{"b"}, tr.round(expected, withoutB))
	})

	t.Run("reappearing resets the counter", func(t *testing.T) {
		tr := newAbsenceTracker(5)
		for i := 0; i < 4; i++ {
			tr.round(expected, withoutB)
		}
		assert.Empty(t, tr.round(expected, everyone))
		assert.Zero(t, tr.missed["b"])
		for i := 0; i < 4; i++ {
			assert.Empty(t, tr.round(expected, withoutB))
		}
	})
}

func TestGameTeamFollowsSideSwap(t *testing.T) {
	m := &domain.Match{BSide: domain.SideT}
	teams := map[string]domain.Team{"a1": domain.TeamA, "a2": domain.TeamA, "b1": domain.TeamB}

	assert.Equal(t, 0, gameTeamOf(m, domain.TeamA, teams, nil))
	assert.Equal(t, 1, gameTeamOf(m, domain.TeamB, teams, nil))

	swapped := map[string]rcon.PlayerStats{
		"a1": {TeamID: 1},
		"a2": {TeamID: 1},
		"b1": {TeamID: 0},
	}
	assert.Equal(t, 1, gameTeamOf(m, domain.TeamA, teams, swapped))
	assert.Equal(t, 0, gameTeamOf(m, domain.TeamB, teams, swapped))
}
