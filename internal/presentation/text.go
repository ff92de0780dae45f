package presentation

import (
	"fmt"
	"matchbot/internal/domain"
	"strings"
	"time"

	"github.com/samber/lo"
)

func userIDs(players []domain.Player) []string {
	return lo.Map(players, func(p domain.Player, _ int) string { return p.UserID })
}

func mentions(ids []string) string {
	return strings.Join(lo.Map(ids, func(id string, _ int) string { return "<@" + id + ">" }), " ")
}

// relative renders a discord timestamp that counts down in the client.
func relative(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

func votePrompt(phase domain.VotePhase) string {
	switch phase {
	case domain.VoteBanA, domain.VoteBanB:
		return fmt.Sprintf("Team %s, ban maps", phase.Team())
	case domain.VoteMap:
		return "Team A, pick the map"
	case domain.VoteSide:
		return "Team B, pick your starting side"
	}
	return string(phase)
}

func roster(players []domain.Player) string {
	return strings.Join(lo.Map(players, func(p domain.Player, _ int) string {
		return fmt.Sprintf("<@%s> (%d)", p.UserID, p.MMR)
	}), "\n")
}

// AcceptDMText is the direct message sent to a player the match is waiting on.
func AcceptDMText(m *domain.Match, remaining time.Duration) string {
	return fmt.Sprintf("Your match is waiting for you. Accept in <#%s>, %s left.", m.ThreadID, remaining.Round(time.Second))
}

// NoticeText renders a notice as a chat message.
func NoticeText(m *domain.Match, n Notice) string {
	switch n.Kind {
	case NoticeAcceptReminder:
		return fmt.Sprintf("%s you have %s left to accept.", mentions(n.Users), n.Remaining.Round(time.Second))
	case NoticeAcceptTimeout:
		return fmt.Sprintf("Match cancelled, %s did not accept in time.", mentions(n.Users))
	case NoticeTeamsFormed:
		return fmt.Sprintf("**Team A** (%.0f)\n%s\n\n**Team B** (%.0f)\n%s", m.AMMR, roster(n.TeamA), m.BMMR, roster(n.TeamB))
	case NoticeBanningStart:
		return "Map bans are starting."
	case NoticeBansChosen:
		return fmt.Sprintf("Team %s banned %s.", n.Team, strings.Join(n.Maps, ", "))
	case NoticeBanSwap:
		return "Team B bans next."
	case NoticePickingStart:
		return "Map pick is starting."
	case NoticeMapChosen:
		return fmt.Sprintf("Team %s picked **%s**.", n.Team, n.Map)
	case NoticePickSwap:
		return "Team B picks the starting side next."
	case NoticeSideChosen:
		return fmt.Sprintf("Team %s starts on %s.", n.Team, n.Side)
	case NoticeMatchStarting:
		return "Looking for a server."
	case NoticeServerFound:
		if n.Server == nil {
			return "Server found."
		}
		return fmt.Sprintf("Server **%s** (%s) is ready. PIN: `%s`", n.Server.Name, n.Server.Region, n.Pin)
	case NoticeNoServer:
		return "No server is available, the match is cancelled."
	case NoticeMatchLive:
		return fmt.Sprintf("Match is live on %s. Good luck!", n.Map)
	case NoticePlayerAbandoned:
		return fmt.Sprintf("%s abandoned the match.", mentions(n.Users))
	case NoticeMatchEnded:
		return fmt.Sprintf("Team %s wins %d - %d.", n.Team, max(n.AScore, n.BScore), min(n.AScore, n.BScore))
	case NoticeMatchCancelled:
		if n.Reason == "" {
			return "Match cancelled."
		}
		return fmt.Sprintf("Match cancelled: %s.", n.Reason)
	case NoticeMatchFrozen:
		return fmt.Sprintf("Match %s is stuck and needs an admin: %s", m.MatchID, n.Reason)
	}
	return n.Kind.String()
}
