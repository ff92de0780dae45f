// Package presentation is the chat-facing side of a match: threads, voice
// channels, prompts and notices. The lifecycle only keeps the ids it returns.
package presentation

import (
	"context"
	"matchbot/internal/domain"
	"time"
)

type NoticeKind int

const (
	NoticeAcceptReminder NoticeKind = iota
	NoticeAcceptTimeout
	NoticeTeamsFormed
	NoticeBanningStart
	NoticeBansChosen
	NoticeBanSwap
	NoticePickingStart
	NoticeMapChosen
	NoticePickSwap
	NoticeSideChosen
	NoticeMatchStarting
	NoticeServerFound
	NoticeNoServer
	NoticeMatchLive
	NoticePlayerAbandoned
	NoticeMatchEnded
	NoticeMatchCancelled
	NoticeMatchFrozen
)

var noticeNames = map[NoticeKind]string{
	NoticeAcceptReminder:  "accept_reminder",
	NoticeAcceptTimeout:   "accept_timeout",
	NoticeTeamsFormed:     "teams_formed",
	NoticeBanningStart:    "banning_start",
	NoticeBansChosen:      "bans_chosen",
	NoticeBanSwap:         "ban_swap",
	NoticePickingStart:    "picking_start",
	NoticeMapChosen:       "map_chosen",
	NoticePickSwap:        "pick_swap",
	NoticeSideChosen:      "side_chosen",
	NoticeMatchStarting:   "match_starting",
	NoticeServerFound:     "server_found",
	NoticeNoServer:        "no_server",
	NoticeMatchLive:       "match_live",
	NoticePlayerAbandoned: "player_abandoned",
	NoticeMatchEnded:      "match_ended",
	NoticeMatchCancelled:  "match_cancelled",
	NoticeMatchFrozen:     "match_frozen",
}

func (k NoticeKind) String() string {
	if name, ok := noticeNames[k]; ok {
		return name
	}
	return "unknown"
}

// Notice is a user-visible phase update. Only the fields relevant to the
// kind are set.
type Notice struct {
	Kind      NoticeKind
	Team      domain.Team
	Users     []string
	Remaining time.Duration
	Maps      []string
	Map       string
	Side      domain.Side
	Server    *domain.RconServer
	Pin       string
	AScore    int
	BScore    int
	Reason    string
	TeamA     []domain.Player
	TeamB     []domain.Player
}

// Presenter is implemented by the chat platform integration. Methods that
// create resources return the id the lifecycle persists.
type Presenter interface {
	CreateMatchThread(ctx context.Context, m *domain.Match, players []domain.Player) (string, error)
	PostAcceptPrompt(ctx context.Context, m *domain.Match, players []domain.Player, deadline time.Time) (string, error)
	CreateTeamVoice(ctx context.Context, m *domain.Match, team domain.Team, players []domain.Player) (string, error)
	CreateTeamThread(ctx context.Context, m *domain.Match, team domain.Team, players []domain.Player) (string, error)
	OpenVote(ctx context.Context, m *domain.Match, phase domain.VotePhase, options []string, deadline time.Time) error
	Notify(ctx context.Context, m *domain.Match, n Notice) error
	DirectMessage(ctx context.Context, userID, text string) error
	DeleteChannel(ctx context.Context, channelID string) error
	MoveVoiceMembers(ctx context.Context, fromChannelIDs []string, toChannelID string) error
}
