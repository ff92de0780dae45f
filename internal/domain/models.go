package domain

import (
	"time"
)

type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

func (t Team) Other() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// Side is the starting side of a team in a search-and-destroy match.
type Side string

const (
	SideCT Side = "CT"
	SideT  Side = "T"
)

// GameTeamID is the team index the game server uses for a side.
func (s Side) GameTeamID() int {
	if s == SideT {
		return 1
	}
	return 0
}

type VotePhase string

const (
	VoteBanA VotePhase = "a_bans"
	VoteBanB VotePhase = "b_bans"
	VoteMap  VotePhase = "a_pick"
	VoteSide VotePhase = "b_pick"
)

// Team returns the team allowed to vote in the phase.
func (p VotePhase) Team() Team {
	if p == VoteBanA || p == VoteMap {
		return TeamA
	}
	return TeamB
}

type Match struct {
	MatchID         string
	State           MatchState
	AMMR            float64
	BMMR            float64
	Map             string
	ABans           []string
	BBans           []string
	BSide           Side
	ServerID        *int64
	Pin             string
	ThreadID        string
	AcceptMessageID string
	AVoiceID        string
	BVoiceID        string
	AThreadID       string
	BThreadID       string
	AScore          int
	BScore          int
	Complete        bool
	Abandoned       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ASide is the side Team A starts on.
func (m *Match) ASide() Side {
	if m.BSide == SideCT {
		return SideT
	}
	return SideCT
}

func (m *Match) SideOf(team Team) Side {
	if team == TeamB {
		return m.BSide
	}
	return m.ASide()
}

func (m *Match) VoiceChannel(team Team) string {
	if team == TeamB {
		return m.BVoiceID
	}
	return m.AVoiceID
}

func (m *Match) TeamThread(team Team) string {
	if team == TeamB {
		return m.BThreadID
	}
	return m.AThreadID
}

type Player struct {
	MatchID  string
	UserID   string
	Team     Team // empty until MAKE_TEAMS
	Accepted bool
	MMR      int
	Region   string
}

type User struct {
	UserID    string
	MMR       int
	Region    string
	Wins      int
	Losses    int
	Abandons  int
	Games     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Vote struct {
	VoteID    string // nanoid
	MatchID   string
	UserID    string
	Phase     VotePhase
	Choice    string
	CreatedAt time.Time
}

type RconServer struct {
	ServerID  int64
	Name      string
	Host      string
	Port      int
	Password  string
	Region    string
	BeingUsed bool
	MatchID   string
}

type MatchPlayerStats struct {
	MatchID      string
	UserID       string
	Kills        int
	Deaths       int
	Assists      int
	Score        int
	MMRBefore    int
	MMRChange    *int // nil until settled
	CTStart      bool
	Win          bool
	Abandoned    bool
	RoundsPlayed int
	UpdatedAt    time.Time
}

func (s *MatchPlayerStats) Settled() bool {
	return s.MMRChange != nil
}

// SameLive reports whether the live counters match.
func (s *MatchPlayerStats) SameLive(o *MatchPlayerStats) bool {
	return s.Kills == o.Kills &&
		s.Deaths == o.Deaths &&
		s.Assists == o.Assists &&
		s.Score == o.Score &&
		s.RoundsPlayed == o.RoundsPlayed
}
