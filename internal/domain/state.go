package domain

// MatchState is the persisted lifecycle phase. Values are strictly increasing
// in lifecycle order and are stored as integers, so the order must not change.
type MatchState int

const (
	StateNotStarted MatchState = iota
	StateCreateMatchThread
	StateAcceptPlayers
	StateMakeTeams
	StateMakeTeamVCA
	StateMakeTeamVCB
	StateMakeTeamThreadA
	StateMakeTeamThreadB
	StateBanningStart
	StateABans
	StateBanSwap
	StateBBans
	StatePickingStart
	StateAPick
	StatePickSwap
	StateBPick
	StateMatchStarting
	StateMatchFindServer
	StateMatchWaitForPlayers
	StateMatchStartSND
	StateMatchWaitForEnd
	StateMatchCleanup
	StateCleanup
	StateFinished
)

var stateNames = [...]string{
	"NOT_STARTED",
	"CREATE_MATCH_THREAD",
	"ACCEPT_PLAYERS",
	"MAKE_TEAMS",
	"MAKE_TEAM_VC_A",
	"MAKE_TEAM_VC_B",
	"MAKE_TEAM_THREAD_A",
	"MAKE_TEAM_THREAD_B",
	"BANNING_START",
	"A_BANS",
	"BAN_SWAP",
	"B_BANS",
	"PICKING_START",
	"A_PICK",
	"PICK_SWAP",
	"B_PICK",
	"MATCH_STARTING",
	"MATCH_FIND_SERVER",
	"MATCH_WAIT_FOR_PLAYERS",
	"MATCH_START_SND",
	"MATCH_WAIT_FOR_END",
	"MATCH_CLEANUP",
	"CLEANUP",
	"FINISHED",
}

func (s MatchState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

func (s MatchState) Next() MatchState {
	if s >= StateFinished {
		return StateFinished
	}
	return s + 1
}

// VotePhase returns the vote window open during the state, if any.
func (s MatchState) VotePhase() (VotePhase, bool) {
	switch s {
	case StateABans:
		return VoteBanA, true
	case StateBBans:
		return VoteBanB, true
	case StateAPick:
		return VoteMap, true
	case StateBPick:
		return VoteSide, true
	}
	return "", false
}
