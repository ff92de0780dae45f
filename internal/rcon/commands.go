package rcon

import (
	"context"
	"strconv"
)

type ServerInfo struct {
	ServerName  string
	MapLabel    string
	GameMode    string
	RoundState  string
	PlayerCount string
	Teams       bool
	Team0Score  int
	Team1Score  int
	Round       int
}

// Score returns the round score of a game team (0 or 1).
func (s ServerInfo) Score(gameTeam int) int {
	if gameTeam == 1 {
		return s.Team1Score
	}
	return s.Team0Score
}

type serverInfoJSON struct {
	ServerName  string  `json:"ServerName"`
	MapLabel    string  `json:"MapLabel"`
	GameMode    string  `json:"GameMode"`
	RoundState  string  `json:"RoundState"`
	PlayerCount string  `json:"PlayerCount"`
	Teams       bool    `json:"Teams"`
	Team0Score  flexInt `json:"Team0Score"`
	Team1Score  flexInt `json:"Team1Score"`
	Round       flexInt `json:"Round"`
}

// PlayerStats is one entry of the live scoreboard.
type PlayerStats struct {
	PlayerName string
	UniqueID   string
	TeamID     int
	Kills      int
	Deaths     int
	Assists    int
	Score      int
}

type inspectJSON struct {
	PlayerName string  `json:"PlayerName"`
	UniqueID   string  `json:"UniqueId"`
	KDA        string  `json:"KDA"`
	Score      flexInt `json:"Score"`
	TeamID     flexInt `json:"TeamId"`
}

type ConnectedPlayer struct {
	Username string `json:"Username"`
	UniqueID string `json:"UniqueId"`
}

func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, bool) {
	reply := c.Call(ctx, "ServerInfo")
	var raw serverInfoJSON
	if reply.Empty() || reply.Field("ServerInfo", &raw) != nil {
		return ServerInfo{}, false
	}
	return ServerInfo{
		ServerName:  raw.ServerName,
		MapLabel:    raw.MapLabel,
		GameMode:    raw.GameMode,
		RoundState:  raw.RoundState,
		PlayerCount: raw.PlayerCount,
		Teams:       raw.Teams,
		Team0Score:  int(raw.Team0Score),
		Team1Score:  int(raw.Team1Score),
		Round:       int(raw.Round),
	}, true
}

// Probe reports whether the server answers at all.
func (c *Client) Probe(ctx context.Context) bool {
	_, ok := c.ServerInfo(ctx)
	return ok
}

func (c *Client) InspectAll(ctx context.Context) ([]PlayerStats, bool) {
	reply := c.Call(ctx, "InspectAll")
	var raw []inspectJSON
	if reply.Empty() || reply.Field("InspectList", &raw) != nil {
		return nil, false
	}

	stats := make([]PlayerStats, 0, len(raw))
	for _, p := range raw {
		kills, deaths, assists := parseKDA(p.KDA)
		stats = append(stats, PlayerStats{
			PlayerName: p.PlayerName,
			UniqueID:   p.UniqueID,
			TeamID:     int(p.TeamID),
			Kills:      kills,
			Deaths:     deaths,
			Assists:    assists,
			Score:      int(p.Score),
		})
	}
	return stats, true
}

func (c *Client) RefreshList(ctx context.Context) ([]ConnectedPlayer, bool) {
	reply := c.Call(ctx, "RefreshList")
	var players []ConnectedPlayer
	if reply.Empty() || reply.Field("PlayerList", &players) != nil {
		return nil, false
	}
	return players, true
}

func (c *Client) Banlist(ctx context.Context) ([]string, bool) {
	reply := c.Call(ctx, "Banlist")
	var ids []string
	if reply.Empty() || reply.Field("BanList", &ids) != nil {
		return nil, false
	}
	return ids, true
}

func (c *Client) Kick(ctx context.Context, uniqueID string) bool {
	return !c.Call(ctx, "Kick", uniqueID).Empty()
}

func (c *Client) Unban(ctx context.Context, uniqueID string) bool {
	return !c.Call(ctx, "Unban", uniqueID).Empty()
}

func (c *Client) SwitchTeam(ctx context.Context, uniqueID string, gameTeam int) bool {
	return !c.Call(ctx, "SwitchTeam", uniqueID, strconv.Itoa(gameTeam)).Empty()
}

// SetPin sets the join PIN; an empty pin clears it.
func (c *Client) SetPin(ctx context.Context, pin string) bool {
	if pin == "" {
		return !c.Call(ctx, "SetPin").Empty()
	}
	return !c.Call(ctx, "SetPin", pin).Empty()
}

func (c *Client) SetMaxPlayers(ctx context.Context, n int) bool {
	return !c.Call(ctx, "SetMaxPlayers", strconv.Itoa(n)).Empty()
}

func (c *Client) UpdateServerName(ctx context.Context, name string) bool {
	return !c.Call(ctx, "UpdateServerName", name).Empty()
}

func (c *Client) EnableCompMode(ctx context.Context, on bool) bool {
	return !c.Call(ctx, "EnableCompMode", strconv.FormatBool(on)).Empty()
}

func (c *Client) ResetSND(ctx context.Context) bool {
	return !c.Call(ctx, "ResetSND").Empty()
}

func (c *Client) SwitchMap(ctx context.Context, mapID, mode string) bool {
	return !c.Call(ctx, "SwitchMap", mapID, mode).Empty()
}

// ClearBans unbans every id on the server ban list.
func (c *Client) ClearBans(ctx context.Context) bool {
	ids, ok := c.Banlist(ctx)
	if !ok {
		return false
	}
	for _, id := range ids {
		if !c.Unban(ctx, id) {
			return false
		}
	}
	return true
}
