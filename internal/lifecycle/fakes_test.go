package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"matchbot/internal/domain"
	"matchbot/internal/presentation"
	"matchbot/internal/rcon"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

type fakePresenter struct {
	mu          sync.Mutex
	threads     int
	prompts     int
	voices      int
	teamThreads int
	votes       []domain.VotePhase
	notices     []presentation.Notice
	deleted     []string
	moved       []string
	movedTo     string
	dms         map[string][]string
	failThread  bool
	panicMoves  int

	onAcceptPrompt func(m *domain.Match, players []domain.Player)
	onVote         func(m *domain.Match, phase domain.VotePhase, options []string)
}

func (p *fakePresenter) CreateMatchThread(ctx context.Context, m *domain.Match, players []domain.Player) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failThread {
		return "", errors.New("missing permissions")
	}
	p.threads++
	return fmt.Sprintf("thread-%d", p.threads), nil
}

func (p *fakePresenter) PostAcceptPrompt(ctx context.Context, m *domain.Match, players []domain.Player, deadline time.Time) (string, error) {
	p.mu.Lock()
	p.prompts++
	id := fmt.Sprintf("prompt-%d", p.prompts)
	hook := p.onAcceptPrompt
	p.mu.Unlock()

	if hook != nil {
		hook(m, players)
	}
	return id, nil
}

func (p *fakePresenter) CreateTeamVoice(ctx context.Context, m *domain.Match, team domain.Team, players []domain.Player) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.voices++
	return "voice-" + string(team), nil
}

func (p *fakePresenter) CreateTeamThread(ctx context.Context, m *domain.Match, team domain.Team, players []domain.Player) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teamThreads++
	return "team-thread-" + string(team), nil
}

func (p *fakePresenter) OpenVote(ctx context.Context, m *domain.Match, phase domain.VotePhase, options []string, deadline time.Time) error {
	p.mu.Lock()
	p.votes = append(p.votes, phase)
	hook := p.onVote
	p.mu.Unlock()

	if hook != nil {
		hook(m, phase, options)
	}
	return nil
}

func (p *fakePresenter) Notify(ctx context.Context, m *domain.Match, n presentation.Notice) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, n)
	return nil
}

func (p *fakePresenter) DirectMessage(ctx context.Context, userID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dms == nil {
		p.dms = map[string][]string{}
	}
	p.dms[userID] = append(p.dms[userID], text)
	return nil
}

func (p *fakePresenter) DeleteChannel(ctx context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, channelID)
	return nil
}

func (p *fakePresenter) MoveVoiceMembers(ctx context.Context, from []string, to string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panicMoves > 0 {
		p.panicMoves--
		panic("voice gateway closed")
	}
	p.moved = append(p.moved, from...)
	p.movedTo = to
	return nil
}

func (p *fakePresenter) notice(kind presentation.NoticeKind) (presentation.Notice, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.notices {
		if n.Kind == kind {
			return n, true
		}
	}
	return presentation.Notice{}, false
}

func (p *fakePresenter) noticeCount(kind presentation.NoticeKind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, notice := range p.notices {
		if notice.Kind == kind {
			n++
		}
	}
	return n
}

func (p *fakePresenter) dmsTo(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.dms[userID])
}

func (p *fakePresenter) count(field *int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *field
}

// fakeGame is a scripted game server behind the rcon dialer. Once ResetSND
// was received every ServerInfo call plays one round won by game team 0.
type fakeGame struct {
	mu       sync.Mutex
	players  map[string]int
	hidden   map[string]bool
	live     bool
	round    int
	score0   int
	score1   int
	commands []string
	down     bool
}

func newFakeGame() *fakeGame {
	return &fakeGame{players: map[string]int{}, hidden: map[string]bool{}}
}

func (g *fakeGame) Dial(ctx context.Context, addr, password string) (rcon.Conn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.down {
		return nil, fmt.Errorf("dial %s: %w", addr, syscall.ECONNREFUSED)
	}
	return &gameConn{g: g}, nil
}

func (g *fakeGame) sent(prefix string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, c := range g.commands {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

type gameConn struct {
	g *fakeGame
}

func (c *gameConn) Close() error { return nil }

func (c *gameConn) Send(ctx context.Context, command string) (rcon.Reply, error) {
	g := c.g
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commands = append(g.commands, command)

	fields := strings.Fields(command)
	body := map[string]any{"Successful": true}
	switch fields[0] {
	case "ServerInfo":
		if g.live && g.score0 < 10 {
			g.round++
			g.score0++
		}
		body["ServerInfo"] = map[string]any{
			"GameMode":   "SND",
			"Round":      strconv.Itoa(g.round),
			"Team0Score": strconv.Itoa(g.score0),
			"Team1Score": strconv.Itoa(g.score1),
		}
	case "InspectAll":
		list := []map[string]any{}
		for id, team := range g.players {
			if g.hidden[id] {
				continue
			}
			list = append(list, map[string]any{
				"PlayerName": id,
				"UniqueId":   id,
				"KDA":        fmt.Sprintf("%d/1/0", g.round),
				"Score":      g.round * 100,
				"TeamId":     team,
			})
		}
		body["InspectList"] = list
	case "Kick":
		delete(g.players, fields[1])
	case "SwitchTeam":
		team, _ := strconv.Atoi(fields[2])
		g.players[fields[1]] = team
	case "Banlist":
		body["BanList"] = []string{}
	case "ResetSND":
		g.live = true
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var reply rcon.Reply
	err = json.Unmarshal(raw, &reply)
	return reply, err
}
