package presentation

import (
	"context"
	"errors"
	"fmt"
	"matchbot/internal/config"
	"matchbot/internal/constants"
	"matchbot/internal/domain"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	threadArchiveMinutes = 1440
	buttonsPerRow        = 5
)

// custom id prefixes of message components
const (
	componentAccept = "accept"
	componentVote   = "vote"
	componentJoin   = "queue-join"
	componentLeave  = "queue-leave"
)

var ErrNoRoutes = errors.New("interaction routes not configured")

// Matches, Queue and Profiles are the actions players trigger from chat.
type Matches interface {
	Accept(ctx context.Context, matchID, userID string) (bool, error)
	CastVote(ctx context.Context, matchID, userID, choice string) error
}

type Queue interface {
	Join(ctx context.Context, userID string) (string, error)
	Leave(ctx context.Context, userID string) error
}

type Profiles interface {
	LinkPlatform(ctx context.Context, userID, platformID string) error
	SetRegion(ctx context.Context, userID, region string) error
}

type Routes struct {
	Matches  Matches
	Queue    Queue
	Profiles Profiles
}

// Discord implements Presenter on a discordgo session and routes button and
// slash command interactions back into the bot.
type Discord struct {
	cfg     *config.Config
	session *discordgo.Session
	logger  zerolog.Logger

	mu     sync.RWMutex
	routes *Routes
}

func NewDiscord(cfg *config.Config, logger zerolog.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates | discordgo.IntentsGuildMembers

	d := &Discord{
		cfg:     cfg,
		session: session,
		logger:  logger,
	}
	session.AddHandler(d.onInteraction)
	session.AddHandlerOnce(func(s *discordgo.Session, r *discordgo.Ready) {
		d.logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord session ready")
	})
	return d, nil
}

// Route sets the targets of player interactions. Interactions received
// before routing is configured are rejected.
func (d *Discord) Route(routes Routes) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes = &routes
}

func (d *Discord) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	for _, cmd := range commands {
		if _, err := d.session.ApplicationCommandCreate(d.session.State.User.ID, d.cfg.GuildID, cmd); err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
	}
	d.logger.Info().Int("commands", len(commands)).Msg("discord commands registered")
	return nil
}

func (d *Discord) Close() error {
	return d.session.Close()
}

func (d *Discord) CreateMatchThread(ctx context.Context, m *domain.Match, players []domain.Player) (string, error) {
	thread, err := d.session.ThreadStart(d.cfg.MatchChannelID, "Match "+m.MatchID,
		discordgo.ChannelTypeGuildPublicThread, threadArchiveMinutes, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create match thread: %w", err)
	}

	content := fmt.Sprintf("Match **%s** found for %s", m.MatchID, mentions(userIDs(players)))
	if _, err := d.session.ChannelMessageSend(thread.ID, content, discordgo.WithContext(ctx)); err != nil {
		d.logger.Warn().Err(err).Str("thread_id", thread.ID).Msg("failed to post roster")
	}
	return thread.ID, nil
}

func (d *Discord) PostAcceptPrompt(ctx context.Context, m *domain.Match, players []domain.Player, deadline time.Time) (string, error) {
	msg, err := d.session.ChannelMessageSendComplex(d.matchChannel(m), &discordgo.MessageSend{
		Content: fmt.Sprintf("%s\nAccept the match %s.", mentions(userIDs(players)), relative(deadline)),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					&discordgo.Button{
						Label:    "Accept",
						Style:    discordgo.SuccessButton,
						CustomID: componentAccept + ":" + m.MatchID,
					},
				},
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to post accept prompt: %w", err)
	}
	return msg.ID, nil
}

func (d *Discord) CreateTeamVoice(ctx context.Context, m *domain.Match, team domain.Team, players []domain.Player) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   d.cfg.GuildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionVoiceConnect,
		},
	}
	for _, p := range players {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    p.UserID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionVoiceConnect | discordgo.PermissionViewChannel,
		})
	}

	channel, err := d.session.GuildChannelCreateComplex(d.cfg.GuildID, discordgo.GuildChannelCreateData{
		Name:                 fmt.Sprintf("%s Team %s", m.MatchID, team),
		Type:                 discordgo.ChannelTypeGuildVoice,
		ParentID:             d.cfg.VoiceCategoryID,
		UserLimit:            d.cfg.TeamSize,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create voice channel: %w", err)
	}
	return channel.ID, nil
}

func (d *Discord) CreateTeamThread(ctx context.Context, m *domain.Match, team domain.Team, players []domain.Player) (string, error) {
	thread, err := d.session.ThreadStart(d.cfg.MatchChannelID, fmt.Sprintf("%s Team %s", m.MatchID, team),
		discordgo.ChannelTypeGuildPrivateThread, threadArchiveMinutes, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create team thread: %w", err)
	}
	for _, p := range players {
		if err := d.session.ThreadMemberAdd(thread.ID, p.UserID, discordgo.WithContext(ctx)); err != nil {
			d.logger.Warn().Err(err).Str("user_id", p.UserID).Msg("failed to add team thread member")
		}
	}
	return thread.ID, nil
}

func (d *Discord) OpenVote(ctx context.Context, m *domain.Match, phase domain.VotePhase, options []string, deadline time.Time) error {
	channelID := m.TeamThread(phase.Team())
	if channelID == "" {
		channelID = d.matchChannel(m)
	}
	_, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("%s: vote %s.", votePrompt(phase), relative(deadline)),
		Components: VoteComponents(m.MatchID, options),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open vote: %w", err)
	}
	return nil
}

// VoteComponents lays the options out as buttons, five per row.
func VoteComponents(matchID string, options []string) []discordgo.MessageComponent {
	rows := lo.Map(lo.Chunk(options, buttonsPerRow), func(chunk []string, _ int) discordgo.MessageComponent {
		return discordgo.ActionsRow{
			Components: lo.Map(chunk, func(option string, _ int) discordgo.MessageComponent {
				return &discordgo.Button{
					Label:    option,
					Style:    discordgo.SecondaryButton,
					CustomID: strings.Join([]string{componentVote, matchID, option}, ":"),
				}
			}),
		}
	})
	return rows
}

func (d *Discord) Notify(ctx context.Context, m *domain.Match, n Notice) error {
	if _, err := d.session.ChannelMessageSend(d.matchChannel(m), NoticeText(m, n), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post %s notice: %w", n.Kind, err)
	}
	return nil
}

func (d *Discord) DirectMessage(ctx context.Context, userID, text string) error {
	channel, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open dm channel: %w", err)
	}
	if _, err := d.session.ChannelMessageSend(channel.ID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send dm: %w", err)
	}
	return nil
}

func (d *Discord) DeleteChannel(ctx context.Context, channelID string) error {
	if _, err := d.session.ChannelDelete(channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete channel %s: %w", channelID, err)
	}
	return nil
}

// MoveVoiceMembers moves everyone connected to one of the source channels.
// Members that cannot be moved are skipped.
func (d *Discord) MoveVoiceMembers(ctx context.Context, fromChannelIDs []string, toChannelID string) error {
	guild, err := d.session.State.Guild(d.cfg.GuildID)
	if err != nil {
		return fmt.Errorf("failed to read guild state: %w", err)
	}
	for _, vs := range guild.VoiceStates {
		if !lo.Contains(fromChannelIDs, vs.ChannelID) {
			continue
		}
		if err := d.session.GuildMemberMove(d.cfg.GuildID, vs.UserID, &toChannelID, discordgo.WithContext(ctx)); err != nil {
			d.logger.Warn().Err(err).Str("user_id", vs.UserID).Msg("failed to move voice member")
		}
	}
	return nil
}

func (d *Discord) matchChannel(m *domain.Match) string {
	if m.ThreadID != "" {
		return m.ThreadID
	}
	return d.cfg.MatchChannelID
}

func (d *Discord) currentRoutes() (*Routes, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.routes == nil {
		return nil, ErrNoRoutes
	}
	return d.routes, nil
}

func interactionContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), constants.DiscordTimeout)
}
