package presentation

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "join",
		Description: "Join the match queue",
	},
	{
		Name:        "leave",
		Description: "Leave the match queue",
	},
	{
		Name:        "link",
		Description: "Link your game account",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "platform_id",
				Description: "Your platform id as shown in game",
				Required:    true,
			},
		},
	},
	{
		Name:        "region",
		Description: "Set your preferred server region",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "region",
				Description: "Region such as eu-west or na-east",
				Required:    true,
			},
		},
	},
}

// QueueComponents are the join and leave buttons of the queue panel.
func QueueComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.Button{Label: "Join", Style: discordgo.PrimaryButton, CustomID: componentJoin},
				&discordgo.Button{Label: "Leave", Style: discordgo.DangerButton, CustomID: componentLeave},
			},
		},
	}
}

func (d *Discord) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUser(i)
	if userID == "" {
		return
	}
	logger := d.logger.With().Str("user_id", userID).Str("channel_id", i.ChannelID).Logger()

	routes, err := d.currentRoutes()
	if err != nil {
		d.reply(s, i, err.Error())
		return
	}

	ctx, cancel := interactionContext()
	defer cancel()

	var text string
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		logger.Debug().Str("custom_id", customID).Msg("handling component")
		text, err = handleComponent(ctx, routes, userID, customID)
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		logger.Debug().Str("command", data.Name).Msg("handling command")
		text, err = handleCommand(ctx, routes, userID, data)
	default:
		return
	}

	if err != nil {
		logger.Warn().Err(err).Msg("interaction rejected")
		text = capitalize(err.Error()) + "."
	}
	d.reply(s, i, text)
}

// handleComponent dispatches a button press. Custom ids have the form
// kind[:match id[:choice]].
func handleComponent(ctx context.Context, routes *Routes, userID, customID string) (string, error) {
	kind, rest, _ := strings.Cut(customID, ":")
	switch kind {
	case componentAccept:
		changed, err := routes.Matches.Accept(ctx, rest, userID)
		if err != nil {
			return "", err
		}
		if !changed {
			return "You already accepted.", nil
		}
		return "Accepted.", nil
	case componentVote:
		matchID, choice, ok := strings.Cut(rest, ":")
		if !ok {
			return "", fmt.Errorf("malformed vote %q", customID)
		}
		if err := routes.Matches.CastVote(ctx, matchID, userID, choice); err != nil {
			return "", err
		}
		return fmt.Sprintf("Voted for %s.", choice), nil
	case componentJoin:
		return join(ctx, routes, userID)
	case componentLeave:
		return leave(ctx, routes, userID)
	}
	return "", fmt.Errorf("unknown component %q", kind)
}

func handleCommand(ctx context.Context, routes *Routes, userID string, data discordgo.ApplicationCommandInteractionData) (string, error) {
	switch data.Name {
	case "join":
		return join(ctx, routes, userID)
	case "leave":
		return leave(ctx, routes, userID)
	case "link":
		platformID := optionString(data.Options, "platform_id")
		if err := routes.Profiles.LinkPlatform(ctx, userID, platformID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Linked %s.", platformID), nil
	case "region":
		region := strings.ToLower(optionString(data.Options, "region"))
		if err := routes.Profiles.SetRegion(ctx, userID, region); err != nil {
			return "", err
		}
		return fmt.Sprintf("Region set to %s.", region), nil
	}
	return "", fmt.Errorf("unknown command %q", data.Name)
}

func join(ctx context.Context, routes *Routes, userID string) (string, error) {
	matchID, err := routes.Queue.Join(ctx, userID)
	if err != nil {
		return "", err
	}
	if matchID != "" {
		return fmt.Sprintf("Queue popped, match %s is starting.", matchID), nil
	}
	return "Joined the queue.", nil
}

func leave(ctx context.Context, routes *Routes, userID string) (string, error) {
	if err := routes.Queue.Leave(ctx, userID); err != nil {
		return "", err
	}
	return "Left the queue.", nil
}

func (d *Discord) reply(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: text,
		},
	})
	if err != nil {
		d.logger.Warn().Err(err).Msg("failed to respond to interaction")
	}
}

func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return strings.TrimSpace(opt.StringValue())
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
