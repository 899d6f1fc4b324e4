package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/models"
)

const (
	colorCustom  = 0x0099ff
	colorDiscord = 0x008000
)

// eventMessage renders one event as an embed plus, for custom events, its
// RSVP button row. Discord-hosted events get an interested list and no
// buttons.
func (b *Bot) eventMessage(ev *models.Event) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	local := ev.StartTime.In(b.loc)
	description := fmt.Sprintf("**Where:** %s\n**When:** %s @ %s\n**About:** %s",
		ev.Location,
		local.Format("Monday, January 2"),
		local.Format("3:04 PM"),
		ev.Description,
	)

	embed := &discordgo.MessageEmbed{
		Title:       ev.DisplayTitle(),
		Description: description,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Event ID: " + ev.ID},
	}

	if ev.Source == models.SourceDiscord {
		embed.Color = colorDiscord
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name:   fmt.Sprintf("Interested (%d)", len(ev.Interested)),
				Value:  b.nameList(ev.GuildID, ev.Interested),
				Inline: true,
			},
		}
		return embed, nil
	}

	embed.Color = colorCustom
	embed.Description = fmt.Sprintf("%s\n**Organizer:** %s", description, b.displayName(ev.GuildID, ev.OrganizerID))
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   fmt.Sprintf("Going (%d)", len(ev.Going)),
			Value:  b.nameList(ev.GuildID, ev.Going),
			Inline: true,
		},
		{
			Name:   fmt.Sprintf("Maybe (%d)", len(ev.Maybe)),
			Value:  b.nameList(ev.GuildID, ev.Maybe),
			Inline: true,
		},
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: "going_" + ev.ID,
					Label:    fmt.Sprintf("🎉 Going to Event: %s", ev.ID),
					Style:    discordgo.SuccessButton,
				},
				discordgo.Button{
					CustomID: "maybe_" + ev.ID,
					Label:    fmt.Sprintf("🤷 Maybe for Event: %s", ev.ID),
					Style:    discordgo.PrimaryButton,
				},
			},
		},
	}
	return embed, components
}

// displayName resolves a guild member's display name, degrading to the raw
// id when the lookup fails so rendering never blocks on one bad fetch.
func (b *Bot) displayName(guildID, userID string) string {
	member, err := b.members.GuildMember(guildID, userID)
	if err != nil {
		b.log.Warn("fetch member failed", zap.String("user_id", userID), zap.Error(err))
		return userID
	}
	return member.DisplayName()
}

func (b *Bot) nameList(guildID string, userIDs []string) string {
	if len(userIDs) == 0 {
		return "No one yet"
	}
	names := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		names = append(names, b.displayName(guildID, id))
	}
	return strings.Join(names, "\n")
}
