package bot

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const maxChoices = 25

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	focused := focusedOption(i.ApplicationCommandData().Options)
	if focused == nil {
		return
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch focused.Name {
	case "date":
		choices = dateChoices(focused.StringValue(), time.Now().In(b.loc))
	case "time":
		choices = timeChoices(focused.StringValue())
	case "location":
		choices = locationChoices(b.opts.Locations)
	default:
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		b.log.Warn("autocomplete respond failed", zap.String("option", focused.Name), zap.Error(err))
	}
}

func focusedOption(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Focused {
			return opt
		}
	}
	return nil
}

// dateChoices suggests today plus the next seven days. When the user has
// started typing a M/D prefix, the week of suggestions starts there instead.
func dateChoices(query string, now time.Time) []*discordgo.ApplicationCommandOptionChoice {
	start := now
	if strings.TrimSpace(query) != "" {
		parts := strings.Split(strings.TrimSpace(query), "/")
		month, err := strconv.Atoi(parts[0])
		if err != nil || month < 1 || month > 12 {
			return []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Invalid date", Value: "Invalid date"},
			}
		}
		day := now.Day()
		if len(parts) > 1 && parts[1] != "" {
			day, err = strconv.Atoi(parts[1])
			if err != nil || day < 1 || day > 31 {
				return []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Invalid date", Value: "Invalid date"},
				}
			}
		}
		start = time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 8)
	for d := 0; d < 8; d++ {
		value := start.AddDate(0, 0, d).Format("01/02/2006")
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: value, Value: value})
	}
	return choices
}

// timeChoices suggests the day in 15-minute increments, filtered by the
// typed prefix.
func timeChoices(query string) []*discordgo.ApplicationCommandOptionChoice {
	query = strings.ToLower(strings.TrimSpace(query))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute += 15 {
			label := time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format("3:04 PM")
			if query != "" && !strings.HasPrefix(strings.ToLower(label), query) {
				continue
			}
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: label, Value: label})
			if len(choices) == maxChoices {
				return choices
			}
		}
	}
	return choices
}

func locationChoices(locations []string) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(locations))
	for _, loc := range locations {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: loc, Value: loc})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}
