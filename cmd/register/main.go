// Command register bulk-overwrites the bot's slash commands. Run it once
// after changing the command definitions; the bot itself never registers
// commands.
package main

import (
	"log"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	appID := os.Getenv("DISCORD_APP_ID")
	if token == "" || appID == "" {
		log.Fatal("DISCORD_TOKEN and DISCORD_APP_ID must be set")
	}
	// Empty guild id registers the commands globally.
	guildID := os.Getenv("DISCORD_GUILD_ID")

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("discord session init failed: %v", err)
	}

	registered, err := session.ApplicationCommandBulkOverwrite(appID, guildID, commands())
	if err != nil {
		log.Fatalf("command registration failed: %v", err)
	}
	log.Printf("registered %d application commands", len(registered))
}

func commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "create_event",
			Description: "Schedule a round of disc golf",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "location",
					Description:  "The location of the event (e.g., Tranquility Trails, 1234 Main St, etc.)",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "date",
					Description:  "The date of the event (e.g., MM/DD/YYYY)",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "time",
					Description:  "The time of the event (e.g., 7:00 PM)",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "title",
					Description: "The title of the event (optional)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "description",
					Description: "A description of the event (optional)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "organizer",
					Description: "Whoever is organizing the event (optional)",
				},
			},
		},
		{
			Name:        "delete_event",
			Description: "Delete a disc golf event",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "event_id",
					Description: "The ID of the event to delete",
					Required:    true,
				},
			},
		},
		{
			Name:        "edit_title",
			Description: "Change an event's title",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "event_id",
					Description: "The ID of the event to edit",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "title",
					Description: "The new title",
					Required:    true,
				},
			},
		},
		{
			Name:        "edit_description",
			Description: "Change an event's description",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "event_id",
					Description: "The ID of the event to edit",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "description",
					Description: "The new description",
					Required:    true,
				},
			},
		},
		{
			Name:        "events_today",
			Description: "List all disc golf events happening today",
		},
		{
			Name:        "future_events",
			Description: "List all upcoming disc golf events",
		},
	}
}
