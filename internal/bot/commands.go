package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/discord"
	"github.com/cdeck95/dg-events-bot/internal/models"
	"github.com/cdeck95/dg-events-bot/internal/rsvp"
	"github.com/cdeck95/dg-events-bot/internal/when"
)

func (b *Bot) handleCreateEvent(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	location := opts["location"].StringValue()
	dateInput := opts["date"].StringValue()
	timeInput := opts["time"].StringValue()

	start, err := when.ParseDateTime(dateInput, timeInput, b.loc)
	if err != nil {
		b.editReply(s, i, "The provided date or time couldn't be parsed. Please check the formats and try again.")
		return
	}
	if err := when.EnsureFuture(start, time.Now()); err != nil {
		b.editReply(s, i, "The provided date and time must be in the future. Please provide a future date and time.")
		return
	}

	var title, description string
	if opt, ok := opts["title"]; ok {
		title = opt.StringValue()
	}
	if opt, ok := opts["description"]; ok {
		description = opt.StringValue()
	}

	user := interactionUser(i)
	organizerID := user.ID
	if opt, ok := opts["organizer"]; ok {
		organizerID = opt.UserValue(s).ID
	}

	ev := &models.Event{
		ID:          b.store.NextID(),
		Location:    location,
		StartTime:   start,
		OrganizerID: organizerID,
		GuildID:     i.GuildID,
		Source:      models.SourceCustom,
		Status:      models.StatusScheduled,
		Title:       title,
		Description: description,
		Going:       []string{},
		Maybe:       []string{},
	}
	// A failed save is logged by the store; the event still exists in
	// memory and the next save retries the whole snapshot.
	_ = b.store.Upsert(ev)
	b.log.Info("event created",
		zap.String("event_id", ev.ID),
		zap.String("location", ev.Location),
		zap.Time("start", ev.StartTime),
	)

	embed, components := b.eventMessage(ev)
	b.announce(&discordgo.MessageSend{
		Content:    fmt.Sprintf("<@%s>, your event has been created successfully!", user.ID),
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	b.editReply(s, i, fmt.Sprintf("Your event has been created and posted in the <#%s> channel.", b.opts.AnnounceChannelID))
}

func (b *Bot) handleDeleteEvent(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	eventID := opts["event_id"].StringValue()
	found, _ := b.store.Deactivate(eventID)
	if !found {
		b.editReply(s, i, "Invalid event ID. Event not found.")
		return
	}
	b.log.Info("event deactivated", zap.String("event_id", eventID))
	b.announce(&discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>, Event #%s has been successfully deleted.", interactionUser(i).ID, eventID),
	})
	b.editReply(s, i, fmt.Sprintf("Event #%s has been successfully deleted.", eventID))
}

func (b *Bot) handleEditTitle(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	eventID := opts["event_id"].StringValue()
	ev, ok := b.store.Get(eventID)
	if !ok {
		b.editReply(s, i, "Event not found.")
		return
	}
	ev.Title = opts["title"].StringValue()
	_ = b.store.Save()

	embed, _ := b.eventMessage(ev)
	b.announce(&discordgo.MessageSend{
		Content: fmt.Sprintf("📣 Event Update: %s", ev.DisplayTitle()),
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	b.editReply(s, i, fmt.Sprintf("Event title updated successfully. The updated event details have been posted in the <#%s> channel.", b.opts.AnnounceChannelID))
}

func (b *Bot) handleEditDescription(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	eventID := opts["event_id"].StringValue()
	ev, ok := b.store.Get(eventID)
	if !ok {
		b.editReply(s, i, "Event not found.")
		return
	}
	ev.Description = opts["description"].StringValue()
	_ = b.store.Save()

	embed, _ := b.eventMessage(ev)
	b.announce(&discordgo.MessageSend{
		Content: fmt.Sprintf("📣 Event Update: %q Description Updated", ev.DisplayTitle()),
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	b.editReply(s, i, fmt.Sprintf("Event description updated successfully. The updated event details have been posted in the <#%s> channel.", b.opts.AnnounceChannelID))
}

func (b *Bot) handleEventsToday(s *discordgo.Session, i *discordgo.InteractionCreate) {
	events, err := b.agg.Today(context.Background(), i.GuildID, time.Now())
	if err != nil {
		b.listingFailed(s, i, err)
		return
	}
	if len(events) == 0 {
		b.editReply(s, i, "No events are happening today.")
		return
	}
	b.postListing(events, interactionUser(i).ID, "Here are today's events")
	b.editReply(s, i, fmt.Sprintf("Today's events have been posted in the <#%s> channel.", b.opts.AnnounceChannelID))
}

func (b *Bot) handleFutureEvents(s *discordgo.Session, i *discordgo.InteractionCreate) {
	events, err := b.agg.Upcoming(context.Background(), i.GuildID, time.Now())
	if err != nil {
		b.listingFailed(s, i, err)
		return
	}
	if len(events) == 0 {
		b.editReply(s, i, "No events are happening in the future.")
		return
	}
	b.postListing(events, interactionUser(i).ID, "Here are the future events")
	b.editReply(s, i, fmt.Sprintf("Future events have been posted in the <#%s> channel.", b.opts.AnnounceChannelID))
}

// postListing announces up to DisplayLimit event embeds in one message.
func (b *Bot) postListing(events []*models.Event, mentionID, label string) {
	content := fmt.Sprintf("<@%s>, %s:", mentionID, label)
	if len(events) > b.opts.DisplayLimit {
		content = fmt.Sprintf("<@%s>, %s (limit %d):", mentionID, label, b.opts.DisplayLimit)
		events = events[:b.opts.DisplayLimit]
	}
	embeds := make([]*discordgo.MessageEmbed, 0, len(events))
	var components []discordgo.MessageComponent
	for _, ev := range events {
		embed, rows := b.eventMessage(ev)
		embeds = append(embeds, embed)
		components = append(components, rows...)
	}
	// Discord allows at most five action rows per message; the rest of the
	// buttons are reachable from the per-event create/update posts.
	if len(components) > 5 {
		components = components[:5]
	}
	b.announce(&discordgo.MessageSend{
		Content:    content,
		Embeds:     embeds,
		Components: components,
	})
}

func (b *Bot) listingFailed(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if errors.Is(err, discord.ErrSourceUnavailable) {
		b.log.Warn("event listing failed", zap.Error(err))
		b.editReply(s, i, "Discord's event list is unavailable right now. Please try again in a bit.")
		return
	}
	b.log.Error("event listing failed", zap.Error(err))
	b.editReply(s, i, "There was an error while executing this command!")
}

func (b *Bot) handleToggle(s *discordgo.Session, i *discordgo.InteractionCreate, kind rsvp.Kind, eventID string) {
	user := interactionUser(i)
	result, err := b.rsvp.Toggle(kind, eventID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, rsvp.ErrNotCustomEvent):
			b.replyEphemeral(s, i, "RSVP buttons aren't available for Discord-hosted events.")
		case errors.Is(err, rsvp.ErrEventNotFound):
			b.replyEphemeral(s, i, "Event not found.")
		default:
			b.log.Error("rsvp toggle failed", zap.String("event_id", eventID), zap.Error(err))
			b.replyEphemeral(s, i, "There was an error while executing this command!")
		}
		return
	}

	ev, _ := b.store.Get(eventID)
	embed, components := b.eventMessage(ev)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		b.log.Warn("update event message failed", zap.String("event_id", eventID), zap.Error(err))
	}

	name := b.displayName(i.GuildID, user.ID)
	var followup string
	switch {
	case kind == rsvp.KindGoing && result == models.ToggleAdded:
		followup = fmt.Sprintf("%s, you are now marked as going to the event.", name)
	case kind == rsvp.KindGoing && result == models.ToggleRemoved:
		followup = fmt.Sprintf("%s, you are no longer marked as going to the event.", name)
	case kind == rsvp.KindMaybe && result == models.ToggleAdded:
		followup = fmt.Sprintf("%s, you are now marked as maybe for the event.", name)
	default:
		followup = fmt.Sprintf("%s, you are no longer marked as maybe for the event.", name)
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: followup,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		b.log.Warn("rsvp followup failed", zap.Error(err))
	}
}
