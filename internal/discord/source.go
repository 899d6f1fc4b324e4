package discord

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/models"
)

// ErrSourceUnavailable means the scheduled-event list itself could not be
// fetched. Callers surface it to the user; there is no retry.
var ErrSourceUnavailable = errors.New("discord event source unavailable")

const (
	defaultLocation    = "Online/Discord"
	defaultFetchLimit  = 10
	subscriberPageSize = 100
)

// ScheduledEventAPI is the slice of the Discord REST API the source needs.
// *discordgo.Session satisfies it.
type ScheduledEventAPI interface {
	GuildScheduledEvents(guildID string, userCount bool, options ...discordgo.RequestOption) ([]*discordgo.GuildScheduledEvent, error)
	GuildScheduledEventUsers(guildID, eventID string, limit int, withMember bool, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.GuildScheduledEventUser, error)
}

// EventSource mirrors a guild's upcoming Discord scheduled events as Event
// records. Records are rebuilt from scratch on every call and are never
// written to the local store.
type EventSource struct {
	api   ScheduledEventAPI
	log   *zap.Logger
	limit int
	now   func() time.Time
}

func NewEventSource(api ScheduledEventAPI, log *zap.Logger, limit int) *EventSource {
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	return &EventSource{api: api, log: log, limit: limit, now: time.Now}
}

// Upcoming fetches the guild's scheduled events, keeps the ones that have
// not started yet, and normalizes the nearest few by start time.
func (s *EventSource) Upcoming(ctx context.Context, guildID string) ([]*models.Event, error) {
	raw, err := s.api.GuildScheduledEvents(guildID, true, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	now := s.now()
	future := make([]*discordgo.GuildScheduledEvent, 0, len(raw))
	for _, ev := range raw {
		if ev.ScheduledStartTime.After(now) {
			future = append(future, ev)
		}
	}
	sort.Slice(future, func(i, j int) bool {
		return future[i].ScheduledStartTime.Before(future[j].ScheduledStartTime)
	})
	if len(future) > s.limit {
		future = future[:s.limit]
	}

	out := make([]*models.Event, 0, len(future))
	for _, ev := range future {
		out = append(out, s.normalize(ctx, guildID, ev))
	}
	return out, nil
}

func (s *EventSource) normalize(ctx context.Context, guildID string, ev *discordgo.GuildScheduledEvent) *models.Event {
	location := defaultLocation
	if ev.EntityMetadata.Location != "" {
		location = ev.EntityMetadata.Location
	}
	organizer := ev.CreatorID
	if organizer == "" {
		organizer = guildID
	}
	return &models.Event{
		ID:          ev.ID,
		Location:    location,
		StartTime:   ev.ScheduledStartTime,
		OrganizerID: organizer,
		GuildID:     guildID,
		Source:      models.SourceDiscord,
		Status:      models.StatusScheduled,
		Title:       ev.Name,
		Description: ev.Description,
		Going:       []string{},
		Maybe:       []string{},
		Interested:  s.fetchInterested(ctx, guildID, ev.ID),
	}
}

// fetchInterested resolves the event's subscriber list. A failure here must
// never fail normalization; the event just shows up with no interest list.
func (s *EventSource) fetchInterested(ctx context.Context, guildID, eventID string) []string {
	users, err := s.api.GuildScheduledEventUsers(guildID, eventID, subscriberPageSize, false, "", "", discordgo.WithContext(ctx))
	if err != nil {
		s.log.Warn("fetch event subscribers failed",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return []string{}
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.User != nil {
			ids = append(ids, u.User.ID)
		}
	}
	return ids
}
