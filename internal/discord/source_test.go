package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/models"
)

type fakeAPI struct {
	events    []*discordgo.GuildScheduledEvent
	eventsErr error

	users    map[string][]*discordgo.GuildScheduledEventUser
	usersErr error
}

func (f *fakeAPI) GuildScheduledEvents(guildID string, userCount bool, options ...discordgo.RequestOption) ([]*discordgo.GuildScheduledEvent, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events, nil
}

func (f *fakeAPI) GuildScheduledEventUsers(guildID, eventID string, limit int, withMember bool, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.GuildScheduledEventUser, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return f.users[eventID], nil
}

func fixedSource(api *fakeAPI, limit int, now time.Time) *EventSource {
	s := NewEventSource(api, zap.NewNop(), limit)
	s.now = func() time.Time { return now }
	return s
}

func scheduled(id string, start time.Time) *discordgo.GuildScheduledEvent {
	return &discordgo.GuildScheduledEvent{
		ID:                 id,
		Name:               "Doubles Night",
		CreatorID:          "creator-1",
		ScheduledStartTime: start,
		EntityMetadata:     discordgo.GuildScheduledEventEntityMetadata{Location: "Tranquility Trails"},
	}
}

func TestUpcomingNormalizes(t *testing.T) {
	now := time.Date(2026, 4, 9, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		events: []*discordgo.GuildScheduledEvent{scheduled("900", now.Add(time.Hour))},
		users: map[string][]*discordgo.GuildScheduledEventUser{
			"900": {
				{User: &discordgo.User{ID: "u1"}},
				{User: &discordgo.User{ID: "u2"}},
				{User: nil},
			},
		},
	}

	got, err := fixedSource(api, 10, now).Upcoming(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Upcoming = %d events, want 1", len(got))
	}
	ev := got[0]
	if ev.Source != models.SourceDiscord || ev.Status != models.StatusScheduled {
		t.Fatalf("source/status = %s/%s", ev.Source, ev.Status)
	}
	if ev.Location != "Tranquility Trails" || ev.OrganizerID != "creator-1" {
		t.Fatalf("location/organizer = %s/%s", ev.Location, ev.OrganizerID)
	}
	if ev.GuildID != "g1" || ev.Title != "Doubles Night" {
		t.Fatalf("guild/title = %s/%s", ev.GuildID, ev.Title)
	}
	if len(ev.Interested) != 2 || ev.Interested[0] != "u1" || ev.Interested[1] != "u2" {
		t.Fatalf("interested = %v, want [u1 u2]", ev.Interested)
	}
	if ev.Going == nil || ev.Maybe == nil || len(ev.Going)+len(ev.Maybe) != 0 {
		t.Fatalf("going/maybe not empty slices: %v %v", ev.Going, ev.Maybe)
	}
}

func TestUpcomingDefaults(t *testing.T) {
	now := time.Date(2026, 4, 9, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		events: []*discordgo.GuildScheduledEvent{
			{ID: "901", Name: "Voice Hangout", ScheduledStartTime: now.Add(time.Hour)},
		},
	}

	got, err := fixedSource(api, 10, now).Upcoming(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if got[0].Location != "Online/Discord" {
		t.Fatalf("location = %q, want default", got[0].Location)
	}
	if got[0].OrganizerID != "g1" {
		t.Fatalf("organizer = %q, want guild id fallback", got[0].OrganizerID)
	}
}

func TestUpcomingFiltersSortsAndCaps(t *testing.T) {
	now := time.Date(2026, 4, 9, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		events: []*discordgo.GuildScheduledEvent{
			scheduled("past", now.Add(-time.Hour)),
			scheduled("far", now.Add(72*time.Hour)),
			scheduled("near", now.Add(time.Hour)),
			scheduled("mid", now.Add(24*time.Hour)),
		},
	}

	got, err := fixedSource(api, 2, now).Upcoming(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(got) != 2 || got[0].ID != "near" || got[1].ID != "mid" {
		names := make([]string, len(got))
		for i, ev := range got {
			names[i] = ev.ID
		}
		t.Fatalf("Upcoming = %v, want [near mid]", names)
	}
}

func TestUpcomingFetchFailure(t *testing.T) {
	api := &fakeAPI{eventsErr: errors.New("http 500")}
	if _, err := fixedSource(api, 10, time.Now()).Upcoming(context.Background(), "g1"); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Upcoming error = %v, want ErrSourceUnavailable", err)
	}
}

func TestSubscriberFailureSwallowed(t *testing.T) {
	now := time.Date(2026, 4, 9, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		events:   []*discordgo.GuildScheduledEvent{scheduled("900", now.Add(time.Hour))},
		usersErr: errors.New("http 500"),
	}

	got, err := fixedSource(api, 10, now).Upcoming(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if got[0].Interested == nil || len(got[0].Interested) != 0 {
		t.Fatalf("interested = %v, want empty slice", got[0].Interested)
	}
}
