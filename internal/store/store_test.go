package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/models"
)

func testEvent(id, guildID string) *models.Event {
	return &models.Event{
		ID:          id,
		Location:    "Stafford Woods",
		StartTime:   time.Date(2026, 4, 9, 19, 0, 0, 0, time.UTC),
		OrganizerID: "u-organizer",
		GuildID:     guildID,
		Source:      models.SourceCustom,
		Status:      models.StatusScheduled,
		Going:       []string{"u1"},
		Maybe:       []string{"u2"},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")

	s := New(path, zap.NewNop())
	want := testEvent("1", "g1")
	want.Title = "Glow Round"
	want.Description = "Bring a flashlight"
	if err := s.Upsert(want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	reloaded := New(path, zap.NewNop())
	reloaded.Load()
	got, ok := reloaded.Get("1")
	if !ok {
		t.Fatalf("event missing after reload")
	}
	if got.Title != want.Title || got.Description != want.Description ||
		got.Location != want.Location || got.GuildID != want.GuildID ||
		got.Source != want.Source || got.Status != want.Status ||
		!got.StartTime.Equal(want.StartTime) {
		t.Fatalf("reloaded event differs: got %+v, want %+v", got, want)
	}
	if len(got.Going) != 1 || got.Going[0] != "u1" {
		t.Fatalf("going = %v, want [u1]", got.Going)
	}
	if len(got.Maybe) != 1 || got.Maybe[0] != "u2" {
		t.Fatalf("maybe = %v, want [u2]", got.Maybe)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.json"), zap.NewNop())
	s.Load()
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestLoadCorruptKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	s := New(path, zap.NewNop())
	if err := s.Upsert(testEvent("1", "g1")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s.Load()
	if _, ok := s.Get("1"); !ok {
		t.Fatalf("in-memory state lost after corrupt load")
	}
}

func TestDeactivateKeepsRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	s := New(path, zap.NewNop())
	if err := s.Upsert(testEvent("1", "g1")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	ok, err := s.Deactivate("1")
	if err != nil || !ok {
		t.Fatalf("Deactivate = %v, %v", ok, err)
	}
	if len(s.Active("g1")) != 0 {
		t.Fatalf("inactive event still listed as active")
	}

	// The record survives deactivation in the snapshot.
	reloaded := New(path, zap.NewNop())
	reloaded.Load()
	got, present := reloaded.Get("1")
	if !present {
		t.Fatalf("deactivated record removed from snapshot")
	}
	if got.Status != models.StatusInactive {
		t.Fatalf("status = %q, want %q", got.Status, models.StatusInactive)
	}

	if ok, err := s.Deactivate("404"); ok || err != nil {
		t.Fatalf("Deactivate(unknown) = %v, %v, want false, nil", ok, err)
	}
}

func TestActiveScopesToGuild(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "events.json"), zap.NewNop())
	for _, ev := range []*models.Event{
		testEvent("2", "g1"),
		testEvent("1", "g1"),
		testEvent("3", "g2"),
	} {
		if err := s.Upsert(ev); err != nil {
			t.Fatalf("Upsert(%s): %v", ev.ID, err)
		}
	}

	active := s.Active("g1")
	if len(active) != 2 {
		t.Fatalf("Active(g1) = %d events, want 2", len(active))
	}
	if active[0].ID != "1" || active[1].ID != "2" {
		t.Fatalf("Active order = [%s %s], want [1 2]", active[0].ID, active[1].ID)
	}
}

func TestNextID(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "events.json"), zap.NewNop())
	if got := s.NextID(); got != "1" {
		t.Fatalf("NextID = %q, want %q", got, "1")
	}
	if err := s.Upsert(testEvent("1", "g1")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got := s.NextID(); got != "2" {
		t.Fatalf("NextID = %q, want %q", got, "2")
	}

	// Deactivation does not free the id.
	if _, err := s.Deactivate("1"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if got := s.NextID(); got != "2" {
		t.Fatalf("NextID after deactivate = %q, want %q", got, "2")
	}
}
