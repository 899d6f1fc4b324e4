package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":8080" {
		t.Fatalf("http_addr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Store.Path != "events.json" {
		t.Fatalf("store path = %q", cfg.Store.Path)
	}
	if cfg.Events.Timezone != "America/New_York" {
		t.Fatalf("timezone = %q", cfg.Events.Timezone)
	}
	if cfg.Events.FetchLimit != 10 || cfg.Events.DisplayLimit != 10 {
		t.Fatalf("limits = %d/%d", cfg.Events.FetchLimit, cfg.Events.DisplayLimit)
	}
	if len(cfg.Events.Locations) != 5 {
		t.Fatalf("locations = %v", cfg.Events.Locations)
	}
	if !cfg.Cron.Enabled || cfg.Cron.ReminderSweep != "0 */5 * * * *" {
		t.Fatalf("cron = %+v", cfg.Cron)
	}
	if cfg.Reminder.LeadTime != time.Hour {
		t.Fatalf("lead time = %v", cfg.Reminder.LeadTime)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
discord:
  guild_id: "g1"
  announce_channel_id: "c1"
events:
  timezone: UTC
reminder:
  lead_time: 45m
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discord.GuildID != "g1" || cfg.Discord.AnnounceChannelID != "c1" {
		t.Fatalf("discord = %+v", cfg.Discord)
	}
	if cfg.Events.Timezone != "UTC" {
		t.Fatalf("timezone = %q", cfg.Events.Timezone)
	}
	if cfg.Reminder.LeadTime != 45*time.Minute {
		t.Fatalf("lead time = %v", cfg.Reminder.LeadTime)
	}
	// Unset keys keep their defaults.
	if cfg.Store.Path != "events.json" {
		t.Fatalf("store path = %q", cfg.Store.Path)
	}
}

func TestLoadRejectsBadSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
cron:
  reminder_sweep: "every five minutes"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load(path, false)
	if err == nil {
		t.Fatalf("bad schedule accepted")
	}
	if !strings.Contains(err.Error(), "reminder_sweep") {
		t.Fatalf("error %v does not name the bad field", err)
	}
}
