package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/models"
)

// SweepReminders announces events starting within the reminder lead time,
// once per event id. The de-dup set lives in memory only and entries expire
// at the event's start time, so a restart may re-announce. Best effort by
// design.
func (b *Bot) SweepReminders(ctx context.Context) {
	sweepID := uuid.NewString()
	now := time.Now()
	b.pruneReminded(now)

	events, err := b.agg.StartingSoon(ctx, b.opts.GuildID, now, b.opts.ReminderLead)
	if err != nil {
		b.log.Warn("reminder sweep failed", zap.String("sweep_id", sweepID), zap.Error(err))
		return
	}

	sent := 0
	for _, ev := range events {
		if !b.markReminded(ev.ID, ev.StartTime) {
			continue
		}
		embed, components := b.eventMessage(ev)
		b.announce(&discordgo.MessageSend{
			Content:    "🔔 Reminder: An event is starting soon!",
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		})
		sent++
	}
	if sent > 0 {
		b.log.Info("reminders sent",
			zap.String("sweep_id", sweepID),
			zap.Int("count", sent),
		)
	}
}

// AnnounceToday posts the morning digest of today's events.
func (b *Bot) AnnounceToday(ctx context.Context) {
	events, err := b.agg.Today(ctx, b.opts.GuildID, time.Now())
	if err != nil {
		b.log.Warn("morning digest failed", zap.Error(err))
		return
	}
	if len(events) == 0 {
		b.log.Info("no events today, skipping digest")
		return
	}
	b.announce(&discordgo.MessageSend{Content: "These are today's events:"})
	b.announceDigest(events)
}

// AnnounceTomorrow posts the evening digest of tomorrow's events.
func (b *Bot) AnnounceTomorrow(ctx context.Context) {
	events, err := b.agg.Tomorrow(ctx, b.opts.GuildID, time.Now())
	if err != nil {
		b.log.Warn("evening digest failed", zap.Error(err))
		return
	}
	if len(events) == 0 {
		b.log.Info("no events tomorrow, skipping digest")
		return
	}
	b.announce(&discordgo.MessageSend{Content: "These are tomorrow's events:"})
	b.announceDigest(events)
}

func (b *Bot) announceDigest(events []*models.Event) {
	if len(events) > b.opts.DisplayLimit {
		events = events[:b.opts.DisplayLimit]
	}
	for _, ev := range events {
		embed, components := b.eventMessage(ev)
		b.announce(&discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		})
	}
}

// markReminded records the event as announced. Returns false when it was
// already announced this run.
func (b *Bot) markReminded(eventID string, start time.Time) bool {
	b.remindedMu.Lock()
	defer b.remindedMu.Unlock()
	if _, seen := b.reminded[eventID]; seen {
		return false
	}
	b.reminded[eventID] = start
	return true
}

// pruneReminded drops entries for events that have already started, keeping
// the set bounded without any persisted ledger.
func (b *Bot) pruneReminded(now time.Time) {
	b.remindedMu.Lock()
	defer b.remindedMu.Unlock()
	for id, start := range b.reminded {
		if start.Before(now) {
			delete(b.reminded, id)
		}
	}
}
