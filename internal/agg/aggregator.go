package agg

import (
	"context"
	"sort"
	"time"

	"github.com/cdeck95/dg-events-bot/internal/models"
	"github.com/cdeck95/dg-events-bot/internal/store"
)

// Source produces the normalized Discord-hosted events for a guild.
type Source interface {
	Upcoming(ctx context.Context, guildID string) ([]*models.Event, error)
}

// Aggregator combines the two event sources into the one view every
// listing and reminder feature consumes.
type Aggregator struct {
	source Source
	store  *store.Store
	loc    *time.Location
}

func New(source Source, st *store.Store, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{source: source, store: st, loc: loc}
}

// Events returns Discord-hosted events followed by the guild's active custom
// events. A source failure aborts the whole aggregation; custom events are
// not returned on their own. No cross-source dedup happens: the id spaces
// are disjoint by convention and Source disambiguates any collision.
func (a *Aggregator) Events(ctx context.Context, guildID string) ([]*models.Event, error) {
	external, err := a.source.Upcoming(ctx, guildID)
	if err != nil {
		return nil, err
	}
	// Re-read the snapshot so listings see edits made since the last call.
	a.store.Load()
	return append(external, a.store.Active(guildID)...), nil
}

// Today returns the guild's events on the same calendar day as now, sorted
// by start time.
func (a *Aggregator) Today(ctx context.Context, guildID string, now time.Time) ([]*models.Event, error) {
	return a.onDay(ctx, guildID, now)
}

// Tomorrow returns the guild's events on the calendar day after now.
func (a *Aggregator) Tomorrow(ctx context.Context, guildID string, now time.Time) ([]*models.Event, error) {
	return a.onDay(ctx, guildID, now.AddDate(0, 0, 1))
}

func (a *Aggregator) onDay(ctx context.Context, guildID string, day time.Time) ([]*models.Event, error) {
	all, err := a.Events(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Event, 0, len(all))
	for _, ev := range all {
		if a.sameDay(ev.StartTime, day) {
			out = append(out, ev)
		}
	}
	sortByStart(out)
	return out, nil
}

// Upcoming returns events starting tomorrow or later, sorted by start time.
func (a *Aggregator) Upcoming(ctx context.Context, guildID string, now time.Time) ([]*models.Event, error) {
	all, err := a.Events(ctx, guildID)
	if err != nil {
		return nil, err
	}
	cutoff := a.startOfDay(now).AddDate(0, 0, 1)
	out := make([]*models.Event, 0, len(all))
	for _, ev := range all {
		if !ev.StartTime.Before(cutoff) {
			out = append(out, ev)
		}
	}
	sortByStart(out)
	return out, nil
}

// StartingSoon returns events with now <= start <= now+lead, for reminders.
func (a *Aggregator) StartingSoon(ctx context.Context, guildID string, now time.Time, lead time.Duration) ([]*models.Event, error) {
	all, err := a.Events(ctx, guildID)
	if err != nil {
		return nil, err
	}
	until := now.Add(lead)
	out := make([]*models.Event, 0, len(all))
	for _, ev := range all {
		if !ev.StartTime.Before(now) && !ev.StartTime.After(until) {
			out = append(out, ev)
		}
	}
	sortByStart(out)
	return out, nil
}

func (a *Aggregator) sameDay(t, day time.Time) bool {
	ty, tm, td := t.In(a.loc).Date()
	dy, dm, dd := day.In(a.loc).Date()
	return ty == dy && tm == dm && td == dd
}

func (a *Aggregator) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(a.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.loc)
}

func sortByStart(events []*models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
}
