package models

import "time"

// Source tells which system owns an event's authoritative record.
type Source string

const (
	// SourceCustom marks events created through the bot and persisted in
	// the local snapshot.
	SourceCustom Source = "custom"
	// SourceDiscord marks guild scheduled events mirrored from the
	// Discord API. They are rebuilt on every fetch and never persisted.
	SourceDiscord Source = "discord"
)

// Status is the lifecycle state of a custom event. Deleting an event flips
// it to inactive; records are never removed from the snapshot.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusInactive  Status = "inactive"
)

// ToggleResult reports whether a toggle added or removed the participant.
type ToggleResult string

const (
	ToggleAdded   ToggleResult = "added"
	ToggleRemoved ToggleResult = "removed"
)

// Event is one gathering, custom or Discord-hosted. JSON tags match the
// snapshot layout the bot has always written, so existing events.json files
// load unchanged.
//
// Custom ids are sequential integers rendered as strings; Discord ids are
// snowflakes. The two id spaces are not comparable across Source.
type Event struct {
	ID          string    `json:"eventId"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"dateTime"`
	OrganizerID string    `json:"organizerId"`
	GuildID     string    `json:"guildId"`
	Source      Source    `json:"type"`
	Status      Status    `json:"status"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Going       []string  `json:"going"`
	Maybe       []string  `json:"maybe"`
	Interested  []string  `json:"interested,omitempty"`
}

// DisplayTitle is the label shown to users. The fallback is derived, never
// stored, so a location edit is reflected everywhere immediately.
func (e *Event) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return "Round @ " + e.Location
}

func (e *Event) IsActive() bool {
	return e.Status != StatusInactive
}

// ToggleGoing flips userID's membership in the going list. A user being
// added is first removed from maybe, so the two lists stay disjoint.
func (e *Event) ToggleGoing(userID string) ToggleResult {
	if containsUser(e.Going, userID) {
		e.Going = removeUser(e.Going, userID)
		return ToggleRemoved
	}
	e.Maybe = removeUser(e.Maybe, userID)
	e.Going = append(e.Going, userID)
	return ToggleAdded
}

// ToggleMaybe is the mirror of ToggleGoing.
func (e *Event) ToggleMaybe(userID string) ToggleResult {
	if containsUser(e.Maybe, userID) {
		e.Maybe = removeUser(e.Maybe, userID)
		return ToggleRemoved
	}
	e.Going = removeUser(e.Going, userID)
	e.Maybe = append(e.Maybe, userID)
	return ToggleAdded
}

func containsUser(list []string, userID string) bool {
	for _, id := range list {
		if id == userID {
			return true
		}
	}
	return false
}

func removeUser(list []string, userID string) []string {
	out := list[:0]
	for _, id := range list {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}
