package rsvp

import (
	"errors"
	"fmt"

	"github.com/cdeck95/dg-events-bot/internal/models"
	"github.com/cdeck95/dg-events-bot/internal/store"
)

var (
	// ErrEventNotFound means the id matched nothing in the custom-event map.
	ErrEventNotFound = errors.New("event not found")
	// ErrNotCustomEvent means the record exists but RSVP toggling isn't
	// offered on it; Discord-hosted events carry no going/maybe lists.
	ErrNotCustomEvent = errors.New("rsvp not available on this event")
)

// Kind selects which attendance list a toggle targets. The values double as
// the button custom-id prefixes.
type Kind string

const (
	KindGoing Kind = "going"
	KindMaybe Kind = "maybe"
)

// Controller maps inbound toggle requests onto the event's mutators and
// persists after every call. A failed save keeps the in-memory change; the
// snapshot catches up on the next successful write.
type Controller struct {
	store *store.Store
}

func NewController(st *store.Store) *Controller {
	return &Controller{store: st}
}

// Toggle flips userID's membership on the event's going or maybe list and
// reports whether the effect was an addition or a removal.
func (c *Controller) Toggle(kind Kind, eventID, userID string) (models.ToggleResult, error) {
	ev, ok := c.store.Get(eventID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if ev.Source != models.SourceCustom {
		return "", fmt.Errorf("%w: %s", ErrNotCustomEvent, eventID)
	}

	var result models.ToggleResult
	switch kind {
	case KindGoing:
		result = ev.ToggleGoing(userID)
	case KindMaybe:
		result = ev.ToggleMaybe(userID)
	default:
		return "", fmt.Errorf("unknown rsvp kind %q", kind)
	}

	// Save failures are logged by the store; the toggle stays in memory.
	_ = c.store.Save()
	return result, nil
}
