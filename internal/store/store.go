package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/models"
)

// Store is the single source of truth for custom events: an in-memory map
// backed by one JSON snapshot file that is rewritten wholesale on every
// mutation. Discord-sourced events never enter the store.
//
// The mutex keeps map and slice access well-defined across discordgo's
// handler goroutines. It does not serialize a full toggle round-trip; two
// interactions racing on the same event can still interleave between lookup
// and save, and the last save wins. That matches the bot's original
// behavior and reminders/listings are tolerant of the stale reads.
type Store struct {
	path string
	log  *zap.Logger

	mu     sync.RWMutex
	events map[string]*models.Event
}

func New(path string, log *zap.Logger) *Store {
	return &Store{
		path:   path,
		log:    log,
		events: map[string]*models.Event{},
	}
}

// Load reads the snapshot and replaces the in-memory map wholesale. A
// missing file is normal on first run. Corrupt or unreadable snapshots are
// logged and the previous in-memory map is kept.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Error("read events snapshot failed", zap.String("path", s.path), zap.Error(err))
		}
		return
	}
	loaded := map[string]*models.Event{}
	if err := json.Unmarshal(b, &loaded); err != nil {
		s.log.Error("decode events snapshot failed", zap.String("path", s.path), zap.Error(err))
		return
	}
	s.events = loaded
}

// Save rewrites the snapshot from the full in-memory map. On failure the
// in-memory state is kept as-is; the change simply isn't durable until the
// next successful save.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.log.Error("create snapshot dir failed", zap.String("path", s.path), zap.Error(err))
			return err
		}
	}
	b, err := json.MarshalIndent(s.events, "", "  ")
	if err != nil {
		s.log.Error("encode events snapshot failed", zap.Error(err))
		return err
	}
	// Write-then-rename so a crash mid-write can't truncate the snapshot.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		s.log.Error("write events snapshot failed", zap.String("path", tmp), zap.Error(err))
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Error("replace events snapshot failed", zap.String("path", s.path), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) Get(id string) (*models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	return ev, ok
}

// Upsert stores the event and persists the snapshot. The map is updated even
// when the save fails.
func (s *Store) Upsert(ev *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
	return s.saveLocked()
}

// Deactivate soft-deletes an event: the status flips to inactive and the
// record stays in the snapshot forever.
func (s *Store) Deactivate(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return false, nil
	}
	ev.Status = models.StatusInactive
	return true, s.saveLocked()
}

// Active returns the guild's events that are not inactive, ordered by id so
// listings are stable across calls.
func (s *Store) Active(guildID string) []*models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.GuildID == guildID && ev.IsActive() {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, aerr := strconv.Atoi(out[i].ID)
		b, berr := strconv.Atoi(out[j].ID)
		if aerr == nil && berr == nil {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// NextID assigns the next sequential custom event id. Safe because records
// are never removed from the map, only deactivated.
func (s *Store) NextID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strconv.Itoa(len(s.events) + 1)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
