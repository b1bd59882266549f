package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/uploader"
)

// Tab is one of the mutually exclusive top-level views.
type Tab string

const (
	TabTimeline Tab = "timeline"
	TabAlbums   Tab = "albums"
	TabAdd      Tab = "add"
)

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabTimeline, TabAlbums, TabAdd:
		return t, nil
	}
	return "", domain.NewValidationError("tab", "unknown tab "+s)
}

// Draft is the unsaved add-entry form.
type Draft struct {
	Staged []uploader.StagedFile `json:"staged"`
}

// State is the per-session view state.
type State struct {
	Tab             Tab        `json:"tab"`
	Category        string     `json:"category"`
	SelectedAlbumID *uuid.UUID `json:"selectedAlbumId,omitempty"`
	Birthday        string     `json:"birthday"`
	Draft           Draft      `json:"draft"`
}

// initialState is what a session sees before it has changed anything.
func initialState(birthday string) State {
	return State{
		Tab:      TabTimeline,
		Category: domain.FilterAll,
		Birthday: birthday,
	}
}

// StateStore persists view state per session.
type StateStore interface {
	Load(ctx context.Context, sessionID string) (State, bool, error)
	Save(ctx context.Context, sessionID string, st State) error
}

const stateKeyPrefix = "view:"

// RedisStateStore keeps view state as JSON in Redis.
type RedisStateStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisStateStore creates a Redis-backed state store. State expires
// together with the session.
func NewRedisStateStore(rdb redis.Cmdable, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStateStore) Load(ctx context.Context, sessionID string) (State, bool, error) {
	raw, err := s.rdb.Get(ctx, stateKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("failed to load view state: %w", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, false, fmt.Errorf("failed to decode view state: %w", err)
	}
	return st, true, nil
}

func (s *RedisStateStore) Save(ctx context.Context, sessionID string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}
	if err := s.rdb.Set(ctx, stateKeyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	return nil
}
