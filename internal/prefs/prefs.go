// Package prefs persists the user's display preference through the
// same mechanism as the cart, under its own fixed key.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type preferences struct {
	DarkMode bool `json:"dark_mode"`
}

type Store struct {
	client    *redis.Client
	sessionID string
}

func NewStore(client *redis.Client, sessionID string) *Store {
	return &Store{client: client, sessionID: sessionID}
}

// DarkMode reports the saved preference; light mode when none saved.
func (s *Store) DarkMode(ctx context.Context) (bool, error) {
	data, err := s.client.Get(ctx, prefsKey(s.sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	var p preferences
	if err2 := json.Unmarshal(data, &p); err2 != nil {
		return false, fmt.Errorf("unmarshal preferences failed: %w", err2)
	}
	return p.DarkMode, nil
}

func (s *Store) SetDarkMode(ctx context.Context, dark bool) error {
	data, err := json.Marshal(preferences{DarkMode: dark})
	if err != nil {
		return fmt.Errorf("marshal preferences failed: %w", err)
	}

	if err := s.client.Set(ctx, prefsKey(s.sessionID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func prefsKey(sessionID string) string {
	return fmt.Sprintf("prefs:%s", sessionID)
}
