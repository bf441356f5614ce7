package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-restaurant-sync/internal/model"
)

var (
	ErrDocumentMissing = errors.New("document does not exist")
	ErrUserNotFound    = errors.New("user not found")
)

// ResetPin sets a new PIN for userID directly in the stored aggregate. The
// write carries a stamp newer than the stored one so running terminals
// accept it.
func ResetPin(ctx context.Context, s Store, key, userID, pin string, now time.Time) error {
	doc, err := s.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !doc.Exists {
		return ErrDocumentMissing
	}

	state := doc.State
	idx := -1
	for i, u := range state.Users {
		if u.ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	users := append([]model.User(nil), state.Users...)
	if err := users[idx].SetPin(pin); err != nil {
		return err
	}
	state.Users = users

	stamp := now.UnixMilli()
	if stamp <= state.LastGlobalUpdate {
		stamp = state.LastGlobalUpdate + 1
	}
	state.LastGlobalUpdate = stamp

	if err := s.Put(ctx, key, state); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
