// Package repository defines the interfaces for the local fallback store.
// These interfaces act as a contract between the usecase layer and the
// infrastructure layer; the store mirrors server state the way the original
// storefront mirrored it into browser storage.
package repository

import (
	"context"
	"errors"

	"libris/internal/domain/entity"
)

// ErrNotFound is returned when a fallback-store key holds no value.
var ErrNotFound = errors.New("record not found")

// SessionRepository persists the auth session (bearer token + profile) across
// process restarts.
type SessionRepository interface {
	// Save stores the session, replacing any previous one.
	Save(ctx context.Context, session *entity.Session) error

	// Load retrieves the persisted session, or ErrNotFound when none exists.
	Load(ctx context.Context) (*entity.Session, error)

	// Clear removes the persisted session. Clearing an absent session is not
	// an error.
	Clear(ctx context.Context) error
}
