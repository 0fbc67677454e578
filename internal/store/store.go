// Package store persists drafts together with their participants and picks.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/engine"
)

var ErrDraftNotFound = errors.New("draft not found")

// Store saves whole drafts. Save replaces the stored participants and
// picks with the ones on d in a single transaction.
type Store interface {
	Create(ctx context.Context, d engine.Draft) error
	FindByID(ctx context.Context, id string) (engine.Draft, error)
	Save(ctx context.Context, d engine.Draft) error
	Delete(ctx context.Context, id string) error
	ListByStatus(ctx context.Context, status engine.Status) ([]engine.Draft, error)
	// ListStaleLobbies returns drafts still in LOBBY created before cutoff.
	ListStaleLobbies(ctx context.Context, cutoff time.Time) ([]engine.Draft, error)
}
