// Package store defines the persistence contract consumed by the match
// engine. Implementations include PostgreSQL via GORM (production) and
// in-memory (for testing and development).
package store

import (
	"context"
	"errors"
	"time"

	"matchday-system/models"
)

var (
	// ErrNotFound is returned when a document key does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists is returned by inserts on a taken key.
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrVersionConflict is returned by conditional replaces when the
	// stored version no longer matches. Callers treat it as retryable:
	// re-read the document and reapply the mutation.
	ErrVersionConflict = errors.New("store: version conflict")

	// ErrUnavailable wraps timeouts and connectivity failures against
	// the backing store; safe to retry.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the key-addressed document contract. Match writes go through
// conditional replace (expect-version); player/team aggregates are
// upserted per document with no cross-document transaction.
type Store interface {
	// Matches
	InsertMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	// ReplaceMatch overwrites the full document iff the stored version
	// equals expectedVersion, then bumps m.Version.
	ReplaceMatch(ctx context.Context, m *models.Match, expectedVersion int) error
	// MatchesByStatus scans all matches currently in any of the given states.
	MatchesByStatus(ctx context.Context, statuses ...models.MatchStatus) ([]models.Match, error)

	// Players
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	UpsertPlayer(ctx context.Context, p *models.Player) error

	// Teams
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	UpsertTeam(ctx context.Context, t *models.Team) error

	// Trophies (read-only to the engine)
	GetTrophy(ctx context.Context, id string) (*models.Trophy, error)

	// Notifications
	InsertNotification(ctx context.Context, n *models.Notification) error
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
