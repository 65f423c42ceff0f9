// Package store persists snapshots: documents saved by the API so they can
// be reopened by id.
//
// Backends:
//   - memory: process-local, for development and tests
//   - file: one JSON file per snapshot, for single-host deployments
//   - mongo: MongoDB collection with a TTL index, for shared deployments
//
// Create a snapshot and save it:
//
//	snap := store.NewSnapshot(text, "LR", "sugiyama", store.DefaultTTL)
//	if err := s.Save(ctx, snap); err != nil {
//	    return err
//	}
//	got, err := s.Get(ctx, snap.ID)
//	if errors.Is(err, store.ErrNotFound) {
//	    // unknown or expired
//	}
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/composeviz/pkg/cache"
)

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound is returned when a snapshot does not exist or has expired.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidID is returned when an id is not a UUID. File and Mongo
	// backends never touch storage for such ids.
	ErrInvalidID = errors.New("invalid snapshot id")
)

// DefaultTTL is how long a snapshot is kept when no TTL is configured.
const DefaultTTL = 30 * 24 * time.Hour

// Snapshot is a saved document plus the view options it was saved with.
type Snapshot struct {
	ID        string    `json:"id" bson:"_id"`
	Document  string    `json:"document" bson:"document"`
	DocHash   string    `json:"doc_hash" bson:"doc_hash"`
	Direction string    `json:"direction,omitempty" bson:"direction,omitempty"`
	Engine    string    `json:"engine,omitempty" bson:"engine,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	// ExpiresAt is zero for snapshots that never expire.
	ExpiresAt time.Time `json:"expires_at,omitzero" bson:"expires_at,omitempty"`
}

// NewSnapshot creates a snapshot with a fresh random id. A ttl <= 0 means
// the snapshot never expires.
func NewSnapshot(document, direction, engine string, ttl time.Duration) *Snapshot {
	now := time.Now().UTC()
	s := &Snapshot{
		ID:        uuid.NewString(),
		Document:  document,
		DocHash:   cache.HashString(document),
		Direction: direction,
		Engine:    engine,
		CreatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}

// IsExpired reports whether the snapshot has passed its expiry.
func (s *Snapshot) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save inserts or replaces a snapshot.
	Save(ctx context.Context, s *Snapshot) error

	// Get returns a snapshot by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id string) error

	// List returns up to limit live snapshots, newest first. limit <= 0
	// means no limit.
	List(ctx context.Context, limit int) ([]*Snapshot, error)

	// Cleanup removes expired snapshots and returns how many it removed.
	Cleanup(ctx context.Context) (int, error)

	Close() error
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
