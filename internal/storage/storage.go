// Package storage persists live player state: dialogue session records,
// mission ledger snapshots, and player records. Authored content is not
// stored here; it is loaded read-only by the content library.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/questkit/quest-engine/pkg/dialogue"
	"github.com/questkit/quest-engine/pkg/energy"
	"github.com/questkit/quest-engine/pkg/mission"
)

// SessionRecord is the persisted form of an active dialogue session. The
// traversal state is recomputed from the graph and node on resume, so only
// the position needs storing.
type SessionRecord struct {
	ID        uuid.UUID          `json:"id"`
	ActorID   string             `json:"actor_id"`
	NPCID     string             `json:"npc_id"`
	GraphID   string             `json:"graph_id"`
	Node      dialogue.NodeIndex `json:"node"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// PlayerRecord holds per-player state outside the mission ledger: the
// accumulated reward bonus and the energy pool.
type PlayerRecord struct {
	ActorID        string           `json:"actor_id"`
	MaxHealthBonus float64          `json:"max_health_bonus"`
	Energy         *energy.Snapshot `json:"energy,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for live state persistence. Load methods
// return nil (not an error) when the key does not exist.
type Storage interface {
	HealthChecker
	Closer

	// SaveSession saves the actor's active dialogue session.
	SaveSession(ctx context.Context, rec *SessionRecord) error

	// LoadSession retrieves the actor's active dialogue session.
	LoadSession(ctx context.Context, actorID string) (*SessionRecord, error)

	// DeleteSession removes the actor's active dialogue session.
	DeleteSession(ctx context.Context, actorID string) error

	// SaveLedger saves the actor's mission ledger snapshot.
	SaveLedger(ctx context.Context, actorID string, snap mission.Snapshot) error

	// LoadLedger retrieves the actor's mission ledger snapshot.
	LoadLedger(ctx context.Context, actorID string) (*mission.Snapshot, error)

	// SavePlayer saves the actor's player record.
	SavePlayer(ctx context.Context, rec *PlayerRecord) error

	// LoadPlayer retrieves the actor's player record.
	LoadPlayer(ctx context.Context, actorID string) (*PlayerRecord, error)
}
