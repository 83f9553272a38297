// Package store persists client knowledge graphs as opaque JSON documents
// keyed by entity id, with an append-only audit trail of writers.
package store

import (
	"context"
	"time"

	"github.com/signalworks/agency-ops/internal/model"
)

// AuditEntry records one persisted graph write.
type AuditEntry struct {
	ID         string    `json:"id"`
	EntityID   string    `json:"entity_id"`
	Writer     string    `json:"writer"`
	FieldCount int       `json:"field_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the persistence boundary for the canonicalization engine.
// LoadGraph returns (nil, nil) when no graph exists for the entity; callers
// treat that as an empty graph, never as an error.
type Store interface {
	LoadGraph(ctx context.Context, entityID string) (*model.Graph, error)
	SaveGraph(ctx context.Context, g *model.Graph, writerTag string) error
	ListEntities(ctx context.Context) ([]string, error)
	AuditTrail(ctx context.Context, entityID string, limit int) ([]AuditEntry, error)

	Migrate(ctx context.Context) error
	Close() error
}
