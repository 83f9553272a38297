package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signalworks/agency-ops/internal/model"
)

// MemoryStore is an in-process Store for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	graphs map[string]*model.Graph
	audit  []AuditEntry

	// Saves counts SaveGraph calls; tests assert single-persist batches.
	Saves int
	// FailSave, when set, makes SaveGraph return this error.
	FailSave error
	// FailLoad, when set, makes LoadGraph return this error.
	FailLoad error
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{graphs: make(map[string]*model.Graph)}
}

func (s *MemoryStore) LoadGraph(_ context.Context, entityID string) (*model.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailLoad != nil {
		return nil, s.FailLoad
	}
	g, ok := s.graphs[entityID]
	if !ok {
		return nil, nil
	}
	return g.Clone(), nil
}

func (s *MemoryStore) SaveGraph(_ context.Context, g *model.Graph, writerTag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.Saves++
	now := time.Now().UTC()
	stored := g.Clone()
	stored.UpdatedAt = now
	stored.UpdatedBy = writerTag
	s.graphs[g.EntityID] = stored
	s.audit = append(s.audit, AuditEntry{
		ID:         uuid.New().String(),
		EntityID:   g.EntityID,
		Writer:     writerTag,
		FieldCount: len(g.Fields),
		CreatedAt:  now,
	})
	return nil
}

func (s *MemoryStore) ListEntities(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.graphs))
	for id := range s.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) AuditTrail(_ context.Context, entityID string, limit int) ([]AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []AuditEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		if s.audit[i].EntityID != entityID {
			continue
		}
		out = append(out, s.audit[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close() error                  { return nil }
