// Package dashboard assembles the read-side views operators and workflow
// gates consume: blockers, health, freshness, and pending conflicts. All
// operations are read-only; writes go through the canonicalizer.
package dashboard

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/signalworks/agency-ops/internal/conflict"
	"github.com/signalworks/agency-ops/internal/coverage"
	"github.com/signalworks/agency-ops/internal/freshness"
	"github.com/signalworks/agency-ops/internal/health"
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/quality"
	"github.com/signalworks/agency-ops/internal/schema"
	"github.com/signalworks/agency-ops/internal/store"
)

// Service answers read-side queries over stored graphs.
type Service struct {
	store     store.Store
	schema    *schema.Registry
	freshness freshness.Config
	rules     *conflict.RuleSet
	weights   health.Weights
	now       func() time.Time
}

// ServiceOption customizes construction.
type ServiceOption func(*Service)

// WithNow injects a clock for tests.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithWeights overrides the health blend.
func WithWeights(w health.Weights) ServiceOption {
	return func(s *Service) { s.weights = w }
}

// New builds the read-side service.
func New(st store.Store, reg *schema.Registry, fc freshness.Config, rules *conflict.RuleSet, opts ...ServiceOption) *Service {
	s := &Service{
		store:     st,
		schema:    reg,
		freshness: fc,
		rules:     rules,
		weights:   health.DefaultWeights,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Blockers evaluates workflow readiness. A missing graph is not an error;
// it reports everything as missing.
func (s *Service) Blockers(ctx context.Context, entityID, workflow string) (*coverage.Report, error) {
	g, err := s.store.LoadGraph(ctx, entityID)
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: load graph %s", entityID)
	}
	ev := coverage.NewEvaluator(s.schema)
	return ev.Evaluate(entityID, g, workflow, coverage.ForWorkflow(s.schema, workflow)), nil
}

// Health aggregates the entity's health summary. Unresolved conflicts from
// a pending batch, if any, feed the consistency score.
func (s *Service) Health(ctx context.Context, entityID string, unresolvedConflicts int) (health.Summary, error) {
	g, err := s.store.LoadGraph(ctx, entityID)
	if err != nil {
		return health.Summary{}, eris.Wrapf(err, "dashboard: load graph %s", entityID)
	}
	return health.FromGraph(entityID, g, s.schema, s.freshness, unresolvedConflicts, s.now().UTC(), s.weights), nil
}

// Freshness scores every meaningful field in the graph.
func (s *Service) Freshness(ctx context.Context, entityID string) ([]freshness.Score, error) {
	g, err := s.store.LoadGraph(ctx, entityID)
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: load graph %s", entityID)
	}
	if g == nil {
		return nil, nil
	}
	now := s.now().UTC()
	var out []freshness.Score
	for _, path := range g.Paths() {
		f := g.Resolve(path)
		if !quality.IsMeaningful(f.Value) {
			continue
		}
		out = append(out, s.freshness.ScoreField(path, f.SetAt, f.VerifiedAt, now))
	}
	return out, nil
}

// PendingConflicts detects and auto-resolves conflicts between a producer's
// candidate batch and the stored graph, without writing anything.
func (s *Service) PendingConflicts(ctx context.Context, entityID string, candidates []model.Candidate, source model.Source) ([]model.Conflict, error) {
	g, err := s.store.LoadGraph(ctx, entityID)
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: load graph %s", entityID)
	}
	if g == nil {
		return nil, nil
	}
	detected := conflict.DetectBatch(g, candidates, source, s.pathFor, s.now().UTC())
	out := make([]model.Conflict, 0, len(detected))
	for _, c := range detected {
		out = append(out, conflict.AutoResolve(c, s.rules))
	}
	return out, nil
}

func (s *Service) pathFor(key string) string {
	if def := s.schema.ByKey(key); def != nil {
		return def.Path
	}
	return key
}

// Snapshot is the full operator view for one entity.
type Snapshot struct {
	EntityID  string                      `json:"entity_id"`
	Health    health.Summary              `json:"health"`
	Workflows map[string]*coverage.Report `json:"workflows"`
	Freshness []freshness.Score           `json:"freshness"`
	Conflicts []model.Conflict            `json:"conflicts,omitempty"`
}

// SnapshotOptions feeds optional pending-batch context into the snapshot.
type SnapshotOptions struct {
	// Pending and PendingSource describe an unapplied candidate batch whose
	// conflicts should color the consistency score.
	Pending       []model.Candidate
	PendingSource model.Source
}

// Snapshot fans the independent read aggregations out concurrently; none of
// them mutate, so they only need a consistent load, not mutual exclusion.
func (s *Service) Snapshot(ctx context.Context, entityID string, opts SnapshotOptions) (*Snapshot, error) {
	snap := &Snapshot{
		EntityID:  entityID,
		Workflows: make(map[string]*coverage.Report, len(s.schema.Workflows())),
	}

	g, gctx := errgroup.WithContext(ctx)

	reports := make([]*coverage.Report, len(s.schema.Workflows()))
	for i, workflow := range s.schema.Workflows() {
		g.Go(func() error {
			rep, err := s.Blockers(gctx, entityID, workflow)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}

	g.Go(func() error {
		scores, err := s.Freshness(gctx, entityID)
		if err != nil {
			return err
		}
		snap.Freshness = scores
		return nil
	})

	g.Go(func() error {
		if len(opts.Pending) == 0 {
			return nil
		}
		conflicts, err := s.PendingConflicts(gctx, entityID, opts.Pending, opts.PendingSource)
		if err != nil {
			return err
		}
		snap.Conflicts = conflicts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rep := range reports {
		snap.Workflows[rep.Workflow] = rep
	}

	unresolved := 0
	for _, c := range snap.Conflicts {
		if !c.Resolved {
			unresolved++
		}
	}
	hs, err := s.Health(ctx, entityID, unresolved)
	if err != nil {
		return nil, err
	}
	snap.Health = hs
	return snap, nil
}
