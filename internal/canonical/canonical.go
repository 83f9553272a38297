// Package canonical implements the single write path into client knowledge
// graphs. Producers never mutate a graph directly; they submit candidate
// findings and the canonicalizer judges each one through an ordered gate
// sequence, mutating a per-batch clone and persisting it once.
package canonical

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalworks/agency-ops/internal/authority"
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/quality"
	"github.com/signalworks/agency-ops/internal/schema"
	"github.com/signalworks/agency-ops/internal/store"
)

// Options controls one canonicalization batch.
type Options struct {
	// Source classifies the producer submitting the batch.
	Source model.Source
	// RunID ties provenance entries back to the producing run.
	RunID string
	// ForceOverwrite lets the operator replace confirmed or locked values.
	// It is ignored for automated sources.
	ForceOverwrite bool
	// DryRun evaluates every gate but never persists.
	DryRun bool
	// Baseline relaxes audience specificity checks for consumer and
	// local-business extraction.
	Baseline bool
}

// Outcome is one candidate's terminal disposition with its reason.
type Outcome struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Result reports the disposition of every candidate in a batch. Skipped
// entries are routine noise; rejected entries are real data-quality
// failures worth surfacing to operators.
type Result struct {
	EntityID string    `json:"entity_id"`
	Written  []string  `json:"written"`
	Rejected []Outcome `json:"rejected"`
	Skipped  []Outcome `json:"skipped"`
	DryRun   bool      `json:"dry_run,omitempty"`
}

// Canonicalizer validates and applies candidate findings against entity
// graphs. Writes to the same entity are serialized; reads and writes for
// different entities never block each other.
type Canonicalizer struct {
	store     store.Store
	schema    *schema.Registry
	authority *authority.Registry
	now       func() time.Time

	locks sync.Map // entity id -> *sync.Mutex
}

// CanonicalizerOption customizes construction.
type CanonicalizerOption func(*Canonicalizer)

// WithNow injects a clock for tests.
func WithNow(now func() time.Time) CanonicalizerOption {
	return func(c *Canonicalizer) { c.now = now }
}

// New builds a canonicalizer over the given store and registries.
func New(st store.Store, sr *schema.Registry, ar *authority.Registry, opts ...CanonicalizerOption) *Canonicalizer {
	c := &Canonicalizer{
		store:     st,
		schema:    sr,
		authority: ar,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Canonicalizer) entityLock(entityID string) *sync.Mutex {
	mu, _ := c.locks.LoadOrStore(entityID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Canonicalize judges each finding independently and persists at most once,
// after the whole batch, and only when at least one field was written. A
// returned error means an infrastructure fault; individual bad candidates
// land in Rejected or Skipped, never in the error.
func (c *Canonicalizer) Canonicalize(ctx context.Context, entityID string, findings []model.Candidate, opts Options) (*Result, error) {
	if opts.Source == "" {
		return nil, eris.New("canonical: batch source is required")
	}

	mu := c.entityLock(entityID)
	mu.Lock()
	defer mu.Unlock()

	g, err := c.store.LoadGraph(ctx, entityID)
	if err != nil {
		return nil, eris.Wrapf(err, "canonical: load graph %s", entityID)
	}
	if g == nil {
		g = model.NewGraph(entityID)
	}
	work := g.Clone()

	res := &Result{EntityID: entityID, DryRun: opts.DryRun}
	now := c.now().UTC()

	for _, cand := range findings {
		c.judge(work, cand, opts, now, res)
	}

	if len(res.Written) > 0 && !opts.DryRun {
		tag := fmt.Sprintf("canonicalize:%s", opts.Source)
		if opts.RunID != "" {
			tag = fmt.Sprintf("canonicalize:%s:%s", opts.Source, opts.RunID)
		}
		if err := c.store.SaveGraph(ctx, work, tag); err != nil {
			return nil, eris.Wrapf(err, "canonical: save graph %s", entityID)
		}
	}

	zap.L().Info("canonicalized batch",
		zap.String("entity", entityID),
		zap.String("source", string(opts.Source)),
		zap.Int("written", len(res.Written)),
		zap.Int("rejected", len(res.Rejected)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Bool("dry_run", opts.DryRun))

	return res, nil
}

// judge applies the gate sequence to one candidate and mutates the working
// graph on success. Gate order is part of the contract: the first failing
// gate names the reason the operator sees.
func (c *Canonicalizer) judge(work *model.Graph, cand model.Candidate, opts Options, now time.Time, res *Result) {
	// Empty and placeholder values are routine producer noise.
	if !quality.IsMeaningful(cand.Value) {
		res.skip(cand.Key, "value is empty or placeholder")
		return
	}

	def := c.schema.ByKey(cand.Key)
	if def == nil {
		res.reject(cand.Key, fmt.Sprintf("unknown field key %q", cand.Key))
		return
	}

	// Domain exclusivity is a hard rule: it preempts the softer proposer
	// skip so violations surface as rejections, not routine noise.
	if d := c.authority.ResolveDomain(def.Path); d != nil && d.Exclusive && opts.Source != d.CanonicalSource {
		res.reject(cand.Key, fmt.Sprintf("domain %q accepts writes only from %q", d.Name, d.CanonicalSource))
		return
	}

	if opts.Source != model.SourceUser && !def.MayPropose(opts.Source) {
		res.skip(cand.Key, fmt.Sprintf("source %q may not propose %s", opts.Source, def.Path))
		return
	}

	if decision := c.authority.ValidateWrite(def.Path, opts.Source); !decision.Allowed {
		res.reject(cand.Key, decision.Reason)
		return
	}

	field := work.Resolve(def.Path)
	force := opts.ForceOverwrite && opts.Source == model.SourceUser
	if field != nil && !force {
		if field.Locked {
			reason := "field is locked"
			if field.LockReason != "" {
				reason = fmt.Sprintf("field is locked: %s", field.LockReason)
			}
			res.skip(cand.Key, reason)
			return
		}
		if field.Status == model.FieldConfirmed {
			res.skip(cand.Key, "field is confirmed; pass force to overwrite")
			return
		}
	}

	if reason := def.ValidateValue(cand.Value); reason != "" {
		res.reject(cand.Key, reason)
		return
	}
	if s, ok := cand.Value.(string); ok {
		if reason := quality.IsGeneric(s); reason != "" {
			res.reject(cand.Key, reason)
			return
		}
	}

	if reason := quality.Validate(def.Check, cand.Value, opts.Baseline); reason != "" {
		res.reject(cand.Key, reason)
		return
	}

	// Proposed values only move forward: an automated candidate must beat
	// the standing confidence to replace a standing proposal.
	if opts.Source != model.SourceUser && field != nil &&
		field.Status == model.FieldProposed && cand.Confidence <= field.Confidence {
		res.skip(cand.Key, fmt.Sprintf("confidence %.2f does not beat standing %.2f",
			cand.Confidence, field.Confidence))
		return
	}

	value := quality.NormalizeValue(cand.Value)

	status := model.FieldProposed
	if opts.Source == model.SourceUser {
		status = model.FieldConfirmed
	}

	target := work.Ensure(def.Path)
	target.Record(value, status, model.ProvenanceEntry{
		Source:     opts.Source,
		RunID:      opts.RunID,
		Confidence: cand.Confidence,
		Evidence:   cand.Evidence,
		Origins:    cand.Sources,
		Timestamp:  now,
	})
	if force {
		target.Locked = false
		target.LockReason = ""
	}
	res.Written = append(res.Written, cand.Key)
}

func (r *Result) skip(key, reason string)   { r.Skipped = append(r.Skipped, Outcome{key, reason}) }
func (r *Result) reject(key, reason string) { r.Rejected = append(r.Rejected, Outcome{key, reason}) }
