package canonical

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalworks/agency-ops/internal/model"
)

// resolvePath maps a schema key or raw field path to the stored path.
func (c *Canonicalizer) resolvePath(keyOrPath string) string {
	if def := c.schema.ByKey(keyOrPath); def != nil {
		return def.Path
	}
	if def := c.schema.ByPath(keyOrPath); def != nil {
		return def.Path
	}
	return keyOrPath
}

// mutateField loads the entity graph, applies fn to the named field, and
// persists. Moderation actions bypass the candidate gates; they adjust
// status and locks on values that already passed them.
func (c *Canonicalizer) mutateField(ctx context.Context, entityID, keyOrPath, writerTag string, fn func(*model.Field) error) error {
	path := c.resolvePath(keyOrPath)

	mu := c.entityLock(entityID)
	mu.Lock()
	defer mu.Unlock()

	g, err := c.store.LoadGraph(ctx, entityID)
	if err != nil {
		return eris.Wrapf(err, "canonical: load graph %s", entityID)
	}
	if g == nil {
		return eris.Errorf("canonical: no graph for entity %s", entityID)
	}

	work := g.Clone()
	f := work.Resolve(path)
	if f == nil || f.Status == model.FieldMissing {
		return eris.Errorf("canonical: field %s has no value", path)
	}
	if err := fn(f); err != nil {
		return err
	}
	return eris.Wrapf(c.store.SaveGraph(ctx, work, writerTag), "canonical: save graph %s", entityID)
}

// ConfirmField promotes a proposed value to confirmed, recording the
// operator's review time. Confirmed values are immutable to automated
// producers.
func (c *Canonicalizer) ConfirmField(ctx context.Context, entityID, keyOrPath string) error {
	now := c.now().UTC()
	return c.mutateField(ctx, entityID, keyOrPath, "operator:confirm", func(f *model.Field) error {
		f.Status = model.FieldConfirmed
		f.VerifiedAt = &now
		f.Provenance = model.PrependProvenance(f.Provenance, model.ProvenanceEntry{
			Source:     model.SourceUser,
			Confidence: 1,
			Evidence:   "operator confirmed",
			Timestamp:  now,
		})
		return nil
	})
}

// LockField freezes a field against all writes until unlocked.
func (c *Canonicalizer) LockField(ctx context.Context, entityID, keyOrPath, reason string) error {
	err := c.mutateField(ctx, entityID, keyOrPath, "operator:lock", func(f *model.Field) error {
		f.Locked = true
		f.LockReason = reason
		return nil
	})
	if err == nil {
		zap.L().Info("field locked", zap.String("entity", entityID), zap.String("field", keyOrPath))
	}
	return err
}

// UnlockField clears a lock.
func (c *Canonicalizer) UnlockField(ctx context.Context, entityID, keyOrPath string) error {
	return c.mutateField(ctx, entityID, keyOrPath, "operator:unlock", func(f *model.Field) error {
		f.Locked = false
		f.LockReason = ""
		return nil
	})
}

// MarkVerified refreshes a field's verification timestamp without changing
// the value, resetting its freshness clock.
func (c *Canonicalizer) MarkVerified(ctx context.Context, entityID, keyOrPath string, at time.Time) error {
	return c.mutateField(ctx, entityID, keyOrPath, "operator:verify", func(f *model.Field) error {
		t := at.UTC()
		f.VerifiedAt = &t
		return nil
	})
}
