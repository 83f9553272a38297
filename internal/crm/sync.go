package crm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/resilience"
	"github.com/signalworks/agency-ops/pkg/salesforce"
)

// Syncer pushes client records to Salesforce. Calls retry on transient
// failures and trip a shared circuit breaker so a dead upstream fails fast.
type Syncer struct {
	sf      salesforce.Client
	policy  resilience.Policy
	breaker *resilience.Breaker
}

// NewSyncer creates a Syncer with the default retry policy.
func NewSyncer(sf salesforce.Client) *Syncer {
	return &Syncer{
		sf:      sf,
		policy:  resilience.DefaultPolicy(),
		breaker: resilience.NewBreaker("salesforce"),
	}
}

// SyncResult reports what a sync did.
type SyncResult struct {
	SalesforceID string `json:"salesforce_id"`
	Created      bool   `json:"created"`
	Fields       int    `json:"fields"`
}

// Sync merges the graph into a client record and upserts the matching
// Salesforce Account. Match order: known ID, then exact name, then website.
// A missing account is created; an existing one is updated in place.
func (s *Syncer) Sync(ctx context.Context, g *model.Graph) (*SyncResult, error) {
	if g == nil {
		return nil, eris.New("crm: nil graph")
	}

	var record ClientRecord
	MergeFromGraph(&record, g)
	if record.Name == "" {
		return nil, eris.Errorf("crm: graph %s has no confirmed company name", g.EntityID)
	}

	fields := record.SFFields()

	sfID := record.SalesforceID
	if sfID == "" {
		acct, err := s.match(ctx, record)
		if err != nil {
			return nil, err
		}
		if acct != nil {
			sfID = acct.ID
		}
	}

	if sfID == "" {
		id, err := resilience.DoVal(ctx, s.policy, "crm.insert", func(ctx context.Context) (string, error) {
			var id string
			err := s.breaker.Execute(ctx, func(ctx context.Context) error {
				var innerErr error
				id, innerErr = s.sf.InsertOne(ctx, "Account", fields)
				return innerErr
			})
			return id, err
		})
		if err != nil {
			return nil, eris.Wrap(err, "crm: create account")
		}
		zap.L().Info("created salesforce account",
			zap.String("entity_id", g.EntityID),
			zap.String("sf_id", id),
			zap.Int("fields", len(fields)))
		return &SyncResult{SalesforceID: id, Created: true, Fields: len(fields)}, nil
	}

	err := resilience.Do(ctx, s.policy, "crm.update", func(ctx context.Context) error {
		return s.breaker.Execute(ctx, func(ctx context.Context) error {
			return s.sf.UpdateOne(ctx, "Account", sfID, fields)
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "crm: update account %s", sfID)
	}
	zap.L().Info("updated salesforce account",
		zap.String("entity_id", g.EntityID),
		zap.String("sf_id", sfID),
		zap.Int("fields", len(fields)))
	return &SyncResult{SalesforceID: sfID, Fields: len(fields)}, nil
}

// match looks up an existing Account by name, then by website.
func (s *Syncer) match(ctx context.Context, record ClientRecord) (*salesforce.Account, error) {
	acct, err := salesforce.FindAccountByName(ctx, s.sf, record.Name)
	if err != nil {
		return nil, eris.Wrap(err, "crm: match by name")
	}
	if acct != nil {
		return acct, nil
	}
	if record.Website == "" {
		return nil, nil
	}
	acct, err = salesforce.FindAccountByWebsite(ctx, s.sf, record.Website)
	if err != nil {
		return nil, eris.Wrap(err, "crm: match by website")
	}
	return acct, nil
}
