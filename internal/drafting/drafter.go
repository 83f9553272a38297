// Package drafting turns graph facts into planner proposals and prose
// deliverables via the LLM, feeding every proposal back through the
// canonicalizer rather than writing the graph directly.
package drafting

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalworks/agency-ops/internal/canonical"
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/resilience"
	"github.com/signalworks/agency-ops/internal/schema"
	"github.com/signalworks/agency-ops/internal/store"
	"github.com/signalworks/agency-ops/pkg/anthropic"
)

// Drafter runs planning and brief drafts against the LLM.
type Drafter struct {
	client    anthropic.Client
	canon     *canonical.Canonicalizer
	store     store.Store
	schema    *schema.Registry
	policy    resilience.Policy
	model     string
	maxTokens int64
}

// DrafterOption configures a Drafter.
type DrafterOption func(*Drafter)

// WithModel overrides the LLM model.
func WithModel(model string) DrafterOption {
	return func(d *Drafter) {
		if model != "" {
			d.model = model
		}
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int64) DrafterOption {
	return func(d *Drafter) {
		if n > 0 {
			d.maxTokens = n
		}
	}
}

// WithPolicy overrides the retry policy for LLM calls.
func WithPolicy(p resilience.Policy) DrafterOption {
	return func(d *Drafter) { d.policy = p }
}

// NewDrafter wires a Drafter to its LLM client, canonicalizer, and store.
func NewDrafter(client anthropic.Client, canon *canonical.Canonicalizer, st store.Store, reg *schema.Registry, opts ...DrafterOption) *Drafter {
	d := &Drafter{
		client:    client,
		canon:     canon,
		store:     st,
		schema:    reg,
		policy:    resilience.DefaultPolicy(),
		model:     "claude-sonnet-4-5-20250929",
		maxTokens: 4096,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Plan drafts proposals for a workflow's open fields and submits them to the
// canonicalizer as planner findings. The returned result reflects what the
// canonicalizer accepted, skipped, or rejected.
func (d *Drafter) Plan(ctx context.Context, entityID, workflow string, dryRun bool) (*canonical.Result, error) {
	defs := d.schema.ForWorkflow(workflow)
	if len(defs) == 0 {
		return nil, eris.Errorf("drafting: unknown workflow %q", workflow)
	}

	g, err := d.store.LoadGraph(ctx, entityID)
	if err != nil {
		return nil, eris.Wrapf(err, "drafting: load graph %s", entityID)
	}
	if g == nil {
		g = model.NewGraph(entityID)
	}

	resp, err := d.complete(ctx, "drafting.plan", planSystemPrompt, BuildPlanPrompt(g, defs))
	if err != nil {
		return nil, err
	}
	resp.Usage.Log(resp.Model, "plan")

	findings, err := parseFindings(resp.Text)
	if err != nil {
		return nil, eris.Wrapf(err, "drafting: parse plan for %s", entityID)
	}

	runID := uuid.NewString()
	zap.L().Info("plan drafted",
		zap.String("entity_id", entityID),
		zap.String("workflow", workflow),
		zap.String("run_id", runID),
		zap.Int("findings", len(findings)))

	return d.canon.Canonicalize(ctx, entityID, findings, canonical.Options{
		Source: model.SourcePlanner,
		RunID:  runID,
		DryRun: dryRun,
	})
}

// BriefDraft is a drafted prose deliverable.
type BriefDraft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Brief drafts a prose deliverable for a workflow. The draft is returned to
// the caller for review and publication; it never touches the graph.
func (d *Drafter) Brief(ctx context.Context, entityID, workflow string) (*BriefDraft, error) {
	g, err := d.store.LoadGraph(ctx, entityID)
	if err != nil {
		return nil, eris.Wrapf(err, "drafting: load graph %s", entityID)
	}
	if g == nil {
		return nil, eris.Errorf("drafting: no graph for %s", entityID)
	}

	resp, err := d.complete(ctx, "drafting.brief", briefSystemPrompt, BuildBriefPrompt(g, workflow))
	if err != nil {
		return nil, err
	}
	resp.Usage.Log(resp.Model, "brief")

	body := strings.TrimSpace(resp.Text)
	if body == "" {
		return nil, eris.Errorf("drafting: empty brief for %s", entityID)
	}

	title := workflow + ": " + entityID
	if f := g.Resolve("identity.companyName"); f != nil {
		if name, ok := f.Value.(string); ok && name != "" {
			title = workflow + ": " + name
		}
	}

	return &BriefDraft{Title: title, Body: body}, nil
}

// complete runs one LLM call under the retry policy.
func (d *Drafter) complete(ctx context.Context, op, system, user string) (*anthropic.MessageResponse, error) {
	return resilience.DoVal(ctx, d.policy, op, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return d.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     d.model,
			MaxTokens: d.maxTokens,
			System:    system,
			Messages: []anthropic.Message{
				{Role: "user", Content: user},
			},
		})
	})
}

// parseFindings decodes the model's JSON response into candidates. Fenced
// code blocks and surrounding prose are stripped before decoding.
func parseFindings(text string) ([]model.Candidate, error) {
	cleaned := cleanJSON(text)

	var raw struct {
		Findings []struct {
			Key        string  `json:"key"`
			Value      any     `json:"value"`
			Confidence float64 `json:"confidence"`
			Evidence   string  `json:"evidence"`
		} `json:"findings"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "drafting: decode findings")
	}

	findings := make([]model.Candidate, 0, len(raw.Findings))
	for _, f := range raw.Findings {
		if f.Key == "" {
			continue
		}
		findings = append(findings, model.Candidate{
			Key:        f.Key,
			Value:      f.Value,
			Confidence: f.Confidence,
			Evidence:   f.Evidence,
		})
	}
	return findings, nil
}

// cleanJSON strips markdown fences and surrounding prose from a JSON payload.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
