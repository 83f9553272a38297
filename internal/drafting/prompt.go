package drafting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/schema"
)

// planSystemPrompt instructs the model to propose graph field values as JSON.
const planSystemPrompt = `You are a senior marketing strategist at a digital agency.
You are given the verified facts we hold about a client, and a list of strategy
fields that are still missing or unconfirmed. Propose values for the missing
fields, grounded ONLY in the facts provided. Be specific: name the client's
actual market, audience, and products. Never output placeholder or generic
marketing language.

Respond with ONLY a JSON object, no prose:
{"findings": [{"key": "<field key>", "value": <value>, "confidence": <0.0-1.0>, "evidence": "<one sentence citing the facts used>"}]}

For list fields, value is a JSON array of strings. Omit any field you cannot
ground in the facts. Confidence above 0.8 requires direct support from a fact.`

// briefSystemPrompt instructs the model to write a prose deliverable.
const briefSystemPrompt = `You are a senior marketing strategist at a digital agency.
Write a concise internal brief for the account team using ONLY the client facts
provided. Plain prose, short paragraphs separated by blank lines. No headings,
no bullet lists, no invented facts.`

// BuildPlanPrompt assembles the user message for a planning draft: the
// client's known facts followed by the field keys still open for proposal.
func BuildPlanPrompt(g *model.Graph, defs []*schema.FieldDefinition) string {
	var b strings.Builder

	b.WriteString("CLIENT FACTS:\n")
	facts := graphFacts(g)
	if len(facts) == 0 {
		b.WriteString("(none on file)\n")
	}
	for _, line := range facts {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString("\nFIELDS TO PROPOSE:\n")
	for _, d := range defs {
		if d == nil {
			continue
		}
		if f := g.Resolve(d.Path); f != nil && f.Status == model.FieldConfirmed {
			continue // already settled by the operator
		}
		b.WriteString(fmt.Sprintf("- %s (%s)\n", d.Key, d.Kind))
	}

	return b.String()
}

// BuildBriefPrompt assembles the user message for a prose brief draft.
func BuildBriefPrompt(g *model.Graph, workflow string) string {
	var b strings.Builder

	b.WriteString("CLIENT FACTS:\n")
	for _, line := range graphFacts(g) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString("\nDELIVERABLE: ")
	switch workflow {
	case "campaign_brief":
		b.WriteString("a campaign brief covering objective, audience, message, and channels.")
	case "content_plan":
		b.WriteString("a content plan covering themes, cadence, and channel fit.")
	default:
		b.WriteString("a strategy summary covering positioning, audience, and goals.")
	}

	return b.String()
}

// graphFacts renders the graph's meaningful fields as sorted "path: value"
// lines. Confirmed facts are marked so the model can weigh them.
func graphFacts(g *model.Graph) []string {
	if g == nil {
		return nil
	}
	var lines []string
	for path, f := range g.Fields {
		if f == nil || f.Value == nil {
			continue
		}
		mark := ""
		if f.Status == model.FieldConfirmed {
			mark = " [confirmed]"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s%s", path, renderValue(f.Value), mark))
	}
	sort.Strings(lines)
	return lines
}

// renderValue flattens a field value for prompt text.
func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, "; ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			parts = append(parts, fmt.Sprintf("%v", e))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
