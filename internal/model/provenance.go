package model

import "time"

// ProvenanceLimit caps per-field provenance history. Oldest entries beyond
// the cap are silently discarded; history is bounded by design.
const ProvenanceLimit = 5

// ProvenanceEntry records one write to a field: who, when, with what
// confidence, and on what evidence. Entries are immutable once recorded.
type ProvenanceEntry struct {
	Source     Source     `json:"source"`
	RunID      string     `json:"run_id,omitempty"`
	Confidence float64    `json:"confidence"`
	Evidence   string     `json:"evidence,omitempty"`
	Origins    []string   `json:"origins,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// PrependProvenance inserts e as the newest entry and truncates the history
// to ProvenanceLimit.
func PrependProvenance(history []ProvenanceEntry, e ProvenanceEntry) []ProvenanceEntry {
	out := make([]ProvenanceEntry, 0, min(len(history)+1, ProvenanceLimit))
	out = append(out, e)
	for _, prev := range history {
		if len(out) == ProvenanceLimit {
			break
		}
		out = append(out, prev)
	}
	return out
}
