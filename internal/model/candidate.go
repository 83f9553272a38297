package model

// Candidate is a producer's proposed write: transient, judged by the
// canonicalizer's gates, never persisted directly.
type Candidate struct {
	Key        string   `json:"key"`
	Value      any      `json:"value"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources,omitempty"`
	Evidence   string   `json:"evidence,omitempty"`
}
