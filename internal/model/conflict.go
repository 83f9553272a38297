package model

import "time"

// ResolutionStrategy is the recommended way to settle a field conflict.
type ResolutionStrategy string

const (
	// ResolveUserWins applies when the operator authored either side.
	ResolveUserWins ResolutionStrategy = "user_wins"
	// ResolveNewerWins applies when either side is a low-trust inference.
	ResolveNewerWins ResolutionStrategy = "newer_wins"
	// ResolveSourceWins applies when source trust differs (API over scrape).
	ResolveSourceWins ResolutionStrategy = "source_wins"
	// ResolveManual means no automatic recommendation; an operator decides.
	ResolveManual ResolutionStrategy = "manual"
)

// ConflictSide is one of the two competing values in a conflict.
type ConflictSide struct {
	Value      any       `json:"value"`
	Source     Source    `json:"source"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Conflict is a detected disagreement between the current field value and an
// incoming candidate. Conflicts are derived on demand, not persisted.
type Conflict struct {
	FieldPath   string             `json:"field_path"`
	Current     ConflictSide       `json:"current"`
	Incoming    ConflictSide       `json:"incoming"`
	Recommended ResolutionStrategy `json:"recommended"`
	Resolved    bool               `json:"resolved"`
	Winner      *ConflictSide      `json:"winner,omitempty"`
	RuleName    string             `json:"rule_name,omitempty"`
	Auto        bool               `json:"auto"`
}
