// Package freshness scores how stale a graph field is relative to its
// expected rate of change. Scoring is a pure function of the field path, the
// reference timestamps, and the configured thresholds.
package freshness

import (
	"math"
	"time"

	"github.com/signalworks/agency-ops/internal/fieldpath"
)

// Status buckets a field's age against its thresholds.
type Status string

const (
	StatusFresh   Status = "fresh"
	StatusStale   Status = "stale"
	StatusExpired Status = "expired"
)

// RefreshMethod is how a stale field should be brought current.
type RefreshMethod string

const (
	RefreshRescrape  RefreshMethod = "auto_rescrape"
	RefreshAPIRepull RefreshMethod = "api_repull"
	RefreshManual    RefreshMethod = "manual"
)

// Thresholds define the day boundaries of the fresh, stale, and expired
// windows. Fresh < Stale < Expired.
type Thresholds struct {
	FreshDays   int `yaml:"fresh_days" json:"fresh_days"`
	StaleDays   int `yaml:"stale_days" json:"stale_days"`
	ExpiredDays int `yaml:"expired_days" json:"expired_days"`
}

// Score is the freshness verdict for one field.
type Score struct {
	FieldPath     string        `json:"field_path"`
	AgeDays       int           `json:"age_days"`
	Status        Status        `json:"status"`
	Score         float64       `json:"score"`
	RefreshBy     time.Time     `json:"refresh_by"`
	RefreshMethod RefreshMethod `json:"refresh_method"`
}

// refreshMethods maps domains to how their fields get refreshed. Domains not
// listed fall back to manual refresh.
var refreshMethods = map[string]RefreshMethod{
	"competitive": RefreshRescrape,
	"brand":       RefreshRescrape,
	"products":    RefreshRescrape,
	"audience":    RefreshAPIRepull,
	"channels":    RefreshAPIRepull,
	"identity":    RefreshAPIRepull,
}

// MethodFor infers the refresh method from a field's domain.
func MethodFor(path string) RefreshMethod {
	if m, ok := refreshMethods[fieldpath.Domain(path)]; ok {
		return m
	}
	return RefreshManual
}

// ScoreField computes the decay score for a field. The reference date is
// verifiedAt when set, else setAt. The score is piecewise-linear: 100 down
// to 80 across the fresh window, 80 down to 40 across the stale window, 40
// down to 10 across the expired window, then asymptotically toward 0.
func (c Config) ScoreField(path string, setAt time.Time, verifiedAt *time.Time, now time.Time) Score {
	ref := setAt
	if verifiedAt != nil && !verifiedAt.IsZero() {
		ref = *verifiedAt
	}

	age := now.Sub(ref).Hours() / 24
	if age < 0 {
		age = 0
	}

	th := c.ThresholdsFor(path)
	s := Score{
		FieldPath:     path,
		AgeDays:       int(age),
		RefreshBy:     ref.AddDate(0, 0, th.FreshDays),
		RefreshMethod: MethodFor(path),
	}

	fresh := float64(th.FreshDays)
	stale := float64(th.StaleDays)
	expired := float64(th.ExpiredDays)

	switch {
	case age <= fresh:
		s.Status = StatusFresh
		s.Score = 100 - 20*(age/fresh)
	case age <= stale:
		s.Status = StatusStale
		s.Score = 80 - 40*(age-fresh)/(stale-fresh)
	case age <= expired:
		s.Status = StatusExpired
		s.Score = 40 - 30*(age-stale)/(expired-stale)
	default:
		s.Status = StatusExpired
		s.Score = 10 * math.Pow(2, -(age-expired)/expired)
	}
	return s
}
