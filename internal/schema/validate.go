package schema

import (
	"fmt"
	"strings"
)

// Default text bounds, applied when a definition carries no override.
const (
	DefaultMinLength = 3
	DefaultMaxLength = 2000
)

// ValidateValue applies the schema quality validation for a definition:
// declared type, length bounds with per-field overrides, and reject
// patterns. Returns the reject reason, or "" when the value passes.
func (d *FieldDefinition) ValidateValue(v any) string {
	switch d.Kind {
	case KindText:
		s, ok := v.(string)
		if !ok {
			return fmt.Sprintf("expected text for %q, got %T", d.Key, v)
		}
		return d.validateText(s)
	case KindList:
		switch list := v.(type) {
		case []string:
			for _, e := range list {
				if reason := d.matchReject(e); reason != "" {
					return reason
				}
			}
		case []any:
			for _, e := range list {
				if s, ok := e.(string); ok {
					if reason := d.matchReject(s); reason != "" {
						return reason
					}
				}
			}
		default:
			return fmt.Sprintf("expected list for %q, got %T", d.Key, v)
		}
		return ""
	case KindNumber:
		switch v.(type) {
		case int, int64, float64, float32:
			return ""
		default:
			return fmt.Sprintf("expected number for %q, got %T", d.Key, v)
		}
	default:
		return ""
	}
}

func (d *FieldDefinition) validateText(s string) string {
	trimmed := strings.TrimSpace(s)
	minLen := d.MinLength
	if minLen == 0 {
		minLen = DefaultMinLength
	}
	maxLen := d.MaxLength
	if maxLen == 0 {
		maxLen = DefaultMaxLength
	}
	if len(trimmed) < minLen {
		return fmt.Sprintf("value for %q under minimum length %d", d.Key, minLen)
	}
	if len(trimmed) > maxLen {
		return fmt.Sprintf("value for %q over maximum length %d", d.Key, maxLen)
	}
	return d.matchReject(trimmed)
}

func (d *FieldDefinition) matchReject(s string) string {
	for _, rj := range d.rejects {
		if rj.re.MatchString(s) {
			return fmt.Sprintf("value for %q matches reject pattern %q", d.Key, rj.src)
		}
	}
	return ""
}
