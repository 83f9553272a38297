// Package fieldpath provides dot-path utilities shared by every consumer of
// field identifiers: domain extraction and the wildcard pattern matcher used
// for freshness thresholds and resolution rules.
package fieldpath

import "strings"

// Domain returns the first segment of a dot-separated path, its graph
// partition. An empty path yields "".
func Domain(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// Split breaks a path into its segments.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Join assembles segments into a path.
func Join(segments ...string) string {
	return strings.Join(segments, ".")
}

// Match reports whether path matches pattern. Patterns are either an exact
// path, a prefix wildcard ("brand.*" matches "brand.voice" and
// "brand.voice.tone"), or the global wildcard "*".
func Match(path, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, ".*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+".")
	}
	return path == pattern
}
