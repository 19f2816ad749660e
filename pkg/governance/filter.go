package governance

import (
	"strings"
	"sync"
)

// Severity classifies how severe a content-policy violation is.
type Severity string

const (
	// SeverityLow indicates no policy violation was found.
	SeverityLow Severity = "LOW"

	// SeverityMedium indicates one or two policy patterns matched.
	SeverityMedium Severity = "MEDIUM"

	// SeverityHigh indicates more than two policy patterns matched.
	SeverityHigh Severity = "HIGH"
)

// DefaultBlockedPatterns is the built-in content-policy pattern set, used
// when no patterns are configured.
var DefaultBlockedPatterns = []string{
	"harmful", "violent", "abuse", "illegal", "hate", "discriminatory",
	"dangerous", "toxic", "offensive", "inappropriate", "explicit",
}

// FilterResult is the outcome of a content-policy check.
type FilterResult struct {
	// Blocked reports whether the text violates the content policy.
	Blocked bool

	// Reason is a short human-readable reason when Blocked is true.
	Reason string

	// Patterns lists the policy patterns that matched.
	Patterns []string

	// Severity is HIGH when more than two patterns matched, MEDIUM for
	// one or two, and LOW when the text is clean.
	Severity Severity
}

// ContentFilter checks text against a configurable set of policy-violation
// keyword patterns. Matching is case-insensitive substring matching.
//
// The pattern set can be replaced at runtime (see SetPatterns and the
// Watcher in this package), so all access is guarded by a read-write lock.
// Checks take the read path and do not contend with each other.
type ContentFilter struct {
	mu       sync.RWMutex
	patterns []string
}

// NewContentFilter creates a ContentFilter with the given patterns.
// An empty pattern list falls back to DefaultBlockedPatterns.
func NewContentFilter(patterns []string) *ContentFilter {
	if len(patterns) == 0 {
		patterns = DefaultBlockedPatterns
	}
	f := &ContentFilter{}
	f.SetPatterns(patterns)
	return f
}

// Check scans text for policy-violation patterns and returns a result.
// A blocked result short-circuits the request pipeline before any model
// invocation; callers surface the matched patterns and severity to the
// client as a usage-policy message.
func (f *ContentFilter) Check(text string) FilterResult {
	lower := strings.ToLower(text)

	f.mu.RLock()
	patterns := f.patterns
	f.mu.RUnlock()

	var matched []string
	for _, pattern := range patterns {
		if strings.Contains(lower, pattern) {
			matched = append(matched, pattern)
		}
	}

	if len(matched) == 0 {
		return FilterResult{Severity: SeverityLow}
	}

	severity := SeverityMedium
	if len(matched) > 2 {
		severity = SeverityHigh
	}

	return FilterResult{
		Blocked:  true,
		Reason:   "Content policy violation",
		Patterns: matched,
		Severity: severity,
	}
}

// SetPatterns atomically replaces the active pattern set. Patterns are
// normalized to lower case; empty entries are dropped.
func (f *ContentFilter) SetPatterns(patterns []string) {
	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			normalized = append(normalized, p)
		}
	}

	f.mu.Lock()
	f.patterns = normalized
	f.mu.Unlock()
}

// Patterns returns a copy of the active pattern set.
func (f *ContentFilter) Patterns() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]string, len(f.patterns))
	copy(out, f.patterns)
	return out
}
