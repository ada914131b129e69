// Package domain holds the core entities of the tracker and the rules that
// are true of them regardless of transport or storage: status and label list
// hygiene, priority values, and date ordering.
package domain

import (
	"strings"
	"time"
)

// MaxListValueLength caps each status and label. Longer values are rejected
// at the validation layer.
const MaxListValueLength = 40

// DefaultStatuses returns the standard three-column board a project starts
// with when none are supplied.
func DefaultStatuses() []string {
	return []string{"TODO", "IN PROGRESS", "COMPLETE"}
}

// Project is a kanban board owned by a single user. Statuses is never empty
// for a stored project; Labels aggregates every label its tasks have used.
type Project struct {
	ID          string
	UserID      string
	Name        string
	Description *string
	Statuses    []string
	Labels      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FirstStatus returns the project's first configured status, the default
// column for new tasks.
func (p *Project) FirstStatus() string {
	if len(p.Statuses) == 0 {
		return DefaultStatuses()[0]
	}
	return p.Statuses[0]
}

// HasStatus reports whether status is one of the project's configured
// columns. Matching is exact: column names are stored verbatim.
func (p *Project) HasStatus(status string) bool {
	for _, s := range p.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// NormalizeList removes case-insensitive duplicates from values, keeping the
// first occurrence and the original order. Surrounding whitespace is
// trimmed; entries that trim to nothing are dropped.
func NormalizeList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// MergeLabels appends to base the labels from extra that are not already
// present case-insensitively, preserving order. It reports whether anything
// was added.
func MergeLabels(base, extra []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(base))
	for _, l := range base {
		seen[strings.ToLower(l)] = struct{}{}
	}
	out := base
	added := false
	for _, l := range extra {
		key := strings.ToLower(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
		added = true
	}
	return out, added
}
