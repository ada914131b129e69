package domain

import "time"

// Priority is the urgency bucket of a task.
type Priority string

const (
	PriorityNone   Priority = "None"
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// PriorityValues lists the accepted priorities in ascending urgency.
func PriorityValues() []string {
	return []string{
		string(PriorityNone),
		string(PriorityLow),
		string(PriorityNormal),
		string(PriorityHigh),
		string(PriorityUrgent),
	}
}

// ParsePriority returns the Priority for s, or false when s is not one of
// the accepted values. Matching is exact.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityNone, PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s), true
	}
	return "", false
}

// Task is a card on a project's board. Its identity is the pair
// (ProjectID, ID); a task id alone is meaningless outside its project.
// Status is always one of the parent project's configured columns at write
// time. UserID is a copy of the owner used by conditional writes.
type Task struct {
	ID          string
	ProjectID   string
	UserID      string
	Name        string
	Description *string
	Status      string
	Priority    Priority
	StartDate   *time.Time
	DueDate     *time.Time
	Labels      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DatesOrdered reports whether the start/due pair is acceptable: either may
// be unset, and when both are set the due date must not precede the start.
func DatesOrdered(start, due *time.Time) bool {
	if start == nil || due == nil {
		return true
	}
	return !due.Before(*start)
}
