package domain

import "time"

// Priority orders messages low < normal < high < critical.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority validates a priority string; empty means normal.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	switch Priority(s) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return Priority(s), nil
	}
	return "", Invalidf("unknown priority %q (expected low|normal|high|critical)", s)
}

// Level maps a priority to its rank for minimum-priority filtering.
func (p Priority) Level() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Message is an append-only log entry. No field is ever mutated after
// insert; deletion happens only via age-based cleanup.
type Message struct {
	ID        int64       `json:"id"`
	FromAgent string      `json:"from_agent"`
	Content   string      `json:"content"`
	Tags      []string    `json:"tags"`
	Priority  Priority    `json:"priority"`
	InReplyTo *int64      `json:"in_reply_to,omitempty"`
	Refs      []Reference `json:"refs"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageFilter narrows ListMessages. All set fields combine with AND;
// tags combine with OR among themselves.
type MessageFilter struct {
	Since       *time.Time
	Tags        []string
	FromAgent   string
	MinPriority Priority // zero value: no priority floor
	Ref         *Reference
}
