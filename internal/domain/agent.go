// Package domain holds the blackboard entities, validation limits, and the
// error taxonomy shared by the storage layer and both adapters.
// It has no dependencies on other packages.
package domain

import "time"

// AgentStatus is the stored presence state of an agent.
type AgentStatus string

const (
	StatusIdle      AgentStatus = "idle"
	StatusPlanning  AgentStatus = "planning"
	StatusCoding    AgentStatus = "coding"
	StatusTesting   AgentStatus = "testing"
	StatusReviewing AgentStatus = "reviewing"
	StatusBlocked   AgentStatus = "blocked"
	StatusOffline   AgentStatus = "offline"
)

// ParseAgentStatus validates a status string from an adapter.
// Offline is accepted here only because the store writes it during liveness
// demotion; adapters reject it before calling SetStatus.
func ParseAgentStatus(s string) (AgentStatus, error) {
	switch AgentStatus(s) {
	case StatusIdle, StatusPlanning, StatusCoding, StatusTesting, StatusReviewing, StatusBlocked, StatusOffline:
		return AgentStatus(s), nil
	}
	return "", Invalidf("unknown status %q (expected idle|planning|coding|testing|reviewing|blocked)", s)
}

// Agent is one row per participant id, created implicitly on first write.
type Agent struct {
	ID          string      `json:"id"`
	CurrentTask string      `json:"current_task"`
	Progress    int         `json:"progress"`
	Status      AgentStatus `json:"status"`
	Blockers    string      `json:"blockers,omitempty"`
	LastSeen    time.Time   `json:"last_seen"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewAgent returns a fresh idle agent for a previously-unseen id.
func NewAgent(id string, now time.Time) Agent {
	return Agent{ID: id, Status: StatusIdle, LastSeen: now, UpdatedAt: now}
}

// Liveness is the derived activity classification. Stale is
// presentation-only and never written back to the store.
type Liveness string

const (
	LivenessActive  Liveness = "active"
	LivenessStale   Liveness = "stale"
	LivenessOffline Liveness = "offline"
)

const (
	// LivenessActiveWindow is the maximum age of last_seen for an agent to
	// count as active.
	LivenessActiveWindow = 5 * time.Minute
	// LivenessStaleWindow is the age beyond which an agent is demoted to
	// offline in the store.
	LivenessStaleWindow = 30 * time.Minute
)

// ClassifyLiveness is a pure function of the gap between now and lastSeen.
func ClassifyLiveness(lastSeen, now time.Time) Liveness {
	elapsed := now.Sub(lastSeen)
	switch {
	case elapsed <= LivenessActiveWindow:
		return LivenessActive
	case elapsed <= LivenessStaleWindow:
		return LivenessStale
	default:
		return LivenessOffline
	}
}

// AgentWithLiveness pairs a stored agent with its derived classification.
type AgentWithLiveness struct {
	Agent
	Liveness             Liveness `json:"liveness"`
	MinutesSinceLastSeen int64    `json:"minutes_since_last_seen"`
}

// WithLiveness annotates a for presentation at time now.
func WithLiveness(a Agent, now time.Time) AgentWithLiveness {
	return AgentWithLiveness{
		Agent:                a,
		Liveness:             ClassifyLiveness(a.LastSeen, now),
		MinutesSinceLastSeen: int64(now.Sub(a.LastSeen).Minutes()),
	}
}
