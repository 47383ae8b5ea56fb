package app

import (
	"database/sql"
	"time"

	"github.com/jaakkos/blackboard/internal/domain"
	"github.com/jaakkos/blackboard/internal/store"
)

// ExportData is the complete blackboard contents as one JSON document.
type ExportData struct {
	ExportedAt time.Time         `json:"exported_at"`
	Agents     []domain.Agent    `json:"agents"`
	Messages   []domain.Message  `json:"messages"`
	Artifacts  []domain.Artifact `json:"artifacts"`
}

// Export dumps every table in one read transaction.
func (s *Service) Export() (ExportData, error) {
	result := ExportData{ExportedAt: s.now()}
	err := s.read(func(tx *sql.Tx) error {
		agents, err := store.AllAgents(tx)
		if err != nil {
			return err
		}
		result.Agents = agents

		if result.Messages, err = store.AllMessages(tx); err != nil {
			return err
		}
		result.Artifacts, err = store.AllArtifacts(tx)
		return err
	})
	return result, err
}

// SummaryData is the at-a-glance view: agents with liveness, current
// blockers, recent and high-priority traffic, and fresh artifacts.
type SummaryData struct {
	Agents               []domain.AgentWithLiveness `json:"agents"`
	BlockedAgents        []domain.AgentWithLiveness `json:"blocked_agents"`
	RecentMessages       []domain.Message           `json:"recent_messages"`
	HighPriorityMessages []domain.Message           `json:"high_priority_messages"`
	RecentArtifacts      []domain.Artifact          `json:"recent_artifacts"`
}

const summaryListLimit = 5

// Summary builds the overview. The agent list goes through the liveness
// demotion pass first so stale agents show as offline.
func (s *Service) Summary() (SummaryData, error) {
	agents, err := s.ListWithLiveness()
	if err != nil {
		return SummaryData{}, err
	}

	result := SummaryData{Agents: agents}
	for _, a := range agents {
		if a.Status == domain.StatusBlocked {
			result.BlockedAgents = append(result.BlockedAgents, a)
		}
	}

	err = s.read(func(tx *sql.Tx) error {
		var err error
		if result.RecentMessages, err = store.ListMessages(tx, domain.MessageFilter{}, summaryListLimit); err != nil {
			return err
		}
		if result.HighPriorityMessages, err = store.ListMessages(tx, domain.MessageFilter{MinPriority: domain.PriorityHigh}, summaryListLimit); err != nil {
			return err
		}
		result.RecentArtifacts, err = store.ListArtifacts(tx, domain.ArtifactFilter{}, summaryListLimit)
		return err
	})
	return result, err
}
