// Package app exposes the core operation surface consumed by both the
// one-shot CLI adapter and the long-lived MCP server. Every operation runs
// inside a single store transaction and fails fast; retry on DatabaseBusy
// belongs to the dispatch layer (see retry.go).
package app

import (
	"database/sql"
	"sync"
	"time"

	"github.com/jaakkos/blackboard/internal/domain"
	"github.com/jaakkos/blackboard/internal/store"
)

// List limits: clamped maximum and per-surface defaults.
const (
	MaxListLimit             = 100
	DefaultMessageListLimit  = 20
	DefaultArtifactListLimit = 50
)

// Service owns the store handle and the project root used for artifact path
// validation. Writes are serialized through a process-local mutex for the
// long-lived server; cross-process writes are serialized by SQLite's
// single-writer discipline.
type Service struct {
	store       *store.Store
	projectRoot string

	writeMu sync.Mutex

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Service over an open store.
func New(st *store.Store, projectRoot string) *Service {
	return &Service{store: st, projectRoot: projectRoot, now: time.Now}
}

// Close releases the underlying store.
func (s *Service) Close() error { return s.store.Close() }

// Now returns the service clock reading. Adapters use it to resolve
// relative cutoffs like --since against the same clock the core stamps
// rows with.
func (s *Service) Now() time.Time { return s.now() }

// write runs fn in one transaction with writes serialized process-locally.
func (s *Service) write(fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.store.Tx(fn)
}

// read runs fn in one transaction without taking the write lock; readers
// proceed concurrently under WAL.
func (s *Service) read(fn func(tx *sql.Tx) error) error {
	return s.store.Tx(fn)
}

// StatusUpdate carries the optional fields of a set_status call; nil means
// "leave unchanged".
type StatusUpdate struct {
	CurrentTask *string
	Progress    *int
	Status      *domain.AgentStatus
	Blockers    *string
}

// SetStatus creates the agent row if absent and updates only the supplied
// fields. Blockers are cleared whenever the resulting status is not
// blocked; last_seen and updated_at always refresh.
func (s *Service) SetStatus(agentID string, u StatusUpdate) (domain.Agent, error) {
	if err := domain.ValidateAgentID(agentID); err != nil {
		return domain.Agent{}, err
	}
	if u.CurrentTask != nil {
		if err := domain.ValidateTask(*u.CurrentTask); err != nil {
			return domain.Agent{}, err
		}
	}
	if u.Progress != nil {
		if err := domain.ValidateProgress(*u.Progress); err != nil {
			return domain.Agent{}, err
		}
	}
	if u.Blockers != nil {
		if err := domain.ValidateBlockers(*u.Blockers); err != nil {
			return domain.Agent{}, err
		}
	}

	var result domain.Agent
	err := s.write(func(tx *sql.Tx) error {
		now := s.now()
		existing, err := store.GetAgent(tx, agentID)
		if err != nil {
			return err
		}
		agent := domain.NewAgent(agentID, now)
		if existing != nil {
			agent = *existing
		}

		if u.CurrentTask != nil {
			agent.CurrentTask = *u.CurrentTask
		}
		if u.Progress != nil {
			agent.Progress = *u.Progress
		}
		if u.Status != nil {
			agent.Status = *u.Status
		}
		if u.Blockers != nil {
			agent.Blockers = *u.Blockers
		}
		if agent.Status != domain.StatusBlocked {
			agent.Blockers = ""
		}
		agent.LastSeen = now
		agent.UpdatedAt = now

		if err := store.UpsertAgent(tx, agent); err != nil {
			return err
		}
		result = agent
		return nil
	})
	return result, err
}

// GetStatus returns one agent with its liveness classification. No row is
// created for an unseen id.
func (s *Service) GetStatus(agentID string) (domain.AgentWithLiveness, error) {
	if err := domain.ValidateAgentID(agentID); err != nil {
		return domain.AgentWithLiveness{}, err
	}
	var result domain.AgentWithLiveness
	err := s.read(func(tx *sql.Tx) error {
		agent, err := store.GetAgent(tx, agentID)
		if err != nil {
			return err
		}
		if agent == nil {
			return domain.NotFoundf("agent %q not found", agentID)
		}
		result = domain.WithLiveness(*agent, s.now())
		return nil
	})
	return result, err
}

// ListWithLiveness demotes every non-offline agent whose last_seen is older
// than the stale window to offline, then returns the full agent list newest
// first, all inside one transaction so the returned snapshot is always
// consistent with the demotion just applied.
func (s *Service) ListWithLiveness() ([]domain.AgentWithLiveness, error) {
	var result []domain.AgentWithLiveness
	err := s.write(func(tx *sql.Tx) error {
		now := s.now()
		if _, err := store.DemoteStaleAgents(tx, now.Add(-domain.LivenessStaleWindow)); err != nil {
			return err
		}
		agents, err := store.AllAgents(tx)
		if err != nil {
			return err
		}
		result = make([]domain.AgentWithLiveness, 0, len(agents))
		for _, a := range agents {
			result = append(result, domain.WithLiveness(a, now))
		}
		return nil
	})
	return result, err
}

// ResetStatus returns the agent to idle with empty task, zero progress, and
// no blockers. Always succeeds, creating the row if absent.
func (s *Service) ResetStatus(agentID string) (domain.Agent, error) {
	if err := domain.ValidateAgentID(agentID); err != nil {
		return domain.Agent{}, err
	}
	var result domain.Agent
	err := s.write(func(tx *sql.Tx) error {
		agent := domain.NewAgent(agentID, s.now())
		if err := store.UpsertAgent(tx, agent); err != nil {
			return err
		}
		result = agent
		return nil
	})
	return result, err
}

// Touch refreshes the agent's last_seen without changing anything else,
// creating the row if absent.
func (s *Service) Touch(agentID string) error {
	if err := domain.ValidateAgentID(agentID); err != nil {
		return err
	}
	return s.write(func(tx *sql.Tx) error {
		return store.TouchAgent(tx, agentID, s.now())
	})
}

// DeleteOfflineAgents removes every agent currently marked offline.
func (s *Service) DeleteOfflineAgents() (int64, error) {
	var n int64
	err := s.write(func(tx *sql.Tx) error {
		var err error
		n, err = store.DeleteOfflineAgents(tx)
		return err
	})
	return n, err
}

// clampLimit applies the default and the hard maximum.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
