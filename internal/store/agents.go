package store

import (
	"database/sql"
	"time"

	"github.com/jaakkos/blackboard/internal/domain"
)

const agentColumns = "id, current_task, progress, status, blockers, last_seen, updated_at"

// UpsertAgent inserts or fully overwrites the agent row.
func UpsertAgent(tx *sql.Tx, a domain.Agent) error {
	var blockers any
	if a.Blockers != "" {
		blockers = a.Blockers
	}
	_, err := tx.Exec(`INSERT INTO agents (id, current_task, progress, status, blockers, last_seen, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_task = excluded.current_task,
			progress = excluded.progress,
			status = excluded.status,
			blockers = excluded.blockers,
			last_seen = excluded.last_seen,
			updated_at = excluded.updated_at`,
		a.ID, a.CurrentTask, a.Progress, string(a.Status), blockers,
		formatTime(a.LastSeen), formatTime(a.UpdatedAt))
	return err
}

// GetAgent returns the agent row, or (nil, nil) when absent.
func GetAgent(tx *sql.Tx, id string) (*domain.Agent, error) {
	row := tx.QueryRow("SELECT "+agentColumns+" FROM agents WHERE id = ?", id)
	a, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AllAgents returns every agent ordered by last_seen descending.
func AllAgents(tx *sql.Tx) ([]domain.Agent, error) {
	rows, err := tx.Query("SELECT " + agentColumns + " FROM agents ORDER BY datetime(last_seen) DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// DemoteStaleAgents flips every non-offline agent whose last_seen is older
// than cutoff to offline. The conditional WHERE means a concurrent
// set_status that already revived the agent makes this a benign zero-row
// update rather than an error.
func DemoteStaleAgents(tx *sql.Tx, cutoff time.Time) (int64, error) {
	res, err := tx.Exec(`UPDATE agents SET status = 'offline'
		WHERE status != 'offline' AND datetime(last_seen) < datetime(?)`,
		formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TouchAgent refreshes last_seen, creating the row if absent.
func TouchAgent(tx *sql.Tx, id string, now time.Time) error {
	a, err := GetAgent(tx, id)
	if err != nil {
		return err
	}
	if a == nil {
		na := domain.NewAgent(id, now)
		return UpsertAgent(tx, na)
	}
	a.LastSeen = now
	return UpsertAgent(tx, *a)
}

// DeleteOfflineAgents removes every agent currently marked offline.
func DeleteOfflineAgents(tx *sql.Tx) (int64, error) {
	res, err := tx.Exec("DELETE FROM agents WHERE status = 'offline'")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (domain.Agent, error) {
	var a domain.Agent
	var status string
	var blockers sql.NullString
	var lastSeen, updatedAt string
	if err := row.Scan(&a.ID, &a.CurrentTask, &a.Progress, &status, &blockers, &lastSeen, &updatedAt); err != nil {
		return domain.Agent{}, err
	}
	a.Status = domain.AgentStatus(status)
	a.Blockers = blockers.String

	var err error
	if a.LastSeen, err = parseTime(lastSeen, "agents last_seen"); err != nil {
		return domain.Agent{}, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt, "agents updated_at"); err != nil {
		return domain.Agent{}, err
	}
	return a, nil
}
