package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jaakkos/blackboard/internal/domain"
)

const messageColumns = "id, from_agent, content, tags, priority, in_reply_to, refs, created_at"

// Replies per thread are capped; the reply model is one level deep.
const maxThreadReplies = 50

// InsertMessage appends a message and returns its assigned id. AUTOINCREMENT
// guarantees ids are strictly increasing and never reused.
func InsertMessage(tx *sql.Tx, m domain.Message) (int64, error) {
	tags, err := marshalJSON(m.Tags, "messages tags")
	if err != nil {
		return 0, err
	}
	refs, err := marshalJSON(m.Refs, "messages refs")
	if err != nil {
		return 0, err
	}
	var inReplyTo any
	if m.InReplyTo != nil {
		inReplyTo = *m.InReplyTo
	}
	res, err := tx.Exec(`INSERT INTO messages (from_agent, content, tags, priority, in_reply_to, refs, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.FromAgent, m.Content, tags, string(m.Priority), inReplyTo, refs, formatTime(m.CreatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetMessage returns the message, or (nil, nil) when absent.
func GetMessage(tx *sql.Tx, id int64) (*domain.Message, error) {
	row := tx.QueryRow("SELECT "+messageColumns+" FROM messages WHERE id = ?", id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages applies the filter (all clauses AND-ed, tags OR-ed within
// the tag clause) ordered newest first, limit already clamped by the caller.
func ListMessages(tx *sql.Tx, f domain.MessageFilter, limit int) ([]domain.Message, error) {
	var sb strings.Builder
	sb.WriteString("SELECT DISTINCT m.id, m.from_agent, m.content, m.tags, m.priority, m.in_reply_to, m.refs, m.created_at FROM messages m WHERE 1=1")
	var args []any

	if f.Since != nil {
		sb.WriteString(" AND datetime(m.created_at) >= datetime(?)")
		args = append(args, formatTime(*f.Since))
	}
	if f.FromAgent != "" {
		sb.WriteString(" AND m.from_agent = ?")
		args = append(args, f.FromAgent)
	}
	if f.MinPriority != "" {
		sb.WriteString(` AND (CASE m.priority
			WHEN 'critical' THEN 4
			WHEN 'high' THEN 3
			WHEN 'normal' THEN 2
			WHEN 'low' THEN 1
			END) >= ?`)
		args = append(args, f.MinPriority.Level())
	}
	if len(f.Tags) > 0 {
		sb.WriteString(" AND EXISTS (SELECT 1 FROM json_each(m.tags) WHERE value IN (")
		sb.WriteString(strings.Repeat("?, ", len(f.Tags)-1) + "?")
		sb.WriteString("))")
		for _, tag := range f.Tags {
			args = append(args, tag)
		}
	}
	if f.Ref != nil {
		sb.WriteString(refExistsClause("m"))
		args = append(args, f.Ref.Where, f.Ref.What, f.Ref.RefText())
	}

	sb.WriteString(" ORDER BY datetime(m.created_at) DESC, m.id DESC LIMIT ?")
	args = append(args, limit)

	return queryMessages(tx, sb.String(), args...)
}

// FindMessagesByRef returns every message embedding the exact triple,
// newest first.
func FindMessagesByRef(tx *sql.Tx, where, what, ref string) ([]domain.Message, error) {
	query := "SELECT " + messageColumns + " FROM messages m WHERE 1=1" + refExistsClause("m") +
		" ORDER BY datetime(m.created_at) DESC, m.id DESC"
	return queryMessages(tx, query, where, what, ref)
}

// MessageReplies returns direct replies oldest first. One level only; the
// reply model does not recurse into grandchildren.
func MessageReplies(tx *sql.Tx, id int64) ([]domain.Message, error) {
	return queryMessages(tx,
		"SELECT "+messageColumns+" FROM messages WHERE in_reply_to = ? ORDER BY datetime(created_at) ASC, id ASC LIMIT ?",
		id, maxThreadReplies)
}

// AllMessages returns the whole log oldest first, for export.
func AllMessages(tx *sql.Tx) ([]domain.Message, error) {
	return queryMessages(tx, "SELECT "+messageColumns+" FROM messages ORDER BY id ASC")
}

// DeleteMessagesBefore removes messages created before the cutoff.
func DeleteMessagesBefore(tx *sql.Tx, before time.Time) (int64, error) {
	res, err := tx.Exec("DELETE FROM messages WHERE datetime(created_at) < datetime(?)", formatTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MaxMessageID returns the highest assigned message id, 0 when empty.
func MaxMessageID(tx *sql.Tx) (int64, error) {
	var id sql.NullInt64
	if err := tx.QueryRow("SELECT MAX(id) FROM messages").Scan(&id); err != nil {
		return 0, err
	}
	return id.Int64, nil
}

// refExistsClause matches one embedded reference triple inside a JSON refs
// column. The ref value is compared as text on both sides so numeric and
// string forms agree.
func refExistsClause(alias string) string {
	return ` AND EXISTS (SELECT 1 FROM json_each(` + alias + `.refs)
		WHERE json_extract(value, '$.where') = ?
		  AND json_extract(value, '$.what') = ?
		  AND CAST(json_extract(value, '$.ref') AS TEXT) = CAST(? AS TEXT))`
}

func queryMessages(tx *sql.Tx, query string, args ...any) ([]domain.Message, error) {
	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func scanMessage(row rowScanner) (domain.Message, error) {
	var m domain.Message
	var tags, refs, priority, createdAt string
	var inReplyTo sql.NullInt64
	if err := row.Scan(&m.ID, &m.FromAgent, &m.Content, &tags, &priority, &inReplyTo, &refs, &createdAt); err != nil {
		return domain.Message{}, err
	}
	m.Priority = domain.Priority(priority)
	if inReplyTo.Valid {
		v := inReplyTo.Int64
		m.InReplyTo = &v
	}
	if err := parseJSON([]byte(tags), &m.Tags, "messages tags"); err != nil {
		return domain.Message{}, err
	}
	if err := parseJSON([]byte(refs), &m.Refs, "messages refs"); err != nil {
		return domain.Message{}, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt, "messages created_at"); err != nil {
		return domain.Message{}, err
	}
	return m, nil
}
