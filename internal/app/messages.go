package app

import (
	"database/sql"
	"time"

	"github.com/jaakkos/blackboard/internal/domain"
	"github.com/jaakkos/blackboard/internal/store"
)

// PostMessageParams carries a post_message call.
type PostMessageParams struct {
	FromAgent string
	Content   string
	Tags      []string
	Priority  domain.Priority
	InReplyTo *int64
	Refs      []domain.Reference
}

// PostMessage validates all limits, verifies the reply target exists, and
// appends the message with a fresh monotonically increasing id. The
// sender's last_seen refreshes in the same transaction.
func (s *Service) PostMessage(p PostMessageParams) (domain.Message, error) {
	if err := domain.ValidateAgentID(p.FromAgent); err != nil {
		return domain.Message{}, err
	}
	if err := domain.ValidateMessageContent(p.Content); err != nil {
		return domain.Message{}, err
	}
	if err := domain.ValidateTags(p.Tags); err != nil {
		return domain.Message{}, err
	}
	refs, err := domain.ValidateRefs(p.Refs)
	if err != nil {
		return domain.Message{}, err
	}
	if p.Priority == "" {
		p.Priority = domain.PriorityNormal
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	var result domain.Message
	err = s.write(func(tx *sql.Tx) error {
		if p.InReplyTo != nil {
			parent, err := store.GetMessage(tx, *p.InReplyTo)
			if err != nil {
				return err
			}
			if parent == nil {
				return domain.NotFoundf("message %d not found", *p.InReplyTo)
			}
		}

		msg := domain.Message{
			FromAgent: p.FromAgent,
			Content:   p.Content,
			Tags:      p.Tags,
			Priority:  p.Priority,
			InReplyTo: p.InReplyTo,
			Refs:      refs,
			CreatedAt: s.now(),
		}
		id, err := store.InsertMessage(tx, msg)
		if err != nil {
			return err
		}
		msg.ID = id

		if err := store.TouchAgent(tx, p.FromAgent, msg.CreatedAt); err != nil {
			return err
		}
		result = msg
		return nil
	})
	return result, err
}

// ListMessages applies the filter with the limit clamped (default 20,
// max 100), newest first.
func (s *Service) ListMessages(f domain.MessageFilter, limit int) ([]domain.Message, error) {
	if err := domain.ValidateTags(f.Tags); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, DefaultMessageListLimit)

	var result []domain.Message
	err := s.read(func(tx *sql.Tx) error {
		var err error
		result, err = store.ListMessages(tx, f, limit)
		return err
	})
	return result, err
}

// GetThread returns the message and its direct replies oldest first. One
// level only: replies to replies belong to their own threads.
func (s *Service) GetThread(id int64) ([]domain.Message, error) {
	var result []domain.Message
	err := s.read(func(tx *sql.Tx) error {
		root, err := store.GetMessage(tx, id)
		if err != nil {
			return err
		}
		if root == nil {
			return domain.NotFoundf("message %d not found", id)
		}
		replies, err := store.MessageReplies(tx, id)
		if err != nil {
			return err
		}
		result = append([]domain.Message{*root}, replies...)
		return nil
	})
	return result, err
}

// DeleteMessagesBefore removes messages older than the cutoff and reports
// how many were deleted.
func (s *Service) DeleteMessagesBefore(before time.Time) (int64, error) {
	var n int64
	err := s.write(func(tx *sql.Tx) error {
		var err error
		n, err = store.DeleteMessagesBefore(tx, before)
		return err
	})
	return n, err
}

// MaxMessageID reports the highest assigned message id, 0 when the log is
// empty. The server's change watcher polls this.
func (s *Service) MaxMessageID() (int64, error) {
	var id int64
	err := s.read(func(tx *sql.Tx) error {
		var err error
		id, err = store.MaxMessageID(tx)
		return err
	})
	return id, err
}
