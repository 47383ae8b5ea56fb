package app

import (
	"database/sql"

	"github.com/jaakkos/blackboard/internal/domain"
	"github.com/jaakkos/blackboard/internal/store"
)

// RefResults is the cross-entity result of a find_refs lookup.
type RefResults struct {
	Messages  []domain.Message  `json:"messages"`
	Artifacts []domain.Artifact `json:"artifacts"`
}

// FindRefs returns every message and artifact embedding the exact triple.
// The ref value is compared as text so "13" matches both numeric and string
// stored forms.
func (s *Service) FindRefs(where, what, ref string) (RefResults, error) {
	if where == "" || what == "" || ref == "" {
		return RefResults{}, domain.Invalidf("where, what, and ref are all required")
	}
	var result RefResults
	err := s.read(func(tx *sql.Tx) error {
		var err error
		if result.Messages, err = store.FindMessagesByRef(tx, where, what, ref); err != nil {
			return err
		}
		result.Artifacts, err = store.FindArtifactsByRef(tx, where, what, ref)
		return err
	})
	return result, err
}
