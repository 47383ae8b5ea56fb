package app

import (
	"database/sql"

	"github.com/jaakkos/blackboard/internal/domain"
	"github.com/jaakkos/blackboard/internal/store"
)

// RegisterArtifactParams carries a register_artifact call.
type RegisterArtifactParams struct {
	Path        string
	ProducedBy  string
	Description string
	Version     string
	Refs        []domain.Reference
}

// RegisterArtifact validates path safety and field limits, then upserts
// keyed by path, overwriting all mutable fields and bumping created_at.
// The registering agent's last_seen refreshes in the same transaction.
func (s *Service) RegisterArtifact(p RegisterArtifactParams) (domain.Artifact, error) {
	if err := domain.ValidateArtifactPath(p.Path, s.projectRoot); err != nil {
		return domain.Artifact{}, err
	}
	if err := domain.ValidateAgentID(p.ProducedBy); err != nil {
		return domain.Artifact{}, err
	}
	if err := domain.ValidateArtifactDescription(p.Description); err != nil {
		return domain.Artifact{}, err
	}
	if err := domain.ValidateVersion(p.Version); err != nil {
		return domain.Artifact{}, err
	}
	refs, err := domain.ValidateRefs(p.Refs)
	if err != nil {
		return domain.Artifact{}, err
	}

	var result domain.Artifact
	err = s.write(func(tx *sql.Tx) error {
		artifact := domain.Artifact{
			Path:        p.Path,
			ProducedBy:  p.ProducedBy,
			Description: p.Description,
			Version:     p.Version,
			Refs:        refs,
			CreatedAt:   s.now(),
		}
		if err := store.UpsertArtifact(tx, artifact); err != nil {
			return err
		}
		stored, err := store.GetArtifact(tx, p.Path)
		if err != nil {
			return err
		}
		if stored == nil {
			return domain.NotFoundf("artifact %q not found after upsert", p.Path)
		}
		if err := store.TouchAgent(tx, p.ProducedBy, artifact.CreatedAt); err != nil {
			return err
		}
		result = *stored
		return nil
	})
	return result, err
}

// ListArtifacts applies the filter with the limit clamped (default 50,
// max 100), newest first.
func (s *Service) ListArtifacts(f domain.ArtifactFilter, limit int) ([]domain.Artifact, error) {
	limit = clampLimit(limit, DefaultArtifactListLimit)

	var result []domain.Artifact
	err := s.read(func(tx *sql.Tx) error {
		var err error
		result, err = store.ListArtifacts(tx, f, limit)
		return err
	})
	return result, err
}

// GetArtifact returns the artifact registered at path.
func (s *Service) GetArtifact(path string) (domain.Artifact, error) {
	var result domain.Artifact
	err := s.read(func(tx *sql.Tx) error {
		artifact, err := store.GetArtifact(tx, path)
		if err != nil {
			return err
		}
		if artifact == nil {
			return domain.NotFoundf("artifact %q not found", path)
		}
		result = *artifact
		return nil
	})
	return result, err
}

// ClearArtifacts removes every artifact and reports how many were deleted.
func (s *Service) ClearArtifacts() (int64, error) {
	var n int64
	err := s.write(func(tx *sql.Tx) error {
		var err error
		n, err = store.ClearArtifacts(tx)
		return err
	})
	return n, err
}
