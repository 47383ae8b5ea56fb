package store

import (
	"database/sql"
	"strings"

	"github.com/jaakkos/blackboard/internal/domain"
)

const artifactColumns = "id, path, produced_by, description, version, refs, created_at"

// UpsertArtifact inserts or wholly overwrites the row keyed by path. The
// upsert is atomic: concurrent registers of the same path produce exactly
// one winner whose values are fully applied.
func UpsertArtifact(tx *sql.Tx, a domain.Artifact) error {
	refs, err := marshalJSON(a.Refs, "artifacts refs")
	if err != nil {
		return err
	}
	var version any
	if a.Version != "" {
		version = a.Version
	}
	_, err = tx.Exec(`INSERT INTO artifacts (path, produced_by, description, version, refs, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			produced_by = excluded.produced_by,
			description = excluded.description,
			version = excluded.version,
			refs = excluded.refs,
			created_at = excluded.created_at`,
		a.Path, a.ProducedBy, a.Description, version, refs, formatTime(a.CreatedAt))
	return err
}

// GetArtifact returns the artifact for path, or (nil, nil) when absent.
func GetArtifact(tx *sql.Tx, path string) (*domain.Artifact, error) {
	row := tx.QueryRow("SELECT "+artifactColumns+" FROM artifacts WHERE path = ?", path)
	a, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListArtifacts applies the filter, newest first.
func ListArtifacts(tx *sql.Tx, f domain.ArtifactFilter, limit int) ([]domain.Artifact, error) {
	var sb strings.Builder
	sb.WriteString("SELECT DISTINCT a.id, a.path, a.produced_by, a.description, a.version, a.refs, a.created_at FROM artifacts a WHERE 1=1")
	var args []any

	if f.ProducedBy != "" {
		sb.WriteString(" AND a.produced_by = ?")
		args = append(args, f.ProducedBy)
	}
	if f.Ref != nil {
		sb.WriteString(refExistsClause("a"))
		args = append(args, f.Ref.Where, f.Ref.What, f.Ref.RefText())
	}

	sb.WriteString(" ORDER BY datetime(a.created_at) DESC, a.id DESC LIMIT ?")
	args = append(args, limit)

	return queryArtifacts(tx, sb.String(), args...)
}

// FindArtifactsByRef returns every artifact embedding the exact triple,
// newest first.
func FindArtifactsByRef(tx *sql.Tx, where, what, ref string) ([]domain.Artifact, error) {
	query := "SELECT " + artifactColumns + " FROM artifacts a WHERE 1=1" + refExistsClause("a") +
		" ORDER BY datetime(a.created_at) DESC, a.id DESC"
	return queryArtifacts(tx, query, where, what, ref)
}

// AllArtifacts returns every artifact ordered by path, for export.
func AllArtifacts(tx *sql.Tx) ([]domain.Artifact, error) {
	return queryArtifacts(tx, "SELECT "+artifactColumns+" FROM artifacts ORDER BY path ASC")
}

// ClearArtifacts removes every artifact row.
func ClearArtifacts(tx *sql.Tx) (int64, error) {
	res, err := tx.Exec("DELETE FROM artifacts")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func queryArtifacts(tx *sql.Tx, query string, args ...any) ([]domain.Artifact, error) {
	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []domain.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

func scanArtifact(row rowScanner) (domain.Artifact, error) {
	var a domain.Artifact
	var version sql.NullString
	var refs, createdAt string
	if err := row.Scan(&a.ID, &a.Path, &a.ProducedBy, &a.Description, &version, &refs, &createdAt); err != nil {
		return domain.Artifact{}, err
	}
	a.Version = version.String
	if err := parseJSON([]byte(refs), &a.Refs, "artifacts refs"); err != nil {
		return domain.Artifact{}, err
	}
	var err error
	if a.CreatedAt, err = parseTime(createdAt, "artifacts created_at"); err != nil {
		return domain.Artifact{}, err
	}
	return a, nil
}
