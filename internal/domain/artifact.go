package domain

import "time"

// Artifact is a path-keyed file-provenance record. Registering an existing
// path overwrites every mutable field and bumps CreatedAt; it is never a
// second row.
type Artifact struct {
	ID          int64       `json:"id"`
	Path        string      `json:"path"`
	ProducedBy  string      `json:"produced_by"`
	Description string      `json:"description"`
	Version     string      `json:"version,omitempty"`
	Refs        []Reference `json:"refs"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ArtifactFilter narrows ListArtifacts.
type ArtifactFilter struct {
	ProducedBy string
	Ref        *Reference
}
