package domain

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Field limits enforced at every write boundary.
const (
	MaxAgentIDLen        = 64
	MaxTaskLen           = 256
	MaxBlockersLen       = 1024
	MaxMessageContentLen = 65536
	MaxArtifactPathLen   = 4096
	MaxArtifactDescLen   = 1024
	MaxVersionLen        = 64
	MaxTagLen            = 32
	MaxTagsPerMessage    = 10
	MaxRefsPerEntity     = 20
)

// ValidateAgentID rejects empty, over-long, or control-character ids.
func ValidateAgentID(id string) error {
	if id == "" {
		return Invalidf("agent ID cannot be empty")
	}
	if len(id) > MaxAgentIDLen {
		return Invalidf("agent ID too long (max %d chars)", MaxAgentIDLen)
	}
	for _, c := range id {
		if unicode.IsControl(c) {
			return Invalidf("agent ID contains control characters")
		}
	}
	return nil
}

// ValidateTask checks the current_task length limit.
func ValidateTask(task string) error {
	if len(task) > MaxTaskLen {
		return Invalidf("task too long (max %d chars)", MaxTaskLen)
	}
	return nil
}

// ValidateProgress checks the 0-100 range.
func ValidateProgress(p int) error {
	if p < 0 || p > 100 {
		return Invalidf("progress must be between 0 and 100, got %d", p)
	}
	return nil
}

// ValidateBlockers checks the blockers length limit.
func ValidateBlockers(blockers string) error {
	if len(blockers) > MaxBlockersLen {
		return Invalidf("blockers too long (max %d chars)", MaxBlockersLen)
	}
	return nil
}

// ValidateMessageContent rejects empty or over-long content.
func ValidateMessageContent(content string) error {
	if content == "" {
		return Invalidf("message content cannot be empty")
	}
	if len(content) > MaxMessageContentLen {
		return Invalidf("message content too long (max %d bytes)", MaxMessageContentLen)
	}
	return nil
}

// ValidateTags checks count, length, and character constraints.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagsPerMessage {
		return Invalidf("too many tags (max %d)", MaxTagsPerMessage)
	}
	for _, tag := range tags {
		if tag == "" {
			return Invalidf("tag cannot be empty")
		}
		if len(tag) > MaxTagLen {
			return Invalidf("tag too long (max %d chars): %s", MaxTagLen, tag)
		}
		for _, c := range tag {
			if unicode.IsControl(c) || unicode.IsSpace(c) {
				return Invalidf("tag contains invalid characters: %s", tag)
			}
		}
	}
	return nil
}

// ValidateRefs checks the count limit and normalizes each reference.
func ValidateRefs(refs []Reference) ([]Reference, error) {
	if len(refs) > MaxRefsPerEntity {
		return nil, Invalidf("too many refs (max %d)", MaxRefsPerEntity)
	}
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		n, err := NormalizeRef(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ValidateArtifactPath enforces path safety: relative, no traversal, and
// the cleaned path must stay inside the project root. The file itself is
// not required to exist.
func ValidateArtifactPath(path, projectRoot string) error {
	if path == "" {
		return Invalidf("artifact path cannot be empty")
	}
	if len(path) > MaxArtifactPathLen {
		return Invalidf("artifact path too long (max %d chars)", MaxArtifactPathLen)
	}
	if filepath.IsAbs(path) {
		return TraversalErr("absolute path not allowed")
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return TraversalErr("path traversal not allowed")
		}
	}
	rootAbs, err := filepath.Abs(projectRoot)
	if err != nil {
		return Invalidf("invalid project directory")
	}
	full := filepath.Clean(filepath.Join(rootAbs, path))
	if full != rootAbs && !strings.HasPrefix(full, rootAbs+string(filepath.Separator)) {
		return TraversalErr("path escapes project directory")
	}
	return nil
}

// ValidateArtifactDescription checks the description length limit.
func ValidateArtifactDescription(desc string) error {
	if len(desc) > MaxArtifactDescLen {
		return Invalidf("artifact description too long (max %d chars)", MaxArtifactDescLen)
	}
	return nil
}

// ValidateVersion checks the version length limit.
func ValidateVersion(version string) error {
	if len(version) > MaxVersionLen {
		return Invalidf("version too long (max %d chars)", MaxVersionLen)
	}
	return nil
}
