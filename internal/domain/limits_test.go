package domain

import (
	"strings"
	"testing"
)

func TestValidateAgentID(t *testing.T) {
	if err := ValidateAgentID("claude-backend"); err != nil {
		t.Fatalf("valid id: %v", err)
	}
	if err := ValidateAgentID(""); err == nil {
		t.Error("empty id: expected error")
	}
	if err := ValidateAgentID(strings.Repeat("a", MaxAgentIDLen+1)); err == nil {
		t.Error("over-long id: expected error")
	}
	if err := ValidateAgentID("agent\n"); err == nil {
		t.Error("control char: expected error")
	}
}

func TestValidateProgress(t *testing.T) {
	for _, p := range []int{0, 50, 100} {
		if err := ValidateProgress(p); err != nil {
			t.Errorf("progress %d: %v", p, err)
		}
	}
	for _, p := range []int{-1, 101} {
		if err := ValidateProgress(p); err == nil {
			t.Errorf("progress %d: expected error", p)
		}
	}
}

func TestValidateMessageContent(t *testing.T) {
	if err := ValidateMessageContent("hello"); err != nil {
		t.Fatalf("valid content: %v", err)
	}
	if err := ValidateMessageContent(""); err == nil {
		t.Error("empty content: expected error")
	}
	if err := ValidateMessageContent(strings.Repeat("x", MaxMessageContentLen+1)); err == nil {
		t.Error("over-long content: expected error")
	}
}

func TestValidateTags(t *testing.T) {
	if err := ValidateTags([]string{"auth", "blocker"}); err != nil {
		t.Fatalf("valid tags: %v", err)
	}
	if err := ValidateTags(make([]string, MaxTagsPerMessage+1)); err == nil {
		t.Error("too many tags: expected error")
	}
	if err := ValidateTags([]string{"has space"}); err == nil {
		t.Error("tag with space: expected error")
	}
	if err := ValidateTags([]string{""}); err == nil {
		t.Error("empty tag: expected error")
	}
	if err := ValidateTags([]string{strings.Repeat("t", MaxTagLen+1)}); err == nil {
		t.Error("over-long tag: expected error")
	}
}

func TestValidateRefs(t *testing.T) {
	refs, err := ValidateRefs([]Reference{{Where: "tt", What: "task", Ref: float64(7)}})
	if err != nil {
		t.Fatalf("valid refs: %v", err)
	}
	if v, ok := refs[0].Ref.(int64); !ok || v != 7 {
		t.Errorf("ref not normalized: %v (%T)", refs[0].Ref, refs[0].Ref)
	}

	tooMany := make([]Reference, MaxRefsPerEntity+1)
	for i := range tooMany {
		tooMany[i] = Reference{Where: "a", What: "b", Ref: "c"}
	}
	if _, err := ValidateRefs(tooMany); err == nil {
		t.Error("too many refs: expected error")
	}
}

func TestValidateArtifactPath(t *testing.T) {
	root := t.TempDir()

	if err := ValidateArtifactPath("src/auth/login.ts", root); err != nil {
		t.Fatalf("valid path: %v", err)
	}
	if err := ValidateArtifactPath("", root); err == nil {
		t.Error("empty path: expected error")
	}
	if err := ValidateArtifactPath("/etc/passwd", root); !IsKind(err, KindPathTraversal) {
		t.Errorf("absolute path: kind = %v, want PathTraversal", KindOf(err))
	}
	if err := ValidateArtifactPath("../../etc/passwd", root); !IsKind(err, KindPathTraversal) {
		t.Errorf("traversal path: kind = %v, want PathTraversal", KindOf(err))
	}
	if err := ValidateArtifactPath("src/../../../x", root); !IsKind(err, KindPathTraversal) {
		t.Errorf("embedded traversal: kind = %v, want PathTraversal", KindOf(err))
	}
}
