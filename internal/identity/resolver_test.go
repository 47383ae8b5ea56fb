package identity

import (
	"testing"

	"github.com/jaakkos/blackboard/internal/domain"
)

func TestResolvePrecedence(t *testing.T) {
	r := New("fixed-agent", "env-agent")
	id, ok := r.Resolve()
	if !ok || id != "fixed-agent" {
		t.Errorf("Resolve = %q, %v; want fixed-agent", id, ok)
	}

	r = New("", "env-agent")
	id, ok = r.Resolve()
	if !ok || id != "env-agent" {
		t.Errorf("Resolve = %q, %v; want env-agent", id, ok)
	}

	r = New("", "")
	if _, ok := r.Resolve(); ok {
		t.Error("unresolved resolver reported an identity")
	}
}

func TestIdentifyFirstCallWins(t *testing.T) {
	r := New("", "")

	res, err := r.Identify("claude-backend")
	if err != nil {
		t.Fatalf("first identify: %v", err)
	}
	if res.AgentID != "claude-backend" || res.Source != SourceIdentify {
		t.Errorf("result = %+v", res)
	}

	// Same id again is a no-op.
	if _, err := r.Identify("claude-backend"); err != nil {
		t.Errorf("repeat identify: %v", err)
	}

	// A different id is rejected and the identity is unchanged.
	if _, err := r.Identify("other"); err == nil {
		t.Error("conflicting identify: expected error")
	}
	if id, _ := r.Resolve(); id != "claude-backend" {
		t.Errorf("identity changed to %q", id)
	}
}

func TestIdentifyAgainstFixedIdentity(t *testing.T) {
	r := New("fixed-agent", "")
	if _, err := r.Identify("fixed-agent"); err == nil {
		t.Error("identify with fixed identity: expected error even for the same id")
	}
	if _, err := r.Identify("other"); err == nil {
		t.Error("identify with fixed identity: expected error")
	}
}

func TestIdentifyAgainstEnvIdentity(t *testing.T) {
	r := New("", "env-agent")

	// Matching the env value is accepted as a no-op.
	res, err := r.Identify("env-agent")
	if err != nil {
		t.Fatalf("matching identify: %v", err)
	}
	if res.Source != SourceEnv {
		t.Errorf("source = %q, want env", res.Source)
	}

	if _, err := r.Identify("other"); err == nil {
		t.Error("conflicting identify against env: expected error")
	}
}

func TestRequire(t *testing.T) {
	r := New("", "")
	_, err := r.Require()
	if !domain.IsKind(err, domain.KindIdentityRequired) {
		t.Errorf("kind = %v, want IdentityRequired", domain.KindOf(err))
	}

	if _, err := r.Identify("a"); err != nil {
		t.Fatal(err)
	}
	id, err := r.Require()
	if err != nil || id != "a" {
		t.Errorf("Require = %q, %v", id, err)
	}
}

func TestIdentifyValidatesID(t *testing.T) {
	r := New("", "")
	if _, err := r.Identify(""); err == nil {
		t.Error("empty id: expected error")
	}
}
