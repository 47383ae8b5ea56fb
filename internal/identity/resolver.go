// Package identity resolves which agent id a server-process write is
// attributed to. The resolver is constructed once at process start and
// passed into every server tool by reference; it is never ambient state.
package identity

import (
	"sync"

	"github.com/jaakkos/blackboard/internal/domain"
)

// Source names where a resolved identity came from.
const (
	SourceFlag     = "flag"
	SourceEnv      = "env"
	SourceIdentify = "identify"
)

// Resolver holds at most one resolved agent id for the process lifetime.
// Precedence: fixed value from process start, then the environment default,
// then a one-time handshake. The mutex guards concurrent tool calls from
// the server host.
type Resolver struct {
	mu       sync.Mutex
	fixed    string // --agent at process start; locks out the handshake
	env      string // BB_AGENT_ID default
	resolved string // set once by Identify
}

// New creates a Resolver with the process-start fixed value and the
// environment default, either of which may be empty.
func New(fixed, env string) *Resolver {
	return &Resolver{fixed: fixed, env: env}
}

// Resolve returns the current identity and whether one is set.
func (r *Resolver) Resolve() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.current()
	return id, id != ""
}

func (r *Resolver) current() string {
	switch {
	case r.fixed != "":
		return r.fixed
	case r.env != "":
		return r.env
	default:
		return r.resolved
	}
}

// Result reports the outcome of a handshake.
type Result struct {
	AgentID string `json:"agent_id"`
	Source  string `json:"source"`
}

// Identify performs the one-time handshake. A fixed identity rejects every
// handshake; an environment default accepts only its own value as a no-op;
// otherwise the first call wins and later calls must match it.
func (r *Resolver) Identify(agentID string) (Result, error) {
	if err := domain.ValidateAgentID(agentID); err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fixed != "" {
		return Result{}, domain.Invalidf("identity already fixed by --agent")
	}
	if r.env != "" {
		if r.env != agentID {
			return Result{}, domain.Invalidf("cannot change identity set by BB_AGENT_ID")
		}
		return Result{AgentID: agentID, Source: SourceEnv}, nil
	}
	if r.resolved != "" {
		if r.resolved != agentID {
			return Result{}, domain.Invalidf("identity already set to a different value")
		}
		return Result{AgentID: agentID, Source: SourceIdentify}, nil
	}

	r.resolved = agentID
	return Result{AgentID: agentID, Source: SourceIdentify}, nil
}

// Require returns the resolved identity or IdentityRequired. Every write
// operation on the server path goes through this.
func (r *Resolver) Require() (string, error) {
	id, ok := r.Resolve()
	if !ok {
		return "", domain.IdentityRequiredErr()
	}
	return id, nil
}
