package domain

import (
	"testing"
	"time"
)

func TestClassifyLiveness(t *testing.T) {
	now := time.Now()

	tests := []struct {
		age  time.Duration
		want Liveness
	}{
		{0, LivenessActive},
		{4 * time.Minute, LivenessActive},
		{5 * time.Minute, LivenessActive},
		{6 * time.Minute, LivenessStale},
		{30 * time.Minute, LivenessStale},
		{31 * time.Minute, LivenessOffline},
		{24 * time.Hour, LivenessOffline},
	}
	for _, tt := range tests {
		got := ClassifyLiveness(now.Add(-tt.age), now)
		if got != tt.want {
			t.Errorf("ClassifyLiveness(age=%v) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestParseAgentStatus(t *testing.T) {
	for _, s := range []string{"idle", "planning", "coding", "testing", "reviewing", "blocked", "offline"} {
		if _, err := ParseAgentStatus(s); err != nil {
			t.Errorf("ParseAgentStatus(%q): %v", s, err)
		}
	}
	if _, err := ParseAgentStatus("sleeping"); err == nil {
		t.Error("unknown status: expected error")
	}
}

func TestNewAgent(t *testing.T) {
	now := time.Now()
	a := NewAgent("claude-backend", now)
	if a.Status != StatusIdle {
		t.Errorf("status = %v, want idle", a.Status)
	}
	if a.CurrentTask != "" || a.Progress != 0 || a.Blockers != "" {
		t.Errorf("fresh agent not zeroed: %+v", a)
	}
	if !a.LastSeen.Equal(now) || !a.UpdatedAt.Equal(now) {
		t.Error("timestamps not set")
	}
}
