package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jaakkos/blackboard/internal/domain"
	"github.com/jaakkos/blackboard/internal/store"
)

// newTestService opens a fresh blackboard under a temp dir with a
// controllable clock.
func newTestService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	root := t.TempDir()
	st, err := store.Open(filepath.Join(root, ".bb", "blackboard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := New(st, root)
	t.Cleanup(func() { svc.Close() })

	now := time.Now()
	svc.now = func() time.Time { return now }
	return svc, &now
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func statusPtr(s domain.AgentStatus) *domain.AgentStatus { return &s }

func TestSetStatusPartialUpdate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetStatus("alice", StatusUpdate{
		CurrentTask: strPtr("auth refactor"),
		Progress:    intPtr(40),
		Status:      statusPtr(domain.StatusCoding),
	})
	if err != nil {
		t.Fatal(err)
	}

	// Updating only progress leaves the rest untouched.
	agent, err := svc.SetStatus("alice", StatusUpdate{Progress: intPtr(60)})
	if err != nil {
		t.Fatal(err)
	}
	if agent.CurrentTask != "auth refactor" || agent.Status != domain.StatusCoding || agent.Progress != 60 {
		t.Errorf("partial update clobbered fields: %+v", agent)
	}
}

func TestSetStatusClearsBlockersUnlessBlocked(t *testing.T) {
	svc, _ := newTestService(t)

	agent, err := svc.SetStatus("alice", StatusUpdate{
		Status:   statusPtr(domain.StatusBlocked),
		Blockers: strPtr("waiting on schema"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if agent.Blockers != "waiting on schema" {
		t.Fatalf("blockers not stored: %+v", agent)
	}

	agent, err = svc.SetStatus("alice", StatusUpdate{Status: statusPtr(domain.StatusCoding)})
	if err != nil {
		t.Fatal(err)
	}
	if agent.Blockers != "" {
		t.Errorf("blockers survived unblocking: %q", agent.Blockers)
	}

	// Blockers passed without blocked status are dropped too.
	agent, err = svc.SetStatus("bob", StatusUpdate{Blockers: strPtr("x")})
	if err != nil {
		t.Fatal(err)
	}
	if agent.Blockers != "" {
		t.Errorf("blockers kept for non-blocked agent: %q", agent.Blockers)
	}
}

func TestSetStatusValidation(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.SetStatus("", StatusUpdate{}); !domain.IsKind(err, domain.KindInvalidInput) {
		t.Errorf("empty id kind = %v", domain.KindOf(err))
	}
	if _, err := svc.SetStatus("alice", StatusUpdate{Progress: intPtr(150)}); err == nil {
		t.Error("progress 150: expected error")
	}
}

func TestGetStatusNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetStatus("ghost")
	if !domain.IsNotFound(err) {
		t.Errorf("kind = %v, want NotFound", domain.KindOf(err))
	}
}

func TestListWithLivenessDemotesStale(t *testing.T) {
	svc, now := newTestService(t)

	if _, err := svc.SetStatus("old", StatusUpdate{Status: statusPtr(domain.StatusCoding)}); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(10 * time.Minute)
	if _, err := svc.SetStatus("recent", StatusUpdate{Status: statusPtr(domain.StatusTesting)}); err != nil {
		t.Fatal(err)
	}

	// 40 minutes after "old" last reported: it crosses the stale window.
	*now = now.Add(30 * time.Minute)
	agents, err := svc.ListWithLiveness()
	if err != nil {
		t.Fatal(err)
	}

	byID := map[string]domain.AgentWithLiveness{}
	for _, a := range agents {
		byID[a.ID] = a
	}
	if got := byID["old"]; got.Status != domain.StatusOffline || got.Liveness != domain.LivenessOffline {
		t.Errorf("old agent = status %v liveness %v, want offline/offline", got.Status, got.Liveness)
	}
	if got := byID["recent"]; got.Status != domain.StatusTesting || got.Liveness != domain.LivenessStale {
		t.Errorf("recent agent = status %v liveness %v, want testing/stale", got.Status, got.Liveness)
	}

	// The demotion is persisted, not just presentation.
	demoted, err := svc.GetStatus("old")
	if err != nil {
		t.Fatal(err)
	}
	if demoted.Status != domain.StatusOffline {
		t.Errorf("demotion not persisted: %v", demoted.Status)
	}
}

func TestResetStatus(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.SetStatus("alice", StatusUpdate{
		CurrentTask: strPtr("x"), Progress: intPtr(80),
		Status: statusPtr(domain.StatusBlocked), Blockers: strPtr("y"),
	}); err != nil {
		t.Fatal(err)
	}

	agent, err := svc.ResetStatus("alice")
	if err != nil {
		t.Fatal(err)
	}
	if agent.Status != domain.StatusIdle || agent.CurrentTask != "" || agent.Progress != 0 || agent.Blockers != "" {
		t.Errorf("reset incomplete: %+v", agent)
	}

	// Resetting an unknown agent creates it.
	if _, err := svc.ResetStatus("brand-new"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetStatus("brand-new"); err != nil {
		t.Errorf("agent not created by reset: %v", err)
	}
}

func TestPostMessageAssignsIncreasingIDsAndTouchesSender(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.PostMessage(PostMessageParams{FromAgent: "alice", Content: "one"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.PostMessage(PostMessageParams{FromAgent: "alice", Content: "two"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID <= first.ID {
		t.Errorf("ids not increasing: %d then %d", first.ID, second.ID)
	}
	if first.Priority != domain.PriorityNormal {
		t.Errorf("default priority = %v", first.Priority)
	}

	// Posting creates/refreshes the sender's agent row.
	if _, err := svc.GetStatus("alice"); err != nil {
		t.Errorf("sender not touched: %v", err)
	}
}

func TestPostMessageReplyToMissingInsertsNothing(t *testing.T) {
	svc, _ := newTestService(t)

	missing := int64(999)
	_, err := svc.PostMessage(PostMessageParams{FromAgent: "alice", Content: "orphan", InReplyTo: &missing})
	if !domain.IsNotFound(err) {
		t.Fatalf("kind = %v, want NotFound", domain.KindOf(err))
	}

	msgs, err := svc.ListMessages(domain.MessageFilter{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("failed reply left %d messages behind", len(msgs))
	}
}

func TestGetThreadSingleLevel(t *testing.T) {
	svc, now := newTestService(t)

	root, err := svc.PostMessage(PostMessageParams{FromAgent: "alice", Content: "root"})
	if err != nil {
		t.Fatal(err)
	}
	*now = now.Add(time.Minute)
	reply, err := svc.PostMessage(PostMessageParams{FromAgent: "bob", Content: "reply", InReplyTo: &root.ID})
	if err != nil {
		t.Fatal(err)
	}
	*now = now.Add(time.Minute)
	if _, err := svc.PostMessage(PostMessageParams{FromAgent: "carol", Content: "nested", InReplyTo: &reply.ID}); err != nil {
		t.Fatal(err)
	}

	thread, err := svc.GetThread(root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(thread) != 2 {
		t.Fatalf("thread length = %d, want 2 (root + direct reply only)", len(thread))
	}
	if thread[0].ID != root.ID || thread[1].ID != reply.ID {
		t.Errorf("thread order = %d, %d", thread[0].ID, thread[1].ID)
	}

	if _, err := svc.GetThread(12345); !domain.IsNotFound(err) {
		t.Errorf("missing thread kind = %v", domain.KindOf(err))
	}
}

func TestListMessagesClampsLimit(t *testing.T) {
	svc, now := newTestService(t)

	for i := 0; i < 25; i++ {
		*now = now.Add(time.Second)
		if _, err := svc.PostMessage(PostMessageParams{FromAgent: "alice", Content: "m"}); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := svc.ListMessages(domain.MessageFilter{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != DefaultMessageListLimit {
		t.Errorf("default limit = %d messages, want %d", len(msgs), DefaultMessageListLimit)
	}

	msgs, err = svc.ListMessages(domain.MessageFilter{}, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 25 {
		t.Errorf("oversized limit = %d messages, want all 25", len(msgs))
	}
}

func TestRegisterArtifactUpsertLastWriterWins(t *testing.T) {
	svc, now := newTestService(t)

	if _, err := svc.RegisterArtifact(RegisterArtifactParams{
		Path: "src/api.ts", ProducedBy: "alice", Description: "first", Version: "1",
	}); err != nil {
		t.Fatal(err)
	}

	*now = now.Add(time.Minute)
	second, err := svc.RegisterArtifact(RegisterArtifactParams{
		Path: "src/api.ts", ProducedBy: "bob", Description: "second",
		Refs: []domain.Reference{{Where: "tt", What: "task", Ref: float64(9)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.ProducedBy != "bob" || second.Description != "second" || second.Version != "" {
		t.Errorf("upsert incomplete: %+v", second)
	}

	got, err := svc.GetArtifact("src/api.ts")
	if err != nil {
		t.Fatal(err)
	}
	if got.ProducedBy != "bob" {
		t.Errorf("stored producer = %q", got.ProducedBy)
	}

	all, err := svc.ListArtifacts(domain.ArtifactFilter{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("%d rows for one path", len(all))
	}
}

func TestRegisterArtifactRejectsTraversal(t *testing.T) {
	svc, _ := newTestService(t)

	for _, path := range []string{"../../etc/passwd", "/etc/passwd", "a/../../b"} {
		_, err := svc.RegisterArtifact(RegisterArtifactParams{
			Path: path, ProducedBy: "alice", Description: "nope",
		})
		if !domain.IsKind(err, domain.KindPathTraversal) {
			t.Errorf("path %q kind = %v, want PathTraversal", path, domain.KindOf(err))
		}
	}
}

func TestGetArtifactNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetArtifact("nope.ts")
	if !domain.IsNotFound(err) {
		t.Errorf("kind = %v, want NotFound", domain.KindOf(err))
	}
}

func TestFindRefsAcrossEntities(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.PostMessage(PostMessageParams{
		FromAgent: "alice", Content: "working on task 13",
		Refs: []domain.Reference{{Where: "tt", What: "task", Ref: int64(13)}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RegisterArtifact(RegisterArtifactParams{
		Path: "src/auth.ts", ProducedBy: "bob", Description: "auth module",
		Refs: []domain.Reference{{Where: "tt", What: "task", Ref: "13"}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PostMessage(PostMessageParams{FromAgent: "carol", Content: "unrelated"}); err != nil {
		t.Fatal(err)
	}

	// The message stored 13 as a number, the artifact as a string; both match.
	results, err := svc.FindRefs("tt", "task", "13")
	if err != nil {
		t.Fatal(err)
	}
	if len(results.Messages) != 1 || len(results.Artifacts) != 1 {
		t.Errorf("found %d messages, %d artifacts; want 1 and 1", len(results.Messages), len(results.Artifacts))
	}

	if _, err := svc.FindRefs("tt", "", "13"); err == nil {
		t.Error("empty what: expected error")
	}
}

func TestSummary(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.SetStatus("alice", StatusUpdate{
		Status: statusPtr(domain.StatusBlocked), Blockers: strPtr("schema"),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PostMessage(PostMessageParams{FromAgent: "alice", Content: "stuck", Priority: domain.PriorityCritical}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PostMessage(PostMessageParams{FromAgent: "bob", Content: "minor", Priority: domain.PriorityLow}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RegisterArtifact(RegisterArtifactParams{Path: "a.ts", ProducedBy: "bob", Description: "d"}); err != nil {
		t.Fatal(err)
	}

	s, err := svc.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if len(s.BlockedAgents) != 1 || s.BlockedAgents[0].ID != "alice" {
		t.Errorf("blocked agents = %+v", s.BlockedAgents)
	}
	if len(s.HighPriorityMessages) != 1 || s.HighPriorityMessages[0].Content != "stuck" {
		t.Errorf("high priority = %+v", s.HighPriorityMessages)
	}
	if len(s.RecentMessages) != 2 || len(s.RecentArtifacts) != 1 {
		t.Errorf("recent = %d messages, %d artifacts", len(s.RecentMessages), len(s.RecentArtifacts))
	}
}

func TestExport(t *testing.T) {
	svc, now := newTestService(t)

	if _, err := svc.PostMessage(PostMessageParams{FromAgent: "alice", Content: "one"}); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(time.Second)
	if _, err := svc.PostMessage(PostMessageParams{FromAgent: "alice", Content: "two"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RegisterArtifact(RegisterArtifactParams{Path: "a.ts", ProducedBy: "alice", Description: "d"}); err != nil {
		t.Fatal(err)
	}

	data, err := svc.Export()
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Agents) != 1 || len(data.Messages) != 2 || len(data.Artifacts) != 1 {
		t.Errorf("export = %d agents, %d messages, %d artifacts", len(data.Agents), len(data.Messages), len(data.Artifacts))
	}
	if data.Messages[0].ID > data.Messages[1].ID {
		t.Error("export messages not oldest first")
	}
}

func TestDeleteMessagesBeforeAndClear(t *testing.T) {
	svc, now := newTestService(t)

	if _, err := svc.PostMessage(PostMessageParams{FromAgent: "a", Content: "old"}); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(48 * time.Hour)
	if _, err := svc.PostMessage(PostMessageParams{FromAgent: "a", Content: "new"}); err != nil {
		t.Fatal(err)
	}

	n, err := svc.DeleteMessagesBefore(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}

	if _, err := svc.RegisterArtifact(RegisterArtifactParams{Path: "a.ts", ProducedBy: "a", Description: "d"}); err != nil {
		t.Fatal(err)
	}
	n, err = svc.ClearArtifacts()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("cleared %d artifacts, want 1", n)
	}
}

func TestRetryOnBusyOnly(t *testing.T) {
	attempts := 0
	err := Retry(func() error {
		attempts++
		if attempts < 3 {
			return domain.BusyErr(nil)
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Errorf("err = %v, attempts = %d", err, attempts)
	}

	attempts = 0
	err = Retry(func() error {
		attempts++
		return domain.Invalidf("bad input")
	})
	if err == nil || attempts != 1 {
		t.Errorf("non-busy error retried: attempts = %d", attempts)
	}

	attempts = 0
	err = Retry(func() error {
		attempts++
		return domain.BusyErr(nil)
	})
	if !domain.IsBusy(err) || attempts != 3 {
		t.Errorf("exhausted retry: err = %v, attempts = %d", err, attempts)
	}
}
