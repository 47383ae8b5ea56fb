package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaakkos/blackboard/internal/config"
)

// runCmd executes the CLI with args against a fresh command tree, returning
// captured stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := runCmd(t, "init", "--dir", dir, "-q"); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir
}

func TestInitCreatesDatabase(t *testing.T) {
	dir := initProject(t)
	if _, err := os.Stat(filepath.Join(dir, ".bb", "blackboard.db")); err != nil {
		t.Fatalf("database missing: %v", err)
	}

	// Re-running init is harmless.
	if _, err := runCmd(t, "init", "--dir", dir, "-q"); err != nil {
		t.Fatalf("second init: %v", err)
	}
}

func TestCommandsRequireInit(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCmd(t, "log", "--dir", dir); err == nil {
		t.Fatal("log before init: expected error")
	}
}

func TestPostAndLogRoundtrip(t *testing.T) {
	dir := initProject(t)

	out, err := runCmd(t, "post", "auth module done", "--dir", dir, "--as", "alice",
		"--tag", "auth", "--ref", "tt:task:13", "--json", "-q")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var posted struct {
		ID        int64  `json:"id"`
		FromAgent string `json:"from_agent"`
	}
	if err := json.Unmarshal([]byte(out), &posted); err != nil {
		t.Fatalf("parse post output: %v\n%s", err, out)
	}
	if posted.FromAgent != "alice" || posted.ID == 0 {
		t.Errorf("posted = %+v", posted)
	}

	out, err = runCmd(t, "log", "--dir", dir, "--tag", "auth", "--json")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	var messages []struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(out), &messages); err != nil {
		t.Fatalf("parse log output: %v\n%s", err, out)
	}
	if len(messages) != 1 || messages[0].Content != "auth module done" {
		t.Errorf("log = %+v", messages)
	}

	// The ref lookup sees the message.
	out, err = runCmd(t, "refs", "tt:task:13", "--dir", dir, "--json")
	if err != nil {
		t.Fatalf("refs: %v", err)
	}
	var results struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatal(err)
	}
	if len(results.Messages) != 1 {
		t.Errorf("refs found %d messages", len(results.Messages))
	}
}

func TestStatusSetAndGet(t *testing.T) {
	dir := initProject(t)

	if _, err := runCmd(t, "status", "set", "--dir", dir, "--as", "alice",
		"--task", "parser", "--status", "coding", "--progress", "40", "--json", "-q"); err != nil {
		t.Fatalf("status set: %v", err)
	}

	out, err := runCmd(t, "status", "get", "alice", "--dir", dir, "--json")
	if err != nil {
		t.Fatalf("status get: %v", err)
	}
	var agent struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
		Liveness string `json:"liveness"`
	}
	if err := json.Unmarshal([]byte(out), &agent); err != nil {
		t.Fatal(err)
	}
	if agent.Status != "coding" || agent.Progress != 40 || agent.Liveness != "active" {
		t.Errorf("agent = %+v", agent)
	}

	if _, err := runCmd(t, "status", "get", "ghost", "--dir", dir, "--json"); err == nil {
		t.Error("unknown agent: expected error")
	}
}

func TestArtifactAddAndShow(t *testing.T) {
	dir := initProject(t)

	if _, err := runCmd(t, "artifact", "add", "src/api.ts", "--dir", dir, "--as", "bob",
		"--desc", "api surface", "--version", "v1", "--json", "-q"); err != nil {
		t.Fatalf("artifact add: %v", err)
	}

	out, err := runCmd(t, "artifact", "show", "src/api.ts", "--dir", dir, "--json")
	if err != nil {
		t.Fatalf("artifact show: %v", err)
	}
	var artifact struct {
		ProducedBy string `json:"produced_by"`
		Version    string `json:"version"`
	}
	if err := json.Unmarshal([]byte(out), &artifact); err != nil {
		t.Fatal(err)
	}
	if artifact.ProducedBy != "bob" || artifact.Version != "v1" {
		t.Errorf("artifact = %+v", artifact)
	}

	if _, err := runCmd(t, "artifact", "add", "../outside", "--dir", dir,
		"--desc", "nope", "-q"); err == nil {
		t.Error("traversal path: expected error")
	}
}

func TestClearAndDestroyRequireConfirm(t *testing.T) {
	dir := initProject(t)

	if _, err := runCmd(t, "clear", "--messages-before", "1d", "--dir", dir); err == nil {
		t.Error("clear without --confirm: expected error")
	}
	if _, err := runCmd(t, "destroy", "--dir", dir); err == nil {
		t.Error("destroy without --confirm: expected error")
	}

	if _, err := runCmd(t, "destroy", "--dir", dir, "--confirm", "-q"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".bb")); !os.IsNotExist(err) {
		t.Error(".bb survived destroy")
	}
}

func TestExportIncludesEverything(t *testing.T) {
	dir := initProject(t)

	if _, err := runCmd(t, "post", "hello", "--dir", dir, "--as", "alice", "-q"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, "artifact", "add", "a.ts", "--dir", dir, "--as", "alice",
		"--desc", "d", "-q"); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "export", "--dir", dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var data struct {
		Agents    []json.RawMessage `json:"agents"`
		Messages  []json.RawMessage `json:"messages"`
		Artifacts []json.RawMessage `json:"artifacts"`
	}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("parse export: %v\n%s", err, out)
	}
	if len(data.Agents) != 1 || len(data.Messages) != 1 || len(data.Artifacts) != 1 {
		t.Errorf("export = %d agents, %d messages, %d artifacts",
			len(data.Agents), len(data.Messages), len(data.Artifacts))
	}
}

func TestDefaultIdentityFallsBackToHuman(t *testing.T) {
	t.Setenv(config.EnvAgentID, "")
	dir := initProject(t)

	if _, err := runCmd(t, "post", "from a person", "--dir", dir, "--json", "-q"); err != nil {
		t.Fatal(err)
	}
	out, err := runCmd(t, "log", "--dir", dir, "--from", "human", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var messages []json.RawMessage
	if err := json.Unmarshal([]byte(out), &messages); err != nil {
		t.Fatal(err)
	}
	if len(messages) != 1 {
		t.Errorf("messages from 'human' = %d", len(messages))
	}
}
