package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultAgent != "human" {
		t.Errorf("default agent = %q, want human", cfg.DefaultAgent)
	}
	if cfg.MessageRetentionDays != 0 {
		t.Errorf("retention = %d, want 0", cfg.MessageRetentionDays)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, BlackboardDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	yml := "default_agent: reviewer\nlog_file: none\nmessage_retention_days: 14\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultAgent != "reviewer" || cfg.LogFile != "none" || cfg.MessageRetentionDays != 14 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, BlackboardDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(root); err == nil {
		t.Error("malformed config: expected error")
	}
}
