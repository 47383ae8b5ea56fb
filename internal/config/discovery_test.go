package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jaakkos/blackboard/internal/domain"
)

func TestFindProjectDirExplicitWins(t *testing.T) {
	t.Setenv(EnvProjectDir, "/somewhere/else")
	dir, err := FindProjectDir("/explicit")
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/explicit" {
		t.Errorf("dir = %q", dir)
	}
}

func TestFindProjectDirEnvOverride(t *testing.T) {
	t.Setenv(EnvProjectDir, "/from/env")
	dir, err := FindProjectDir("")
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/from/env" {
		t.Errorf("dir = %q", dir)
	}
}

func TestWalkUpFindsBlackboardDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, BlackboardDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "auth")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := walkUp(nested); got != root {
		t.Errorf("walkUp = %q, want %q", got, root)
	}

	empty := t.TempDir()
	if got := walkUp(empty); got != "" {
		t.Errorf("walkUp in uninitialized tree = %q, want empty", got)
	}
}

func TestInitAndDestroy(t *testing.T) {
	root := t.TempDir()

	created, err := InitDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first InitDir should create")
	}

	created, err = InitDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second InitDir should be a no-op")
	}

	if IsInitialized(root) {
		t.Error("no database yet, should not count as initialized")
	}
	if err := EnsureInitialized(root); !domain.IsKind(err, domain.KindNotInitialized) {
		t.Errorf("kind = %v, want NotInitialized", domain.KindOf(err))
	}

	if err := os.WriteFile(DatabasePath(root), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsInitialized(root) {
		t.Error("database present, should be initialized")
	}

	if err := Destroy(root); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, BlackboardDirName)); !os.IsNotExist(err) {
		t.Error(".bb still present after Destroy")
	}
	if err := Destroy(root); !domain.IsKind(err, domain.KindNotInitialized) {
		t.Errorf("second destroy kind = %v, want NotInitialized", domain.KindOf(err))
	}
}
