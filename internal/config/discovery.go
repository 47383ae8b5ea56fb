package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaakkos/blackboard/internal/domain"
)

// FindProjectDir resolves the project root: an explicit dir argument wins,
// then the BB_DIR environment override, then an upward walk from the
// working directory looking for a .bb directory. When nothing is found the
// working directory itself is returned, so 'bb init' works anywhere.
func FindProjectDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvProjectDir); env != "" {
		return env, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	if found := walkUp(cwd); found != "" {
		return found, nil
	}
	return cwd, nil
}

// walkUp returns the first ancestor (including start) containing a .bb
// directory, or "".
func walkUp(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, BlackboardDirName)); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// IsInitialized reports whether projectDir has a blackboard database.
func IsInitialized(projectDir string) bool {
	info, err := os.Stat(DatabasePath(projectDir))
	return err == nil && info.Mode().IsRegular()
}

// EnsureInitialized fails with NotInitialized when no database exists.
func EnsureInitialized(projectDir string) error {
	if !IsInitialized(projectDir) {
		return domain.NotInitializedErr()
	}
	return nil
}

// InitDir creates the .bb directory, reporting whether it already existed.
func InitDir(projectDir string) (created bool, err error) {
	dir := filepath.Join(projectDir, BlackboardDirName)
	if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", dir, err)
	}
	return true, nil
}

// Destroy removes the entire .bb directory.
func Destroy(projectDir string) error {
	dir := filepath.Join(projectDir, BlackboardDirName)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return domain.NotInitializedErr()
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	return nil
}
