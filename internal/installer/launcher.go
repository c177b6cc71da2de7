package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// CreateSymlink creates (or replaces) a symbolic link at linkPath pointing
// at target.
func CreateSymlink(target, linkPath string) error {
	if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
		return fmt.Errorf("creating launcher directory: %w", err)
	}
	if err := os.Remove(linkPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing existing launcher %s: %w", linkPath, err)
	}
	if err := os.Symlink(target, linkPath); err != nil {
		return fmt.Errorf("creating symlink %s: %w", linkPath, err)
	}
	return nil
}

// CreateShim writes (or replaces) a forwarding cmd script at shimPath that
// runs target with all arguments.
func CreateShim(target, shimPath, name string) error {
	if err := os.MkdirAll(filepath.Dir(shimPath), 0755); err != nil {
		return fmt.Errorf("creating launcher directory: %w", err)
	}
	script := fmt.Sprintf("@echo off\r\nrem %s shim generated by binget\r\n\"%s\" %%*\r\n", name, target)
	if err := os.WriteFile(shimPath, []byte(script), 0755); err != nil {
		return fmt.Errorf("writing shim %s: %w", shimPath, err)
	}
	return nil
}

// CreateLauncher exposes target on the shared bin path: a symlink on
// POSIX-like systems, a cmd shim on Windows. Idempotent either way.
func CreateLauncher(target, launcherPath, name string) error {
	if runtime.GOOS == "windows" {
		return CreateShim(target, launcherPath, name)
	}
	return CreateSymlink(target, launcherPath)
}
