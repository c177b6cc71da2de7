package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds every location binget reads or writes, derived from a single
// root directory. It is constructed once and threaded through all components
// so tests can point it at a temporary directory.
type Paths struct {
	root string
}

// NewPaths creates a Paths rooted at the given directory.
func NewPaths(root string) Paths {
	return Paths{root: root}
}

// DefaultRoot returns the default root directory.
// Uses BINGET_ROOT if set, otherwise ~/.binget.
func DefaultRoot() (string, error) {
	if override := os.Getenv("BINGET_ROOT"); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, ".binget"), nil
}

// Root returns the root directory.
func (p Paths) Root() string {
	return p.root
}

// SettingsFile returns the settings file path (config.yaml).
func (p Paths) SettingsFile() string {
	return filepath.Join(p.root, "config.yaml")
}

// InstalledFile returns the installed-state manifest path (installed.yaml).
func (p Paths) InstalledFile() string {
	return filepath.Join(p.root, "installed.yaml")
}

// BucketsFile returns the bucket list path (buckets.yaml).
func (p Paths) BucketsFile() string {
	return filepath.Join(p.root, "buckets.yaml")
}

// ManifestCacheFile returns the manifest cache path (manifest-cache.yaml).
func (p Paths) ManifestCacheFile() string {
	return filepath.Join(p.root, "manifest-cache.yaml")
}

// AppsDir returns the directory holding per-package install directories.
func (p Paths) AppsDir() string {
	return filepath.Join(p.root, "apps")
}

// AppDir returns the install directory for a single package.
func (p Paths) AppDir(name string) string {
	return filepath.Join(p.AppsDir(), name)
}

// BinDir returns the shared launcher directory users add to PATH.
func (p Paths) BinDir() string {
	return filepath.Join(p.root, "bin")
}

// CacheDir returns the cache directory.
func (p Paths) CacheDir() string {
	return filepath.Join(p.root, "cache")
}

// DownloadsDir returns the staging directory for in-flight downloads.
func (p Paths) DownloadsDir() string {
	return filepath.Join(p.CacheDir(), "downloads")
}

// LauncherPath returns the launcher path for a package in the bin directory.
// On Windows this is a .cmd shim, elsewhere a symlink named after the package.
func (p Paths) LauncherPath(name string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(p.BinDir(), name+".cmd")
	}
	return filepath.Join(p.BinDir(), name)
}

// ExecutableName returns the platform-specific executable file name.
func ExecutableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// InitDirs creates the root, apps, bin and download directories.
func (p Paths) InitDirs() error {
	for _, dir := range []string{p.root, p.AppsDir(), p.BinDir(), p.DownloadsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// IsInitialized reports whether the root directory exists.
func (p Paths) IsInitialized() bool {
	_, err := os.Stat(p.root)
	return err == nil
}
