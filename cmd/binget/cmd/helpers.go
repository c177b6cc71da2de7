package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/binget/binget/internal/bucket"
	"github.com/binget/binget/internal/config"
	"github.com/binget/binget/internal/engine"
	"github.com/binget/binget/internal/installer"
	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/internal/provider"
	"github.com/binget/binget/internal/resolve"
)

// env bundles the shared state every command needs. It is built once per
// invocation so all components see the same paths, settings and installed
// manifest.
type env struct {
	paths     config.Paths
	settings  *config.Settings
	logger    *log.Logger
	provider  provider.SourceProvider
	installed *installedStore
}

// newEnv resolves the root directory, ensures the layout exists and loads
// settings.
func newEnv() (*env, error) {
	root, err := config.DefaultRoot()
	if err != nil {
		return nil, err
	}
	paths := config.NewPaths(root)
	if err := paths.InitDirs(); err != nil {
		return nil, fmt.Errorf("initializing %s: %w", root, err)
	}

	settings, err := config.LoadSettings(paths.SettingsFile())
	if err != nil {
		return nil, err
	}

	return &env{
		paths:     paths,
		settings:  settings,
		logger:    newLogger(),
		provider:  provider.NewGitHub(settings.GitHubToken),
		installed: &installedStore{path: paths.InstalledFile()},
	}, nil
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "binget"})
	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	}
	return logger
}

// installedStore loads the installed manifest once and hands out the same
// instance, so in-process updates are visible to every consumer.
type installedStore struct {
	path string
	m    *manifest.InstalledManifest
}

func (s *installedStore) GetOrCreate() (*manifest.InstalledManifest, error) {
	if s.m == nil {
		m, err := manifest.LoadInstalled(s.path)
		if err != nil {
			return nil, err
		}
		s.m = m
	}
	return s.m, nil
}

func (e *env) cacheTTL() time.Duration {
	hours := e.settings.CacheTTLHours
	if hours <= 0 {
		hours = config.DefaultCacheTTLHours
	}
	return time.Duration(hours) * time.Hour
}

func (e *env) newCacheStore() *bucket.Store {
	return &bucket.Store{
		Paths:    e.paths,
		Provider: e.provider,
		TTL:      e.cacheTTL(),
		Logger:   e.logger,
	}
}

func (e *env) newResolver() *resolve.Resolver {
	return &resolve.Resolver{
		Cache:     e.newCacheStore(),
		Installed: e.installed,
		Provider:  e.provider,
	}
}

func (e *env) newInstallEngine() *engine.InstallEngine {
	return &engine.InstallEngine{
		Resolver:  e.newResolver(),
		Installer: &installer.Installer{Paths: e.paths, Logger: e.logger},
		Paths:     e.paths,
		Logger:    e.logger,
	}
}

func (e *env) newUpdateEngine() *engine.UpdateEngine {
	return &engine.UpdateEngine{
		Cache:    e.newCacheStore(),
		Provider: e.provider,
		Logger:   e.logger,
	}
}

func (e *env) newRemoveEngine() *engine.RemoveEngine {
	return &engine.RemoveEngine{Paths: e.paths, Logger: e.logger}
}

// confirm asks a yes/no question on stdin. Anything but y/yes declines.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, render(errorStyle, "error: ")+format+"\n", args...)
}

// humanSize formats a byte count for display.
func humanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMG"[exp])
}

// warnf prints a warning message unless quiet mode is active.
func warnf(format string, args ...any) {
	if !quiet {
		fmt.Printf(render(warningStyle, "warning: ")+format+"\n", args...)
	}
}
