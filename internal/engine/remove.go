package engine

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/binget/binget/internal/config"
	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/pkg/binget"
)

// RemoveEngine uninstalls packages: launcher, install directory, state record.
type RemoveEngine struct {
	Paths  config.Paths
	Logger *log.Logger
}

// Remove uninstalls the named packages. State is persisted after each
// successful removal; unknown names and filesystem failures are recorded and
// the batch continues.
func (e *RemoveEngine) Remove(names []string, installed *manifest.InstalledManifest) (*binget.RemoveResult, error) {
	result := &binget.RemoveResult{}

	for _, name := range names {
		inst, ok := installed.GetPackage(name)
		if !ok {
			result.Failed = append(result.Failed, binget.PackageError{
				Package: name,
				Err:     fmt.Errorf("not installed"),
			})
			continue
		}

		if err := os.Remove(e.Paths.LauncherPath(name)); err != nil && !os.IsNotExist(err) {
			result.Failed = append(result.Failed, binget.PackageError{
				Package: name,
				Err:     fmt.Errorf("removing launcher: %w", err),
			})
			continue
		}

		if err := os.RemoveAll(e.Paths.AppDir(name)); err != nil {
			result.Failed = append(result.Failed, binget.PackageError{
				Package: name,
				Err:     fmt.Errorf("removing install directory: %w", err),
			})
			continue
		}

		installed.RemovePackage(name)
		if err := manifest.SaveInstalled(e.Paths.InstalledFile(), installed); err != nil {
			result.Failed = append(result.Failed, binget.PackageError{
				Package: name,
				Err:     fmt.Errorf("removed but state not persisted: %w", err),
			})
			continue
		}

		e.logf("removed", "package", name, "version", inst.Version)
		result.Removed = append(result.Removed, binget.RemovedItem{Name: name, Version: inst.Version})
	}

	return result, nil
}

func (e *RemoveEngine) logf(msg string, kv ...any) {
	if e.Logger != nil {
		e.Logger.Debug(msg, kv...)
	}
}
