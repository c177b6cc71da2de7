package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/binget/binget/internal/config"
	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/internal/platform"
)

// Installer performs single-package installs. It has no knowledge of the
// installed-state store: performing an install and recording it are separate
// concerns, and persistence belongs to the caller.
type Installer struct {
	Paths  config.Paths
	Client HTTPClient
	Logger *log.Logger
}

// Install drives one package through the full pipeline:
// select platform asset, download, extract, locate executable, create
// launcher, clean up the staged archive. On success it returns the record
// the caller should persist. On failure it returns a StageError naming the
// stage; artifacts already written are not guaranteed to be cleaned up.
func (ins *Installer) Install(ctx context.Context, pkg manifest.Package, platformIDs []string, version string, source manifest.PackageSource) (*manifest.InstalledPackage, error) {
	platformID, asset, err := platform.Select(platformIDs, pkg.Platforms)
	if err != nil {
		return nil, stageErr(StageSelect, err)
	}

	filename, err := DownloadFilename(asset.URL)
	if err != nil {
		return nil, stageErr(StageDownload, err)
	}

	if err := os.MkdirAll(ins.Paths.DownloadsDir(), 0755); err != nil {
		return nil, stageErr(StageDownload, err)
	}
	downloadPath := filepath.Join(ins.Paths.DownloadsDir(), filename)

	ins.logf("downloading", "package", pkg.Name, "url", asset.URL)
	if err := DownloadFile(ctx, ins.Client, asset.URL, downloadPath); err != nil {
		return nil, stageErr(StageDownload, err)
	}

	appDir := ins.Paths.AppDir(pkg.Name)
	ins.logf("extracting", "package", pkg.Name, "dest", appDir)
	files, err := ins.extractAndSwap(downloadPath, appDir, pkg.Name)
	if err != nil {
		return nil, stageErr(StageExtract, err)
	}

	exeRel, err := FindExecutable(files, pkg.Name)
	if err != nil {
		return nil, stageErr(StageLocate, err)
	}
	exePath := filepath.Join(appDir, exeRel)
	if _, err := os.Stat(exePath); err != nil {
		return nil, stageErr(StageLocate, fmt.Errorf("%w: %s missing on disk", ErrExecutableNotFound, exePath))
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(exePath, 0755); err != nil {
			return nil, stageErr(StageLocate, fmt.Errorf("marking %s executable: %w", exePath, err))
		}
	}
	ins.logf("found executable", "package", pkg.Name, "path", exeRel)

	launcherPath := ins.Paths.LauncherPath(pkg.Name)
	if err := CreateLauncher(exePath, launcherPath, pkg.Name); err != nil {
		return nil, stageErr(StageLauncher, err)
	}
	ins.logf("created launcher", "package", pkg.Name, "path", launcherPath)

	// The install itself already succeeded; a lingering staged archive is
	// only worth a log line.
	if err := os.Remove(downloadPath); err != nil {
		ins.logf("could not remove staged download", "path", downloadPath, "err", err)
	}

	return &manifest.InstalledPackage{
		Version:     version,
		Platform:    platformID,
		InstalledAt: time.Now().UTC(),
		InstallPath: appDir,
		Files:       files,
		Source:      source,
		Description: pkg.Description,
	}, nil
}

// extractAndSwap unpacks into a staging directory next to the install
// directory, then replaces the install directory in one rename. The old
// install is still destroyed before the new one is verified runnable, but a
// failed extraction no longer leaves a half-written install directory.
func (ins *Installer) extractAndSwap(archivePath, appDir, name string) ([]string, error) {
	staging := filepath.Join(ins.Paths.AppsDir(), ".staging-"+name)
	if err := os.RemoveAll(staging); err != nil {
		return nil, fmt.Errorf("clearing staging directory %s: %w", staging, err)
	}

	files, err := ExtractArchive(archivePath, staging)
	if err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	if err := os.RemoveAll(appDir); err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("removing existing install %s: %w", appDir, err)
	}
	if err := os.Rename(staging, appDir); err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("moving %s into place: %w", staging, err)
	}

	return files, nil
}

func (ins *Installer) logf(msg string, kv ...any) {
	if ins.Logger != nil {
		ins.Logger.Debug(msg, kv...)
	}
}
