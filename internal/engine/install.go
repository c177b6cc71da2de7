package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/binget/binget/internal/config"
	"github.com/binget/binget/internal/installer"
	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/internal/platform"
	"github.com/binget/binget/internal/resolve"
	"github.com/binget/binget/pkg/binget"
)

// InstallEngine resolves user inputs and drives the installer across a batch
// of packages, persisting installed state after each individual success.
type InstallEngine struct {
	Resolver  *resolve.Resolver
	Installer *installer.Installer
	Paths     config.Paths
	Logger    *log.Logger
}

// PlanAction classifies what an install plan entry will do.
type PlanAction string

const (
	// ActionInstall is a fresh installation.
	ActionInstall PlanAction = "install"
	// ActionUpgrade replaces an older installed version.
	ActionUpgrade PlanAction = "upgrade"
	// ActionCurrent means the installed version already matches upstream;
	// nothing is downloaded.
	ActionCurrent PlanAction = "current"
)

// PlanItem is one package the plan decided about.
type PlanItem struct {
	Resolved       resolve.ResolvedPackage
	Version        string // latest upstream version, "unknown" if lookup failed
	CurrentVersion string // installed version, for upgrades and current items
	Action         PlanAction
}

// InstallPlan is the result of resolving a batch of user inputs.
type InstallPlan struct {
	Items         []PlanItem
	Unsupported   []string              // package names with no asset for this host
	ResolveErrors []binget.PackageError // per-input resolution failures
}

// Plan resolves every input, drops packages without a matching platform
// asset, looks up latest versions and classifies each package against the
// installed state. Per-input failures are recorded, not fatal: the rest of
// the batch proceeds.
func (e *InstallEngine) Plan(ctx context.Context, args []string, platformIDs []string, installed *manifest.InstalledManifest) *InstallPlan {
	plan := &InstallPlan{}

	for _, arg := range args {
		input := resolve.ParseInput(arg)

		resolved, err := e.Resolver.Resolve(ctx, input)
		if err != nil {
			plan.ResolveErrors = append(plan.ResolveErrors, binget.PackageError{Package: arg, Err: err})
			continue
		}

		for _, rp := range resolved {
			if !platform.Supports(platformIDs, rp.Package.Platforms) {
				plan.Unsupported = append(plan.Unsupported, rp.Package.Name)
				continue
			}

			// Best-effort: a failed version lookup degrades the display, not
			// the install.
			version, err := e.Resolver.FetchLatestVersion(ctx, rp.Package.Repo)
			if err != nil {
				e.logf("latest version lookup failed", "package", rp.Package.Name, "err", err)
				version = "unknown"
			}

			item := PlanItem{Resolved: rp, Version: version, Action: ActionInstall}
			if inst, ok := installed.GetPackage(rp.Package.Name); ok {
				item.CurrentVersion = inst.Version
				if SameVersion(inst.Version, version) {
					item.Action = ActionCurrent
				} else {
					item.Action = ActionUpgrade
				}
			}
			plan.Items = append(plan.Items, item)
		}
	}

	return plan
}

// Pending returns the plan items that require an install.
func (p *InstallPlan) Pending() []PlanItem {
	var pending []PlanItem
	for _, item := range p.Items {
		if item.Action != ActionCurrent {
			pending = append(pending, item)
		}
	}
	return pending
}

// Run installs every pending plan item sequentially, in plan order. After
// each success the installed manifest is updated and persisted immediately,
// so an interruption loses at most the in-flight package. A failed install
// aborts only that package; the batch continues.
func (e *InstallEngine) Run(ctx context.Context, plan *InstallPlan, platformIDs []string, installed *manifest.InstalledManifest) (*binget.InstallResult, error) {
	result := &binget.InstallResult{}

	for _, item := range plan.Pending() {
		pkg := item.Resolved.Package

		inst, err := e.Installer.Install(ctx, pkg, platformIDs, item.Version, item.Resolved.Source)
		if err != nil {
			e.logf("install failed", "package", pkg.Name, "err", err)
			result.Failed = append(result.Failed, binget.PackageError{Package: pkg.Name, Err: err})
			continue
		}

		installed.UpsertPackage(pkg.Name, *inst)
		if err := manifest.SaveInstalled(e.Paths.InstalledFile(), installed); err != nil {
			// The package is on disk but unrecorded; surface this as the
			// package's failure so the user knows the state file is behind.
			result.Failed = append(result.Failed, binget.PackageError{
				Package: pkg.Name,
				Err:     fmt.Errorf("installed but state not persisted: %w", err),
			})
			continue
		}

		result.Installed = append(result.Installed, binget.InstalledItem{
			Name:     pkg.Name,
			Version:  item.Version,
			Platform: inst.Platform,
			Upgraded: item.Action == ActionUpgrade,
		})
	}

	return result, nil
}

func (e *InstallEngine) logf(msg string, kv ...any) {
	if e.Logger != nil {
		e.Logger.Debug(msg, kv...)
	}
}
