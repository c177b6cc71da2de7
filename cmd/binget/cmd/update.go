package cmd

import (
	"fmt"

	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/internal/platform"
	"github.com/binget/binget/pkg/binget"
	"github.com/spf13/cobra"
)

var updateYes bool

var updateCmd = &cobra.Command{
	Use:   "update [package...]",
	Short: "Upgrade installed packages to their latest versions",
	Long: `Checks every installed package against its upstream release and reinstalls
the ones that are behind. Bucket packages are re-resolved through the
bucket cache; direct-URL packages re-fetch their stored repository. With
package names, only those packages are checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		installed, err := e.installed.GetOrCreate()
		if err != nil {
			return err
		}

		// binget cannot replace its own running binary; "all" means the
		// default full scan.
		var names []string
		all := len(args) == 0
		for _, name := range args {
			switch name {
			case "self":
				info("binget does not update itself; download a new release and replace the binary.")
			case "all":
				all = true
			default:
				names = append(names, name)
			}
		}
		if !all && len(names) == 0 {
			return nil
		}

		candidates, err := e.newUpdateEngine().FindUpgradeable(cmd.Context(), installed)
		if err != nil {
			return err
		}

		if !all && len(names) > 0 {
			wanted := make(map[string]bool, len(names))
			for _, name := range names {
				if !installed.IsInstalled(name) {
					errorf("%s is not installed", name)
					continue
				}
				wanted[name] = true
			}
			filtered := candidates[:0]
			for _, c := range candidates {
				if wanted[c.Name] {
					filtered = append(filtered, c)
				}
			}
			candidates = filtered
		}

		if len(candidates) == 0 {
			info("All packages are up to date.")
			return nil
		}

		for _, c := range candidates {
			info("  %s  %s -> %s", render(nameStyle, c.Name), c.Current, c.Latest)
		}

		if !updateYes {
			if !confirm(fmt.Sprintf("\nUpgrade %d package(s)?", len(candidates))) {
				info("Aborted.")
				return nil
			}
		}

		upgradeArgs := make([]string, 0, len(candidates))
		for _, c := range candidates {
			upgradeArgs = append(upgradeArgs, upgradeInput(c, installed))
		}

		eng := e.newInstallEngine()
		ids := platform.Current().PossibleIdentifiers()
		plan := eng.Plan(cmd.Context(), upgradeArgs, ids, installed)
		for _, re := range plan.ResolveErrors {
			errorf("%s: %v", re.Package, re.Err)
		}

		result, err := eng.Run(cmd.Context(), plan, ids, installed)
		if err != nil {
			return err
		}

		for _, item := range result.Installed {
			info("%s %s upgraded to %s", render(successStyle, "✓"), item.Name, item.Version)
		}
		for _, f := range result.Failed {
			errorf("%s: %v", f.Package, f.Err)
		}

		if result.FailureCount() > 0 {
			return fmt.Errorf("%d package(s) failed to upgrade", result.FailureCount())
		}
		return nil
	},
}

// upgradeInput picks the install argument for a candidate: direct packages
// go through their stored URL so resolution never depends on the cache.
func upgradeInput(c binget.UpgradeCandidate, installed *manifest.InstalledManifest) string {
	if inst, ok := installed.GetPackage(c.Name); ok && inst.Source.Kind == manifest.SourceDirect {
		return inst.Source.URL
	}
	return c.Name
}

func init() {
	updateCmd.Flags().BoolVarP(&updateYes, "yes", "y", false, "skip interactive confirmation")
	rootCmd.AddCommand(updateCmd)
}
