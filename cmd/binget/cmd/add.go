package cmd

import (
	"fmt"

	"github.com/binget/binget/internal/engine"
	"github.com/binget/binget/internal/platform"
	"github.com/spf13/cobra"
)

var addYes bool

var addCmd = &cobra.Command{
	Use:   "add <package|url>...",
	Short: "Install packages from buckets or repository URLs",
	Long: `Installs one or more packages. Arguments are bucket package names, glob
patterns over bucket names, or GitHub repository URLs. Each package is
downloaded, extracted under its own directory and exposed through a
launcher in the bin directory. A failing package never aborts the rest
of the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		installed, err := e.installed.GetOrCreate()
		if err != nil {
			return err
		}

		eng := e.newInstallEngine()
		ids := platform.Current().PossibleIdentifiers()

		plan := eng.Plan(cmd.Context(), args, ids, installed)

		for _, re := range plan.ResolveErrors {
			errorf("%s: %v", re.Package, re.Err)
		}
		for _, name := range plan.Unsupported {
			warnf("%s has no binary for %s, skipping", name, platform.Current())
		}

		var fresh, upgrades, current []engine.PlanItem
		for _, item := range plan.Items {
			switch item.Action {
			case engine.ActionInstall:
				fresh = append(fresh, item)
			case engine.ActionUpgrade:
				upgrades = append(upgrades, item)
			case engine.ActionCurrent:
				current = append(current, item)
			}
		}

		for _, item := range current {
			info("%s %s is already installed and up to date",
				render(nameStyle, item.Resolved.Package.Name), item.Version)
		}
		for _, item := range fresh {
			info("  %s  %s  %s", render(nameStyle, item.Resolved.Package.Name),
				item.Version, render(mutedStyle, item.Resolved.Package.Description))
		}
		for _, item := range upgrades {
			info("  %s  %s -> %s", render(nameStyle, item.Resolved.Package.Name),
				item.CurrentVersion, item.Version)
		}

		pending := plan.Pending()
		if len(pending) == 0 {
			if len(plan.ResolveErrors) > 0 {
				return fmt.Errorf("%d package(s) could not be resolved", len(plan.ResolveErrors))
			}
			info("Nothing to install.")
			return nil
		}

		if !addYes {
			if !confirm(fmt.Sprintf("\nInstall %d package(s)?", len(pending))) {
				info("Aborted.")
				return nil
			}
		}

		result, err := eng.Run(cmd.Context(), plan, ids, installed)
		if err != nil {
			return err
		}

		for _, item := range result.Installed {
			verb := "installed"
			if item.Upgraded {
				verb = "upgraded"
			}
			info("%s %s %s (%s)", render(successStyle, "✓"), item.Name, verb, item.Version)
		}
		for _, f := range result.Failed {
			errorf("%s: %v", f.Package, f.Err)
		}

		info("")
		info("%d installed, %d failed.", result.SuccessCount(), result.FailureCount())

		if result.FailureCount() > 0 || len(plan.ResolveErrors) > 0 {
			return fmt.Errorf("%d package(s) failed", result.FailureCount()+len(plan.ResolveErrors))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().BoolVarP(&addYes, "yes", "y", false, "skip interactive confirmation")
	rootCmd.AddCommand(addCmd)
}
