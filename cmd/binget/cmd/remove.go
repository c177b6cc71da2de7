package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <package>...",
	Aliases: []string{"rm", "uninstall"},
	Short:   "Uninstall packages",
	Long: `Removes each package's launcher, install directory and installed-state
record. Unknown names are reported and the rest of the batch continues.`,
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

		result, err := e.newRemoveEngine().Remove(args, installed)
		if err != nil {
			return err
		}

		for _, r := range result.Removed {
			info("%s %s %s removed", render(successStyle, "✓"), r.Name, r.Version)
		}
		for _, f := range result.Failed {
			errorf("%s: %v", f.Package, f.Err)
		}

		if len(result.Failed) > 0 {
			return fmt.Errorf("%d package(s) failed to remove", len(result.Failed))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
