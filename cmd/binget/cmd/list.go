package cmd

import (
	"sort"

	"github.com/binget/binget/internal/manifest"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		installed, err := e.installed.GetOrCreate()
		if err != nil {
			return err
		}

		if len(installed.Packages) == 0 {
			info("No packages installed.")
			return nil
		}

		names := make([]string, 0, len(installed.Packages))
		for name := range installed.Packages {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			inst := installed.Packages[name]
			source := "direct"
			if inst.Source.Kind == manifest.SourceBucket {
				source = "bucket " + inst.Source.Bucket
			}
			info("  %-24s  %-12s  %-12s  %s", render(nameStyle, name), inst.Version,
				inst.Platform, render(mutedStyle, source))
			detail("installed %s  %s", inst.InstalledAt.Format("2006-01-02"), inst.InstallPath)
		}

		info("")
		info("%d package(s) installed.", len(names))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
