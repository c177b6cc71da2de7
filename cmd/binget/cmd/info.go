package cmd

import (
	"fmt"
	"sort"

	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/internal/platform"
	"github.com/binget/binget/internal/resolve"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <package|url>...",
	Short: "Show package details",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		installed, err := e.installed.GetOrCreate()
		if err != nil {
			return err
		}

		resolver := e.newResolver()
		var resolved []resolve.ResolvedPackage
		failures := 0
		for _, arg := range args {
			matches, err := resolver.Resolve(cmd.Context(), resolve.ParseInput(arg))
			if err != nil {
				errorf("%s: %v", arg, err)
				failures++
				continue
			}
			resolved = append(resolved, matches...)
		}

		sort.Slice(resolved, func(i, j int) bool {
			return resolved[i].Package.Name < resolved[j].Package.Name
		})

		for i, rp := range resolved {
			if i > 0 {
				info("")
			}
			printPackage(cmd, e, rp, installed)
		}

		if failures > 0 {
			return fmt.Errorf("%d argument(s) could not be resolved", failures)
		}
		return nil
	},
}

func printPackage(cmd *cobra.Command, e *env, rp resolve.ResolvedPackage, installed *manifest.InstalledManifest) {
	pkg := rp.Package

	info("%s", render(nameStyle, pkg.Name))
	if pkg.Description != "" {
		info("  %s", pkg.Description)
	}
	info("  repo:      %s", pkg.Repo)
	if pkg.Homepage != "" && pkg.Homepage != pkg.Repo {
		info("  homepage:  %s", pkg.Homepage)
	}
	if pkg.License != "" {
		info("  license:   %s", pkg.License)
	}
	switch rp.Source.Kind {
	case manifest.SourceBucket:
		info("  source:    bucket %s", rp.Source.Bucket)
	case manifest.SourceDirect:
		info("  source:    direct")
	}

	if latest, err := e.provider.FetchLatestVersion(cmd.Context(), pkg.Repo); err == nil {
		info("  latest:    %s", latest)
	}

	if inst, ok := installed.GetPackage(pkg.Name); ok {
		info("  installed: %s (%s)", inst.Version, inst.Platform)
	}

	if len(pkg.Platforms) > 0 {
		ids := make([]string, 0, len(pkg.Platforms))
		for id := range pkg.Platforms {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		host := platform.Current().PossibleIdentifiers()
		info("  platforms:")
		for _, id := range ids {
			marker := " "
			for _, h := range host {
				if h == id {
					marker = render(successStyle, "*")
					break
				}
			}
			line := fmt.Sprintf("  %s %s", marker, id)
			if size := pkg.Platforms[id].Size; size > 0 {
				line += render(mutedStyle, "  "+humanSize(size))
			}
			info("  %s", line)
		}
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
