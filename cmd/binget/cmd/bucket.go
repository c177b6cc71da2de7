package cmd

import (
	"github.com/binget/binget/internal/bucket"
	"github.com/spf13/cobra"
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage bucket indexes",
	Long: `Buckets are named lists of GitHub repositories that feed the package
cache. The cache is rebuilt from all buckets when it goes stale or on
an explicit refresh.`,
}

var bucketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		list, err := bucket.LoadList(e.paths.BucketsFile())
		if err != nil {
			return err
		}

		for _, b := range list.Buckets {
			info("  %-16s  %d repo(s)", render(nameStyle, b.Name), len(b.Repos))
			for _, repo := range b.Repos {
				detail("%s", repo)
			}
		}
		return nil
	},
}

var bucketAddCmd = &cobra.Command{
	Use:   "add <name> <repo-url>...",
	Short: "Add a bucket",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		list, err := bucket.LoadList(e.paths.BucketsFile())
		if err != nil {
			return err
		}

		if err := list.Add(bucket.Bucket{Name: args[0], Repos: args[1:]}); err != nil {
			return err
		}
		if err := bucket.SaveList(e.paths.BucketsFile(), list); err != nil {
			return err
		}

		info("Added bucket %s with %d repo(s).", render(nameStyle, args[0]), len(args)-1)
		return refreshCache(cmd, e)
	},
}

var bucketRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		list, err := bucket.LoadList(e.paths.BucketsFile())
		if err != nil {
			return err
		}

		if err := list.Remove(args[0]); err != nil {
			return err
		}
		if err := bucket.SaveList(e.paths.BucketsFile(), list); err != nil {
			return err
		}

		info("Removed bucket %s.", render(nameStyle, args[0]))
		return refreshCache(cmd, e)
	},
}

var bucketRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the package cache from all buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		return refreshCache(cmd, e)
	},
}

func refreshCache(cmd *cobra.Command, e *env) error {
	cache, err := e.newCacheStore().Rebuild(cmd.Context())
	if err != nil {
		return err
	}
	info("Cache refreshed: %d package(s).", len(cache.Packages))
	return nil
}

func init() {
	bucketCmd.AddCommand(bucketListCmd)
	bucketCmd.AddCommand(bucketAddCmd)
	bucketCmd.AddCommand(bucketRemoveCmd)
	bucketCmd.AddCommand(bucketRefreshCmd)
	rootCmd.AddCommand(bucketCmd)
}
