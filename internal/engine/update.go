package engine

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/internal/provider"
	"github.com/binget/binget/internal/resolve"
	"github.com/binget/binget/pkg/binget"
)

// UpdateEngine finds installed packages with newer upstream versions.
type UpdateEngine struct {
	Cache    resolve.CacheStore
	Provider provider.SourceProvider
	Logger   *log.Logger
}

// FindUpgradeable checks every installed package against its upstream and
// returns the ones whose latest version differs, sorted by name. Provenance
// decides where to look: bucket packages resolve their repo URL through the
// manifest cache, direct packages use the stored URL. Packages whose bucket
// entry has vanished from the cache, or whose version lookup fails, are
// skipped with a log line.
func (e *UpdateEngine) FindUpgradeable(ctx context.Context, installed *manifest.InstalledManifest) ([]binget.UpgradeCandidate, error) {
	var cache *manifest.ManifestCache

	var candidates []binget.UpgradeCandidate
	for name, inst := range installed.Packages {
		var repoURL string

		switch inst.Source.Kind {
		case manifest.SourceBucket:
			if cache == nil {
				var err error
				cache, err = e.Cache.GetOrRebuild(ctx)
				if err != nil {
					return nil, err
				}
			}
			// The cache is keyed by URL, so scan for the package name.
			for _, cached := range cache.Packages {
				if cached.Package.Name == name {
					repoURL = cached.Package.Repo
					break
				}
			}
			if repoURL == "" {
				e.logf("not found in bucket cache, skipping update check", "package", name, "bucket", inst.Source.Bucket)
				continue
			}
		case manifest.SourceDirect:
			repoURL = inst.Source.URL
		default:
			e.logf("unknown provenance, skipping update check", "package", name)
			continue
		}

		latest, err := e.Provider.FetchLatestVersion(ctx, repoURL)
		if err != nil {
			e.logf("latest version lookup failed, skipping", "package", name, "err", err)
			continue
		}

		if !SameVersion(inst.Version, latest) {
			candidates = append(candidates, binget.UpgradeCandidate{
				Name:    name,
				Current: inst.Version,
				Latest:  latest,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	return candidates, nil
}

func (e *UpdateEngine) logf(msg string, kv ...any) {
	if e.Logger != nil {
		e.Logger.Debug(msg, kv...)
	}
}
