package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/internal/provider"
)

// ErrNotFound is returned when an input matches nothing in the cache, the
// installed state, or upstream.
var ErrNotFound = errors.New("no packages found")

// CacheStore supplies the manifest cache, rebuilding it when stale. The
// staleness policy belongs entirely to the implementation.
type CacheStore interface {
	GetOrRebuild(ctx context.Context) (*manifest.ManifestCache, error)
}

// InstalledStore supplies the installed-state manifest.
type InstalledStore interface {
	GetOrCreate() (*manifest.InstalledManifest, error)
}

// ResolvedPackage is the transient output of resolution: package metadata
// plus the provenance that governs how a later update re-resolves it.
type ResolvedPackage struct {
	Package manifest.Package
	Source  manifest.PackageSource
}

// Resolver resolves package inputs against the cache, the installed state
// and the source provider.
type Resolver struct {
	Cache     CacheStore
	Installed InstalledStore
	Provider  provider.SourceProvider
}

// Resolve resolves an input into one or more packages. Cache names may match
// several cache entries (globs, or the same name in multiple buckets); direct
// URLs always yield exactly one package and never touch the cache.
func (r *Resolver) Resolve(ctx context.Context, input PackageInput) ([]ResolvedPackage, error) {
	switch input.Kind {
	case InputCacheName:
		return r.resolveFromCache(ctx, input.Value)
	case InputDirectURL:
		pkg, err := r.resolveFromURL(ctx, input.Value)
		if err != nil {
			return nil, err
		}
		return []ResolvedPackage{pkg}, nil
	default:
		return nil, fmt.Errorf("unknown input kind %q", input.Kind)
	}
}

// resolveFromCache looks a name or glob pattern up in the manifest cache.
// A name absent from the cache falls back to the installed state: a package
// installed from a direct URL stays upgradeable by re-fetching its stored
// URL even though it was never catalogued.
func (r *Resolver) resolveFromCache(ctx context.Context, name string) ([]ResolvedPackage, error) {
	cache, err := r.Cache.GetOrRebuild(ctx)
	if err != nil {
		return nil, err
	}

	glob := IsGlob(name)
	var matches []ResolvedPackage
	for _, cached := range cache.Packages {
		if glob {
			if !GlobMatch(cached.Package.Name, name) {
				continue
			}
		} else if cached.Package.Name != name {
			continue
		}
		matches = append(matches, ResolvedPackage{Package: cached.Package, Source: cached.Source})
	}

	if len(matches) > 0 {
		// Iteration order of the cache map is undefined; callers sort for
		// display when they need to.
		return matches, nil
	}

	// Installed-state fallback applies to exact names only.
	if !glob {
		installed, err := r.Installed.GetOrCreate()
		if err != nil {
			return nil, err
		}
		if inst, ok := installed.GetPackage(name); ok && inst.Source.Kind == manifest.SourceDirect {
			pkg, err := r.resolveFromURL(ctx, inst.Source.URL)
			if err != nil {
				return nil, err
			}
			return []ResolvedPackage{pkg}, nil
		}
	}

	return nil, fmt.Errorf("%w matching: %s", ErrNotFound, name)
}

func (r *Resolver) resolveFromURL(ctx context.Context, url string) (ResolvedPackage, error) {
	pkg, err := r.Provider.FetchPackage(ctx, url)
	if err != nil {
		return ResolvedPackage{}, fmt.Errorf("fetching package from %s: %w", url, err)
	}
	return ResolvedPackage{Package: *pkg, Source: manifest.DirectSource(url)}, nil
}

// FetchLatestVersion returns the latest upstream version for a repository.
func (r *Resolver) FetchLatestVersion(ctx context.Context, repoURL string) (string, error) {
	return r.Provider.FetchLatestVersion(ctx, repoURL)
}
