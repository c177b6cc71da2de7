package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/binget/binget/internal/config"
	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/internal/provider"
)

// Store owns the manifest cache: it loads the on-disk cache and rebuilds it
// from the bucket list when the cache is missing, unreadable or stale.
// Readers never mutate the cache.
type Store struct {
	Paths    config.Paths
	Provider provider.SourceProvider
	TTL      time.Duration
	Logger   *log.Logger
}

// GetOrRebuild returns the manifest cache, rebuilding it first if needed.
func (s *Store) GetOrRebuild(ctx context.Context) (*manifest.ManifestCache, error) {
	path := s.Paths.ManifestCacheFile()

	cache, err := manifest.LoadCache(path)
	if err == nil && !s.stale(cache) {
		return cache, nil
	}
	if err != nil {
		s.logf("manifest cache unavailable, rebuilding", "err", err)
	} else {
		s.logf("manifest cache stale, rebuilding", "age", time.Since(cache.UpdatedAt).Round(time.Minute))
	}

	return s.Rebuild(ctx)
}

// Rebuild fetches every bucket repository and writes a fresh cache, keyed by
// source URL. Individual repository failures are logged and skipped so one
// dead repo cannot take down the whole catalog; a rebuild that produces
// nothing at all is an error.
func (s *Store) Rebuild(ctx context.Context) (*manifest.ManifestCache, error) {
	list, err := LoadList(s.Paths.BucketsFile())
	if err != nil {
		return nil, err
	}

	cache := &manifest.ManifestCache{
		Version:   1,
		UpdatedAt: time.Now().UTC(),
		Packages:  make(map[string]manifest.CachedPackage),
	}

	var fetched, failed int
	for _, b := range list.Buckets {
		for _, repo := range b.Repos {
			pkg, err := s.Provider.FetchPackage(ctx, repo)
			if err != nil {
				failed++
				s.logf("skipping bucket entry", "bucket", b.Name, "repo", repo, "err", err)
				continue
			}
			cache.Packages[repo] = manifest.CachedPackage{
				Package: *pkg,
				Source:  manifest.BucketSource(b.Name),
			}
			fetched++
		}
	}

	if fetched == 0 && failed > 0 {
		return nil, fmt.Errorf("rebuilding manifest cache: all %d bucket entries failed", failed)
	}

	if err := manifest.SaveCache(s.Paths.ManifestCacheFile(), cache); err != nil {
		return nil, err
	}

	s.logf("manifest cache rebuilt", "packages", fetched, "failed", failed)
	return cache, nil
}

func (s *Store) stale(cache *manifest.ManifestCache) bool {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = config.DefaultCacheTTLHours * time.Hour
	}
	return time.Since(cache.UpdatedAt) > ttl
}

func (s *Store) logf(msg string, kv ...any) {
	if s.Logger != nil {
		s.Logger.Debug(msg, kv...)
	}
}
