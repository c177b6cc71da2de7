package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/binget/binget/internal/manifest"
)

// mockCache is a CacheStore returning a fixed cache.
type mockCache struct {
	cache *manifest.ManifestCache
	err   error
	calls int
}

func (m *mockCache) GetOrRebuild(ctx context.Context) (*manifest.ManifestCache, error) {
	m.calls++
	return m.cache, m.err
}

// mockInstalled is an InstalledStore returning a fixed manifest.
type mockInstalled struct {
	manifest *manifest.InstalledManifest
}

func (m *mockInstalled) GetOrCreate() (*manifest.InstalledManifest, error) {
	return m.manifest, nil
}

// mockProvider returns canned packages by URL.
type mockProvider struct {
	packages map[string]*manifest.Package
	versions map[string]string
	fetches  int
}

func (m *mockProvider) FetchPackage(ctx context.Context, url string) (*manifest.Package, error) {
	m.fetches++
	pkg, ok := m.packages[url]
	if !ok {
		return nil, errors.New("unknown repository")
	}
	return pkg, nil
}

func (m *mockProvider) FetchLatestVersion(ctx context.Context, repoURL string) (string, error) {
	v, ok := m.versions[repoURL]
	if !ok {
		return "", errors.New("no release")
	}
	return v, nil
}

func (m *mockProvider) Name() string { return "mock" }

func cacheWith(entries map[string]manifest.CachedPackage) *mockCache {
	return &mockCache{cache: &manifest.ManifestCache{Version: 1, Packages: entries}}
}

func emptyInstalled() *mockInstalled {
	return &mockInstalled{manifest: &manifest.InstalledManifest{Version: 1, Packages: map[string]manifest.InstalledPackage{}}}
}

func TestResolveCacheNameExact(t *testing.T) {
	cache := cacheWith(map[string]manifest.CachedPackage{
		"https://github.com/BurntSushi/ripgrep": {
			Package: manifest.Package{Name: "ripgrep", Repo: "https://github.com/BurntSushi/ripgrep"},
			Source:  manifest.BucketSource("main"),
		},
		"https://github.com/sharkdp/fd": {
			Package: manifest.Package{Name: "fd", Repo: "https://github.com/sharkdp/fd"},
			Source:  manifest.BucketSource("main"),
		},
	})
	r := &Resolver{Cache: cache, Installed: emptyInstalled(), Provider: &mockProvider{}}

	resolved, err := r.Resolve(context.Background(), ParseInput("ripgrep"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("resolved = %d packages", len(resolved))
	}
	if resolved[0].Package.Name != "ripgrep" {
		t.Errorf("name = %q", resolved[0].Package.Name)
	}
	if resolved[0].Source.Kind != manifest.SourceBucket || resolved[0].Source.Bucket != "main" {
		t.Errorf("source = %+v", resolved[0].Source)
	}
}

func TestResolveCacheNameGlob(t *testing.T) {
	cache := cacheWith(map[string]manifest.CachedPackage{
		"https://github.com/BurntSushi/ripgrep": {
			Package: manifest.Package{Name: "ripgrep"},
			Source:  manifest.BucketSource("main"),
		},
		"https://github.com/example/ripcord": {
			Package: manifest.Package{Name: "ripcord"},
			Source:  manifest.BucketSource("extras"),
		},
		"https://github.com/sharkdp/bat": {
			Package: manifest.Package{Name: "bat"},
			Source:  manifest.BucketSource("main"),
		},
	})
	r := &Resolver{Cache: cache, Installed: emptyInstalled(), Provider: &mockProvider{}}

	resolved, err := r.Resolve(context.Background(), ParseInput("rip*"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("resolved = %d packages, want 2", len(resolved))
	}
}

func TestResolveDuplicateNameAcrossBuckets(t *testing.T) {
	// The cache is keyed by source URL, so the same package name can appear
	// in several buckets and exact lookup returns all of them.
	cache := cacheWith(map[string]manifest.CachedPackage{
		"https://github.com/a/tool": {
			Package: manifest.Package{Name: "tool"},
			Source:  manifest.BucketSource("main"),
		},
		"https://github.com/b/tool": {
			Package: manifest.Package{Name: "tool"},
			Source:  manifest.BucketSource("extras"),
		},
	})
	r := &Resolver{Cache: cache, Installed: emptyInstalled(), Provider: &mockProvider{}}

	resolved, err := r.Resolve(context.Background(), ParseInput("tool"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved) != 2 {
		t.Errorf("resolved = %d packages, want 2", len(resolved))
	}
}

func TestResolveDirectURLNeverTouchesCache(t *testing.T) {
	cache := cacheWith(nil)
	prov := &mockProvider{packages: map[string]*manifest.Package{
		"https://github.com/u/r": {Name: "r", Repo: "https://github.com/u/r"},
	}}
	r := &Resolver{Cache: cache, Installed: emptyInstalled(), Provider: prov}

	resolved, err := r.Resolve(context.Background(), ParseInput("github.com/u/r"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("resolved = %d packages", len(resolved))
	}
	if resolved[0].Source.Kind != manifest.SourceDirect || resolved[0].Source.URL != "https://github.com/u/r" {
		t.Errorf("source = %+v", resolved[0].Source)
	}
	if cache.calls != 0 {
		t.Errorf("cache consulted %d times for a direct URL", cache.calls)
	}
}

func TestResolveInstalledDirectFallback(t *testing.T) {
	installed := &mockInstalled{manifest: &manifest.InstalledManifest{
		Version: 1,
		Packages: map[string]manifest.InstalledPackage{
			"mytool": {
				Version: "1.0.0",
				Source:  manifest.DirectSource("https://github.com/u/mytool"),
			},
		},
	}}
	prov := &mockProvider{packages: map[string]*manifest.Package{
		"https://github.com/u/mytool": {Name: "mytool", Repo: "https://github.com/u/mytool"},
	}}
	r := &Resolver{Cache: cacheWith(nil), Installed: installed, Provider: prov}

	resolved, err := r.Resolve(context.Background(), ParseInput("mytool"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Source.Kind != manifest.SourceDirect {
		t.Fatalf("resolved = %+v", resolved)
	}
	if prov.fetches != 1 {
		t.Errorf("provider fetches = %d, want 1", prov.fetches)
	}
}

func TestResolveGlobSkipsInstalledFallback(t *testing.T) {
	installed := &mockInstalled{manifest: &manifest.InstalledManifest{
		Version: 1,
		Packages: map[string]manifest.InstalledPackage{
			"mytool": {Source: manifest.DirectSource("https://github.com/u/mytool")},
		},
	}}
	prov := &mockProvider{packages: map[string]*manifest.Package{
		"https://github.com/u/mytool": {Name: "mytool"},
	}}
	r := &Resolver{Cache: cacheWith(nil), Installed: installed, Provider: prov}

	_, err := r.Resolve(context.Background(), ParseInput("mytool*"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if prov.fetches != 0 {
		t.Errorf("provider fetched for glob fallback")
	}
}

func TestResolveNotFound(t *testing.T) {
	r := &Resolver{Cache: cacheWith(nil), Installed: emptyInstalled(), Provider: &mockProvider{}}

	_, err := r.Resolve(context.Background(), ParseInput("nonexistent"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveBucketFallbackNotUsedForBucketProvenance(t *testing.T) {
	// A package installed from a bucket that has since left the cache must
	// not silently re-resolve from a URL: only direct-repo provenance does.
	installed := &mockInstalled{manifest: &manifest.InstalledManifest{
		Version: 1,
		Packages: map[string]manifest.InstalledPackage{
			"gone": {Source: manifest.BucketSource("main")},
		},
	}}
	r := &Resolver{Cache: cacheWith(nil), Installed: installed, Provider: &mockProvider{}}

	_, err := r.Resolve(context.Background(), ParseInput("gone"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
