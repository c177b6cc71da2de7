package engine

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/binget/binget/internal/config"
	"github.com/binget/binget/internal/installer"
	"github.com/binget/binget/internal/manifest"
	"github.com/binget/binget/internal/resolve"
)

// mockCache is a resolve.CacheStore over a fixed cache.
type mockCache struct {
	cache *manifest.ManifestCache
}

func (m *mockCache) GetOrRebuild(ctx context.Context) (*manifest.ManifestCache, error) {
	return m.cache, nil
}

// mockInstalledStore hands out a shared manifest.
type mockInstalledStore struct {
	manifest *manifest.InstalledManifest
}

func (m *mockInstalledStore) GetOrCreate() (*manifest.InstalledManifest, error) {
	return m.manifest, nil
}

// mockProvider serves canned metadata and counts version lookups.
type mockProvider struct {
	packages map[string]*manifest.Package
	versions map[string]string
}

func (m *mockProvider) FetchPackage(ctx context.Context, url string) (*manifest.Package, error) {
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

// binaryTarGz builds a .tar.gz containing a single executable file.
func binaryTarGz(t *testing.T, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := "#!/bin/sh\necho " + name + "\n"
	if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0755, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newAssetServer serves <name>.tar.gz archives; paths containing "bad" fail.
func newAssetServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bad") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".tar.gz")
		w.Write(binaryTarGz(t, name))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fixture struct {
	engine    *InstallEngine
	installed *manifest.InstalledManifest
	paths     config.Paths
	server    *httptest.Server
	downloads *int
}

// newFixture wires a full install engine over a temp root and an asset
// server, with three cached packages: one, two (served broken) and three.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := newAssetServer(t)

	paths := config.NewPaths(t.TempDir())
	if err := paths.InitDirs(); err != nil {
		t.Fatal(err)
	}

	cacheEntries := make(map[string]manifest.CachedPackage)
	versions := make(map[string]string)
	for _, spec := range []struct{ name, asset string }{
		{"one", "one.tar.gz"},
		{"two", "bad.tar.gz"},
		{"three", "three.tar.gz"},
	} {
		repo := "https://github.com/t/" + spec.name
		cacheEntries[repo] = manifest.CachedPackage{
			Package: manifest.Package{
				Name: spec.name,
				Repo: repo,
				Platforms: map[string]manifest.BinaryAsset{
					"linux-x64": {URL: srv.URL + "/" + spec.asset},
				},
			},
			Source: manifest.BucketSource("main"),
		}
		versions[repo] = "1.0.0"
	}

	installed := &manifest.InstalledManifest{Version: 1, Packages: map[string]manifest.InstalledPackage{}}
	prov := &mockProvider{versions: versions}

	resolver := &resolve.Resolver{
		Cache:     &mockCache{cache: &manifest.ManifestCache{Version: 1, Packages: cacheEntries}},
		Installed: &mockInstalledStore{manifest: installed},
		Provider:  prov,
	}

	downloads := 0
	countingClient := &countingHTTPClient{client: srv.Client(), count: &downloads}

	eng := &InstallEngine{
		Resolver:  resolver,
		Installer: &installer.Installer{Paths: paths, Client: countingClient},
		Paths:     paths,
	}

	return &fixture{engine: eng, installed: installed, paths: paths, server: srv, downloads: &downloads}
}

type countingHTTPClient struct {
	client *http.Client
	count  *int
}

func (c *countingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	*c.count++
	return c.client.Do(req)
}

func TestBatchSecondFailureIsolated(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses symlink launchers")
	}
	fx := newFixture(t)
	ids := []string{"linux-x64"}

	plan := fx.engine.Plan(context.Background(), []string{"one", "two", "three"}, ids, fx.installed)
	if len(plan.Items) != 3 {
		t.Fatalf("plan items = %d: %+v", len(plan.Items), plan)
	}

	result, err := fx.engine.Run(context.Background(), plan, ids, fx.installed)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.SuccessCount() != 2 {
		t.Errorf("successes = %d, want 2", result.SuccessCount())
	}
	if result.FailureCount() != 1 {
		t.Errorf("failures = %d, want 1", result.FailureCount())
	}
	if len(result.Failed) == 1 && result.Failed[0].Package != "two" {
		t.Errorf("failed package = %q", result.Failed[0].Package)
	}

	// Both successes persisted.
	persisted, err := manifest.LoadInstalled(fx.paths.InstalledFile())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"one", "three"} {
		if !persisted.IsInstalled(name) {
			t.Errorf("%s not persisted", name)
		}
	}
	if persisted.IsInstalled("two") {
		t.Error("failed package recorded as installed")
	}
}

func TestPlanAlreadyCurrentSkipsDownload(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses symlink launchers")
	}
	fx := newFixture(t)
	ids := []string{"linux-x64"}

	// First install.
	plan := fx.engine.Plan(context.Background(), []string{"one"}, ids, fx.installed)
	if _, err := fx.engine.Run(context.Background(), plan, ids, fx.installed); err != nil {
		t.Fatal(err)
	}
	downloadsAfterFirst := *fx.downloads
	if downloadsAfterFirst == 0 {
		t.Fatal("first install downloaded nothing")
	}

	// Second run: same version upstream.
	plan = fx.engine.Plan(context.Background(), []string{"one"}, ids, fx.installed)
	if len(plan.Items) != 1 || plan.Items[0].Action != ActionCurrent {
		t.Fatalf("plan = %+v", plan.Items)
	}
	result, err := fx.engine.Run(context.Background(), plan, ids, fx.installed)
	if err != nil {
		t.Fatal(err)
	}
	if result.SuccessCount() != 0 || result.FailureCount() != 0 {
		t.Errorf("result = %+v", result)
	}
	if *fx.downloads != downloadsAfterFirst {
		t.Errorf("already-current package triggered %d extra downloads", *fx.downloads-downloadsAfterFirst)
	}
}

func TestPlanUpgradeAction(t *testing.T) {
	fx := newFixture(t)
	fx.installed.UpsertPackage("one", manifest.InstalledPackage{
		Version: "0.9.0",
		Source:  manifest.BucketSource("main"),
	})

	plan := fx.engine.Plan(context.Background(), []string{"one"}, []string{"linux-x64"}, fx.installed)
	if len(plan.Items) != 1 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Items[0].Action != ActionUpgrade || plan.Items[0].CurrentVersion != "0.9.0" {
		t.Errorf("item = %+v", plan.Items[0])
	}
}

func TestPlanResolveErrorIsolated(t *testing.T) {
	fx := newFixture(t)

	plan := fx.engine.Plan(context.Background(), []string{"nonexistent", "one"}, []string{"linux-x64"}, fx.installed)
	if len(plan.ResolveErrors) != 1 {
		t.Fatalf("resolve errors = %+v", plan.ResolveErrors)
	}
	if !errors.Is(plan.ResolveErrors[0].Err, resolve.ErrNotFound) {
		t.Errorf("err = %v", plan.ResolveErrors[0].Err)
	}
	if len(plan.Items) != 1 || plan.Items[0].Resolved.Package.Name != "one" {
		t.Errorf("items = %+v", plan.Items)
	}
}

func TestPlanUnsupportedPlatformFiltered(t *testing.T) {
	fx := newFixture(t)

	plan := fx.engine.Plan(context.Background(), []string{"one"}, []string{"darwin-arm64", "darwin"}, fx.installed)
	if len(plan.Items) != 0 {
		t.Errorf("items = %+v", plan.Items)
	}
	if len(plan.Unsupported) != 1 || plan.Unsupported[0] != "one" {
		t.Errorf("unsupported = %v", plan.Unsupported)
	}
}

func TestPlanUnknownVersionStillInstalls(t *testing.T) {
	fx := newFixture(t)
	// Drop the version so the lookup fails.
	prov := fx.engine.Resolver.Provider.(*mockProvider)
	delete(prov.versions, "https://github.com/t/one")

	plan := fx.engine.Plan(context.Background(), []string{"one"}, []string{"linux-x64"}, fx.installed)
	if len(plan.Items) != 1 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Items[0].Version != "unknown" || plan.Items[0].Action != ActionInstall {
		t.Errorf("item = %+v", plan.Items[0])
	}
}

func TestFindUpgradeable(t *testing.T) {
	fx := newFixture(t)
	installed := &manifest.InstalledManifest{
		Version: 1,
		Packages: map[string]manifest.InstalledPackage{
			"one": {
				Version: "0.9.0",
				Source:  manifest.BucketSource("main"),
			},
			"direct-tool": {
				Version: "2.0.0",
				Source:  manifest.DirectSource("https://github.com/d/direct-tool"),
			},
			"current-tool": {
				Version: "3.0.0",
				Source:  manifest.DirectSource("https://github.com/d/current-tool"),
			},
			"vanished": {
				Version: "1.0.0",
				Source:  manifest.BucketSource("main"),
			},
		},
	}

	prov := &mockProvider{versions: map[string]string{
		"https://github.com/t/one":          "1.0.0",
		"https://github.com/d/direct-tool":  "2.1.0",
		"https://github.com/d/current-tool": "3.0.0",
	}}

	eng := &UpdateEngine{
		Cache:    fx.engine.Resolver.Cache,
		Provider: prov,
	}

	candidates, err := eng.FindUpgradeable(context.Background(), installed)
	if err != nil {
		t.Fatalf("FindUpgradeable: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("candidates = %+v", candidates)
	}
	// Sorted by name: direct-tool, one.
	if candidates[0].Name != "direct-tool" || candidates[0].Latest != "2.1.0" {
		t.Errorf("candidates[0] = %+v", candidates[0])
	}
	if candidates[1].Name != "one" || candidates[1].Current != "0.9.0" {
		t.Errorf("candidates[1] = %+v", candidates[1])
	}
}

func TestSameVersion(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.2.0", "1.2.0", true},
		{"1.2", "1.2.0", true},
		{"1.2.0", "1.3.0", false},
		{"nightly", "nightly", true},
		{"nightly", "2024-01-01", false},
	}
	for _, tt := range tests {
		if got := SameVersion(tt.a, tt.b); got != tt.want {
			t.Errorf("SameVersion(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRemove(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses symlink launchers")
	}
	fx := newFixture(t)
	ids := []string{"linux-x64"}

	plan := fx.engine.Plan(context.Background(), []string{"one"}, ids, fx.installed)
	if _, err := fx.engine.Run(context.Background(), plan, ids, fx.installed); err != nil {
		t.Fatal(err)
	}

	rm := &RemoveEngine{Paths: fx.paths}
	result, err := rm.Remove([]string{"one", "ghost"}, fx.installed)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if len(result.Removed) != 1 || result.Removed[0].Name != "one" {
		t.Errorf("removed = %+v", result.Removed)
	}
	if len(result.Failed) != 1 || result.Failed[0].Package != "ghost" {
		t.Errorf("failed = %+v", result.Failed)
	}

	if fx.installed.IsInstalled("one") {
		t.Error("one still recorded after remove")
	}
	persisted, err := manifest.LoadInstalled(fx.paths.InstalledFile())
	if err != nil {
		t.Fatal(err)
	}
	if persisted.IsInstalled("one") {
		t.Error("one still persisted after remove")
	}
}
