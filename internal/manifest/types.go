package manifest

import "time"

// Package is the descriptive record for one installable package. It is
// recomputed on every resolution and never persisted on its own.
type Package struct {
	Name        string                 `yaml:"name"`
	Repo        string                 `yaml:"repo"`
	Description string                 `yaml:"description,omitempty"`
	Homepage    string                 `yaml:"homepage,omitempty"`
	License     string                 `yaml:"license,omitempty"`
	Platforms   map[string]BinaryAsset `yaml:"platforms"`
}

// BinaryAsset is one downloadable release asset for a specific platform.
type BinaryAsset struct {
	URL  string `yaml:"url"`
	Size int64  `yaml:"size"`
}

// SourceKind discriminates package provenance.
type SourceKind string

const (
	// SourceBucket marks a package that came from a curated bucket index.
	SourceBucket SourceKind = "bucket"
	// SourceDirect marks a package resolved straight from a repository URL.
	SourceDirect SourceKind = "direct"
)

// PackageSource records where a package came from. Provenance decides how a
// later update re-resolves the package: bucket packages go back through the
// cache, direct packages re-fetch their stored URL.
type PackageSource struct {
	Kind   SourceKind `yaml:"kind"`
	Bucket string     `yaml:"bucket,omitempty"` // kind == bucket
	URL    string     `yaml:"url,omitempty"`    // kind == direct
}

// BucketSource returns a bucket provenance.
func BucketSource(name string) PackageSource {
	return PackageSource{Kind: SourceBucket, Bucket: name}
}

// DirectSource returns a direct-repository provenance.
func DirectSource(url string) PackageSource {
	return PackageSource{Kind: SourceDirect, URL: url}
}

// CachedPackage is one manifest-cache entry: package metadata plus the bucket
// it was folded in from. The cache is keyed by source URL, so the same
// package name may appear under several entries.
type CachedPackage struct {
	Package Package       `yaml:"package"`
	Source  PackageSource `yaml:"source"`
}

// ManifestCache is the on-disk cache of all bucket package definitions,
// keyed by source repository URL.
type ManifestCache struct {
	Version   int                      `yaml:"version"`
	UpdatedAt time.Time                `yaml:"updated_at"`
	Packages  map[string]CachedPackage `yaml:"packages"`
}

// InstalledPackage is the persisted record of one successful install.
// Its presence in the installed manifest implies the install directory and
// launcher exist on disk.
type InstalledPackage struct {
	Version     string        `yaml:"version"`
	Platform    string        `yaml:"platform"`
	InstalledAt time.Time     `yaml:"installed_at"`
	InstallPath string        `yaml:"install_path"`
	Files       []string      `yaml:"files"`
	Source      PackageSource `yaml:"source"`
	Description string        `yaml:"description,omitempty"`
}

// InstalledManifest is the installed-state store, keyed by package name.
type InstalledManifest struct {
	Version  int                         `yaml:"version"`
	Packages map[string]InstalledPackage `yaml:"packages"`
}

// IsInstalled reports whether a package name is recorded as installed.
func (m *InstalledManifest) IsInstalled(name string) bool {
	_, ok := m.Packages[name]
	return ok
}

// GetPackage returns the installed record for name, if present.
func (m *InstalledManifest) GetPackage(name string) (InstalledPackage, bool) {
	pkg, ok := m.Packages[name]
	return pkg, ok
}

// UpsertPackage records or replaces the installed record for name.
func (m *InstalledManifest) UpsertPackage(name string, pkg InstalledPackage) {
	if m.Packages == nil {
		m.Packages = make(map[string]InstalledPackage)
	}
	m.Packages[name] = pkg
}

// RemovePackage drops the installed record for name.
func (m *InstalledManifest) RemovePackage(name string) {
	delete(m.Packages, name)
}
