package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestVersion is the only supported on-disk format version.
const manifestVersion = 1

// LoadInstalled reads and validates the installed-state manifest.
// A missing file yields an empty manifest.
func LoadInstalled(path string) (*InstalledManifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &InstalledManifest{Version: manifestVersion, Packages: map[string]InstalledPackage{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading installed manifest %s: %w", path, err)
	}

	var m InstalledManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing installed manifest %s: %w", path, err)
	}
	if m.Packages == nil {
		m.Packages = map[string]InstalledPackage{}
	}

	if errs := validateInstalled(&m); len(errs) > 0 {
		return nil, &ValidationError{Path: path, Errors: errs}
	}

	return &m, nil
}

// SaveInstalled writes the installed manifest atomically via temp file and rename.
func SaveInstalled(path string, m *InstalledManifest) error {
	return saveYAML(path, m, "installed manifest")
}

// LoadCache reads the manifest cache. Returns os.ErrNotExist-wrapped error if
// the file is missing so callers can trigger a rebuild.
func LoadCache(path string) (*ManifestCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest cache %s: %w", path, err)
	}

	var c ManifestCache
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing manifest cache %s: %w", path, err)
	}
	if c.Packages == nil {
		c.Packages = map[string]CachedPackage{}
	}
	return &c, nil
}

// SaveCache writes the manifest cache atomically.
func SaveCache(path string, c *ManifestCache) error {
	return saveYAML(path, c, "manifest cache")
}

func saveYAML(path string, v any, what string) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", what, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp %s %s: %w", what, tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp %s to %s: %w", what, path, err)
	}

	return nil
}

// ValidationError holds multiple validation failures for one manifest file.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed:\n  - %s", e.Path, strings.Join(e.Errors, "\n  - "))
}

func validateInstalled(m *InstalledManifest) []string {
	var errs []string

	if m.Version != manifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version %d is supported", m.Version, manifestVersion))
	}

	for name, pkg := range m.Packages {
		if name == "" {
			errs = append(errs, "empty package name key")
			continue
		}
		if pkg.Version == "" {
			errs = append(errs, fmt.Sprintf("package '%s': 'version' is required", name))
		}
		if pkg.InstallPath == "" {
			errs = append(errs, fmt.Sprintf("package '%s': 'install_path' is required", name))
		}
		switch pkg.Source.Kind {
		case SourceBucket, SourceDirect:
		default:
			errs = append(errs, fmt.Sprintf("package '%s': unknown source kind '%s'", name, pkg.Source.Kind))
		}
	}

	return errs
}
