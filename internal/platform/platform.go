// Package platform detects the host platform and selects release assets by
// priority-ordered platform identifiers.
package platform

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/binget/binget/internal/manifest"
)

// ErrUnsupportedPlatform is returned when a package has no asset for any of
// the host's platform identifiers.
var ErrUnsupportedPlatform = errors.New("no binary available for this platform")

// Platform identifies a host operating system and architecture.
type Platform struct {
	OS   string // "linux", "darwin", "windows"
	Arch string // canonical: "x64", "arm64", "x86"
}

// Current returns the host platform.
func Current() Platform {
	return Platform{OS: runtime.GOOS, Arch: canonicalArch(runtime.GOARCH)}
}

func canonicalArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "arm64":
		return "arm64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}

// archAliases lists alternate spellings of each canonical architecture, in
// preference order after the canonical one.
var archAliases = map[string][]string{
	"x64":   {"amd64", "x86_64"},
	"arm64": {"aarch64"},
	"x86":   {"386", "i686"},
}

// PossibleIdentifiers returns the platform identifiers to try when matching
// a package's platform map, most specific first. The bare OS name comes last
// so an os-only asset still matches.
func (p Platform) PossibleIdentifiers() []string {
	ids := []string{fmt.Sprintf("%s-%s", p.OS, p.Arch)}
	for _, alias := range archAliases[p.Arch] {
		ids = append(ids, fmt.Sprintf("%s-%s", p.OS, alias))
	}
	return append(ids, p.OS)
}

// String returns the canonical identifier for the platform.
func (p Platform) String() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}

// Select returns the first identifier present as a key in the package's
// platform map, paired with its asset. Priority-ordered lookup only; no
// version or constraint solving.
func Select(identifiers []string, platforms map[string]manifest.BinaryAsset) (string, manifest.BinaryAsset, error) {
	for _, id := range identifiers {
		if asset, ok := platforms[id]; ok {
			return id, asset, nil
		}
	}
	return "", manifest.BinaryAsset{}, ErrUnsupportedPlatform
}

// Supports reports whether any of the identifiers has an asset.
func Supports(identifiers []string, platforms map[string]manifest.BinaryAsset) bool {
	_, _, err := Select(identifiers, platforms)
	return err == nil
}
