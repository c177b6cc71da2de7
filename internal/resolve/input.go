// Package resolve turns user-supplied identifiers into concrete package
// metadata: cache lookup by exact name or glob, fallback to a previously
// installed direct-URL package, or a live repository fetch.
package resolve

import "strings"

// InputKind discriminates the two forms a user argument can take.
type InputKind string

const (
	// InputCacheName is a package name or glob pattern looked up in the cache.
	InputCacheName InputKind = "cache-name"
	// InputDirectURL is a direct repository URL, never looked up in the cache.
	InputDirectURL InputKind = "direct-url"
)

// PackageInput is a classified user argument. Built once per argument.
type PackageInput struct {
	Kind  InputKind
	Value string // pattern for cache names, normalized URL for direct URLs
}

// ParseInput classifies a raw argument. Strings starting with http://,
// https:// or github.com/ become direct URLs (a bare github.com/... form gets
// https:// prepended); everything else, glob characters included, is a cache
// name. No URL well-formedness validation happens here — malformed URLs
// surface later as provider fetch failures.
func ParseInput(raw string) PackageInput {
	trimmed := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return PackageInput{Kind: InputDirectURL, Value: trimmed}
	case strings.HasPrefix(trimmed, "github.com/"):
		return PackageInput{Kind: InputDirectURL, Value: "https://" + trimmed}
	default:
		return PackageInput{Kind: InputCacheName, Value: raw}
	}
}
