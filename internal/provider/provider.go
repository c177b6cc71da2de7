// Package provider fetches package metadata from hosting providers.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/binget/binget/internal/manifest"
)

// ErrNotFound is returned when a repository or release does not exist.
var ErrNotFound = errors.New("not found")

// SourceProvider extracts package metadata from a repository URL. The
// resolver and engines depend only on this capability, so alternate hosting
// providers can be added without touching them.
type SourceProvider interface {
	// FetchPackage returns package metadata with latest release information.
	FetchPackage(ctx context.Context, url string) (*manifest.Package, error)

	// FetchLatestVersion returns the latest release version string.
	FetchLatestVersion(ctx context.Context, repoURL string) (string, error)

	// Name returns the provider name.
	Name() string
}

// ProviderError represents a failure talking to or interpreting a provider.
type ProviderError struct {
	URL       string
	Operation string
	Err       error
	Hint      string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s failed: %s", e.URL, e.Operation, e.Err)
	if e.Hint != "" {
		msg += " — " + e.Hint
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
