package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/binget/binget/internal/manifest"
)

const defaultAPIBase = "https://api.github.com"

// GitHub fetches package metadata from the GitHub REST API.
type GitHub struct {
	Client  HTTPClient
	APIBase string // override for tests; defaults to api.github.com
	Token   string // optional bearer token for higher rate limits
}

// NewGitHub creates a GitHub provider with a default client.
func NewGitHub(token string) *GitHub {
	return &GitHub{
		Client: &http.Client{Timeout: 30 * time.Second},
		Token:  token,
	}
}

func (g *GitHub) Name() string { return "github" }

type repoInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Homepage    string `json:"homepage"`
	License     *struct {
		SpdxID string `json:"spdx_id"`
	} `json:"license"`
}

type releaseInfo struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		Size               int64  `json:"size"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// FetchPackage fetches repository metadata and the latest release, and maps
// release assets to platform identifiers by filename.
func (g *GitHub) FetchPackage(ctx context.Context, repoURL string) (*manifest.Package, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, &ProviderError{URL: repoURL, Operation: "parse", Err: err}
	}

	var info repoInfo
	if err := g.getJSON(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo), repoURL, &info); err != nil {
		return nil, err
	}

	var release releaseInfo
	if err := g.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/releases/latest", owner, repo), repoURL, &release); err != nil {
		return nil, err
	}

	platforms := make(map[string]manifest.BinaryAsset)
	for _, asset := range release.Assets {
		id, ok := classifyAsset(asset.Name)
		if !ok {
			continue
		}
		if _, exists := platforms[id]; exists {
			continue // first asset per platform wins
		}
		platforms[id] = manifest.BinaryAsset{URL: asset.BrowserDownloadURL, Size: asset.Size}
	}

	name := info.Name
	if name == "" {
		name = repo
	}

	pkg := &manifest.Package{
		Name:        name,
		Repo:        fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		Description: info.Description,
		Homepage:    info.Homepage,
		Platforms:   platforms,
	}
	if info.License != nil && info.License.SpdxID != "" && info.License.SpdxID != "NOASSERTION" {
		pkg.License = info.License.SpdxID
	}

	return pkg, nil
}

// FetchLatestVersion returns the latest release tag with any leading "v" trimmed.
func (g *GitHub) FetchLatestVersion(ctx context.Context, repoURL string) (string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", &ProviderError{URL: repoURL, Operation: "parse", Err: err}
	}

	var release releaseInfo
	if err := g.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/releases/latest", owner, repo), repoURL, &release); err != nil {
		return "", err
	}
	if release.TagName == "" {
		return "", &ProviderError{URL: repoURL, Operation: "fetch latest version", Err: fmt.Errorf("release has no tag")}
	}

	return strings.TrimPrefix(release.TagName, "v"), nil
}

func (g *GitHub) getJSON(ctx context.Context, path, repoURL string, out any) error {
	base := g.APIBase
	if base == "" {
		base = defaultAPIBase
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return &ProviderError{URL: repoURL, Operation: "request", Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "binget")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return &ProviderError{URL: repoURL, Operation: "fetch", Err: err, Hint: "check network connectivity"}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &ProviderError{URL: repoURL, Operation: "fetch", Err: fmt.Errorf("%w: %s", ErrNotFound, path)}
	case resp.StatusCode == http.StatusForbidden:
		return &ProviderError{
			URL:       repoURL,
			Operation: "fetch",
			Err:       fmt.Errorf("HTTP 403 from %s", path),
			Hint:      "GitHub API rate limit — set BINGET_GITHUB_TOKEN",
		}
	case resp.StatusCode != http.StatusOK:
		return &ProviderError{URL: repoURL, Operation: "fetch", Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, path)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{URL: repoURL, Operation: "read response", Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ProviderError{URL: repoURL, Operation: "parse response", Err: err}
	}

	return nil
}

// ParseRepoURL extracts owner and repository from a GitHub repository URL.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return "", "", fmt.Errorf("not a github.com URL: %s", repoURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected github.com/<owner>/<repo>, got %s", repoURL)
	}

	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// osTokens maps filename substrings to OS identifiers, checked in order.
var osTokens = []struct{ token, os string }{
	{"linux", "linux"},
	{"darwin", "darwin"},
	{"macos", "darwin"},
	{"apple", "darwin"},
	{"osx", "darwin"},
	{"windows", "windows"},
	{"win64", "windows"},
	{"win32", "windows"},
}

// archTokens maps filename substrings to canonical architectures, checked in
// order. x86_64 must precede x86.
var archTokens = []struct{ token, arch string }{
	{"x86_64", "x64"},
	{"amd64", "x64"},
	{"x64", "x64"},
	{"aarch64", "arm64"},
	{"arm64", "arm64"},
	{"i686", "x86"},
	{"386", "x86"},
	{"x86", "x86"},
}

// skipSuffixes are asset names that are never installable binaries.
var skipSuffixes = []string{
	".sha256", ".sha512", ".md5", ".asc", ".sig", ".pem", ".sbom",
	".txt", ".md", ".json", ".deb", ".rpm", ".msi", ".dmg", ".apk",
}

// classifyAsset maps a release asset filename to a platform identifier.
// Returns false for checksums, signatures and other non-binary assets, or
// when no OS token is present.
func classifyAsset(name string) (string, bool) {
	lower := strings.ToLower(name)

	for _, suffix := range skipSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return "", false
		}
	}
	if strings.Contains(lower, "checksum") {
		return "", false
	}

	var osID string
	for _, t := range osTokens {
		if strings.Contains(lower, t.token) {
			osID = t.os
			break
		}
	}
	if osID == "" {
		return "", false
	}

	for _, t := range archTokens {
		if strings.Contains(lower, t.token) {
			return osID + "-" + t.arch, true
		}
	}

	// OS without a recognizable architecture: expose an os-only identifier so
	// the selector's bare-OS fallback can still match.
	return osID, true
}
