package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCacheTTLHours is how long the manifest cache stays fresh.
const DefaultCacheTTLHours = 24

// Settings represents the optional config.yaml file in the binget root.
type Settings struct {
	// GitHubToken is sent as a bearer token to raise API rate limits.
	// The BINGET_GITHUB_TOKEN environment variable takes precedence.
	GitHubToken string `yaml:"github_token,omitempty"`

	// CacheTTLHours controls manifest cache staleness. Zero means default.
	CacheTTLHours int `yaml:"cache_ttl_hours,omitempty"`
}

// LoadSettings reads the settings file. A missing file yields defaults.
func LoadSettings(path string) (*Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.applyEnv()
		return &s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	s.applyEnv()
	return &s, nil
}

func (s *Settings) applyEnv() {
	if tok := os.Getenv("BINGET_GITHUB_TOKEN"); tok != "" {
		s.GitHubToken = tok
	}
	if s.CacheTTLHours <= 0 {
		s.CacheTTLHours = DefaultCacheTTLHours
	}
}
